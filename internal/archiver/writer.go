package archiver

import (
	"archive/tar"
	"io"
	"os"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zip"
	"github.com/pierrec/lz4/v4"
	"github.com/pkg/errors"

	"github.com/pders01/reportzip/internal/models"
)

// DefaultLevel selects each codec's default compression level
const DefaultLevel = -1

// entryWriter encodes archive entries into one output stream
type entryWriter interface {
	// WriteDir records a directory marker; name carries no trailing slash
	WriteDir(name string, info os.FileInfo) error
	// WriteFile records a file and streams its content verbatim
	WriteFile(name string, info os.FileInfo, r io.Reader) (int64, error)
	// Close writes the format's terminating structure; the underlying writer stays open
	Close() error
}

func validateLevel(level int) error {
	if level < DefaultLevel || level > 9 {
		return errors.Errorf("invalid compression level %d (expected -1 to 9)", level)
	}
	return nil
}

func newEntryWriter(w io.Writer, format models.Format, level int) (entryWriter, error) {
	if err := validateLevel(level); err != nil {
		return nil, err
	}

	switch format {
	case models.FormatZip:
		return newZipWriter(w, level), nil
	case models.FormatTarGz:
		gz, err := gzip.NewWriterLevel(w, level)
		if err != nil {
			return nil, errors.WithMessage(err, "failed to create gzip writer")
		}
		return newTarWriter(gz), nil
	case models.FormatTarLz4:
		zw := lz4.NewWriter(w)
		if level != DefaultLevel {
			if err := zw.Apply(lz4.CompressionLevelOption(lz4Levels[level])); err != nil {
				return nil, errors.WithMessage(err, "failed to set lz4 level")
			}
		}
		return newTarWriter(zw), nil
	}
	return nil, errors.Errorf("unsupported archive format: %q", format)
}

var lz4Levels = []lz4.CompressionLevel{
	lz4.Fast, lz4.Level1, lz4.Level2, lz4.Level3, lz4.Level4,
	lz4.Level5, lz4.Level6, lz4.Level7, lz4.Level8, lz4.Level9,
}

type zipWriter struct {
	zw *zip.Writer
}

func newZipWriter(w io.Writer, level int) *zipWriter {
	zw := zip.NewWriter(w)
	zw.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(out, level)
	})
	return &zipWriter{zw: zw}
}

func (z *zipWriter) WriteDir(name string, info os.FileInfo) error {
	header := &zip.FileHeader{
		Name:     name + "/",
		Method:   zip.Store,
		Modified: info.ModTime(),
	}
	header.SetMode(info.Mode())
	_, err := z.zw.CreateHeader(header)
	return err
}

func (z *zipWriter) WriteFile(name string, info os.FileInfo, r io.Reader) (int64, error) {
	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return 0, err
	}
	header.Name = name
	header.Method = zip.Deflate

	w, err := z.zw.CreateHeader(header)
	if err != nil {
		return 0, err
	}
	n, err := io.Copy(w, r)
	if err != nil {
		return n, &copyError{err: err}
	}
	return n, nil
}

func (z *zipWriter) Close() error {
	return z.zw.Close()
}

// tarWriter writes a tar stream through a compressor
type tarWriter struct {
	tw         *tar.Writer
	compressor io.WriteCloser
}

func newTarWriter(compressor io.WriteCloser) *tarWriter {
	return &tarWriter{tw: tar.NewWriter(compressor), compressor: compressor}
}

func (t *tarWriter) WriteDir(name string, info os.FileInfo) error {
	header, err := tar.FileInfoHeader(info, "")
	if err != nil {
		return err
	}
	header.Name = name + "/"
	header.Typeflag = tar.TypeDir
	header.Size = 0
	return t.tw.WriteHeader(header)
}

func (t *tarWriter) WriteFile(name string, info os.FileInfo, r io.Reader) (int64, error) {
	header, err := tar.FileInfoHeader(info, "")
	if err != nil {
		return 0, err
	}
	header.Name = name
	header.Typeflag = tar.TypeReg

	if err := t.tw.WriteHeader(header); err != nil {
		return 0, err
	}

	n, err := io.CopyN(t.tw, r, header.Size)
	if err != nil {
		// The header promised Size bytes; pad so later entries stay readable.
		if _, padErr := io.CopyN(t.tw, zeroReader{}, header.Size-n); padErr != nil {
			return n, &copyError{err: padErr}
		}
		return n, &copyError{err: err}
	}
	return n, nil
}

func (t *tarWriter) Close() error {
	if err := t.tw.Close(); err != nil {
		t.compressor.Close()
		return err
	}
	return t.compressor.Close()
}

// copyError means the entry header is already in the archive but its
// content stream failed, leaving a truncated (zip) or zero-padded (tar) entry
type copyError struct {
	err error
}

func (e *copyError) Error() string { return e.err.Error() }
func (e *copyError) Unwrap() error { return e.err }

type zeroReader struct{}

func (zeroReader) Read(p []byte) (int, error) {
	clear(p)
	return len(p), nil
}
