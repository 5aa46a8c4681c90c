package archiver

import (
	"archive/tar"
	"io"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zip"
	"github.com/pierrec/lz4/v4"
	"github.com/pkg/errors"
	"github.com/spf13/afero"

	"github.com/pders01/reportzip/internal/models"
)

var errStopScan = errors.New("stop scan")

// ReadEntries lists the entries of an archive in stored order. An empty
// format is inferred from the file extension.
func ReadEntries(fs afero.Fs, path string, format models.Format) ([]models.Entry, error) {
	var entries []models.Entry
	err := scanArchive(fs, path, format, func(e models.Entry, _ io.Reader) error {
		entries = append(entries, e)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// ReadFile returns the content of the file entry called name
func ReadFile(fs afero.Fs, path string, format models.Format, name string) ([]byte, error) {
	var data []byte
	found := false
	err := scanArchive(fs, path, format, func(e models.Entry, r io.Reader) error {
		if e.IsDir || e.Path != name {
			return nil
		}
		b, err := io.ReadAll(r)
		if err != nil {
			return errors.WithMessagef(err, "failed to read entry %s", name)
		}
		data = b
		found = true
		return errStopScan
	})
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, errors.Errorf("entry %s not found in %s", name, path)
	}
	return data, nil
}

func scanArchive(fs afero.Fs, path string, format models.Format, fn func(models.Entry, io.Reader) error) error {
	if format == "" {
		f, ok := models.FormatFromPath(path)
		if !ok {
			return errors.Errorf("cannot infer archive format from %s", path)
		}
		format = f
	}

	file, err := fs.Open(path)
	if err != nil {
		return errors.WithMessage(err, "failed to open archive")
	}
	defer file.Close()

	switch format {
	case models.FormatZip:
		err = scanZip(file, fn)
	case models.FormatTarGz:
		var gz *gzip.Reader
		gz, err = gzip.NewReader(file)
		if err != nil {
			return errors.WithMessage(err, "failed to open gzip stream")
		}
		defer gz.Close()
		err = scanTar(gz, fn)
	case models.FormatTarLz4:
		err = scanTar(lz4.NewReader(file), fn)
	default:
		return errors.Errorf("unsupported archive format: %q", format)
	}

	if errors.Is(err, errStopScan) {
		return nil
	}
	return err
}

func scanZip(file afero.File, fn func(models.Entry, io.Reader) error) error {
	info, err := file.Stat()
	if err != nil {
		return errors.WithMessage(err, "failed to stat archive")
	}
	zr, err := zip.NewReader(file, info.Size())
	if err != nil {
		return errors.WithMessage(err, "failed to read zip directory")
	}

	for _, zf := range zr.File {
		entry := models.Entry{
			Path:  zf.Name,
			IsDir: strings.HasSuffix(zf.Name, "/"),
			Size:  int64(zf.UncompressedSize64),
		}
		if entry.IsDir {
			if err := fn(entry, nil); err != nil {
				return err
			}
			continue
		}

		rc, err := zf.Open()
		if err != nil {
			return errors.WithMessagef(err, "failed to open entry %s", zf.Name)
		}
		err = fn(entry, rc)
		rc.Close()
		if err != nil {
			return err
		}
	}
	return nil
}

func scanTar(r io.Reader, fn func(models.Entry, io.Reader) error) error {
	tr := tar.NewReader(r)
	for {
		header, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return errors.WithMessage(err, "failed to read tar header")
		}

		entry := models.Entry{
			Path:  header.Name,
			IsDir: header.Typeflag == tar.TypeDir,
			Size:  header.Size,
		}
		if entry.IsDir {
			entry.Size = 0
		}
		if err := fn(entry, tr); err != nil {
			return err
		}
	}
}
