// Package archiver packages a directory tree into a single compressed archive.
package archiver

import (
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/pders01/reportzip/internal/models"
)

// Archiver writes every node of a source tree into one archive file.
// It holds no per-run state and may be reused for sequential or concurrent
// runs against distinct destinations.
type Archiver struct {
	fs     afero.Fs
	format models.Format
	level  int
	policy models.Policy
	log    logrus.FieldLogger
}

// Option configures an Archiver
type Option func(*Archiver)

// WithFs sets the filesystem used for both the source tree and the destination
func WithFs(fs afero.Fs) Option {
	return func(a *Archiver) { a.fs = fs }
}

// WithFormat forces an archive format instead of inferring it from the destination
func WithFormat(format models.Format) Option {
	return func(a *Archiver) { a.format = format }
}

// WithCompressionLevel sets the codec level, -1 for the codec default
func WithCompressionLevel(level int) Option {
	return func(a *Archiver) { a.level = level }
}

// WithPolicy sets how per-node failures are handled
func WithPolicy(policy models.Policy) Option {
	return func(a *Archiver) { a.policy = policy }
}

// WithLogger sets the logger that receives skipped-node diagnostics
func WithLogger(log logrus.FieldLogger) Option {
	return func(a *Archiver) { a.log = log }
}

// New creates an Archiver writing zip archives to the OS filesystem and
// continuing past per-node failures unless configured otherwise.
func New(opts ...Option) *Archiver {
	a := &Archiver{
		fs:     afero.NewOsFs(),
		level:  DefaultLevel,
		policy: models.PolicyContinue,
		log:    logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Archive packages source into destination with default options
func Archive(source, destination string) (*models.Summary, error) {
	return New().Archive(source, destination)
}

// Archive walks source and writes one entry per node into a new archive at
// destination, replacing any existing file there.
//
// Under PolicyContinue a node that cannot be archived is logged and listed in
// Summary.Failures while the run still succeeds. Under PolicyAbort the first
// such node stops the run and destination is left untouched.
func (a *Archiver) Archive(source, destination string) (*models.Summary, error) {
	info, err := a.fs.Stat(source)
	if err != nil {
		return nil, withKind(ErrSourceNotFound, err)
	}
	if !info.IsDir() {
		return nil, withKind(ErrSourceNotFound, errors.Errorf("%s is not a directory", source))
	}

	format, err := a.resolveFormat(destination)
	if err != nil {
		return nil, err
	}
	if err := validateLevel(a.level); err != nil {
		return nil, err
	}

	dir := filepath.Dir(destination)
	if dirInfo, err := a.fs.Stat(dir); err != nil {
		return nil, withKind(ErrDestinationUnavailable, err)
	} else if !dirInfo.IsDir() {
		return nil, withKind(ErrDestinationUnavailable, errors.Errorf("%s is not a directory", dir))
	}
	if destInfo, err := a.fs.Stat(destination); err == nil && destInfo.IsDir() {
		return nil, withKind(ErrDestinationUnavailable, errors.Errorf("%s is a directory", destination))
	}

	tmpPath := filepath.Join(dir, "."+filepath.Base(destination)+"."+uuid.NewString()+".partial")
	out, err := a.fs.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return nil, withKind(ErrDestinationUnavailable, err)
	}

	committed := false
	defer func() {
		if committed {
			return
		}
		out.Close()
		if err := a.fs.Remove(tmpPath); err != nil && !os.IsNotExist(err) {
			a.log.WithError(err).WithField("path", tmpPath).Warn("Failed to remove partial archive")
		}
	}()

	ew, err := newEntryWriter(out, format, a.level)
	if err != nil {
		return nil, err
	}

	summary := &models.Summary{
		Source:      source,
		Destination: destination,
		Format:      format,
	}

	w := &walker{
		fs:      a.fs,
		root:    source,
		ew:      ew,
		policy:  a.policy,
		log:     a.log.WithField("source", source),
		summary: summary,
		skip:    newPathSet(destination, tmpPath),
	}
	if err := w.walk(info); err != nil {
		ew.Close()
		return summary, err
	}

	if err := ew.Close(); err != nil {
		return summary, withKind(ErrArchiveCloseFailed, errors.WithMessage(err, "failed to finalize archive"))
	}
	if err := out.Sync(); err != nil {
		return summary, withKind(ErrArchiveCloseFailed, errors.WithMessage(err, "failed to sync archive"))
	}
	if err := out.Close(); err != nil {
		return summary, withKind(ErrArchiveCloseFailed, errors.WithMessage(err, "failed to close archive"))
	}
	if err := a.fs.Rename(tmpPath, destination); err != nil {
		return summary, withKind(ErrArchiveCloseFailed, errors.WithMessage(err, "failed to move archive into place"))
	}
	committed = true

	a.log.WithFields(logrus.Fields{
		"destination": destination,
		"format":      format,
		"files":       summary.Files,
		"directories": summary.Directories,
		"bytes":       summary.Bytes,
		"failures":    len(summary.Failures),
	}).Info("Archive created")

	return summary, nil
}

func (a *Archiver) resolveFormat(destination string) (models.Format, error) {
	if a.format != "" {
		for _, f := range models.Formats {
			if f == a.format {
				return f, nil
			}
		}
		return "", errors.Errorf("unsupported archive format: %q", a.format)
	}
	if f, ok := models.FormatFromPath(destination); ok {
		return f, nil
	}
	return models.FormatZip, nil
}

// pathSet matches filesystem paths regardless of relative or absolute spelling
type pathSet map[string]struct{}

func newPathSet(paths ...string) pathSet {
	s := make(pathSet, len(paths))
	for _, p := range paths {
		s[canonical(p)] = struct{}{}
	}
	return s
}

func (s pathSet) contains(path string) bool {
	_, ok := s[canonical(path)]
	return ok
}

func canonical(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}
