package archiver

import (
	"github.com/pkg/errors"
)

var (
	// ErrSourceNotFound is returned when the source root is missing or not a directory
	ErrSourceNotFound = errors.New("source directory not found")
	// ErrDestinationUnavailable is returned when the output file cannot be created
	ErrDestinationUnavailable = errors.New("destination unavailable")
	// ErrEntryWriteFailed marks a node that could not be read or written
	ErrEntryWriteFailed = errors.New("entry write failed")
	// ErrArchiveCloseFailed is returned when the archive cannot be finalized
	ErrArchiveCloseFailed = errors.New("archive close failed")
)

// EntryError describes a failure to archive a single node
type EntryError struct {
	Path string // Relative path of the node
	Op   string // stat, list, open, header, copy
	Err  error
}

func (e *EntryError) Error() string {
	return e.Op + " " + e.Path + ": " + e.Err.Error()
}

func (e *EntryError) Unwrap() error { return e.Err }

// Is matches ErrEntryWriteFailed so callers can test the class of failure
func (e *EntryError) Is(target error) bool {
	return target == ErrEntryWriteFailed
}

// kindError tags an underlying cause with one of the fatal sentinels
type kindError struct {
	kind error
	err  error
}

func (e *kindError) Error() string {
	return e.kind.Error() + ": " + e.err.Error()
}

func (e *kindError) Unwrap() error { return e.err }

func (e *kindError) Is(target error) bool {
	return target == e.kind
}

func withKind(kind, err error) error {
	return &kindError{kind: kind, err: err}
}
