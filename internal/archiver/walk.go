package archiver

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/pders01/reportzip/internal/models"
)

// node is a pending item on the traversal stack
type node struct {
	path string
	info os.FileInfo
}

type walker struct {
	fs      afero.Fs
	root    string
	ew      entryWriter
	policy  models.Policy
	log     logrus.FieldLogger
	summary *models.Summary
	skip    pathSet
}

// walk visits the tree depth-first using an explicit stack. Children are
// pushed in reverse name order so entries come out lexically sorted.
func (w *walker) walk(rootInfo os.FileInfo) error {
	stack := []node{{path: w.root, info: rootInfo}}

	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		children, err := w.visit(n)
		if err != nil {
			return err
		}
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, children[i])
		}
	}
	return nil
}

// visit writes the entry for n and returns the nodes to descend into
func (w *walker) visit(n node) ([]node, error) {
	isRoot := n.path == w.root
	if !isRoot && w.skip.contains(n.path) {
		return nil, nil
	}

	rel := ""
	if !isRoot {
		r, err := filepath.Rel(w.root, n.path)
		if err != nil {
			return nil, w.fail(n.path, "stat", err)
		}
		rel = filepath.ToSlash(r)
	}

	mode := n.info.Mode()
	switch {
	case mode&os.ModeSymlink != 0:
		// Links are resolved but never descended, which rules out cycles.
		target, err := w.fs.Stat(n.path)
		if err != nil {
			return nil, w.fail(rel, "stat", err)
		}
		if target.IsDir() {
			return nil, w.writeDir(rel, target)
		}
		if !target.Mode().IsRegular() {
			return nil, w.fail(rel, "stat", errors.Errorf("unsupported file type %s", target.Mode().Type()))
		}
		return nil, w.writeFile(rel, n.path)

	case mode.IsDir():
		if !isRoot {
			if err := w.writeDir(rel, n.info); err != nil {
				return nil, err
			}
		}
		infos, err := afero.ReadDir(w.fs, n.path)
		if err != nil {
			if isRoot {
				return nil, w.fail(".", "list", err)
			}
			return nil, w.fail(rel, "list", err)
		}
		children := make([]node, 0, len(infos))
		for _, info := range infos {
			children = append(children, node{path: filepath.Join(n.path, info.Name()), info: info})
		}
		return children, nil

	case mode.IsRegular():
		return nil, w.writeFile(rel, n.path)
	}

	return nil, w.fail(rel, "stat", errors.Errorf("unsupported file type %s", mode.Type()))
}

func (w *walker) writeDir(rel string, info os.FileInfo) error {
	if err := w.ew.WriteDir(rel, info); err != nil {
		return w.fail(rel+"/", "write", err)
	}
	w.summary.Directories++
	w.log.WithField("entry", rel+"/").Debug("Added directory")
	return nil
}

func (w *walker) writeFile(rel, path string) error {
	f, err := w.fs.Open(path)
	if err != nil {
		return w.fail(rel, "open", err)
	}
	defer f.Close()

	// Stat the open handle so the header matches what is actually read.
	info, err := f.Stat()
	if err != nil {
		return w.fail(rel, "stat", err)
	}

	n, err := w.ew.WriteFile(rel, info, f)
	if err != nil {
		var partial *copyError
		if errors.As(err, &partial) {
			return w.record(models.EntryFailure{Path: rel, Op: "copy", Partial: true}, partial.err)
		}
		return w.fail(rel, "write", err)
	}
	w.summary.Files++
	w.summary.Bytes += n
	w.log.WithFields(logrus.Fields{"entry": rel, "bytes": n}).Debug("Added file")
	return nil
}

// fail records a node failure. It returns a non-nil error only when the
// policy says the whole run must stop.
func (w *walker) fail(rel, op string, err error) error {
	return w.record(models.EntryFailure{Path: rel, Op: op}, err)
}

func (w *walker) record(failure models.EntryFailure, err error) error {
	failure.Error = err.Error()
	w.summary.Failures = append(w.summary.Failures, failure)

	log := w.log.WithError(err).WithFields(logrus.Fields{"entry": failure.Path, "op": failure.Op})
	if failure.Partial {
		log = log.WithField("partial", true)
	}
	if w.policy == models.PolicyAbort {
		log.Error("Failed to archive entry, aborting")
		return &EntryError{Path: failure.Path, Op: failure.Op, Err: err}
	}
	if failure.Partial {
		log.Warn("Entry truncated in archive")
		return nil
	}
	log.Warn("Failed to archive entry, skipping")
	return nil
}
