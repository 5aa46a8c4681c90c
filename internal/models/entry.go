package models

// Entry is one record of an archive as seen by a reader
type Entry struct {
	Path  string `json:"path"` // Forward-slash relative path, directories end in "/"
	IsDir bool   `json:"is_dir"`
	Size  int64  `json:"size"`
}

// EntryFailure records a node that could not be archived. Partial is set
// when the entry header was written before its content failed, so the
// archive holds a truncated entry under Path.
type EntryFailure struct {
	Path    string `json:"path"`
	Op      string `json:"op"`
	Error   string `json:"error"`
	Partial bool   `json:"partial,omitempty"`
}

// Summary describes the outcome of one archive run
type Summary struct {
	Source      string         `json:"source"`
	Destination string         `json:"destination"`
	Format      Format         `json:"format"`
	Files       int            `json:"files"`
	Directories int            `json:"directories"`
	Bytes       int64          `json:"bytes"`
	Failures    []EntryFailure `json:"failures,omitempty"`
}

// Entries returns the number of entries written
func (s *Summary) Entries() int {
	return s.Files + s.Directories
}

// Complete reports whether every node made it into the archive
func (s *Summary) Complete() bool {
	return len(s.Failures) == 0
}
