package models

import (
	"fmt"
	"strings"
)

// Format identifies an archive encoding
type Format string

const (
	FormatZip    Format = "zip"
	FormatTarGz  Format = "tar.gz"
	FormatTarLz4 Format = "tar.lz4"
)

// Formats lists every supported format
var Formats = []Format{FormatZip, FormatTarGz, FormatTarLz4}

// ParseFormat converts a user supplied name into a Format
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "zip":
		return FormatZip, nil
	case "tar.gz", "tgz", "targz":
		return FormatTarGz, nil
	case "tar.lz4", "lz4":
		return FormatTarLz4, nil
	}
	return "", fmt.Errorf("unknown archive format: %q (available: zip, tar.gz, tar.lz4)", s)
}

// FormatFromPath infers the format from a file name extension
func FormatFromPath(path string) (Format, bool) {
	lower := strings.ToLower(path)
	switch {
	case strings.HasSuffix(lower, ".zip"):
		return FormatZip, true
	case strings.HasSuffix(lower, ".tar.gz"), strings.HasSuffix(lower, ".tgz"):
		return FormatTarGz, true
	case strings.HasSuffix(lower, ".tar.lz4"):
		return FormatTarLz4, true
	}
	return "", false
}

// UnmarshalText lets config decoding accept format names
func (f *Format) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*f = ""
		return nil
	}
	parsed, err := ParseFormat(string(text))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

// Policy decides what happens when a single node cannot be archived
type Policy string

const (
	// PolicyContinue logs the failure, records it and keeps walking
	PolicyContinue Policy = "continue"
	// PolicyAbort stops at the first failure and discards the partial archive
	PolicyAbort Policy = "abort"
)

// ParsePolicy converts a user supplied name into a Policy
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "continue":
		return PolicyContinue, nil
	case "abort", "fail-fast":
		return PolicyAbort, nil
	}
	return "", fmt.Errorf("unknown error policy: %q (available: continue, abort)", s)
}

// UnmarshalText lets config decoding accept policy names
func (p *Policy) UnmarshalText(text []byte) error {
	parsed, err := ParsePolicy(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
