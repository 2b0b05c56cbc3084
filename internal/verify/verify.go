// Package verify re-probes produced files and checks them against the fixed
// Rec.709 SDR target. Every file is checked even after a failure; the
// overall result is the AND of the per-file results, and finding no files
// at all is its own failure.
package verify

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/backmassage/sdrnorm/internal/naming"
	"github.com/backmassage/sdrnorm/internal/planner"
	"github.com/backmassage/sdrnorm/internal/probe"
)

// Field names as reported by ffprobe, in comparison order.
const (
	FieldPixelFormat = "pix_fmt"
	FieldColorSpace  = "color_space"
	FieldPrimaries   = "color_primaries"
	FieldTransfer    = "color_transfer"
)

// Mismatch is one field whose actual value differs from the target.
type Mismatch struct {
	Field    string `json:"field"`
	Expected string `json:"expected"`
	Actual   string `json:"actual"`
}

// Record is the verification result for one file. A probe failure leaves
// Mismatches empty and sets Err.
type Record struct {
	Path       string
	Passed     bool
	Mismatches []Mismatch
	Metadata   probe.Metadata
	Err        error
}

// Status is the overall outcome of a verification pass.
type Status string

const (
	StatusPassed  Status = "passed"
	StatusFailed  Status = "failed"
	StatusNoFiles Status = "no_files"
)

// Summary aggregates a verification pass.
type Summary struct {
	Status  Status
	Records []Record
	Passed  int
	Failed  int
}

// ExitCode returns 0 only when every file passed.
func (s Summary) ExitCode() int {
	if s.Status == StatusPassed {
		return 0
	}
	return 1
}

// Compare checks actual against the target profile and returns one
// Mismatch per differing field, in a fixed order.
func Compare(actual probe.Metadata) []Mismatch {
	target := planner.Target()
	fields := []struct {
		name             string
		expected, actual string
	}{
		{FieldPixelFormat, target.PixelFormat, actual.PixelFormat},
		{FieldColorSpace, target.ColorSpace, actual.ColorSpace},
		{FieldPrimaries, target.Primaries, actual.Primaries},
		{FieldTransfer, target.Transfer, actual.Transfer},
	}

	var out []Mismatch
	for _, f := range fields {
		if f.actual != f.expected {
			out = append(out, Mismatch{Field: f.name, Expected: f.expected, Actual: f.actual})
		}
	}
	return out
}

// Find returns the batch outputs in dir: allow-listed video files whose
// stem ends in the normalized suffix, sorted. A missing dir yields no files.
func Find(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var files []string
	for _, e := range entries {
		if !naming.IsRegularFile(dir, e) {
			continue
		}
		if naming.IsVideoFile(e.Name()) && naming.IsNormalized(e.Name()) {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}
