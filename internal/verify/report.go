package verify

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/renameio/v2"

	"github.com/backmassage/sdrnorm/internal/planner"
	"github.com/backmassage/sdrnorm/internal/probe"
)

// Report is the JSON shape written by WriteReport.
type Report struct {
	GeneratedAt time.Time      `json:"generated_at"`
	RunID       string         `json:"run_id,omitempty"`
	Status      Status         `json:"status"`
	Passed      int            `json:"passed"`
	Failed      int            `json:"failed"`
	Target      probe.Metadata `json:"target"`
	Files       []ReportFile   `json:"files"`
}

// ReportFile is one file's entry in a Report.
type ReportFile struct {
	Path       string          `json:"path"`
	Passed     bool            `json:"passed"`
	Metadata   *probe.Metadata `json:"metadata,omitempty"`
	Mismatches []Mismatch      `json:"mismatches,omitempty"`
	Error      string          `json:"error,omitempty"`
}

// NewReport converts a Summary to its JSON report form.
func NewReport(sum Summary, runID string, now time.Time) Report {
	r := Report{
		GeneratedAt: now.UTC(),
		RunID:       runID,
		Status:      sum.Status,
		Passed:      sum.Passed,
		Failed:      sum.Failed,
		Target:      planner.Target(),
		Files:       make([]ReportFile, 0, len(sum.Records)),
	}
	for _, rec := range sum.Records {
		f := ReportFile{Path: rec.Path, Passed: rec.Passed, Mismatches: rec.Mismatches}
		if rec.Err != nil {
			f.Error = rec.Err.Error()
		} else {
			md := rec.Metadata
			f.Metadata = &md
		}
		r.Files = append(r.Files, f)
	}
	return r
}

// WriteReport writes r as indented JSON to path. The file is replaced
// atomically, so readers never see a partial report.
func WriteReport(path string, r Report) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	data = append(data, '\n')

	pendingFile, err := renameio.NewPendingFile(path, renameio.WithPermissions(0o644))
	if err != nil {
		return fmt.Errorf("create pending report file: %w", err)
	}
	defer func() { _ = pendingFile.Cleanup() }()

	if _, err := pendingFile.Write(data); err != nil {
		return fmt.Errorf("write report data: %w", err)
	}
	if err := pendingFile.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("atomically replace report file: %w", err)
	}
	return nil
}
