package pipeline

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/backmassage/sdrnorm/internal/classify"
	"github.com/backmassage/sdrnorm/internal/display"
	"github.com/backmassage/sdrnorm/internal/logging"
	"github.com/backmassage/sdrnorm/internal/probe"
	"github.com/backmassage/sdrnorm/internal/term"
)

// AnalysisRow holds the probed metadata and classification for one file.
type AnalysisRow struct {
	Path     string
	Metadata probe.Metadata
	Profile  classify.Profile
	Err      error // Probe failure; Metadata and Profile are unset.
}

// Name returns the row's base file name.
func (r AnalysisRow) Name() string { return filepath.Base(r.Path) }

// Analyzer probes and classifies files without encoding anything.
type Analyzer struct {
	Prober probe.Prober
	Log    *logging.Logger

	// Out receives the table and, when Progress is set, an inline
	// \r-overwritten probe counter.
	Out      io.Writer
	Progress bool
}

// Analyze probes every file in order. Probe failures become rows with Err
// set. It stops early, returning the rows so far, when ctx is cancelled.
func (a *Analyzer) Analyze(ctx context.Context, files []string) []AnalysisRow {
	rows := make([]AnalysisRow, 0, len(files))
	var failed int
	for i, path := range files {
		if ctx.Err() != nil {
			a.clearProgress()
			a.Log.Warn("Interrupted")
			break
		}
		a.printProgress(i+1, len(files), failed, filepath.Base(path))

		md, err := a.Prober.Probe(ctx, path)
		if err != nil {
			failed++
			a.clearProgress()
			a.Log.Warn("Skip (probe failed): %s", filepath.Base(path))
			rows = append(rows, AnalysisRow{Path: path, Err: err})
			continue
		}
		rows = append(rows, AnalysisRow{Path: path, Metadata: md, Profile: classify.Classify(md)})
	}
	a.clearProgress()
	return rows
}

// PrintTable writes one line per row with the four probed fields and the
// resulting profile.
func PrintTable(w io.Writer, rows []AnalysisRow) {
	headers := []string{"File", "Transfer", "Primaries", "Color Space", "Pix Fmt", "Profile"}
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}

	cells := make([][]string, len(rows))
	for i, r := range rows {
		c := []string{display.Truncate(r.Name(), 50), "-", "-", "-", "-", "probe failed"}
		if r.Err == nil {
			c = []string{
				display.Truncate(r.Name(), 50),
				r.Metadata.Transfer,
				r.Metadata.Primaries,
				r.Metadata.ColorSpace,
				r.Metadata.PixelFormat,
				r.Profile.String(),
			}
		}
		for j, s := range c {
			if n := len([]rune(s)); n > widths[j] {
				widths[j] = n
			}
		}
		cells[i] = c
	}

	var header strings.Builder
	header.WriteString(" ")
	for i, h := range headers {
		fmt.Fprintf(&header, " %-*s", widths[i], h)
	}
	fmt.Fprintln(w, header.String())
	fmt.Fprintln(w, "  "+strings.Repeat("─", len(header.String())-2))

	for i, c := range cells {
		var line strings.Builder
		line.WriteString(" ")
		last := len(c) - 1
		for j, s := range c[:last] {
			fmt.Fprintf(&line, " %s", pad(s, widths[j]))
		}
		// Pad before painting so escape bytes do not count toward the width.
		fmt.Fprintf(&line, " %s", term.Paint(profileColor(rows[i]), pad(c[last], widths[last])))
		fmt.Fprintln(w, strings.TrimRight(line.String(), " "))
	}
	fmt.Fprintln(w)
}

// LogAnalysisSummary logs per-profile counts and probe failures.
func LogAnalysisSummary(log *logging.Logger, rows []AnalysisRow) {
	counts := make(map[classify.Profile]int)
	var failed int
	for _, r := range rows {
		if r.Err != nil {
			failed++
			continue
		}
		counts[r.Profile]++
	}

	log.Info("Analyzed %d files", len(rows))
	for _, p := range classify.Profiles() {
		if n := counts[p]; n > 0 {
			log.Info("  %-14s %d", p.String()+":", n)
		}
	}
	if n := counts[classify.ProfileHeuristicHDR]; n > 0 {
		log.Warn("  %d file(s) look HDR without an HLG/PQ transfer tag; they will use the fallback tone map", n)
	}
	if failed > 0 {
		log.Error("  %d file(s) could not be probed", failed)
	}
	if failed == 0 && counts[classify.ProfileHeuristicHDR] == 0 {
		log.Success("  All files classified unambiguously")
	}
}

func pad(s string, width int) string {
	if n := len([]rune(s)); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}

func profileColor(r AnalysisRow) string {
	switch {
	case r.Err != nil:
		return term.Red
	case r.Profile == classify.ProfileHeuristicHDR:
		return term.Yellow
	case r.Profile.IsHDR():
		return term.Orange
	default:
		return ""
	}
}

// printProgress shows a live probe counter when Progress is set; otherwise
// it is a no-op (the skip warnings already provide enough breadcrumbs in
// piped/logged output).
func (a *Analyzer) printProgress(current, total, failed int, name string) {
	if !a.Progress || a.Out == nil {
		return
	}
	status := fmt.Sprintf("  Probing [%d/%d] %d%% ", current, total, current*100/total)
	if failed > 0 {
		status += fmt.Sprintf("(%d failed) ", failed)
	}
	status += display.Truncate(name, 40)

	// Pad to 80 chars to overwrite previous longer lines, then \r.
	fmt.Fprintf(a.Out, "\r%s", pad(status, 80))
}

// clearProgress erases the inline progress line.
func (a *Analyzer) clearProgress() {
	if !a.Progress || a.Out == nil {
		return
	}
	fmt.Fprintf(a.Out, "\r%s\r", strings.Repeat(" ", 80))
}
