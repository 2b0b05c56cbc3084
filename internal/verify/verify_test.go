package verify

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/backmassage/sdrnorm/internal/config"
	"github.com/backmassage/sdrnorm/internal/logging"
	"github.com/backmassage/sdrnorm/internal/probe"
)

var conforming = probe.NewMetadata("bt709", "bt709", "bt709", "yuv420p")

type fakeProber struct {
	md   map[string]probe.Metadata
	fail map[string]bool
}

func (p *fakeProber) Probe(_ context.Context, path string) (probe.Metadata, error) {
	name := filepath.Base(path)
	if p.fail[name] {
		return probe.Metadata{}, &probe.ProbeError{Path: path, Err: probe.ErrMalformedOutput}
	}
	if md, ok := p.md[name]; ok {
		return md, nil
	}
	return conforming, nil
}

func TestCompare_ConformingHasNoMismatches(t *testing.T) {
	assert.Empty(t, Compare(conforming))
}

func TestCompare_EachFieldProducesOneMismatch(t *testing.T) {
	tests := []struct {
		name string
		md   probe.Metadata
		want Mismatch
	}{
		{"pix_fmt", probe.NewMetadata("bt709", "bt709", "bt709", "yuv420p10le"),
			Mismatch{FieldPixelFormat, "yuv420p", "yuv420p10le"}},
		{"color_space", probe.NewMetadata("bt709", "bt2020nc", "bt709", "yuv420p"),
			Mismatch{FieldColorSpace, "bt709", "bt2020nc"}},
		{"color_primaries", probe.NewMetadata("bt709", "bt709", "bt2020", "yuv420p"),
			Mismatch{FieldPrimaries, "bt709", "bt2020"}},
		{"color_transfer", probe.NewMetadata("", "bt709", "bt709", "yuv420p"),
			Mismatch{FieldTransfer, "bt709", probe.Unknown}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, []Mismatch{tt.want}, Compare(tt.md))
		})
	}
}

func TestCompare_FixedFieldOrder(t *testing.T) {
	got := Compare(probe.NewMetadata("smpte2084", "bt2020nc", "bt2020", "yuv420p10le"))
	var fields []string
	for _, m := range got {
		fields = append(fields, m.Field)
	}
	assert.Equal(t, []string{FieldPixelFormat, FieldColorSpace, FieldPrimaries, FieldTransfer}, fields)
}

func TestFind(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{
		"b_normalized.mov", "a_normalized.mp4", "c_normalized.MKV",
		"a.mp4", "notes_normalized.txt", "_normalized.mp4",
	} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "d_normalized.mp4"), 0o755))

	files, err := Find(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a_normalized.mp4"),
		filepath.Join(dir, "b_normalized.mov"),
		filepath.Join(dir, "c_normalized.MKV"),
	}, files)
}

func TestFind_FollowsSymlinks(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(t.TempDir(), "a_normalized.mp4")
	require.NoError(t, os.WriteFile(target, nil, 0o644))
	link := filepath.Join(dir, "a_normalized.mp4")
	if err := os.Symlink(target, link); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	files, err := Find(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{link}, files)
}

func TestFind_MissingDirHasNoFiles(t *testing.T) {
	files, err := Find(filepath.Join(t.TempDir(), "outputs"))
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestVerifier_Check(t *testing.T) {
	prober := &fakeProber{
		md:   map[string]probe.Metadata{"hdr_normalized.mp4": probe.NewMetadata("smpte2084", "bt709", "bt709", "yuv420p")},
		fail: map[string]bool{"broken_normalized.mp4": true},
	}
	v := &Verifier{Prober: prober}

	ok := v.Check(context.Background(), "ok_normalized.mp4")
	assert.True(t, ok.Passed)
	assert.Empty(t, ok.Mismatches)
	assert.NoError(t, ok.Err)

	bad := v.Check(context.Background(), "hdr_normalized.mp4")
	assert.False(t, bad.Passed)
	assert.Equal(t, []Mismatch{{FieldTransfer, "bt709", "smpte2084"}}, bad.Mismatches)

	broken := v.Check(context.Background(), "broken_normalized.mp4")
	assert.False(t, broken.Passed)
	assert.Empty(t, broken.Mismatches)
	assert.ErrorIs(t, broken.Err, probe.ErrMalformedOutput)
}

func TestVerifier_Run(t *testing.T) {
	t.Run("all pass", func(t *testing.T) {
		v := &Verifier{Prober: &fakeProber{}}
		sum := v.Run(context.Background(), []string{"a_normalized.mp4", "b_normalized.mov"})
		assert.Equal(t, StatusPassed, sum.Status)
		assert.Equal(t, 2, sum.Passed)
		assert.Equal(t, 0, sum.ExitCode())
	})

	t.Run("one failure fails the pass but all files are checked", func(t *testing.T) {
		v := &Verifier{Prober: &fakeProber{fail: map[string]bool{"a_normalized.mp4": true}}}
		sum := v.Run(context.Background(), []string{"a_normalized.mp4", "b_normalized.mov", "c_normalized.mkv"})
		assert.Equal(t, StatusFailed, sum.Status)
		assert.Len(t, sum.Records, 3)
		assert.Equal(t, 2, sum.Passed)
		assert.Equal(t, 1, sum.Failed)
		assert.Equal(t, 1, sum.ExitCode())
	})

	t.Run("no files is distinct from passed", func(t *testing.T) {
		v := &Verifier{Prober: &fakeProber{}}
		sum := v.Run(context.Background(), nil)
		assert.Equal(t, StatusNoFiles, sum.Status)
		assert.NotEqual(t, StatusPassed, sum.Status)
		assert.Equal(t, 1, sum.ExitCode())
	})

	t.Run("cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		v := &Verifier{Prober: &fakeProber{}}
		sum := v.Run(ctx, []string{"a_normalized.mp4"})
		assert.Equal(t, StatusFailed, sum.Status)
		assert.Empty(t, sum.Records)
	})
}

func TestVerifier_LogsMismatches(t *testing.T) {
	var stdout, stderr bytes.Buffer
	log := logging.New(logging.Options{Stdout: &stdout, Stderr: &stderr, Format: config.LogConsole})
	prober := &fakeProber{md: map[string]probe.Metadata{
		"x_normalized.mp4": probe.NewMetadata("bt709", "bt709", "bt709", "yuv420p10le"),
	}}
	v := &Verifier{Prober: prober, Log: log}

	v.Run(context.Background(), []string{"ok_normalized.mp4", "x_normalized.mp4"})

	assert.Contains(t, stdout.String(), "Verifying: ok_normalized.mp4")
	assert.Contains(t, stdout.String(), "[SUCCESS] PASS")
	assert.Contains(t, stderr.String(), "[ERROR] FAIL")
	assert.Contains(t, stderr.String(), "pix_fmt: expected 'yuv420p', got 'yuv420p10le'")
	assert.Contains(t, stdout.String(), "Some files failed verification")
}

func TestWriteReport(t *testing.T) {
	prober := &fakeProber{
		md:   map[string]probe.Metadata{"b_normalized.mp4": probe.NewMetadata("bt709", "bt709", "bt2020", "yuv420p")},
		fail: map[string]bool{"c_normalized.mp4": true},
	}
	sum := (&Verifier{Prober: prober}).Run(context.Background(),
		[]string{"a_normalized.mp4", "b_normalized.mp4", "c_normalized.mp4"})

	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	path := filepath.Join(t.TempDir(), "report.json")
	require.NoError(t, WriteReport(path, NewReport(sum, "run-7", now)))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var got Report
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, StatusFailed, got.Status)
	assert.Equal(t, "run-7", got.RunID)
	assert.True(t, now.Equal(got.GeneratedAt))
	assert.Equal(t, "yuv420p", got.Target.PixelFormat)
	require.Len(t, got.Files, 3)
	assert.True(t, got.Files[0].Passed)
	assert.Equal(t, []Mismatch{{FieldPrimaries, "bt709", "bt2020"}}, got.Files[1].Mismatches)
	assert.Nil(t, got.Files[2].Metadata)
	assert.Contains(t, got.Files[2].Error, "not valid JSON")

	// Rewriting replaces the file in place.
	require.NoError(t, WriteReport(path, NewReport(Summary{Status: StatusNoFiles}, "", now)))
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"status": "no_files"`)
}
