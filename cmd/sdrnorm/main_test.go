package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pqJSON = `{"streams":[{"color_transfer":"smpte2084","color_space":"bt2020nc","color_primaries":"bt2020","pix_fmt":"yuv420p10le"}]}`

const sdrJSON = `{"streams":[{"color_transfer":"bt709","color_space":"bt709","color_primaries":"bt709","pix_fmt":"yuv420p"}]}`

func runCLI(t *testing.T, args ...string) (int, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), append([]string{"--color=never"}, args...), &stdout, &stderr)
	return code, stdout.String() + stderr.String()
}

// fakeFFprobe writes a script that prints body as ffprobe JSON, or exits 1
// when body is empty.
func fakeFFprobe(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell-script fake binaries need a POSIX shell")
	}
	script := "#!/bin/sh\necho 'Invalid data found when processing input' >&2\nexit 1\n"
	if body != "" {
		script = "#!/bin/sh\ncat <<'JSON'\n" + body + "\nJSON\n"
	}
	path := filepath.Join(t.TempDir(), "ffprobe")
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	return path
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRun_HelpListsExtensions(t *testing.T) {
	code, out := runCLI(t, "--help")
	assert.Equal(t, 0, code)
	assert.Contains(t, out, ".avi/.mkv/.mov/.mp4 file becomes <name>_normalized<ext>")
}

func TestRun_InvalidInputPath(t *testing.T) {
	code, _ := runCLI(t, "--skip-check", filepath.Join(t.TempDir(), "missing.mp4"), "out.mp4")
	assert.Equal(t, 1, code)
}

func TestRun_WrongArgCount(t *testing.T) {
	code, out := runCLI(t, "only-one")
	assert.Equal(t, 1, code)
	assert.Contains(t, out, "accepts 2 arg(s)")
}

func TestRun_DirInputWithFileOutput(t *testing.T) {
	in := t.TempDir()
	out := writeFile(t, t.TempDir(), "out.mp4", "x")
	code, _ := runCLI(t, "--skip-check", in, out)
	assert.Equal(t, 1, code)
}

func TestRun_InvalidConfigFile(t *testing.T) {
	dir := t.TempDir()
	tooMany := writeFile(t, dir, "jobs.yaml", "jobs: 99\n")
	code, out := runCLI(t, "--config", tooMany, "check")
	assert.Equal(t, 1, code)
	assert.Contains(t, out, "jobs must be between")

	typo := writeFile(t, dir, "typo.yaml", "jbos: 2\n")
	code, _ = runCLI(t, "--config", typo, "check")
	assert.Equal(t, 1, code)
}

func TestRun_BatchDryRun(t *testing.T) {
	in := t.TempDir()
	out := filepath.Join(t.TempDir(), "outputs")
	writeFile(t, in, "a.mp4", "input")
	writeFile(t, in, "b.mov", "input")
	writeFile(t, in, "readme.txt", "not a video")
	metricsFile := filepath.Join(t.TempDir(), "sdrnorm.prom")

	code, _ := runCLI(t, "--skip-check", "--dry-run", "-j", "2",
		"--ffprobe", fakeFFprobe(t, pqJSON), "--metrics-file", metricsFile, in, out)
	assert.Equal(t, 0, code)
	assert.NoDirExists(t, out, "dry run writes nothing")

	data, err := os.ReadFile(metricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), `sdrnorm_files_total{outcome="dry_run",profile="pq"} 2`)
}

func TestRun_BatchWithoutVideosExitsZero(t *testing.T) {
	in := t.TempDir()
	writeFile(t, in, "notes.txt", "x")
	code, _ := runCLI(t, "--skip-check", in, filepath.Join(t.TempDir(), "out"))
	assert.Equal(t, 0, code)
}

func TestRun_SingleFileProbeFailureExitsOne(t *testing.T) {
	in := writeFile(t, t.TempDir(), "clip.mp4", "garbage")
	code, _ := runCLI(t, "--skip-check", "--ffprobe", fakeFFprobe(t, ""), in, filepath.Join(t.TempDir(), "o.mp4"))
	assert.Equal(t, 1, code)
}

func TestRun_OutputSameAsInputExitsOne(t *testing.T) {
	in := writeFile(t, t.TempDir(), "clip.mp4", "source")
	code, out := runCLI(t, "--skip-check", in, in)
	assert.Equal(t, 1, code)
	assert.Contains(t, out, "output path is the input file")

	data, err := os.ReadFile(in)
	require.NoError(t, err)
	assert.Equal(t, "source", string(data))
}

func TestRun_PreflightFailureExitsOne(t *testing.T) {
	in := writeFile(t, t.TempDir(), "clip.mp4", "x")
	code, _ := runCLI(t, "--ffmpeg", filepath.Join(t.TempDir(), "no-ffmpeg"), in, "o.mp4")
	assert.Equal(t, 1, code)
}

func TestVerify_NoFilesExitsOne(t *testing.T) {
	code, _ := runCLI(t, "verify", t.TempDir())
	assert.Equal(t, 1, code)
}

func TestVerify_PassAndReport(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a_normalized.mp4", "x")
	writeFile(t, dir, "a.mp4", "x")
	report := filepath.Join(t.TempDir(), "report.json")

	code, _ := runCLI(t, "--ffprobe", fakeFFprobe(t, sdrJSON), "verify", "--report", report, dir)
	assert.Equal(t, 0, code)

	data, err := os.ReadFile(report)
	require.NoError(t, err)
	var got struct {
		Status string `json:"status"`
		Passed int    `json:"passed"`
	}
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "passed", got.Status)
	assert.Equal(t, 1, got.Passed)
}

func TestVerify_MismatchExitsOne(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a_normalized.mkv", "x")
	code, _ := runCLI(t, "--ffprobe", fakeFFprobe(t, pqJSON), "verify", "--dir", dir)
	assert.Equal(t, 1, code)
}

func TestAnalyze(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "hdr.mkv", "x")
	code, out := runCLI(t, "--ffprobe", fakeFFprobe(t, pqJSON), "analyze", dir)
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "hdr.mkv")
	assert.Contains(t, out, "smpte2084")
}
