package ffmpeg

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/backmassage/sdrnorm/internal/classify"
	"github.com/backmassage/sdrnorm/internal/planner"
)

func TestExecutor_PassesBuiltArgs(t *testing.T) {
	dir := t.TempDir()
	argsFile := filepath.Join(dir, "args.txt")
	bin := fakeFFmpeg(t, dir, `printf '%s\n' "$@" > '`+argsFile+`'
`)

	plan := planner.BuildPlan(classify.ProfileSDR)
	err := NewExecutor(bin).Encode(context.Background(), Request{
		InputPath: "in.mov", OutputPath: "out.mov", Plan: &plan,
	})
	require.NoError(t, err)

	data, err := os.ReadFile(argsFile)
	require.NoError(t, err)
	got := strings.Split(strings.TrimSpace(string(data)), "\n")
	assert.Equal(t, Build(&plan, "in.mov", "out.mov"), got)
}

func TestExecutor_FailureCapturesStderr(t *testing.T) {
	dir := t.TempDir()
	bin := fakeFFmpeg(t, dir, `echo "Input #0, matroska" >&2
echo "No such filter: 'zscale'" >&2
exit 1
`)

	var tee bytes.Buffer
	ex := NewExecutor(bin)
	ex.Tee = &tee

	plan := planner.BuildPlan(classify.ProfileHLG)
	err := ex.Encode(context.Background(), Request{InputPath: "hlg.mkv", OutputPath: "o.mkv", Plan: &plan})
	require.Error(t, err)

	var ee *EncodeError
	require.True(t, errors.As(err, &ee))
	assert.Equal(t, "hlg.mkv", ee.Input)
	assert.Contains(t, ee.Stderr, "No such filter")
	assert.Contains(t, ee.Hint(), "zimg")
	assert.Contains(t, tee.String(), "matroska", "stderr should be tee'd when Tee is set")
}

func TestNewExecutor_DefaultBinary(t *testing.T) {
	assert.Equal(t, "ffmpeg", NewExecutor("").Binary())
	assert.Equal(t, "ffmpeg", (&Executor{}).Binary())
	assert.Equal(t, "/opt/ffmpeg", NewExecutor("/opt/ffmpeg").Binary())
}

func fakeFFmpeg(t *testing.T, dir, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell-script fakes need a POSIX shell")
	}
	path := filepath.Join(dir, "ffmpeg")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755))
	return path
}
