package logging

import (
	"bufio"
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/backmassage/sdrnorm/internal/config"
)

func newTestLogger(format config.LogFormat, verbose bool) (*Logger, *bytes.Buffer, *bytes.Buffer) {
	var stdout, stderr bytes.Buffer
	l := New(Options{
		Stdout:  &stdout,
		Stderr:  &stderr,
		Format:  format,
		Verbose: verbose,
		RunID:   "run-1",
	})
	return l, &stdout, &stderr
}

func TestLogger_ConsoleLevels(t *testing.T) {
	l, stdout, stderr := newTestLogger(config.LogConsole, false)

	l.Info("probing %s", "a.mp4")
	l.Success("done")
	l.Warn("careful")
	l.Error("encode failed")
	l.Debug("hidden")

	out := stdout.String()
	assert.Contains(t, out, "[INFO] probing a.mp4")
	assert.Contains(t, out, "[SUCCESS] done")
	assert.Contains(t, out, "[WARN] careful")
	assert.NotContains(t, out, "encode failed", "errors go to stderr")
	assert.NotContains(t, out, "hidden", "debug requires verbose")
	assert.NotContains(t, out, "run-1", "run id is file/json only")

	assert.Contains(t, stderr.String(), "[ERROR] encode failed")
}

func TestLogger_DebugWhenVerbose(t *testing.T) {
	l, stdout, _ := newTestLogger(config.LogConsole, true)
	l.Debug("ffmpeg %s", "-y")
	assert.Contains(t, stdout.String(), "[DEBUG] ffmpeg -y")
}

func TestLogger_JSONFormat(t *testing.T) {
	l, stdout, stderr := newTestLogger(config.LogJSON, false)
	l.Success("ok")
	l.Error("bad")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(stdout.Bytes()), &entry))
	assert.Equal(t, TagSuccess, entry["level"])
	assert.Equal(t, "ok", entry["message"])
	assert.Equal(t, "run-1", entry[RunIDField])

	require.NoError(t, json.Unmarshal(bytes.TrimSpace(stderr.Bytes()), &entry))
	assert.Equal(t, TagError, entry["level"])
}

func TestLogger_ConcurrentLinesDoNotInterleave(t *testing.T) {
	l, stdout, _ := newTestLogger(config.LogJSON, false)

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			l.Info("worker %d finished", i)
		}(i)
	}
	wg.Wait()

	sc := bufio.NewScanner(stdout)
	lines := 0
	for sc.Scan() {
		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal(sc.Bytes(), &entry), "line %q", sc.Text())
		lines++
	}
	assert.Equal(t, 32, lines)
}

func TestNewLogger_NoFile(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.ColorMode = config.ColorNever
	l, err := NewLogger(&cfg, nil, nil)
	require.NoError(t, err)
	assert.NotEmpty(t, l.RunID())
	assert.NoError(t, l.Close())
}

func TestNewLogger_WithFile(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.ColorMode = config.ColorNever
	cfg.LogFile = filepath.Join(t.TempDir(), "logs", "sdrnorm.log")

	l, err := NewLogger(&cfg, nil, nil)
	require.NoError(t, err)
	l.Info("to file")
	require.NoError(t, l.Close())

	b, err := os.ReadFile(cfg.LogFile)
	require.NoError(t, err)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(b), &entry))
	assert.Equal(t, TagInfo, entry["level"])
	assert.Equal(t, "to file", entry["message"])
	assert.Equal(t, l.RunID(), entry[RunIDField])
}

func TestNop(t *testing.T) {
	l := Nop()
	l.Info("nothing")
	l.Error("nothing")
	assert.NoError(t, l.Close())
}

func TestLogger_WithAddsFieldsHiddenOnConsole(t *testing.T) {
	l, stdout, _ := newTestLogger(config.LogJSON, false)
	l.With(FileField, "a.mp4").With(ProfileField, "pq").Info("planned")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(stdout.Bytes()), &entry))
	assert.Equal(t, "a.mp4", entry[FileField])
	assert.Equal(t, "pq", entry[ProfileField])

	c, cout, _ := newTestLogger(config.LogConsole, false)
	child := c.With(FileField, "a.mp4")
	child.Info("planned")
	assert.NotContains(t, cout.String(), "a.mp4")
	assert.NoError(t, child.Close())
}
