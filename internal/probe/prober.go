package probe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"unicode/utf8"
)

// maxStderr bounds how much ffprobe diagnostic text is kept in a ProbeError.
const maxStderr = 4096

// Prober reads color metadata for a single media file.
type Prober interface {
	Probe(ctx context.Context, path string) (Metadata, error)
}

// FFprobe is the exec-backed Prober.
type FFprobe struct {
	BinaryPath string // defaults to "ffprobe"
}

// NewFFprobe returns an FFprobe using binaryPath, or "ffprobe" when empty.
func NewFFprobe(binaryPath string) *FFprobe {
	if binaryPath == "" {
		binaryPath = "ffprobe"
	}
	return &FFprobe{BinaryPath: binaryPath}
}

// Args returns the ffprobe arguments used to inspect path.
func Args(path string) []string {
	return []string{
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=color_transfer,color_space,color_primaries,pix_fmt",
		"-of", "json",
		path,
	}
}

// Probe runs ffprobe against path and parses its first video stream. Every
// failure is returned as a *ProbeError.
func (p *FFprobe) Probe(ctx context.Context, path string) (Metadata, error) {
	bin := p.BinaryPath
	if bin == "" {
		bin = "ffprobe"
	}

	// #nosec G204 -- binary comes from config; path is passed as a single argument.
	cmd := exec.CommandContext(ctx, bin, Args(path)...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		return Metadata{}, &ProbeError{
			Path:   path,
			Stderr: truncate(strings.TrimSpace(stderr.String()), maxStderr),
			Err:    fmt.Errorf("%w: %v", ErrProbeFailed, err),
		}
	}

	md, err := ParseJSON(out)
	if err != nil {
		return Metadata{}, &ProbeError{Path: path, Err: err}
	}
	return md, nil
}

// ParseJSON converts raw ffprobe JSON output into Metadata. Only the first
// stream entry is consumed. Exported for testing without a real ffprobe binary.
func ParseJSON(data []byte) (Metadata, error) {
	var raw ffprobeOutput
	if err := json.Unmarshal(data, &raw); err != nil {
		return Metadata{}, fmt.Errorf("%w: %v", ErrMalformedOutput, err)
	}
	if len(raw.Streams) == 0 {
		return Metadata{}, ErrNoVideoStream
	}
	s := raw.Streams[0]
	return NewMetadata(s.ColorTransfer, s.ColorSpace, s.ColorPrimaries, s.PixFmt), nil
}

// IsProbeError reports whether err carries a *ProbeError.
func IsProbeError(err error) bool {
	var pe *ProbeError
	return errors.As(err, &pe)
}

// --- ffprobe JSON wire types ---

type ffprobeOutput struct {
	Streams []ffprobeStream `json:"streams"`
}

type ffprobeStream struct {
	PixFmt         string `json:"pix_fmt"`
	ColorTransfer  string `json:"color_transfer"`
	ColorPrimaries string `json:"color_primaries"`
	ColorSpace     string `json:"color_space"`
}

// truncate caps s at n bytes, backing up so a multi-byte rune is never split.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}
