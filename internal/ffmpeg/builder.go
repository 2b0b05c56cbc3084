package ffmpeg

import (
	"strconv"
	"strings"

	"github.com/backmassage/sdrnorm/internal/planner"
)

// FilterChain serializes stages into an ffmpeg -vf expression: stages are
// joined with commas, and each stage is its name, "=", then its options
// joined with colons. Positional options are written as bare values.
func FilterChain(stages []planner.FilterStage) string {
	parts := make([]string, 0, len(stages))
	for _, s := range stages {
		parts = append(parts, stageString(s))
	}
	return strings.Join(parts, ",")
}

func stageString(s planner.FilterStage) string {
	if len(s.Params) == 0 {
		return s.Name
	}
	opts := make([]string, 0, len(s.Params))
	for _, p := range s.Params {
		if p.Key == "" {
			opts = append(opts, p.Value)
			continue
		}
		opts = append(opts, p.Key+"="+p.Value)
	}
	return s.Name + "=" + strings.Join(opts, ":")
}

// Build constructs the ffmpeg argument slice (without the binary name) for
// one file. Output is always overwritten and audio is copied untouched.
func Build(plan *planner.Plan, inputPath, outputPath string) []string {
	args := make([]string, 0, 20)

	// --- Preamble ---
	args = append(args, "-hide_banner", "-nostdin", "-y")

	// --- Input ---
	args = append(args, "-i", inputPath)

	// --- Video filter chain ---
	if len(plan.Stages) > 0 {
		args = append(args, "-vf", FilterChain(plan.Stages))
	}

	// --- Video codec ---
	enc := plan.Encode
	args = append(args,
		"-c:v", enc.VideoCodec,
		"-preset", enc.Preset,
		"-crf", strconv.Itoa(enc.CRF),
	)

	// --- Audio ---
	args = append(args, "-c:a", string(enc.Audio))

	// --- Output ---
	args = append(args, outputPath)
	return args
}

// CommandLine renders binary and args as a single shell-like line for logs
// and dry runs. Arguments containing spaces or shell metacharacters are
// single-quoted.
func CommandLine(binary string, args []string) string {
	parts := make([]string, 0, len(args)+1)
	parts = append(parts, quote(binary))
	for _, a := range args {
		parts = append(parts, quote(a))
	}
	return strings.Join(parts, " ")
}

func quote(s string) string {
	if s == "" {
		return "''"
	}
	if !strings.ContainsAny(s, " \t\n'\"\\$`&|;<>()*?[]{}!#~") {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
