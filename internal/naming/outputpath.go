package naming

import (
	"path/filepath"
	"strings"
)

// Suffix is appended to the input stem in batch mode:
// "clip.mov" becomes "clip_normalized.mov".
const Suffix = "_normalized"

// OutputPath returns outDir/<stem>_normalized<ext>. The extension keeps its
// original case.
func OutputPath(input, outDir string) string {
	base := filepath.Base(input)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	return filepath.Join(outDir, stem+Suffix+ext)
}

// IsNormalized reports whether name (a base name or path) carries the
// batch output suffix directly before its extension.
func IsNormalized(name string) bool {
	base := filepath.Base(name)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return len(stem) > len(Suffix) && strings.HasSuffix(stem, Suffix)
}
