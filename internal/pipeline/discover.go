package pipeline

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/backmassage/sdrnorm/internal/naming"
)

// Discover lists the immediate entries of inputDir (no recursion), keeps
// regular files (directly or through a symlink) with an allow-listed video extension, and returns the paths
// sorted lexicographically for deterministic processing order.
func Discover(inputDir string) ([]string, error) {
	entries, err := os.ReadDir(inputDir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, e := range entries {
		if !naming.IsRegularFile(inputDir, e) {
			continue
		}
		if naming.IsVideoFile(e.Name()) {
			files = append(files, filepath.Join(inputDir, e.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}
