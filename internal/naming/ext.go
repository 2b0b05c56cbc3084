package naming

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// videoExtensions is the container allow-list for batch mode and verify
// (lowercase, with leading dot).
var videoExtensions = map[string]bool{
	".mp4": true,
	".mov": true,
	".mkv": true,
	".avi": true,
}

// IsVideoFile reports whether name has an allow-listed extension. Matching
// is case-insensitive.
func IsVideoFile(name string) bool {
	return videoExtensions[strings.ToLower(filepath.Ext(name))]
}

// VideoExtensions returns the allow-list, sorted.
func VideoExtensions() []string {
	exts := make([]string, 0, len(videoExtensions))
	for ext := range videoExtensions {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// IsRegularFile reports whether the directory entry e in dir is a regular
// file, following a symlink to its target.
func IsRegularFile(dir string, e fs.DirEntry) bool {
	switch {
	case e.Type().IsRegular():
		return true
	case e.Type()&fs.ModeSymlink == 0:
		return false
	}
	fi, err := os.Stat(filepath.Join(dir, e.Name()))
	return err == nil && fi.Mode().IsRegular()
}
