package fileutil

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// RemoveIfExists deletes path and treats an already-missing file as success.
func RemoveIfExists(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// HasExtension reports whether name ends in one of exts. When caseSensitive
// is false the comparison ignores case, so ".MKV" matches ".mkv".
func HasExtension(name string, exts []string, caseSensitive bool) bool {
	ext := filepath.Ext(name)
	if ext == "" {
		return false
	}
	for _, candidate := range exts {
		if caseSensitive {
			if ext == candidate {
				return true
			}
			continue
		}
		if strings.EqualFold(ext, candidate) {
			return true
		}
	}
	return false
}

// BaseName returns the file name of path without its final extension.
func BaseName(path string) string {
	name := filepath.Base(path)
	return strings.TrimSuffix(name, filepath.Ext(name))
}
