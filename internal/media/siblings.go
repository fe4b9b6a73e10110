package media

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// SiblingFiles returns every decodable file in path's directory, sorted
// case-insensitively, and the index of path among them. It returns nil when
// the directory holds fewer than two such files.
func SiblingFiles(path string) ([]string, int) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, 0
	}
	dir := filepath.Dir(absPath)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, 0
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || !IsSupportedExt(filepath.Ext(e.Name())) {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	if len(files) < 2 {
		return nil, 0
	}

	sort.Slice(files, func(i, j int) bool {
		return strings.ToLower(filepath.Base(files[i])) < strings.ToLower(filepath.Base(files[j]))
	})
	for i, f := range files {
		if f == absPath {
			return files, i
		}
	}
	return nil, 0
}
