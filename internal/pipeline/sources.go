package pipeline

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
)

var sourceExtensions = map[string]bool{
	".js":  true,
	".mjs": true,
	".cjs": true,
}

var ignoredDirs = map[string]bool{
	"node_modules": true,
}

// ListSourceFiles walks root and returns every JavaScript source file in
// deterministic lexical order, skipping node_modules and dot
// directories. A single-file root is returned as-is.
func ListSourceFiles(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && (ignoredDirs[d.Name()] || strings.HasPrefix(d.Name(), ".")) {
				return filepath.SkipDir
			}
			return nil
		}
		if sourceExtensions[filepath.Ext(d.Name())] {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", root, err)
	}
	return files, nil
}
