package finder

import (
	"io/fs"
	"path/filepath"
	"slices"
	"strings"
)

// FindSourceFiles walks the workspace directory and returns workspace-relative
// forward-slash paths of files matching the given extensions, excluding bazel-*
// directories and other build artifacts.
func FindSourceFiles(workspaceRoot string, exts []string) ([]string, error) {
	var sourceFiles []string

	err := filepath.WalkDir(workspaceRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		// Skip bazel-* directories (symlinks to build outputs)
		if d.IsDir() {
			name := d.Name()
			if strings.HasPrefix(name, "bazel-") || name == ".git" {
				return filepath.SkipDir
			}
			return nil
		}

		if !slices.Contains(exts, filepath.Ext(path)) {
			return nil
		}

		rel, err := filepath.Rel(workspaceRoot, path)
		if err != nil {
			return err
		}
		sourceFiles = append(sourceFiles, filepath.ToSlash(rel))

		return nil
	})

	return sourceFiles, err
}
