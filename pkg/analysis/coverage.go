package analysis

import (
	"path/filepath"
	"strings"

	"github.com/blazetool/targetmap/pkg/project"
	"github.com/blazetool/targetmap/pkg/projectview"
)

// UnownedFile represents a source file that no target in the map declares
type UnownedFile struct {
	Path    string `json:"path"`    // Workspace-relative path to the file
	Package string `json:"package"` // Inferred package (e.g., "//util")
}

// FindUnownedSources compares source files found in the workspace with the
// sources declared by the synced target map and returns the unowned ones.
// Files whose package falls outside the project view are skipped, since no
// target for them was imported in the first place.
func FindUnownedSources(snap *project.Snapshot, view *projectview.View, allFiles []string) []UnownedFile {
	var unowned []UnownedFile
	for _, file := range allFiles {
		rel := normalizePath(file)
		pkg := inferPackage(rel)

		if view != nil && !view.IncludesPackage(strings.TrimPrefix(pkg, "//")) {
			continue
		}

		if len(snap.OwningTargets(rel)) == 0 {
			unowned = append(unowned, UnownedFile{
				Path:    rel,
				Package: pkg,
			})
		}
	}

	return unowned
}

// normalizePath normalizes a workspace-relative file path for lookup
func normalizePath(path string) string {
	path = filepath.ToSlash(filepath.Clean(path))
	return strings.TrimPrefix(path, "./")
}

// inferPackage attempts to determine the Bazel package from a file path
// e.g., "util/strings.cc" -> "//util"
func inferPackage(filePath string) string {
	dir := filepath.Dir(normalizePath(filePath))
	if dir == "." || dir == "" || dir == "/" {
		return "//"
	}

	return "//" + filepath.ToSlash(dir)
}
