// Package projectview scopes a sync to a subset of the workspace. A view is
// a list of glob patterns over package paths; a leading "-" excludes. An
// empty view includes everything.
package projectview

import (
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// View holds the include and exclude patterns of a project view
type View struct {
	include []string
	exclude []string
}

// Parse builds a view from raw patterns. Patterns use doublestar glob
// syntax over slash-separated package paths, e.g. "java/com/app/**".
func Parse(patterns []string) (*View, error) {
	v := &View{}

	for _, raw := range patterns {
		pattern := strings.TrimSpace(raw)
		if pattern == "" {
			continue
		}

		exclude := false
		if strings.HasPrefix(pattern, "-") {
			exclude = true
			pattern = strings.TrimPrefix(pattern, "-")
		}
		pattern = strings.TrimPrefix(pattern, "//")

		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid project view pattern %q", raw)
		}

		if exclude {
			v.exclude = append(v.exclude, pattern)
		} else {
			v.include = append(v.include, pattern)
		}
	}

	return v, nil
}

// IsEmpty reports whether the view has no patterns at all
func (v *View) IsEmpty() bool {
	return v == nil || (len(v.include) == 0 && len(v.exclude) == 0)
}

// IncludesPackage reports whether targets in the given package path are part
// of the project. Excludes win over includes; with no include patterns,
// everything not excluded is included.
func (v *View) IncludesPackage(pkg string) bool {
	if v == nil {
		return true
	}

	for _, pattern := range v.exclude {
		if match, _ := doublestar.Match(pattern, pkg); match {
			return false
		}
	}

	if len(v.include) == 0 {
		return true
	}
	for _, pattern := range v.include {
		if match, _ := doublestar.Match(pattern, pkg); match {
			return true
		}
	}
	return false
}

// Patterns returns the view in its textual form
func (v *View) Patterns() []string {
	if v == nil {
		return nil
	}
	patterns := make([]string, 0, len(v.include)+len(v.exclude))
	patterns = append(patterns, v.include...)
	for _, pattern := range v.exclude {
		patterns = append(patterns, "-"+pattern)
	}
	return patterns
}
