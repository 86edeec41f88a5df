package model

import (
	"path"
	"strings"
)

// Label identifies a build target within the workspace, e.g. "//util:strings".
type Label string

// IsValid reports whether the label has the canonical "//package:name" shape.
func (l Label) IsValid() bool {
	s := string(l)
	if !strings.HasPrefix(s, "//") {
		return false
	}
	colon := strings.Index(s, ":")
	return colon > 1 && colon < len(s)-1
}

// Package returns the package part of the label without the leading "//".
// For "//util:strings" it returns "util".
func (l Label) Package() string {
	s := strings.TrimPrefix(string(l), "//")
	if colon := strings.Index(s, ":"); colon >= 0 {
		return s[:colon]
	}
	return s
}

// Name returns the target name part of the label.
// For "//util:strings" it returns "strings".
func (l Label) Name() string {
	s := string(l)
	if colon := strings.LastIndex(s, ":"); colon >= 0 {
		return s[colon+1:]
	}
	return path.Base(s)
}

func (l Label) String() string {
	return string(l)
}

// LabelToPath converts a file label to a workspace-relative path.
// e.g. "//util:strings.cc" -> "util/strings.cc", "//:root.cc" -> "root.cc"
func LabelToPath(label string) string {
	label = strings.TrimPrefix(label, "//")

	parts := strings.SplitN(label, ":", 2)
	if len(parts) == 2 {
		if parts[0] == "" {
			return parts[1]
		}
		return path.Join(parts[0], parts[1])
	}

	return label
}
