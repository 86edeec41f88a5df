package model

// Target represents a single build target from the workspace's build graph.
// Targets are immutable once added to a TargetMap.
type Target struct {
	Label     Label    `json:"label"`               // Full label (e.g., "//util:strings")
	Kind      string   `json:"kind"`                // Rule kind (e.g., "java_library")
	RuleType  RuleType `json:"ruleType"`            // Derived category (test, binary, library)
	BuildFile string   `json:"buildFile,omitempty"` // Workspace-relative path of the declaring BUILD file
	Sources   []string `json:"sources,omitempty"`   // Workspace-relative paths of declared sources
	Deps      []Label  `json:"deps,omitempty"`      // Labels of direct dependencies
}

// Info returns the target's result descriptor
func (t *Target) Info() TargetInfo {
	return TargetInfo{
		Label:    t.Label,
		Kind:     t.Kind,
		RuleType: t.RuleType,
	}
}

// DeclaresSource reports whether the target directly declares the given
// workspace-relative source path
func (t *Target) DeclaresSource(path string) bool {
	for _, src := range t.Sources {
		if src == path {
			return true
		}
	}
	return false
}

// TargetInfo is the descriptor returned by resolution queries
type TargetInfo struct {
	Label    Label    `json:"label"`
	Kind     string   `json:"kind"`
	RuleType RuleType `json:"ruleType"`
}
