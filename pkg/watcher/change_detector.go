package watcher

// ChangeAnalysis describes what changed and which phases need to be re-run
type ChangeAnalysis struct {
	NeedSync     bool
	NeedCoverage bool
	ChangedFiles []string
}

// AnalyzeChanges determines which phases need to be re-run based on what changed
func AnalyzeChanges(event ChangeEvent) *ChangeAnalysis {
	analysis := &ChangeAnalysis{
		ChangedFiles: event.Paths,
	}

	switch event.Type {
	case ChangeTypeBuildFile:
		// Target definitions, sources, or dependencies changed; the whole
		// target map must be rebuilt
		analysis.NeedSync = true
		analysis.NeedCoverage = true

	case ChangeTypeSourceFile:
		// Files appeared or disappeared on disk but targets are unchanged,
		// only the unowned-sources report needs refreshing
		analysis.NeedCoverage = true
	}

	return analysis
}
