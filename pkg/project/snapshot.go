package project

import (
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/blazetool/targetmap/pkg/graph"
	"github.com/blazetool/targetmap/pkg/model"
)

// Snapshot is one immutable view of the workspace's build graph, produced by
// a single sync. Derived indices (source index, dependency graph) are built
// lazily, at most once per snapshot, so repeated queries against the same
// sync don't redo the work.
type Snapshot struct {
	workspace string
	targets   *model.TargetMap
	syncIndex int64
	syncedAt  time.Time

	graphOnce sync.Once
	depGraph  *graph.TargetGraph

	sourceOnce  sync.Once
	sourceIndex map[string][]model.Label
}

// NewSnapshot creates a snapshot for the given workspace root and target map
func NewSnapshot(workspace string, targets *model.TargetMap, syncIndex int64) *Snapshot {
	return &Snapshot{
		workspace: workspace,
		targets:   targets,
		syncIndex: syncIndex,
		syncedAt:  time.Now(),
	}
}

// WorkspaceRoot returns the workspace root path the snapshot was synced from
func (s *Snapshot) WorkspaceRoot() string {
	return s.workspace
}

// TargetMap returns the immutable target map
func (s *Snapshot) TargetMap() *model.TargetMap {
	return s.targets
}

// SyncIndex returns the sequence number of the sync that produced this snapshot
func (s *Snapshot) SyncIndex() int64 {
	return s.syncIndex
}

// SyncedAt returns the time the snapshot was produced
func (s *Snapshot) SyncedAt() time.Time {
	return s.syncedAt
}

// Graph returns the dependency graph, building it on first use
func (s *Snapshot) Graph() *graph.TargetGraph {
	s.graphOnce.Do(func() {
		s.depGraph = graph.BuildTargetGraph(s.targets)
	})
	return s.depGraph
}

// SourceIndex returns the mapping from workspace-relative source path to the
// labels of targets declaring it, in target-map order. Built on first use.
func (s *Snapshot) SourceIndex() map[string][]model.Label {
	s.sourceOnce.Do(func() {
		index := make(map[string][]model.Label)
		for _, target := range s.targets.Targets() {
			for _, src := range target.Sources {
				index[src] = append(index[src], target.Label)
			}
		}
		s.sourceIndex = index
	})
	return s.sourceIndex
}

// OwningTargets returns the targets that directly declare the given
// workspace-relative source path
func (s *Snapshot) OwningTargets(relPath string) []model.Label {
	return s.SourceIndex()[relPath]
}

// RelativeSourcePath normalizes a query path to the workspace-relative form
// used by the source index. Absolute paths are made relative to the
// workspace root; paths outside the workspace are returned cleaned, which
// simply won't match any index entry.
func (s *Snapshot) RelativeSourcePath(path string) string {
	if filepath.IsAbs(path) && s.workspace != "" {
		if rel, err := filepath.Rel(s.workspace, path); err == nil && !strings.HasPrefix(rel, "..") {
			return filepath.ToSlash(rel)
		}
	}
	return filepath.ToSlash(filepath.Clean(path))
}
