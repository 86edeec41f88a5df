package project

import (
	"sync/atomic"

	"github.com/blazetool/targetmap/pkg/model"
)

// Manager holds the current project snapshot. A sync publishes a fresh
// snapshot which replaces the previous one atomically; readers keep whatever
// snapshot they grabbed, so queries never see a half-updated build graph.
type Manager struct {
	current atomic.Pointer[Snapshot]
	seq     atomic.Int64
}

// NewManager creates a manager with no project data loaded
func NewManager() *Manager {
	return &Manager{}
}

// Current returns the latest snapshot, or nil when no sync has completed yet
func (m *Manager) Current() *Snapshot {
	return m.current.Load()
}

// Publish installs a new snapshot built from the given target map and
// returns it
func (m *Manager) Publish(workspace string, targets *model.TargetMap) *Snapshot {
	snap := NewSnapshot(workspace, targets, m.seq.Add(1))
	m.current.Store(snap)
	return snap
}
