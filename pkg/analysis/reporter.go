package analysis

import (
	"errors"
	"sync"
	"time"

	"github.com/blazetool/targetmap/pkg/finder"
	"github.com/blazetool/targetmap/pkg/logging"
	"github.com/blazetool/targetmap/pkg/project"
	"github.com/blazetool/targetmap/pkg/projectview"
	"github.com/blazetool/targetmap/pkg/pubsub"
)

// ErrNotSynced is returned when a coverage report is requested before the
// workspace has been synced
var ErrNotSynced = errors.New("coverage not available: workspace has not been synced")

// CoverageReport is a point-in-time view of source file ownership
type CoverageReport struct {
	Workspace   string        `json:"workspace"`
	TotalFiles  int           `json:"totalFiles"`
	Unowned     []UnownedFile `json:"unowned"`
	SyncIndex   int64         `json:"syncIndex"`
	GeneratedAt time.Time     `json:"generatedAt"`
}

// CoverageReporter computes unowned-source reports against the current
// snapshot and caches the latest one. Refresh is safe to call from the
// file watcher and HTTP handlers concurrently.
type CoverageReporter struct {
	projects   *project.Manager
	view       *projectview.View
	sourceExts []string

	mu        sync.RWMutex
	latest    *CoverageReport
	publisher pubsub.Publisher
}

// NewCoverageReporter creates a reporter scanning for the given source
// file extensions
func NewCoverageReporter(projects *project.Manager, view *projectview.View, sourceExts []string) *CoverageReporter {
	return &CoverageReporter{
		projects:   projects,
		view:       view,
		sourceExts: sourceExts,
	}
}

// SetPublisher makes the reporter announce refreshed reports on the
// coverage topic
func (r *CoverageReporter) SetPublisher(p pubsub.Publisher) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.publisher = p
}

// Latest returns the most recently computed report, or nil if none has
// been computed yet
func (r *CoverageReporter) Latest() *CoverageReport {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.latest
}

// Refresh rescans the workspace, recomputes the report against the current
// snapshot, caches it, and publishes it to subscribers
func (r *CoverageReporter) Refresh() (*CoverageReport, error) {
	snap := r.projects.Current()
	if snap == nil {
		return nil, ErrNotSynced
	}

	allFiles, err := finder.FindSourceFiles(snap.WorkspaceRoot(), r.sourceExts)
	if err != nil {
		return nil, err
	}

	report := &CoverageReport{
		Workspace:   snap.WorkspaceRoot(),
		TotalFiles:  len(allFiles),
		Unowned:     FindUnownedSources(snap, r.view, allFiles),
		SyncIndex:   snap.SyncIndex(),
		GeneratedAt: time.Now(),
	}

	r.mu.Lock()
	r.latest = report
	publisher := r.publisher
	r.mu.Unlock()

	if publisher != nil {
		if err := publisher.Publish(pubsub.TopicCoverage, "refreshed", report); err != nil {
			logging.Warn("failed to publish coverage report", "error", err)
		}
	}

	logging.Debug("coverage report refreshed",
		"totalFiles", report.TotalFiles,
		"unowned", len(report.Unowned),
		"syncIndex", report.SyncIndex)
	return report, nil
}
