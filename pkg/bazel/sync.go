package bazel

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/blazetool/targetmap/pkg/logging"
	"github.com/blazetool/targetmap/pkg/model"
	"github.com/blazetool/targetmap/pkg/project"
	"github.com/blazetool/targetmap/pkg/projectview"
	"github.com/blazetool/targetmap/pkg/pubsub"
)

// allRulesQuery selects every rule in the workspace
const allRulesQuery = `kind("rule", //...)`

// Syncer builds a fresh target map from the workspace's build graph and
// publishes it to the project manager. Only one sync runs at a time; each
// completed sync replaces the previous snapshot wholesale.
type Syncer struct {
	executor      Executor
	parser        *Parser
	workspace     string
	workspaceName string
	view          *projectview.View
	projects      *project.Manager
	publisher     pubsub.Publisher // optional, may be nil

	mu sync.Mutex
}

// NewSyncer creates a syncer for the given workspace root
func NewSyncer(workspace string, view *projectview.View, projects *project.Manager) *Syncer {
	abs, err := filepath.Abs(workspace)
	if err != nil {
		abs = workspace
	}
	return &Syncer{
		executor:  NewExecutor(),
		parser:    NewParser(),
		workspace: abs,
		view:      view,
		projects:  projects,
	}
}

// SetExecutor replaces the command executor (used by tests)
func (s *Syncer) SetExecutor(e Executor) {
	s.executor = e
}

// SetPublisher attaches a pub/sub publisher for sync status events
func (s *Syncer) SetPublisher(p pubsub.Publisher) {
	s.publisher = p
}

// Sync queries the build graph, filters it through the project view, and
// installs the resulting snapshot. Returns the new snapshot.
func (s *Syncer) Sync(ctx context.Context) (*project.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.workspaceName == "" {
		if name, err := GetWorkspaceName(s.workspace); err == nil {
			s.workspaceName = name
		}
	}

	s.publishStatus("querying", "Querying build graph", 1, 3)
	logging.Info("starting sync", "workspace", s.workspace, "module", s.workspaceName)

	output, err := s.executor.RunQuery(ctx, s.workspace, allRulesQuery)
	if err != nil {
		s.publishStatus("failed", err.Error(), 1, 3)
		return nil, fmt.Errorf("querying build graph: %w", err)
	}

	s.publishStatus("parsing", "Parsing query output", 2, 3)

	targets, err := s.parser.ParseQueryOutput(output)
	if err != nil {
		s.publishStatus("failed", err.Error(), 2, 3)
		return nil, fmt.Errorf("parsing query output: %w", err)
	}

	builder := model.NewTargetMapBuilder()
	excluded := 0
	for _, target := range targets {
		if s.view != nil && !s.view.IncludesPackage(target.Label.Package()) {
			excluded++
			continue
		}
		builder.Add(target)
	}

	snap := s.projects.Publish(s.workspace, builder.Build())

	logging.Info("sync complete",
		"targets", snap.TargetMap().Len(),
		"excluded", excluded,
		"syncIndex", snap.SyncIndex(),
	)
	s.publishStatus("ready", "Sync complete", 3, 3)
	s.publishSummary(snap)

	return snap, nil
}

func (s *Syncer) publishStatus(state, message string, step, total int) {
	if s.publisher == nil {
		return
	}
	status := pubsub.SyncStatus{
		State:   state,
		Message: message,
		Step:    step,
		Total:   total,
	}
	if err := s.publisher.Publish(pubsub.TopicSyncStatus, state, status); err != nil {
		logging.Warn("failed to publish sync status", "error", err)
	}
}

func (s *Syncer) publishSummary(snap *project.Snapshot) {
	if s.publisher == nil {
		return
	}
	edges := 0
	for _, target := range snap.TargetMap().Targets() {
		edges += len(target.Deps)
	}
	summary := pubsub.TargetMapSummary{
		Targets:   snap.TargetMap().Len(),
		Edges:     edges,
		SyncIndex: snap.SyncIndex(),
		Complete:  true,
	}
	if err := s.publisher.Publish(pubsub.TopicTargetMap, "synced", summary); err != nil {
		logging.Warn("failed to publish target map summary", "error", err)
	}
}
