package resolve

import (
	"errors"

	"github.com/blazetool/targetmap/pkg/model"
	"github.com/blazetool/targetmap/pkg/project"
)

// ErrNoProjectData is returned when resolution is attempted before any sync
// has completed. Callers typically treat it as "result unavailable" rather
// than a failure, since editors query speculatively.
var ErrNoProjectData = errors.New("no project data: workspace has not been synced")

// Resolver answers source-to-target queries against the current project
// snapshot. Each query works on one immutable snapshot, so concurrent
// queries need no coordination.
type Resolver struct {
	projects *project.Manager
}

// NewResolver creates a resolver reading from the given project manager
func NewResolver(projects *project.Manager) *Resolver {
	return &Resolver{projects: projects}
}

// Resolve finds the targets owning the given source file, filtered by rule
// type. Targets directly declaring the source are searched first (depth 0);
// targets depending on them are explored at increasing depth only while no
// shallower target has satisfied the filter. The first depth with a match
// wins exclusively: all matches at that depth are returned in discovery
// order, each target at most once, and deeper candidates are suppressed.
//
// No match is an empty result, not an error.
func (r *Resolver) Resolve(sourcePath string, filter model.RuleType) ([]model.TargetInfo, error) {
	snap := r.projects.Current()
	if snap == nil {
		return nil, ErrNoProjectData
	}
	return ResolveIn(snap, sourcePath, filter), nil
}

// ResolveAll is like Resolve but does not stop at the first matching depth:
// it returns every matching target reachable from the source's owners,
// nearest first. Test runners use it to offer all test targets covering a
// file, not just the closest ones.
func (r *Resolver) ResolveAll(sourcePath string, filter model.RuleType) ([]model.TargetInfo, error) {
	snap := r.projects.Current()
	if snap == nil {
		return nil, ErrNoProjectData
	}
	return resolve(snap, sourcePath, filter, false), nil
}

// ResolveIn resolves against a specific snapshot
func ResolveIn(snap *project.Snapshot, sourcePath string, filter model.RuleType) []model.TargetInfo {
	return resolve(snap, sourcePath, filter, true)
}

// resolve runs a breadth-first search outward from the targets declaring the
// source file, following reverse-dependency edges. Depth-0 seeds and each
// frontier expansion follow target-map insertion order, which fixes the
// discovery order of results.
func resolve(snap *project.Snapshot, sourcePath string, filter model.RuleType, nearestOnly bool) []model.TargetInfo {
	targets := snap.TargetMap()
	rel := snap.RelativeSourcePath(sourcePath)

	frontier := snap.OwningTargets(rel)
	if len(frontier) == 0 {
		return nil
	}

	depGraph := snap.Graph()
	visited := make(map[model.Label]bool)
	var results []model.TargetInfo

	for len(frontier) > 0 {
		var matched []model.TargetInfo
		var next []model.Label

		for _, label := range frontier {
			// A target reachable through several paths is expanded once
			if visited[label] {
				continue
			}
			visited[label] = true

			target, ok := targets.Get(label)
			if !ok {
				continue
			}
			if filter.Matches(target.RuleType) {
				matched = append(matched, target.Info())
			}
			next = append(next, depGraph.ReverseDeps(label)...)
		}

		results = append(results, matched...)
		if nearestOnly && len(results) > 0 {
			// The shallowest satisfying depth wins exclusively
			return results
		}
		frontier = next
	}

	return results
}
