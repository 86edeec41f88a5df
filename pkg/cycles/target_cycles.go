package cycles

import (
	"slices"

	"github.com/blazetool/targetmap/pkg/graph"
	"github.com/blazetool/targetmap/pkg/model"
)

// Cycle represents a circular dependency between targets
type Cycle struct {
	Targets []model.Label `json:"targets"`
}

// FindTargetCycles finds all circular dependencies in the target map. The
// dependency graph cannot represent self edges, so targets that list
// themselves as a dependency are detected from the map directly and reported
// as single-target cycles. Output is sorted for stable reporting.
func FindTargetCycles(tm *model.TargetMap, tg *graph.TargetGraph) []Cycle {
	tarjan := NewTarjanSCC(tg.Directed())
	sccs := tarjan.FindSCCs()

	cycles := make([]Cycle, 0)
	for _, scc := range sccs {
		targets := make([]model.Label, 0, len(scc))
		for _, nodeID := range scc {
			if label, ok := tg.Label(nodeID); ok {
				targets = append(targets, label)
			}
		}
		if len(targets) < 2 {
			continue
		}

		slices.Sort(targets)
		cycles = append(cycles, Cycle{Targets: targets})
	}

	for _, target := range tm.Targets() {
		if slices.Contains(target.Deps, target.Label) {
			cycles = append(cycles, Cycle{Targets: []model.Label{target.Label}})
		}
	}

	slices.SortFunc(cycles, func(a, b Cycle) int {
		if a.Targets[0] < b.Targets[0] {
			return -1
		}
		if a.Targets[0] > b.Targets[0] {
			return 1
		}
		return 0
	})

	return cycles
}
