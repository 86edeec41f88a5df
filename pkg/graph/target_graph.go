package graph

import (
	"github.com/blazetool/targetmap/pkg/model"
	"gonum.org/v1/gonum/graph/simple"
)

// TargetGraph is the directed dependency graph over a target map. Edges point
// from a target to its dependency. The graph also keeps a reverse-dependency
// index in target-map insertion order, which resolution relies on for
// deterministic traversal.
type TargetGraph struct {
	graph  *simple.DirectedGraph
	ids    map[model.Label]int64
	labels map[int64]model.Label
	rdeps  map[model.Label][]model.Label
	nextID int64
}

// NewTargetGraph creates an empty target graph
func NewTargetGraph() *TargetGraph {
	return &TargetGraph{
		graph:  simple.NewDirectedGraph(),
		ids:    make(map[model.Label]int64),
		labels: make(map[int64]model.Label),
		rdeps:  make(map[model.Label][]model.Label),
	}
}

// BuildTargetGraph constructs the dependency graph for a target map.
// Dependency labels that are not present in the map (external repositories,
// filtered-out targets) are ignored.
func BuildTargetGraph(tm *model.TargetMap) *TargetGraph {
	tg := NewTargetGraph()

	for _, target := range tm.Targets() {
		tg.AddTarget(target.Label)
	}

	// Iterate in map order so reverse-dependency lists come out deterministic
	for _, target := range tm.Targets() {
		for _, dep := range target.Deps {
			if !tm.Contains(dep) {
				continue
			}
			tg.AddDependency(target.Label, dep)
		}
	}

	return tg
}

// AddTarget adds a node for the given label if not already present
func (tg *TargetGraph) AddTarget(label model.Label) {
	if _, exists := tg.ids[label]; exists {
		return
	}

	tg.ids[label] = tg.nextID
	tg.labels[tg.nextID] = label
	tg.graph.AddNode(simple.Node(tg.nextID))
	tg.nextID++
}

// AddDependency adds a directed edge from a target to one of its
// dependencies. Both endpoints are added if missing. Self edges are not
// representable and are dropped.
func (tg *TargetGraph) AddDependency(from, to model.Label) {
	if from == to {
		return
	}

	tg.AddTarget(from)
	tg.AddTarget(to)

	fromID := tg.ids[from]
	toID := tg.ids[to]

	if !tg.graph.HasEdgeFromTo(fromID, toID) {
		tg.graph.SetEdge(tg.graph.NewEdge(simple.Node(fromID), simple.Node(toID)))
		tg.rdeps[to] = append(tg.rdeps[to], from)
	}
}

// HasTarget reports whether the label has a node in the graph
func (tg *TargetGraph) HasTarget(label model.Label) bool {
	_, exists := tg.ids[label]
	return exists
}

// Len returns the number of targets in the graph
func (tg *TargetGraph) Len() int {
	return len(tg.ids)
}

// Dependencies returns the direct dependencies of a target
func (tg *TargetGraph) Dependencies(label model.Label) []model.Label {
	id, exists := tg.ids[label]
	if !exists {
		return nil
	}

	var deps []model.Label
	nodes := tg.graph.From(id)
	for nodes.Next() {
		deps = append(deps, tg.labels[nodes.Node().ID()])
	}
	return deps
}

// ReverseDeps returns the targets that directly depend on the given label,
// in the order their declaring targets appear in the target map
func (tg *TargetGraph) ReverseDeps(label model.Label) []model.Label {
	return tg.rdeps[label]
}

// Label returns the label for an internal node ID
func (tg *TargetGraph) Label(id int64) (model.Label, bool) {
	label, exists := tg.labels[id]
	return label, exists
}

// Directed exposes the underlying gonum graph for algorithms that need it
func (tg *TargetGraph) Directed() *simple.DirectedGraph {
	return tg.graph
}
