package model

// TargetMap is an immutable mapping from label to target. Insertion order is
// preserved: iteration and index construction follow the order in which
// targets were added, which keeps resolution results deterministic.
//
// A TargetMap is built once per sync and never mutated afterwards, so it can
// be shared across concurrent readers without locking.
type TargetMap struct {
	targets map[Label]*Target
	order   []Label
}

// Get returns the target for the given label
func (m *TargetMap) Get(label Label) (*Target, bool) {
	t, ok := m.targets[label]
	return t, ok
}

// Contains reports whether the map has a target for the given label
func (m *TargetMap) Contains(label Label) bool {
	_, ok := m.targets[label]
	return ok
}

// Len returns the number of targets in the map
func (m *TargetMap) Len() int {
	return len(m.order)
}

// Labels returns all labels in insertion order
func (m *TargetMap) Labels() []Label {
	labels := make([]Label, len(m.order))
	copy(labels, m.order)
	return labels
}

// Targets returns all targets in insertion order
func (m *TargetMap) Targets() []*Target {
	targets := make([]*Target, 0, len(m.order))
	for _, label := range m.order {
		targets = append(targets, m.targets[label])
	}
	return targets
}

// TargetMapBuilder accumulates targets for a new TargetMap
type TargetMapBuilder struct {
	targets map[Label]*Target
	order   []Label
}

// NewTargetMapBuilder creates an empty builder
func NewTargetMapBuilder() *TargetMapBuilder {
	return &TargetMapBuilder{
		targets: make(map[Label]*Target),
	}
}

// Add inserts a target. The rule type is derived from the kind when unset.
// Re-adding a label replaces the target but keeps its original position.
func (b *TargetMapBuilder) Add(t *Target) *TargetMapBuilder {
	if t.RuleType == RuleTypeAny {
		t.RuleType = RuleTypeForKind(t.Kind)
	}
	if _, exists := b.targets[t.Label]; !exists {
		b.order = append(b.order, t.Label)
	}
	b.targets[t.Label] = t
	return b
}

// Build finalizes the map. The builder must not be reused afterwards.
func (b *TargetMapBuilder) Build() *TargetMap {
	return &TargetMap{
		targets: b.targets,
		order:   b.order,
	}
}
