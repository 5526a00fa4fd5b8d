package archtable

import (
	"sort"

	"github.com/TheBitDrifter/mask"
)

// EntityTableGrouping is the collection of tables belonging to one
// interned archetype.
type EntityTableGrouping struct {
	archetype *EntityArchetype
	tables    []*EntityTable
}

// Archetype returns the grouping's archetype.
func (g *EntityTableGrouping) Archetype() *EntityArchetype { return g.archetype }

// Tables returns a snapshot of the grouping's tables.
func (g *EntityTableGrouping) Tables() []*EntityTable {
	out := make([]*EntityTable, len(g.tables))
	copy(out, g.tables)
	return out
}

// insertionTarget returns the first non-full table, allocating and
// appending a new one if none exists or every existing one is full.
func (g *EntityTableGrouping) insertionTarget() (*EntityTable, error) {
	for _, t := range g.tables {
		if !t.IsFull() {
			return t, nil
		}
	}
	t, err := NewEntityTable(g.archetype)
	if err != nil {
		return nil, err
	}
	g.tables = append(g.tables, t)
	Config.debugf("archtable: allocated table #%d for archetype %s (capacity %d)", len(g.tables), g.archetype, t.Capacity())
	return t, nil
}

type transitionKey struct {
	bits mask.Mask
	comp *ComponentType
	add  bool
}

// EntityTableLookup is the single source of archetype identity and
// the archetype-transition cache: an interning map keyed by
// component bit-set, plus an add/remove transition-edge cache so hot
// paths skip re-hashing.
type EntityTableLookup struct {
	byMask      map[mask.Mask]*EntityTableGrouping
	transitions map[transitionKey]*EntityArchetype
	base        *EntityArchetype
}

// NewEntityTableLookup constructs an empty lookup, already containing
// the interned base (zero-component) archetype.
func NewEntityTableLookup() *EntityTableLookup {
	l := &EntityTableLookup{
		byMask:      make(map[mask.Mask]*EntityTableGrouping),
		transitions: make(map[transitionKey]*EntityArchetype),
	}
	l.base, _ = l.intern([]*ComponentType{})
	return l
}

// Base returns the canonical archetype with no components.
func (l *EntityTableLookup) Base() *EntityArchetype { return l.base }

// Count reports the number of interned archetypes.
func (l *EntityTableLookup) Count() int { return len(l.byMask) }

// Archetypes returns a snapshot of every archetype interned so far,
// in unspecified order.
func (l *EntityTableLookup) Archetypes() []*EntityArchetype {
	out := make([]*EntityArchetype, 0, len(l.byMask))
	for _, g := range l.byMask {
		out = append(out, g.archetype)
	}
	return out
}

// Grouping returns the table grouping for an already-interned
// archetype, equivalent to Get but named for read-only callers that
// only ever inspect, never intern.
func (l *EntityTableLookup) Grouping(a *EntityArchetype) (*EntityTableGrouping, bool) {
	return l.Get(a)
}

// normalize drops nils and duplicates and sorts by the ComponentType
// total order, matching EntityTableLookup.Create's construction rule.
func normalize(types []*ComponentType) []*ComponentType {
	seen := make(map[*ComponentType]struct{}, len(types))
	out := make([]*ComponentType, 0, len(types))
	for _, c := range types {
		if c == nil {
			continue
		}
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return Compare(out[i], out[j]) < 0 })
	return out
}

func bitsFor(types []*ComponentType) mask.Mask {
	var bits mask.Mask
	for _, c := range types {
		bits.Mark(c.index)
	}
	return bits
}

func (l *EntityTableLookup) intern(types []*ComponentType) (*EntityArchetype, error) {
	normalized := normalize(types)
	bits := bitsFor(normalized)
	if g, ok := l.byMask[bits]; ok {
		return g.archetype, nil
	}
	arch := buildArchetype(l, normalized)
	l.byMask[bits] = &EntityTableGrouping{archetype: arch}
	Config.debugf("archtable: interned archetype %s", arch)
	return arch, nil
}

// Create normalizes the input sequence (dropping nils/duplicates,
// sorting by the ComponentType total order) and interns it. A nil
// types slice is rejected; an empty or all-nil one yields Base().
func (l *EntityTableLookup) Create(types []*ComponentType) (*EntityArchetype, error) {
	if types == nil {
		return nil, &InvalidArgumentError{Reason: "component type sequence must not be nil"}
	}
	return l.intern(types)
}

// GetOrCreate normalizes and interns types, returning the (possibly
// freshly created) grouping that owns the resulting archetype's
// tables. Equivalent inputs always yield the same grouping object.
func (l *EntityTableLookup) GetOrCreate(types []*ComponentType) (*EntityTableGrouping, error) {
	arch, err := l.intern(types)
	if err != nil {
		return nil, err
	}
	return l.byMask[arch.bits], nil
}

// Get returns the grouping for an already-interned archetype.
func (l *EntityTableLookup) Get(a *EntityArchetype) (*EntityTableGrouping, bool) {
	g, ok := l.byMask[a.bits]
	return g, ok
}

// TransitionAdd returns the archetype resulting from adding c to a,
// consulting (and populating) the transition-edge cache.
func (l *EntityTableLookup) TransitionAdd(a *EntityArchetype, c *ComponentType) (*EntityArchetype, error) {
	if a.Contains(c) {
		return a, nil
	}
	key := transitionKey{bits: a.bits, comp: c, add: true}
	if cached, ok := l.transitions[key]; ok {
		return cached, nil
	}
	types := append(a.ComponentTypes(), c)
	next, err := l.intern(types)
	if err != nil {
		return nil, err
	}
	l.transitions[key] = next
	return next, nil
}

// TransitionRemove returns the archetype resulting from removing c
// from a, consulting (and populating) the transition-edge cache.
func (l *EntityTableLookup) TransitionRemove(a *EntityArchetype, c *ComponentType) (*EntityArchetype, error) {
	if !a.Contains(c) {
		return a, nil
	}
	key := transitionKey{bits: a.bits, comp: c, add: false}
	if cached, ok := l.transitions[key]; ok {
		return cached, nil
	}
	remaining := make([]*ComponentType, 0, len(a.componentTypes)-1)
	for _, existing := range a.componentTypes {
		if existing != c {
			remaining = append(remaining, existing)
		}
	}
	next, err := l.intern(remaining)
	if err != nil {
		return nil, err
	}
	l.transitions[key] = next
	return next, nil
}
