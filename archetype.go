package archtable

import (
	"sort"
	"strings"

	"github.com/TheBitDrifter/bark"
	"github.com/TheBitDrifter/mask"
)

// entityHandleSize is the Entity layout's row-header size: two int32
// fields (index, version).
const entityHandleSize = 8

// EntityArchetype is a canonical, interned, sorted set of component
// kinds with precomputed layout metadata. Two archetypes built from
// the same set of component kinds, in any order or with duplicates,
// are always the same object.
type EntityArchetype struct {
	lookup         *EntityTableLookup
	componentTypes []*ComponentType
	bits           mask.Mask
	offsets        map[*ComponentType]uintptr
	indexOf        map[*ComponentType]int
	managedCount   int
	unmanagedCount int
	tagCount       int
	entitySize     uintptr
}

// ComponentTypes returns the archetype's component kinds, sorted by
// the ComponentType total order (Managed block, then Unmanaged, then
// Tag; each block ascending by index).
func (a *EntityArchetype) ComponentTypes() []*ComponentType {
	out := make([]*ComponentType, len(a.componentTypes))
	copy(out, a.componentTypes)
	return out
}

// Bits returns the archetype's component bit-set.
func (a *EntityArchetype) Bits() mask.Mask { return a.bits }

// Contains reports whether the archetype carries c.
func (a *EntityArchetype) Contains(c *ComponentType) bool {
	if c == nil {
		return false
	}
	var single mask.Mask
	single.Mark(c.index)
	return a.bits.ContainsAll(single)
}

// IndexOf returns c's position within ComponentTypes(), if present.
func (a *EntityArchetype) IndexOf(c *ComponentType) (int, bool) {
	i, ok := a.indexOf[c]
	return i, ok
}

// Offset returns the byte offset of c's column within a per-entity
// row layout, if rows were stored AoS. Tag components have no offset.
func (a *EntityArchetype) Offset(c *ComponentType) (uintptr, bool) {
	o, ok := a.offsets[c]
	return o, ok
}

// EntitySize is the Entity-handle size plus the sizes of every
// non-Tag component, used to size a table chunk.
func (a *EntityArchetype) EntitySize() uintptr { return a.entitySize }

// Counts returns the number of Managed, Unmanaged, and Tag components
// in the archetype.
func (a *EntityArchetype) Counts() (managed, unmanaged, tag int) {
	return a.managedCount, a.unmanagedCount, a.tagCount
}

// Add returns the archetype resulting from adding c. If c is already
// present, a itself is returned.
func (a *EntityArchetype) Add(c *ComponentType) *EntityArchetype {
	if c == nil || a.Contains(c) {
		return a
	}
	next, err := a.lookup.TransitionAdd(a, c)
	if err != nil {
		// Unreachable: TransitionAdd only returns intern's error, and
		// intern never fails.
		panic(bark.AddTrace(err))
	}
	return next
}

// Remove returns the archetype resulting from removing c. If c is not
// present, a itself is returned.
func (a *EntityArchetype) Remove(c *ComponentType) *EntityArchetype {
	if c == nil || !a.Contains(c) {
		return a
	}
	next, err := a.lookup.TransitionRemove(a, c)
	if err != nil {
		panic(bark.AddTrace(err))
	}
	return next
}

// nonTagComponents returns the archetype's component list with its
// trailing Tag block dropped. Safe because the sort order always
// places Tag components last.
func (a *EntityArchetype) nonTagComponents() []*ComponentType {
	return a.componentTypes[:len(a.componentTypes)-a.tagCount]
}

// String renders a sorted, bracketed list of short component names,
// e.g. "[Name, Position, Velocity]".
func (a *EntityArchetype) String() string {
	if len(a.componentTypes) == 0 {
		return "[]"
	}
	names := make([]string, len(a.componentTypes))
	for i, c := range a.componentTypes {
		names[i] = shortComponentName(c.kind.String())
	}
	sort.Strings(names)
	return "[" + strings.Join(names, ", ") + "]"
}

var componentNameCache = FactoryNewCache[string](1 << 16)

func shortComponentName(full string) string {
	if idx, ok := componentNameCache.GetIndex(full); ok {
		return *componentNameCache.GetItem(idx)
	}
	name := full
	if i := strings.LastIndex(name, "."); i >= 0 {
		name = name[i+1:]
	}
	name = strings.TrimPrefix(name, "*")
	// Best-effort cache: a full component-name cache simply means later
	// callers recompute the trim themselves.
	componentNameCache.Register(full, name)
	return name
}

// buildArchetype computes bit-set, offsets, counts, and entity size
// for a normalized (deduplicated, sorted) component list. It does not
// intern anything; callers go through EntityTableLookup for that.
func buildArchetype(lookup *EntityTableLookup, types []*ComponentType) *EntityArchetype {
	offsets := make(map[*ComponentType]uintptr, len(types))
	indexOf := make(map[*ComponentType]int, len(types))
	var bits mask.Mask
	var managed, unmanaged, tag int
	offset := uintptr(entityHandleSize)

	for i, c := range types {
		indexOf[c] = i
		bits.Mark(c.index)
		switch c.category {
		case Managed:
			managed++
		case Unmanaged:
			unmanaged++
		case Tag:
			tag++
			continue
		}
		align := uintptr(c.kind.Align())
		if align == 0 {
			align = 1
		}
		if rem := offset % align; rem != 0 {
			offset += align - rem
		}
		offsets[c] = offset
		offset += c.size
	}

	return &EntityArchetype{
		lookup:         lookup,
		componentTypes: types,
		bits:           bits,
		offsets:        offsets,
		indexOf:        indexOf,
		managedCount:   managed,
		unmanagedCount: unmanaged,
		tagCount:       tag,
		entitySize:     offset,
	}
}
