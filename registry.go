package archtable

import "github.com/TheBitDrifter/bark"

// entitySlot is the registry's per-index record. A negative version
// marks the slot free; while free, row is repurposed as the
// intrusive free-list "next free index" pointer (-1 terminates the
// list).
type entitySlot struct {
	version int32
	table   *EntityTable
	row     int
}

func (s *entitySlot) free() bool { return s.version < 0 }

// CreateObserver and DestroyObserver are invoked synchronously after
// the registry has committed the corresponding state change. They
// must not mutate the registry; the registry does not detect or
// prevent such a mutation, and does not lock itself while observers
// run.
type CreateObserver func(Entity)
type DestroyObserver func(Entity)

// EntityRegistry is the orchestrator: it owns one EntityTableLookup,
// allocates entity identities with generational versions, and routes
// entities through archetype transitions as components are added or
// removed.
type EntityRegistry struct {
	lookup *EntityTableLookup
	slots  []entitySlot
	free   int // index of first free slot, or -1
	count  int

	readLocks int // number of outstanding query cursors holding the lock
	queue     registryOperationQueue

	onCreate  []CreateObserver
	onDestroy []DestroyObserver
}

// NewEntityRegistry constructs an empty registry over a fresh lookup.
func NewEntityRegistry() *EntityRegistry {
	return &EntityRegistry{
		lookup: NewEntityTableLookup(),
		free:   -1,
	}
}

// Lookup returns the registry's archetype lookup/transition cache.
func (r *EntityRegistry) Lookup() *EntityTableLookup { return r.lookup }

// Count returns the number of live entities.
func (r *EntityRegistry) Count() int { return r.count }

// Locked reports whether the registry currently defers structural
// mutations to its operation queue.
func (r *EntityRegistry) Locked() bool { return r.readLocks > 0 }

// SlotCapacity returns the total number of entity slots ever
// allocated (live plus recycled-but-free).
func (r *EntityRegistry) SlotCapacity() int { return len(r.slots) }

// RecycledCount returns the number of free slots awaiting reuse.
func (r *EntityRegistry) RecycledCount() int { return len(r.slots) - r.count }

// Lock defers subsequent structural mutations (Create/Destroy/
// AddComponent/RemoveComponent) into the operation queue instead of
// applying them immediately. SetComponent is not deferred: it writes
// in place when the entity already carries the component, and
// otherwise queues the add and returns ComponentNotFoundError without
// writing the value. Lock is the mechanism that
// lets query iteration and mutation coexist: code iterating an
// EntityQuery's tables locks the registry first so any mutation
// attempted mid-iteration is deferred instead of invalidating rows
// out from under the iterator. Calls nest: an EntityQuery iterating
// inside another's loop body adds its own lock, and the registry only
// unlocks once every outstanding Lock has a matching Unlock.
func (r *EntityRegistry) Lock() { r.readLocks++ }

// Unlock releases one Lock call. Once the last outstanding lock is
// released, every operation queued while locked is flushed, in FIFO
// order.
func (r *EntityRegistry) Unlock() error {
	if r.readLocks == 0 {
		return &InvalidOperationError{Op: "Unlock", Reason: "registry is not locked"}
	}
	r.readLocks--
	if r.readLocks > 0 {
		return nil
	}
	return r.queue.Flush(r)
}

// OnCreate registers an observer invoked after every committed
// Create, including ones applied from the deferred queue.
func (r *EntityRegistry) OnCreate(obs CreateObserver) {
	r.onCreate = append(r.onCreate, obs)
}

// OnDestroy registers an observer invoked after every committed
// Destroy.
func (r *EntityRegistry) OnDestroy(obs DestroyObserver) {
	r.onDestroy = append(r.onDestroy, obs)
}

func (r *EntityRegistry) isCurrentVersion(e Entity, version int32) bool {
	idx := int(e.index)
	if idx < 0 || idx >= len(r.slots) {
		return false
	}
	s := &r.slots[idx]
	return !s.free() && s.version == version
}

// Contains reports whether entity refers to a currently live slot.
func (r *EntityRegistry) Contains(entity Entity) bool {
	idx := int(entity.index)
	if idx < 0 || idx >= len(r.slots) {
		return false
	}
	s := &r.slots[idx]
	return !s.free() && s.version == entity.version
}

// Find returns the table and row currently backing entity.
func (r *EntityRegistry) Find(entity Entity) (*EntityTable, int, error) {
	idx := int(entity.index)
	if idx < 0 || idx >= len(r.slots) || r.slots[idx].free() || r.slots[idx].version != entity.version {
		return nil, 0, &EntityNotFoundError{Entity: entity}
	}
	s := &r.slots[idx]
	return s.table, s.row, nil
}

// Create allocates one new entity in archetype (the lookup's Base if
// nil) and returns its handle. If the registry is locked, the
// creation is deferred and the returned Entity is the zero value; the
// handle of the entity created at Unlock is not reported back, so
// callers needing the handle should avoid creating while locked.
func (r *EntityRegistry) Create(archetype *EntityArchetype) (Entity, error) {
	types := []*ComponentType{}
	if archetype != nil {
		types = archetype.ComponentTypes()
	}
	if r.Locked() {
		var out []Entity
		r.queue.Enqueue(createOp{count: 1, types: types, out: &out})
		return Entity{}, nil
	}
	created, err := r.createImmediate(types, 1)
	if err != nil {
		return Entity{}, err
	}
	return created[0], nil
}

// CreateArchetype is a convenience that interns types via the
// registry's lookup and returns the resulting archetype.
func (r *EntityRegistry) CreateArchetype(types []*ComponentType) (*EntityArchetype, error) {
	return r.lookup.Create(types)
}

func (r *EntityRegistry) createImmediate(types []*ComponentType, n int) ([]Entity, error) {
	arch, err := r.lookup.Create(types)
	if err != nil {
		return nil, err
	}
	grouping, err := r.lookup.GetOrCreate(arch.ComponentTypes())
	if err != nil {
		return nil, err
	}

	out := make([]Entity, 0, n)
	for i := 0; i < n; i++ {
		idx, version := r.allocateSlot()
		target, err := grouping.insertionTarget()
		if err != nil {
			return nil, err
		}
		tok, err := target.AcquireWrite()
		if err != nil {
			return nil, err
		}
		e := NewEntity(idx, version)
		row, err := target.Add(tok, e)
		target.ReleaseWrite(tok)
		if err != nil {
			return nil, err
		}
		r.slots[idx].table = target
		r.slots[idx].row = row
		r.count++
		out = append(out, e)
		for _, obs := range r.onCreate {
			obs(e)
		}
	}
	return out, nil
}

// allocateSlot pops a free index (LIFO from the free list) or
// appends a fresh one, per spec: a popped slot's new version is the
// absolute value of its stored (negative) version, plus one, so a
// recycled index's handle always differs from any previously issued
// one at that index.
func (r *EntityRegistry) allocateSlot() (index int32, version int32) {
	if r.free >= 0 {
		i := r.free
		s := &r.slots[i]
		r.free = s.row // row repurposed as next-free pointer
		newVersion := -s.version + 1
		s.version = newVersion
		s.row = 0
		return int32(i), newVersion
	}
	i := len(r.slots)
	r.slots = append(r.slots, entitySlot{version: 0})
	return int32(i), 0
}

// Destroy removes entity from the registry, returning whether it was
// found and live. Deferred (returns true unconditionally) if locked.
func (r *EntityRegistry) Destroy(entity Entity) (bool, error) {
	if r.Locked() {
		r.queue.Enqueue(destroyOp{entity: entity, version: entity.version})
		return true, nil
	}
	if !r.Contains(entity) {
		return false, nil
	}
	if err := r.destroyImmediate(entity); err != nil {
		return false, err
	}
	return true, nil
}

func (r *EntityRegistry) destroyImmediate(entity Entity) error {
	idx := int(entity.index)
	s := &r.slots[idx]
	table := s.table
	row := s.row

	tok, err := table.AcquireWrite()
	if err != nil {
		return err
	}
	movedFrom, moved, err := table.RemoveAt(tok, row)
	table.ReleaseWrite(tok)
	if err != nil {
		return err
	}
	if moved {
		movedEntity := table.entities[row]
		r.slots[int(movedEntity.index)].row = row
		_ = movedFrom
	}

	s.row = r.free
	s.version = -(s.version + 1)
	r.free = idx
	r.count--

	for _, obs := range r.onDestroy {
		obs(entity)
	}
	return nil
}

// HasComponent reports whether entity currently carries component.
// Returns false (never panics) for an invalid entity.
func (r *EntityRegistry) HasComponent(entity Entity, component *ComponentType) bool {
	table, _, err := r.Find(entity)
	if err != nil {
		return false
	}
	return table.Contains(component)
}

// AddComponent moves entity to the archetype obtained by adding
// component, returning whether a move occurred (false if entity
// already carried component).
func (r *EntityRegistry) AddComponent(entity Entity, component *ComponentType) (bool, error) {
	if r.Locked() {
		r.queue.Enqueue(addComponentOp{entity: entity, version: entity.version, component: component})
		return true, nil
	}
	return r.transition(entity, component, true)
}

// RemoveComponent moves entity to the archetype obtained by removing
// component, returning whether a move occurred (false if entity
// didn't carry component).
func (r *EntityRegistry) RemoveComponent(entity Entity, component *ComponentType) (bool, error) {
	if r.Locked() {
		r.queue.Enqueue(removeComponentOp{entity: entity, version: entity.version, component: component})
		return true, nil
	}
	return r.transition(entity, component, false)
}

func (r *EntityRegistry) addComponentImmediate(entity Entity, component *ComponentType) error {
	_, err := r.transition(entity, component, true)
	return err
}

func (r *EntityRegistry) removeComponentImmediate(entity Entity, component *ComponentType) error {
	_, err := r.transition(entity, component, false)
	return err
}

// transition implements add_component/remove_component's shared
// row-move logic: resolve destination archetype, acquire/allocate its
// table, copy overlapping columns, swap-remove the old row (fixing up
// whatever row got relocated), and record the entity's new slot.
func (r *EntityRegistry) transition(entity Entity, component *ComponentType, add bool) (bool, error) {
	idx := int(entity.index)
	if idx < 0 || idx >= len(r.slots) || r.slots[idx].free() || r.slots[idx].version != entity.version {
		return false, &EntityNotFoundError{Entity: entity}
	}
	slot := &r.slots[idx]
	oldTable := slot.table
	oldRow := slot.row
	oldArch := oldTable.Archetype()

	var newArch *EntityArchetype
	var err error
	if add {
		if oldArch.Contains(component) {
			return false, nil
		}
		newArch, err = r.lookup.TransitionAdd(oldArch, component)
	} else {
		if !oldArch.Contains(component) {
			return false, nil
		}
		newArch, err = r.lookup.TransitionRemove(oldArch, component)
	}
	if err != nil {
		return false, err
	}

	grouping, err := r.lookup.GetOrCreate(newArch.ComponentTypes())
	if err != nil {
		return false, err
	}
	dest, err := grouping.insertionTarget()
	if err != nil {
		return false, err
	}

	destTok, err := dest.AcquireWrite()
	if err != nil {
		return false, err
	}
	newRow, err := dest.Add(destTok, entity)
	if err != nil {
		dest.ReleaseWrite(destTok)
		return false, err
	}
	for _, c := range newArch.nonTagComponents() {
		if !oldArch.Contains(c) {
			continue
		}
		srcIdx, ok := oldTable.colIndex[c]
		if !ok {
			continue
		}
		dstIdx, ok := dest.colIndex[c]
		if !ok {
			continue
		}
		dest.columns[dstIdx].copyFrom(newRow, &oldTable.columns[srcIdx], oldRow)
	}
	dest.ReleaseWrite(destTok)

	oldTok, err := oldTable.AcquireWrite()
	if err != nil {
		// Unreachable under the single-writer-per-table discipline this
		// package enforces internally: no other agent can be holding
		// oldTable's token here.
		panic(bark.AddTrace(err))
	}
	_, moved, err := oldTable.RemoveAt(oldTok, oldRow)
	oldTable.ReleaseWrite(oldTok)
	if err != nil {
		return false, err
	}
	if moved {
		movedEntity := oldTable.entities[oldRow]
		r.slots[int(movedEntity.index)].row = oldRow
	}

	slot.table = dest
	slot.row = newRow
	return true, nil
}

// SetComponent writes value into entity's component column for T,
// adding the component first if the entity doesn't already carry it.
func SetComponent[T any](r *EntityRegistry, entity Entity, value T) error {
	c := TypeOf[T]()
	if !r.HasComponent(entity, c) {
		if _, err := r.AddComponent(entity, c); err != nil {
			return err
		}
	}
	table, row, err := r.Find(entity)
	if err != nil {
		return err
	}
	col, err := GetComponents[T](table)
	if err != nil {
		return err
	}
	col[row] = value
	return nil
}

// GetComponent reads entity's current value for component kind T.
func GetComponent[T any](r *EntityRegistry, entity Entity) (T, error) {
	var zero T
	table, row, err := r.Find(entity)
	if err != nil {
		return zero, err
	}
	col, err := GetComponents[T](table)
	if err != nil {
		return zero, err
	}
	return col[row], nil
}
