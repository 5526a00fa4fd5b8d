package archtable

import "reflect"

// TableToken is the write capability for one EntityTable. Exactly one
// agent may hold it at a time; every mutating EntityTable method
// requires it, per the single-writer-or-read-only-snapshot policy.
type TableToken struct {
	table *EntityTable
}

// defaultCapacity derives a table's capacity from Config.ChunkBytes,
// floored at Config.MinCapacity.
func defaultCapacity(a *EntityArchetype) int {
	cap := int(Config.ChunkBytes / a.entitySize)
	if cap < Config.MinCapacity {
		cap = Config.MinCapacity
	}
	return cap
}

// EntityTable is columnar storage for the rows of one archetype: a
// contiguous Entity column plus one column per non-Tag component, all
// of fixed capacity chosen at construction.
type EntityTable struct {
	archetype *EntityArchetype
	capacity  int
	count     int
	entities  []Entity
	columns   []column
	colIndex  map[*ComponentType]int
	writer    *TableToken
}

// NewEntityTable allocates a table for archetype. With no explicit
// capacity, the default is derived from Config (see defaultCapacity).
func NewEntityTable(archetype *EntityArchetype, capacity ...int) (*EntityTable, error) {
	cap := defaultCapacity(archetype)
	if len(capacity) > 0 {
		cap = capacity[0]
	}
	if cap < 0 {
		return nil, &InvalidArgumentError{Reason: "table capacity must be >= 0"}
	}

	nonTag := archetype.nonTagComponents()
	t := &EntityTable{
		archetype: archetype,
		capacity:  cap,
		entities:  make([]Entity, cap),
		columns:   make([]column, len(nonTag)),
		colIndex:  make(map[*ComponentType]int, len(nonTag)),
	}
	for i, c := range nonTag {
		t.columns[i] = newColumn(c, cap)
		t.colIndex[c] = i
	}
	return t, nil
}

func (t *EntityTable) Archetype() *EntityArchetype { return t.archetype }
func (t *EntityTable) Capacity() int                { return t.capacity }
func (t *EntityTable) Count() int                   { return t.count }
func (t *EntityTable) IsEmpty() bool                { return t.count == 0 }
func (t *EntityTable) IsFull() bool                 { return t.count == t.capacity }

// AcquireWrite grants exclusive write access to the table. It fails
// with InvalidOperationError if another agent already holds the
// token; the core performs no cross-table locking beyond this.
func (t *EntityTable) AcquireWrite() (*TableToken, error) {
	if t.writer != nil {
		return nil, &InvalidOperationError{Op: "AcquireWrite", Reason: "table already has a writer"}
	}
	tok := &TableToken{table: t}
	t.writer = tok
	return tok, nil
}

// ReleaseWrite gives up tok's write access. A mismatched or already
// released token is a silent no-op.
func (t *EntityTable) ReleaseWrite(tok *TableToken) {
	if tok != nil && t.writer == tok {
		t.writer = nil
	}
}

// CheckAccess reports whether tok currently grants write access to t.
func (t *EntityTable) CheckAccess(tok *TableToken) bool {
	return tok != nil && tok.table == t && t.writer == tok
}

func (t *EntityTable) requireAccess(tok *TableToken) error {
	if !t.CheckAccess(tok) {
		return &InvalidOperationError{Op: "EntityTable", Reason: "caller does not hold the table's write token"}
	}
	return nil
}

// Add appends entity at row count, growing the live prefix by one.
func (t *EntityTable) Add(tok *TableToken, e Entity) (int, error) {
	if err := t.requireAccess(tok); err != nil {
		return 0, err
	}
	if t.IsFull() {
		return 0, &InvalidOperationError{Op: "Add", Reason: "table is full"}
	}
	row := t.count
	t.entities[row] = e
	t.count++
	return row, nil
}

// RemoveAt swap-removes the row at the given index: the last live row
// is copied into row (entity column plus every component column), the
// vacated last slot has its Managed payloads cleared, and count is
// decremented. It reports whether a row was moved and, if so, the row
// index it was moved from (always the pre-removal last row).
func (t *EntityTable) RemoveAt(tok *TableToken, row int) (movedFrom int, moved bool, err error) {
	if err = t.requireAccess(tok); err != nil {
		return 0, false, err
	}
	if row < 0 || row >= t.count {
		return 0, false, &OutOfRangeError{Index: row, Bound: t.count}
	}

	last := t.count - 1
	if row != last {
		t.entities[row] = t.entities[last]
		for i := range t.columns {
			t.columns[i].copyFrom(row, &t.columns[i], last)
		}
		moved = true
		movedFrom = last
	}

	t.entities[last] = Entity{}
	for i := range t.columns {
		t.columns[i].clear(last)
	}
	t.count--
	return movedFrom, moved, nil
}

// Remove scans the live prefix for e and, if found, swap-removes it.
// It reports whether e was found.
func (t *EntityTable) Remove(tok *TableToken, e Entity) (bool, error) {
	if err := t.requireAccess(tok); err != nil {
		return false, err
	}
	for row := 0; row < t.count; row++ {
		if t.entities[row] == e {
			_, _, err := t.RemoveAt(tok, row)
			return err == nil, err
		}
	}
	return false, nil
}

// RemoveRange removes n rows starting at start via n repeated
// RemoveAt(start) calls, the swap-remove equivalent of deleting a
// prefix-aligned contiguous range.
func (t *EntityTable) RemoveRange(tok *TableToken, start, n int) error {
	if err := t.requireAccess(tok); err != nil {
		return err
	}
	if start < 0 || n < 0 || start+n > t.count {
		return &OutOfRangeError{Index: start + n, Bound: t.count}
	}
	for i := 0; i < n; i++ {
		if _, _, err := t.RemoveAt(tok, start); err != nil {
			return err
		}
	}
	return nil
}

// Clear empties the table: every live row's Managed payloads are
// cleared and count drops to 0.
func (t *EntityTable) Clear(tok *TableToken) error {
	if err := t.requireAccess(tok); err != nil {
		return err
	}
	for row := 0; row < t.count; row++ {
		for i := range t.columns {
			t.columns[i].clear(row)
		}
		t.entities[row] = Entity{}
	}
	t.count = 0
	return nil
}

// AddRange bulk-copies n rows starting at srcStart from src into t,
// starting at t's current count. Both tables must be writable. Every
// component present in both archetypes is copied; components present
// only in t's archetype are left at their default (zero) value;
// components present only in src's archetype are simply not copied —
// the caller is expected to RemoveRange the copied source rows
// afterward, which clears their Managed payloads through the normal
// swap-remove path.
func (t *EntityTable) AddRange(tok *TableToken, src *EntityTable, srcTok *TableToken, srcStart, n int) error {
	if err := t.requireAccess(tok); err != nil {
		return err
	}
	if err := src.requireAccess(srcTok); err != nil {
		return err
	}
	if srcStart < 0 || n < 0 || srcStart+n > src.count {
		return &OutOfRangeError{Index: srcStart + n, Bound: src.count}
	}
	if t.capacity-t.count < n {
		return &InvalidOperationError{Op: "AddRange", Reason: "destination table lacks capacity"}
	}

	for i := 0; i < n; i++ {
		srcRow := srcStart + i
		dstRow := t.count + i
		t.entities[dstRow] = src.entities[srcRow]
		for _, c := range t.archetype.nonTagComponents() {
			dstIdx, ok := t.colIndex[c]
			if !ok {
				continue
			}
			if srcIdx, ok := src.colIndex[c]; ok {
				t.columns[dstIdx].copyFrom(dstRow, &src.columns[srcIdx], srcRow)
			} else {
				t.columns[dstIdx].at(dstRow).SetZero()
			}
		}
	}
	t.count += n
	return nil
}

// GetEntities returns the table's live entity prefix, read-only.
func (t *EntityTable) GetEntities() []Entity {
	return t.entities[:t.count:t.count]
}

// GetComponents returns the writable backing column for component
// kind T, sized to the table's full capacity (index by row). It fails
// with ComponentNotFoundError if the archetype doesn't carry T as a
// non-Tag component.
func GetComponents[T any](t *EntityTable) ([]T, error) {
	c := TypeOf[T]()
	idx, ok := t.colIndex[c]
	if !ok || c.category == Tag {
		return nil, &ComponentNotFoundError{Component: c}
	}
	return columnSlice[T](&t.columns[idx], t.capacity), nil
}

// TryGetComponents is GetComponents without the error return.
func TryGetComponents[T any](t *EntityTable) ([]T, bool) {
	s, err := GetComponents[T](t)
	return s, err == nil
}

// RawColumn is untyped access to one component's column, for
// reflective consumers that don't know T at compile time. Hot paths
// should prefer GetComponents.
type RawColumn struct {
	Data   reflect.Value
	Stride uintptr
}

// GetColumn returns untyped access to c's column.
func (t *EntityTable) GetColumn(c *ComponentType) (RawColumn, error) {
	idx, ok := t.colIndex[c]
	if !ok || c.category == Tag {
		return RawColumn{}, &ComponentNotFoundError{Component: c}
	}
	return RawColumn{Data: t.columns[idx].buffer, Stride: c.size}, nil
}

// Contains reports whether t's archetype carries c (a convenience
// mirroring EntityArchetype.Contains).
func (t *EntityTable) Contains(c *ComponentType) bool {
	return t.archetype.Contains(c)
}
