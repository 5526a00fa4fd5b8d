package archtable

import "reflect"

// column is the storage for one non-Tag component across every row of
// a table: a fixed-length array allocated through reflection, so the
// table engine doesn't need per-component-type generated code. This
// is the same technique arche-style archetype storage uses to back
// component columns without a generic parameter per field
// (reflect.New(reflect.ArrayOf(capacity, elemType)).Elem()).
type column struct {
	componentType *ComponentType
	buffer        reflect.Value // addressable [capacity]T array
}

func newColumn(c *ComponentType, capacity int) column {
	buf := reflect.New(reflect.ArrayOf(capacity, c.kind)).Elem()
	return column{componentType: c, buffer: buf}
}

func (col *column) capacity() int { return col.buffer.Len() }

func (col *column) at(row int) reflect.Value { return col.buffer.Index(row) }

// clear resets the slot at row to T's zero value. For Managed
// components this drops any owned references so the GC can reclaim
// them; Unmanaged slots are left untouched since their bytes carry no
// ownership to release.
func (col *column) clear(row int) {
	if col.componentType.category != Managed {
		return
	}
	col.at(row).SetZero()
}

// copyFrom copies the payload at srcRow of src into row of col. Both
// columns must hold the same component type.
func (col *column) copyFrom(row int, src *column, srcRow int) {
	col.at(row).Set(src.at(srcRow))
}

// columnSlice returns the column's backing array, re-sliced to length n, as
// a []T. Panics if T doesn't match the column's component kind;
// callers are expected to have already checked that via colIndex.
func columnSlice[T any](col *column, n int) []T {
	return col.buffer.Slice(0, n).Interface().([]T)
}
