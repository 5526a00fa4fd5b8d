package archtable

import "testing"

func TestLookupCreateRejectsNilSlice(t *testing.T) {
	lookup := NewEntityTableLookup()
	if _, err := lookup.Create(nil); err == nil {
		t.Fatal("Create(nil) should fail with InvalidArgumentError")
	}
}

func TestLookupCreateEmptySliceYieldsBase(t *testing.T) {
	lookup := NewEntityTableLookup()
	arch, err := lookup.Create([]*ComponentType{})
	if err != nil {
		t.Fatalf("Create([]) error = %v", err)
	}
	if arch != lookup.Base() {
		t.Error("Create([]) should yield the canonical base archetype")
	}
}

func TestLookupTransitionCacheReturnsSameArchetype(t *testing.T) {
	lookup := NewEntityTableLookup()
	pos := TypeOf[testPosition]()
	base := lookup.Base()

	a1, err := lookup.TransitionAdd(base, pos)
	if err != nil {
		t.Fatalf("TransitionAdd() error = %v", err)
	}
	a2, err := lookup.TransitionAdd(base, pos)
	if err != nil {
		t.Fatalf("TransitionAdd() error = %v", err)
	}
	if a1 != a2 {
		t.Error("repeated TransitionAdd with the same inputs must hit the cache and return the same archetype")
	}
}

func TestLookupTransitionAddNoopWhenAlreadyPresent(t *testing.T) {
	lookup := NewEntityTableLookup()
	pos := TypeOf[testPosition]()
	withPos, _ := lookup.Create([]*ComponentType{pos})

	again, err := lookup.TransitionAdd(withPos, pos)
	if err != nil {
		t.Fatalf("TransitionAdd() error = %v", err)
	}
	if again != withPos {
		t.Error("adding an already-present component should return the same archetype")
	}
}

func TestGroupingInsertionTargetAllocatesWhenFull(t *testing.T) {
	lookup := NewEntityTableLookup()
	arch := lookup.Base()
	grouping, err := lookup.GetOrCreate(arch.ComponentTypes())
	if err != nil {
		t.Fatalf("GetOrCreate() error = %v", err)
	}

	first, err := grouping.insertionTarget()
	if err != nil {
		t.Fatalf("insertionTarget() error = %v", err)
	}

	tok, _ := first.AcquireWrite()
	for !first.IsFull() {
		if _, err := first.Add(tok, Entity{}); err != nil {
			t.Fatalf("Add() error = %v", err)
		}
	}
	first.ReleaseWrite(tok)

	second, err := grouping.insertionTarget()
	if err != nil {
		t.Fatalf("insertionTarget() error = %v", err)
	}
	if second == first {
		t.Error("insertionTarget should allocate a new table once the first is full")
	}
	if len(grouping.Tables()) != 2 {
		t.Errorf("grouping should now hold 2 tables, got %d", len(grouping.Tables()))
	}
}
