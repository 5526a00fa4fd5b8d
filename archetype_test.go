package archtable

import "testing"

func TestArchetypeContainsAndIndexOf(t *testing.T) {
	lookup := NewEntityTableLookup()
	pos := TypeOf[testPosition]()
	name := TypeOf[testName]()

	arch, err := lookup.Create([]*ComponentType{pos, name})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if !arch.Contains(pos) || !arch.Contains(name) {
		t.Fatal("archetype should contain both registered components")
	}
	if arch.Contains(TypeOf[testTagFrozen]()) {
		t.Error("archetype should not contain an unrelated component")
	}
	if _, ok := arch.IndexOf(TypeOf[testTagFrozen]()); ok {
		t.Error("IndexOf should report false for an absent component")
	}
}

func TestArchetypeInterningIsCanonical(t *testing.T) {
	lookup := NewEntityTableLookup()
	pos := TypeOf[testPosition]()
	name := TypeOf[testName]()

	a1, _ := lookup.Create([]*ComponentType{pos, name})
	a2, _ := lookup.Create([]*ComponentType{name, pos}) // reversed order
	a3, _ := lookup.Create([]*ComponentType{pos, pos, name}) // duplicate

	if a1 != a2 {
		t.Error("archetypes built from the same set in different order must be identical")
	}
	if a1 != a3 {
		t.Error("duplicate component types must be deduplicated before interning")
	}
}

func TestArchetypeAddRemoveRoundTrip(t *testing.T) {
	lookup := NewEntityTableLookup()
	pos := TypeOf[testPosition]()

	base := lookup.Base()
	withPos := base.Add(pos)
	if !withPos.Contains(pos) {
		t.Fatal("Add should yield an archetype containing the new component")
	}
	backToBase := withPos.Remove(pos)
	if backToBase != base {
		t.Error("removing the only added component should return the canonical base archetype")
	}
}

func TestArchetypeTagsExcludedFromEntitySizeLayout(t *testing.T) {
	lookup := NewEntityTableLookup()
	pos := TypeOf[testPosition]()
	tag := TypeOf[testTagFrozen]()

	withTagOnly, _ := lookup.Create([]*ComponentType{tag})
	withPosOnly, _ := lookup.Create([]*ComponentType{pos})

	if withTagOnly.EntitySize() != entityHandleSize {
		t.Errorf("tag-only archetype EntitySize = %d, want %d (handle only)", withTagOnly.EntitySize(), entityHandleSize)
	}
	if withPosOnly.EntitySize() <= entityHandleSize {
		t.Errorf("archetype carrying a real component should have EntitySize > handle size")
	}
}

func TestArchetypeStringListsShortNames(t *testing.T) {
	lookup := NewEntityTableLookup()
	arch, _ := lookup.Create([]*ComponentType{TypeOf[testPosition]()})
	if got := arch.String(); got != "[testPosition]" {
		t.Errorf("String() = %q, want %q", got, "[testPosition]")
	}
}
