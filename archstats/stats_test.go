package archstats_test

import (
	"testing"

	"github.com/latticeware/archtable"
	"github.com/latticeware/archtable/archstats"
)

type statsPosition struct{ X, Y float64 }

func TestSnapshotReportsEntityAndArchetypeCounts(t *testing.T) {
	registry := archtable.NewEntityRegistry()
	pos := archtable.TypeOf[statsPosition]()
	arch, err := registry.CreateArchetype([]*archtable.ComponentType{pos})
	if err != nil {
		t.Fatalf("CreateArchetype() error = %v", err)
	}

	for i := 0; i < 3; i++ {
		if _, err := registry.Create(arch); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}

	snap := archstats.Snapshot(registry)
	if snap.Entities.Used != 3 {
		t.Errorf("Entities.Used = %d, want 3", snap.Entities.Used)
	}
	if snap.Entities.Recycled != 0 {
		t.Errorf("Entities.Recycled = %d, want 0", snap.Entities.Recycled)
	}

	found := false
	for _, a := range snap.Archetypes {
		for _, t := range a.Tables {
			if t.Count == 3 {
				found = true
			}
		}
	}
	if !found {
		t.Error("snapshot should report a table holding all 3 created entities")
	}
}

func TestSnapshotTracksRecycledSlots(t *testing.T) {
	registry := archtable.NewEntityRegistry()
	e, _ := registry.Create(nil)
	if _, err := registry.Destroy(e); err != nil {
		t.Fatalf("Destroy() error = %v", err)
	}

	snap := archstats.Snapshot(registry)
	if snap.Entities.Recycled != 1 {
		t.Errorf("Entities.Recycled = %d, want 1", snap.Entities.Recycled)
	}
	if snap.Entities.Used != 0 {
		t.Errorf("Entities.Used = %d, want 0", snap.Entities.Used)
	}
}
