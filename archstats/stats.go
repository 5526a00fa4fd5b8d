// Package archstats reports read-only usage snapshots for an
// archtable registry: entity counts, archetype/table counts, and
// approximate column memory, in the shape of a diagnostics dump
// rather than a metrics-system export.
package archstats

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/latticeware/archtable"
)

// RegistryStats is a point-in-time snapshot of one EntityRegistry.
type RegistryStats struct {
	Entities   EntityStats
	Locked     bool
	Archetypes []ArchetypeStats
}

// EntityStats reports slot usage across a registry.
type EntityStats struct {
	Used     int
	Capacity int
	Recycled int
}

// ArchetypeStats reports the storage shape of one interned archetype.
type ArchetypeStats struct {
	ComponentTypes []reflect.Type
	Tables         []TableStats
}

// TableStats reports one table's occupancy and approximate footprint.
type TableStats struct {
	Count       int
	Capacity    int
	ApproxBytes uintptr
}

// Snapshot captures r's current state. It takes no lock: a
// concurrent mutation during the walk may be reflected partially,
// which is acceptable for a diagnostics snapshot.
func Snapshot(r *archtable.EntityRegistry) RegistryStats {
	s := RegistryStats{
		Entities: EntityStats{
			Used:     r.Count(),
			Capacity: r.SlotCapacity(),
			Recycled: r.RecycledCount(),
		},
		Locked: r.Locked(),
	}

	for _, arch := range r.Lookup().Archetypes() {
		types := arch.ComponentTypes()
		kinds := make([]reflect.Type, len(types))
		for i, c := range types {
			kinds[i] = c.Kind()
		}
		as := ArchetypeStats{ComponentTypes: kinds}

		if grouping, ok := r.Lookup().Grouping(arch); ok {
			for _, t := range grouping.Tables() {
				as.Tables = append(as.Tables, TableStats{
					Count:       t.Count(),
					Capacity:    t.Capacity(),
					ApproxBytes: arch.EntitySize() * uintptr(t.Capacity()),
				})
			}
		}
		s.Archetypes = append(s.Archetypes, as)
	}
	return s
}

func (s RegistryStats) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Registry -- Archetypes: %d, Locked: %t\n", len(s.Archetypes), s.Locked)
	fmt.Fprint(&b, s.Entities.String())
	for _, a := range s.Archetypes {
		fmt.Fprint(&b, a.String())
	}
	return b.String()
}

func (s EntityStats) String() string {
	return fmt.Sprintf("Entities -- Used: %d, Recycled: %d, Capacity: %d\n", s.Used, s.Recycled, s.Capacity)
}

func (s ArchetypeStats) String() string {
	names := make([]string, len(s.ComponentTypes))
	for i, t := range s.ComponentTypes {
		names[i] = t.Name()
	}
	var tableSize, tableCap int
	for _, t := range s.Tables {
		tableSize += t.Count
		tableCap += t.Capacity
	}
	return fmt.Sprintf(
		"Archetype -- Components: %d, Tables: %d, Entities: %d, Capacity: %d\n  Components: %s\n",
		len(s.ComponentTypes), len(s.Tables), tableSize, tableCap, strings.Join(names, ", "),
	)
}
