/*
Package archtable is an archetype-based entity-component registry.

It stores a dynamic, heterogeneous population of entities, each
carrying a variable set of component values, in a layout that groups
entities sharing the same component set into the same chunked
struct-of-arrays table. That grouping is what lets a query over "all
entities with Position and Velocity" walk dense columns instead of
chasing pointers.

Core Concepts:

  - ComponentType: the registered descriptor of one component kind —
    a dense index, a payload size, and a storage category (Managed,
    Unmanaged, or Tag).
  - EntityArchetype: an interned, sorted set of component kinds with
    precomputed layout metadata.
  - EntityTable: chunked columnar storage for every entity sharing one
    archetype.
  - EntityRegistry: entity identity, archetype transitions, and query
    entry point.

Basic Usage:

	registry := archtable.NewEntityRegistry()

	position := archtable.TypeOf[Position]()
	velocity := archtable.TypeOf[Velocity]()

	archetype, _ := registry.Lookup().Create([]*archtable.ComponentType{position, velocity})
	e, _ := registry.Create(archetype)

	predicate, _ := archtable.NewPredicateBuilder().Require(position, velocity).Build()
	query := archtable.NewEntityQuery(registry, predicate)

	for rng := range query.Iterate() {
		positions, _ := archtable.GetComponents[Position](rng.Table)
		for row := range rng.Table.GetEntities() {
			positions[row].X++
		}
	}

archtable does not define a query-composition DSL, a serialization
format, or a rendering/simulation loop — those are left to the caller.
*/
package archtable
