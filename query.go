package archtable

import "iter"

// TableRange is one matched table together with the live row count a
// query consumer should iterate over. Rows beyond Count are unused
// capacity, not live data.
type TableRange struct {
	Table *EntityTable
	Count int
}

// EntityQuery is a live view over every table whose archetype matches
// a predicate, recomputed each time Tables or Iterate is called so
// archetypes created after the query was built are still picked up.
type EntityQuery struct {
	registry  *EntityRegistry
	predicate *EntityPredicate
}

// NewEntityQuery builds a query over registry's archetypes, restricted
// to those predicate matches. A nil predicate behaves as Universal.
func NewEntityQuery(registry *EntityRegistry, predicate *EntityPredicate) *EntityQuery {
	if predicate == nil {
		predicate = Universal
	}
	return &EntityQuery{registry: registry, predicate: predicate}
}

// Predicate returns the query's matching predicate.
func (q *EntityQuery) Predicate() *EntityPredicate { return q.predicate }

// Tables returns a snapshot of every table currently matching the
// query's predicate, across every matching archetype's grouping.
func (q *EntityQuery) Tables() []TableRange {
	var out []TableRange
	for _, g := range q.registry.lookup.byMask {
		if !q.predicate.Matches(g.archetype) {
			continue
		}
		for _, t := range g.tables {
			out = append(out, TableRange{Table: t, Count: t.Count()})
		}
	}
	return out
}

// Iterate yields one TableRange per matching table. It is a snapshot
// taken at the start of iteration: tables created by mutations during
// iteration are not visited, matching the deferred-mutation rule that
// structural changes observed mid-query apply only to future queries.
//
// The iteration is itself a cursor that holds the registry's read
// lock for its entire lifetime: a mutation attempted anywhere while
// this iteration is in progress — by the consuming code or by a
// reentrant call from within the loop body — is queued by the
// registry instead of discarded, and flushed the moment this (and any
// other outstanding) cursor releases the lock. This protects the
// table/row data being walked from being invalidated out from under
// the iterator, matching the registry's single-writer-or-read-only-
// snapshot policy.
func (q *EntityQuery) Iterate() iter.Seq[TableRange] {
	return func(yield func(TableRange) bool) {
		q.registry.Lock()
		defer q.registry.Unlock()

		for _, r := range q.Tables() {
			if !yield(r) {
				return
			}
		}
	}
}

// Count returns the total number of live entities across every
// matching table.
func (q *EntityQuery) Count() int {
	total := 0
	for _, r := range q.Tables() {
		total += r.Count
	}
	return total
}
