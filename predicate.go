package archtable

import (
	"sort"
	"strings"

	"github.com/TheBitDrifter/mask"
)

// EntityPredicate selects archetypes by three independent component
// sets: every Required component must be present, at least one
// Included component must be present (vacuously true if Included is
// empty), and no Excluded component may be present.
type EntityPredicate struct {
	required []*ComponentType
	included []*ComponentType
	excluded []*ComponentType

	requiredBits mask.Mask
	includedBits mask.Mask
	excludedBits mask.Mask
}

// Universal matches every archetype: no requirements, nothing
// excluded, and an empty Included set (vacuously satisfied).
var Universal = &EntityPredicate{}

// NewEntityPredicate builds a predicate from explicit required,
// included, and excluded component slices. Each slice must be non-nil
// (an empty, non-nil slice is accepted and means "no constraint" for
// that dimension); a nil slice is rejected with InvalidArgumentError,
// distinguishing "no components" from "no constraint given."
func NewEntityPredicate(required, included, excluded []*ComponentType) (*EntityPredicate, error) {
	if required == nil || included == nil || excluded == nil {
		return nil, &InvalidArgumentError{Reason: "predicate component slices must not be nil"}
	}
	p := &EntityPredicate{
		required:     normalize(required),
		included:     normalize(included),
		excluded:     normalize(excluded),
		requiredBits: bitsFor(normalize(required)),
		includedBits: bitsFor(normalize(included)),
		excludedBits: bitsFor(normalize(excluded)),
	}
	return p, nil
}

func (p *EntityPredicate) Required() []*ComponentType { return copyTypes(p.required) }
func (p *EntityPredicate) Included() []*ComponentType { return copyTypes(p.included) }
func (p *EntityPredicate) Excluded() []*ComponentType { return copyTypes(p.excluded) }

func copyTypes(in []*ComponentType) []*ComponentType {
	out := make([]*ComponentType, len(in))
	copy(out, in)
	return out
}

// Matches reports whether archetype a satisfies the predicate.
func (p *EntityPredicate) Matches(a *EntityArchetype) bool {
	if !a.bits.ContainsAll(p.requiredBits) {
		return false
	}
	if !a.bits.ContainsNone(p.excludedBits) {
		return false
	}
	if len(p.included) > 0 && !a.bits.ContainsAny(p.includedBits) {
		return false
	}
	return true
}

// Equal reports whether p and o select the same archetypes.
func (p *EntityPredicate) Equal(o *EntityPredicate) bool {
	if o == nil {
		return false
	}
	return p.requiredBits == o.requiredBits &&
		p.includedBits == o.includedBits &&
		p.excludedBits == o.excludedBits
}

func (p *EntityPredicate) String() string {
	var b strings.Builder
	b.WriteString("Predicate(require=")
	b.WriteString(componentListString(p.required))
	b.WriteString(", include=")
	b.WriteString(componentListString(p.included))
	b.WriteString(", exclude=")
	b.WriteString(componentListString(p.excluded))
	b.WriteString(")")
	return b.String()
}

func componentListString(types []*ComponentType) string {
	names := make([]string, len(types))
	for i, c := range types {
		names[i] = shortComponentName(c.kind.String())
	}
	sort.Strings(names)
	return "[" + strings.Join(names, ", ") + "]"
}

// PredicateBuilder incrementally assembles an EntityPredicate.
type PredicateBuilder struct {
	required []*ComponentType
	included []*ComponentType
	excluded []*ComponentType
}

// NewPredicateBuilder returns an empty builder (Universal until
// constrained).
func NewPredicateBuilder() *PredicateBuilder {
	return &PredicateBuilder{
		required: []*ComponentType{},
		included: []*ComponentType{},
		excluded: []*ComponentType{},
	}
}

func (b *PredicateBuilder) Require(types ...*ComponentType) *PredicateBuilder {
	b.required = append(b.required, types...)
	return b
}

func (b *PredicateBuilder) Include(types ...*ComponentType) *PredicateBuilder {
	b.included = append(b.included, types...)
	return b
}

func (b *PredicateBuilder) Exclude(types ...*ComponentType) *PredicateBuilder {
	b.excluded = append(b.excluded, types...)
	return b
}

// Build finalizes the predicate.
func (b *PredicateBuilder) Build() (*EntityPredicate, error) {
	return NewEntityPredicate(b.required, b.included, b.excluded)
}
