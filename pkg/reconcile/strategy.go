package reconcile

import (
	"fmt"

	"github.com/harborwatch/ballast/pkg/emissions"
)

// SourcePrecedence resolves conflicts through an explicit ordered list of
// source tags: a later tag overrides an earlier one, but only with a
// reported (non-null) value. The order comes from configuration, never
// from file iteration order.
type SourcePrecedence struct {
	ordered []emissions.SourceTag
	rank    map[emissions.SourceTag]int
}

// NewSourcePrecedence creates a strategy from the ordered tag list.
// Later entries take precedence over earlier ones.
func NewSourcePrecedence(ordered []emissions.SourceTag) *SourcePrecedence {
	rank := make(map[emissions.SourceTag]int, len(ordered))
	for i, tag := range ordered {
		rank[tag] = i
	}
	return &SourcePrecedence{ordered: ordered, rank: rank}
}

// Name returns the strategy name
func (s *SourcePrecedence) Name() string {
	return "source-precedence"
}

// Description returns a human-readable description
func (s *SourcePrecedence) Description() string {
	return fmt.Sprintf("Resolves conflicts by source precedence (later overrides): %v", s.ordered)
}

// KnownSource reports whether the tag appears in the precedence order
func (s *SourcePrecedence) KnownSource(tag emissions.SourceTag) bool {
	_, ok := s.rank[tag]
	return ok
}

// Rank returns the tag's position in the precedence order.
// Higher positions override lower ones.
func (s *SourcePrecedence) Rank(tag emissions.SourceTag) (int, bool) {
	r, ok := s.rank[tag]
	return r, ok
}

// Sources returns the precedence order, lowest first.
func (s *SourcePrecedence) Sources() []emissions.SourceTag {
	out := make([]emissions.SourceTag, len(s.ordered))
	copy(out, s.ordered)
	return out
}

// ResolveConflict walks the precedence order from highest to lowest and
// returns the first reported value. A higher-precedence source that did
// not report the field never masks a lower-precedence value.
func (s *SourcePrecedence) ResolveConflict(field string, values map[emissions.SourceTag]any) (any, emissions.SourceTag, string) {
	for i := len(s.ordered) - 1; i >= 0; i-- {
		tag := s.ordered[i]
		value, exists := values[tag]
		if !exists || value == nil {
			continue
		}
		return value, tag, fmt.Sprintf("selected by source precedence (%s)", tag)
	}
	return nil, "", "no reported value"
}

// ResolverFunc adapts a function to the conflict-resolution step of a Strategy.
type ResolverFunc func(field string, values map[emissions.SourceTag]any) (any, emissions.SourceTag, string)

// CustomStrategy allows custom conflict resolution logic
type CustomStrategy struct {
	name        string
	description string
	resolver    ResolverFunc
}

// NewCustomStrategy creates a new custom strategy. It accepts every
// source tag; ranking is entirely up to the resolver.
func NewCustomStrategy(name, description string, resolver ResolverFunc) *CustomStrategy {
	return &CustomStrategy{name: name, description: description, resolver: resolver}
}

// Name returns the strategy name
func (s *CustomStrategy) Name() string {
	return s.name
}

// Description returns a human-readable description
func (s *CustomStrategy) Description() string {
	return s.description
}

// KnownSource accepts every tag
func (s *CustomStrategy) KnownSource(emissions.SourceTag) bool {
	return true
}

// ResolveConflict uses the custom resolver
func (s *CustomStrategy) ResolveConflict(field string, values map[emissions.SourceTag]any) (any, emissions.SourceTag, string) {
	if s.resolver != nil {
		return s.resolver(field, values)
	}
	return nil, "", "custom resolver not defined"
}
