package reconcile

import (
	"strings"

	"inscompare/pkg/contracts/domain"
)

// ClassSet is the set of product classes accepted by Filter
type ClassSet map[string]struct{}

// NewClassSet builds a ClassSet; matching is exact and case-sensitive
func NewClassSet(classes ...string) ClassSet {
	s := make(ClassSet, len(classes))
	for _, c := range classes {
		s[c] = struct{}{}
	}
	return s
}

// DefaultClassSet accepts FUTURE, OPTION and FUTURE_OPTION
func DefaultClassSet() ClassSet {
	var classes []string
	for _, c := range domain.DefaultProductClasses() {
		classes = append(classes, string(c))
	}
	return NewClassSet(classes...)
}

// Accepts reports whether class is in the set
func (s ClassSet) Accepts(class string) bool {
	_, ok := s[class]
	return ok
}

// Filter keeps the cache entries that are not expired and whose class is in
// classes, mapping each surviving key to its normalized id.
//
// A missing "expired" attribute counts as expired and a missing "class" as
// the empty string, so incomplete records never pass. Values that are not
// JSON objects are counted in NonObject and otherwise ignored.
func Filter(cache *domain.InstrumentCache, classes ClassSet) (domain.FilteredInstruments, domain.FilterStats) {
	filtered := make(domain.FilteredInstruments)
	var stats domain.FilterStats

	if cache == nil {
		return filtered, stats
	}

	for key := range cache.Entries {
		entry, ok := cache.Entry(key)
		if !ok {
			stats.NonObject++
			continue
		}
		stats.Total++

		if isExpired(entry) {
			stats.Expired++
			continue
		}
		stats.NotExpired++

		class, _ := entry.Class()
		if !classes.Accepts(class) {
			stats.InvalidClass++
			continue
		}

		stats.PassedFilter++
		filtered[key] = NormalizeID(key)
	}

	return filtered, stats
}

// isExpired reads the "expired" attribute. Producers are not strict about its
// type, so any JSON value is judged by truthiness: null, false, 0, "" and
// empty containers mean not expired.
func isExpired(entry domain.CacheEntry) bool {
	v, ok := entry["expired"]
	if !ok {
		return true
	}
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case float64:
		return x != 0
	case string:
		return x != ""
	case []any:
		return len(x) > 0
	case map[string]any:
		return len(x) > 0
	default:
		return true
	}
}

// FilterCondition renders the filter as a single expression, e.g.
// "!expired && (class == FUTURE || class == OPTION || class == FUTURE_OPTION)".
// Classes keep the given order.
func FilterCondition(classes []string) string {
	terms := make([]string, 0, len(classes))
	for _, c := range classes {
		terms = append(terms, "class == "+c)
	}
	return "!expired && (" + strings.Join(terms, " || ") + ")"
}
