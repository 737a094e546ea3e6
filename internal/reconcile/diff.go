package reconcile

import (
	"inscompare/pkg/contracts/domain"
)

// Surplus returns the normalized ids of filtered that are absent from codes.
// Comparison is exact string equality.
func Surplus(filtered domain.FilteredInstruments, codes domain.CodeSet) domain.CodeSet {
	out := make(domain.CodeSet)
	for _, id := range filtered {
		if !codes.Contains(id) {
			out.Add(id)
		}
	}
	return out
}

// Reconcile runs the filter and the set difference over already loaded inputs.
func Reconcile(codes domain.CodeSet, cache *domain.InstrumentCache, classes []string) *domain.Reconciliation {
	filtered, stats := Filter(cache, NewClassSet(classes...))
	return &domain.Reconciliation{
		Codes:           codes,
		Cache:           cache,
		Filtered:        filtered,
		Stats:           stats,
		Surplus:         Surplus(filtered, codes),
		FilterCondition: FilterCondition(classes),
	}
}
