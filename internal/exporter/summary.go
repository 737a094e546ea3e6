package exporter

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"inscompare/internal/reconcile"
	"inscompare/pkg/contracts/domain"
)

// GroupCount is one row of a grouped surplus count
type GroupCount struct {
	Name  string
	Count int
}

// Summary aggregates a reconciliation for display
type Summary struct {
	CSVCodes      int
	JSONEntries   int
	Stats         domain.FilterStats
	FilteredKeys  int
	FilteredIDs   int
	SurplusCount  int
	ByExchange    []GroupCount
	ByClass       []GroupCount
	FilterPattern string
}

// Summarize groups the surplus by exchange and by product class. Grouping is
// per owning cache key, so an id reachable from two keys counts twice.
func Summarize(rec *domain.Reconciliation) Summary {
	byExchange := make(map[string]int)
	byClass := make(map[string]int)

	for _, key := range rec.SurplusKeys() {
		byExchange[reconcile.ExchangeOf(key)]++

		class := domain.UnknownClass
		if entry, ok := rec.Cache.Entry(key); ok {
			if c, ok := entry.Class(); ok {
				class = c
			}
		}
		byClass[class]++
	}

	return Summary{
		CSVCodes:      rec.Codes.Len(),
		JSONEntries:   rec.Cache.Len(),
		Stats:         rec.Stats,
		FilteredKeys:  len(rec.Filtered),
		FilteredIDs:   rec.FilteredIDs().Len(),
		SurplusCount:  rec.Surplus.Len(),
		ByExchange:    sortedCounts(byExchange),
		ByClass:       sortedCounts(byClass),
		FilterPattern: rec.FilterCondition,
	}
}

func sortedCounts(m map[string]int) []GroupCount {
	out := make([]GroupCount, 0, len(m))
	for name, n := range m {
		out = append(out, GroupCount{Name: name, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Print writes the human-readable summary to w
func (s Summary) Print(w io.Writer) error {
	var b strings.Builder

	fmt.Fprintf(&b, "CSV instruments: %d\n", s.CSVCodes)
	fmt.Fprintf(&b, "JSON entries: %d\n", s.JSONEntries)
	fmt.Fprintf(&b, "Filter: %s\n", s.FilterPattern)
	fmt.Fprintf(&b, "  total: %d\n", s.Stats.Total)
	fmt.Fprintf(&b, "  expired: %d\n", s.Stats.Expired)
	fmt.Fprintf(&b, "  not expired: %d\n", s.Stats.NotExpired)
	fmt.Fprintf(&b, "  invalid class: %d\n", s.Stats.InvalidClass)
	fmt.Fprintf(&b, "  passed filter: %d\n", s.Stats.PassedFilter)
	if s.Stats.NonObject > 0 {
		fmt.Fprintf(&b, "  non-object entries: %d\n", s.Stats.NonObject)
	}
	fmt.Fprintf(&b, "Filtered keys: %d\n", s.FilteredKeys)
	fmt.Fprintf(&b, "Filtered instrument ids (deduplicated): %d\n", s.FilteredIDs)
	fmt.Fprintf(&b, "Surplus instruments: %d\n", s.SurplusCount)

	if s.SurplusCount > 0 {
		b.WriteString("\nBy exchange:\n")
		for _, g := range s.ByExchange {
			fmt.Fprintf(&b, "  %s: %d\n", g.Name, g.Count)
		}
		b.WriteString("\nBy product class:\n")
		for _, g := range s.ByClass {
			fmt.Fprintf(&b, "  %s: %d\n", g.Name, g.Count)
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}
