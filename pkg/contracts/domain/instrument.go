package domain

import (
	"sort"
)

// ProductClass is the product category tag carried by cache entries
type ProductClass string

const (
	ProductClassFuture       ProductClass = "FUTURE"
	ProductClassOption       ProductClass = "OPTION"
	ProductClassFutureOption ProductClass = "FUTURE_OPTION"
)

// DefaultProductClasses returns the classes a plain tradable contract may have.
func DefaultProductClasses() []ProductClass {
	return []ProductClass{ProductClassFuture, ProductClassOption, ProductClassFutureOption}
}

const (
	// UnknownExchange groups keys that carry no exchange prefix
	UnknownExchange = "unknown"
	// UnknownClass groups entries without a string class
	UnknownClass = "unknown"
)

// CodeSet is a set of instrument codes
type CodeSet map[string]struct{}

// NewCodeSet builds a set from the given codes
func NewCodeSet(codes ...string) CodeSet {
	s := make(CodeSet, len(codes))
	for _, c := range codes {
		s.Add(c)
	}
	return s
}

// Add inserts a code
func (s CodeSet) Add(code string) {
	s[code] = struct{}{}
}

// Contains reports whether code is in the set
func (s CodeSet) Contains(code string) bool {
	_, ok := s[code]
	return ok
}

// Len returns the number of distinct codes
func (s CodeSet) Len() int {
	return len(s)
}

// Sorted returns the codes in ascending byte order
func (s CodeSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for c := range s {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// CacheEntry is a decoded instrument record from the JSON cache
type CacheEntry map[string]any

// InstrumentCache holds every value of the JSON instrument cache keyed by its
// composite instrument key. Values are kept as decoded; non-object values are
// legal and rejected later by the filter.
type InstrumentCache struct {
	Entries map[string]any
}

// NewInstrumentCache wraps a decoded JSON object
func NewInstrumentCache(entries map[string]any) *InstrumentCache {
	if entries == nil {
		entries = make(map[string]any)
	}
	return &InstrumentCache{Entries: entries}
}

// Len returns the number of top-level keys
func (c *InstrumentCache) Len() int {
	if c == nil {
		return 0
	}
	return len(c.Entries)
}

// Entry returns the record stored under key, if it is an object
func (c *InstrumentCache) Entry(key string) (CacheEntry, bool) {
	if c == nil {
		return nil, false
	}
	switch v := c.Entries[key].(type) {
	case map[string]any:
		return CacheEntry(v), true
	case CacheEntry:
		return v, true
	default:
		return nil, false
	}
}

// Class returns the entry's class attribute when it is a string
func (e CacheEntry) Class() (string, bool) {
	s, ok := e["class"].(string)
	return s, ok
}

// FilteredInstruments maps an original cache key to its normalized instrument id
type FilteredInstruments map[string]string

// IDs returns the deduplicated set of normalized ids
func (f FilteredInstruments) IDs() CodeSet {
	s := make(CodeSet, len(f))
	for _, id := range f {
		s.Add(id)
	}
	return s
}

// SortedKeys returns the cache keys in ascending byte order
func (f FilteredInstruments) SortedKeys() []string {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// FilterStats counts how cache entries fared against the filter.
// Total counts object entries only; NonObject counts the rest.
type FilterStats struct {
	Total        int `json:"total"`
	Expired      int `json:"expired"`
	NotExpired   int `json:"not_expired"`
	InvalidClass int `json:"invalid_class"`
	PassedFilter int `json:"passed_filter"`
	NonObject    int `json:"non_object"`
}

// Consistent reports whether the counters add up
func (s FilterStats) Consistent() bool {
	return s.Expired+s.NotExpired == s.Total &&
		s.InvalidClass+s.PassedFilter == s.NotExpired
}

// Reconciliation is the complete result of one comparison run
type Reconciliation struct {
	Codes           CodeSet
	Cache           *InstrumentCache
	Filtered        FilteredInstruments
	Stats           FilterStats
	Surplus         CodeSet
	FilterCondition string
}

// FilteredIDs returns the deduplicated normalized ids that passed the filter
func (r *Reconciliation) FilteredIDs() CodeSet {
	return r.Filtered.IDs()
}

// SurplusKeys returns, sorted, the cache keys whose normalized id is surplus
func (r *Reconciliation) SurplusKeys() []string {
	var keys []string
	for _, k := range r.Filtered.SortedKeys() {
		if r.Surplus.Contains(r.Filtered[k]) {
			keys = append(keys, k)
		}
	}
	return keys
}
