package reconcile

import (
	"strings"

	"inscompare/pkg/contracts/domain"
)

// NormalizeID derives the bare instrument id from a cache key.
//
//	CFFEX.HO2301-C-2325  -> HO2301-C-2325
//	DCE.SP a2603&a2605   -> SP a2603&a2605
//	KQ.i@CFFEX.IF        -> IF
//
// The leading exchange or namespace segment is dropped. For index and
// continuous references, everything through '@' is dropped as well, along with
// the exchange prefix of the referenced instrument. Keys without '.' are
// returned unchanged.
func NormalizeID(key string) string {
	_, id, ok := strings.Cut(key, ".")
	if !ok {
		return key
	}
	if _, ref, ok := strings.Cut(id, "@"); ok {
		id = ref
		if _, inst, ok := strings.Cut(ref, "."); ok {
			id = inst
		}
	}
	return id
}

// ExchangeOf returns the segment before the first '.' of a cache key, or
// domain.UnknownExchange when there is none.
func ExchangeOf(key string) string {
	exchange, _, ok := strings.Cut(key, ".")
	if !ok {
		return domain.UnknownExchange
	}
	return exchange
}
