// Package loader reads the two datasets compared by inscompare.
//
// LoadCodes reads the CTP instrument CSV export and returns the distinct
// values of its instrument-code column. Input may be UTF-8 or GBK. Structural
// CSV errors such as stray quotes inside instrument names trigger a single
// fallback pass that reads the first field of each line.
//
// LoadCache reads the JSON instrument cache into memory. There is no recovery
// for malformed JSON.
//
// Both loaders report a missing file as a NOT_FOUND AppError carrying the path.
package loader
