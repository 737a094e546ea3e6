// Package reconcile filters the JSON instrument cache and diffs it against
// the CSV instrument codes. Everything here is pure and works on in-memory
// collections.
package reconcile
