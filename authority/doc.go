// Package authority maps document authors to trust levels.
//
// Resolution is a lookup against stored authority records with a fallback
// to per-partition defaults, so a missing or unreachable store can reduce
// ranking quality but never fails a search.
package authority
