// Package cache memoizes computed results in three independently sized
// tiers:
//
//   - fast: small-integer operations, int64 results
//   - exact: arbitrary-precision Number operations
//   - symbolic: Expression rewrites such as simplification
//
// Each tier guards its map with its own mutex, so a lookup with access
// bookkeeping and an insert with eviction are atomic per call. No operation
// waits or retries: every call returns a value or a definitive miss.
//
// When an insert finds a tier full, entries are ranked by
//
//	AccessCount * ComputeCost / (secondsSinceLastAccess + 1)
//
// and the lowest ranked are removed until the tier holds ceil(0.75*capacity)
// entries after the insert. An optional TTL removes stale entries lazily on
// lookup and eagerly on SweepExpired.
package cache
