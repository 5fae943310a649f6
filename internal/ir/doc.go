// Package ir defines the numeric and expression data model shared by every
// other internal package.
//
// ir imports nothing internal, so it stays the foundational layer with no
// circular dependencies.
//
// Key design constraints:
//   - Number and Expression are sealed sum types; switch on the concrete type
//   - Values are immutable once built; arithmetic allocates new values
//   - Number arithmetic never fails: operations without an exact result
//     return a Symbolic wrapping the operation
//   - Structural identity is defined by the canonical JSON encoding, which
//     also feeds StructuralHash and the cache keys
//   - Real arithmetic runs under a fixed 50 digit decimal context
package ir
