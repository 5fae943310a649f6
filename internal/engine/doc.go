// Package engine ties the compute core together.
//
// An Engine owns one multi-tier cache, one expression pool and one
// simplifier, all built from a single config.Config. Operations:
//
//   - Evaluate folds an expression to a Number. Each binary and unary node
//     consults the fast tier (small integer operands) and then the exact
//     tier (canonical operand keys) before computing.
//   - Simplify rewrites an expression to a fixpoint, cached in the
//     symbolic tier.
//   - Intern returns shared, copy-on-write handles from the pool.
//
// Housekeeping is driven by a cache.Manager. Entry points sweep expired
// entries once the configured interval has passed, and Run sweeps on a
// ticker for long-lived processes. Every sweep also drops pool entries
// whose handles have all been released.
//
// Errors are *ComputeError values with a Code; use IsDivisionByZero and the
// other helpers rather than comparing messages.
//
// Each engine has a session ID (UUIDv7 by default) that labels its
// statistics snapshots in the journal kept by package store.
package engine
