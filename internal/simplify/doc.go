// Package simplify rewrites expressions to a simpler, semantically equal
// form.
//
// Rewriting runs in passes. Each pass simplifies children first, then
// applies at most one rule at every node. Passes repeat until one changes
// nothing or the iteration quota is spent, so termination never depends on
// the rule set being confluent.
//
// Results are memoized in the symbolic tier of a cache.Cache under the
// operation name "simplify".
package simplify
