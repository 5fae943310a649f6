// Package harness runs scripted conformance scenarios against the engine.
//
// # Scenario Format
//
// Scenarios are YAML files:
//
//	name: fast_tier_reuse
//	description: "Repeated small-integer sums hit the fast tier"
//	session: fixed-session
//	config:
//	  cache:
//	    fast_cache_size: 4
//	steps:
//	  - op: evaluate
//	    expr: {bin: "+", l: 2, r: 3}
//	    expect: 5
//	    repeat: 2
//	  - op: evaluate
//	    expr: {bin: "/", l: 1, r: 0}
//	    expect_error: DIVISION_BY_ZERO
//	  - op: advance
//	    duration: 2h
//	  - op: cleanup
//	assertions:
//	  - type: cache_hits
//	    tier: fast
//	    count: 1
//
// Expressions and numbers use the JSON wire form, written as YAML flow or
// block mappings. Config overrides use the config file keys.
//
// # Operations
//
//   - evaluate: Engine.Evaluate with optional vars; expect is a number
//   - simplify: Engine.Simplify; expect is an expression
//   - intern: Engine.Intern; shared checks whether the pool was reused
//   - advance: moves the manual clock forward by duration
//   - cleanup: releases interned handles, then Engine.Cleanup
//   - clear_cache: Engine.ClearCache
//   - checkpoint: records a snapshot in the in-memory journal
//
// # Assertion Types
//
//   - cache_hits, cache_misses, cache_usage: per tier (fast, exact, symbolic)
//   - pool_hits, pool_size: expression pool counters
//   - journal_count: snapshots written by checkpoint steps
//
// Each assertion takes count (exact) or min (lower bound).
//
// # Deterministic Testing
//
// Every run uses a manual clock starting at testutil.Epoch, a fixed session
// ID and a fresh in-memory journal, so traces are identical across runs
// and can be compared with golden files.
package harness
