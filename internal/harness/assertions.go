package harness

import (
	"fmt"
)

// AssertionError describes a counter that did not meet its assertion.
type AssertionError struct {
	Type     string // Assertion type for categorization
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	return fmt.Sprintf("Assertion failed: %s\n  Expected: %s\n  Actual: %s", e.Type, e.Expected, e.Actual)
}

// EvaluateAssertions checks every assertion against result.Final and
// returns one message per failure.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errs []string
	for _, a := range assertions {
		if err := evaluateAssertion(result, a); err != nil {
			errs = append(errs, err.Error())
		}
	}
	return errs
}

func evaluateAssertion(result *Result, a Assertion) error {
	actual, err := observe(result, a)
	if err != nil {
		return err
	}

	label := a.Type
	if a.Tier != "" {
		label = fmt.Sprintf("%s[%s]", a.Type, a.Tier)
	}

	if a.Count != nil && actual != *a.Count {
		return &AssertionError{
			Type:     label,
			Expected: fmt.Sprintf("exactly %d", *a.Count),
			Actual:   fmt.Sprintf("%d", actual),
		}
	}
	if a.Min != nil && actual < *a.Min {
		return &AssertionError{
			Type:     label,
			Expected: fmt.Sprintf("at least %d", *a.Min),
			Actual:   fmt.Sprintf("%d", actual),
		}
	}
	return nil
}

// observe reads the counter an assertion refers to.
func observe(result *Result, a Assertion) (int, error) {
	c, u, m := result.Final.Cache, result.Final.Usage, result.Final.Memory

	switch a.Type {
	case AssertCacheHits:
		return pick(a.Tier, int(c.FastHits), int(c.ExactHits), int(c.SymbolicHits))
	case AssertCacheMisses:
		return pick(a.Tier, int(c.FastMisses), int(c.ExactMisses), int(c.SymbolicMisses))
	case AssertCacheUsage:
		return pick(a.Tier, u.FastUsage, u.ExactUsage, u.SymbolicUsage)
	case AssertPoolHits:
		return int(m.Hits), nil
	case AssertPoolSize:
		return m.Pooled, nil
	case AssertJournalCount:
		return result.Journaled, nil
	}
	return 0, fmt.Errorf("unknown assertion type: %s", a.Type)
}

func pick(tier string, fast, exact, symbolic int) (int, error) {
	switch tier {
	case "fast":
		return fast, nil
	case "exact":
		return exact, nil
	case "symbolic":
		return symbolic, nil
	}
	return 0, fmt.Errorf("unknown tier: %q", tier)
}
