package harness

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/roach88/symcore/internal/config"
	"github.com/roach88/symcore/internal/ir"
)

// Scenario is a scripted run against a fresh engine.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Session fixes the engine session ID. Defaults to
	// "test-session-default".
	Session string `yaml:"session,omitempty"`

	// Config overrides engine configuration, using the same keys as a
	// YAML config file. Omitted keys keep their defaults.
	Config map[string]any `yaml:"config,omitempty"`

	// Steps run in order.
	Steps []Step `yaml:"steps"`

	// Assertions are checked against the engine after the last step.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// Step is one engine operation.
type Step struct {
	// Op is one of the Op* constants.
	Op string `yaml:"op"`

	// Expr is the input expression in the JSON wire form, written as YAML.
	// Used by evaluate, simplify and intern.
	Expr any `yaml:"expr,omitempty"`

	// Vars binds variables for evaluate. Values use the number wire form.
	Vars map[string]any `yaml:"vars,omitempty"`

	// Expect is the expected result: a number for evaluate, an expression
	// for simplify and intern. Omit to skip the check.
	Expect any `yaml:"expect,omitempty"`

	// ExpectError is the expected engine error code, such as
	// DIVISION_BY_ZERO.
	ExpectError string `yaml:"expect_error,omitempty"`

	// Shared, when set on an intern step, requires the handle to reuse (or
	// not reuse) an existing pool instance.
	Shared *bool `yaml:"shared,omitempty"`

	// Duration is the clock advance for advance steps.
	Duration string `yaml:"duration,omitempty"`

	// Repeat runs the step this many times. Defaults to 1.
	Repeat int `yaml:"repeat,omitempty"`
}

// Step operations.
const (
	OpEvaluate   = "evaluate"
	OpSimplify   = "simplify"
	OpIntern     = "intern"
	OpAdvance    = "advance"
	OpCleanup    = "cleanup"
	OpClearCache = "clear_cache"
	OpCheckpoint = "checkpoint"
)

// Assertion checks a counter after the run.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Tier selects fast, exact or symbolic for cache assertions.
	Tier string `yaml:"tier,omitempty"`

	// Count is the exact expected value.
	Count *int `yaml:"count,omitempty"`

	// Min is the minimum expected value.
	Min *int `yaml:"min,omitempty"`
}

// Assertion type constants.
const (
	AssertCacheHits    = "cache_hits"
	AssertCacheMisses  = "cache_misses"
	AssertCacheUsage   = "cache_usage"
	AssertPoolHits     = "pool_hits"
	AssertPoolSize     = "pool_size"
	AssertJournalCount = "journal_count"
)

// LoadScenario reads and parses a scenario YAML file. Unknown fields are
// rejected so typos fail loudly.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses and validates a scenario document.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks required fields and decodes every expression,
// so a bad scenario fails at load time rather than half way through a run.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	if _, err := s.engineConfig(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	for i, step := range s.Steps {
		if err := validateStep(step); err != nil {
			return fmt.Errorf("step %d (%s): %w", i, step.Op, err)
		}
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(a); err != nil {
			return fmt.Errorf("assertion %d (%s): %w", i, a.Type, err)
		}
	}

	return nil
}

func validateStep(step Step) error {
	if step.Repeat < 0 {
		return fmt.Errorf("repeat must not be negative")
	}
	switch step.Op {
	case OpEvaluate, OpSimplify, OpIntern:
		if step.Expr == nil {
			return fmt.Errorf("expr is required")
		}
		if _, err := decodeExpr(step.Expr); err != nil {
			return err
		}
		if _, err := decodeVars(step.Vars); err != nil {
			return err
		}
		if step.Expect != nil {
			if step.Op == OpEvaluate {
				_, err := decodeNumber(step.Expect)
				return err
			}
			_, err := decodeExpr(step.Expect)
			return err
		}
	case OpAdvance:
		d, err := time.ParseDuration(step.Duration)
		if err != nil {
			return fmt.Errorf("duration: %w", err)
		}
		if d < 0 {
			return fmt.Errorf("duration must not be negative")
		}
	case OpCleanup, OpClearCache, OpCheckpoint:
	default:
		return fmt.Errorf("unknown op %q", step.Op)
	}
	return nil
}

func validateAssertion(a Assertion) error {
	switch a.Type {
	case AssertCacheHits, AssertCacheMisses, AssertCacheUsage:
		switch a.Tier {
		case "fast", "exact", "symbolic":
		default:
			return fmt.Errorf("unknown tier %q", a.Tier)
		}
	case AssertPoolHits, AssertPoolSize, AssertJournalCount:
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
	if a.Count == nil && a.Min == nil {
		return fmt.Errorf("count or min is required")
	}
	return nil
}

// engineConfig applies the scenario overrides to the default config.
func (s *Scenario) engineConfig() (config.Config, error) {
	if len(s.Config) == 0 {
		return config.Default(), nil
	}
	data, err := yaml.Marshal(s.Config)
	if err != nil {
		return config.Config{}, err
	}
	return config.ParseYAML(data)
}

// toJSON re-encodes a YAML-decoded value so the ir wire decoder can read it.
func toJSON(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode %T as JSON: %w", v, err)
	}
	return data, nil
}

func decodeExpr(v any) (ir.Expression, error) {
	data, err := toJSON(v)
	if err != nil {
		return nil, err
	}
	return ir.UnmarshalExpression(data)
}

func decodeNumber(v any) (ir.Number, error) {
	data, err := toJSON(v)
	if err != nil {
		return nil, err
	}
	return ir.UnmarshalNumber(data)
}

func decodeVars(vars map[string]any) (map[string]ir.Number, error) {
	if len(vars) == 0 {
		return nil, nil
	}
	out := make(map[string]ir.Number, len(vars))
	for name, v := range vars {
		n, err := decodeNumber(v)
		if err != nil {
			return nil, fmt.Errorf("var %s: %w", name, err)
		}
		out[name] = n
	}
	return out, nil
}
