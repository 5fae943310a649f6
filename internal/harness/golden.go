package harness

import (
	"encoding/json"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/symcore/internal/cache"
	"github.com/roach88/symcore/internal/intern"
)

// TraceSnapshot is the golden-file form of a scenario run.
type TraceSnapshot struct {
	ScenarioName string       `json:"scenario_name"`
	SessionID    string       `json:"session_id"`
	Pass         bool         `json:"pass"`
	Trace        []TraceEvent `json:"trace"`
	Cache        cache.Stats  `json:"cache"`
	Usage        cache.Usage  `json:"usage"`
	Memory       intern.Stats `json:"memory"`
}

// MarshalTrace renders the golden form of result: indented JSON with a
// trailing newline. Field order is fixed by the struct, so the output is
// deterministic for a deterministic run.
func MarshalTrace(name string, result *Result) ([]byte, error) {
	snap := TraceSnapshot{
		ScenarioName: name,
		SessionID:    result.Final.SessionID,
		Pass:         result.Pass,
		Trace:        result.Trace,
		Cache:        result.Final.Cache,
		Usage:        result.Final.Usage,
		Memory:       result.Final.Memory,
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// RunWithGolden executes a scenario and compares the trace against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) error {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return err
	}
	return AssertGolden(t, scenario.Name, result)
}

// AssertGolden compares an existing result against its golden file.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	data, err := MarshalTrace(scenarioName, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, data)

	return nil
}
