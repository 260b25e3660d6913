package harness

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario is one model-checking scenario: tracked objects, processes, a
// step bound, and expectations on the run.
type Scenario struct {
	// Name uniquely identifies the scenario; golden files are keyed on it.
	Name string `yaml:"name"`

	// Description explains what the scenario checks.
	Description string `yaml:"description,omitempty"`

	// Bound caps total step executions. Zero means unbounded: the scenario
	// then relies on state dedup for termination.
	Bound int `yaml:"bound,omitempty"`

	// Graph enables exploration-graph recording for the run.
	Graph bool `yaml:"graph,omitempty"`

	// Objects declares the tracked records and their initial fields.
	Objects []ObjectDecl `yaml:"objects"`

	// Processes declares the concurrent actors as ordered step programs.
	Processes []ProcessDecl `yaml:"processes"`

	// Expect states the required run outcome; absent means any outcome
	// other than an unexpected engine error passes.
	Expect *Expect `yaml:"expect,omitempty"`
}

// ObjectDecl declares one tracked record.
type ObjectDecl struct {
	Name string `yaml:"name"`

	// Fields maps field name to initial value (string, int, or bool).
	// Fields without an initial value may be listed with null and start
	// absent.
	Fields map[string]any `yaml:"fields"`
}

// ProcessDecl declares one process.
type ProcessDecl struct {
	Name   string `yaml:"name"`
	Target string `yaml:"target"`

	// Loop marks a generator-style process whose steps repeat forever.
	Loop bool `yaml:"loop,omitempty"`

	Steps []StepDecl `yaml:"steps"`
}

// StepDecl declares one atomic step as a sequence of operations. All ops of
// one step execute inside the same atomic boundary.
type StepDecl struct {
	Name string `yaml:"name"`
	Ops  []OpDecl `yaml:"ops"`
}

// OpDecl is a single step operation. Exactly one of the members is set.
type OpDecl struct {
	Set      *SetOp      `yaml:"set,omitempty"`
	AssertEq *AssertEqOp `yaml:"assert_eq,omitempty"`
	Choose   *ChooseOp   `yaml:"choose,omitempty"`
}

// SetOp writes a field.
type SetOp struct {
	Field string `yaml:"field"`
	Value any    `yaml:"value"`
}

// AssertEqOp asserts a field equals a value, violating the search otherwise.
type AssertEqOp struct {
	Field string `yaml:"field"`
	Value any    `yaml:"value"`
}

// ChooseOp sets a field to a nondeterministic choice among From, forking the
// search once per member.
type ChooseOp struct {
	Field string `yaml:"field"`
	From  []any  `yaml:"from"`
}

// Expect states the required run outcome.
type Expect struct {
	// Outcome is "exhausted", "bound-reached", or "violation".
	Outcome string `yaml:"outcome,omitempty"`

	// States requires the exact distinct-configuration count. Zero means
	// unchecked.
	States int `yaml:"states,omitempty"`

	// ViolationContains requires the violation message to contain the
	// substring. Only meaningful with outcome: violation.
	ViolationContains string `yaml:"violation_contains,omitempty"`
}

// LoadScenario reads, schema-validates, and decodes a scenario file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("harness: read scenario: %w", err)
	}
	return ParseScenario(path, data)
}

// ParseScenario validates raw YAML against the scenario schema and decodes
// it. The filename only labels error messages.
func ParseScenario(filename string, data []byte) (*Scenario, error) {
	if err := validateScenarioYAML(filename, data); err != nil {
		return nil, err
	}

	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("harness: decode scenario %s: %w", filename, err)
	}
	return &s, nil
}
