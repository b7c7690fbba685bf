// Package harness runs declarative simulation scenarios: a YAML file
// names a simulation file, probes to attach, steps to run and
// assertions on the resulting trace and particle arrays. Golden
// snapshots pin the compiled execution list and final state.
package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Scenario defines one harness run.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Simfile is the path to the CUE simulation file, relative to the
	// scenario file location.
	Simfile string `yaml:"simfile"`

	// Steps overrides the simulation file's step count when positive.
	Steps int `yaml:"steps,omitempty"`

	// Schemes lists extra scheme labels to make available; each is
	// backed by the basic explicit update. Lets scenarios exercise
	// per-kind scheme overrides without a second numerical method.
	Schemes []string `yaml:"schemes,omitempty"`

	// Operations lists probe IDs to run before integration each step,
	// in order.
	Operations []string `yaml:"operations,omitempty"`

	// Hooks lists probes attached around individual property steps.
	Hooks []HookDecl `yaml:"hooks,omitempty"`

	// Assertions validate the final trace, plan and particle arrays.
	Assertions []Assertion `yaml:"assertions"`
}

// HookDecl attaches a probe before or after one property's stepper
// phase.
type HookDecl struct {
	ID       string `yaml:"id"`
	Property string `yaml:"property"`
	// Phase is "pre" or "post".
	Phase string `yaml:"phase"`
}

// Assertion validates one aspect of a run.
type Assertion struct {
	// Type specifies the assertion type:
	// - "array_equals": a particle array holds exactly these values
	// - "plan_contains": some execution-list line contains this text
	// - "trace_order": these probe events appear in order
	Type string `yaml:"type"`

	// Entity and Array name the checked particle array (array_equals).
	Entity string `yaml:"entity,omitempty"`
	Array  string `yaml:"array,omitempty"`

	// Values are the expected array contents (array_equals).
	Values []float64 `yaml:"values,omitempty"`

	// Step is the expected execution-list text (plan_contains).
	Step string `yaml:"step,omitempty"`

	// Events is the expected probe-event subsequence (trace_order).
	Events []string `yaml:"events,omitempty"`
}

// Assertion type constants.
const (
	AssertArrayEquals  = "array_equals"
	AssertPlanContains = "plan_contains"
	AssertTraceOrder   = "trace_order"
)

// LoadScenario reads and parses a scenario YAML file. The simulation
// file path is resolved relative to the scenario file. Returns an error
// if the file is malformed, contains unknown fields (typos), or is
// missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if scenario.Simfile != "" && !filepath.IsAbs(scenario.Simfile) {
		scenario.Simfile = filepath.Join(filepath.Dir(path), scenario.Simfile)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.Simfile == "" {
		return fmt.Errorf("simfile is required")
	}
	if _, err := os.Stat(s.Simfile); os.IsNotExist(err) {
		return fmt.Errorf("simulation file not found: %s", s.Simfile)
	}
	if s.Steps < 0 {
		return fmt.Errorf("steps must not be negative")
	}

	for i, h := range s.Hooks {
		if h.ID == "" {
			return fmt.Errorf("hooks[%d]: id is required", i)
		}
		if h.Property == "" {
			return fmt.Errorf("hooks[%d]: property is required", i)
		}
		if h.Phase != "pre" && h.Phase != "post" {
			return fmt.Errorf("hooks[%d]: phase must be \"pre\" or \"post\", got %q", i, h.Phase)
		}
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(i, &a); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	switch a.Type {
	case AssertArrayEquals:
		if a.Entity == "" || a.Array == "" {
			return fmt.Errorf("assertions[%d]: entity and array are required for array_equals", index)
		}
		if len(a.Values) == 0 {
			return fmt.Errorf("assertions[%d]: values list is required for array_equals", index)
		}
	case AssertPlanContains:
		if a.Step == "" {
			return fmt.Errorf("assertions[%d]: step is required for plan_contains", index)
		}
	case AssertTraceOrder:
		if len(a.Events) == 0 {
			return fmt.Errorf("assertions[%d]: events list is required for trace_order", index)
		}
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
