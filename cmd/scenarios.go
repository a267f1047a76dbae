package cmd

import (
	"bytes"
	_ "embed"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/drivethru-sim/drivethru-sim/sim/restaurant"
)

//go:embed scenarios.yaml
var builtinScenarios []byte

// DefaultScenario is used when --scenario is not given.
const DefaultScenario = "default"

// Scenario is a named preset restaurant configuration.
type Scenario struct {
	Description string            `yaml:"description"`
	Config      restaurant.Config `yaml:"config"`
}

// ScenarioFile represents the full scenarios.yaml structure.
// All top-level sections must be listed to satisfy KnownFields(true) strict parsing.
type ScenarioFile struct {
	Version   string              `yaml:"version"`
	Base      restaurant.Config   `yaml:"base"`
	Scenarios map[string]Scenario `yaml:"scenarios"`
}

// LoadScenarios parses a scenarios file. Unknown keys are errors, so a typo
// in a preset cannot silently fall back to a zero value.
func LoadScenarios(data []byte) (map[string]Scenario, error) {
	var f ScenarioFile
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&f); err != nil {
		return nil, fmt.Errorf("failed to parse scenarios YAML: %w", err)
	}
	if len(f.Scenarios) == 0 {
		return nil, fmt.Errorf("scenarios file defines no scenarios")
	}
	return f.Scenarios, nil
}

// BuiltinScenarios returns the presets compiled into the binary.
func BuiltinScenarios() map[string]Scenario {
	scenarios, err := LoadScenarios(builtinScenarios)
	if err != nil {
		panic(fmt.Sprintf("embedded scenarios.yaml is invalid: %v", err))
	}
	return scenarios
}

// LookupScenario returns the named preset.
func LookupScenario(scenarios map[string]Scenario, name string) (Scenario, error) {
	if s, ok := scenarios[name]; ok {
		return s, nil
	}
	return Scenario{}, fmt.Errorf("unknown scenario %q (available: %v)", name, ScenarioNames(scenarios))
}

// ScenarioNames lists preset names in sorted order.
func ScenarioNames(scenarios map[string]Scenario) []string {
	names := make([]string, 0, len(scenarios))
	for name := range scenarios {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
