// Package config loads the optional mlc.yaml pipeline configuration
// (spec's AMBIENT STACK: "which warnings are fatal, value restriction
// strictness, builtin-call table overrides"), following the teacher's
// internal/eval_harness YAML-spec-loading pattern (spec.go's LoadSpec):
// os.ReadFile + yaml.Unmarshal into a plain tagged struct, with a handful
// of required-field/range checks after unmarshaling rather than custom
// YAML decode hooks.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the on-disk shape of mlc.yaml.
type Config struct {
	// FatalWarnings lists warning codes (e.g. "WARN001") that should be
	// treated as hard errors rather than collected diagnostics.
	FatalWarnings []string `yaml:"fatal_warnings"`

	// StrictValueRestriction is read from mlc.yaml and kept here; no
	// pipeline stage reads it. The inferencer always applies the syntactic
	// value restriction the same way: a binding whose RHS is not a
	// syntactic value is typed monomorphically, never rejected.
	StrictValueRestriction bool `yaml:"strict_value_restriction"`

	// BuiltinOverrides maps a surface builtin-call name (spec §6's
	// `_builtincall "name"` form) to an operator name. It is read from
	// mlc.yaml and kept here; the desugarer's builtin-call table is fixed
	// and does not consult it.
	BuiltinOverrides map[string]string `yaml:"builtin_overrides"`
}

// Default returns the configuration used when no mlc.yaml is present:
// no fatal warnings, permissive value restriction, no overrides.
func Default() *Config {
	return &Config{}
}

// Load reads and validates an mlc.yaml file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	for _, code := range cfg.FatalWarnings {
		if len(code) < 4 || code[:4] != "WARN" {
			return nil, fmt.Errorf("config: %s: fatal_warnings entry %q is not a WARN### code", path, code)
		}
	}

	return &cfg, nil
}

// IsFatal reports whether a warning code should abort the pipeline run.
func (c *Config) IsFatal(code string) bool {
	for _, fw := range c.FatalWarnings {
		if fw == code {
			return true
		}
	}
	return false
}
