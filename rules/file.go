package rules

import (
	"bytes"
	"fmt"
	"os"

	yaml "gopkg.in/yaml.v3"
)

// ruleFile is the on-disk schema for a rule set.
type ruleFile struct {
	Rules []ApplyRule `yaml:"rules"`
}

// LoadFile reads a YAML rule set from path and registers every rule into a
// fresh registry. Decoding is strict: an unknown key in the file is a
// typo, not an extension point, and fails the load.
func LoadFile(path string) (*Registry, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	var rf ruleFile
	if err := dec.Decode(&rf); err != nil {
		return nil, fmt.Errorf("parse rules yaml: %w", err)
	}
	reg := NewRegistry()
	for _, rule := range rf.Rules {
		if err := reg.Add(rule); err != nil {
			return nil, fmt.Errorf("rules file %s: %w", path, err)
		}
	}
	return reg, nil
}

// SaveFile writes the registry's rules to path as YAML, in registration
// order.
func (r *Registry) SaveFile(path string) error {
	b, err := yaml.Marshal(ruleFile{Rules: r.Rules()})
	if err != nil {
		return fmt.Errorf("marshal rules: %w", err)
	}
	return os.WriteFile(path, b, 0o644)
}
