// Package legacyconfig loads the YAML task-list format the original
// log-generator shipped before the DSL existed (spec §7's UnsupportedConst
// error kind has no other trigger — this package is it).
//
// Grounded on original_source/config.rs (Config, Task, Frequency, the
// untagged Amount(u64)/Const(String) union) and original_source/log_runner.rs
// (how a Task's frequency and vars drive repeated, interpolated output —
// the basis for ToProgramSource below). Parsed with gopkg.in/yaml.v3,
// already present in the teacher's go.mod.
package legacyconfig

import (
	"os"

	"gopkg.in/yaml.v3"

	"mustermann/vmerrors"
)

// Config is the root of a legacy task-list file.
type Config struct {
	Tasks []Task `yaml:"tasks"`
}

// Task is one periodic log-emitting unit (spec supplement §2.3).
type Task struct {
	Name      string    `yaml:"name"`
	Frequency Frequency `yaml:"frequency"`
	Template  string    `yaml:"template"`
	Vars      []string  `yaml:"vars"`
	Severity  string    `yaml:"severity"`
}

// Frequency unmarshals either a numeric interval in seconds or the constant
// string "Infinite" (a 1-second tick, per the original runner). Any other
// constant string is rejected with UnsupportedConstError.
type Frequency struct {
	Seconds  uint64
	Infinite bool
}

// UnmarshalYAML implements the untagged Amount(u64) | Const(String) union
// serde_yaml gave the original Rust type.
func (f *Frequency) UnmarshalYAML(value *yaml.Node) error {
	var amount uint64
	if err := value.Decode(&amount); err == nil {
		f.Seconds = amount
		f.Infinite = false
		return nil
	}

	var constant string
	if err := value.Decode(&constant); err != nil {
		return err
	}
	if constant != "Infinite" {
		return &vmerrors.UnsupportedConstError{Const: constant}
	}
	f.Infinite = true
	f.Seconds = 1
	return nil
}

// LoadFile reads and parses a legacy task-list YAML file.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
