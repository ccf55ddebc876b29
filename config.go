package mathblocks

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultConfigPath is where commands look for configuration when no
// explicit path is given.
const DefaultConfigPath = ".mathblocks.yaml"

// Config is the project-level configuration, usually read from
// .mathblocks.yaml.
type Config struct {
	Name string `yaml:"name"`
	// Runtime overrides the import path of the overflow runtime package.
	// Generated calls use its last path element as the package name.
	Runtime string `yaml:"runtime,omitempty"`
	// ErrName is the identifier assigned when propagation has to name a
	// previously unnamed error result. Defaults to err.
	ErrName string `yaml:"err-name,omitempty"`
	// IgnorePaths lists path prefixes that are never rewritten.
	IgnorePaths []string `yaml:"ignore-paths,omitempty"`
}

// LoadConfig parses the yaml configuration at path. A missing file at the
// default location is not an error: the zero configuration is returned and
// every field falls back to its built-in default. An explicitly named file
// must exist.
func LoadConfig(path string) (Config, error) {
	var config Config

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) && path == DefaultConfigPath {
			return config, nil
		}
		return config, err
	}
	defer f.Close()

	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&config); err != nil {
		return config, fmt.Errorf("error parsing %s: %w", path, err)
	}

	return config, nil
}
