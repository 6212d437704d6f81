package cmd

import (
	"errors"
	"os"

	"github.com/goccy/go-yaml"
)

// rcConfig is the shape of .cqasmrc.yaml, a project-level default for the
// flags analyze otherwise requires on every invocation.
type rcConfig struct {
	APIVersion string `yaml:"apiVersion"`
	Format     string `yaml:"format"`
}

const rcFileName = ".cqasmrc.yaml"

// loadRC reads .cqasmrc.yaml from the current directory, returning a zero
// rcConfig (not an error) when the file doesn't exist -- config is
// optional, every field has a command-line override.
func loadRC() (rcConfig, error) {
	var cfg rcConfig
	data, err := os.ReadFile(rcFileName)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
