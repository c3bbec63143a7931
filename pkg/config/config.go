// Package config provides YAML-based configuration loading with environment variable expansion.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Validator is an interface for configuration validation.
type Validator interface {
	Validate() error
}

// Load loads configuration from a YAML file with environment variable expansion.
func Load[T any](filename string, target *T) error {
	if err := decode(filename, target); err != nil {
		return err
	}
	return Validate(target)
}

// LoadOptional decodes filename into target like Load but treats a missing
// file as empty, leaving the defaults in target untouched. It reports whether
// the file was found. Validation is left to the caller so that flag and
// environment overrides can be applied first.
func LoadOptional[T any](filename string, target *T) (bool, error) {
	if filename == "" {
		return false, nil
	}
	if _, err := os.Stat(filename); errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err := decode(filename, target); err != nil {
		return true, err
	}
	return true, nil
}

// Validate runs target's Validate method when it implements Validator.
func Validate[T any](target *T) error {
	if validator, ok := any(target).(Validator); ok {
		if err := validator.Validate(); err != nil {
			return fmt.Errorf("config validation failed: %w", err)
		}
	}
	return nil
}

func decode[T any](filename string, target *T) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", filename, err)
	}

	expandedData := os.ExpandEnv(string(data))

	if err := yaml.Unmarshal([]byte(expandedData), target); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", filename, err)
	}
	return nil
}
