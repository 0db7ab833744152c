// Package utils holds trainer-side helpers: architecture parsing, run
// configuration validation, and dataset loading.
package utils

import (
	"fmt"
	"strconv"
	"strings"
)

// Config holds a training run configuration.
type Config struct {
	Architecture []int
	LearningRate float64
	Seed         uint64
	DataPath     string
	Passes       int
}

// ParseArchitecture parses a space-separated architecture string such as
// "2 3 1" into a slice of layer sizes.
func ParseArchitecture(archStr string) ([]int, error) {
	archParts := strings.Fields(archStr)
	if len(archParts) == 0 {
		return nil, fmt.Errorf("empty architecture string")
	}
	arch := make([]int, len(archParts))
	for i, s := range archParts {
		n, err := strconv.Atoi(s)
		if err != nil {
			return nil, fmt.Errorf("parsing layer size %q: %w", s, err)
		}
		arch[i] = n
	}
	return arch, nil
}

// ValidateConfig validates a training run configuration.
func ValidateConfig(config *Config) error {
	if len(config.Architecture) < 2 {
		return fmt.Errorf("architecture must have at least 2 layers (input and output)")
	}
	for i, size := range config.Architecture {
		if size < 1 {
			return fmt.Errorf("layer %d has non-positive size %d", i, size)
		}
	}
	if config.LearningRate <= 0 {
		return fmt.Errorf("learning rate must be positive")
	}
	if config.Passes < 1 {
		return fmt.Errorf("passes must be positive")
	}
	return nil
}
