package api

import (
	"fmt"
)

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.ScratchDir == "" {
		return fmt.Errorf("scratchDir is required")
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}

	if err := c.Tools.validate(); err != nil {
		return fmt.Errorf("tools: %w", err)
	}

	if c.Timeouts.Collection < 0 {
		return fmt.Errorf("timeouts.collection must not be negative")
	}
	if c.Timeouts.Metadata < 0 {
		return fmt.Errorf("timeouts.metadata must not be negative")
	}

	if err := c.Arguments.validate(); err != nil {
		return fmt.Errorf("arguments: %w", err)
	}

	return nil
}

func (t ToolsConfig) validate() error {
	required := []struct {
		name, value string
	}{
		{"unite", t.Unite},
		{"otf2otc", t.Otf2Otc},
		{"otc2otf", t.Otc2Otf},
		{"ttfname", t.TtfName},
	}
	for _, r := range required {
		if r.value == "" {
			return fmt.Errorf("%s is required", r.name)
		}
	}
	return nil
}

func (a ArgumentsConfig) validate() error {
	required := []struct {
		name, value string
	}{
		{"split", a.Split},
		{"unite", a.Unite},
		{"collection", a.Collection},
		{"extract", a.Extract},
		{"apply", a.Apply},
	}
	for _, r := range required {
		if r.value == "" {
			return fmt.Errorf("%s template is required", r.name)
		}
	}
	return nil
}
