package model

import (
	"fmt"
)

// Environment represents a named isolated runtime environment managed by the
// provisioner. Tasks reference it by name only, the provisioner owns its
// lifecycle.
type Environment struct {
	Name         string
	Path         string
	ManifestPath string
	Present      bool
}

// Manifest is the declarative description of an environment: which channels
// to resolve packages from and which dependencies the environment needs.
type Manifest struct {
	Name         string
	Channels     []string
	Dependencies []string
}

// Validate validates the environment manifest.
func (m *Manifest) Validate() error {
	if m.Name == "" {
		return fmt.Errorf("manifest name is required: %w", ErrNotValid)
	}

	if len(m.Dependencies) == 0 {
		return fmt.Errorf("manifest %q needs at least one dependency: %w", m.Name, ErrNotValid)
	}

	return nil
}
