package io

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/slok/tsk/internal/model"
)

// EnvManifestYAMLRepository loads environment manifests from YAML files.
type EnvManifestYAMLRepository struct {
	fs fs.FS
}

// NewEnvManifestYAMLRepository creates a new YAML environment manifest repository.
func NewEnvManifestYAMLRepository(filesystem fs.FS) *EnvManifestYAMLRepository {
	return &EnvManifestYAMLRepository{fs: filesystem}
}

// GetManifest loads an environment manifest from a YAML file and returns a
// validated domain model.
func (r *EnvManifestYAMLRepository) GetManifest(ctx context.Context, path string) (model.Manifest, error) {
	// fs.FS paths are never rooted, the repository is wired over the OS
	// root so absolute paths lose their leading separator.
	if filepath.IsAbs(path) {
		path = strings.TrimPrefix(path, string(filepath.Separator))
	}

	data, err := fs.ReadFile(r.fs, path)
	if err != nil {
		return model.Manifest{}, fmt.Errorf("reading manifest file: %w", err)
	}

	if ctx.Err() != nil {
		return model.Manifest{}, ctx.Err()
	}

	var manifest Manifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return model.Manifest{}, fmt.Errorf("parsing YAML: %w", err)
	}

	m := manifest.toModel()
	if err := m.Validate(); err != nil {
		return model.Manifest{}, fmt.Errorf("invalid manifest: %w", err)
	}

	return m, nil
}

// Manifest represents the YAML structure of an environment manifest.
type Manifest struct {
	Name         string        `yaml:"name"`
	Channels     []string      `yaml:"channels"`
	Dependencies []interface{} `yaml:"dependencies"`
}

func (m Manifest) toModel() model.Manifest {
	deps := make([]string, 0, len(m.Dependencies))
	for _, d := range m.Dependencies {
		switch v := d.(type) {
		case string:
			deps = append(deps, v)
		case map[string]interface{}:
			// Nested package-manager blocks (a pip section, usually) count
			// as a dependency on the manager itself.
			keys := make([]string, 0, len(v))
			for k := range v {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			deps = append(deps, keys...)
		}
	}

	return model.Manifest{
		Name:         m.Name,
		Channels:     m.Channels,
		Dependencies: deps,
	}
}
