package io

import (
	"context"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/tsk/internal/model"
)

func TestEnvManifestYAMLRepository_GetManifest(t *testing.T) {
	tests := map[string]struct {
		fs          fstest.MapFS
		path        string
		expManifest model.Manifest
		expErr      bool
		errMsg      string
	}{
		"A valid manifest should load successfully": {
			fs: fstest.MapFS{
				"environment.yml": &fstest.MapFile{
					Data: []byte(`name: myproject
channels:
  - defaults
dependencies:
  - python=3.11
  - pip
`),
				},
			},
			path: "environment.yml",
			expManifest: model.Manifest{
				Name:         "myproject",
				Channels:     []string{"defaults"},
				Dependencies: []string{"python=3.11", "pip"},
			},
			expErr: false,
		},

		"A manifest with a nested pip block should load successfully": {
			fs: fstest.MapFS{
				"environment.yml": &fstest.MapFile{
					Data: []byte(`name: myproject
channels:
  - defaults
dependencies:
  - python=3.11
  - pip:
      - -r requirements.txt
`),
				},
			},
			path: "environment.yml",
			expManifest: model.Manifest{
				Name:         "myproject",
				Channels:     []string{"defaults"},
				Dependencies: []string{"python=3.11", "pip"},
			},
			expErr: false,
		},

		"An absolute path should resolve against the filesystem root": {
			fs: fstest.MapFS{
				"home/user/project/environment.yml": &fstest.MapFile{
					Data: []byte(`name: myproject
dependencies:
  - python=3.11
`),
				},
			},
			path: "/home/user/project/environment.yml",
			expManifest: model.Manifest{
				Name:         "myproject",
				Dependencies: []string{"python=3.11"},
			},
			expErr: false,
		},

		"A manifest without a name should fail": {
			fs: fstest.MapFS{
				"environment.yml": &fstest.MapFile{
					Data: []byte(`dependencies:
  - python=3.11
`),
				},
			},
			path:   "environment.yml",
			expErr: true,
			errMsg: "invalid manifest",
		},

		"A manifest without dependencies should fail": {
			fs: fstest.MapFS{
				"environment.yml": &fstest.MapFile{
					Data: []byte(`name: myproject
`),
				},
			},
			path:   "environment.yml",
			expErr: true,
			errMsg: "invalid manifest",
		},

		"A missing file should return error": {
			fs:     fstest.MapFS{},
			path:   "nonexistent.yml",
			expErr: true,
			errMsg: "reading manifest file",
		},

		"Invalid YAML should return error": {
			fs: fstest.MapFS{
				"invalid.yml": &fstest.MapFile{
					Data: []byte(`invalid: yaml: content: {}`),
				},
			},
			path:   "invalid.yml",
			expErr: true,
			errMsg: "parsing YAML",
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)

			repo := NewEnvManifestYAMLRepository(test.fs)
			manifest, err := repo.GetManifest(context.Background(), test.path)

			if test.expErr {
				require.Error(err)
				if test.errMsg != "" {
					assert.Contains(err.Error(), test.errMsg)
				}
				return
			}

			require.NoError(err)
			assert.Equal(test.expManifest, manifest)
		})
	}
}
