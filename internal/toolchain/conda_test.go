package toolchain_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/tsk/internal/toolchain"
)

func TestInstallerFile(t *testing.T) {
	tests := map[string]struct {
		goos    string
		goarch  string
		expFile string
	}{
		"Linux on amd64 should resolve the x86_64 installer": {
			goos: "linux", goarch: "amd64",
			expFile: "Miniconda3-latest-Linux-x86_64.sh",
		},
		"Linux on arm64 should resolve the aarch64 installer": {
			goos: "linux", goarch: "arm64",
			expFile: "Miniconda3-latest-Linux-aarch64.sh",
		},
		"macOS on amd64 should resolve the x86_64 installer": {
			goos: "darwin", goarch: "amd64",
			expFile: "Miniconda3-latest-MacOSX-x86_64.sh",
		},
		"macOS on arm64 should resolve the arm64 installer": {
			goos: "darwin", goarch: "arm64",
			expFile: "Miniconda3-latest-MacOSX-arm64.sh",
		},
		"Windows should resolve the exe installer": {
			goos: "windows", goarch: "amd64",
			expFile: "Miniconda3-latest-Windows-x86_64.exe",
		},
		"An unknown OS should resolve nothing": {
			goos: "plan9", goarch: "amd64",
			expFile: "",
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)

			assert.Equal(test.expFile, toolchain.InstallerFile(test.goos, test.goarch))
		})
	}
}

func TestInstallCommand(t *testing.T) {
	tests := map[string]struct {
		goos    string
		expPath string
		expArgs []string
	}{
		"Unix installs run the installer script in batch mode": {
			goos:    "linux",
			expPath: "sh",
			expArgs: []string{"/cache/installer.sh", "-b", "-p", "/data/conda"},
		},
		"Windows installs run the installer silently": {
			goos:    "windows",
			expPath: "/cache/installer.sh",
			expArgs: []string{"/S", "/D=/data/conda"},
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)

			path, args := toolchain.InstallCommand(test.goos, "/cache/installer.sh", "/data/conda")

			assert.Equal(test.expPath, path)
			assert.Equal(test.expArgs, args)
		})
	}
}

func TestCondaLayout(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	conda, err := toolchain.NewConda(toolchain.CondaConfig{
		Home:    "/data/conda",
		EnvsDir: "/data/envs",
		OS:      "linux",
	})
	require.NoError(err)

	assert.Equal("/data/conda", conda.Home())
	assert.Equal(filepath.Join("/data/conda", "bin", "conda"), conda.Binary())
	assert.Equal(filepath.Join("/data/envs", "myproject"), conda.EnvDir("myproject"))
	assert.Equal(filepath.Join("/data/envs", "myproject", "bin", "pytest"), conda.EnvTool("myproject", "pytest"))
	assert.Equal(
		[]string{"env", "create", "-f", "/src/environment.yml", "-p", filepath.Join("/data/envs", "myproject")},
		conda.CreateEnvArgs("/src/environment.yml", "myproject"),
	)
}

func TestCondaLayoutWindows(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	conda, err := toolchain.NewConda(toolchain.CondaConfig{
		Home:    "conda",
		EnvsDir: "envs",
		OS:      "windows",
	})
	require.NoError(err)

	assert.Equal(filepath.Join("conda", "Scripts", "conda.exe"), conda.Binary())
	assert.Equal(filepath.Join("envs", "myproject", "Scripts", "pytest.exe"), conda.EnvTool("myproject", "pytest"))
}

func TestCondaPresence(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	dataDir := t.TempDir()
	home := filepath.Join(dataDir, "conda")
	envsDir := filepath.Join(dataDir, "envs")

	conda, err := toolchain.NewConda(toolchain.CondaConfig{Home: home, EnvsDir: envsDir})
	require.NoError(err)

	assert.False(conda.Present())
	assert.False(conda.EnvPresent("myproject"))

	require.NoError(os.MkdirAll(home, 0o755))
	require.NoError(os.MkdirAll(conda.EnvDir("myproject"), 0o755))

	assert.True(conda.Present())
	assert.True(conda.EnvPresent("myproject"))
}

func TestNewCondaValidation(t *testing.T) {
	tests := map[string]struct {
		config toolchain.CondaConfig
		expErr bool
	}{
		"A valid config should create the layout": {
			config: toolchain.CondaConfig{Home: "/data/conda", EnvsDir: "/data/envs"},
		},
		"Missing home should fail": {
			config: toolchain.CondaConfig{EnvsDir: "/data/envs"},
			expErr: true,
		},
		"Missing envs directory should fail": {
			config: toolchain.CondaConfig{Home: "/data/conda"},
			expErr: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			require := require.New(t)

			conda, err := toolchain.NewConda(test.config)

			if test.expErr {
				require.Error(err)
				require.Nil(conda)
			} else {
				require.NoError(err)
				require.NotNil(conda)
			}
		})
	}
}
