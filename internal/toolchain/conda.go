package toolchain

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// Conda resolves the on-disk layout of a conda-style base toolchain and the
// environments it manages. It never talks to the network or spawns anything,
// it only knows where things live and how they are invoked.
type Conda struct {
	home    string
	envsDir string
	goos    string
}

// CondaConfig configures the toolchain layout.
type CondaConfig struct {
	// Home is the toolchain install prefix.
	Home string
	// EnvsDir is the directory holding the managed environments.
	EnvsDir string
	// OS defaults to the current operating system. Overridable for testing.
	OS string
}

func (c *CondaConfig) defaults() error {
	if c.Home == "" {
		return fmt.Errorf("toolchain home is required")
	}
	if c.EnvsDir == "" {
		return fmt.Errorf("environments directory is required")
	}
	if c.OS == "" {
		c.OS = runtime.GOOS
	}
	return nil
}

// NewConda returns the toolchain layout.
func NewConda(cfg CondaConfig) (*Conda, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Conda{
		home:    cfg.Home,
		envsDir: cfg.EnvsDir,
		goos:    cfg.OS,
	}, nil
}

// Home returns the toolchain install prefix.
func (c *Conda) Home() string { return c.home }

// Present returns true when the toolchain is installed.
func (c *Conda) Present() bool {
	info, err := os.Stat(c.home)
	return err == nil && info.IsDir()
}

// Binary returns the path of the toolchain's own executable.
func (c *Conda) Binary() string {
	if c.goos == "windows" {
		return filepath.Join(c.home, "Scripts", "conda.exe")
	}
	return filepath.Join(c.home, "bin", "conda")
}

// EnvDir returns the directory of a named environment.
func (c *Conda) EnvDir(name string) string {
	return filepath.Join(c.envsDir, name)
}

// EnvPresent returns true when a named environment exists.
func (c *Conda) EnvPresent(name string) bool {
	info, err := os.Stat(c.EnvDir(name))
	return err == nil && info.IsDir()
}

// EnvTool returns the path of a delegated tool inside a named environment.
func (c *Conda) EnvTool(name, tool string) string {
	if c.goos == "windows" {
		return filepath.Join(c.EnvDir(name), "Scripts", tool+".exe")
	}
	return filepath.Join(c.EnvDir(name), "bin", tool)
}

// CreateEnvArgs returns the toolchain arguments that create a named
// environment from a manifest.
func (c *Conda) CreateEnvArgs(manifestPath, name string) []string {
	return []string{"env", "create", "-f", manifestPath, "-p", c.EnvDir(name)}
}

// InstallCommand returns the command performing an unattended install of a
// downloaded installer artifact into home.
func InstallCommand(goos, installerPath, home string) (path string, args []string) {
	if goos == "windows" {
		return installerPath, []string{"/S", "/D=" + home}
	}
	return "sh", []string{installerPath, "-b", "-p", home}
}

// InstallerFile returns the platform-specific installer artifact name. An
// operating system without an installer yields an empty name.
func InstallerFile(goos, goarch string) string {
	switch goos {
	case "linux":
		return fmt.Sprintf("Miniconda3-latest-Linux-%s.sh", linuxArch(goarch))
	case "darwin":
		return fmt.Sprintf("Miniconda3-latest-MacOSX-%s.sh", darwinArch(goarch))
	case "windows":
		return "Miniconda3-latest-Windows-x86_64.exe"
	}
	return ""
}

func linuxArch(goarch string) string {
	switch goarch {
	case "amd64":
		return "x86_64"
	case "arm64":
		return "aarch64"
	}
	return goarch
}

func darwinArch(goarch string) string {
	switch goarch {
	case "amd64":
		return "x86_64"
	case "arm64":
		return "arm64"
	}
	return goarch
}
