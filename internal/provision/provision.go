package provision

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/slok/tsk/internal/log"
	"github.com/slok/tsk/internal/model"
	"github.com/slok/tsk/internal/shell"
	"github.com/slok/tsk/internal/toolchain"
)

// Provisioner knows how to set up and tear down the base toolchain and the
// project environments. Implementations MUST be idempotent: ensuring
// something that already exists is a no-op, removing something absent
// succeeds.
type Provisioner interface {
	EnsureToolchain(ctx context.Context) error
	EnsureEnvironment(ctx context.Context, name, manifestPath string) error
	RemoveEnvironment(ctx context.Context, name string) error
	Status(ctx context.Context, name string) (*model.Environment, error)
	Check(ctx context.Context, req CheckRequest) []model.CheckResult
}

//go:generate mockery --case underscore --output provisionmock --outpkg provisionmock --name Provisioner

// ManifestRepo knows how to load environment manifests.
type ManifestRepo interface {
	GetManifest(ctx context.Context, path string) (model.Manifest, error)
}

// CheckRequest carries the project details a preflight inspection needs.
type CheckRequest struct {
	EnvName      string
	ManifestPath string
	// Tools are the executables the project tasks delegate to.
	Tools []string
}

// ServiceConfig is the configuration of Service.
type ServiceConfig struct {
	Conda     *toolchain.Conda
	Fetcher   *toolchain.Fetcher
	Shell     shell.Runner
	Manifests ManifestRepo
	// OS and Arch default to the current platform.
	OS   string
	Arch string
	// Stdout and Stderr receive the toolchain's own output while it
	// installs or creates environments.
	Stdout io.Writer
	Stderr io.Writer
	Logger log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.Conda == nil {
		return fmt.Errorf("toolchain layout is required")
	}

	if c.Fetcher == nil {
		return fmt.Errorf("installer fetcher is required")
	}

	if c.Shell == nil {
		return fmt.Errorf("shell runner is required")
	}

	if c.Manifests == nil {
		return fmt.Errorf("manifest repository is required")
	}

	if c.OS == "" {
		c.OS = runtime.GOOS
	}

	if c.Arch == "" {
		c.Arch = runtime.GOARCH
	}

	if c.Stdout == nil {
		c.Stdout = os.Stdout
	}

	if c.Stderr == nil {
		c.Stderr = os.Stderr
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "provision.Service"})

	return nil
}

// Service provisions the base toolchain and the project environments by
// delegating to the toolchain's own binaries.
type Service struct {
	conda     *toolchain.Conda
	fetcher   *toolchain.Fetcher
	shell     shell.Runner
	manifests ManifestRepo
	goos      string
	goarch    string
	stdout    io.Writer
	stderr    io.Writer
	logger    log.Logger
}

// NewService returns a new provisioning service.
func NewService(cfg ServiceConfig) (*Service, error) {
	err := cfg.defaults()
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &Service{
		conda:     cfg.Conda,
		fetcher:   cfg.Fetcher,
		shell:     cfg.Shell,
		manifests: cfg.Manifests,
		goos:      cfg.OS,
		goarch:    cfg.Arch,
		stdout:    cfg.Stdout,
		stderr:    cfg.Stderr,
		logger:    cfg.Logger,
	}, nil
}

var _ Provisioner = (*Service)(nil)

// EnsureToolchain installs the base toolchain if it is missing. The platform
// installer is fetched into the cache and run unattended.
func (s *Service) EnsureToolchain(ctx context.Context) error {
	if s.conda.Present() {
		s.logger.Debugf("Toolchain already installed at %s", s.conda.Home())
		return nil
	}

	installerPath, err := s.fetcher.Fetch(ctx, s.goos, s.goarch)
	if err != nil {
		return fmt.Errorf("could not fetch toolchain installer: %w", err)
	}

	s.logger.Infof("Installing toolchain into %s", s.conda.Home())
	path, args := toolchain.InstallCommand(s.goos, installerPath, s.conda.Home())
	err = s.shell.Run(ctx, shell.Command{
		Path:   path,
		Args:   args,
		Stdout: s.stdout,
		Stderr: s.stderr,
	})
	if err != nil {
		return fmt.Errorf("could not install toolchain: %w", err)
	}

	return nil
}

// EnsureEnvironment creates the named environment from its manifest if it is
// missing. The manifest is validated before the toolchain gets involved.
func (s *Service) EnsureEnvironment(ctx context.Context, name, manifestPath string) error {
	if name == "" {
		return fmt.Errorf("environment name is required: %w", model.ErrNotValid)
	}

	if s.conda.EnvPresent(name) {
		s.logger.Debugf("Environment %q already present at %s", name, s.conda.EnvDir(name))
		return nil
	}

	manifest, err := s.manifests.GetManifest(ctx, manifestPath)
	if err != nil {
		return fmt.Errorf("could not load manifest: %w", err)
	}

	s.logger.Infof("Creating environment %q (%d dependencies)", name, len(manifest.Dependencies))
	err = s.shell.Run(ctx, shell.Command{
		Path:   s.conda.Binary(),
		Args:   s.conda.CreateEnvArgs(manifestPath, name),
		Stdout: s.stdout,
		Stderr: s.stderr,
	})
	if err != nil {
		return fmt.Errorf("could not create environment %q: %w", name, err)
	}

	return nil
}

// RemoveEnvironment deletes the named environment. A missing environment is
// not an error.
func (s *Service) RemoveEnvironment(_ context.Context, name string) error {
	if name == "" {
		return fmt.Errorf("environment name is required: %w", model.ErrNotValid)
	}

	dir := s.conda.EnvDir(name)
	err := os.RemoveAll(dir)
	if err != nil {
		return fmt.Errorf("could not remove environment %q: %w", name, err)
	}

	s.logger.Infof("Removed environment %q", name)

	return nil
}

// Status reports whether the named environment exists and where it lives.
func (s *Service) Status(_ context.Context, name string) (*model.Environment, error) {
	if name == "" {
		return nil, fmt.Errorf("environment name is required: %w", model.ErrNotValid)
	}

	return &model.Environment{
		Name:    name,
		Path:    s.conda.EnvDir(name),
		Present: s.conda.EnvPresent(name),
	}, nil
}

// Check inspects the toolchain, the manifest, the environment and the
// delegated tools, and reports one result per check.
func (s *Service) Check(ctx context.Context, req CheckRequest) []model.CheckResult {
	results := []model.CheckResult{}

	if toolchain.InstallerFile(s.goos, s.goarch) == "" {
		results = append(results, model.CheckResult{
			ID:      "platform_supported",
			Status:  model.CheckStatusError,
			Message: fmt.Sprintf("no toolchain installer for %s/%s", s.goos, s.goarch),
		})
	} else {
		results = append(results, model.CheckResult{
			ID:      "platform_supported",
			Status:  model.CheckStatusOK,
			Message: fmt.Sprintf("toolchain installer available for %s/%s", s.goos, s.goarch),
		})
	}

	if s.conda.Present() {
		results = append(results, model.CheckResult{
			ID:      "toolchain_present",
			Status:  model.CheckStatusOK,
			Message: fmt.Sprintf("toolchain installed at %s", s.conda.Home()),
		})
	} else {
		results = append(results, model.CheckResult{
			ID:      "toolchain_present",
			Status:  model.CheckStatusWarning,
			Message: "toolchain not installed, the toolchain task will install it",
		})
	}

	_, err := s.manifests.GetManifest(ctx, req.ManifestPath)
	if err != nil {
		results = append(results, model.CheckResult{
			ID:      "manifest_valid",
			Status:  model.CheckStatusError,
			Message: fmt.Sprintf("manifest %s: %v", req.ManifestPath, err),
		})
	} else {
		results = append(results, model.CheckResult{
			ID:      "manifest_valid",
			Status:  model.CheckStatusOK,
			Message: fmt.Sprintf("manifest %s is valid", req.ManifestPath),
		})
	}

	if !s.conda.EnvPresent(req.EnvName) {
		results = append(results, model.CheckResult{
			ID:      "env_present",
			Status:  model.CheckStatusWarning,
			Message: fmt.Sprintf("environment %q not created, the env task will create it", req.EnvName),
		})

		return results
	}

	results = append(results, model.CheckResult{
		ID:      "env_present",
		Status:  model.CheckStatusOK,
		Message: fmt.Sprintf("environment %q present at %s", req.EnvName, s.conda.EnvDir(req.EnvName)),
	})

	// Tool checks only make sense once the environment exists.
	for _, tool := range req.Tools {
		path := s.conda.EnvTool(req.EnvName, tool)
		_, err := os.Stat(path)
		if err != nil {
			results = append(results, model.CheckResult{
				ID:      fmt.Sprintf("tool_%s", tool),
				Status:  model.CheckStatusWarning,
				Message: fmt.Sprintf("%s not found in environment %q", tool, req.EnvName),
			})
			continue
		}

		results = append(results, model.CheckResult{
			ID:      fmt.Sprintf("tool_%s", tool),
			Status:  model.CheckStatusOK,
			Message: fmt.Sprintf("%s available at %s", tool, path),
		})
	}

	return results
}
