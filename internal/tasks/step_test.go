package tasks_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/slok/tsk/internal/browser/browsermock"
	"github.com/slok/tsk/internal/model"
	"github.com/slok/tsk/internal/provision/provisionmock"
	"github.com/slok/tsk/internal/shell"
	"github.com/slok/tsk/internal/shell/shellmock"
	"github.com/slok/tsk/internal/tasks"
	"github.com/slok/tsk/internal/toolchain"
)

type registryHarness struct {
	shell       *shellmock.MockRunner
	provisioner *provisionmock.MockProvisioner
	browser     *browsermock.MockOpener
	projectRoot string
	envBin      string
	manifest    string
}

func newTestRegistry(t *testing.T) (*tasks.Registry, *registryHarness) {
	t.Helper()

	tmp := t.TempDir()
	h := &registryHarness{
		shell:       shellmock.NewMockRunner(t),
		provisioner: provisionmock.NewMockProvisioner(t),
		browser:     browsermock.NewMockOpener(t),
		projectRoot: filepath.Join(tmp, "project"),
		envBin:      filepath.Join(tmp, "envs", "myproject", "bin"),
		manifest:    filepath.Join(tmp, "project", "environment.yml"),
	}
	require.NoError(t, os.MkdirAll(h.projectRoot, 0755))

	conda, err := toolchain.NewConda(toolchain.CondaConfig{
		Home:    filepath.Join(tmp, "conda"),
		EnvsDir: filepath.Join(tmp, "envs"),
		OS:      "linux",
	})
	require.NoError(t, err)

	reg, err := tasks.NewProjectRegistry(tasks.RegistryConfig{
		Conda:        conda,
		Provisioner:  h.provisioner,
		Shell:        h.shell,
		Browser:      h.browser,
		ProjectRoot:  h.projectRoot,
		EnvName:      "myproject",
		ManifestPath: h.manifest,
	})
	require.NoError(t, err)

	return reg, h
}

func runTaskSteps(t *testing.T, reg *tasks.Registry, name string, rc *tasks.RunContext) error {
	t.Helper()

	task, err := reg.Get(name)
	require.NoError(t, err)

	for _, step := range task.Steps {
		if err := step.Run(context.Background(), rc); err != nil {
			return err
		}
	}

	return nil
}

func TestTaskSteps(t *testing.T) {
	tests := map[string]struct {
		task     string
		stdin    string
		mock     func(h *registryHarness, rc *tasks.RunContext)
		expErr   bool
		expErrIs error
	}{
		"The toolchain task should delegate to the provisioner": {
			task: "toolchain",
			mock: func(h *registryHarness, _ *tasks.RunContext) {
				h.provisioner.On("EnsureToolchain", mock.Anything).Once().Return(nil)
			},
		},

		"The env task should delegate to the provisioner with the manifest": {
			task: "env",
			mock: func(h *registryHarness, _ *tasks.RunContext) {
				h.provisioner.On("EnsureEnvironment", mock.Anything, "myproject", h.manifest).Once().Return(nil)
			},
		},

		"The lint task should run flake8 from the environment": {
			task: "lint",
			mock: func(h *registryHarness, rc *tasks.RunContext) {
				h.shell.On("Run", mock.Anything, shell.Command{
					Path:   filepath.Join(h.envBin, "flake8"),
					Args:   []string{"src", "tests"},
					Dir:    h.projectRoot,
					Env:    rc.Env,
					Stdin:  rc.Stdin,
					Stdout: rc.Stdout,
					Stderr: rc.Stderr,
				}).Once().Return(nil)
			},
		},

		"The install task should pip install the project editable": {
			task: "install",
			mock: func(h *registryHarness, rc *tasks.RunContext) {
				h.shell.On("Run", mock.Anything, mock.MatchedBy(func(cmd shell.Command) bool {
					return cmd.Path == filepath.Join(h.envBin, "python") &&
						assert.ObjectsAreEqual([]string{"-m", "pip", "install", "-e", h.projectRoot}, cmd.Args)
				})).Once().Return(nil)
			},
		},

		"The coverage task should open the report once the runs finish": {
			task: "coverage",
			mock: func(h *registryHarness, _ *tasks.RunContext) {
				coverage := filepath.Join(h.envBin, "coverage")
				for _, args := range [][]string{
					{"run", "-m", "pytest", "tests"},
					{"html", "-d", "htmlcov"},
					{"report"},
				} {
					args := args
					h.shell.On("Run", mock.Anything, mock.MatchedBy(func(cmd shell.Command) bool {
						return cmd.Path == coverage && assert.ObjectsAreEqual(args, cmd.Args)
					})).Once().Return(nil)
				}
				h.browser.On("Open", filepath.Join(h.projectRoot, "htmlcov", "index.html")).Once().Return(nil)
			},
		},

		"A browser failure should not fail the task": {
			task: "docs",
			mock: func(h *registryHarness, _ *tasks.RunContext) {
				h.shell.On("Run", mock.Anything, mock.Anything).Once().Return(nil)
				h.browser.On("Open", mock.Anything).Once().Return(errors.New("no display"))
			},
		},

		"The bump task should prompt for a version and pass it through": {
			task:  "bump",
			stdin: "1.2.3\n",
			mock: func(h *registryHarness, _ *tasks.RunContext) {
				h.shell.On("Run", mock.Anything, mock.MatchedBy(func(cmd shell.Command) bool {
					return cmd.Path == filepath.Join(h.envBin, "bumpversion") &&
						assert.ObjectsAreEqual([]string{"--new-version", "1.2.3", "patch"}, cmd.Args)
				})).Once().Return(nil)
			},
		},

		"An empty answer to the version prompt should fail": {
			task:     "bump",
			stdin:    "\n",
			mock:     func(_ *registryHarness, _ *tasks.RunContext) {},
			expErr:   true,
			expErrIs: model.ErrNotValid,
		},

		"A failing tool should abort the task with its error": {
			task: "test",
			mock: func(h *registryHarness, _ *tasks.RunContext) {
				h.shell.On("Run", mock.Anything, mock.Anything).Once().Return(&model.ToolError{Tool: "pytest", ExitCode: 2})
			},
			expErr: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			require := require.New(t)

			reg, h := newTestRegistry(t)
			rc := &tasks.RunContext{
				Stdin:  strings.NewReader(test.stdin),
				Stdout: &bytes.Buffer{},
				Stderr: &bytes.Buffer{},
				Env:    map[string]string{"PYTHONDONTWRITEBYTECODE": "1"},
				Values: map[string]string{},
			}
			test.mock(h, rc)

			err := runTaskSteps(t, reg, test.task, rc)

			if test.expErr {
				require.Error(err)
				if test.expErrIs != nil {
					require.ErrorIs(err, test.expErrIs)
				}
			} else {
				require.NoError(err)
			}
		})
	}
}

func TestBumpPromptWritesQuestion(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	reg, h := newTestRegistry(t)
	h.shell.On("Run", mock.Anything, mock.Anything).Once().Return(nil)

	stdout := &bytes.Buffer{}
	rc := &tasks.RunContext{
		Stdin:  strings.NewReader("2.0.0\n"),
		Stdout: stdout,
		Stderr: &bytes.Buffer{},
		Values: map[string]string{},
	}

	require.NoError(runTaskSteps(t, reg, "bump", rc))
	assert.Equal("New version: ", stdout.String())
}

func TestBumpWithoutPromptedVersion(t *testing.T) {
	require := require.New(t)

	reg, _ := newTestRegistry(t)
	task, err := reg.Get("bump")
	require.NoError(err)

	// Skip the prompt step and run the tool step directly, the version
	// placeholder has nothing to expand from.
	rc := &tasks.RunContext{Values: map[string]string{}}
	err = task.Steps[1].Run(context.Background(), rc)

	require.Error(err)
	require.ErrorIs(err, model.ErrNotValid)
}

func TestCleanTask(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	reg, h := newTestRegistry(t)

	// Artifacts the clean task must remove.
	for _, dir := range []string{"build", "dist", "htmlcov", filepath.Join("docs", "_build"), ".pytest_cache", "myproject.egg-info"} {
		require.NoError(os.MkdirAll(filepath.Join(h.projectRoot, dir), 0755))
	}
	require.NoError(os.WriteFile(filepath.Join(h.projectRoot, ".coverage"), []byte("data"), 0644))

	// Content the clean task must leave alone.
	require.NoError(os.MkdirAll(filepath.Join(h.projectRoot, "src"), 0755))
	require.NoError(os.WriteFile(filepath.Join(h.projectRoot, "setup.py"), []byte("setup"), 0644))

	rc := &tasks.RunContext{Values: map[string]string{}}
	require.NoError(runTaskSteps(t, reg, "clean", rc))

	for _, gone := range []string{"build", "dist", "htmlcov", filepath.Join("docs", "_build"), ".pytest_cache", "myproject.egg-info", ".coverage"} {
		_, err := os.Stat(filepath.Join(h.projectRoot, gone))
		assert.True(os.IsNotExist(err), "%s should have been removed", gone)
	}

	for _, kept := range []string{"src", "setup.py", "docs"} {
		_, err := os.Stat(filepath.Join(h.projectRoot, kept))
		assert.NoError(err, "%s should have been kept", kept)
	}
}

func TestCleanTaskOnMissingArtifacts(t *testing.T) {
	require := require.New(t)

	reg, _ := newTestRegistry(t)

	rc := &tasks.RunContext{Values: map[string]string{}}
	require.NoError(runTaskSteps(t, reg, "clean", rc))
}
