package tasks

import (
	"fmt"
	"path/filepath"

	"github.com/slok/tsk/internal/browser"
	"github.com/slok/tsk/internal/log"
	"github.com/slok/tsk/internal/model"
	"github.com/slok/tsk/internal/prompt"
	"github.com/slok/tsk/internal/provision"
	"github.com/slok/tsk/internal/shell"
	"github.com/slok/tsk/internal/toolchain"
)

// Task is a named unit of project automation: what it is, what must run
// before it and the steps it performs.
type Task struct {
	model.Task
	Steps []Step
}

// Registry is a validated set of tasks. Construction guarantees unique
// names, known requirements and the absence of requirement cycles, so
// resolution never has to deal with a malformed set.
type Registry struct {
	order []string
	tasks map[string]*Task
}

// New builds a registry from the given tasks and validates the whole set.
func New(taskSet ...*Task) (*Registry, error) {
	r := &Registry{
		order: make([]string, 0, len(taskSet)),
		tasks: map[string]*Task{},
	}

	for _, task := range taskSet {
		if err := task.Validate(); err != nil {
			return nil, fmt.Errorf("task %q: %w", task.Name, err)
		}

		if _, ok := r.tasks[task.Name]; ok {
			return nil, fmt.Errorf("task %q declared twice: %w", task.Name, model.ErrNotValid)
		}

		r.order = append(r.order, task.Name)
		r.tasks[task.Name] = task
	}

	for _, task := range taskSet {
		for _, req := range task.Requires {
			if _, ok := r.tasks[req]; !ok {
				return nil, fmt.Errorf("task %q requires unknown task %q: %w", task.Name, req, model.ErrNotValid)
			}
		}
	}

	if err := r.validateAcyclic(); err != nil {
		return nil, err
	}

	return r, nil
}

const (
	colorWhite = iota
	colorGrey
	colorBlack
)

// validateAcyclic walks the requirement edges depth-first. Meeting a grey
// node again means the walk came back to an ancestor, a cycle.
func (r *Registry) validateAcyclic() error {
	colors := make(map[string]int, len(r.tasks))

	var visit func(name string) error
	visit = func(name string) error {
		switch colors[name] {
		case colorGrey:
			return fmt.Errorf("requirement cycle through task %q: %w", name, model.ErrNotValid)
		case colorBlack:
			return nil
		}

		colors[name] = colorGrey
		for _, req := range r.tasks[name].Requires {
			if err := visit(req); err != nil {
				return err
			}
		}
		colors[name] = colorBlack

		return nil
	}

	for _, name := range r.order {
		if err := visit(name); err != nil {
			return err
		}
	}

	return nil
}

// Get returns the named task.
func (r *Registry) Get(name string) (*Task, error) {
	task, ok := r.tasks[name]
	if !ok {
		return nil, fmt.Errorf("task %q: %w", name, model.ErrUnknownTask)
	}

	return task, nil
}

// List returns every task in declaration order.
func (r *Registry) List() []model.Task {
	list := make([]model.Task, 0, len(r.order))
	for _, name := range r.order {
		list = append(list, r.tasks[name].Task)
	}

	return list
}

// Tools returns the distinct delegated tool names in first-use order.
func (r *Registry) Tools() []string {
	seen := map[string]bool{}
	tools := []string{}
	for _, name := range r.order {
		for _, step := range r.tasks[name].Steps {
			ts, ok := step.(toolStep)
			if !ok || seen[ts.tool] {
				continue
			}
			seen[ts.tool] = true
			tools = append(tools, ts.tool)
		}
	}

	return tools
}

// Resolve returns the named task preceded by its full requirement chain,
// leaf-first, every task at most once.
func (r *Registry) Resolve(name string) ([]*Task, error) {
	root, ok := r.tasks[name]
	if !ok {
		return nil, fmt.Errorf("task %q: %w", name, model.ErrUnknownTask)
	}

	resolved := make([]*Task, 0, len(r.tasks))
	seen := map[string]bool{}

	var visit func(t *Task)
	visit = func(t *Task) {
		if seen[t.Name] {
			return
		}
		seen[t.Name] = true

		for _, req := range t.Requires {
			visit(r.tasks[req])
		}

		resolved = append(resolved, t)
	}
	visit(root)

	return resolved, nil
}

// RegistryConfig is the configuration of the standard project registry.
type RegistryConfig struct {
	Conda       *toolchain.Conda
	Provisioner provision.Provisioner
	Shell       shell.Runner
	Prompter    prompt.Prompter
	Browser     browser.Opener
	// ProjectRoot is the directory delegated tools run in.
	ProjectRoot string
	// EnvName is the project environment the tools run from.
	EnvName string
	// ManifestPath is the environment manifest location.
	ManifestPath string
	Logger       log.Logger
}

func (c *RegistryConfig) defaults() error {
	if c.Conda == nil {
		return fmt.Errorf("toolchain layout is required")
	}

	if c.Provisioner == nil {
		return fmt.Errorf("provisioner is required")
	}

	if c.Shell == nil {
		return fmt.Errorf("shell runner is required")
	}

	if c.Prompter == nil {
		c.Prompter = prompt.LinePrompter{}
	}

	if c.Browser == nil {
		c.Browser = browser.DefaultOpener{}
	}

	if c.ProjectRoot == "" {
		c.ProjectRoot = "."
	}

	if c.EnvName == "" {
		return fmt.Errorf("environment name is required")
	}

	if c.ManifestPath == "" {
		return fmt.Errorf("manifest path is required")
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "tasks.Registry"})

	return nil
}

// Standard project task names.
const (
	TaskToolchain = "toolchain"
	TaskEnv       = "env"
	TaskInstall   = "install"
	TaskLint      = "lint"
	TaskTest      = "test"
	TaskCoverage  = "coverage"
	TaskDocs      = "docs"
	TaskPackage   = "package"
	TaskBump      = "bump"
	TaskClean     = "clean"
)

var projectTasks = []model.Task{
	{Name: TaskToolchain, Description: "Install the base toolchain."},
	{Name: TaskEnv, Description: "Create the project environment.", Requires: []string{TaskToolchain}},
	{Name: TaskInstall, Description: "Install the project in editable mode.", Requires: []string{TaskEnv}},
	{Name: TaskLint, Description: "Lint the source tree.", Requires: []string{TaskInstall}},
	{Name: TaskTest, Description: "Run the test suite.", Requires: []string{TaskInstall}},
	{Name: TaskCoverage, Description: "Run the test suite with coverage and open the HTML report.", Requires: []string{TaskInstall}},
	{Name: TaskDocs, Description: "Build the documentation and open it.", Requires: []string{TaskInstall}},
	{Name: TaskPackage, Description: "Build source and wheel distributions.", Requires: []string{TaskInstall}},
	{Name: TaskBump, Description: "Bump the project version.", Requires: []string{TaskInstall}},
	{Name: TaskClean, Description: "Remove build artifacts."},
}

// ProjectTasks returns the standard task set metadata in help order, without
// any wiring. Commands register from this before flags are even parsed.
func ProjectTasks() []model.Task {
	return append([]model.Task{}, projectTasks...)
}

// NewProjectRegistry builds the standard task set that automates a Python
// project: provisioning, editable install, lint, tests, coverage, docs,
// packaging, version bumps and cleanup.
func NewProjectRegistry(cfg RegistryConfig) (*Registry, error) {
	err := cfg.defaults()
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	tool := func(name string, args ...string) Step {
		return toolStep{
			shell:   cfg.Shell,
			conda:   cfg.Conda,
			envName: cfg.EnvName,
			dir:     cfg.ProjectRoot,
			tool:    name,
			args:    args,
		}
	}
	browse := func(path string) Step {
		return browseStep{opener: cfg.Browser, logger: cfg.Logger, dir: cfg.ProjectRoot, path: path}
	}

	steps := map[string][]Step{
		TaskToolchain: {ensureToolchainStep{provisioner: cfg.Provisioner}},

		TaskEnv: {ensureEnvStep{
			provisioner:  cfg.Provisioner,
			envName:      cfg.EnvName,
			manifestPath: cfg.ManifestPath,
		}},

		TaskInstall: {tool("python", "-m", "pip", "install", "-e", cfg.ProjectRoot)},

		TaskLint: {tool("flake8", "src", "tests")},

		TaskTest: {tool("pytest", "tests")},

		TaskCoverage: {
			tool("coverage", "run", "-m", "pytest", "tests"),
			tool("coverage", "html", "-d", "htmlcov"),
			tool("coverage", "report"),
			browse(filepath.Join("htmlcov", "index.html")),
		},

		TaskDocs: {
			tool("sphinx-build", "-b", "html", "docs", filepath.Join("docs", "_build", "html")),
			browse(filepath.Join("docs", "_build", "html", "index.html")),
		},

		TaskPackage: {
			tool("python", "setup.py", "sdist", "bdist_wheel"),
			// twine globs its own arguments, no shell needed.
			tool("twine", "check", "dist/*"),
		},

		TaskBump: {
			promptStep{prompter: cfg.Prompter, question: "New version", key: "version"},
			tool("bumpversion", "--new-version", "{version}", "patch"),
		},

		TaskClean: {cleanStep{
			logger: cfg.Logger,
			dir:    cfg.ProjectRoot,
			patterns: []string{
				"build",
				"dist",
				"htmlcov",
				filepath.Join("docs", "_build"),
				".pytest_cache",
				".coverage",
				"*.egg-info",
			},
		}},
	}

	taskSet := make([]*Task, 0, len(projectTasks))
	for _, meta := range projectTasks {
		taskSet = append(taskSet, &Task{Task: meta, Steps: steps[meta.Name]})
	}

	return New(taskSet...)
}
