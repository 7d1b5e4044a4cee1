// Package lib provides a Go SDK for driving tsk project tasks
// programmatically.
//
// This package allows applications to provision project environments and run
// tasks without shelling out to the tsk CLI binary. It is useful for build
// orchestration, CI tooling, and building automation on top of tsk.
//
// # Quick Start
//
// Create a client and run the verification chain for a project:
//
//	client, err := lib.New(ctx, lib.Config{ProjectRoot: "/path/to/project"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	// Runs toolchain, env and install first, then the tests.
//	if err := client.RunTask(ctx, "test", nil); err != nil {
//	    os.Exit(lib.ExitCode(err))
//	}
//
// # Tasks
//
// The task set is static. [Client.Tasks] lists it in help order together
// with each task's requirements. Requirements run leaf first and at most
// once per [Client.RunTask] call, so running "coverage" on a fresh machine
// provisions the toolchain, creates the environment and installs the
// project before the coverage tools run.
//
// # Environment Lifecycle
//
// The project environment is created by the env task and inspected or
// removed through the client:
//
//	env, _ := client.Environment(ctx)
//	if env.Present {
//	    client.RemoveEnvironment(ctx)
//	}
//
// # Health Checks
//
// Run preflight checks to verify the project setup:
//
//	for _, r := range client.Doctor(ctx) {
//	    fmt.Printf("%s: %s (%s)\n", r.ID, r.Message, r.Status)
//	}
//
// # Run History
//
// Every executed task is recorded in a SQLite database:
//
//	runs, _ := client.History(ctx, 10)
//	for _, r := range runs {
//	    fmt.Printf("%s %s exit=%d\n", r.Task, r.Status, r.ExitCode)
//	}
//
// # Error Handling
//
// All methods return errors that can be inspected with [errors.Is]:
//
//   - [ErrUnknownTask]: The task name is not in the task set.
//   - [ErrToolNotFound]: A delegated executable could not be resolved.
//   - [ErrUnsupportedPlatform]: No toolchain installer exists for this OS.
//   - [ErrNotValid]: Invalid input, configuration or manifest.
//
// [ExitCode] maps any of these (and delegated tool failures) to the exit
// code the tsk CLI would use.
//
// # Testing
//
// Point the client at temporary directories to write tests without touching
// the user's home:
//
//	client, _ := lib.New(ctx, lib.Config{
//	    ProjectRoot: projectDir,
//	    DataDir:     t.TempDir(),
//	    DBPath:      filepath.Join(t.TempDir(), "test.db"),
//	})
//	defer client.Close()
//
// Tasks that only touch the filesystem (clean) run fine in tests; tasks that
// delegate to external tools need those tools installed.
//
// # Concurrency
//
// Task execution is single threaded by design: one task, one step at a
// time. Do not share a project's data directory between concurrent clients.
package lib
