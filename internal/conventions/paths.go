package conventions

import "path/filepath"

const (
	// DefaultDataDir is the default tsk data directory name (relative to home).
	DefaultDataDir = ".tsk"
	// CondaDir is the subdirectory holding the base toolchain install.
	CondaDir = "conda"
	// EnvsDir is the subdirectory holding the managed environments.
	EnvsDir = "envs"
	// CacheDir is the subdirectory holding downloaded installer artifacts.
	CacheDir = "cache"

	// DBFile is the run history database filename.
	DBFile = "tsk.db"

	// DefaultManifestFile is the environment manifest filename looked up in
	// the project root when no explicit path is configured.
	DefaultManifestFile = "environment.yml"
)

// CondaHome returns the base toolchain install directory.
func CondaHome(dataDir string) string {
	return filepath.Join(dataDir, CondaDir)
}

// EnvsHome returns the directory holding every managed environment.
func EnvsHome(dataDir string) string {
	return filepath.Join(dataDir, EnvsDir)
}

// EnvDir returns the directory for a specific named environment.
func EnvDir(envsDir, name string) string {
	return filepath.Join(envsDir, name)
}

// CacheHome returns the installer download cache directory.
func CacheHome(dataDir string) string {
	return filepath.Join(dataDir, CacheDir)
}

// DBPath returns the run history database path.
func DBPath(dataDir string) string {
	return filepath.Join(dataDir, DBFile)
}
