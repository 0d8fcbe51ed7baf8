// Package testutil pins the skeld directories to a temporary root and
// writes fixture files for tests.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// Env is a test environment with every skeld directory below one
// temporary root. The XDG environment variables point into the root, so
// directory lookups never touch the real configuration.
type Env struct {
	T    *testing.T
	Root string

	// HomeDir is the fake home directory.
	HomeDir string

	// ConfigDir is the skeld configuration directory.
	ConfigDir string

	// DataDir is the user-writable skeld data directory.
	DataDir string

	// SystemDataDir is a system skeld data directory, reachable through
	// XDG_DATA_DIRS.
	SystemDataDir string

	// StateDir is the skeld state directory.
	StateDir string
}

// NewEnv builds a fresh environment for one test. The environment
// variables are restored when the test finishes.
func NewEnv(t *testing.T) *Env {
	t.Helper()

	// A symlinked temp directory would make canonicalized paths diverge
	// from the configured ones.
	root, err := filepath.EvalSymlinks(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to resolve temp directory: %v", err)
	}

	env := &Env{
		T:             t,
		Root:          root,
		HomeDir:       filepath.Join(root, "home"),
		ConfigDir:     filepath.Join(root, "config", "skeld"),
		DataDir:       filepath.Join(root, "data", "skeld"),
		SystemDataDir: filepath.Join(root, "sysdata", "skeld"),
		StateDir:      filepath.Join(root, "state", "skeld"),
	}

	t.Setenv("HOME", env.HomeDir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(root, "config"))
	t.Setenv("XDG_CACHE_HOME", filepath.Join(root, "cache"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(root, "data"))
	t.Setenv("XDG_STATE_HOME", filepath.Join(root, "state"))
	t.Setenv("XDG_DATA_DIRS", filepath.Join(root, "sysdata"))

	return env
}

// WriteFile writes a fixture file, creating its directory as needed, and
// returns the path.
func (e *Env) WriteFile(path, contents string) string {
	e.T.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		e.T.Fatalf("Failed to create directory %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(contents), 0644); err != nil {
		e.T.Fatalf("Failed to write fixture %s: %v", path, err)
	}
	return path
}

// WriteConfig writes the global configuration file.
func (e *Env) WriteConfig(contents string) string {
	return e.WriteFile(filepath.Join(e.ConfigDir, "config.toml"), contents)
}

// WriteProject writes a project file into the user data directory.
func (e *Env) WriteProject(name, contents string) string {
	return e.WriteFile(filepath.Join(e.DataDir, "projects", name+".toml"), contents)
}

// WriteBookmark writes a bookmark file into the user data directory.
func (e *Env) WriteBookmark(name, contents string) string {
	return e.WriteFile(filepath.Join(e.DataDir, "bookmarks", name+".toml"), contents)
}

// WriteInclude writes an include file into the user data directory.
func (e *Env) WriteInclude(name, contents string) string {
	return e.WriteFile(filepath.Join(e.DataDir, "include", name+".toml"), contents)
}

// MkProjectDir creates a directory below the root to serve as a
// project's working directory.
func (e *Env) MkProjectDir(name string) string {
	e.T.Helper()

	path := filepath.Join(e.Root, "work", name)
	if err := os.MkdirAll(path, 0755); err != nil {
		e.T.Fatalf("Failed to create project directory: %v", err)
	}
	return path
}
