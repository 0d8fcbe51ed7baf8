// Package dirs resolves the XDG base directories and the skeld
// directories below them.
//
// Base directories come from the XDG environment variables when those are
// set to a non-empty value, and fall back to the well-known locations
// under the home directory otherwise. A base directory set to a relative
// path is rejected rather than silently resolved against the working
// directory.
package dirs

import (
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"strings"

	"github.com/skeld-sh/skeld/internal/errors"
)

// AppDirName is the subdirectory skeld claims below each base directory.
const AppDirName = "skeld"

// Home returns the home directory, from $HOME or the passwd database.
func Home() (string, error) {
	home := os.Getenv("HOME")
	if home == "" {
		u, err := user.Current()
		if err != nil || u.HomeDir == "" {
			return "", errors.ValidationError("home directory could not be determined")
		}
		home = u.HomeDir
	}

	if !filepath.IsAbs(home) {
		return "", errors.ValidationError(fmt.Sprintf(
			"home directory must be absolute, but has been set to: `%s`", home))
	}

	return home, nil
}

// Config returns the XDG configuration directory.
func Config() (string, error) {
	return baseDir("XDG_CONFIG_HOME", ".config")
}

// Cache returns the XDG cache directory.
func Cache() (string, error) {
	return baseDir("XDG_CACHE_HOME", ".cache")
}

// Data returns the XDG data directory.
func Data() (string, error) {
	return baseDir("XDG_DATA_HOME", ".local/share")
}

// State returns the XDG state directory.
func State() (string, error) {
	return baseDir("XDG_STATE_HOME", ".local/state")
}

func baseDir(envVar, fallback string) (string, error) {
	if val := os.Getenv(envVar); val != "" {
		if !filepath.IsAbs(val) {
			return "", errors.ValidationError(fmt.Sprintf(
				"`%s` must be absolute, but has been set to: `%s`", envVar, val))
		}
		return val, nil
	}

	home, err := Home()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, fallback), nil
}

// DataDirs returns the system data directories from $XDG_DATA_DIRS.
// Empty list elements are skipped, relative ones are rejected.
func DataDirs() ([]string, error) {
	val := os.Getenv("XDG_DATA_DIRS")
	if val == "" {
		return []string{"/usr/share/local", "/usr/share"}, nil
	}

	var paths []string
	for _, path := range strings.Split(val, ":") {
		if path == "" {
			continue
		}
		if !filepath.IsAbs(path) {
			return nil, errors.ValidationError(fmt.Sprintf(
				"`XDG_DATA_DIRS` must be absolute, but has been set to: `%s`", path))
		}
		paths = append(paths, path)
	}

	return paths, nil
}

// SkeldConfig returns the skeld configuration directory.
func SkeldConfig() (string, error) {
	dir, err := Config()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, AppDirName), nil
}

// SkeldData returns the user-writable skeld data directory. New project
// files written by `skeld add` land here.
func SkeldData() (string, error) {
	dir, err := Data()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, AppDirName), nil
}

// SkeldState returns the skeld state directory, which holds the logfiles
// of detached commands.
func SkeldState() (string, error) {
	dir, err := State()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, AppDirName), nil
}

// SkeldDataDirs returns every directory scanned for project and bookmark
// definitions: the skeld subdirectory of each system data directory,
// then the configuration directory, then the user data directory.
// Duplicates keep their first position.
func SkeldDataDirs() ([]string, error) {
	systemDirs, err := DataDirs()
	if err != nil {
		return nil, err
	}

	var dirs []string
	for _, dir := range systemDirs {
		dirs = append(dirs, filepath.Join(dir, AppDirName))
	}

	configDir, err := SkeldConfig()
	if err != nil {
		return nil, err
	}
	dirs = append(dirs, configDir)

	dataDir, err := SkeldData()
	if err != nil {
		return nil, err
	}
	dirs = append(dirs, dataDir)

	seen := make(map[string]bool, len(dirs))
	unique := dirs[:0]
	for _, dir := range dirs {
		if !seen[dir] {
			seen[dir] = true
			unique = append(unique, dir)
		}
	}

	return unique, nil
}
