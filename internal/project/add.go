package project

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/skeld-sh/skeld/internal/dirs"
	"github.com/skeld-sh/skeld/internal/errors"
)

// Create writes a new project file for the given path into the user's
// skeld data directory and returns the created file. The name defaults
// to the basename of the path; pass name to override it. A path to a
// regular file additionally records the file as the project's initial
// file, with the containing directory as the project directory.
func Create(path, name string) (string, error) {
	resolved, err := canonicalize(path)
	if err != nil {
		return "", errors.Wrap(errors.ExitGeneralError,
			fmt.Sprintf("failed to read path `%s`", path), err)
	}
	info, err := os.Stat(resolved)
	if err != nil {
		return "", errors.Wrap(errors.ExitGeneralError,
			fmt.Sprintf("failed to read path `%s`", path), err)
	}
	isFile := info.Mode().IsRegular()

	if name == "" {
		name, err = nameFromPath(resolved, isFile)
		if err != nil {
			return "", err
		}
	}

	contents, err := projectFileContents(resolved, isFile)
	if err != nil {
		return "", err
	}

	dataDir, err := dirs.SkeldData()
	if err != nil {
		return "", err
	}
	projectsDir := filepath.Join(dataDir, "projects")
	if err := os.MkdirAll(projectsDir, 0755); err != nil {
		return "", errors.Wrap(errors.ExitGeneralError,
			"failed to create skeld projects directory", err)
	}

	projectFile := filepath.Join(projectsDir, name+".toml")
	f, err := os.OpenFile(projectFile, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return "", errors.ValidationError(
				"a project with the same name already exists, use option '--name' to use a different name")
		}
		return "", errors.Wrap(errors.ExitGeneralError, "failed to create project file", err)
	}
	defer f.Close()

	if _, err := f.WriteString(contents); err != nil {
		return "", errors.Wrap(errors.ExitGeneralError, "failed to write project file", err)
	}

	return projectFile, nil
}

// canonicalize resolves path to an absolute path without symlinks, like
// realpath. The path must exist.
func canonicalize(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return filepath.EvalSymlinks(abs)
}

// nameFromPath derives the project name from the path's basename. One
// leading dot is stripped, and for a file everything from the first dot
// on is cut off.
func nameFromPath(path string, isFile bool) (string, error) {
	base := strings.TrimPrefix(filepath.Base(path), ".")
	name := base
	if isFile {
		name, _, _ = strings.Cut(base, ".")
	}

	if name == "" || name == "/" {
		return "", errors.ValidationError(
			"could not determine project name from path, use option '--name' instead")
	}
	return name, nil
}

func projectFileContents(path string, isFile bool) (string, error) {
	if isFile {
		dirValue, err := tomlPathString(normalizePathPrefix(filepath.Dir(path)))
		if err != nil {
			return "", err
		}
		fileValue, err := tomlPathString(filepath.Base(path))
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("[project]\nproject-dir = %s\ninitial-file = %s\n", dirValue, fileValue), nil
	}

	dirValue, err := tomlPathString(normalizePathPrefix(path))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("[project]\nproject-dir = %s\n", dirValue), nil
}

// normalizePathPrefix replaces a known base directory prefix with its
// placeholder, so the generated file keeps working when the directories
// move. The first matching prefix wins.
func normalizePathPrefix(path string) string {
	prefixes := []struct {
		placeholder string
		dir         func() (string, error)
	}{
		{"$(CONFIG)", dirs.Config},
		{"$(CACHE)", dirs.Cache},
		{"$(DATA)", dirs.Data},
		{"$(STATE)", dirs.State},
		{"~", dirs.Home},
	}
	for _, p := range prefixes {
		dir, err := p.dir()
		if err != nil {
			continue
		}
		rest, ok := strings.CutPrefix(path, dir)
		if !ok || (rest != "" && rest[0] != '/') {
			continue
		}
		return p.placeholder + rest
	}
	return path
}

// tomlPathString renders a path as a quoted TOML string. Only printable
// ASCII survives the round trip through the generated file, everything
// else is rejected.
func tomlPathString(path string) (string, error) {
	for _, r := range path {
		if r != ' ' && (r < '!' || r > '~') {
			return "", errors.ValidationError("can only handle printable ASCII characters in paths")
		}
	}
	escaped := strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(path)
	return `"` + escaped + `"`, nil
}
