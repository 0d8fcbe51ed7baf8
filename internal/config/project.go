package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/BurntSushi/toml"
	securejoin "github.com/cyphar/filepath-securejoin"

	"github.com/skeld-sh/skeld/internal/dirs"
	"github.com/skeld-sh/skeld/internal/errors"
	"github.com/skeld-sh/skeld/internal/interpolate"
	"github.com/skeld-sh/skeld/internal/sandbox"
)

// Priorities of project option definitions. Options below [project.defaults]
// lose to plain definitions, options below [project.forced] win over them.
const (
	priorityDefaults = -1
	priorityStandard = 0
	priorityForced   = 1
)

// Origin identifies one whitelist declaration in error messages: the
// declared value, the option it came from and the file it was read from.
type Origin struct {
	File   string
	Option string
	Value  string
}

func (o Origin) String() string {
	return fmt.Sprintf("`%s` (%s in %s)", o.Value, o.Option, o.File)
}

// setting accumulates the definitions of one scalar option across files
// and priorities. The definition with the highest priority wins, several
// definitions at that priority are an error.
type setting[T any] struct {
	name     string
	defined  bool
	tied     bool
	priority int
	value    T
	file     string
	tieFile  string
}

func (s *setting[T]) set(value T, priority int, file string) {
	if !s.defined || priority > s.priority {
		s.defined = true
		s.tied = false
		s.priority = priority
		s.value = value
		s.file = file
		return
	}
	if priority == s.priority && !s.tied {
		s.tied = true
		s.tieFile = file
	}
}

func (s *setting[T]) resolve() (T, bool, error) {
	if s.tied {
		var zero T
		return zero, false, errors.ConfigError(fmt.Sprintf(
			"`%s` is defined multiple times (in %s and %s)", s.name, s.file, s.tieFile), nil)
	}
	return s.value, s.defined, nil
}

// editorCommand is a parsed `editor` table. The program has its
// placeholders resolved, the arguments keep theirs until the initial
// file is known.
type editorCommand struct {
	program string
	args    []string
	detach  bool
}

// prelim is the accumulated parse state of the project options, fed by
// the global configuration first and by one project file on top.
type prelim struct {
	projectDir   setting[string]
	initialFile  setting[string]
	editor       setting[editorCommand]
	envAll       setting[bool]
	autoNixshell setting[bool]
	noSandbox    setting[bool]
	envVars      []string
	tree         *sandbox.FSTree[Origin]
	parsedFiles  []string
}

func newPrelim() *prelim {
	return &prelim{
		projectDir:   setting[string]{name: "project-dir"},
		initialFile:  setting[string]{name: "initial-file"},
		editor:       setting[editorCommand]{name: "editor"},
		envAll:       setting[bool]{name: "whitelist-all-envvars"},
		autoNixshell: setting[bool]{name: "auto-nixshell"},
		noSandbox:    setting[bool]{name: "no-sandbox"},
		tree:         sandbox.NewFSTree[Origin](),
	}
}

func (p *prelim) clone() *prelim {
	cloned := *p
	cloned.envVars = slices.Clone(p.envVars)
	cloned.parsedFiles = slices.Clone(p.parsedFiles)
	cloned.tree = p.tree.Clone()
	return &cloned
}

// rawProjectTable is the decoded form of a [project] table. The defaults
// and forced subtables reuse the same shape, one level deep.
type rawProjectTable struct {
	Defaults *rawProjectTable `toml:"defaults"`
	Forced   *rawProjectTable `toml:"forced"`

	ProjectDir     *string    `toml:"project-dir"`
	InitialFile    *string    `toml:"initial-file"`
	Editor         *rawEditor `toml:"editor"`
	WhitelistDev   []string   `toml:"whitelist-dev"`
	WhitelistRW    []string   `toml:"whitelist-rw"`
	WhitelistRO    []string   `toml:"whitelist-ro"`
	WhitelistLn    []string   `toml:"whitelist-ln"`
	AddTmpfs       []string   `toml:"add-tmpfs"`
	WhitelistEnv   []string   `toml:"whitelist-envvar"`
	WhitelistAll   *bool      `toml:"whitelist-all-envvars"`
	AutoNixshell   *bool      `toml:"auto-nixshell"`
	DisableSandbox *bool      `toml:"no-sandbox"`
	Include        []string   `toml:"include"`
}

type rawEditor struct {
	Cmd    *[]string `toml:"cmd"`
	Detach *bool     `toml:"detach"`
}

// addTable feeds one [project] table into the parse state: the defaults
// and forced subtables first at their own priorities, then the plain
// entries. Each part resolves its include files right after its own
// entries, at the same priority.
func (p *prelim) addTable(tbl *rawProjectTable, file string) error {
	if tbl == nil {
		return nil
	}

	subtables := []struct {
		name     string
		tbl      *rawProjectTable
		priority int
	}{
		{"defaults", tbl.Defaults, priorityDefaults},
		{"forced", tbl.Forced, priorityForced},
	}
	for _, sub := range subtables {
		if sub.tbl == nil {
			continue
		}
		if err := rejectSubtables(sub.tbl, sub.name, file); err != nil {
			return err
		}
		if err := p.addEntries(sub.tbl, sub.priority, file); err != nil {
			return err
		}
	}
	return p.addEntries(tbl, priorityStandard, file)
}

// rejectSubtables refuses defaults and forced tables below the given
// subtable. They are only recognized directly below [project].
func rejectSubtables(tbl *rawProjectTable, parent, file string) error {
	if tbl.Defaults != nil {
		return unknownOptionError(file, toml.Key{"project", parent, "defaults"}, "PROJECT DATA FORMAT")
	}
	if tbl.Forced != nil {
		return unknownOptionError(file, toml.Key{"project", parent, "forced"}, "PROJECT DATA FORMAT")
	}
	return nil
}

// addEntries feeds the entries of one table at one priority. Whitelist
// paths go into the tree without a priority: they accumulate across all
// tables and files.
func (p *prelim) addEntries(tbl *rawProjectTable, priority int, file string) error {
	if tbl.ProjectDir != nil {
		path, err := canonicalizePath(*tbl.ProjectDir)
		if err != nil {
			return errors.ConfigError(file, err)
		}
		p.projectDir.set(path, priority, file)
	}
	if tbl.InitialFile != nil {
		resolved, err := interpolate.Resolve(*tbl.InitialFile)
		if err != nil {
			return errors.ConfigError(file, err)
		}
		p.initialFile.set(resolved, priority, file)
	}
	if tbl.Editor != nil {
		editor, err := buildEditor(tbl.Editor, file)
		if err != nil {
			return err
		}
		p.editor.set(editor, priority, file)
	}

	whitelists := []struct {
		option string
		typ    sandbox.EntryType
		paths  []string
	}{
		{"whitelist-dev", sandbox.AllowDev, tbl.WhitelistDev},
		{"whitelist-rw", sandbox.ReadWrite, tbl.WhitelistRW},
		{"whitelist-ro", sandbox.ReadOnly, tbl.WhitelistRO},
		{"whitelist-ln", sandbox.Symlink, tbl.WhitelistLn},
		{"add-tmpfs", sandbox.Tmpfs, tbl.AddTmpfs},
	}
	for _, wl := range whitelists {
		for _, raw := range wl.paths {
			path, err := canonicalizePath(raw)
			if err != nil {
				return errors.ConfigError(file, err)
			}
			origin := Origin{File: file, Option: wl.option, Value: raw}
			if err := p.tree.AddPath(path, wl.typ, origin); err != nil {
				return whitelistError(file, err)
			}
		}
	}

	p.envVars = append(p.envVars, tbl.WhitelistEnv...)
	if tbl.WhitelistAll != nil {
		p.envAll.set(*tbl.WhitelistAll, priority, file)
	}
	if tbl.AutoNixshell != nil {
		p.autoNixshell.set(*tbl.AutoNixshell, priority, file)
	}
	if tbl.DisableSandbox != nil {
		p.noSandbox.set(*tbl.DisableSandbox, priority, file)
	}

	for _, raw := range tbl.Include {
		includePath, err := resolveIncludePath(raw)
		if err != nil {
			return errors.ConfigError(file, err)
		}
		if err := p.addFile(includePath, priority); err != nil {
			return err
		}
	}
	return nil
}

// addFile parses an include file at the given priority. A file already
// parsed is skipped, which also breaks include cycles.
func (p *prelim) addFile(path string, priority int) error {
	if slices.Contains(p.parsedFiles, path) {
		return nil
	}
	p.parsedFiles = append(p.parsedFiles, path)

	tbl, err := decodeIncludeFile(path)
	if err != nil {
		return err
	}
	return p.addEntries(tbl, priority, path)
}

// decodeIncludeFile reads an include file, whose top level is a bare
// project table. The defaults and forced subtables are not recognized
// here.
func decodeIncludeFile(path string) (*rawProjectTable, error) {
	var tbl rawProjectTable
	md, err := toml.DecodeFile(path, &tbl)
	if err != nil {
		return nil, tomlError(path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, unknownOptionError(path, undecoded[0], "PROJECT DATA FORMAT")
	}
	if tbl.Defaults != nil {
		return nil, unknownOptionError(path, toml.Key{"defaults"}, "PROJECT DATA FORMAT")
	}
	if tbl.Forced != nil {
		return nil, unknownOptionError(path, toml.Key{"forced"}, "PROJECT DATA FORMAT")
	}
	return &tbl, nil
}

func buildEditor(raw *rawEditor, file string) (editorCommand, error) {
	const section = "PROJECT DATA FORMAT"
	if raw.Cmd == nil {
		return editorCommand{}, missingOptionError(file, "cmd", section)
	}
	if raw.Detach == nil {
		return editorCommand{}, missingOptionError(file, "detach", section)
	}

	cmd := *raw.Cmd
	if len(cmd) == 0 {
		return editorCommand{}, errors.ConfigError(fmt.Sprintf(
			"%s: empty editor command: `editor.cmd` must not be empty", file), nil)
	}
	program, err := interpolate.ResolveEditorProgram(cmd[0])
	if err != nil {
		return editorCommand{}, errors.ConfigError(file, err)
	}

	return editorCommand{
		program: program,
		args:    cmd[1:],
		detach:  *raw.Detach,
	}, nil
}

// canonicalizePath resolves the placeholders of a configured path and
// requires the result to be absolute.
func canonicalizePath(path string) (string, error) {
	resolved, err := interpolate.Resolve(path)
	if err != nil {
		return "", err
	}
	if !filepath.IsAbs(resolved) {
		msg := fmt.Sprintf("unallowed relative path `%s`: this path must be absolute", path)
		if resolved != path {
			msg += fmt.Sprintf("\n  (after the placeholders have been resolved: `%s`)", resolved)
		}
		return "", errors.ConfigError(msg, nil)
	}
	return resolved, nil
}

// resolveIncludePath turns an include value into the file to parse. An
// absolute path is used as is, a relative one is looked up as
// `<data-root>/include/<path>.toml` below every skeld data directory and
// must match exactly once.
func resolveIncludePath(raw string) (string, error) {
	resolved, err := interpolate.Resolve(raw)
	if err != nil {
		return "", err
	}
	if filepath.IsAbs(resolved) {
		return resolved, nil
	}

	dataDirs, err := dirs.SkeldDataDirs()
	if err != nil {
		return "", errors.ConfigError("could not determine the skeld data directories", err)
	}

	var matches []string
	for _, root := range dataDirs {
		candidate, err := securejoin.SecureJoin(filepath.Join(root, "include"), resolved+".toml")
		if err != nil {
			return "", errors.ConfigError(fmt.Sprintf("invalid include path `%s`", raw), err)
		}
		if _, err := os.Stat(candidate); err == nil {
			matches = append(matches, candidate)
		}
	}

	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		msg := fmt.Sprintf(
			"include file not found: `%s`\n  include files are searched in `<SKELD-DATA>/include`\n  (see `%s` for more information)",
			raw, errors.Manpage("FILES"))
		if filepath.Ext(resolved) == ".toml" {
			msg += fmt.Sprintf(
				"\n  Note that an extra `toml` extension is appended, so the file `%s.toml` is actually searched.",
				resolved)
		}
		return "", errors.ConfigError(msg, nil)
	default:
		var list strings.Builder
		for _, match := range matches {
			fmt.Fprintf(&list, "\n  - %s", match)
		}
		return "", errors.ConfigError(fmt.Sprintf(
			"ambiguous include file `%s`: found multiple matching files\n  matching files are:%s",
			raw, list.String()), nil)
	}
}

// whitelistError rewords the tree's insertion errors, which identify both
// declarations through their Origin.
func whitelistError(file string, err error) error {
	var conflict *sandbox.ConflictError[Origin]
	if errors.As(err, &conflict) {
		return errors.ConfigError(fmt.Sprintf(
			"conflicting whitelists: %v and %v", conflict.First, conflict.Second), nil)
	}
	var illegal *sandbox.IllegalChildrenError[Origin]
	if errors.As(err, &illegal) {
		return errors.ConfigError(fmt.Sprintf(
			"subpath of symlink/tmpfs is whitelisted: %v lies below %v",
			illegal.InvalidChild, illegal.InnerPath), nil)
	}
	return errors.ConfigError(file, err)
}

// ProjectButton is one selectable project of the start screen, parsed
// only as far as the display needs. The full project file is parsed when
// the button is activated. An empty Keybind requests an automatically
// assigned one.
type ProjectButton struct {
	Name    string
	Keybind string
	Path    string
}

// Projects returns the buttons for every project file below the
// `projects` subdirectory of the skeld data directories.
func Projects() ([]ProjectButton, error) {
	return buttonsFromDataSubdir("projects")
}

// Bookmarks returns the buttons for every project file below the
// `bookmarks` subdirectory of the skeld data directories.
func Bookmarks() ([]ProjectButton, error) {
	return buttonsFromDataSubdir("bookmarks")
}

func buttonsFromDataSubdir(subdir string) ([]ProjectButton, error) {
	dataDirs, err := dirs.SkeldDataDirs()
	if err != nil {
		return nil, errors.ConfigError("failed to determine the skeld data directories", err)
	}

	var buttons []ProjectButton
	for _, root := range dataDirs {
		files, err := tomlFilesIn(filepath.Join(root, subdir))
		if err != nil {
			return nil, err
		}
		for _, path := range files {
			button, err := parseButtonFile(path)
			if err != nil {
				return nil, err
			}
			buttons = append(buttons, button)
		}
	}
	return buttons, nil
}

// tomlFilesIn lists the regular `.toml` files of a directory in filename
// order. A missing directory yields no files.
func tomlFilesIn(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.ConfigError(fmt.Sprintf("failed to traverse directory `%s`", dir), err)
	}

	var files []string
	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		if filepath.Ext(entry.Name()) != ".toml" {
			continue
		}
		info, err := os.Stat(path)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		files = append(files, path)
	}
	return files, nil
}

// rawButtonFile decodes only the display options of a project file. The
// project table stays undecoded until the project is opened.
type rawButtonFile struct {
	Name    *string        `toml:"name"`
	Keybind *string        `toml:"keybind"`
	Project toml.Primitive `toml:"project"`
}

func parseButtonFile(path string) (ProjectButton, error) {
	var raw rawButtonFile
	md, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return ProjectButton{}, tomlError(path, err)
	}
	for _, key := range md.Undecoded() {
		if key[0] == "project" {
			continue
		}
		return ProjectButton{}, unknownOptionError(path, key, "PROJECTS")
	}

	name, err := projectName(raw.Name, path)
	if err != nil {
		return ProjectButton{}, err
	}

	var keybind string
	if raw.Keybind != nil {
		keybind = *raw.Keybind
	}

	return ProjectButton{Name: name, Keybind: keybind, Path: path}, nil
}

// projectName returns the configured name, or the file stem when the
// option is not set.
func projectName(configured *string, path string) (string, error) {
	if configured != nil {
		return *configured, nil
	}

	stem := strings.TrimSuffix(filepath.Base(path), ".toml")
	if !utf8.ValidString(stem) {
		return "", errors.ConfigError(fmt.Sprintf(
			"failed to determine project name of `%s` from the filename, as it contains invalid UTF-8\n  NOTE: use the config option 'name' to manually specify a name\n  (run `%s` for more information)",
			path, errors.Manpage("PROJECTS")), nil)
	}
	return stem, nil
}

// Project is a fully resolved project: the editor invocation and the
// sandbox it runs in. A nil Sandbox disables sandboxing entirely.
type Project struct {
	Name         string
	Dir          string
	Editor       sandbox.Command
	Sandbox      *sandbox.Params
	AutoNixshell bool
}

type rawProjectFile struct {
	Name    *string          `toml:"name"`
	Keybind *string          `toml:"keybind"`
	Project *rawProjectTable `toml:"project"`
}

// LoadProject parses a project file on top of the global configuration's
// [project] table and resolves the result into a runnable project.
func (c *Config) LoadProject(path string) (*Project, error) {
	state := c.base.clone()

	var raw rawProjectFile
	md, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return nil, tomlError(path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		section := "PROJECTS"
		if undecoded[0][0] == "project" {
			section = "PROJECT DATA FORMAT"
		}
		return nil, unknownOptionError(path, undecoded[0], section)
	}

	name, err := projectName(raw.Name, path)
	if err != nil {
		return nil, err
	}
	if err := state.addTable(raw.Project, path); err != nil {
		return nil, err
	}
	return state.resolve(name, path)
}

// resolve closes over the accumulated state: picks the winning definition
// of every scalar option, expands the editor arguments against the
// initial file and assembles the sandbox parameters.
func (p *prelim) resolve(name, path string) (*Project, error) {
	const section = "PROJECT DATA FORMAT"

	projectDir, ok, err := p.projectDir.resolve()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, missingOptionError(path, "project-dir", section)
	}

	initialFile, _, err := p.initialFile.resolve()
	if err != nil {
		return nil, err
	}

	editor, ok, err := p.editor.resolve()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, missingOptionError(path, "editor", section)
	}

	envAll, _, err := p.envAll.resolve()
	if err != nil {
		return nil, err
	}
	autoNixshell, _, err := p.autoNixshell.resolve()
	if err != nil {
		return nil, err
	}
	noSandbox, _, err := p.noSandbox.resolve()
	if err != nil {
		return nil, err
	}

	args := make([]string, 0, len(editor.args))
	for _, arg := range editor.args {
		resolved, keep, err := interpolate.ResolveWithFile(arg, initialFile)
		if err != nil {
			return nil, errors.ConfigError(path, err)
		}
		if keep {
			args = append(args, resolved)
		}
	}

	project := &Project{
		Name: name,
		Dir:  projectDir,
		Editor: sandbox.Command{
			Program:    editor.program,
			Args:       args,
			WorkingDir: projectDir,
			Detach:     editor.detach,
		},
		AutoNixshell: autoNixshell,
	}
	if !noSandbox {
		project.Sandbox = &sandbox.Params{
			FSTree:       p.tree.RemoveUserData(),
			EnvWhitelist: sandbox.EnvWhitelist{All: envAll, Names: p.envVars},
		}
	}
	return project, nil
}
