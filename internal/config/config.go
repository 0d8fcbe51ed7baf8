package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/BurntSushi/toml"

	"github.com/skeld-sh/skeld/internal/dirs"
	"github.com/skeld-sh/skeld/internal/errors"
	"github.com/skeld-sh/skeld/internal/interpolate"
)

// defaultBanner is the start screen banner used when the configuration
// does not set one. Generated with FIGlet using the larry3d font.
const defaultBanner = "\n" +
	"       __              ___       __\n" +
	"      /\\ \\            /\\_ \\     /\\ \\\n" +
	"  ____\\ \\ \\/'\\      __\\//\\ \\    \\_\\ \\\n" +
	" /  __\\\\ \\   <    / __ \\\\ \\ \\   / _  \\\n" +
	"/\\__, `\\\\ \\ \\\\'\\ /\\  __/ \\_\\ \\_/\\ \\_\\ \\\n" +
	"\\/\\____/ \\ \\_\\ \\_\\ \\____\\/\\____\\ \\_____\\\n" +
	" \\/___/   \\/_/\\/_/\\/____/\\/____/\\/____ /\n"

// Color is one color of the start screen, either a `#RRGGBB` hex value
// or an 8-bit ANSI color number. The empty string keeps the terminal's
// default color.
type Color string

// UnmarshalTOML validates the two accepted TOML representations: a hex
// string or an integer in [0, 255].
func (c *Color) UnmarshalTOML(value any) error {
	switch v := value.(type) {
	case string:
		if !validHexColor(v) {
			return fmt.Errorf("invalid hex color `%s`: expected format is #RRGGBB", v)
		}
		*c = Color(v)
	case int64:
		if v < 0 || v > 255 {
			return fmt.Errorf("invalid ansi color `%d`: must be in the range [0, 255]", v)
		}
		*c = Color(strconv.FormatInt(v, 10))
	default:
		return fmt.Errorf("unexpected type for color: expected `string` or `integer`")
	}
	return nil
}

func validHexColor(s string) bool {
	if len(s) != 7 || s[0] != '#' {
		return false
	}
	_, err := strconv.ParseUint(s[1:], 16, 32)
	return err == nil
}

// Colorscheme selects the colors of the start screen. Unset entries keep
// the terminal's default color.
type Colorscheme struct {
	Normal     Color `toml:"normal"`
	Banner     Color `toml:"banner"`
	Heading    Color `toml:"heading"`
	Keybind    Color `toml:"keybind"`
	Label      Color `toml:"label"`
	Background Color `toml:"background"`
}

// Command is a command button of the start screen. An empty Argv turns
// the button into a plain quit button.
type Command struct {
	Name    string
	Keybind string
	Argv    []string
	Detach  bool
}

// Config is the parsed global configuration. The [project] table of the
// configuration file is not exposed directly, it seeds the parse state
// of every project loaded through LoadProject.
type Config struct {
	Banner      string
	Colorscheme Colorscheme
	DisableHelp bool
	Commands    []Command

	base *prelim
}

// Default returns the built-in configuration used when no configuration
// file exists.
func Default() *Config {
	return &Config{
		Banner: defaultBanner,
		base:   newPrelim(),
	}
}

// Load reads the global configuration from path, or from
// `<skeld-config>/config.toml` when path is empty. A missing file is not
// an error, the defaults apply.
func Load(path string) (*Config, error) {
	if path == "" {
		configDir, err := dirs.SkeldConfig()
		if err != nil {
			return nil, errors.ConfigError("failed to determine the skeld config dir", err)
		}
		path = filepath.Join(configDir, "config.toml")
	}
	if _, err := os.Stat(path); err != nil {
		return Default(), nil
	}

	return parseConfigFile(path)
}

type rawConfig struct {
	Banner      *string          `toml:"banner"`
	Colorscheme *Colorscheme     `toml:"colorscheme"`
	DisableHelp *bool            `toml:"disable-help"`
	Commands    *[]rawCommand    `toml:"commands"`
	Project     *rawProjectTable `toml:"project"`
}

type rawCommand struct {
	Name    *string   `toml:"name"`
	Keybind *string   `toml:"keybind"`
	Command *[]string `toml:"command"`
	Detach  *bool     `toml:"detach"`
}

func parseConfigFile(path string) (*Config, error) {
	var raw rawConfig
	md, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return nil, tomlError(path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		section := "CONFIGURATION"
		if undecoded[0][0] == "project" {
			section = "PROJECT DATA FORMAT"
		}
		return nil, unknownOptionError(path, undecoded[0], section)
	}

	config := Default()
	if raw.Banner != nil {
		config.Banner = *raw.Banner
	}
	if raw.Colorscheme != nil {
		config.Colorscheme = *raw.Colorscheme
	}
	if raw.DisableHelp != nil {
		config.DisableHelp = *raw.DisableHelp
	}
	if raw.Commands != nil {
		for _, rawCmd := range *raw.Commands {
			cmd, err := buildCommand(rawCmd, path)
			if err != nil {
				return nil, err
			}
			config.Commands = append(config.Commands, cmd)
		}
	}
	if err := config.base.addTable(raw.Project, path); err != nil {
		return nil, err
	}

	return config, nil
}

func buildCommand(raw rawCommand, path string) (Command, error) {
	const section = "CONFIGURATION"
	if raw.Name == nil {
		return Command{}, missingOptionError(path, "name", section)
	}
	if raw.Keybind == nil {
		return Command{}, missingOptionError(path, "keybind", section)
	}
	if raw.Command == nil {
		return Command{}, missingOptionError(path, "command", section)
	}

	argv := make([]string, 0, len(*raw.Command))
	for _, arg := range *raw.Command {
		resolved, err := interpolate.Resolve(arg)
		if err != nil {
			return Command{}, errors.ConfigError(path, err)
		}
		argv = append(argv, resolved)
	}

	// An empty command quits immediately, so `detach` carries no meaning
	// and may be left out.
	var detach bool
	if raw.Detach != nil {
		detach = *raw.Detach
	} else if len(argv) > 0 {
		return Command{}, missingOptionError(path, "detach", section)
	}

	return Command{
		Name:    *raw.Name,
		Keybind: *raw.Keybind,
		Argv:    argv,
		Detach:  detach,
	}, nil
}

func missingOptionError(path, option, section string) error {
	return errors.ConfigError(fmt.Sprintf(
		"%s: missing config option `%s`\n  (run `%s` for more information)",
		path, option, errors.Manpage(section)), nil)
}

func unknownOptionError(path string, key toml.Key, section string) error {
	return errors.ConfigError(fmt.Sprintf(
		"%s: unknown config option `%s`\n  (run `%s` to see all supported options)",
		path, key.String(), errors.Manpage(section)), nil)
}

// tomlError converts a decoder failure into a user-facing error. Syntax
// and type errors print with their document position.
func tomlError(path string, err error) error {
	var parseErr toml.ParseError
	if errors.As(err, &parseErr) {
		return errors.ConfigError(fmt.Sprintf("%s: %s", path, parseErr.ErrorWithPosition()), nil)
	}
	return errors.ConfigError(fmt.Sprintf("failed to read `%s`", path), err)
}
