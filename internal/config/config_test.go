package config

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/skeld-sh/skeld/internal/testutil"
)

func TestLoad_MissingFile(t *testing.T) {
	testutil.NewEnv(t)

	config, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if config.Banner != defaultBanner {
		t.Errorf("Banner = %q, want the built-in banner", config.Banner)
	}
	if config.DisableHelp {
		t.Error("DisableHelp = true, want false")
	}
	if len(config.Commands) != 0 {
		t.Errorf("Commands = %v, want none", config.Commands)
	}
	if config.Colorscheme != (Colorscheme{}) {
		t.Errorf("Colorscheme = %+v, want terminal defaults", config.Colorscheme)
	}
}

func TestLoad_FullConfig(t *testing.T) {
	env := testutil.NewEnv(t)
	env.WriteConfig(`
banner = "skeld"
disable-help = true

[colorscheme]
normal = "#aabbcc"
keybind = 4

[[commands]]
name = "Quit"
keybind = "q"
command = []

[[commands]]
name = "Shell"
keybind = "s"
command = ["bash", "-l"]
detach = false
`)

	config, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if config.Banner != "skeld" {
		t.Errorf("Banner = %q, want %q", config.Banner, "skeld")
	}
	if !config.DisableHelp {
		t.Error("DisableHelp = false, want true")
	}
	if config.Colorscheme.Normal != "#aabbcc" {
		t.Errorf("Colorscheme.Normal = %q, want %q", config.Colorscheme.Normal, "#aabbcc")
	}
	if config.Colorscheme.Keybind != "4" {
		t.Errorf("Colorscheme.Keybind = %q, want %q", config.Colorscheme.Keybind, "4")
	}
	if config.Colorscheme.Heading != "" {
		t.Errorf("Colorscheme.Heading = %q, want the terminal default", config.Colorscheme.Heading)
	}

	if len(config.Commands) != 2 {
		t.Fatalf("len(Commands) = %d, want 2", len(config.Commands))
	}
	quit := config.Commands[0]
	if quit.Name != "Quit" || quit.Keybind != "q" || len(quit.Argv) != 0 || quit.Detach {
		t.Errorf("Commands[0] = %+v, want the quit button", quit)
	}
	shell := config.Commands[1]
	if shell.Name != "Shell" || shell.Keybind != "s" {
		t.Errorf("Commands[1] = %+v, want the shell button", shell)
	}
	if len(shell.Argv) != 2 || shell.Argv[0] != "bash" || shell.Argv[1] != "-l" {
		t.Errorf("Commands[1].Argv = %v, want [bash -l]", shell.Argv)
	}
}

func TestLoad_CommandInterpolation(t *testing.T) {
	env := testutil.NewEnv(t)
	t.Setenv("SKELD_TEST_SHELL", "fish")
	env.WriteConfig(`
[[commands]]
name = "Shell"
keybind = "s"
command = ["$[SKELD_TEST_SHELL]"]
detach = false
`)

	config, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got := config.Commands[0].Argv[0]; got != "fish" {
		t.Errorf("Argv[0] = %q, want %q", got, "fish")
	}
}

func TestLoad_CommandMissingOptions(t *testing.T) {
	tests := []struct {
		name    string
		config  string
		missing string
	}{
		{
			name:    "name",
			config:  "[[commands]]\nkeybind = \"q\"\ncommand = []\n",
			missing: "name",
		},
		{
			name:    "keybind",
			config:  "[[commands]]\nname = \"Quit\"\ncommand = []\n",
			missing: "keybind",
		},
		{
			name:    "command",
			config:  "[[commands]]\nname = \"Quit\"\nkeybind = \"q\"\n",
			missing: "command",
		},
		{
			name:    "detach",
			config:  "[[commands]]\nname = \"Shell\"\nkeybind = \"s\"\ncommand = [\"bash\"]\n",
			missing: "detach",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := testutil.NewEnv(t)
			env.WriteConfig(tt.config)

			_, err := Load("")
			want := "missing config option `" + tt.missing + "`"
			if err == nil || !strings.Contains(err.Error(), want) {
				t.Errorf("Load() error = %v, want it to contain %q", err, want)
			}
		})
	}
}

func TestLoad_EmptyCommandNeedsNoDetach(t *testing.T) {
	env := testutil.NewEnv(t)
	env.WriteConfig(`
[[commands]]
name = "Quit"
keybind = "q"
command = []
`)

	config, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if config.Commands[0].Detach {
		t.Error("Detach = true, want false for an empty command")
	}
}

func TestLoad_UnknownOption(t *testing.T) {
	env := testutil.NewEnv(t)
	env.WriteConfig("bannner = \"typo\"\n")

	_, err := Load("")
	if err == nil || !strings.Contains(err.Error(), "unknown config option `bannner`") {
		t.Errorf("Load() error = %v, want an unknown option error", err)
	}
}

func TestLoad_UnknownColorschemeOption(t *testing.T) {
	env := testutil.NewEnv(t)
	env.WriteConfig("[colorscheme]\nfoo = \"#aabbcc\"\n")

	_, err := Load("")
	if err == nil || !strings.Contains(err.Error(), "unknown config option `colorscheme.foo`") {
		t.Errorf("Load() error = %v, want an unknown option error", err)
	}
}

func TestLoad_InvalidSyntax(t *testing.T) {
	env := testutil.NewEnv(t)
	path := env.WriteConfig("banner = = \"broken\"\n")

	_, err := Load("")
	if err == nil || !strings.Contains(err.Error(), path) {
		t.Errorf("Load() error = %v, want it to name %q", err, path)
	}
}

func TestLoad_ExplicitPath(t *testing.T) {
	env := testutil.NewEnv(t)
	path := env.WriteFile(filepath.Join(env.Root, "elsewhere.toml"), "banner = \"custom\"\n")

	config, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if config.Banner != "custom" {
		t.Errorf("Banner = %q, want %q", config.Banner, "custom")
	}
}

func TestColor_UnmarshalTOML(t *testing.T) {
	tests := []struct {
		name    string
		value   any
		want    Color
		wantErr string
	}{
		{name: "hex lowercase", value: "#aabbcc", want: "#aabbcc"},
		{name: "hex uppercase", value: "#AABBCC", want: "#AABBCC"},
		{name: "ansi", value: int64(4), want: "4"},
		{name: "ansi max", value: int64(255), want: "255"},
		{name: "hex too short", value: "#12345", wantErr: "invalid hex color"},
		{name: "hex no hash", value: "aabbccd", wantErr: "invalid hex color"},
		{name: "hex with sign", value: "#+12345", wantErr: "invalid hex color"},
		{name: "named color", value: "red", wantErr: "invalid hex color"},
		{name: "ansi too large", value: int64(256), wantErr: "invalid ansi color"},
		{name: "ansi negative", value: int64(-1), wantErr: "invalid ansi color"},
		{name: "wrong type", value: true, wantErr: "unexpected type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c Color
			err := c.UnmarshalTOML(tt.value)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Errorf("UnmarshalTOML(%v) error = %v, want %q", tt.value, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("UnmarshalTOML(%v) error = %v", tt.value, err)
			}
			if c != tt.want {
				t.Errorf("UnmarshalTOML(%v) = %q, want %q", tt.value, c, tt.want)
			}
		})
	}
}
