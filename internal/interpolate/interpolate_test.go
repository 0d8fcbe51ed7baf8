package interpolate

import (
	"os"
	"strings"
	"testing"
)

// unsetEnv removes name for the duration of the test. t.Setenv registers
// the restore; the variable itself must be absent, not empty.
func unsetEnv(t *testing.T, name string) {
	t.Helper()
	t.Setenv(name, "")
	os.Unsetenv(name)
}

func TestResolve_LiteralText(t *testing.T) {
	inputs := []string{"", "/usr/bin/hx", "a literal $ stays", "--flag=value"}
	for _, input := range inputs {
		got, err := Resolve(input)
		if err != nil {
			t.Fatalf("Resolve(%q) returned error: %v", input, err)
		}
		if got != input {
			t.Errorf("Resolve(%q) = %q, want the input unchanged", input, got)
		}
	}
}

func TestResolve_Home(t *testing.T) {
	t.Setenv("HOME", "/home/tester")

	tests := []struct {
		input string
		want  string
	}{
		{"~", "/home/tester"},
		{"~/projects/kernel", "/home/tester/projects/kernel"},
		{"backup-of-~", "backup-of-/home/tester"},
	}
	for _, tt := range tests {
		got, err := Resolve(tt.input)
		if err != nil {
			t.Fatalf("Resolve(%q) returned error: %v", tt.input, err)
		}
		if got != tt.want {
			t.Errorf("Resolve(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestResolve_EnvVar(t *testing.T) {
	t.Setenv("SKELD_TEST_EDITOR", "hx")

	got, err := Resolve("/usr/bin/$[SKELD_TEST_EDITOR]")
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if got != "/usr/bin/hx" {
		t.Errorf("Resolve = %q, want %q", got, "/usr/bin/hx")
	}
}

func TestResolve_EnvVarFallback(t *testing.T) {
	t.Setenv("HOME", "/home/tester")
	unsetEnv(t, "SKELD_TEST_UNSET")

	tests := []struct {
		input string
		want  string
	}{
		{"$[SKELD_TEST_UNSET:vi]", "vi"},
		{"$[SKELD_TEST_UNSET:~/bin/vi]", "/home/tester/bin/vi"},
		{"$[SKELD_TEST_UNSET:with:colons]", "with:colons"},
	}
	for _, tt := range tests {
		got, err := Resolve(tt.input)
		if err != nil {
			t.Fatalf("Resolve(%q) returned error: %v", tt.input, err)
		}
		if got != tt.want {
			t.Errorf("Resolve(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestResolve_EnvVarFallbackUnused(t *testing.T) {
	// A relative home directory errors on lookup, so the test fails if the
	// unused fallback's tilde is ever resolved.
	t.Setenv("HOME", "not-absolute")
	t.Setenv("SKELD_TEST_SET", "set-value")

	got, err := Resolve("$[SKELD_TEST_SET:~]")
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if got != "set-value" {
		t.Errorf("Resolve = %q, want %q", got, "set-value")
	}
}

func TestResolve_EnvVarNestedFallback(t *testing.T) {
	unsetEnv(t, "SKELD_TEST_OUTER")
	unsetEnv(t, "SKELD_TEST_INNER")

	got, err := Resolve("$[SKELD_TEST_OUTER:$[SKELD_TEST_INNER:default]]")
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if got != "default" {
		t.Errorf("Resolve = %q, want %q", got, "default")
	}

	t.Setenv("SKELD_TEST_INNER", "inner")
	got, err = Resolve("$[SKELD_TEST_OUTER:$[SKELD_TEST_INNER:default]]")
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if got != "inner" {
		t.Errorf("Resolve = %q, want %q", got, "inner")
	}
}

func TestResolve_EnvVarMissing(t *testing.T) {
	unsetEnv(t, "SKELD_TEST_UNSET")

	_, err := Resolve("$[SKELD_TEST_UNSET]")
	if err == nil {
		t.Fatal("Resolve succeeded for an unset variable without fallback")
	}
	if !strings.Contains(err.Error(), "environment variable `SKELD_TEST_UNSET` not found") {
		t.Errorf("error = %q, want it to name the missing variable", err)
	}
}

func TestResolve_BaseDirVariables(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/base/config")
	t.Setenv("XDG_CACHE_HOME", "/base/cache")
	t.Setenv("XDG_DATA_HOME", "/base/data")
	t.Setenv("XDG_STATE_HOME", "/base/state")

	tests := []struct {
		input string
		want  string
	}{
		{"$(CONFIG)/skeld", "/base/config/skeld"},
		{"$(CACHE)", "/base/cache"},
		{"$(DATA)/skeld/include", "/base/data/skeld/include"},
		{"$(STATE)", "/base/state"},
	}
	for _, tt := range tests {
		got, err := Resolve(tt.input)
		if err != nil {
			t.Fatalf("Resolve(%q) returned error: %v", tt.input, err)
		}
		if got != tt.want {
			t.Errorf("Resolve(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestResolve_BaseDirFallbackRejected(t *testing.T) {
	_, err := Resolve("$(DATA:/tmp)")
	if err == nil {
		t.Fatal("Resolve accepted a fallback for $(DATA)")
	}
	if !strings.Contains(err.Error(), "fallback values are not supported for $(DATA)") {
		t.Errorf("error = %q, want the fallback rejection", err)
	}
}

func TestResolve_UnknownVariable(t *testing.T) {
	_, err := Resolve("$(NOPE)")
	if err == nil {
		t.Fatal("Resolve accepted an unknown variable")
	}
	if !strings.Contains(err.Error(), "unknown variable `$(NOPE)`") {
		t.Errorf("error = %q, want it to name the variable", err)
	}
	if !strings.Contains(err.Error(), "`$(STATE)`") {
		t.Errorf("error = %q, want it to list the supported variables", err)
	}
	if strings.Contains(err.Error(), "`$(FILE)`") {
		t.Errorf("error = %q, must not offer $(FILE) outside editor arguments", err)
	}
}

func TestResolve_FileVariableRejected(t *testing.T) {
	_, err := Resolve("$(FILE)")
	if err == nil || !strings.Contains(err.Error(), "can only be used in `editor.cmd`") {
		t.Errorf("Resolve error = %v, want the editor.cmd hint", err)
	}

	_, err = ResolveEditorProgram("$(FILE)")
	if err == nil || !strings.Contains(err.Error(), "cannot be used in the program path") {
		t.Errorf("ResolveEditorProgram error = %v, want the program path hint", err)
	}
}

func TestResolveWithFile(t *testing.T) {
	tests := []struct {
		input string
		file  string
		want  string
	}{
		{"$(FILE)", "/work/src/main.c", "/work/src/main.c"},
		{"--open=$(FILE)", "/work/a b.txt", "--open=/work/a b.txt"},
		{"$(FILE:.)", "/work/src/main.c", "/work/src/main.c"},
	}
	for _, tt := range tests {
		got, ok, err := ResolveWithFile(tt.input, tt.file)
		if err != nil {
			t.Fatalf("ResolveWithFile(%q) returned error: %v", tt.input, err)
		}
		if !ok {
			t.Fatalf("ResolveWithFile(%q) dropped the argument", tt.input)
		}
		if got != tt.want {
			t.Errorf("ResolveWithFile(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestResolveWithFile_NoFileDropsArgument(t *testing.T) {
	for _, input := range []string{"$(FILE)", "--open=$(FILE)"} {
		_, ok, err := ResolveWithFile(input, "")
		if err != nil {
			t.Fatalf("ResolveWithFile(%q) returned error: %v", input, err)
		}
		if ok {
			t.Errorf("ResolveWithFile(%q) kept an argument without a file value", input)
		}
	}
}

func TestResolveWithFile_NoFileFallback(t *testing.T) {
	got, ok, err := ResolveWithFile("$(FILE:.)", "")
	if err != nil {
		t.Fatalf("ResolveWithFile returned error: %v", err)
	}
	if !ok {
		t.Fatal("ResolveWithFile dropped an argument that has a fallback")
	}
	if got != "." {
		t.Errorf("ResolveWithFile = %q, want %q", got, ".")
	}
}

func TestResolveWithFile_UnknownVariableListsFile(t *testing.T) {
	_, _, err := ResolveWithFile("$(NOPE)", "/work/file")
	if err == nil {
		t.Fatal("ResolveWithFile accepted an unknown variable")
	}
	if !strings.Contains(err.Error(), "`$(FILE)`") {
		t.Errorf("error = %q, want $(FILE) among the supported variables", err)
	}
}

func TestResolve_MismatchedBrackets(t *testing.T) {
	tests := []struct {
		input   string
		wantSub string
	}{
		{"a]b", "unmatched closing bracket"},
		{"run)", "unmatched closing bracket"},
		{"$[HOME", "unmatched opening `$[`"},
		{"$(DATA", "unmatched opening `$(`"},
		{"$[HOME)", "wrong bracket type"},
		{"$(DATA]", "wrong bracket type"},
	}
	for _, tt := range tests {
		_, err := Resolve(tt.input)
		if err == nil {
			t.Fatalf("Resolve(%q) accepted mismatched brackets", tt.input)
		}
		if !strings.Contains(err.Error(), tt.wantSub) {
			t.Errorf("Resolve(%q) error = %q, want it to contain %q", tt.input, err, tt.wantSub)
		}
	}
}

func TestResolve_PlaceholderInVariableName(t *testing.T) {
	t.Setenv("SKELD_TEST_NAME", "DATA")

	_, err := Resolve("$($[SKELD_TEST_NAME])")
	if err == nil || !strings.Contains(err.Error(), "placeholders are not allowed in variable names") {
		t.Errorf("Resolve error = %v, want the nested-placeholder rejection", err)
	}

	_, err = Resolve("$[$(CONFIG)]")
	if err == nil || !strings.Contains(err.Error(), "placeholders are not allowed in variable names") {
		t.Errorf("Resolve error = %v, want the nested-placeholder rejection", err)
	}
}
