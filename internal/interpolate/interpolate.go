package interpolate

import (
	"fmt"
	"os"
	"strings"

	"github.com/skeld-sh/skeld/internal/dirs"
	"github.com/skeld-sh/skeld/internal/errors"
)

// errNoFileValue marks an editor argument whose $(FILE) has no value and no
// fallback. The caller drops the argument instead of reporting an error.
var errNoFileValue = errors.New(errors.ExitGeneralError, "no file to open")

// Resolve expands every placeholder in s.
func Resolve(s string) (string, error) {
	return resolve(s, &standardResolver{
		fileVarMessage: "$(FILE) can only be used in `editor.cmd`",
	})
}

// ResolveEditorProgram expands the placeholders of an editor program path.
// $(FILE) is rejected here: the file to open can only appear in the
// arguments that follow the program.
func ResolveEditorProgram(s string) (string, error) {
	return resolve(s, &standardResolver{
		fileVarMessage: "$(FILE) cannot be used in the program path",
	})
}

// ResolveWithFile expands the placeholders of an editor argument, with
// $(FILE) standing for the file to open. An empty file means there is no
// such file; an argument that needs one and carries no fallback is dropped,
// reported as ok == false with a nil error.
func ResolveWithFile(s, file string) (string, bool, error) {
	value, err := resolve(s, &fileResolver{file: file})
	if err != nil {
		if errors.Is(err, errNoFileValue) {
			return "", false, nil
		}
		return "", false, err
	}
	return value, true, nil
}

// variableResolver expands the inner expression of a `$(...)` placeholder.
type variableResolver interface {
	resolve(expr string) (string, error)
}

func resolve(s string, vars variableResolver) (string, error) {
	placeholders, err := findPlaceholders(s)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	last := 0
	for _, p := range placeholders {
		var value string
		var err error
		switch p.kind {
		case placeholderHome:
			value, err = dirs.Home()
		case placeholderEnv:
			value, err = resolveEnvVar(p.inner, vars)
		case placeholderVariable:
			value, err = vars.resolve(p.inner)
		}
		if err != nil {
			return "", err
		}
		b.WriteString(s[last:p.start])
		b.WriteString(value)
		last = p.end
	}
	b.WriteString(s[last:])

	return b.String(), nil
}

// resolveEnvVar handles `$[NAME]` and `$[NAME:fallback]`. The fallback may
// itself contain placeholders and is only resolved when NAME is unset.
func resolveEnvVar(expr string, vars variableResolver) (string, error) {
	name, fallback, hasFallback := splitFallback(expr)
	if _, ok := nextPOI(name); ok {
		return "", errors.ValidationError(fmt.Sprintf(
			"invalid environment variable expression `%s`: placeholders are not allowed in variable names", expr))
	}

	if value, ok := os.LookupEnv(name); ok {
		return value, nil
	}
	if hasFallback {
		return resolve(fallback, vars)
	}
	return "", errors.ValidationError(fmt.Sprintf("environment variable `%s` not found", name))
}

// splitFallback splits a placeholder expression at the first colon.
func splitFallback(expr string) (string, string, bool) {
	if i := strings.IndexByte(expr, ':'); i >= 0 {
		return expr[:i], expr[i+1:], true
	}
	return expr, "", false
}

func parseVariable(expr string) (string, string, bool, error) {
	name, fallback, hasFallback := splitFallback(expr)
	if _, ok := nextPOI(name); ok {
		return "", "", false, errors.ValidationError(fmt.Sprintf(
			"invalid variable expression `%s`: placeholders are not allowed in variable names", expr))
	}
	return name, fallback, hasFallback, nil
}

var baseDirVariables = []struct {
	name    string
	resolve func() (string, error)
}{
	{"CONFIG", dirs.Config},
	{"CACHE", dirs.Cache},
	{"DATA", dirs.Data},
	{"STATE", dirs.State},
}

// resolveBaseDir expands $(CONFIG), $(CACHE), $(DATA) and $(STATE). The
// second result is false when name is no base-directory variable.
func resolveBaseDir(name string, hasFallback bool) (string, bool, error) {
	for _, v := range baseDirVariables {
		if name != v.name {
			continue
		}
		if hasFallback {
			return "", false, errors.ValidationError(fmt.Sprintf(
				"fallback values are not supported for $(%s)", name))
		}
		value, err := v.resolve()
		if err != nil {
			return "", false, err
		}
		return value, true, nil
	}
	return "", false, nil
}

func unknownVariableError(name string, fileVarAllowed bool) error {
	supported := "`$(CONFIG)`, `$(CACHE)`, `$(DATA)`, `$(STATE)`"
	if fileVarAllowed {
		supported += ", `$(FILE)`"
	}
	return errors.ValidationError(fmt.Sprintf(
		"unknown variable `$(%s)`: supported variables are %s\n  (run `%s` to see all supported variables)",
		name, supported, errors.Manpage("String Interpolation")))
}

// standardResolver rejects $(FILE) with a context-specific message.
type standardResolver struct {
	fileVarMessage string
}

func (r *standardResolver) resolve(expr string) (string, error) {
	name, _, hasFallback, err := parseVariable(expr)
	if err != nil {
		return "", err
	}

	value, ok, err := resolveBaseDir(name, hasFallback)
	if err != nil {
		return "", err
	}
	if ok {
		return value, nil
	}

	if name == "FILE" {
		return "", errors.ValidationError(r.fileVarMessage)
	}
	return "", unknownVariableError(name, false)
}

// fileResolver additionally expands $(FILE) to the file to open.
type fileResolver struct {
	file string
}

func (r *fileResolver) resolve(expr string) (string, error) {
	name, fallback, hasFallback, err := parseVariable(expr)
	if err != nil {
		return "", err
	}

	value, ok, err := resolveBaseDir(name, hasFallback)
	if err != nil {
		return "", err
	}
	if ok {
		return value, nil
	}

	if name == "FILE" {
		if r.file != "" {
			return r.file, nil
		}
		if hasFallback {
			return resolve(fallback, r)
		}
		return "", errNoFileValue
	}
	return "", unknownVariableError(name, true)
}

type placeholderKind int

const (
	placeholderHome placeholderKind = iota
	placeholderEnv
	placeholderVariable
)

// placeholder is one top-level placeholder of the input: its span
// [start, end) and, for bracket pairs, the text between the brackets.
type placeholder struct {
	kind       placeholderKind
	start, end int
	inner      string
}

type bracketKind int

const (
	bracketSquare bracketKind = iota
	bracketRound
)

type openBracket struct {
	idx  int
	kind bracketKind
}

// findPlaceholders scans s for top-level placeholders. Nested bracket pairs
// stay part of the enclosing placeholder's inner text, and a `~` inside a
// bracket pair stays literal until the pair's expansion resolves it.
func findPlaceholders(s string) ([]placeholder, error) {
	var placeholders []placeholder
	var stack []openBracket

	pointer := 0
	for {
		p, ok := nextPOI(s[pointer:])
		if !ok {
			break
		}
		idx := pointer + p.start
		pointer += p.end

		switch p.kind {
		case poiTilde:
			if len(stack) == 0 {
				placeholders = append(placeholders, placeholder{
					kind:  placeholderHome,
					start: idx,
					end:   idx + 1,
				})
			}
		case poiOpen:
			stack = append(stack, openBracket{idx: idx, kind: p.bracket})
		case poiClose:
			if len(stack) == 0 {
				return nil, errors.ValidationError(fmt.Sprintf(
					"mismatched brackets in `%s`: unmatched closing bracket", s))
			}
			opening := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if opening.kind != p.bracket {
				return nil, errors.ValidationError(fmt.Sprintf(
					"mismatched brackets in `%s`: `%s` is closed by the wrong bracket type",
					s, s[opening.idx:opening.idx+2]))
			}
			if len(stack) == 0 {
				kind := placeholderEnv
				if p.bracket == bracketRound {
					kind = placeholderVariable
				}
				placeholders = append(placeholders, placeholder{
					kind:  kind,
					start: opening.idx,
					end:   idx + 1,
					inner: s[opening.idx+2 : idx],
				})
			}
		}
	}

	if len(stack) > 0 {
		opening := stack[len(stack)-1]
		return nil, errors.ValidationError(fmt.Sprintf(
			"mismatched brackets in `%s`: unmatched opening `%s`",
			s, s[opening.idx:opening.idx+2]))
	}

	return placeholders, nil
}

type poiKind int

const (
	poiOpen poiKind = iota
	poiClose
	poiTilde
)

// poi is a point of interest of the scanner: an opening `$[` or `$(`, a
// closing bracket, or a `~`.
type poi struct {
	start, end int
	kind       poiKind
	bracket    bracketKind
}

// nextPOI finds the earliest placeholder token in s. A `$` not followed by
// an opening bracket is literal text.
func nextPOI(s string) (poi, bool) {
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '$':
			if i+1 < len(s) && s[i+1] == '[' {
				return poi{start: i, end: i + 2, kind: poiOpen, bracket: bracketSquare}, true
			}
			if i+1 < len(s) && s[i+1] == '(' {
				return poi{start: i, end: i + 2, kind: poiOpen, bracket: bracketRound}, true
			}
		case ']':
			return poi{start: i, end: i + 1, kind: poiClose, bracket: bracketSquare}, true
		case ')':
			return poi{start: i, end: i + 1, kind: poiClose, bracket: bracketRound}, true
		case '~':
			return poi{start: i, end: i + 1, kind: poiTilde}, true
		}
	}
	return poi{}, false
}
