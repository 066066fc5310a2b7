package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/ini.v1"
)

// arrayPattern matches a bracketed array assignment (key = [a, "b", 'c']),
// possibly spanning multiple lines. Only values are rewritten; section
// headers and option names pass through untouched.
var arrayPattern = regexp.MustCompile(`(?ms)^(\s*[^=\s]+\s*=\s*)\[(.*?)\]`)

// File is a parsed config file. It wraps an INI file where bracketed
// array values have been normalized into the multi-line value form, so a
// value with embedded newlines always reads back as a list.
type File struct {
	f *ini.File
}

func loadOptions() ini.LoadOptions {
	return ini.LoadOptions{AllowPythonMultilineValues: true}
}

// Load reads and parses one config file. When the file cannot be opened
// the parse is delegated to the INI library's own file loading, so its
// native error behavior is preserved; otherwise the content is
// normalized first and parsed from memory.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		f, err := ini.LoadSources(loadOptions(), path)
		if err != nil {
			return nil, err
		}
		return &File{f: f}, nil
	}

	f, err := ini.LoadSources(loadOptions(), normalizeArrays(data))
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &File{f: f}, nil
}

// normalizeArrays rewrites bracketed array values into indented
// continuation lines, the multi-line form the INI parser understands.
// Content without bracketed arrays passes through unchanged.
func normalizeArrays(data []byte) []byte {
	return arrayPattern.ReplaceAllFunc(data, func(m []byte) []byte {
		sub := arrayPattern.FindSubmatch(m)
		items := splitItems(string(sub[2]))
		return []byte(string(sub[1]) + strings.Join(items, "\n\t"))
	})
}

// splitItems splits a comma-separated item list, trimming whitespace and
// exactly one layer of surrounding quotes per item. Empty items are
// dropped.
func splitItems(raw string) []string {
	var items []string
	for _, item := range strings.Split(raw, ",") {
		item = unquote(strings.TrimSpace(item))
		if item != "" {
			items = append(items, item)
		}
	}
	return items
}

// unquote strips one matching pair of single or double quotes.
func unquote(s string) string {
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') ||
			(s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}

// HasSection reports whether the file defines the named section.
func (f *File) HasSection(name string) bool {
	_, err := f.f.GetSection(name)
	return err == nil
}

// Get returns the value of an option, reporting false when the section
// or option does not exist.
func (f *File) Get(section, option string) (Value, bool) {
	sec, err := f.f.GetSection(section)
	if err != nil || !sec.HasKey(option) {
		return Value{}, false
	}
	return Value{raw: sec.Key(option).String()}, true
}

// Value is a config option value: a scalar string, or an ordered
// sequence when the underlying value spans multiple lines.
type Value struct {
	raw string
}

// IsList reports whether the value is a sequence.
func (v Value) IsList() bool {
	return strings.Contains(v.raw, "\n")
}

// List returns the value as an ordered sequence of strings. Each line
// is trimmed of the indentation the continuation syntax carries; empty
// lines are dropped.
func (v Value) List() []string {
	var items []string
	for _, item := range strings.Split(v.raw, "\n") {
		item = strings.TrimSpace(item)
		if item != "" {
			items = append(items, item)
		}
	}
	return items
}

// String returns the raw scalar value.
func (v Value) String() string {
	return v.raw
}

// Bool coerces the value using the config dialect's boolean spellings:
// 1/yes/true/on and 0/no/false/off, case-insensitive. Anything else is
// an error rather than a silent default.
func (v Value) Bool() (bool, error) {
	switch strings.ToLower(strings.TrimSpace(v.raw)) {
	case "1", "yes", "true", "on":
		return true, nil
	case "0", "no", "false", "off":
		return false, nil
	}
	return false, fmt.Errorf("not a boolean value: %q", v.raw)
}
