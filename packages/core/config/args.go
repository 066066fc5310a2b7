package config

// CLIOptionPrefix marks the argument map keys that correspond to
// command-line options.
const CLIOptionPrefix = "--"

// Args maps command-line option names (including the -- prefix) to their
// current values. A value is one of: bool (flag), []string (repeatable
// option) or string (scalar option). Merge mutates values in place and
// never adds or removes keys.
type Args map[string]any

// truthy reports whether a value counts as explicitly set on the command
// line, which gives it precedence over config file values.
func truthy(v any) bool {
	switch val := v.(type) {
	case bool:
		return val
	case string:
		return val != ""
	case []string:
		return len(val) > 0
	}
	return false
}
