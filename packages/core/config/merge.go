package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/pytest-watch/ptw/packages/core/pytest"
)

// Section is the config file section ptw reads its options from.
const Section = "pytest-watch"

// Merge copies recognized options from the [pytest-watch] section of the
// active pytest config file into args, in place. Options already set on
// the command line are never overridden.
//
// It returns false only when config discovery was interrupted or failed
// unrecoverably, signaling the caller to abort the watch session. A
// missing config file or missing section is not an error; merging is
// simply a no-op and true is returned.
func Merge(ctx context.Context, host pytest.Host, args Args, pytestArgs []string, silent, verbose bool) bool {
	if verbose {
		fmt.Fprintln(os.Stderr, "Locating inifile...")
	}

	path, err := Locate(ctx, host, pytestArgs, silent)
	if err != nil {
		return false
	}
	if path == "" {
		return true
	}

	file, err := Load(path)
	if err != nil || !file.HasSection(Section) {
		return true
	}

	for name, current := range args {
		if !strings.HasPrefix(name, CLIOptionPrefix) {
			continue
		}
		option := strings.TrimPrefix(name, CLIOptionPrefix)

		// CLI options take precedence
		if truthy(current) {
			continue
		}

		value, ok := file.Get(Section, option)
		if !ok {
			continue
		}

		switch current := current.(type) {
		case []string:
			if value.IsList() {
				args[name] = append(current, value.List()...)
			} else {
				args[name] = append(current, value.String())
			}
		case bool:
			b, err := value.Bool()
			if err != nil {
				fmt.Fprintf(os.Stderr, "Warning: ignoring %s option %q: %v\n", Section, option, err)
				continue
			}
			args[name] = b
		default:
			args[name] = value.String()
		}
	}

	return true
}
