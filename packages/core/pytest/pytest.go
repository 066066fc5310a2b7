package pytest

import "context"

// Exit codes reported by pytest
const (
	// ExitOK indicates all tests passed
	ExitOK = 0

	// ExitTestsFailed indicates one or more tests failed
	ExitTestsFailed = 1

	// ExitInterrupted indicates the run was interrupted. pytest reports
	// this code for keyboard interrupts and for some internal parse
	// errors alike; the two cannot be told apart from the outside.
	ExitInterrupted = 2

	// ExitInternalError indicates an internal pytest error
	ExitInternalError = 3

	// ExitUsageError indicates invalid pytest command-line usage
	ExitUsageError = 4

	// ExitNoTestsCollected indicates the run collected zero tests
	ExitNoTestsCollected = 5
)

// Config exposes the resolved configuration state of a pytest invocation.
// Concrete hosts attach capabilities to it; see IniFiler and IniConfiger.
type Config interface {
	// RootDir returns the root directory pytest resolved for the run.
	RootDir() string
}

// IniFiler is implemented by hosts that expose the resolved config file
// path directly (pytest >= 2.7 reports it as "configfile").
type IniFiler interface {
	IniFile() string
}

// IniConfiger is implemented by older hosts that only expose the path of
// the parsed ini config ("inifile").
type IniConfiger interface {
	IniConfigPath() string
}

// ConfigFile returns the config file path resolved by the host, or ""
// when the run had no config file or the host exposes no known
// capability for it.
func ConfigFile(cfg Config) string {
	switch c := cfg.(type) {
	case IniFiler:
		return c.IniFile()
	case IniConfiger:
		return c.IniConfigPath()
	}
	return ""
}

// Observer receives notifications during a pytest run.
type Observer interface {
	// ConfigResolved is called once, as soon as the host has resolved
	// its command-line and configuration state. Returning true stops
	// the run immediately; the host reports ExitOK for a stopped run.
	ConfigResolved(cfg Config) (stop bool)
}

// Host runs pytest with the given arguments and returns its exit code.
// The error return covers failures to run pytest at all (for example a
// missing binary); test failures are reported through the exit code.
type Host interface {
	Main(ctx context.Context, args []string, observers ...Observer) (int, error)
}
