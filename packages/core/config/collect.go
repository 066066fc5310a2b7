package config

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/pytest-watch/ptw/packages/capture"
	"github.com/pytest-watch/ptw/packages/core/pytest"
)

// ErrInterrupted is returned when config discovery was interrupted. The
// host reports the same exit code for keyboard interrupts and certain
// parse errors, so both surface as an interruption here.
var ErrInterrupted = errors.New("config discovery interrupted")

// CollectError indicates the dry collect-only invocation failed with an
// exit code outside the accepted set.
type CollectError struct {
	Code int
	Err  error
}

func (e *CollectError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("pytest collection failed: %v", e.Err)
	}
	return fmt.Sprintf("pytest collection failed with exit code %d", e.Code)
}

func (e *CollectError) Unwrap() error { return e.Err }

// collectObserver records the config file path the host resolves and
// stops the run as soon as one is known, so no collection work happens
// beyond resolving the path.
type collectObserver struct {
	path string
}

func (o *collectObserver) ConfigResolved(cfg pytest.Config) bool {
	if path := pytest.ConfigFile(cfg); path != "" {
		o.path = path
		return true
	}
	return false
}

// runCollect performs one dry collect-only invocation and maps its
// outcome: the recorded path on a stopped run, "" when the host had no
// config file, ErrInterrupted or a *CollectError otherwise.
func runCollect(ctx context.Context, host pytest.Host, pytestArgs []string) (string, error) {
	obs := &collectObserver{}
	argv := append(append([]string(nil), pytestArgs...), "--collect-only")

	code, err := host.Main(ctx, argv, obs)
	if obs.path != "" {
		return obs.path, nil
	}
	if err != nil {
		return "", &CollectError{Code: code, Err: err}
	}
	if code == pytest.ExitInterrupted {
		return "", ErrInterrupted
	}
	if code != pytest.ExitOK && code != pytest.ExitNoTestsCollected {
		return "", &CollectError{Code: code}
	}
	return "", nil
}

// Locate discovers the config file pytest would use for the given
// arguments. With silent set, the invocation runs with output streams
// suppressed; if that attempt fails for any reason (including an
// interruption) a diagnostic is printed and the invocation is retried
// once without suppression, so the cause is visible to the user.
func Locate(ctx context.Context, host pytest.Host, pytestArgs []string, silent bool) (string, error) {
	if silent {
		path, err := func() (string, error) {
			restore, err := capture.Silence()
			if err != nil {
				return "", err
			}
			defer restore()
			return runCollect(ctx, host, pytestArgs)
		}()
		if err == nil {
			return path, nil
		}

		fmt.Fprintln(os.Stderr, "Error: could not run --collect-only to handle "+
			"the pytest config file. Trying again without silencing output...")
	}

	return runCollect(ctx, host, pytestArgs)
}
