package runner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/pytest-watch/ptw/packages/history"
	"github.com/pytest-watch/ptw/packages/output"
	"github.com/pytest-watch/ptw/packages/stats"
)

// Config controls how test runs are executed.
type Config struct {
	// Runner is the test command to execute. Empty means "pytest".
	Runner string

	// Args are forwarded to every invocation.
	Args []string

	// Clear clears the terminal before each run.
	Clear bool

	// Beep rings the terminal bell when a run fails.
	Beep bool

	// Hook commands, run through the shell. Empty entries are skipped.
	BeforeRun string
	AfterRun  string
	OnPass    string
	OnFail    string
	OnExit    string
}

// Runner executes test runs and their surrounding lifecycle hooks.
type Runner struct {
	cfg     *Config
	console *output.Console
	session *stats.Session
	store   *history.Store
}

// Option configures a Runner.
type Option func(*Runner)

// WithConsole sets the console used for status lines.
func WithConsole(c *output.Console) Option {
	return func(r *Runner) { r.console = c }
}

// WithStats sets the session statistics collector.
func WithStats(s *stats.Session) Option {
	return func(r *Runner) { r.session = s }
}

// WithHistory sets the run-history store. Nil disables recording.
func WithHistory(h *history.Store) Option {
	return func(r *Runner) { r.store = h }
}

// NewRunner creates a Runner for the given configuration.
func NewRunner(cfg *Config, opts ...Option) *Runner {
	r := &Runner{cfg: cfg}
	for _, opt := range opts {
		opt(r)
	}
	if r.console == nil {
		r.console = output.NewConsole()
	}
	return r
}

// Run executes one test run. trigger names the changed file that caused
// it ("" for the initial run). The test command's exit code is returned;
// a non-zero code is not an error.
func (r *Runner) Run(ctx context.Context, trigger string) (int, error) {
	r.runHook(ctx, r.cfg.BeforeRun)

	if r.cfg.Clear {
		clearTerminal()
	}
	r.console.RunStart(trigger)

	start := time.Now()
	code, err := r.execTests(ctx)
	duration := time.Since(start)
	if err != nil {
		return code, err
	}

	r.console.RunResult(code, duration)

	if r.session != nil {
		r.session.Record(duration, code != 0)
	}
	if r.store != nil {
		meta := map[string]any{"args": r.cfg.Args}
		if recErr := r.store.Record(ctx, trigger, code, duration, meta); recErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not record run: %v\n", recErr)
		}
	}

	if code == 0 {
		r.runHook(ctx, r.cfg.OnPass)
	} else {
		if r.cfg.Beep {
			beep()
		}
		r.runHook(ctx, r.cfg.OnFail)
	}
	r.runHook(ctx, r.cfg.AfterRun)

	return code, nil
}

// Exit runs the session teardown hook, if any.
func (r *Runner) Exit(ctx context.Context) {
	r.runHook(ctx, r.cfg.OnExit)
}

// execTests spawns the test command wired to the session's terminal.
func (r *Runner) execTests(ctx context.Context) (int, error) {
	bin := r.cfg.Runner
	if bin == "" {
		bin = "pytest"
	}

	cmd := exec.CommandContext(ctx, bin, r.cfg.Args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	err := cmd.Run()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return exitErr.ExitCode(), nil
		}
		return -1, fmt.Errorf("running %s: %w", bin, err)
	}
	return 0, nil
}

func clearTerminal() {
	fmt.Print("\033[2J\033[H")
}

func beep() {
	fmt.Fprint(os.Stderr, "\a")
}
