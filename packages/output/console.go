package output

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
)

type Console struct {
	writer  io.Writer
	quiet   bool
	noColor bool
}

type ConsoleOption func(*Console)

func NewConsole(opts ...ConsoleOption) *Console {
	c := &Console{
		writer: os.Stdout,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.noColor {
		color.NoColor = true
	}
	return c
}

func WithWriter(w io.Writer) ConsoleOption {
	return func(c *Console) {
		c.writer = w
	}
}

func WithQuiet(q bool) ConsoleOption {
	return func(c *Console) {
		c.quiet = q
	}
}

func WithNoColor(nc bool) ConsoleOption {
	return func(c *Console) {
		c.noColor = nc
	}
}

// RunStart announces a test run, naming the file change that caused it.
// An empty trigger means the initial run of the session.
func (c *Console) RunStart(trigger string) {
	if c.quiet {
		return
	}
	bold := color.New(color.Bold).SprintFunc()
	if trigger == "" {
		fmt.Fprintf(c.writer, "%s\n", bold("Running tests..."))
		return
	}
	cyan := color.New(color.FgCyan).SprintFunc()
	fmt.Fprintf(c.writer, "%s %s\n", bold("Change detected:"), cyan(trigger))
}

// RunResult reports the outcome of one test run.
func (c *Console) RunResult(exitCode int, duration time.Duration) {
	if c.quiet {
		return
	}
	if exitCode == 0 {
		green := color.New(color.FgGreen).SprintFunc()
		fmt.Fprintf(c.writer, "%s (%s)\n", green("✓ Tests passed"), duration.Round(time.Millisecond))
		return
	}
	red := color.New(color.FgRed).SprintFunc()
	fmt.Fprintf(c.writer, "%s exit code %d (%s)\n", red("✗ Tests failed:"), exitCode, duration.Round(time.Millisecond))
}

// Waiting prints the idle watch prompt between runs.
func (c *Console) Waiting() {
	if c.quiet {
		return
	}
	fmt.Fprintf(c.writer, "\nWatching for changes... (press Ctrl+C to stop)\n\n")
}

// Notice prints a plain informational line.
func (c *Console) Notice(format string, args ...any) {
	if c.quiet {
		return
	}
	fmt.Fprintf(c.writer, format+"\n", args...)
}

// Error reports a session-level error to the error stream.
func (c *Console) Error(err error) {
	red := color.New(color.FgRed).SprintFunc()
	fmt.Fprintf(os.Stderr, "%s %v\n", red("Error:"), err)
}
