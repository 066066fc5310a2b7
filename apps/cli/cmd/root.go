package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/pytest-watch/ptw/packages/core/config"
	"github.com/pytest-watch/ptw/packages/core/pytest"
	"github.com/pytest-watch/ptw/packages/core/runner"
	"github.com/pytest-watch/ptw/packages/history"
	"github.com/pytest-watch/ptw/packages/output"
	"github.com/pytest-watch/ptw/packages/stats"
	"github.com/pytest-watch/ptw/packages/watcher"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

// defaultHistoryDB is where run history is stored when enabled.
const defaultHistoryDB = ".ptw-history.db"

var rootCmd = &cobra.Command{
	Use:   "ptw [directories...] [-- pytest-args...]",
	Short: "Local continuous test runner for pytest.",
	Long: `ptw watches your project for file changes and re-runs pytest
whenever a watched file is saved.

Options left unset on the command line are filled in from the
[pytest-watch] section of the pytest config file (pytest.ini, tox.ini,
setup.cfg), discovered through a dry collect-only run. Command-line
values always win over config file values.

Examples:
  ptw
  ptw src tests -- -x --ff
  ptw --onfail "notify-send 'tests failed'" --clear
  ptw --ext .py,.pyi --ignore .venv --ignore build`,
	RunE:         watchCommand,
	SilenceUsage: true,
}

var (
	ignoreFlag    []string
	extFlag       string
	onPassFlag    string
	onFailFlag    string
	beforeRunFlag string
	afterRunFlag  string
	onExitFlag    string
	runnerFlag    string
	noBeepFlag    bool
	clearFlag     bool
	spoolFlag     string
	verboseFlag   bool
	quietFlag     bool
	noColorFlag   bool
	historyFlag   string
)

func init() {
	rootCmd.Flags().StringArrayVar(&ignoreFlag, "ignore", nil, "Ignore directory from being watched (repeatable)")
	rootCmd.Flags().StringVar(&extFlag, "ext", "", "Comma-separated list of file extensions to watch (default: .py)")
	rootCmd.Flags().StringVar(&onPassFlag, "onpass", "", "Run command after tests pass")
	rootCmd.Flags().StringVar(&onFailFlag, "onfail", "", "Run command after tests fail")
	rootCmd.Flags().StringVar(&beforeRunFlag, "beforerun", "", "Run command before every test run")
	rootCmd.Flags().StringVar(&afterRunFlag, "afterrun", "", "Run command after every test run")
	rootCmd.Flags().StringVar(&onExitFlag, "onexit", "", "Run command when the watch session ends")
	rootCmd.Flags().StringVar(&runnerFlag, "runner", "", "Test command to run instead of pytest")
	rootCmd.Flags().BoolVar(&noBeepFlag, "nobeep", false, "Do not beep when tests fail")
	rootCmd.Flags().BoolVar(&clearFlag, "clear", false, "Clear the terminal before each run")
	rootCmd.Flags().StringVar(&spoolFlag, "spool", "", "Re-run delay after a change, in milliseconds (default: 300)")
	rootCmd.Flags().BoolVarP(&verboseFlag, "verbose", "v", false, "Verbose output, including config discovery")
	rootCmd.Flags().BoolVarP(&quietFlag, "quiet", "q", false, "Suppress ptw's own status lines")
	rootCmd.Flags().BoolVar(&noColorFlag, "no-color", getEnvBool("PTW_NO_COLOR", false), "Disable colored output (env: PTW_NO_COLOR)")
	rootCmd.Flags().StringVar(&historyFlag, "history", getEnvString("PTW_HISTORY", ""), "Record runs to a SQLite history database at this path (env: PTW_HISTORY)")

	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(versionCmd)
}

// errMergeFailed signals that config discovery was interrupted or
// failed, so the watch session must not start.
var errMergeFailed = errors.New("could not merge pytest config options")

func Execute(v, bt string) {
	version = v
	buildTime = bt
	if err := rootCmd.Execute(); err != nil {
		os.Exit(exitCode(err))
	}
}

// exitCode maps a session error to the CLI exit code.
func exitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	if errors.Is(err, errMergeFailed) {
		return ExitConfigError
	}
	return ExitFailure
}

// Environment variable helpers
func getEnvString(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		return val == "true" || val == "1" || val == "yes"
	}
	return defaultVal
}

func watchCommand(cmd *cobra.Command, argv []string) error {
	dirs := argv
	var pytestArgs []string
	if i := cmd.ArgsLenAtDash(); i >= 0 {
		dirs = argv[:i]
		pytestArgs = argv[i:]
	}
	if len(dirs) == 0 {
		dirs = []string{"."}
	}

	// Everything unset here is a candidate for the config file merge.
	args := config.Args{
		"--ignore":    append([]string(nil), ignoreFlag...),
		"--ext":       extFlag,
		"--onpass":    onPassFlag,
		"--onfail":    onFailFlag,
		"--beforerun": beforeRunFlag,
		"--afterrun":  afterRunFlag,
		"--onexit":    onExitFlag,
		"--runner":    runnerFlag,
		"--nobeep":    noBeepFlag,
		"--clear":     clearFlag,
		"--spool":     spoolFlag,
		"--verbose":   verboseFlag,
		"--quiet":     quietFlag,
		"--no-color":  noColorFlag,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	host := &pytest.ExecHost{}
	if !config.Merge(ctx, host, args, pytestArgs, !verboseFlag, verboseFlag) {
		return errMergeFailed
	}

	ignore, _ := args["--ignore"].([]string)
	ext, _ := args["--ext"].(string)
	onPass, _ := args["--onpass"].(string)
	onFail, _ := args["--onfail"].(string)
	beforeRun, _ := args["--beforerun"].(string)
	afterRun, _ := args["--afterrun"].(string)
	onExit, _ := args["--onexit"].(string)
	testRunner, _ := args["--runner"].(string)
	noBeep, _ := args["--nobeep"].(bool)
	clear, _ := args["--clear"].(bool)
	spool, _ := args["--spool"].(string)
	quiet, _ := args["--quiet"].(bool)
	noColor, _ := args["--no-color"].(bool)

	console := output.NewConsole(
		output.WithQuiet(quiet),
		output.WithNoColor(noColor),
	)

	var store *history.Store
	if historyFlag != "" {
		var err error
		store, err = history.Open(historyFlag)
		if err != nil {
			return err
		}
		defer store.Close()
	}

	session := stats.NewSession()
	r := runner.NewRunner(&runner.Config{
		Runner:    testRunner,
		Args:      pytestArgs,
		Clear:     clear,
		Beep:      !noBeep,
		BeforeRun: beforeRun,
		AfterRun:  afterRun,
		OnPass:    onPass,
		OnFail:    onFail,
		OnExit:    onExit,
	},
		runner.WithConsole(console),
		runner.WithStats(session),
		runner.WithHistory(store),
	)

	w, err := watcher.New(watcher.Config{
		Extensions: parseExtensions(ext),
		Ignore:     ignore,
		Debounce:   parseSpool(spool),
	})
	if err != nil {
		return err
	}
	defer w.Close()

	for _, dir := range dirs {
		if err := w.AddRecursive(dir); err != nil {
			return err
		}
	}
	go func() {
		_ = w.Run(ctx)
	}()

	if _, err := r.Run(ctx, ""); err != nil {
		console.Error(err)
	}
	console.Waiting()

	for {
		select {
		case <-ctx.Done():
			// Exit hook still runs after an interrupt.
			r.Exit(context.Background())
			if verboseFlag {
				printSummary(console, session)
			}
			return nil

		case trigger := <-w.Changes():
			if _, err := r.Run(ctx, trigger); err != nil {
				console.Error(err)
			}
			console.Waiting()
		}
	}
}

// parseExtensions splits a comma-separated extension list, normalizing
// entries to a leading dot. Empty input means the default (.py).
func parseExtensions(raw string) []string {
	if raw == "" {
		return nil
	}
	var exts []string
	for _, e := range strings.Split(raw, ",") {
		e = strings.TrimSpace(e)
		if e == "" {
			continue
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		exts = append(exts, e)
	}
	return exts
}

// parseSpool converts the spool delay (milliseconds) to a duration.
// Zero means the watcher's default debounce.
func parseSpool(raw string) time.Duration {
	if raw == "" {
		return 0
	}
	ms, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || ms < 0 {
		fmt.Fprintf(os.Stderr, "Warning: invalid --spool value %q, using default\n", raw)
		return 0
	}
	return time.Duration(ms) * time.Millisecond
}

func printSummary(console *output.Console, session *stats.Session) {
	s := session.Summary()
	console.Notice("Session: %d runs, %d failed, p50 %s, p95 %s, max %s, elapsed %s",
		s.Runs, s.Failures,
		s.P50.Round(time.Millisecond), s.P95.Round(time.Millisecond),
		s.Max.Round(time.Millisecond), s.Elapsed.Round(time.Second))
}
