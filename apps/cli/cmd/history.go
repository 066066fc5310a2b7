package cmd

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/pytest-watch/ptw/packages/history"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recorded test runs",
	Long: `Show test runs recorded by watch sessions started with --history.

Examples:
  ptw history --db .ptw-history.db
  ptw history --limit 50 --format json
  ptw history --filter args.0=-x`,
	RunE: historyCommand,
}

var (
	historyDBFlag     string
	historyLimitFlag  int
	historyFilterFlag string
	historyFormatFlag string
)

func init() {
	historyCmd.Flags().StringVar(&historyDBFlag, "db", defaultHistoryDB, "Path to the history database")
	historyCmd.Flags().IntVar(&historyLimitFlag, "limit", 20, "Maximum number of runs to show")
	historyCmd.Flags().StringVar(&historyFilterFlag, "filter", "", "Only show runs whose metadata matches path=value")
	historyCmd.Flags().StringVar(&historyFormatFlag, "format", "table", "Output format: table, json, yaml")
}

func historyCommand(cmd *cobra.Command, args []string) error {
	store, err := history.Open(historyDBFlag)
	if err != nil {
		return err
	}
	defer store.Close()

	runs, err := store.Recent(cmd.Context(), historyLimitFlag)
	if err != nil {
		return err
	}

	if historyFilterFlag != "" {
		path, want, found := strings.Cut(historyFilterFlag, "=")
		if !found {
			return fmt.Errorf("invalid --filter %q (expected path=value)", historyFilterFlag)
		}
		var filtered []history.Run
		for _, r := range runs {
			if history.MatchMeta(r, path, want) {
				filtered = append(filtered, r)
			}
		}
		runs = filtered
	}

	switch strings.ToLower(historyFormatFlag) {
	case "json":
		data, err := json.MarshalIndent(runs, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))

	case "yaml":
		data, err := yaml.Marshal(runs)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), string(data))

	case "table":
		if len(runs) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded.")
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%-20s  %-8s  %-10s  %s\n", "STARTED", "EXIT", "DURATION", "TRIGGER")
		for _, r := range runs {
			trigger := r.Trigger
			if trigger == "" {
				trigger = "(initial run)"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%-20s  %-8d  %-10s  %s\n",
				r.StartedAt.Local().Format("2006-01-02 15:04:05"),
				r.ExitCode,
				r.Duration.Round(time.Millisecond),
				trigger)
		}

	default:
		return fmt.Errorf("unknown --format %q (expected table, json or yaml)", historyFormatFlag)
	}

	return nil
}
