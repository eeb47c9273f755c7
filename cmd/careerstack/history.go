package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jonathan/careerstack/internal/db"
)

var historyCommand = &cobra.Command{
	Use:   "history",
	Short: "List jobs saved to Notion",
	Long: `Lists the save history kept in PostgreSQL (database_url). Every job saved through careerstack is
recorded with its score and the Notion page it created.`,
	Args: cobra.NoArgs,
	RunE: runHistoryCmd,
}

var historyRunsCommand = &cobra.Command{
	Use:   "runs",
	Short: "List recorded scrape runs",
	Args:  cobra.NoArgs,
	RunE:  runHistoryRunsCmd,
}

var historyDeleteCommand = &cobra.Command{
	Use:   "delete <id>",
	Short: "Remove a job from the save history (the Notion page is kept)",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryDeleteCmd,
}

var (
	historyCompany  string
	historyPlatform string
	historyMinScore int
	historyRun      string
	historyLimit    int
	historyJSON     bool
)

func init() {
	historyCommand.Flags().StringVar(&historyCompany, "company", "", "Only jobs at companies matching this text")
	historyCommand.Flags().StringVar(&historyPlatform, "platform", "", "Only jobs from this platform (LinkedIn, Indeed)")
	historyCommand.Flags().IntVar(&historyMinScore, "min-score", 0, "Only jobs scored at least this high")
	historyCommand.Flags().StringVar(&historyRun, "run", "", "Only jobs saved by this run id")
	historyCommand.Flags().IntVar(&historyLimit, "limit", db.DefaultListLimit, "Maximum rows to show")
	historyCommand.Flags().BoolVar(&historyJSON, "json", false, "Print as JSON")
	historyRunsCommand.Flags().IntVar(&historyLimit, "limit", db.DefaultListLimit, "Maximum rows to show")

	historyCommand.AddCommand(historyRunsCommand, historyDeleteCommand)
	rootCmd.AddCommand(historyCommand)
}

// openHistory returns the app and its history database, failing when none is configured.
func openHistory(ctx context.Context, cmd *cobra.Command) (*app, *db.DB, error) {
	a, err := newApp(ctx, cmd)
	if err != nil {
		return nil, nil, err
	}
	database, err := a.history(ctx)
	if err != nil {
		a.close()
		return nil, nil, err
	}
	if database == nil {
		a.close()
		return nil, nil, fmt.Errorf("save history is not configured: set database_url in your config")
	}
	return a, database, nil
}

func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	filters := db.SavedJobFilters{
		Company:  historyCompany,
		Platform: historyPlatform,
		MinScore: historyMinScore,
		Limit:    historyLimit,
	}
	if historyRun != "" {
		runID, err := uuid.Parse(historyRun)
		if err != nil {
			return fmt.Errorf("invalid run id: %w", err)
		}
		filters.RunID = runID
	}

	a, database, err := openHistory(ctx, cmd)
	if err != nil {
		return err
	}
	defer a.close()

	jobs, err := database.ListSavedJobs(ctx, filters)
	if err != nil {
		return err
	}

	if historyJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(jobs)
	}
	a.printer.PrintSavedJobs(jobs)
	return nil
}

func runHistoryRunsCmd(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	a, database, err := openHistory(ctx, cmd)
	if err != nil {
		return err
	}
	defer a.close()

	runs, err := database.ListRuns(ctx, historyLimit)
	if err != nil {
		return err
	}
	a.printer.PrintRuns(runs)
	return nil
}

func runHistoryDeleteCmd(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	id, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("invalid id: %w", err)
	}

	a, database, err := openHistory(ctx, cmd)
	if err != nil {
		return err
	}
	defer a.close()

	if err := database.DeleteSavedJob(ctx, id); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "✓ Removed %s from history\n", id)
	return nil
}
