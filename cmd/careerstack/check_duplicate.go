package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/careerstack/internal/pipeline"
)

var checkDuplicateCommand = &cobra.Command{
	Use:   "check-duplicate <url>",
	Short: "Check whether a job is already in the Notion database",
	Long: `Looks up a job URL in the Notion job tracker database. LinkedIn and Indeed URLs are reduced to
their canonical job address first, so search and collection links match saved jobs.`,
	Args: cobra.ExactArgs(1),
	RunE: runCheckDuplicateCmd,
}

func init() {
	rootCmd.AddCommand(checkDuplicateCommand)
}

func runCheckDuplicateCmd(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	a, err := newApp(ctx, cmd)
	if err != nil {
		return err
	}
	defer a.close()

	client, err := a.notionClient()
	if err != nil {
		return err
	}

	jobURL := pipeline.CanonicalJobURL(args[0])
	result := client.CheckDuplicate(ctx, jobURL)

	out := cmd.OutOrStdout()
	if result.IsDuplicate {
		_, _ = fmt.Fprintf(out, "Already saved: %s\n", result.ExistingURL)
		return nil
	}
	_, _ = fmt.Fprintf(out, "Not saved yet: %s\n", jobURL)
	return nil
}
