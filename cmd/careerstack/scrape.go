package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/jonathan/careerstack/internal/pipeline"
)

var scrapeCommand = &cobra.Command{
	Use:   "scrape [url|file]...",
	Short: "Scrape one or more job pages",
	Long: `Scrapes LinkedIn or Indeed job pages into structured fields and rich-text description blocks.

Arguments are page URLs or saved HTML files. For files, --page-url gives the address the page was
saved from so the right scraper is picked. Several sources are scraped concurrently.

Add --analyze to score each job against your resume and --save to write it to Notion.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runScrapeCmd,
}

var (
	scrapePageURL     string
	scrapeBrowser     bool
	scrapeNoFallback  bool
	scrapeAnalyze     bool
	scrapeSave        bool
	scrapeForce       bool
	scrapeRefresh     bool
	scrapeJSON        bool
	scrapeConcurrency int
)

func init() {
	scrapeCommand.Flags().StringVar(&scrapePageURL, "page-url", "", "Address a saved HTML file was loaded from")
	scrapeCommand.Flags().BoolVar(&scrapeBrowser, "browser", false, "Render every page in headless Chrome (requires Chrome)")
	scrapeCommand.Flags().BoolVar(&scrapeNoFallback, "no-browser-fallback", false, "Do not re-render pages whose description looks truncated")
	scrapeCommand.Flags().BoolVar(&scrapeAnalyze, "analyze", false, "Score each job against your resume")
	scrapeCommand.Flags().BoolVar(&scrapeSave, "save", false, "Save each job to Notion")
	scrapeCommand.Flags().BoolVar(&scrapeForce, "force", false, "Save even when the job is already in Notion")
	scrapeCommand.Flags().BoolVar(&scrapeRefresh, "refresh", false, "Ignore cached scrape results")
	scrapeCommand.Flags().BoolVar(&scrapeJSON, "json", false, "Print results as JSON")
	scrapeCommand.Flags().IntVar(&scrapeConcurrency, "concurrency", 0, "Sources scraped at once (defaults to the config value)")

	rootCmd.AddCommand(scrapeCommand)
}

func runScrapeCmd(cmd *cobra.Command, args []string) error {
	steps := pipeline.Steps{
		Analyze: scrapeAnalyze,
		Save:    scrapeSave,
		Force:   scrapeForce,
		Refresh: scrapeRefresh,
	}
	ro := runOptions{
		browser:     scrapeBrowser,
		noFallback:  scrapeNoFallback,
		concurrency: scrapeConcurrency,
		progress:    verbose && !scrapeJSON,
	}
	return runSources(cmd, args, scrapePageURL, steps, ro, scrapeJSON)
}

// runSources runs the pipeline over args and prints the results. It fails when any source failed.
func runSources(cmd *cobra.Command, args []string, pageURL string, steps pipeline.Steps, ro runOptions, asJSON bool) error {
	ctx := context.Background()

	a, err := newApp(ctx, cmd)
	if err != nil {
		return err
	}
	defer a.close()

	runner, err := a.runner(ctx, cmd, steps, ro)
	if err != nil {
		return err
	}

	sources := make([]pipeline.Source, len(args))
	for i, arg := range args {
		sources[i] = pipeline.ParseSource(arg, pageURL)
	}

	results, err := runner.Run(ctx, sources, steps)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if asJSON {
		if err := writeResultsJSON(out, results); err != nil {
			return err
		}
	} else {
		for i := range results {
			printResult(a, out, &results[i])
		}
	}

	var failures []error
	for _, res := range results {
		switch {
		case res.Err != nil:
			failures = append(failures, res.Err)
		case ro.requireAnalysis && res.AnalysisErr != nil:
			failures = append(failures, res.AnalysisErr)
		}
	}
	switch {
	case len(failures) == 0:
		return nil
	case len(results) == 1:
		return failures[0]
	default:
		return fmt.Errorf("%d of %d sources failed", len(failures), len(results))
	}
}

//nolint:errcheck // writing to stdout; errors are not recoverable
func printResult(a *app, out io.Writer, res *pipeline.Result) {
	if res.Err != nil && res.Job == nil {
		fmt.Fprintf(out, "✗ %s: %v\n", res.Source, res.Err)
		return
	}

	a.printer.PrintJob(res.Job)
	if res.FromCache {
		fmt.Fprintln(out, "(restored from cache, use --refresh to scrape again)")
	}
	if res.Analysis != nil {
		a.printer.PrintAnalysis(res.Analysis)
	}
	if res.AnalysisErr != nil {
		fmt.Fprintf(out, "⚠ Analysis failed: %v\n", res.AnalysisErr)
	}

	switch {
	case res.Err != nil:
		fmt.Fprintf(out, "✗ %v\n", res.Err)
	case res.Saved():
		fmt.Fprintf(out, "✓ Saved to Notion: %s\n", res.PageURL)
	case res.Duplicate.IsDuplicate:
		fmt.Fprintf(out, "• Already saved: %s (use --force to save again)\n", res.Duplicate.ExistingURL)
	}
}

func writeResultsJSON(out io.Writer, results []pipeline.Result) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(pipeline.NewReports(results)); err != nil {
		return fmt.Errorf("failed to encode results: %w", err)
	}
	return nil
}
