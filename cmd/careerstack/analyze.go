package main

import (
	"github.com/spf13/cobra"

	"github.com/jonathan/careerstack/internal/pipeline"
)

var analyzeCommand = &cobra.Command{
	Use:   "analyze <url|file>",
	Short: "Score a job page against your resume",
	Long: `Scrapes a job page and asks the configured AI provider how well it matches the resume at
resume_path. Prints a 0-100 score, a short summary and any contact email found in the posting.`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyzeCmd,
}

var (
	analyzePageURL string
	analyzeBrowser bool
	analyzeRefresh bool
	analyzeJSON    bool
)

func init() {
	analyzeCommand.Flags().StringVar(&analyzePageURL, "page-url", "", "Address a saved HTML file was loaded from")
	analyzeCommand.Flags().BoolVar(&analyzeBrowser, "browser", false, "Render the page in headless Chrome (requires Chrome)")
	analyzeCommand.Flags().BoolVar(&analyzeRefresh, "refresh", false, "Ignore cached scrape and analysis results")
	analyzeCommand.Flags().BoolVar(&analyzeJSON, "json", false, "Print the result as JSON")

	rootCmd.AddCommand(analyzeCommand)
}

func runAnalyzeCmd(cmd *cobra.Command, args []string) error {
	steps := pipeline.Steps{Analyze: true, Refresh: analyzeRefresh}
	ro := runOptions{browser: analyzeBrowser, progress: verbose && !analyzeJSON, requireAnalysis: true}
	return runSources(cmd, args, analyzePageURL, steps, ro, analyzeJSON)
}
