package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/careerstack/internal/pipeline"
	"github.com/jonathan/careerstack/internal/types"
)

var saveCommand = &cobra.Command{
	Use:   "save [url|file]...",
	Short: "Scrape job pages and save them to Notion",
	Long: `Scrapes each job page and creates a page for it in the Notion job tracker database.
Jobs already in the database are skipped unless --force is given.

With --from-json, saves a job record you edited by hand instead of scraping. The file holds the
JSON printed by "scrape --json" for a single job, or a save request object.`,
	RunE: runSaveCmd,
}

var (
	savePageURL  string
	saveBrowser  bool
	saveAnalyze  bool
	saveForce    bool
	saveRefresh  bool
	saveFromJSON string
	saveJSON     bool
)

func init() {
	saveCommand.Flags().StringVar(&savePageURL, "page-url", "", "Address a saved HTML file was loaded from")
	saveCommand.Flags().BoolVar(&saveBrowser, "browser", false, "Render pages in headless Chrome (requires Chrome)")
	saveCommand.Flags().BoolVar(&saveAnalyze, "analyze", false, "Score each job against your resume before saving")
	saveCommand.Flags().BoolVar(&saveForce, "force", false, "Save even when the job is already in Notion")
	saveCommand.Flags().BoolVar(&saveRefresh, "refresh", false, "Ignore cached scrape results")
	saveCommand.Flags().StringVar(&saveFromJSON, "from-json", "", "Save the job record in this JSON file instead of scraping")
	saveCommand.Flags().BoolVar(&saveJSON, "json", false, "Print results as JSON")

	rootCmd.AddCommand(saveCommand)
}

func runSaveCmd(cmd *cobra.Command, args []string) error {
	if saveFromJSON != "" {
		if len(args) > 0 {
			return fmt.Errorf("--from-json and page arguments are mutually exclusive; provide only one")
		}
		return saveFromFile(cmd, saveFromJSON)
	}
	if len(args) == 0 {
		return fmt.Errorf("at least one url or file, or --from-json, must be provided")
	}

	steps := pipeline.Steps{Analyze: saveAnalyze, Save: true, Force: saveForce, Refresh: saveRefresh}
	ro := runOptions{browser: saveBrowser, progress: verbose && !saveJSON}
	return runSources(cmd, args, savePageURL, steps, ro, saveJSON)
}

// savedRecord accepts both a scrape result and a bare save request.
type savedRecord struct {
	Job      *types.JobData        `json:"job"`
	Analysis *types.AnalysisResult `json:"analysis"`
	types.SaveRequest
}

// loadSaveRequest reads a job record from path.
func loadSaveRequest(path string) (*types.SaveRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	var record savedRecord
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '[' {
		var records []savedRecord
		if err := json.Unmarshal(trimmed, &records); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
		if len(records) != 1 {
			return nil, fmt.Errorf("%s holds %d jobs; save one at a time", path, len(records))
		}
		record = records[0]
	} else if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if record.Job != nil {
		pipeline.Finalize(record.Job)
		return types.NewSaveRequest(record.Job, record.Analysis), nil
	}
	req := record.SaveRequest
	return &req, nil
}

func saveFromFile(cmd *cobra.Command, path string) error {
	ctx := context.Background()

	req, err := loadSaveRequest(path)
	if err != nil {
		return err
	}

	a, err := newApp(ctx, cmd)
	if err != nil {
		return err
	}
	defer a.close()

	runner, err := a.runner(ctx, cmd, pipeline.Steps{Save: true}, runOptions{progress: verbose})
	if err != nil {
		return err
	}

	outcome, err := runner.SaveRequest(ctx, req, saveForce)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if !outcome.Saved() {
		_, _ = fmt.Fprintf(out, "• Already saved: %s (use --force to save again)\n", outcome.Duplicate.ExistingURL)
		return nil
	}
	_, _ = fmt.Fprintf(out, "✓ Saved to Notion: %s\n", outcome.PageURL)
	return nil
}
