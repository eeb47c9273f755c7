// Package main provides the entry point for the careerstack CLI.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "careerstack",
	Short: "Scrape job postings, score them against your resume and save them to Notion",
	Long: `careerstack reads LinkedIn and Indeed job pages, extracts the posting into structured fields and
rich text, optionally scores it against your master resume with Gemini or OpenAI, and saves it as a
page in your Notion job tracker database.

Settings come from a JSON or YAML file (--config), then CAREERSTACK_* environment variables.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var (
	configPath string
	verbose    bool
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (.json, .yaml or .yml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Print debug logs")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
