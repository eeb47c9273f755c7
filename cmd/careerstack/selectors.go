package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/careerstack/internal/selectors"
)

var selectorsCommand = &cobra.Command{
	Use:   "selectors",
	Short: "Inspect and manage the CSS selector tables the scrapers use",
	Long: `The scrapers ship with bundled selector tables. A remote document, fetched from the configured
sources and cached, can replace individual lists when job boards change their markup.`,
}

var selectorsShowCommand = &cobra.Command{
	Use:   "show",
	Short: "Print the effective selector document",
	Args:  cobra.NoArgs,
	RunE:  runSelectorsShowCmd,
}

var selectorsRefreshCommand = &cobra.Command{
	Use:   "refresh",
	Short: "Fetch the remote selector document now and update the cache",
	Args:  cobra.NoArgs,
	RunE:  runSelectorsRefreshCmd,
}

var selectorsValidateCommand = &cobra.Command{
	Use:   "validate <file>",
	Short: "Check a selector document before publishing it",
	Long: `Validates a selector document against the schema, compiles every selector and checks that each
field has at least one selector. Exits non-zero on any problem.`,
	Args: cobra.ExactArgs(1),
	RunE: runSelectorsValidateCmd,
}

var selectorsBundledOnly bool

func init() {
	selectorsShowCommand.Flags().BoolVar(&selectorsBundledOnly, "bundled", false, "Print the bundled document without remote overrides")

	selectorsCommand.AddCommand(selectorsShowCommand, selectorsRefreshCommand, selectorsValidateCommand)
	rootCmd.AddCommand(selectorsCommand)
}

func runSelectorsShowCmd(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	doc := selectors.Bundled()
	source := selectors.SourceBundled
	if !selectorsBundledOnly {
		a, err := newApp(ctx, cmd)
		if err != nil {
			return err
		}
		defer a.close()

		var override *selectors.Document
		override, source = a.selectorLoader().Get(ctx)
		doc = selectors.Merge(doc, override)
	}

	data, err := doc.JSON()
	if err != nil {
		return fmt.Errorf("failed to encode selectors: %w", err)
	}
	_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "source: %s, version: %s\n", source, doc.Version)
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}

func runSelectorsRefreshCmd(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	a, err := newApp(ctx, cmd)
	if err != nil {
		return err
	}
	defer a.close()

	doc, err := a.selectorLoader().Refresh(ctx)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "✓ Selector document %s fetched and cached\n", doc.Version)
	return nil
}

func runSelectorsValidateCmd(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", args[0], err)
	}
	doc, err := selectors.Validate(data)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "✓ %s is valid (version %s)\n", args[0], doc.Version)
	return nil
}
