package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/careerstack/internal/llm"
	"github.com/jonathan/careerstack/internal/notion"
	"github.com/jonathan/careerstack/internal/pipeline"
	"github.com/jonathan/careerstack/internal/server"
	"github.com/jonathan/careerstack/internal/server/ratelimit"
	"github.com/jonathan/careerstack/internal/types"
)

var serveCommand = &cobra.Command{
	Use:   "serve",
	Short: "Run the companion HTTP API for the browser extension",
	Long: `Serves the scrape, analyze and save pipeline over HTTP so the browser extension can send the
job page the user is viewing. Requests carry a bearer token issued with "serve token"; set
server.token_secret in your config first, or pass --no-auth on a trusted machine.

Analysis and saving are enabled when the AI key and Notion settings are configured. The server
stops cleanly on Ctrl+C.`,
	Args: cobra.NoArgs,
	RunE: runServeCmd,
}

var serveTokenCommand = &cobra.Command{
	Use:   "token",
	Short: "Issue an API token for a client",
	Args:  cobra.NoArgs,
	RunE:  runServeTokenCmd,
}

var (
	serveAddr    string
	serveNoAuth  bool
	serveBrowser bool
	tokenClient  string
	tokenTTL     time.Duration
)

func init() {
	serveCommand.Flags().StringVar(&serveAddr, "addr", "", "Listen address (defaults to server.addr)")
	serveCommand.Flags().BoolVar(&serveNoAuth, "no-auth", false, "Serve without requiring API tokens")
	serveCommand.Flags().BoolVar(&serveBrowser, "browser", false, "Render fetched pages in headless Chrome (requires Chrome)")

	serveTokenCommand.Flags().StringVar(&tokenClient, "client", "extension", "Name of the client the token is issued to")
	serveTokenCommand.Flags().DurationVar(&tokenTTL, "ttl", 0, "Token lifetime (defaults to server.token_ttl)")

	serveCommand.AddCommand(serveTokenCommand)
	rootCmd.AddCommand(serveCommand)
}

func runServeCmd(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cmd)
	if err != nil {
		return err
	}
	defer a.close()

	settings := a.cfg.Server
	cfg := server.Config{
		Addr:           settings.Addr,
		AllowedOrigins: settings.AllowedOrigins,
		RateLimit:      ratelimit.DefaultConfig(settings.RateLimit),
		Selectors:      a.selectorLoader(),
		Logger:         a.log,
	}
	if serveAddr != "" {
		cfg.Addr = serveAddr
	}

	if serveNoAuth {
		a.log.Warn("serving without authentication", zap.String("addr", cfg.Addr))
	} else {
		tokens, err := server.NewTokenService(settings.TokenSecret, settings.TokenTTL.Std())
		if err != nil {
			return fmt.Errorf("%w, or pass --no-auth", err)
		}
		cfg.Tokens = tokens
	}

	cfg.Pipeline, err = a.serverOptions(ctx, cmd)
	if err != nil {
		return err
	}

	database, err := a.history(ctx)
	if err != nil {
		return err
	}
	if database != nil {
		cfg.History = database
	}

	srv, err := server.New(cfg)
	if err != nil {
		return err
	}
	return srv.Start(ctx)
}

// serverOptions wires every collaborator that is configured. A missing AI key or Notion setting
// only disables the endpoints that need it.
func (a *app) serverOptions(ctx context.Context, cmd *cobra.Command) (pipeline.Options, error) {
	opts := a.baseOptions(cmd, runOptions{browser: serveBrowser})

	analyzer, err := a.analyzer(ctx)
	switch {
	case errors.Is(err, llm.ErrMissingAPIKey):
		a.log.Info("analysis disabled", zap.Error(err))
	case err != nil:
		return opts, err
	default:
		opts.Analyzer = analyzer
		resume, err := a.resume()
		if err != nil {
			a.log.Info("analysis disabled", zap.Error(err))
		}
		opts.Resume = resume
	}

	client, err := a.notionClient()
	switch {
	case errors.Is(err, notion.ErrMissingSettings):
		a.log.Info("saving disabled", zap.Error(err))
	case err != nil:
		return opts, err
	default:
		opts.Saver = client
	}
	return opts, nil
}

func runServeTokenCmd(cmd *cobra.Command, _ []string) error {
	req := types.TokenRequest{Client: tokenClient}
	if err := req.Validate(); err != nil {
		return fmt.Errorf("invalid --client: %w", err)
	}

	a, err := newApp(context.Background(), cmd)
	if err != nil {
		return err
	}
	defer a.close()

	ttl := a.cfg.Server.TokenTTL.Std()
	if tokenTTL > 0 {
		ttl = tokenTTL
	}
	tokens, err := server.NewTokenService(a.cfg.Server.TokenSecret, ttl)
	if err != nil {
		return err
	}
	token, err := tokens.GenerateToken(req.Client)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), token)
	return nil
}
