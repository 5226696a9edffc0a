// Command portfoliorag builds the portfolio's embedded corpus and serves
// retrieval over it.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"portfoliorag/internal/config"
	"portfoliorag/internal/httpapi"
	"portfoliorag/internal/logging"
	"portfoliorag/internal/tui"
)

var (
	cfgPath string
	topK    int
	addr    string
	dryRun  bool
	version = "dev"
)

func main() {
	_ = godotenv.Load()
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "portfoliorag",
	Short: "Context engine for the portfolio assistant",
	Long: `portfoliorag turns the portfolio site's content into an embedded corpus
and answers visitor questions with the most relevant chunks.`,
	Version:      version,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "path to YAML config (defaults to ./portfoliorag.yaml or ~/.config/portfoliorag/config.yaml)")

	buildCmd.Flags().BoolVar(&dryRun, "dry-run", false, "extract and embed without writing the corpus")
	queryCmd.Flags().IntVar(&topK, "top-k", 0, "number of chunks to return (0 uses the configured default)")
	exploreCmd.Flags().IntVar(&topK, "top-k", 0, "number of chunks per query (0 uses the configured default)")
	serveCmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.addr)")

	rootCmd.AddCommand(buildCmd, queryCmd, exploreCmd, serveCmd)
}

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Extract site content, embed it and persist the corpus",
	Long: `Extract every configured content source, embed each chunk with the
configured provider and write the corpus.

Examples:
  # Rebuild the corpus after editing site content
  portfoliorag build

  # Use a specific config
  portfoliorag build --config ./portfoliorag.yaml

  # Check sources and provider without touching the stored corpus
  portfoliorag build --dry-run`,
	Args: cobra.NoArgs,
	RunE: runBuild,
}

var queryCmd = &cobra.Command{
	Use:   "query <text>",
	Short: "Print the context block for a question",
	Long: `Embed a question, rank the corpus and print the formatted context.

Examples:
  portfoliorag query "where do you work now?"
  portfoliorag query --top-k 5 "what projects use Go?"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runQuery,
}

var exploreCmd = &cobra.Command{
	Use:   "explore",
	Short: "Browse retrieval results interactively",
	Args:  cobra.NoArgs,
	RunE:  runExplore,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve context retrieval over HTTP",
	Long: `Serve POST /api/v1/context, GET /health and GET /metrics.

Examples:
  portfoliorag serve
  portfoliorag serve --addr :9000`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func loadConfig() (*config.AppConfig, error) {
	if cfgPath != "" {
		return config.Load(cfgPath)
	}
	cfg, _, err := config.LoadDefault()
	return cfg, err
}

func setup(ctx context.Context) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	return newApp(ctx, cfg, logger)
}

func runBuild(cmd *cobra.Command, _ []string) error {
	a, err := setup(cmd.Context())
	if err != nil {
		return err
	}
	defer a.close()

	report, err := a.builder(dryRun).Build(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d chunks to %s\n", report.Chunks, report.Location)
	return nil
}

func runQuery(cmd *cobra.Command, args []string) error {
	a, err := setup(cmd.Context())
	if err != nil {
		return err
	}
	defer a.close()

	svc, err := a.service()
	if err != nil {
		return err
	}
	res, err := svc.Query(cmd.Context(), strings.Join(args, " "), topK)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	for i, r := range res.Results {
		fmt.Fprintf(out, "%d. %s  %.3f\n", i+1, r.Slug, r.Score)
	}
	fmt.Fprintf(out, "\n%s\n", res.Context)
	return nil
}

func runExplore(cmd *cobra.Command, _ []string) error {
	a, err := setup(cmd.Context())
	if err != nil {
		return err
	}
	defer a.close()

	svc, err := a.service()
	if err != nil {
		return err
	}
	if err := svc.Warm(cmd.Context()); err != nil {
		return fmt.Errorf("loading corpus: %w", err)
	}
	summary := fmt.Sprintf("embedder=%s  corpus=%s", a.cfg.Embedder.Type, a.cfg.Corpus.Type)
	k := topK
	if k <= 0 {
		k = a.cfg.Retrieval.TopK
	}
	_, err = tea.NewProgram(tui.New(svc, k, summary), tea.WithAltScreen()).Run()
	return err
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := setup(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	svc, err := a.service()
	if err != nil {
		return err
	}
	if err := svc.Warm(ctx); err != nil {
		a.logger.Warn("corpus not loaded at startup, retrying on first request", zap.Error(err))
	}

	listen := a.cfg.Server.Addr
	if addr != "" {
		listen = addr
	}
	srv, err := httpapi.NewServer(svc, a.registry, a.logger, listen)
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
