// TickerLens — waterfall symbol resolution and market analysis sessions
//
// Main CLI entrypoint using cobra command framework.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/seenimoa/tickerlens/api"
	"github.com/seenimoa/tickerlens/internal/analysis"
	"github.com/seenimoa/tickerlens/internal/config"
	"github.com/seenimoa/tickerlens/internal/fetch"
	"github.com/seenimoa/tickerlens/internal/logger"
	"github.com/seenimoa/tickerlens/internal/news"
	"github.com/seenimoa/tickerlens/internal/provider"
	"github.com/seenimoa/tickerlens/internal/providers"
	"github.com/seenimoa/tickerlens/internal/resolve"
	"github.com/seenimoa/tickerlens/internal/sentiment"
	"github.com/seenimoa/tickerlens/internal/session"
	"github.com/seenimoa/tickerlens/pkg/models"
)

// Build-time variables (set via -ldflags).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Global config
var cfg *config.Config

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "tickerlens",
	Short: "TickerLens — resolve tickers, fetch fundamentals, read the news mood",
	Long: `TickerLens resolves free-form stock queries into canonical ticker
symbols, fetches quotes, fundamentals, and news through a chain of data
providers with automatic fallback, and classifies news sentiment. Every
analysis run persists into a durable local session.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		configFile, _ := cmd.Flags().GetString("config")
		if configFile != "" {
			cfg, err = config.LoadFromFile(configFile)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if level, _ := cmd.Flags().GetString("log-level"); level != "" {
			cfg.Logging.Level = level
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./config/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level override (debug, info, warn, error)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(newsCmd)
	rootCmd.AddCommand(sessionsCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(statusCmd)
}

// --- Shared stack wiring ---

// stack bundles the fully wired pipeline for CLI commands.
type stack struct {
	aggregator *news.Aggregator
	engine     *analysis.Engine
	store      *session.Store
}

func (s *stack) close() {
	_ = s.store.Close()
}

// buildStack wires the registry, coordinator, and analysis engine from the
// loaded config. The caller must close() it to release the session store.
func buildStack() (*stack, error) {
	log := logger.New("cli", cfg.Logging.Level, cfg.Logging.Format)

	reg := provider.NewRegistry()
	if err := providers.RegisterTo(reg, providers.Credentials{
		FMPKey:          cfg.Providers.FMPKey,
		AlphaVantageKey: cfg.Providers.AlphaVantageKey,
	}); err != nil {
		return nil, fmt.Errorf("provider setup failed: %w", err)
	}
	for key, chain := range cfg.Providers.Priority {
		matched := false
		for _, cap := range provider.AllCapabilities() {
			if strings.EqualFold(string(cap), key) {
				if err := reg.SetPriority(cap, chain); err != nil {
					return nil, fmt.Errorf("provider priority config: %w", err)
				}
				matched = true
				break
			}
		}
		if !matched {
			return nil, fmt.Errorf("provider priority config: unknown capability %q", key)
		}
	}

	store, err := session.Open(cfg.Session.DBPath, log)
	if err != nil {
		return nil, fmt.Errorf("session store open failed: %w", err)
	}

	coord := fetch.NewCoordinator(reg, log, time.Duration(cfg.Fetch.AttemptTimeoutSec)*time.Second)
	agg := news.NewAggregator(reg, coord, log, cfg.News.MaxArticles)
	engine := analysis.NewEngine(
		store,
		resolve.NewResolver(coord, log, cfg.Resolver.SimilarityThreshold),
		coord,
		agg,
		sentiment.NewClassifier(0),
		log,
		cfg.News.MaxArticles,
	)

	return &stack{
		aggregator: agg,
		engine:     engine,
		store:      store,
	}, nil
}

// --- Version Command ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("TickerLens %s\n", version)
		fmt.Printf("  commit:  %s\n", commit)
		fmt.Printf("  built:   %s\n", date)
	},
}

// --- Resolve Command ---

var resolveCmd = &cobra.Command{
	Use:   "resolve [query]",
	Short: "Resolve a free-form query to a ticker symbol",
	Long: `Resolve a free-form query to a canonical ticker symbol.

Examples:
  tickerlens resolve NVDA
  tickerlens resolve "tesla motors"
  tickerlens resolve "the S&P 500 index"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := buildStack()
		if err != nil {
			return err
		}
		defer st.close()

		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()

		resolution, err := st.engine.Resolve(ctx, args[0])
		if err != nil {
			return err
		}

		sym := resolution.Symbol
		fmt.Printf("🔎 %s → %s", args[0], sym.Ticker)
		if sym.Name != "" {
			fmt.Printf(" (%s)", sym.Name)
		}
		fmt.Printf(" [%s]\n", sym.AssetClass)
		for _, step := range resolution.TrailStrings() {
			fmt.Printf("   · %s\n", step)
		}
		return nil
	},
}

// --- Analyze Command ---

var analyzeCmd = &cobra.Command{
	Use:   "analyze [query]",
	Short: "Run the full analysis pipeline on a stock",
	Long: `Resolve the query, fetch every financial dataset through the provider
waterfall, aggregate news, classify sentiment, and persist the run into a
durable session. Re-running with --session refreshes the stored data.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sessionID, _ := cmd.Flags().GetString("session")
		query := ""
		if len(args) > 0 {
			query = args[0]
		}
		if query == "" && sessionID == "" {
			return fmt.Errorf("provide a query or --session")
		}

		st, err := buildStack()
		if err != nil {
			return err
		}
		defer st.close()

		ctx, cancel := context.WithTimeout(cmd.Context(), 3*time.Minute)
		defer cancel()

		report, err := st.engine.Analyze(ctx, sessionID, query)
		if err != nil {
			return err
		}

		printReport(report)
		return nil
	},
}

func init() {
	analyzeCmd.Flags().String("session", "", "existing session ID to refresh")
}

func printReport(report *analysis.Report) {
	fmt.Printf("📊 %s", report.Symbol.Ticker)
	if report.Symbol.Name != "" {
		fmt.Printf(" — %s", report.Symbol.Name)
	}
	fmt.Println()
	fmt.Printf("   session: %s\n", report.SessionID)
	if len(report.Trail) > 0 {
		fmt.Printf("   resolved via: %s\n", report.Trail[len(report.Trail)-1])
	}
	fmt.Println()

	fmt.Println("   Datasets:")
	for _, kind := range []models.DatasetKind{
		models.DatasetQuote, models.DatasetProfile, models.DatasetIncome,
		models.DatasetBalance, models.DatasetCashFlow, models.DatasetMetrics,
		models.DatasetRatios, models.DatasetPrices,
	} {
		ds, ok := report.Datasets[kind]
		if !ok {
			continue
		}
		if ds.OK() {
			fmt.Printf("     ✅ %-10s (%s)\n", kind, ds.Source)
		} else {
			fmt.Printf("     ❌ %-10s %s\n", kind, ds.Err.Reason)
		}
	}
	fmt.Println()

	fmt.Printf("   News: %d articles\n", len(report.Articles))
	if v := report.Sentiment; v != nil {
		fmt.Printf("   Sentiment: %s (%.0f%% positive of %d decided, %d neutral)\n",
			v.Label, v.PositiveShare*100, v.Scored, v.Neutral)
		for _, ex := range v.Excerpts {
			fmt.Printf("     · %q — %s\n", ex.Keyword, ex.Title)
		}
	}
	if report.Partial {
		fmt.Println("\n⚠️  Partial run: some datasets could not be fetched.")
	}
}

// --- News Command ---

var newsCmd = &cobra.Command{
	Use:   "news [ticker]",
	Short: "Aggregate recent news headlines for a ticker",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		max, _ := cmd.Flags().GetInt("max")

		st, err := buildStack()
		if err != nil {
			return err
		}
		defer st.close()

		ctx, cancel := context.WithTimeout(cmd.Context(), 60*time.Second)
		defer cancel()

		ticker := strings.ToUpper(args[0])
		articles, err := st.aggregator.Aggregate(ctx, ticker, max)
		if err != nil {
			return err
		}

		fmt.Printf("📰 %s — %d articles\n", ticker, len(articles))
		for _, a := range articles {
			fmt.Printf("   %s  %s (%s)\n", a.PublishedAt.Format("2006-01-02"), a.Title, a.Source)
		}
		return nil
	},
}

func init() {
	newsCmd.Flags().Int("max", 0, "max articles (default from config)")
}

// --- Sessions Command ---

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List stored analysis sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		st, err := buildStack()
		if err != nil {
			return err
		}
		defer st.close()

		ctx, cancel := context.WithTimeout(cmd.Context(), 15*time.Second)
		defer cancel()

		records, err := st.store.List(ctx, limit)
		if err != nil {
			return err
		}
		if len(records) == 0 {
			fmt.Println("No sessions stored yet.")
			return nil
		}

		for _, rec := range records {
			ticker := "(unresolved)"
			if rec.Symbol != nil {
				ticker = rec.Symbol.Ticker
			}
			fmt.Printf("  %s  %-8s %q  updated %s\n",
				rec.ID, ticker, rec.Query, rec.UpdatedAt.Format(time.RFC3339))
		}
		return nil
	},
}

func init() {
	sessionsCmd.Flags().Int("limit", 20, "max sessions to list")
}

// --- Serve Command (API Server) ---

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		srv, err := api.NewServer(cfg)
		if err != nil {
			return err
		}

		addr := fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port)
		fmt.Printf("🌐 TickerLens API listening on %s\n", addr)
		return srv.ListenAndServe(addr)
	},
}

// --- Status Command ---

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show system status and configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("═══════════════════════════════════════")
		fmt.Println("  TickerLens — System Status")
		fmt.Println("═══════════════════════════════════════")
		fmt.Printf("  Version:       %s (%s)\n", version, commit)
		fmt.Println()

		// Config summary
		fmt.Println("  Configuration:")
		fmt.Printf("    Similarity:    %.2f\n", cfg.Resolver.SimilarityThreshold)
		fmt.Printf("    Max Articles:  %d\n", cfg.News.MaxArticles)
		fmt.Printf("    Attempt T/O:   %ds\n", cfg.Fetch.AttemptTimeoutSec)
		fmt.Printf("    Session DB:    %s\n", cfg.Session.DBPath)
		fmt.Printf("    API Server:    %s:%d\n", cfg.API.Host, cfg.API.Port)
		fmt.Println()

		// API keys status
		fmt.Println("  API Keys:")
		keys := config.CheckAPIKeys(cfg)
		for _, k := range keys {
			status := "❌ not set"
			if k.IsSet {
				status = fmt.Sprintf("✅ set (%s: %s)", k.Source, k.Masked)
			}
			fmt.Printf("    %-25s %s\n", k.Name+":", status)
		}
		fmt.Println()

		// Provider coverage
		reg := provider.NewRegistry()
		if err := providers.RegisterTo(reg, providers.Credentials{
			FMPKey:          cfg.Providers.FMPKey,
			AlphaVantageKey: cfg.Providers.AlphaVantageKey,
		}); err != nil {
			return err
		}
		fmt.Println("  Providers:")
		for _, info := range reg.List() {
			caps := make([]string, 0, len(info.Capabilities))
			for _, c := range info.Capabilities {
				caps = append(caps, string(c))
			}
			fmt.Printf("    %-14s %s\n", info.Name, strings.Join(caps, ", "))
		}

		fmt.Println("═══════════════════════════════════════")
		return nil
	},
}
