// edgarintel — SEC EDGAR investor intelligence scraper
//
// Main CLI entrypoint using cobra command framework.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/seenimoa/edgarintel/internal/classify"
	"github.com/seenimoa/edgarintel/internal/config"
	"github.com/seenimoa/edgarintel/internal/edgar"
	"github.com/seenimoa/edgarintel/internal/export"
	"github.com/seenimoa/edgarintel/internal/infra"
	"github.com/seenimoa/edgarintel/internal/logger"
	"github.com/seenimoa/edgarintel/internal/pipeline"
	"github.com/seenimoa/edgarintel/internal/report"
	"github.com/seenimoa/edgarintel/internal/store"
	"github.com/seenimoa/edgarintel/internal/telemetry"
	"github.com/seenimoa/edgarintel/pkg/models"
	"github.com/seenimoa/edgarintel/pkg/utils"
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
	Use:   "edgarintel",
	Short: "edgarintel — SEC EDGAR investor intelligence scraper",
	Long: `edgarintel scrapes SEC EDGAR for investment advisers and institutional
investors (Form ADV registrants and recent 13F-HR filers), enriches each
entity with submissions metadata, classifies it into an investor category,
and exports the results to CSV.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// .env is optional; real environment variables win over it.
		_ = godotenv.Load()

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
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./config/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level override (debug, info, warn, error)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(scrapeCmd)
	rootCmd.AddCommand(classifyCmd)
	rootCmd.AddCommand(statusCmd)
}

// buildLogger constructs the run logger from config plus the --log-level
// override.
func buildLogger(cmd *cobra.Command) (*zap.Logger, error) {
	level, _ := cmd.Flags().GetString("log-level")
	if level == "" {
		level = cfg.Logging.Level
	}
	return logger.NewLogger(cfg.Logging.Env, level)
}

// runContext returns a context cancelled by SIGINT/SIGTERM. Cancellation
// stops scheduling new fetches; in-flight requests finish or time out.
func runContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// --- Version Command ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("edgarintel %s\n", version)
		fmt.Printf("  commit:  %s\n", commit)
		fmt.Printf("  built:   %s\n", date)
	},
}

// --- Scrape Command ---

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Run the full EDGAR scrape pipeline",
	Long: `Discover investment advisers in the company registry and institutional
investors in the recent 13F-HR feed, enrich each with EDGAR submissions
metadata, classify, and export to CSV.

One bad filing never aborts the run: malformed documents are skipped and
fetches that exhaust their retries are reported at the end. The command
exits non-zero when the export fails or any fetch error survived retries.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		out, _ := cmd.Flags().GetString("out")
		jsonPath, _ := cmd.Flags().GetString("json")
		reportPath, _ := cmd.Flags().GetString("report")
		concurrency, _ := cmd.Flags().GetInt("concurrency")
		skipRegistry, _ := cmd.Flags().GetBool("skip-registry")
		skipFeed, _ := cmd.Flags().GetBool("skip-13f")
		noStore, _ := cmd.Flags().GetBool("no-store")
		traceFlag, _ := cmd.Flags().GetBool("trace")

		if out == "" {
			out = cfg.Output.CSVPath
		}
		if concurrency <= 0 {
			concurrency = cfg.Scraper.Concurrency
		}

		log, err := buildLogger(cmd)
		if err != nil {
			return err
		}
		defer log.Sync() //nolint:errcheck

		ctx, stop := runContext()
		defer stop()

		if traceFlag || cfg.Telemetry.Enabled {
			shutdown, err := telemetry.Setup(os.Stderr, "edgarintel")
			if err != nil {
				return fmt.Errorf("telemetry setup: %w", err)
			}
			defer shutdown(context.Background()) //nolint:errcheck
		}

		infra.HTTPClient.Timeout = cfg.Scraper.Timeout()

		client := edgar.New(edgar.Options{
			BaseURL:    cfg.Edgar.BaseURL,
			DataURL:    cfg.Edgar.DataURL,
			UserAgent:  cfg.Scraper.UserAgent,
			RatePerSec: cfg.Scraper.RateLimit,
			Burst:      cfg.Scraper.Burst,
			CacheTTL:   cfg.Scraper.CacheTTL(),
			Retry: infra.RetryConfig{
				MaxAttempts:    cfg.Scraper.MaxRetries,
				InitialBackoff: cfg.Scraper.RetryBackoff(),
				MaxBackoff:     8 * cfg.Scraper.RetryBackoff(),
			},
		})

		opts := pipeline.Options{
			RegistryLimit: cfg.Scraper.RegistryLimit,
			FeedLimit:     cfg.Scraper.FeedLimit,
			Concurrency:   concurrency,
			SkipRegistry:  skipRegistry,
			SkipFeed:      skipFeed,
		}
		if limit > 0 {
			opts.RegistryLimit = limit
			opts.FeedLimit = limit
		}

		runID := uuid.NewString()
		log = log.With(zap.String("run_id", runID))
		log.Info("starting scrape",
			zap.Int("registry_limit", opts.RegistryLimit),
			zap.Int("feed_limit", opts.FeedLimit),
			zap.Int("concurrency", concurrency),
		)

		res, runErr := pipeline.New(client, log, opts).Run(ctx)

		// Export whatever succeeded, even on a partial run. An export
		// failure is fatal regardless of how the fetch phases went.
		if err := export.WriteCSV(res.Investors, out); err != nil {
			return err
		}
		if jsonPath != "" {
			if err := export.WriteJSON(res.Investors, jsonPath); err != nil {
				return err
			}
		}
		if reportPath != "" {
			data := report.Build(runID, res.Started, res.Finished, res.Stats, res.Investors)
			if err := report.WriteFile(reportPath, data); err != nil {
				return err
			}
		}

		if cfg.Store.Enabled && !noStore {
			// Persist with a fresh context so a Ctrl-C that ended the run
			// does not also lose its results.
			if err := persistRun(context.Background(), runID, res); err != nil {
				return err
			}
		}

		printSummary(res, out, jsonPath, reportPath)

		if runErr != nil {
			return fmt.Errorf("scrape completed with errors: %w", runErr)
		}
		return nil
	},
}

func init() {
	scrapeCmd.Flags().Int("limit", 0, "max records fetched per discovery phase (0 = config defaults)")
	scrapeCmd.Flags().String("out", "", "CSV output path (default from config, vc_database.csv)")
	scrapeCmd.Flags().String("json", "", "also write a JSON export to this path")
	scrapeCmd.Flags().String("report", "", "also write an HTML run report to this path")
	scrapeCmd.Flags().Int("concurrency", 0, "enrichment workers (0 = config default)")
	scrapeCmd.Flags().Bool("skip-registry", false, "skip company registry discovery")
	scrapeCmd.Flags().Bool("skip-13f", false, "skip 13F-HR feed discovery")
	scrapeCmd.Flags().Bool("no-store", false, "do not record the run in the local catalog")
	scrapeCmd.Flags().Bool("trace", false, "print OpenTelemetry spans to stderr")
}

// persistRun records the run and upserts its investors into the catalog.
func persistRun(ctx context.Context, runID string, res *pipeline.Result) error {
	s, err := store.Open(cfg.Store.Path)
	if err != nil {
		return fmt.Errorf("open catalog: %w", err)
	}
	defer s.Close()

	if err := s.SaveRun(ctx, runID, res.Started); err != nil {
		return err
	}
	if err := s.UpsertInvestors(ctx, runID, res.Investors); err != nil {
		return err
	}
	return s.FinishRun(ctx, runID, res.Finished, res.Stats)
}

// printSummary prints the human-readable results block after a scrape.
func printSummary(res *pipeline.Result, out, jsonPath, reportPath string) {
	fmt.Println("═══════════════════════════════════════════════")
	fmt.Println("  EDGAR Scrape Results")
	fmt.Println("═══════════════════════════════════════════════")
	fmt.Printf("  Duration:        %s\n", report.FormatDuration(res.Finished.Sub(res.Started)))
	fmt.Printf("  Registry leads:  %d\n", res.Stats.RegistryLeads)
	fmt.Printf("  13F feed leads:  %d\n", res.Stats.FeedLeads)
	fmt.Printf("  Duplicates:      %d\n", res.Stats.Duplicates)
	fmt.Printf("  Enriched:        %d\n", res.Stats.Enriched)
	fmt.Printf("  Fetch failures:  %d\n", res.Stats.EnrichFailures)
	fmt.Printf("  Parse skips:     %d\n", res.Stats.ParseSkips)
	fmt.Printf("  Classified:      %d\n", res.Stats.Classified)
	fmt.Println()

	fmt.Println("  By category:")
	for _, cat := range models.AllCategories() {
		if n := res.Stats.ByCategory[cat]; n > 0 {
			fmt.Printf("    %-22s %d\n", string(cat)+":", n)
		}
	}
	fmt.Println()

	if top := topByAUM(res.Investors, 5); len(top) > 0 {
		fmt.Println("  Largest by reported AUM:")
		for _, inv := range top {
			fmt.Printf("    %-40s %s\n", truncate(inv.EntityName, 40), utils.FormatUSDCompact(inv.AUM))
		}
		fmt.Println()
	}

	fmt.Printf("  CSV written to %s\n", out)
	if jsonPath != "" {
		fmt.Printf("  JSON written to %s\n", jsonPath)
	}
	if reportPath != "" {
		fmt.Printf("  Report written to %s\n", reportPath)
	}
	fmt.Println("═══════════════════════════════════════════════")
}

// topByAUM returns up to n investors with the largest reported AUM.
func topByAUM(investors []models.ClassifiedInvestor, n int) []models.ClassifiedInvestor {
	withAUM := make([]models.ClassifiedInvestor, 0, len(investors))
	for i := range investors {
		if investors[i].AUM > 0 {
			withAUM = append(withAUM, investors[i])
		}
	}
	for i := 0; i < len(withAUM) && i < n; i++ {
		max := i
		for j := i + 1; j < len(withAUM); j++ {
			if withAUM[j].AUM > withAUM[max].AUM {
				max = j
			}
		}
		withAUM[i], withAUM[max] = withAUM[max], withAUM[i]
	}
	if len(withAUM) > n {
		withAUM = withAUM[:n]
	}
	return withAUM
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

// --- Classify Command ---

var classifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "Re-classify previously scraped investors offline",
	Long: `Re-run the keyword classifier over investors already in the local
catalog (--from-store) or a JSON export (--json), without any network
access. Useful after classification rule changes.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		fromStore, _ := cmd.Flags().GetBool("from-store")
		jsonPath, _ := cmd.Flags().GetString("json")
		out, _ := cmd.Flags().GetString("out")

		if fromStore == (jsonPath != "") {
			return fmt.Errorf("provide exactly one input: --from-store or --json FILE")
		}

		var investors []models.ClassifiedInvestor
		var err error
		if fromStore {
			s, openErr := store.Open(cfg.Store.Path)
			if openErr != nil {
				return fmt.Errorf("open catalog: %w", openErr)
			}
			defer s.Close()
			investors, err = s.Investors(cmd.Context(), 0)
		} else {
			investors, err = export.ReadJSON(jsonPath)
		}
		if err != nil {
			return err
		}

		changed := 0
		for i := range investors {
			was := investors[i].Category
			investors[i].Category = classify.Categorize(
				investors[i].EntityName, investors[i].SICDescription)
			if investors[i].Category != was {
				changed++
			}
		}

		if err := export.WriteCSV(investors, out); err != nil {
			return err
		}

		fmt.Printf("Re-classified %d investors (%d changed) → %s\n", len(investors), changed, out)
		return nil
	},
}

func init() {
	classifyCmd.Flags().Bool("from-store", false, "read investors from the local catalog")
	classifyCmd.Flags().String("json", "", "read investors from a JSON export")
	classifyCmd.Flags().String("out", "reclassified.csv", "CSV output path")
}

// --- Status Command ---

func init() {
	statusCmd.Flags().Bool("ping", false, "check EDGAR reachability with one rate-limited request")
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show configuration and catalog status",
	RunE: func(cmd *cobra.Command, args []string) error {
		ping, _ := cmd.Flags().GetBool("ping")

		fmt.Println("═══════════════════════════════════════════════")
		fmt.Println("  edgarintel — Status")
		fmt.Println("═══════════════════════════════════════════════")
		fmt.Printf("  Version:  %s (%s)\n", version, commit)
		fmt.Println()

		fmt.Println("  Configuration:")
		for _, s := range config.CheckSettings(cfg) {
			mark := "✅"
			if !s.OK {
				mark = "⚠️ "
			}
			fmt.Printf("    %s %-17s %s [%s]\n", mark, s.Name+":", s.Display, s.Source)
		}
		fmt.Println()

		if ping {
			client := edgar.New(edgar.Options{
				BaseURL:    cfg.Edgar.BaseURL,
				DataURL:    cfg.Edgar.DataURL,
				UserAgent:  cfg.Scraper.UserAgent,
				RatePerSec: cfg.Scraper.RateLimit,
				Burst:      cfg.Scraper.Burst,
			})
			ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
			defer cancel()
			if err := client.Ping(ctx); err != nil {
				fmt.Printf("  EDGAR:    ⚠️  unreachable (%v)\n", err)
			} else {
				fmt.Println("  EDGAR:    ✅ reachable")
			}
			fmt.Println()
		}

		if !cfg.Store.Enabled {
			fmt.Println("  Catalog: disabled")
			fmt.Println("═══════════════════════════════════════════════")
			return nil
		}

		s, err := store.Open(cfg.Store.Path)
		if err != nil {
			return fmt.Errorf("open catalog: %w", err)
		}
		defer s.Close()

		counts, err := s.CountByCategory(cmd.Context())
		if err != nil {
			return err
		}
		total := 0
		for _, n := range counts {
			total += n
		}

		fmt.Printf("  Catalog (%s): %d investors\n", cfg.Store.Path, total)
		for _, cat := range models.AllCategories() {
			if n := counts[cat]; n > 0 {
				fmt.Printf("    %-22s %d\n", string(cat)+":", n)
			}
		}

		last, err := s.LastRun(cmd.Context())
		if err != nil {
			return err
		}
		if last != nil {
			fmt.Println()
			fmt.Printf("  Last run: %s\n", last.ID)
			fmt.Printf("    started:    %s\n", last.StartedAt.Format("2006-01-02 15:04:05"))
			if !last.FinishedAt.IsZero() {
				fmt.Printf("    finished:   %s\n", last.FinishedAt.Format("2006-01-02 15:04:05"))
			}
			fmt.Printf("    classified: %d\n", last.Stats.Classified)
		}

		fmt.Println("═══════════════════════════════════════════════")
		return nil
	},
}
