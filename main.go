package main

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"sjsage522/catalogscraper/config"
	"sjsage522/catalogscraper/helpers"
	"sjsage522/catalogscraper/internal/crawler"
	"sjsage522/catalogscraper/internal/fetch"
	"sjsage522/catalogscraper/logger"
	"sjsage522/catalogscraper/services/cache"
	"sjsage522/catalogscraper/services/sink"
	"sjsage522/catalogscraper/services/worker"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"
)

func main() {
	// Load environment variables
	godotenv.Load()

	// Initialize logger first
	logger.Init()

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		categories string
		profile    string
		out        string
		workers    int
	)

	cmd := &cobra.Command{
		Use:           "catalogscraper",
		Short:         "Scrape category listings and item pages into a flat catalog",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.LoadConfig()
			flags := cmd.Flags()
			if flags.Changed("categories") {
				cfg.Categories = config.SplitList(categories)
			}
			if flags.Changed("profile") {
				cfg.Profile = profile
			}
			if flags.Changed("out") {
				cfg.OutputCSV = out
			}
			if flags.Changed("workers") {
				cfg.DetailWorkers = workers
			}
			return run(cfg, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&categories, "categories", "", "comma separated category slugs (overrides CATEGORIES)")
	cmd.Flags().StringVar(&profile, "profile", "", "layout profile: "+strings.Join(crawler.ProfileNames(), ", ")+" (overrides PROFILE)")
	cmd.Flags().StringVar(&out, "out", "", "CSV output path (overrides OUTPUT_CSV)")
	cmd.Flags().IntVar(&workers, "workers", 0, "concurrent detail fetches per category (overrides DETAIL_WORKERS)")
	return cmd
}

func run(cfg *config.Config, summary io.Writer) error {
	log := logger.Default

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		log.Error().Err(err).Msg("Invalid configuration")
		return err
	}

	log.Info().
		Str("environment", cfg.Environment).
		Str("base_url", cfg.BaseURL).
		Str("region", cfg.Region).
		Strs("categories", cfg.Categories).
		Str("profile", cfg.Profile).
		Msg("Starting scraper")

	// Set up context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Set up signal handling
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		select {
		case sig := <-sigChan:
			log.Info().
				Str("signal", sig.String()).
				Msg("Received shutdown signal, finishing in-flight requests")
			cancel()
		case <-ctx.Done():
		}
	}()

	services, err := initializeServices(ctx, cfg)
	if err != nil {
		log.Error().Err(err).Msg("Failed to initialize services")
		return err
	}
	defer services.Cleanup()

	w, err := buildWorker(cfg, services, summary)
	if err != nil {
		log.Error().Err(err).Msg("Failed to build pipeline")
		return err
	}

	if err := w.Start(ctx, cfg.RunInterval); err != nil {
		return err
	}
	log.Info().Msg("Shutting down gracefully...")
	return nil
}

// Services holds all the initialized services
type Services struct {
	Cache cache.CacheService
	Sinks []sink.Sink
}

// Cleanup cleans up all services
func (s *Services) Cleanup() {
	for _, snk := range s.Sinks {
		if err := snk.Close(); err != nil {
			logger.LogError("services", err, "failed to close sink %s", snk.Name())
		}
	}
}

// initializeServices initializes the cache and the sinks the configuration enables
func initializeServices(ctx context.Context, cfg *config.Config) (*Services, error) {
	services := &Services{}

	if cfg.MemcacheAddr != "" {
		mc := cache.NewMemcacheService(cfg.MemcacheAddr, "catalogscraper:")
		if err := mc.Ping(); err != nil {
			logger.Warn("Memcache at %s is unreachable, page cache disabled: %v", cfg.MemcacheAddr, err)
		} else {
			services.Cache = mc
			logger.Info("Connected to Memcache at %s", cfg.MemcacheAddr)
		}
	}

	if cfg.OutputCSV != "" {
		services.Sinks = append(services.Sinks, sink.NewCSVSink(cfg.OutputCSV))
	}

	if cfg.RedisAddr != "" {
		redisSink := sink.NewRedisStreamSink(
			cfg.RedisAddr,
			cfg.RedisDB,
			cfg.RedisStream,
			cfg.RedisStreamCount,
			cfg.RedisStreamMaxLength,
		)
		if err := redisSink.Ping(ctx); err != nil {
			redisSink.Close()
			return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.RedisAddr, err)
		}
		services.Sinks = append(services.Sinks, redisSink)

		logger.Info("Connected to Redis at %s (DB: %d, Stream: %s)",
			cfg.RedisAddr, cfg.RedisDB, cfg.RedisStream)
	}

	return services, nil
}

// buildWorker wires transport, fetcher, crawler and runner into a worker
func buildWorker(cfg *config.Config, services *Services, summary io.Writer) (*worker.Worker, error) {
	profile, err := crawler.LookupProfile(cfg.Profile)
	if err != nil {
		return nil, err
	}

	var limiter *rate.Limiter
	if cfg.RequestRPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestRPS), 1)
	}

	var transportOpts []helpers.TransportOption
	if cfg.ProxyURL != "" {
		proxyURL, err := url.Parse(cfg.ProxyURL)
		if err != nil {
			return nil, err
		}
		transportOpts = append(transportOpts, helpers.WithProxy(proxyURL))
	}

	fetcher := fetch.NewFetcher(helpers.NewHTTPTransport(transportOpts...), fetch.Options{
		Policy: fetch.Policy{
			MaxAttempts: cfg.MaxAttempts,
			BackoffBase: cfg.BackoffBase,
		},
		UserAgent: cfg.UserAgent,
		Cache:     services.Cache,
		CacheTTL:  cfg.CacheTTL,
		Limiter:   limiter,
		Logger:    logger.ForComponent("fetcher"),
	})

	site := crawler.Site{BaseURL: cfg.BaseURL, Region: cfg.Region}
	enricher := crawler.NewDetailEnricher(fetcher, site, cfg.DetailTimeout, logger.ForComponent("enricher"))
	categoryCrawler := crawler.NewCategoryCrawler(fetcher, enricher, site, crawler.CategoryOptions{
		ListingTimeout: cfg.ListingTimeout,
		DetailWorkers:  cfg.DetailWorkers,
		Logger:         logger.ForComponent("category"),
	})
	runner := crawler.NewRunner(categoryCrawler, cfg.CategoryDelay, fetch.Sleep, logger.ForComponent("runner"))

	return worker.NewWorker(runner, profile, cfg.Categories, services.Sinks, summary, logger.ForComponent("worker")), nil
}
