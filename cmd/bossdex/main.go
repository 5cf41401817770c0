package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/gravewood/bossdex/internal/config"
	"github.com/gravewood/bossdex/internal/crawler"
	"github.com/gravewood/bossdex/internal/fetcher"
	"github.com/gravewood/bossdex/internal/media"
	"github.com/gravewood/bossdex/internal/reconcile"
	"github.com/gravewood/bossdex/internal/resolver"
	"github.com/gravewood/bossdex/internal/storage"
)

var (
	cfgFile     string
	verbose     bool
	urlsFile    string
	imageDir    string
	recordsFile string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "bossdex",
		Short: "bossdex — wiki boss reference collector",
		Long: `bossdex collects canonical reference data about boss entries on a wiki:

  crawl      discover boss page URLs from the category listing
  images     resolve and download each page's best-quality image as PNG
  reconcile  populate the url column of the boss records CSV
  run        all three steps in sequence`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(crawlCmd())
	rootCmd.AddCommand(imagesCmd())
	rootCmd.AddCommand(reconcileCmd())
	rootCmd.AddCommand(runCmd())
	rootCmd.AddCommand(configCmd())
	rootCmd.AddCommand(versionCmd())

	if err := rootCmd.Execute(); err != nil {
		var missing *storage.MissingInputError
		if errors.As(err, &missing) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func crawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl",
		Short: "Collect boss page URLs from the category listing",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup()
			if err != nil {
				return err
			}
			ctx, stop := signalContext()
			defer stop()
			return runCrawl(ctx, cfg, logger)
		},
	}
	cmd.Flags().StringVarP(&urlsFile, "output", "o", "", "URL list output path (overrides config)")
	return cmd
}

func imagesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "images",
		Short: "Resolve and download boss images as PNG",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup()
			if err != nil {
				return err
			}
			ctx, stop := signalContext()
			defer stop()
			return runImages(ctx, cfg, logger)
		},
	}
	cmd.Flags().StringVar(&imageDir, "image-dir", "", "image output directory (overrides config)")
	cmd.Flags().StringVar(&urlsFile, "urls", "", "URL list input path (overrides config)")
	return cmd
}

func reconcileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Populate the url column of the boss records CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup()
			if err != nil {
				return err
			}
			return runReconcile(cfg, logger)
		},
	}
	cmd.Flags().StringVar(&recordsFile, "records", "", "records CSV path (overrides config)")
	cmd.Flags().StringVar(&urlsFile, "urls", "", "URL list input path (overrides config)")
	return cmd
}

func runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Crawl, download images, and reconcile records in one pass",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup()
			if err != nil {
				return err
			}
			ctx, stop := signalContext()
			defer stop()

			if err := runCrawl(ctx, cfg, logger); err != nil {
				return err
			}
			if err := runImages(ctx, cfg, logger); err != nil {
				return err
			}
			return runReconcile(cfg, logger)
		},
	}
}

func runCrawl(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	client := fetcher.New(cfg.Site.UserAgent, cfg.Crawler.RequestTimeout, cfg.Resolver.MaxBodySize, logger)
	c := crawler.New(cfg, client, logger)

	logger.Info("starting crawl", "category", cfg.Site.CategoryURL)
	start := time.Now()

	refs, err := c.Run(ctx)
	if err != nil {
		return fmt.Errorf("crawl: %w", err)
	}
	if err := storage.WriteURLList(cfg.Output.URLsFile, refs); err != nil {
		return err
	}

	fmt.Printf("Collected URLs (%d):\n", len(refs))
	for _, ref := range refs {
		fmt.Println(string(ref))
	}

	if cfg.Crawler.ExpectedCount > 0 && len(refs) != cfg.Crawler.ExpectedCount {
		logger.Warn("unexpected URL count, the page layout may have changed",
			"expected", cfg.Crawler.ExpectedCount,
			"found", len(refs),
		)
	}

	logger.Info("crawl complete", "urls", len(refs), "elapsed", time.Since(start).Round(time.Millisecond))
	fmt.Printf("\nSaved %d URLs to %s\n", len(refs), cfg.Output.URLsFile)
	return nil
}

func runImages(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	refs, err := storage.ReadURLList(cfg.Output.URLsFile)
	if err != nil {
		return err
	}

	client := fetcher.New(cfg.Site.UserAgent, cfg.Resolver.RequestTimeout, cfg.Resolver.MaxBodySize, logger)
	res := resolver.New(cfg, client, logger)
	saver, err := media.NewSaver(cfg.Output.ImageDir, client, logger)
	if err != nil {
		return err
	}

	logger.Info("resolving images", "pages", len(refs), "output", cfg.Output.ImageDir)
	start := time.Now()

	saved := 0
	for i, ref := range refs {
		if err := ctx.Err(); err != nil {
			return err
		}

		img, err := res.Resolve(ctx, ref)
		if err != nil {
			logger.Warn("skip page", "page", string(ref), "error", err)
			continue
		}

		path, err := saver.Save(ctx, img)
		if err != nil {
			logger.Warn("image save failed", "page", string(ref), "image", img.Candidate.URL, "error", err)
			continue
		}
		saved++
		logger.Info("saved", "path", path, "source", img.Candidate.Source)

		if i < len(refs)-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(cfg.Resolver.DownloadDelay):
			}
		}
	}

	logger.Info("images complete", "saved", saved, "pages", len(refs), "elapsed", time.Since(start).Round(time.Millisecond))
	fmt.Printf("Done. Saved %d images to %s\n", saved, cfg.Output.ImageDir)
	return nil
}

func runReconcile(cfg *config.Config, logger *slog.Logger) error {
	refs, err := storage.ReadURLList(cfg.Output.URLsFile)
	if err != nil {
		return err
	}
	set, err := storage.ReadRecords(cfg.Output.RecordsFile)
	if err != nil {
		return err
	}

	rec := reconcile.New(cfg, logger)
	matched, err := rec.Apply(set, refs)
	if err != nil {
		return err
	}
	if err := storage.WriteRecords(cfg.Output.RecordsFile, set); err != nil {
		return err
	}

	logger.Info("reconcile complete", "matched", matched, "rows", len(set.Rows))
	fmt.Printf("Updated URLs for %d/%d rows\n", matched, len(set.Rows))
	return nil
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("bossdex %s\n", config.Version)
		},
	}
}

func configCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			fmt.Printf("Site:\n")
			fmt.Printf("  Domain:            %s\n", cfg.Site.Domain)
			fmt.Printf("  Category URL:      %s\n", cfg.Site.CategoryURL)
			fmt.Printf("  API Endpoint:      %s\n", cfg.Site.APIEndpoint)
			fmt.Printf("  Image CDN Host:    %s\n", cfg.Site.ImageCDNHost)
			fmt.Printf("\nCrawler:\n")
			fmt.Printf("  Min Primary Links: %d\n", cfg.Crawler.MinPrimaryLinks)
			fmt.Printf("  Expected Count:    %d\n", cfg.Crawler.ExpectedCount)
			fmt.Printf("  Request Timeout:   %s\n", cfg.Crawler.RequestTimeout)
			fmt.Printf("  Politeness Delay:  %s\n", cfg.Crawler.PolitenessDelay)
			fmt.Printf("\nResolver:\n")
			fmt.Printf("  Request Timeout:   %s\n", cfg.Resolver.RequestTimeout)
			fmt.Printf("  Download Delay:    %s\n", cfg.Resolver.DownloadDelay)
			fmt.Printf("\nOutput:\n")
			fmt.Printf("  URLs File:         %s\n", cfg.Output.URLsFile)
			fmt.Printf("  Image Dir:         %s\n", cfg.Output.ImageDir)
			fmt.Printf("  Records File:      %s\n", cfg.Output.RecordsFile)
			return nil
		},
	}
}

// setup loads and validates config, applies flag overrides, and builds the
// logger.
func setup() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	if urlsFile != "" {
		cfg.Output.URLsFile = urlsFile
	}
	if imageDir != "" {
		cfg.Output.ImageDir = imageDir
	}
	if recordsFile != "" {
		cfg.Output.RecordsFile = recordsFile
	}

	if err := config.Validate(cfg); err != nil {
		return nil, nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, setupLogger(cfg), nil
}

// setupLogger creates a structured logger per the logging config.
func setupLogger(cfg *config.Config) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.Logging.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Logging.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	return slog.New(handler)
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}
