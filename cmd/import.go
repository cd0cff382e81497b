package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jjenkins/visabulletin/internal/cache"
	"github.com/jjenkins/visabulletin/internal/metrics"
	"github.com/jjenkins/visabulletin/internal/service"
	"github.com/jjenkins/visabulletin/internal/store"
)

var (
	importFile    string
	importURL     string
	importMigrate bool
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import visa bulletin rows from a JSON feed",
	Long: `Import reads bulletin rows from a JSON feed file or URL and stores them in
PostgreSQL. Rows missing change data are compared against the previous
month of the same category, region and table. Re-importing a month only
updates rows whose values changed.

The feed is either an array of rows or an object with a bulletin_month
and a rows array:

  {"bulletin_month": "2024-01", "rows": [
    {"category_code": "EB2", "region_code": "cn", "table_type": "A", "priority_date": "2019-05-01"}
  ]}

Examples:
  # Import a local feed
  ./visabulletin import --file bulletins/2024-01.json

  # Import from a URL, creating the schema first
  ./visabulletin import --url https://example.com/bulletin.json --migrate`,
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().StringVarP(&importFile, "file", "f", "", "Path to a JSON feed file")
	importCmd.Flags().StringVarP(&importURL, "url", "u", "", "URL of a JSON feed")
	importCmd.Flags().BoolVar(&importMigrate, "migrate", false, "Apply the schema before importing")
	importCmd.MarkFlagsMutuallyExclusive("file", "url")
	importCmd.MarkFlagsOneRequired("file", "url")
}

func runImport(cmd *cobra.Command, args []string) error {
	if cfg.Database.URL == "" {
		return errors.New("database url is required (--database-url or DATABASE_URL)")
	}

	ctx, cancel := signalContext(context.Background())
	defer cancel()

	logger.Info("connecting to database")
	db, err := store.NewDB(cfg.Database.URL)
	if err != nil {
		return err
	}
	defer db.Close()

	if importMigrate {
		if err := store.Migrate(ctx, db); err != nil {
			return err
		}
	}

	// A stale cache would hide the import until the ttl passes
	var invalidator service.Invalidator
	if cfg.Redis.Addr != "" {
		rc, err := cache.Dial(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.TTL)
		if err != nil {
			logger.Warn("cache unavailable, skipping invalidation", zap.Error(err))
		} else {
			defer rc.Close()
			invalidator = rc
		}
	}

	bulletinStore := store.NewBulletinStore(db)
	m := metrics.New(nil)
	importer := service.NewImporter(service.NewFeedClient(), service.NewParser(), bulletinStore, invalidator, m, logger)

	location := importFile
	if location == "" {
		location = importURL
	}

	logger.Info("starting import", zap.String("location", location))
	stats, err := importer.Import(ctx, location)
	if err != nil {
		if ctx.Err() != nil {
			logger.Warn("import cancelled")
		}
		return fmt.Errorf("import failed: %w", err)
	}
	importer.PrintSummary(stats)

	bulletins := service.NewBulletinService(bulletinStore, logger, service.WithRetry(retryPolicy()))
	if rows, err := bulletins.Latest(ctx); err != nil {
		logger.Warn("failed to summarize latest bulletin", zap.String("reason", service.UserMessage(err)), zap.Error(err))
	} else {
		s := service.Summarize(rows)
		logger.Info("latest bulletin",
			zap.Int("categories", s.Categories),
			zap.Int("rows", s.Rows),
			zap.Int("advanced", s.Advanced),
			zap.Int("retrogressed", s.Retrogressed),
			zap.Int("unchanged", s.Unchanged),
			zap.Int("current", s.Current),
			zap.Int("unavailable", s.Unavailable))
	}

	if stats.Failed > 0 {
		return fmt.Errorf("%d rows failed to import", stats.Failed)
	}
	return nil
}

// signalContext is cancelled on SIGINT or SIGTERM
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-sigChan:
			logger.Info("received interrupt signal, shutting down")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigChan)
	}()

	return ctx, cancel
}

func retryPolicy() service.RetryPolicy {
	return service.RetryPolicy{
		MaxRetries:     cfg.Fetch.MaxRetries,
		InitialBackoff: cfg.Fetch.InitialBackoff,
		Timeout:        cfg.Fetch.Timeout,
	}
}
