package cmd

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jjenkins/visabulletin/internal/cache"
	"github.com/jjenkins/visabulletin/internal/handlers"
	"github.com/jjenkins/visabulletin/internal/metrics"
	"github.com/jjenkins/visabulletin/internal/service"
	"github.com/jjenkins/visabulletin/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the visa bulletin web server",
	Long:  `Start the web server showing the latest visa bulletin and priority date trends.`,
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("port", "p", "8080", "Port to run the server on (defaults to PORT)")
}

func runServe(cmd *cobra.Command, args []string) error {
	if cfg.Database.URL == "" {
		return errors.New("database url is required (--database-url or DATABASE_URL)")
	}

	db, err := store.NewDB(cfg.Database.URL)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx, cancel := signalContext(context.Background())
	defer cancel()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	opts := []service.Option{service.WithRetry(retryPolicy()), service.WithMetrics(m)}
	if cfg.Redis.Addr != "" {
		rc, err := cache.Dial(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.TTL)
		if err != nil {
			logger.Warn("cache unavailable, serving without it", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		} else {
			defer rc.Close()
			opts = append(opts, service.WithCache(rc))
		}
	}

	bulletinStore := store.NewBulletinStore(db)
	bulletins := service.NewBulletinService(bulletinStore, logger, opts...)
	site := service.NewConfigService(store.NewConfigStore(db))
	chart := service.NewChartRenderer()

	app := fiber.New(fiber.Config{
		AppName:               "Visa Bulletin",
		DisableStartupMessage: true,
	})

	app.Use(fiberlogger.New())

	// Pages
	app.Get("/", handlers.HomeHandler(bulletins, site, logger))
	app.Get("/trends", handlers.TrendsHandler(bulletins, bulletinStore, site, logger))
	app.Get("/trends/chart.svg", handlers.ChartHandler(bulletins, chart, logger))

	// JSON API
	api := app.Group("/api")
	api.Get("/bulletins/latest", handlers.LatestAPIHandler(bulletins, logger))
	api.Get("/bulletins/trends", handlers.TrendsAPIHandler(bulletins, logger))
	api.Get("/config", handlers.ConfigAPIHandler(site, logger))

	app.Get("/healthz", handlers.HealthHandler(db))
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	go func() {
		<-ctx.Done()
		shutdownCtx, done := context.WithTimeout(context.Background(), 10*time.Second)
		defer done()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			logger.Error("shutdown failed", zap.Error(err))
		}
	}()

	logger.Info("starting server", zap.String("port", cfg.Server.Port))
	if err := app.Listen(":" + cfg.Server.Port); err != nil {
		return err
	}
	return nil
}
