package handlers

import (
	"bytes"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jjenkins/visabulletin/internal/bulletin"
	"github.com/jjenkins/visabulletin/internal/model"
	"github.com/jjenkins/visabulletin/internal/service"
	"github.com/jjenkins/visabulletin/internal/templates"
)

func HomeHandler(bulletins Bulletins, site SiteConfig, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var (
			rows []model.DisplayRow
			cfg  model.SiteConfiguration
		)

		g, ctx := errgroup.WithContext(c.UserContext())
		g.Go(func() error {
			var err error
			rows, err = bulletins.Latest(ctx)
			return err
		})
		g.Go(func() error {
			// Defaults are returned alongside the error
			var err error
			cfg, err = site.Site(ctx)
			if err != nil {
				logger.Warn("using default site configuration", zap.Error(err))
			}
			return nil
		})
		if err := g.Wait(); err != nil {
			logger.Error("failed to load latest bulletins", zap.Error(err))
			return render(c, templates.Error(cfg, service.UserMessage(err), c.OriginalURL()), errorStatus(err))
		}

		r := region(c)
		filtered := bulletin.FilterRegion(rows, r)
		employment, family := bulletin.SplitByType(filtered)
		summary := service.Summarize(filtered)

		page := templates.Home(templates.HomePage{
			Site:       cfg,
			Region:     r,
			Employment: employment,
			Family:     family,
			Summary: templates.HomeSummary{
				Categories:   summary.Categories,
				Advanced:     summary.Advanced,
				Retrogressed: summary.Retrogressed,
				Unchanged:    summary.Unchanged,
			},
		})
		return render(c, page, fiber.StatusOK)
	}
}

func TrendsHandler(bulletins Bulletins, categories CategoryLister, site SiteConfig, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.UserContext()
		q := trendQuery(c)

		cfg, err := site.Site(ctx)
		if err != nil {
			logger.Warn("using default site configuration", zap.Error(err))
		}

		points, err := bulletins.Trend(ctx, q)
		if err != nil {
			logger.Error("failed to load trend",
				zap.String("category", q.CategoryCode),
				zap.String("region", string(q.RegionCode)),
				zap.String("table", string(q.TableType)),
				zap.Error(err))
			return render(c, templates.Error(cfg, service.UserMessage(err), c.OriginalURL()), errorStatus(err))
		}

		page := templates.Trends(templates.TrendsPage{
			Site:       cfg,
			Query:      q,
			Categories: categoryOptions(c, categories, q.CategoryCode, logger),
			Months:     service.TrendMonths,
			Points:     bulletin.NewestFirst(points),
		})
		return render(c, page, fiber.StatusOK)
	}
}

// categoryOptions lists the active categories, keeping selected available
// when they cannot be loaded
func categoryOptions(c *fiber.Ctx, categories CategoryLister, selected string, logger *zap.Logger) []templates.CategoryOption {
	list, err := categories.Categories(c.UserContext())
	if err != nil {
		logger.Warn("failed to load categories", zap.Error(err))
	}

	var options []templates.CategoryOption
	found := false
	for _, vc := range list {
		options = append(options, templates.CategoryOption{Code: vc.Code, Name: vc.Name})
		found = found || vc.Code == selected
	}
	if !found {
		options = append(options, templates.CategoryOption{Code: selected, Name: selected})
	}
	return options
}

func ChartHandler(bulletins Bulletins, chart ChartRenderer, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		q := trendQuery(c)

		points, err := bulletins.Trend(c.UserContext(), q)
		if err != nil {
			logger.Error("failed to load trend for chart", zap.String("category", q.CategoryCode), zap.Error(err))
			return c.Status(errorStatus(err)).SendString(service.UserMessage(err))
		}

		var buf bytes.Buffer
		if err := chart.RenderSVG(&buf, service.ChartTitle(q), points); err != nil {
			logger.Error("failed to render chart", zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).SendString(service.MsgGeneric)
		}

		c.Set(fiber.HeaderContentType, "image/svg+xml")
		c.Set(fiber.HeaderCacheControl, "public, max-age=300")
		return c.Send(buf.Bytes())
	}
}
