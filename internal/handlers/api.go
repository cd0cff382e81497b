package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/jjenkins/visabulletin/internal/bulletin"
)

// LatestAPIHandler returns the latest display rows, optionally filtered by ?region=
func LatestAPIHandler(bulletins Bulletins, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		rows, err := bulletins.Latest(c.UserContext())
		if err != nil {
			logger.Error("failed to load latest bulletins", zap.Error(err))
			return jsonError(c, err)
		}

		if c.Query("region") != "" {
			rows = bulletin.FilterRegion(rows, region(c))
		}
		return c.JSON(fiber.Map{"rows": rows})
	}
}

func TrendsAPIHandler(bulletins Bulletins, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		q := trendQuery(c)

		points, err := bulletins.Trend(c.UserContext(), q)
		if err != nil {
			logger.Error("failed to load trend", zap.String("category", q.CategoryCode), zap.Error(err))
			return jsonError(c, err)
		}
		return c.JSON(fiber.Map{"query": q, "points": points})
	}
}

// ConfigAPIHandler returns the site configuration, or one value with ?key=
func ConfigAPIHandler(site SiteConfig, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.UserContext()

		if key := c.Query("key"); key != "" {
			value, err := site.Value(ctx, key)
			if err != nil {
				logger.Error("failed to load config value", zap.String("key", key), zap.Error(err))
				return jsonError(c, err)
			}
			if value == nil {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "config not found"})
			}
			return c.JSON(fiber.Map{"key": key, "value": value})
		}

		cfg, err := site.Site(ctx)
		if err != nil {
			logger.Warn("using default site configuration", zap.Error(err))
		}
		return c.JSON(cfg)
	}
}
