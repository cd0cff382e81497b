package handlers

import (
	"context"
	"errors"
	"io"

	"github.com/a-h/templ"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/jjenkins/visabulletin/internal/model"
	"github.com/jjenkins/visabulletin/internal/service"
)

// Bulletins serves the latest snapshot and trend series
type Bulletins interface {
	Latest(ctx context.Context) ([]model.DisplayRow, error)
	Trend(ctx context.Context, q model.TrendQuery) ([]model.TrendPoint, error)
}

// SiteConfig serves the public site configuration
type SiteConfig interface {
	Site(ctx context.Context) (model.SiteConfiguration, error)
	Value(ctx context.Context, key string) (any, error)
}

// CategoryLister lists the visa categories offered on the trends page
type CategoryLister interface {
	Categories(ctx context.Context) ([]model.VisaCategory, error)
}

// ChartRenderer draws a trend series
type ChartRenderer interface {
	RenderSVG(w io.Writer, title string, points []model.TrendPoint) error
}

func render(c *fiber.Ctx, page templ.Component, status int) error {
	handler := adaptor.HTTPHandler(templ.Handler(page, templ.WithStatus(status)))
	return handler(c)
}

func errorStatus(err error) int {
	if errors.Is(err, service.ErrNoData) {
		return fiber.StatusNotFound
	}
	return fiber.StatusInternalServerError
}

func jsonError(c *fiber.Ctx, err error) error {
	return c.Status(errorStatus(err)).JSON(fiber.Map{"error": service.UserMessage(err)})
}

func trendQuery(c *fiber.Ctx) model.TrendQuery {
	return service.NormalizeTrendQuery(model.TrendQuery{
		CategoryCode: c.Query("category"),
		RegionCode:   model.Region(c.Query("region")),
		TableType:    model.TableType(c.Query("table")),
		Months:       c.QueryInt("months", service.DefaultTrendMonths),
	})
}

func region(c *fiber.Ctx) model.Region {
	if model.Region(c.Query("region")) == model.RegionRestOfWorld {
		return model.RegionRestOfWorld
	}
	return model.RegionChina
}
