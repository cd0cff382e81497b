package service

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/jjenkins/visabulletin/internal/bulletin"
	"github.com/jjenkins/visabulletin/internal/metrics"
	"github.com/jjenkins/visabulletin/internal/model"
)

// ImportStats tracks import statistics
type ImportStats struct {
	Total     int
	Imported  int
	Changed   int
	Unchanged int
	Skipped   int
	Failed    int
}

// FeedFetcher loads a raw feed
type FeedFetcher interface {
	Fetch(ctx context.Context, location string) ([]byte, error)
}

// ImportStore persists imported rows
type ImportStore interface {
	Previous(ctx context.Context, r model.RawBulletinRow) (*model.RawBulletinRow, error)
	Upsert(ctx context.Context, r model.RawBulletinRow) (changed bool, err error)
}

// Invalidator drops cached query results after new data lands
type Invalidator interface {
	Invalidate(ctx context.Context) error
}

// Importer orchestrates the bulletin import process
type Importer struct {
	fetcher     FeedFetcher
	parser      *Parser
	store       ImportStore
	invalidator Invalidator
	metrics     *metrics.Metrics
	logger      *zap.Logger
}

// NewImporter creates a new Importer. invalidator and m may be nil.
func NewImporter(fetcher FeedFetcher, parser *Parser, store ImportStore, invalidator Invalidator, m *metrics.Metrics, logger *zap.Logger) *Importer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Importer{
		fetcher:     fetcher,
		parser:      parser,
		store:       store,
		invalidator: invalidator,
		metrics:     m,
		logger:      logger,
	}
}

// Import fetches the feed at location and stores every valid row. Rows are
// stored oldest month first so that missing change data can be derived from
// months imported earlier in the same run.
func (i *Importer) Import(ctx context.Context, location string) (*ImportStats, error) {
	stats := &ImportStats{}

	i.logger.Info("fetching feed", zap.String("location", location))
	content, err := i.fetcher.Fetch(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed: %w", err)
	}

	parsed, err := i.parser.Parse(content)
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	stats.Total = len(parsed.Rows) + len(parsed.Skipped)
	stats.Skipped = len(parsed.Skipped)
	for _, skipErr := range parsed.Skipped {
		i.logger.Warn("skipping row", zap.Error(skipErr))
	}

	rows := parsed.Rows
	sort.SliceStable(rows, func(a, b int) bool {
		return rows[a].BulletinMonth < rows[b].BulletinMonth
	})

	i.logger.Info("importing rows", zap.Int("rows", len(rows)))
	for idx, row := range rows {
		select {
		case <-ctx.Done():
			return stats, ctx.Err()
		default:
		}

		if err := i.importRow(ctx, row, stats); err != nil {
			i.logger.Error("failed to import row",
				zap.Int("index", idx+1),
				zap.String("month", row.BulletinMonth),
				zap.String("category", row.CategoryCode),
				zap.String("region", string(row.RegionCode)),
				zap.String("table", string(row.TableType)),
				zap.Error(err))
			stats.Failed++
			i.metrics.ObserveImport("failed")
			continue
		}
		stats.Imported++
	}

	if stats.Changed > 0 && i.invalidator != nil {
		if err := i.invalidator.Invalidate(ctx); err != nil {
			i.logger.Warn("failed to invalidate cache", zap.Error(err))
		}
	}

	return stats, nil
}

// importRow derives missing change data and stores a single row
func (i *Importer) importRow(ctx context.Context, row model.RawBulletinRow, stats *ImportStats) error {
	if row.ChangeStatus == "" {
		prev, err := i.store.Previous(ctx, row)
		if err != nil {
			return fmt.Errorf("failed to load previous month: %w", err)
		}
		row = bulletin.FillChange(row, prev)
	}

	changed, err := i.store.Upsert(ctx, row)
	if err != nil {
		return fmt.Errorf("failed to save row: %w", err)
	}

	if changed {
		i.logger.Debug("row changed",
			zap.String("month", row.BulletinMonth),
			zap.String("category", row.CategoryCode),
			zap.String("region", string(row.RegionCode)),
			zap.String("table", string(row.TableType)),
			zap.String("status", string(row.ChangeStatus)))
		stats.Changed++
		i.metrics.ObserveImport("changed")
	} else {
		stats.Unchanged++
		i.metrics.ObserveImport("unchanged")
	}

	return nil
}

// PrintSummary logs the import statistics
func (i *Importer) PrintSummary(stats *ImportStats) {
	successRate := 0.0
	if valid := stats.Total - stats.Skipped; valid > 0 {
		successRate = float64(stats.Imported) / float64(valid) * 100
	}

	i.logger.Info("import summary",
		zap.Int("total", stats.Total),
		zap.Int("imported", stats.Imported),
		zap.Int("changed", stats.Changed),
		zap.Int("unchanged", stats.Unchanged),
		zap.Int("skipped", stats.Skipped),
		zap.Int("failed", stats.Failed),
		zap.String("success_rate", fmt.Sprintf("%.1f%%", successRate)))
}
