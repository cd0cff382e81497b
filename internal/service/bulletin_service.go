package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/jjenkins/visabulletin/internal/bulletin"
	"github.com/jjenkins/visabulletin/internal/cache"
	"github.com/jjenkins/visabulletin/internal/metrics"
	"github.com/jjenkins/visabulletin/internal/model"
)

// Allowed trend windows, in months
var TrendMonths = []int{6, 12, 24, 36}

// DefaultTrendMonths is used when a query asks for an unsupported window
const DefaultTrendMonths = 12

// BulletinSource is the data store behind the bulletin pages
type BulletinSource interface {
	Latest(ctx context.Context) ([]model.RawBulletinRow, error)
	Trends(ctx context.Context, q model.TrendQuery) ([]model.RawBulletinRow, error)
}

// RowCache memoizes source results. Get returns cache.ErrMiss on a miss.
type RowCache interface {
	Get(ctx context.Context, key string) ([]model.RawBulletinRow, error)
	Set(ctx context.Context, key string, rows []model.RawBulletinRow) error
}

// RetryPolicy controls how transient source failures are retried
type RetryPolicy struct {
	MaxRetries     int
	InitialBackoff time.Duration
	Timeout        time.Duration // per attempt, zero for none
}

// DefaultRetryPolicy makes three attempts with a doubling delay
var DefaultRetryPolicy = RetryPolicy{MaxRetries: 3, InitialBackoff: 2 * time.Second}

// BulletinService fetches raw rows and shapes them for display
type BulletinService struct {
	source  BulletinSource
	cache   RowCache
	retry   RetryPolicy
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// Option configures a BulletinService
type Option func(*BulletinService)

// WithCache memoizes source results in c
func WithCache(c RowCache) Option {
	return func(s *BulletinService) { s.cache = c }
}

// WithRetry replaces DefaultRetryPolicy
func WithRetry(p RetryPolicy) Option {
	return func(s *BulletinService) { s.retry = p }
}

// WithMetrics records fetch metrics in m
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *BulletinService) { s.metrics = m }
}

// NewBulletinService creates a new BulletinService
func NewBulletinService(source BulletinSource, logger *zap.Logger, opts ...Option) *BulletinService {
	s := &BulletinService{
		source: source,
		retry:  DefaultRetryPolicy,
		logger: logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.retry.MaxRetries < 1 {
		s.retry.MaxRetries = 1
	}
	return s
}

// Latest returns the display rows of the most recent bulletin in first-seen
// order of the source rows. An empty snapshot is ErrNoData.
func (s *BulletinService) Latest(ctx context.Context) ([]model.DisplayRow, error) {
	rows, err := s.cached(ctx, "latest", cache.LatestKey(), s.source.Latest)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch latest bulletins: %w", err)
	}
	if len(rows) == 0 {
		return nil, ErrNoData
	}

	display := bulletin.Aggregate(rows)
	s.metrics.SetDisplayRows(len(display))
	return display, nil
}

// NormalizeTrendQuery fills defaults and clamps Months to a supported window
func NormalizeTrendQuery(q model.TrendQuery) model.TrendQuery {
	if q.CategoryCode == "" {
		q.CategoryCode = "EB2"
	}
	if q.RegionCode != model.RegionChina && q.RegionCode != model.RegionRestOfWorld {
		q.RegionCode = model.RegionChina
	}
	if q.TableType != model.TableA && q.TableType != model.TableB {
		q.TableType = model.TableA
	}
	supported := false
	for _, m := range TrendMonths {
		if q.Months == m {
			supported = true
			break
		}
	}
	if !supported {
		q.Months = DefaultTrendMonths
	}
	return q
}

// Trend returns one series oldest first. An empty series is not an error.
func (s *BulletinService) Trend(ctx context.Context, q model.TrendQuery) ([]model.TrendPoint, error) {
	q = NormalizeTrendQuery(q)

	rows, err := s.cached(ctx, "trend", cache.TrendKey(q), func(ctx context.Context) ([]model.RawBulletinRow, error) {
		return s.source.Trends(ctx, q)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch trends for %s/%s/%s: %w", q.CategoryCode, q.RegionCode, q.TableType, err)
	}

	return bulletin.BuildTrend(rows), nil
}

// cached serves key from the cache when possible. Cache failures are logged
// and fall through to the source.
func (s *BulletinService) cached(ctx context.Context, query, key string, fetch func(context.Context) ([]model.RawBulletinRow, error)) ([]model.RawBulletinRow, error) {
	if s.cache != nil {
		rows, err := s.cache.Get(ctx, key)
		switch {
		case err == nil:
			s.metrics.ObserveCache("hit")
			return rows, nil
		case errors.Is(err, cache.ErrMiss):
			s.metrics.ObserveCache("miss")
		default:
			s.metrics.ObserveCache("error")
			s.logger.Warn("cache read failed", zap.String("key", key), zap.Error(err))
		}
	}

	rows, err := s.fetchWithRetry(ctx, query, fetch)
	if err != nil {
		return nil, err
	}

	if s.cache != nil && len(rows) > 0 {
		if err := s.cache.Set(ctx, key, rows); err != nil {
			s.logger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return rows, nil
}

// fetchWithRetry calls fetch with exponential backoff on transient failures
func (s *BulletinService) fetchWithRetry(ctx context.Context, query string, fetch func(context.Context) ([]model.RawBulletinRow, error)) ([]model.RawBulletinRow, error) {
	start := time.Now()
	var lastErr error
	backoff := s.retry.InitialBackoff

	for attempt := 0; attempt < s.retry.MaxRetries; attempt++ {
		if attempt > 0 {
			s.metrics.IncrementRetry(query)
			s.logger.Info("retrying fetch",
				zap.String("query", query),
				zap.Int("attempt", attempt+1),
				zap.Duration("backoff", backoff),
				zap.Error(lastErr))

			select {
			case <-ctx.Done():
				s.metrics.ObserveFetch(query, start, ctx.Err())
				return nil, ctx.Err()
			case <-time.After(backoff):
				backoff *= 2
			}
		}

		rows, err := s.attempt(ctx, fetch)
		if err == nil {
			s.metrics.ObserveFetch(query, start, nil)
			return rows, nil
		}

		lastErr = err
		if !isTransient(err) || ctx.Err() != nil {
			break
		}
	}

	s.metrics.ObserveFetch(query, start, lastErr)
	s.logger.Error("fetch failed", zap.String("query", query), zap.Error(lastErr))
	return nil, lastErr
}

func (s *BulletinService) attempt(ctx context.Context, fetch func(context.Context) ([]model.RawBulletinRow, error)) ([]model.RawBulletinRow, error) {
	if s.retry.Timeout <= 0 {
		return fetch(ctx)
	}
	ctx, cancel := context.WithTimeout(ctx, s.retry.Timeout)
	defer cancel()
	return fetch(ctx)
}
