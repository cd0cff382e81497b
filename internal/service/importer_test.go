package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jjenkins/visabulletin/internal/model"
)

type fakeFetcher struct {
	content []byte
	err     error
}

func (f *fakeFetcher) Fetch(ctx context.Context, location string) ([]byte, error) {
	return f.content, f.err
}

type seriesKey struct {
	category string
	region   model.Region
	table    model.TableType
}

// memImportStore keeps rows per series in insertion order
type memImportStore struct {
	series    map[seriesKey][]model.RawBulletinRow
	upsertErr map[string]error
}

func newMemImportStore() *memImportStore {
	return &memImportStore{series: map[seriesKey][]model.RawBulletinRow{}, upsertErr: map[string]error{}}
}

func (s *memImportStore) key(r model.RawBulletinRow) seriesKey {
	return seriesKey{r.CategoryCode, r.RegionCode, r.TableType}
}

func (s *memImportStore) Previous(ctx context.Context, r model.RawBulletinRow) (*model.RawBulletinRow, error) {
	var prev *model.RawBulletinRow
	for _, existing := range s.series[s.key(r)] {
		if existing.BulletinMonth < r.BulletinMonth && (prev == nil || existing.BulletinMonth > prev.BulletinMonth) {
			e := existing
			prev = &e
		}
	}
	return prev, nil
}

func (s *memImportStore) Upsert(ctx context.Context, r model.RawBulletinRow) (bool, error) {
	if err := s.upsertErr[r.CategoryCode]; err != nil {
		return false, err
	}
	k := s.key(r)
	for idx, existing := range s.series[k] {
		if existing.BulletinMonth == r.BulletinMonth {
			s.series[k][idx] = r
			return false, nil
		}
	}
	s.series[k] = append(s.series[k], r)
	return true, nil
}

type countingInvalidator struct{ calls int }

func (c *countingInvalidator) Invalidate(ctx context.Context) error {
	c.calls++
	return nil
}

func TestImporter_DerivesChangesInMonthOrder(t *testing.T) {
	// Newest month listed first: the importer must store January before February
	feed := []byte(`[
		{"bulletin_month": "2024-02-01", "category_code": "EB2", "region_code": "cn", "table_type": "A", "priority_date": "2019-05-31"},
		{"bulletin_month": "2024-01-01", "category_code": "EB2", "region_code": "cn", "table_type": "A", "priority_date": "2019-05-01"},
		{"bulletin_month": "2024-01-01", "category_code": "EB2", "region_code": "mx", "table_type": "A"}
	]`)
	store := newMemImportStore()
	inv := &countingInvalidator{}
	imp := NewImporter(&fakeFetcher{content: feed}, NewParser(), store, inv, nil, zap.NewNop())

	stats, err := imp.Import(context.Background(), "feed.json")

	require.NoError(t, err)
	assert.Equal(t, &ImportStats{Total: 3, Imported: 2, Changed: 2, Skipped: 1}, stats)
	assert.Equal(t, 1, inv.calls)

	rows := store.series[seriesKey{"EB2", model.RegionChina, model.TableA}]
	require.Len(t, rows, 2)
	assert.Equal(t, model.StatusUnchanged, rows[0].ChangeStatus)
	assert.Equal(t, model.StatusAdvanced, rows[1].ChangeStatus)
	require.NotNil(t, rows[1].ChangeDays)
	assert.Equal(t, 30, *rows[1].ChangeDays)
}

func TestImporter_ReimportIsUnchanged(t *testing.T) {
	feed := []byte(`[{"bulletin_month": "2024-01-01", "category_code": "EB1", "region_code": "rw", "table_type": "A", "change_status": "current"}]`)
	store := newMemImportStore()
	inv := &countingInvalidator{}
	imp := NewImporter(&fakeFetcher{content: feed}, NewParser(), store, inv, nil, zap.NewNop())

	_, err := imp.Import(context.Background(), "feed.json")
	require.NoError(t, err)
	stats, err := imp.Import(context.Background(), "feed.json")
	require.NoError(t, err)

	assert.Equal(t, 1, stats.Unchanged)
	assert.Equal(t, 0, stats.Changed)
	assert.Equal(t, 1, inv.calls)
}

func TestImporter_CountsFailures(t *testing.T) {
	feed := []byte(`[
		{"bulletin_month": "2024-01-01", "category_code": "EB1", "region_code": "rw", "table_type": "A", "change_status": "current"},
		{"bulletin_month": "2024-01-01", "category_code": "EB3", "region_code": "rw", "table_type": "A", "change_status": "current"}
	]`)
	store := newMemImportStore()
	store.upsertErr["EB3"] = errors.New("constraint violated")
	imp := NewImporter(&fakeFetcher{content: feed}, NewParser(), store, nil, nil, zap.NewNop())

	stats, err := imp.Import(context.Background(), "feed.json")

	require.NoError(t, err)
	assert.Equal(t, 1, stats.Imported)
	assert.Equal(t, 1, stats.Failed)
}

func TestImporter_FetchError(t *testing.T) {
	imp := NewImporter(&fakeFetcher{err: errors.New("no such file")}, NewParser(), newMemImportStore(), nil, nil, zap.NewNop())

	_, err := imp.Import(context.Background(), "missing.json")

	assert.ErrorContains(t, err, "failed to fetch feed")
}
