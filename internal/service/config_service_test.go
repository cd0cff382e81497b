package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jjenkins/visabulletin/internal/model"
)

type fakeConfigSource struct {
	configs []model.SystemConfig
	err     error
}

func (f *fakeConfigSource) PublicConfigs(ctx context.Context) ([]model.SystemConfig, error) {
	return f.configs, f.err
}

func (f *fakeConfigSource) Get(ctx context.Context, key string) (*model.SystemConfig, error) {
	if f.err != nil {
		return nil, f.err
	}
	for i := range f.configs {
		if f.configs[i].Key == key {
			return &f.configs[i], nil
		}
	}
	return nil, nil
}

func TestConfigService_SiteDefaults(t *testing.T) {
	svc := NewConfigService(&fakeConfigSource{})

	site, err := svc.Site(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "美国移民排期查询工具", site.SEO.Title)
	assert.Equal(t, 15, site.General.BulletinUpdateDay)
	assert.Equal(t, 20, site.General.MaxSearchResults)
	assert.True(t, site.General.EnableAnalytics)
	assert.False(t, site.Ads.Enabled)
}

func TestConfigService_SiteOverrides(t *testing.T) {
	svc := NewConfigService(&fakeConfigSource{configs: []model.SystemConfig{
		{Key: "site_title", Value: "排期"},
		{Key: "adsense_enabled", Value: "TRUE"},
		{Key: "adsense_client_id", Value: "ca-pub-1"},
		{Key: "bulletin_update_day", Value: "10"},
		{Key: "max_search_results", Value: "oops"},
		{Key: "enable_analytics", Value: "false"},
	}})

	site, err := svc.Site(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "排期", site.SEO.Title)
	assert.True(t, site.Ads.Enabled)
	assert.Equal(t, "ca-pub-1", site.Ads.ClientID)
	assert.Equal(t, 10, site.General.BulletinUpdateDay)
	assert.Equal(t, 20, site.General.MaxSearchResults)
	assert.False(t, site.General.EnableAnalytics)
}

func TestConfigService_SiteErrorKeepsDefaults(t *testing.T) {
	svc := NewConfigService(&fakeConfigSource{err: errors.New("db down")})

	site, err := svc.Site(context.Background())

	require.Error(t, err)
	assert.Equal(t, DefaultSiteConfiguration(), site)
}

func TestConfigService_Value(t *testing.T) {
	svc := NewConfigService(&fakeConfigSource{configs: []model.SystemConfig{
		{Key: "flag", Value: "true", ValueType: model.ValueBoolean},
		{Key: "day", Value: "15", ValueType: model.ValueNumber},
		{Key: "slots", Value: `{"header":"h1"}`, ValueType: model.ValueJSON},
		{Key: "name", Value: "x", ValueType: model.ValueString},
		{Key: "broken", Value: "{", ValueType: model.ValueJSON},
	}})
	ctx := context.Background()

	v, err := svc.Value(ctx, "flag")
	require.NoError(t, err)
	assert.Equal(t, true, v)

	v, err = svc.Value(ctx, "day")
	require.NoError(t, err)
	assert.Equal(t, 15.0, v)

	v, err = svc.Value(ctx, "slots")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"header": "h1"}, v)

	v, err = svc.Value(ctx, "name")
	require.NoError(t, err)
	assert.Equal(t, "x", v)

	v, err = svc.Value(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, v)

	_, err = svc.Value(ctx, "broken")
	assert.Error(t, err)
}
