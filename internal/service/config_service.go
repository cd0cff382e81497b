package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/jjenkins/visabulletin/internal/model"
)

// ConfigSource is the store of system config rows
type ConfigSource interface {
	PublicConfigs(ctx context.Context) ([]model.SystemConfig, error)
	Get(ctx context.Context, key string) (*model.SystemConfig, error)
}

// ConfigService builds the public site configuration
type ConfigService struct {
	source ConfigSource
}

// NewConfigService creates a new ConfigService
func NewConfigService(source ConfigSource) *ConfigService {
	return &ConfigService{source: source}
}

// DefaultSiteConfiguration is served for any key missing from the store
func DefaultSiteConfiguration() model.SiteConfiguration {
	return model.SiteConfiguration{
		SEO: model.SEOConfig{
			Title:       "美国移民排期查询工具",
			Description: "最新美国移民排期数据",
			Keywords:    "美国移民排期",
			Author:      "Visa Bulletin",
		},
		General: model.GeneralConfig{
			BulletinUpdateDay: 15,
			MaxSearchResults:  20,
			EnableAnalytics:   true,
		},
	}
}

// Site assembles the site configuration from public config rows
func (s *ConfigService) Site(ctx context.Context) (model.SiteConfiguration, error) {
	configs, err := s.source.PublicConfigs(ctx)
	if err != nil {
		return DefaultSiteConfiguration(), fmt.Errorf("failed to load public configs: %w", err)
	}
	return BuildSiteConfiguration(configs), nil
}

// BuildSiteConfiguration overlays configs on DefaultSiteConfiguration
func BuildSiteConfiguration(configs []model.SystemConfig) model.SiteConfiguration {
	byKey := make(map[string]string, len(configs))
	for _, c := range configs {
		byKey[c.Key] = c.Value
	}

	str := func(key, def string) string {
		if v, ok := byKey[key]; ok {
			return v
		}
		return def
	}
	boolean := func(key string, def bool) bool {
		if v, ok := byKey[key]; ok {
			return strings.EqualFold(strings.TrimSpace(v), "true")
		}
		return def
	}
	number := func(key string, def int) int {
		if v, ok := byKey[key]; ok {
			if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
				return int(f)
			}
		}
		return def
	}

	d := DefaultSiteConfiguration()
	return model.SiteConfiguration{
		SEO: model.SEOConfig{
			Title:       str("site_title", d.SEO.Title),
			Description: str("site_description", d.SEO.Description),
			Keywords:    str("site_keywords", d.SEO.Keywords),
			Author:      str("site_author", d.SEO.Author),
		},
		Ads: model.AdsConfig{
			Enabled:  boolean("adsense_enabled", d.Ads.Enabled),
			ClientID: str("adsense_client_id", d.Ads.ClientID),
			Slots: model.AdsSlots{
				Header:  str("ads_slot_header", d.Ads.Slots.Header),
				Sidebar: str("ads_slot_sidebar", d.Ads.Slots.Sidebar),
			},
		},
		General: model.GeneralConfig{
			BulletinUpdateDay: number("bulletin_update_day", d.General.BulletinUpdateDay),
			MaxSearchResults:  number("max_search_results", d.General.MaxSearchResults),
			EnableAnalytics:   boolean("enable_analytics", d.General.EnableAnalytics),
		},
	}
}

// Value returns a single public config converted to its declared type:
// string, float64, bool, or the decoded JSON value. A missing key is nil.
func (s *ConfigService) Value(ctx context.Context, key string) (any, error) {
	c, err := s.source.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to load config %s: %w", key, err)
	}
	if c == nil {
		return nil, nil
	}
	return ConvertValue(*c)
}

// ConvertValue converts a config row's text value according to its ValueType
func ConvertValue(c model.SystemConfig) (any, error) {
	switch c.ValueType {
	case model.ValueBoolean:
		return strings.EqualFold(strings.TrimSpace(c.Value), "true"), nil
	case model.ValueNumber:
		f, err := strconv.ParseFloat(strings.TrimSpace(c.Value), 64)
		if err != nil {
			return nil, fmt.Errorf("config %s is not a number: %w", c.Key, err)
		}
		return f, nil
	case model.ValueJSON:
		var v any
		if err := json.Unmarshal([]byte(c.Value), &v); err != nil {
			return nil, fmt.Errorf("config %s is not valid JSON: %w", c.Key, err)
		}
		return v, nil
	default:
		return c.Value, nil
	}
}
