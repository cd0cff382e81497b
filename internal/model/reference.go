package model

import (
	"database/sql"
	"time"
)

// VisaCategory represents a preference category tracked by the bulletin
type VisaCategory struct {
	ID           int
	Code         string
	Name         string
	CategoryType CategoryType
	Subcategory  sql.NullString
	Description  sql.NullString
	DisplayOrder int
	IsActive     bool
	CreatedAt    time.Time
}

// Config value types stored alongside each system config row
const (
	ValueString  = "string"
	ValueNumber  = "number"
	ValueBoolean = "boolean"
	ValueJSON    = "json"
)

// SystemConfig is a key/value row from the system_configs table
type SystemConfig struct {
	Key         string
	Value       string
	ValueType   string
	Category    string
	Description sql.NullString
	IsPublic    bool
}

// SiteConfiguration is the public site configuration assembled from SystemConfig rows
type SiteConfiguration struct {
	SEO     SEOConfig     `json:"seo"`
	Ads     AdsConfig     `json:"ads"`
	General GeneralConfig `json:"general"`
}

type SEOConfig struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Keywords    string `json:"keywords"`
	Author      string `json:"author"`
}

type AdsConfig struct {
	Enabled  bool     `json:"enabled"`
	ClientID string   `json:"clientId"`
	Slots    AdsSlots `json:"slots"`
}

type AdsSlots struct {
	Header  string `json:"header"`
	Sidebar string `json:"sidebar"`
}

type GeneralConfig struct {
	BulletinUpdateDay int  `json:"bulletinUpdateDay"`
	MaxSearchResults  int  `json:"maxSearchResults"`
	EnableAnalytics   bool `json:"enableAnalytics"`
}
