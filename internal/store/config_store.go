package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jjenkins/visabulletin/internal/model"
)

// ConfigStore handles database operations for system configs
type ConfigStore struct {
	db *sql.DB
}

// NewConfigStore creates a new ConfigStore
func NewConfigStore(db *sql.DB) *ConfigStore {
	return &ConfigStore{db: db}
}

// PublicConfigs returns every config row flagged as public
func (s *ConfigStore) PublicConfigs(ctx context.Context) ([]model.SystemConfig, error) {
	return s.query(ctx, `
		SELECT key, value, value_type, category, description, is_public
		FROM system_configs
		WHERE is_public
		ORDER BY key
	`)
}

// Get returns a single public config row, or nil if it does not exist
func (s *ConfigStore) Get(ctx context.Context, key string) (*model.SystemConfig, error) {
	configs, err := s.query(ctx, `
		SELECT key, value, value_type, category, description, is_public
		FROM system_configs
		WHERE is_public AND key = $1
	`, key)
	if err != nil {
		return nil, err
	}
	if len(configs) == 0 {
		return nil, nil
	}
	return &configs[0], nil
}

func (s *ConfigStore) query(ctx context.Context, query string, args ...any) ([]model.SystemConfig, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query system configs: %w", err)
	}
	defer rows.Close()

	var configs []model.SystemConfig
	for rows.Next() {
		var c model.SystemConfig
		if err := rows.Scan(&c.Key, &c.Value, &c.ValueType, &c.Category, &c.Description, &c.IsPublic); err != nil {
			return nil, fmt.Errorf("failed to scan system config: %w", err)
		}
		configs = append(configs, c)
	}

	return configs, rows.Err()
}
