package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jjenkins/visabulletin/internal/model"
)

// BulletinStore handles database operations for visa bulletin rows
type BulletinStore struct {
	db *sql.DB
}

// NewBulletinStore creates a new BulletinStore
func NewBulletinStore(db *sql.DB) *BulletinStore {
	return &BulletinStore{db: db}
}

// rowScanner is satisfied by *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...any) error
}

func scanBulletinRow(s rowScanner) (model.RawBulletinRow, error) {
	var (
		r            model.RawBulletinRow
		priorityDate sql.NullString
		changeDays   sql.NullInt64
		notes        sql.NullString
	)
	err := s.Scan(
		&r.BulletinMonth,
		&r.CategoryCode,
		&r.CategoryName,
		&r.CategoryType,
		&r.RegionCode,
		&r.RegionName,
		&r.TableType,
		&priorityDate,
		&changeDays,
		&r.ChangeStatus,
		&notes,
	)
	if err != nil {
		return r, err
	}
	if priorityDate.Valid {
		d := priorityDate.String
		r.PriorityDate = &d
	}
	if changeDays.Valid {
		n := int(changeDays.Int64)
		r.ChangeDays = &n
	}
	r.Notes = notes.String
	return r, nil
}

func collectBulletinRows(rows *sql.Rows) ([]model.RawBulletinRow, error) {
	defer rows.Close()

	var out []model.RawBulletinRow
	for rows.Next() {
		r, err := scanBulletinRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bulletin row: %w", err)
		}
		out = append(out, r)
	}

	return out, rows.Err()
}

// Latest returns every row of the most recent bulletin month, ordered by
// category type and then category display order
func (s *BulletinStore) Latest(ctx context.Context) ([]model.RawBulletinRow, error) {
	query := `
		SELECT to_char(bulletin_month, 'YYYY-MM-DD'), category_code, category_name,
		       category_type, region_code, region_name, table_type,
		       to_char(priority_date, 'YYYY-MM-DD'), change_days, change_status, notes
		FROM v_latest_bulletins
		ORDER BY category_type ASC, display_order ASC, region_code ASC, table_type ASC
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query latest bulletins: %w", err)
	}

	return collectBulletinRows(rows)
}

const seriesSelect = `
		SELECT to_char(b.bulletin_month, 'YYYY-MM-DD'), c.code, c.name, c.category_type,
		       r.code, r.name, b.table_type,
		       to_char(b.priority_date, 'YYYY-MM-DD'), b.change_days, b.change_status, b.notes
		FROM visa_bulletins b
		JOIN visa_categories c ON c.id = b.visa_category_id
		JOIN regions r ON r.id = b.region_id
		WHERE c.code = $1 AND r.code = $2 AND b.table_type = $3
`

// Trends returns up to q.Months rows of one series, newest first
func (s *BulletinStore) Trends(ctx context.Context, q model.TrendQuery) ([]model.RawBulletinRow, error) {
	query := seriesSelect + `
		ORDER BY b.bulletin_month DESC
		LIMIT $4
	`

	rows, err := s.db.QueryContext(ctx, query, q.CategoryCode, q.RegionCode, q.TableType, q.Months)
	if err != nil {
		return nil, fmt.Errorf("failed to query trends for %s/%s/%s: %w", q.CategoryCode, q.RegionCode, q.TableType, err)
	}

	return collectBulletinRows(rows)
}

// Previous returns the series row immediately before r's bulletin month, or
// nil when r is the first month on record
func (s *BulletinStore) Previous(ctx context.Context, r model.RawBulletinRow) (*model.RawBulletinRow, error) {
	query := seriesSelect + `
		  AND b.bulletin_month < $4::date
		ORDER BY b.bulletin_month DESC
		LIMIT 1
	`

	prev, err := scanBulletinRow(s.db.QueryRowContext(ctx, query, r.CategoryCode, r.RegionCode, r.TableType, r.BulletinMonth))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get previous row for %s/%s/%s: %w", r.CategoryCode, r.RegionCode, r.TableType, err)
	}

	return &prev, nil
}

// Upsert stores a bulletin row, creating its category and region on first
// sight. changed reports whether the stored row differs from what was there.
func (s *BulletinStore) Upsert(ctx context.Context, r model.RawBulletinRow) (changed bool, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var categoryID, regionID int
	err = tx.QueryRowContext(ctx, `
		INSERT INTO visa_categories (code, name, category_type)
		VALUES ($1, $2, $3)
		ON CONFLICT (code) DO UPDATE SET
			name = EXCLUDED.name,
			category_type = EXCLUDED.category_type,
			updated_at = NOW()
		RETURNING id
	`, r.CategoryCode, r.CategoryName, r.CategoryType).Scan(&categoryID)
	if err != nil {
		return false, fmt.Errorf("failed to upsert category %s: %w", r.CategoryCode, err)
	}

	err = tx.QueryRowContext(ctx, `
		INSERT INTO regions (code, name)
		VALUES ($1, $2)
		ON CONFLICT (code) DO UPDATE SET
			name = EXCLUDED.name,
			updated_at = NOW()
		RETURNING id
	`, r.RegionCode, r.RegionName).Scan(&regionID)
	if err != nil {
		return false, fmt.Errorf("failed to upsert region %s: %w", r.RegionCode, err)
	}

	// Re-imports of an identical row are no-ops
	var existingDate sql.NullString
	var existingDays sql.NullInt64
	var existingStatus string
	err = tx.QueryRowContext(ctx, `
		SELECT to_char(priority_date, 'YYYY-MM-DD'), change_days, change_status
		FROM visa_bulletins
		WHERE bulletin_month = $1::date AND visa_category_id = $2 AND region_id = $3 AND table_type = $4
	`, r.BulletinMonth, categoryID, regionID, r.TableType).Scan(&existingDate, &existingDays, &existingStatus)
	switch {
	case err == sql.ErrNoRows:
		changed = true
	case err != nil:
		return false, fmt.Errorf("failed to read existing row: %w", err)
	default:
		changed = !sameNullString(existingDate, r.PriorityDate) ||
			!sameNullInt(existingDays, r.ChangeDays) ||
			existingStatus != string(r.ChangeStatus)
	}

	if !changed {
		return false, tx.Commit()
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO visa_bulletins (bulletin_month, visa_category_id, region_id, table_type,
		                            priority_date, change_days, change_status, notes)
		VALUES ($1::date, $2, $3, $4, $5::date, $6, $7, $8)
		ON CONFLICT (bulletin_month, visa_category_id, region_id, table_type) DO UPDATE SET
			priority_date = EXCLUDED.priority_date,
			change_days = EXCLUDED.change_days,
			change_status = EXCLUDED.change_status,
			notes = EXCLUDED.notes,
			updated_at = NOW()
	`, r.BulletinMonth, categoryID, regionID, r.TableType,
		nullString(r.PriorityDate), nullInt(r.ChangeDays), r.ChangeStatus, sql.NullString{String: r.Notes, Valid: r.Notes != ""})
	if err != nil {
		return false, fmt.Errorf("failed to upsert bulletin row: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return true, nil
}

// Categories returns active visa categories in display order
func (s *BulletinStore) Categories(ctx context.Context) ([]model.VisaCategory, error) {
	query := `
		SELECT id, code, name, category_type, subcategory, description,
		       display_order, is_active, created_at
		FROM visa_categories
		WHERE is_active
		ORDER BY display_order, code
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	var categories []model.VisaCategory
	for rows.Next() {
		var c model.VisaCategory
		if err := rows.Scan(
			&c.ID,
			&c.Code,
			&c.Name,
			&c.CategoryType,
			&c.Subcategory,
			&c.Description,
			&c.DisplayOrder,
			&c.IsActive,
			&c.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}

	return categories, rows.Err()
}

func nullString(s *string) sql.NullString {
	if s == nil || *s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullInt(n *int) sql.NullInt64 {
	if n == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*n), Valid: true}
}

func sameNullString(a sql.NullString, b *string) bool {
	return a == nullString(b)
}

func sameNullInt(a sql.NullInt64, b *int) bool {
	return a == nullInt(b)
}
