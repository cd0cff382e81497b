package service

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jjenkins/visabulletin/internal/bulletin"
	"github.com/jjenkins/visabulletin/internal/model"
)

// ParseResult contains the rows extracted from a feed
type ParseResult struct {
	Rows    []model.RawBulletinRow
	Skipped []error // one entry per rejected row
}

// feedDocument is the object form of a feed. A bare JSON array of rows is
// accepted too.
type feedDocument struct {
	BulletinMonth string     `json:"bulletin_month"`
	Rows          []feedJSON `json:"rows"`
}

// feedJSON is one row as published. PriorityDate may be a date, "C" for
// current or "U" for unavailable, as printed in the bulletin itself.
type feedJSON struct {
	BulletinMonth string  `json:"bulletin_month"`
	CategoryCode  string  `json:"category_code"`
	CategoryName  string  `json:"category_name"`
	CategoryType  string  `json:"category_type"`
	RegionCode    string  `json:"region_code"`
	RegionName    string  `json:"region_name"`
	TableType     string  `json:"table_type"`
	PriorityDate  *string `json:"priority_date"`
	ChangeDays    *int    `json:"change_days"`
	ChangeStatus  string  `json:"change_status"`
	Notes         string  `json:"notes"`
}

// Parser handles bulletin feed parsing
type Parser struct{}

// NewParser creates a new Parser
func NewParser() *Parser {
	return &Parser{}
}

// Parse decodes a feed and normalizes each row. Malformed rows are reported
// in Skipped rather than failing the whole feed.
func (p *Parser) Parse(content []byte) (*ParseResult, error) {
	var doc feedDocument

	trimmed := bytes.TrimSpace(content)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &doc.Rows); err != nil {
			return nil, fmt.Errorf("failed to parse feed: %w", err)
		}
	} else if err := json.Unmarshal(trimmed, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	result := &ParseResult{}
	for i, raw := range doc.Rows {
		if raw.BulletinMonth == "" {
			raw.BulletinMonth = doc.BulletinMonth
		}
		row, err := normalizeRow(raw)
		if err != nil {
			result.Skipped = append(result.Skipped, fmt.Errorf("row %d: %w", i+1, err))
			continue
		}
		result.Rows = append(result.Rows, row)
	}

	return result, nil
}

func normalizeRow(raw feedJSON) (model.RawBulletinRow, error) {
	month, ok := bulletin.ParseDate(&raw.BulletinMonth)
	if !ok {
		return model.RawBulletinRow{}, fmt.Errorf("invalid bulletin month %q", raw.BulletinMonth)
	}

	code := strings.ToUpper(strings.TrimSpace(raw.CategoryCode))
	if code == "" {
		return model.RawBulletinRow{}, fmt.Errorf("missing category code")
	}

	row := model.RawBulletinRow{
		BulletinMonth: month.Format("2006-01") + "-01",
		CategoryCode:  code,
		CategoryName:  strings.TrimSpace(raw.CategoryName),
		CategoryType:  model.CategoryType(strings.ToLower(strings.TrimSpace(raw.CategoryType))),
		RegionCode:    model.Region(strings.ToLower(strings.TrimSpace(raw.RegionCode))),
		RegionName:    strings.TrimSpace(raw.RegionName),
		TableType:     model.TableType(strings.ToUpper(strings.TrimSpace(raw.TableType))),
		ChangeDays:    raw.ChangeDays,
		ChangeStatus:  model.ChangeStatus(strings.ToLower(strings.TrimSpace(raw.ChangeStatus))),
		Notes:         strings.TrimSpace(raw.Notes),
	}
	if row.CategoryName == "" {
		row.CategoryName = code
	}
	if row.CategoryType == "" {
		row.CategoryType = inferCategoryType(code)
	}

	switch row.CategoryType {
	case model.CategoryEmployment, model.CategoryFamily:
	default:
		return model.RawBulletinRow{}, fmt.Errorf("invalid category type %q", raw.CategoryType)
	}
	switch row.RegionCode {
	case model.RegionChina, model.RegionRestOfWorld:
	default:
		return model.RawBulletinRow{}, fmt.Errorf("invalid region %q", raw.RegionCode)
	}
	switch row.TableType {
	case model.TableA, model.TableB:
	default:
		return model.RawBulletinRow{}, fmt.Errorf("invalid table type %q", raw.TableType)
	}
	switch row.ChangeStatus {
	case "", model.StatusAdvanced, model.StatusRetrogressed, model.StatusUnchanged, model.StatusCurrent, model.StatusUnavailable:
	default:
		return model.RawBulletinRow{}, fmt.Errorf("invalid change status %q", raw.ChangeStatus)
	}

	if raw.PriorityDate != nil {
		v := strings.TrimSpace(*raw.PriorityDate)
		switch strings.ToUpper(v) {
		case "", "C":
			if row.ChangeStatus == "" {
				row.ChangeStatus = model.StatusCurrent
			}
		case "U":
			row.ChangeStatus = model.StatusUnavailable
		default:
			d, ok := bulletin.ParseDate(&v)
			if !ok {
				return model.RawBulletinRow{}, fmt.Errorf("invalid priority date %q", v)
			}
			formatted := d.Format("2006-01-02")
			row.PriorityDate = &formatted
		}
	}

	return row, nil
}

// inferCategoryType maps bulletin codes to their table: EB* and the special
// immigrant categories are employment based, F* are family sponsored
func inferCategoryType(code string) model.CategoryType {
	if strings.HasPrefix(code, "F") {
		return model.CategoryFamily
	}
	return model.CategoryEmployment
}
