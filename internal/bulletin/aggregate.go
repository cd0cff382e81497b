package bulletin

import "github.com/jjenkins/visabulletin/internal/model"

// rowKey identifies a DisplayRow
type rowKey struct {
	category string
	region   model.Region
}

// Aggregate groups a latest snapshot by (category, region) and fills the
// table A and table B cells of each group. Output order is the order in which
// each pair was first seen in rows. A table with no row keeps its zero cell.
func Aggregate(rows []model.RawBulletinRow) []model.DisplayRow {
	index := make(map[rowKey]int)
	var out []model.DisplayRow

	for _, r := range rows {
		key := rowKey{category: r.CategoryCode, region: r.RegionCode}
		i, seen := index[key]
		if !seen {
			i = len(out)
			index[key] = i
			out = append(out, model.DisplayRow{
				CategoryName: r.CategoryName,
				CategoryCode: r.CategoryCode,
				CategoryType: r.CategoryType,
				RegionCode:   r.RegionCode,
				RegionName:   r.RegionName,
			})
		}

		cell := &out[i].TableB
		if r.TableType == model.TableA {
			cell = &out[i].TableA
		}
		fillCell(cell, r)
	}

	return out
}

func fillCell(cell *model.TableCell, r model.RawBulletinRow) {
	cell.PriorityDate = nil
	if r.PriorityDate != nil && *r.PriorityDate != "" {
		d := *r.PriorityDate
		cell.PriorityDate = &d
	}
	cell.DisplayText = FormatDate(r.PriorityDate)

	change := Classify(r.ChangeDays, r.ChangeStatus)
	cell.ChangeText = change.Text
	cell.ChangeClass = change.Class
}

// SplitByType separates employment and family rows, preserving order.
// Rows with any other category type are dropped.
func SplitByType(rows []model.DisplayRow) (employment, family []model.DisplayRow) {
	for _, r := range rows {
		switch r.CategoryType {
		case model.CategoryEmployment:
			employment = append(employment, r)
		case model.CategoryFamily:
			family = append(family, r)
		}
	}
	return employment, family
}

// FilterRegion returns the rows for one region, preserving order
func FilterRegion(rows []model.DisplayRow, region model.Region) []model.DisplayRow {
	var out []model.DisplayRow
	for _, r := range rows {
		if r.RegionCode == region {
			out = append(out, r)
		}
	}
	return out
}
