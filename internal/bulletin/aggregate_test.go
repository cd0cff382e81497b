package bulletin

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jjenkins/visabulletin/internal/model"
)

func row(category string, region model.Region, table model.TableType, date *string, days *int, status model.ChangeStatus) model.RawBulletinRow {
	typ := model.CategoryEmployment
	if category[0] == 'F' {
		typ = model.CategoryFamily
	}
	return model.RawBulletinRow{
		BulletinMonth: "2024-01-01",
		CategoryCode:  category,
		CategoryName:  category + " name",
		CategoryType:  typ,
		RegionCode:    region,
		RegionName:    string(region) + " name",
		TableType:     table,
		PriorityDate:  date,
		ChangeDays:    days,
		ChangeStatus:  status,
	}
}

func sampleSnapshot() []model.RawBulletinRow {
	return []model.RawBulletinRow{
		row("EB2", model.RegionChina, model.TableA, strPtr("2019-05-01"), intPtr(30), model.StatusAdvanced),
		row("F1", model.RegionChina, model.TableA, strPtr("2015-01-08"), nil, model.StatusUnchanged),
		row("EB2", model.RegionChina, model.TableB, strPtr("2020-01-01"), intPtr(-15), model.StatusRetrogressed),
		row("EB1", model.RegionRestOfWorld, model.TableA, nil, nil, model.StatusCurrent),
		row("EB2", model.RegionRestOfWorld, model.TableA, strPtr("2023-03-15"), intPtr(0), model.StatusUnchanged),
		row("F1", model.RegionChina, model.TableB, strPtr("2017-09-01"), intPtr(92), model.StatusAdvanced),
	}
}

func TestAggregate_TwoTablesOneRow(t *testing.T) {
	rows := []model.RawBulletinRow{
		row("EB2", model.RegionChina, model.TableA, strPtr("2019-05-01"), intPtr(30), model.StatusAdvanced),
		row("EB2", model.RegionChina, model.TableB, strPtr("2020-01-01"), intPtr(-15), model.StatusRetrogressed),
	}

	out := Aggregate(rows)

	require.Len(t, out, 1)
	got := out[0]
	assert.Equal(t, "EB2", got.CategoryCode)
	assert.Equal(t, model.RegionChina, got.RegionCode)
	assert.Equal(t, "2019-05-01", got.TableA.DisplayText)
	assert.Equal(t, "前进30天", got.TableA.ChangeText)
	assert.Equal(t, model.ClassAdvance, got.TableA.ChangeClass)
	assert.Equal(t, "2020-01-01", got.TableB.DisplayText)
	assert.Equal(t, "后退15天", got.TableB.ChangeText)
	assert.Equal(t, model.ClassRetrogress, got.TableB.ChangeClass)
}

func TestAggregate_CurrentWithoutDate(t *testing.T) {
	out := Aggregate([]model.RawBulletinRow{
		row("EB1", model.RegionRestOfWorld, model.TableA, nil, nil, model.StatusCurrent),
	})

	require.Len(t, out, 1)
	cell := out[0].TableA
	assert.Nil(t, cell.PriorityDate)
	assert.Equal(t, "无名额", cell.DisplayText)
	assert.Equal(t, "有名额", cell.ChangeText)
	assert.Equal(t, model.ClassAdvance, cell.ChangeClass)
}

func TestAggregate_MissingTableStaysEmpty(t *testing.T) {
	out := Aggregate([]model.RawBulletinRow{
		row("EB3", model.RegionChina, model.TableB, strPtr("2021-01-01"), nil, model.StatusUnchanged),
	})

	require.Len(t, out, 1)
	assert.Equal(t, model.TableCell{}, out[0].TableA)
	assert.Equal(t, "", out[0].TableA.DisplayText)
	assert.Equal(t, "2021-01-01", out[0].TableB.DisplayText)
}

func TestAggregate_FirstSeenOrderAndCompleteness(t *testing.T) {
	out := Aggregate(sampleSnapshot())

	var keys []string
	for _, r := range out {
		keys = append(keys, r.CategoryCode+"/"+string(r.RegionCode))
	}
	assert.Equal(t, []string{"EB2/cn", "F1/cn", "EB1/rw", "EB2/rw"}, keys)
}

func TestAggregate_Idempotent(t *testing.T) {
	rows := sampleSnapshot()
	assert.Equal(t, Aggregate(rows), Aggregate(rows))
}

func TestAggregate_DoesNotAliasInput(t *testing.T) {
	rows := sampleSnapshot()
	out := Aggregate(rows)

	*rows[0].PriorityDate = "1999-01-01"

	require.NotNil(t, out[0].TableA.PriorityDate)
	assert.Equal(t, "2019-05-01", *out[0].TableA.PriorityDate)
}

func TestAggregate_MalformedRowDegrades(t *testing.T) {
	out := Aggregate([]model.RawBulletinRow{{CategoryCode: "EB5"}})

	require.Len(t, out, 1)
	// An empty table type falls into table B.
	assert.Equal(t, "无名额", out[0].TableB.DisplayText)
	assert.Equal(t, "无变化", out[0].TableB.ChangeText)
	assert.Equal(t, model.TableCell{}, out[0].TableA)
}

func TestAggregate_Empty(t *testing.T) {
	assert.Empty(t, Aggregate(nil))
}

func TestSplitByTypeAndFilterRegion(t *testing.T) {
	out := Aggregate(sampleSnapshot())

	employment, family := SplitByType(out)
	assert.Len(t, employment, 3)
	require.Len(t, family, 1)
	assert.Equal(t, "F1", family[0].CategoryCode)

	china := FilterRegion(out, model.RegionChina)
	require.Len(t, china, 2)
	assert.Equal(t, "EB2", china[0].CategoryCode)
	assert.Equal(t, "F1", china[1].CategoryCode)
}
