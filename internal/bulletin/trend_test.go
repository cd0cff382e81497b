package bulletin

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jjenkins/visabulletin/internal/model"
)

func trendRow(month string, date *string, days *int, status model.ChangeStatus) model.RawBulletinRow {
	return model.RawBulletinRow{
		BulletinMonth: month,
		PriorityDate:  date,
		ChangeDays:    days,
		ChangeStatus:  status,
	}
}

func millis(s string) int64 {
	t, _ := time.Parse("2006-01-02", s)
	return t.UnixMilli()
}

func TestBuildTrend_ReversesToAscending(t *testing.T) {
	rows := []model.RawBulletinRow{
		trendRow("2024-03-01", strPtr("2019-07-01"), intPtr(30), model.StatusAdvanced),
		trendRow("2024-02-01", strPtr("2019-06-01"), nil, model.StatusUnchanged),
		trendRow("2024-01-01", strPtr("2019-06-01"), intPtr(-10), model.StatusRetrogressed),
	}

	points := BuildTrend(rows)

	require.Len(t, points, 3)
	assert.Equal(t, "2024年1月", points[0].MonthLabel)
	assert.Equal(t, "2024年2月", points[1].MonthLabel)
	assert.Equal(t, "2024年3月", points[2].MonthLabel)

	for i := 1; i < len(points); i++ {
		prev, _ := ParseDate(&points[i-1].BulletinMonth)
		cur, _ := ParseDate(&points[i].BulletinMonth)
		assert.False(t, cur.Before(prev), "points out of order at %d", i)
	}
}

func TestBuildTrend_PointFields(t *testing.T) {
	points := BuildTrend([]model.RawBulletinRow{
		trendRow("2024-01-01", strPtr("2019-06-01"), nil, model.StatusUnchanged),
	})

	require.Len(t, points, 1)
	p := points[0]
	require.NotNil(t, p.TimeValue)
	assert.Equal(t, millis("2019-06-01"), *p.TimeValue)
	assert.Equal(t, model.MarkerDate, p.Marker)
	assert.Equal(t, "2019-06-01", p.DisplayText)
	assert.Equal(t, 0, p.ChangeDays)
	assert.Equal(t, model.StatusUnchanged, p.Status)
}

func TestBuildTrend_Sentinels(t *testing.T) {
	points := BuildTrend([]model.RawBulletinRow{
		trendRow("2024-03-01", strPtr("2019-01-01"), intPtr(5), model.StatusUnavailable),
		trendRow("2024-02-01", nil, nil, model.StatusCurrent),
		trendRow("2024-01-01", nil, nil, model.StatusUnchanged),
	})

	require.Len(t, points, 3)

	assert.Nil(t, points[0].TimeValue)
	assert.Equal(t, "", points[0].Marker)

	require.NotNil(t, points[1].TimeValue)
	assert.Equal(t, millis("2024-02-01"), *points[1].TimeValue)
	assert.Equal(t, model.MarkerCurrent, points[1].Marker)
	assert.Equal(t, "无名额", points[1].DisplayText)

	assert.Nil(t, points[2].TimeValue)
	assert.Equal(t, model.MarkerUnavailable, points[2].Marker)
	assert.Equal(t, 5, points[2].ChangeDays)
}

func TestBuildTrend_LengthPreserved(t *testing.T) {
	for n := 0; n < 5; n++ {
		rows := make([]model.RawBulletinRow, n)
		assert.Len(t, BuildTrend(rows), n)
	}
}

func TestNewestFirst(t *testing.T) {
	points := BuildTrend([]model.RawBulletinRow{
		trendRow("2024-02-01", nil, nil, model.StatusCurrent),
		trendRow("2024-01-01", nil, nil, model.StatusCurrent),
	})

	newest := NewestFirst(points)

	assert.Equal(t, "2024-02-01", newest[0].BulletinMonth)
	assert.Equal(t, "2024-01-01", points[0].BulletinMonth, "input must not be reordered")
}

func TestSegments(t *testing.T) {
	v := int64(1)
	dated := model.TrendPoint{TimeValue: &v, Marker: model.MarkerDate}
	points := []model.TrendPoint{
		dated, dated, {Marker: model.MarkerUnavailable}, dated, {}, {},
	}

	segs := Segments(points)

	require.Len(t, segs, 2)
	assert.Equal(t, 0, segs[0].Start)
	assert.Len(t, segs[0].Points, 2)
	assert.Equal(t, 3, segs[1].Start)
	assert.Len(t, segs[1].Points, 1)
	assert.Empty(t, Segments(nil))
}

func TestSegments_CurrentMonthBreaksLine(t *testing.T) {
	points := BuildTrend([]model.RawBulletinRow{
		{BulletinMonth: "2024-03-01", PriorityDate: strPtr("2019-07-01"), ChangeStatus: model.StatusAdvanced},
		{BulletinMonth: "2024-02-01", ChangeStatus: model.StatusCurrent},
		{BulletinMonth: "2024-01-01", PriorityDate: strPtr("2019-06-01"), ChangeStatus: model.StatusUnchanged},
	})
	require.NotNil(t, points[1].TimeValue)
	require.Equal(t, model.MarkerCurrent, points[1].Marker)

	segs := Segments(points)

	require.Len(t, segs, 2)
	assert.Equal(t, 0, segs[0].Start)
	assert.Len(t, segs[0].Points, 1)
	assert.Equal(t, 2, segs[1].Start)
	assert.Len(t, segs[1].Points, 1)
	for _, seg := range segs {
		for _, p := range seg.Points {
			assert.Equal(t, model.MarkerDate, p.Marker)
		}
	}
}
