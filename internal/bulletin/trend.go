package bulletin

import (
	"slices"

	"github.com/jjenkins/visabulletin/internal/model"
)

// BuildTrend maps rows of one (category, region, table) series to chart
// points. Rows arrive newest first; the result is reversed so it reads oldest
// to newest. Every row yields exactly one point.
//
// TimeValue encoding:
//   - a parseable priority date gives its epoch millis (Marker "date")
//   - status unavailable is always nil (Marker "unavailable"), whatever date is stored
//   - status current without a date gives the bulletin month itself (Marker "current"),
//     since every earlier priority date qualifies that month
//   - anything else is nil
func BuildTrend(rows []model.RawBulletinRow) []model.TrendPoint {
	points := make([]model.TrendPoint, len(rows))
	for i, r := range rows {
		points[i] = trendPoint(r)
	}
	slices.Reverse(points)
	return points
}

func trendPoint(r model.RawBulletinRow) model.TrendPoint {
	p := model.TrendPoint{
		BulletinMonth: r.BulletinMonth,
		MonthLabel:    FormatMonth(r.BulletinMonth),
		DisplayText:   FormatDate(r.PriorityDate),
		Status:        r.ChangeStatus,
	}
	if r.ChangeDays != nil {
		p.ChangeDays = *r.ChangeDays
	}

	if r.ChangeStatus == model.StatusUnavailable {
		p.Marker = model.MarkerUnavailable
		return p
	}
	if t, ok := ParseDate(r.PriorityDate); ok {
		v := t.UnixMilli()
		p.TimeValue = &v
		p.Marker = model.MarkerDate
		return p
	}
	if r.ChangeStatus == model.StatusCurrent {
		p.Marker = model.MarkerCurrent
		if t, ok := ParseDate(&r.BulletinMonth); ok {
			v := t.UnixMilli()
			p.TimeValue = &v
		}
	}
	return p
}

// NewestFirst returns a reversed copy of points for newest-first tables
func NewestFirst(points []model.TrendPoint) []model.TrendPoint {
	out := make([]model.TrendPoint, len(points))
	copy(out, points)
	slices.Reverse(out)
	return out
}

// Segment is a run of consecutive dated points.
// Start is the index of the first point in the full series.
type Segment struct {
	Start  int
	Points []model.TrendPoint
}

// Segments splits points into runs of consecutive points with Marker "date".
// Current and unavailable months end a run even when they carry a TimeValue,
// so charts drawing one line per segment never bridge them.
func Segments(points []model.TrendPoint) []Segment {
	var segments []Segment
	start := -1
	for i, p := range points {
		if p.Marker == model.MarkerDate && p.TimeValue != nil {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			segments = append(segments, Segment{Start: start, Points: points[start:i]})
			start = -1
		}
	}
	if start >= 0 {
		segments = append(segments, Segment{Start: start, Points: points[start:]})
	}
	return segments
}
