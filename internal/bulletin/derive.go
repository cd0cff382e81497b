package bulletin

import (
	"github.com/jjenkins/visabulletin/internal/model"
)

// DeriveChange computes the day delta and status of a row from the previous
// month's priority date, for sources that publish dates only.
//
// A row without a date is current. A row whose predecessor has no usable
// date is unchanged with no delta, since there is nothing to measure against.
func DeriveChange(prev, cur *string) (*int, model.ChangeStatus) {
	curDate, ok := ParseDate(cur)
	if !ok {
		return nil, model.StatusCurrent
	}
	prevDate, ok := ParseDate(prev)
	if !ok {
		return nil, model.StatusUnchanged
	}

	days := int(curDate.Sub(prevDate).Hours() / 24)
	switch {
	case days > 0:
		return &days, model.StatusAdvanced
	case days < 0:
		return &days, model.StatusRetrogressed
	}
	return &days, model.StatusUnchanged
}

// FillChange sets ChangeDays and ChangeStatus on r when the source left them
// empty. Rows with an explicit status are returned untouched.
func FillChange(r model.RawBulletinRow, prev *model.RawBulletinRow) model.RawBulletinRow {
	if r.ChangeStatus != "" {
		return r
	}
	var prevDate *string
	if prev != nil && prev.ChangeStatus != model.StatusUnavailable {
		prevDate = prev.PriorityDate
	}
	r.ChangeDays, r.ChangeStatus = DeriveChange(prevDate, r.PriorityDate)
	return r
}
