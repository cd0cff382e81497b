// Package bulletin turns raw visa bulletin rows into display tables and
// trend series. Everything here is a pure transform over in-memory data.
package bulletin

import (
	"fmt"

	"github.com/jjenkins/visabulletin/internal/model"
)

// Labels shown to users
const (
	TextCurrent     = "有名额"
	TextUnavailable = "无名额"
	TextUnchanged   = "无变化"
)

// Change is the presentation of a month over month movement
type Change struct {
	Text  string
	Class model.ChangeClass
}

// Classify maps a day delta and status to a direction label and style class.
// Status current and unavailable win over any delta.
func Classify(changeDays *int, status model.ChangeStatus) Change {
	switch status {
	case model.StatusCurrent:
		return Change{Text: TextCurrent, Class: model.ClassAdvance}
	case model.StatusUnavailable:
		return Change{Text: TextUnavailable, Class: model.ClassNeutral}
	}

	if changeDays == nil || *changeDays == 0 {
		return Change{Text: TextUnchanged, Class: model.ClassNeutral}
	}

	days := *changeDays
	if days > 0 {
		return Change{Text: fmt.Sprintf("前进%d天", days), Class: model.ClassAdvance}
	}
	return Change{Text: fmt.Sprintf("后退%d天", -days), Class: model.ClassRetrogress}
}
