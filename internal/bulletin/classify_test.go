package bulletin

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jjenkins/visabulletin/internal/model"
)

func intPtr(v int) *int { return &v }

func strPtr(s string) *string { return &s }

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		days   *int
		status model.ChangeStatus
		want   Change
	}{
		{"advanced", intPtr(30), model.StatusAdvanced, Change{"前进30天", model.ClassAdvance}},
		{"retrogressed", intPtr(-15), model.StatusRetrogressed, Change{"后退15天", model.ClassRetrogress}},
		{"nil delta", nil, model.StatusUnchanged, Change{"无变化", model.ClassNeutral}},
		{"zero delta", intPtr(0), model.StatusAdvanced, Change{"无变化", model.ClassNeutral}},
		{"current ignores delta", intPtr(-90), model.StatusCurrent, Change{"有名额", model.ClassAdvance}},
		{"unavailable ignores delta", intPtr(45), model.StatusUnavailable, Change{"无名额", model.ClassNeutral}},
		{"unknown status uses delta", intPtr(7), model.ChangeStatus(""), Change{"前进7天", model.ClassAdvance}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.days, tt.status))
		})
	}
}

func TestClassify_StatusOverridesAnyDelta(t *testing.T) {
	for _, days := range []*int{nil, intPtr(0), intPtr(1), intPtr(-1), intPtr(3650)} {
		assert.Equal(t, Change{TextCurrent, model.ClassAdvance}, Classify(days, model.StatusCurrent))
		assert.Equal(t, Change{TextUnavailable, model.ClassNeutral}, Classify(days, model.StatusUnavailable))
	}
}

func TestClassify_DeltaTextForDirectionalStatuses(t *testing.T) {
	statuses := []model.ChangeStatus{model.StatusAdvanced, model.StatusRetrogressed, model.StatusUnchanged}
	for _, status := range statuses {
		for _, n := range []int{1, 31, 400} {
			assert.Equal(t, "前进"+strconv.Itoa(n)+"天", Classify(intPtr(n), status).Text)
			assert.Equal(t, "后退"+strconv.Itoa(n)+"天", Classify(intPtr(-n), status).Text)
		}
	}
}
