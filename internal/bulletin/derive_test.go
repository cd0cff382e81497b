package bulletin

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jjenkins/visabulletin/internal/model"
)

func TestDeriveChange(t *testing.T) {
	tests := []struct {
		name       string
		prev, cur  *string
		wantDays   *int
		wantStatus model.ChangeStatus
	}{
		{"advanced", strPtr("2019-05-01"), strPtr("2019-05-31"), intPtr(30), model.StatusAdvanced},
		{"retrogressed", strPtr("2020-01-16"), strPtr("2020-01-01"), intPtr(-15), model.StatusRetrogressed},
		{"same date", strPtr("2020-01-01"), strPtr("2020-01-01"), intPtr(0), model.StatusUnchanged},
		{"no current date", strPtr("2020-01-01"), nil, nil, model.StatusCurrent},
		{"no previous date", nil, strPtr("2020-01-01"), nil, model.StatusUnchanged},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			days, status := DeriveChange(tt.prev, tt.cur)
			assert.Equal(t, tt.wantDays, days)
			assert.Equal(t, tt.wantStatus, status)
		})
	}
}

func TestFillChange(t *testing.T) {
	prev := model.RawBulletinRow{PriorityDate: strPtr("2019-05-01"), ChangeStatus: model.StatusUnchanged}

	t.Run("explicit status kept", func(t *testing.T) {
		r := model.RawBulletinRow{PriorityDate: strPtr("2019-06-01"), ChangeStatus: model.StatusUnavailable}
		assert.Equal(t, r, FillChange(r, &prev))
	})

	t.Run("derived from previous", func(t *testing.T) {
		r := FillChange(model.RawBulletinRow{PriorityDate: strPtr("2019-05-31")}, &prev)
		require.NotNil(t, r.ChangeDays)
		assert.Equal(t, 30, *r.ChangeDays)
		assert.Equal(t, model.StatusAdvanced, r.ChangeStatus)
	})

	t.Run("unavailable predecessor is not a baseline", func(t *testing.T) {
		gone := model.RawBulletinRow{PriorityDate: strPtr("2010-01-01"), ChangeStatus: model.StatusUnavailable}
		r := FillChange(model.RawBulletinRow{PriorityDate: strPtr("2019-05-31")}, &gone)
		assert.Nil(t, r.ChangeDays)
		assert.Equal(t, model.StatusUnchanged, r.ChangeStatus)
	})

	t.Run("first month", func(t *testing.T) {
		r := FillChange(model.RawBulletinRow{PriorityDate: strPtr("2019-05-31")}, nil)
		assert.Equal(t, model.StatusUnchanged, r.ChangeStatus)
	})
}
