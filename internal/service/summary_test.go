package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jjenkins/visabulletin/internal/bulletin"
	"github.com/jjenkins/visabulletin/internal/model"
)

func TestSummarize(t *testing.T) {
	rows := bulletin.Aggregate([]model.RawBulletinRow{
		{CategoryCode: "EB2", RegionCode: model.RegionChina, TableType: model.TableA, ChangeDays: intPtr(30), ChangeStatus: model.StatusAdvanced},
		{CategoryCode: "EB2", RegionCode: model.RegionChina, TableType: model.TableB, ChangeDays: intPtr(-15), ChangeStatus: model.StatusRetrogressed},
		{CategoryCode: "EB2", RegionCode: model.RegionRestOfWorld, TableType: model.TableA, ChangeStatus: model.StatusUnchanged},
		{CategoryCode: "EB1", RegionCode: model.RegionRestOfWorld, TableType: model.TableA, ChangeStatus: model.StatusCurrent},
		{CategoryCode: "EB5", RegionCode: model.RegionChina, TableType: model.TableB, ChangeStatus: model.StatusUnavailable},
	})

	got := Summarize(rows)

	assert.Equal(t, SnapshotSummary{
		Categories:   3,
		Rows:         4,
		Cells:        5,
		Advanced:     1,
		Retrogressed: 1,
		Unchanged:    1,
		Current:      1,
		Unavailable:  1,
	}, got)
}
