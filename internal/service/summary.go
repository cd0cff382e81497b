package service

import (
	"github.com/jjenkins/visabulletin/internal/bulletin"
	"github.com/jjenkins/visabulletin/internal/model"
)

// SnapshotSummary counts the movements in a latest snapshot
type SnapshotSummary struct {
	Categories   int
	Rows         int
	Cells        int
	Advanced     int
	Retrogressed int
	Unchanged    int
	Current      int
	Unavailable  int
}

// Summarize counts categories and cell movements across both tables
func Summarize(rows []model.DisplayRow) SnapshotSummary {
	s := SnapshotSummary{Rows: len(rows)}
	codes := make(map[string]struct{})

	for _, r := range rows {
		codes[r.CategoryCode] = struct{}{}
		for _, cell := range []model.TableCell{r.TableA, r.TableB} {
			if cell.ChangeClass == "" {
				continue
			}
			s.Cells++
			switch {
			case cell.ChangeText == bulletin.TextCurrent:
				s.Current++
			case cell.ChangeText == bulletin.TextUnavailable:
				s.Unavailable++
			case cell.ChangeText == bulletin.TextUnchanged:
				s.Unchanged++
			case cell.ChangeClass == model.ClassAdvance:
				s.Advanced++
			case cell.ChangeClass == model.ClassRetrogress:
				s.Retrogressed++
			}
		}
	}

	s.Categories = len(codes)
	return s
}
