package bulletin

import (
	"fmt"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// inputLayouts are the shapes a priority date arrives in: plain dates from
// JSON imports and RFC 3339 from lib/pq when a DATE column is scanned as text.
var inputLayouts = []string{
	dateLayout,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01",
}

// ParseDate parses a priority date or bulletin month. ok is false for nil,
// empty or malformed input.
func ParseDate(s *string) (t time.Time, ok bool) {
	if s == nil {
		return time.Time{}, false
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return time.Time{}, false
	}
	for _, layout := range inputLayouts {
		if parsed, err := time.Parse(layout, v); err == nil {
			return parsed, true
		}
	}
	return time.Time{}, false
}

// FormatDate renders a priority date as YYYY-MM-DD. A missing or malformed
// date renders as TextUnavailable even when the row's status is current;
// the change annotation is what tells the two apart.
func FormatDate(date *string) string {
	t, ok := ParseDate(date)
	if !ok {
		return TextUnavailable
	}
	return t.Format(dateLayout)
}

// FormatMonth renders a bulletin month as "2024年1月". Unparsable input is
// returned unchanged.
func FormatMonth(month string) string {
	t, ok := ParseDate(&month)
	if !ok {
		return month
	}
	return fmt.Sprintf("%d年%d月", t.Year(), int(t.Month()))
}
