package bulletin

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatDate(t *testing.T) {
	tests := []struct {
		name string
		in   *string
		want string
	}{
		{"nil", nil, "无名额"},
		{"empty", strPtr(""), "无名额"},
		{"malformed", strPtr("not-a-date"), "无名额"},
		{"plain date", strPtr("2019-05-01"), "2019-05-01"},
		{"rfc3339 from postgres", strPtr("2020-01-01T00:00:00Z"), "2020-01-01"},
		{"padded", strPtr(" 2021-12-08 "), "2021-12-08"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatDate(tt.in))
		})
	}
}

func TestFormatMonth(t *testing.T) {
	assert.Equal(t, "2024年1月", FormatMonth("2024-01-01"))
	assert.Equal(t, "2023年11月", FormatMonth("2023-11"))
	assert.Equal(t, "garbage", FormatMonth("garbage"))
}
