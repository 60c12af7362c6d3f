package render

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatLongDate(t *testing.T) {
	cases := []struct {
		date time.Time
		want string
	}{
		{time.Date(2006, time.January, 2, 0, 0, 0, 0, time.UTC), "2 de enero de 2006"},
		{time.Date(2024, time.September, 15, 12, 30, 0, 0, time.UTC), "15 de septiembre de 2024"},
		{time.Date(2025, time.December, 31, 0, 0, 0, 0, time.UTC), "31 de diciembre de 2025"},
		{time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC), "1 de abril de 2025"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, FormatLongDate(tc.date))
	}
}

func TestFormatDurationHours(t *testing.T) {
	assert.Equal(t, "08", FormatDurationHours(8))
	assert.Equal(t, "02", FormatDurationHours(1.5))
	assert.Equal(t, "01", FormatDurationHours(1.4))
	assert.Equal(t, "12", FormatDurationHours(12))
	assert.Equal(t, "00", FormatDurationHours(0))
}
