package portal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWithinWindow(t *testing.T) {
	now := time.Date(2025, time.June, 10, 12, 0, 0, 0, time.UTC)

	assert.True(t, withinWindow(now.AddDate(0, 0, -6), now, 7))
	assert.True(t, withinWindow(now.AddDate(0, 0, -7), now, 7), "exactly the window edge is still visible")
	assert.False(t, withinWindow(now.Add(-7*24*time.Hour-time.Second), now, 7))
	assert.False(t, withinWindow(now.AddDate(0, 0, -8), now, 7))
	assert.True(t, withinWindow(now, now, 7))
}
