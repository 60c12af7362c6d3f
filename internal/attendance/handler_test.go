package attendance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectAttendees(t *testing.T) {
	qualified := []Attendee{
		{FullName: "Ana García", Email: "ana@example.com", Institution: "Hospital General", Minutes: 35},
		{FullName: "Eva Ruiz", Email: "eva@example.com", Minutes: 60},
	}

	all := selectAttendees(qualified, nil)
	require.Len(t, all, 2)
	assert.Equal(t, "Hospital General", all[0].Institution)

	subset := selectAttendees(qualified, []string{" EVA@example.com "})
	require.Len(t, subset, 1)
	assert.Equal(t, "eva@example.com", subset[0].Email)

	none := selectAttendees(qualified, []string{"nobody@example.com"})
	assert.Empty(t, none)
}
