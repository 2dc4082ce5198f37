package dateutils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadLocation(t *testing.T) {
	loc, err := LoadLocation("")
	require.NoError(t, err)
	assert.Equal(t, time.Local, loc)

	loc, err = LoadLocation("Local")
	require.NoError(t, err)
	assert.Equal(t, time.Local, loc)

	loc, err = LoadLocation("UTC")
	require.NoError(t, err)
	assert.Equal(t, "UTC", loc.String())

	_, err = LoadLocation("Mars/Olympus_Mons")
	assert.Error(t, err)
}

func TestFormatAndParseTimestamp(t *testing.T) {
	ts := time.Date(2023, time.January, 15, 9, 5, 7, 0, time.UTC)
	s := FormatTimestamp(ts)
	assert.Equal(t, "15/01/2023 09:05:07", s)

	back, err := ParseTimestamp(" "+s+" ", time.UTC)
	require.NoError(t, err)
	assert.True(t, ts.Equal(back))

	_, err = ParseTimestamp("2023-01-15", time.UTC)
	assert.Error(t, err)
}

func TestClocks(t *testing.T) {
	pinned := time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, pinned, FixedClock(pinned)())

	now := ClockIn(time.UTC)()
	assert.Equal(t, time.UTC, now.Location())
	assert.WithinDuration(t, time.Now(), now, time.Minute)
}
