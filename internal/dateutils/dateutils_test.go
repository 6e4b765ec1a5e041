package dateutils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSwissDate(t *testing.T) {
	tests := []struct {
		name      string
		dateStr   string
		expectErr bool
		expectedY int
		expectedM time.Month
		expectedD int
	}{
		{"two-digit day and month", "31.12.2023", false, 2023, time.December, 31},
		{"single-digit day and month", "1.2.2024", false, 2024, time.February, 1},
		{"zero padded", "05.03.2024", false, 2024, time.March, 5},
		{"ISO rejected", "2023-12-31", true, 0, 0, 0},
		{"slashes rejected", "31/12/2023", true, 0, 0, 0},
		{"surrounding space rejected", " 31.12.2023", true, 0, 0, 0},
		{"impossible day", "32.01.2024", true, 0, 0, 0},
		{"empty", "", true, 0, 0, 0},
		{"merchant text", "MIGROS LAUSANNE", true, 0, 0, 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			date, err := ParseSwissDate(tc.dateStr)
			if tc.expectErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expectedY, date.Year())
			assert.Equal(t, tc.expectedM, date.Month())
			assert.Equal(t, tc.expectedD, date.Day())
		})
	}
}

func TestParseTimestamp(t *testing.T) {
	ts, err := ParseTimestamp("2024-01-15 10:30:45")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, time.January, 15, 10, 30, 45, 0, time.UTC), ts)

	_, err = ParseTimestamp("2024-01-15")
	assert.Error(t, err)

	_, err = ParseTimestamp("15.01.2024 10:30:45")
	assert.Error(t, err)
}

func TestTruncateToDay(t *testing.T) {
	ts := time.Date(2024, time.January, 15, 23, 59, 59, 0, time.UTC)
	assert.Equal(t, time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC), TruncateToDay(ts))

	zurich := time.FixedZone("CET", 3600)
	late := time.Date(2024, time.January, 15, 0, 30, 0, 0, zurich)
	assert.Equal(t, time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC), TruncateToDay(late))
}

func TestToISODate(t *testing.T) {
	date, err := ParseSwissDate("31.12.2023")
	require.NoError(t, err)
	assert.Equal(t, "2023-12-31", ToISODate(date))

	date, err = ParseSwissDate("1.2.2024")
	require.NoError(t, err)
	assert.Equal(t, "2024-02-01", ToISODate(date))
}
