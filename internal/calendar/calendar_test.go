package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDayKeySameDayDifferentTimes(t *testing.T) {
	morning := time.Date(2025, time.March, 14, 0, 0, 1, 0, time.UTC)
	night := time.Date(2025, time.March, 14, 23, 59, 59, 0, time.UTC)

	a, err := DayKeyOf(morning, time.UTC)
	require.NoError(t, err)
	b, err := DayKeyOf(night, time.UTC)
	require.NoError(t, err)

	require.Equal(t, a, b)
}

func TestDayKeyConsecutiveDaysDifferByOne(t *testing.T) {
	day := time.Date(2025, time.December, 31, 12, 0, 0, 0, time.UTC)
	next := day.AddDate(0, 0, 1)

	a, err := DayKeyOf(day, time.UTC)
	require.NoError(t, err)
	b, err := DayKeyOf(next, time.UTC)
	require.NoError(t, err)

	require.Equal(t, a.Next(), b)
	require.Equal(t, b.Prev(), a)
}

func TestDayKeyRespectsLocation(t *testing.T) {
	// 2025-03-14 23:30 UTC is already 2025-03-15 in Tokyo.
	at := time.Date(2025, time.March, 14, 23, 30, 0, 0, time.UTC)
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)

	utcKey, err := DayKeyOf(at, time.UTC)
	require.NoError(t, err)
	tokyoKey, err := DayKeyOf(at, tokyo)
	require.NoError(t, err)

	require.Equal(t, utcKey.Next(), tokyoKey)
}

func TestDayKeyRejectsZeroInstant(t *testing.T) {
	_, err := DayKeyOf(time.Time{}, time.UTC)
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = DayKeyOf(time.Now(), nil)
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestWeekWindow(t *testing.T) {
	cases := []struct {
		name      string
		at        time.Time
		wantStart time.Time
	}{
		{
			name:      "wednesday maps to preceding monday",
			at:        time.Date(2025, time.June, 11, 15, 0, 0, 0, time.UTC),
			wantStart: time.Date(2025, time.June, 9, 0, 0, 0, 0, time.UTC),
		},
		{
			name:      "monday starts its own week",
			at:        time.Date(2025, time.June, 9, 0, 0, 0, 0, time.UTC),
			wantStart: time.Date(2025, time.June, 9, 0, 0, 0, 0, time.UTC),
		},
		{
			name:      "sunday closes the current week",
			at:        time.Date(2025, time.June, 15, 23, 0, 0, 0, time.UTC),
			wantStart: time.Date(2025, time.June, 9, 0, 0, 0, 0, time.UTC),
		},
		{
			name:      "window crosses a month boundary",
			at:        time.Date(2024, time.October, 30, 9, 0, 0, 0, time.UTC),
			wantStart: time.Date(2024, time.October, 28, 0, 0, 0, 0, time.UTC),
		},
		{
			name:      "window crosses a year boundary",
			at:        time.Date(2024, time.December, 31, 9, 0, 0, 0, time.UTC),
			wantStart: time.Date(2024, time.December, 30, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			start, end, err := WeekWindow(tc.at, time.UTC)
			require.NoError(t, err)
			require.Equal(t, tc.wantStart, start)
			require.Equal(t, time.Monday, start.Weekday())
			require.Equal(t, time.Sunday, end.Weekday())
			require.Equal(t, tc.wantStart.AddDate(0, 0, 7).Add(-time.Nanosecond), end)
			require.False(t, start.After(tc.at))
			require.False(t, end.Before(tc.at))
		})
	}
}

func TestWeekWindowOctoberMonthBoundaryDays(t *testing.T) {
	start, end, err := WeekWindow(time.Date(2024, time.October, 30, 12, 0, 0, 0, time.UTC), time.UTC)
	require.NoError(t, err)
	require.Equal(t, 28, start.Day())
	require.Equal(t, time.October, start.Month())
	require.Equal(t, 3, end.Day())
	require.Equal(t, time.November, end.Month())
}

func TestWeekWindowRejectsZeroInstant(t *testing.T) {
	_, _, err := WeekWindow(time.Time{}, time.UTC)
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestDayWindowBounds(t *testing.T) {
	at := time.Date(2025, time.February, 28, 17, 45, 0, 0, time.UTC)
	start, end, err := DayWindow(at, time.UTC)
	require.NoError(t, err)
	require.Equal(t, time.Date(2025, time.February, 28, 0, 0, 0, 0, time.UTC), start)
	require.Equal(t, start.AddDate(0, 0, 1).Add(-time.Nanosecond), end)
	// Non leap year: the next instant is March 1st.
	require.Equal(t, time.March, end.Add(time.Nanosecond).Month())
}

func TestDayKeyTimeRoundTrip(t *testing.T) {
	at := time.Date(2025, time.July, 4, 21, 12, 0, 0, time.UTC)
	key, err := DayKeyOf(at, time.UTC)
	require.NoError(t, err)

	startOfDay := key.Time(time.UTC)
	require.Equal(t, time.Date(2025, time.July, 4, 0, 0, 0, 0, time.UTC), startOfDay)

	again, err := DayKeyOf(startOfDay, time.UTC)
	require.NoError(t, err)
	require.Equal(t, key, again)
}
