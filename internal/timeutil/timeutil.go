// Package timeutil converts between calendar dates, unix timestamps and the
// clock/offset strings used in export rows and file names.
package timeutil

import (
	"fmt"
	"time"
)

// DateToUnix converts a calendar date to the unix timestamp of local
// midnight on that date.
func DateToUnix(year int, month time.Month, day int) int64 {
	return time.Date(year, month, day, 0, 0, 0, 0, time.Local).Unix()
}

// UnixToDate formats a unix timestamp as the local calendar date YYYY-MM-DD.
func UnixToDate(ts int64) string {
	return time.Unix(ts, 0).Local().Format("2006-01-02")
}

// UnixToClock formats a unix timestamp as the local wall clock HH:MM:SS.
func UnixToClock(ts int64) string {
	return time.Unix(ts, 0).Local().Format("15:04:05")
}

// SecondsToTimestamp formats a duration in seconds as zero-padded MM:SS.
// Minutes are not rolled over into hours, so durations of 100 minutes or
// more produce a 3+ digit minutes field rather than an error.
func SecondsToTimestamp(seconds int) string {
	mm := seconds / 60
	ss := seconds % 60
	return fmt.Sprintf("%02d:%02d", mm, ss)
}

// ParseDate parses a YYYY-MM-DD string in the local time zone.
func ParseDate(value string) (time.Time, error) {
	t, err := time.ParseInLocation("2006-01-02", value, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD): %w", value, err)
	}
	return t, nil
}
