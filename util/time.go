package util

import (
	"fmt"
	"time"
)

// Timestamp layouts accepted from API clients. RFC 3339 with seconds is the
// documented form; the fractional and numeric-offset variants show up from
// real clients often enough to tolerate.
const (
	ISO8601_sec         = "2006-01-02T15:04:05Z"
	ISO8601_milli       = "2006-01-02T15:04:05.000Z"
	ISO8601_micro       = "2006-01-02T15:04:05.000000Z"
	ISO8601_numtz_sec   = "2006-01-02T15:04:05-07:00"
	ISO8601_numtz_milli = "2006-01-02T15:04:05.000-07:00"
	ISO8601_numtz_micro = "2006-01-02T15:04:05.000000-07:00"
)

// ParseTimestamp parses a client-supplied timestamp string, trying each
// accepted layout in turn.
func ParseTimestamp(s string) (time.Time, error) {
	layouts := []string{
		ISO8601_sec,
		ISO8601_milli,
		ISO8601_micro,
		ISO8601_numtz_sec,
		ISO8601_numtz_milli,
		ISO8601_numtz_micro,
	}
	for _, layout := range layouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("failed to parse %q as timestamp", s)
}
