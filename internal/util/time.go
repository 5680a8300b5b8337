package util

import (
	"fmt"
	"strconv"
	"time"
)

// ParseNano parses a backend timestamp given as a decimal string of
// nanoseconds since the epoch.
func ParseNano(value string) (int64, error) {
	ns, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid nanosecond timestamp %q: %w", value, err)
	}
	return ns, nil
}

// FormatMillis renders a nanosecond timestamp for display, truncated to
// millisecond precision, in UTC.
func FormatMillis(ns int64) string {
	return time.Unix(0, ns).UTC().Format("2006-01-02T15:04:05.000Z")
}

// Window returns the [start, end] nanosecond bounds of a tail window
// ending at now.
func Window(now time.Time, windowSec int) (int64, int64) {
	end := now.UnixNano()
	start := now.Add(-time.Duration(windowSec) * time.Second).UnixNano()
	return start, end
}
