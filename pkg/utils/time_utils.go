package utils

import "time"

// Clock is swapped out in tests.
type Clock func() time.Time

func SystemClock() time.Time { return time.Now() }

// ElapsedSeconds is the whole seconds between start and now, never negative.
func ElapsedSeconds(start, now time.Time) int {
	d := now.Sub(start)
	if d < 0 {
		return 0
	}
	return int(d / time.Second)
}

func FormatRFC3339(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
