package util

import (
	"fmt"
	"time"
)

// Tail returns the last n bytes of s, prefixed with a marker when s was cut.
func Tail(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	return fmt.Sprintf("[%d bytes truncated]\n%s", len(s)-n, s[len(s)-n:])
}

// Truncate cuts s to n runes, ending with "..." when it was cut.
func Truncate(s string, n int) string {
	r := []rune(s)
	if n <= 3 || len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// FormatDuration rounds d for display: milliseconds under a second, tenths of
// a second above.
func FormatDuration(d time.Duration) string {
	if d < time.Second {
		return d.Round(time.Millisecond).String()
	}
	return d.Round(100 * time.Millisecond).String()
}

// TimePtr returns a pointer to t, nil for the zero time.
func TimePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
