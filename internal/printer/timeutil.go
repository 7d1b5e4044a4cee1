package printer

import (
	"fmt"
	"time"
)

// TimeAgo returns a human-readable relative time string in UTC.
// Examples: "5 seconds ago (UTC)", "2 minutes ago (UTC)", "3 hours ago (UTC)".
func TimeAgo(t time.Time) string {
	diff := time.Now().UTC().Sub(t.UTC())

	// Handle future times
	if diff < 0 {
		return "in the future (UTC)"
	}

	steps := []struct {
		below time.Duration
		unit  string
		size  time.Duration
	}{
		{time.Minute, "second", time.Second},
		{time.Hour, "minute", time.Minute},
		{24 * time.Hour, "hour", time.Hour},
	}

	for _, s := range steps {
		if diff < s.below {
			return pluralAgo(int(diff/s.size), s.unit)
		}
	}

	return pluralAgo(int(diff/(24*time.Hour)), "day")
}

func pluralAgo(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s ago (UTC)", unit)
	}
	return fmt.Sprintf("%d %ss ago (UTC)", n, unit)
}

// FormatTimestamp returns a formatted timestamp string in UTC.
// Format: "2006-01-02 15:04:05 UTC".
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02 15:04:05 UTC")
}

// FormatDuration returns a compact duration string, millisecond precision
// below one second, second precision above.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}

	if d < time.Second {
		return d.Round(time.Millisecond).String()
	}

	return d.Round(time.Second).String()
}
