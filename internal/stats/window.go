package stats

import "time"

// Window is a named, fixed-definition time range over PR creation dates.
type Window struct {
	// Name identifies the window in the report artifact.
	Name string
	// Days bounds the window to created_at >= now - Days; 0 means unbounded.
	Days int
}

// Windows is the fixed set of report windows.
var Windows = []Window{
	{Name: "7d", Days: 7},
	{Name: "30d", Days: 30},
	{Name: "90d", Days: 90},
	{Name: "overall", Days: 0},
}

// WindowNames returns the window names in report order.
func WindowNames() []string {
	names := make([]string, 0, len(Windows))
	for _, w := range Windows {
		names = append(names, w.Name)
	}
	return names
}

// Start returns the window's lower bound. Unbounded windows have none.
func (w Window) Start(now time.Time) (time.Time, bool) {
	if w.Days <= 0 {
		return time.Time{}, false
	}
	return now.AddDate(0, 0, -w.Days), true
}

// Contains reports whether a creation instant falls inside the window.
func (w Window) Contains(createdAt, now time.Time) bool {
	start, bounded := w.Start(now)
	if !bounded {
		return true
	}
	return !createdAt.Before(start)
}
