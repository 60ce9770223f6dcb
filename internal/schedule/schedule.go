// Package schedule turns a challenge date range and a weekly pattern into
// the ordered list of days the challenge runs on.
package schedule

import (
	"time"

	"zealAPI/internal/clock"
	"zealAPI/internal/types/challenge"
)

// Build walks start..end inclusive one calendar day at a time. Week numbers
// start at 1 and advance on every Monday after the start date.
// Days are cut at midnight in loc, the zone completions are later matched in,
// whatever offset the caller sent the range with. A nil loc keeps start's zone.
func Build(start, end time.Time, pattern []challenge.WeekdayPattern, loc *time.Location) []challenge.ActiveDay {
	if loc == nil {
		loc = start.Location()
	}
	start = clock.StartOfDay(start.In(loc))
	end = clock.StartOfDay(end.In(loc))
	if start.After(end) {
		return []challenge.ActiveDay{}
	}

	byDay := make(map[string]challenge.WeekdayPattern, len(pattern))
	for _, p := range pattern {
		byDay[challenge.NormalizeDay(p.Day)] = p
	}

	days := make([]challenge.ActiveDay, 0, int(end.Sub(start).Hours()/24)+1)
	week := 1
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if d.After(start) && d.Weekday() == time.Monday {
			week++
		}

		name := d.Weekday().String()
		p, ok := byDay[challenge.NormalizeDay(name)]
		if !ok {
			continue
		}

		days = append(days, challenge.ActiveDay{
			Day:        name,
			IsActive:   p.IsActive,
			Date:       d,
			WeekNumber: week,
		})
	}

	return days
}

// FullWeek returns a pattern with every weekday set to active.
func FullWeek() []challenge.WeekdayPattern {
	pattern := make([]challenge.WeekdayPattern, 0, 7)
	for d := time.Sunday; d <= time.Saturday; d++ {
		pattern = append(pattern, challenge.WeekdayPattern{Day: d.String(), IsActive: true})
	}
	return pattern
}
