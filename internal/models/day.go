// ABOUTME: Calendar day type used for daily buckets and quest gating.
// ABOUTME: Days are YYYY-MM-DD strings computed in a configurable location.
package models

import "time"

// DayLayout is the layout used to format a Day.
const DayLayout = "2006-01-02"

// Day is a calendar date in YYYY-MM-DD form.
type Day string

// DayOf returns the calendar day containing t in loc.
// A nil loc means the local time zone.
func DayOf(t time.Time, loc *time.Location) Day {
	if loc == nil {
		loc = time.Local
	}
	return Day(t.In(loc).Format(DayLayout))
}

// Start returns midnight at the beginning of the day in loc.
func (d Day) Start(loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	return time.ParseInLocation(DayLayout, string(d), loc)
}

// Next returns the following calendar day.
func (d Day) Next() Day {
	t, err := time.Parse(DayLayout, string(d))
	if err != nil {
		return d
	}
	return Day(t.AddDate(0, 0, 1).Format(DayLayout))
}

// Valid reports whether d parses as a calendar date.
func (d Day) Valid() bool {
	_, err := time.Parse(DayLayout, string(d))
	return err == nil
}

func (d Day) String() string {
	return string(d)
}
