// Package daterange computes calendar-day boundaries for the dashboard ranges.
//
// Every function takes an explicit reference time; callers take "now" only at
// the outermost call site. Days follow the reference time's location, so a
// server running in UTC and a client in another zone can disagree about which
// day "today" is.
package daterange

import (
	"time"
)

// Layout is the canonical wire format for dates.
const Layout = "2006-01-02"

// WeekLength is the size of the rolling week windows.
const WeekLength = 7

// Window is an inclusive span of calendar days.
type Window struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

func (w Window) String() string {
	return w.StartDate + ".." + w.EndDate
}

// Format renders t as YYYY-MM-DD in t's location.
func Format(t time.Time) string {
	return t.Format(Layout)
}

// Parse reads a YYYY-MM-DD string in loc.
func Parse(value string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	return time.ParseInLocation(Layout, value, loc)
}

// StartOfDay truncates t to midnight of its own calendar day.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// AddDays moves by whole calendar days. time.Date normalizes overflow, so
// month and year boundaries and DST shifts need no special casing.
func AddDays(t time.Time, days int) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day()+days, 0, 0, 0, 0, t.Location())
}

func Today(ref time.Time) string {
	return Format(StartOfDay(ref))
}

func Yesterday(ref time.Time) string {
	return Format(AddDays(ref, -1))
}

// ThisWeekAndLastWeek returns two adjacent rolling 7-day windows: the current
// one ends on ref, the previous one ends the day before the current one starts.
// These are not calendar weeks.
func ThisWeekAndLastWeek(ref time.Time) (current, previous Window) {
	current = Window{
		StartDate: Format(AddDays(ref, -(WeekLength - 1))),
		EndDate:   Format(StartOfDay(ref)),
	}
	previous = Window{
		StartDate: Format(AddDays(ref, -(2*WeekLength - 1))),
		EndDate:   Format(AddDays(ref, -WeekLength)),
	}
	return current, previous
}

// MonthOf returns the calendar year and month (1-12) of ref.
func MonthOf(ref time.Time) (year, month int) {
	return ref.Year(), int(ref.Month())
}

// MonthToDate spans the first of ref's month through ref.
func MonthToDate(ref time.Time) Window {
	first := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, ref.Location())
	return Window{StartDate: Format(first), EndDate: Format(StartOfDay(ref))}
}

// Ordered reports whether start is on or before end. Both must already be
// valid YYYY-MM-DD strings; lexical order matches calendar order for them.
func Ordered(start, end string) bool {
	return start <= end
}
