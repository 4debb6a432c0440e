package domain

import (
	"fmt"

	"jobclicks/pkg/daterange"
)

// TimeRange identifies the window the dashboard is currently showing.
type TimeRange string

const (
	RangeToday       TimeRange = "today"
	RangeYesterday   TimeRange = "yesterday"
	RangeThisWeek    TimeRange = "thisWeek"
	RangeThisMonth   TimeRange = "thisMonth"
	RangeCustomRange TimeRange = "customRange"
)

// PresetRanges are the ranges selectable from a range card.
var PresetRanges = []TimeRange{RangeToday, RangeYesterday, RangeThisWeek, RangeThisMonth}

// IsPreset reports whether r is one of the four range cards.
func (r TimeRange) IsPreset() bool {
	switch r {
	case RangeToday, RangeYesterday, RangeThisWeek, RangeThisMonth:
		return true
	}
	return false
}

// true for today and yesterday
func (r TimeRange) IsSingleDay() bool {
	return r == RangeToday || r == RangeYesterday
}

// ParseTimeRange converts a wire value into a TimeRange.
func ParseTimeRange(value string) (TimeRange, error) {
	r := TimeRange(value)
	if r.IsPreset() || r == RangeCustomRange {
		return r, nil
	}
	return "", &ValidationError{Reason: fmt.Sprintf("unknown range %q", value)}
}

type MetricPair struct {
	Clicks     int `json:"clicks"`
	UniqueURLs int `json:"uniqueUrls"`
}

// a single shortened job-posting URL ranked by clicks
type TopPerformer struct {
	ShortCode   string `json:"shortCode"`
	Clicks      int    `json:"clicks"`
	JobTitle    string `json:"jobTitle"`
	Location    string `json:"location"`
	OriginalURL string `json:"originalUrl"`
}

// DailyBreakdown is one calendar day inside a rollup.
type DailyBreakdown struct {
	Date              string         `json:"date"`
	TotalClicks       int            `json:"totalClicks"`
	UniqueURLs        int            `json:"uniqueUrls"`
	TopShortCodes     []TopPerformer `json:"topShortCodes"`
	LocationBreakdown map[string]int `json:"locationBreakdown"`
	JobTitleBreakdown map[string]int `json:"jobTitleBreakdown"`
}

// RollupDataset is the shape shared by the weekly, monthly and range endpoints.
type RollupDataset struct {
	TotalClicks       int              `json:"totalClicks"`
	UniqueURLs        int              `json:"uniqueUrls"`
	DailyBreakdown    []DailyBreakdown `json:"dailyBreakdown"`
	TopPerformers     []TopPerformer   `json:"topPerformers"`
	LocationBreakdown map[string]int   `json:"locationBreakdown"`
	JobTitleBreakdown map[string]int   `json:"jobTitleBreakdown"`
}

// DayByDate finds the breakdown entry for date. Entries are matched by value,
// never by position.
func (d RollupDataset) DayByDate(date string) (DailyBreakdown, bool) {
	for _, day := range d.DailyBreakdown {
		if day.Date == date {
			return day, true
		}
	}
	return DailyBreakdown{}, false
}

type WeekSummary struct {
	MetricPair
	TopPerformers []TopPerformer `json:"topPerformers,omitempty"`
}

type MonthSummary struct {
	MetricPair
	TopPerformers     []TopPerformer `json:"topPerformers,omitempty"`
	LocationBreakdown map[string]int `json:"locationBreakdown,omitempty"`
	JobTitleBreakdown map[string]int `json:"jobTitleBreakdown,omitempty"`
}

// SummaryDataset carries headline totals for every preset range.
type SummaryDataset struct {
	Today     MetricPair   `json:"today"`
	Yesterday MetricPair   `json:"yesterday"`
	ThisWeek  WeekSummary  `json:"thisWeek"`
	ThisMonth MonthSummary `json:"thisMonth"`
}

// Totals indexes the summary by preset range.
func (s SummaryDataset) Totals(r TimeRange) (MetricPair, bool) {
	switch r {
	case RangeToday:
		return s.Today, true
	case RangeYesterday:
		return s.Yesterday, true
	case RangeThisWeek:
		return s.ThisWeek.MetricPair, true
	case RangeThisMonth:
		return s.ThisMonth.MetricPair, true
	}
	return MetricPair{}, false
}

// TopPerformersFor returns the summary-curated list for thisWeek and thisMonth.
// Single-day ranges never carry one.
func (s SummaryDataset) TopPerformersFor(r TimeRange) []TopPerformer {
	switch r {
	case RangeThisWeek:
		return s.ThisWeek.TopPerformers
	case RangeThisMonth:
		return s.ThisMonth.TopPerformers
	}
	return nil
}

// Envelope is the {success, data} wrapper every analytics endpoint responds with.
type Envelope[T any] struct {
	Success bool   `json:"success"`
	Data    T      `json:"data"`
	Message string `json:"message,omitempty"`
}

// DateWindow is an inclusive YYYY-MM-DD span.
type DateWindow = daterange.Window

// WeekComparison pairs two adjacent rolling weeks. No deltas are computed here.
type WeekComparison struct {
	CurrentWindow  DateWindow    `json:"currentWindow"`
	PreviousWindow DateWindow    `json:"previousWindow"`
	Current        RollupDataset `json:"current"`
	Previous       RollupDataset `json:"previous"`
}
