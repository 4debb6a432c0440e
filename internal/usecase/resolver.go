package usecase

import (
	"time"

	"jobclicks/internal/domain"
	"jobclicks/pkg/daterange"
)

// Sources are the datasets a session currently holds. Any of them may be absent.
type Sources struct {
	Summary domain.Option[domain.SummaryDataset]
	Weekly  domain.Option[domain.RollupDataset]
	Monthly domain.Option[domain.RollupDataset]
	Custom  domain.Option[domain.RollupDataset]
}

type resolveInput struct {
	selected domain.TimeRange
	src      Sources
	ref      time.Time
}

func (in resolveInput) custom() bool {
	return in.selected == domain.RangeCustomRange
}

// drillDown is the location/job-title/top-performer set; the three fields
// always come from the same source.
type drillDown struct {
	source     string
	location   map[string]int
	jobTitle   map[string]int
	performers []domain.TopPerformer
}

func drillDownOf(source string, d domain.RollupDataset) drillDown {
	return drillDown{
		source:     source,
		location:   d.LocationBreakdown,
		jobTitle:   d.JobTitleBreakdown,
		performers: d.TopPerformers,
	}
}

type totalsRule struct {
	name    string
	applies func(in resolveInput) bool
	extract func(in resolveInput) domain.MetricPair
}

type trendRule struct {
	name    string
	applies func(in resolveInput) bool
	extract func(in resolveInput) []domain.TrendPoint
}

type drillDownRule struct {
	name    string
	applies func(in resolveInput) bool
	extract func(in resolveInput) drillDown
}

// refinementRule narrows or overrides the drill-down chosen by drillDownRules.
// Every applicable refinement runs, in order.
type refinementRule struct {
	name    string
	applies func(in resolveInput, current drillDown) bool
	apply   func(in resolveInput, current drillDown) drillDown
}

// Rule names double as metric labels and Resolution values.
const (
	ruleCustom      = "custom"
	ruleSummary     = "summary"
	ruleMonthly     = "monthly"
	ruleWeekly      = "weekly"
	ruleNone        = "none"
	ruleSingleDay   = "single-day"
	ruleSummaryTops = "summary-top-performers"
)

var totalsRules = []totalsRule{
	{
		name:    ruleCustom,
		applies: resolveInput.custom,
		extract: func(in resolveInput) domain.MetricPair {
			d, _ := in.src.Custom.Get()
			return domain.MetricPair{Clicks: d.TotalClicks, UniqueURLs: d.UniqueURLs}
		},
	},
	{
		name: ruleSummary,
		applies: func(in resolveInput) bool {
			return in.src.Summary.IsPresent() && in.selected.IsPreset()
		},
		extract: func(in resolveInput) domain.MetricPair {
			s, _ := in.src.Summary.Get()
			totals, _ := s.Totals(in.selected)
			return totals
		},
	},
	{
		name:    ruleNone,
		applies: func(resolveInput) bool { return true },
		extract: func(resolveInput) domain.MetricPair { return domain.MetricPair{} },
	},
}

var trendRules = []trendRule{
	{
		name:    ruleCustom,
		applies: resolveInput.custom,
		extract: func(in resolveInput) []domain.TrendPoint {
			d, _ := in.src.Custom.Get()
			return trendOf(d.DailyBreakdown)
		},
	},
	{
		name: ruleMonthly,
		applies: func(in resolveInput) bool {
			return in.selected == domain.RangeThisMonth && in.src.Monthly.IsPresent()
		},
		extract: func(in resolveInput) []domain.TrendPoint {
			d, _ := in.src.Monthly.Get()
			return trendOf(d.DailyBreakdown)
		},
	},
	{
		// single-day ranges also chart the whole week; only the drill-down narrows
		name: ruleWeekly,
		applies: func(in resolveInput) bool {
			return in.src.Weekly.IsPresent()
		},
		extract: func(in resolveInput) []domain.TrendPoint {
			d, _ := in.src.Weekly.Get()
			return trendOf(d.DailyBreakdown)
		},
	},
	{
		name:    ruleNone,
		applies: func(resolveInput) bool { return true },
		extract: func(resolveInput) []domain.TrendPoint { return nil },
	},
}

var drillDownRules = []drillDownRule{
	{
		name:    ruleCustom,
		applies: resolveInput.custom,
		extract: func(in resolveInput) drillDown {
			d, _ := in.src.Custom.Get()
			return drillDownOf(ruleCustom, d)
		},
	},
	{
		name: ruleMonthly,
		applies: func(in resolveInput) bool {
			return in.selected == domain.RangeThisMonth && in.src.Monthly.IsPresent()
		},
		extract: func(in resolveInput) drillDown {
			d, _ := in.src.Monthly.Get()
			return drillDownOf(ruleMonthly, d)
		},
	},
	{
		name: ruleWeekly,
		applies: func(in resolveInput) bool {
			return in.src.Weekly.IsPresent()
		},
		extract: func(in resolveInput) drillDown {
			d, _ := in.src.Weekly.Get()
			return drillDownOf(ruleWeekly, d)
		},
	},
	{
		name:    ruleNone,
		applies: func(resolveInput) bool { return true },
		extract: func(resolveInput) drillDown { return drillDown{source: ruleNone} },
	},
}

var refinementRules = []refinementRule{
	{
		// A missing day keeps the week-level values rather than emptying them.
		name: ruleSingleDay,
		applies: func(in resolveInput, current drillDown) bool {
			return current.source == ruleWeekly && in.selected.IsSingleDay()
		},
		apply: func(in resolveInput, current drillDown) drillDown {
			weekly, _ := in.src.Weekly.Get()
			day, ok := weekly.DayByDate(singleDayDate(in.selected, in.ref))
			if !ok {
				return current
			}
			return drillDown{
				source:     ruleSingleDay,
				location:   day.LocationBreakdown,
				jobTitle:   day.JobTitleBreakdown,
				performers: day.TopShortCodes,
			}
		},
	},
	{
		// Summary-curated lists win for thisWeek and thisMonth only.
		name: ruleSummaryTops,
		applies: func(in resolveInput, current drillDown) bool {
			if in.custom() || in.selected.IsSingleDay() {
				return false
			}
			s, ok := in.src.Summary.Get()
			return ok && len(s.TopPerformersFor(in.selected)) > 0
		},
		apply: func(in resolveInput, current drillDown) drillDown {
			s, _ := in.src.Summary.Get()
			current.performers = s.TopPerformersFor(in.selected)
			return current
		},
	},
}

func singleDayDate(r domain.TimeRange, ref time.Time) string {
	if r == domain.RangeYesterday {
		return daterange.Yesterday(ref)
	}
	return daterange.Today(ref)
}

// Resolve projects whichever datasets are present into the view model for the
// selected range. It never fails: absent data yields zero totals and empty
// collections.
func Resolve(selected domain.TimeRange, src Sources, ref time.Time) domain.ViewModel {
	view, _ := ResolveDetailed(selected, src, ref)
	return view
}

// ResolveDetailed is Resolve plus the name of the rule that supplied each field.
func ResolveDetailed(selected domain.TimeRange, src Sources, ref time.Time) (domain.ViewModel, domain.Resolution) {
	in := resolveInput{selected: selected, src: src, ref: ref}
	var resolution domain.Resolution

	view := domain.ViewModel{Range: selected}

	for _, rule := range totalsRules {
		if rule.applies(in) {
			view.Totals = rule.extract(in)
			resolution.Totals = rule.name
			break
		}
	}

	for _, rule := range trendRules {
		if rule.applies(in) {
			view.TrendSeries = rule.extract(in)
			resolution.Trend = rule.name
			break
		}
	}

	var dd drillDown
	for _, rule := range drillDownRules {
		if rule.applies(in) {
			dd = rule.extract(in)
			break
		}
	}
	for _, rule := range refinementRules {
		if rule.applies(in, dd) {
			dd = rule.apply(in, dd)
			if rule.name == ruleSummaryTops {
				resolution.Override = rule.name
			}
		}
	}
	resolution.DrillDown = dd.source

	view.LocationBreakdown = copyCounts(dd.location)
	view.JobTitleBreakdown = copyCounts(dd.jobTitle)
	view.TopPerformers = copyPerformers(dd.performers)
	if view.TrendSeries == nil {
		view.TrendSeries = []domain.TrendPoint{}
	}

	return view, resolution
}

func trendOf(days []domain.DailyBreakdown) []domain.TrendPoint {
	points := make([]domain.TrendPoint, 0, len(days))
	for _, day := range days {
		points = append(points, domain.TrendPoint{Date: day.Date, TotalClicks: day.TotalClicks})
	}
	return points
}

func copyCounts(src map[string]int) map[string]int {
	dst := make(map[string]int, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

func copyPerformers(src []domain.TopPerformer) []domain.TopPerformer {
	dst := make([]domain.TopPerformer, len(src))
	copy(dst, src)
	return dst
}
