package domain

import "time"

// TrendPoint is one day of the trend chart.
type TrendPoint struct {
	Date        string `json:"date"`
	TotalClicks int    `json:"totalClicks"`
}

// ViewModel is the single input consumed by charts, tables and exports.
// Consumers must treat every map and slice as a read-only snapshot.
type ViewModel struct {
	Range             TimeRange      `json:"range"`
	Totals            MetricPair     `json:"totals"`
	TopPerformers     []TopPerformer `json:"topPerformers"`
	LocationBreakdown map[string]int `json:"locationBreakdown"`
	JobTitleBreakdown map[string]int `json:"jobTitleBreakdown"`
	TrendSeries       []TrendPoint   `json:"trendSeries"`
}

// Resolution records which rule supplied each field group.
type Resolution struct {
	Totals    string `json:"totals"`
	Trend     string `json:"trend"`
	DrillDown string `json:"drillDown"`
	Override  string `json:"override,omitempty"`
}

type SlotState string

const (
	SlotIdle    SlotState = "idle"
	SlotLoading SlotState = "loading"
	SlotReady   SlotState = "ready"
	SlotFailed  SlotState = "failed"
)

// SlotStatus is the per-dataset load state shown as an inline "could not load".
type SlotStatus struct {
	State     SlotState  `json:"state"`
	Error     string     `json:"error,omitempty"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

type CustomRangeState string

const (
	CustomInactive CustomRangeState = "inactive"
	CustomActive   CustomRangeState = "active"
)

// CustomRangeStatus describes the custom range state machine.
type CustomRangeStatus struct {
	State  CustomRangeState `json:"state"`
	Window *DateWindow      `json:"window,omitempty"`
	Error  string           `json:"error,omitempty"`
}

// DashboardState is what a session exposes to the presentation layer.
type DashboardState struct {
	SessionID     string                `json:"sessionId"`
	SelectedRange TimeRange             `json:"selectedRange"`
	LastPreset    TimeRange             `json:"lastPreset"`
	CustomRange   CustomRangeStatus     `json:"customRange"`
	Slots         map[string]SlotStatus `json:"slots"`
	View          ViewModel             `json:"view"`
	Resolution    Resolution            `json:"resolution"`
}

// ExportRecord is one resolved top performer sent to the export sink.
type ExportRecord struct {
	Range       TimeRange `json:"range"`
	Rank        int       `json:"rank"`
	ShortCode   string    `json:"shortCode"`
	Clicks      int       `json:"clicks"`
	JobTitle    string    `json:"jobTitle"`
	Location    string    `json:"location"`
	OriginalURL string    `json:"originalUrl"`
}
