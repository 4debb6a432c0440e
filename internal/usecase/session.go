package usecase

import (
	"fmt"
	"sync"
	"time"

	"jobclicks/internal/domain"
	"jobclicks/pkg/daterange"
)

const (
	slotSummary = "summary"
	slotWeekly  = "weekly"
	slotMonthly = "monthly"
	slotCustom  = "custom"
)

// Session is one dashboard's view state: the four dataset slots, the selected
// range and the custom range state machine.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu           sync.Mutex
	selected     domain.TimeRange
	lastPreset   domain.TimeRange
	customState  domain.CustomRangeState
	customWindow *domain.DateWindow
	customErr    string

	summary slot[domain.SummaryDataset]
	weekly  slot[domain.RollupDataset]
	monthly slot[domain.RollupDataset]
	custom  slot[domain.RollupDataset]
}

func NewSession(id string, createdAt time.Time) *Session {
	return &Session{
		ID:          id,
		CreatedAt:   createdAt,
		selected:    domain.RangeToday,
		lastPreset:  domain.RangeToday,
		customState: domain.CustomInactive,
		summary:     newSlot[domain.SummaryDataset](slotSummary),
		weekly:      newSlot[domain.RollupDataset](slotWeekly),
		monthly:     newSlot[domain.RollupDataset](slotMonthly),
		custom:      newSlot[domain.RollupDataset](slotCustom),
	}
}

// SelectRange switches to a preset range card. Any active or pending custom
// range is discarded.
func (s *Session) SelectRange(r domain.TimeRange) error {
	if !r.IsPreset() {
		return &domain.ValidationError{Reason: fmt.Sprintf("%q is not a preset range", r)}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.exitCustomLocked()
	s.selected = r
	s.lastPreset = r
	return nil
}

// ClearCustomRange returns to the last chosen preset.
func (s *Session) ClearCustomRange() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.exitCustomLocked()
	s.selected = s.lastPreset
}

func (s *Session) exitCustomLocked() {
	s.custom.reset()
	s.customState = domain.CustomInactive
	s.customWindow = nil
	s.customErr = ""
}

// ValidateCustomRange checks a user-supplied pair before anything is fetched.
func ValidateCustomRange(startDate, endDate string) (domain.DateWindow, error) {
	if startDate == "" || endDate == "" {
		return domain.DateWindow{}, &domain.ValidationError{Reason: "both start and end dates are required"}
	}
	if _, err := daterange.Parse(startDate, time.UTC); err != nil {
		return domain.DateWindow{}, &domain.ValidationError{Reason: fmt.Sprintf("start date %q must be YYYY-MM-DD", startDate)}
	}
	if _, err := daterange.Parse(endDate, time.UTC); err != nil {
		return domain.DateWindow{}, &domain.ValidationError{Reason: fmt.Sprintf("end date %q must be YYYY-MM-DD", endDate)}
	}
	if !daterange.Ordered(startDate, endDate) {
		return domain.DateWindow{}, &domain.ValidationError{Reason: "start date must be on or before end date"}
	}
	return domain.DateWindow{StartDate: startDate, EndDate: endDate}, nil
}

func (s *Session) rejectCustom(reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.customErr = reason
}

func (s *Session) beginCustom() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.custom.begin()
}

// completeCustom applies a custom range fetch. A failure leaves the state
// machine where it was and keeps the message until the next attempt or until
// a preset is chosen.
func (s *Session) completeCustom(token uint64, window domain.DateWindow, data *domain.RollupDataset, err error, now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.custom.complete(token, data, err, now) {
		return false
	}
	if err != nil || data == nil {
		s.customErr = s.custom.status.Error
		return true
	}

	s.customState = domain.CustomActive
	s.customWindow = &window
	s.customErr = ""
	s.selected = domain.RangeCustomRange
	return true
}

func (s *Session) beginInitial() (summary, weekly, monthly uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.summary.begin(), s.weekly.begin(), s.monthly.begin()
}

func (s *Session) completeSummary(token uint64, data *domain.SummaryDataset, err error, now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.summary.complete(token, data, err, now)
}

func (s *Session) completeWeekly(token uint64, data *domain.RollupDataset, err error, now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.weekly.complete(token, data, err, now)
}

func (s *Session) completeMonthly(token uint64, data *domain.RollupDataset, err error, now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.monthly.complete(token, data, err, now)
}

// Snapshot resolves the session's datasets for ref.
func (s *Session) Snapshot(ref time.Time) domain.DashboardState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked(ref)
}

// ExportSnapshot is Snapshot plus the calendar span the selected range covers,
// both read under one lock so they always describe the same range.
func (s *Session) ExportSnapshot(ref time.Time) (domain.DashboardState, domain.DateWindow) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked(ref), s.windowLocked(ref)
}

func (s *Session) snapshotLocked(ref time.Time) domain.DashboardState {
	src := Sources{
		Summary: s.summary.value,
		Weekly:  s.weekly.value,
		Monthly: s.monthly.value,
	}
	if s.customState == domain.CustomActive {
		src.Custom = s.custom.value
	}

	view, resolution := ResolveDetailed(s.selected, src, ref)

	state := domain.DashboardState{
		SessionID:     s.ID,
		SelectedRange: s.selected,
		LastPreset:    s.lastPreset,
		CustomRange: domain.CustomRangeStatus{
			State: s.customState,
			Error: s.customErr,
		},
		Slots: map[string]domain.SlotStatus{
			s.summary.name: s.summary.status,
			s.weekly.name:  s.weekly.status,
			s.monthly.name: s.monthly.status,
			s.custom.name:  s.custom.status,
		},
		View:       view,
		Resolution: resolution,
	}
	if s.customWindow != nil {
		window := *s.customWindow
		state.CustomRange.Window = &window
	}
	return state
}

func (s *Session) windowLocked(ref time.Time) domain.DateWindow {
	switch s.selected {
	case domain.RangeToday:
		today := daterange.Today(ref)
		return domain.DateWindow{StartDate: today, EndDate: today}
	case domain.RangeYesterday:
		yesterday := daterange.Yesterday(ref)
		return domain.DateWindow{StartDate: yesterday, EndDate: yesterday}
	case domain.RangeThisWeek:
		current, _ := daterange.ThisWeekAndLastWeek(ref)
		return current
	case domain.RangeThisMonth:
		return daterange.MonthToDate(ref)
	}
	if s.customWindow != nil {
		return *s.customWindow
	}
	return domain.DateWindow{}
}
