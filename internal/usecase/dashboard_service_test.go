package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"jobclicks/internal/domain"
	"jobclicks/internal/infrastructure"
	"jobclicks/pkg/logger"
	"jobclicks/pkg/metrics"

	mockanalytics "jobclicks/internal/testdata/mockanalytics"
	mockexport "jobclicks/internal/testdata/mockexport"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type DashboardServiceTestSuite struct {
	suite.Suite

	client   *mockanalytics.Client
	exporter *mockexport.Exporter
	metrics  *metrics.Metrics
	sessions *infrastructure.SessionRepository[*Session]
	service  *DashboardService
	ref      time.Time
	ctx      context.Context
}

func TestDashboardServiceSuite(t *testing.T) {
	suite.Run(t, new(DashboardServiceTestSuite))
}

func (s *DashboardServiceTestSuite) SetupTest() {
	s.client = &mockanalytics.Client{}
	s.exporter = &mockexport.Exporter{}
	s.metrics = metrics.NewWithRegistry(prometheus.NewRegistry())
	log := logger.Discard()
	s.sessions = infrastructure.NewSessionRepository[*Session](log)

	s.service = NewDashboardService(
		s.client,
		s.exporter,
		s.sessions,
		log,
		s.metrics,
	)

	// deterministic ids and clock
	s.service.newID = func() string { return "session-1" }
	s.service.now = func() time.Time { return time.Date(2025, 12, 8, 12, 0, 0, 0, time.UTC) }

	s.ref = time.Date(2025, 12, 8, 12, 0, 0, 0, time.UTC)
	s.ctx = context.Background()
}

func (s *DashboardServiceTestSuite) expectInitialLoad() {
	summary := summaryFixture()
	weekly := weeklyFixture()
	monthly := monthlyFixture()
	s.client.On("FetchSummary", mock.Anything).Return(&summary, nil).Once()
	s.client.On("FetchWeekly", mock.Anything).Return(&weekly, nil).Once()
	s.client.On("FetchMonthly", mock.Anything, 2025, 12).Return(&monthly, nil).Once()
}

func (s *DashboardServiceTestSuite) createSession() *domain.DashboardState {
	s.expectInitialLoad()
	state, err := s.service.CreateSession(s.ctx, s.ref)
	s.Require().NoError(err)
	return state
}

func (s *DashboardServiceTestSuite) TestCreateSession_LoadsAllSlots() {
	state := s.createSession()

	s.Equal("session-1", state.SessionID)
	s.Equal(domain.RangeToday, state.SelectedRange)
	s.Equal(domain.CustomInactive, state.CustomRange.State)
	s.Equal(domain.SlotReady, state.Slots[slotSummary].State)
	s.Equal(domain.SlotReady, state.Slots[slotWeekly].State)
	s.Equal(domain.SlotReady, state.Slots[slotMonthly].State)
	s.Equal(domain.SlotIdle, state.Slots[slotCustom].State)

	s.Equal(domain.MetricPair{Clicks: 5, UniqueURLs: 2}, state.View.Totals)
	s.Equal(map[string]int{"Paris": 5}, state.View.LocationBreakdown)
	s.Equal(float64(1), testutil.ToFloat64(s.metrics.ActiveSessions))
	s.Equal(float64(1), testutil.ToFloat64(s.metrics.DatasetLoads.WithLabelValues(slotWeekly, "success")))
	s.client.AssertExpectations(s.T())
}

func (s *DashboardServiceTestSuite) TestCreateSession_SlotFailuresAreIndependent() {
	summary := summaryFixture()
	monthly := monthlyFixture()
	weeklyErr := &domain.RequestFailedError{Operation: "weekly", Status: 500, Reason: "Internal Server Error"}
	s.client.On("FetchSummary", mock.Anything).Return(&summary, nil).Once()
	s.client.On("FetchWeekly", mock.Anything).Return(nil, weeklyErr).Once()
	s.client.On("FetchMonthly", mock.Anything, 2025, 12).Return(&monthly, nil).Once()

	state, err := s.service.CreateSession(s.ctx, s.ref)

	s.Require().NoError(err, "slot failures are not returned")
	s.Equal(domain.SlotReady, state.Slots[slotSummary].State)
	s.Equal(domain.SlotFailed, state.Slots[slotWeekly].State)
	s.Equal(weeklyErr.Error(), state.Slots[slotWeekly].Error)
	s.Equal(domain.SlotReady, state.Slots[slotMonthly].State)

	// totals still come from the summary; the drill-down has nothing to show
	s.Equal(domain.MetricPair{Clicks: 5, UniqueURLs: 2}, state.View.Totals)
	s.Empty(state.View.LocationBreakdown)
	s.Empty(state.View.TrendSeries)
	s.Equal(float64(1), testutil.ToFloat64(s.metrics.DatasetLoads.WithLabelValues(slotWeekly, "failed")))
}

func (s *DashboardServiceTestSuite) TestRefresh_FailureKeepsPreviousDataset() {
	s.createSession()

	summary := summaryFixture()
	monthly := monthlyFixture()
	s.client.On("FetchSummary", mock.Anything).Return(&summary, nil).Once()
	s.client.On("FetchWeekly", mock.Anything).Return(nil, errors.New("timeout")).Once()
	s.client.On("FetchMonthly", mock.Anything, 2025, 12).Return(&monthly, nil).Once()

	state, err := s.service.Refresh(s.ctx, "session-1", s.ref)

	s.Require().NoError(err)
	s.Equal(domain.SlotFailed, state.Slots[slotWeekly].State)
	s.Equal(map[string]int{"Paris": 5}, state.View.LocationBreakdown, "previous weekly data is kept")
}

func (s *DashboardServiceTestSuite) TestSelectRange() {
	s.createSession()

	state, err := s.service.SelectRange(s.ctx, "session-1", domain.RangeThisMonth, s.ref)

	s.Require().NoError(err)
	s.Equal(domain.RangeThisMonth, state.SelectedRange)
	s.Equal(domain.RangeThisMonth, state.LastPreset)
	s.Equal(map[string]int{"London": 120}, state.View.LocationBreakdown)
}

func (s *DashboardServiceTestSuite) TestSelectRange_RejectsCustom() {
	s.createSession()

	_, err := s.service.SelectRange(s.ctx, "session-1", domain.RangeCustomRange, s.ref)

	var validationErr *domain.ValidationError
	s.ErrorAs(err, &validationErr)
}

func (s *DashboardServiceTestSuite) TestApplyCustomRange_ValidationMakesNoNetworkCall() {
	s.createSession()

	tests := []struct {
		name  string
		start string
		end   string
	}{
		{"reversed", "2025-12-10", "2025-12-01"},
		{"missing start", "", "2025-12-01"},
		{"missing end", "2025-12-01", ""},
		{"malformed", "12/01/2025", "2025-12-10"},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			state, err := s.service.ApplyCustomRange(s.ctx, "session-1", tt.start, tt.end, s.ref)

			s.Nil(state)
			var validationErr *domain.ValidationError
			s.Require().ErrorAs(err, &validationErr)

			current, err := s.service.GetDashboard(s.ctx, "session-1", s.ref)
			s.Require().NoError(err)
			s.Equal(domain.CustomInactive, current.CustomRange.State)
			s.Equal(validationErr.Reason, current.CustomRange.Error)
		})
	}

	s.client.AssertNotCalled(s.T(), "FetchRange", mock.Anything, mock.Anything, mock.Anything)
}

func (s *DashboardServiceTestSuite) TestApplyCustomRange_Success() {
	s.createSession()
	custom := &domain.RollupDataset{
		TotalClicks:       42,
		UniqueURLs:        4,
		DailyBreakdown:    []domain.DailyBreakdown{{Date: "2025-11-01", TotalClicks: 42}},
		LocationBreakdown: map[string]int{"Lisbon": 42},
	}
	s.client.On("FetchRange", mock.Anything, "2025-11-01", "2025-11-07").Return(custom, nil).Once()

	state, err := s.service.ApplyCustomRange(s.ctx, "session-1", "2025-11-01", "2025-11-07", s.ref)

	s.Require().NoError(err)
	s.Equal(domain.RangeCustomRange, state.SelectedRange)
	s.Equal(domain.CustomActive, state.CustomRange.State)
	s.Require().NotNil(state.CustomRange.Window)
	s.Equal("2025-11-01..2025-11-07", state.CustomRange.Window.String())
	s.Equal(42, state.View.Totals.Clicks)
	s.Equal(map[string]int{"Lisbon": 42}, state.View.LocationBreakdown)
	s.Equal(domain.SlotReady, state.Slots[slotCustom].State)
}

func (s *DashboardServiceTestSuite) TestApplyCustomRange_FailureStaysInactive() {
	s.createSession()
	failure := &domain.RequestFailedError{Operation: "range", Status: 502, Reason: "Bad Gateway"}
	s.client.On("FetchRange", mock.Anything, "2025-11-01", "2025-11-07").Return(nil, failure).Once()

	_, err := s.service.ApplyCustomRange(s.ctx, "session-1", "2025-11-01", "2025-11-07", s.ref)
	s.ErrorIs(err, failure)

	state, err := s.service.GetDashboard(s.ctx, "session-1", s.ref)
	s.Require().NoError(err)
	s.Equal(domain.CustomInactive, state.CustomRange.State)
	s.Equal(failure.Error(), state.CustomRange.Error)
	s.Equal(domain.RangeToday, state.SelectedRange)

	// choosing a preset clears the retained message
	state, err = s.service.SelectRange(s.ctx, "session-1", domain.RangeThisWeek, s.ref)
	s.Require().NoError(err)
	s.Empty(state.CustomRange.Error)
}

func (s *DashboardServiceTestSuite) TestClearCustomRange_ReturnsToLastPreset() {
	s.createSession()
	_, err := s.service.SelectRange(s.ctx, "session-1", domain.RangeThisWeek, s.ref)
	s.Require().NoError(err)

	s.client.On("FetchRange", mock.Anything, "2025-11-01", "2025-11-07").Return(&domain.RollupDataset{TotalClicks: 42}, nil).Once()
	_, err = s.service.ApplyCustomRange(s.ctx, "session-1", "2025-11-01", "2025-11-07", s.ref)
	s.Require().NoError(err)

	state, err := s.service.ClearCustomRange(s.ctx, "session-1", s.ref)

	s.Require().NoError(err)
	s.Equal(domain.RangeThisWeek, state.SelectedRange)
	s.Equal(domain.CustomInactive, state.CustomRange.State)
	s.Nil(state.CustomRange.Window)
	s.Equal(domain.SlotIdle, state.Slots[slotCustom].State)
	s.Equal(30, state.View.Totals.Clicks)
}

func (s *DashboardServiceTestSuite) TestApplyCustomRange_SupersededResultIsDropped() {
	s.createSession()

	// the user picks a preset while the custom range is still loading
	s.client.On("FetchRange", mock.Anything, "2025-11-01", "2025-11-07").
		Run(func(args mock.Arguments) {
			_, err := s.service.SelectRange(s.ctx, "session-1", domain.RangeThisWeek, s.ref)
			s.Require().NoError(err)
		}).
		Return(&domain.RollupDataset{TotalClicks: 42}, nil).Once()

	state, err := s.service.ApplyCustomRange(s.ctx, "session-1", "2025-11-01", "2025-11-07", s.ref)

	s.Require().NoError(err)
	s.Equal(domain.RangeThisWeek, state.SelectedRange)
	s.Equal(domain.CustomInactive, state.CustomRange.State)
	s.Equal(30, state.View.Totals.Clicks)
	s.Equal(float64(1), testutil.ToFloat64(s.metrics.StaleResultsDropped.WithLabelValues(slotCustom)))
}

func (s *DashboardServiceTestSuite) TestExportTopPerformers() {
	s.createSession()
	_, err := s.service.SelectRange(s.ctx, "session-1", domain.RangeThisWeek, s.ref)
	s.Require().NoError(err)

	expected := []domain.ExportRecord{{
		Range:       domain.RangeThisWeek,
		Rank:        1,
		ShortCode:   "wk",
		Clicks:      10,
		JobTitle:    "Engineer",
		Location:    "Remote",
		OriginalURL: "https://jobs.example.com/wk",
	}}
	window := domain.DateWindow{StartDate: "2025-12-02", EndDate: "2025-12-08"}
	s.exporter.On("Export", mock.Anything, expected, window).Return(nil).Once()

	count, err := s.service.ExportTopPerformers(s.ctx, "session-1", s.ref)

	s.Require().NoError(err)
	s.Equal(1, count)
	s.exporter.AssertExpectations(s.T())
}

func (s *DashboardServiceTestSuite) TestExportTopPerformers_SinkFailure() {
	s.createSession()
	s.exporter.On("Export", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("sink down")).Once()

	count, err := s.service.ExportTopPerformers(s.ctx, "session-1", s.ref)

	s.Error(err)
	s.Zero(count)
}

func (s *DashboardServiceTestSuite) TestUnknownSession() {
	_, err := s.service.GetDashboard(s.ctx, "missing", s.ref)
	s.ErrorIs(err, domain.ErrSessionNotFound)

	_, err = s.service.ApplyCustomRange(s.ctx, "missing", "2025-12-01", "2025-12-02", s.ref)
	s.ErrorIs(err, domain.ErrSessionNotFound)

	s.ErrorIs(s.service.DeleteSession(s.ctx, "missing"), domain.ErrSessionNotFound)
}

func (s *DashboardServiceTestSuite) TestDeleteSession() {
	s.createSession()

	s.Require().NoError(s.service.DeleteSession(s.ctx, "session-1"))

	_, err := s.service.GetDashboard(s.ctx, "session-1", s.ref)
	s.ErrorIs(err, domain.ErrSessionNotFound)
	s.Equal(float64(0), testutil.ToFloat64(s.metrics.ActiveSessions))
}

func (s *DashboardServiceTestSuite) TestEvictIdleSessions() {
	s.createSession()

	s.Zero(s.service.EvictIdleSessions(s.ctx, time.Hour))
	s.Equal(1, s.sessions.Count())

	// a negative idle limit puts every last access before the cutoff
	s.Equal(1, s.service.EvictIdleSessions(s.ctx, -time.Minute))

	_, err := s.service.GetDashboard(s.ctx, "session-1", s.ref)
	s.ErrorIs(err, domain.ErrSessionNotFound)
	s.Equal(float64(0), testutil.ToFloat64(s.metrics.ActiveSessions))
}

func (s *DashboardServiceTestSuite) TestRunSessionSweeper() {
	s.createSession()

	ctx, cancel := context.WithCancel(s.ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		s.service.RunSessionSweeper(ctx, 5*time.Millisecond, -time.Minute)
	}()

	s.Eventually(func() bool { return s.sessions.Count() == 0 }, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		s.Fail("sweeper did not stop after cancel")
	}
}
