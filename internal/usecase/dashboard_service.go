package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"jobclicks/internal/domain"
	"jobclicks/pkg/daterange"
	"jobclicks/pkg/logger"
	"jobclicks/pkg/metrics"

	"github.com/google/uuid"
)

// SessionRepository stores dashboard sessions.
type SessionRepository interface {
	Store(ctx context.Context, id string, session *Session) error
	Get(ctx context.Context, id string) (*Session, error)
	Delete(ctx context.Context, id string) error
	EvictIdle(ctx context.Context, maxIdle time.Duration) int
	Count() int
}

// DashboardService owns dashboard sessions and keeps their dataset slots fed
// from the remote analytics service.
type DashboardService struct {
	client   domain.AnalyticsClient
	exporter domain.ExportClient
	sessions SessionRepository
	logger   *logger.Logger
	metrics  *metrics.Metrics
	newID    func() string
	now      func() time.Time
}

func NewDashboardService(
	client domain.AnalyticsClient,
	exporter domain.ExportClient,
	sessions SessionRepository,
	logger *logger.Logger,
	metrics *metrics.Metrics,
) *DashboardService {
	return &DashboardService{
		client:   client,
		exporter: exporter,
		sessions: sessions,
		logger:   logger,
		metrics:  metrics,
		newID:    uuid.NewString,
		now:      time.Now,
	}
}

// CreateSession starts a session and performs the initial load for ref.
func (s *DashboardService) CreateSession(ctx context.Context, ref time.Time) (*domain.DashboardState, error) {
	session := NewSession(s.newID(), s.now())
	if err := s.sessions.Store(ctx, session.ID, session); err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}
	s.metrics.SetActiveSessions(s.sessions.Count())

	ctx = context.WithValue(ctx, logger.SessionIDKey, session.ID)
	s.logger.WithContext(ctx).Info("Created dashboard session")

	s.LoadInitial(ctx, session, ref)

	return s.state(session, ref), nil
}

// LoadInitial fetches summary, weekly and the month of ref concurrently. Each
// result is applied to its own slot as soon as it arrives; one failing never
// blocks or rolls back the others. Failures are logged and recorded on the
// slot, never returned.
func (s *DashboardService) LoadInitial(ctx context.Context, session *Session, ref time.Time) {
	summaryToken, weeklyToken, monthlyToken := session.beginInitial()
	year, month := daterange.MonthOf(ref)

	var wg sync.WaitGroup
	wg.Add(3)

	go func() {
		defer wg.Done()
		data, err := s.client.FetchSummary(ctx)
		applied := session.completeSummary(summaryToken, data, err, s.now())
		s.recordLoad(ctx, slotSummary, applied, err)
	}()

	go func() {
		defer wg.Done()
		data, err := s.client.FetchWeekly(ctx)
		applied := session.completeWeekly(weeklyToken, data, err, s.now())
		s.recordLoad(ctx, slotWeekly, applied, err)
	}()

	go func() {
		defer wg.Done()
		data, err := s.client.FetchMonthly(ctx, year, month)
		applied := session.completeMonthly(monthlyToken, data, err, s.now())
		s.recordLoad(ctx, slotMonthly, applied, err)
	}()

	wg.Wait()
}

func (s *DashboardService) recordLoad(ctx context.Context, slot string, applied bool, err error) {
	log := s.logger.WithContext(ctx).WithField("slot", slot)

	switch {
	case !applied:
		s.metrics.RecordStaleResult(slot)
		log.Debug("Discarded superseded dataset result")
	case err != nil:
		s.metrics.RecordDatasetLoad(slot, "failed")
		log.WithError(err).Warn("Failed to load dataset")
	default:
		s.metrics.RecordDatasetLoad(slot, "success")
		log.Debug("Loaded dataset")
	}
}

// Refresh refetches the initial datasets. Slots keep their previous values
// until a newer result arrives.
func (s *DashboardService) Refresh(ctx context.Context, id string, ref time.Time) (*domain.DashboardState, error) {
	session, err := s.sessions.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	ctx = context.WithValue(ctx, logger.SessionIDKey, id)
	s.LoadInitial(ctx, session, ref)

	return s.state(session, ref), nil
}

// GetDashboard resolves the session's current view for ref.
func (s *DashboardService) GetDashboard(ctx context.Context, id string, ref time.Time) (*domain.DashboardState, error) {
	session, err := s.sessions.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.state(session, ref), nil
}

// SelectRange switches the session to a preset range card.
func (s *DashboardService) SelectRange(ctx context.Context, id string, r domain.TimeRange, ref time.Time) (*domain.DashboardState, error) {
	session, err := s.sessions.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := session.SelectRange(r); err != nil {
		return nil, err
	}
	return s.state(session, ref), nil
}

// ApplyCustomRange validates the pair locally, fetches the range and activates
// it on success. Invalid input never reaches the network. If a newer custom
// range request or a preset selection supersedes this one while it is in
// flight, its result is dropped and the current state is returned.
func (s *DashboardService) ApplyCustomRange(ctx context.Context, id, startDate, endDate string, ref time.Time) (*domain.DashboardState, error) {
	session, err := s.sessions.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	ctx = context.WithValue(ctx, logger.SessionIDKey, id)
	log := s.logger.WithContext(ctx).WithFields(map[string]any{
		"start_date": startDate,
		"end_date":   endDate,
	})

	window, err := ValidateCustomRange(startDate, endDate)
	if err != nil {
		session.rejectCustom(err.Error())
		log.WithError(err).Info("Rejected custom range")
		return nil, err
	}

	token := session.beginCustom()
	data, fetchErr := s.client.FetchRange(ctx, window.StartDate, window.EndDate)
	applied := session.completeCustom(token, window, data, fetchErr, s.now())
	s.recordLoad(ctx, slotCustom, applied, fetchErr)

	if applied && fetchErr != nil {
		return nil, fetchErr
	}
	if applied {
		log.Info("Custom range activated")
	}

	return s.state(session, ref), nil
}

// ClearCustomRange exits custom mode and returns to the last preset.
func (s *DashboardService) ClearCustomRange(ctx context.Context, id string, ref time.Time) (*domain.DashboardState, error) {
	session, err := s.sessions.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	session.ClearCustomRange()
	return s.state(session, ref), nil
}

// DeleteSession forgets a session.
func (s *DashboardService) DeleteSession(ctx context.Context, id string) error {
	if err := s.sessions.Delete(ctx, id); err != nil {
		return err
	}
	s.metrics.SetActiveSessions(s.sessions.Count())
	return nil
}

// EvictIdleSessions forgets sessions untouched for longer than maxIdle.
func (s *DashboardService) EvictIdleSessions(ctx context.Context, maxIdle time.Duration) int {
	evicted := s.sessions.EvictIdle(ctx, maxIdle)
	s.metrics.SetActiveSessions(s.sessions.Count())
	if evicted > 0 {
		s.logger.WithContext(ctx).WithField("evicted", evicted).Info("Evicted idle sessions")
	}
	return evicted
}

// RunSessionSweeper evicts idle sessions every interval until ctx is done.
func (s *DashboardService) RunSessionSweeper(ctx context.Context, interval, maxIdle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.EvictIdleSessions(ctx, maxIdle)
		}
	}
}

// ExportTopPerformers sends the resolved top performers of the session's
// selected range to the export sink and returns how many were sent.
func (s *DashboardService) ExportTopPerformers(ctx context.Context, id string, ref time.Time) (int, error) {
	session, err := s.sessions.Get(ctx, id)
	if err != nil {
		return 0, err
	}

	state, window := session.ExportSnapshot(ref)

	records := make([]domain.ExportRecord, 0, len(state.View.TopPerformers))
	for i, performer := range state.View.TopPerformers {
		records = append(records, domain.ExportRecord{
			Range:       state.SelectedRange,
			Rank:        i + 1,
			ShortCode:   performer.ShortCode,
			Clicks:      performer.Clicks,
			JobTitle:    performer.JobTitle,
			Location:    performer.Location,
			OriginalURL: performer.OriginalURL,
		})
	}

	if err := s.exporter.Export(ctx, records, window); err != nil {
		s.logger.WithContext(ctx).WithError(err).Error("Failed to export top performers")
		return 0, fmt.Errorf("failed to export top performers: %w", err)
	}

	return len(records), nil
}

func (s *DashboardService) state(session *Session, ref time.Time) *domain.DashboardState {
	state := session.Snapshot(ref)
	s.metrics.RecordResolution(string(state.SelectedRange), state.Resolution.DrillDown)
	return &state
}
