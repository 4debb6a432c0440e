package usecase

import (
	"context"
	"sync"
	"time"

	"jobclicks/internal/domain"
	"jobclicks/pkg/daterange"
	"jobclicks/pkg/logger"
	"jobclicks/pkg/metrics"
)

// ComparisonService fetches two adjacent rolling weeks for week-over-week views.
type ComparisonService struct {
	client  domain.AnalyticsClient
	logger  *logger.Logger
	metrics *metrics.Metrics
}

func NewComparisonService(client domain.AnalyticsClient, logger *logger.Logger, metrics *metrics.Metrics) *ComparisonService {
	return &ComparisonService{
		client:  client,
		logger:  logger,
		metrics: metrics,
	}
}

// CompareWeeks fetches [ref-6, ref] and [ref-13, ref-7] concurrently. Both legs
// must succeed; otherwise a *domain.ComparisonFailedError is returned and
// neither dataset is exposed.
func (s *ComparisonService) CompareWeeks(ctx context.Context, ref time.Time) (*domain.WeekComparison, error) {
	current, previous := daterange.ThisWeekAndLastWeek(ref)

	log := s.logger.WithContext(ctx).WithFields(map[string]any{
		"current":  current.String(),
		"previous": previous.String(),
	})
	log.Info("Comparing rolling weeks")

	var currentData, previousData *domain.RollupDataset
	var currentErr, previousErr error

	// fetch both windows concurrently
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		currentData, currentErr = s.client.FetchRange(ctx, current.StartDate, current.EndDate)
	}()

	go func() {
		defer wg.Done()
		previousData, previousErr = s.client.FetchRange(ctx, previous.StartDate, previous.EndDate)
	}()

	wg.Wait()

	if err := firstLegError(currentErr, previousErr, currentData, previousData); err != nil {
		s.metrics.RecordComparison("failed")
		log.WithError(err).Warn("Week comparison failed")
		return nil, &domain.ComparisonFailedError{Err: err}
	}

	s.metrics.RecordComparison("success")

	return &domain.WeekComparison{
		CurrentWindow:  current,
		PreviousWindow: previous,
		Current:        *currentData,
		Previous:       *previousData,
	}, nil
}

func firstLegError(currentErr, previousErr error, currentData, previousData *domain.RollupDataset) error {
	switch {
	case currentErr != nil:
		return currentErr
	case previousErr != nil:
		return previousErr
	case currentData == nil || previousData == nil:
		return &domain.RequestFailedError{Operation: "range", Reason: "empty response"}
	}
	return nil
}
