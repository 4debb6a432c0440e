package mockanalytics

import (
	"context"

	"jobclicks/internal/domain"

	"github.com/stretchr/testify/mock"
)

type Client struct {
	mock.Mock
}

// Interface compliance check
var _ domain.AnalyticsClient = &Client{}

func (m *Client) FetchSummary(ctx context.Context) (*domain.SummaryDataset, error) {
	args := m.Called(ctx)
	data, _ := args.Get(0).(*domain.SummaryDataset)
	return data, args.Error(1)
}

func (m *Client) FetchWeekly(ctx context.Context) (*domain.RollupDataset, error) {
	args := m.Called(ctx)
	data, _ := args.Get(0).(*domain.RollupDataset)
	return data, args.Error(1)
}

func (m *Client) FetchMonthly(ctx context.Context, year, month int) (*domain.RollupDataset, error) {
	args := m.Called(ctx, year, month)
	data, _ := args.Get(0).(*domain.RollupDataset)
	return data, args.Error(1)
}

func (m *Client) FetchRange(ctx context.Context, startDate, endDate string) (*domain.RollupDataset, error) {
	args := m.Called(ctx, startDate, endDate)
	// nil results are set up as (*domain.RollupDataset)(nil) or plain nil
	data, _ := args.Get(0).(*domain.RollupDataset)
	return data, args.Error(1)
}
