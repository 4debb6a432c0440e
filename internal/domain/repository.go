package domain

import (
	"context"
)

// interface for the remote aggregation service
type AnalyticsClient interface {
	FetchSummary(ctx context.Context) (*SummaryDataset, error)
	FetchWeekly(ctx context.Context) (*RollupDataset, error)
	FetchMonthly(ctx context.Context, year, month int) (*RollupDataset, error)
	FetchRange(ctx context.Context, startDate, endDate string) (*RollupDataset, error)
}

// interface for exporting resolved top performers
type ExportClient interface {
	Export(ctx context.Context, records []ExportRecord, window DateWindow) error
}
