package infrastructure

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"jobclicks/internal/domain"
	"jobclicks/pkg/logger"
	"jobclicks/pkg/metrics"

	"golang.org/x/time/rate"
)

const (
	summaryPath = "/analytics/summary"
	weeklyPath  = "/analytics/weekly"
	monthlyPath = "/analytics/monthly"
	rangePath   = "/analytics/range"

	maxBodySize = 8 << 20
)

// implements domain.AnalyticsClient against the remote aggregation service
type AnalyticsClient struct {
	client      *http.Client
	baseURL     *url.URL
	cache       *RangeCache
	logger      *logger.Logger
	metrics     *metrics.Metrics
	rateLimiter *rate.Limiter
}

var _ domain.AnalyticsClient = (*AnalyticsClient)(nil)

// creates a new analytics client bound to baseURL; cache may be nil
func NewAnalyticsClient(baseURL string, timeout time.Duration, ratePerSecond, burst int, cache *RangeCache, logger *logger.Logger, metrics *metrics.Metrics) (*AnalyticsClient, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid analytics base URL: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("analytics base URL must be absolute, got %q", baseURL)
	}
	if burst <= 0 {
		burst = 1
	}

	return &AnalyticsClient{
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		baseURL:     parsed,
		cache:       cache,
		logger:      logger,
		metrics:     metrics,
		rateLimiter: rate.NewLimiter(rate.Limit(ratePerSecond), burst),
	}, nil
}

// fetches headline totals for every preset range
func (c *AnalyticsClient) FetchSummary(ctx context.Context) (*domain.SummaryDataset, error) {
	return fetchEnvelope[domain.SummaryDataset](ctx, c, "summary", summaryPath, nil)
}

// fetches the rolling weekly rollup
func (c *AnalyticsClient) FetchWeekly(ctx context.Context) (*domain.RollupDataset, error) {
	return fetchEnvelope[domain.RollupDataset](ctx, c, "weekly", weeklyPath, nil)
}

// fetches the rollup for one calendar month
func (c *AnalyticsClient) FetchMonthly(ctx context.Context, year, month int) (*domain.RollupDataset, error) {
	if month < 1 || month > 12 {
		return nil, &domain.ValidationError{Reason: fmt.Sprintf("month must be between 1 and 12, got %d", month)}
	}

	query := url.Values{}
	query.Set("year", strconv.Itoa(year))
	query.Set("month", strconv.Itoa(month))

	return fetchEnvelope[domain.RollupDataset](ctx, c, "monthly", monthlyPath, query)
}

// fetches the rollup for an inclusive YYYY-MM-DD span
func (c *AnalyticsClient) FetchRange(ctx context.Context, startDate, endDate string) (*domain.RollupDataset, error) {
	if startDate == "" || endDate == "" {
		return nil, &domain.ValidationError{Reason: "startDate and endDate are required"}
	}
	if startDate > endDate {
		return nil, &domain.ValidationError{Reason: "startDate must be on or before endDate"}
	}

	if c.cache != nil {
		cached, ok := c.cache.Get(startDate, endDate)
		c.metrics.RecordRangeCacheLookup(ok)
		c.metrics.SetRangeCacheHitRatio(c.cache.HitRatio())
		if ok {
			return cached, nil
		}
	}

	query := url.Values{}
	query.Set("startDate", startDate)
	query.Set("endDate", endDate)

	data, err := fetchEnvelope[domain.RollupDataset](ctx, c, "range", rangePath, query)
	if err != nil {
		return nil, err
	}

	if c.cache != nil {
		c.cache.Set(startDate, endDate, data)
	}

	return data, nil
}

func (c *AnalyticsClient) endpoint(path string, query url.Values) string {
	u := c.baseURL.JoinPath(path)
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

// fetchEnvelope performs one GET and unwraps the {success, data} envelope.
// Every failure mode surfaces as *domain.RequestFailedError; nothing is retried.
func fetchEnvelope[T any](ctx context.Context, c *AnalyticsClient, api, path string, query url.Values) (*T, error) {
	start := time.Now()
	endpoint := c.endpoint(path, query)

	// Apply rate limiting
	if err := c.rateLimiter.Wait(ctx); err != nil {
		c.metrics.RecordExternalAPIFailure(api, "rate_limit")
		return nil, &domain.RequestFailedError{Operation: api, Reason: "rate limit wait aborted", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		c.metrics.RecordExternalAPIFailure(api, "request_creation")
		return nil, &domain.RequestFailedError{Operation: api, Reason: "failed to create request", Err: err}
	}

	req.Header.Set("Accept", "application/json")
	if requestID, ok := ctx.Value(logger.RequestIDKey).(string); ok {
		req.Header.Set("X-Request-ID", requestID)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		c.metrics.RecordExternalAPIFailure(api, "network_error")
		return nil, &domain.RequestFailedError{Operation: api, Reason: "network error", Err: err}
	}
	defer resp.Body.Close()

	duration := time.Since(start)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.metrics.RecordExternalAPICall(api, fmt.Sprintf("error_%d", resp.StatusCode), duration)
		return nil, &domain.RequestFailedError{Operation: api, Status: resp.StatusCode, Reason: http.StatusText(resp.StatusCode)}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		c.metrics.RecordExternalAPIFailure(api, "read_body")
		return nil, &domain.RequestFailedError{Operation: api, Status: resp.StatusCode, Reason: "failed to read response body", Err: err}
	}

	var envelope domain.Envelope[T]
	if err := json.Unmarshal(body, &envelope); err != nil {
		c.metrics.RecordExternalAPIFailure(api, "json_parse")
		return nil, &domain.RequestFailedError{Operation: api, Status: resp.StatusCode, Reason: "unparsable response body", Err: err}
	}

	if !envelope.Success {
		c.metrics.RecordExternalAPICall(api, "unsuccessful", duration)
		reason := "response reported success=false"
		if envelope.Message != "" {
			reason = envelope.Message
		}
		return nil, &domain.RequestFailedError{Operation: api, Status: resp.StatusCode, Reason: reason}
	}

	c.metrics.RecordExternalAPICall(api, "success", duration)

	c.logger.WithContext(ctx).WithFields(map[string]any{
		"url":      endpoint,
		"duration": duration,
	}).Debug("Fetched analytics dataset")

	return &envelope.Data, nil
}
