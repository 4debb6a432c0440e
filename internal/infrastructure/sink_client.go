package infrastructure

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"jobclicks/internal/domain"
	"jobclicks/pkg/logger"
	"jobclicks/pkg/metrics"

	"golang.org/x/time/rate"
)

// implements domain.ExportClient
type SinkClient struct {
	client      *http.Client
	sinkURL     string
	sinkSecret  string
	logger      *logger.Logger
	metrics     *metrics.Metrics
	rateLimiter *rate.Limiter
}

var _ domain.ExportClient = (*SinkClient)(nil)

type exportPayload struct {
	StartDate  string                `json:"startDate"`
	EndDate    string                `json:"endDate"`
	ExportedAt string                `json:"exportedAt"`
	Records    []domain.ExportRecord `json:"records"`
}

func NewSinkClient(sinkURL, sinkSecret string, timeout time.Duration, logger *logger.Logger, metrics *metrics.Metrics) *SinkClient {
	return &SinkClient{
		client:      &http.Client{Timeout: timeout},
		sinkURL:     sinkURL,
		sinkSecret:  sinkSecret,
		logger:      logger,
		metrics:     metrics,
		rateLimiter: rate.NewLimiter(rate.Limit(5), 1),
	}
}

// Export posts the resolved top performers for window to the sink.
func (c *SinkClient) Export(ctx context.Context, records []domain.ExportRecord, window domain.DateWindow) error {
	if c.sinkURL == "" {
		return domain.ErrExportNotConfigured
	}

	start := time.Now()

	// Apply rate limiting
	if err := c.rateLimiter.Wait(ctx); err != nil {
		c.metrics.RecordExternalAPIFailure("sink", "rate_limit")
		return fmt.Errorf("rate limit exceeded: %w", err)
	}

	payload, err := json.Marshal(exportPayload{
		StartDate:  window.StartDate,
		EndDate:    window.EndDate,
		ExportedAt: start.UTC().Format(time.RFC3339),
		Records:    records,
	})
	if err != nil {
		c.metrics.RecordExternalAPIFailure("sink", "json_marshal")
		return fmt.Errorf("failed to marshal export data: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.sinkURL, bytes.NewReader(payload))
	if err != nil {
		c.metrics.RecordExternalAPIFailure("sink", "request_creation")
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	if c.sinkSecret != "" {
		req.Header.Set("X-Signature", c.sign(payload))
	}

	resp, err := c.client.Do(req)
	if err != nil {
		c.metrics.RecordExternalAPIFailure("sink", "network_error")
		return fmt.Errorf("failed to export data: %w", err)
	}
	defer resp.Body.Close()

	duration := time.Since(start)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.metrics.RecordExternalAPICall("sink", fmt.Sprintf("error_%d", resp.StatusCode), duration)
		return &domain.RequestFailedError{Operation: "export", Status: resp.StatusCode, Reason: http.StatusText(resp.StatusCode)}
	}

	c.metrics.RecordExternalAPICall("sink", "success", duration)

	c.logger.WithContext(ctx).WithFields(map[string]any{
		"url":      c.sinkURL,
		"duration": duration,
		"records":  len(records),
		"window":   window.String(),
	}).Info("Exported top performers")

	return nil
}

// hex HMAC-SHA256 of the payload
func (c *SinkClient) sign(payload []byte) string {
	h := hmac.New(sha256.New, []byte(c.sinkSecret))
	h.Write(payload)
	return hex.EncodeToString(h.Sum(nil))
}
