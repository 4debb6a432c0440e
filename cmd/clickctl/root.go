package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"jobclicks/internal/infrastructure"
	"jobclicks/internal/usecase"
	"jobclicks/pkg/config"
	"jobclicks/pkg/daterange"
	"jobclicks/pkg/logger"
	"jobclicks/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

var (
	flagBaseURL  string
	flagDate     string
	flagLogLevel string
	flagNoCache  bool
)

var rootCmd = &cobra.Command{
	Use:           "clickctl",
	Short:         "Job posting click analytics CLI",
	Long:          "Query the remote click analytics service and print resolved dashboard views as JSON.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute is the entry point called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "clickctl: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagBaseURL, "base-url", "", "Analytics service base URL (overrides ANALYTICS_BASE_URL)")
	rootCmd.PersistentFlags().StringVar(&flagDate, "date", "", "Reference day YYYY-MM-DD (default today)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level (overrides LOG_LEVEL)")
	rootCmd.PersistentFlags().BoolVar(&flagNoCache, "no-cache", false, "Disable the range rollup cache")
}

// services is everything a command needs, built from config plus flags.
type services struct {
	dashboard  *usecase.DashboardService
	comparison *usecase.ComparisonService
	cache      *infrastructure.RangeCache
}

func (s *services) Close() {
	if s.cache != nil {
		s.cache.Close()
	}
}

func buildServices(stderr io.Writer) (*services, error) {
	// flags win over the environment and .env
	if flagBaseURL != "" {
		os.Setenv("ANALYTICS_BASE_URL", flagBaseURL)
	}
	if flagLogLevel != "" {
		os.Setenv("LOG_LEVEL", flagLogLevel)
	}
	if flagNoCache {
		os.Setenv("RANGE_CACHE_ENABLED", "false")
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	log := logger.NewWithOutput(cfg.Logging.Level, stderr)
	m := metrics.NewWithRegistry(prometheus.NewRegistry())

	client, cache, err := infrastructure.NewAnalyticsClientFromConfig(cfg, log, m)
	if err != nil {
		return nil, err
	}

	exporter := infrastructure.NewSinkClient(cfg.Export.SinkURL, cfg.Export.SinkSecret, cfg.Analytics.RequestTimeout, log, m)
	sessions := infrastructure.NewSessionRepository[*usecase.Session](log)

	return &services{
		dashboard:  usecase.NewDashboardService(client, exporter, sessions, log, m),
		comparison: usecase.NewComparisonService(client, log, m),
		cache:      cache,
	}, nil
}

// referenceTime resolves --date; without it the reference is now.
func referenceTime(value string, now time.Time) (time.Time, error) {
	if value == "" {
		return now, nil
	}
	ref, err := daterange.Parse(value, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("--date must be YYYY-MM-DD, got %q", value)
	}
	return ref, nil
}

func printJSON(out io.Writer, v any) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
