package main

import (
	"time"

	"jobclicks/internal/domain"

	"github.com/spf13/cobra"
)

var flagRange string

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Resolve the dashboard view for a preset range",
	RunE:  runDashboard,
}

func init() {
	dashboardCmd.Flags().StringVarP(&flagRange, "range", "r", string(domain.RangeToday), "Preset range: today, yesterday, thisWeek or thisMonth")
	rootCmd.AddCommand(dashboardCmd)
}

func runDashboard(cmd *cobra.Command, _ []string) error {
	r, err := domain.ParseTimeRange(flagRange)
	if err != nil {
		return err
	}
	ref, err := referenceTime(flagDate, time.Now())
	if err != nil {
		return err
	}

	svc, err := buildServices(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer svc.Close()

	ctx := commandContext(cmd)
	state, err := svc.dashboard.CreateSession(ctx, ref)
	if err != nil {
		return err
	}
	if state, err = svc.dashboard.SelectRange(ctx, state.SessionID, r, ref); err != nil {
		return err
	}

	return printJSON(cmd.OutOrStdout(), state)
}
