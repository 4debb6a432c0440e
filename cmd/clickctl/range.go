package main

import (
	"time"

	"github.com/spf13/cobra"
)

var (
	flagStart string
	flagEnd   string
)

var rangeCmd = &cobra.Command{
	Use:   "range",
	Short: "Resolve the dashboard view for a custom date range",
	RunE:  runRange,
}

func init() {
	rangeCmd.Flags().StringVar(&flagStart, "start", "", "Start day YYYY-MM-DD")
	rangeCmd.Flags().StringVar(&flagEnd, "end", "", "End day YYYY-MM-DD (inclusive)")
	rootCmd.AddCommand(rangeCmd)
}

func runRange(cmd *cobra.Command, _ []string) error {
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
	if state, err = svc.dashboard.ApplyCustomRange(ctx, state.SessionID, flagStart, flagEnd, ref); err != nil {
		return err
	}

	return printJSON(cmd.OutOrStdout(), state)
}
