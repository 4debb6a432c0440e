package main

import (
	"time"

	"github.com/spf13/cobra"
)

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Fetch the current and previous rolling weeks side by side",
	RunE:  runCompare,
}

func init() {
	rootCmd.AddCommand(compareCmd)
}

func runCompare(cmd *cobra.Command, _ []string) error {
	ref, err := referenceTime(flagDate, time.Now())
	if err != nil {
		return err
	}

	svc, err := buildServices(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer svc.Close()

	comparison, err := svc.comparison.CompareWeeks(commandContext(cmd), ref)
	if err != nil {
		return err
	}

	return printJSON(cmd.OutOrStdout(), comparison)
}
