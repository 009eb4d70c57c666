package commands

import (
	"fmt"
	"log/slog"

	"kickadvisor-backend/lib/serviceutil"

	"github.com/spf13/cobra"
)

var referenceTopFraction *float64

func init() {
	referenceTopFraction = referenceCmd.Flags().Float64(
		"top-fraction", 0.05,
		"The fraction of best-funded campaigns to average into the reference.",
	)
	rootCmd.AddCommand(referenceCmd)
}

var referenceCmd = &cobra.Command{
	Use:   "reference [--top-fraction <0..1>]",
	Short: "Recomputes the top-funded cohort reference vector from the stored corpus.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := readConfig()
		svc, cleanup := setupService(cfg, false)
		defer cleanup()

		reference, err := svc.RefreshReference(cmd.Context(), *referenceTopFraction)
		if err != nil {
			serviceutil.Fatal("failed to refresh reference", err)
		}

		names := svc.Model().FeatureNames()
		for i, v := range reference {
			fmt.Printf("%-26s %+.4f\n", names[i], v)
		}
		slog.Info("reference refreshed", "features", len(reference))
	},
}
