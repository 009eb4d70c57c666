package commands

import (
	"log/slog"
	"os"

	"kickadvisor-backend/lib/serviceutil"
	"kickadvisor-backend/services/advisor"

	"github.com/spf13/cobra"
)

var analyzeEmail *string
var analyzeDump *bool

func init() {
	analyzeEmail = analyzeCmd.Flags().String("email", "", "Send the rendered report to this address.")
	analyzeDump = analyzeCmd.Flags().Bool("dump-http", false, "Dump http messages to .dev/resty/advisor for debugging.")
	rootCmd.AddCommand(analyzeCmd)
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze <project url>",
	Short: "Scrapes a campaign page, scores it and prints ranked improvement suggestions.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg := readConfig()
		svc, cleanup := setupService(cfg, *analyzeDump)
		defer cleanup()

		report, err := svc.Analyze(cmd.Context(), args[0])
		if err != nil {
			serviceutil.Fatal("failed to analyze campaign", err)
		}

		advisor.RenderReport(os.Stdout, report)

		if *analyzeEmail != "" {
			mailer := advisor.NewMailer(cfg.Smtp)
			err := mailer.SendReport(cmd.Context(), *analyzeEmail, report)
			if err != nil {
				serviceutil.Fatal("failed to email report", err)
			}
			slog.Info("report sent", "to", *analyzeEmail, "report_id", report.Id)
		}
	},
}
