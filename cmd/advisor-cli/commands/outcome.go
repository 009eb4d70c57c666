package commands

import (
	"log/slog"
	"strconv"

	"kickadvisor-backend/lib/serviceutil"
	"kickadvisor-backend/lib/sqliteutil"
	"kickadvisor-backend/services/campaigns"
	campaignsdb "kickadvisor-backend/services/campaigns/db"

	"github.com/spf13/cobra"
)

var outcomeState *string

func init() {
	outcomeState = outcomeCmd.Flags().String("state", "successful", "The final state of the campaign.")
	rootCmd.AddCommand(outcomeCmd)
}

var outcomeCmd = &cobra.Command{
	Use:   "outcome <project url> <goal> <pledged> [--state <state>]",
	Short: "Records the funding outcome of a stored campaign.",
	Args:  cobra.ExactArgs(3),
	Run: func(cmd *cobra.Command, args []string) {
		cfg := readConfig()

		goal, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			serviceutil.Fatal("failed to parse goal", err)
		}
		pledged, err := strconv.ParseFloat(args[2], 64)
		if err != nil {
			serviceutil.Fatal("failed to parse pledged", err)
		}

		database, err := sqliteutil.OpenDB(campaignsdb.Schema, cfg.Db)
		if err != nil {
			serviceutil.Fatal("failed to open db", err)
		}
		defer database.Close()

		store := campaigns.NewStore(database)
		err = store.SetOutcome(cmd.Context(), args[0], campaigns.Outcome{
			State:   *outcomeState,
			Goal:    goal,
			Pledged: pledged,
		})
		if err != nil {
			serviceutil.Fatal("failed to record outcome", err)
		}

		slog.Info("recorded outcome", "url", args[0], "goal", goal, "pledged", pledged, "state", *outcomeState)
	},
}
