package commands

import (
	"context"
	"fmt"
	"os"

	"kickadvisor-backend/lib/advisormodel"
	"kickadvisor-backend/lib/configutil"
	"kickadvisor-backend/lib/restyutil"
	"kickadvisor-backend/lib/scrapers/kickstarter"
	"kickadvisor-backend/lib/serviceutil"
	"kickadvisor-backend/lib/sqliteutil"
	"kickadvisor-backend/lib/telemetry"
	"kickadvisor-backend/services/advisor"
	"kickadvisor-backend/services/campaigns"
	campaignsdb "kickadvisor-backend/services/campaigns/db"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "advisor-cli",
	Short: "advisor-cli scrapes kickstarter campaigns and scores them against the top-funded cohort.",
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type Config struct {
	Db    string             `json:"db"`
	Model string             `json:"model"`
	Smtp  advisor.SmtpConfig `json:"smtp"`
}

func readConfig() Config {
	cfg, err := configutil.ReadConfig[Config]("config.json5")
	if err != nil {
		serviceutil.Fatal("failed to read config", err)
	}
	if cfg.Db == "" {
		cfg.Db = "campaigns.db"
	}
	if cfg.Model == "" {
		cfg.Model = "advisor-model.json5"
	}
	return cfg
}

func setupService(cfg Config, debugDump bool) (*advisor.Service, func()) {
	telemetry.InitSlog(false)
	err := telemetry.SetupFromEnv(context.Background(), "advisor-cli")
	if err != nil {
		serviceutil.Fatal("failed to setup telemetry", err)
	}

	database, err := sqliteutil.OpenDB(campaignsdb.Schema, cfg.Db)
	if err != nil {
		serviceutil.Fatal("failed to open database", err)
	}

	model, err := advisormodel.Load(cfg.Model)
	if err != nil {
		serviceutil.Fatal("failed to load model parameters", err)
	}

	client, err := kickstarter.NewClient()
	if err != nil {
		serviceutil.Fatal("failed to initialize kickstarter client", err)
	}
	if debugDump {
		client.SetRestyInstrumentOutput(restyutil.NewFilesystemOutput(".dev/resty/advisor"))
	}

	svc := advisor.NewService(campaigns.NewStore(database), model, client)
	return svc, func() {
		database.Close()
		telemetry.Shutdown(context.Background())
	}
}
