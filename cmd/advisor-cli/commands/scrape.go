package commands

import (
	"log/slog"
	"time"

	"kickadvisor-backend/lib/features"
	"kickadvisor-backend/lib/scrapers/kickstarter"
	"kickadvisor-backend/lib/serviceutil"
	"kickadvisor-backend/lib/sqliteutil"
	"kickadvisor-backend/lib/telemetry"
	"kickadvisor-backend/services/campaigns"
	campaignsdb "kickadvisor-backend/services/campaigns/db"

	"github.com/spf13/cobra"
)

var scrapeDb *string

func init() {
	scrapeDb = scrapeCmd.Flags().String("db", "", "The database to write scrape results to.")
	rootCmd.AddCommand(scrapeCmd)
}

var scrapeCmd = &cobra.Command{
	Use:   "scrape <project url> [<project url> ...]",
	Short: "Scrapes campaign pages into the corpus without scoring them.",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg := readConfig()
		if *scrapeDb != "" {
			cfg.Db = *scrapeDb
		}

		telemetry.InitSlog(false)
		err := telemetry.SetupFromEnv(cmd.Context(), "advisor-cli")
		if err != nil {
			serviceutil.Fatal("failed to setup telemetry", err)
		}

		database, err := sqliteutil.OpenDB(campaignsdb.Schema, cfg.Db)
		if err != nil {
			serviceutil.Fatal("failed to open db", err)
		}
		defer database.Close()
		store := campaigns.NewStore(database)

		client, err := kickstarter.NewClient()
		if err != nil {
			serviceutil.Fatal("failed to initialize kickstarter client", err)
		}

		t1 := time.Now()
		for _, link := range args {
			project, err := client.FetchProject(cmd.Context(), link)
			if err != nil {
				slog.ErrorContext(cmd.Context(), "failed to fetch project", "url", link, "err", err)
				continue
			}

			feats, err := features.Extract(project.Sections.About.Html, project.Sections.Risks.Html)
			if err != nil {
				slog.ErrorContext(cmd.Context(), "failed to extract features", "url", link, "err", err)
				continue
			}

			err = store.Save(cmd.Context(), campaigns.SaveRequest{
				Url:       project.Url,
				Title:     project.Title,
				ScrapedAt: time.Now(),
				AboutHtml: project.Sections.About.Html,
				RisksHtml: project.Sections.Risks.Html,
				Anchors:   project.Anchors,
				Vector:    feats.Vector(),
			})
			if err != nil {
				slog.ErrorContext(cmd.Context(), "failed to save campaign", "url", link, "err", err)
				continue
			}
			slog.Info("scraped campaign", "url", link, "title", project.Title)
		}
		t2 := time.Now()

		slog.Info("scraping time", "seconds", t2.Sub(t1).Seconds())
	},
}
