package main

import (
	"context"
	"net/http"

	"kickadvisor-backend/lib/advisormodel"
	"kickadvisor-backend/lib/configutil"
	"kickadvisor-backend/lib/scrapers/kickstarter"
	"kickadvisor-backend/lib/serviceutil"
	"kickadvisor-backend/lib/sqliteutil"
	"kickadvisor-backend/lib/telemetry"
	"kickadvisor-backend/services/advisor"
	"kickadvisor-backend/services/campaigns"
	campaignsdb "kickadvisor-backend/services/campaigns/db"
)

type Config struct {
	Db          string `json:"db"`
	Model       string `json:"model"`
	Port        int    `json:"port"`
	AccessToken string `json:"access_token"`
}

func main() {
	ctx := serviceutil.SignalContext()
	telemetry.InitSlog(false)

	config, err := configutil.ReadConfig[Config]("config.json5")
	if err != nil {
		serviceutil.Fatal("failed to read config", err)
	}
	if config.Db == "" {
		config.Db = "campaigns.db"
	}
	if config.Model == "" {
		config.Model = "advisor-model.json5"
	}
	if config.Port == 0 {
		config.Port = 8444
	}

	database, err := sqliteutil.OpenDB(campaignsdb.Schema, config.Db)
	if err != nil {
		serviceutil.Fatal("failed to open database", err)
	}

	model, err := advisormodel.Load(config.Model)
	if err != nil {
		serviceutil.Fatal("failed to load model parameters", err)
	}

	client, err := kickstarter.NewClient()
	if err != nil {
		serviceutil.Fatal("failed to initialize kickstarter client", err)
	}

	err = telemetry.SetupFromEnv(ctx, "advisord")
	if err != nil {
		serviceutil.Fatal("failed to setup telemetry", err)
	}
	defer telemetry.Shutdown(context.Background())
	telemetry.InstrumentPerfStats(ctx)

	store := campaigns.NewStore(database)
	svc := advisor.NewService(store, model, client)

	mux := http.NewServeMux()
	api := NewApi(svc, store)
	mux.Handle("POST /analyze", serviceutil.VerifyAccessToken(config.AccessToken, http.HandlerFunc(api.Analyze)))
	mux.Handle("GET /campaigns", serviceutil.VerifyAccessToken(config.AccessToken, http.HandlerFunc(api.Campaigns)))
	mux.Handle("POST /reference", serviceutil.VerifyAccessToken(config.AccessToken, http.HandlerFunc(api.Reference)))
	go serviceutil.StartHttpServer(config.Port, mux)

	<-ctx.Done()
}
