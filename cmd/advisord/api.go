package main

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"kickadvisor-backend/services/advisor"
	"kickadvisor-backend/services/campaigns"
)

type Api struct {
	svc   *advisor.Service
	store campaigns.Store
}

func NewApi(svc *advisor.Service, store campaigns.Store) Api {
	return Api{svc: svc, store: store}
}

func writeJson(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	err := json.NewEncoder(w).Encode(body)
	if err != nil {
		slog.Error("failed to encode response body", "err", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJson(w, status, map[string]string{"error": err.Error()})
}

type analyzeRequest struct {
	Url string `json:"url"`
}

func (a Api) Analyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil || req.Url == "" {
		http.Error(w, "expected a json body with a url", http.StatusBadRequest)
		return
	}

	report, err := a.svc.Analyze(r.Context(), req.Url)
	if err != nil {
		writeError(w, http.StatusBadGateway, err)
		return
	}
	writeJson(w, http.StatusOK, report)
}

func (a Api) Campaigns(w http.ResponseWriter, r *http.Request) {
	records, err := a.store.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJson(w, http.StatusOK, records)
}

type referenceRequest struct {
	TopFraction float64 `json:"top_fraction"`
}

func (a Api) Reference(w http.ResponseWriter, r *http.Request) {
	var req referenceRequest
	// an empty body falls back to the default fraction
	json.NewDecoder(r.Body).Decode(&req)

	reference, err := a.svc.RefreshReference(r.Context(), req.TopFraction)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJson(w, http.StatusOK, map[string]any{
		"feature_names": a.svc.Model().FeatureNames(),
		"reference":     reference,
	})
}
