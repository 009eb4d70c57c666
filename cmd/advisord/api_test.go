package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"kickadvisor-backend/lib/advisormodel"
	"kickadvisor-backend/lib/features"
	"kickadvisor-backend/lib/scrapers/kickstarter"
	"kickadvisor-backend/lib/serviceutil"
	"kickadvisor-backend/lib/testutil"
	"kickadvisor-backend/services/advisor"
	"kickadvisor-backend/services/campaigns"
	campaignsdb "kickadvisor-backend/services/campaigns/db"

	"github.com/stretchr/testify/require"
)

const testAccessToken = "test-access-token"

const pageFixture = `<html>
<head><meta property="og:title" content="%s"/></head>
<body>
<div class="full-description"><p>A lamp! Back it for $10.</p></div>
<div class="js-risks"><p>Parts arrive late sometimes.</p></div>
</body>
</html>`

type daemonEnv struct {
	daemon *httptest.Server
	pages  *httptest.Server
	store  campaigns.Store
}

func setupDaemon(t *testing.T) (daemonEnv, func()) {
	res, cleanup := testutil.SetupService(t, testutil.ServiceParams{
		Name:     "advisord",
		DbSchema: campaignsdb.Schema,
	})

	pages := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/p/") {
			http.NotFound(w, r)
			return
		}
		fmt.Fprintf(w, pageFixture, strings.TrimPrefix(r.URL.Path, "/p/"))
	}))

	client, err := kickstarter.NewClient()
	if err != nil {
		t.Fatal(err)
	}

	n := features.Count
	params := advisormodel.Params{
		FeatureNames: features.Names(),
		Mean:         make([]float64, n),
		Scale:        make([]float64, n),
		Coef:         make([]float64, n),
		Reference:    make([]float64, n),
	}
	for i := 0; i < n; i++ {
		params.Scale[i] = 1
		params.Coef[i] = 0.1
	}
	model, err := advisormodel.New(params)
	if err != nil {
		t.Fatal(err)
	}

	store := campaigns.NewStore(res.DB)
	svc := advisor.NewService(store, model, client)
	api := NewApi(svc, store)

	mux := http.NewServeMux()
	mux.Handle("POST /analyze", serviceutil.VerifyAccessToken(testAccessToken, http.HandlerFunc(api.Analyze)))
	mux.Handle("GET /campaigns", serviceutil.VerifyAccessToken(testAccessToken, http.HandlerFunc(api.Campaigns)))
	mux.Handle("POST /reference", serviceutil.VerifyAccessToken(testAccessToken, http.HandlerFunc(api.Reference)))
	daemon := httptest.NewServer(mux)

	return daemonEnv{daemon: daemon, pages: pages, store: store}, func() {
		daemon.Close()
		pages.Close()
		cleanup()
	}
}

func (e daemonEnv) request(t *testing.T, method, path, token string, body any) *http.Response {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequest(method, e.daemon.URL+path, reader)
	if err != nil {
		t.Fatal(err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	return res
}

func decodeBody(t *testing.T, res *http.Response, out any) {
	defer res.Body.Close()
	err := json.NewDecoder(res.Body).Decode(out)
	if err != nil {
		t.Fatal(err)
	}
}

func TestApiAccessToken(t *testing.T) {
	env, cleanup := setupDaemon(t)
	defer cleanup()

	res := env.request(t, "GET", "/campaigns", "", nil)
	res.Body.Close()
	require.Equal(t, http.StatusUnauthorized, res.StatusCode)

	res = env.request(t, "GET", "/campaigns", "wrong-token", nil)
	res.Body.Close()
	require.Equal(t, http.StatusUnauthorized, res.StatusCode)

	res = env.request(t, "GET", "/campaigns", testAccessToken, nil)
	res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)
}

func TestApiAnalyze(t *testing.T) {
	env, cleanup := setupDaemon(t)
	defer cleanup()

	// missing and malformed bodies are rejected up front
	res := env.request(t, "POST", "/analyze", testAccessToken, nil)
	res.Body.Close()
	require.Equal(t, http.StatusBadRequest, res.StatusCode)

	res = env.request(t, "POST", "/analyze", testAccessToken, map[string]string{})
	res.Body.Close()
	require.Equal(t, http.StatusBadRequest, res.StatusCode)

	// an unreachable project page surfaces as a gateway error
	res = env.request(t, "POST", "/analyze", testAccessToken, map[string]string{
		"url": env.pages.URL + "/missing",
	})
	res.Body.Close()
	require.Equal(t, http.StatusBadGateway, res.StatusCode)

	res = env.request(t, "POST", "/analyze", testAccessToken, map[string]string{
		"url": env.pages.URL + "/p/lamp",
	})
	require.Equal(t, http.StatusOK, res.StatusCode)

	var report struct {
		Id          string
		Title       string
		Probability float64
		Suggestions []struct {
			Feature string
			Gap     float64
		}
	}
	decodeBody(t, res, &report)
	require.NotEmpty(t, report.Id)
	require.Equal(t, "lamp", report.Title)
	require.Greater(t, report.Probability, 0.0)
	require.Len(t, report.Suggestions, features.Count)

	res = env.request(t, "GET", "/campaigns", testAccessToken, nil)
	require.Equal(t, http.StatusOK, res.StatusCode)

	var records []struct {
		Url   string
		Title string
	}
	decodeBody(t, res, &records)
	require.Len(t, records, 1)
	require.Equal(t, env.pages.URL+"/p/lamp", records[0].Url)
}

func TestApiReference(t *testing.T) {
	env, cleanup := setupDaemon(t)
	defer cleanup()

	ctx := context.Background()

	// nothing stored with a recorded outcome yet
	res := env.request(t, "POST", "/reference", testAccessToken, nil)
	res.Body.Close()
	require.Equal(t, http.StatusInternalServerError, res.StatusCode)

	res = env.request(t, "POST", "/analyze", testAccessToken, map[string]string{
		"url": env.pages.URL + "/p/lamp",
	})
	res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)

	err := env.store.SetOutcome(ctx, env.pages.URL+"/p/lamp", campaigns.Outcome{
		State: "successful", Goal: 1000, Pledged: 5000,
	})
	if err != nil {
		t.Fatal(err)
	}

	res = env.request(t, "POST", "/reference", testAccessToken, map[string]float64{
		"top_fraction": 0.5,
	})
	require.Equal(t, http.StatusOK, res.StatusCode)

	var body struct {
		FeatureNames []string  `json:"feature_names"`
		Reference    []float64 `json:"reference"`
	}
	decodeBody(t, res, &body)
	require.Equal(t, features.Names(), body.FeatureNames)
	require.Len(t, body.Reference, features.Count)
}

func TestApiConcurrentAnalyzeAndReference(t *testing.T) {
	env, cleanup := setupDaemon(t)
	defer cleanup()

	res := env.request(t, "POST", "/analyze", testAccessToken, map[string]string{
		"url": env.pages.URL + "/p/lamp",
	})
	res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)

	err := env.store.SetOutcome(context.Background(), env.pages.URL+"/p/lamp", campaigns.Outcome{
		State: "successful", Goal: 1000, Pledged: 5000,
	})
	if err != nil {
		t.Fatal(err)
	}

	// scoring traffic and reference refreshes race over the shared model
	statuses := make(chan int, 16)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			res := env.request(t, "POST", "/analyze", testAccessToken, map[string]string{
				"url": env.pages.URL + "/p/boat",
			})
			res.Body.Close()
			statuses <- res.StatusCode
		}()
		go func() {
			defer wg.Done()
			res := env.request(t, "POST", "/reference", testAccessToken, nil)
			res.Body.Close()
			statuses <- res.StatusCode
		}()
	}
	wg.Wait()
	close(statuses)

	for status := range statuses {
		require.Equal(t, http.StatusOK, status)
	}
}
