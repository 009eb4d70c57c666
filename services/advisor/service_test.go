package advisor

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"kickadvisor-backend/lib/advisormodel"
	"kickadvisor-backend/lib/features"
	"kickadvisor-backend/lib/scrapers/kickstarter"
	"kickadvisor-backend/lib/testutil"
	"kickadvisor-backend/services/campaigns"
	campaignsdb "kickadvisor-backend/services/campaigns/db"

	"github.com/stretchr/testify/require"
)

func testModel(t testing.TB) advisormodel.Model {
	n := features.Count

	params := advisormodel.Params{
		FeatureNames: features.Names(),
		Mean:         make([]float64, n),
		Scale:        make([]float64, n),
		Coef:         make([]float64, n),
		Reference:    make([]float64, n),
		Intercept:    0,
	}
	for i := 0; i < n; i++ {
		params.Scale[i] = 1
		params.Coef[i] = 0.1
	}

	model, err := advisormodel.New(params)
	if err != nil {
		t.Fatal(err)
	}
	return model
}

const pageTemplate = `<html>
<head><meta property="og:title" content="%s"/></head>
<body>
<div class="full-description"><p>%s</p></div>
<div class="js-risks"><p>Suppliers can slip.</p></div>
</body>
</html>`

func setupAdvisor(t *testing.T) (*Service, campaigns.Store, *httptest.Server, func()) {
	res, cleanup := testutil.SetupService(t, testutil.ServiceParams{
		Name:     "advisor",
		DbSchema: campaignsdb.Schema,
	})
	store := campaigns.NewStore(res.DB)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/p/lamp":
			fmt.Fprintf(w, pageTemplate, "Solar Lamp", "We sell a very bright lamp! Pledge $20 today.")
		case "/p/boat":
			fmt.Fprintf(w, pageTemplate, "Folding Boat", "A boat that folds.")
		default:
			http.NotFound(w, r)
		}
	}))

	client, err := kickstarter.NewClient()
	if err != nil {
		t.Fatal(err)
	}

	svc := NewService(store, testModel(t), client)
	return svc, store, server, func() {
		server.Close()
		cleanup()
	}
}

func TestAnalyze(t *testing.T) {
	svc, store, server, cleanup := setupAdvisor(t)
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()

	report, err := svc.Analyze(ctx, server.URL+"/p/lamp")
	if err != nil {
		t.Fatal(err)
	}

	require.NotEmpty(t, report.Id)
	require.Equal(t, "Solar Lamp", report.Title)
	require.Greater(t, report.Probability, 0.0)
	require.Less(t, report.Probability, 1.0)
	require.Len(t, report.Suggestions, features.Count)

	// suggestions come ranked by gap, largest shortfall first
	for i := 1; i < len(report.Suggestions); i++ {
		require.GreaterOrEqual(
			t,
			report.Suggestions[i-1].Gap,
			report.Suggestions[i].Gap,
		)
	}

	require.Equal(t, float64(1), report.Features.AboutExclamations)
	require.Equal(t, float64(1), report.Features.AboutMoneyMentions)

	// the campaign and its vector must have been persisted
	record, err := store.Get(ctx, server.URL+"/p/lamp")
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, "Solar Lamp", record.Title)

	outcomes, err := store.Vectors(ctx)
	if err != nil {
		t.Fatal(err)
	}
	require.Len(t, outcomes, 1)
	require.Equal(t, report.Features.Vector(), outcomes[0].Vector)
}

func TestAnalyzeFetchFailure(t *testing.T) {
	svc, _, server, cleanup := setupAdvisor(t)
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()

	_, err := svc.Analyze(ctx, server.URL+"/p/missing")
	require.Error(t, err)
}

func TestRefreshReference(t *testing.T) {
	svc, store, server, cleanup := setupAdvisor(t)
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()

	// nothing stored yet
	_, err := svc.RefreshReference(ctx, 0.05)
	require.Error(t, err)

	_, err = svc.Analyze(ctx, server.URL+"/p/lamp")
	if err != nil {
		t.Fatal(err)
	}
	_, err = svc.Analyze(ctx, server.URL+"/p/boat")
	if err != nil {
		t.Fatal(err)
	}

	err = store.SetOutcome(ctx, server.URL+"/p/lamp", campaigns.Outcome{
		State: "successful", Goal: 1000, Pledged: 5000,
	})
	if err != nil {
		t.Fatal(err)
	}
	err = store.SetOutcome(ctx, server.URL+"/p/boat", campaigns.Outcome{
		State: "failed", Goal: 1000, Pledged: 50,
	})
	if err != nil {
		t.Fatal(err)
	}

	// a 50% cut of two campaigns keeps only the best-funded one
	reference, err := svc.RefreshReference(ctx, 0.5)
	if err != nil {
		t.Fatal(err)
	}
	require.Len(t, reference, features.Count)
	require.Equal(t, reference, svc.Model().Reference())

	// the lamp page has one exclamation mark, so with all-one scales
	// and 0.1 coefficients its weighted strength lands in the reference
	lampFeats, err := features.Extract(
		fmt.Sprintf("<p>%s</p>", "We sell a very bright lamp! Pledge $20 today."),
		"<p>Suppliers can slip.</p>",
	)
	if err != nil {
		t.Fatal(err)
	}
	z, err := svc.Model().Standardize(lampFeats.Vector())
	if err != nil {
		t.Fatal(err)
	}
	require.InDeltaSlice(t, svc.Model().Strengths(z), reference, 1e-9)
}

func TestAnalyzeDuringReferenceRefresh(t *testing.T) {
	svc, store, server, cleanup := setupAdvisor(t)
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*30)
	defer cancel()

	_, err := svc.Analyze(ctx, server.URL+"/p/lamp")
	if err != nil {
		t.Fatal(err)
	}
	err = store.SetOutcome(ctx, server.URL+"/p/lamp", campaigns.Outcome{
		State: "successful", Goal: 1000, Pledged: 5000,
	})
	if err != nil {
		t.Fatal(err)
	}

	// refreshing the reference must never tear the model out from
	// under in-flight scoring
	errs := make(chan error, 32)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := svc.Analyze(ctx, server.URL+"/p/boat")
			errs <- err
		}()
		go func() {
			defer wg.Done()
			_, err := svc.RefreshReference(ctx, 0.5)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
	require.Len(t, svc.Model().Reference(), features.Count)
}

func TestRenderReport(t *testing.T) {
	svc, _, server, cleanup := setupAdvisor(t)
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()

	report, err := svc.Analyze(ctx, server.URL+"/p/lamp")
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	RenderReport(&buf, report)
	out := buf.String()
	require.Contains(t, out, "about_exclamations")
	require.Contains(t, out, "Solar Lamp")

	text := FormatReportText(report)
	require.Contains(t, text, report.Url)
	require.Contains(t, text, "risks_words")
}
