package advisor

import (
	"context"
	"sync"
	"time"

	"kickadvisor-backend/lib/advisormodel"
	"kickadvisor-backend/lib/features"
	"kickadvisor-backend/lib/scrapers/kickstarter"
	"kickadvisor-backend/lib/telemetry"
	"kickadvisor-backend/services/campaigns"

	"github.com/mazen160/go-random"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = telemetry.Tracer("kickadvisor.services.advisor")

type Service struct {
	store  campaigns.Store
	client kickstarter.Client

	// guards model, which RefreshReference swaps while requests are in flight
	mu    sync.RWMutex
	model advisormodel.Model
}

func NewService(store campaigns.Store, model advisormodel.Model, client kickstarter.Client) *Service {
	return &Service{
		store:  store,
		model:  model,
		client: client,
	}
}

func (s *Service) Model() advisormodel.Model {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.model
}

type Report struct {
	Id          string
	Url         string
	Title       string
	Probability float64
	Features    features.Features
	Suggestions []advisormodel.Suggestion
}

// Analyze scrapes a project page, extracts and persists its feature
// vector, and scores it against the model and the top-funded cohort.
func (s *Service) Analyze(ctx context.Context, link string) (Report, error) {
	ctx, span := tracer.Start(ctx, "Analyze")
	defer span.End()
	span.SetAttributes(attribute.String("url", link))

	project, err := s.client.FetchProject(ctx, link)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch project")
		return Report{}, err
	}

	feats, err := features.Extract(project.Sections.About.Html, project.Sections.Risks.Html)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to extract features")
		return Report{}, err
	}
	vector := feats.Vector()

	err = s.store.Save(ctx, campaigns.SaveRequest{
		Url:       project.Url,
		Title:     project.Title,
		ScrapedAt: time.Now(),
		AboutHtml: project.Sections.About.Html,
		RisksHtml: project.Sections.Risks.Html,
		Anchors:   project.Anchors,
		Vector:    vector,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to persist campaign")
		return Report{}, err
	}

	// score against one consistent snapshot of the model
	model := s.Model()

	z, err := model.Standardize(vector)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to standardize feature vector")
		return Report{}, err
	}

	id, err := random.String(12)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to generate report id")
		return Report{}, err
	}

	return Report{
		Id:          id,
		Url:         project.Url,
		Title:       project.Title,
		Probability: model.PredictProba(z),
		Features:    feats,
		Suggestions: model.Compare(z),
	}, nil
}
