package advisor

import (
	"context"
	"fmt"
	"math"
	"sort"

	"kickadvisor-backend/services/campaigns"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const DefaultTopFraction = 0.05

// RefreshReference recomputes the cohort reference vector from the
// stored corpus: campaigns are ranked by pledged/goal ratio, the top
// fraction is kept (at least one), and their standardized vectors are
// averaged. The service keeps using the refreshed model afterwards.
func (s *Service) RefreshReference(ctx context.Context, topFraction float64) ([]float64, error) {
	ctx, span := tracer.Start(ctx, "RefreshReference")
	defer span.End()

	if topFraction <= 0 || topFraction > 1 {
		topFraction = DefaultTopFraction
	}
	span.SetAttributes(attribute.Float64("top_fraction", topFraction))

	model := s.Model()

	outcomes, err := s.store.Vectors(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to load stored vectors")
		return nil, err
	}

	// campaigns without a recorded goal have no funded ratio
	var ranked []campaigns.VectorOutcome
	for _, o := range outcomes {
		if o.Goal > 0 {
			ranked = append(ranked, o)
		}
	}
	if len(ranked) == 0 {
		err := fmt.Errorf("no stored campaigns with recorded outcomes")
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	sort.SliceStable(ranked, func(a, b int) bool {
		return ranked[a].Pledged/ranked[a].Goal > ranked[b].Pledged/ranked[b].Goal
	})

	take := int(math.Ceil(topFraction * float64(len(ranked))))
	if take < 1 {
		take = 1
	}
	top := ranked[:take]
	span.SetAttributes(attribute.Int("cohort_size", take))

	var reference []float64
	for _, o := range top {
		z, err := model.Standardize(o.Vector)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "stored vector does not fit the model")
			return nil, err
		}
		strengths := model.Strengths(z)

		if reference == nil {
			reference = make([]float64, len(strengths))
		}
		for i, v := range strengths {
			reference[i] += v
		}
	}
	for i := range reference {
		reference[i] /= float64(take)
	}

	refreshed, err := model.WithReference(reference)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to apply refreshed reference")
		return nil, err
	}
	s.mu.Lock()
	s.model = refreshed
	s.mu.Unlock()

	return reference, nil
}
