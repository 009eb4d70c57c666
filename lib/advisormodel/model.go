// Package advisormodel scores a campaign feature vector with pre-fit
// logistic-regression parameters and compares its importance-weighted
// feature strengths against the top-funded cohort.
//
// Training happens offline. This package only consumes the exported
// parameters: scaler means/scales, coefficients, intercept and the
// cohort reference vector.
package advisormodel

import (
	"fmt"
	"math"
	"sort"

	"kickadvisor-backend/lib/configutil"
)

type Params struct {
	FeatureNames []string  `json:"feature_names"`
	Mean         []float64 `json:"mean"`
	Scale        []float64 `json:"scale"`
	Coef         []float64 `json:"coef"`
	Intercept    float64   `json:"intercept"`
	// mean standardized feature strengths of the top-funded cohort
	Reference []float64 `json:"reference"`
}

func (p Params) Validate() error {
	n := len(p.FeatureNames)
	if n == 0 {
		return fmt.Errorf("no feature names")
	}
	if len(p.Mean) != n || len(p.Scale) != n || len(p.Coef) != n || len(p.Reference) != n {
		return fmt.Errorf(
			"parameter length mismatch: names=%d mean=%d scale=%d coef=%d reference=%d",
			n, len(p.Mean), len(p.Scale), len(p.Coef), len(p.Reference),
		)
	}
	for i, s := range p.Scale {
		if s < 0 {
			return fmt.Errorf("negative scale for feature %q", p.FeatureNames[i])
		}
	}
	return nil
}

type Model struct {
	params Params
}

func New(params Params) (Model, error) {
	err := params.Validate()
	if err != nil {
		return Model{}, err
	}
	return Model{params: params}, nil
}

// Load reads model parameters the same way service configs are read,
// so a `<name>.local.json5` can override the shipped parameters.
func Load(path string) (Model, error) {
	params, err := configutil.ReadConfig[Params](path)
	if err != nil {
		return Model{}, err
	}
	return New(params)
}

func (m Model) FeatureNames() []string {
	out := make([]string, len(m.params.FeatureNames))
	copy(out, m.params.FeatureNames)
	return out
}

func (m Model) Reference() []float64 {
	out := make([]float64, len(m.params.Reference))
	copy(out, m.params.Reference)
	return out
}

// WithReference returns a copy of the model using a freshly computed
// cohort reference vector.
func (m Model) WithReference(reference []float64) (Model, error) {
	params := m.params
	params.Reference = reference
	return New(params)
}

// Standardize maps a raw feature vector onto z-scores using the
// pre-fit scaler. A zero scale marks a degenerate feature and yields
// a zero z-score instead of a division by zero.
func (m Model) Standardize(vec []float64) ([]float64, error) {
	if len(vec) != len(m.params.Mean) {
		return nil, fmt.Errorf(
			"feature vector has length %d, model expects %d",
			len(vec), len(m.params.Mean),
		)
	}

	z := make([]float64, len(vec))
	for i, x := range vec {
		if m.params.Scale[i] == 0 {
			z[i] = 0
			continue
		}
		z[i] = (x - m.params.Mean[i]) / m.params.Scale[i]
	}
	return z, nil
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

// PredictProba returns the funding-success probability for a
// standardized feature vector.
func (m Model) PredictProba(z []float64) float64 {
	logit := m.params.Intercept
	for i, v := range z {
		logit += m.params.Coef[i] * v
	}
	return sigmoid(logit)
}

// Strengths weighs each standardized feature by its model
// coefficient, giving the per-feature contribution to the logit.
func (m Model) Strengths(z []float64) []float64 {
	out := make([]float64, len(z))
	for i, v := range z {
		out[i] = m.params.Coef[i] * v
	}
	return out
}

type Suggestion struct {
	Feature   string
	Strength  float64
	Reference float64
	// Gap is Reference - Strength; large positive gaps are the
	// features with the most room to improve.
	Gap float64
}

// Compare ranks every feature by how far its weighted strength falls
// short of the top-funded cohort.
func (m Model) Compare(z []float64) []Suggestion {
	strengths := m.Strengths(z)

	out := make([]Suggestion, len(strengths))
	for i, s := range strengths {
		out[i] = Suggestion{
			Feature:   m.params.FeatureNames[i],
			Strength:  s,
			Reference: m.params.Reference[i],
			Gap:       m.params.Reference[i] - s,
		}
	}
	sort.SliceStable(out, func(a, b int) bool {
		return out[a].Gap > out[b].Gap
	})
	return out
}
