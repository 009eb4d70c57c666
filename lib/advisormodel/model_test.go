package advisormodel

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func testParams() Params {
	return Params{
		FeatureNames: []string{"a", "b", "c"},
		Mean:         []float64{1, 2, 3},
		Scale:        []float64{2, 0, 1},
		Coef:         []float64{0.5, 1, -1},
		Intercept:    0.1,
		Reference:    []float64{1, 0, 0.2},
	}
}

func TestValidate(t *testing.T) {
	testCases := []struct {
		name   string
		mutate func(*Params)
		ok     bool
	}{
		{"valid", func(p *Params) {}, true},
		{"no names", func(p *Params) { p.FeatureNames = nil }, false},
		{"short mean", func(p *Params) { p.Mean = p.Mean[:2] }, false},
		{"short coef", func(p *Params) { p.Coef = p.Coef[:1] }, false},
		{"short reference", func(p *Params) { p.Reference = nil }, false},
		{"negative scale", func(p *Params) { p.Scale[0] = -1 }, false},
	}

	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			params := testParams()
			test.mutate(&params)
			err := params.Validate()
			if test.ok {
				require.NoError(t, err)
			} else {
				require.Error(t, err)
			}
		})
	}
}

func TestStandardize(t *testing.T) {
	model, err := New(testParams())
	require.NoError(t, err)

	z, err := model.Standardize([]float64{3, 5, 2})
	require.NoError(t, err)
	// the zero scale on "b" must not divide by zero
	require.Equal(t, []float64{1, 0, -1}, z)

	_, err = model.Standardize([]float64{1, 2})
	require.Error(t, err)
}

func TestPredictProba(t *testing.T) {
	model, err := New(testParams())
	require.NoError(t, err)

	// logit = 0.1 + 0.5*1 + 1*0 + (-1)*(-1) = 1.6
	proba := model.PredictProba([]float64{1, 0, -1})
	require.InDelta(t, 0.832018, proba, 1e-5)

	// all-zero input reduces to the intercept
	proba = model.PredictProba([]float64{0, 0, 0})
	require.InDelta(t, 0.524979, proba, 1e-5)
}

func TestCompare(t *testing.T) {
	model, err := New(testParams())
	require.NoError(t, err)

	got := model.Compare([]float64{1, 0, -1})
	expected := []Suggestion{
		{Feature: "a", Strength: 0.5, Reference: 1, Gap: 0.5},
		{Feature: "b", Strength: 0, Reference: 0, Gap: 0},
		{Feature: "c", Strength: 1, Reference: 0.2, Gap: -0.8},
	}

	diff := cmp.Diff(expected, got)
	require.Empty(t, diff)
}

func TestWithReference(t *testing.T) {
	model, err := New(testParams())
	require.NoError(t, err)

	refreshed, err := model.WithReference([]float64{0, 0, 1})
	require.NoError(t, err)
	require.Equal(t, []float64{0, 0, 1}, refreshed.Reference())
	// the original model keeps its reference
	require.Equal(t, []float64{1, 0, 0.2}, model.Reference())

	_, err = model.WithReference([]float64{1})
	require.Error(t, err)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "advisor-model.json5")

	err := os.WriteFile(path, []byte(`{
		// exported by the offline training run
		feature_names: ["a", "b", "c"],
		mean: [1, 2, 3],
		scale: [2, 0, 1],
		coef: [0.5, 1, -1],
		intercept: 0.1,
		reference: [1, 0, 0.2],
	}`), 0600)
	require.NoError(t, err)

	model, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b", "c"}, model.FeatureNames())

	_, err = Load(filepath.Join(dir, "missing.json5"))
	require.Error(t, err)
}
