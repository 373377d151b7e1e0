// Package ml holds the bootstrap-trained risk regressor. The model is
// trained exactly once at process start on synthetic data and is immutable
// afterwards, so a single instance is safe for concurrent scoring.
package ml

import (
	"math"
	"math/rand"

	"github.com/rs/zerolog/log"
)

// ModelVersion tags every score result produced with this model.
const ModelVersion = "v1.0.0"

const (
	numFeatures     = 8
	trainingSamples = 1000
	trainingSeed    = 42
)

// trainingWeights is the fixed global weighting used to label the synthetic
// training set. Deliberately different from every segment's heuristic
// weights so the blended score is not a plain rescale.
var trainingWeights = [numFeatures]float64{0.20, 0.15, 0.20, 0.15, 0.10, 0.10, 0.05, 0.05}

// Model is a least-squares linear regressor over the 8 feature dimensions.
// All fields are fixed after Train returns.
type Model struct {
	coef        [numFeatures]float64
	intercept   float64
	importances [numFeatures]float64
	version     string
}

// Train fits the model on 1000 synthetic samples drawn uniformly from
// [0,1]^8 with labels from the fixed global weighting (x100). The draw is
// seeded, so training is reproducible across processes.
func Train() *Model {
	rng := rand.New(rand.NewSource(trainingSeed))

	x := make([][numFeatures]float64, trainingSamples)
	y := make([]float64, trainingSamples)
	for i := 0; i < trainingSamples; i++ {
		var label float64
		for j := 0; j < numFeatures; j++ {
			x[i][j] = rng.Float64()
			label += x[i][j] * trainingWeights[j]
		}
		y[i] = label * 100.0
	}

	coef, intercept := fitLeastSquares(x, y)

	m := &Model{coef: coef, intercept: intercept, version: ModelVersion}

	// Feature importance as normalized absolute coefficients. For inputs on
	// a common [0,1] scale this matches the coefficient's share of the
	// output range.
	var total float64
	for _, c := range coef {
		total += math.Abs(c)
	}
	if total > 0 {
		for j, c := range coef {
			m.importances[j] = math.Abs(c) / total
		}
	}

	log.Info().Str("model_version", m.version).Int("samples", trainingSamples).Msg("risk model trained")
	return m
}

// Predict returns the regression estimate for a feature vector in declared
// feature order. Read-only; safe for concurrent use.
func (m *Model) Predict(x [numFeatures]float64) float64 {
	score := m.intercept
	for j, c := range m.coef {
		score += c * x[j]
	}
	return score
}

// Importances returns the model's global per-feature importance in declared
// feature order. The values sum to 1 and are segment-independent.
func (m *Model) Importances() [numFeatures]float64 {
	return m.importances
}

// Version reports the trained model version.
func (m *Model) Version() string {
	return m.version
}

// fitLeastSquares solves the normal equations for a linear fit with
// intercept via Gaussian elimination on the 9x9 system.
func fitLeastSquares(x [][numFeatures]float64, y []float64) ([numFeatures]float64, float64) {
	const dim = numFeatures + 1 // +1 intercept column

	var xtx [dim][dim]float64
	var xty [dim]float64

	for i := range x {
		var row [dim]float64
		row[0] = 1.0
		for j := 0; j < numFeatures; j++ {
			row[j+1] = x[i][j]
		}
		for a := 0; a < dim; a++ {
			xty[a] += row[a] * y[i]
			for b := 0; b < dim; b++ {
				xtx[a][b] += row[a] * row[b]
			}
		}
	}

	// Gaussian elimination with partial pivoting.
	var aug [dim][dim + 1]float64
	for a := 0; a < dim; a++ {
		copy(aug[a][:dim], xtx[a][:])
		aug[a][dim] = xty[a]
	}

	for col := 0; col < dim; col++ {
		pivot := col
		for r := col + 1; r < dim; r++ {
			if math.Abs(aug[r][col]) > math.Abs(aug[pivot][col]) {
				pivot = r
			}
		}
		aug[col], aug[pivot] = aug[pivot], aug[col]

		pv := aug[col][col]
		if math.Abs(pv) < 1e-12 {
			continue
		}
		for c := col; c <= dim; c++ {
			aug[col][c] /= pv
		}
		for r := 0; r < dim; r++ {
			if r == col {
				continue
			}
			factor := aug[r][col]
			if factor == 0 {
				continue
			}
			for c := col; c <= dim; c++ {
				aug[r][c] -= factor * aug[col][c]
			}
		}
	}

	var coef [numFeatures]float64
	intercept := aug[0][dim]
	for j := 0; j < numFeatures; j++ {
		coef[j] = aug[j+1][dim]
	}
	return coef, intercept
}
