package ml

import (
	"math"
	"testing"
)

func TestTrain_Deterministic(t *testing.T) {
	a := Train()
	b := Train()

	x := [8]float64{0.3, 0.1, 0.9, 0.5, 0.2, 0.7, 0.4, 0.6}
	if a.Predict(x) != b.Predict(x) {
		t.Error("two trainings with the fixed seed must produce identical predictions")
	}
	if a.Importances() != b.Importances() {
		t.Error("feature importances must be reproducible")
	}
}

func TestPredict_RecoversTrainingWeights(t *testing.T) {
	m := Train()

	// The labels are an exact linear function of the inputs, so the
	// least-squares fit should recover the generating weights.
	for j, w := range trainingWeights {
		if math.Abs(m.coef[j]-w*100.0) > 0.5 {
			t.Errorf("coef[%d] = %f, want ~%f", j, m.coef[j], w*100.0)
		}
	}
	if math.Abs(m.intercept) > 0.5 {
		t.Errorf("intercept = %f, want ~0", m.intercept)
	}
}

func TestPredict_Bounds(t *testing.T) {
	m := Train()

	zero := m.Predict([8]float64{})
	if math.Abs(zero) > 1.0 {
		t.Errorf("prediction for zero vector = %f, want ~0", zero)
	}

	ones := m.Predict([8]float64{1, 1, 1, 1, 1, 1, 1, 1})
	if math.Abs(ones-100.0) > 1.0 {
		t.Errorf("prediction for all-ones vector = %f, want ~100", ones)
	}
}

func TestImportances_SumToOne(t *testing.T) {
	m := Train()

	var total float64
	for _, imp := range m.Importances() {
		if imp < 0 {
			t.Errorf("importance %f must be non-negative", imp)
		}
		total += imp
	}
	if math.Abs(total-1.0) > 1e-9 {
		t.Errorf("importances sum to %f, want 1.0", total)
	}
}

func TestVersion(t *testing.T) {
	if Train().Version() != ModelVersion {
		t.Errorf("version = %s, want %s", Train().Version(), ModelVersion)
	}
}
