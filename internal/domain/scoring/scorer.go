package scoring

import (
	"math"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/supplyradar/supplyradar/internal/domain/features"
)

// Blend proportions between the model estimate and the heuristic baseline.
// The heuristic keeps a guaranteed floor of influence so every score stays
// auditable against the published weight tables.
const (
	mlBlend        = 0.6
	heuristicBlend = 0.4
)

// Level classifies a 0-100 score.
type Level string

const (
	LevelLow      Level = "low"
	LevelMedium   Level = "medium"
	LevelHigh     Level = "high"
	LevelCritical Level = "critical"
)

// LevelForScore maps a score to its level. Boundaries are inclusive:
// 75 is critical, 50 is high, 25 is medium.
func LevelForScore(score float64) Level {
	switch {
	case score >= 75:
		return LevelCritical
	case score >= 50:
		return LevelHigh
	case score >= 25:
		return LevelMedium
	default:
		return LevelLow
	}
}

// Regressor is the read-only model contract the scorer depends on. The
// production implementation is ml.Model; tests substitute fixed stubs.
type Regressor interface {
	Predict(x [8]float64) float64
	Importances() [8]float64
	Version() string
}

// FactorDetail explains one feature's share of a score.
type FactorDetail struct {
	Value        float64  `json:"value"`
	Weight       float64  `json:"weight"`
	Contribution float64  `json:"contribution"`
	MLImportance *float64 `json:"ml_importance,omitempty"`
}

// Result is the full outcome of one scoring call.
type Result struct {
	Segment             Segment                 `json:"segment"`
	Score               float64                 `json:"score"`
	RiskLevel           Level                   `json:"risk_level"`
	ContributingFactors map[string]FactorDetail `json:"contributing_factors"`
	FeatureWeights      map[string]float64      `json:"feature_weights"`
	WeightedScore       float64                 `json:"weighted_score"`
	MLScore             float64                 `json:"ml_score"`
	ModelVersion        string                  `json:"model_version"`
	ComputedAt          time.Time               `json:"computed_at"`
}

// Scorer blends the weighted heuristic with the model estimate. It holds no
// mutable state and is safe for concurrent use.
type Scorer struct {
	weights *SegmentWeightConfig
	model   Regressor
}

// NewScorer builds a scorer around an already-trained model. A nil model
// degrades to pure heuristic scoring.
func NewScorer(model Regressor) *Scorer {
	return &Scorer{weights: NewSegmentWeights(), model: model}
}

// Score computes the blended risk score for one segment. Unknown segments
// fall back to procurement weights with a warning rather than failing.
func (s *Scorer) Score(v features.Vector, segment Segment) *Result {
	if !s.weights.Known(segment) {
		log.Warn().Str("segment", string(segment)).Msg("unknown segment, falling back to procurement weights")
	}
	weights := s.weights.Weights(segment)

	var weightedScore float64
	for _, name := range features.Names {
		weightedScore += v.Get(name) * weights[name]
	}
	weightedScore *= 100.0

	mlScore := weightedScore
	modelVersion := ""
	if s.model != nil {
		mlScore = s.model.Predict(v.Values())
		modelVersion = s.model.Version()
	}

	finalScore := clamp(mlBlend*mlScore+heuristicBlend*weightedScore, 0, 100)

	factors := make(map[string]FactorDetail)
	featureWeights := make(map[string]float64)
	for i, name := range features.Names {
		value := v.Get(name)
		weight := weights[name]
		contribution := value * weight * 100.0
		if contribution <= 0 {
			continue
		}
		detail := FactorDetail{
			Value:        round4(value),
			Weight:       round4(weight),
			Contribution: round2(contribution),
		}
		if s.model != nil {
			imp := round4(s.model.Importances()[i])
			detail.MLImportance = &imp
		}
		factors[name] = detail
		featureWeights[name] = round4(weight)
	}

	return &Result{
		Segment:             segment,
		Score:               round2(finalScore),
		RiskLevel:           LevelForScore(finalScore),
		ContributingFactors: factors,
		FeatureWeights:      featureWeights,
		WeightedScore:       round2(weightedScore),
		MLScore:             round2(mlScore),
		ModelVersion:        modelVersion,
		ComputedAt:          time.Now().UTC(),
	}
}

func clamp(x, lo, hi float64) float64 {
	return math.Min(math.Max(x, lo), hi)
}

func round2(x float64) float64 { return math.Round(x*100) / 100 }
func round4(x float64) float64 { return math.Round(x*10000) / 10000 }
