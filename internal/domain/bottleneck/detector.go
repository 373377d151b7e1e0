// Package bottleneck ranks regions by their combined weather, logistics,
// and price risk derived from raw signals.
package bottleneck

import (
	"fmt"
	"math"
	"sort"

	"github.com/supplyradar/supplyradar/internal/domain/scoring"
	"github.com/supplyradar/supplyradar/internal/domain/signal"
)

// Sub-factor weights in the combined risk.
const (
	weatherWeight   = 0.3
	logisticsWeight = 0.4
	priceWeight     = 0.3
)

// emitThreshold is the minimum combined risk (pre-×100) for a region to be
// reported at all.
const emitThreshold = 0.2

// Explanation thresholds per sub-factor.
const (
	weatherExplainThreshold   = 0.3
	logisticsExplainThreshold = 0.3
	priceExplainThreshold     = 0.2
)

// Factors breaks a bottleneck's combined risk into its components, each in
// [0,1].
type Factors struct {
	Weather   float64 `json:"weather"`
	Logistics float64 `json:"logistics"`
	Price     float64 `json:"price"`
}

// Bottleneck is a region whose combined risk exceeds the reporting
// threshold. CombinedRisk is reported on the 0-100 scale.
type Bottleneck struct {
	Region       string        `json:"region"`
	CombinedRisk float64       `json:"combined_risk"`
	RiskLevel    scoring.Level `json:"risk_level"`
	Factors      Factors       `json:"factors"`
	Explanations []string      `json:"explanations"`
	SignalCount  int           `json:"signal_count"`
}

// Detect groups signals by region and returns the regions whose combined
// risk exceeds the threshold, sorted by combined risk descending. Ties keep
// their prior relative order.
func Detect(signals []signal.Signal) []Bottleneck {
	groups := make(map[string][]signal.Signal)
	var order []string
	for _, s := range signals {
		key := s.RegionKey()
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = append(groups[key], s)
	}

	var bottlenecks []Bottleneck
	for _, region := range order {
		group := groups[region]

		var weatherRisk, logisticsRisk, priceRisk float64
		for _, s := range group {
			switch s.Source {
			case signal.SourceWeather:
				weatherRisk = math.Max(weatherRisk, s.DisruptionSeverity())
			case signal.SourceLogistics:
				logisticsRisk = math.Max(logisticsRisk, s.CongestionLevel())
			case signal.SourceMandi, signal.SourceENAM:
				if maxP := s.MaxPrice(); maxP > 0 {
					priceRisk = math.Max(priceRisk, (maxP-s.ModalPrice())/maxP)
				}
			}
		}

		combined := weatherWeight*weatherRisk + logisticsWeight*logisticsRisk + priceWeight*priceRisk
		if combined <= emitThreshold {
			continue
		}

		var explanations []string
		if weatherRisk > weatherExplainThreshold {
			explanations = append(explanations, fmt.Sprintf("Weather disruption severity: %.1f%%", weatherRisk*100))
		}
		if logisticsRisk > logisticsExplainThreshold {
			explanations = append(explanations, fmt.Sprintf("Logistics congestion: %.1f%%", logisticsRisk*100))
		}
		if priceRisk > priceExplainThreshold {
			explanations = append(explanations, fmt.Sprintf("Price volatility detected: %.1f%%", priceRisk*100))
		}

		bottlenecks = append(bottlenecks, Bottleneck{
			Region:       region,
			CombinedRisk: round2(combined * 100),
			RiskLevel:    scoring.LevelForScore(combined * 100),
			Factors: Factors{
				Weather:   round3(weatherRisk),
				Logistics: round3(logisticsRisk),
				Price:     round3(priceRisk),
			},
			Explanations: explanations,
			SignalCount:  len(group),
		})
	}

	sort.SliceStable(bottlenecks, func(i, j int) bool {
		return bottlenecks[i].CombinedRisk > bottlenecks[j].CombinedRisk
	})
	return bottlenecks
}

func round2(x float64) float64 { return math.Round(x*100) / 100 }
func round3(x float64) float64 { return math.Round(x*1000) / 1000 }
