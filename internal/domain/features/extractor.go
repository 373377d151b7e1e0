package features

import (
	"math"
	"math/rand"
	"time"

	"github.com/supplyradar/supplyradar/internal/domain/signal"
	"github.com/supplyradar/supplyradar/internal/randutil"
)

// epsilon guards every ratio against division by zero.
const epsilon = 1e-6

// seasonalByMonth maps calendar month (Jan..Dec) to a procurement risk
// factor. The mid-year peak reflects the monsoon window.
var seasonalByMonth = [12]float64{0.3, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.7, 0.5, 0.4, 0.3, 0.3}

// Extractor builds segment feature vectors from raw signal lists. The
// randomness source feeds the historical_disruption_rate placeholder; tests
// pin it with a fixed seed. One extractor serves concurrent scans, so draws
// go through a locked stream.
type Extractor struct {
	rng *randutil.Locked
}

// NewExtractor creates an extractor with the given randomness source.
// A nil source falls back to a time-seeded one.
func NewExtractor(rng *rand.Rand) *Extractor {
	return &Extractor{rng: randutil.New(rng)}
}

// Procurement extracts features from mandi prices, eNAM volumes, and
// weather signals. now supplies the month for the seasonal factor.
func (e *Extractor) Procurement(mandi, enam, weather []signal.Signal, now time.Time) Vector {
	var prices []float64
	for _, s := range mandi {
		if p := s.ModalPrice(); p != 0 {
			prices = append(prices, p)
		}
	}

	volatility := 0.1
	if len(prices) > 1 {
		volatility = math.Min(stdDev(prices)/(mean(prices)+epsilon), 1.0)
	}

	var quantities float64
	haveQuantities := false
	for _, s := range enam {
		if q := s.QuantityTraded(); q != 0 {
			quantities += q
			haveQuantities = true
		}
	}
	supplyDemand := 0.5
	if haveQuantities {
		supplyDemand = math.Min(quantities/5000.0, 1.0)
	}

	return Vector{
		PriceVolatility:          volatility,
		WeatherSeverity:          maxSeverity(weather),
		SupplyDemandRatio:        supplyDemand,
		SeasonalFactor:           seasonalByMonth[now.Month()-1],
		HistoricalDisruptionRate: e.uniform(0.1, 0.3),
	}
}

// Transport extracts features from logistics corridor and weather signals.
func (e *Extractor) Transport(corridors, weather []signal.Signal) Vector {
	v := Vector{
		WeatherSeverity:          maxSeverity(weather),
		SeasonalFactor:           0.3,
		HistoricalDisruptionRate: e.uniform(0.1, 0.25),
	}
	if len(corridors) > 0 {
		v.LogisticsDelay = math.Min(maxDelay(corridors)/5.0, 1.0)
		v.CongestionLevel = maxCongestion(corridors)
	}
	return v
}

// ImportExport extracts features from trade and logistics corridor signals.
func (e *Extractor) ImportExport(trade, corridors []signal.Signal) Vector {
	var changes []float64
	for _, s := range trade {
		changes = append(changes, math.Abs(s.ChangePct()))
	}

	v := Vector{
		SeasonalFactor:           0.4,
		HistoricalDisruptionRate: e.uniform(0.15, 0.35),
	}
	if len(changes) > 0 {
		v.PriceVolatility = math.Min(maxOf(changes)/20.0, 1.0)
		v.TradeVolumeChange = math.Min(sum(changes)/(float64(len(changes))*15.0+epsilon), 1.0)
	}
	if len(corridors) > 0 {
		v.LogisticsDelay = math.Min(maxDelay(corridors)/5.0, 1.0)
		v.CongestionLevel = maxCongestion(corridors)
	}
	return v
}

func (e *Extractor) uniform(lo, hi float64) float64 {
	return lo + e.rng.Float64()*(hi-lo)
}

func maxSeverity(weather []signal.Signal) float64 {
	var m float64
	for _, s := range weather {
		if sev := s.DisruptionSeverity(); sev > m {
			m = sev
		}
	}
	return m
}

func maxDelay(corridors []signal.Signal) float64 {
	var m float64
	for _, s := range corridors {
		if d := s.DelayHours(); d > m {
			m = d
		}
	}
	return m
}

func maxCongestion(corridors []signal.Signal) float64 {
	var m float64
	for _, s := range corridors {
		if c := s.CongestionLevel(); c > m {
			m = c
		}
	}
	return m
}

func mean(xs []float64) float64 {
	return sum(xs) / float64(len(xs))
}

// stdDev is the population standard deviation.
func stdDev(xs []float64) float64 {
	m := mean(xs)
	var ss float64
	for _, x := range xs {
		d := x - m
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(xs)))
}

func sum(xs []float64) float64 {
	var t float64
	for _, x := range xs {
		t += x
	}
	return t
}

func maxOf(xs []float64) float64 {
	m := xs[0]
	for _, x := range xs[1:] {
		if x > m {
			m = x
		}
	}
	return m
}
