package scoring

import (
	"fmt"

	"github.com/supplyradar/supplyradar/internal/domain/features"
)

// Segment is one of the three independently scored supply chain domains.
type Segment string

const (
	SegmentProcurement  Segment = "procurement"
	SegmentTransport    Segment = "transport"
	SegmentImportExport Segment = "import_export"
)

// Segments lists all known segments in scoring order.
var Segments = []Segment{SegmentProcurement, SegmentTransport, SegmentImportExport}

// Weights maps feature name to its heuristic weight for one segment.
type Weights map[string]float64

// Sum returns the total weight mass.
func (w Weights) Sum() float64 {
	var total float64
	for _, v := range w {
		total += v
	}
	return total
}

// SegmentWeightConfig holds the static per-segment weight tables. Defined
// once, never mutated.
type SegmentWeightConfig struct {
	procurement  Weights
	transport    Weights
	importExport Weights
}

// NewSegmentWeights returns the standard weight tables. Each segment's
// weights sum to 1.0.
func NewSegmentWeights() *SegmentWeightConfig {
	return &SegmentWeightConfig{
		procurement: Weights{
			features.PriceVolatility:          0.30,
			features.WeatherSeverity:          0.15,
			features.SupplyDemandRatio:        0.25,
			features.SeasonalFactor:           0.15,
			features.HistoricalDisruptionRate: 0.15,
			features.LogisticsDelay:           0.0,
			features.TradeVolumeChange:        0.0,
			features.CongestionLevel:          0.0,
		},
		transport: Weights{
			features.LogisticsDelay:           0.30,
			features.CongestionLevel:          0.25,
			features.WeatherSeverity:          0.20,
			features.SeasonalFactor:           0.10,
			features.HistoricalDisruptionRate: 0.15,
			features.PriceVolatility:          0.0,
			features.SupplyDemandRatio:        0.0,
			features.TradeVolumeChange:        0.0,
		},
		importExport: Weights{
			features.TradeVolumeChange:        0.30,
			features.PriceVolatility:          0.20,
			features.LogisticsDelay:           0.15,
			features.CongestionLevel:          0.10,
			features.SeasonalFactor:           0.10,
			features.HistoricalDisruptionRate: 0.15,
			features.WeatherSeverity:          0.0,
			features.SupplyDemandRatio:        0.0,
		},
	}
}

// Weights returns the table for a segment. Unknown segments fall back to
// procurement weights rather than erroring; callers are expected to pass
// known segments, but a bad name must not fail a scoring run.
func (c *SegmentWeightConfig) Weights(segment Segment) Weights {
	switch segment {
	case SegmentProcurement:
		return c.procurement
	case SegmentTransport:
		return c.transport
	case SegmentImportExport:
		return c.importExport
	default:
		return c.procurement
	}
}

// Known reports whether the segment has its own weight table.
func (c *SegmentWeightConfig) Known(segment Segment) bool {
	switch segment {
	case SegmentProcurement, SegmentTransport, SegmentImportExport:
		return true
	}
	return false
}

// Validate checks that every segment's weights sum to 1.0.
func (c *SegmentWeightConfig) Validate() error {
	tables := []struct {
		segment Segment
		weights Weights
	}{
		{SegmentProcurement, c.procurement},
		{SegmentTransport, c.transport},
		{SegmentImportExport, c.importExport},
	}
	for _, tbl := range tables {
		sum := tbl.weights.Sum()
		if sum < 0.99 || sum > 1.01 {
			return fmt.Errorf("segment %s weights sum to %.3f, expected 1.000", tbl.segment, sum)
		}
	}
	return nil
}
