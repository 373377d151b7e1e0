// Package features turns raw signal lists into the fixed per-segment
// feature vectors consumed by the risk scorer. Every feature participating
// in a weighted sum is normalized into [0,1] here, not downstream.
package features

// Canonical feature names, in model input order. The order is load-bearing:
// the ML model's training labels and importances are indexed by it.
const (
	PriceVolatility          = "price_volatility"
	WeatherSeverity          = "weather_severity"
	LogisticsDelay           = "logistics_delay"
	TradeVolumeChange        = "trade_volume_change"
	CongestionLevel          = "congestion_level"
	SupplyDemandRatio        = "supply_demand_ratio"
	SeasonalFactor           = "seasonal_factor"
	HistoricalDisruptionRate = "historical_disruption_rate"
)

// Names lists all feature names in declared order.
var Names = [8]string{
	PriceVolatility,
	WeatherSeverity,
	LogisticsDelay,
	TradeVolumeChange,
	CongestionLevel,
	SupplyDemandRatio,
	SeasonalFactor,
	HistoricalDisruptionRate,
}

// Vector holds one value per feature. Features not applicable to a segment
// are left at zero.
type Vector struct {
	PriceVolatility          float64 `json:"price_volatility"`
	WeatherSeverity          float64 `json:"weather_severity"`
	LogisticsDelay           float64 `json:"logistics_delay"`
	TradeVolumeChange        float64 `json:"trade_volume_change"`
	CongestionLevel          float64 `json:"congestion_level"`
	SupplyDemandRatio        float64 `json:"supply_demand_ratio"`
	SeasonalFactor           float64 `json:"seasonal_factor"`
	HistoricalDisruptionRate float64 `json:"historical_disruption_rate"`
}

// Values returns the vector in declared feature order.
func (v Vector) Values() [8]float64 {
	return [8]float64{
		v.PriceVolatility,
		v.WeatherSeverity,
		v.LogisticsDelay,
		v.TradeVolumeChange,
		v.CongestionLevel,
		v.SupplyDemandRatio,
		v.SeasonalFactor,
		v.HistoricalDisruptionRate,
	}
}

// Get returns the value for a feature name, 0.0 for unknown names.
func (v Vector) Get(name string) float64 {
	switch name {
	case PriceVolatility:
		return v.PriceVolatility
	case WeatherSeverity:
		return v.WeatherSeverity
	case LogisticsDelay:
		return v.LogisticsDelay
	case TradeVolumeChange:
		return v.TradeVolumeChange
	case CongestionLevel:
		return v.CongestionLevel
	case SupplyDemandRatio:
		return v.SupplyDemandRatio
	case SeasonalFactor:
		return v.SeasonalFactor
	case HistoricalDisruptionRate:
		return v.HistoricalDisruptionRate
	default:
		return 0
	}
}
