package signal

import (
	"time"
)

// Source identifies which external feed produced a signal.
type Source string

const (
	SourceMandi     Source = "mandi"
	SourceENAM      Source = "enam"
	SourceTrade     Source = "trade"
	SourceWeather   Source = "weather"
	SourceLogistics Source = "logistics"
)

// Signal is a normalized record from one external feed. Exactly one of the
// payload pointers is set, matching Source. Signals are value types and
// never mutated after a provider emits them.
type Signal struct {
	Source    Source    `json:"source"`
	Region    string    `json:"region,omitempty"`
	City      string    `json:"city,omitempty"`
	State     string    `json:"state,omitempty"`
	Commodity string    `json:"commodity,omitempty"`
	Timestamp time.Time `json:"timestamp"`

	Price     *PriceQuote     `json:"price,omitempty"`
	Trade     *TradeFlow      `json:"trade,omitempty"`
	Weather   *WeatherReport  `json:"weather,omitempty"`
	Logistics *CorridorStatus `json:"logistics,omitempty"`
}

// PriceQuote carries mandi/eNAM commodity price fields. Prices are INR per
// quintal as published on data.gov.in.
type PriceQuote struct {
	Market         string  `json:"market,omitempty"`
	District       string  `json:"district,omitempty"`
	Variety        string  `json:"variety,omitempty"`
	MinPrice       float64 `json:"min_price"`
	MaxPrice       float64 `json:"max_price"`
	ModalPrice     float64 `json:"modal_price"`
	QuantityTraded float64 `json:"quantity_traded,omitempty"`
	ArrivalDate    string  `json:"arrival_date,omitempty"`
}

// TradeFlow carries import/export trade fields.
type TradeFlow struct {
	Country    string  `json:"country"`
	TradeType  string  `json:"trade_type"` // "import" or "export"
	QuantityMT float64 `json:"quantity_mt"`
	ValueINRCr float64 `json:"value_inr_cr"`
	Port       string  `json:"port,omitempty"`
	ChangePct  float64 `json:"change_pct"`
	UnitPrice  float64 `json:"unit_price,omitempty"`
	YearMonth  string  `json:"year_month,omitempty"`
}

// WeatherReport carries a hub-city weather observation with its derived
// disruption severity in [0,1].
type WeatherReport struct {
	Condition          string  `json:"condition"`
	Description        string  `json:"description,omitempty"`
	TemperatureC       float64 `json:"temperature_c"`
	Humidity           float64 `json:"humidity"`
	WindSpeed          float64 `json:"wind_speed"`
	VisibilityM        float64 `json:"visibility_m"`
	DisruptionSeverity float64 `json:"disruption_severity"`
	IsDisruptive       bool    `json:"is_disruptive"`
	Lat                float64 `json:"lat,omitempty"`
	Lng                float64 `json:"lng,omitempty"`
}

// CorridorStatus carries the current state of a logistics corridor.
type CorridorStatus struct {
	CorridorID            string  `json:"corridor_id"`
	Name                  string  `json:"corridor_name"`
	Origin                string  `json:"origin"`
	Destination           string  `json:"destination"`
	Mode                  string  `json:"mode"` // road|rail|sea|air
	DistanceKM            float64 `json:"distance_km"`
	AvgTransitHours       float64 `json:"avg_transit_hours"`
	CurrentDelayHours     float64 `json:"current_delay_hours"`
	AvgDelayHours         float64 `json:"avg_delay_hours"`
	CongestionLevel       float64 `json:"congestion_level"`
	DisruptionProbability float64 `json:"disruption_probability"`
	CapacityUtilization   float64 `json:"capacity_utilization"`
	ActiveShipments       int     `json:"active_shipments"`
	Status                string  `json:"status"`
	MonsoonImpact         bool    `json:"monsoon_impact"`
	PeakHour              bool    `json:"peak_hour"`
}

// RegionKey resolves the grouping key for bottleneck detection: explicit
// region first, then city, then state, then "Unknown".
func (s Signal) RegionKey() string {
	if s.Region != "" {
		return s.Region
	}
	if s.City != "" {
		return s.City
	}
	if s.State != "" {
		return s.State
	}
	return "Unknown"
}

// Accessors below coerce absent payloads to 0.0 so callers never need to
// nil-check before arithmetic.

func (s Signal) ModalPrice() float64 {
	if s.Price == nil {
		return 0
	}
	return s.Price.ModalPrice
}

func (s Signal) MaxPrice() float64 {
	if s.Price == nil {
		return 0
	}
	return s.Price.MaxPrice
}

func (s Signal) MinPrice() float64 {
	if s.Price == nil {
		return 0
	}
	return s.Price.MinPrice
}

func (s Signal) QuantityTraded() float64 {
	if s.Price == nil {
		return 0
	}
	return s.Price.QuantityTraded
}

func (s Signal) ChangePct() float64 {
	if s.Trade == nil {
		return 0
	}
	return s.Trade.ChangePct
}

func (s Signal) DisruptionSeverity() float64 {
	if s.Weather == nil {
		return 0
	}
	return s.Weather.DisruptionSeverity
}

func (s Signal) CongestionLevel() float64 {
	if s.Logistics == nil {
		return 0
	}
	return s.Logistics.CongestionLevel
}

func (s Signal) DelayHours() float64 {
	if s.Logistics == nil {
		return 0
	}
	return s.Logistics.CurrentDelayHours
}
