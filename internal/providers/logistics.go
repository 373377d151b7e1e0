package providers

import (
	"context"
	"math"
	"math/rand"
	"net/url"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/supplyradar/supplyradar/internal/config"
	"github.com/supplyradar/supplyradar/internal/domain/signal"
	"github.com/supplyradar/supplyradar/internal/randutil"
)

// Corridor is a logistics lane with its real-world distance and transit
// characteristics.
type Corridor struct {
	ID              string
	Name            string
	Origin          string
	Destination     string
	Mode            string
	DistanceKM      float64
	AvgTransitHours float64
}

// LogisticsCorridors are the major Indian freight corridors.
var LogisticsCorridors = []Corridor{
	{"DFC-WC", "Delhi–Mumbai DFC (Western)", "Delhi", "Mumbai", "rail", 1504, 18},
	{"DFC-EC", "Delhi–Kolkata DFC (Eastern)", "Delhi", "Kolkata", "rail", 1530, 20},
	{"NH48", "Delhi–Ahmedabad (NH 48)", "Delhi", "Ahmedabad", "road", 950, 14},
	{"NH44-S", "Delhi–Bangalore (NH 44)", "Delhi", "Bangalore", "road", 2150, 36},
	{"NH44-N", "Delhi–Chennai (NH 44)", "Delhi", "Chennai", "road", 2175, 38},
	{"JNPT-INT", "JNPT Mumbai International", "Mumbai", "International", "sea", 0, 0},
	{"CHENNAI-INT", "Chennai Port International", "Chennai", "International", "sea", 0, 0},
	{"NH16", "Chennai–Kolkata (NH 16)", "Chennai", "Kolkata", "road", 1680, 28},
	{"AIR-DEL", "Delhi IGI Air Cargo", "Delhi", "International", "air", 0, 0},
	{"NH75", "Bangalore–Mangalore (NH 75)", "Bangalore", "Mangalore", "road", 350, 6},
}

// modeBaseDelay scales the base delay draw by transport mode. Rail is more
// predictable than road; sea and air schedules absorb most slack.
var modeBaseDelay = map[string]float64{
	"road": 1.5,
	"rail": 0.7,
	"sea":  0.5,
	"air":  0.3,
}

// liveCorridorResponse is the envelope of the optional live corridor API.
type liveCorridorResponse struct {
	Corridors []liveCorridor `json:"corridors"`
}

type liveCorridor struct {
	CorridorID            string  `json:"corridor_id"`
	CorridorName          string  `json:"corridor_name"`
	Origin                string  `json:"origin"`
	Destination           string  `json:"destination"`
	Mode                  string  `json:"mode"`
	DistanceKM            float64 `json:"distance_km"`
	AvgTransitHours       float64 `json:"avg_transit_hours"`
	CurrentDelayHours     float64 `json:"current_delay_hours"`
	AvgDelayHours         float64 `json:"avg_delay_hours"`
	CongestionLevel       float64 `json:"congestion_level"`
	DisruptionProbability float64 `json:"disruption_probability"`
	CapacityUtilization   float64 `json:"capacity_utilization"`
	ActiveShipments       int     `json:"active_shipments"`
	Status                string  `json:"status"`
}

// LogisticsProvider reports corridor delay and congestion. No free public
// API covers Indian freight corridors, so without a configured live feed
// the provider simulates conditions from real corridor characteristics,
// time-of-day and day-of-week traffic patterns, and the monsoon calendar.
type LogisticsProvider struct {
	client    *Client
	apiURL    string
	corridors []Corridor
	rng       *randutil.Locked
	now       func() time.Time
}

func NewLogisticsProvider(cfg config.LogisticsConfig, cache Cache, ttl time.Duration, rng *rand.Rand) *LogisticsProvider {
	p := &LogisticsProvider{
		apiURL:    cfg.APIURL,
		corridors: LogisticsCorridors,
		rng:       randutil.New(rng),
		now:       func() time.Time { return time.Now().UTC() },
	}
	if cfg.APIURL != "" {
		p.client = NewClient("logistics", cfg.Timeout, cache, ttl)
	}
	return p
}

func (p *LogisticsProvider) Source() signal.Source { return signal.SourceLogistics }

func (p *LogisticsProvider) Fetch(ctx context.Context, f Filters) ([]signal.Signal, error) {
	if p.apiURL != "" {
		signals, err := p.fetchLive(ctx)
		if err == nil {
			return signals, nil
		}
		log.Warn().Err(err).Msg("logistics API unreachable, falling back to simulation")
	}
	return p.simulate(p.now()), nil
}

func (p *LogisticsProvider) fetchLive(ctx context.Context) ([]signal.Signal, error) {
	var resp liveCorridorResponse
	if err := p.client.GetJSON(ctx, p.apiURL, url.Values{}, &resp); err != nil {
		return nil, err
	}
	out := make([]signal.Signal, 0, len(resp.Corridors))
	now := time.Now().UTC()
	for _, c := range resp.Corridors {
		out = append(out, signal.Signal{
			Source:    signal.SourceLogistics,
			Timestamp: now,
			Logistics: &signal.CorridorStatus{
				CorridorID:            c.CorridorID,
				Name:                  c.CorridorName,
				Origin:                c.Origin,
				Destination:           c.Destination,
				Mode:                  c.Mode,
				DistanceKM:            c.DistanceKM,
				AvgTransitHours:       c.AvgTransitHours,
				CurrentDelayHours:     c.CurrentDelayHours,
				AvgDelayHours:         c.AvgDelayHours,
				CongestionLevel:       c.CongestionLevel,
				DisruptionProbability: c.DisruptionProbability,
				CapacityUtilization:   c.CapacityUtilization,
				ActiveShipments:       c.ActiveShipments,
				Status:                c.Status,
			},
		})
	}
	return out, nil
}

// simulate draws corridor conditions from real-world traffic patterns:
// IST peak hours, lighter weekends for road freight, and June–September
// monsoon impact on road and sea lanes.
func (p *LogisticsProvider) simulate(now time.Time) []signal.Signal {
	hourIST := (now.Hour() + 5) % 24
	weekday := now.Weekday()
	month := int(now.Month())
	peakHour := (hourIST >= 8 && hourIST <= 11) || (hourIST >= 17 && hourIST <= 20)
	monsoon := month >= 6 && month <= 9

	out := make([]signal.Signal, 0, len(p.corridors))
	for _, c := range p.corridors {
		base, ok := modeBaseDelay[c.Mode]
		if !ok {
			base = 1.0
		}
		baseDelay := p.uniform(0.5, 2.5) * base

		timeFactor := 1.0
		switch {
		case peakHour:
			timeFactor = 1.6
		case hourIST >= 22 || hourIST <= 5:
			timeFactor = 0.6
		}
		if weekday == time.Saturday || weekday == time.Sunday {
			switch c.Mode {
			case "road":
				timeFactor *= 0.7
			case "sea":
				timeFactor *= 0.9
			}
		}

		seasonFactor := 1.0
		if monsoon {
			switch c.Mode {
			case "road":
				seasonFactor = 1.8
			case "sea":
				seasonFactor = 1.3
			}
		} else if month == 10 || month == 11 {
			// Festival season cargo surge.
			seasonFactor = 1.3
		}

		delayHours := baseDelay * timeFactor * seasonFactor
		congestion := math.Min(delayHours/5.0, 1.0)

		disruption := p.uniform(0.05, 0.20)
		if congestion > 0.6 {
			disruption += 0.15
		}
		if monsoon && c.Mode == "road" {
			disruption += 0.10
		}

		var capacity float64
		if hourIST >= 8 && hourIST <= 20 {
			capacity = p.uniform(0.65, 0.95)
		} else {
			capacity = p.uniform(0.30, 0.70)
		}
		active := int(capacity * float64(100+p.rng.Intn(501)))

		status := "normal"
		switch {
		case congestion > 0.6:
			status = "congested"
		case congestion > 0.3:
			status = "moderate"
		}

		out = append(out, signal.Signal{
			Source:    signal.SourceLogistics,
			Timestamp: now,
			Logistics: &signal.CorridorStatus{
				CorridorID:            c.ID,
				Name:                  c.Name,
				Origin:                c.Origin,
				Destination:           c.Destination,
				Mode:                  c.Mode,
				DistanceKM:            c.DistanceKM,
				AvgTransitHours:       c.AvgTransitHours,
				CurrentDelayHours:     round2(delayHours),
				AvgDelayHours:         round2(delayHours * 0.75),
				CongestionLevel:       round3(congestion),
				DisruptionProbability: round3(math.Min(disruption, 1.0)),
				CapacityUtilization:   round3(capacity),
				ActiveShipments:       active,
				Status:                status,
				MonsoonImpact:         monsoon,
				PeakHour:              peakHour,
			},
		})
	}
	return out
}

func (p *LogisticsProvider) uniform(lo, hi float64) float64 {
	return lo + p.rng.Float64()*(hi-lo)
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
