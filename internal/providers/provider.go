package providers

import (
	"context"

	"github.com/supplyradar/supplyradar/internal/domain/signal"
)

// Filters narrows a provider fetch. Zero values mean no filtering.
// TradeType and Country apply to the trade provider only.
type Filters struct {
	Commodity string
	State     string
	Limit     int
	TradeType string
	Country   string
}

// Provider fetches normalized signals from one upstream source. Providers
// degrade to synthetic fallback data when the upstream is unreachable; a
// fetch only errors when even the fallback cannot be produced.
type Provider interface {
	Source() signal.Source
	Fetch(ctx context.Context, f Filters) ([]signal.Signal, error)
}
