package providers

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/supplyradar/supplyradar/internal/config"
)

// govResponse is the envelope returned by data.gov.in resource endpoints.
type govResponse struct {
	Status  string      `json:"status"`
	Message string      `json:"message"`
	Total   int         `json:"total"`
	Count   int         `json:"count"`
	Records []govRecord `json:"records"`
}

// govRecord is one mandi price row. The API publishes numeric fields as
// strings, so everything is parsed through safeFloat.
type govRecord struct {
	State       string `json:"state"`
	District    string `json:"district"`
	Market      string `json:"market"`
	Commodity   string `json:"commodity"`
	Variety     string `json:"variety"`
	MinPrice    string `json:"min_price"`
	MaxPrice    string `json:"max_price"`
	ModalPrice  string `json:"modal_price"`
	ArrivalDate string `json:"arrival_date"`
}

// govClient queries the shared data.gov.in commodity price resource used by
// the mandi, eNAM, and trade providers.
type govClient struct {
	client     *Client
	baseURL    string
	resourceID string
	apiKey     string
	limit      int
}

func newGovClient(name string, cfg config.GovDataConfig, cache Cache, ttl time.Duration) *govClient {
	return &govClient{
		client:     NewClient(name, cfg.Timeout, cache, ttl),
		baseURL:    cfg.BaseURL,
		resourceID: cfg.ResourceID,
		apiKey:     cfg.APIKey,
		limit:      cfg.Limit,
	}
}

func (g *govClient) records(ctx context.Context, commodity, state string, limit int) ([]govRecord, error) {
	if limit <= 0 {
		limit = g.limit
	}
	params := url.Values{}
	params.Set("api-key", g.apiKey)
	params.Set("format", "json")
	params.Set("limit", strconv.Itoa(limit))
	if commodity != "" {
		params.Set("filters[commodity]", commodity)
	}
	if state != "" {
		params.Set("filters[state]", state)
	}

	var resp govResponse
	if err := g.client.GetJSON(ctx, g.baseURL+"/"+g.resourceID, params, &resp); err != nil {
		return nil, err
	}
	if resp.Status != "" && resp.Status != "ok" {
		return nil, fmt.Errorf("data.gov.in returned status %q: %s", resp.Status, resp.Message)
	}
	return resp.Records, nil
}

func safeFloat(s string) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}
