package application

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/supplyradar/supplyradar/internal/domain/features"
	"github.com/supplyradar/supplyradar/internal/domain/scoring"
	"github.com/supplyradar/supplyradar/internal/domain/signal"
	"github.com/supplyradar/supplyradar/internal/ml"
	"github.com/supplyradar/supplyradar/internal/providers"
)

type stubProvider struct {
	src     signal.Source
	signals []signal.Signal
	err     error

	mu      sync.Mutex
	filters []providers.Filters
}

func (p *stubProvider) Source() signal.Source { return p.src }

func (p *stubProvider) Fetch(ctx context.Context, f providers.Filters) ([]signal.Signal, error) {
	p.mu.Lock()
	p.filters = append(p.filters, f)
	p.mu.Unlock()
	return p.signals, p.err
}

type recordingArchiver struct {
	mu      sync.Mutex
	signals []signal.Signal
	results []scoring.Result
	err     error
}

func (a *recordingArchiver) SaveSignals(ctx context.Context, signals []signal.Signal) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.signals = append(a.signals, signals...)
	return a.err
}

func (a *recordingArchiver) SaveRiskScore(ctx context.Context, res scoring.Result, category, region string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.results = append(a.results, res)
	return a.err
}

func testSignals() (mandi, enam, trade, weather, logistics []signal.Signal) {
	now := time.Date(2026, time.August, 20, 12, 0, 0, 0, time.UTC)
	mandi = []signal.Signal{
		{Source: signal.SourceMandi, State: "Maharashtra", Commodity: "Onion", Timestamp: now,
			Price: &signal.PriceQuote{MinPrice: 1100, MaxPrice: 1900, ModalPrice: 1500}},
		{Source: signal.SourceMandi, State: "Gujarat", Commodity: "Onion", Timestamp: now,
			Price: &signal.PriceQuote{MinPrice: 900, MaxPrice: 1300, ModalPrice: 1100}},
	}
	enam = []signal.Signal{
		{Source: signal.SourceENAM, State: "Karnataka", Commodity: "Onion", Timestamp: now,
			Price: &signal.PriceQuote{ModalPrice: 1500, QuantityTraded: 450}},
	}
	trade = []signal.Signal{
		{Source: signal.SourceTrade, Commodity: "Cotton", Timestamp: now,
			Trade: &signal.TradeFlow{Country: "United States", TradeType: "import", ChangePct: -8.5}},
	}
	weather = []signal.Signal{
		{Source: signal.SourceWeather, Region: "Maharashtra", City: "Mumbai", Timestamp: now,
			Weather: &signal.WeatherReport{Condition: "Thunderstorm", DisruptionSeverity: 0.8, IsDisruptive: true}},
	}
	logistics = []signal.Signal{
		{Source: signal.SourceLogistics, Timestamp: now,
			Logistics: &signal.CorridorStatus{CorridorID: "NH48", CurrentDelayHours: 3.5, CongestionLevel: 0.7}},
	}
	return
}

func newTestService(archiver Archiver, provs ...providers.Provider) *Service {
	extractor := features.NewExtractor(rand.New(rand.NewSource(7)))
	scorer := scoring.NewScorer(ml.Train())
	return NewService(provs, extractor, scorer, archiver, nil, rand.New(rand.NewSource(7)))
}

func allStubs() (stubs []*stubProvider, provs []providers.Provider) {
	mandi, enam, trade, weather, logistics := testSignals()
	for _, s := range []*stubProvider{
		{src: signal.SourceMandi, signals: mandi},
		{src: signal.SourceENAM, signals: enam},
		{src: signal.SourceTrade, signals: trade},
		{src: signal.SourceWeather, signals: weather},
		{src: signal.SourceLogistics, signals: logistics},
	} {
		stubs = append(stubs, s)
		provs = append(provs, s)
	}
	return
}

func TestComputeAllRiskScoresAssemblesReport(t *testing.T) {
	archiver := &recordingArchiver{}
	_, provs := allStubs()
	svc := newTestService(archiver, provs...)

	report, err := svc.ComputeAllRiskScores(context.Background())
	require.NoError(t, err)
	require.NotNil(t, report)

	assert.NotEmpty(t, report.RunID)
	assert.False(t, report.ComputedAt.IsZero())

	// Signal counts reflect each feed.
	assert.Equal(t, 2, report.SignalsSummary.MandiRecords)
	assert.Equal(t, 1, report.SignalsSummary.ENAMRecords)
	assert.Equal(t, 1, report.SignalsSummary.TradeRecords)
	assert.Equal(t, 1, report.SignalsSummary.WeatherRecords)
	assert.Equal(t, 1, report.SignalsSummary.LogisticsRecords)
	assert.Equal(t, 6, report.SignalsSummary.Total)

	// Overall is the fixed blend of the segment scores.
	require.NotNil(t, report.Segments.Procurement)
	require.NotNil(t, report.Segments.Transport)
	require.NotNil(t, report.Segments.ImportExport)
	expected := report.Segments.Procurement.Score*0.35 +
		report.Segments.Transport.Score*0.35 +
		report.Segments.ImportExport.Score*0.30
	assert.InDelta(t, expected, report.OverallScore, 0.005)
	// The level comes from the exact blend, not the rounded report value.
	assert.Equal(t, scoring.LevelForScore(expected), report.OverallRiskLevel)

	// Severe Mumbai weather (0.8) crosses the bottleneck threshold.
	require.NotEmpty(t, report.Bottlenecks)
	var found bool
	for _, b := range report.Bottlenecks {
		if b.Region == "Maharashtra" {
			found = true
			assert.GreaterOrEqual(t, b.CombinedRisk, 24.0)
		}
	}
	assert.True(t, found, "expected a Maharashtra bottleneck")

	assert.NotEmpty(t, report.Recommendations)

	// Archival is best-effort but exercised here.
	assert.Len(t, archiver.signals, 6)
	assert.Len(t, archiver.results, 3)
}

func TestComputeAllRiskScoresSurvivesProviderFailure(t *testing.T) {
	stubs, provs := allStubs()
	stubs[0].signals = nil
	stubs[0].err = errors.New("upstream down")

	svc := newTestService(nil, provs...)
	report, err := svc.ComputeAllRiskScores(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, report.SignalsSummary.MandiRecords)
	assert.Equal(t, 4, report.SignalsSummary.Total)
	require.NotNil(t, report.Segments.Procurement)
	// Scores still computed from the remaining feeds.
	assert.GreaterOrEqual(t, report.OverallScore, 0.0)
}

func TestComputeAllRiskScoresArchiveFailureIsNonFatal(t *testing.T) {
	archiver := &recordingArchiver{err: errors.New("db down")}
	_, provs := allStubs()
	svc := newTestService(archiver, provs...)

	report, err := svc.ComputeAllRiskScores(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, report)
}

func TestComputeCategoryRiskFood(t *testing.T) {
	stubs, provs := allStubs()
	svc := newTestService(nil, provs...)

	report, err := svc.ComputeCategoryRisk(context.Background(), "Food")
	require.NoError(t, err)

	assert.Equal(t, "Food", report.Category)
	assert.Equal(t, CategoryCommodities["Food"], report.CommoditiesTracked)
	assert.Equal(t, scoring.LevelForScore(report.RiskScore), report.RiskLevel)

	// Only the first three commodities are fetched. The fetches run
	// concurrently, so recording order is not fixed.
	mandiStub := stubs[0]
	require.Len(t, mandiStub.filters, 3)
	var fetched []string
	for _, f := range mandiStub.filters {
		fetched = append(fetched, f.Commodity)
	}
	assert.ElementsMatch(t, []string{"Wheat", "Rice", "Onion"}, fetched)

	assert.LessOrEqual(t, len(report.PriceData), 10)
	assert.LessOrEqual(t, len(report.Bottlenecks), 5)

	// Two canned recommendations per category.
	require.Len(t, report.Recommendations, 2)
	for _, r := range report.Recommendations {
		assert.Equal(t, "Food", r.Category)
	}

	// Network: two source states, four hubs, one destination.
	var sources, hubs, dests int
	for _, n := range report.SupplyNetwork.Nodes {
		switch n.Type {
		case "source":
			sources++
		case "hub":
			hubs++
		case "destination":
			dests++
		}
	}
	assert.Equal(t, 2, sources)
	assert.Equal(t, 4, hubs)
	assert.Equal(t, 1, dests)
	assert.Len(t, report.SupplyNetwork.Links, sources+dests)
}

// gatedProvider blocks every Fetch until the test releases it, so the test
// can observe how many fetches are in flight at once.
type gatedProvider struct {
	src     signal.Source
	ready   chan<- signal.Source
	release <-chan struct{}
}

func (p *gatedProvider) Source() signal.Source { return p.src }

func (p *gatedProvider) Fetch(ctx context.Context, f providers.Filters) ([]signal.Signal, error) {
	p.ready <- p.src
	<-p.release
	return nil, nil
}

func TestComputeCategoryRiskFetchesFanOut(t *testing.T) {
	release := make(chan struct{})
	ready := make(chan signal.Source, 8)
	var provs []providers.Provider
	for _, src := range []signal.Source{
		signal.SourceMandi, signal.SourceENAM, signal.SourceTrade,
		signal.SourceWeather, signal.SourceLogistics,
	} {
		provs = append(provs, &gatedProvider{src: src, ready: ready, release: release})
	}
	svc := newTestService(nil, provs...)

	done := make(chan error, 1)
	go func() {
		_, err := svc.ComputeCategoryRisk(context.Background(), "Food")
		done <- err
	}()

	// Three commodity price fetches plus the four other sources must all be
	// in flight at the same time.
	for i := 0; i < 7; i++ {
		select {
		case <-ready:
		case <-time.After(5 * time.Second):
			t.Fatalf("stalled with %d of 7 fetches in flight", i)
		}
	}
	close(release)
	require.NoError(t, <-done)
}

func TestConcurrentScansOnOneService(t *testing.T) {
	_, provs := allStubs()
	svc := newTestService(&recordingArchiver{}, provs...)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.ComputeAllRiskScores(context.Background()); err != nil {
				t.Error(err)
			}
			if _, err := svc.ComputeCategoryRisk(context.Background(), "Food"); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()
}

func TestComputeCategoryRiskUnknownCategory(t *testing.T) {
	stubs, provs := allStubs()
	svc := newTestService(nil, provs...)

	report, err := svc.ComputeCategoryRisk(context.Background(), "Electronics")
	require.NoError(t, err)

	assert.Empty(t, report.CommoditiesTracked)
	assert.Empty(t, stubs[0].filters, "no commodity fetches for unknown category")
	assert.Empty(t, report.Recommendations)
	assert.Empty(t, report.PriceData)
}
