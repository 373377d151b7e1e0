// Package application wires providers, feature extraction, scoring,
// bottleneck detection and recommendations into the scan pipeline.
package application

import (
	"context"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/supplyradar/supplyradar/internal/domain/bottleneck"
	"github.com/supplyradar/supplyradar/internal/domain/features"
	"github.com/supplyradar/supplyradar/internal/domain/recommend"
	"github.com/supplyradar/supplyradar/internal/domain/scoring"
	"github.com/supplyradar/supplyradar/internal/domain/signal"
	"github.com/supplyradar/supplyradar/internal/metrics"
	"github.com/supplyradar/supplyradar/internal/providers"
	"github.com/supplyradar/supplyradar/internal/randutil"
)

// Overall score blend across segments.
const (
	procurementShare  = 0.35
	transportShare    = 0.35
	importExportShare = 0.30
)

// CategoryCommodities maps retail categories to the mandi commodities that
// drive their procurement risk.
var CategoryCommodities = map[string][]string{
	"Food":       {"Wheat", "Rice", "Onion", "Tomato", "Potato", "Soyabean"},
	"Clothing":   {"Cotton", "Jute", "Silk"},
	"Stationery": {"Paper", "Stationery Items"},
	"Toys":       {"Toys & Games", "Plastic Products"},
}

// Archiver persists scan output. Persistence failures are logged, never
// propagated to the caller.
type Archiver interface {
	SaveSignals(ctx context.Context, signals []signal.Signal) error
	SaveRiskScore(ctx context.Context, res scoring.Result, category, region string) error
}

// ScanReport is the result of a full risk scan across all segments.
type ScanReport struct {
	RunID            string                     `json:"run_id"`
	OverallScore     float64                    `json:"overall_score"`
	OverallRiskLevel scoring.Level              `json:"overall_risk_level"`
	Segments         SegmentScores              `json:"segments"`
	Bottlenecks      []bottleneck.Bottleneck    `json:"bottlenecks"`
	Recommendations  []recommend.Recommendation `json:"recommendations"`
	SignalsSummary   SignalsSummary             `json:"signals_summary"`
	ComputedAt       time.Time                  `json:"computed_at"`
}

// SegmentScores holds per-segment results.
type SegmentScores struct {
	Procurement  *scoring.Result `json:"procurement"`
	Transport    *scoring.Result `json:"transport"`
	ImportExport *scoring.Result `json:"import_export"`
}

// SignalsSummary counts ingested signals per source.
type SignalsSummary struct {
	MandiRecords     int `json:"mandi_records"`
	ENAMRecords      int `json:"enam_records"`
	TradeRecords     int `json:"trade_records"`
	WeatherRecords   int `json:"weather_records"`
	LogisticsRecords int `json:"logistics_records"`
	Total            int `json:"total"`
}

// CategoryReport is the result of a category-focused scan.
type CategoryReport struct {
	RunID               string                     `json:"run_id"`
	Category            string                     `json:"category"`
	RiskScore           float64                    `json:"risk_score"`
	RiskLevel           scoring.Level              `json:"risk_level"`
	ContributingFactors map[string]scoring.FactorDetail `json:"contributing_factors"`
	FeatureWeights      map[string]float64         `json:"feature_weights"`
	CommoditiesTracked  []string                   `json:"commodities_tracked"`
	PriceData           []signal.Signal            `json:"price_data"`
	Bottlenecks         []bottleneck.Bottleneck    `json:"bottlenecks"`
	SupplyNetwork       SupplyNetwork              `json:"supply_network"`
	Recommendations     []recommend.Recommendation `json:"recommendations"`
	ComputedAt          time.Time                  `json:"computed_at"`
}

// Service orchestrates the scan pipeline. One instance serves concurrent
// scans; the only mutable state it shares across them is the locked
// randomness stream.
type Service struct {
	provs        map[signal.Source]providers.Provider
	extractor    *features.Extractor
	scorer       *scoring.Scorer
	archiver     Archiver
	metrics      *metrics.Metrics
	rng          *randutil.Locked
	now          func() time.Time
	fetchTimeout time.Duration
}

// NewService builds the pipeline. archiver may be nil (no persistence);
// a nil rng gets a time-based seed; a nil metrics instance is created.
func NewService(provs []providers.Provider, extractor *features.Extractor, scorer *scoring.Scorer, archiver Archiver, m *metrics.Metrics, rng *rand.Rand) *Service {
	if m == nil {
		m = metrics.New()
	}
	bySource := make(map[signal.Source]providers.Provider, len(provs))
	for _, p := range provs {
		bySource[p.Source()] = p
	}
	return &Service{
		provs:        bySource,
		extractor:    extractor,
		scorer:       scorer,
		archiver:     archiver,
		metrics:      m,
		rng:          randutil.New(rng),
		now:          func() time.Time { return time.Now().UTC() },
		fetchTimeout: 45 * time.Second,
	}
}

// ComputeAllRiskScores ingests every source, scores the three segments, and
// assembles bottlenecks and recommendations. Provider failures degrade to
// empty feeds; the scan itself never fails.
func (s *Service) ComputeAllRiskScores(ctx context.Context) (*ScanReport, error) {
	runID := uuid.NewString()
	started := s.now()
	finish := s.metrics.ScanStarted()
	defer func() { finish(time.Since(started)) }()

	log.Info().Str("run_id", runID).Msg("starting full risk scan")

	feeds := s.fetchAll(ctx, providers.Filters{})
	mandi := feeds[signal.SourceMandi]
	enam := feeds[signal.SourceENAM]
	trade := feeds[signal.SourceTrade]
	weather := feeds[signal.SourceWeather]
	logistics := feeds[signal.SourceLogistics]

	now := s.now()
	procurement := s.score(s.extractor.Procurement(mandi, enam, weather, now), scoring.SegmentProcurement)
	transport := s.score(s.extractor.Transport(logistics, weather), scoring.SegmentTransport)
	importExport := s.score(s.extractor.ImportExport(trade, logistics), scoring.SegmentImportExport)

	overall := procurement.Score*procurementShare +
		transport.Score*transportShare +
		importExport.Score*importExportShare
	// Level is judged on the exact blend; rounding only affects the
	// reported number.
	overallLevel := scoring.LevelForScore(overall)
	overall = math.Round(overall*100) / 100

	all := concat(mandi, enam, trade, weather, logistics)
	bottlenecks := bottleneck.Detect(all)
	s.metrics.BottlenecksDetected(len(bottlenecks))

	recs := recommend.Generate(procurement, transport, importExport, bottlenecks)

	report := &ScanReport{
		RunID:            runID,
		OverallScore:     overall,
		OverallRiskLevel: overallLevel,
		Segments: SegmentScores{
			Procurement:  procurement,
			Transport:    transport,
			ImportExport: importExport,
		},
		Bottlenecks:     bottlenecks,
		Recommendations: recs,
		SignalsSummary: SignalsSummary{
			MandiRecords:     len(mandi),
			ENAMRecords:      len(enam),
			TradeRecords:     len(trade),
			WeatherRecords:   len(weather),
			LogisticsRecords: len(logistics),
			Total:            len(all),
		},
		ComputedAt: now,
	}

	s.archive(ctx, all, []*scoring.Result{procurement, transport, importExport}, "")

	log.Info().
		Str("run_id", runID).
		Float64("overall_score", overall).
		Str("overall_risk_level", string(report.OverallRiskLevel)).
		Int("signals", len(all)).
		Int("bottlenecks", len(bottlenecks)).
		Int("recommendations", len(recs)).
		Msg("risk scan complete")
	return report, nil
}

// ComputeCategoryRisk scores procurement risk for one retail category using
// commodity-filtered price feeds, and assembles the category supply network.
func (s *Service) ComputeCategoryRisk(ctx context.Context, category string) (*CategoryReport, error) {
	runID := uuid.NewString()
	started := s.now()
	finish := s.metrics.ScanStarted()
	defer func() { finish(time.Since(started)) }()

	commodities := CategoryCommodities[category]
	log.Info().Str("run_id", runID).Str("category", category).Strs("commodities", commodities).Msg("starting category scan")

	tracked := commodities
	if len(tracked) > 3 {
		tracked = tracked[:3]
	}

	// Commodity price fetches fan out alongside the other sources. Indexed
	// results keep the commodity order deterministic.
	byCommodity := make([][]signal.Signal, len(tracked))
	var wg sync.WaitGroup
	for i, commodity := range tracked {
		wg.Add(1)
		go func(i int, commodity string) {
			defer wg.Done()
			byCommodity[i] = s.fetchOne(ctx, signal.SourceMandi, providers.Filters{Commodity: commodity})
		}(i, commodity)
	}

	feeds := s.fetchAll(ctx, providers.Filters{}, signal.SourceENAM, signal.SourceTrade, signal.SourceWeather, signal.SourceLogistics)
	wg.Wait()
	mandi := concat(byCommodity...)
	enam := feeds[signal.SourceENAM]
	trade := feeds[signal.SourceTrade]
	weather := feeds[signal.SourceWeather]
	logistics := feeds[signal.SourceLogistics]

	now := s.now()
	result := s.score(s.extractor.Procurement(mandi, enam, weather, now), scoring.SegmentProcurement)

	// Trade signals inform the network graph but not category bottlenecks.
	bottlenecks := bottleneck.Detect(concat(mandi, enam, weather, logistics))
	s.metrics.BottlenecksDetected(len(bottlenecks))
	if len(bottlenecks) > 5 {
		bottlenecks = bottlenecks[:5]
	}

	prices := mandi
	if len(prices) > 10 {
		prices = prices[:10]
	}

	report := &CategoryReport{
		RunID:               runID,
		Category:            category,
		RiskScore:           result.Score,
		RiskLevel:           result.RiskLevel,
		ContributingFactors: result.ContributingFactors,
		FeatureWeights:      result.FeatureWeights,
		CommoditiesTracked:  commodities,
		PriceData:           prices,
		Bottlenecks:         bottlenecks,
		SupplyNetwork:       s.buildSupplyNetwork(mandi, trade),
		Recommendations:     recommend.ForCategory(category, result),
		ComputedAt:          now,
	}

	s.archive(ctx, concat(mandi, enam, weather, logistics), []*scoring.Result{result}, category)

	log.Info().
		Str("run_id", runID).
		Str("category", category).
		Float64("risk_score", result.Score).
		Str("risk_level", string(result.RiskLevel)).
		Msg("category scan complete")
	return report, nil
}

// fetchAll pulls the requested sources concurrently. With no sources named,
// every registered provider is fetched. A failed provider contributes an
// empty feed.
func (s *Service) fetchAll(ctx context.Context, f providers.Filters, sources ...signal.Source) map[signal.Source][]signal.Signal {
	if len(sources) == 0 {
		for src := range s.provs {
			sources = append(sources, src)
		}
	}

	var (
		mu  sync.Mutex
		wg  sync.WaitGroup
		out = make(map[signal.Source][]signal.Signal, len(sources))
	)
	for _, src := range sources {
		wg.Add(1)
		go func(src signal.Source) {
			defer wg.Done()
			signals := s.fetchOne(ctx, src, f)
			mu.Lock()
			out[src] = signals
			mu.Unlock()
		}(src)
	}
	wg.Wait()
	return out
}

func (s *Service) fetchOne(ctx context.Context, src signal.Source, f providers.Filters) []signal.Signal {
	p, ok := s.provs[src]
	if !ok {
		return nil
	}
	fctx, cancel := context.WithTimeout(ctx, s.fetchTimeout)
	defer cancel()

	started := time.Now()
	signals, err := p.Fetch(fctx, f)
	s.metrics.ObserveFetch(string(src), time.Since(started), err != nil, len(signals))
	if err != nil {
		log.Error().Err(err).Str("source", string(src)).Msg("provider fetch failed, continuing with empty feed")
		return nil
	}
	return signals
}

func (s *Service) score(v features.Vector, segment scoring.Segment) *scoring.Result {
	res := s.scorer.Score(v, segment)
	s.metrics.ScoreComputed(string(segment))
	return res
}

func (s *Service) archive(ctx context.Context, signals []signal.Signal, results []*scoring.Result, category string) {
	if s.archiver == nil {
		return
	}
	if err := s.archiver.SaveSignals(ctx, signals); err != nil {
		log.Warn().Err(err).Msg("signal archive failed")
	}
	for _, res := range results {
		if err := s.archiver.SaveRiskScore(ctx, *res, category, ""); err != nil {
			log.Warn().Err(err).Str("segment", string(res.Segment)).Msg("risk score archive failed")
		}
	}
}

func concat(groups ...[]signal.Signal) []signal.Signal {
	var n int
	for _, g := range groups {
		n += len(g)
	}
	out := make([]signal.Signal, 0, n)
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}
