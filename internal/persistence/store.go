// Package persistence archives scan results in Postgres. Persistence is
// best-effort: the scan pipeline never fails because a write did.
package persistence

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"github.com/supplyradar/supplyradar/internal/domain/scoring"
	"github.com/supplyradar/supplyradar/internal/domain/signal"
)

const schema = `
CREATE TABLE IF NOT EXISTS signals (
	id          VARCHAR(36) PRIMARY KEY,
	source      VARCHAR(20) NOT NULL,
	region      VARCHAR(255),
	commodity   VARCHAR(255),
	value       DOUBLE PRECISION,
	unit        VARCHAR(50),
	raw_data    JSONB,
	severity    DOUBLE PRECISION DEFAULT 0,
	timestamp   TIMESTAMPTZ NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_signals_source ON signals (source);
CREATE INDEX IF NOT EXISTS idx_signals_timestamp ON signals (timestamp);

CREATE TABLE IF NOT EXISTS risk_scores (
	id                   VARCHAR(36) PRIMARY KEY,
	segment              VARCHAR(20) NOT NULL,
	category             VARCHAR(100),
	region               VARCHAR(255),
	score                DOUBLE PRECISION NOT NULL,
	risk_level           VARCHAR(10) NOT NULL,
	contributing_factors JSONB,
	feature_weights      JSONB,
	model_version        VARCHAR(50),
	computed_at          TIMESTAMPTZ NOT NULL,
	created_at           TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_risk_scores_segment ON risk_scores (segment);
CREATE INDEX IF NOT EXISTS idx_risk_scores_computed_at ON risk_scores (computed_at);
`

// SignalRow is one archived signal. The full normalized signal rides along
// in raw_data; value/unit carry the primary numeric reading per source.
type SignalRow struct {
	ID        string         `db:"id"`
	Source    string         `db:"source"`
	Region    string         `db:"region"`
	Commodity string         `db:"commodity"`
	Value     float64        `db:"value"`
	Unit      string         `db:"unit"`
	RawData   types.JSONText `db:"raw_data"`
	Severity  float64        `db:"severity"`
	Timestamp time.Time      `db:"timestamp"`
}

// RiskScoreRow is one archived segment score.
type RiskScoreRow struct {
	ID                  string         `db:"id"`
	Segment             string         `db:"segment"`
	Category            string         `db:"category"`
	Region              string         `db:"region"`
	Score               float64        `db:"score"`
	RiskLevel           string         `db:"risk_level"`
	ContributingFactors types.JSONText `db:"contributing_factors"`
	FeatureWeights      types.JSONText `db:"feature_weights"`
	ModelVersion        string         `db:"model_version"`
	ComputedAt          time.Time      `db:"computed_at"`
}

// Store wraps the Postgres connection pool.
type Store struct {
	db *sqlx.DB
}

// Open connects to Postgres and prepares the schema.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	s := &Store{db: db}
	if err := s.ensureSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// NewStore wraps an existing connection, used by tests.
func NewStore(db *sqlx.DB) *Store { return &Store{db: db} }

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) ensureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// SaveSignals archives a batch of signals in one transaction.
func (s *Store) SaveSignals(ctx context.Context, signals []signal.Signal) error {
	if len(signals) == 0 {
		return nil
	}
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	const q = `INSERT INTO signals
		(id, source, region, commodity, value, unit, raw_data, severity, timestamp)
		VALUES (:id, :source, :region, :commodity, :value, :unit, :raw_data, :severity, :timestamp)`
	for _, sig := range signals {
		row, err := signalRow(sig)
		if err != nil {
			log.Warn().Err(err).Str("source", string(sig.Source)).Msg("skipping unserializable signal")
			continue
		}
		if _, err := tx.NamedExecContext(ctx, q, row); err != nil {
			return fmt.Errorf("insert signal: %w", err)
		}
	}
	return tx.Commit()
}

func signalRow(sig signal.Signal) (SignalRow, error) {
	raw, err := json.Marshal(sig)
	if err != nil {
		return SignalRow{}, err
	}
	row := SignalRow{
		ID:        uuid.NewString(),
		Source:    string(sig.Source),
		Region:    sig.RegionKey(),
		Commodity: sig.Commodity,
		RawData:   types.JSONText(raw),
		Timestamp: sig.Timestamp,
	}
	switch sig.Source {
	case signal.SourceMandi, signal.SourceENAM:
		row.Value = sig.ModalPrice()
		row.Unit = "INR/quintal"
	case signal.SourceTrade:
		row.Value = sig.ChangePct()
		row.Unit = "pct"
	case signal.SourceWeather:
		row.Value = sig.DisruptionSeverity()
		row.Unit = "severity"
		row.Severity = sig.DisruptionSeverity()
	case signal.SourceLogistics:
		row.Value = sig.DelayHours()
		row.Unit = "hours"
		row.Severity = sig.CongestionLevel()
	}
	return row, nil
}

// SaveRiskScore archives one segment score. Category and region are
// optional annotations.
func (s *Store) SaveRiskScore(ctx context.Context, res scoring.Result, category, region string) error {
	factors, err := json.Marshal(res.ContributingFactors)
	if err != nil {
		return fmt.Errorf("marshal factors: %w", err)
	}
	weights, err := json.Marshal(res.FeatureWeights)
	if err != nil {
		return fmt.Errorf("marshal weights: %w", err)
	}
	row := RiskScoreRow{
		ID:                  uuid.NewString(),
		Segment:             string(res.Segment),
		Category:            category,
		Region:              region,
		Score:               res.Score,
		RiskLevel:           string(res.RiskLevel),
		ContributingFactors: types.JSONText(factors),
		FeatureWeights:      types.JSONText(weights),
		ModelVersion:        res.ModelVersion,
		ComputedAt:          res.ComputedAt,
	}
	const q = `INSERT INTO risk_scores
		(id, segment, category, region, score, risk_level, contributing_factors, feature_weights, model_version, computed_at)
		VALUES (:id, :segment, :category, :region, :score, :risk_level, :contributing_factors, :feature_weights, :model_version, :computed_at)`
	if _, err := s.db.NamedExecContext(ctx, q, row); err != nil {
		return fmt.Errorf("insert risk score: %w", err)
	}
	return nil
}

// RecentRiskScores returns the latest archived scores for a segment,
// newest first.
func (s *Store) RecentRiskScores(ctx context.Context, segment string, limit int) ([]RiskScoreRow, error) {
	if limit <= 0 {
		limit = 20
	}
	const q = `SELECT id, segment, category, region, score, risk_level,
		contributing_factors, feature_weights, model_version, computed_at
		FROM risk_scores WHERE segment = $1 ORDER BY computed_at DESC LIMIT $2`
	var rows []RiskScoreRow
	if err := s.db.SelectContext(ctx, &rows, q, segment, limit); err != nil {
		return nil, fmt.Errorf("select risk scores: %w", err)
	}
	return rows, nil
}
