package persistence

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/supplyradar/supplyradar/internal/domain/scoring"
	"github.com/supplyradar/supplyradar/internal/domain/signal"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewStore(sqlx.NewDb(db, "postgres")), mock
}

func TestSaveSignalsWritesBatchInTransaction(t *testing.T) {
	store, mock := newMockStore(t)
	now := time.Date(2026, time.August, 20, 12, 0, 0, 0, time.UTC)

	signals := []signal.Signal{
		{
			Source:    signal.SourceMandi,
			State:     "Maharashtra",
			Commodity: "Onion",
			Timestamp: now,
			Price:     &signal.PriceQuote{ModalPrice: 1500, MinPrice: 1100, MaxPrice: 1900},
		},
		{
			Source:    signal.SourceWeather,
			Region:    "Delhi",
			City:      "Delhi",
			Timestamp: now,
			Weather:   &signal.WeatherReport{Condition: "Rain", DisruptionSeverity: 0.46},
		},
	}

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO signals`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO signals`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, store.SaveSignals(context.Background(), signals))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveSignalsEmptyBatchIsNoop(t *testing.T) {
	store, mock := newMockStore(t)
	require.NoError(t, store.SaveSignals(context.Background(), nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSignalRowValueAndUnitPerSource(t *testing.T) {
	now := time.Now().UTC()

	mandi, err := signalRow(signal.Signal{
		Source: signal.SourceMandi, State: "Gujarat", Commodity: "Cotton",
		Timestamp: now, Price: &signal.PriceQuote{ModalPrice: 6600},
	})
	require.NoError(t, err)
	assert.Equal(t, 6600.0, mandi.Value)
	assert.Equal(t, "INR/quintal", mandi.Unit)
	assert.Equal(t, "Gujarat", mandi.Region)
	assert.NotEmpty(t, mandi.ID)

	logistics, err := signalRow(signal.Signal{
		Source: signal.SourceLogistics, Timestamp: now,
		Logistics: &signal.CorridorStatus{CurrentDelayHours: 3.2, CongestionLevel: 0.64},
	})
	require.NoError(t, err)
	assert.Equal(t, 3.2, logistics.Value)
	assert.Equal(t, "hours", logistics.Unit)
	assert.Equal(t, 0.64, logistics.Severity)
	assert.Equal(t, "Unknown", logistics.Region)

	trade, err := signalRow(signal.Signal{
		Source: signal.SourceTrade, Timestamp: now,
		Trade: &signal.TradeFlow{ChangePct: -8.5},
	})
	require.NoError(t, err)
	assert.Equal(t, -8.5, trade.Value)
	assert.Equal(t, "pct", trade.Unit)
}

func TestSaveRiskScore(t *testing.T) {
	store, mock := newMockStore(t)

	res := scoring.Result{
		Segment:      scoring.SegmentProcurement,
		Score:        42.5,
		RiskLevel:    scoring.LevelMedium,
		ModelVersion: "v1.0.0",
		ComputedAt:   time.Now().UTC(),
	}

	mock.ExpectExec(`INSERT INTO risk_scores`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, store.SaveRiskScore(context.Background(), res, "Food", ""))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecentRiskScores(t *testing.T) {
	store, mock := newMockStore(t)
	computed := time.Date(2026, time.August, 20, 10, 0, 0, 0, time.UTC)

	cols := []string{"id", "segment", "category", "region", "score", "risk_level",
		"contributing_factors", "feature_weights", "model_version", "computed_at"}
	mock.ExpectQuery(`SELECT .+ FROM risk_scores WHERE segment = \$1`).
		WithArgs("transport", 5).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("id-1", "transport", "", "", 61.2, "high", []byte(`[]`), []byte(`{}`), "v1.0.0", computed))

	rows, err := store.RecentRiskScores(context.Background(), "transport", 5)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 61.2, rows[0].Score)
	assert.Equal(t, "high", rows[0].RiskLevel)
	assert.Equal(t, computed, rows[0].ComputedAt)
}
