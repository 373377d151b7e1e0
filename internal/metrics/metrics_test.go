package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestObserveFetchCountsSignalsAndErrors(t *testing.T) {
	m := New()
	m.ObserveFetch("mandi", 100*time.Millisecond, false, 5)
	m.ObserveFetch("mandi", 100*time.Millisecond, true, 0)
	m.ObserveFetch("weather", 50*time.Millisecond, false, 10)

	assert.Equal(t, 5.0, m.CounterValue("supplyradar_signals_ingested_total", "mandi"))
	assert.Equal(t, 10.0, m.CounterValue("supplyradar_signals_ingested_total", "weather"))
	assert.Equal(t, 15.0, m.CounterValue("supplyradar_signals_ingested_total", ""))
	assert.Equal(t, 1.0, m.CounterValue("supplyradar_provider_fetch_errors_total", "mandi"))
	assert.Equal(t, 0.0, m.CounterValue("supplyradar_provider_fetch_errors_total", "weather"))
}

func TestScanLifecycle(t *testing.T) {
	m := New()
	finish := m.ScanStarted()
	m.ScoreComputed("procurement")
	m.ScoreComputed("procurement")
	m.BottlenecksDetected(3)
	finish(2 * time.Second)

	assert.Equal(t, 2.0, m.CounterValue("supplyradar_risk_scores_computed_total", "procurement"))
	assert.Equal(t, 3.0, m.CounterValue("supplyradar_bottlenecks_detected_total", ""))
}

func TestMultipleInstancesDoNotCollide(t *testing.T) {
	a := New()
	b := New()
	a.ScoreComputed("transport")
	assert.Equal(t, 1.0, a.CounterValue("supplyradar_risk_scores_computed_total", "transport"))
	assert.Equal(t, 0.0, b.CounterValue("supplyradar_risk_scores_computed_total", "transport"))
}
