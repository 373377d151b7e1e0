package recommend

import (
	"testing"

	"github.com/supplyradar/supplyradar/internal/domain/bottleneck"
	"github.com/supplyradar/supplyradar/internal/domain/scoring"
)

func result(segment scoring.Segment, score float64) *scoring.Result {
	return &scoring.Result{
		Segment:   segment,
		Score:     score,
		RiskLevel: scoring.LevelForScore(score),
	}
}

func TestGenerate_QuietScoresYieldMaintain(t *testing.T) {
	recs := Generate(
		result(scoring.SegmentProcurement, 20),
		result(scoring.SegmentTransport, 20),
		result(scoring.SegmentImportExport, 20),
		nil,
	)

	if len(recs) != 1 {
		t.Fatalf("expected exactly one recommendation, got %d", len(recs))
	}
	if recs[0].Title != "Maintain Current Strategy" || recs[0].Priority != 1 {
		t.Errorf("unexpected fallback recommendation: %+v", recs[0])
	}
	if recs[0].ActionType != ActionIncreaseInventory {
		t.Errorf("fallback action type = %s", recs[0].ActionType)
	}
}

func TestGenerate_HighProcurementOnly(t *testing.T) {
	recs := Generate(
		result(scoring.SegmentProcurement, 80),
		result(scoring.SegmentTransport, 30),
		result(scoring.SegmentImportExport, 20),
		nil,
	)

	if len(recs) != 2 {
		t.Fatalf("expected two recommendations, got %d: %+v", len(recs), recs)
	}
	if recs[0].ActionType != ActionIncreaseInventory || recs[0].Priority != 4 {
		t.Errorf("first: got %s p%d, want increase_inventory p4", recs[0].ActionType, recs[0].Priority)
	}
	if recs[1].ActionType != ActionDiversifySuppliers || recs[1].Priority != 3 {
		t.Errorf("second: got %s p%d, want diversify_suppliers p3", recs[1].ActionType, recs[1].Priority)
	}
	if recs[0].EstimatedImpact != 24.0 {
		t.Errorf("impact = %f, want 24.0 (80*0.3)", recs[0].EstimatedImpact)
	}
}

func TestGenerate_TransportPriorityBands(t *testing.T) {
	low := Generate(result(scoring.SegmentProcurement, 10), result(scoring.SegmentTransport, 55), result(scoring.SegmentImportExport, 10), nil)
	if len(low) != 1 || low[0].ActionType != ActionSwitchRoutes || low[0].Priority != 2 {
		t.Errorf("transport 55 should yield switch_routes p2, got %+v", low)
	}

	high := Generate(result(scoring.SegmentProcurement, 10), result(scoring.SegmentTransport, 65), result(scoring.SegmentImportExport, 10), nil)
	if len(high) != 1 || high[0].Priority != 4 {
		t.Errorf("transport 65 should yield p4, got %+v", high)
	}
}

func TestGenerate_BottleneckRules(t *testing.T) {
	bottlenecks := []bottleneck.Bottleneck{
		{Region: "Maharashtra", CombinedRisk: 72.0, Explanations: []string{"Logistics congestion: 90.0%"}},
		{Region: "Punjab", CombinedRisk: 45.0},
		{Region: "Kerala", CombinedRisk: 25.0}, // below trigger
		{Region: "Assam", CombinedRisk: 80.0},  // beyond top-3 window
	}
	recs := Generate(
		result(scoring.SegmentProcurement, 10),
		result(scoring.SegmentTransport, 10),
		result(scoring.SegmentImportExport, 10),
		bottlenecks,
	)

	if len(recs) != 2 {
		t.Fatalf("expected two bottleneck recommendations, got %d: %+v", len(recs), recs)
	}
	if recs[0].Priority != 5 || recs[0].Title != "Address Bottleneck: Maharashtra" {
		t.Errorf("first: %+v", recs[0])
	}
	if recs[1].Priority != 3 || recs[1].Title != "Address Bottleneck: Punjab" {
		t.Errorf("second: %+v", recs[1])
	}
}

func TestGenerate_SortedByPriorityDescending(t *testing.T) {
	recs := Generate(
		result(scoring.SegmentProcurement, 60),
		result(scoring.SegmentTransport, 70),
		result(scoring.SegmentImportExport, 50),
		[]bottleneck.Bottleneck{{Region: "Gujarat", CombinedRisk: 65.0}},
	)

	for i := 1; i < len(recs); i++ {
		if recs[i].Priority > recs[i-1].Priority {
			t.Fatalf("recommendations not sorted by priority: %+v", recs)
		}
	}
	// Equal priorities keep generation order: procurement rules before the
	// import/export hedge.
	var order []ActionType
	for _, r := range recs {
		if r.Priority == 3 {
			order = append(order, r.ActionType)
		}
	}
	want := []ActionType{ActionIncreaseInventory, ActionDiversifySuppliers, ActionHedgeProcurement}
	if len(order) != len(want) {
		t.Fatalf("expected %d priority-3 recommendations, got %v", len(want), order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("equal-priority order not preserved: %v", order)
			break
		}
	}
}

func TestForCategory_PriorityFromScore(t *testing.T) {
	cases := []struct {
		score    float64
		priority int
	}{
		{70, 4},
		{50, 3},
		{30, 2},
	}
	for _, tc := range cases {
		recs := ForCategory("Food", result(scoring.SegmentProcurement, tc.score))
		if len(recs) != 2 {
			t.Fatalf("expected two Food recommendations, got %d", len(recs))
		}
		for _, r := range recs {
			if r.Priority != tc.priority {
				t.Errorf("score %.0f: priority = %d, want %d", tc.score, r.Priority, tc.priority)
			}
			if r.Category != "Food" {
				t.Errorf("category = %q", r.Category)
			}
			if r.EstimatedImpact != tc.score*0.2 {
				t.Errorf("impact = %f, want %f", r.EstimatedImpact, tc.score*0.2)
			}
		}
	}
}

func TestForCategory_Unknown(t *testing.T) {
	recs := ForCategory("Electronics", result(scoring.SegmentProcurement, 90))
	if len(recs) != 0 {
		t.Errorf("unknown category should yield no recommendations, got %d", len(recs))
	}
}
