// Package recommend maps segment scores and detected bottlenecks to a
// ranked list of mitigation actions via a fixed rule table.
package recommend

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/supplyradar/supplyradar/internal/domain/bottleneck"
	"github.com/supplyradar/supplyradar/internal/domain/scoring"
)

// ActionType enumerates the mitigation playbook.
type ActionType string

const (
	ActionIncreaseInventory   ActionType = "increase_inventory"
	ActionDiversifySuppliers  ActionType = "diversify_suppliers"
	ActionSwitchRoutes        ActionType = "switch_routes"
	ActionHedgeProcurement    ActionType = "hedge_procurement"
	ActionAlternativeSourcing ActionType = "alternative_sourcing"
	ActionExpediteShipping    ActionType = "expedite_shipping"
)

// Recommendation is one ranked mitigation action. Priority runs 1 (routine)
// to 5 (urgent).
type Recommendation struct {
	Segment         string     `json:"segment"`
	Category        string     `json:"category,omitempty"`
	ActionType      ActionType `json:"action_type"`
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	Priority        int        `json:"priority"`
	EstimatedImpact float64    `json:"estimated_impact"`
}

// Rule trigger thresholds and per-rule impact multipliers.
const (
	procurementTrigger   = 50.0
	procurementUrgent    = 70.0
	transportTrigger     = 40.0
	transportUrgent      = 60.0
	importExportTrigger  = 45.0
	bottleneckTrigger    = 30.0
	bottleneckUrgent     = 60.0
	maxBottleneckActions = 3
)

// Generate builds recommendations from the three segment scores and the top
// bottlenecks. Output is sorted by priority descending; equal priorities
// keep generation order (procurement, transport, import/export, then
// bottlenecks).
func Generate(procurement, transport, importExport *scoring.Result, bottlenecks []bottleneck.Bottleneck) []Recommendation {
	var recs []Recommendation

	if procurement.Score > procurementTrigger {
		priority := 3
		if procurement.Score > procurementUrgent {
			priority = 4
		}
		recs = append(recs, Recommendation{
			Segment:    string(scoring.SegmentProcurement),
			ActionType: ActionIncreaseInventory,
			Title:      "Increase Buffer Inventory",
			Description: fmt.Sprintf("Procurement risk is %s (score: %.2f). "+
				"Consider increasing safety stock by 15-25%% for critical commodities to mitigate supply disruptions.",
				procurement.RiskLevel, procurement.Score),
			Priority:        priority,
			EstimatedImpact: round1(procurement.Score * 0.3),
		})
		recs = append(recs, Recommendation{
			Segment:    string(scoring.SegmentProcurement),
			ActionType: ActionDiversifySuppliers,
			Title:      "Diversify Supplier Base",
			Description: "High price volatility detected across procurement channels. " +
				"Identify and onboard 2-3 alternative suppliers in different regions to reduce concentration risk.",
			Priority:        3,
			EstimatedImpact: round1(procurement.Score * 0.25),
		})
	}

	if transport.Score > transportTrigger {
		priority := 2
		if transport.Score > transportUrgent {
			priority = 4
		}
		recs = append(recs, Recommendation{
			Segment:    string(scoring.SegmentTransport),
			ActionType: ActionSwitchRoutes,
			Title:      "Activate Alternate Transport Routes",
			Description: fmt.Sprintf("Transport risk is elevated (score: %.2f). "+
				"Consider switching to less congested corridors or alternative transport modes.", transport.Score),
			Priority:        priority,
			EstimatedImpact: round1(transport.Score * 0.2),
		})
	}

	if importExport.Score > importExportTrigger {
		recs = append(recs, Recommendation{
			Segment:    string(scoring.SegmentImportExport),
			ActionType: ActionHedgeProcurement,
			Title:      "Hedge Import Costs",
			Description: fmt.Sprintf("Import/Export risk score: %.2f. "+
				"Recommend forward contracts or currency hedging to mitigate trade volatility.", importExport.Score),
			Priority:        3,
			EstimatedImpact: round1(importExport.Score * 0.15),
		})
	}

	for i, b := range bottlenecks {
		if i >= maxBottleneckActions {
			break
		}
		if b.CombinedRisk <= bottleneckTrigger {
			continue
		}
		priority := 3
		if b.CombinedRisk > bottleneckUrgent {
			priority = 5
		}
		recs = append(recs, Recommendation{
			Segment:    string(scoring.SegmentTransport),
			ActionType: ActionAlternativeSourcing,
			Title:      fmt.Sprintf("Address Bottleneck: %s", b.Region),
			Description: fmt.Sprintf("Bottleneck detected in %s region (risk: %.2f%%). Factors: %s",
				b.Region, b.CombinedRisk, strings.Join(b.Explanations, ", ")),
			Priority:        priority,
			EstimatedImpact: round1(b.CombinedRisk * 0.2),
		})
	}

	if len(recs) == 0 {
		recs = append(recs, Recommendation{
			Segment:    "general",
			ActionType: ActionIncreaseInventory,
			Title:      "Maintain Current Strategy",
			Description: "All risk scores are within acceptable thresholds. " +
				"Continue monitoring and maintain current inventory levels.",
			Priority:        1,
			EstimatedImpact: 0,
		})
	}

	sort.SliceStable(recs, func(i, j int) bool { return recs[i].Priority > recs[j].Priority })
	return recs
}

// categoryAction is one canned mitigation for a product category.
type categoryAction struct {
	actionType  ActionType
	title       string
	description string
}

var categoryActions = map[string][]categoryAction{
	"Food": {
		{ActionIncreaseInventory, "Increase Cold Storage Capacity",
			"Perishable food items require increased cold storage allocation during high-risk periods."},
		{ActionDiversifySuppliers, "Source from Multiple Agricultural Regions",
			"Diversify food sourcing across states to reduce weather-related procurement risk."},
	},
	"Clothing": {
		{ActionAlternativeSourcing, "Identify Alternative Textile Sources",
			"Source raw materials (cotton, jute) from multiple regions to hedge against crop failures."},
		{ActionExpediteShipping, "Pre-position Seasonal Inventory",
			"Expedite shipments for seasonal clothing lines before monsoon-induced logistics delays."},
	},
	"Stationery": {
		{ActionIncreaseInventory, "Build Pre-Season Stock",
			"Increase inventory before school/academic season to avoid supply shortages."},
		{ActionSwitchRoutes, "Optimize Import Routes",
			"Switch to Southern port routes if Northern corridors show congestion."},
	},
	"Toys": {
		{ActionHedgeProcurement, "Lock Import Prices",
			"Secure forward contracts for imported toy components to hedge against currency fluctuations."},
		{ActionDiversifySuppliers, "Expand Domestic Manufacturing",
			"Reduce dependency on imports by partnering with domestic toy manufacturers."},
	},
}

// ForCategory returns the canned actions for a product category with
// priority derived from the category's risk score. Unknown categories get
// no recommendations.
func ForCategory(category string, result *scoring.Result) []Recommendation {
	actions := categoryActions[category]
	recs := make([]Recommendation, 0, len(actions))

	priority := 2
	switch {
	case result.Score > 60:
		priority = 4
	case result.Score > 40:
		priority = 3
	}

	for _, a := range actions {
		recs = append(recs, Recommendation{
			Segment:         string(scoring.SegmentProcurement),
			Category:        category,
			ActionType:      a.actionType,
			Title:           a.title,
			Description:     a.description,
			Priority:        priority,
			EstimatedImpact: round1(result.Score * 0.2),
		})
	}
	return recs
}

func round1(x float64) float64 { return math.Round(x*10) / 10 }
