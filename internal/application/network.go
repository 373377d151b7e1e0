package application

import (
	"github.com/supplyradar/supplyradar/internal/domain/signal"
)

// SupplyNetwork is the graph rendered on the category dashboard: supply
// origins feeding domestic hubs feeding trade destinations.
type SupplyNetwork struct {
	Nodes []NetworkNode `json:"nodes"`
	Links []NetworkLink `json:"links"`
}

type NetworkNode struct {
	ID    string  `json:"id"`
	Label string  `json:"label"`
	Type  string  `json:"type"` // source|hub|destination
	Lat   float64 `json:"lat"`
	Lng   float64 `json:"lng"`
}

type NetworkLink struct {
	Source    string `json:"source"`
	Target    string `json:"target"`
	RiskLevel string `json:"risk_level"`
}

var networkHubs = []string{"Mumbai", "Delhi", "Chennai", "Kolkata"}

var stateCoords = map[string][2]float64{
	"Maharashtra":    {19.7515, 75.7139},
	"Uttar Pradesh":  {26.8467, 80.9462},
	"Madhya Pradesh": {22.9734, 78.6569},
	"Rajasthan":      {27.0238, 74.2179},
	"Gujarat":        {22.2587, 71.1924},
	"Karnataka":      {15.3173, 75.7139},
	"Tamil Nadu":     {11.1271, 78.6569},
	"Andhra Pradesh": {15.9129, 79.7400},
	"Punjab":         {31.1471, 75.3412},
	"West Bengal":    {22.9868, 87.8550},
	"Telangana":      {18.1124, 79.0193},
	"Delhi":          {28.7041, 77.1025},
}

var cityCoords = map[string][2]float64{
	"Mumbai":    {19.076, 72.877},
	"Delhi":     {28.704, 77.102},
	"Chennai":   {13.083, 80.271},
	"Kolkata":   {22.573, 88.364},
	"Bangalore": {12.972, 77.595},
}

// indiaCentroid is the fallback for states and cities not in the tables.
var indiaCentroid = [2]float64{20.5937, 78.9629}

// buildSupplyNetwork assembles graph nodes from the mandi supply states,
// the four major hubs, and up to three trade destinations. Link risk levels
// are illustrative draws until lane-level risk is modeled.
func (s *Service) buildSupplyNetwork(mandi, trade []signal.Signal) SupplyNetwork {
	network := SupplyNetwork{Nodes: []NetworkNode{}, Links: []NetworkLink{}}

	var states []string
	seen := map[string]bool{}
	for _, sig := range mandi {
		state := sig.State
		if state == "" {
			state = "Unknown"
		}
		if seen[state] {
			continue
		}
		seen[state] = true
		states = append(states, state)
		coords := stateCoordsFor(state)
		network.Nodes = append(network.Nodes, NetworkNode{
			ID:    "src-" + state,
			Label: state,
			Type:  "source",
			Lat:   coords[0],
			Lng:   coords[1],
		})
	}

	for _, hub := range networkHubs {
		coords := cityCoordsFor(hub)
		network.Nodes = append(network.Nodes, NetworkNode{
			ID:    "hub-" + hub,
			Label: hub,
			Type:  "hub",
			Lat:   coords[0],
			Lng:   coords[1],
		})
	}

	dests := trade
	if len(dests) > 3 {
		dests = dests[:3]
	}
	for _, sig := range dests {
		country := "Unknown"
		if sig.Trade != nil && sig.Trade.Country != "" {
			country = sig.Trade.Country
		}
		network.Nodes = append(network.Nodes, NetworkNode{
			ID:    "dest-" + country,
			Label: country,
			Type:  "destination",
		})
	}

	riskLevels := []string{"low", "medium", "high"}
	for _, state := range states {
		hub := networkHubs[s.rng.Intn(len(networkHubs))]
		network.Links = append(network.Links, NetworkLink{
			Source:    "src-" + state,
			Target:    "hub-" + hub,
			RiskLevel: riskLevels[s.rng.Intn(len(riskLevels))],
		})
	}
	for _, sig := range dests {
		country := "Unknown"
		if sig.Trade != nil && sig.Trade.Country != "" {
			country = sig.Trade.Country
		}
		hub := networkHubs[s.rng.Intn(len(networkHubs))]
		network.Links = append(network.Links, NetworkLink{
			Source:    "hub-" + hub,
			Target:    "dest-" + country,
			RiskLevel: riskLevels[s.rng.Intn(len(riskLevels))],
		})
	}
	return network
}

func stateCoordsFor(state string) [2]float64 {
	if c, ok := stateCoords[state]; ok {
		return c
	}
	return indiaCentroid
}

func cityCoordsFor(city string) [2]float64 {
	if c, ok := cityCoords[city]; ok {
		return c
	}
	return indiaCentroid
}
