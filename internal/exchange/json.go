package exchange

import (
	"encoding/json"
	"fmt"
)

func decodeJSON(content []byte) (*Graph, error) {
	var graph Graph
	if err := json.Unmarshal(content, &graph); err != nil {
		return nil, fmt.Errorf("malformed json: %w", err)
	}
	if graph.Vehicles == nil {
		graph.Vehicles = []VehicleRecord{}
	}
	if graph.Drivers == nil {
		graph.Drivers = []DriverRecord{}
	}
	if graph.Trips == nil {
		graph.Trips = []TripRecord{}
	}
	if graph.TrackPoints == nil {
		graph.TrackPoints = []TrackPointRecord{}
	}
	return &graph, nil
}

func encodeJSON(g *Graph) ([]byte, error) {
	return json.MarshalIndent(g, "", "  ")
}
