package geo

import (
	"math"
	"testing"
)

func TestPointValidate(t *testing.T) {
	cases := []struct {
		name    string
		point   Point
		wantErr bool
	}{
		{"valid", Point{Latitude: 55.75, Longitude: 37.61}, false},
		{"boundary", Point{Latitude: 90, Longitude: -180}, false},
		{"latitude too high", Point{Latitude: 90.01, Longitude: 0}, true},
		{"latitude too low", Point{Latitude: -91, Longitude: 0}, true},
		{"longitude too high", Point{Latitude: 0, Longitude: 180.5}, true},
		{"longitude too low", Point{Latitude: 0, Longitude: -181}, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.point.Validate()
			if tc.wantErr && err == nil {
				t.Fatalf("expected error")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestHaversineKm(t *testing.T) {
	moscow := Point{Latitude: 55.7558, Longitude: 37.6173}
	saintPetersburg := Point{Latitude: 59.9343, Longitude: 30.3351}

	got := HaversineKm(moscow, saintPetersburg)
	if math.Abs(got-634) > 10 {
		t.Fatalf("expected ~634 km, got %v", got)
	}

	if d := HaversineKm(moscow, moscow); d != 0 {
		t.Fatalf("distance to self must be zero, got %v", d)
	}
}

func TestPathLengthKm(t *testing.T) {
	a := Point{Latitude: 55.0, Longitude: 37.0}
	b := Point{Latitude: 55.1, Longitude: 37.0}
	c := Point{Latitude: 55.2, Longitude: 37.0}

	full := PathLengthKm([]Point{a, b, c})
	direct := HaversineKm(a, c)
	if math.Abs(full-direct) > 0.001 {
		t.Fatalf("colinear path must equal direct distance: %v vs %v", full, direct)
	}

	if PathLengthKm([]Point{a}) != 0 {
		t.Fatalf("single point path must be zero")
	}
	if PathLengthKm(nil) != 0 {
		t.Fatalf("empty path must be zero")
	}
}

func TestPointKeyStable(t *testing.T) {
	p := Point{Latitude: 55.755826, Longitude: 37.6173}
	if p.Key() != "55.75583:37.61730" {
		t.Fatalf("unexpected key %q", p.Key())
	}
}

func TestLineStringFeatureCoordinateOrder(t *testing.T) {
	feature := LineStringFeature([]Point{{Latitude: 55.75, Longitude: 37.61}}, map[string]interface{}{"name": "route"})

	if feature.Type != "Feature" || feature.Geometry.Type != "LineString" {
		t.Fatalf("unexpected feature shape: %+v", feature)
	}
	coords := feature.Geometry.Coordinates
	if len(coords) != 1 || coords[0][0] != 37.61 || coords[0][1] != 55.75 {
		t.Fatalf("coordinates must be [lon, lat], got %v", coords)
	}

	fc := NewFeatureCollection(feature)
	if fc.Type != "FeatureCollection" || len(fc.Features) != 1 {
		t.Fatalf("unexpected collection: %+v", fc)
	}
	if empty := NewFeatureCollection(); empty.Features == nil {
		t.Fatalf("empty collection must keep non-nil features")
	}
}
