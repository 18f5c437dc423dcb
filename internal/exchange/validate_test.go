package exchange

import (
	"testing"
	"time"
)

func validVehicle() VehicleRecord {
	return VehicleRecord{
		ID:                 1,
		Name:               "Kamaz 65115",
		Price:              100000,
		Mileage:            5000,
		RegistrationNumber: "a 123 bc 77",
		BrandModelID:       1,
		EnterpriseID:       1,
	}
}

func TestVehicleValidate(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*VehicleRecord)
		wantErr bool
	}{
		{"valid", func(v *VehicleRecord) {}, false},
		{"empty name", func(v *VehicleRecord) { v.Name = "  " }, true},
		{"forbidden characters", func(v *VehicleRecord) { v.Name = "truck <script>" }, true},
		{"negative price", func(v *VehicleRecord) { v.Price = -1 }, true},
		{"negative mileage", func(v *VehicleRecord) { v.Mileage = -10 }, true},
		{"missing brand model", func(v *VehicleRecord) { v.BrandModelID = 0 }, true},
		{"missing enterprise", func(v *VehicleRecord) { v.EnterpriseID = 0 }, true},
		{"short registration", func(v *VehicleRecord) { v.RegistrationNumber = "A1" }, true},
		{"registration with symbols", func(v *VehicleRecord) { v.RegistrationNumber = "A123!C77" }, true},
		{"cyrillic registration", func(v *VehicleRecord) { v.RegistrationNumber = "а123вс77" }, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			v := validVehicle()
			tc.mutate(&v)
			err := v.Validate()
			if tc.wantErr && err == nil {
				t.Fatalf("expected error")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestTripValidate(t *testing.T) {
	start := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)
	negative := -5.0

	cases := []struct {
		name    string
		trip    TripRecord
		wantErr bool
	}{
		{"valid", TripRecord{ID: 1, VehicleID: 1, StartUtc: start, EndUtc: end}, false},
		{"zero duration", TripRecord{ID: 1, VehicleID: 1, StartUtc: start, EndUtc: start}, false},
		{"end before start", TripRecord{ID: 1, VehicleID: 1, StartUtc: end, EndUtc: start}, true},
		{"missing vehicle", TripRecord{ID: 1, StartUtc: start, EndUtc: end}, true},
		{"negative distance", TripRecord{ID: 1, VehicleID: 1, StartUtc: start, EndUtc: end, DistanceKm: &negative}, true},
		{"bad start point", TripRecord{ID: 1, VehicleID: 1, StartUtc: start, EndUtc: end, StartPoint: &PointRecord{Latitude: 95, Longitude: 0}}, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.trip.Validate()
			if tc.wantErr && err == nil {
				t.Fatalf("expected error")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestTrackPointValidate(t *testing.T) {
	ts := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)

	cases := []struct {
		name    string
		point   TrackPointRecord
		wantErr bool
	}{
		{"valid", TrackPointRecord{VehicleID: 1, TimestampUtc: ts, Latitude: 55, Longitude: 37, Speed: 60, FuelLevel: 50}, false},
		{"missing timestamp", TrackPointRecord{VehicleID: 1, Latitude: 55, Longitude: 37}, true},
		{"latitude out of range", TrackPointRecord{VehicleID: 1, TimestampUtc: ts, Latitude: 91, Longitude: 37}, true},
		{"longitude out of range", TrackPointRecord{VehicleID: 1, TimestampUtc: ts, Latitude: 55, Longitude: 181}, true},
		{"negative speed", TrackPointRecord{VehicleID: 1, TimestampUtc: ts, Latitude: 55, Longitude: 37, Speed: -1}, true},
		{"fuel above 100", TrackPointRecord{VehicleID: 1, TimestampUtc: ts, Latitude: 55, Longitude: 37, FuelLevel: 120}, true},
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
