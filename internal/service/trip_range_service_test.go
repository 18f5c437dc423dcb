package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"autopark-service/internal/model"
)

func TestTripsInRangeContainment(t *testing.T) {
	fakes := newFakeStores()
	_, vehicleID := seedFleet(t, fakes)

	// рейс, лишь пересекающий окно, в выборку не входит
	partial := &model.Trip{
		VehicleID: vehicleID,
		StartUtc:  time.Date(2025, 2, 28, 23, 0, 0, 0, time.UTC),
		EndUtc:    time.Date(2025, 3, 1, 8, 30, 0, 0, time.UTC),
	}
	if err := fakes.stores().Trips.Create(context.Background(), partial); err != nil {
		t.Fatalf("seed trip: %v", err)
	}

	svc := NewTripRangeService(fakes.stores(), &fakeGeocoder{}, zerolog.Nop())
	result, err := svc.TripsInRange(context.Background(), TripRangeInput{
		VehicleID: vehicleID,
		From:      "2025-03-01T00:00:00Z",
		To:        "2025-03-02T00:00:00Z",
	})
	if err != nil {
		t.Fatalf("TripsInRange: %v", err)
	}

	if len(result.Trips) != 1 {
		t.Fatalf("expected only the fully contained trip, got %d", len(result.Trips))
	}
	trip := result.Trips[0]
	if trip.DurationMinutes != 60 {
		t.Fatalf("expected 60 minutes, got %v", trip.DurationMinutes)
	}
	if result.TotalDurationMinutes != 60 {
		t.Fatalf("unexpected total duration %v", result.TotalDurationMinutes)
	}
	if result.TotalDistanceKm != 12.5 {
		t.Fatalf("unexpected total distance %v", result.TotalDistanceKm)
	}
	if trip.StartPoint == nil || trip.StartPoint.Address == nil || *trip.StartPoint.Address != "Depot" {
		t.Fatalf("start point lost: %+v", trip.StartPoint)
	}

	// точка трека внутри окна рейса попадает в выборку
	if len(result.TrackPoints) != 1 {
		t.Fatalf("expected 1 track point, got %d", len(result.TrackPoints))
	}
}

func TestTripsInRangeZoneHandling(t *testing.T) {
	fakes := newFakeStores()
	_, vehicleID := seedFleet(t, fakes)
	svc := NewTripRangeService(fakes.stores(), &fakeGeocoder{}, zerolog.Nop())

	// границы в московском времени: 2025-03-01 10:00 MSK = 07:00 UTC
	result, err := svc.TripsInRange(context.Background(), TripRangeInput{
		VehicleID:  vehicleID,
		From:       "2025-03-01T10:00:00",
		To:         "2025-03-01T13:00:00",
		TimeZoneID: "Europe/Moscow",
	})
	if err != nil {
		t.Fatalf("TripsInRange: %v", err)
	}
	if len(result.Trips) != 1 {
		t.Fatalf("expected the 08:00-09:00 UTC trip inside the MSK window, got %d", len(result.Trips))
	}
	if result.TimeZoneID != "Europe/Moscow" {
		t.Fatalf("unexpected zone %q", result.TimeZoneID)
	}
	if zone, _ := result.Trips[0].StartTime.Zone(); result.Trips[0].StartTime.Hour() != 11 || zone == "UTC" {
		t.Fatalf("times must be converted to the requested zone, got %v", result.Trips[0].StartTime)
	}

	// неизвестная зона откатывается к UTC
	result, err = svc.TripsInRange(context.Background(), TripRangeInput{
		VehicleID:  vehicleID,
		From:       "2025-03-01T08:00:00",
		To:         "2025-03-01T09:00:00",
		TimeZoneID: "Mars/Olympus",
	})
	if err != nil {
		t.Fatalf("TripsInRange with unknown zone: %v", err)
	}
	if result.TimeZoneID != "UTC" {
		t.Fatalf("unknown zone must fall back to UTC, got %q", result.TimeZoneID)
	}
	if len(result.Trips) != 1 {
		t.Fatalf("UTC fallback window must contain the trip, got %d", len(result.Trips))
	}
}

func TestTripsInRangeOrdering(t *testing.T) {
	fakes := newFakeStores()
	_, vehicleID := seedFleet(t, fakes)
	st := fakes.stores()

	// второй рейс с тем же стартом, ничья решается по id
	same := &model.Trip{
		VehicleID: vehicleID,
		StartUtc:  time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC),
		EndUtc:    time.Date(2025, 3, 1, 8, 30, 0, 0, time.UTC),
	}
	earlier := &model.Trip{
		VehicleID: vehicleID,
		StartUtc:  time.Date(2025, 3, 1, 6, 0, 0, 0, time.UTC),
		EndUtc:    time.Date(2025, 3, 1, 7, 0, 0, 0, time.UTC),
	}
	for _, trip := range []*model.Trip{same, earlier} {
		if err := st.Trips.Create(context.Background(), trip); err != nil {
			t.Fatalf("seed trip: %v", err)
		}
	}

	svc := NewTripRangeService(fakes.stores(), &fakeGeocoder{}, zerolog.Nop())
	result, err := svc.TripsInRange(context.Background(), TripRangeInput{
		VehicleID: vehicleID,
		From:      "2025-03-01T00:00:00Z",
		To:        "2025-03-02T00:00:00Z",
	})
	if err != nil {
		t.Fatalf("TripsInRange: %v", err)
	}

	if len(result.Trips) != 3 {
		t.Fatalf("expected 3 trips, got %d", len(result.Trips))
	}
	if result.Trips[0].ID != earlier.ID {
		t.Fatalf("trips must be ordered by start time, got %v first", result.Trips[0].ID)
	}
	if result.Trips[1].ID >= result.Trips[2].ID {
		t.Fatalf("equal starts must be ordered by id: %v, %v", result.Trips[1].ID, result.Trips[2].ID)
	}
}

func TestTripsInRangeGeoJSON(t *testing.T) {
	fakes := newFakeStores()
	_, vehicleID := seedFleet(t, fakes)
	svc := NewTripRangeService(fakes.stores(), &fakeGeocoder{}, zerolog.Nop())

	result, err := svc.TripsInRange(context.Background(), TripRangeInput{
		VehicleID: vehicleID,
		From:      "2025-03-01T00:00:00Z",
		To:        "2025-03-02T00:00:00Z",
	})
	if err != nil {
		t.Fatalf("TripsInRange: %v", err)
	}

	fc := result.GeoJSON()
	if fc.Type != "FeatureCollection" || len(fc.Features) != 1 {
		t.Fatalf("unexpected collection: %+v", fc)
	}
	coords := fc.Features[0].Geometry.Coordinates
	if len(coords) != 1 || coords[0][0] != 37.62 || coords[0][1] != 55.76 {
		t.Fatalf("coordinates must be [lon, lat], got %v", coords)
	}

	empty, err := svc.TripsInRange(context.Background(), TripRangeInput{
		VehicleID: vehicleID,
		From:      "2026-01-01T00:00:00Z",
		To:        "2026-01-02T00:00:00Z",
	})
	if err != nil {
		t.Fatalf("TripsInRange: %v", err)
	}
	if fc := empty.GeoJSON(); len(fc.Features) != 0 || fc.Features == nil {
		t.Fatalf("empty range must give an empty collection, got %+v", fc)
	}
}

func TestTripsInRangeEnrichesStoredAddresses(t *testing.T) {
	fakes := newFakeStores()
	_, vehicleID := seedFleet(t, fakes)
	st := fakes.stores()

	bare := &model.TripPoint{Latitude: 55.8, Longitude: 37.7}
	if err := st.TripPoints.Create(context.Background(), bare); err != nil {
		t.Fatalf("seed trip point: %v", err)
	}
	trip := &model.Trip{
		VehicleID:  vehicleID,
		StartUtc:   time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
		EndUtc:     time.Date(2025, 3, 1, 11, 0, 0, 0, time.UTC),
		EndPointID: &bare.ID,
	}
	if err := st.Trips.Create(context.Background(), trip); err != nil {
		t.Fatalf("seed trip: %v", err)
	}

	address := "Garden Ring 5"
	geocoder := &fakeGeocoder{
		enabled:   true,
		addresses: map[string]*string{"55.80000:37.70000": &address},
	}

	svc := NewTripRangeService(fakes.stores(), geocoder, zerolog.Nop())
	result, err := svc.TripsInRange(context.Background(), TripRangeInput{
		VehicleID: vehicleID,
		From:      "2025-03-01T00:00:00Z",
		To:        "2025-03-02T00:00:00Z",
	})
	if err != nil {
		t.Fatalf("TripsInRange: %v", err)
	}

	var enriched *TripView
	for i := range result.Trips {
		if result.Trips[i].ID == trip.ID {
			enriched = &result.Trips[i]
		}
	}
	if enriched == nil || enriched.EndPoint == nil || enriched.EndPoint.Address == nil {
		t.Fatalf("address must be enriched in the response")
	}
	if *enriched.EndPoint.Address != address {
		t.Fatalf("unexpected address %q", *enriched.EndPoint.Address)
	}

	// обогащение сохраняется вместе с отметкой времени
	stored := fakes.tripPoints[bare.ID]
	if stored.Address == nil || stored.AddressResolvedAt == nil {
		t.Fatalf("enrichment must be persisted: %+v", stored)
	}
	if geocoder.calls != 1 {
		t.Fatalf("expected a single batch call, got %d", geocoder.calls)
	}
}

func TestTripsInRangeUnknownVehicle(t *testing.T) {
	svc := NewTripRangeService(newFakeStores().stores(), &fakeGeocoder{}, zerolog.Nop())

	_, err := svc.TripsInRange(context.Background(), TripRangeInput{
		VehicleID: 404,
		From:      "2025-03-01T00:00:00Z",
		To:        "2025-03-02T00:00:00Z",
	})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestTripsInRangeRejectsBadWindow(t *testing.T) {
	fakes := newFakeStores()
	_, vehicleID := seedFleet(t, fakes)
	svc := NewTripRangeService(fakes.stores(), &fakeGeocoder{}, zerolog.Nop())

	if _, err := svc.TripsInRange(context.Background(), TripRangeInput{VehicleID: vehicleID, From: "bad", To: "2025-03-02T00:00:00Z"}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("bad from: expected ErrInvalidInput, got %v", err)
	}
	if _, err := svc.TripsInRange(context.Background(), TripRangeInput{VehicleID: vehicleID, From: "2025-03-02T00:00:00Z", To: "2025-03-01T00:00:00Z"}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("inverted window: expected ErrInvalidInput, got %v", err)
	}
}
