package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"autopark-service/internal/geo"
	"autopark-service/internal/model"
	"autopark-service/internal/timeutil"
)

type TripRangeService struct {
	stores   Stores
	geocoder Geocoder
	log      zerolog.Logger
}

func NewTripRangeService(stores Stores, geocoder Geocoder, log zerolog.Logger) *TripRangeService {
	return &TripRangeService{stores: stores, geocoder: geocoder, log: log}
}

type TripRangeInput struct {
	VehicleID  int64
	From       string
	To         string
	TimeZoneID string
}

type PointView struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Address   *string `json:"address"`
}

type TripView struct {
	ID              int64      `json:"id"`
	StartTime       time.Time  `json:"startTime"`
	EndTime         time.Time  `json:"endTime"`
	DurationMinutes float64    `json:"durationMinutes"`
	DistanceKm      *float64   `json:"distanceKm"`
	StartPoint      *PointView `json:"startPoint"`
	EndPoint        *PointView `json:"endPoint"`
}

type TrackPointView struct {
	Timestamp time.Time `json:"timestamp"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Speed     float64   `json:"speed"`
}

type TripRangeResult struct {
	VehicleID            int64            `json:"vehicleId"`
	TimeZoneID           string           `json:"timeZoneId"`
	From                 time.Time        `json:"from"`
	To                   time.Time        `json:"to"`
	Trips                []TripView       `json:"trips"`
	TrackPoints          []TrackPointView `json:"trackPoints"`
	TotalDistanceKm      float64          `json:"totalDistanceKm"`
	TotalDurationMinutes float64          `json:"totalDurationMinutes"`
}

// TripsInRange возвращает рейсы машины, целиком лежащие в запрошенном
// окне, вместе с их точками трека. Границы окна интерпретируются в
// запрошенной зоне, времена в ответе приводятся к ней же
func (s *TripRangeService) TripsInRange(ctx context.Context, input TripRangeInput) (*TripRangeResult, error) {
	vehicle, err := s.stores.Vehicles.GetByID(ctx, input.VehicleID)
	if err != nil {
		return nil, err
	}
	if vehicle == nil {
		return nil, fmt.Errorf("%w: vehicle %d", ErrNotFound, input.VehicleID)
	}

	var tzID *string
	if input.TimeZoneID != "" {
		tzID = &input.TimeZoneID
	}

	fromUtc, err := timeutil.ParseInZone(input.From, tzID)
	if err != nil {
		return nil, fmt.Errorf("%w: from: %s", ErrInvalidInput, err)
	}
	toUtc, err := timeutil.ParseInZone(input.To, tzID)
	if err != nil {
		return nil, fmt.Errorf("%w: to: %s", ErrInvalidInput, err)
	}
	if toUtc.Before(fromUtc) {
		return nil, fmt.Errorf("%w: window end precedes start", ErrInvalidInput)
	}

	trips, err := s.stores.Trips.ListContainedByVehicle(ctx, vehicle.ID, fromUtc, toUtc)
	if err != nil {
		return nil, err
	}

	points, err := s.loadTripPoints(ctx, trips)
	if err != nil {
		return nil, err
	}
	s.enrichAddresses(ctx, points)

	loc := timeutil.Location(tzID)
	result := &TripRangeResult{
		VehicleID:   vehicle.ID,
		TimeZoneID:  loc.String(),
		From:        fromUtc.In(loc),
		To:          toUtc.In(loc),
		Trips:       []TripView{},
		TrackPoints: []TrackPointView{},
	}

	for _, t := range trips {
		view := TripView{
			ID:              t.ID,
			StartTime:       t.StartUtc.In(loc),
			EndTime:         t.EndUtc.In(loc),
			DurationMinutes: t.DurationMinutes(),
			DistanceKm:      t.DistanceKm,
			StartPoint:      pointView(points, t.StartPointID),
			EndPoint:        pointView(points, t.EndPointID),
		}
		result.Trips = append(result.Trips, view)
		result.TotalDurationMinutes += view.DurationMinutes
		if t.DistanceKm != nil {
			result.TotalDistanceKm += *t.DistanceKm
		}
	}

	trackPoints, err := s.stores.TrackPoints.ListByVehicleInRange(ctx, vehicle.ID, fromUtc, toUtc)
	if err != nil {
		return nil, err
	}
	for _, p := range trackPoints {
		if !coveredByTrip(trips, p.TimestampUtc) {
			continue
		}
		result.TrackPoints = append(result.TrackPoints, TrackPointView{
			Timestamp: p.TimestampUtc.In(loc),
			Latitude:  p.Latitude,
			Longitude: p.Longitude,
			Speed:     p.Speed,
		})
	}

	return result, nil
}

// Точки трека вне окон рейсов не относятся к поездкам (стоянка,
// прогрев) и в выборку не входят
func coveredByTrip(trips []model.Trip, ts time.Time) bool {
	for _, t := range trips {
		if !ts.Before(t.StartUtc) && !ts.After(t.EndUtc) {
			return true
		}
	}
	return false
}

func (s *TripRangeService) loadTripPoints(ctx context.Context, trips []model.Trip) (map[int64]*model.TripPoint, error) {
	ids := make([]int64, 0, len(trips)*2)
	seen := make(map[int64]struct{})
	for _, t := range trips {
		for _, id := range []*int64{t.StartPointID, t.EndPointID} {
			if id == nil {
				continue
			}
			if _, ok := seen[*id]; ok {
				continue
			}
			seen[*id] = struct{}{}
			ids = append(ids, *id)
		}
	}
	result := make(map[int64]*model.TripPoint, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	points, err := s.stores.TripPoints.ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range points {
		result[points[i].ID] = &points[i]
	}
	return result, nil
}

// enrichAddresses дозаполняет адреса точек, оставшихся без них после
// импорта. Обогащение best-effort: сбой геокодера или хранилища лишь
// логируется и не ломает выборку
func (s *TripRangeService) enrichAddresses(ctx context.Context, points map[int64]*model.TripPoint) {
	if s.geocoder == nil || !s.geocoder.Enabled("") {
		return
	}

	var coords []geo.Point
	seen := make(map[string]struct{})
	for _, p := range points {
		if p.HasAddress() {
			continue
		}
		c := geo.Point{Latitude: p.Latitude, Longitude: p.Longitude}
		if _, ok := seen[c.Key()]; ok {
			continue
		}
		seen[c.Key()] = struct{}{}
		coords = append(coords, c)
	}
	if len(coords) == 0 {
		return
	}

	addresses := s.geocoder.ResolveAddressesBatch(ctx, coords, "")
	now := time.Now().UTC()
	for _, p := range points {
		if p.HasAddress() {
			continue
		}
		address := addresses[geo.Point{Latitude: p.Latitude, Longitude: p.Longitude}.Key()]
		if address == nil || *address == "" {
			continue
		}
		p.Address = address
		p.AddressResolvedAt = &now
		if err := s.stores.TripPoints.Update(ctx, p); err != nil {
			s.log.Warn().Err(err).Int64("trip_point_id", p.ID).Msg("address enrichment not persisted")
		}
	}
}

func pointView(points map[int64]*model.TripPoint, id *int64) *PointView {
	if id == nil {
		return nil
	}
	p, ok := points[*id]
	if !ok {
		return nil
	}
	return &PointView{Latitude: p.Latitude, Longitude: p.Longitude, Address: p.Address}
}

// GeoJSON представляет маршрут как одну ломаную в порядке следования
// точек трека, координаты [долгота, широта]
func (r *TripRangeResult) GeoJSON() geo.FeatureCollection {
	pts := make([]geo.Point, 0, len(r.TrackPoints))
	for _, p := range r.TrackPoints {
		pts = append(pts, geo.Point{Latitude: p.Latitude, Longitude: p.Longitude})
	}
	if len(pts) == 0 {
		return geo.NewFeatureCollection()
	}
	feature := geo.LineStringFeature(pts, map[string]interface{}{
		"vehicleId":       r.VehicleID,
		"tripCount":       len(r.Trips),
		"totalDistanceKm": r.TotalDistanceKm,
		"from":            r.From.Format(time.RFC3339),
		"to":              r.To.Format(time.RFC3339),
	})
	return geo.NewFeatureCollection(feature)
}
