package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"autopark-service/internal/exchange"
	"autopark-service/internal/metrics"
	"autopark-service/internal/model"
	"autopark-service/internal/timeutil"
)

type ExportService struct {
	stores Stores
	log    zerolog.Logger
}

func NewExportService(stores Stores, log zerolog.Logger) *ExportService {
	return &ExportService{stores: stores, log: log}
}

type ExportInput struct {
	EnterpriseID int64
	Format       string
	From         string
	To           string
}

// Export собирает снимок данных предприятия за период и кодирует его
// в запрошенный формат. Границы периода трактуются во временной зоне
// предприятия; рейсы попадают в снимок при пересечении с окном
func (s *ExportService) Export(ctx context.Context, input ExportInput) (*exchange.EncodedSnapshot, error) {
	format, err := exchange.ParseFormat(input.Format)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidInput, err)
	}

	enterprise, err := s.stores.Enterprises.GetByID(ctx, input.EnterpriseID)
	if err != nil {
		return nil, err
	}
	if enterprise == nil {
		return nil, fmt.Errorf("%w: enterprise %d", ErrNotFound, input.EnterpriseID)
	}

	from, to, err := parseWindow(input.From, input.To, enterprise.TimeZoneID)
	if err != nil {
		return nil, err
	}

	graph, err := s.buildGraph(ctx, enterprise, from, to)
	if err != nil {
		return nil, err
	}

	snapshot, err := exchange.Encode(format, graph)
	if err != nil {
		return nil, err
	}

	metrics.ExportsTotal.WithLabelValues(string(format)).Inc()
	s.log.Info().
		Int64("enterprise_id", enterprise.ID).
		Str("format", string(format)).
		Int("vehicles", len(graph.Vehicles)).
		Int("trips", len(graph.Trips)).
		Int("track_points", len(graph.TrackPoints)).
		Msg("snapshot exported")
	return snapshot, nil
}

func parseWindow(from, to string, tzID *string) (*time.Time, *time.Time, error) {
	var fromUtc, toUtc *time.Time
	if from != "" {
		t, err := timeutil.ParseInZone(from, tzID)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: from: %s", ErrInvalidInput, err)
		}
		fromUtc = &t
	}
	if to != "" {
		t, err := timeutil.ParseInZone(to, tzID)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: to: %s", ErrInvalidInput, err)
		}
		toUtc = &t
	}
	if fromUtc != nil && toUtc != nil && toUtc.Before(*fromUtc) {
		return nil, nil, fmt.Errorf("%w: window end precedes start", ErrInvalidInput)
	}
	return fromUtc, toUtc, nil
}

func (s *ExportService) buildGraph(ctx context.Context, enterprise *model.Enterprise, from, to *time.Time) (*exchange.Graph, error) {
	graph := &exchange.Graph{
		Enterprise: exchange.EnterpriseRecord{
			ID:         enterprise.ID,
			Name:       enterprise.Name,
			Address:    enterprise.Address,
			TimeZoneID: enterprise.TimeZoneID,
		},
		Vehicles:    []exchange.VehicleRecord{},
		Drivers:     []exchange.DriverRecord{},
		Trips:       []exchange.TripRecord{},
		TrackPoints: []exchange.TrackPointRecord{},
		ExportedAt:  time.Now().UTC(),
		DateRange:   exchange.DateRange{StartDate: from, EndDate: to},
	}

	vehicles, err := s.stores.Vehicles.ListByEnterpriseID(ctx, enterprise.ID)
	if err != nil {
		return nil, err
	}
	vehicleIDs := make([]int64, 0, len(vehicles))
	for _, v := range vehicles {
		vehicleIDs = append(vehicleIDs, v.ID)
		graph.Vehicles = append(graph.Vehicles, exchange.VehicleRecord{
			ID:                 v.ID,
			Name:               v.Name,
			Price:              v.Price,
			Mileage:            v.Mileage,
			Color:              v.Color,
			RegistrationNumber: v.RegistrationNumber,
			BrandModelID:       v.BrandModelID,
			EnterpriseID:       v.EnterpriseID,
			ActiveDriverID:     v.ActiveDriverID,
			PurchaseDate:       v.PurchaseDate,
		})
	}

	drivers, err := s.stores.Drivers.ListByEnterpriseID(ctx, enterprise.ID)
	if err != nil {
		return nil, err
	}
	for _, d := range drivers {
		user, err := s.stores.Users.GetByID(ctx, d.UserID)
		if err != nil {
			return nil, err
		}
		rec := exchange.DriverRecord{
			ID:           d.ID,
			Salary:       d.Salary,
			EnterpriseID: d.EnterpriseID,
			VehicleID:    d.VehicleID,
		}
		if user != nil {
			rec.FirstName = user.FirstName
			rec.LastName = user.LastName
		}
		graph.Drivers = append(graph.Drivers, rec)
	}

	if len(vehicleIDs) == 0 {
		return graph, nil
	}

	trips, err := s.stores.Trips.ListOverlappingByVehicleIDs(ctx, vehicleIDs, from, to)
	if err != nil {
		return nil, err
	}
	points, err := s.loadTripPoints(ctx, trips)
	if err != nil {
		return nil, err
	}
	for _, t := range trips {
		graph.Trips = append(graph.Trips, exchange.TripRecord{
			ID:         t.ID,
			VehicleID:  t.VehicleID,
			StartUtc:   t.StartUtc.UTC(),
			EndUtc:     t.EndUtc.UTC(),
			DistanceKm: t.DistanceKm,
			StartPoint: pointRecord(points, t.StartPointID),
			EndPoint:   pointRecord(points, t.EndPointID),
		})
	}

	trackPoints, err := s.stores.TrackPoints.ListByVehicleIDsInRange(ctx, vehicleIDs, from, to)
	if err != nil {
		return nil, err
	}
	for _, p := range trackPoints {
		graph.TrackPoints = append(graph.TrackPoints, exchange.TrackPointRecord{
			VehicleID:    p.VehicleID,
			TimestampUtc: p.TimestampUtc.UTC(),
			Latitude:     p.Latitude,
			Longitude:    p.Longitude,
			Speed:        p.Speed,
			Rpm:          p.Rpm,
			FuelLevel:    p.FuelLevel,
		})
	}

	return graph, nil
}

func (s *ExportService) loadTripPoints(ctx context.Context, trips []model.Trip) (map[int64]model.TripPoint, error) {
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
	result := make(map[int64]model.TripPoint, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	points, err := s.stores.TripPoints.ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, p := range points {
		result[p.ID] = p
	}
	return result, nil
}

func pointRecord(points map[int64]model.TripPoint, id *int64) *exchange.PointRecord {
	if id == nil {
		return nil
	}
	p, ok := points[*id]
	if !ok {
		return nil
	}
	return &exchange.PointRecord{
		Latitude:  p.Latitude,
		Longitude: p.Longitude,
		Address:   p.Address,
	}
}
