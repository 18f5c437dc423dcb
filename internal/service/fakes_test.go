package service

import (
	"context"
	"errors"
	"time"

	"autopark-service/internal/geo"
	"autopark-service/internal/model"
)

var errStoreDown = errors.New("store unavailable")

// fakeStores иммитирует хранилище в памяти; failOn позволяет
// симулировать сбой инфраструктуры на заданной операции
type fakeStores struct {
	enterprises map[int64]*model.Enterprise
	brandModels map[int64]*model.BrandModel
	users       map[int64]*model.User
	drivers     map[int64]*model.Driver
	vehicles    map[int64]*model.Vehicle
	trips       map[int64]*model.Trip
	tripPoints  map[int64]*model.TripPoint
	trackPoints map[int64]*model.TrackPoint
	nextID      int64
	failOn      string
}

func newFakeStores() *fakeStores {
	f := &fakeStores{
		enterprises: make(map[int64]*model.Enterprise),
		brandModels: make(map[int64]*model.BrandModel),
		users:       make(map[int64]*model.User),
		drivers:     make(map[int64]*model.Driver),
		vehicles:    make(map[int64]*model.Vehicle),
		trips:       make(map[int64]*model.Trip),
		tripPoints:  make(map[int64]*model.TripPoint),
		trackPoints: make(map[int64]*model.TrackPoint),
	}
	f.brandModels[1] = &model.BrandModel{ID: 1, Brand: "Kamaz", ModelName: "65115"}
	return f
}

func (f *fakeStores) stores() Stores {
	return Stores{
		Enterprises: (*fakeEnterpriseStore)(f),
		BrandModels: (*fakeBrandModelStore)(f),
		Users:       (*fakeUserStore)(f),
		Drivers:     (*fakeDriverStore)(f),
		Vehicles:    (*fakeVehicleStore)(f),
		Trips:       (*fakeTripStore)(f),
		TripPoints:  (*fakeTripPointStore)(f),
		TrackPoints: (*fakeTrackPointStore)(f),
	}
}

func (f *fakeStores) id() int64 {
	f.nextID++
	return f.nextID
}

func (f *fakeStores) check(op string) error {
	if f.failOn != "" && f.failOn == op {
		return errStoreDown
	}
	return nil
}

type fakeTx struct {
	fakes *fakeStores
}

func (t *fakeTx) InTransaction(ctx context.Context, fn func(Stores) error) error {
	return fn(t.fakes.stores())
}

type fakeEnterpriseStore fakeStores

func (s *fakeEnterpriseStore) GetByID(ctx context.Context, id int64) (*model.Enterprise, error) {
	if err := (*fakeStores)(s).check("enterprise.get"); err != nil {
		return nil, err
	}
	e, ok := s.enterprises[id]
	if !ok {
		return nil, nil
	}
	copied := *e
	return &copied, nil
}

func (s *fakeEnterpriseStore) Create(ctx context.Context, enterprise *model.Enterprise) error {
	if err := (*fakeStores)(s).check("enterprise.create"); err != nil {
		return err
	}
	enterprise.ID = (*fakeStores)(s).id()
	copied := *enterprise
	s.enterprises[enterprise.ID] = &copied
	return nil
}

func (s *fakeEnterpriseStore) Update(ctx context.Context, enterprise *model.Enterprise) error {
	if err := (*fakeStores)(s).check("enterprise.update"); err != nil {
		return err
	}
	copied := *enterprise
	s.enterprises[enterprise.ID] = &copied
	return nil
}

type fakeBrandModelStore fakeStores

func (s *fakeBrandModelStore) GetByID(ctx context.Context, id int64) (*model.BrandModel, error) {
	b, ok := s.brandModels[id]
	if !ok {
		return nil, nil
	}
	copied := *b
	return &copied, nil
}

type fakeUserStore fakeStores

func (s *fakeUserStore) GetByID(ctx context.Context, id int64) (*model.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	copied := *u
	return &copied, nil
}

func (s *fakeUserStore) Create(ctx context.Context, user *model.User) error {
	user.ID = (*fakeStores)(s).id()
	copied := *user
	s.users[user.ID] = &copied
	return nil
}

func (s *fakeUserStore) Update(ctx context.Context, user *model.User) error {
	copied := *user
	s.users[user.ID] = &copied
	return nil
}

type fakeDriverStore fakeStores

func (s *fakeDriverStore) GetByID(ctx context.Context, id int64) (*model.Driver, error) {
	if err := (*fakeStores)(s).check("driver.get"); err != nil {
		return nil, err
	}
	d, ok := s.drivers[id]
	if !ok {
		return nil, nil
	}
	copied := *d
	return &copied, nil
}

func (s *fakeDriverStore) Create(ctx context.Context, driver *model.Driver) error {
	if err := (*fakeStores)(s).check("driver.create"); err != nil {
		return err
	}
	driver.ID = (*fakeStores)(s).id()
	copied := *driver
	s.drivers[driver.ID] = &copied
	return nil
}

func (s *fakeDriverStore) Update(ctx context.Context, driver *model.Driver) error {
	copied := *driver
	s.drivers[driver.ID] = &copied
	return nil
}

func (s *fakeDriverStore) ListByEnterpriseID(ctx context.Context, enterpriseID int64) ([]model.Driver, error) {
	var result []model.Driver
	for _, d := range s.drivers {
		if d.EnterpriseID == enterpriseID {
			result = append(result, *d)
		}
	}
	return result, nil
}

type fakeVehicleStore fakeStores

func (s *fakeVehicleStore) GetByID(ctx context.Context, id int64) (*model.Vehicle, error) {
	if err := (*fakeStores)(s).check("vehicle.get"); err != nil {
		return nil, err
	}
	v, ok := s.vehicles[id]
	if !ok {
		return nil, nil
	}
	copied := *v
	return &copied, nil
}

func (s *fakeVehicleStore) Create(ctx context.Context, vehicle *model.Vehicle) error {
	if err := (*fakeStores)(s).check("vehicle.create"); err != nil {
		return err
	}
	vehicle.ID = (*fakeStores)(s).id()
	copied := *vehicle
	s.vehicles[vehicle.ID] = &copied
	return nil
}

func (s *fakeVehicleStore) Update(ctx context.Context, vehicle *model.Vehicle) error {
	if err := (*fakeStores)(s).check("vehicle.update"); err != nil {
		return err
	}
	copied := *vehicle
	s.vehicles[vehicle.ID] = &copied
	return nil
}

func (s *fakeVehicleStore) ListByEnterpriseID(ctx context.Context, enterpriseID int64) ([]model.Vehicle, error) {
	var result []model.Vehicle
	for _, v := range s.vehicles {
		if v.EnterpriseID == enterpriseID {
			result = append(result, *v)
		}
	}
	return result, nil
}

type fakeTripStore fakeStores

func (s *fakeTripStore) GetByID(ctx context.Context, id int64) (*model.Trip, error) {
	t, ok := s.trips[id]
	if !ok {
		return nil, nil
	}
	copied := *t
	return &copied, nil
}

func (s *fakeTripStore) Create(ctx context.Context, trip *model.Trip) error {
	if err := (*fakeStores)(s).check("trip.create"); err != nil {
		return err
	}
	trip.ID = (*fakeStores)(s).id()
	copied := *trip
	s.trips[trip.ID] = &copied
	return nil
}

func (s *fakeTripStore) Update(ctx context.Context, trip *model.Trip) error {
	copied := *trip
	s.trips[trip.ID] = &copied
	return nil
}

func (s *fakeTripStore) ListOverlappingByVehicleIDs(ctx context.Context, vehicleIDs []int64, from, to *time.Time) ([]model.Trip, error) {
	var result []model.Trip
	for _, t := range s.trips {
		if !containsID(vehicleIDs, t.VehicleID) {
			continue
		}
		if from != nil && t.EndUtc.Before(*from) {
			continue
		}
		if to != nil && t.StartUtc.After(*to) {
			continue
		}
		result = append(result, *t)
	}
	sortTrips(result)
	return result, nil
}

func (s *fakeTripStore) ListContainedByVehicle(ctx context.Context, vehicleID int64, fromUtc, toUtc time.Time) ([]model.Trip, error) {
	var result []model.Trip
	for _, t := range s.trips {
		if t.VehicleID != vehicleID {
			continue
		}
		if t.StartUtc.Before(fromUtc) || t.EndUtc.After(toUtc) {
			continue
		}
		result = append(result, *t)
	}
	sortTrips(result)
	return result, nil
}

func sortTrips(trips []model.Trip) {
	for i := 1; i < len(trips); i++ {
		for j := i; j > 0; j-- {
			a, b := trips[j-1], trips[j]
			if b.StartUtc.Before(a.StartUtc) || (b.StartUtc.Equal(a.StartUtc) && b.ID < a.ID) {
				trips[j-1], trips[j] = b, a
			}
		}
	}
}

func containsID(ids []int64, id int64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

type fakeTripPointStore fakeStores

func (s *fakeTripPointStore) GetByID(ctx context.Context, id int64) (*model.TripPoint, error) {
	p, ok := s.tripPoints[id]
	if !ok {
		return nil, nil
	}
	copied := *p
	return &copied, nil
}

func (s *fakeTripPointStore) Create(ctx context.Context, point *model.TripPoint) error {
	point.ID = (*fakeStores)(s).id()
	copied := *point
	s.tripPoints[point.ID] = &copied
	return nil
}

func (s *fakeTripPointStore) Update(ctx context.Context, point *model.TripPoint) error {
	if err := (*fakeStores)(s).check("trip_point.update"); err != nil {
		return err
	}
	copied := *point
	s.tripPoints[point.ID] = &copied
	return nil
}

func (s *fakeTripPointStore) ListByIDs(ctx context.Context, ids []int64) ([]model.TripPoint, error) {
	var result []model.TripPoint
	for _, id := range ids {
		if p, ok := s.tripPoints[id]; ok {
			result = append(result, *p)
		}
	}
	return result, nil
}

type fakeTrackPointStore fakeStores

func (s *fakeTrackPointStore) GetByVehicleAndTime(ctx context.Context, vehicleID int64, timestamp time.Time) (*model.TrackPoint, error) {
	for _, p := range s.trackPoints {
		if p.VehicleID == vehicleID && p.TimestampUtc.Equal(timestamp) {
			copied := *p
			return &copied, nil
		}
	}
	return nil, nil
}

func (s *fakeTrackPointStore) Create(ctx context.Context, point *model.TrackPoint) error {
	if err := (*fakeStores)(s).check("track_point.create"); err != nil {
		return err
	}
	point.ID = (*fakeStores)(s).id()
	copied := *point
	s.trackPoints[point.ID] = &copied
	return nil
}

func (s *fakeTrackPointStore) ListByVehicleIDsInRange(ctx context.Context, vehicleIDs []int64, from, to *time.Time) ([]model.TrackPoint, error) {
	var result []model.TrackPoint
	for _, p := range s.trackPoints {
		if !containsID(vehicleIDs, p.VehicleID) {
			continue
		}
		if from != nil && p.TimestampUtc.Before(*from) {
			continue
		}
		if to != nil && p.TimestampUtc.After(*to) {
			continue
		}
		result = append(result, *p)
	}
	return result, nil
}

func (s *fakeTrackPointStore) ListByVehicleInRange(ctx context.Context, vehicleID int64, fromUtc, toUtc time.Time) ([]model.TrackPoint, error) {
	var result []model.TrackPoint
	for _, p := range s.trackPoints {
		if p.VehicleID != vehicleID {
			continue
		}
		if p.TimestampUtc.Before(fromUtc) || p.TimestampUtc.After(toUtc) {
			continue
		}
		result = append(result, *p)
	}
	sortTrackPoints(result)
	return result, nil
}

func sortTrackPoints(points []model.TrackPoint) {
	for i := 1; i < len(points); i++ {
		for j := i; j > 0 && points[j].TimestampUtc.Before(points[j-1].TimestampUtc); j-- {
			points[j-1], points[j] = points[j], points[j-1]
		}
	}
}

// fakeGeocoder отвечает заранее заданными адресами
type fakeGeocoder struct {
	enabled   bool
	addresses map[string]*string
	calls     int
}

func (g *fakeGeocoder) Enabled(apiKey string) bool {
	return g.enabled
}

func (g *fakeGeocoder) ResolveAddressesBatch(ctx context.Context, points []geo.Point, apiKey string) map[string]*string {
	g.calls++
	results := make(map[string]*string, len(points))
	for _, p := range points {
		results[p.Key()] = g.addresses[p.Key()]
	}
	return results
}
