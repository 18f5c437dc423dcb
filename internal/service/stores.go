package service

import (
	"context"
	"time"

	"autopark-service/internal/model"
)

// Хранилища возвращают (nil, nil) когда записи нет;
// ошибка означает сбой инфраструктуры

type EnterpriseStore interface {
	GetByID(ctx context.Context, id int64) (*model.Enterprise, error)
	Create(ctx context.Context, enterprise *model.Enterprise) error
	Update(ctx context.Context, enterprise *model.Enterprise) error
}

type BrandModelStore interface {
	GetByID(ctx context.Context, id int64) (*model.BrandModel, error)
}

type UserStore interface {
	GetByID(ctx context.Context, id int64) (*model.User, error)
	Create(ctx context.Context, user *model.User) error
	Update(ctx context.Context, user *model.User) error
}

type DriverStore interface {
	GetByID(ctx context.Context, id int64) (*model.Driver, error)
	Create(ctx context.Context, driver *model.Driver) error
	Update(ctx context.Context, driver *model.Driver) error
	ListByEnterpriseID(ctx context.Context, enterpriseID int64) ([]model.Driver, error)
}

type VehicleStore interface {
	GetByID(ctx context.Context, id int64) (*model.Vehicle, error)
	Create(ctx context.Context, vehicle *model.Vehicle) error
	Update(ctx context.Context, vehicle *model.Vehicle) error
	ListByEnterpriseID(ctx context.Context, enterpriseID int64) ([]model.Vehicle, error)
}

type TripStore interface {
	GetByID(ctx context.Context, id int64) (*model.Trip, error)
	Create(ctx context.Context, trip *model.Trip) error
	Update(ctx context.Context, trip *model.Trip) error
	// ListOverlappingByVehicleIDs возвращает рейсы, чье окно пересекает
	// [from, to]; открытая граница означает "без ограничения"
	ListOverlappingByVehicleIDs(ctx context.Context, vehicleIDs []int64, from, to *time.Time) ([]model.Trip, error)
	// ListContainedByVehicle возвращает рейсы, целиком лежащие в окне,
	// упорядоченные по start_utc, затем по id
	ListContainedByVehicle(ctx context.Context, vehicleID int64, fromUtc, toUtc time.Time) ([]model.Trip, error)
}

type TripPointStore interface {
	GetByID(ctx context.Context, id int64) (*model.TripPoint, error)
	Create(ctx context.Context, point *model.TripPoint) error
	Update(ctx context.Context, point *model.TripPoint) error
	ListByIDs(ctx context.Context, ids []int64) ([]model.TripPoint, error)
}

type TrackPointStore interface {
	GetByVehicleAndTime(ctx context.Context, vehicleID int64, timestamp time.Time) (*model.TrackPoint, error)
	Create(ctx context.Context, point *model.TrackPoint) error
	ListByVehicleIDsInRange(ctx context.Context, vehicleIDs []int64, from, to *time.Time) ([]model.TrackPoint, error)
	ListByVehicleInRange(ctx context.Context, vehicleID int64, fromUtc, toUtc time.Time) ([]model.TrackPoint, error)
}

type Stores struct {
	Enterprises EnterpriseStore
	BrandModels BrandModelStore
	Users       UserStore
	Drivers     DriverStore
	Vehicles    VehicleStore
	Trips       TripStore
	TripPoints  TripPointStore
	TrackPoints TrackPointStore
}

// TxManager исполняет функцию в одной транзакции хранилища:
// возврат ошибки откатывает все изменения целиком
type TxManager interface {
	InTransaction(ctx context.Context, fn func(Stores) error) error
}
