package repository

import (
	"context"

	"gorm.io/gorm"

	"autopark-service/internal/service"
)

func NewStores(db *gorm.DB) service.Stores {
	return service.Stores{
		Enterprises: NewEnterpriseRepository(db),
		BrandModels: NewBrandModelRepository(db),
		Users:       NewUserRepository(db),
		Drivers:     NewDriverRepository(db),
		Vehicles:    NewVehicleRepository(db),
		Trips:       NewTripRepository(db),
		TripPoints:  NewTripPointRepository(db),
		TrackPoints: NewTrackPointRepository(db),
	}
}

type TxManager struct {
	db *gorm.DB
}

func NewTxManager(db *gorm.DB) *TxManager {
	return &TxManager{db: db}
}

func (m *TxManager) InTransaction(ctx context.Context, fn func(service.Stores) error) error {
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStores(tx))
	})
}
