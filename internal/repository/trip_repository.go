package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"autopark-service/internal/model"
)

type TripRepository struct {
	db *gorm.DB
}

func NewTripRepository(db *gorm.DB) *TripRepository {
	return &TripRepository{db: db}
}

func (r *TripRepository) GetByID(ctx context.Context, id int64) (*model.Trip, error) {
	var trip model.Trip
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&trip).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &trip, nil
}

func (r *TripRepository) Create(ctx context.Context, trip *model.Trip) error {
	return r.db.WithContext(ctx).Create(trip).Error
}

func (r *TripRepository) Update(ctx context.Context, trip *model.Trip) error {
	return r.db.WithContext(ctx).Save(trip).Error
}

func (r *TripRepository) ListOverlappingByVehicleIDs(ctx context.Context, vehicleIDs []int64, from, to *time.Time) ([]model.Trip, error) {
	if len(vehicleIDs) == 0 {
		return []model.Trip{}, nil
	}
	query := r.db.WithContext(ctx).Where("vehicle_id IN ?", vehicleIDs)
	if from != nil {
		query = query.Where("end_utc >= ?", *from)
	}
	if to != nil {
		query = query.Where("start_utc <= ?", *to)
	}
	var trips []model.Trip
	err := query.Order("start_utc ASC, id ASC").Find(&trips).Error
	return trips, err
}

func (r *TripRepository) ListContainedByVehicle(ctx context.Context, vehicleID int64, fromUtc, toUtc time.Time) ([]model.Trip, error) {
	var trips []model.Trip
	err := r.db.WithContext(ctx).
		Where("vehicle_id = ?", vehicleID).
		Where("start_utc >= ?", fromUtc).
		Where("end_utc <= ?", toUtc).
		Order("start_utc ASC, id ASC").
		Find(&trips).Error
	return trips, err
}
