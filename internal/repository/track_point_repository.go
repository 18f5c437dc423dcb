package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"autopark-service/internal/model"
)

type TrackPointRepository struct {
	db *gorm.DB
}

func NewTrackPointRepository(db *gorm.DB) *TrackPointRepository {
	return &TrackPointRepository{db: db}
}

func (r *TrackPointRepository) GetByVehicleAndTime(ctx context.Context, vehicleID int64, timestamp time.Time) (*model.TrackPoint, error) {
	var point model.TrackPoint
	err := r.db.WithContext(ctx).
		Where("vehicle_id = ? AND timestamp_utc = ?", vehicleID, timestamp).
		First(&point).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &point, nil
}

func (r *TrackPointRepository) Create(ctx context.Context, point *model.TrackPoint) error {
	return r.db.WithContext(ctx).Create(point).Error
}

func (r *TrackPointRepository) ListByVehicleIDsInRange(ctx context.Context, vehicleIDs []int64, from, to *time.Time) ([]model.TrackPoint, error) {
	if len(vehicleIDs) == 0 {
		return []model.TrackPoint{}, nil
	}
	query := r.db.WithContext(ctx).Where("vehicle_id IN ?", vehicleIDs)
	if from != nil {
		query = query.Where("timestamp_utc >= ?", *from)
	}
	if to != nil {
		query = query.Where("timestamp_utc <= ?", *to)
	}
	var points []model.TrackPoint
	err := query.Order("vehicle_id ASC, timestamp_utc ASC").Find(&points).Error
	return points, err
}

func (r *TrackPointRepository) ListByVehicleInRange(ctx context.Context, vehicleID int64, fromUtc, toUtc time.Time) ([]model.TrackPoint, error) {
	var points []model.TrackPoint
	err := r.db.WithContext(ctx).
		Where("vehicle_id = ?", vehicleID).
		Where("timestamp_utc >= ? AND timestamp_utc <= ?", fromUtc, toUtc).
		Order("timestamp_utc ASC").
		Find(&points).Error
	return points, err
}
