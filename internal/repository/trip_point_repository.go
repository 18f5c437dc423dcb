package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"autopark-service/internal/model"
)

type TripPointRepository struct {
	db *gorm.DB
}

func NewTripPointRepository(db *gorm.DB) *TripPointRepository {
	return &TripPointRepository{db: db}
}

func (r *TripPointRepository) GetByID(ctx context.Context, id int64) (*model.TripPoint, error) {
	var point model.TripPoint
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&point).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &point, nil
}

func (r *TripPointRepository) Create(ctx context.Context, point *model.TripPoint) error {
	return r.db.WithContext(ctx).Create(point).Error
}

func (r *TripPointRepository) Update(ctx context.Context, point *model.TripPoint) error {
	return r.db.WithContext(ctx).Save(point).Error
}

func (r *TripPointRepository) ListByIDs(ctx context.Context, ids []int64) ([]model.TripPoint, error) {
	if len(ids) == 0 {
		return []model.TripPoint{}, nil
	}
	var points []model.TripPoint
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&points).Error
	return points, err
}
