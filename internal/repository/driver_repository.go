package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"autopark-service/internal/model"
)

type DriverRepository struct {
	db *gorm.DB
}

func NewDriverRepository(db *gorm.DB) *DriverRepository {
	return &DriverRepository{db: db}
}

func (r *DriverRepository) GetByID(ctx context.Context, id int64) (*model.Driver, error) {
	var driver model.Driver
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&driver).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &driver, nil
}

func (r *DriverRepository) Create(ctx context.Context, driver *model.Driver) error {
	return r.db.WithContext(ctx).Create(driver).Error
}

func (r *DriverRepository) Update(ctx context.Context, driver *model.Driver) error {
	return r.db.WithContext(ctx).Save(driver).Error
}

func (r *DriverRepository) ListByEnterpriseID(ctx context.Context, enterpriseID int64) ([]model.Driver, error) {
	var drivers []model.Driver
	err := r.db.WithContext(ctx).
		Where("enterprise_id = ?", enterpriseID).
		Order("id ASC").
		Find(&drivers).Error
	return drivers, err
}
