package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"autopark-service/internal/model"
)

type BrandModelRepository struct {
	db *gorm.DB
}

func NewBrandModelRepository(db *gorm.DB) *BrandModelRepository {
	return &BrandModelRepository{db: db}
}

func (r *BrandModelRepository) GetByID(ctx context.Context, id int64) (*model.BrandModel, error) {
	var brandModel model.BrandModel
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&brandModel).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &brandModel, nil
}

func (r *BrandModelRepository) List(ctx context.Context) ([]model.BrandModel, error) {
	var brandModels []model.BrandModel
	err := r.db.WithContext(ctx).Order("id ASC").Find(&brandModels).Error
	return brandModels, err
}
