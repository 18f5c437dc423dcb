package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"autopark-service/internal/model"
)

type EnterpriseRepository struct {
	db *gorm.DB
}

func NewEnterpriseRepository(db *gorm.DB) *EnterpriseRepository {
	return &EnterpriseRepository{db: db}
}

func (r *EnterpriseRepository) GetByID(ctx context.Context, id int64) (*model.Enterprise, error) {
	var enterprise model.Enterprise
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&enterprise).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &enterprise, nil
}

func (r *EnterpriseRepository) Create(ctx context.Context, enterprise *model.Enterprise) error {
	return r.db.WithContext(ctx).Create(enterprise).Error
}

func (r *EnterpriseRepository) Update(ctx context.Context, enterprise *model.Enterprise) error {
	return r.db.WithContext(ctx).Save(enterprise).Error
}
