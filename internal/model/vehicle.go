package model

import "time"

type Vehicle struct {
	ID                 int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name               string     `gorm:"type:varchar(120);not null" json:"name"`
	Price              float64    `gorm:"type:numeric(18,2);not null" json:"price"`
	Mileage            int64      `gorm:"not null" json:"mileage"`
	Color              string     `gorm:"type:varchar(32)" json:"color"`
	RegistrationNumber string     `gorm:"type:varchar(16);not null;index" json:"registration_number"`
	BrandModelID       int64      `gorm:"not null;index" json:"brand_model_id"`
	EnterpriseID       int64      `gorm:"not null;index" json:"enterprise_id"`
	ActiveDriverID     *int64     `gorm:"index" json:"active_driver_id"`
	PurchaseDate       *time.Time `gorm:"type:timestamptz" json:"purchase_date"`
	CreatedAt          time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Vehicle) TableName() string {
	return "vehicles"
}
