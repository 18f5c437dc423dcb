package model

import "time"

type Driver struct {
	ID           int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID       int64     `gorm:"not null;index" json:"user_id"`
	Salary       float64   `gorm:"type:numeric(18,2);not null" json:"salary"`
	EnterpriseID int64     `gorm:"not null;index" json:"enterprise_id"`
	// VehicleID держится симметричным с Vehicle.ActiveDriverID
	VehicleID *int64    `gorm:"index" json:"vehicle_id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Driver) TableName() string {
	return "drivers"
}
