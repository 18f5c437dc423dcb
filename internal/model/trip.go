package model

import "time"

type Trip struct {
	ID           int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	VehicleID    int64     `gorm:"not null;index" json:"vehicle_id"`
	StartUtc     time.Time `gorm:"type:timestamptz;not null;index" json:"start_utc"`
	EndUtc       time.Time `gorm:"type:timestamptz;not null" json:"end_utc"`
	DistanceKm   *float64  `json:"distance_km"`
	StartPointID *int64    `json:"start_point_id"`
	EndPointID   *int64    `json:"end_point_id"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Trip) TableName() string {
	return "trips"
}

func (t *Trip) DurationMinutes() float64 {
	return t.EndUtc.Sub(t.StartUtc).Minutes()
}
