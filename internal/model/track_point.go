package model

import "time"

type TrackPoint struct {
	ID           int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	VehicleID    int64     `gorm:"not null;uniqueIndex:uq_track_vehicle_time,priority:1" json:"vehicle_id"`
	TimestampUtc time.Time `gorm:"type:timestamptz;not null;uniqueIndex:uq_track_vehicle_time,priority:2" json:"timestamp_utc"`
	Latitude     float64   `gorm:"not null" json:"latitude"`
	Longitude    float64   `gorm:"not null" json:"longitude"`
	Speed        float64   `json:"speed"`
	Rpm          int       `json:"rpm"`
	FuelLevel    float64   `json:"fuel_level"`
}

func (TrackPoint) TableName() string {
	return "track_points"
}
