package model

import "time"

type TripPoint struct {
	ID        int64   `gorm:"primaryKey;autoIncrement" json:"id"`
	Latitude  float64 `gorm:"not null" json:"latitude"`
	Longitude float64 `gorm:"not null" json:"longitude"`
	// Address заполняется лениво геокодером, AddressResolvedAt выставляется один раз
	Address           *string    `gorm:"type:text" json:"address"`
	AddressResolvedAt *time.Time `gorm:"type:timestamptz" json:"address_resolved_at"`
	CreatedAt         time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

func (TripPoint) TableName() string {
	return "trip_points"
}

func (p *TripPoint) HasAddress() bool {
	return p.Address != nil && *p.Address != ""
}
