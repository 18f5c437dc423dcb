package model

import "time"

type Enterprise struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Name       string    `gorm:"type:varchar(120);not null" json:"name"`
	Address    string    `gorm:"type:text" json:"address"`
	TimeZoneID *string   `gorm:"type:varchar(64)" json:"time_zone_id"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Enterprise) TableName() string {
	return "enterprises"
}
