package model

import "time"

type User struct {
	ID           int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	FirstName    string    `gorm:"type:varchar(64);not null" json:"first_name"`
	LastName     string    `gorm:"type:varchar(64);not null" json:"last_name"`
	Email        *string   `gorm:"type:varchar(128);uniqueIndex" json:"email,omitempty"`
	PasswordHash string    `gorm:"type:varchar(128);not null" json:"-"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}
