package model

type BrandModel struct {
	ID                   int64   `gorm:"primaryKey;autoIncrement" json:"id"`
	Brand                string  `gorm:"type:varchar(64);not null" json:"brand"`
	ModelName            string  `gorm:"type:varchar(64);not null" json:"model_name"`
	TransportType        string  `gorm:"type:varchar(32)" json:"transport_type"`
	FuelTankVolumeLiters float64 `json:"fuel_tank_volume_liters"`
	LoadCapacityKg       float64 `json:"load_capacity_kg"`
	SeatsNumber          int     `json:"seats_number"`
}

func (BrandModel) TableName() string {
	return "brand_models"
}
