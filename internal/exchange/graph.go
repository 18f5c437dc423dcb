package exchange

import (
	"time"
)

// Graph формат-независимое представление выгружаемых данных предприятия
type Graph struct {
	Enterprise  EnterpriseRecord   `json:"enterprise"`
	Vehicles    []VehicleRecord    `json:"vehicles"`
	Drivers     []DriverRecord     `json:"drivers"`
	Trips       []TripRecord       `json:"trips"`
	TrackPoints []TrackPointRecord `json:"trackPoints"`
	ExportedAt  time.Time          `json:"exportedAt"`
	DateRange   DateRange          `json:"dateRange"`
}

type DateRange struct {
	StartDate *time.Time `json:"startDate"`
	EndDate   *time.Time `json:"endDate"`
}

type EnterpriseRecord struct {
	ID         int64   `json:"id"`
	Name       string  `json:"name"`
	Address    string  `json:"address"`
	TimeZoneID *string `json:"timeZoneId"`
}

type VehicleRecord struct {
	ID                 int64      `json:"id"`
	Name               string     `json:"name"`
	Price              float64    `json:"price"`
	Mileage            int64      `json:"mileage"`
	Color              string     `json:"color"`
	RegistrationNumber string     `json:"registrationNumber"`
	BrandModelID       int64      `json:"brandModelId"`
	EnterpriseID       int64      `json:"enterpriseId"`
	ActiveDriverID     *int64     `json:"activeDriverId"`
	PurchaseDate       *time.Time `json:"purchaseDate"`
}

type DriverRecord struct {
	ID           int64   `json:"id"`
	FirstName    string  `json:"firstName"`
	LastName     string  `json:"lastName"`
	Salary       float64 `json:"salary"`
	EnterpriseID int64   `json:"enterpriseId"`
	VehicleID    *int64  `json:"vehicleId"`
}

type PointRecord struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Address   *string `json:"address"`
}

type TripRecord struct {
	ID         int64        `json:"id"`
	VehicleID  int64        `json:"vehicleId"`
	StartUtc   time.Time    `json:"startUtc"`
	EndUtc     time.Time    `json:"endUtc"`
	DistanceKm *float64     `json:"distanceKm"`
	StartPoint *PointRecord `json:"startPoint"`
	EndPoint   *PointRecord `json:"endPoint"`
}

type TrackPointRecord struct {
	VehicleID    int64     `json:"vehicleId"`
	TimestampUtc time.Time `json:"timestampUtc"`
	Latitude     float64   `json:"latitude"`
	Longitude    float64   `json:"longitude"`
	Speed        float64   `json:"speed"`
	Rpm          int       `json:"rpm"`
	FuelLevel    float64   `json:"fuelLevel"`
}

// Issue локальная проблема одной записи: предупреждение либо ошибка,
// накапливается в отчете и не прерывает обработку остальных записей
type Issue struct {
	Entity  string `json:"entity"`
	Record  string `json:"record"`
	Message string `json:"message"`
}
