package exchange

import (
	"fmt"
	"regexp"
	"strings"

	"autopark-service/internal/geo"
	"autopark-service/internal/utils"
)

var (
	namePattern         = regexp.MustCompile(`^[\p{L}\p{N} .,'()_-]+$`)
	registrationPattern = regexp.MustCompile(`^[A-ZА-Я0-9]{4,16}$`)
)

func (r EnterpriseRecord) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("name is required")
	}
	if !namePattern.MatchString(r.Name) {
		return fmt.Errorf("name contains forbidden characters")
	}
	return nil
}

func (r VehicleRecord) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("name is required")
	}
	if !namePattern.MatchString(r.Name) {
		return fmt.Errorf("name contains forbidden characters")
	}
	if r.Price < 0 {
		return fmt.Errorf("price must be non-negative")
	}
	if r.Mileage < 0 {
		return fmt.Errorf("mileage must be non-negative")
	}
	if r.BrandModelID <= 0 {
		return fmt.Errorf("brandModelId is required")
	}
	if r.EnterpriseID <= 0 {
		return fmt.Errorf("enterpriseId is required")
	}
	registration := utils.NormalizeRegistration(r.RegistrationNumber)
	if !registrationPattern.MatchString(registration) {
		return fmt.Errorf("registration number %q is malformed", r.RegistrationNumber)
	}
	return nil
}

func (r DriverRecord) Validate() error {
	if strings.TrimSpace(r.FirstName) == "" || strings.TrimSpace(r.LastName) == "" {
		return fmt.Errorf("first and last name are required")
	}
	if r.Salary < 0 {
		return fmt.Errorf("salary must be non-negative")
	}
	if r.EnterpriseID <= 0 {
		return fmt.Errorf("enterpriseId is required")
	}
	return nil
}

func (r TripRecord) Validate() error {
	if r.VehicleID <= 0 {
		return fmt.Errorf("vehicleId is required")
	}
	if r.StartUtc.IsZero() || r.EndUtc.IsZero() {
		return fmt.Errorf("startUtc and endUtc are required")
	}
	if r.EndUtc.Before(r.StartUtc) {
		return fmt.Errorf("endUtc precedes startUtc")
	}
	if r.DistanceKm != nil && *r.DistanceKm < 0 {
		return fmt.Errorf("distanceKm must be non-negative")
	}
	if r.StartPoint != nil {
		if err := r.StartPoint.Validate(); err != nil {
			return fmt.Errorf("start point: %w", err)
		}
	}
	if r.EndPoint != nil {
		if err := r.EndPoint.Validate(); err != nil {
			return fmt.Errorf("end point: %w", err)
		}
	}
	return nil
}

func (r PointRecord) Validate() error {
	return geo.Point{Latitude: r.Latitude, Longitude: r.Longitude}.Validate()
}

func (r TrackPointRecord) Validate() error {
	if r.VehicleID <= 0 {
		return fmt.Errorf("vehicleId is required")
	}
	if r.TimestampUtc.IsZero() {
		return fmt.Errorf("timestampUtc is required")
	}
	if err := (geo.Point{Latitude: r.Latitude, Longitude: r.Longitude}).Validate(); err != nil {
		return err
	}
	if r.Speed < 0 {
		return fmt.Errorf("speed must be non-negative")
	}
	if r.FuelLevel < 0 || r.FuelLevel > 100 {
		return fmt.Errorf("fuel level %v out of range [0, 100]", r.FuelLevel)
	}
	return nil
}
