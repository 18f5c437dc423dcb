package db

import (
	"fmt"

	"gorm.io/gorm"
)

var migrationStatements = []string{
	`CREATE TABLE IF NOT EXISTS enterprises (
		id BIGSERIAL PRIMARY KEY,
		name VARCHAR(120) NOT NULL,
		address TEXT NOT NULL,
		time_zone_id VARCHAR(64),
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);`,
	`CREATE TABLE IF NOT EXISTS brand_models (
		id BIGSERIAL PRIMARY KEY,
		brand VARCHAR(64) NOT NULL,
		model_name VARCHAR(64) NOT NULL,
		transport_type VARCHAR(32),
		fuel_tank_volume_liters DOUBLE PRECISION NOT NULL DEFAULT 0,
		load_capacity_kg DOUBLE PRECISION NOT NULL DEFAULT 0,
		seats_number INT NOT NULL DEFAULT 0
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_brand_model ON brand_models (brand, model_name);`,
	`CREATE TABLE IF NOT EXISTS users (
		id BIGSERIAL PRIMARY KEY,
		first_name VARCHAR(64) NOT NULL,
		last_name VARCHAR(64) NOT NULL,
		email VARCHAR(128),
		password_hash VARCHAR(128) NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_users_email ON users (email) WHERE email IS NOT NULL;`,
	`CREATE TABLE IF NOT EXISTS vehicles (
		id BIGSERIAL PRIMARY KEY,
		name VARCHAR(120) NOT NULL,
		price NUMERIC(18,2) NOT NULL DEFAULT 0,
		mileage BIGINT NOT NULL DEFAULT 0,
		color VARCHAR(32),
		registration_number VARCHAR(16) NOT NULL,
		brand_model_id BIGINT NOT NULL REFERENCES brand_models(id),
		enterprise_id BIGINT NOT NULL REFERENCES enterprises(id),
		active_driver_id BIGINT,
		purchase_date TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_vehicles_enterprise_id ON vehicles (enterprise_id);`,
	`CREATE TABLE IF NOT EXISTS drivers (
		id BIGSERIAL PRIMARY KEY,
		user_id BIGINT NOT NULL REFERENCES users(id),
		salary NUMERIC(18,2) NOT NULL DEFAULT 0,
		enterprise_id BIGINT NOT NULL REFERENCES enterprises(id),
		vehicle_id BIGINT REFERENCES vehicles(id),
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_drivers_enterprise_id ON drivers (enterprise_id);`,
	`DO $$
	BEGIN
		IF NOT EXISTS (
			SELECT 1 FROM information_schema.table_constraints
			WHERE table_name = 'vehicles' AND constraint_name = 'fk_vehicles_active_driver'
		) THEN
			ALTER TABLE vehicles ADD CONSTRAINT fk_vehicles_active_driver
				FOREIGN KEY (active_driver_id) REFERENCES drivers(id);
		END IF;
	END
	$$;`,
	`CREATE TABLE IF NOT EXISTS trip_points (
		id BIGSERIAL PRIMARY KEY,
		latitude DOUBLE PRECISION NOT NULL,
		longitude DOUBLE PRECISION NOT NULL,
		address TEXT,
		address_resolved_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);`,
	`CREATE TABLE IF NOT EXISTS trips (
		id BIGSERIAL PRIMARY KEY,
		vehicle_id BIGINT NOT NULL REFERENCES vehicles(id),
		start_utc TIMESTAMPTZ NOT NULL,
		end_utc TIMESTAMPTZ NOT NULL,
		distance_km DOUBLE PRECISION,
		start_point_id BIGINT REFERENCES trip_points(id),
		end_point_id BIGINT REFERENCES trip_points(id),
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_trips_vehicle_window ON trips (vehicle_id, start_utc, end_utc);`,
	`CREATE TABLE IF NOT EXISTS track_points (
		id BIGSERIAL PRIMARY KEY,
		vehicle_id BIGINT NOT NULL REFERENCES vehicles(id),
		timestamp_utc TIMESTAMPTZ NOT NULL,
		latitude DOUBLE PRECISION NOT NULL,
		longitude DOUBLE PRECISION NOT NULL,
		speed DOUBLE PRECISION NOT NULL DEFAULT 0,
		rpm INT NOT NULL DEFAULT 0,
		fuel_level DOUBLE PRECISION NOT NULL DEFAULT 0
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_track_vehicle_time ON track_points (vehicle_id, timestamp_utc);`,
	`INSERT INTO brand_models (brand, model_name, transport_type, fuel_tank_volume_liters, load_capacity_kg, seats_number) VALUES
		('Kamaz', '65115', 'TRUCK', 350, 15000, 3),
		('GAZ', 'Gazelle Next', 'VAN', 80, 1500, 3),
		('Toyota', 'Camry', 'SEDAN', 60, 500, 5),
		('Hyundai', 'HD78', 'TRUCK', 100, 4500, 3),
		('LADA', 'Largus', 'WAGON', 50, 700, 5)
	ON CONFLICT (brand, model_name) DO NOTHING;`,
}

func runMigrations(db *gorm.DB) error {
	for i, stmt := range migrationStatements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
