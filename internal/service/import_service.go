package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"autopark-service/internal/exchange"
	"autopark-service/internal/geo"
	"autopark-service/internal/metrics"
	"autopark-service/internal/model"
	"autopark-service/internal/utils"
)

// Geocoder best-effort обогащение адресов: никогда не возвращает ошибку,
// неудачный вызов дает nil для координаты
type Geocoder interface {
	Enabled(apiKey string) bool
	ResolveAddressesBatch(ctx context.Context, points []geo.Point, apiKey string) map[string]*string
}

type ImportService struct {
	tx       TxManager
	geocoder Geocoder
	log      zerolog.Logger
}

func NewImportService(tx TxManager, geocoder Geocoder, log zerolog.Logger) *ImportService {
	return &ImportService{tx: tx, geocoder: geocoder, log: log}
}

type ImportInput struct {
	Content         string
	Format          string
	UpdateExisting  bool
	GeocodingAPIKey *string
}

type ImportReport struct {
	SessionID           string           `json:"sessionId"`
	EnterprisesImported int              `json:"enterprisesImported"`
	VehiclesImported    int              `json:"vehiclesImported"`
	DriversImported     int              `json:"driversImported"`
	TripsImported       int              `json:"tripsImported"`
	TrackPointsImported int              `json:"trackPointsImported"`
	Warnings            []exchange.Issue `json:"warnings"`
	Errors              []exchange.Issue `json:"errors"`
}

func (r *ImportReport) warn(entity, record, message string) {
	r.Warnings = append(r.Warnings, exchange.Issue{Entity: entity, Record: record, Message: message})
	metrics.ImportRecordsTotal.WithLabelValues(entity, "skipped").Inc()
}

func (r *ImportReport) fail(entity, record, message string) {
	r.Errors = append(r.Errors, exchange.Issue{Entity: entity, Record: record, Message: message})
	metrics.ImportRecordsTotal.WithLabelValues(entity, "error").Inc()
}

// Import выполняет сверку внешнего набора данных с хранилищем.
// Ошибки валидации и ссылок локальны для записи и копятся в отчете;
// любой сбой хранилища фатален и откатывает транзакцию целиком.
func (s *ImportService) Import(ctx context.Context, input ImportInput) (*ImportReport, error) {
	format, err := exchange.ParseFormat(input.Format)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidInput, err)
	}

	graph, decodeWarnings, err := exchange.Decode(format, []byte(input.Content))
	if err != nil {
		metrics.ImportsTotal.WithLabelValues(string(format), "parse_error").Inc()
		return nil, fmt.Errorf("%w: %s", ErrInvalidInput, err)
	}

	report := &ImportReport{
		SessionID: uuid.NewString(),
		Warnings:  []exchange.Issue{},
		Errors:    []exchange.Issue{},
	}
	report.Warnings = append(report.Warnings, decodeWarnings...)

	apiKey := ""
	if input.GeocodingAPIKey != nil {
		apiKey = *input.GeocodingAPIKey
	}

	log := s.log.With().Str("session_id", report.SessionID).Str("format", string(format)).Logger()
	log.Info().Bool("update_existing", input.UpdateExisting).Msg("import started")

	err = s.tx.InTransaction(ctx, func(st Stores) error {
		return s.run(ctx, st, graph, input.UpdateExisting, apiKey, report)
	})
	if err != nil {
		metrics.ImportsTotal.WithLabelValues(string(format), "failed").Inc()
		log.Error().Err(err).Msg("import rolled back")
		return nil, err
	}

	metrics.ImportsTotal.WithLabelValues(string(format), "ok").Inc()
	log.Info().
		Int("enterprises", report.EnterprisesImported).
		Int("vehicles", report.VehiclesImported).
		Int("drivers", report.DriversImported).
		Int("trips", report.TripsImported).
		Int("track_points", report.TrackPointsImported).
		Int("warnings", len(report.Warnings)).
		Int("errors", len(report.Errors)).
		Msg("import finished")
	return report, nil
}

type importState struct {
	st          Stores
	report      *ImportReport
	enterprises map[int64]int64
	vehicles    map[int64]int64
	drivers     map[int64]int64
}

type driverLink struct {
	vehicleID   int64
	driverExtID int64
	record      string
}

// Сущности обрабатываются строго в порядке зависимостей, внешние
// идентификаторы переотображаются на идентификаторы хранилища
func (s *ImportService) run(ctx context.Context, st Stores, graph *exchange.Graph, updateExisting bool, apiKey string, report *ImportReport) error {
	state := &importState{
		st:          st,
		report:      report,
		enterprises: make(map[int64]int64),
		vehicles:    make(map[int64]int64),
		drivers:     make(map[int64]int64),
	}

	if err := s.importEnterprise(ctx, state, graph.Enterprise, updateExisting); err != nil {
		return err
	}

	links, err := s.importVehicles(ctx, state, graph.Vehicles, updateExisting)
	if err != nil {
		return err
	}

	if err := s.importDrivers(ctx, state, graph.Drivers, updateExisting); err != nil {
		return err
	}

	if err := s.reconcileDriverLinks(ctx, state, links); err != nil {
		return err
	}

	if err := s.importTrips(ctx, state, graph.Trips, updateExisting, apiKey); err != nil {
		return err
	}

	return s.importTrackPoints(ctx, state, graph.TrackPoints)
}

func (s *ImportService) importEnterprise(ctx context.Context, state *importState, rec exchange.EnterpriseRecord, updateExisting bool) error {
	record := strconv.FormatInt(rec.ID, 10)

	var existing *model.Enterprise
	if rec.ID > 0 {
		found, err := state.st.Enterprises.GetByID(ctx, rec.ID)
		if err != nil {
			return err
		}
		existing = found
	}

	if existing != nil && !updateExisting {
		state.report.warn("enterprise", record, "already exists, skipped")
		state.enterprises[rec.ID] = existing.ID
		return nil
	}

	if err := rec.Validate(); err != nil {
		state.report.fail("enterprise", record, err.Error())
		if existing != nil {
			state.enterprises[rec.ID] = existing.ID
		}
		return nil
	}

	if existing == nil {
		enterprise := &model.Enterprise{
			Name:       rec.Name,
			Address:    rec.Address,
			TimeZoneID: rec.TimeZoneID,
		}
		if err := state.st.Enterprises.Create(ctx, enterprise); err != nil {
			return err
		}
		state.enterprises[rec.ID] = enterprise.ID
		metrics.ImportRecordsTotal.WithLabelValues("enterprise", "created").Inc()
	} else {
		existing.Name = rec.Name
		existing.Address = rec.Address
		existing.TimeZoneID = rec.TimeZoneID
		if err := state.st.Enterprises.Update(ctx, existing); err != nil {
			return err
		}
		state.enterprises[rec.ID] = existing.ID
		metrics.ImportRecordsTotal.WithLabelValues("enterprise", "updated").Inc()
	}

	state.report.EnterprisesImported++
	return nil
}

func (s *ImportService) importVehicles(ctx context.Context, state *importState, records []exchange.VehicleRecord, updateExisting bool) ([]driverLink, error) {
	var links []driverLink

	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		record := strconv.FormatInt(rec.ID, 10)

		var existing *model.Vehicle
		if rec.ID > 0 {
			found, err := state.st.Vehicles.GetByID(ctx, rec.ID)
			if err != nil {
				return nil, err
			}
			existing = found
		}

		if existing != nil && !updateExisting {
			state.report.warn("vehicle", record, "already exists, skipped")
			state.vehicles[rec.ID] = existing.ID
			continue
		}

		if err := rec.Validate(); err != nil {
			state.report.fail("vehicle", record, err.Error())
			continue
		}

		enterpriseID, ok, err := state.resolveEnterprise(ctx, rec.EnterpriseID)
		if err != nil {
			return nil, err
		}
		if !ok {
			state.report.fail("vehicle", record, fmt.Sprintf("references unknown enterprise %d", rec.EnterpriseID))
			continue
		}

		brandModel, err := state.st.BrandModels.GetByID(ctx, rec.BrandModelID)
		if err != nil {
			return nil, err
		}
		if brandModel == nil {
			state.report.fail("vehicle", record, fmt.Sprintf("references unknown brand model %d", rec.BrandModelID))
			continue
		}

		var storeID int64
		if existing == nil {
			vehicle := &model.Vehicle{
				Name:               rec.Name,
				Price:              rec.Price,
				Mileage:            rec.Mileage,
				Color:              rec.Color,
				RegistrationNumber: utils.NormalizeRegistration(rec.RegistrationNumber),
				BrandModelID:       rec.BrandModelID,
				EnterpriseID:       enterpriseID,
				PurchaseDate:       rec.PurchaseDate,
			}
			if err := state.st.Vehicles.Create(ctx, vehicle); err != nil {
				return nil, err
			}
			storeID = vehicle.ID
			metrics.ImportRecordsTotal.WithLabelValues("vehicle", "created").Inc()
		} else {
			existing.Name = rec.Name
			existing.Price = rec.Price
			existing.Mileage = rec.Mileage
			existing.Color = rec.Color
			existing.RegistrationNumber = utils.NormalizeRegistration(rec.RegistrationNumber)
			existing.BrandModelID = rec.BrandModelID
			existing.EnterpriseID = enterpriseID
			existing.PurchaseDate = rec.PurchaseDate
			if err := state.st.Vehicles.Update(ctx, existing); err != nil {
				return nil, err
			}
			storeID = existing.ID
			metrics.ImportRecordsTotal.WithLabelValues("vehicle", "updated").Inc()
		}

		state.vehicles[rec.ID] = storeID
		state.report.VehiclesImported++

		// Связка с активным водителем откладывается: водители идут позже
		if rec.ActiveDriverID != nil {
			links = append(links, driverLink{vehicleID: storeID, driverExtID: *rec.ActiveDriverID, record: record})
		}
	}

	return links, nil
}

func (s *ImportService) importDrivers(ctx context.Context, state *importState, records []exchange.DriverRecord, updateExisting bool) error {
	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return err
		}
		record := strconv.FormatInt(rec.ID, 10)

		var existing *model.Driver
		if rec.ID > 0 {
			found, err := state.st.Drivers.GetByID(ctx, rec.ID)
			if err != nil {
				return err
			}
			existing = found
		}

		if existing != nil && !updateExisting {
			state.report.warn("driver", record, "already exists, skipped")
			state.drivers[rec.ID] = existing.ID
			continue
		}

		if err := rec.Validate(); err != nil {
			state.report.fail("driver", record, err.Error())
			continue
		}

		enterpriseID, ok, err := state.resolveEnterprise(ctx, rec.EnterpriseID)
		if err != nil {
			return err
		}
		if !ok {
			state.report.fail("driver", record, fmt.Sprintf("references unknown enterprise %d", rec.EnterpriseID))
			continue
		}

		var vehicleID *int64
		if rec.VehicleID != nil {
			resolved, ok, err := state.resolveVehicle(ctx, *rec.VehicleID)
			if err != nil {
				return err
			}
			if !ok {
				state.report.fail("driver", record, fmt.Sprintf("references unknown vehicle %d", *rec.VehicleID))
				continue
			}
			vehicleID = &resolved
		}

		if existing == nil {
			user, err := s.createBackingUser(ctx, state.st, rec)
			if err != nil {
				return err
			}
			driver := &model.Driver{
				UserID:       user.ID,
				Salary:       rec.Salary,
				EnterpriseID: enterpriseID,
				VehicleID:    vehicleID,
			}
			if err := state.st.Drivers.Create(ctx, driver); err != nil {
				return err
			}
			state.drivers[rec.ID] = driver.ID
			metrics.ImportRecordsTotal.WithLabelValues("driver", "created").Inc()
		} else {
			existing.Salary = rec.Salary
			existing.EnterpriseID = enterpriseID
			if vehicleID != nil {
				existing.VehicleID = vehicleID
			}
			if err := state.st.Drivers.Update(ctx, existing); err != nil {
				return err
			}
			user, err := state.st.Users.GetByID(ctx, existing.UserID)
			if err != nil {
				return err
			}
			if user != nil {
				user.FirstName = rec.FirstName
				user.LastName = rec.LastName
				if err := state.st.Users.Update(ctx, user); err != nil {
					return err
				}
			}
			state.drivers[rec.ID] = existing.ID
			metrics.ImportRecordsTotal.WithLabelValues("driver", "updated").Inc()
		}

		state.report.DriversImported++
	}

	return nil
}

// createBackingUser заводит учетную запись для водителя со случайным
// стартовым паролем, смена пароля остается за пользователем
func (s *ImportService) createBackingUser(ctx context.Context, st Stores, rec exchange.DriverRecord) (*model.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(uuid.NewString()), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user := &model.User{
		FirstName:    rec.FirstName,
		LastName:     rec.LastName,
		PasswordHash: string(hash),
	}
	if err := st.Users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *ImportService) reconcileDriverLinks(ctx context.Context, state *importState, links []driverLink) error {
	for _, link := range links {
		driverID, ok, err := state.resolveDriver(ctx, link.driverExtID)
		if err != nil {
			return err
		}
		if !ok {
			state.report.fail("vehicle", link.record, fmt.Sprintf("active driver references unknown driver %d", link.driverExtID))
			continue
		}

		vehicle, err := state.st.Vehicles.GetByID(ctx, link.vehicleID)
		if err != nil {
			return err
		}
		driver, err := state.st.Drivers.GetByID(ctx, driverID)
		if err != nil {
			return err
		}
		if vehicle == nil || driver == nil {
			state.report.fail("vehicle", link.record, "active driver link lost during import")
			continue
		}

		if driver.EnterpriseID != vehicle.EnterpriseID {
			state.report.fail("vehicle", link.record, fmt.Sprintf("active driver %d belongs to another enterprise", link.driverExtID))
			continue
		}

		vehicle.ActiveDriverID = &driver.ID
		if err := state.st.Vehicles.Update(ctx, vehicle); err != nil {
			return err
		}
		driver.VehicleID = &vehicle.ID
		if err := state.st.Drivers.Update(ctx, driver); err != nil {
			return err
		}
	}
	return nil
}

type pendingTrip struct {
	rec       exchange.TripRecord
	vehicleID int64
	existing  *model.Trip
	record    string
}

func (s *ImportService) importTrips(ctx context.Context, state *importState, records []exchange.TripRecord, updateExisting bool, apiKey string) error {
	var pending []pendingTrip
	var coords []geo.Point
	seenCoords := make(map[string]struct{})

	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return err
		}
		record := strconv.FormatInt(rec.ID, 10)

		var existing *model.Trip
		if rec.ID > 0 {
			found, err := state.st.Trips.GetByID(ctx, rec.ID)
			if err != nil {
				return err
			}
			existing = found
		}

		if existing != nil && !updateExisting {
			state.report.warn("trip", record, "already exists, skipped")
			continue
		}

		if err := rec.Validate(); err != nil {
			state.report.fail("trip", record, err.Error())
			continue
		}

		vehicleID, ok, err := state.resolveVehicle(ctx, rec.VehicleID)
		if err != nil {
			return err
		}
		if !ok {
			state.report.fail("trip", record, fmt.Sprintf("references unknown vehicle %d", rec.VehicleID))
			continue
		}

		pending = append(pending, pendingTrip{rec: rec, vehicleID: vehicleID, existing: existing, record: record})

		for _, point := range []*exchange.PointRecord{rec.StartPoint, rec.EndPoint} {
			if point == nil || (point.Address != nil && *point.Address != "") {
				continue
			}
			p := geo.Point{Latitude: point.Latitude, Longitude: point.Longitude}
			if _, seen := seenCoords[p.Key()]; seen {
				continue
			}
			seenCoords[p.Key()] = struct{}{}
			coords = append(coords, p)
		}
	}

	// Батч геокодирования завершается до фиксации транзакции;
	// неудача внешнего сервиса оставляет адрес пустым
	addresses := map[string]*string{}
	if s.geocoder != nil && s.geocoder.Enabled(apiKey) && len(coords) > 0 {
		addresses = s.geocoder.ResolveAddressesBatch(ctx, coords, apiKey)
	}

	for _, item := range pending {
		if err := ctx.Err(); err != nil {
			return err
		}

		startPointID, err := s.upsertTripPoint(ctx, state.st, item.rec.StartPoint, existingPointID(item.existing, true), addresses)
		if err != nil {
			return err
		}
		endPointID, err := s.upsertTripPoint(ctx, state.st, item.rec.EndPoint, existingPointID(item.existing, false), addresses)
		if err != nil {
			return err
		}

		if item.existing == nil {
			trip := &model.Trip{
				VehicleID:    item.vehicleID,
				StartUtc:     item.rec.StartUtc.UTC(),
				EndUtc:       item.rec.EndUtc.UTC(),
				DistanceKm:   item.rec.DistanceKm,
				StartPointID: startPointID,
				EndPointID:   endPointID,
			}
			if err := state.st.Trips.Create(ctx, trip); err != nil {
				return err
			}
			metrics.ImportRecordsTotal.WithLabelValues("trip", "created").Inc()
		} else {
			item.existing.VehicleID = item.vehicleID
			item.existing.StartUtc = item.rec.StartUtc.UTC()
			item.existing.EndUtc = item.rec.EndUtc.UTC()
			item.existing.DistanceKm = item.rec.DistanceKm
			item.existing.StartPointID = startPointID
			item.existing.EndPointID = endPointID
			if err := state.st.Trips.Update(ctx, item.existing); err != nil {
				return err
			}
			metrics.ImportRecordsTotal.WithLabelValues("trip", "updated").Inc()
		}

		state.report.TripsImported++
	}

	return nil
}

func existingPointID(trip *model.Trip, start bool) *int64 {
	if trip == nil {
		return nil
	}
	if start {
		return trip.StartPointID
	}
	return trip.EndPointID
}

func (s *ImportService) upsertTripPoint(ctx context.Context, st Stores, rec *exchange.PointRecord, currentID *int64, addresses map[string]*string) (*int64, error) {
	if rec == nil {
		return currentID, nil
	}

	address := rec.Address
	if address == nil || *address == "" {
		key := geo.Point{Latitude: rec.Latitude, Longitude: rec.Longitude}.Key()
		address = addresses[key]
	}

	if currentID != nil {
		point, err := st.TripPoints.GetByID(ctx, *currentID)
		if err != nil {
			return nil, err
		}
		if point != nil {
			point.Latitude = rec.Latitude
			point.Longitude = rec.Longitude
			// AddressResolvedAt выставляется ровно один раз
			if !point.HasAddress() && address != nil && *address != "" {
				now := time.Now().UTC()
				point.Address = address
				point.AddressResolvedAt = &now
			}
			if err := st.TripPoints.Update(ctx, point); err != nil {
				return nil, err
			}
			return &point.ID, nil
		}
	}

	point := &model.TripPoint{
		Latitude:  rec.Latitude,
		Longitude: rec.Longitude,
	}
	if address != nil && *address != "" {
		now := time.Now().UTC()
		point.Address = address
		point.AddressResolvedAt = &now
	}
	if err := st.TripPoints.Create(ctx, point); err != nil {
		return nil, err
	}
	return &point.ID, nil
}

func (s *ImportService) importTrackPoints(ctx context.Context, state *importState, records []exchange.TrackPointRecord) error {
	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return err
		}
		record := fmt.Sprintf("%d@%s", rec.VehicleID, rec.TimestampUtc.UTC().Format(time.RFC3339))

		if err := rec.Validate(); err != nil {
			state.report.fail("track_point", record, err.Error())
			continue
		}

		vehicleID, ok, err := state.resolveVehicle(ctx, rec.VehicleID)
		if err != nil {
			return err
		}
		if !ok {
			state.report.fail("track_point", record, fmt.Sprintf("references unknown vehicle %d", rec.VehicleID))
			continue
		}

		existing, err := state.st.TrackPoints.GetByVehicleAndTime(ctx, vehicleID, rec.TimestampUtc.UTC())
		if err != nil {
			return err
		}
		// Точки трека никогда не перезаписываются: естественный ключ
		// (vehicle_id, timestamp_utc) идентифицирует замер
		if existing != nil {
			state.report.warn("track_point", record, "already exists, skipped")
			continue
		}

		point := &model.TrackPoint{
			VehicleID:    vehicleID,
			TimestampUtc: rec.TimestampUtc.UTC(),
			Latitude:     rec.Latitude,
			Longitude:    rec.Longitude,
			Speed:        rec.Speed,
			Rpm:          rec.Rpm,
			FuelLevel:    rec.FuelLevel,
		}
		if err := state.st.TrackPoints.Create(ctx, point); err != nil {
			return err
		}
		metrics.ImportRecordsTotal.WithLabelValues("track_point", "created").Inc()
		state.report.TrackPointsImported++
	}

	return nil
}

func (st *importState) resolveEnterprise(ctx context.Context, externalID int64) (int64, bool, error) {
	if id, ok := st.enterprises[externalID]; ok {
		return id, true, nil
	}
	if externalID <= 0 {
		return 0, false, nil
	}
	enterprise, err := st.st.Enterprises.GetByID(ctx, externalID)
	if err != nil {
		return 0, false, err
	}
	if enterprise == nil {
		return 0, false, nil
	}
	st.enterprises[externalID] = enterprise.ID
	return enterprise.ID, true, nil
}

func (st *importState) resolveVehicle(ctx context.Context, externalID int64) (int64, bool, error) {
	if id, ok := st.vehicles[externalID]; ok {
		return id, true, nil
	}
	if externalID <= 0 {
		return 0, false, nil
	}
	vehicle, err := st.st.Vehicles.GetByID(ctx, externalID)
	if err != nil {
		return 0, false, err
	}
	if vehicle == nil {
		return 0, false, nil
	}
	st.vehicles[externalID] = vehicle.ID
	return vehicle.ID, true, nil
}

func (st *importState) resolveDriver(ctx context.Context, externalID int64) (int64, bool, error) {
	if id, ok := st.drivers[externalID]; ok {
		return id, true, nil
	}
	if externalID <= 0 {
		return 0, false, nil
	}
	driver, err := st.st.Drivers.GetByID(ctx, externalID)
	if err != nil {
		return 0, false, err
	}
	if driver == nil {
		return 0, false, nil
	}
	st.drivers[externalID] = driver.ID
	return driver.ID, true, nil
}
