package exchange

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	sectionEnterprise  = "ENTERPRISE"
	sectionVehicles    = "VEHICLES"
	sectionDrivers     = "DRIVERS"
	sectionTrips       = "TRIPS"
	sectionTrackPoints = "TRACK_POINTS"
)

// Порядок колонок фиксирован и является контрактом формата
var sectionHeaders = map[string]string{
	sectionEnterprise:  "Id,Name,Address,TimeZoneId",
	sectionVehicles:    "Id,Name,Price,Mileage,Color,RegistrationNumber,BrandModelId,EnterpriseId,ActiveDriverId,PurchaseDate",
	sectionDrivers:     "Id,FirstName,LastName,Salary,EnterpriseId,VehicleId",
	sectionTrips:       "Id,VehicleId,StartUtc,EndUtc,DistanceKm,StartLatitude,StartLongitude,StartAddress,EndLatitude,EndLongitude,EndAddress",
	sectionTrackPoints: "VehicleId,TimestampUtc,Latitude,Longitude,Speed,Rpm,FuelLevel",
}

var sectionOrder = []string{
	sectionEnterprise,
	sectionVehicles,
	sectionDrivers,
	sectionTrips,
	sectionTrackPoints,
}

var sectionMarkerPattern = regexp.MustCompile(`^===\s*([A-Z_]+)\s*===$`)

func decodeCSV(content []byte) (*Graph, []Issue, error) {
	graph := &Graph{
		Vehicles:    []VehicleRecord{},
		Drivers:     []DriverRecord{},
		Trips:       []TripRecord{},
		TrackPoints: []TrackPointRecord{},
	}
	var issues []Issue

	section := ""
	headerChecked := false
	enterpriseSeen := false
	sectionsFound := 0

	lines := strings.Split(string(content), "\n")
	for i, rawLine := range lines {
		lineNo := i + 1
		line := strings.TrimSpace(strings.TrimRight(rawLine, "\r"))
		if line == "" {
			continue
		}

		if m := sectionMarkerPattern.FindStringSubmatch(line); m != nil {
			name := m[1]
			if _, known := sectionHeaders[name]; !known {
				issues = append(issues, lineIssue("csv", lineNo, fmt.Sprintf("unknown section %q", name)))
				section = ""
				continue
			}
			section = name
			headerChecked = false
			sectionsFound++
			continue
		}

		if section == "" {
			issues = append(issues, lineIssue("csv", lineNo, "line outside of any section, skipped"))
			continue
		}

		if !headerChecked {
			headerChecked = true
			if isHeaderLine(section, line) {
				continue
			}
		}

		fields, err := splitCSVLine(line)
		if err != nil {
			issues = append(issues, lineIssue(section, lineNo, err.Error()))
			continue
		}

		switch section {
		case sectionEnterprise:
			record, err := parseEnterpriseLine(fields)
			if err != nil {
				issues = append(issues, lineIssue(section, lineNo, err.Error()))
				continue
			}
			if enterpriseSeen {
				issues = append(issues, lineIssue(section, lineNo, "duplicate enterprise row, first one wins"))
				continue
			}
			graph.Enterprise = record
			enterpriseSeen = true
		case sectionVehicles:
			record, err := parseVehicleLine(fields)
			if err != nil {
				issues = append(issues, lineIssue(section, lineNo, err.Error()))
				continue
			}
			graph.Vehicles = append(graph.Vehicles, record)
		case sectionDrivers:
			record, err := parseDriverLine(fields)
			if err != nil {
				issues = append(issues, lineIssue(section, lineNo, err.Error()))
				continue
			}
			graph.Drivers = append(graph.Drivers, record)
		case sectionTrips:
			record, err := parseTripLine(fields)
			if err != nil {
				issues = append(issues, lineIssue(section, lineNo, err.Error()))
				continue
			}
			graph.Trips = append(graph.Trips, record)
		case sectionTrackPoints:
			record, err := parseTrackPointLine(fields)
			if err != nil {
				issues = append(issues, lineIssue(section, lineNo, err.Error()))
				continue
			}
			graph.TrackPoints = append(graph.TrackPoints, record)
		}
	}

	if sectionsFound == 0 {
		return nil, nil, fmt.Errorf("malformed csv: no section markers found")
	}

	return graph, issues, nil
}

func lineIssue(entity string, lineNo int, message string) Issue {
	return Issue{Entity: strings.ToLower(entity), Record: fmt.Sprintf("line %d", lineNo), Message: message}
}

func isHeaderLine(section, line string) bool {
	return normalizeHeader(line) == normalizeHeader(sectionHeaders[section])
}

func normalizeHeader(line string) string {
	parts := strings.Split(line, ",")
	for i, part := range parts {
		parts[i] = strings.ToLower(strings.TrimSpace(part))
	}
	return strings.Join(parts, ",")
}

// splitCSVLine разбивает строку по запятым с учетом кавычек:
// кавычка переключает состояние, запятая внутри кавычек не разделитель,
// удвоенная кавычка внутри кавычек экранирует саму себя
func splitCSVLine(line string) ([]string, error) {
	var fields []string
	var field strings.Builder
	inQuotes := false

	for i := 0; i < len(line); i++ {
		ch := line[i]
		switch {
		case ch == '"':
			if inQuotes && i+1 < len(line) && line[i+1] == '"' {
				field.WriteByte('"')
				i++
			} else {
				inQuotes = !inQuotes
			}
		case ch == ',' && !inQuotes:
			fields = append(fields, strings.TrimSpace(field.String()))
			field.Reset()
		default:
			field.WriteByte(ch)
		}
	}
	if inQuotes {
		return nil, fmt.Errorf("unbalanced quote")
	}
	fields = append(fields, strings.TrimSpace(field.String()))
	return fields, nil
}

func parseEnterpriseLine(fields []string) (EnterpriseRecord, error) {
	if len(fields) != 4 {
		return EnterpriseRecord{}, fmt.Errorf("expected 4 fields, got %d", len(fields))
	}
	id, err := parseCSVInt(fields[0], "Id")
	if err != nil {
		return EnterpriseRecord{}, err
	}
	return EnterpriseRecord{
		ID:         id,
		Name:       fields[1],
		Address:    fields[2],
		TimeZoneID: optionalString(fields[3]),
	}, nil
}

func parseVehicleLine(fields []string) (VehicleRecord, error) {
	if len(fields) != 10 {
		return VehicleRecord{}, fmt.Errorf("expected 10 fields, got %d", len(fields))
	}
	id, err := parseCSVInt(fields[0], "Id")
	if err != nil {
		return VehicleRecord{}, err
	}
	price, err := parseCSVFloat(fields[2], "Price")
	if err != nil {
		return VehicleRecord{}, err
	}
	mileage, err := parseCSVInt(fields[3], "Mileage")
	if err != nil {
		return VehicleRecord{}, err
	}
	brandModelID, err := parseCSVInt(fields[6], "BrandModelId")
	if err != nil {
		return VehicleRecord{}, err
	}
	enterpriseID, err := parseCSVInt(fields[7], "EnterpriseId")
	if err != nil {
		return VehicleRecord{}, err
	}
	activeDriverID, err := parseOptionalCSVInt(fields[8], "ActiveDriverId")
	if err != nil {
		return VehicleRecord{}, err
	}
	purchaseDate, err := parseOptionalCSVTime(fields[9], "PurchaseDate")
	if err != nil {
		return VehicleRecord{}, err
	}
	return VehicleRecord{
		ID:                 id,
		Name:               fields[1],
		Price:              price,
		Mileage:            mileage,
		Color:              fields[4],
		RegistrationNumber: fields[5],
		BrandModelID:       brandModelID,
		EnterpriseID:       enterpriseID,
		ActiveDriverID:     activeDriverID,
		PurchaseDate:       purchaseDate,
	}, nil
}

func parseDriverLine(fields []string) (DriverRecord, error) {
	if len(fields) != 6 {
		return DriverRecord{}, fmt.Errorf("expected 6 fields, got %d", len(fields))
	}
	id, err := parseCSVInt(fields[0], "Id")
	if err != nil {
		return DriverRecord{}, err
	}
	salary, err := parseCSVFloat(fields[3], "Salary")
	if err != nil {
		return DriverRecord{}, err
	}
	enterpriseID, err := parseCSVInt(fields[4], "EnterpriseId")
	if err != nil {
		return DriverRecord{}, err
	}
	vehicleID, err := parseOptionalCSVInt(fields[5], "VehicleId")
	if err != nil {
		return DriverRecord{}, err
	}
	return DriverRecord{
		ID:           id,
		FirstName:    fields[1],
		LastName:     fields[2],
		Salary:       salary,
		EnterpriseID: enterpriseID,
		VehicleID:    vehicleID,
	}, nil
}

func parseTripLine(fields []string) (TripRecord, error) {
	if len(fields) != 11 {
		return TripRecord{}, fmt.Errorf("expected 11 fields, got %d", len(fields))
	}
	id, err := parseCSVInt(fields[0], "Id")
	if err != nil {
		return TripRecord{}, err
	}
	vehicleID, err := parseCSVInt(fields[1], "VehicleId")
	if err != nil {
		return TripRecord{}, err
	}
	startUtc, err := parseCSVTime(fields[2], "StartUtc")
	if err != nil {
		return TripRecord{}, err
	}
	endUtc, err := parseCSVTime(fields[3], "EndUtc")
	if err != nil {
		return TripRecord{}, err
	}
	distanceKm, err := parseOptionalCSVFloat(fields[4], "DistanceKm")
	if err != nil {
		return TripRecord{}, err
	}
	startPoint, err := parseTripPointFields(fields[5], fields[6], fields[7], "Start")
	if err != nil {
		return TripRecord{}, err
	}
	endPoint, err := parseTripPointFields(fields[8], fields[9], fields[10], "End")
	if err != nil {
		return TripRecord{}, err
	}
	return TripRecord{
		ID:         id,
		VehicleID:  vehicleID,
		StartUtc:   startUtc,
		EndUtc:     endUtc,
		DistanceKm: distanceKm,
		StartPoint: startPoint,
		EndPoint:   endPoint,
	}, nil
}

func parseTripPointFields(rawLat, rawLon, rawAddress, prefix string) (*PointRecord, error) {
	if rawLat == "" && rawLon == "" {
		if rawAddress != "" {
			return nil, fmt.Errorf("%sAddress set without coordinates", prefix)
		}
		return nil, nil
	}
	lat, err := parseCSVFloat(rawLat, prefix+"Latitude")
	if err != nil {
		return nil, err
	}
	lon, err := parseCSVFloat(rawLon, prefix+"Longitude")
	if err != nil {
		return nil, err
	}
	return &PointRecord{Latitude: lat, Longitude: lon, Address: optionalString(rawAddress)}, nil
}

func parseTrackPointLine(fields []string) (TrackPointRecord, error) {
	if len(fields) != 7 {
		return TrackPointRecord{}, fmt.Errorf("expected 7 fields, got %d", len(fields))
	}
	vehicleID, err := parseCSVInt(fields[0], "VehicleId")
	if err != nil {
		return TrackPointRecord{}, err
	}
	timestamp, err := parseCSVTime(fields[1], "TimestampUtc")
	if err != nil {
		return TrackPointRecord{}, err
	}
	lat, err := parseCSVFloat(fields[2], "Latitude")
	if err != nil {
		return TrackPointRecord{}, err
	}
	lon, err := parseCSVFloat(fields[3], "Longitude")
	if err != nil {
		return TrackPointRecord{}, err
	}
	speed, err := parseCSVFloat(fields[4], "Speed")
	if err != nil {
		return TrackPointRecord{}, err
	}
	rpm, err := parseCSVInt(fields[5], "Rpm")
	if err != nil {
		return TrackPointRecord{}, err
	}
	fuelLevel, err := parseCSVFloat(fields[6], "FuelLevel")
	if err != nil {
		return TrackPointRecord{}, err
	}
	return TrackPointRecord{
		VehicleID:    vehicleID,
		TimestampUtc: timestamp,
		Latitude:     lat,
		Longitude:    lon,
		Speed:        speed,
		Rpm:          int(rpm),
		FuelLevel:    fuelLevel,
	}, nil
}

func parseCSVInt(raw, column string) (int64, error) {
	value, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid integer %q", column, raw)
	}
	return value, nil
}

func parseOptionalCSVInt(raw, column string) (*int64, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	value, err := parseCSVInt(raw, column)
	if err != nil {
		return nil, err
	}
	return &value, nil
}

func parseCSVFloat(raw, column string) (float64, error) {
	value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid number %q", column, raw)
	}
	return value, nil
}

func parseOptionalCSVFloat(raw, column string) (*float64, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	value, err := parseCSVFloat(raw, column)
	if err != nil {
		return nil, err
	}
	return &value, nil
}

func parseCSVTime(raw, column string) (time.Time, error) {
	value, err := time.Parse(time.RFC3339, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, fmt.Errorf("%s: invalid timestamp %q", column, raw)
	}
	return value.UTC(), nil
}

func parseOptionalCSVTime(raw, column string) (*time.Time, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	value, err := parseCSVTime(raw, column)
	if err != nil {
		return nil, err
	}
	return &value, nil
}

func optionalString(raw string) *string {
	if raw == "" {
		return nil
	}
	return &raw
}

func encodeCSV(g *Graph) []byte {
	var b strings.Builder

	for _, section := range sectionOrder {
		b.WriteString("=== " + section + " ===\n")
		b.WriteString(sectionHeaders[section] + "\n")

		switch section {
		case sectionEnterprise:
			writeCSVLine(&b,
				formatCSVInt(g.Enterprise.ID),
				g.Enterprise.Name,
				g.Enterprise.Address,
				derefString(g.Enterprise.TimeZoneID),
			)
		case sectionVehicles:
			for _, v := range g.Vehicles {
				writeCSVLine(&b,
					formatCSVInt(v.ID),
					v.Name,
					formatCSVFloat(v.Price),
					formatCSVInt(v.Mileage),
					v.Color,
					v.RegistrationNumber,
					formatCSVInt(v.BrandModelID),
					formatCSVInt(v.EnterpriseID),
					formatOptionalCSVInt(v.ActiveDriverID),
					formatOptionalCSVTime(v.PurchaseDate),
				)
			}
		case sectionDrivers:
			for _, d := range g.Drivers {
				writeCSVLine(&b,
					formatCSVInt(d.ID),
					d.FirstName,
					d.LastName,
					formatCSVFloat(d.Salary),
					formatCSVInt(d.EnterpriseID),
					formatOptionalCSVInt(d.VehicleID),
				)
			}
		case sectionTrips:
			for _, t := range g.Trips {
				startLat, startLon, startAddr := tripPointFields(t.StartPoint)
				endLat, endLon, endAddr := tripPointFields(t.EndPoint)
				writeCSVLine(&b,
					formatCSVInt(t.ID),
					formatCSVInt(t.VehicleID),
					formatCSVTime(t.StartUtc),
					formatCSVTime(t.EndUtc),
					formatOptionalCSVFloat(t.DistanceKm),
					startLat, startLon, startAddr,
					endLat, endLon, endAddr,
				)
			}
		case sectionTrackPoints:
			for _, p := range g.TrackPoints {
				writeCSVLine(&b,
					formatCSVInt(p.VehicleID),
					formatCSVTime(p.TimestampUtc),
					formatCSVFloat(p.Latitude),
					formatCSVFloat(p.Longitude),
					formatCSVFloat(p.Speed),
					strconv.Itoa(p.Rpm),
					formatCSVFloat(p.FuelLevel),
				)
			}
		}
		b.WriteString("\n")
	}

	return []byte(b.String())
}

func tripPointFields(p *PointRecord) (string, string, string) {
	if p == nil {
		return "", "", ""
	}
	return formatCSVFloat(p.Latitude), formatCSVFloat(p.Longitude), derefString(p.Address)
}

func writeCSVLine(b *strings.Builder, fields ...string) {
	for i, field := range fields {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(escapeCSVField(field))
	}
	b.WriteByte('\n')
}

func escapeCSVField(field string) string {
	if strings.ContainsAny(field, ",\"\n") {
		return `"` + strings.ReplaceAll(field, `"`, `""`) + `"`
	}
	return field
}

func formatCSVInt(v int64) string {
	return strconv.FormatInt(v, 10)
}

func formatOptionalCSVInt(v *int64) string {
	if v == nil {
		return ""
	}
	return formatCSVInt(*v)
}

func formatCSVFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatOptionalCSVFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return formatCSVFloat(*v)
}

func formatCSVTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func formatOptionalCSVTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return formatCSVTime(*t)
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
