package exchange

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
)

func encodeXLSX(g *Graph) ([]byte, error) {
	file := excelize.NewFile()

	summarySheet := "Enterprise"
	file.SetSheetName("Sheet1", summarySheet)
	writeEnterpriseSheet(file, summarySheet, g)

	if err := writeTableSheet(file, "Vehicles",
		[]string{"Id", "Name", "Price", "Mileage", "Color", "RegistrationNumber", "BrandModelId", "EnterpriseId", "ActiveDriverId", "PurchaseDate"},
		len(g.Vehicles),
		func(i int) []interface{} {
			v := g.Vehicles[i]
			return []interface{}{
				v.ID, v.Name, v.Price, v.Mileage, v.Color, v.RegistrationNumber,
				v.BrandModelID, v.EnterpriseID, optionalIntCell(v.ActiveDriverID), optionalTimeCell(v.PurchaseDate),
			}
		},
	); err != nil {
		return nil, err
	}

	if err := writeTableSheet(file, "Drivers",
		[]string{"Id", "FirstName", "LastName", "Salary", "EnterpriseId", "VehicleId"},
		len(g.Drivers),
		func(i int) []interface{} {
			d := g.Drivers[i]
			return []interface{}{d.ID, d.FirstName, d.LastName, d.Salary, d.EnterpriseID, optionalIntCell(d.VehicleID)}
		},
	); err != nil {
		return nil, err
	}

	if err := writeTableSheet(file, "Trips",
		[]string{"Id", "VehicleId", "StartUtc", "EndUtc", "DistanceKm", "StartAddress", "EndAddress"},
		len(g.Trips),
		func(i int) []interface{} {
			t := g.Trips[i]
			return []interface{}{
				t.ID, t.VehicleID, timeCell(t.StartUtc), timeCell(t.EndUtc),
				optionalFloatCell(t.DistanceKm), pointAddressCell(t.StartPoint), pointAddressCell(t.EndPoint),
			}
		},
	); err != nil {
		return nil, err
	}

	if err := writeTableSheet(file, "TrackPoints",
		[]string{"VehicleId", "TimestampUtc", "Latitude", "Longitude", "Speed", "Rpm", "FuelLevel"},
		len(g.TrackPoints),
		func(i int) []interface{} {
			p := g.TrackPoints[i]
			return []interface{}{p.VehicleID, timeCell(p.TimestampUtc), p.Latitude, p.Longitude, p.Speed, p.Rpm, p.FuelLevel}
		},
	); err != nil {
		return nil, err
	}

	file.SetActiveSheet(0)
	buf, err := file.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeEnterpriseSheet(file *excelize.File, sheet string, g *Graph) {
	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(sheet, cell, value)
	}

	set("A1", "Enterprise Id")
	set("B1", g.Enterprise.ID)
	set("A2", "Name")
	set("B2", g.Enterprise.Name)
	set("A3", "Address")
	set("B3", g.Enterprise.Address)
	set("A4", "Time zone")
	set("B4", derefString(g.Enterprise.TimeZoneID))
	set("A5", "Exported at (UTC)")
	set("B5", timeCell(g.ExportedAt))
	set("A6", "Range start")
	set("B6", optionalTimeCell(g.DateRange.StartDate))
	set("A7", "Range end")
	set("B7", optionalTimeCell(g.DateRange.EndDate))
	set("A9", "Vehicles")
	set("B9", len(g.Vehicles))
	set("A10", "Drivers")
	set("B10", len(g.Drivers))
	set("A11", "Trips")
	set("B11", len(g.Trips))
	set("A12", "Track points")
	set("B12", len(g.TrackPoints))

	_ = file.SetColWidth(sheet, "A", "A", 24)
	_ = file.SetColWidth(sheet, "B", "B", 36)
}

func writeTableSheet(file *excelize.File, sheet string, headers []string, rows int, rowValues func(int) []interface{}) error {
	if _, err := file.NewSheet(sheet); err != nil {
		return err
	}

	for col, header := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := file.SetCellValue(sheet, cell, header); err != nil {
			return err
		}
	}

	for row := 0; row < rows; row++ {
		for col, value := range rowValues(row) {
			cell, err := excelize.CoordinatesToCellName(col+1, row+2)
			if err != nil {
				return err
			}
			if err := file.SetCellValue(sheet, cell, value); err != nil {
				return err
			}
		}
	}

	lastCol, err := excelize.ColumnNumberToName(len(headers))
	if err != nil {
		return err
	}
	_ = file.SetColWidth(sheet, "A", lastCol, 22)
	return nil
}

func timeCell(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format("2006-01-02 15:04:05")
}

func optionalTimeCell(t *time.Time) string {
	if t == nil {
		return ""
	}
	return timeCell(*t)
}

func optionalIntCell(v *int64) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%d", *v)
}

func optionalFloatCell(v *float64) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%.3f", *v)
}

func pointAddressCell(p *PointRecord) string {
	if p == nil {
		return ""
	}
	if p.Address != nil {
		return *p.Address
	}
	return fmt.Sprintf("%.5f, %.5f", p.Latitude, p.Longitude)
}
