package exchange

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
)

func encodePDF(g *Graph) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 10, "Enterprise data export", "", 1, "C", false, 0, "")

	pdf.SetFont("Arial", "", 11)
	pdf.CellFormat(0, 6, fmt.Sprintf("Exported at %s (UTC)", formatPDFTime(g.ExportedAt)), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(0, 8, "Enterprise", "", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	lines := []string{
		fmt.Sprintf("Id: %d", g.Enterprise.ID),
		fmt.Sprintf("Name: %s", safePDFValue(g.Enterprise.Name)),
		fmt.Sprintf("Address: %s", safePDFValue(g.Enterprise.Address)),
		fmt.Sprintf("Time zone: %s", safePDFValue(derefString(g.Enterprise.TimeZoneID))),
	}
	for _, line := range lines {
		pdf.MultiCell(0, 5, line, "", "L", false)
	}
	pdf.Ln(2)

	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(0, 8, "Date range", "", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(0, 6, fmt.Sprintf("from %s to %s", formatPDFBound(g.DateRange.StartDate, "the beginning"), formatPDFBound(g.DateRange.EndDate, "the end")), "", 1, "L", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(0, 8, "Snapshot contents", "", 1, "L", false, 0, "")

	headers := []string{"Entity", "Records"}
	widths := []float64{120, 40}
	drawPDFRow(pdf, headers, widths, true)
	drawPDFRow(pdf, []string{"Vehicles", fmt.Sprintf("%d", len(g.Vehicles))}, widths, false)
	drawPDFRow(pdf, []string{"Drivers", fmt.Sprintf("%d", len(g.Drivers))}, widths, false)
	drawPDFRow(pdf, []string{"Trips", fmt.Sprintf("%d", len(g.Trips))}, widths, false)
	drawPDFRow(pdf, []string{"Track points", fmt.Sprintf("%d", len(g.TrackPoints))}, widths, false)

	totalDistance := 0.0
	for _, t := range g.Trips {
		if t.DistanceKm != nil {
			totalDistance += *t.DistanceKm
		}
	}
	pdf.Ln(4)
	pdf.SetFont("Arial", "", 11)
	pdf.CellFormat(0, 6, fmt.Sprintf("Total trip distance: %.1f km", totalDistance), "", 1, "L", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func drawPDFRow(pdf *gofpdf.Fpdf, cols []string, widths []float64, header bool) {
	style := ""
	if header {
		style = "B"
	}
	pdf.SetFont("Arial", style, 10)
	for i, col := range cols {
		align := "L"
		if i > 0 {
			align = "R"
		}
		pdf.CellFormat(widths[i], 8, col, "1", 0, align, false, 0, "")
	}
	pdf.Ln(-1)
}

func safePDFValue(value string) string {
	if strings.TrimSpace(value) == "" {
		return "-"
	}
	return value
}

func formatPDFTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.UTC().Format("2006-01-02 15:04:05")
}

func formatPDFBound(t *time.Time, open string) string {
	if t == nil {
		return open
	}
	return formatPDFTime(*t)
}
