// Package export writes derived station tables as Excel workbooks.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"ghcn-dashboard/internal/modules/climate/derive"
	"ghcn-dashboard/internal/modules/climate/types"
)

const (
	RecordsSheet = "Records"
	StationSheet = "Station"

	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var columns = []string{
	"Year", "Day of Year",
	"TMAX (°C)", "TMIN (°C)",
	"Avg Max (°C)", "Avg Min (°C)",
	"Record Max (°C)", "Record Min (°C)",
}

// Filename is the attachment name for a station export.
func Filename(stationID string, year int) string {
	if year == 0 {
		return fmt.Sprintf("%s.xlsx", stationID)
	}
	return fmt.Sprintf("%s-%d.xlsx", stationID, year)
}

// WriteWorkbook writes the station's rows to w as an .xlsx workbook. A zero
// year labels the export as covering every year.
func WriteWorkbook(w io.Writer, station types.Station, rows []types.DailyRecord, year int) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", RecordsSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}

	for i, name := range columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(RecordsSheet, cell, name); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}
	last, _ := excelize.CoordinatesToCellName(len(columns), 1)
	if err := f.SetCellStyle(RecordsSheet, "A1", last, header); err != nil {
		return fmt.Errorf("apply header style: %w", err)
	}

	for i, r := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		values := []interface{}{
			r.Year, r.DayOfYear,
			cellValue(r.TMax), cellValue(r.TMin),
			cellValue(r.AvgMax), cellValue(r.AvgMin),
			cellValue(r.RecordMax), cellValue(r.RecordMin),
		}
		if err := f.SetSheetRow(RecordsSheet, cell, &values); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if err := f.SetPanes(RecordsSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("freeze header: %w", err)
	}
	if err := f.SetColWidth(RecordsSheet, "A", "H", 15); err != nil {
		return fmt.Errorf("column width: %w", err)
	}

	if err := writeStationSheet(f, station, year, len(rows)); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeStationSheet(f *excelize.File, station types.Station, year, rows int) error {
	if _, err := f.NewSheet(StationSheet); err != nil {
		return fmt.Errorf("add sheet: %w", err)
	}
	yearLabel := "all"
	if year != 0 {
		yearLabel = fmt.Sprintf("%d", year)
	}
	info := [][]interface{}{
		{"Station ID", station.ID},
		{"Name", station.Name},
		{"Year", yearLabel},
		{"Rows", rows},
		{"Normals", fmt.Sprintf("%d-%d", derive.NormalsFirstYear, derive.NormalsLastYear)},
	}
	for i, row := range info {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(StationSheet, cell, &row); err != nil {
			return fmt.Errorf("write station info: %w", err)
		}
	}
	return nil
}

// cellValue leaves a blank cell for a missing temperature.
func cellValue(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}
