package location

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/randytsao24/binwatch/internal/models"
)

// Spreadsheet datasets carry one bin per row under a header row. Column
// order is free; columns are matched by header name, case-insensitively.
const (
	colID          = "id"
	colLatitude    = "latitude"
	colLongitude   = "longitude"
	colAddress     = "address"
	colArea        = "area"
	colCity        = "city"
	colDistrict    = "district"
	colFillLevel   = "filllevel"
	colCapacity    = "capacity"
	colWasteType   = "wastetype"
	colMaintenance = "maintenancestatus"
)

var requiredColumns = []string{colID, colLatitude, colLongitude, colFillLevel}

func loadWorkbook(path string) ([]models.Bin, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: opening workbook: %v", ErrInvalidDataset, err)
	}
	defer f.Close()

	sheet := "dustbins"
	if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		sheet = f.GetSheetName(0)
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("%w: reading sheet %q: %v", ErrInvalidDataset, sheet, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: sheet %q has no header row", ErrInvalidDataset, sheet)
	}

	columns := make(map[string]int)
	for i, name := range rows[0] {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, name := range requiredColumns {
		if _, ok := columns[name]; !ok {
			return nil, fmt.Errorf("%w: sheet %q missing column %q", ErrInvalidDataset, sheet, name)
		}
	}

	cell := func(row []string, name string) string {
		i, ok := columns[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	bins := make([]models.Bin, 0, len(rows)-1)
	for i, row := range rows[1:] {
		rowNum := i + 2
		if len(row) == 0 {
			continue
		}

		id := cell(row, colID)
		if id == "" {
			return nil, fmt.Errorf("%w: row %d: id missing", ErrInvalidDataset, rowNum)
		}
		lat, err := parseNumber(cell(row, colLatitude))
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: latitude: %v", ErrInvalidDataset, rowNum, err)
		}
		lng, err := parseNumber(cell(row, colLongitude))
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: longitude: %v", ErrInvalidDataset, rowNum, err)
		}
		fill, err := parseNumber(cell(row, colFillLevel))
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: fillLevel: %v", ErrInvalidDataset, rowNum, err)
		}
		// Capacity is passthrough; a blank cell means zero.
		var capacity float64
		if raw := cell(row, colCapacity); raw != "" {
			if capacity, err = parseNumber(raw); err != nil {
				return nil, fmt.Errorf("%w: row %d: capacity: %v", ErrInvalidDataset, rowNum, err)
			}
		}

		bins = append(bins, models.Bin{
			ID:  id,
			Lat: lat,
			Lng: lng,
			Address: JoinAddress(
				cell(row, colAddress),
				cell(row, colArea),
				cell(row, colCity),
				cell(row, colDistrict),
			),
			FillLevel:         fill,
			Capacity:          capacity,
			WasteType:         cell(row, colWasteType),
			MaintenanceStatus: cell(row, colMaintenance),
		})
	}

	if err := checkUniqueIDs(bins); err != nil {
		return nil, err
	}
	return bins, nil
}

// parseNumber tolerates decimal commas, which some spreadsheet locales emit
func parseNumber(val string) (float64, error) {
	val = strings.ReplaceAll(val, ",", ".")
	if val == "" {
		return 0, fmt.Errorf("empty")
	}
	return strconv.ParseFloat(val, 64)
}
