package location

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const validJSON = `{
  "dustbins": [
    {
      "id": 7,
      "location": {
        "coordinates": {"latitude": 12.5, "longitude": 77.25},
        "address": "MG Road",
        "area": "",
        "city": "Bengaluru"
      },
      "binDetails": {"fillLevel": 95.5, "capacity": 240, "wasteType": "organic"},
      "maintenance": {"status": "operational"}
    },
    {
      "id": "BIN-2",
      "location": {
        "coordinates": {"latitude": 12.6, "longitude": 77.3},
        "address": "Church Street",
        "area": "Shivajinagar",
        "city": "Bengaluru",
        "district": "Bengaluru Urban"
      },
      "binDetails": {"fillLevel": 0, "capacity": 120.5, "wasteType": "mixed"},
      "maintenance": {"status": "needs_cleaning"}
    }
  ]
}`

func TestLoadDataset_JSON(t *testing.T) {
	bins, err := LoadDataset(writeTemp(t, "dustbins.json", validJSON))
	require.NoError(t, err)
	require.Len(t, bins, 2)

	first := bins[0]
	assert.Equal(t, "7", first.ID)
	assert.Equal(t, 12.5, first.Lat)
	assert.Equal(t, 77.25, first.Lng)
	assert.Equal(t, "MG Road, Bengaluru", first.Address)
	// Loaded values are passed through unvalidated, even above the ceiling
	assert.Equal(t, 95.5, first.FillLevel)
	assert.Equal(t, 240.0, first.Capacity)
	assert.Equal(t, "organic", first.WasteType)
	assert.Equal(t, "operational", first.MaintenanceStatus)

	assert.Equal(t, "BIN-2", bins[1].ID)
	assert.Equal(t, "Church Street, Shivajinagar, Bengaluru, Bengaluru Urban", bins[1].Address)
	assert.Equal(t, 120.5, bins[1].Capacity)
}

func TestLoadDataset_YAML(t *testing.T) {
	content := `
dustbins:
  - id: 1
    location:
      coordinates: {latitude: 1.5, longitude: 2.5}
      address: Main St
      district: North
    binDetails: {fillLevel: 33, capacity: 100, wasteType: glass}
    maintenance: {status: ok}
`
	bins, err := LoadDataset(writeTemp(t, "dustbins.yaml", content))
	require.NoError(t, err)
	require.Len(t, bins, 1)
	assert.Equal(t, "1", bins[0].ID)
	assert.Equal(t, "Main St, North", bins[0].Address)
	assert.Equal(t, 33.0, bins[0].FillLevel)
	assert.Equal(t, "glass", bins[0].WasteType)
}

var xlsxHeader = []any{"ID", "Latitude", "Longitude", "Address", "Area", "City", "District", "FillLevel", "Capacity", "WasteType", "MaintenanceStatus"}

func writeWorkbook(t *testing.T, rows [][]any) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	path := filepath.Join(t.TempDir(), "dustbins.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestLoadDataset_XLSX(t *testing.T) {
	path := writeWorkbook(t, [][]any{
		xlsxHeader,
		{"X1", "28,6139", "77.2090", "Janpath", "", "New Delhi", "", "42.5", "240", "mixed", "operational"},
		{"X2", "28.63", "77.21", "", "Chowk", "", "", "0", "", "organic", "under_repair"},
	})

	bins, err := LoadDataset(path)
	require.NoError(t, err)
	require.Len(t, bins, 2)

	assert.Equal(t, "X1", bins[0].ID)
	assert.InDelta(t, 28.6139, bins[0].Lat, 1e-9)
	assert.Equal(t, "Janpath, New Delhi", bins[0].Address)
	assert.Equal(t, 42.5, bins[0].FillLevel)
	assert.Equal(t, 240.0, bins[0].Capacity)

	assert.Equal(t, "Chowk", bins[1].Address)
	assert.Equal(t, 0.0, bins[1].Capacity)
	assert.Equal(t, "under_repair", bins[1].MaintenanceStatus)
}

func TestLoadDataset_XLSXRejectsBadNumbers(t *testing.T) {
	tests := []struct {
		name string
		row  []any
	}{
		{"capacity", []any{"X1", "28.6", "77.2", "", "", "", "", "10", "abc", "mixed", "ok"}},
		{"latitude", []any{"X1", "north", "77.2", "", "", "", "", "10", "240", "mixed", "ok"}},
		{"fill level", []any{"X1", "28.6", "77.2", "", "", "", "", "", "240", "mixed", "ok"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadDataset(writeWorkbook(t, [][]any{xlsxHeader, tt.row}))
			assert.ErrorIs(t, err, ErrInvalidDataset)
		})
	}
}

func TestLoadDataset_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{"not json", "bad.json", `{"dustbins": [`},
		{"missing list", "missing.json", `{"bins": []}`},
		{"list is an object", "object.json", `{"dustbins": {"id": 1}}`},
		{"list is a string", "string.json", `{"dustbins": "none"}`},
		{"missing id", "noid.json", `{"dustbins": [{"location": {"coordinates": {"latitude": 1, "longitude": 2}}, "binDetails": {"fillLevel": 1}, "maintenance": {}}]}`},
		{"missing coordinates", "nocoords.json", `{"dustbins": [{"id": 1, "location": {"address": "x"}, "binDetails": {"fillLevel": 1}, "maintenance": {}}]}`},
		{"missing longitude", "nolng.json", `{"dustbins": [{"id": 1, "location": {"coordinates": {"latitude": 1}}, "binDetails": {"fillLevel": 1}, "maintenance": {}}]}`},
		{"missing binDetails", "nodetails.json", `{"dustbins": [{"id": 1, "location": {"coordinates": {"latitude": 1, "longitude": 2}}, "maintenance": {}}]}`},
		{"missing maintenance", "nomaint.json", `{"dustbins": [{"id": 1, "location": {"coordinates": {"latitude": 1, "longitude": 2}}, "binDetails": {"fillLevel": 1}}]}`},
		{"non-numeric latitude", "strlat.json", `{"dustbins": [{"id": 1, "location": {"coordinates": {"latitude": "north", "longitude": 2}}, "binDetails": {"fillLevel": 1}, "maintenance": {}}]}`},
		{"duplicate ids", "dup.json", `{"dustbins": [
			{"id": 1, "location": {"coordinates": {"latitude": 1, "longitude": 2}}, "binDetails": {"fillLevel": 1}, "maintenance": {}},
			{"id": "1", "location": {"coordinates": {"latitude": 3, "longitude": 4}}, "binDetails": {"fillLevel": 1}, "maintenance": {}}
		]}`},
		{"yaml without list", "bad.yaml", "other: 1\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadDataset(writeTemp(t, tt.file, tt.content))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidDataset)
		})
	}
}

func TestLoadDataset_MissingFile(t *testing.T) {
	_, err := LoadDataset(filepath.Join(t.TempDir(), "nope.json"))
	assert.ErrorIs(t, err, ErrInvalidDataset)

	_, err = LoadDataset(filepath.Join(t.TempDir(), "nope.xlsx"))
	assert.ErrorIs(t, err, ErrInvalidDataset)
}

func TestLoadDataset_EmptyListIsValid(t *testing.T) {
	bins, err := LoadDataset(writeTemp(t, "empty.json", `{"dustbins": []}`))
	require.NoError(t, err)
	assert.Empty(t, bins)
}

func TestJoinAddress(t *testing.T) {
	assert.Equal(t, "a, c", JoinAddress("a", "", "c", ""))
	assert.Equal(t, "", JoinAddress("", ""))
	assert.Equal(t, "only", JoinAddress("only"))
}
