package location

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/randytsao24/binwatch/internal/models"
)

// ErrInvalidDataset is returned when the startup dataset is missing,
// unparseable or structurally invalid. It is not recoverable.
var ErrInvalidDataset = errors.New("invalid bin dataset")

// The on-disk layout nests each bin's fields under location, binDetails
// and maintenance objects.
type datasetFile struct {
	Dustbins *[]rawBin `json:"dustbins" yaml:"dustbins"`
}

type rawBin struct {
	ID          any             `json:"id" yaml:"id"`
	Location    *rawLocation    `json:"location" yaml:"location"`
	BinDetails  *rawBinDetails  `json:"binDetails" yaml:"binDetails"`
	Maintenance *rawMaintenance `json:"maintenance" yaml:"maintenance"`
}

type rawLocation struct {
	Coordinates *rawCoordinates `json:"coordinates" yaml:"coordinates"`
	Address     string          `json:"address" yaml:"address"`
	Area        string          `json:"area" yaml:"area"`
	City        string          `json:"city" yaml:"city"`
	District    string          `json:"district" yaml:"district"`
}

type rawCoordinates struct {
	Latitude  *float64 `json:"latitude" yaml:"latitude"`
	Longitude *float64 `json:"longitude" yaml:"longitude"`
}

type rawBinDetails struct {
	FillLevel *float64 `json:"fillLevel" yaml:"fillLevel"`
	Capacity  float64  `json:"capacity" yaml:"capacity"`
	WasteType string   `json:"wasteType" yaml:"wasteType"`
}

type rawMaintenance struct {
	Status string `json:"status" yaml:"status"`
}

// LoadDataset reads bins from a JSON, YAML or XLSX file, chosen by extension.
// Any failure wraps ErrInvalidDataset; there is no partial load.
func LoadDataset(path string) ([]models.Bin, error) {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return loadWorkbook(path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading dataset file: %v", ErrInvalidDataset, err)
	}

	var file datasetFile
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &file)
	default:
		err = json.Unmarshal(data, &file)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: parsing %s: %v", ErrInvalidDataset, filepath.Base(path), err)
	}

	if file.Dustbins == nil {
		return nil, fmt.Errorf("%w: \"dustbins\" array missing", ErrInvalidDataset)
	}

	bins := make([]models.Bin, 0, len(*file.Dustbins))
	for i, raw := range *file.Dustbins {
		bin, err := raw.toBin()
		if err != nil {
			return nil, fmt.Errorf("%w: entry %d: %v", ErrInvalidDataset, i, err)
		}
		bins = append(bins, bin)
	}

	if err := checkUniqueIDs(bins); err != nil {
		return nil, err
	}
	return bins, nil
}

func (r rawBin) toBin() (models.Bin, error) {
	id, err := normalizeID(r.ID)
	if err != nil {
		return models.Bin{}, err
	}
	if r.Location == nil || r.Location.Coordinates == nil {
		return models.Bin{}, fmt.Errorf("bin %s: location.coordinates missing", id)
	}
	coords := r.Location.Coordinates
	if coords.Latitude == nil || coords.Longitude == nil {
		return models.Bin{}, fmt.Errorf("bin %s: latitude/longitude missing", id)
	}
	if r.BinDetails == nil || r.BinDetails.FillLevel == nil {
		return models.Bin{}, fmt.Errorf("bin %s: binDetails.fillLevel missing", id)
	}
	if r.Maintenance == nil {
		return models.Bin{}, fmt.Errorf("bin %s: maintenance missing", id)
	}

	return models.Bin{
		ID:                id,
		Lat:               *coords.Latitude,
		Lng:               *coords.Longitude,
		Address:           JoinAddress(r.Location.Address, r.Location.Area, r.Location.City, r.Location.District),
		FillLevel:         *r.BinDetails.FillLevel,
		Capacity:          r.BinDetails.Capacity,
		WasteType:         r.BinDetails.WasteType,
		MaintenanceStatus: r.Maintenance.Status,
	}, nil
}

// JoinAddress joins the non-empty fragments with ", "
func JoinAddress(fragments ...string) string {
	parts := make([]string, 0, len(fragments))
	for _, f := range fragments {
		if f != "" {
			parts = append(parts, f)
		}
	}
	return strings.Join(parts, ", ")
}

// normalizeID accepts string or numeric ids from JSON and YAML decoders
func normalizeID(v any) (string, error) {
	switch id := v.(type) {
	case nil:
		return "", errors.New("id missing")
	case string:
		if strings.TrimSpace(id) == "" {
			return "", errors.New("id empty")
		}
		return id, nil
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64), nil
	case int:
		return strconv.Itoa(id), nil
	case int64:
		return strconv.FormatInt(id, 10), nil
	case uint64:
		return strconv.FormatUint(id, 10), nil
	default:
		return "", fmt.Errorf("id has unsupported type %T", v)
	}
}

func checkUniqueIDs(bins []models.Bin) error {
	seen := make(map[string]bool, len(bins))
	for _, b := range bins {
		if seen[b.ID] {
			return fmt.Errorf("%w: duplicate id %q", ErrInvalidDataset, b.ID)
		}
		seen[b.ID] = true
	}
	return nil
}
