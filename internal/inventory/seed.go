package inventory

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"evreserve/internal/models"
)

// DefaultStations is the built-in inventory used when no seed file is
// configured.
func DefaultStations() []*models.Station {
	return []*models.Station{
		{
			ID:       "STN-001",
			Name:     "Downtown Fast Charger",
			Location: models.Coordinates{Lat: 34.0522, Lon: -118.2437},
			Address:  "123 Main St, Anytown",
			Owner:    "EVChargeCo",
			Public:   true,
			Status:   models.StationActive,
			Connectors: []models.Connector{
				{ID: "C-001-1", Type: models.ConnectorTypeCCS1, PowerKW: 50.0, Status: models.ConnectorAvailable},
				{ID: "C-001-2", Type: models.ConnectorTypeJ1772, PowerKW: 7.2, Status: models.ConnectorAvailable},
			},
		},
		{
			ID:       "STN-002",
			Name:     "Parkside L2 Chargers",
			Location: models.Coordinates{Lat: 34.0722, Lon: -118.2537},
			Address:  "456 Oak Ave, Anytown",
			Owner:    "CityPower",
			Public:   true,
			Status:   models.StationActive,
			Connectors: []models.Connector{
				{ID: "C-002-1", Type: models.ConnectorTypeJ1772, PowerKW: 7.2, Status: models.ConnectorAvailable},
				{ID: "C-002-2", Type: models.ConnectorTypeJ1772, PowerKW: 7.2, Status: models.ConnectorAvailable},
			},
		},
	}
}

type seedFile struct {
	Stations []*models.Station `yaml:"stations"`
}

// LoadSeedFile reads a YAML inventory file.
func LoadSeedFile(path string) ([]*models.Station, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("inventory: read seed file: %w", err)
	}
	var file seedFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("inventory: decode seed file: %w", err)
	}
	if len(file.Stations) == 0 {
		return nil, fmt.Errorf("inventory: seed file %q contains no stations", path)
	}
	return file.Stations, nil
}
