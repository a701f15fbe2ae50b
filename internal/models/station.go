package models

// ConnectorStatus is the administrative state of a physical connector.
type ConnectorStatus string

const (
	ConnectorAvailable    ConnectorStatus = "available"
	ConnectorReserved     ConnectorStatus = "reserved"
	ConnectorOccupied     ConnectorStatus = "occupied"
	ConnectorOutOfService ConnectorStatus = "out_of_service"
)

// ConnectorType is the charging standard of a connector.
type ConnectorType string

const (
	ConnectorTypeJ1772   ConnectorType = "J1772"
	ConnectorTypeCCS1    ConnectorType = "CCS1"
	ConnectorTypeCCS2    ConnectorType = "CCS2"
	ConnectorTypeCHAdeMO ConnectorType = "CHAdeMO"
	ConnectorTypeTesla   ConnectorType = "Tesla"
)

// StationStatus is the overall operational state of a station.
type StationStatus string

const (
	StationActive      StationStatus = "active"
	StationOffline     StationStatus = "offline"
	StationMaintenance StationStatus = "maintenance"
)

// Connector is a single reservable charging plug at a station.
type Connector struct {
	ID      string          `json:"connector_id" yaml:"connector_id"`
	Type    ConnectorType   `json:"type" yaml:"type"`
	PowerKW float64         `json:"power_kw" yaml:"power_kw"`
	Status  ConnectorStatus `json:"status" yaml:"status"`
}

// Coordinates is a lat/lon pair.
type Coordinates struct {
	Lat float64 `json:"lat" yaml:"lat"`
	Lon float64 `json:"lon" yaml:"lon"`
}

// Station is a physical site owning an ordered set of connectors.
// Connector ids are unique within their station.
type Station struct {
	ID         string        `json:"station_id" yaml:"station_id"`
	Name       string        `json:"name" yaml:"name"`
	Location   Coordinates   `json:"location_coords" yaml:"location_coords"`
	Address    string        `json:"address" yaml:"address"`
	Owner      string        `json:"owner" yaml:"owner"`
	Public     bool          `json:"is_public" yaml:"is_public"`
	Status     StationStatus `json:"overall_status" yaml:"overall_status"`
	Connectors []Connector   `json:"connectors" yaml:"connectors"`
}

// Connector returns a pointer to the connector with the given id, if present.
func (s *Station) Connector(connectorID string) (*Connector, bool) {
	for i := range s.Connectors {
		if s.Connectors[i].ID == connectorID {
			return &s.Connectors[i], true
		}
	}
	return nil, false
}

// Clone returns a deep copy safe to hand out across goroutines.
func (s *Station) Clone() *Station {
	cp := *s
	cp.Connectors = make([]Connector, len(s.Connectors))
	copy(cp.Connectors, s.Connectors)
	return &cp
}
