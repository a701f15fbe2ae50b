package inventory

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"evreserve/internal/models"
	"evreserve/internal/store"
)

// Inventory is the station/connector accessor. It owns seeding, keeps a
// connector index for direct lookup, and is the single mutation path
// for connector status (called only by the engine).
type Inventory struct {
	store  store.RecordStore
	logger *zap.Logger

	mu    sync.RWMutex
	index map[string]map[string]struct{} // station id -> connector ids
}

// New builds an inventory over the given record store.
func New(recordStore store.RecordStore, logger *zap.Logger) *Inventory {
	return &Inventory{
		store:  recordStore,
		logger: logger,
		index:  make(map[string]map[string]struct{}),
	}
}

// Seed upserts the given stations and (re)builds the connector index.
// Connectors with no status default to available; stations with no
// status default to active.
func (inv *Inventory) Seed(ctx context.Context, stations []*models.Station) error {
	inv.mu.Lock()
	defer inv.mu.Unlock()

	for _, station := range stations {
		if station.Status == "" {
			station.Status = models.StationActive
		}
		connectors := make(map[string]struct{}, len(station.Connectors))
		for i := range station.Connectors {
			if station.Connectors[i].Status == "" {
				station.Connectors[i].Status = models.ConnectorAvailable
			}
			if _, dup := connectors[station.Connectors[i].ID]; dup {
				return fmt.Errorf("inventory: duplicate connector %q at station %q", station.Connectors[i].ID, station.ID)
			}
			connectors[station.Connectors[i].ID] = struct{}{}
		}
		if err := inv.store.UpsertStation(ctx, station); err != nil {
			return fmt.Errorf("inventory: seed station %q: %w", station.ID, err)
		}
		inv.index[station.ID] = connectors
		inv.logger.Info("station seeded",
			zap.String("station_id", station.ID),
			zap.Int("connectors", len(station.Connectors)),
		)
	}
	return nil
}

// ListStations returns all stations.
func (inv *Inventory) ListStations(ctx context.Context) ([]*models.Station, error) {
	return inv.store.ListStations(ctx)
}

// GetStation returns one station or store.ErrNotFound.
func (inv *Inventory) GetStation(ctx context.Context, stationID string) (*models.Station, error) {
	return inv.store.GetStation(ctx, stationID)
}

// GetConnector resolves a connector on a station. The index rejects
// unknown connectors on seeded stations without touching the store.
func (inv *Inventory) GetConnector(ctx context.Context, stationID, connectorID string) (*models.Station, *models.Connector, error) {
	inv.mu.RLock()
	connectors, indexed := inv.index[stationID]
	if indexed {
		if _, ok := connectors[connectorID]; !ok {
			inv.mu.RUnlock()
			return nil, nil, fmt.Errorf("connector %q at station %q: %w", connectorID, stationID, store.ErrNotFound)
		}
	}
	inv.mu.RUnlock()

	station, err := inv.store.GetStation(ctx, stationID)
	if err != nil {
		return nil, nil, err
	}
	connector, ok := station.Connector(connectorID)
	if !ok {
		return nil, nil, fmt.Errorf("connector %q at station %q: %w", connectorID, stationID, store.ErrNotFound)
	}
	return station, connector, nil
}

// SetConnectorStatus updates a single connector's status and persists
// the owning station.
func (inv *Inventory) SetConnectorStatus(ctx context.Context, stationID, connectorID string, status models.ConnectorStatus) error {
	station, err := inv.store.GetStation(ctx, stationID)
	if err != nil {
		return err
	}
	connector, ok := station.Connector(connectorID)
	if !ok {
		return fmt.Errorf("connector %q at station %q: %w", connectorID, stationID, store.ErrNotFound)
	}
	connector.Status = status
	return inv.store.UpsertStation(ctx, station)
}
