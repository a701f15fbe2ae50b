package engine

import "sync"

// connectorLocks serializes the check-then-act sequences touching one
// connector. Sessions on different connectors never conflict, so
// per-connector granularity beats a single write lock. Mutexes are
// created on first use and kept for the process lifetime; the set is
// bounded by the connector count.
type connectorLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newConnectorLocks() *connectorLocks {
	return &connectorLocks{locks: make(map[string]*sync.Mutex)}
}

// lock acquires the mutex for the connector and returns its unlock func.
func (l *connectorLocks) lock(stationID, connectorID string) func() {
	key := stationID + "/" + connectorID

	l.mu.Lock()
	m, ok := l.locks[key]
	if !ok {
		m = &sync.Mutex{}
		l.locks[key] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
