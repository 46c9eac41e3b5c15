// apps/go-server/internal/store/memory.go
//
// In-memory registry of live tables.
// Tables only ever live in process memory; a restart ends every game.
//
// Characteristics:
//   - Stores *table.Table objects keyed by ID in a map.
//   - Concurrency-safe via RWMutex (concurrent reads allowed, writes exclusive).
//   - Idle tables are swept so abandoned games do not accumulate.
//   - Errors are returned for missing table IDs on Get().

package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/memory/apps/go-server/internal/metrics"
	"github.com/robalobadob/memory/apps/go-server/internal/table"
)

// ErrNotFound is returned by Get for unknown or evicted tables.
var ErrNotFound = errors.New("not found")

// Store defines the registry interface for live tables.
type Store interface {
	// Save adds or replaces a table.
	Save(ctx context.Context, t *table.Table) error

	// Get retrieves a table by ID.
	// Returns ErrNotFound if the table is not present.
	Get(ctx context.Context, id string) (*table.Table, error)

	// Delete closes and removes a table; unknown IDs are ignored.
	Delete(ctx context.Context, id string) error

	// Sweep closes and removes tables idle since before now-idle.
	// Returns how many were removed.
	Sweep(ctx context.Context, now time.Time, idle time.Duration) int

	// Len reports how many tables are held.
	Len() int
}

// memory is an in-memory map-based Store implementation.
type memory struct {
	mu     sync.RWMutex            // guards tables map
	tables map[string]*table.Table // keyed by Table.ID
}

// NewMemoryStore constructs a new in-memory Store.
func NewMemoryStore() Store {
	return &memory{tables: make(map[string]*table.Table)}
}

func (m *memory) Save(ctx context.Context, t *table.Table) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tables[t.ID] = t
	metrics.TablesActive.Set(float64(len(m.tables)))
	return nil
}

func (m *memory) Get(ctx context.Context, id string) (*table.Table, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if t, ok := m.tables[id]; ok {
		return t, nil
	}
	return nil, ErrNotFound
}

func (m *memory) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	t, ok := m.tables[id]
	delete(m.tables, id)
	metrics.TablesActive.Set(float64(len(m.tables)))
	m.mu.Unlock()

	if ok {
		t.Close()
	}
	return nil
}

func (m *memory) Sweep(ctx context.Context, now time.Time, idle time.Duration) int {
	cutoff := now.Add(-idle)

	m.mu.Lock()
	var stale []*table.Table
	for id, t := range m.tables {
		if t.LastActive().Before(cutoff) {
			stale = append(stale, t)
			delete(m.tables, id)
		}
	}
	metrics.TablesActive.Set(float64(len(m.tables)))
	m.mu.Unlock()

	for _, t := range stale {
		t.Close()
	}
	return len(stale)
}

func (m *memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.tables)
}

// SweepEvery runs Sweep on a ticker until ctx is done.
func SweepEvery(ctx context.Context, st Store, every, idle time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n := st.Sweep(ctx, now, idle); n > 0 {
				log.Info().Int("evicted", n).Int("remaining", st.Len()).Msg("swept idle tables")
			}
		}
	}
}
