// internal/store/memory.go
//
// In-memory implementation of the Store interface.
// Used for single-instance deployments and tests.
//
// Characteristics:
//   - Stores game.Game values keyed by ID in a map.
//   - Concurrency-safe via RWMutex (concurrent reads allowed, writes exclusive).
//   - Callers always receive copies; the map is only changed through Save/Update.
//   - State is lost when the process restarts.

package store

import (
	"context"
	"errors"
	"sync"

	"github.com/robalobadob/flagquiz/internal/game"
)

// ErrNotFound is returned for unknown game ids.
var ErrNotFound = errors.New("not found")

// Store defines the persistence interface for play sessions.
type Store interface {
	// Save persists or replaces a game.
	Save(ctx context.Context, g *game.Game) error

	// Get retrieves a copy of a game by ID.
	Get(ctx context.Context, id string) (*game.Game, error)

	// Update runs fn on the stored game and saves the result, atomically per id.
	// If fn returns an error nothing is written and the error is returned as is.
	Update(ctx context.Context, id string, fn func(g *game.Game) error) (*game.Game, error)
}

// memory is an in-memory map-based Store implementation.
type memory struct {
	mu    sync.RWMutex         // guards games map
	games map[string]game.Game // keyed by Game.ID
}

// NewMemoryStore constructs a new in-memory Store.
func NewMemoryStore() Store {
	return &memory{games: make(map[string]game.Game)}
}

// Save adds or updates the game in the map.
func (m *memory) Save(ctx context.Context, g *game.Game) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.games[g.ID] = *g
	return nil
}

// Get looks up a game by ID.
func (m *memory) Get(ctx context.Context, id string) (*game.Game, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if g, ok := m.games[id]; ok {
		return &g, nil
	}
	return nil, ErrNotFound
}

// Update holds the write lock for the whole read-modify-write.
func (m *memory) Update(ctx context.Context, id string, fn func(g *game.Game) error) (*game.Game, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.games[id]
	if !ok {
		return nil, ErrNotFound
	}
	if err := fn(&g); err != nil {
		return nil, err
	}
	m.games[id] = g
	return &g, nil
}
