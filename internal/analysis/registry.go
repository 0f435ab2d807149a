package analysis

import (
	"errors"
	"fmt"
	"sync"

	"flowcast/internal/dataset"
	"flowcast/internal/simulation"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ErrUnknownDataset is returned when a dataset id was never registered.
var ErrUnknownDataset = errors.New("unknown dataset")

// Registry keeps loaded datasets in memory for the lifetime of the process.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	bounds   simulation.Bounds
	workers  int
}

// NewRegistry creates an empty registry whose sessions use the given simulation limits.
func NewRegistry(bounds simulation.Bounds, workers int) *Registry {
	return &Registry{
		sessions: make(map[string]*Session),
		bounds:   bounds,
		workers:  workers,
	}
}

// Register stores a table under a fresh id.
func (r *Registry) Register(name string, table dataset.Table) (string, *Session) {
	id := uuid.NewString()
	s := NewSession(name, table).WithSimulation(r.bounds, r.workers)

	r.mu.Lock()
	r.sessions[id] = s
	r.mu.Unlock()

	log.Debug().Str("dataset_id", id).Str("source", name).Int("rows", len(table.Rows)).Msg("Dataset registered")
	return id, s
}

// Get returns the session registered under id.
func (r *Registry) Get(id string) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownDataset, id)
	}
	return s, nil
}

// Len is the number of registered datasets.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
