package analysis

import (
	"errors"
	"sync"
	"testing"

	"flowcast/internal/simulation"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_RegisterAndGet(t *testing.T) {
	r := NewRegistry(simulation.DefaultBounds(), 2)

	id, s := r.Register("sample.csv", sampleTable())
	_, err := uuid.Parse(id)
	require.NoError(t, err)

	got, err := r.Get(id)
	require.NoError(t, err)
	assert.Same(t, s, got)
	assert.Equal(t, "sample.csv", got.Name())
}

func TestRegistry_UnknownDataset(t *testing.T) {
	r := NewRegistry(simulation.DefaultBounds(), 1)

	_, err := r.Get("missing")
	assert.True(t, errors.Is(err, ErrUnknownDataset))
}

func TestRegistry_ConcurrentRegister(t *testing.T) {
	r := NewRegistry(simulation.DefaultBounds(), 1)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, _ := r.Register("sample.csv", sampleTable())
			_, err := r.Get(id)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 20, r.Len())
}
