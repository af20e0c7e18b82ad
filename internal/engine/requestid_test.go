package engine

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUUIDv7Generator_ValidFormat(t *testing.T) {
	id := UUIDv7Generator{}.Generate()

	assert.Regexp(t, `^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`, id)
	parsed, err := uuid.Parse(id)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), parsed.Version())
}

func TestUUIDv7Generator_Concurrent(t *testing.T) {
	gen := UUIDv7Generator{}
	const goroutines = 100

	ids := make(chan string, goroutines)
	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ids <- gen.Generate()
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[string]bool)
	for id := range ids {
		require.False(t, seen[id], "duplicate id generated")
		seen[id] = true
	}
	assert.Len(t, seen, goroutines)
}

func TestFixedGenerator_Sequential(t *testing.T) {
	gen := NewFixedGenerator("req-1", "req-2")

	assert.Equal(t, "req-1", gen.Generate())
	assert.Equal(t, "req-2", gen.Generate())
	assert.Panics(t, func() { gen.Generate() })
}

func TestFixedGenerator_Empty(t *testing.T) {
	assert.Panics(t, func() { NewFixedGenerator().Generate() })
}

func TestEngine_RequestIDsInOrder(t *testing.T) {
	e := newTestEngine(t, "first", "second")

	res, err := e.Query(context.Background(), "MATCH (a:Person) RETURN a")
	require.NoError(t, err)
	assert.Equal(t, "first", res.RequestID)

	// Failed queries still consume an id.
	res, err = e.Query(context.Background(), "MATCH (")
	require.Error(t, err)
	assert.Equal(t, "second", res.RequestID)
}

func TestEngine_DefaultRequestIDsAreUUIDv7(t *testing.T) {
	deps := socialGraph(t)
	e := New(deps.Catalog, deps.Store)

	res, err := e.Query(context.Background(), "MATCH (a:Person) RETURN a")
	require.NoError(t, err)
	parsed, err := uuid.Parse(res.RequestID)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), parsed.Version())
}
