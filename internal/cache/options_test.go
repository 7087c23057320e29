package cache

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Clark-Hu/post-rating/internal/domain"
)

type memoryBackend struct {
	records map[string]domain.Options
	gets    int
}

func (m *memoryBackend) Get(_ context.Context, name string) (domain.Options, error) {
	m.gets++
	return m.records[name], nil
}

func (m *memoryBackend) Put(_ context.Context, name string, value domain.Options) error {
	m.records[name] = value
	return nil
}

type memoryCache struct {
	values  map[string][]byte
	failSet bool
	failGet bool
}

func (m *memoryCache) Get(_ context.Context, key string, dest any) error {
	if m.failGet {
		return errors.New("redis down")
	}
	raw, ok := m.values[key]
	if !ok {
		return ErrMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memoryCache) Set(_ context.Context, key string, value any, _ time.Duration) error {
	if m.failSet {
		return errors.New("redis down")
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.values[key] = raw
	return nil
}

func (m *memoryCache) Delete(_ context.Context, key string) error {
	delete(m.values, key)
	return nil
}

func newFixture() (*CachedOptions, *memoryBackend, *memoryCache) {
	backend := &memoryBackend{records: map[string]domain.Options{}}
	store := &memoryCache{values: map[string][]byte{}}
	return NewCachedOptions(backend, store, time.Minute, zap.NewNop()), backend, store
}

func TestCachedOptionsReadThrough(t *testing.T) {
	cached, backend, _ := newFixture()
	ctx := context.Background()
	backend.records["opts"] = domain.Options(`{"maximum_rating":10}`)

	for i := 0; i < 3; i++ {
		got, err := cached.Get(ctx, "opts")
		require.NoError(t, err)
		assert.JSONEq(t, `{"maximum_rating":10}`, string(got))
	}
	assert.Equal(t, 1, backend.gets)
}

func TestCachedOptionsDoesNotCacheAbsentRecords(t *testing.T) {
	cached, backend, store := newFixture()
	ctx := context.Background()

	got, err := cached.Get(ctx, "opts")
	require.NoError(t, err)
	assert.True(t, got.IsEmpty())
	assert.Empty(t, store.values)

	require.NoError(t, cached.Put(ctx, "opts", domain.Options(`{"maximum_rating":3}`)))
	got, err = cached.Get(ctx, "opts")
	require.NoError(t, err)
	assert.JSONEq(t, `{"maximum_rating":3}`, string(got))
	assert.Equal(t, 1, backend.gets)
}

func TestCachedOptionsWriteThrough(t *testing.T) {
	cached, backend, _ := newFixture()
	ctx := context.Background()
	backend.records["opts"] = domain.Options(`{"maximum_rating":10}`)

	_, err := cached.Get(ctx, "opts")
	require.NoError(t, err)
	require.NoError(t, cached.Put(ctx, "opts", domain.Options(`{"maximum_rating":4}`)))

	got, err := cached.Get(ctx, "opts")
	require.NoError(t, err)
	assert.JSONEq(t, `{"maximum_rating":4}`, string(got))
	assert.JSONEq(t, `{"maximum_rating":4}`, string(backend.records["opts"]))
}

func TestCachedOptionsSurvivesCacheFailures(t *testing.T) {
	cached, backend, store := newFixture()
	ctx := context.Background()
	backend.records["opts"] = domain.Options(`{"maximum_rating":8}`)
	store.values[optionsKey("opts")] = []byte(`{"maximum_rating":1}`)
	store.failGet = true
	store.failSet = true

	got, err := cached.Get(ctx, "opts")
	require.NoError(t, err)
	assert.JSONEq(t, `{"maximum_rating":8}`, string(got))

	require.NoError(t, cached.Put(ctx, "opts", domain.Options(`{"maximum_rating":9}`)))
	_, stale := store.values[optionsKey("opts")]
	assert.False(t, stale, "failed update must evict the stale entry")
}

// TestRedisRoundTrip runs against a real Redis when REDIS_ADDR is provided.
func TestRedisRoundTrip(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not provided")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	c, err := New(ctx, WithAddress(addr), WithPrefix("post-rating-test:"))
	require.NoError(t, err)
	defer c.Close()

	var dest domain.Options
	require.NoError(t, c.Delete(ctx, "roundtrip"))
	assert.ErrorIs(t, c.Get(ctx, "roundtrip", &dest), ErrMiss)

	require.NoError(t, c.Set(ctx, "roundtrip", domain.Options(`{"a":1}`), time.Minute))
	require.NoError(t, c.Get(ctx, "roundtrip", &dest))
	assert.JSONEq(t, `{"a":1}`, string(dest))
}
