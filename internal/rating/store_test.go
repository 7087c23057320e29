package rating

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Clark-Hu/post-rating/internal/domain"
)

type memoryMeta struct {
	values map[int64]map[string]string
	err    error
}

func newMemoryMeta() *memoryMeta {
	return &memoryMeta{values: make(map[int64]map[string]string)}
}

func (m *memoryMeta) Get(_ context.Context, postID int64, key string) (string, bool, error) {
	if m.err != nil {
		return "", false, m.err
	}
	v, ok := m.values[postID][key]
	return v, ok, nil
}

func (m *memoryMeta) Set(_ context.Context, postID int64, key, value string) error {
	if m.err != nil {
		return m.err
	}
	if m.values[postID] == nil {
		m.values[postID] = make(map[string]string)
	}
	m.values[postID][key] = value
	return nil
}

type memoryOptions struct {
	records map[string]domain.Options
}

func newMemoryOptions() *memoryOptions {
	return &memoryOptions{records: make(map[string]domain.Options)}
}

func (m *memoryOptions) Get(_ context.Context, name string) (domain.Options, error) {
	return m.records[name], nil
}

func (m *memoryOptions) Put(_ context.Context, name string, value domain.Options) error {
	m.records[name] = value
	return nil
}

func newTestStore() (*Store, *memoryMeta, *memoryOptions) {
	meta := newMemoryMeta()
	options := newMemoryOptions()
	return NewStore(meta, options), meta, options
}

func TestNewStoreRequiresDependencies(t *testing.T) {
	assert.Panics(t, func() { NewStore(nil, newMemoryOptions()) })
	assert.Panics(t, func() { NewStore(newMemoryMeta(), nil) })
}

func TestGetRatingUnsetPost(t *testing.T) {
	store, _, _ := newTestStore()

	value, maximum, err := store.GetRating(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, 0.0, value)
	assert.Equal(t, 5.0, maximum)
}

func TestGetRatingMalformedValue(t *testing.T) {
	store, meta, _ := newTestStore()
	require.NoError(t, meta.Set(context.Background(), 1, domain.RatingMetaKey, "not a number"))

	value, _, err := store.GetRating(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 0.0, value)
}

func TestSetRatingRoundTrip(t *testing.T) {
	store, _, options := newTestStore()
	options.records[domain.OptionsName] = domain.Options(`{"maximum_rating": 5}`)
	ctx := context.Background()

	for _, v := range []float64{0, 0.1, 3.5, 7, 1234.5678, -2, 1.0 / 3, 2.718281828459045, 123456789.12345679, 1e21, 5e-324} {
		require.NoError(t, store.SetRating(ctx, 9, v))
		got, maximum, err := store.GetRating(ctx, 9)
		require.NoError(t, err)
		assert.Equal(t, v, got, "rating above the maximum is kept")
		assert.Equal(t, 5.0, maximum)
	}
}

func TestSetRatingStorageError(t *testing.T) {
	store, meta, _ := newTestStore()
	meta.err = errors.New("boom")

	err := store.SetRating(context.Background(), 3, 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, meta.err)

	_, _, err = store.GetRating(context.Background(), 3)
	assert.ErrorIs(t, err, meta.err)
}

func TestMaximumRating(t *testing.T) {
	tests := []struct {
		name   string
		record domain.Options
		want   float64
	}{
		{"absent record", nil, 5},
		{"empty object", domain.Options(`{}`), 5},
		{"null field", domain.Options(`{"maximum_rating": null}`), 5},
		{"empty string", domain.Options(`{"maximum_rating": ""}`), 5},
		{"zero", domain.Options(`{"maximum_rating": 0}`), 5},
		{"zero string", domain.Options(`{"maximum_rating": "0.0"}`), 5},
		{"stored number", domain.Options(`{"maximum_rating": 10}`), 10},
		{"stored string", domain.Options(`{"maximum_rating": "7.5"}`), 7.5},
		{"negative kept", domain.Options(`{"maximum_rating": -3}`), -3},
		{"not an object", domain.Options(`[1,2]`), 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, _, options := newTestStore()
			if tt.record != nil {
				options.records[domain.OptionsName] = tt.record
			}
			got, err := store.MaximumRating(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSetMaximumRatingPreservesOtherFields(t *testing.T) {
	current := domain.Options(`{"maximum_rating": 5, "theme": "dark", "nested": {"a": [1, 2]}}`)

	updated, err := SetMaximumRating(current, 10)
	require.NoError(t, err)
	assert.JSONEq(t, `{"maximum_rating": 10, "theme": "dark", "nested": {"a": [1, 2]}}`, string(updated))
}

func TestSetMaximumRatingOnEmptyRecord(t *testing.T) {
	for _, current := range []domain.Options{nil, domain.Options(`null`), domain.Options(`"scalar"`)} {
		updated, err := SetMaximumRating(current, 2.5)
		require.NoError(t, err)
		assert.JSONEq(t, `{"maximum_rating": 2.5}`, string(updated))
	}
}

func TestNonNumericMaximumFallsBackToDefault(t *testing.T) {
	store, _, _ := newTestStore()
	ctx := context.Background()

	current, err := store.Options(ctx)
	require.NoError(t, err)
	updated, err := SetMaximumRating(current, ParseFloat("abc"))
	require.NoError(t, err)
	require.NoError(t, store.SaveOptions(ctx, updated))

	assert.Equal(t, 0.0, StoredMaximum(updated))
	maximum, err := store.MaximumRating(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5.0, maximum)
}
