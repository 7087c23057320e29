// Package rating owns a post's rating and the site-wide maximum rating.
package rating

import (
	"context"
	"encoding/json"
	"fmt"

	jsonpatch "github.com/evanphx/json-patch"

	"github.com/Clark-Hu/post-rating/internal/domain"
)

// MetaStore reads and writes scalar post metadata.
type MetaStore interface {
	Get(ctx context.Context, postID int64, key string) (string, bool, error)
	Set(ctx context.Context, postID int64, key, value string) error
}

// OptionsStore reads and writes named options records. Get returns a nil
// record when nothing is stored.
type OptionsStore interface {
	Get(ctx context.Context, name string) (domain.Options, error)
	Put(ctx context.Context, name string, value domain.Options) error
}

// Store is the single source of truth for ratings and the maximum rating.
type Store struct {
	meta    MetaStore
	options OptionsStore
}

// NewStore wires a Store to the host's metadata and options storage.
func NewStore(meta MetaStore, options OptionsStore) *Store {
	if meta == nil || options == nil {
		panic("rating: meta and options stores must not be nil")
	}
	return &Store{meta: meta, options: options}
}

// GetRating returns the post's rating (0 when unset or malformed) and the
// current maximum rating.
func (s *Store) GetRating(ctx context.Context, postID int64) (float64, float64, error) {
	raw, _, err := s.meta.Get(ctx, postID, domain.RatingMetaKey)
	if err != nil {
		return 0, 0, fmt.Errorf("read rating of post %d: %w", postID, err)
	}
	maximum, err := s.MaximumRating(ctx)
	if err != nil {
		return 0, 0, err
	}
	return ParseFloat(raw), maximum, nil
}

// Rating is GetRating packed into a domain.Rating.
func (s *Store) Rating(ctx context.Context, postID int64) (domain.Rating, error) {
	value, maximum, err := s.GetRating(ctx, postID)
	if err != nil {
		return domain.Rating{}, err
	}
	return domain.Rating{PostID: postID, Value: value, Maximum: maximum}, nil
}

// MaximumRating returns the configured maximum, or the default when it is
// absent, empty or zero. Negative values are returned as stored.
func (s *Store) MaximumRating(ctx context.Context) (float64, error) {
	options, err := s.Options(ctx)
	if err != nil {
		return 0, err
	}
	maximum := StoredMaximum(options)
	if maximum == 0 {
		return domain.DefaultMaximumRating, nil
	}
	return maximum, nil
}

// SetRating overwrites the post's rating. The value is not checked against
// the maximum.
func (s *Store) SetRating(ctx context.Context, postID int64, value float64) error {
	if err := s.meta.Set(ctx, postID, domain.RatingMetaKey, EncodeNumber(value)); err != nil {
		return fmt.Errorf("write rating of post %d: %w", postID, err)
	}
	return nil
}

// Options returns the plugin's options record, never nil.
func (s *Store) Options(ctx context.Context) (domain.Options, error) {
	options, err := s.options.Get(ctx, domain.OptionsName)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", domain.OptionsName, err)
	}
	if options.IsEmpty() {
		return domain.EmptyOptions, nil
	}
	return options, nil
}

// SaveOptions persists the plugin's options record.
func (s *Store) SaveOptions(ctx context.Context, options domain.Options) error {
	if err := s.options.Put(ctx, domain.OptionsName, options); err != nil {
		return fmt.Errorf("write %s: %w", domain.OptionsName, err)
	}
	return nil
}

// SetMaximumRating returns current with only the maximum rating replaced.
// Every other field is carried over unchanged.
func SetMaximumRating(current domain.Options, value float64) (domain.Options, error) {
	patch, err := json.Marshal(map[string]float64{domain.MaximumRatingField: value})
	if err != nil {
		return nil, fmt.Errorf("encode maximum rating: %w", err)
	}
	merged, err := jsonpatch.MergePatch(objectOrEmpty(current), patch)
	if err != nil {
		return nil, fmt.Errorf("merge maximum rating: %w", err)
	}
	return domain.Options(merged), nil
}

// StoredMaximum reads the maximum rating field as stored, coercing strings
// and other JSON values the same way submitted input is coerced.
func StoredMaximum(options domain.Options) float64 {
	raw, ok := options.Field(domain.MaximumRatingField)
	if !ok {
		return 0
	}
	var value interface{}
	if err := json.Unmarshal(raw, &value); err != nil {
		return 0
	}
	switch v := value.(type) {
	case float64:
		return v
	case string:
		return ParseFloat(v)
	case bool:
		if v {
			return 1
		}
	}
	return 0
}

// objectOrEmpty substitutes {} for records that are not JSON objects so the
// merge never replaces the whole document.
func objectOrEmpty(options domain.Options) []byte {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(options.Bytes(), &fields); err != nil || fields == nil {
		return []byte(domain.EmptyOptions)
	}
	return options.Bytes()
}
