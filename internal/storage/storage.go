package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/frenow/rocketshoes-cart/internal/domain"
)

// ErrKeyNotFound is returned by Storage.Get when the key has never been set
// (or has expired).
var ErrKeyNotFound = errors.New("storage: key not found")

// Storage is a string key-value store. Set overwrites the whole value.
type Storage interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}

// SnapshotRepository persists the cart as a JSON array of products under a
// single key.
type SnapshotRepository struct {
	store Storage
	key   string
}

// NewSnapshotRepository creates a repository for the snapshot stored at key.
func NewSnapshotRepository(store Storage, key string) *SnapshotRepository {
	return &SnapshotRepository{store: store, key: key}
}

// Key returns the storage key of the snapshot.
func (r *SnapshotRepository) Key() string {
	return r.key
}

// Load decodes the stored snapshot. A missing key yields an empty cart; a
// snapshot that does not decode or breaks the cart invariants is an error.
func (r *SnapshotRepository) Load(ctx context.Context) (domain.Cart, error) {
	raw, err := r.store.Get(ctx, r.key)
	if err != nil {
		if errors.Is(err, ErrKeyNotFound) {
			return domain.Cart{}, nil
		}
		return nil, fmt.Errorf("get snapshot %q: %w", r.key, err)
	}

	var cart domain.Cart
	if err := json.Unmarshal([]byte(raw), &cart); err != nil {
		return nil, fmt.Errorf("decode snapshot %q: %w", r.key, err)
	}
	if err := cart.Validate(); err != nil {
		return nil, fmt.Errorf("snapshot %q: %w", r.key, err)
	}
	return cart.Clone(), nil
}

// Save encodes cart and overwrites the snapshot.
func (r *SnapshotRepository) Save(ctx context.Context, cart domain.Cart) error {
	data, err := json.Marshal(cart.Clone())
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := r.store.Set(ctx, r.key, string(data)); err != nil {
		return fmt.Errorf("set snapshot %q: %w", r.key, err)
	}
	return nil
}
