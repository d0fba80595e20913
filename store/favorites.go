package store

import (
	"context"
	"encoding/json"
	"fmt"
)

// FavoritesRepository stores the favorites set as a JSON array of event ids
// in a single slot.
type FavoritesRepository struct {
	kv  KVStore
	key string
}

func NewFavoritesRepository(kv KVStore, key string) *FavoritesRepository {
	return &FavoritesRepository{kv: kv, key: key}
}

// Load returns the stored ids. A missing slot is an empty list. A slot that
// does not decode as a string array returns an empty list and an error
// wrapping ErrCorruptedValue.
func (r *FavoritesRepository) Load(ctx context.Context) ([]string, error) {
	raw, found, err := r.kv.Get(ctx, r.key)
	if err != nil {
		return []string{}, fmt.Errorf("failed to read favorites: %w", err)
	}
	if !found || raw == "" {
		return []string{}, nil
	}

	var ids []string
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		return []string{}, fmt.Errorf("%w: %v", ErrCorruptedValue, err)
	}
	if ids == nil {
		ids = []string{}
	}
	return ids, nil
}

// Save replaces the stored ids.
func (r *FavoritesRepository) Save(ctx context.Context, ids []string) error {
	if ids == nil {
		ids = []string{}
	}
	raw, err := json.Marshal(ids)
	if err != nil {
		return fmt.Errorf("failed to encode favorites: %w", err)
	}
	if err := r.kv.Set(ctx, r.key, string(raw)); err != nil {
		return fmt.Errorf("failed to write favorites: %w", err)
	}
	return nil
}

// Ping checks the backend.
func (r *FavoritesRepository) Ping(ctx context.Context) error {
	return r.kv.Ping(ctx)
}
