package quota

import (
	"context"
	"errors"
	"fmt"

	"github.com/kailas-cloud/kidprint/internal/db"
	"github.com/kailas-cloud/kidprint/internal/domain/usage"
)

// kvStore is the consumer interface for key-value operations (ISP).
type kvStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Ping(ctx context.Context) error
}

// KVStore keeps the quota state as one JSON value in Valkey/Redis.
type KVStore struct {
	store kvStore
	key   string
}

// NewKVStore creates a key-value backed store under key.
func NewKVStore(s kvStore, key string) *KVStore {
	return &KVStore{store: s, key: key}
}

// Load reads the state. A missing key yields an empty state.
func (s *KVStore) Load(ctx context.Context) (usage.State, error) {
	data, err := s.store.Get(ctx, s.key)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return usage.NewState(), nil
		}
		return usage.State{}, fmt.Errorf("quota GET %s: %w", s.key, err)
	}
	return decodeState(data)
}

// Save writes the whole state.
func (s *KVStore) Save(ctx context.Context, state usage.State) error {
	data, err := encodeState(state)
	if err != nil {
		return err
	}
	if err := s.store.Set(ctx, s.key, data); err != nil {
		return fmt.Errorf("quota SET %s: %w", s.key, err)
	}
	return nil
}

// Ping checks backend connectivity.
func (s *KVStore) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}
