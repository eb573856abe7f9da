package quota

import (
	"context"

	"github.com/kailas-cloud/kidprint/internal/db"
)

// mockKVStore implements the consumer interface for tests.
type mockKVStore struct {
	data    map[string][]byte
	getErr  error
	setErr  error
	pingErr error
	sets    int
}

func newMockKVStore() *mockKVStore {
	return &mockKVStore{data: make(map[string][]byte)}
}

func (m *mockKVStore) Get(_ context.Context, key string) ([]byte, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	v, ok := m.data[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return v, nil
}

func (m *mockKVStore) Set(_ context.Context, key string, value []byte) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.sets++
	m.data[key] = value
	return nil
}

func (m *mockKVStore) Ping(_ context.Context) error { return m.pingErr }
