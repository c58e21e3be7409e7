package session

import (
	"context"
	"errors"
	"sync"

	"github.com/spec-kit/market-portal/internal/domain"
)

// ErrNotFound is returned by Storage.Load when nothing is mirrored under the key.
var ErrNotFound = errors.New("session record not found")

// Record is the durable mirror of a session. An empty Role means resolution is pending.
type Record struct {
	Token string      `json:"token"`
	Role  domain.Role `json:"role,omitempty"`
}

// Storage mirrors session records durably. Save writes token and role together.
type Storage interface {
	Load(ctx context.Context, key string) (Record, error)
	Save(ctx context.Context, key string, rec Record) error
	Clear(ctx context.Context, key string) error
}

// MemoryStorage keeps records in process memory.
type MemoryStorage struct {
	mu      sync.RWMutex
	records map[string]Record
}

// NewMemoryStorage creates an empty in-memory storage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{records: make(map[string]Record)}
}

func (m *MemoryStorage) Load(_ context.Context, key string) (Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.records[key]
	if !ok {
		return Record{}, ErrNotFound
	}
	return rec, nil
}

func (m *MemoryStorage) Save(_ context.Context, key string, rec Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[key] = rec
	return nil
}

func (m *MemoryStorage) Clear(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.records, key)
	return nil
}
