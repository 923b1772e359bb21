package freshness

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/nhle/activity-sync/internal/model"
)

// MarkerKey is the fixed storage key of the seen marker.
const MarkerKey = "seen-marker"

// MemoryStore keeps the marker in memory. It is safe for concurrent use.
type MemoryStore struct {
	mu     sync.Mutex
	marker *model.SeenMarker
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Get returns a copy of the stored marker.
func (s *MemoryStore) Get(_ context.Context) (*model.SeenMarker, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.marker == nil {
		return nil, nil
	}
	m := *s.marker
	return &m, nil
}

// Set replaces the stored marker.
func (s *MemoryStore) Set(_ context.Context, marker model.SeenMarker) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.marker = &marker
	return nil
}

// KV is a durable string key-value store such as the SQLite store or the
// OS keyring.
type KV interface {
	// GetValue returns the value for key. ok is false when key is absent.
	GetValue(ctx context.Context, key string) (value string, ok bool, err error)

	// SetValue stores value under key.
	SetValue(ctx context.Context, key, value string) error
}

// KVStore persists the marker as JSON ({"id": ..., "timestamp": millis})
// under a single key of a KV.
type KVStore struct {
	kv  KV
	key string
}

// NewKVStore creates a marker store on kv. An empty key uses MarkerKey.
func NewKVStore(kv KV, key string) *KVStore {
	if key == "" {
		key = MarkerKey
	}
	return &KVStore{kv: kv, key: key}
}

// Get reads and decodes the marker. An absent key or a record without an
// id yields nil; undecodable content is returned as an error.
func (s *KVStore) Get(ctx context.Context) (*model.SeenMarker, error) {
	raw, ok, err := s.kv.GetValue(ctx, s.key)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", s.key, err)
	}
	if !ok {
		return nil, nil
	}

	var rec model.SeenMarkerRecord
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", s.key, err)
	}
	if rec.ID == "" {
		return nil, nil
	}

	m := rec.Marker()
	return &m, nil
}

// Set encodes and writes the marker.
func (s *KVStore) Set(ctx context.Context, marker model.SeenMarker) error {
	data, err := json.Marshal(marker.Record())
	if err != nil {
		return fmt.Errorf("encoding %s: %w", s.key, err)
	}
	if err := s.kv.SetValue(ctx, s.key, string(data)); err != nil {
		return fmt.Errorf("writing %s: %w", s.key, err)
	}
	return nil
}
