package freshness

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/activity-sync/internal/model"
)

// mapKV is an in-memory KV used to exercise KVStore.
type mapKV struct {
	values map[string]string
	err    error
}

func newMapKV() *mapKV {
	return &mapKV{values: make(map[string]string)}
}

func (m *mapKV) GetValue(_ context.Context, key string) (string, bool, error) {
	if m.err != nil {
		return "", false, m.err
	}
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *mapKV) SetValue(_ context.Context, key, value string) error {
	if m.err != nil {
		return m.err
	}
	m.values[key] = value
	return nil
}

func TestKVStore_WireFormat(t *testing.T) {
	ctx := context.Background()
	kv := newMapKV()
	s := NewKVStore(kv, "")

	observed := time.UnixMilli(1704103200000)
	require.NoError(t, s.Set(ctx, model.SeenMarker{LastSeenEventID: "evt-1", ObservedAt: observed}))
	assert.JSONEq(t, `{"id":"evt-1","timestamp":1704103200000}`, kv.values[MarkerKey])

	m, err := s.Get(ctx)
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, "evt-1", m.LastSeenEventID)
	assert.True(t, observed.Equal(m.ObservedAt))
}

func TestKVStore_AbsentKey(t *testing.T) {
	m, err := NewKVStore(newMapKV(), "custom").Get(context.Background())
	require.NoError(t, err)
	assert.Nil(t, m)
}

func TestKVStore_CorruptValue(t *testing.T) {
	kv := newMapKV()
	kv.values[MarkerKey] = "{not json"

	_, err := NewKVStore(kv, "").Get(context.Background())
	assert.Error(t, err)
}

func TestKVStore_EmptyID(t *testing.T) {
	kv := newMapKV()
	kv.values[MarkerKey] = `{"timestamp":5}`

	m, err := NewKVStore(kv, "").Get(context.Background())
	require.NoError(t, err)
	assert.Nil(t, m)
}

func TestKVStore_PropagatesKVErrors(t *testing.T) {
	kv := newMapKV()
	kv.err = errors.New("locked")
	s := NewKVStore(kv, "")

	_, err := s.Get(context.Background())
	assert.ErrorIs(t, err, kv.err)
	assert.ErrorIs(t, s.Set(context.Background(), model.SeenMarker{LastSeenEventID: "x"}), kv.err)
}

func TestTracker_CorruptStoredMarkerIsUnseen(t *testing.T) {
	ctx := context.Background()
	kv := newMapKV()
	kv.values[MarkerKey] = "garbage"
	tr := NewTracker(NewKVStore(kv, ""), nil)

	assert.True(t, tr.Evaluate(ctx, "evt-9", t0))
	assert.JSONEq(t, `{"id":"evt-9","timestamp":1704103200000}`, kv.values[MarkerKey])
}

func TestMemoryStore_ReturnsCopy(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	require.NoError(t, s.Set(ctx, model.SeenMarker{LastSeenEventID: "a", ObservedAt: t0}))

	m, err := s.Get(ctx)
	require.NoError(t, err)
	m.LastSeenEventID = "mutated"

	again, err := s.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "a", again.LastSeenEventID)
}
