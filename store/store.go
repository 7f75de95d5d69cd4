// Package store keeps per-session key/value state handed from checkout to
// the confirmation page. Values live until the session ends.
package store

import (
	"context"
	"sync"
)

// KV is one session's key/value space
type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// Sessions hands out per-session KVs
type Sessions interface {
	Session(id string) KV
	End(ctx context.Context, id string) error
}

// MemorySessions keeps sessions in process memory
type MemorySessions struct {
	mu   sync.RWMutex
	data map[string]map[string]string
}

// NewMemorySessions creates an empty in-memory session store
func NewMemorySessions() *MemorySessions {
	return &MemorySessions{data: make(map[string]map[string]string)}
}

// Session returns the KV for id
func (m *MemorySessions) Session(id string) KV {
	return memoryKV{sessions: m, id: id}
}

// End discards everything stored for id
func (m *MemorySessions) End(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, id)
	return nil
}

type memoryKV struct {
	sessions *MemorySessions
	id       string
}

func (kv memoryKV) Get(_ context.Context, key string) (string, bool, error) {
	kv.sessions.mu.RLock()
	defer kv.sessions.mu.RUnlock()
	v, ok := kv.sessions.data[kv.id][key]
	return v, ok, nil
}

func (kv memoryKV) Set(_ context.Context, key, value string) error {
	kv.sessions.mu.Lock()
	defer kv.sessions.mu.Unlock()
	values, ok := kv.sessions.data[kv.id]
	if !ok {
		values = make(map[string]string)
		kv.sessions.data[kv.id] = values
	}
	values[key] = value
	return nil
}
