package kv

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// MemoryStore is an in-process Store. Update holds an exclusive lock for the
// whole transaction, so writers are serialized.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string][]byte)}
}

func (s *MemoryStore) View(ctx context.Context, fn func(Reader) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(&memoryTx{store: s})
}

func (s *MemoryStore) Update(ctx context.Context, fn func(Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &memoryTx{store: s, staged: make(map[string][]byte)}
	if err := fn(tx); err != nil {
		return err
	}
	for k, v := range tx.staged {
		s.entries[k] = v
	}
	return nil
}

func (s *MemoryStore) Close() error { return nil }

// memoryTx reads through staged writes to the committed entries. The caller
// holds the store lock.
type memoryTx struct {
	store  *MemoryStore
	staged map[string][]byte
}

func (t *memoryTx) Get(ctx context.Context, key Key) ([]byte, bool, error) {
	k := key.String()
	if v, ok := t.staged[k]; ok {
		return clone(v), true, nil
	}
	v, ok := t.store.entries[k]
	if !ok {
		return nil, false, nil
	}
	return clone(v), true, nil
}

func (t *memoryTx) Set(ctx context.Context, key Key, value []byte) error {
	t.staged[key.String()] = clone(value)
	return nil
}

func (t *memoryTx) Scan(ctx context.Context, bucket string, fn func(key string, value []byte) error) error {
	prefix := BucketPrefix(bucket)
	merged := make(map[string][]byte)
	for k, v := range t.store.entries {
		if strings.HasPrefix(k, prefix) {
			merged[k] = v
		}
	}
	for k, v := range t.staged {
		if strings.HasPrefix(k, prefix) {
			merged[k] = v
		}
	}

	keys := make([]string, 0, len(merged))
	for k := range merged {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(k, clone(merged[k])); err != nil {
			return err
		}
	}
	return nil
}

func clone(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
