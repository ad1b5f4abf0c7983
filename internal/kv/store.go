// Package kv defines the durable key-value store the registries are persisted in.
package kv

import (
	"context"
	"encoding/json"
	"fmt"
)

// Reader reads entries from a store view or transaction.
type Reader interface {
	Get(ctx context.Context, key Key) ([]byte, bool, error)
	// Scan calls fn for every entry in bucket, in encoded key order. An empty
	// bucket scans the whole store.
	Scan(ctx context.Context, bucket string, fn func(key string, value []byte) error) error
}

// Tx is a read-write transaction. Writes are visible to later reads in the same
// transaction and to every caller once the transaction commits.
type Tx interface {
	Reader
	Set(ctx context.Context, key Key, value []byte) error
}

// Store is the durable map handed to the registries by the host.
// All application logic should depend only on this interface.
type Store interface {
	// View runs fn against a consistent read view.
	View(ctx context.Context, fn func(Reader) error) error
	// Update runs fn in a transaction. If fn returns an error nothing it wrote
	// is kept.
	Update(ctx context.Context, fn func(Tx) error) error
	Close() error
}

// GetJSON decodes the value at key into v and reports whether it existed.
func GetJSON(ctx context.Context, r Reader, key Key, v any) (bool, error) {
	data, ok, err := r.Get(ctx, key)
	if err != nil {
		return false, fmt.Errorf("get %s: %w", key, err)
	}
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

// SetJSON encodes v and stores it at key.
func SetJSON(ctx context.Context, tx Tx, key Key, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := tx.Set(ctx, key, data); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}
