// Package checkpoint provides named-blob persistence for model state. A
// model checkpoint is a matched set of independently named blobs (learned
// core parameters plus one blob per normalizer); the set is written and
// read as a logical unit, and a partial set fails at load time.
package checkpoint

import (
	"context"
	"errors"
	"fmt"
	"sort"
)

// ErrNotFound is returned by Get when no blob exists under the key.
var ErrNotFound = errors.New("checkpoint: blob not found")

// Store persists opaque blobs under string keys.
type Store interface {
	// Put writes a blob, replacing any existing blob under the same key.
	Put(ctx context.Context, key string, blob []byte) error

	// Get returns the blob stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// List returns all stored keys in lexicographic order.
	List(ctx context.Context) ([]string, error)

	// Delete removes the blob under key. Deleting an absent key is not an
	// error.
	Delete(ctx context.Context, key string) error

	// Close releases any underlying resources.
	Close() error
}

// PutSet writes a matched set of blobs. Keys are written in lexicographic
// order for determinism; the first failure aborts the write.
func PutSet(ctx context.Context, s Store, blobs map[string][]byte) error {
	keys := sortedKeys(blobs)
	for _, key := range keys {
		if err := s.Put(ctx, key, blobs[key]); err != nil {
			return fmt.Errorf("checkpoint: writing %q: %w", key, err)
		}
	}
	return nil
}

// GetSet reads a matched set of blobs. Every requested key must be present;
// a missing blob means the checkpoint is partial and the whole load fails.
func GetSet(ctx context.Context, s Store, keys []string) (map[string][]byte, error) {
	out := make(map[string][]byte, len(keys))
	for _, key := range keys {
		blob, err := s.Get(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("checkpoint: reading %q: %w", key, err)
		}
		out[key] = blob
	}
	return out, nil
}

func sortedKeys(m map[string][]byte) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
