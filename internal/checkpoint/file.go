package checkpoint

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// FileStore implements Store with one JSON-framed file per blob under a
// checkpoint directory. Thread-safe for concurrent access.
type FileStore struct {
	mu  sync.RWMutex
	dir string
}

// blobFile is the on-disk frame around a blob. The payload is base64 so the
// frame stays valid JSON regardless of blob content.
type blobFile struct {
	Key       string `json:"key"`
	Payload   string `json:"payload"`
	UpdatedAt string `json:"updated_at"`
}

const blobExt = ".ckpt.json"

// NewFileStore creates a FileStore rooted at dir, creating it if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("checkpoint: creating directory %s: %w", dir, err)
	}
	return &FileStore{dir: dir}, nil
}

// Put writes a blob. The file is written to a temp path and renamed so a
// crash never leaves a truncated blob under the real key.
func (s *FileStore) Put(ctx context.Context, key string, blob []byte) error {
	if err := validateKey(key); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	frame := blobFile{
		Key:       key,
		Payload:   base64.StdEncoding.EncodeToString(blob),
		UpdatedAt: time.Now().UTC().Format(time.RFC3339Nano),
	}
	data, err := json.Marshal(frame)
	if err != nil {
		return fmt.Errorf("checkpoint: encoding %q: %w", key, err)
	}

	path := s.path(key)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("checkpoint: writing %q: %w", key, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("checkpoint: committing %q: %w", key, err)
	}
	return nil
}

// Get returns the blob stored under key.
func (s *FileStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %q", ErrNotFound, key)
		}
		return nil, fmt.Errorf("checkpoint: reading %q: %w", key, err)
	}
	var frame blobFile
	if err := json.Unmarshal(data, &frame); err != nil {
		return nil, fmt.Errorf("checkpoint: decoding %q: %w", key, err)
	}
	blob, err := base64.StdEncoding.DecodeString(frame.Payload)
	if err != nil {
		return nil, fmt.Errorf("checkpoint: decoding payload of %q: %w", key, err)
	}
	return blob, nil
}

// List returns all stored keys in lexicographic order.
func (s *FileStore) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("checkpoint: listing %s: %w", s.dir, err)
	}
	var keys []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, blobExt) {
			continue
		}
		keys = append(keys, strings.TrimSuffix(name, blobExt))
	}
	sort.Strings(keys)
	return keys, nil
}

// Delete removes the blob under key. Absent keys are ignored.
func (s *FileStore) Delete(ctx context.Context, key string) error {
	if err := validateKey(key); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path(key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("checkpoint: deleting %q: %w", key, err)
	}
	return nil
}

// Close is a no-op for the file backend.
func (s *FileStore) Close() error { return nil }

func (s *FileStore) path(key string) string {
	return filepath.Join(s.dir, key+blobExt)
}

// validateKey rejects keys that would escape the checkpoint directory or
// collide with the framing extension.
func validateKey(key string) error {
	if key == "" {
		return fmt.Errorf("checkpoint: empty key")
	}
	if strings.ContainsAny(key, "/\\") || strings.Contains(key, "..") {
		return fmt.Errorf("checkpoint: invalid key %q", key)
	}
	return nil
}
