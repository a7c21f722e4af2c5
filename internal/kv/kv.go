// Package kv persists JSON snapshots under string keys.
//
// The store is a warm-start cache, never the source of truth. Each key lives
// in its own file as an envelope carrying an xxhash64 checksum of the payload,
// so a truncated or hand-edited file reads as ErrCorrupt instead of as
// plausible-looking data.
package kv

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"sync"

	"github.com/cespare/xxhash/v2"
)

var (
	// ErrNotFound reports a key with no stored snapshot.
	ErrNotFound = errors.New("kv: key not found")
	// ErrCorrupt reports a snapshot that failed to parse or verify.
	ErrCorrupt = errors.New("kv: snapshot corrupt")
)

// Store is the key-value surface the preference cache persists through.
type Store interface {
	Get(key string, dest any) error
	Set(key string, value any) error
	Delete(key string) error
}

var _ Store = (*FileStore)(nil)

var keyPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

type envelope struct {
	Checksum string          `json:"checksum"`
	Data     json.RawMessage `json:"data"`
}

// FileStore keeps one <key>.json file per key under Dir.
type FileStore struct {
	dir string
	mu  sync.Mutex
}

// NewFileStore creates dir if needed and returns a store rooted there.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("kv dir is empty")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create kv dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// Dir returns the directory backing the store.
func (s *FileStore) Dir() string {
	return s.dir
}

// Get decodes the snapshot stored under key into dest.
func (s *FileStore) Get(key string, dest any) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}

	s.mu.Lock()
	data, err := os.ReadFile(path)
	s.mu.Unlock()
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ErrNotFound
		}
		return fmt.Errorf("read %s: %w", key, err)
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrCorrupt, key, err)
	}
	if env.Checksum != checksum(env.Data) {
		return fmt.Errorf("%w: %s: checksum mismatch", ErrCorrupt, key)
	}
	if err := json.Unmarshal(env.Data, dest); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrCorrupt, key, err)
	}
	return nil
}

// Set replaces the snapshot under key. The write is atomic.
func (s *FileStore) Set(key string, value any) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}

	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	data, err := json.Marshal(envelope{Checksum: checksum(payload), Data: payload})
	if err != nil {
		return fmt.Errorf("marshal %s envelope: %w", key, err)
	}
	data = append(data, '\n')

	s.mu.Lock()
	defer s.mu.Unlock()

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("persist %s: %w", key, err)
	}
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (s *FileStore) Delete(key string) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

func (s *FileStore) path(key string) (string, error) {
	if !keyPattern.MatchString(key) {
		return "", fmt.Errorf("invalid kv key %q", key)
	}
	return filepath.Join(s.dir, key+".json"), nil
}

func checksum(data []byte) string {
	return strconv.FormatUint(xxhash.Sum64(data), 16)
}
