package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/harrisonrobin/taskboard/pkg/config"
)

// ErrUnknownBackend is returned by Open for an unrecognised backend name.
var ErrUnknownBackend = errors.New("unknown storage backend")

// Slot is a small key/value store holding whole JSON documents, one per key.
type Slot interface {
	// Get returns the value stored under key. found is false when the key has
	// never been written.
	Get(key string) (value []byte, found bool, err error)
	Set(key string, value []byte) error
	Close() error
}

// Open returns the slot backend selected by cfg.
func Open(cfg config.StorageConfig) (Slot, error) {
	switch strings.ToLower(cfg.Backend) {
	case "", "file":
		return NewFileSlot(cfg.Path)
	case "sqlite":
		return NewSQLiteSlot(sqlitePath(cfg.Path))
	case "mongo", "mongodb":
		return NewMongoSlot(cfg.MongoURI, cfg.MongoDatabase, cfg.MongoCollection)
	case "memory":
		return NewMemorySlot(), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
}

// GetJSON decodes the document under key into v.
func GetJSON(s Slot, key string, v any) (bool, error) {
	raw, found, err := s.Get(key)
	if err != nil || !found {
		return found, err
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return true, fmt.Errorf("failed to decode %q: %w", key, err)
	}
	return true, nil
}

// SetJSON encodes v and stores it under key.
func SetJSON(s Slot, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %q: %w", key, err)
	}
	return s.Set(key, raw)
}
