// Package store provides the shared key-value store holding the serialized
// collections (admin credentials, API keys, entity types) under fixed keys.
//
// Collections are read and written whole: callers load the blob, modify it in
// memory, and write it back. There is no versioning or conditional write, so
// concurrent writers race and the last one wins. That is an accepted property
// of the design, not something this layer compensates for.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
)

// Fixed lookup keys for the persisted collections.
const (
	CredentialsKey   = "boron:credentials"
	APIKeysKey       = "boron:api_keys"
	EntityTypesKey   = "boron:entity_types"
	SessionSecretKey = "boron:session_secret"
)

// ErrNotFound is returned when a key holds no value.
var ErrNotFound = errors.New("key not found")

type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Close() error
}

type BadgerStore struct {
	db *badger.DB
}

// Open opens a persistent store at path, creating the directory as needed.
func Open(path string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open store at '%s': %w", path, err)
	}
	return &BadgerStore{db: db}, nil
}

// OpenInMemory opens a store with no disk persistence, for tests.
func OpenInMemory() (*BadgerStore, error) {
	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = nil
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open in-memory store: %w", err)
	}
	return &BadgerStore{db: db}, nil
}

func (s *BadgerStore) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrNotFound
			}
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return nil, err
	}
	return value, nil
}

func (s *BadgerStore) Set(ctx context.Context, key string, value []byte) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), value)
	})
}

func (s *BadgerStore) Close() error {
	return s.db.Close()
}
