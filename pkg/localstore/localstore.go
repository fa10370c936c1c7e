// Package localstore is the device-local key/value store backing the claim cache.
package localstore

import (
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"go.uber.org/zap"

	"github.com/jakechorley/gift-registry/pkg/errors"
)

// Store is a string key/value store on badger
type Store struct {
	db     *badger.DB
	logger *zap.Logger
}

// Open opens (or creates) the store under dir
func Open(dir string, logger *zap.Logger) (*Store, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil      // Disable Badger's internal logging
	opts.SyncWrites = true // A claim must survive the process exiting right after

	return open(opts, logger)
}

// OpenInMemory opens a store that lives only as long as the process
func OpenInMemory(logger *zap.Logger) (*Store, error) {
	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = nil

	return open(opts, logger)
}

func open(opts badger.Options, logger *zap.Logger) (*Store, error) {
	db, err := badger.Open(opts)
	if err != nil {
		return nil, errors.Persistence(err, "failed to open local store")
	}

	logger.Debug("Local store opened", zap.String("dir", opts.Dir), zap.Bool("in_memory", opts.InMemory))

	return &Store{db: db, logger: logger}, nil
}

// Close closes the underlying database
func (s *Store) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("failed to close local store: %w", err)
	}
	return nil
}

// Get returns the value for key; ok is false when the key is absent
func (s *Store) Get(key string) (value string, ok bool, err error) {
	err = s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			value = string(val)
			return nil
		})
	})

	if errors.Is(err, badger.ErrKeyNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.Persistence(err, fmt.Sprintf("failed to read %s", key))
	}
	return value, true, nil
}

// Set stores value under key
func (s *Store) Set(key, value string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), []byte(value))
	})
	if err != nil {
		return errors.Persistence(err, fmt.Sprintf("failed to write %s", key))
	}
	return nil
}

// Delete removes key; deleting an absent key is not an error
func (s *Store) Delete(key string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
	if err != nil {
		return errors.Persistence(err, fmt.Sprintf("failed to delete %s", key))
	}
	return nil
}
