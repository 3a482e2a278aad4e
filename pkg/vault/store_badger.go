package vault

import (
	"context"
	"strings"

	"github.com/dgraph-io/badger"
	"github.com/pkg/errors"
)

type defaultStore struct {
	db *badger.DB
}

// NewDefaultStore initializes a badger-backed store
func NewDefaultStore(db *badger.DB) (Store, error) {
	if db == nil {
		return nil, ErrNilDatabase
	}

	return &defaultStore{db}, nil
}

func (s *defaultStore) Put(ctx context.Context, key string, value []byte) error {
	if strings.TrimSpace(key) == "" {
		return ErrEmptyKey
	}

	return s.db.Update(func(tx *badger.Txn) error {
		return tx.Set([]byte(key), value)
	})
}

func (s *defaultStore) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte

	err := s.db.View(func(tx *badger.Txn) error {
		item, err := tx.Get([]byte(key))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return ErrEntryNotFound
			}

			return err
		}

		// copying value out of the transaction
		return item.Value(func(val []byte) error {
			value = append(value, val...)

			return nil
		})
	})

	if err != nil {
		if err == ErrEntryNotFound {
			return nil, err
		}

		return nil, errors.Wrapf(err, "failed to get vault entry: %s", key)
	}

	return value, nil
}

func (s *defaultStore) Delete(ctx context.Context, key string) error {
	return s.db.Update(func(tx *badger.Txn) error {
		return tx.Delete([]byte(key))
	})
}
