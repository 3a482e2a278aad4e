package binding

import (
	"context"

	"github.com/dgraph-io/badger"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var recordKey = []byte("vehicle_binding")

type defaultStore struct {
	db *badger.DB
}

// NewDefaultStore initializes a badger-backed binding store
func NewDefaultStore(db *badger.DB) (Store, error) {
	if db == nil {
		return nil, ErrNilDatabase
	}

	return &defaultStore{db}, nil
}

func (s *defaultStore) Put(ctx context.Context, r Record) error {
	if err := r.Validate(); err != nil {
		return err
	}

	buf, err := json.Marshal(r)
	if err != nil {
		return errors.Wrap(err, "failed to marshal binding record")
	}

	return s.db.Update(func(tx *badger.Txn) error {
		return tx.Set(recordKey, buf)
	})
}

func (s *defaultStore) Get(ctx context.Context) (r Record, err error) {
	err = s.db.View(func(tx *badger.Txn) error {
		item, err := tx.Get(recordKey)
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return ErrRecordNotFound
			}

			return err
		}

		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &r)
		})
	})

	if err != nil {
		return r, err
	}

	return r, nil
}

func (s *defaultStore) Delete(ctx context.Context) error {
	return s.db.Update(func(tx *badger.Txn) error {
		if err := tx.Delete(recordKey); err != nil && err != badger.ErrKeyNotFound {
			return err
		}

		return nil
	})
}
