package util

import (
	"fmt"
	"path/filepath"

	"github.com/dgraph-io/badger"
)

// OpenBadgerDB opens (creating if necessary) a badger database under
// a given data directory
func OpenBadgerDB(dataDir string) (*badger.DB, error) {
	if err := CreateDirectoryIfNotExists(dataDir, 0755); err != nil {
		return nil, err
	}

	opts := badger.DefaultOptions(filepath.Join(dataDir, "db"))
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}

	return db, nil
}

// CreateRandomBadgerDB opens a throwaway badger database, used for testing
func CreateRandomBadgerDB() (*badger.DB, string, error) {
	dbDir := fmt.Sprintf("/tmp/testdb-%s", NewULID())

	db, err := OpenBadgerDB(dbDir)
	if err != nil {
		return nil, "", err
	}

	return db, dbDir, nil
}
