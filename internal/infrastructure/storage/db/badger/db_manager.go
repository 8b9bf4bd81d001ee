package dbbadger

import (
	"fmt"
	"path/filepath"

	"github.com/dgraph-io/badger/v3"
	"github.com/dgraph-io/badger/v3/options"
	"github.com/tdex-network/utxo-connector/internal/core/ports"
	"github.com/timshannon/badgerhold/v4"
)

const locksDbLocation = "locks"

// DbManager holds the badgerhold store where the locked utxos of all chains
// are persisted.
type DbManager struct {
	Store *badgerhold.Store
}

// NewDbManager opens (or creates if not exists) the badger store on disk. It
// expects a base data dir and an optional logger. An empty dir opens an in
// memory store.
func NewDbManager(baseDbDir string, logger badger.Logger) (*DbManager, error) {
	dbDir := ""
	if baseDbDir != "" {
		dbDir = filepath.Join(baseDbDir, locksDbLocation)
	}

	store, err := createDb(dbDir, logger)
	if err != nil {
		return nil, fmt.Errorf("opening locks db: %w", err)
	}

	return &DbManager{store}, nil
}

// LockStore returns the lock store of the given chain.
func (d *DbManager) LockStore(chain string) ports.LockStore {
	return newLockStoreImpl(d.Store, chain)
}

// Close closes the underlying store.
func (d *DbManager) Close() {
	d.Store.Close()
}

func createDb(dbDir string, logger badger.Logger) (*badgerhold.Store, error) {
	opts := badger.DefaultOptions(dbDir)
	if dbDir == "" {
		opts = opts.WithInMemory(true)
	}
	opts.Logger = logger
	opts.Compression = options.ZSTD

	return badgerhold.Open(badgerhold.Options{
		Encoder:          badgerhold.DefaultEncode,
		Decoder:          badgerhold.DefaultDecode,
		SequenceBandwith: 100,
		Options:          opts,
	})
}
