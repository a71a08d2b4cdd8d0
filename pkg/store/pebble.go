package store

import (
	"errors"
	"fmt"

	"github.com/cockroachdb/pebble"

	"sparkchat/pkg/logger"
)

var db *pebble.DB

// Sentinel errors surfaced by store operations. Handlers translate these
// into the HTTP error taxonomy at the boundary.
var (
	ErrNotFound  = errors.New("not found")
	ErrForbidden = errors.New("forbidden")
	ErrConflict  = errors.New("already exists")
)

// Open opens (or creates) a Pebble database at the given path and keeps a
// global handle for simple usage in this package.
func Open(path string) error {
	var err error
	logger.Info("opening_pebble_db", "path", path)
	db, err = pebble.Open(path, &pebble.Options{})
	if err != nil {
		logger.Error("pebble_open_failed", "path", path, "error", err)
		return err
	}
	logger.Info("pebble_opened", "path", path)
	return nil
}

// Close closes the opened pebble DB if present.
func Close() error {
	if db == nil {
		return nil
	}
	if err := db.Close(); err != nil {
		return err
	}
	db = nil
	logger.Info("pebble_closed")
	return nil
}

// Ready reports whether the store is opened and ready.
func Ready() bool {
	return db != nil
}

func notOpened() error {
	return fmt.Errorf("pebble not opened; call store.Open first")
}

// get returns the raw value for key, mapping pebble's not-found to
// ErrNotFound.
func get(key string) ([]byte, error) {
	if db == nil {
		return nil, notOpened()
	}
	v, closer, err := db.Get([]byte(key))
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	out := append([]byte(nil), v...)
	if closer != nil {
		_ = closer.Close()
	}
	return out, nil
}

func set(key string, value []byte) error {
	if db == nil {
		return notOpened()
	}
	return db.Set([]byte(key), value, pebble.Sync)
}

func del(key string) error {
	if db == nil {
		return notOpened()
	}
	return db.Delete([]byte(key), pebble.Sync)
}

// delAll deletes the given keys in one synced batch so they disappear
// together or not at all.
func delAll(keys ...string) error {
	if db == nil {
		return notOpened()
	}
	b := db.NewBatch()
	defer b.Close()
	for _, k := range keys {
		if err := b.Delete([]byte(k), nil); err != nil {
			return err
		}
	}
	return b.Commit(pebble.Sync)
}

// prefixIter returns an iterator bounded to keys starting with prefix.
// Caller must close it.
func prefixIter(prefix string) (*pebble.Iterator, error) {
	if db == nil {
		return nil, notOpened()
	}
	lower := []byte(prefix)
	upper := append([]byte(nil), lower...)
	upper[len(upper)-1]++
	return db.NewIter(&pebble.IterOptions{LowerBound: lower, UpperBound: upper})
}
