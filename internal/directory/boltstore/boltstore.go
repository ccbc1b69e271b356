// Package boltstore persists address book objects in a bolt database.
package boltstore

import (
	"fmt"
	"io"
	"time"

	"github.com/boltdb/bolt"

	"github.com/KilimcininKorOglu/nspid/internal/directory"
)

var objectsBucket = []byte("objects")

// Options configures the database.
type Options struct {
	// Timeout bounds the wait for the file lock.
	Timeout time.Duration
	// NoSync skips fsync after each commit.
	NoSync bool
}

// Store implements directory.Persister.
type Store struct {
	db *bolt.DB
}

var _ directory.Persister = (*Store)(nil)

// Open opens or creates the database at path.
func Open(path string, opts Options) (*Store, error) {
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = time.Second
	}
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: timeout})
	if err != nil {
		return nil, fmt.Errorf("boltstore: open %s: %w", path, err)
	}
	db.NoSync = opts.NoSync

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(objectsBucket)
		if err != nil {
			return fmt.Errorf("create bucket: %s", err)
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// Put writes obj keyed by its GUID.
func (s *Store) Put(obj *directory.Object) error {
	data, err := encodeObject(obj)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(objectsBucket).Put(obj.GUID[:], data)
	})
}

// ForEach decodes every stored object.
func (s *Store) ForEach(fn func(obj *directory.Object) error) error {
	return s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(objectsBucket).ForEach(func(_, v []byte) error {
			obj, err := decodeObject(v)
			if err != nil {
				return err
			}
			return fn(obj)
		})
	})
}

// Count returns the number of stored objects.
func (s *Store) Count() (int, error) {
	var n int
	err := s.db.View(func(tx *bolt.Tx) error {
		n = tx.Bucket(objectsBucket).Stats().KeyN
		return nil
	})
	return n, err
}

// Snapshot writes a consistent copy of the whole database file to w.
func (s *Store) Snapshot(w io.Writer) (int64, error) {
	var n int64
	err := s.db.View(func(tx *bolt.Tx) error {
		var err error
		n, err = tx.WriteTo(w)
		return err
	})
	return n, err
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
