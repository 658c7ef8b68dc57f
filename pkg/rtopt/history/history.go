// Package history provides Badger DB-backed storage for xrun
// observations.
//
// The daemon appends a record per xrun check that saw activity and per
// state transition; the detailed status command reads the most recent
// records back. Keys are big-endian nanosecond timestamps so iteration
// order is chronological.
package history

import (
	"encoding/binary"
	"encoding/json"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

// Key prefix for observation records.
const prefixObservation = "o:"

// Record is one stored observation.
type Record struct {
	ID       string    `json:"id"`
	Time     time.Time `json:"time"`
	Total    uint      `json:"total"`
	Severe   uint      `json:"severe"`
	Severity string    `json:"severity"`
	Event    string    `json:"event"` // "xrun-check" or a transition name
}

// Store is the observation log backed by Badger DB.
type Store struct {
	db *badger.DB
}

// Open opens or creates a store at the given directory.
func Open(path string) (*Store, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil // Disable logging

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}

	return &Store{db: db}, nil
}

// Close closes the store.
func (s *Store) Close() error {
	return s.db.Close()
}

// Append stores a record. A missing ID or timestamp is filled in.
func (s *Store) Append(r Record) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	if r.Time.IsZero() {
		r.Time = time.Now()
	}

	data, err := json.Marshal(&r)
	if err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(observationKey(r.Time), data)
	})
}

// Recent returns up to n of the most recent records, newest first.
func (s *Store) Recent(n int) ([]Record, error) {
	var records []Record
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		opts.Prefix = []byte(prefixObservation)
		it := txn.NewIterator(opts)
		defer it.Close()

		// Reverse iteration needs a seek key past the prefix range.
		seek := append([]byte(prefixObservation), 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff)
		for it.Seek(seek); it.Valid() && len(records) < n; it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var r Record
				if err := json.Unmarshal(val, &r); err != nil {
					return err
				}
				records = append(records, r)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	return records, err
}

// Prune deletes records older than the retention window.
func (s *Store) Prune(retention time.Duration) error {
	cutoff := observationKey(time.Now().Add(-retention))
	return s.db.Update(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(prefixObservation)
		it := txn.NewIterator(opts)
		defer it.Close()

		var stale [][]byte
		for it.Rewind(); it.Valid(); it.Next() {
			key := it.Item().KeyCopy(nil)
			if string(key) >= string(cutoff) {
				break
			}
			stale = append(stale, key)
		}
		for _, key := range stale {
			if err := txn.Delete(key); err != nil {
				return err
			}
		}
		return nil
	})
}

// observationKey builds the chronological key for a timestamp.
func observationKey(t time.Time) []byte {
	key := make([]byte, len(prefixObservation)+8)
	copy(key, prefixObservation)
	binary.BigEndian.PutUint64(key[len(prefixObservation):], uint64(t.UnixNano()))
	return key
}
