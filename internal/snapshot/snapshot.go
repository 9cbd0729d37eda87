// Coursepath - Sequential Pattern Mining and Learning Path Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/coursepath

// Package snapshot persists published topic graphs in BadgerDB so a
// restarted server can serve recommendations before its first mining run.
//
// Keys:
//
//	snapshot:latest           -> big-endian uint64 version
//	snapshot:v:<20-digit ver> -> JSON coordinator.Snapshot
//
// Only the newest Retain versions are kept.
package snapshot

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/tomtom215/coursepath/internal/coordinator"
	"github.com/tomtom215/coursepath/internal/logging"
)

var (
	// ErrNoSnapshot is returned by Latest when nothing has been saved.
	ErrNoSnapshot = errors.New("no snapshot stored")

	// ErrClosed is returned after Close.
	ErrClosed = errors.New("snapshot store closed")
)

const (
	keyLatest     = "snapshot:latest"
	prefixVersion = "snapshot:v:"
)

// Config configures the store.
type Config struct {
	Path       string
	InMemory   bool // for tests; Path is ignored
	SyncWrites bool
	Retain     int // versions kept, default 3
}

// Store is a BadgerDB-backed snapshot store. It is safe for concurrent use.
type Store struct {
	db     *badger.DB
	retain int

	mu     sync.RWMutex
	closed bool
}

// Open opens (or creates) the store.
func Open(cfg Config) (*Store, error) {
	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if cfg.Path == "" {
			return nil, fmt.Errorf("snapshot path is required")
		}
		opts = badger.DefaultOptions(cfg.Path)
		opts.SyncWrites = cfg.SyncWrites
	}
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open BadgerDB: %w", err)
	}

	retain := cfg.Retain
	if retain <= 0 {
		retain = 3
	}

	logging.Info().Str("path", cfg.Path).Bool("in_memory", cfg.InMemory).Msg("Snapshot store opened")
	return &Store{db: db, retain: retain}, nil
}

func versionKey(v uint64) []byte {
	return []byte(fmt.Sprintf("%s%020d", prefixVersion, v))
}

// Save stores snap and marks it latest, then prunes old versions. Its
// signature matches coordinator.PublishHook.
func (s *Store) Save(_ context.Context, snap *coordinator.Snapshot) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrClosed
	}
	if snap == nil || snap.Graph == nil {
		return fmt.Errorf("snapshot has no graph")
	}

	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	var latest [8]byte
	binary.BigEndian.PutUint64(latest[:], snap.Version)

	err = s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(versionKey(snap.Version), data); err != nil {
			return err
		}
		return txn.Set([]byte(keyLatest), latest[:])
	})
	if err != nil {
		return fmt.Errorf("write snapshot v%d: %w", snap.Version, err)
	}

	if err := s.prune(); err != nil {
		logging.Warn().Err(err).Msg("Failed to prune old snapshots")
	}
	return nil
}

// Latest returns the most recently saved snapshot.
func (s *Store) Latest(_ context.Context) (*coordinator.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}

	var snap coordinator.Snapshot
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyLatest))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNoSnapshot
		}
		if err != nil {
			return err
		}
		var version uint64
		if err := item.Value(func(val []byte) error {
			if len(val) != 8 {
				return fmt.Errorf("corrupt latest pointer")
			}
			version = binary.BigEndian.Uint64(val)
			return nil
		}); err != nil {
			return err
		}

		item, err = txn.Get(versionKey(version))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("latest snapshot v%d missing", version)
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &snap)
		})
	})
	if err != nil {
		return nil, err
	}
	return &snap, nil
}

// Versions returns stored versions in ascending order.
func (s *Store) Versions() ([]uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}

	var versions []uint64
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(prefixVersion)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			var v uint64
			key := string(it.Item().Key())
			if _, err := fmt.Sscanf(key[len(prefixVersion):], "%d", &v); err != nil {
				return fmt.Errorf("parse key %q: %w", key, err)
			}
			versions = append(versions, v)
		}
		return nil
	})
	return versions, err
}

// prune deletes all but the newest retain versions. Keys sort by version
// because of the zero padding.
func (s *Store) prune() error {
	return s.db.Update(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(prefixVersion)
		it := txn.NewIterator(opts)

		var keys [][]byte
		for it.Rewind(); it.Valid(); it.Next() {
			keys = append(keys, it.Item().KeyCopy(nil))
		}
		it.Close()

		if len(keys) <= s.retain {
			return nil
		}
		for _, k := range keys[:len(keys)-s.retain] {
			if err := txn.Delete(k); err != nil {
				return err
			}
		}
		return nil
	})
}

// Close closes the underlying database.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}
