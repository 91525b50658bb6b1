// Copyright (C) 2026 Atlas Counsel (engineering@atlascounsel.sg)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	badger "github.com/dgraph-io/badger/v4"
)

const keyPrefix = "session/"

// BadgerStore is the persistent Store. Sessions survive restarts and
// expire through Badger's native entry TTL.
//
// # Thread Safety
//
//	Safe for concurrent use; Badger transactions provide isolation.
type BadgerStore struct {
	db     *badger.DB
	ttl    time.Duration
	logger *slog.Logger
}

// NewBadgerStore opens (or creates) the database at dir. A
// non-positive ttl defaults to 24 hours.
func NewBadgerStore(dir string, ttl time.Duration, logger *slog.Logger) (*BadgerStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	opts := badger.DefaultOptions(dir)
	opts.Logger = nil
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("opening session store at %s: %w", dir, err)
	}
	return &BadgerStore{db: db, ttl: ttl, logger: logger}, nil
}

// Get implements Store.
func (s *BadgerStore) Get(_ context.Context, id string) (*Session, error) {
	var sess Session
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyPrefix + id))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &sess)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading session %s: %w", id, err)
	}
	return &sess, nil
}

// MergeFacts implements Store.
func (s *BadgerStore) MergeFacts(ctx context.Context, id string, facts map[string]string) (*Session, error) {
	var out *Session
	err := s.update(id, func(sess *Session) {
		for k, v := range facts {
			sess.Facts[k] = v
		}
		out = sess
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// AppendTurn implements Store.
func (s *BadgerStore) AppendTurn(_ context.Context, id string, turn Turn) error {
	return s.update(id, func(sess *Session) {
		sess.Turns = append(sess.Turns, turn)
	})
}

// update loads-or-creates the session, applies fn, and writes it back
// with a refreshed TTL.
func (s *BadgerStore) update(id string, fn func(*Session)) error {
	return s.db.Update(func(txn *badger.Txn) error {
		key := []byte(keyPrefix + id)
		now := time.Now()

		sess := &Session{ID: id, Facts: map[string]string{}, CreatedAt: now}
		item, err := txn.Get(key)
		switch {
		case err == nil:
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, sess)
			}); err != nil {
				return fmt.Errorf("decoding session %s: %w", id, err)
			}
		case errors.Is(err, badger.ErrKeyNotFound):
			// new session
		default:
			return err
		}

		fn(sess)
		sess.UpdatedAt = now

		raw, err := json.Marshal(sess)
		if err != nil {
			return fmt.Errorf("encoding session %s: %w", id, err)
		}
		entry := badger.NewEntry(key, raw).WithTTL(s.ttl)
		return txn.SetEntry(entry)
	})
}

// List implements Store.
func (s *BadgerStore) List(_ context.Context) ([]string, error) {
	var ids []string
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(keyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			ids = append(ids, string(it.Item().Key()[len(prefix):]))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}
	return ids, nil
}

// Delete implements Store.
func (s *BadgerStore) Delete(_ context.Context, id string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(keyPrefix + id))
	})
	if err != nil {
		return fmt.Errorf("deleting session %s: %w", id, err)
	}
	return nil
}

// Close implements Store.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}
