// Copyright (C) 2026 Atlas Counsel (engineering@atlascounsel.sg)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package session

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// MemoryStore is an in-process Store for tests and lightweight mode.
//
// # Thread Safety
//
//	Safe for concurrent use.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*memoryEntry
	ttl      time.Duration
	now      func() time.Time
}

type memoryEntry struct {
	session   *Session
	expiresAt time.Time
}

// NewMemoryStore creates a store whose entries expire ttl after their
// last write. A non-positive ttl means entries never expire.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*memoryEntry),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Get implements Store.
func (s *MemoryStore) Get(_ context.Context, id string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.sessions[id]
	if !ok || s.expired(entry) {
		return nil, ErrNotFound
	}
	return copySession(entry.session), nil
}

// MergeFacts implements Store.
func (s *MemoryStore) MergeFacts(_ context.Context, id string, facts map[string]string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := s.liveEntry(id)
	for k, v := range facts {
		entry.session.Facts[k] = v
	}
	s.touch(entry)
	return copySession(entry.session), nil
}

// AppendTurn implements Store.
func (s *MemoryStore) AppendTurn(_ context.Context, id string, turn Turn) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := s.liveEntry(id)
	entry.session.Turns = append(entry.session.Turns, turn)
	s.touch(entry)
	return nil
}

// List implements Store.
func (s *MemoryStore) List(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.sessions))
	for id, entry := range s.sessions {
		if !s.expired(entry) {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// Delete implements Store.
func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

// Close implements Store.
func (s *MemoryStore) Close() error { return nil }

// Sweep drops expired entries and reports how many were removed.
func (s *MemoryStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, entry := range s.sessions {
		if s.expired(entry) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

func (s *MemoryStore) liveEntry(id string) *memoryEntry {
	entry, ok := s.sessions[id]
	if !ok || s.expired(entry) {
		now := s.now()
		entry = &memoryEntry{
			session: &Session{
				ID:        id,
				Facts:     map[string]string{},
				CreatedAt: now,
			},
		}
		s.sessions[id] = entry
	}
	return entry
}

func (s *MemoryStore) touch(entry *memoryEntry) {
	now := s.now()
	entry.session.UpdatedAt = now
	if s.ttl > 0 {
		entry.expiresAt = now.Add(s.ttl)
	}
}

func (s *MemoryStore) expired(entry *memoryEntry) bool {
	return s.ttl > 0 && !entry.expiresAt.IsZero() && s.now().After(entry.expiresAt)
}

func copySession(in *Session) *Session {
	out := &Session{
		ID:        in.ID,
		Facts:     make(map[string]string, len(in.Facts)),
		Turns:     make([]Turn, len(in.Turns)),
		CreatedAt: in.CreatedAt,
		UpdatedAt: in.UpdatedAt,
	}
	for k, v := range in.Facts {
		out.Facts[k] = v
	}
	copy(out.Turns, in.Turns)
	return out
}

// Cleaner periodically sweeps an in-memory store.
type Cleaner struct {
	store    *MemoryStore
	interval time.Duration
	logger   *slog.Logger
}

// NewCleaner creates a sweeper. Interval defaults to five minutes.
func NewCleaner(store *MemoryStore, interval time.Duration, logger *slog.Logger) *Cleaner {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Cleaner{store: store, interval: interval, logger: logger}
}

// Run blocks until ctx is done, sweeping on every tick.
func (c *Cleaner) Run(ctx context.Context) error {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if removed := c.store.Sweep(); removed > 0 {
				c.logger.Debug("expired sessions swept", slog.Int("removed", removed))
			}
		}
	}
}
