// Copyright (C) 2026 Atlas Counsel (engineering@atlascounsel.sg)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

/*
Package session persists conversation state: the facts gathered so far
and the turn history. Facts accumulate across turns so the calculator
can run as soon as enough of them exist.
*/
package session

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a session id has no stored state.
var ErrNotFound = errors.New("session not found")

// Turn is one conversation exchange entry.
type Turn struct {
	Role    string    `json:"role"`
	Content string    `json:"content"`
	At      time.Time `json:"at"`
}

// Session is the stored conversation state.
type Session struct {
	ID        string            `json:"id"`
	Facts     map[string]string `json:"facts"`
	Turns     []Turn            `json:"turns"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// Store persists sessions.
//
// # Thread Safety
//
//	Implementations must be safe for concurrent use.
type Store interface {
	// Get returns the session or ErrNotFound.
	Get(ctx context.Context, id string) (*Session, error)

	// MergeFacts upserts the session and merges facts into it. New
	// values overwrite old ones key by key.
	MergeFacts(ctx context.Context, id string, facts map[string]string) (*Session, error)

	// AppendTurn records one conversation turn. Creates the session
	// if needed.
	AppendTurn(ctx context.Context, id string, turn Turn) error

	// List returns all live session ids.
	List(ctx context.Context) ([]string, error)

	// Delete removes the session. Deleting a missing session is not
	// an error.
	Delete(ctx context.Context, id string) error

	// Close releases underlying resources.
	Close() error
}
