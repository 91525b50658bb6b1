// Copyright (C) 2026 Atlas Counsel (engineering@atlascounsel.sg)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package ruleset

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Snapshot is an immutable view of a loaded rule set.
//
// # Thread Safety
//
//	Read-only after construction. Safe to share across goroutines.
type Snapshot struct {
	Nodes     []*RuleNode
	ByID      map[string]*RuleNode
	Citations []string
	LoadedAt  time.Time
}

func newSnapshot(nodes []*RuleNode) *Snapshot {
	byID := make(map[string]*RuleNode, len(nodes))
	citationSet := make(map[string]struct{})
	for _, n := range nodes {
		byID[n.NodeID] = n
		if n.Citation != "" {
			citationSet[n.Citation] = struct{}{}
		}
	}
	citations := make([]string, 0, len(citationSet))
	for c := range citationSet {
		citations = append(citations, c)
	}
	return &Snapshot{
		Nodes:     nodes,
		ByID:      byID,
		Citations: citations,
		LoadedAt:  time.Now(),
	}
}

// Registry publishes rule-set snapshots and hot-reloads them when the
// rules directory changes on disk.
//
// # Description
//
//	The active snapshot sits behind an atomic pointer: readers always
//	see a complete, validated set, and a reload swaps the whole set in
//	one store. A reload that fails validation is logged and discarded;
//	the previous snapshot stays active.
//
// # Thread Safety
//
//	Safe for concurrent use. Current() is lock-free.
type Registry struct {
	dir      string
	loader   *Loader
	logger   *slog.Logger
	snapshot atomic.Pointer[Snapshot]
	reloads  atomic.Int64
}

// NewRegistry loads dir once and returns a registry holding the result.
// Structural problems in the initial load are a hard error: the service
// must not start on a broken rule set.
func NewRegistry(dir string, logger *slog.Logger) (*Registry, error) {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Registry{
		dir:    dir,
		loader: NewLoader(logger),
		logger: logger,
	}

	snap, problems, err := r.loader.LoadDir(dir)
	if err != nil {
		return nil, err
	}
	if len(problems) > 0 {
		return nil, fmt.Errorf("rule set in %s has %d structural problems, first: %s",
			dir, len(problems), problems[0])
	}

	r.snapshot.Store(snap)
	logger.Info("rule set loaded",
		slog.String("dir", dir),
		slog.Int("nodes", len(snap.Nodes)),
		slog.Int("citations", len(snap.Citations)))
	return r, nil
}

// Current returns the active snapshot. Never nil after NewRegistry.
func (r *Registry) Current() *Snapshot {
	return r.snapshot.Load()
}

// Reloads reports how many successful hot reloads have happened.
func (r *Registry) Reloads() int64 {
	return r.reloads.Load()
}

// reload rebuilds the snapshot from disk and swaps it in if sound.
func (r *Registry) reload() {
	snap, problems, err := r.loader.LoadDir(r.dir)
	if err != nil {
		r.logger.Error("rule set reload failed, keeping previous snapshot",
			slog.String("error", err.Error()))
		return
	}
	if len(problems) > 0 {
		r.logger.Error("rule set reload rejected, keeping previous snapshot",
			slog.Int("problems", len(problems)),
			slog.String("first_problem", problems[0]))
		return
	}
	r.snapshot.Store(snap)
	r.reloads.Add(1)
	r.logger.Info("rule set reloaded", slog.Int("nodes", len(snap.Nodes)))
}

// Watch blocks until ctx is done, reloading the rule set whenever a
// YAML file in the rules directory is written, created, renamed, or
// removed. Events are debounced so an editor save burst triggers one
// reload.
func (r *Registry) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating rules watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(r.dir); err != nil {
		return fmt.Errorf("watching %s: %w", r.dir, err)
	}

	const debounce = 250 * time.Millisecond
	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !isRuleFile(event.Name) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(debounce)
				timerC = timer.C
			} else {
				timer.Reset(debounce)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			r.logger.Warn("rules watcher error", slog.String("error", err.Error()))
		case <-timerC:
			timer = nil
			timerC = nil
			r.reload()
		}
	}
}

func isRuleFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".yaml" || ext == ".yml"
}
