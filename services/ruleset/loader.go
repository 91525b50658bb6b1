// Copyright (C) 2026 Atlas Counsel (engineering@atlascounsel.sg)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package ruleset

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Loader reads rule module files from a directory and assembles a
// validated Snapshot.
//
// # Thread Safety
//
//	Safe for concurrent use. The underlying validator instance caches
//	struct metadata and is itself concurrency safe.
type Loader struct {
	validate *validator.Validate
	logger   *slog.Logger
}

// NewLoader creates a loader. A nil logger falls back to slog.Default.
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logger,
	}
}

// LoadDir parses every *.yaml / *.yml file under dir into rule nodes,
// runs schema and structural validation, and returns a snapshot.
//
// # Description
//
//	Files are read in lexical order so node ordering is stable across
//	loads. Schema violations in a file abort the load with an error;
//	structural problems (unresolved references, cycles) are returned
//	alongside the snapshot so the caller can decide whether to publish.
//
// # Outputs
//
//	*Snapshot - assembled nodes, nil only on hard error.
//	[]string  - structural problems, empty when the set is sound.
//	error     - I/O, parse, or schema failure.
func (l *Loader) LoadDir(dir string) (*Snapshot, []string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("reading rules directory %s: %w", dir, err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml") {
			files = append(files, filepath.Join(dir, name))
		}
	}
	sort.Strings(files)

	if len(files) == 0 {
		return nil, nil, fmt.Errorf("no rule files found in %s", dir)
	}

	var nodes []*RuleNode
	for _, path := range files {
		mf, err := l.loadFile(path)
		if err != nil {
			return nil, nil, err
		}
		for _, n := range mf.Nodes {
			if n.ModuleID == "" {
				n.ModuleID = mf.ModuleID
			}
			normalizeNode(n)
			nodes = append(nodes, n)
		}
		l.logger.Debug("loaded rule module",
			slog.String("file", filepath.Base(path)),
			slog.String("module_id", mf.ModuleID),
			slog.Int("nodes", len(mf.Nodes)))
	}

	problems := ValidateStructure(nodes)
	return newSnapshot(nodes), problems, nil
}

func (l *Loader) loadFile(path string) (*ModuleFile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var mf ModuleFile
	if err := yaml.Unmarshal(raw, &mf); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := l.validate.Struct(&mf); err != nil {
		return nil, fmt.Errorf("schema violation in %s: %w", path, err)
	}
	return &mf, nil
}

// normalizeNode replaces nil dimension slices with empty ones so
// downstream code never branches on nil.
func normalizeNode(n *RuleNode) {
	if n.What == nil {
		n.What = []DimensionItem{}
	}
	if n.Which == nil {
		n.Which = []DimensionItem{}
	}
	if n.IfThen == nil {
		n.IfThen = []DimensionItem{}
	}
	if n.Modality == nil {
		n.Modality = []DimensionItem{}
	}
	if n.Given == nil {
		n.Given = []DimensionItem{}
	}
	if n.Why == nil {
		n.Why = []DimensionItem{}
	}
}
