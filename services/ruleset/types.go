// Copyright (C) 2026 Atlas Counsel (engineering@atlascounsel.sg)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

/*
Package ruleset defines the logic-tree rule node model used across the
advisory pipeline. A rule set is a flat collection of RuleNode records
connected by parent/child/related identifiers. Nodes are loaded from YAML
files, structurally validated, and published as immutable snapshots.
*/
package ruleset

import (
	"sort"
	"strings"
)

// Dimension names in canonical order. Every node carries all six; an
// absent dimension is an empty list, never nil semantics beyond that.
const (
	DimWhat     = "what"
	DimWhich    = "which"
	DimIfThen   = "if_then"
	DimModality = "modality"
	DimGiven    = "given"
	DimWhy      = "why"
)

// DimensionNames lists the six dimensions in canonical order.
var DimensionNames = []string{DimWhat, DimWhich, DimIfThen, DimModality, DimGiven, DimWhy}

// DimensionItem is one key-value record inside a dimension list.
// Keys are short labels ("fact", "court", "condition"); values are the
// legal content to be matched against case facts.
type DimensionItem map[string]string

// Text flattens the item into a single matchable string. Keys are
// emitted in sorted order so the output is deterministic.
func (d DimensionItem) Text() string {
	if len(d) == 0 {
		return ""
	}
	keys := make([]string, 0, len(d))
	for k := range d {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	for i, k := range keys {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(k)
		sb.WriteByte(' ')
		sb.WriteString(d[k])
	}
	return sb.String()
}

// RuleNode is a single node of the legal logic tree.
//
// # Description
//
//	A node captures one rule or sub-rule from the costs regime: its
//	identity, the authority it cites, six dimensions of legal content
//	(what/which/if_then/modality/given/why), and graph links to other
//	nodes in the same rule set.
//
// # Thread Safety
//
//	Immutable after load. Safe for concurrent reads. Code that needs a
//	variant must copy, never mutate in place.
type RuleNode struct {
	NodeID   string `yaml:"node_id" json:"node_id" validate:"required"`
	ModuleID string `yaml:"module_id" json:"module_id" validate:"required"`
	Citation string `yaml:"citation" json:"citation"`

	What     []DimensionItem `yaml:"what" json:"what"`
	Which    []DimensionItem `yaml:"which" json:"which"`
	IfThen   []DimensionItem `yaml:"if_then" json:"if_then"`
	Modality []DimensionItem `yaml:"modality" json:"modality"`
	Given    []DimensionItem `yaml:"given" json:"given"`
	Why      []DimensionItem `yaml:"why" json:"why"`

	ParentNodes  []string `yaml:"parent_nodes" json:"parent_nodes"`
	ChildNodes   []string `yaml:"child_nodes" json:"child_nodes"`
	RelatedNodes []string `yaml:"related_nodes" json:"related_nodes"`
}

// Dimension returns the item list for the named dimension, or nil for an
// unknown name.
func (n *RuleNode) Dimension(name string) []DimensionItem {
	switch name {
	case DimWhat:
		return n.What
	case DimWhich:
		return n.Which
	case DimIfThen:
		return n.IfThen
	case DimModality:
		return n.Modality
	case DimGiven:
		return n.Given
	case DimWhy:
		return n.Why
	default:
		return nil
	}
}

// DimensionsWithContent counts how many of the six dimensions carry at
// least one item.
func (n *RuleNode) DimensionsWithContent() int {
	count := 0
	for _, name := range DimensionNames {
		if len(n.Dimension(name)) > 0 {
			count++
		}
	}
	return count
}

// CorpusText concatenates every dimension item of the node into one
// string. Used by quote verification to check claimed rule text.
func (n *RuleNode) CorpusText() string {
	var parts []string
	for _, name := range DimensionNames {
		for _, item := range n.Dimension(name) {
			if t := item.Text(); t != "" {
				parts = append(parts, t)
			}
		}
	}
	return strings.Join(parts, " ")
}

// ModuleFile is the on-disk YAML shape: one rule module per file.
type ModuleFile struct {
	ModuleID string      `yaml:"module_id" validate:"required"`
	Title    string      `yaml:"title"`
	Nodes    []*RuleNode `yaml:"nodes" validate:"required,min=1,dive"`
}
