// Copyright (C) 2026 Atlas Counsel (engineering@atlascounsel.sg)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package ruleset

import (
	"fmt"
	"sort"
)

// ValidateStructure checks the structural invariants of a rule set.
//
// # Description
//
//	Three passes over the node collection:
//	  1. Node IDs must be unique.
//	  2. Every parent/child/related reference must resolve to a node
//	     in the same collection.
//	  3. The parent graph must be acyclic.
//
//	Problems are returned as human-readable strings rather than an
//	error so callers can report all of them at once and decide whether
//	to reject the set or register it partially.
//
// # Outputs
//
//	[]string - one entry per problem, empty when the set is sound.
func ValidateStructure(nodes []*RuleNode) []string {
	var problems []string

	byID := make(map[string]*RuleNode, len(nodes))
	for _, n := range nodes {
		if n.NodeID == "" {
			problems = append(problems, "node with empty node_id")
			continue
		}
		if _, dup := byID[n.NodeID]; dup {
			problems = append(problems, fmt.Sprintf("duplicate node_id: %s", n.NodeID))
			continue
		}
		byID[n.NodeID] = n
	}

	for _, n := range nodes {
		problems = append(problems, checkRefs(byID, n.NodeID, "parent", n.ParentNodes)...)
		problems = append(problems, checkRefs(byID, n.NodeID, "child", n.ChildNodes)...)
		problems = append(problems, checkRefs(byID, n.NodeID, "related", n.RelatedNodes)...)
	}

	problems = append(problems, findParentCycles(byID)...)
	return problems
}

func checkRefs(byID map[string]*RuleNode, from, kind string, refs []string) []string {
	var problems []string
	for _, ref := range refs {
		if _, ok := byID[ref]; !ok {
			problems = append(problems, fmt.Sprintf(
				"node %s: %s reference %s does not resolve", from, kind, ref))
		}
	}
	return problems
}

// findParentCycles runs an iterative three-color DFS over the parent
// edges. Iterative on an explicit stack so a pathological chain cannot
// blow the goroutine stack.
func findParentCycles(byID map[string]*RuleNode) []string {
	const (
		white = 0 // unvisited
		gray  = 1 // on the current path
		black = 2 // fully explored
	)

	color := make(map[string]int, len(byID))
	var problems []string

	// Deterministic order keeps the problem list stable across loads.
	ids := make([]string, 0, len(byID))
	for id := range byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	type frame struct {
		id   string
		next int
	}

	for _, start := range ids {
		if color[start] != white {
			continue
		}
		stack := []frame{{id: start}}
		color[start] = gray

		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			parents := byID[top.id].ParentNodes

			advanced := false
			for top.next < len(parents) {
				ref := parents[top.next]
				top.next++
				parent, ok := byID[ref]
				if !ok {
					continue // unresolved refs are reported elsewhere
				}
				switch color[parent.NodeID] {
				case gray:
					problems = append(problems, fmt.Sprintf(
						"parent cycle detected through node %s (via %s)", parent.NodeID, top.id))
				case white:
					color[parent.NodeID] = gray
					stack = append(stack, frame{id: parent.NodeID})
					advanced = true
				}
				if advanced {
					break
				}
			}
			if !advanced {
				color[top.id] = black
				stack = stack[:len(stack)-1]
			}
		}
	}

	return problems
}
