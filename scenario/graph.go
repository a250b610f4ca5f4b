//
// Tencent is pleased to support the open source community by making trpc-scenario-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-scenario-go is licensed under the Apache License Version 2.0.
//
//

// Package scenario executes builder-authored conversation graphs as resumable,
// turn-based state machines. The caller supplies the graph, the previous turn's
// state and the user's input on every call; the engine advances the run until it
// pauses for user input or ends, and hands the updated state back.
package scenario

import (
	"trpc.group/trpc-go/trpc-scenario-go/log"
)

// NodeType identifies the behavior of a builder node.
type NodeType string

const (
	// NodeTypeMessage renders a templated message and advances.
	NodeTypeMessage NodeType = "message"
	// NodeTypeSlotFilling prompts for a slot value and pauses the run.
	NodeTypeSlotFilling NodeType = "slotfilling"
	// NodeTypeBranch prompts for a discrete choice and pauses the run.
	NodeTypeBranch NodeType = "branch"
	// NodeTypeUnknown is the closed fallback for unrecognized builder types.
	NodeTypeUnknown NodeType = "unknown"
)

// knownNodeType maps an arbitrary builder type string onto the closed variant
// set the handlers dispatch over.
func knownNodeType(t NodeType) NodeType {
	switch t {
	case NodeTypeMessage, NodeTypeSlotFilling, NodeTypeBranch:
		return t
	default:
		return NodeTypeUnknown
	}
}

// Reply is one quick-reply button offered alongside a prompt.
type Reply struct {
	Value   string `json:"value"`
	Display string `json:"display,omitempty"`
}

// NodeData is the type-specific payload of a builder node. Fields unused by a
// given node type are simply ignored by its handler.
type NodeData struct {
	// Content is the (templated) text to render for the user.
	Content string `json:"content,omitempty"`
	// Slot is the slot name a slotfilling node stores its answer under.
	Slot string `json:"slot,omitempty"`
	// Replies are the quick replies offered by slotfilling and branch nodes.
	Replies []Reply `json:"replies,omitempty"`
}

// Node is one node of the builder graph.
type Node struct {
	ID   string   `json:"id"`
	Type NodeType `json:"type"`
	Data NodeData `json:"data"`
}

// Edge is one directed edge of the builder graph. SourceHandle is the
// discriminator branch nodes use to map a choice value onto an outgoing edge.
type Edge struct {
	Source       string `json:"source"`
	Target       string `json:"target"`
	SourceHandle string `json:"sourceHandle,omitempty"`
}

// Graph is the immutable builder graph supplied by the caller on every call.
// The engine never mutates it.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Outgoing returns the outgoing edges of the given node, in declaration order.
func (g *Graph) Outgoing(nodeID string) []Edge {
	var out []Edge
	for _, e := range g.Edges {
		if e.Source == nodeID {
			out = append(out, e)
		}
	}
	return out
}

// incomingCount counts edges pointing at the given node.
func (g *Graph) incomingCount(nodeID string) int {
	n := 0
	for _, e := range g.Edges {
		if e.Target == nodeID {
			n++
		}
	}
	return n
}

// StartNode picks the run's entry node: the first node with no incoming edge.
// Graphs authored by the builder have exactly one such node; if none exists the
// first declared node is used as a fallback. Callers should validate graphs
// upstream rather than rely on the fallback.
func (g *Graph) StartNode() string {
	if len(g.Nodes) == 0 {
		return ""
	}
	for _, n := range g.Nodes {
		if g.incomingCount(n.ID) == 0 {
			return n.ID
		}
	}
	log.Warnf("scenario: graph has no zero-indegree node, falling back to first node %s", g.Nodes[0].ID)
	return g.Nodes[0].ID
}
