//
// Tencent is pleased to support the open source community by making trpc-scenario-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-scenario-go is licensed under the Apache License Version 2.0.
//
//

package scenario

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStartNode(t *testing.T) {
	t.Run("unique zero-indegree node wins", func(t *testing.T) {
		g := &Graph{
			Nodes: []Node{{ID: "b"}, {ID: "a"}, {ID: "c"}},
			Edges: []Edge{
				{Source: "a", Target: "b"},
				{Source: "b", Target: "c"},
			},
		}
		assert.Equal(t, "a", g.StartNode())
	})

	t.Run("no candidate falls back to first node", func(t *testing.T) {
		g := &Graph{
			Nodes: []Node{{ID: "x"}, {ID: "y"}},
			Edges: []Edge{
				{Source: "x", Target: "y"},
				{Source: "y", Target: "x"},
			},
		}
		assert.Equal(t, "x", g.StartNode())
	})

	t.Run("multiple candidates pick the first declared", func(t *testing.T) {
		g := &Graph{
			Nodes: []Node{{ID: "m"}, {ID: "n"}, {ID: "o"}},
			Edges: []Edge{{Source: "m", Target: "o"}},
		}
		assert.Equal(t, "m", g.StartNode())
	})

	t.Run("empty graph", func(t *testing.T) {
		assert.Equal(t, "", (&Graph{}).StartNode())
	})
}

func TestOutgoing(t *testing.T) {
	g := &Graph{
		Nodes: []Node{{ID: "a"}, {ID: "b"}, {ID: "c"}},
		Edges: []Edge{
			{Source: "a", Target: "b", SourceHandle: "yes"},
			{Source: "c", Target: "a"},
			{Source: "a", Target: "c", SourceHandle: "no"},
		},
	}

	out := g.Outgoing("a")
	assert.Len(t, out, 2)
	// Declaration order is preserved: the first edge is the default next.
	assert.Equal(t, "b", out[0].Target)
	assert.Equal(t, "c", out[1].Target)

	assert.Empty(t, g.Outgoing("b"))
	assert.Equal(t, 1, g.incomingCount("b"))
	assert.Equal(t, 0, g.incomingCount("missing"))
}

func TestKnownNodeType(t *testing.T) {
	assert.Equal(t, NodeTypeMessage, knownNodeType("message"))
	assert.Equal(t, NodeTypeSlotFilling, knownNodeType("slotfilling"))
	assert.Equal(t, NodeTypeBranch, knownNodeType("branch"))
	assert.Equal(t, NodeTypeUnknown, knownNodeType("webhook"))
	assert.Equal(t, NodeTypeUnknown, knownNodeType(""))
}
