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
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
)

// routeFunc picks the next node after a handler ran, reading the transition
// target the handler left in state.Next.
type routeFunc func(state *State) string

// compiledNode pairs a node's handler with its routing.
type compiledNode struct {
	id    string
	run   NodeFunc
	route routeFunc
}

// compiledGraph is the executable form of a builder graph: a synthetic router
// entry node plus one compiled node per builder node. Compilation is pure and
// deterministic, so compiled graphs are shared freely across runs and
// goroutines; all mutable state lives in the State threaded through invoke.
type compiledGraph struct {
	entry string
	nodes map[string]*compiledNode
}

// compile builds the executable graph. The router dispatches to the state's
// cursor when resuming, else to the graph's start node. Each builder node
// transitions to its freshly computed state.Next when that names one of its
// declared outgoing edges, and to termination otherwise.
func compile(g *Graph) *compiledGraph {
	start := g.StartNode()
	cg := &compiledGraph{
		entry: Router,
		nodes: make(map[string]*compiledNode, len(g.Nodes)+1),
	}

	nodeIDs := make(map[string]struct{}, len(g.Nodes))
	for _, n := range g.Nodes {
		nodeIDs[n.ID] = struct{}{}
	}

	cg.nodes[Router] = &compiledNode{
		id: Router,
		run: func(_ context.Context, state *State) error {
			state.ensure()
			if state.Cursor != "" {
				state.Next = state.Cursor
			} else {
				state.Next = start
			}
			return nil
		},
		route: func(state *State) string {
			if _, ok := nodeIDs[state.Next]; ok {
				return state.Next
			}
			return End
		},
	}

	for _, n := range g.Nodes {
		outgoing := g.Outgoing(n.ID)
		targets := make(map[string]struct{}, len(outgoing))
		for _, e := range outgoing {
			targets[e.Target] = struct{}{}
		}
		cg.nodes[n.ID] = &compiledNode{
			id:  n.ID,
			run: nodeFuncFor(n, outgoing),
			route: func(state *State) string {
				if _, ok := targets[state.Next]; ok {
					return state.Next
				}
				return End
			},
		}
	}
	return cg
}

// invoke drives the compiled graph for one turn, chaining node to node within
// the same call until a route yields the end sentinel. maxSteps bounds the
// chain so a cyclic graph cannot spin forever; hitting the bound is recorded
// in the trace and ends the turn.
func (cg *compiledGraph) invoke(ctx context.Context, state *State, maxSteps int) error {
	current := cg.entry
	for steps := 0; ; steps++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if steps >= maxSteps {
			state.recordTrace(current, TraceStepLimit, map[string]any{"maxSteps": maxSteps})
			state.Next = End
			return nil
		}
		node, ok := cg.nodes[current]
		if !ok {
			return nil
		}
		if err := node.run(ctx, state); err != nil {
			return fmt.Errorf("node %s: %w", current, err)
		}
		next := node.route(state)
		if next == End {
			return nil
		}
		current = next
	}
}

// contentHash derives the compile-cache key: a digest over the node set sorted
// by id and the edge set sorted by (source, handle, target), so structurally
// identical graphs share one compiled form regardless of input ordering.
func (g *Graph) contentHash() string {
	nodes := make([]Node, len(g.Nodes))
	copy(nodes, g.Nodes)
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID < nodes[j].ID })

	edges := make([]Edge, len(g.Edges))
	copy(edges, g.Edges)
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].Source != edges[j].Source {
			return edges[i].Source < edges[j].Source
		}
		if edges[i].SourceHandle != edges[j].SourceHandle {
			return edges[i].SourceHandle < edges[j].SourceHandle
		}
		return edges[i].Target < edges[j].Target
	})

	h := sha256.New()
	for _, n := range nodes {
		data, _ := json.Marshal(n.Data)
		fmt.Fprintf(h, "n|%s|%s|%s\n", n.ID, n.Type, data)
	}
	for _, e := range edges {
		fmt.Fprintf(h, "e|%s|%s|%s\n", e.Source, e.SourceHandle, e.Target)
	}
	return hex.EncodeToString(h.Sum(nil))
}
