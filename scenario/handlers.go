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
)

// NodeFunc is the executable form of one graph node. Handlers confine their
// side effects to the state they are handed: they read the node's config and
// outgoing edges, record messages and trace entries, and leave state.Next at
// the transition target for the compiled graph's routing to consume.
type NodeFunc func(ctx context.Context, state *State) error

// nodeFuncFor dispatches over the closed node-type variant set. Every builder
// node compiles to exactly one of these handlers.
func nodeFuncFor(node Node, outgoing []Edge) NodeFunc {
	switch knownNodeType(node.Type) {
	case NodeTypeMessage:
		return messageNodeFunc(node, outgoing)
	case NodeTypeSlotFilling:
		return slotFillingNodeFunc(node, outgoing)
	case NodeTypeBranch:
		return branchNodeFunc(node, outgoing)
	default:
		return unknownNodeFunc(node)
	}
}

// defaultNext is a handler's fall-through target: the first outgoing edge, or
// the end sentinel when the node is a dead end. Fan-out is the branch node's
// job; other nodes follow a single edge.
func defaultNext(outgoing []Edge) string {
	if len(outgoing) > 0 {
		return outgoing[0].Target
	}
	return End
}

// messageNodeFunc renders the node's content through the template and records
// it as an assistant message, then advances to the default next node within
// the same turn.
func messageNodeFunc(node Node, outgoing []Edge) NodeFunc {
	next := defaultNext(outgoing)
	return func(_ context.Context, state *State) error {
		state.ensure()
		content := Render(node.Data.Content, state)
		state.recordMessage(RoleAssistant, content, map[string]any{
			"nodeId": node.ID,
			"type":   string(NodeTypeMessage),
		})
		if next == End {
			state.Cursor = ""
		} else {
			state.Cursor = next
		}
		state.Next = next
		state.recordTrace(node.ID, string(NodeTypeMessage), map[string]any{"next": next})
		return nil
	}
}

// slotFillingNodeFunc emits the prompt with its quick replies and suspends the
// run on a slot pause anchored at this node's default next. Reply display
// labels are mirrored into vars so message templates can reference them.
func slotFillingNodeFunc(node Node, outgoing []Edge) NodeFunc {
	next := defaultNext(outgoing)
	slot := node.Data.Slot
	if slot == "" {
		slot = "slot"
	}
	return func(_ context.Context, state *State) error {
		state.ensure()
		for _, r := range node.Data.Replies {
			if r.Display != "" {
				state.Vars[r.Display] = r.Display
			}
		}
		state.recordMessage(RoleAssistant, node.Data.Content, map[string]any{
			"nodeId":       node.ID,
			"type":         string(NodeTypeSlotFilling),
			"quickReplies": node.Data.Replies,
			"slot":         slot,
		})
		state.Awaiting = &Awaiting{
			Kind:   AwaitSlot,
			NodeID: node.ID,
			Slot:   slot,
			Next:   next,
		}
		state.Cursor = node.ID
		state.Next = End
		state.recordTrace(node.ID, string(NodeTypeSlotFilling), map[string]any{
			"slot": slot,
			"next": next,
		})
		return nil
	}
}

// branchNodeFunc emits the prompt with its choices and suspends the run on a
// branch pause whose routes map each outgoing edge's sourceHandle onto its
// target.
func branchNodeFunc(node Node, outgoing []Edge) NodeFunc {
	routes := make(map[string]string)
	for _, e := range outgoing {
		if e.SourceHandle != "" {
			routes[e.SourceHandle] = e.Target
		}
	}
	return func(_ context.Context, state *State) error {
		state.ensure()
		state.recordMessage(RoleAssistant, node.Data.Content, map[string]any{
			"nodeId":       node.ID,
			"type":         string(NodeTypeBranch),
			"quickReplies": node.Data.Replies,
		})
		state.Awaiting = &Awaiting{
			Kind:   AwaitBranch,
			NodeID: node.ID,
			Routes: routes,
		}
		state.Cursor = node.ID
		state.Next = End
		state.recordTrace(node.ID, string(NodeTypeBranch), map[string]any{
			"routesCount": len(routes),
		})
		return nil
	}
}

// unknownNodeFunc records the unrecognized type in the trace and treats the
// node as a dead end. Non-fatal: the anomaly is visible in the trace only.
func unknownNodeFunc(node Node) NodeFunc {
	return func(_ context.Context, state *State) error {
		state.ensure()
		state.Next = End
		state.recordTrace(node.ID, string(NodeTypeUnknown), map[string]any{
			"type": string(node.Type),
		})
		return nil
	}
}
