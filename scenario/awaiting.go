//
// Tencent is pleased to support the open source community by making trpc-scenario-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-scenario-go is licensed under the Apache License Version 2.0.
//
//

package scenario

// AwaitKind discriminates the two pause shapes a run can be suspended in.
type AwaitKind string

const (
	// AwaitSlot pauses until the user supplies a value for a named slot.
	AwaitSlot AwaitKind = "slot"
	// AwaitBranch pauses until the user picks one of a set of discrete choices.
	AwaitBranch AwaitKind = "branch"
)

// Awaiting describes a paused run. Its presence on a state means the run has
// emitted output and requires a caller-supplied action before further progress.
type Awaiting struct {
	Kind   AwaitKind `json:"kind"`
	NodeID string    `json:"nodeId"`
	// Slot is the slot name to fill (slot pauses only).
	Slot string `json:"slot,omitempty"`
	// Next is the node to resume at once the slot is filled (slot pauses only).
	Next string `json:"next,omitempty"`
	// Routes maps a choice value onto the node it leads to (branch pauses only).
	Routes map[string]string `json:"routes,omitempty"`
}

// Action is the caller-supplied resolution for a paused run. Value is
// authoritative; Display is cosmetic only.
type Action struct {
	Type    string `json:"type"`
	Value   string `json:"value"`
	Display string `json:"display,omitempty"`
}

// resolveAwaiting consumes an action while the state is paused. It runs once,
// before the compiled graph executes for the turn, and is the sole mechanism
// for leaving a paused state. With no pause or no action it is a no-op: a
// caller merely re-polling leaves the pause in place.
func resolveAwaiting(state *State, action *Action) {
	awaiting := state.Awaiting
	if awaiting == nil || action == nil {
		return
	}
	state.ensure()

	switch awaiting.Kind {
	case AwaitSlot:
		if awaiting.Slot != "" {
			state.Slots[awaiting.Slot] = action.Value
		}
		state.Vars[VarKeyLastDisplay] = action.Display
		next := awaiting.Next
		if next == "" {
			next = End
		}
		state.Cursor = next
		state.Next = next
		state.Awaiting = nil
		state.recordTrace(awaiting.NodeID, TraceAwaitingResolved, map[string]any{
			"kind":  string(AwaitSlot),
			"slot":  awaiting.Slot,
			"value": action.Value,
			"next":  next,
		})
	case AwaitBranch:
		// An unmapped choice ends the run rather than erroring.
		picked, ok := awaiting.Routes[action.Value]
		if !ok {
			picked = End
		}
		state.Vars[VarKeyLastBranchValue] = action.Value
		state.Vars[VarKeyLastDisplay] = action.Display
		state.Cursor = picked
		state.Next = picked
		state.Awaiting = nil
		state.recordTrace(awaiting.NodeID, TraceAwaitingResolved, map[string]any{
			"kind":  string(AwaitBranch),
			"value": action.Value,
			"next":  picked,
		})
	}
}
