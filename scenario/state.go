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
	"time"
)

// Message is one chat entry produced during a run.
type Message struct {
	Timestamp time.Time      `json:"ts"`
	Role      string         `json:"role"`
	Content   string         `json:"content"`
	Meta      map[string]any `json:"meta,omitempty"`
}

// TraceEntry is one execution-step record. Entries are append-only; "what
// happened this turn" is derived by slicing the trace from its pre-turn length.
type TraceEntry struct {
	Timestamp time.Time      `json:"ts"`
	NodeID    string         `json:"nodeId"`
	NodeType  string         `json:"nodeType"`
	Info      map[string]any `json:"info,omitempty"`
}

// State is the single mutable aggregate of a run. It is owned by the caller
// between turns and mutated only inside one Executor.Execute call; the caller
// must replay the returned state verbatim on the next call. Handlers must not
// retain a reference to it beyond their invocation.
type State struct {
	// InputText is the latest raw user input, overwritten every turn.
	InputText string `json:"inputText"`
	// Slots holds the values the conversation collects from the user.
	Slots map[string]any `json:"slots"`
	// Vars holds auxiliary display bookkeeping.
	Vars map[string]any `json:"vars"`
	// Messages is the append-only chat transcript of the run.
	Messages []Message `json:"messages"`
	// Trace is the append-only execution trace of the run.
	Trace []TraceEntry `json:"trace"`
	// Cursor is the node id a paused or resuming run continues at.
	// Empty means "start from the graph's start node".
	Cursor string `json:"cursor,omitempty"`
	// Next is the transition target the currently executing handler just
	// computed. Transient: overwritten by every handler, read immediately by
	// the compiled graph's routing.
	Next string `json:"next,omitempty"`
	// Awaiting, when set, marks the run as paused until the caller supplies a
	// resolving action.
	Awaiting *Awaiting `json:"awaiting,omitempty"`
	// RunID identifies the run across turns.
	RunID string `json:"runId,omitempty"`
	// Turn counts Execute calls for this run, starting at 1.
	Turn int `json:"turn"`
}

// ensure makes the state's containers usable. A caller may hand in a partial
// or empty state; every recorder and handler goes through here first.
func (s *State) ensure() {
	if s.Slots == nil {
		s.Slots = make(map[string]any)
	}
	if s.Vars == nil {
		s.Vars = make(map[string]any)
	}
	if s.Messages == nil {
		s.Messages = []Message{}
	}
	if s.Trace == nil {
		s.Trace = []TraceEntry{}
	}
}

// recordTrace appends an execution-step record.
func (s *State) recordTrace(nodeID, nodeType string, info map[string]any) {
	s.ensure()
	s.Trace = append(s.Trace, TraceEntry{
		Timestamp: time.Now().UTC(),
		NodeID:    nodeID,
		NodeType:  nodeType,
		Info:      info,
	})
}

// recordMessage appends a chat entry.
func (s *State) recordMessage(role, content string, meta map[string]any) {
	s.ensure()
	if meta == nil {
		meta = map[string]any{}
	}
	s.Messages = append(s.Messages, Message{
		Timestamp: time.Now().UTC(),
		Role:      role,
		Content:   content,
		Meta:      meta,
	})
}

// TraceSince returns the trace entries appended at or after index start.
// Executor callers capture len(state.Trace) before a turn and slice afterwards
// to get the turn's steps.
func (s *State) TraceSince(start int) []TraceEntry {
	if start < 0 || start >= len(s.Trace) {
		return nil
	}
	return s.Trace[start:]
}

// Ended reports whether the run produced no further continuation: nothing is
// awaited and the last transition reached the end sentinel (or the cursor was
// cleared). A paused run is never ended, even though its last handler also left
// next at the end sentinel to stop the turn.
func (s *State) Ended() bool {
	if s.Awaiting != nil {
		return false
	}
	return s.Next == End || s.Cursor == ""
}
