//
// Tencent is pleased to support the open source community by making trpc-scenario-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-scenario-go is licensed under the Apache License Version 2.0.
//
//

// Package runlog persists scenario engine output as append-only JSONL
// telemetry and aggregates it into run statistics. It is a consumer of the
// engine's per-turn output, not part of the engine: losing a record never
// affects a run.
package runlog

import (
	"fmt"
	"time"

	"trpc.group/trpc-go/trpc-scenario-go/scenario"
)

// Event is the one-per-turn telemetry record.
type Event struct {
	Timestamp      time.Time         `json:"ts"`
	UserID         string            `json:"userId,omitempty"`
	ScenarioID     string            `json:"scenarioId"`
	RunID          string            `json:"runId"`
	Turn           int               `json:"turn"`
	Steps          int               `json:"steps"`
	AwaitingKind   string            `json:"awaitingKind,omitempty"`
	AwaitingNodeID string            `json:"awaitingNodeId,omitempty"`
	Slots          map[string]any    `json:"slots"`
	BranchPicked   map[string]string `json:"branchPicked,omitempty"`
	Ended          bool              `json:"ended"`
	ExecutedCounts map[string]int    `json:"executedCountsByType,omitempty"`
}

// TraceRecord is the per-step telemetry record.
type TraceRecord struct {
	Timestamp  time.Time          `json:"ts"`
	RunID      string             `json:"runId"`
	Turn       int                `json:"turn"`
	StepInTurn int                `json:"stepInTurn"`
	NodeID     string             `json:"nodeId"`
	NodeType   string             `json:"nodeType"`
	Awaiting   *scenario.Awaiting `json:"awaiting,omitempty"`
	Info       map[string]any     `json:"info,omitempty"`
}

// NewTurnEvent builds the telemetry event for one completed turn. turnTrace is
// the slice of trace entries appended during the turn. Mutable containers are
// copied out of the state so the event stays valid after the caller replays
// the state into the next turn.
func NewTurnEvent(userID, scenarioID string, state *scenario.State, turnTrace []scenario.TraceEntry) Event {
	evt := Event{
		Timestamp:      time.Now().UTC(),
		UserID:         userID,
		ScenarioID:     scenarioID,
		RunID:          state.RunID,
		Turn:           state.Turn,
		Steps:          len(turnTrace),
		Slots:          copySlots(state.Slots),
		BranchPicked:   branchPicked(turnTrace),
		Ended:          state.Ended(),
		ExecutedCounts: executedCounts(turnTrace),
	}
	if state.Awaiting != nil {
		evt.AwaitingKind = string(state.Awaiting.Kind)
		evt.AwaitingNodeID = state.Awaiting.NodeID
	}
	return evt
}

// branchPicked collects the branch choices made this turn from the
// awaitingResolved trace entries.
func branchPicked(turnTrace []scenario.TraceEntry) map[string]string {
	picked := make(map[string]string)
	for _, t := range turnTrace {
		if t.NodeType != scenario.TraceAwaitingResolved {
			continue
		}
		if kind, _ := t.Info["kind"].(string); kind != string(scenario.AwaitBranch) {
			continue
		}
		value, _ := t.Info["value"].(string)
		picked[t.NodeID] = value
	}
	if len(picked) == 0 {
		return nil
	}
	return picked
}

func executedCounts(turnTrace []scenario.TraceEntry) map[string]int {
	if len(turnTrace) == 0 {
		return nil
	}
	counts := make(map[string]int, len(turnTrace))
	for _, t := range turnTrace {
		nodeType := t.NodeType
		if nodeType == "" {
			nodeType = string(scenario.NodeTypeUnknown)
		}
		counts[nodeType]++
	}
	return counts
}

func copySlots(slots map[string]any) map[string]any {
	out := make(map[string]any, len(slots))
	for k, v := range slots {
		out[k] = v
	}
	return out
}

func stringifySlot(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}
