//
// Tencent is pleased to support the open source community by making trpc-scenario-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-scenario-go is licensed under the Apache License Version 2.0.
//
//

package runlog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trpc.group/trpc-go/trpc-scenario-go/scenario"
)

// record appends a synthetic turn event through the sink.
func record(t *testing.T, sink *Sink, runID string, turn int, awaiting *scenario.Awaiting, slots map[string]any, picked map[string]string) {
	t.Helper()
	state := &scenario.State{
		RunID:    runID,
		Turn:     turn,
		Slots:    slots,
		Awaiting: awaiting,
	}
	var trace []scenario.TraceEntry
	for node, value := range picked {
		trace = append(trace, scenario.TraceEntry{
			NodeID:   node,
			NodeType: scenario.TraceAwaitingResolved,
			Info:     map[string]any{"kind": string(scenario.AwaitBranch), "value": value},
		})
	}
	// Pad with one executed node per turn so steps are non-zero.
	trace = append(trace, scenario.TraceEntry{NodeID: "n", NodeType: "message"})
	sink.RecordTurn("u1", "s1", state, trace)
}

func TestSummarize(t *testing.T) {
	sink, err := NewSink(t.TempDir(), WithSynchronous())
	require.NoError(t, err)
	defer sink.Close()

	// Run one completes after two turns, picking the "no" branch.
	record(t, sink, "run1", 1, &scenario.Awaiting{Kind: scenario.AwaitBranch, NodeID: "b"}, nil, nil)
	record(t, sink, "run1", 2, nil, map[string]any{"name": "Sam"}, map[string]string{"b": "no"})
	// Run two drops off while awaiting a slot.
	record(t, sink, "run2", 1, &scenario.Awaiting{Kind: scenario.AwaitSlot, NodeID: "ask", Slot: "name"}, nil, nil)
	// Run three completes immediately.
	record(t, sink, "run3", 1, nil, map[string]any{"name": "Kim"}, nil)

	summary, err := sink.Summarize("s1", time.Time{}, time.Time{})
	require.NoError(t, err)

	assert.Equal(t, "s1", summary.ScenarioID)
	assert.Equal(t, 3, summary.TotalRuns)
	assert.Equal(t, 2, summary.CompletedRuns)
	assert.Equal(t, 1, summary.Dropoff.Slot)
	assert.Equal(t, 0, summary.Dropoff.Branch)
	assert.Equal(t, map[string]int{"no": 1}, summary.BranchDist)
	assert.Equal(t, 1, summary.SlotDist["name"]["Sam"])
	assert.Equal(t, 1, summary.SlotDist["name"]["Kim"])
	assert.InDelta(t, 4.0/3.0, summary.AvgTurns, 1e-9)
	require.Len(t, summary.ByDay, 1)
	assert.Equal(t, 2, summary.ByDay[0].Completed)
}

func TestSummarizeFilters(t *testing.T) {
	sink, err := NewSink(t.TempDir(), WithSynchronous())
	require.NoError(t, err)
	defer sink.Close()

	record(t, sink, "run1", 1, nil, nil, nil)

	t.Run("other scenario sees nothing", func(t *testing.T) {
		summary, err := sink.Summarize("other", time.Time{}, time.Time{})
		require.NoError(t, err)
		assert.Equal(t, 0, summary.TotalRuns)
	})

	t.Run("time range excludes events", func(t *testing.T) {
		past := time.Now().UTC().Add(-2 * time.Hour)
		summary, err := sink.Summarize("s1", time.Time{}, past)
		require.NoError(t, err)
		assert.Equal(t, 0, summary.TotalRuns)
	})
}

func TestSummarizeMissingFile(t *testing.T) {
	sink, err := NewSink(t.TempDir(), WithSynchronous())
	require.NoError(t, err)
	defer sink.Close()

	summary, err := sink.Summarize("s1", time.Time{}, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, 0, summary.TotalRuns)
	assert.NotNil(t, summary.SlotDist)
	assert.Empty(t, summary.ByDay)
}
