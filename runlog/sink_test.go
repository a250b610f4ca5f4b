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
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trpc.group/trpc-go/trpc-scenario-go/scenario"
)

func testGraph() *scenario.Graph {
	return &scenario.Graph{
		Nodes: []scenario.Node{
			{ID: "start", Type: scenario.NodeTypeMessage, Data: scenario.NodeData{Content: "Hi"}},
			{ID: "ask", Type: scenario.NodeTypeSlotFilling, Data: scenario.NodeData{Content: "Name?", Slot: "name"}},
			{ID: "bye", Type: scenario.NodeTypeMessage, Data: scenario.NodeData{Content: "Bye {{name}}"}},
		},
		Edges: []scenario.Edge{
			{Source: "start", Target: "ask"},
			{Source: "ask", Target: "bye"},
		},
	}
}

// runTwoTurns drives a full run through the engine and records both turns.
func runTwoTurns(t *testing.T, sink *Sink) {
	t.Helper()
	executor := scenario.NewExecutor()
	g := testGraph()

	state, err := executor.Execute(context.Background(), g, "", nil, nil)
	require.NoError(t, err)
	sink.RecordTurn("u1", "s1", state, state.TraceSince(0))

	traceStart := len(state.Trace)
	state, err = executor.Execute(context.Background(), g, "", state, &scenario.Action{Type: "reply", Value: "Sam"})
	require.NoError(t, err)
	sink.RecordTurn("u1", "s1", state, state.TraceSince(traceStart))
}

func readLines(t *testing.T, path string) [][]byte {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var lines [][]byte
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := make([]byte, len(scanner.Bytes()))
		copy(line, scanner.Bytes())
		lines = append(lines, line)
	}
	require.NoError(t, scanner.Err())
	return lines
}

func TestSinkRecordTurn(t *testing.T) {
	dir := t.TempDir()
	sink, err := NewSink(dir, WithSynchronous())
	require.NoError(t, err)
	defer sink.Close()

	runTwoTurns(t, sink)

	lines := readLines(t, sink.EventsPath())
	require.Len(t, lines, 2)

	var first, second Event
	require.NoError(t, json.Unmarshal(lines[0], &first))
	require.NoError(t, json.Unmarshal(lines[1], &second))

	assert.Equal(t, "u1", first.UserID)
	assert.Equal(t, "s1", first.ScenarioID)
	assert.Equal(t, 1, first.Turn)
	assert.Equal(t, 2, first.Steps)
	assert.Equal(t, string(scenario.AwaitSlot), first.AwaitingKind)
	assert.Equal(t, "ask", first.AwaitingNodeID)
	assert.False(t, first.Ended)
	assert.Equal(t, map[string]int{"message": 1, "slotfilling": 1}, first.ExecutedCounts)

	assert.Equal(t, first.RunID, second.RunID)
	assert.Equal(t, 2, second.Turn)
	assert.Empty(t, second.AwaitingKind)
	assert.True(t, second.Ended)
	assert.Equal(t, "Sam", second.Slots["name"])

	traceLines := readLines(t, filepath.Join(dir, traceFileName))
	require.Len(t, traceLines, 4) // 2 steps turn one, awaitingResolved + message turn two

	var step TraceRecord
	require.NoError(t, json.Unmarshal(traceLines[0], &step))
	assert.Equal(t, 1, step.StepInTurn)
	assert.Equal(t, "start", step.NodeID)
	assert.Equal(t, first.RunID, step.RunID)
}

func TestSinkAsyncClose(t *testing.T) {
	sink, err := NewSink(t.TempDir())
	require.NoError(t, err)

	state := &scenario.State{RunID: "r1", Turn: 1}
	sink.RecordTurn("u1", "s1", state, nil)
	sink.Close()

	// After Close, further records are dropped without failing the turn.
	sink.RecordTurn("u1", "s1", state, nil)
}

func TestBranchPicked(t *testing.T) {
	trace := []scenario.TraceEntry{
		{NodeID: "b", NodeType: scenario.TraceAwaitingResolved, Info: map[string]any{
			"kind": string(scenario.AwaitBranch), "value": "no", "next": "n",
		}},
		{NodeID: "ask", NodeType: scenario.TraceAwaitingResolved, Info: map[string]any{
			"kind": string(scenario.AwaitSlot), "value": "Sam", "next": "bye",
		}},
		{NodeID: "n", NodeType: "message", Info: map[string]any{"next": scenario.End}},
	}
	assert.Equal(t, map[string]string{"b": "no"}, branchPicked(trace))
	assert.Nil(t, branchPicked(nil))
}
