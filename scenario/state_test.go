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
	"github.com/stretchr/testify/require"
)

func TestRecordersEnsureContainers(t *testing.T) {
	// A caller-supplied partial state must always be safely usable.
	s := &State{}
	s.recordMessage(RoleAssistant, "hi", nil)
	s.recordTrace("n1", "message", map[string]any{"next": End})

	require.Len(t, s.Messages, 1)
	require.Len(t, s.Trace, 1)
	assert.NotNil(t, s.Slots)
	assert.NotNil(t, s.Vars)
	assert.Equal(t, "hi", s.Messages[0].Content)
	assert.NotNil(t, s.Messages[0].Meta)
	assert.Equal(t, "n1", s.Trace[0].NodeID)
	assert.False(t, s.Trace[0].Timestamp.IsZero())
}

func TestTraceSince(t *testing.T) {
	s := &State{}
	s.recordTrace("a", "message", nil)
	s.recordTrace("b", "message", nil)

	assert.Len(t, s.TraceSince(0), 2)
	assert.Len(t, s.TraceSince(1), 1)
	assert.Equal(t, "b", s.TraceSince(1)[0].NodeID)
	assert.Nil(t, s.TraceSince(2))
	assert.Nil(t, s.TraceSince(-1))
}

func TestEnded(t *testing.T) {
	t.Run("paused run is not ended", func(t *testing.T) {
		s := &State{Next: End, Awaiting: &Awaiting{Kind: AwaitSlot, NodeID: "ask"}}
		assert.False(t, s.Ended())
	})

	t.Run("terminal transition ends the run", func(t *testing.T) {
		s := &State{Next: End}
		assert.True(t, s.Ended())
	})

	t.Run("cleared cursor ends the run", func(t *testing.T) {
		s := &State{}
		assert.True(t, s.Ended())
	})

	t.Run("mid-run continuation is not ended", func(t *testing.T) {
		s := &State{Cursor: "b", Next: "b"}
		assert.False(t, s.Ended())
	})
}
