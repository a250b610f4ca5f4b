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
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/panjf2000/ants/v2"

	"trpc.group/trpc-go/trpc-scenario-go/log"
	"trpc.group/trpc-go/trpc-scenario-go/scenario"
)

const (
	eventsFileName = "run_events.jsonl"
	traceFileName  = "run_trace.jsonl"
)

// Sink appends run telemetry to JSONL files under a directory: one event
// record per turn plus one trace record per executed step. Appends are handed
// to a single-worker pool so the request path never blocks on disk; the worker
// serializes writes, and a mutex additionally guards the files against
// synchronous readers.
type Sink struct {
	dir  string
	sync bool

	mu   sync.Mutex
	pool *ants.Pool
}

// SinkOption configures a Sink.
type SinkOption func(*Sink)

// WithSynchronous makes RecordTurn write inline instead of through the worker
// pool. Intended for tests and short-lived tools that must observe records
// immediately.
func WithSynchronous() SinkOption {
	return func(s *Sink) { s.sync = true }
}

// NewSink creates a sink writing under dir, creating it if needed.
func NewSink(dir string, opts ...SinkOption) (*Sink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create runlog dir: %w", err)
	}
	s := &Sink{dir: dir}
	for _, opt := range opts {
		opt(s)
	}
	if !s.sync {
		pool, err := ants.NewPool(1)
		if err != nil {
			return nil, fmt.Errorf("create runlog pool: %w", err)
		}
		s.pool = pool
	}
	return s, nil
}

// RecordTurn persists the telemetry of one completed turn: the turn event and
// one trace record per step.
func (s *Sink) RecordTurn(userID, scenarioID string, state *scenario.State, turnTrace []scenario.TraceEntry) {
	evt := NewTurnEvent(userID, scenarioID, state, turnTrace)
	records := make([]TraceRecord, 0, len(turnTrace))
	for i, t := range turnTrace {
		records = append(records, TraceRecord{
			Timestamp:  t.Timestamp,
			RunID:      state.RunID,
			Turn:       state.Turn,
			StepInTurn: i + 1,
			NodeID:     t.NodeID,
			NodeType:   t.NodeType,
			Awaiting:   state.Awaiting,
			Info:       t.Info,
		})
	}

	write := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for _, r := range records {
			if err := appendJSONL(filepath.Join(s.dir, traceFileName), r); err != nil {
				log.Errorf("runlog: append trace record: %v", err)
				break
			}
		}
		if err := appendJSONL(filepath.Join(s.dir, eventsFileName), evt); err != nil {
			log.Errorf("runlog: append event: %v", err)
		}
	}

	if s.sync || s.pool == nil {
		write()
		return
	}
	if err := s.pool.Submit(write); err != nil {
		// Pool released or overloaded; losing telemetry must not fail a turn.
		log.Warnf("runlog: submit write: %v", err)
	}
}

// EventsPath returns the path of the events file.
func (s *Sink) EventsPath() string {
	return filepath.Join(s.dir, eventsFileName)
}

// Close releases the worker pool, waiting briefly for queued writes.
func (s *Sink) Close() {
	if s.pool != nil {
		s.pool.Release()
	}
}

func appendJSONL(path string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := f.Write(append(data, '\n')); err != nil {
		return err
	}
	return nil
}
