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

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"trpc.group/trpc-go/trpc-scenario-go/log"
)

const instrumentationName = "trpc.group/trpc-go/trpc-scenario-go/scenario"

// defaultMaxSteps bounds the number of nodes one turn may traverse.
const defaultMaxSteps = 256

// Executor is the per-turn entry point of the engine. It owns the compile
// cache; everything else it touches is the caller's state.
type Executor struct {
	cache    *CompileCache
	maxSteps int
	tracer   trace.Tracer
}

// Option configures an Executor.
type Option func(*Executor)

// WithCompileCache replaces the executor's compile cache, e.g. to share one
// cache between executors or to size it explicitly.
func WithCompileCache(cache *CompileCache) Option {
	return func(e *Executor) {
		if cache != nil {
			e.cache = cache
		}
	}
}

// WithMaxSteps sets the per-turn node traversal bound. Values below one keep
// the default.
func WithMaxSteps(n int) Option {
	return func(e *Executor) {
		if n >= 1 {
			e.maxSteps = n
		}
	}
}

// NewExecutor creates an executor with a default-sized compile cache.
func NewExecutor(opts ...Option) *Executor {
	e := &Executor{
		cache:    NewCompileCache(defaultCacheSize),
		maxSteps: defaultMaxSteps,
		tracer:   otel.Tracer(instrumentationName),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute advances one turn of a run. prev is the state returned by the
// previous call, or nil to start a fresh run; text is the turn's raw user
// input; action resolves a pending pause, if any. The returned state is the
// same aggregate, mutated in place, and must be replayed verbatim on the next
// call. Engine anomalies (unknown node types, unroutable choices, missing
// start candidates) are recovered locally and surface only in the trace; the
// only error returned is context cancellation.
func (e *Executor) Execute(ctx context.Context, g *Graph, text string, prev *State, action *Action) (*State, error) {
	state := prev
	if state == nil {
		state = &State{}
	}
	state.ensure()

	if state.RunID == "" {
		state.RunID = uuid.NewString()
	}
	state.InputText = text
	state.Turn++

	ctx, span := e.tracer.Start(ctx, "scenario.run",
		trace.WithAttributes(
			attribute.String("scenario.run_id", state.RunID),
			attribute.Int("scenario.turn", state.Turn),
		))
	defer span.End()

	traceStart := len(state.Trace)

	if text != "" {
		state.recordMessage(RoleUser, text, map[string]any{"source": "input"})
	}

	resolveAwaiting(state, action)

	cg := e.cache.GetOrCompile(g)
	if err := cg.invoke(ctx, state, e.maxSteps); err != nil {
		span.RecordError(err)
		return state, err
	}

	steps := len(state.TraceSince(traceStart))
	span.SetAttributes(attribute.Int("scenario.steps", steps))
	log.Debugf("scenario: run %s turn %d executed %d steps (awaiting=%v ended=%v)",
		state.RunID, state.Turn, steps, state.Awaiting != nil, state.Ended())
	return state, nil
}
