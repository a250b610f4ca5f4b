//
// Tencent is pleased to support the open source community by making trpc-scenario-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-scenario-go is licensed under the Apache License Version 2.0.
//
//

package scenario

// Graph sentinels. End is the terminal transition target: a node that leaves
// state.next at End stops the turn. Router is the synthetic entry node the
// compiler prepends to every graph.
const (
	End    = "__end__"
	Router = "__router__"
)

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Trace entry types that do not correspond to a builder node type.
const (
	// TraceAwaitingResolved records an action consuming a pause.
	TraceAwaitingResolved = "awaitingResolved"
	// TraceStepLimit records the per-turn safety cutoff firing.
	TraceStepLimit = "stepLimit"
)

// Reserved var keys. Vars under these keys are display bookkeeping written by
// the awaiting resolver, not durable answers.
const (
	VarKeyLastDisplay     = "__last_display__"
	VarKeyLastBranchValue = "__last_branch_value__"
)
