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
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"time"

	"trpc.group/trpc-go/trpc-scenario-go/log"
	"trpc.group/trpc-go/trpc-scenario-go/scenario"
)

// Dropoff counts runs last seen stuck on each pause kind.
type Dropoff struct {
	Slot   int `json:"slot"`
	Branch int `json:"branch"`
}

// DayCount is the number of runs completed on a day (UTC, YYYY-MM-DD).
type DayCount struct {
	Day       string `json:"day"`
	Completed int    `json:"completed"`
}

// Summary aggregates the events file into per-scenario run statistics.
type Summary struct {
	ScenarioID    string  `json:"scenarioId"`
	TotalRuns     int     `json:"totalRuns"`
	CompletedRuns int     `json:"completedRuns"`
	Dropoff       Dropoff `json:"dropoff"`
	// SlotDist counts, per slot name, how often each final value occurred.
	SlotDist map[string]map[string]int `json:"slotDist"`
	// BranchDist counts how often each branch choice value was picked.
	BranchDist map[string]int `json:"branchDist"`
	AvgTurns   float64        `json:"avgTurns"`
	AvgSteps   float64        `json:"avgSteps"`
	ByDay      []DayCount     `json:"byDay"`
}

// runAggregate folds all events of one run.
type runAggregate struct {
	lastTs           time.Time
	lastTurn         int
	totalSteps       int
	lastAwaitingKind string
	lastSlots        map[string]any
	branchPicked     map[string]string
}

// Summarize replays the events file into a Summary for one scenario. from and
// to bound the event timestamps; zero values leave the range open. A missing
// events file yields an empty summary.
func (s *Sink) Summarize(scenarioID string, from, to time.Time) (*Summary, error) {
	summary := &Summary{
		ScenarioID: scenarioID,
		SlotDist:   map[string]map[string]int{},
		BranchDist: map[string]int{},
		ByDay:      []DayCount{},
	}

	s.mu.Lock()
	runs, err := s.collectRuns(scenarioID, from, to)
	s.mu.Unlock()
	if errors.Is(err, fs.ErrNotExist) {
		return summary, nil
	}
	if err != nil {
		return nil, err
	}

	byDay := map[string]int{}
	turnsSum, stepsSum := 0, 0
	for _, r := range runs {
		turnsSum += r.lastTurn
		stepsSum += r.totalSteps

		switch r.lastAwaitingKind {
		case "":
			summary.CompletedRuns++
			day := r.lastTs.UTC().Format("2006-01-02")
			byDay[day]++
		case string(scenario.AwaitSlot):
			summary.Dropoff.Slot++
		case string(scenario.AwaitBranch):
			summary.Dropoff.Branch++
		}

		for name, value := range r.lastSlots {
			dist := summary.SlotDist[name]
			if dist == nil {
				dist = map[string]int{}
				summary.SlotDist[name] = dist
			}
			dist[stringifySlot(value)]++
		}
		for _, picked := range r.branchPicked {
			summary.BranchDist[picked]++
		}
	}

	summary.TotalRuns = len(runs)
	if len(runs) > 0 {
		summary.AvgTurns = float64(turnsSum) / float64(len(runs))
		summary.AvgSteps = float64(stepsSum) / float64(len(runs))
	}
	for day, n := range byDay {
		summary.ByDay = append(summary.ByDay, DayCount{Day: day, Completed: n})
	}
	sort.Slice(summary.ByDay, func(i, j int) bool { return summary.ByDay[i].Day < summary.ByDay[j].Day })
	return summary, nil
}

func (s *Sink) collectRuns(scenarioID string, from, to time.Time) (map[string]*runAggregate, error) {
	f, err := os.Open(s.EventsPath())
	if err != nil {
		return nil, err
	}
	defer f.Close()

	runs := map[string]*runAggregate{}
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var evt Event
		if err := json.Unmarshal(line, &evt); err != nil {
			// A torn or corrupt line must not poison the aggregation.
			log.Warnf("runlog: skipping malformed event line: %v", err)
			continue
		}
		if evt.ScenarioID != scenarioID || evt.RunID == "" {
			continue
		}
		if !from.IsZero() && evt.Timestamp.Before(from) {
			continue
		}
		if !to.IsZero() && evt.Timestamp.After(to) {
			continue
		}

		r := runs[evt.RunID]
		if r == nil {
			r = &runAggregate{branchPicked: map[string]string{}}
			runs[evt.RunID] = r
		}
		r.totalSteps += evt.Steps
		if evt.Turn > r.lastTurn {
			r.lastTurn = evt.Turn
		}
		if !evt.Timestamp.Before(r.lastTs) {
			r.lastTs = evt.Timestamp
			r.lastAwaitingKind = evt.AwaitingKind
			if len(evt.Slots) > 0 {
				r.lastSlots = evt.Slots
			}
		}
		for node, picked := range evt.BranchPicked {
			r.branchPicked[node] = picked
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan events file: %w", err)
	}
	return runs, nil
}
