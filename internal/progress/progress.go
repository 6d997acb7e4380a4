// Package progress fans per-run progress events out to subscribers. The
// console progress display and the websocket feed both consume it.
package progress

import (
	"sync"
	"time"
)

// Pipeline stages, in order. Done and failed are terminal; publishing
// either one closes every subscriber for that run.
const (
	StageDetecting  = "detecting"
	StageSegmenting = "segmenting"
	StageProcessing = "processing"
	StageAssembling = "assembling"
	StageVerifying  = "verifying"
	StageDone       = "done"
	StageFailed     = "failed"
)

// Event is one progress update for a run.
type Event struct {
	RunID     string    `json:"run_id"`
	Stage     string    `json:"stage"`
	Segment   int       `json:"segment,omitempty"`
	Total     int       `json:"total,omitempty"`
	Message   string    `json:"message,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Terminal reports whether the event ends its run.
func (e Event) Terminal() bool {
	return e.Stage == StageDone || e.Stage == StageFailed
}

type runState struct {
	last    Event
	hasLast bool
	done    bool
	subs    map[chan Event]struct{}
}

// Tracker keeps the latest event per run and delivers updates without
// ever blocking the publisher. Slow subscribers lose intermediate events,
// not the stream.
type Tracker struct {
	mu   sync.Mutex
	runs map[string]*runState
}

func NewTracker() *Tracker {
	return &Tracker{runs: make(map[string]*runState)}
}

// Publish records the event and hands it to every subscriber of the run.
func (t *Tracker) Publish(e Event) {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	state := t.state(e.RunID)
	if state.done {
		return
	}
	state.last = e
	state.hasLast = true

	for ch := range state.subs {
		select {
		case ch <- e:
		default:
		}
	}

	if e.Terminal() {
		state.done = true
		for ch := range state.subs {
			close(ch)
		}
		state.subs = make(map[chan Event]struct{})
	}
}

// Subscribe returns a channel of events for the run and a cancel func.
// The latest event, if any, is delivered first; subscribing to a finished
// run yields that final event and an immediately closed channel.
func (t *Tracker) Subscribe(runID string) (<-chan Event, func()) {
	ch := make(chan Event, 16)

	t.mu.Lock()
	defer t.mu.Unlock()

	state := t.state(runID)
	if state.hasLast {
		ch <- state.last
	}
	if state.done {
		close(ch)
		return ch, func() {}
	}

	state.subs[ch] = struct{}{}
	cancel := func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		if _, ok := state.subs[ch]; ok {
			delete(state.subs, ch)
			close(ch)
		}
	}
	return ch, cancel
}

// Last returns the most recent event for a run.
func (t *Tracker) Last(runID string) (Event, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	state, ok := t.runs[runID]
	if !ok || !state.hasLast {
		return Event{}, false
	}
	return state.last, true
}

func (t *Tracker) state(runID string) *runState {
	state, ok := t.runs[runID]
	if !ok {
		state = &runState{subs: make(map[chan Event]struct{})}
		t.runs[runID] = state
	}
	return state
}
