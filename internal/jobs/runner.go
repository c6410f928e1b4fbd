// Package jobs runs long crawl and embed batches in the background.
// Each kind has a single slot: starting a crawl while a crawl is
// already running fails with ErrBusy instead of queueing, which keeps
// the browser and the embedding provider from being hammered by
// overlapping batches. A crawl and an embed batch may run side by
// side.
package jobs

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrBusy means a job of the requested kind is already running.
var ErrBusy = errors.New("a job of this kind is already running")

// Progress is a point-in-time snapshot of one job slot.
type Progress struct {
	Kind         Kind       `json:"kind,omitempty"`
	State        State      `json:"state"`
	Total        int        `json:"total"`
	Completed    int        `json:"completed"`
	Success      int        `json:"success"`
	Errors       int        `json:"errors"`
	CurrentItem  string     `json:"current_item,omitempty"`
	StartedAt    *time.Time `json:"started_at,omitempty"`
	FinishedAt   *time.Time `json:"finished_at,omitempty"`
	ErrorMessage string     `json:"error,omitempty"`
}

// ItemFunc processes one work item and reports whether it succeeded.
type ItemFunc func(ctx context.Context, item string) error

type slot struct {
	running  bool
	cancel   context.CancelFunc
	progress Progress
}

// Runner owns one job slot per kind. Items are processed sequentially
// within a slot; an item error is counted and the batch continues.
type Runner struct {
	mu    sync.Mutex
	slots map[Kind]*slot
}

func NewRunner() *Runner {
	return &Runner{slots: make(map[Kind]*slot)}
}

// slot returns the kind's slot, creating it idle on first use. Callers
// must hold mu.
func (r *Runner) slot(kind Kind) *slot {
	s, ok := r.slots[kind]
	if !ok {
		s = &slot{progress: Progress{Kind: kind, State: StateIdle}}
		r.slots[kind] = s
	}
	return s
}

// Start claims the kind's slot and processes items in a new goroutine.
// It returns ErrBusy when a job of that kind is already running.
func (r *Runner) Start(ctx context.Context, kind Kind, items []string, fn ItemFunc) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := r.slot(kind)
	if s.running {
		return ErrBusy
	}

	now := time.Now().UTC()
	jobCtx, cancel := context.WithCancel(ctx)
	s.running = true
	s.cancel = cancel
	s.progress = Progress{
		Kind:      kind,
		State:     StateRunning,
		Total:     len(items),
		StartedAt: &now,
	}

	go r.run(jobCtx, s, items, fn)
	return nil
}

func (r *Runner) run(ctx context.Context, s *slot, items []string, fn ItemFunc) {
	for _, item := range items {
		if ctx.Err() != nil {
			r.finish(s, StateError, "canceled")
			return
		}

		r.mu.Lock()
		s.progress.CurrentItem = item
		r.mu.Unlock()

		err := fn(ctx, item)

		r.mu.Lock()
		s.progress.Completed++
		if err != nil {
			s.progress.Errors++
		} else {
			s.progress.Success++
		}
		r.mu.Unlock()
	}
	r.finish(s, StateCompleted, "")
}

func (r *Runner) finish(s *slot, state State, msg string) {
	now := time.Now().UTC()
	r.mu.Lock()
	defer r.mu.Unlock()
	s.running = false
	s.cancel = nil
	s.progress.State = state
	s.progress.CurrentItem = ""
	s.progress.FinishedAt = &now
	s.progress.ErrorMessage = msg
}

// Cancel stops the running job of the given kind, if any. The
// in-flight item finishes; remaining items are skipped.
func (r *Runner) Cancel(kind Kind) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := r.slot(kind)
	if !s.running || s.cancel == nil {
		return false
	}
	s.cancel()
	return true
}

// Status returns a copy of the kind's current progress.
func (r *Runner) Status(kind Kind) Progress {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.slot(kind).progress
}

// Running reports whether a job of the given kind is in flight.
func (r *Runner) Running(kind Kind) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.slot(kind).running
}
