/*
Package task runs units of work on a background worker.

A task moves through the states

	Scheduled → Running → { Succeeded | Failed | Cancelled }

and posts every transition, as well as progress messages of the job, as
events on a channel. Cancellation is cooperative: jobs check
Progress.Cancelled between units of work (e.g., between files of a batch).
A parse is never interrupted in the middle.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package task

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'koopa.batch'.
func tracer() tracing.Trace {
	return tracing.Select("koopa.batch")
}

// State is the lifecycle state of a task.
type State int

// States of a task
const (
	Scheduled State = iota
	Running
	Succeeded
	Failed
	Cancelled
)

func (s State) String() string {
	return [...]string{"scheduled", "running", "succeeded", "failed", "cancelled"}[s]
}

// Final is true for states a task does not leave.
func (s State) Final() bool {
	return s >= Succeeded
}

// Event is posted for state transitions and progress messages.
type Event struct {
	Task    uuid.UUID
	State   State
	Message string // progress message, empty for state transitions
	Err     error  // set for state Failed
	Time    time.Time
}

func (e Event) String() string {
	if e.Message != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Task.String()[:8], e.State, e.Message)
	}
	return fmt.Sprintf("[%s] %s", e.Task.String()[:8], e.State)
}

// Job is the work of a task. It receives a progress handle for reporting
// and for checking cancellation.
type Job func(p *Progress) error

// Task is a job running on a background worker.
type Task struct {
	ID     uuid.UUID
	Name   string
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
	out    chan Event
	mu     sync.Mutex
	cond   *sync.Cond
	queue  []Event // events not yet delivered
	closed bool    // no more events will be queued
	state  State
	err    error
}

// Start schedules a job on a new worker. The task is cancelled if ctx is.
func Start(ctx context.Context, name string, job Job) *Task {
	t := &Task{
		ID:   uuid.New(),
		Name: name,
		done: make(chan struct{}),
		out:  make(chan Event),
	}
	t.cond = sync.NewCond(&t.mu)
	t.ctx, t.cancel = context.WithCancel(ctx)
	t.post(Event{State: Scheduled})
	go t.deliver()
	go t.run(job)
	return t
}

// Events returns the channel of events. It is closed after the event for
// the final state has been delivered. Clients should drain it.
func (t *Task) Events() <-chan Event {
	return t.out
}

// Cancel requests cancellation. The job observes it cooperatively.
func (t *Task) Cancel() {
	tracer().Debugf("task %s: cancel requested", t.Name)
	t.cancel()
}

// Wait blocks until the task has reached a final state.
func (t *Task) Wait() (State, error) {
	<-t.done
	return t.State(), t.Err()
}

// State returns the current state.
func (t *Task) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Err returns the error of a failed task.
func (t *Task) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.err
}

func (t *Task) run(job Job) {
	defer t.cancel()
	if t.ctx.Err() != nil {
		t.finish(Cancelled, nil)
		return
	}
	t.post(Event{State: Running})
	err := t.call(job)
	switch {
	case t.ctx.Err() != nil:
		t.finish(Cancelled, nil)
	case err != nil:
		t.finish(Failed, err)
	default:
		t.finish(Succeeded, nil)
	}
}

// call runs the job, turning panics into errors.
func (t *Task) call(job Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			tracer().Errorf("task %s panicked: %v", t.Name, r)
			err = fmt.Errorf("task %s panicked: %v", t.Name, r)
		}
	}()
	return job(&Progress{t: t})
}

func (t *Task) finish(s State, err error) {
	tracer().Infof("task %s: %s", t.Name, s)
	t.post(Event{State: s, Err: err})
	close(t.done)
}

// post sets the state and queues an event for delivery. Once the task is in
// a final state, events are dropped.
func (t *Task) post(e Event) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state.Final() {
		tracer().Debugf("task %s already %s, dropping %s event", t.Name, t.state, e.State)
		return
	}
	e.Task, e.Time = t.ID, time.Now()
	t.state = e.State
	if e.State == Failed {
		t.err = e.Err
	}
	t.queue = append(t.queue, e)
	t.closed = e.State.Final()
	t.cond.Signal()
}

// deliver forwards queued events to the output channel, so that posting never
// blocks the job.
func (t *Task) deliver() {
	for {
		t.mu.Lock()
		for len(t.queue) == 0 && !t.closed {
			t.cond.Wait()
		}
		if len(t.queue) == 0 {
			t.mu.Unlock()
			close(t.out)
			return
		}
		e := t.queue[0]
		t.queue = t.queue[1:]
		t.mu.Unlock()
		t.out <- e
	}
}

// --- Progress --------------------------------------------------------------

// Progress is the handle of a job for reporting progress.
type Progress struct {
	t *Task
}

// Report posts a progress message.
func (p *Progress) Report(format string, args ...interface{}) {
	if p == nil || p.t == nil {
		return
	}
	p.t.post(Event{State: Running, Message: fmt.Sprintf(format, args...)})
}

// Cancelled is true if cancellation has been requested.
func (p *Progress) Cancelled() bool {
	return p != nil && p.t != nil && p.t.ctx.Err() != nil
}

// Context returns the task's context, which is done on cancellation.
func (p *Progress) Context() context.Context {
	if p == nil || p.t == nil {
		return context.Background()
	}
	return p.t.ctx
}
