// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// FrameGrabber - 视频批量抽帧工具

package task

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/lithammer/shortuuid/v4"

	"github.com/benMerlotti/frameGrabber/internal/batch"
	"github.com/benMerlotti/frameGrabber/internal/logger"
)

// State of a task
type State string

const (
	StateRunning  State = "running"
	StateFinished State = "finished"
)

// Task is a batch run
type Task struct {
	ID        string
	Reference string
	Config    *Config
	CreatedAt int64

	handle *batch.Handle
	done   chan struct{}

	lock     sync.RWMutex
	updated  int64
	progress batch.Progress
	summary  *batch.Summary
	subs     map[chan batch.Event]struct{}
}

// State returns whether the batch is still running
func (t *Task) State() State {
	t.lock.RLock()
	defer t.lock.RUnlock()
	if t.summary == nil {
		return StateRunning
	}
	return StateFinished
}

// UpdatedAt is the unix time of the last event
func (t *Task) UpdatedAt() int64 {
	t.lock.RLock()
	defer t.lock.RUnlock()
	return t.updated
}

// Progress returns the last reported progress
func (t *Task) Progress() batch.Progress {
	t.lock.RLock()
	defer t.lock.RUnlock()
	return t.progress
}

// Summary returns the summary of a finished batch, nil while running
func (t *Task) Summary() *batch.Summary {
	t.lock.RLock()
	defer t.lock.RUnlock()
	return t.summary
}

// Cancelled reports whether the task was asked to stop
func (t *Task) Cancelled() bool {
	return t.handle.Cancelled()
}

// Subscribe returns a channel receiving the events of the task from now on.
// It is closed when the batch finishes or unsubscribe is called. Slow
// subscribers miss progress events; Summary is always available after the
// channel is closed.
func (t *Task) Subscribe() (<-chan batch.Event, func()) {
	ch := make(chan batch.Event, 16)

	t.lock.Lock()
	defer t.lock.Unlock()

	if t.summary != nil {
		close(ch)
		return ch, func() {}
	}
	t.subs[ch] = struct{}{}

	return ch, func() {
		t.lock.Lock()
		defer t.lock.Unlock()
		if _, ok := t.subs[ch]; ok {
			delete(t.subs, ch)
			close(ch)
		}
	}
}

// Done is closed once the summary of the task is available
func (t *Task) Done() <-chan struct{} {
	return t.done
}

func (t *Task) consume(log logger.Logger) {
	defer close(t.done)

	for ev := range t.handle.Events() {
		t.lock.Lock()
		t.updated = time.Now().Unix()
		switch ev.Type {
		case batch.EventProgress:
			t.progress = *ev.Progress
		case batch.EventDone:
			t.summary = ev.Summary
		}
		for ch := range t.subs {
			select {
			case ch <- ev:
			default:
			}
		}
		if t.summary != nil {
			for ch := range t.subs {
				close(ch)
			}
			t.subs = map[chan batch.Event]struct{}{}
		}
		t.lock.Unlock()

		if ev.Type == batch.EventProgress {
			log.Debug("task %s: %d/%d", t.ID, ev.Progress.Processed, ev.Progress.Total)
		}
	}

	if s := t.Summary(); s != nil {
		log.Info("task %s %s: %d of %d videos, %d failed", t.ID, s.Status, s.Processed, s.Total, s.Failed())
	}
}

// Starter starts batches
type Starter interface {
	Start(ctx context.Context, opts batch.Options) *batch.Handle
}

// Store manages batch tasks in memory
type Store interface {
	Add(config *Config) (*Task, error)
	Get(id string) (*Task, error)
	List(ids []string, reference string) []*Task
	Cancel(id string) error
	Delete(id string) error
	// Close aborts every running batch and waits for them
	Close()
}

type store struct {
	runner Starter
	logger logger.Logger
	tasks  map[string]*Task
	mu     sync.RWMutex

	ctx    context.Context
	cancel context.CancelFunc
	closed bool
}

// NewStore creates a task store
func NewStore(runner Starter, log logger.Logger) Store {
	if log == nil {
		log = logger.Nop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &store{
		runner: runner,
		logger: log,
		tasks:  make(map[string]*Task),
		ctx:    ctx,
		cancel: cancel,
	}
}

func (s *store) Add(config *Config) (*Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrClosed
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if len(config.ID) == 0 {
		config.ID = shortuuid.New()
	}
	if _, exists := s.tasks[config.ID]; exists {
		return nil, ErrTaskExists
	}

	now := time.Now().Unix()
	t := &Task{
		ID:        config.ID,
		Reference: config.Reference,
		Config:    config,
		CreatedAt: now,
		updated:   now,
		done:      make(chan struct{}),
		subs:      map[chan batch.Event]struct{}{},
	}
	t.handle = s.runner.Start(s.ctx, config.Options())
	go t.consume(s.logger)

	s.tasks[config.ID] = t
	s.logger.Info("task %s started: %s -> %s, %d frames", t.ID, config.InputDir, config.OutputDir, config.FrameCount)

	return t, nil
}

func (s *store) Get(id string) (*Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tasks[id]
	if !ok {
		return nil, ErrNotFound
	}
	return t, nil
}

// List returns the matching tasks, oldest first
func (s *store) List(ids []string, reference string) []*Task {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []*Task{}
	for _, t := range s.tasks {
		if len(reference) > 0 && t.Reference != reference {
			continue
		}
		if len(ids) > 0 {
			found := false
			for _, id := range ids {
				if t.ID == id {
					found = true
					break
				}
			}
			if !found {
				continue
			}
		}
		out = append(out, t)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt != out[j].CreatedAt {
			return out[i].CreatedAt < out[j].CreatedAt
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (s *store) Cancel(id string) error {
	t, err := s.Get(id)
	if err != nil {
		return err
	}
	if t.State() == StateFinished {
		return ErrFinished
	}
	t.handle.Cancel()
	s.logger.Info("task %s cancel requested", id)
	return nil
}

func (s *store) Delete(id string) error {
	s.mu.Lock()
	t, ok := s.tasks[id]
	if !ok {
		s.mu.Unlock()
		return ErrNotFound
	}
	delete(s.tasks, id)
	s.mu.Unlock()

	t.handle.Abort()
	<-t.done
	s.logger.Info("task %s deleted", id)
	return nil
}

func (s *store) Close() {
	s.mu.Lock()
	s.closed = true
	tasks := make([]*Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		tasks = append(tasks, t)
	}
	s.mu.Unlock()

	s.cancel()
	for _, t := range tasks {
		t.handle.Abort()
		<-t.done
	}
}
