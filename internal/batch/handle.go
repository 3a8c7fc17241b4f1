// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// FrameGrabber - 视频批量抽帧工具

package batch

import (
	"context"
)

// EventType of an Event
type EventType string

const (
	EventProgress EventType = "progress"
	EventDone     EventType = "done"
)

// Event is emitted by a batch started with Start. A done event carries the
// summary and is always the last one.
type Event struct {
	Type     EventType `json:"type"`
	Progress *Progress `json:"progress,omitempty"`
	Summary  *Summary  `json:"summary,omitempty"`
}

const eventBuffer = 64

// Handle controls a batch running on its own goroutine
type Handle struct {
	token  CancelToken
	abort  context.CancelFunc
	events chan Event
	done   chan struct{}

	summary Summary
}

// Start runs the batch on a new goroutine. Its events are delivered in order
// on Events, which is closed after the done event. The batch blocks while the
// event buffer is full, so callers either drain Events or call Wait.
func (r *Runner) Start(ctx context.Context, opts Options) *Handle {
	ctx, abort := context.WithCancel(ctx)
	h := &Handle{
		abort:  abort,
		events: make(chan Event, eventBuffer),
		done:   make(chan struct{}),
	}

	go func() {
		defer close(h.done)
		defer abort()

		summary := r.Run(ctx, opts, &h.token, func(p Progress) {
			h.events <- Event{Type: EventProgress, Progress: &p}
		})

		h.summary = summary
		h.events <- Event{Type: EventDone, Summary: &summary}
		close(h.events)
	}()

	return h
}

// Events delivers progress and completion
func (h *Handle) Events() <-chan Event {
	return h.events
}

// Cancel stops the batch before its next video
func (h *Handle) Cancel() {
	h.token.Cancel()
}

// Abort cancels the batch and kills the decoder of the running video
func (h *Handle) Abort() {
	h.token.Cancel()
	h.abort()
}

// Cancelled reports whether Cancel or Abort was called
func (h *Handle) Cancelled() bool {
	return h.token.Cancelled()
}

// Done is closed when the batch has finished
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Wait discards events not yet received and returns the summary once the
// batch has finished.
func (h *Handle) Wait() Summary {
	for range h.events {
	}
	<-h.done
	return h.summary
}
