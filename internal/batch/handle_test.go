// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// FrameGrabber - 视频批量抽帧工具

package batch

import (
	"context"
	"testing"
	"time"

	"github.com/benMerlotti/frameGrabber/internal/media/mediatest"
)

func TestHandleEvents(t *testing.T) {
	in := videoDir(t, "a.mp4", "b.mp4", "corrupt.mp4")

	h := newRunner(t, mediatest.New(), 0).Start(context.Background(), Options{InputDir: in, OutputDir: t.TempDir(), FrameCount: 2})

	var events []Event
	for ev := range h.Events() {
		events = append(events, ev)
	}

	if len(events) != 4 {
		t.Fatalf("events = %d, want 3 progress + done", len(events))
	}
	for i, ev := range events[:3] {
		if ev.Type != EventProgress || ev.Progress == nil || ev.Progress.Processed != i+1 {
			t.Errorf("event %d = %+v", i, ev)
		}
	}
	last := events[3]
	if last.Type != EventDone || last.Summary == nil || last.Summary.Status != StatusSuccess {
		t.Fatalf("last event = %+v", last)
	}

	s := h.Wait()
	if s.Processed != 3 || s.Failed() != 1 {
		t.Errorf("Wait() = %+v", s)
	}
}

func TestHandleCancel(t *testing.T) {
	in := videoDir(t, "1.mp4", "2.mp4", "3.mp4", "4.mp4", "5.mp4")

	release := make(chan struct{})
	dec := mediatest.New()
	opened := 0
	dec.OnOpen = func(string) {
		opened++
		if opened == 2 {
			<-release
		}
	}

	h := newRunner(t, dec, 0).Start(context.Background(), Options{InputDir: in, OutputDir: t.TempDir(), FrameCount: 1})

	ev := <-h.Events()
	if ev.Type != EventProgress || ev.Progress.Processed != 1 {
		t.Fatalf("first event = %+v", ev)
	}
	h.Cancel()
	close(release)

	s := h.Wait()
	if s.Status != StatusCancelled {
		t.Errorf("Status = %s, want cancelled", s.Status)
	}
	if s.Processed > 2 {
		t.Errorf("Processed = %d, want <= 2", s.Processed)
	}
	if !h.Cancelled() {
		t.Error("Cancelled() = false")
	}
}

func TestHandleAbort(t *testing.T) {
	in := videoDir(t, "1.mp4", "2.mp4")

	dec := mediatest.New()
	dec.Delay = time.Minute
	started := make(chan struct{}, 2)
	dec.OnOpen = func(string) { started <- struct{}{} }

	h := newRunner(t, dec, 0).Start(context.Background(), Options{InputDir: in, OutputDir: t.TempDir(), FrameCount: 1})
	<-started
	h.Abort()

	select {
	case <-h.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("batch did not stop after Abort")
	}

	s := h.Wait()
	if s.Status != StatusCancelled || s.Processed != 1 {
		t.Errorf("Status = %s, Processed = %d", s.Status, s.Processed)
	}
	if s.Results[0].Err == nil {
		t.Error("aborted video has no error")
	}
}
