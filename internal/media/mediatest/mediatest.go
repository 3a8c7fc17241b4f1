// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// FrameGrabber - 视频批量抽帧工具

// Package mediatest provides a synthetic media.Decoder for tests.
package mediatest

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"os"
	"sync"
	"time"

	"github.com/benMerlotti/frameGrabber/internal/media"
)

// Corrupt is the file content prefix that makes Open fail
const Corrupt = "corrupt"

// ErrCorrupt is returned when opening a corrupt file
var ErrCorrupt = errors.New("mediatest: corrupt video")

// Decoder serves solid-color videos of a fixed duration for every file on
// disk whose content does not start with Corrupt.
type Decoder struct {
	Duration      float64
	Width, Height int

	// FrameErr is returned by the FailFrame-th FrameAt call of a video
	FrameErr  error
	FailFrame int

	// Delay is spent in every FrameAt call, cut short by the context
	Delay time.Duration

	// OnOpen is called with the path before it is opened
	OnOpen func(path string)

	lock      sync.Mutex
	opens     int
	closes    int
	requested []float64
}

// New creates a Decoder of 10s 32x18 videos
func New() *Decoder {
	return &Decoder{Duration: 10, Width: 32, Height: 18, FailFrame: -1}
}

func (d *Decoder) Open(ctx context.Context, path string) (media.Video, error) {
	if d.OnOpen != nil {
		d.OnOpen(path)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if bytes.HasPrefix(data, []byte(Corrupt)) {
		return nil, ErrCorrupt
	}

	d.lock.Lock()
	d.opens++
	d.lock.Unlock()

	return &video{d: d}, nil
}

// Opens is the number of successfully opened videos
func (d *Decoder) Opens() int {
	d.lock.Lock()
	defer d.lock.Unlock()
	return d.opens
}

// Closes is the number of closed videos
func (d *Decoder) Closes() int {
	d.lock.Lock()
	defer d.lock.Unlock()
	return d.closes
}

// Requested lists every timestamp passed to FrameAt, in call order
func (d *Decoder) Requested() []float64 {
	d.lock.Lock()
	defer d.lock.Unlock()
	return append([]float64(nil), d.requested...)
}

type video struct {
	d      *Decoder
	calls  int
	closed bool
}

func (v *video) Duration() float64 {
	return v.d.Duration
}

func (v *video) FrameAt(ctx context.Context, t float64) (image.Image, error) {
	if v.closed {
		return nil, errors.New("mediatest: video is closed")
	}

	v.d.lock.Lock()
	v.d.requested = append(v.d.requested, t)
	v.d.lock.Unlock()

	call := v.calls
	v.calls++

	if v.d.Delay > 0 {
		select {
		case <-time.After(v.d.Delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if v.d.FrameErr != nil && call == v.d.FailFrame {
		return nil, v.d.FrameErr
	}

	img := image.NewRGBA(image.Rect(0, 0, v.d.Width, v.d.Height))
	shade := uint8(255 * t / v.d.Duration)
	for y := 0; y < v.d.Height; y++ {
		for x := 0; x < v.d.Width; x++ {
			img.Set(x, y, color.RGBA{R: shade, G: 64, B: 255 - shade, A: 255})
		}
	}
	return img, nil
}

func (v *video) Close() error {
	if v.closed {
		return nil
	}
	v.closed = true

	v.d.lock.Lock()
	v.d.closes++
	v.d.lock.Unlock()
	return nil
}
