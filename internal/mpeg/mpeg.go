// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// FrameGrabber - 视频批量抽帧工具

// Package mpeg 提供纯 Go 的 MPEG-1 (Program Stream) 解码后端，不依赖外部 ffmpeg。
package mpeg

import (
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"sync"
	"time"

	"github.com/gen2brain/mpeg"

	"github.com/benMerlotti/frameGrabber/internal/media"
)

// Decoder opens MPEG-1 program streams (.mpg/.mpeg)
type Decoder struct{}

// New creates a Decoder
func New() *Decoder {
	return &Decoder{}
}

func (d *Decoder) Open(ctx context.Context, path string) (media.Video, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	mpg, err := mpeg.New(file)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("open mpeg stream: %w", err)
	}
	mpg.SetAudioEnabled(false)

	if !mpg.HasHeaders() || mpg.NumVideoStreams() == 0 {
		file.Close()
		return nil, media.ErrNoVideoStream
	}

	duration := mpg.Duration().Seconds()
	if duration <= 0 {
		file.Close()
		return nil, fmt.Errorf("%w: %v", media.ErrInvalidDuration, duration)
	}

	return &video{file: file, mpg: mpg, duration: duration}, nil
}

type video struct {
	file     *os.File
	mpg      *mpeg.MPEG
	duration float64

	lock   sync.Mutex
	closed bool
}

func (v *video) Duration() float64 {
	return v.duration
}

func (v *video) FrameAt(ctx context.Context, t float64) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	v.lock.Lock()
	defer v.lock.Unlock()

	if v.closed {
		return nil, errors.New("video is closed")
	}

	frame := v.mpg.SeekFrame(time.Duration(t*float64(time.Second)), true)
	if frame == nil {
		return nil, fmt.Errorf("%w: %gs", media.ErrNoFrame, t)
	}

	// the decoder reuses its frame buffers on the next seek
	return cloneYCbCr(frame.YCbCr()), nil
}

func (v *video) Close() error {
	v.lock.Lock()
	defer v.lock.Unlock()

	if v.closed {
		return nil
	}
	v.closed = true
	return v.file.Close()
}

func cloneYCbCr(src *image.YCbCr) *image.YCbCr {
	dst := *src
	dst.Y = append([]byte(nil), src.Y...)
	dst.Cb = append([]byte(nil), src.Cb...)
	dst.Cr = append([]byte(nil), src.Cr...)
	return &dst
}
