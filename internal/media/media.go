// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// FrameGrabber - 视频批量抽帧工具
//
// Package media defines the contract between frame extraction and the
// video decoding backends.

package media

import (
	"context"
	"errors"
	"image"
)

var (
	ErrNoVideoStream    = errors.New("no video stream")
	ErrUnsupportedCodec = errors.New("unsupported codec")
	ErrInvalidDuration  = errors.New("invalid duration")
	ErrNoFrame          = errors.New("no frame at timestamp")
)

// Video is an opened video. It is not safe for concurrent use; every
// extraction opens its own handle.
type Video interface {
	// Duration in seconds
	Duration() float64
	// FrameAt decodes the frame shown at t seconds
	FrameAt(ctx context.Context, t float64) (image.Image, error)
	Close() error
}

// Decoder opens videos
type Decoder interface {
	Open(ctx context.Context, path string) (Video, error)
}
