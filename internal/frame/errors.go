// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// FrameGrabber - 视频批量抽帧工具

package frame

import (
	"errors"
	"fmt"
)

var (
	ErrDecode     = errors.New("decode error")
	ErrFrameWrite = errors.New("frame write error")
)

// DecodeError means a video could not be opened or a frame could not be
// decoded. Timestamp is negative when the failure happened on open.
type DecodeError struct {
	Path      string
	Timestamp float64
	Err       error
}

func (e *DecodeError) Error() string {
	if e.Timestamp < 0 {
		return fmt.Sprintf("decode %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("decode %s at %ss: %v", e.Path, FormatTimestamp(e.Timestamp), e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

func (e *DecodeError) Is(target error) bool { return target == ErrDecode }

// FrameWriteError means an output directory or JPEG file could not be written
type FrameWriteError struct {
	Path string
	Err  error
}

func (e *FrameWriteError) Error() string {
	return fmt.Sprintf("write %s: %v", e.Path, e.Err)
}

func (e *FrameWriteError) Unwrap() error { return e.Err }

func (e *FrameWriteError) Is(target error) bool { return target == ErrFrameWrite }
