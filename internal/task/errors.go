// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// FrameGrabber - 视频批量抽帧工具

package task

import "errors"

var (
	ErrNotFound      = errors.New("task not found")
	ErrTaskExists    = errors.New("task already exists")
	ErrInvalidConfig = errors.New("invalid config: need input_dir, output_dir and frame_count >= 1")
	ErrFinished      = errors.New("task already finished")
	ErrClosed        = errors.New("store is closed")
)
