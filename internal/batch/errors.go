// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// FrameGrabber - 视频批量抽帧工具

package batch

import (
	"errors"
	"fmt"
)

var (
	ErrInputDir  = errors.New("invalid input directory")
	ErrOutputDir = errors.New("invalid output directory")
)

// InputDirError means the input directory is missing, not a directory or
// cannot be listed. It is fatal to the batch.
type InputDirError struct {
	Path string
	Err  error
}

func (e *InputDirError) Error() string {
	return fmt.Sprintf("input directory %s: %v", e.Path, e.Err)
}

func (e *InputDirError) Unwrap() error { return e.Err }

func (e *InputDirError) Is(target error) bool { return target == ErrInputDir }

// OutputDirError means the output directory cannot be created
type OutputDirError struct {
	Path string
	Err  error
}

func (e *OutputDirError) Error() string {
	return fmt.Sprintf("output directory %s: %v", e.Path, e.Err)
}

func (e *OutputDirError) Unwrap() error { return e.Err }

func (e *OutputDirError) Is(target error) bool { return target == ErrOutputDir }
