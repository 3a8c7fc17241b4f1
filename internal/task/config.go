// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// FrameGrabber - 视频批量抽帧工具

package task

import (
	"strings"

	"github.com/benMerlotti/frameGrabber/internal/batch"
)

// Config for a batch task
type Config struct {
	ID         string `json:"id"`
	Reference  string `json:"reference"`
	InputDir   string `json:"input_dir"`
	OutputDir  string `json:"output_dir"`
	FrameCount int    `json:"frame_count"`
}

// Validate checks the config is complete. Directories themselves are
// checked when the batch runs.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.InputDir) == "" || strings.TrimSpace(c.OutputDir) == "" || c.FrameCount < 1 {
		return ErrInvalidConfig
	}
	return nil
}

// Options builds the batch options from config
func (c *Config) Options() batch.Options {
	return batch.Options{
		InputDir:   c.InputDir,
		OutputDir:  c.OutputDir,
		FrameCount: c.FrameCount,
	}
}
