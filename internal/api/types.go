// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// FrameGrabber - 视频批量抽帧工具

package api

// Options for front ends
type Options struct {
	FrameCounts   []int    `json:"frame_counts"`
	DefaultFrames int      `json:"default_frames"`
	Extensions    []string `json:"extensions"`
	Backend       string   `json:"backend"`
}

// BatchRequest for Add
type BatchRequest struct {
	ID         string `json:"id"`
	Reference  string `json:"reference"`
	InputDir   string `json:"input_dir" binding:"required"`
	OutputDir  string `json:"output_dir" binding:"required"`
	FrameCount int    `json:"frame_count" binding:"gte=0"`
}

// Batch represents a task in API response
type Batch struct {
	ID        string        `json:"id"`
	Reference string        `json:"reference"`
	CreatedAt int64         `json:"created_at"`
	UpdatedAt int64         `json:"updated_at"`
	Config    *BatchConfig  `json:"config,omitempty"`
	State     *BatchState   `json:"state,omitempty"`
	Summary   *BatchSummary `json:"summary,omitempty"`
}

// BatchConfig in API format
type BatchConfig struct {
	InputDir   string `json:"input_dir"`
	OutputDir  string `json:"output_dir"`
	FrameCount int    `json:"frame_count"`
}

// BatchState for API
type BatchState struct {
	State     string       `json:"exec"`
	Cancelled bool         `json:"cancelled"`
	Processed int          `json:"processed"`
	Total     int          `json:"total"`
	Elapsed   float64      `json:"elapsed_seconds"`
	Last      *BatchResult `json:"last,omitempty"`
}

// BatchResult is the outcome of one video
type BatchResult struct {
	Path          string   `json:"path"`
	Name          string   `json:"name"`
	FramesWritten int      `json:"frames_written"`
	OutputPaths   []string `json:"output_paths"`
	Duration      float64  `json:"duration_seconds"`
	Elapsed       float64  `json:"elapsed_seconds"`
	Error         string   `json:"error,omitempty"`
}

// BatchSummary of a finished batch
type BatchSummary struct {
	Status        string        `json:"status"`
	Total         int           `json:"total"`
	Processed     int           `json:"processed"`
	Failed        int           `json:"failed"`
	FramesWritten int           `json:"frames_written"`
	Elapsed       float64       `json:"elapsed_seconds"`
	Error         string        `json:"error,omitempty"`
	Results       []BatchResult `json:"results"`
}

// CommandRequest for cancel
type CommandRequest struct {
	Command string `json:"command" binding:"required"`
}

// ErrorResponse for API errors
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}
