// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// FrameGrabber - 视频批量抽帧工具

// Package batch 扫描输入目录中的视频并逐个抽帧，报告进度并支持协作式取消。
package batch

import (
	"context"
	"errors"
	"os"
	"sync/atomic"
	"time"

	"github.com/benMerlotti/frameGrabber/internal/frame"
	"github.com/benMerlotti/frameGrabber/internal/logger"
	"github.com/benMerlotti/frameGrabber/internal/metrics"
)

// Status is the final state of a batch
type Status string

const (
	StatusSuccess       Status = "success"
	StatusCancelled     Status = "cancelled"
	StatusNoVideosFound Status = "no_videos_found"
	StatusFatal         Status = "fatal"
)

// CancelToken asks a running batch to stop before its next video. The zero
// value is ready to use; a nil token is never cancelled.
type CancelToken struct {
	cancelled atomic.Bool
}

func (t *CancelToken) Cancel() {
	t.cancelled.Store(true)
}

func (t *CancelToken) Cancelled() bool {
	return t != nil && t.cancelled.Load()
}

// Progress is reported after every processed video
type Progress struct {
	Processed int           `json:"processed"`
	Total     int           `json:"total"`
	Elapsed   time.Duration `json:"elapsed"`
	// Last is the result of the video just processed
	Last frame.Result `json:"last"`
}

// ProgressFunc receives progress. Run calls it on the goroutine running the batch.
type ProgressFunc func(Progress)

// Summary of a finished batch
type Summary struct {
	Status     Status         `json:"status"`
	InputDir   string         `json:"input_dir"`
	OutputDir  string         `json:"output_dir"`
	FrameCount int            `json:"frame_count"`
	Total      int            `json:"total"`
	Processed  int            `json:"processed"`
	Results    []frame.Result `json:"results"`
	Elapsed    time.Duration  `json:"elapsed"`
	// Err is set for StatusFatal only
	Err error `json:"-"`
}

// Failed is the number of videos that ended with an error
func (s Summary) Failed() int {
	n := 0
	for _, r := range s.Results {
		if r.Err != nil {
			n++
		}
	}
	return n
}

// FramesWritten over all videos
func (s Summary) FramesWritten() int {
	n := 0
	for _, r := range s.Results {
		n += r.FramesWritten
	}
	return n
}

// Extractor extracts the frames of a single video
type Extractor interface {
	Extract(ctx context.Context, videoPath, outputRoot string, frameCount int) frame.Result
}

// Config for the Runner
type Config struct {
	Extractor Extractor
	// Filter selects videos, nil means DefaultFilter
	Filter Filter
	// Timeout bounds the extraction of one video, 0 means none
	Timeout time.Duration
	Logger  logger.Logger
}

// Options of a single batch
type Options struct {
	InputDir   string `json:"input_dir"`
	OutputDir  string `json:"output_dir"`
	FrameCount int    `json:"frame_count"`
}

// Runner extracts the frames of every video in a directory, one at a time
type Runner struct {
	extractor Extractor
	filter    Filter
	timeout   time.Duration
	logger    logger.Logger
}

// NewRunner creates a Runner
func NewRunner(config Config) (*Runner, error) {
	if config.Extractor == nil {
		return nil, errors.New("no extractor given")
	}
	if config.Timeout < 0 {
		return nil, errors.New("negative timeout")
	}

	r := &Runner{
		extractor: config.Extractor,
		filter:    config.Filter,
		timeout:   config.Timeout,
		logger:    config.Logger,
	}
	if r.filter == nil {
		r.filter = DefaultFilter()
	}
	if r.logger == nil {
		r.logger = logger.Nop()
	}
	return r, nil
}

// Run processes the batch synchronously. The token is checked before each
// video; a video already started always finishes. Cancelling ctx also stops
// the batch and aborts the running decoder. Per-video errors end up in the
// results and never change the status.
func (r *Runner) Run(ctx context.Context, opts Options, token *CancelToken, onProgress ProgressFunc) Summary {
	start := time.Now()
	summary := Summary{
		InputDir:   opts.InputDir,
		OutputDir:  opts.OutputDir,
		FrameCount: opts.FrameCount,
		Results:    []frame.Result{},
	}

	metrics.ActiveBatches.Inc()
	defer func() {
		metrics.ActiveBatches.Dec()
		metrics.BatchesTotal.WithLabelValues(string(summary.Status)).Inc()
	}()

	finish := func(status Status, err error) Summary {
		summary.Status = status
		summary.Err = err
		summary.Elapsed = time.Since(start)
		return summary
	}

	if err := checkInputDir(opts.InputDir); err != nil {
		r.logger.Error("%v", err)
		return finish(StatusFatal, err)
	}

	// the output root exists even when no video is found
	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		err = &OutputDirError{Path: opts.OutputDir, Err: err}
		r.logger.Error("%v", err)
		return finish(StatusFatal, err)
	}

	jobs, err := Scan(opts.InputDir, r.filter)
	if err != nil {
		r.logger.Error("%v", err)
		return finish(StatusFatal, err)
	}

	summary.Total = len(jobs)
	if len(jobs) == 0 {
		r.logger.Info("no videos found in %s", opts.InputDir)
		return finish(StatusNoVideosFound, nil)
	}

	r.logger.Info("extracting %d frames from %d videos in %s", opts.FrameCount, len(jobs), opts.InputDir)

	for _, job := range jobs {
		if token.Cancelled() || ctx.Err() != nil {
			r.logger.Info("batch cancelled after %d of %d videos", summary.Processed, summary.Total)
			return finish(StatusCancelled, nil)
		}

		result := r.extract(ctx, job, opts)
		summary.Results = append(summary.Results, result)
		summary.Processed++
		metrics.VideosProcessedTotal.WithLabelValues(outcome(result.Err)).Inc()

		if result.Err != nil {
			r.logger.Warn("%s: %v", job.Name, result.Err)
		} else {
			r.logger.Debug("%s: %d frames written", job.Name, result.FramesWritten)
		}

		if onProgress != nil {
			onProgress(Progress{
				Processed: summary.Processed,
				Total:     summary.Total,
				Elapsed:   time.Since(start),
				Last:      result,
			})
		}
	}

	r.logger.Info("batch done: %d videos, %d failed, %s", summary.Processed, summary.Failed(), time.Since(start))
	return finish(StatusSuccess, nil)
}

func (r *Runner) extract(ctx context.Context, job Job, opts Options) frame.Result {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}
	return r.extractor.Extract(ctx, job.Path, opts.OutputDir, opts.FrameCount)
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, frame.ErrFrameWrite):
		return "write_error"
	default:
		return "decode_error"
	}
}
