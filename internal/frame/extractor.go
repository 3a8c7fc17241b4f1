// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// FrameGrabber - 视频批量抽帧工具

// Package frame 负责单个视频的抽帧：计算采样时间点，逐帧解码并写出 JPEG。
package frame

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nfnt/resize"

	"github.com/benMerlotti/frameGrabber/internal/logger"
	"github.com/benMerlotti/frameGrabber/internal/media"
	"github.com/benMerlotti/frameGrabber/internal/metrics"
)

// DefaultQuality is the JPEG quality used when none is configured
const DefaultQuality = 90

// Result of extracting the frames of one video
type Result struct {
	Path          string        `json:"path"`
	Name          string        `json:"name"`
	FramesWritten int           `json:"frames_written"`
	OutputPaths   []string      `json:"output_paths"`
	Duration      float64       `json:"duration_seconds"`
	Elapsed       time.Duration `json:"elapsed"`
	// Err is nil, a *DecodeError or a *FrameWriteError
	Err error `json:"-"`
}

// OK reports whether the video was extracted without error
func (r Result) OK() bool {
	return r.Err == nil
}

// Config for the Extractor
type Config struct {
	Decoder media.Decoder
	// JPEGQuality 1..100, 0 means DefaultQuality
	JPEGQuality int
	// MaxWidth downscales wider frames, 0 keeps the native size
	MaxWidth uint
	Logger   logger.Logger
}

// Extractor writes evenly spaced frames of a video as JPEG files
type Extractor struct {
	decoder  media.Decoder
	quality  int
	maxWidth uint
	logger   logger.Logger
}

// NewExtractor creates an Extractor
func NewExtractor(config Config) (*Extractor, error) {
	if config.Decoder == nil {
		return nil, errors.New("no decoder given")
	}
	if config.JPEGQuality < 0 || config.JPEGQuality > 100 {
		return nil, fmt.Errorf("invalid jpeg quality %d", config.JPEGQuality)
	}

	e := &Extractor{
		decoder:  config.Decoder,
		quality:  config.JPEGQuality,
		maxWidth: config.MaxWidth,
		logger:   config.Logger,
	}
	if e.quality == 0 {
		e.quality = DefaultQuality
	}
	if e.logger == nil {
		e.logger = logger.Nop()
	}
	return e, nil
}

// Stem is the file name of path without its extension
func Stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Extract writes frameCount frames of videoPath into outputRoot/<stem>/.
// A frameCount <= 0 writes nothing and touches nothing. The first failing
// frame stops the extraction; frames written before it stay in the result.
func (e *Extractor) Extract(ctx context.Context, videoPath, outputRoot string, frameCount int) (result Result) {
	start := time.Now()
	result = Result{
		Path:        videoPath,
		Name:        Stem(videoPath),
		OutputPaths: []string{},
	}
	if frameCount <= 0 {
		return result
	}

	defer func() {
		result.Elapsed = time.Since(start)
		metrics.VideoExtractDuration.Observe(result.Elapsed.Seconds())
	}()

	dir := filepath.Join(outputRoot, result.Name)
	if err := os.MkdirAll(dir, 0755); err != nil {
		result.Err = &FrameWriteError{Path: dir, Err: err}
		return result
	}

	video, err := e.decoder.Open(ctx, videoPath)
	if err != nil {
		result.Err = &DecodeError{Path: videoPath, Timestamp: -1, Err: err}
		return result
	}
	defer func() {
		if err := video.Close(); err != nil {
			e.logger.Warn("closing %s: %v", videoPath, err)
		}
	}()

	result.Duration = video.Duration()
	specs := Sample(result.Duration, frameCount)
	if specs == nil {
		result.Err = &DecodeError{
			Path:      videoPath,
			Timestamp: -1,
			Err:       fmt.Errorf("%w: %v", media.ErrInvalidDuration, result.Duration),
		}
		return result
	}

	for _, spec := range specs {
		img, err := video.FrameAt(ctx, spec.Timestamp)
		if err != nil {
			result.Err = &DecodeError{Path: videoPath, Timestamp: spec.Timestamp, Err: err}
			return result
		}

		out := filepath.Join(dir, FileName(result.Name, spec.Timestamp))
		if err := e.write(out, e.scale(img)); err != nil {
			result.Err = &FrameWriteError{Path: out, Err: err}
			return result
		}

		result.FramesWritten++
		result.OutputPaths = append(result.OutputPaths, out)
		metrics.FramesWrittenTotal.Inc()
	}

	e.logger.Debug("%s: %d frames in %s", result.Name, result.FramesWritten, time.Since(start))
	return result
}

func (e *Extractor) scale(img image.Image) image.Image {
	if e.maxWidth == 0 || uint(img.Bounds().Dx()) <= e.maxWidth {
		return img
	}
	return resize.Resize(e.maxWidth, 0, img, resize.Lanczos3)
}

func (e *Extractor) write(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	if err := jpeg.Encode(f, img, &jpeg.Options{Quality: e.quality}); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	return f.Close()
}
