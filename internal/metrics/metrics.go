// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// FrameGrabber - 视频批量抽帧工具

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	VideosProcessedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "framegrabber_videos_processed_total",
		Help: "Videos handled by the batch runner, by outcome",
	}, []string{"outcome"})

	FramesWrittenTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "framegrabber_frames_written_total",
		Help: "JPEG frames written to disk",
	})

	VideoExtractDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "framegrabber_video_extract_seconds",
		Help:    "Wall time spent extracting the frames of one video",
		Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
	})

	BatchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "framegrabber_batches_total",
		Help: "Finished batch runs, by final status",
	}, []string{"status"})

	ActiveBatches = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "framegrabber_active_batches",
		Help: "Batch runs currently in progress",
	})
)
