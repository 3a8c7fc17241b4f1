// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// FrameGrabber - 视频批量抽帧工具

package frame

import (
	"math"
	"strconv"
	"strings"
)

// ClampOffset is how far before the end a timestamp that reached the
// duration is moved back to.
const ClampOffset = 0.1

// Spec is one sampled frame position
type Spec struct {
	Index     int     `json:"index"`
	Timestamp float64 `json:"timestamp_seconds"`
}

// Sample returns n evenly spaced timestamps across duration, the first at 0.
// Timestamps that reach the duration are clamped with clampTimestamp.
func Sample(duration float64, n int) []Spec {
	if n <= 0 || !(duration > 0) {
		return nil
	}

	specs := make([]Spec, n)
	for i := range specs {
		specs[i] = Spec{
			Index:     i,
			Timestamp: clampTimestamp(float64(i)*duration/float64(n), duration),
		}
	}
	return specs
}

// clampTimestamp moves t to duration-ClampOffset (never below 0) when t
// would fall outside the video.
func clampTimestamp(t, duration float64) float64 {
	if t < duration {
		return t
	}
	return math.Max(duration-ClampOffset, 0)
}

// FormatTimestamp renders t the way it appears in frame file names: the
// shortest decimal that round-trips, always with a fractional part. Values
// with a decimal exponent below -4 or from 16 up use exponent form
// (1e-05, 1e+16).
func FormatTimestamp(t float64) string {
	if t != 0 {
		e := strconv.FormatFloat(t, 'e', -1, 64)
		if i := strings.IndexByte(e, 'e'); i >= 0 {
			if exp, err := strconv.Atoi(e[i+1:]); err == nil && (exp < -4 || exp >= 16) {
				return e
			}
		}
	}

	s := strconv.FormatFloat(t, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// FileName is the JPEG name of the frame of video stem at t
func FileName(stem string, t float64) string {
	return stem + "_" + FormatTimestamp(t) + ".jpg"
}
