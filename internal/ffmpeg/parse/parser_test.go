// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// FrameGrabber - 视频批量抽帧工具

package parse

import (
	"math"
	"testing"
)

func TestParseDuration(t *testing.T) {
	tests := []struct {
		name string
		line string
		want float64
	}{
		{
			name: "two digit fraction",
			line: "  Duration: 00:00:10.00, start: 0.000000, bitrate: 1205 kb/s",
			want: 10,
		},
		{
			name: "hours and fraction",
			line: "  Duration: 01:02:03.25, start: 0.000000, bitrate: 900 kb/s",
			want: 3723.25,
		},
		{
			name: "three digit fraction",
			line: "Duration: 00:00:00.040",
			want: 0.04,
		},
		{
			name: "not available",
			line: "  Duration: N/A, bitrate: N/A",
			want: -1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New(Config{})
			p.Parse(tt.line)
			if got := p.Info().Duration; math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Duration = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLogRing(t *testing.T) {
	p := New(Config{LogLines: 2})
	p.Parse("one")
	p.Parse("two")
	p.Parse("three")

	lines := p.Log()
	if len(lines) != 2 {
		t.Fatalf("len(Log()) = %d, want 2", len(lines))
	}
	if lines[0].Data != "two" || lines[1].Data != "three" {
		t.Errorf("Log() = %v", lines)
	}

	p.ResetLog()
	if len(p.Log()) != 0 {
		t.Errorf("Log() after ResetLog = %v", p.Log())
	}
}

func TestParseVideoCodec(t *testing.T) {
	p := New(Config{})
	p.Parse("  Stream #0:1[0x2](und): Audio: aac (LC) (mp4a / 0x6134706D), 44100 Hz, stereo")
	if got := p.Info().Codec; got != "" {
		t.Fatalf("Codec = %q after an audio stream line", got)
	}
	p.Parse("  Stream #0:0[0x1](und): Video: h264 (High) (avc1 / 0x31637661), yuv420p, 1280x720, 25 fps")
	p.Parse("  Stream #0:2: Video: mjpeg (Baseline), yuvj420p, 320x240, 90k tbn (attached pic)")
	if got := p.Info().Codec; got != "h264" {
		t.Errorf("Codec = %q, want the first video stream h264", got)
	}

	p.ResetStats()
	if p.Info() != (Info{}) {
		t.Errorf("Info after ResetStats = %+v", p.Info())
	}
}
