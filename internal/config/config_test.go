// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// FrameGrabber - 视频批量抽帧工具

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Extract.Frames != 3 {
		t.Errorf("Extract.Frames = %d, want 3", cfg.Extract.Frames)
	}
	if cfg.Server.Bind != ":8080" {
		t.Errorf("Server.Bind = %q, want :8080", cfg.Server.Bind)
	}
	if cfg.Decoder.Backend != "ffmpeg" {
		t.Errorf("Decoder.Backend = %q, want ffmpeg", cfg.Decoder.Backend)
	}
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, "config.yaml", `
server:
  bind: "127.0.0.1:9000"
ffmpeg:
  path: /opt/ffmpeg/bin/ffmpeg
  timeout: 30s
extract:
  frames: 5
  timeout: 2m
output:
  max_width: 640
scan:
  extensions: [".mpg"]
  block: ['^\._']
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Bind != "127.0.0.1:9000" {
		t.Errorf("Server.Bind = %q", cfg.Server.Bind)
	}
	if cfg.FFmpeg.Path != "/opt/ffmpeg/bin/ffmpeg" {
		t.Errorf("FFmpeg.Path = %q", cfg.FFmpeg.Path)
	}
	if cfg.FFmpeg.ProbePath != "ffprobe" {
		t.Errorf("FFmpeg.ProbePath = %q, want default ffprobe", cfg.FFmpeg.ProbePath)
	}
	if cfg.FFmpeg.Timeout != 30*time.Second {
		t.Errorf("FFmpeg.Timeout = %v", cfg.FFmpeg.Timeout)
	}
	if cfg.Extract.Frames != 5 || cfg.Extract.Timeout != 2*time.Minute {
		t.Errorf("Extract = %+v", cfg.Extract)
	}
	if cfg.Output.MaxWidth != 640 || cfg.Output.JPEGQuality != 90 {
		t.Errorf("Output = %+v", cfg.Output)
	}
	if len(cfg.Scan.Extensions) != 1 || cfg.Scan.Extensions[0] != ".mpg" {
		t.Errorf("Scan.Extensions = %v", cfg.Scan.Extensions)
	}
	if len(cfg.Scan.Block) != 1 || cfg.Scan.Block[0] != `^\._` {
		t.Errorf("Scan.Block = %v", cfg.Scan.Block)
	}
}

func TestLoadTOML(t *testing.T) {
	path := writeFile(t, "config.toml", `
[decoder]
backend = "mpeg"

[extract]
frames = 10

[log]
level = "debug"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Decoder.Backend != "mpeg" {
		t.Errorf("Decoder.Backend = %q, want mpeg", cfg.Decoder.Backend)
	}
	if cfg.Extract.Frames != 10 {
		t.Errorf("Extract.Frames = %d, want 10", cfg.Extract.Frames)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want debug", cfg.Log.Level)
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := writeFile(t, "config.yaml", "extract:\n  frames: 5\n")
	t.Setenv("FRAMEGRABBER_EXTRACT_FRAMES", "20")
	t.Setenv("FRAMEGRABBER_SERVER_BIND", ":9999")
	t.Setenv("FRAMEGRABBER_SCAN_EXTENSIONS", ".mpg,.ts")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Extract.Frames != 20 {
		t.Errorf("Extract.Frames = %d, want 20", cfg.Extract.Frames)
	}
	if cfg.Server.Bind != ":9999" {
		t.Errorf("Server.Bind = %q, want :9999", cfg.Server.Bind)
	}
	if len(cfg.Scan.Extensions) != 2 {
		t.Errorf("Scan.Extensions = %v", cfg.Scan.Extensions)
	}
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "unknown backend", content: "decoder:\n  backend: gstreamer\n"},
		{name: "negative frames", content: "extract:\n  frames: -1\n"},
		{name: "quality out of range", content: "output:\n  jpeg_quality: 101\n"},
		{name: "broken yaml", content: "server: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, "config.yaml", tt.content)
			if _, err := Load(path); err == nil {
				t.Error("Load() error = nil, want error")
			}
		})
	}
}

func TestLoadZeroFrames(t *testing.T) {
	path := writeFile(t, "config.yaml", "extract:\n  frames: 0\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Extract.Frames != 0 {
		t.Errorf("Extract.Frames = %d, want 0", cfg.Extract.Frames)
	}
}
