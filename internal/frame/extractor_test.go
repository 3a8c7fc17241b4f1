// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// FrameGrabber - 视频批量抽帧工具

package frame

import (
	"context"
	"errors"
	"image/jpeg"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/benMerlotti/frameGrabber/internal/media/mediatest"
)

func writeFile(t *testing.T, path, content string) string {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func newExtractor(t *testing.T, dec *mediatest.Decoder, maxWidth uint) *Extractor {
	t.Helper()
	e, err := NewExtractor(Config{Decoder: dec, MaxWidth: maxWidth})
	if err != nil {
		t.Fatalf("NewExtractor() error = %v", err)
	}
	return e
}

func TestNewExtractor(t *testing.T) {
	if _, err := NewExtractor(Config{}); err == nil {
		t.Error("NewExtractor() without decoder error = nil")
	}
	if _, err := NewExtractor(Config{Decoder: mediatest.New(), JPEGQuality: 101}); err == nil {
		t.Error("NewExtractor() with quality 101 error = nil")
	}
}

func TestExtract(t *testing.T) {
	in := t.TempDir()
	out := filepath.Join(t.TempDir(), "frames")
	video := writeFile(t, filepath.Join(in, "holiday.clip.mp4"), "video")

	dec := mediatest.New()
	res := newExtractor(t, dec, 0).Extract(context.Background(), video, out, 5)

	if res.Err != nil {
		t.Fatalf("Extract() error = %v", res.Err)
	}
	if res.Name != "holiday.clip" || res.FramesWritten != 5 || res.Duration != 10 {
		t.Errorf("Extract() = %+v", res)
	}

	want := []string{
		filepath.Join(out, "holiday.clip", "holiday.clip_0.0.jpg"),
		filepath.Join(out, "holiday.clip", "holiday.clip_2.0.jpg"),
		filepath.Join(out, "holiday.clip", "holiday.clip_4.0.jpg"),
		filepath.Join(out, "holiday.clip", "holiday.clip_6.0.jpg"),
		filepath.Join(out, "holiday.clip", "holiday.clip_8.0.jpg"),
	}
	if !reflect.DeepEqual(res.OutputPaths, want) {
		t.Errorf("OutputPaths = %v, want %v", res.OutputPaths, want)
	}
	if got := dec.Requested(); !reflect.DeepEqual(got, []float64{0, 2, 4, 6, 8}) {
		t.Errorf("requested timestamps = %v", got)
	}

	f, err := os.Open(want[2])
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := jpeg.Decode(f)
	if err != nil {
		t.Fatalf("output is not a JPEG: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 32 || b.Dy() != 18 {
		t.Errorf("frame size = %v, want native 32x18", b)
	}

	if dec.Opens() != 1 || dec.Closes() != 1 {
		t.Errorf("opens = %d closes = %d, want 1/1", dec.Opens(), dec.Closes())
	}
}

func TestExtractDeterministicNames(t *testing.T) {
	in := t.TempDir()
	out := t.TempDir()
	video := writeFile(t, filepath.Join(in, "a.mkv"), "video")

	dec := mediatest.New()
	dec.Duration = 7
	e := newExtractor(t, dec, 0)

	first := e.Extract(context.Background(), video, out, 3)
	second := e.Extract(context.Background(), video, out, 3)
	if first.Err != nil || second.Err != nil {
		t.Fatalf("errors: %v, %v", first.Err, second.Err)
	}
	if !reflect.DeepEqual(first.OutputPaths, second.OutputPaths) {
		t.Errorf("names differ between runs: %v vs %v", first.OutputPaths, second.OutputPaths)
	}

	entries, err := os.ReadDir(filepath.Join(out, "a"))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 3 {
		t.Errorf("files on disk = %d, want 3", len(entries))
	}
}

func TestExtractDownscale(t *testing.T) {
	in := t.TempDir()
	video := writeFile(t, filepath.Join(in, "wide.mp4"), "video")

	dec := mediatest.New()
	dec.Width, dec.Height = 64, 32
	res := newExtractor(t, dec, 16).Extract(context.Background(), video, t.TempDir(), 1)
	if res.Err != nil {
		t.Fatal(res.Err)
	}

	f, err := os.Open(res.OutputPaths[0])
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	cfg, err := jpeg.DecodeConfig(f)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Width != 16 || cfg.Height != 8 {
		t.Errorf("size = %dx%d, want 16x8", cfg.Width, cfg.Height)
	}
}

func TestExtractShortVideo(t *testing.T) {
	video := writeFile(t, filepath.Join(t.TempDir(), "blip.mp4"), "video")

	dec := mediatest.New()
	dec.Duration = 0.05
	res := newExtractor(t, dec, 0).Extract(context.Background(), video, t.TempDir(), 2)
	if res.Err != nil {
		t.Fatal(res.Err)
	}
	for _, ts := range dec.Requested() {
		if ts < 0 || ts >= 0.05 {
			t.Errorf("timestamp %v outside video", ts)
		}
	}
}

func TestExtractZeroFrames(t *testing.T) {
	video := writeFile(t, filepath.Join(t.TempDir(), "v.mp4"), "video")
	out := filepath.Join(t.TempDir(), "never")

	dec := mediatest.New()
	res := newExtractor(t, dec, 0).Extract(context.Background(), video, out, 0)

	if res.Err != nil || res.FramesWritten != 0 {
		t.Errorf("Extract(0) = %+v", res)
	}
	if _, err := os.Stat(out); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("output root created for zero frames: %v", err)
	}
	if dec.Opens() != 0 {
		t.Error("video opened for zero frames")
	}
}

func TestExtractOpenFailure(t *testing.T) {
	in := t.TempDir()
	video := writeFile(t, filepath.Join(in, "bad.avi"), mediatest.Corrupt)

	res := newExtractor(t, mediatest.New(), 0).Extract(context.Background(), video, t.TempDir(), 3)

	if !errors.Is(res.Err, ErrDecode) || !errors.Is(res.Err, mediatest.ErrCorrupt) {
		t.Fatalf("Err = %v, want decode error", res.Err)
	}
	var de *DecodeError
	if !errors.As(res.Err, &de) || de.Path != video {
		t.Errorf("DecodeError = %+v", de)
	}
	if res.FramesWritten != 0 || len(res.OutputPaths) != 0 {
		t.Errorf("frames written on open failure: %+v", res)
	}

	missing := newExtractor(t, mediatest.New(), 0).Extract(context.Background(), filepath.Join(in, "gone.mp4"), t.TempDir(), 3)
	if !errors.Is(missing.Err, ErrDecode) || !errors.Is(missing.Err, os.ErrNotExist) {
		t.Errorf("missing file Err = %v", missing.Err)
	}
}

func TestExtractFrameDecodeFailure(t *testing.T) {
	video := writeFile(t, filepath.Join(t.TempDir(), "v.mp4"), "video")

	dec := mediatest.New()
	dec.FrameErr = errors.New("broken packet")
	dec.FailFrame = 2
	res := newExtractor(t, dec, 0).Extract(context.Background(), video, t.TempDir(), 5)

	var de *DecodeError
	if !errors.As(res.Err, &de) || de.Timestamp != 4 {
		t.Fatalf("Err = %v, want decode error at 4s", res.Err)
	}
	if res.FramesWritten != 2 || len(res.OutputPaths) != 2 {
		t.Errorf("FramesWritten = %d, want 2 kept", res.FramesWritten)
	}
	if len(dec.Requested()) != 3 {
		t.Errorf("frames requested after failure: %v", dec.Requested())
	}
	if dec.Closes() != 1 {
		t.Error("video not closed after frame failure")
	}
}

func TestExtractWriteFailure(t *testing.T) {
	video := writeFile(t, filepath.Join(t.TempDir(), "v.mp4"), "video")
	out := t.TempDir()

	// a directory where the second JPEG should go
	if err := os.MkdirAll(filepath.Join(out, "v", "v_2.0.jpg"), 0755); err != nil {
		t.Fatal(err)
	}

	dec := mediatest.New()
	res := newExtractor(t, dec, 0).Extract(context.Background(), video, out, 5)

	var we *FrameWriteError
	if !errors.As(res.Err, &we) || !errors.Is(res.Err, ErrFrameWrite) {
		t.Fatalf("Err = %v, want frame write error", res.Err)
	}
	if we.Path != filepath.Join(out, "v", "v_2.0.jpg") {
		t.Errorf("FrameWriteError.Path = %q", we.Path)
	}
	if res.FramesWritten != 1 {
		t.Errorf("FramesWritten = %d, want 1", res.FramesWritten)
	}
	if dec.Closes() != 1 {
		t.Error("video not closed after write failure")
	}
}

func TestExtractOutputRootIsFile(t *testing.T) {
	video := writeFile(t, filepath.Join(t.TempDir(), "v.mp4"), "video")
	root := writeFile(t, filepath.Join(t.TempDir(), "file"), "x")

	dec := mediatest.New()
	res := newExtractor(t, dec, 0).Extract(context.Background(), video, root, 3)
	if !errors.Is(res.Err, ErrFrameWrite) {
		t.Errorf("Err = %v, want frame write error", res.Err)
	}
	if dec.Opens() != 0 {
		t.Error("video opened although nothing can be written")
	}
}
