// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// FrameGrabber - 视频批量抽帧工具

package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	cli "github.com/urfave/cli/v3"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	app.ErrWriter = &out
	app.ExitErrHandler = func(context.Context, *cli.Command, error) {}

	err := app.Run(context.Background(), append([]string{"framegrabber"}, args...))
	return out.String(), err
}

func exitCode(err error) int {
	var ec cli.ExitCoder
	if errors.As(err, &ec) {
		return ec.ExitCode()
	}
	if err != nil {
		return -1
	}
	return 0
}

func TestExtractNoVideos(t *testing.T) {
	in := t.TempDir()
	if err := os.WriteFile(filepath.Join(in, "notes.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	out, err := run(t, "--backend", "mpeg", in, filepath.Join(t.TempDir(), "out"))
	if exitCode(err) != 0 {
		t.Fatalf("exit = %d (%v), output %q", exitCode(err), err, out)
	}
	if !strings.Contains(out, "No videos found") {
		t.Errorf("output = %q", out)
	}
}

func TestExtractCorruptVideos(t *testing.T) {
	in := t.TempDir()
	for _, name := range []string{"a.mp4", "b.mkv"} {
		if err := os.WriteFile(filepath.Join(in, name), []byte("not a video at all"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	out, err := run(t, "--backend", "mpeg", "--frames", "2", in, t.TempDir())
	if exitCode(err) != 0 {
		t.Fatalf("exit = %d (%v), per-video errors must not fail the run", exitCode(err), err)
	}
	if strings.Count(out, "FAILED") != 2 || !strings.Contains(out, "2 videos failed") {
		t.Errorf("output = %q", out)
	}
}

func TestExtractZeroFrames(t *testing.T) {
	in := t.TempDir()
	if err := os.WriteFile(filepath.Join(in, "a.mp4"), []byte("not a video at all"), 0644); err != nil {
		t.Fatal(err)
	}
	outDir := filepath.Join(t.TempDir(), "out")

	out, err := run(t, "--backend", "mpeg", "--frames", "0", in, outDir)
	if exitCode(err) != 0 {
		t.Fatalf("exit = %d (%v), output %q", exitCode(err), err, out)
	}
	if strings.Contains(out, "FAILED") || !strings.Contains(out, "0 frames written") {
		t.Errorf("output = %q", out)
	}
	if _, err := os.Stat(filepath.Join(outDir, "a")); !os.IsNotExist(err) {
		t.Errorf("per-video directory created for zero frames: %v", err)
	}
}

func TestExtractFatal(t *testing.T) {
	_, err := run(t, "--backend", "mpeg", filepath.Join(t.TempDir(), "missing"), t.TempDir())
	if exitCode(err) != 1 {
		t.Errorf("exit = %d, want 1", exitCode(err))
	}
}

func TestExtractBadArguments(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "no arguments", args: nil},
		{name: "one argument", args: []string{"in"}},
		{name: "negative frames", args: []string{"--backend", "mpeg", "--frames", "-1", "in", "out"}},
		{name: "unknown backend", args: []string{"--backend", "vlc", "in", "out"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := run(t, tt.args...); exitCode(err) != 1 {
				t.Errorf("exit = %d (%v), want 1", exitCode(err), err)
			}
		})
	}
}
