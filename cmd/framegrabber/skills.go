// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// FrameGrabber - 视频批量抽帧工具

package main

import (
	"context"
	"fmt"
	"strings"

	cli "github.com/urfave/cli/v3"

	"github.com/benMerlotti/frameGrabber/internal/batch"
	"github.com/benMerlotti/frameGrabber/internal/logger"
)

// demuxers of the supported extensions, as ffmpeg names them
var extensionDemuxers = map[string]string{
	".mp4":  "mp4",
	".mov":  "mov",
	".avi":  "avi",
	".mkv":  "matroska",
	".webm": "webm",
	".wmv":  "asf",
	".flv":  "flv",
}

func skillsCommand() *cli.Command {
	return &cli.Command{
		Name:   "skills",
		Usage:  "Print what the configured ffmpeg can decode",
		Action: skillsAction,
	}
}

func skillsAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	log, err := logger.New("framegrabber", cfg.Log.Level)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	defer log.Sync()

	ff, err := newFFmpeg(cfg, log)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	s := ff.Skills()
	w := cmd.Root().Writer

	fmt.Fprintf(w, "ffmpeg %s\n", s.FFmpeg.Version)
	if s.FFmpeg.Compiler != "" {
		fmt.Fprintf(w, "  built with %s\n", s.FFmpeg.Compiler)
	}
	for _, lib := range s.FFmpeg.Libraries {
		fmt.Fprintf(w, "  %-14s %s\n", lib.Name, lib.Linked)
	}

	fmt.Fprintln(w, "\nSupported extensions:")
	for _, ext := range batch.SupportedExtensions {
		state := "ok"
		if !s.HasDemuxer(extensionDemuxers[ext]) {
			state = "missing demuxer " + extensionDemuxers[ext]
		}
		fmt.Fprintf(w, "  %-6s %s\n", ext, state)
	}

	fmt.Fprintf(w, "\nVideo decoders (%d):\n", len(s.Video))
	for _, c := range s.Video {
		fmt.Fprintf(w, "  %-16s %s\n", c.Id, c.Name)
	}

	if len(s.HWAccels) > 0 {
		ids := make([]string, len(s.HWAccels))
		for i, h := range s.HWAccels {
			ids[i] = h.Id
		}
		fmt.Fprintf(w, "\nHardware acceleration: %s\n", strings.Join(ids, ", "))
	}

	return nil
}
