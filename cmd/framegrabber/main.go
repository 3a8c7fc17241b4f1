// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// FrameGrabber - 视频批量抽帧工具

package main

import (
	"context"
	"fmt"
	"log"
	"os"

	cli "github.com/urfave/cli/v3"

	"github.com/benMerlotti/frameGrabber/internal/batch"
	"github.com/benMerlotti/frameGrabber/internal/config"
	"github.com/benMerlotti/frameGrabber/internal/ffmpeg"
	"github.com/benMerlotti/frameGrabber/internal/frame"
	"github.com/benMerlotti/frameGrabber/internal/logger"
	"github.com/benMerlotti/frameGrabber/internal/media"
	"github.com/benMerlotti/frameGrabber/internal/mpeg"
)

func main() {
	if err := newApp().Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:      "framegrabber",
		Usage:     "Extract evenly spaced frames from every video in a directory",
		ArgsUsage: "input_dir output_dir",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "frames",
				Aliases: []string{"n"},
				Usage:   "Frames to extract per video, 0 writes none (default from config, 3)",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a YAML or TOML config file",
			},
			&cli.StringFlag{
				Name:  "backend",
				Usage: "Decoder backend: ffmpeg or mpeg (overrides config)",
			},
			&cli.StringFlag{
				Name:  "ffmpeg",
				Usage: "FFmpeg binary path (overrides config)",
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "Give up on a single video after this long, 0 for never (overrides config)",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "debug, info, warn or error (overrides config)",
			},
		},
		Action: extractAction,
		Commands: []*cli.Command{
			serveCommand(),
			skillsCommand(),
		},
	}
}

// loadConfig reads the config file and environment, then applies flags
func loadConfig(cmd *cli.Command) (*config.Config, error) {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if cmd.IsSet("frames") {
		cfg.Extract.Frames = int(cmd.Int("frames"))
	}
	if cmd.IsSet("backend") {
		cfg.Decoder.Backend = cmd.String("backend")
	}
	if cmd.IsSet("ffmpeg") {
		cfg.FFmpeg.Path = cmd.String("ffmpeg")
	}
	if cmd.IsSet("timeout") {
		cfg.Extract.Timeout = cmd.Duration("timeout")
	}
	if cmd.IsSet("log-level") {
		cfg.Log.Level = cmd.String("log-level")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newDecoder returns the configured backend. ff is nil for the mpeg backend.
func newDecoder(cfg *config.Config, log logger.Logger) (media.Decoder, ffmpeg.FFmpeg, error) {
	switch cfg.Decoder.Backend {
	case "mpeg":
		return mpeg.New(), nil, nil
	default:
		ff, err := newFFmpeg(cfg, log)
		if err != nil {
			return nil, nil, err
		}
		return ff, ff, nil
	}
}

func newFFmpeg(cfg *config.Config, log logger.Logger) (ffmpeg.FFmpeg, error) {
	ff, err := ffmpeg.New(ffmpeg.Config{
		Binary:      cfg.FFmpeg.Path,
		ProbeBinary: cfg.FFmpeg.ProbePath,
		Timeout:     cfg.FFmpeg.Timeout,
		MaxLogLines: 100,
		Logger:      log.With("component", "ffmpeg"),
	})
	if err != nil {
		return nil, fmt.Errorf("ffmpeg init: %w", err)
	}
	return ff, nil
}

// newRunner wires decoder, extractor and runner from config
func newRunner(cfg *config.Config, log logger.Logger) (*batch.Runner, ffmpeg.FFmpeg, error) {
	dec, ff, err := newDecoder(cfg, log)
	if err != nil {
		return nil, nil, err
	}

	extractor, err := frame.NewExtractor(frame.Config{
		Decoder:     dec,
		JPEGQuality: cfg.Output.JPEGQuality,
		MaxWidth:    cfg.Output.MaxWidth,
		Logger:      log.With("component", "extractor"),
	})
	if err != nil {
		return nil, nil, err
	}

	filter, err := batch.NewFilter(cfg.Scan.Extensions, cfg.Scan.Allow, cfg.Scan.Block)
	if err != nil {
		return nil, nil, err
	}

	runner, err := batch.NewRunner(batch.Config{
		Extractor: extractor,
		Filter:    filter,
		Timeout:   cfg.Extract.Timeout,
		Logger:    log.With("component", "batch"),
	})
	if err != nil {
		return nil, nil, err
	}
	return runner, ff, nil
}
