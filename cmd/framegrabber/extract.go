// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// FrameGrabber - 视频批量抽帧工具

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/schollz/progressbar/v3"
	cli "github.com/urfave/cli/v3"

	"github.com/benMerlotti/frameGrabber/internal/batch"
	"github.com/benMerlotti/frameGrabber/internal/logger"
)

// extractAction runs one batch. Per-video failures are reported but the
// exit status stays 0; only a fatal batch or bad arguments exit with 1.
func extractAction(ctx context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() != 2 {
		return cli.Exit("usage: framegrabber [--frames N] [--config FILE] input_dir output_dir", 1)
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	log, err := logger.New("framegrabber", cfg.Log.Level)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	defer log.Sync()

	runner, _, err := newRunner(cfg, log)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	out := cmd.Root().Writer
	opts := batch.Options{
		InputDir:   cmd.Args().Get(0),
		OutputDir:  cmd.Args().Get(1),
		FrameCount: cfg.Extract.Frames,
	}

	h := runner.Start(ctx, opts)

	stop := interruptHandler(h, cmd.Root().ErrWriter)
	defer stop()

	var bar *progressbar.ProgressBar
	var summary *batch.Summary
	for ev := range h.Events() {
		switch ev.Type {
		case batch.EventProgress:
			p := ev.Progress
			if bar == nil {
				bar = newBar(out, p.Total)
			}
			if p.Last.Err != nil {
				bar.Clear()
				fmt.Fprintf(out, "FAILED %s: %v\n", p.Last.Path, p.Last.Err)
			}
			bar.Set(p.Processed)
		case batch.EventDone:
			summary = ev.Summary
		}
	}
	if bar != nil {
		bar.Finish()
		fmt.Fprintln(out)
	}

	return report(out, summary)
}

func newBar(w io.Writer, total int) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription("Extracting"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetRenderBlankState(true),
	)
}

func report(w io.Writer, s *batch.Summary) error {
	switch s.Status {
	case batch.StatusFatal:
		return cli.Exit(s.Err.Error(), 1)
	case batch.StatusNoVideosFound:
		fmt.Fprintf(w, "No videos found in %s\n", s.InputDir)
		return nil
	case batch.StatusCancelled:
		fmt.Fprintf(w, "Cancelled after %d of %d videos\n", s.Processed, s.Total)
	default:
		fmt.Fprintf(w, "Processed %d videos\n", s.Processed)
	}

	fmt.Fprintf(w, "%d frames written to %s in %s, %d videos failed\n",
		s.FramesWritten(), s.OutputDir, s.Elapsed.Round(time.Millisecond), s.Failed())
	return nil
}

// interruptHandler cancels the batch on the first interrupt and aborts the
// running video on the second one.
func interruptHandler(h *batch.Handle, w io.Writer) func() {
	sigs := make(chan os.Signal, 2)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case <-sigs:
		case <-h.Done():
			return
		}
		fmt.Fprintln(w, "\nStopping after the current video, interrupt again to abort it")
		h.Cancel()

		select {
		case <-sigs:
			h.Abort()
		case <-h.Done():
		}
	}()

	return func() { signal.Stop(sigs) }
}
