// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// FrameGrabber - 视频批量抽帧工具

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	cli "github.com/urfave/cli/v3"

	"github.com/benMerlotti/frameGrabber/internal/api"
	"github.com/benMerlotti/frameGrabber/internal/batch"
	"github.com/benMerlotti/frameGrabber/internal/logger"
	"github.com/benMerlotti/frameGrabber/internal/task"
)

const shutdownTimeout = 10 * time.Second

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the HTTP front end",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "bind",
				Usage: "Bind address (overrides config)",
			},
		},
		Action: serveAction,
	}
}

func serveAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	if cmd.IsSet("bind") {
		cfg.Server.Bind = cmd.String("bind")
	}

	log, err := logger.New("framegrabber", cfg.Log.Level)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	defer log.Sync()

	runner, ff, err := newRunner(cfg, log)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	store := task.NewStore(runner, log.With("component", "task"))
	defer store.Close()

	var sk api.SkillsSource
	if ff != nil {
		sk = ff
	}
	handler := api.NewHandler(store, sk, api.Options{
		FrameCounts:   batch.FrameCountOptions,
		DefaultFrames: cfg.Extract.Frames,
		Extensions:    append(append([]string{}, batch.SupportedExtensions...), cfg.Scan.Extensions...),
		Backend:       cfg.Decoder.Backend,
	})

	if cfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()
	r.Use(cors.Default())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	handler.Register(r)

	srv := &http.Server{
		Addr:    cfg.Server.Bind,
		Handler: r,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() {
		log.Info("FrameGrabber listening on %s (backend %s)", cfg.Server.Bind, cfg.Decoder.Backend)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return cli.Exit(err.Error(), 1)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("shutdown: %v", err)
	}
	return nil
}
