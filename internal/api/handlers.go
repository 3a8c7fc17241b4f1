// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// FrameGrabber - 视频批量抽帧工具

package api

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/benMerlotti/frameGrabber/internal/batch"
	"github.com/benMerlotti/frameGrabber/internal/ffmpeg/skills"
	"github.com/benMerlotti/frameGrabber/internal/frame"
	"github.com/benMerlotti/frameGrabber/internal/task"
)

// SkillsSource reports decoder capabilities
type SkillsSource interface {
	Skills() skills.Skills
	ReloadSkills() error
}

// Handler holds dependencies
type Handler struct {
	store   task.Store
	skills  SkillsSource
	options Options
}

// NewHandler creates API handler. skills may be nil when the decoder
// backend has no ffmpeg behind it.
func NewHandler(store task.Store, sk SkillsSource, options Options) *Handler {
	if options.DefaultFrames < 1 {
		options.DefaultFrames = 3
	}
	if options.FrameCounts == nil {
		options.FrameCounts = batch.FrameCountOptions
	}
	if options.Extensions == nil {
		options.Extensions = batch.SupportedExtensions
	}
	return &Handler{store: store, skills: sk, options: options}
}

// Register adds the API routes to r
func (h *Handler) Register(r gin.IRouter) {
	v1 := r.Group("/api/v1")
	{
		v1.GET("/options", h.Options)

		v1.GET("/skills", h.Skills)
		v1.POST("/skills/reload", h.ReloadSkills)

		v1.GET("/batch", h.ListBatches)
		v1.POST("/batch", h.AddBatch)
		v1.GET("/batch/:id", h.GetBatch)
		v1.DELETE("/batch/:id", h.DeleteBatch)
		v1.GET("/batch/:id/events", h.Events)
		v1.PUT("/batch/:id/command", h.Command)
	}
}

func errResp(c *gin.Context, code int, msg, detail string) {
	c.JSON(code, ErrorResponse{Code: code, Message: msg, Detail: detail})
}

// Options GET /api/v1/options
func (h *Handler) Options(c *gin.Context) {
	c.JSON(http.StatusOK, h.options)
}

// AddBatch POST /api/v1/batch
func (h *Handler) AddBatch(c *gin.Context) {
	var req BatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errResp(c, http.StatusBadRequest, "Invalid JSON", err.Error())
		return
	}

	cfg := &task.Config{
		ID:         req.ID,
		Reference:  req.Reference,
		InputDir:   req.InputDir,
		OutputDir:  req.OutputDir,
		FrameCount: req.FrameCount,
	}
	if cfg.FrameCount == 0 {
		cfg.FrameCount = h.options.DefaultFrames
	}

	t, err := h.store.Add(cfg)
	if err != nil {
		switch {
		case errors.Is(err, task.ErrTaskExists):
			errResp(c, http.StatusBadRequest, "Batch exists", err.Error())
		case errors.Is(err, task.ErrClosed):
			errResp(c, http.StatusServiceUnavailable, "Shutting down", err.Error())
		default:
			errResp(c, http.StatusBadRequest, "Invalid config", err.Error())
		}
		return
	}

	c.JSON(http.StatusOK, taskToBatch(t, "config"))
}

// ListBatches GET /api/v1/batch
func (h *Handler) ListBatches(c *gin.Context) {
	filter := c.DefaultQuery("filter", "config,state")
	reference := c.DefaultQuery("reference", "")
	idStr := c.DefaultQuery("id", "")

	var ids []string
	if idStr != "" {
		ids = strings.FieldsFunc(idStr, func(r rune) bool { return r == ',' })
		for i := range ids {
			ids[i] = strings.TrimSpace(ids[i])
		}
	}

	tasks := h.store.List(ids, reference)
	batches := make([]Batch, 0, len(tasks))
	for _, t := range tasks {
		batches = append(batches, taskToBatch(t, filter))
	}

	c.JSON(http.StatusOK, batches)
}

// GetBatch GET /api/v1/batch/:id
func (h *Handler) GetBatch(c *gin.Context) {
	t, err := h.store.Get(c.Param("id"))
	if err != nil {
		errResp(c, http.StatusNotFound, "Unknown batch ID", err.Error())
		return
	}

	c.JSON(http.StatusOK, taskToBatch(t, c.DefaultQuery("filter", "")))
}

// DeleteBatch DELETE /api/v1/batch/:id aborts a running batch and forgets it
func (h *Handler) DeleteBatch(c *gin.Context) {
	if err := h.store.Delete(c.Param("id")); err != nil {
		errResp(c, http.StatusNotFound, "Unknown batch ID", err.Error())
		return
	}

	c.JSON(http.StatusOK, "OK")
}

// Command PUT /api/v1/batch/:id/command
func (h *Handler) Command(c *gin.Context) {
	id := c.Param("id")

	var req CommandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errResp(c, http.StatusBadRequest, "Invalid JSON", err.Error())
		return
	}

	var err error
	switch req.Command {
	case "cancel":
		err = h.store.Cancel(id)
	default:
		errResp(c, http.StatusBadRequest, "Unknown command", "Known: cancel")
		return
	}

	if err != nil {
		if errors.Is(err, task.ErrNotFound) {
			errResp(c, http.StatusNotFound, "Unknown batch ID", err.Error())
			return
		}
		errResp(c, http.StatusBadRequest, "Command failed", err.Error())
		return
	}

	c.JSON(http.StatusOK, "OK")
}

// Events GET /api/v1/batch/:id/events streams progress as server-sent
// events. The stream ends with a "done" event carrying the summary.
func (h *Handler) Events(c *gin.Context) {
	t, err := h.store.Get(c.Param("id"))
	if err != nil {
		errResp(c, http.StatusNotFound, "Unknown batch ID", err.Error())
		return
	}

	events, unsubscribe := t.Subscribe()
	defer unsubscribe()

	c.Stream(func(w io.Writer) bool {
		select {
		case ev, ok := <-events:
			if !ok || ev.Type == batch.EventDone {
				<-t.Done()
				c.SSEvent(string(batch.EventDone), summaryToAPI(t.Summary()))
				return false
			}
			c.SSEvent(string(batch.EventProgress), progressToAPI(t, *ev.Progress))
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}

// Skills GET /api/v1/skills
func (h *Handler) Skills(c *gin.Context) {
	if h.skills == nil {
		errResp(c, http.StatusNotFound, "No ffmpeg backend", "")
		return
	}
	c.JSON(http.StatusOK, skillsToAPI(h.skills.Skills()))
}

// ReloadSkills POST /api/v1/skills/reload
func (h *Handler) ReloadSkills(c *gin.Context) {
	if h.skills == nil {
		errResp(c, http.StatusNotFound, "No ffmpeg backend", "")
		return
	}
	if err := h.skills.ReloadSkills(); err != nil {
		errResp(c, http.StatusInternalServerError, "Reload failed", err.Error())
		return
	}
	c.JSON(http.StatusOK, skillsToAPI(h.skills.Skills()))
}

func resultToAPI(r frame.Result) BatchResult {
	out := BatchResult{
		Path:          r.Path,
		Name:          r.Name,
		FramesWritten: r.FramesWritten,
		OutputPaths:   r.OutputPaths,
		Duration:      r.Duration,
		Elapsed:       r.Elapsed.Seconds(),
	}
	if out.OutputPaths == nil {
		out.OutputPaths = []string{}
	}
	if r.Err != nil {
		out.Error = r.Err.Error()
	}
	return out
}

func summaryToAPI(s *batch.Summary) *BatchSummary {
	if s == nil {
		return nil
	}
	out := &BatchSummary{
		Status:        string(s.Status),
		Total:         s.Total,
		Processed:     s.Processed,
		Failed:        s.Failed(),
		FramesWritten: s.FramesWritten(),
		Elapsed:       s.Elapsed.Seconds(),
		Results:       make([]BatchResult, len(s.Results)),
	}
	if s.Err != nil {
		out.Error = s.Err.Error()
	}
	for i, r := range s.Results {
		out.Results[i] = resultToAPI(r)
	}
	return out
}

func progressToAPI(t *task.Task, p batch.Progress) *BatchState {
	state := &BatchState{
		State:     string(t.State()),
		Cancelled: t.Cancelled(),
		Processed: p.Processed,
		Total:     p.Total,
		Elapsed:   p.Elapsed.Seconds(),
	}
	if p.Processed > 0 {
		last := resultToAPI(p.Last)
		state.Last = &last
	}
	return state
}

func taskToBatch(t *task.Task, filter string) Batch {
	b := Batch{
		ID:        t.ID,
		Reference: t.Reference,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt(),
	}

	includeAll := filter == ""
	includeConfig := includeAll || strings.Contains(filter, "config")
	includeState := includeAll || strings.Contains(filter, "state")
	includeSummary := includeAll || strings.Contains(filter, "summary")

	if includeConfig {
		b.Config = &BatchConfig{
			InputDir:   t.Config.InputDir,
			OutputDir:  t.Config.OutputDir,
			FrameCount: t.Config.FrameCount,
		}
	}

	if includeState {
		b.State = progressToAPI(t, t.Progress())
	}

	if includeSummary {
		b.Summary = summaryToAPI(t.Summary())
	}

	return b
}
