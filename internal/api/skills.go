// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// FrameGrabber - 视频批量抽帧工具

package api

import (
	"github.com/benMerlotti/frameGrabber/internal/ffmpeg/skills"
)

// SkillsResponse for API
type SkillsResponse struct {
	FFmpeg struct {
		Version       string          `json:"version"`
		Compiler      string          `json:"compiler"`
		Configuration string          `json:"configuration"`
		Libraries     []SkillsLibrary `json:"libraries"`
	} `json:"ffmpeg"`

	HWAccels []SkillsItem  `json:"hwaccels"`
	Decoders []SkillsCodec `json:"decoders"`
	Demuxers []SkillsItem  `json:"demuxers"`
}

type SkillsLibrary struct {
	Name     string `json:"name"`
	Compiled string `json:"compiled"`
	Linked   string `json:"linked"`
}

type SkillsItem struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type SkillsCodec struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Decoders []string `json:"decoders"`
}

func skillsToAPI(s skills.Skills) SkillsResponse {
	resp := SkillsResponse{}

	resp.FFmpeg.Version = s.FFmpeg.Version
	resp.FFmpeg.Compiler = s.FFmpeg.Compiler
	resp.FFmpeg.Configuration = s.FFmpeg.Configuration
	resp.FFmpeg.Libraries = make([]SkillsLibrary, len(s.FFmpeg.Libraries))
	for i, lib := range s.FFmpeg.Libraries {
		resp.FFmpeg.Libraries[i] = SkillsLibrary{Name: lib.Name, Compiled: lib.Compiled, Linked: lib.Linked}
	}

	resp.HWAccels = make([]SkillsItem, len(s.HWAccels))
	for i, h := range s.HWAccels {
		resp.HWAccels[i] = SkillsItem{ID: h.Id, Name: h.Name}
	}

	resp.Decoders = make([]SkillsCodec, len(s.Video))
	for i, c := range s.Video {
		resp.Decoders[i] = SkillsCodec{ID: c.Id, Name: c.Name, Decoders: c.Decoders}
	}

	resp.Demuxers = make([]SkillsItem, len(s.Demuxers))
	for i, f := range s.Demuxers {
		resp.Demuxers[i] = SkillsItem{ID: f.Id, Name: f.Name}
	}

	return resp
}
