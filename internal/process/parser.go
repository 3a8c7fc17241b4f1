// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// FrameGrabber - 视频批量抽帧工具

package process

import (
	"strings"
	"time"
)

// Parser parses process output (e.g. FFmpeg stderr)
type Parser interface {
	Parse(line string)
	ResetStats()
	ResetLog()
	Log() []Line
}

// Line is a timestamped log line
type Line struct {
	Timestamp time.Time
	Data      string
}

// Tail joins the data of the last n lines
func Tail(lines []Line, n int) string {
	if n > 0 && len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	parts := make([]string, 0, len(lines))
	for _, l := range lines {
		parts = append(parts, l.Data)
	}
	return strings.Join(parts, "\n")
}

type nullParser struct{}

func (p *nullParser) Parse(line string) {}
func (p *nullParser) ResetStats()       {}
func (p *nullParser) ResetLog()         {}
func (p *nullParser) Log() []Line       { return nil }
