// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// FrameGrabber - 视频批量抽帧工具

package parse

import (
	"container/ring"
	"regexp"
	"strconv"
	"sync"
	"time"

	"github.com/benMerlotti/frameGrabber/internal/process"
)

// Info is what FFmpeg reports about its input on stderr
type Info struct {
	// Duration of the input, from the "Duration:" banner line. -1 when
	// the container reports N/A.
	Duration float64 `json:"duration_seconds"`
	// Codec of the first input video stream, empty until one is listed
	Codec string `json:"codec"`
}

// Parser implements process.Parser and parses FFmpeg stderr
type Parser interface {
	process.Parser
	Info() Info
}

type parser struct {
	re struct {
		duration *regexp.Regexp
		video    *regexp.Regexp
	}

	log      *ring.Ring
	logLines int

	info Info
	lock sync.RWMutex
}

// Config for the parser
type Config struct {
	LogLines int
}

// New creates a Parser
func New(config Config) Parser {
	p := &parser{
		logLines: config.LogLines,
	}
	if p.logLines <= 0 {
		p.logLines = 100
	}
	p.re.duration = regexp.MustCompile(`Duration:\s*(?:([0-9]+):([0-9]{2}):([0-9]{2})\.([0-9]+)|(N/A))`)
	p.re.video = regexp.MustCompile(`^\s*Stream #[0-9]+:[0-9]+.*: Video: ([0-9A-Za-z_]+)`)

	p.log = ring.New(p.logLines)
	return p
}

func (p *parser) Parse(line string) {
	now := time.Now()

	p.lock.Lock()
	defer p.lock.Unlock()

	p.log.Value = process.Line{Timestamp: now, Data: line}
	p.log = p.log.Next()

	if m := p.re.duration.FindStringSubmatch(line); m != nil {
		if m[5] != "" {
			p.info.Duration = -1
		} else {
			p.info.Duration = clock(m[1], m[2], m[3], m[4])
		}
		return
	}

	if p.info.Codec != "" {
		return
	}
	if m := p.re.video.FindStringSubmatch(line); m != nil {
		p.info.Codec = m[1]
	}
}

// clock converts HH:MM:SS.frac into seconds
func clock(hh, mm, ss, frac string) float64 {
	h, _ := strconv.Atoi(hh)
	m, _ := strconv.Atoi(mm)
	s, _ := strconv.Atoi(ss)
	f := 0.0
	if x, err := strconv.ParseUint(frac, 10, 64); err == nil {
		div := 1.0
		for range frac {
			div *= 10
		}
		f = float64(x) / div
	}
	return float64(h*3600+m*60+s) + f
}

func (p *parser) ResetStats() {
	p.lock.Lock()
	defer p.lock.Unlock()
	p.info = Info{}
}

func (p *parser) ResetLog() {
	p.lock.Lock()
	defer p.lock.Unlock()
	p.log = ring.New(p.logLines)
}

func (p *parser) Log() []process.Line {
	var out []process.Line
	p.lock.RLock()
	p.log.Do(func(v interface{}) {
		if v != nil {
			out = append(out, v.(process.Line))
		}
	})
	p.lock.RUnlock()
	return out
}

func (p *parser) Info() Info {
	p.lock.RLock()
	defer p.lock.RUnlock()
	return p.info
}
