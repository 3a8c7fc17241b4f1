// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// FrameGrabber - 视频批量抽帧工具

package ffmpeg

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"math"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"time"

	ffmpeggo "github.com/u2takey/ffmpeg-go"
	"golang.org/x/image/bmp"

	"github.com/benMerlotti/frameGrabber/internal/ffmpeg/parse"
	"github.com/benMerlotti/frameGrabber/internal/ffmpeg/skills"
	"github.com/benMerlotti/frameGrabber/internal/logger"
	"github.com/benMerlotti/frameGrabber/internal/media"
	"github.com/benMerlotti/frameGrabber/internal/process"
)

// seekBack is how far before the requested timestamp a second attempt is
// made when ffmpeg returns no frame (seeking into the tail of a stream).
const seekBack = 0.5

// FFmpeg decodes videos with the ffmpeg and ffprobe binaries
type FFmpeg interface {
	media.Decoder
	Skills() skills.Skills
	ReloadSkills() error
}

// Config for FFmpeg
type Config struct {
	Binary      string
	ProbeBinary string
	// Timeout bounds every single ffmpeg/ffprobe run
	Timeout     time.Duration
	MaxLogLines int
	Logger      logger.Logger
}

type ffmpeg struct {
	binary     string
	probe      string
	timeout    time.Duration
	logLines   int
	logger     logger.Logger
	skills     skills.Skills
	skillsLock sync.RWMutex
}

// New creates FFmpeg. A missing ffprobe is not fatal: durations are then read
// from the banner ffmpeg prints for its input.
func New(config Config) (FFmpeg, error) {
	binary, err := exec.LookPath(config.Binary)
	if err != nil {
		return nil, fmt.Errorf("invalid ffmpeg binary: %w", err)
	}

	f := &ffmpeg{
		binary:   binary,
		timeout:  config.Timeout,
		logLines: config.MaxLogLines,
		logger:   config.Logger,
	}
	if f.logLines <= 0 {
		f.logLines = 100
	}
	if f.logger == nil {
		f.logger = logger.Nop()
	}

	if config.ProbeBinary != "" {
		if probe, err := exec.LookPath(config.ProbeBinary); err == nil {
			f.probe = probe
		} else {
			f.logger.Warn("ffprobe unavailable, falling back to ffmpeg banner: %v", err)
		}
	}

	s, err := skills.New(f.binary)
	if err != nil {
		return nil, fmt.Errorf("invalid ffmpeg: %w", err)
	}
	f.skills = s

	return f, nil
}

func (f *ffmpeg) Skills() skills.Skills {
	f.skillsLock.RLock()
	defer f.skillsLock.RUnlock()
	return f.skills
}

func (f *ffmpeg) ReloadSkills() error {
	s, err := skills.New(f.binary)
	if err != nil {
		return fmt.Errorf("reload skills: %w", err)
	}
	f.skillsLock.Lock()
	f.skills = s
	f.skillsLock.Unlock()
	return nil
}

func (f *ffmpeg) Open(ctx context.Context, path string) (media.Video, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}

	var duration float64
	var err error
	if f.probe != "" {
		duration, err = f.probeDuration(ctx, path)
	} else {
		duration, err = f.bannerDuration(ctx, path)
	}
	if err != nil {
		return nil, err
	}
	if math.IsNaN(duration) || math.IsInf(duration, 0) || duration <= 0 {
		return nil, fmt.Errorf("%w: %v", media.ErrInvalidDuration, duration)
	}

	return &video{ff: f, path: path, duration: duration}, nil
}

func (f *ffmpeg) run(ctx context.Context, binary string, args []string) (process.Process, parse.Parser, error) {
	parser := parse.New(parse.Config{LogLines: f.logLines})
	proc, err := process.New(process.Config{
		Binary:  binary,
		Args:    args,
		Timeout: f.timeout,
		Parser:  parser,
		Meter:   process.NewSysMeter(),
		Logger:  f.logger,
	})
	if err != nil {
		return nil, nil, err
	}

	err = proc.Run(ctx)

	status := proc.Status()
	f.logger.Debug("%s finished state=%s runtime=%s cpu_peak=%.1f%% rss_peak=%d",
		binary, status.State, status.Duration, status.CPU.Peak, status.Memory.Peak)

	return proc, parser, err
}

type probeOutput struct {
	Streams []struct {
		CodecType string `json:"codec_type"`
		CodecName string `json:"codec_name"`
	} `json:"streams"`
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

func (f *ffmpeg) probeDuration(ctx context.Context, path string) (float64, error) {
	proc, _, err := f.run(ctx, f.probe, []string{
		"-v", "error",
		"-select_streams", "v",
		"-show_entries", "stream=codec_type,codec_name:format=duration",
		"-of", "json",
		path,
	})
	if err != nil {
		return 0, err
	}
	return parseProbe(proc.Stdout(), f.Skills())
}

// parseProbe reads the duration from ffprobe JSON output after checking
// that the first video stream has a decoder in sk.
func parseProbe(data []byte, sk skills.Skills) (float64, error) {
	var out probeOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return 0, fmt.Errorf("parse ffprobe output: %w", err)
	}

	hasVideo := false
	for _, s := range out.Streams {
		if s.CodecType == "video" {
			if err := checkCodec(sk, s.CodecName); err != nil {
				return 0, err
			}
			hasVideo = true
			break
		}
	}
	if !hasVideo {
		return 0, media.ErrNoVideoStream
	}

	d := strings.TrimSpace(out.Format.Duration)
	if d == "" || d == "N/A" {
		return 0, fmt.Errorf("%w: %q", media.ErrInvalidDuration, d)
	}
	duration, err := strconv.ParseFloat(d, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", media.ErrInvalidDuration, d)
	}
	return duration, nil
}

func (f *ffmpeg) bannerDuration(ctx context.Context, path string) (float64, error) {
	// ffmpeg exits non-zero without an output file; only the banner matters
	_, parser, err := f.run(ctx, f.binary, []string{"-hide_banner", "-nostdin", "-i", path})
	if ctx.Err() != nil {
		return 0, err
	}

	info := parser.Info()
	switch {
	case info.Duration == 0:
		tail := process.Tail(parser.Log(), 3)
		if tail == "" && err != nil {
			tail = err.Error()
		}
		return 0, fmt.Errorf("no duration in ffmpeg output: %s", tail)
	case info.Codec == "":
		return 0, media.ErrNoVideoStream
	}
	if err := checkCodec(f.Skills(), info.Codec); err != nil {
		return 0, err
	}
	if info.Duration < 0 {
		return 0, fmt.Errorf("%w: N/A", media.ErrInvalidDuration)
	}
	return info.Duration, nil
}

// checkCodec rejects a video codec ffmpeg lists without a decoder. Nothing
// is rejected when the codec list could not be read.
func checkCodec(sk skills.Skills, codec string) error {
	if codec == "" || len(sk.Video) == 0 || sk.CanDecode(codec) {
		return nil
	}
	return fmt.Errorf("%w: %s", media.ErrUnsupportedCodec, codec)
}

// FrameArgs builds the ffmpeg arguments that write the frame at t seconds
// to stdout as a BMP image.
func FrameArgs(path string, t float64) []string {
	return ffmpeggo.
		Input(path, ffmpeggo.KwArgs{"ss": strconv.FormatFloat(t, 'f', -1, 64)}).
		Output("pipe:1", ffmpeggo.KwArgs{"frames:v": 1, "f": "image2pipe", "c:v": "bmp"}).
		GlobalArgs("-hide_banner", "-nostdin", "-loglevel", "error").
		GetArgs()
}

type video struct {
	ff       *ffmpeg
	path     string
	duration float64
	closed   bool
}

func (v *video) Duration() float64 {
	return v.duration
}

func (v *video) FrameAt(ctx context.Context, t float64) (image.Image, error) {
	if v.closed {
		return nil, errors.New("video is closed")
	}

	img, err := v.grab(ctx, t)
	if errors.Is(err, media.ErrNoFrame) && t > 0 {
		v.ff.logger.Debug("no frame at %gs in %s, retrying %gs earlier", t, v.path, seekBack)
		img, err = v.grab(ctx, math.Max(t-seekBack, 0))
	}
	return img, err
}

func (v *video) grab(ctx context.Context, t float64) (image.Image, error) {
	proc, _, err := v.ff.run(ctx, v.ff.binary, FrameArgs(v.path, t))
	if err != nil {
		return nil, err
	}

	out := proc.Stdout()
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: %gs", media.ErrNoFrame, t)
	}
	img, err := bmp.Decode(bytes.NewReader(out))
	if err != nil {
		return nil, fmt.Errorf("decode frame at %gs: %w", t, err)
	}
	return img, nil
}

func (v *video) Close() error {
	v.closed = true
	return nil
}
