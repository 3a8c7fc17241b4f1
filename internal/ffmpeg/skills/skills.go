// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// FrameGrabber - 视频批量抽帧工具

package skills

import (
	"bufio"
	"bytes"
	"fmt"
	"os/exec"
	"regexp"
	"strings"
)

// Codec represents a video codec and the decoders ffmpeg has for it
type Codec struct {
	Id       string
	Name     string
	Decoders []string
}

// Format represents a supported container format
type Format struct {
	Id   string
	Name string
}

// HWAccel represents hardware acceleration
type HWAccel struct {
	Id   string
	Name string
}

// Library represents a linked av library
type Library struct {
	Name     string
	Compiled string
	Linked   string
}

type ffmpegInfo struct {
	Version       string
	Compiler      string
	Configuration string
	Libraries     []Library
}

// Skills are the detected decoding capabilities of FFmpeg
type Skills struct {
	FFmpeg   ffmpegInfo
	Video    []Codec
	Demuxers []Format
	HWAccels []HWAccel
}

// New returns the skills that FFmpeg provides for decoding video
func New(binary string) (Skills, error) {
	c := Skills{}

	ff, err := getVersion(binary)
	if ff.Version == "" || err != nil {
		if err != nil {
			return Skills{}, fmt.Errorf("can't parse ffmpeg version: %w", err)
		}
		return Skills{}, fmt.Errorf("can't parse ffmpeg version")
	}
	c.FFmpeg = ff

	c.Video = parseCodecs(run(binary, "-codecs"))
	c.Demuxers = parseDemuxers(run(binary, "-formats"))
	c.HWAccels = parseHWAccels(run(binary, "-hwaccels"))

	return c, nil
}

// CanDecode reports whether a video codec has at least one decoder
func (s Skills) CanDecode(codec string) bool {
	for _, c := range s.Video {
		if c.Id == codec {
			return len(c.Decoders) > 0
		}
	}
	return false
}

// HasDemuxer reports whether a container format can be read
func (s Skills) HasDemuxer(id string) bool {
	for _, f := range s.Demuxers {
		if f.Id == id {
			return true
		}
	}
	return false
}

func run(binary string, arg string) []byte {
	cmd := exec.Command(binary, "-hide_banner", arg)
	cmd.Env = []string{}
	stdout, _ := cmd.Output()
	return stdout
}

func getVersion(binary string) (ffmpegInfo, error) {
	cmd := exec.Command(binary, "-version")
	cmd.Env = []string{}
	out, err := cmd.CombinedOutput()
	if err != nil {
		return ffmpegInfo{}, err
	}
	return parseVersion(out), nil
}

func parseVersion(data []byte) ffmpegInfo {
	f := ffmpegInfo{}
	reVersion := regexp.MustCompile(`^ffmpeg version n?([0-9]+\.[0-9]+(\.[0-9]+)?)`)
	reCompiler := regexp.MustCompile(`(?m)^\s*built with (.*)$`)
	reConfiguration := regexp.MustCompile(`(?m)^\s*configuration: (.*)$`)
	reLibrary := regexp.MustCompile(`(?m)^\s*(lib(?:[a-z]+))\s+([0-9]+\.\s*[0-9]+\.\s*[0-9]+) /\s+([0-9]+\.\s*[0-9]+\.\s*[0-9]+)`)

	if m := reVersion.FindSubmatch(data); m != nil {
		f.Version = string(m[1])
		if len(m[2]) == 0 {
			f.Version += ".0"
		}
	}
	if m := reCompiler.FindSubmatch(data); m != nil {
		f.Compiler = string(m[1])
	}
	if m := reConfiguration.FindSubmatch(data); m != nil {
		f.Configuration = string(m[1])
	}
	for _, m := range reLibrary.FindAllSubmatch(data, -1) {
		f.Libraries = append(f.Libraries, Library{
			Name:     string(m[1]),
			Compiled: string(m[2]),
			Linked:   string(m[3]),
		})
	}
	return f
}

// parseCodecs keeps the decodable video codecs of `ffmpeg -codecs`
func parseCodecs(data []byte) []Codec {
	var codecs []Codec
	re := regexp.MustCompile(`^\s([D.])([E.])V.{3} ([0-9A-Za-z_]+)\s+(.*?)(?:\(decoders:([^\)]+)\))?\s?(?:\(encoders:([^\)]+)\))?$`)
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		m := re.FindStringSubmatch(scanner.Text())
		if m == nil || m[1] != "D" {
			continue
		}
		c := Codec{Id: m[3], Name: strings.TrimSpace(m[4])}
		if len(m[5]) == 0 {
			c.Decoders = []string{m[3]}
		} else {
			c.Decoders = strings.Fields(m[5])
		}
		codecs = append(codecs, c)
	}
	return codecs
}

func parseDemuxers(data []byte) []Format {
	var demuxers []Format
	re := regexp.MustCompile(`^\s([D ])([E ])d? ([0-9A-Za-z_,]+)\s+(.*?)$`)
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		m := re.FindStringSubmatch(scanner.Text())
		if m == nil || m[1] != "D" {
			continue
		}
		for _, id := range strings.Split(m[3], ",") {
			demuxers = append(demuxers, Format{Id: id, Name: m[4]})
		}
	}
	return demuxers
}

func parseHWAccels(data []byte) []HWAccel {
	var accels []HWAccel
	re := regexp.MustCompile(`^[A-Za-z0-9]+$`)
	start := false
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := scanner.Text()
		if line == "Hardware acceleration methods:" {
			start = true
			continue
		}
		if !start || !re.MatchString(line) {
			continue
		}
		id := strings.TrimSpace(line)
		accels = append(accels, HWAccel{Id: id, Name: id})
	}
	return accels
}
