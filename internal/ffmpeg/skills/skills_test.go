// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// FrameGrabber - 视频批量抽帧工具

package skills

import (
	"os/exec"
	"testing"
)

const versionOutput = `ffmpeg version 6.1.1-3ubuntu5 Copyright (c) 2000-2023 the FFmpeg developers
built with gcc 13 (Ubuntu 13.2.0-23ubuntu3)
configuration: --prefix=/usr --enable-gpl
libavutil      58. 29.100 / 58. 29.100
libavcodec     60. 31.102 / 60. 31.102
`

const codecsOutput = `Codecs:
 D..... = Decoding supported
 -------
 DEV.LS h264                 H.264 / AVC / MPEG-4 AVC / MPEG-4 part 10 (decoders: h264 h264_v4l2m2m ) (encoders: libx264 )
 DEV.L. mpeg1video           MPEG-1 video
 .EV.L. libfake              encoder only
 DEA.L. aac                  AAC (Advanced Audio Coding)
`

const formatsOutput = `File formats:
 D. = Demuxing supported
 .E = Muxing supported
 --
 D  mov,mp4,m4a,3gp,3g2,mj2 QuickTime / MOV
 DE matroska,webm       Matroska / WebM
  E mjpeg           raw MJPEG video
 D d lavfi           Libavfilter virtual input device
`

const hwaccelsOutput = `Hardware acceleration methods:
vdpau
cuda
`

func TestParseVersion(t *testing.T) {
	info := parseVersion([]byte(versionOutput))
	if info.Version != "6.1.1" {
		t.Errorf("Version = %q, want 6.1.1", info.Version)
	}
	if info.Compiler != "gcc 13 (Ubuntu 13.2.0-23ubuntu3)" {
		t.Errorf("Compiler = %q", info.Compiler)
	}
	if len(info.Libraries) != 2 || info.Libraries[1].Name != "libavcodec" {
		t.Errorf("Libraries = %+v", info.Libraries)
	}
}

func TestParseCodecs(t *testing.T) {
	s := Skills{Video: parseCodecs([]byte(codecsOutput))}

	if len(s.Video) != 2 {
		t.Fatalf("len(Video) = %d, want 2: %+v", len(s.Video), s.Video)
	}
	if got := s.Video[0].Decoders; len(got) != 2 || got[1] != "h264_v4l2m2m" {
		t.Errorf("h264 decoders = %v", got)
	}
	if !s.CanDecode("mpeg1video") {
		t.Error("CanDecode(mpeg1video) = false")
	}
	if s.CanDecode("libfake") || s.CanDecode("aac") {
		t.Error("CanDecode reports encoder-only or audio codecs")
	}
}

func TestParseDemuxers(t *testing.T) {
	s := Skills{Demuxers: parseDemuxers([]byte(formatsOutput))}

	for _, id := range []string{"mov", "mp4", "matroska", "webm", "lavfi"} {
		if !s.HasDemuxer(id) {
			t.Errorf("HasDemuxer(%q) = false", id)
		}
	}
	if s.HasDemuxer("mjpeg") {
		t.Error("HasDemuxer(mjpeg) = true for a muxer-only format")
	}
}

func TestParseHWAccels(t *testing.T) {
	accels := parseHWAccels([]byte(hwaccelsOutput))
	if len(accels) != 2 || accels[0].Id != "vdpau" {
		t.Errorf("HWAccels = %+v", accels)
	}
}

func TestNewWithRealBinary(t *testing.T) {
	bin, err := exec.LookPath("ffmpeg")
	if err != nil {
		t.Skip("ffmpeg not installed")
	}
	s, err := New(bin)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if s.FFmpeg.Version == "" {
		t.Error("empty version")
	}
}

func TestNewInvalidBinary(t *testing.T) {
	if _, err := New("/nonexistent/ffmpeg"); err == nil {
		t.Error("New() error = nil, want error")
	}
}
