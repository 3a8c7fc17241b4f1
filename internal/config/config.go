// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// FrameGrabber - 视频批量抽帧工具

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// EnvPrefix 环境变量前缀
const EnvPrefix = "FRAMEGRABBER_"

// Config 应用配置
type Config struct {
	Server  ServerConfig  `yaml:"server" toml:"server" envPrefix:"SERVER_"`
	FFmpeg  FFmpegConfig  `yaml:"ffmpeg" toml:"ffmpeg" envPrefix:"FFMPEG_"`
	Decoder DecoderConfig `yaml:"decoder" toml:"decoder" envPrefix:"DECODER_"`
	Extract ExtractConfig `yaml:"extract" toml:"extract" envPrefix:"EXTRACT_"`
	Output  OutputConfig  `yaml:"output" toml:"output" envPrefix:"OUTPUT_"`
	Scan    ScanConfig    `yaml:"scan" toml:"scan" envPrefix:"SCAN_"`
	Log     LogConfig     `yaml:"log" toml:"log" envPrefix:"LOG_"`
}

// ServerConfig 服务配置
type ServerConfig struct {
	Bind string `yaml:"bind" toml:"bind" env:"BIND"`
}

// FFmpegConfig FFmpeg 配置
type FFmpegConfig struct {
	Path      string `yaml:"path" toml:"path" env:"PATH"`
	ProbePath string `yaml:"probe_path" toml:"probe_path" env:"PROBE_PATH"`
	// Timeout bounds a single ffmpeg/ffprobe invocation, 0 means none
	Timeout time.Duration `yaml:"timeout" toml:"timeout" env:"TIMEOUT"`
}

// DecoderConfig 解码后端
type DecoderConfig struct {
	// Backend is "ffmpeg" or "mpeg"
	Backend string `yaml:"backend" toml:"backend" env:"BACKEND"`
}

// ExtractConfig 抽帧配置
type ExtractConfig struct {
	Frames int `yaml:"frames" toml:"frames" env:"FRAMES"`
	// Timeout bounds the extraction of one video, 0 means none
	Timeout time.Duration `yaml:"timeout" toml:"timeout" env:"TIMEOUT"`
}

// OutputConfig 输出配置
type OutputConfig struct {
	JPEGQuality int  `yaml:"jpeg_quality" toml:"jpeg_quality" env:"JPEG_QUALITY"`
	MaxWidth    uint `yaml:"max_width" toml:"max_width" env:"MAX_WIDTH"`
}

// ScanConfig 目录扫描配置
type ScanConfig struct {
	Extensions []string `yaml:"extensions" toml:"extensions" env:"EXTENSIONS" envSeparator:","`
	Allow      []string `yaml:"allow" toml:"allow" env:"ALLOW" envSeparator:","`
	Block      []string `yaml:"block" toml:"block" env:"BLOCK" envSeparator:","`
}

// LogConfig 日志配置
type LogConfig struct {
	Level string `yaml:"level" toml:"level" env:"LEVEL"`
}

// Default 返回默认配置
func Default() *Config {
	return &Config{
		Server:  ServerConfig{Bind: ":8080"},
		FFmpeg:  FFmpegConfig{Path: "ffmpeg", ProbePath: "ffprobe"},
		Decoder: DecoderConfig{Backend: "ffmpeg"},
		Extract: ExtractConfig{Frames: 3},
		Output:  OutputConfig{JPEGQuality: 90},
		Log:     LogConfig{Level: "info"},
	}
}

// Load 从 YAML 或 TOML 文件加载配置，再用环境变量覆盖。
// 文件不存在时使用默认配置。
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := decodeFile(path, cfg); err != nil {
			return nil, err
		}
	}

	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	cfg.fill()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decodeFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return fmt.Errorf("decode %s: %w", path, err)
		}
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("decode %s: %w", path, err)
		}
	}
	return nil
}

// 填充空值
func (c *Config) fill() {
	def := Default()
	if c.Server.Bind == "" {
		c.Server.Bind = def.Server.Bind
	}
	if c.FFmpeg.Path == "" {
		c.FFmpeg.Path = def.FFmpeg.Path
	}
	if c.Decoder.Backend == "" {
		c.Decoder.Backend = def.Decoder.Backend
	}
	if c.Output.JPEGQuality == 0 {
		c.Output.JPEGQuality = def.Output.JPEGQuality
	}
	if c.Log.Level == "" {
		c.Log.Level = def.Log.Level
	}
}

// Validate checks values that cannot be fixed up silently
func (c *Config) Validate() error {
	switch c.Decoder.Backend {
	case "ffmpeg", "mpeg":
	default:
		return fmt.Errorf("unknown decoder backend %q", c.Decoder.Backend)
	}
	if c.Extract.Frames < 0 {
		return fmt.Errorf("extract.frames must not be negative, got %d", c.Extract.Frames)
	}
	if c.Output.JPEGQuality < 1 || c.Output.JPEGQuality > 100 {
		return fmt.Errorf("output.jpeg_quality must be within 1..100, got %d", c.Output.JPEGQuality)
	}
	if c.Extract.Timeout < 0 || c.FFmpeg.Timeout < 0 {
		return fmt.Errorf("timeouts must not be negative")
	}
	return nil
}
