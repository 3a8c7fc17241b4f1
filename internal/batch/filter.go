// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// FrameGrabber - 视频批量抽帧工具

package batch

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

// SupportedExtensions are the video file extensions picked up by a scan
var SupportedExtensions = []string{".mp4", ".avi", ".mov", ".mkv", ".wmv", ".flv", ".webm"}

// FrameCountOptions are the frame counts offered by front ends. Any count
// of at least 1 is accepted by the runner.
var FrameCountOptions = []int{1, 3, 5, 10, 20}

// Filter decides which directory entries are videos to extract
type Filter interface {
	Match(name string) bool
}

type filter struct {
	extensions map[string]struct{}
	allow      []*regexp.Regexp
	block      []*regexp.Regexp
}

// NewFilter creates a Filter matching SupportedExtensions plus extra, case
// insensitive. A name matching any block expression is rejected; when allow
// expressions are given the name must match one of them. Empty expressions
// are ignored.
func NewFilter(extra, allow, block []string) (Filter, error) {
	f := &filter{extensions: map[string]struct{}{}}

	for _, ext := range append(append([]string{}, SupportedExtensions...), extra...) {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		f.extensions[ext] = struct{}{}
	}

	var err error
	if f.allow, err = compile("allow", allow); err != nil {
		return nil, err
	}
	if f.block, err = compile("block", block); err != nil {
		return nil, err
	}

	return f, nil
}

// DefaultFilter matches SupportedExtensions only
func DefaultFilter() Filter {
	f, _ := NewFilter(nil, nil, nil)
	return f
}

func compile(kind string, exps []string) ([]*regexp.Regexp, error) {
	var out []*regexp.Regexp
	for _, exp := range exps {
		exp = strings.TrimSpace(exp)
		if exp == "" {
			continue
		}
		re, err := regexp.Compile(exp)
		if err != nil {
			return nil, fmt.Errorf("invalid %s expression '%s': %w", kind, exp, err)
		}
		out = append(out, re)
	}
	return out, nil
}

func (f *filter) Match(name string) bool {
	if _, ok := f.extensions[strings.ToLower(filepath.Ext(name))]; !ok {
		return false
	}
	for _, e := range f.block {
		if e.MatchString(name) {
			return false
		}
	}
	if len(f.allow) == 0 {
		return true
	}
	for _, e := range f.allow {
		if e.MatchString(name) {
			return true
		}
	}
	return false
}
