// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// FrameGrabber - 视频批量抽帧工具

package batch

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/benMerlotti/frameGrabber/internal/frame"
)

// Job is one video found by a scan
type Job struct {
	Path string `json:"path"`
	Name string `json:"name"`
}

// Stem is the video file name without its extension
func (j Job) Stem() string {
	return frame.Stem(j.Name)
}

// Scan lists the videos directly inside dir, sorted by file name. Symlinks
// are followed; anything that is not a regular file is skipped.
func Scan(dir string, filter Filter) ([]Job, error) {
	if filter == nil {
		filter = DefaultFilter()
	}

	if err := checkInputDir(dir); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, &InputDirError{Path: dir, Err: err}
	}

	jobs := []Job{}
	for _, entry := range entries {
		if !filter.Match(entry.Name()) {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		fi, err := os.Stat(path)
		if err != nil || !fi.Mode().IsRegular() {
			continue
		}
		jobs = append(jobs, Job{Path: path, Name: entry.Name()})
	}

	return jobs, nil
}

func checkInputDir(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return &InputDirError{Path: dir, Err: err}
	}
	if !info.IsDir() {
		return &InputDirError{Path: dir, Err: errors.New("not a directory")}
	}
	return nil
}
