// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// FrameGrabber - 视频批量抽帧工具

package process

import (
	"sync"

	gopsutilprocess "github.com/shirou/gopsutil/v3/process"
)

// Meter samples CPU/memory of a running process. NullMeter does nothing.
type Meter interface {
	Start(pid int) error
	Sample()
	Stop()
	Peak() (cpu float64, memory uint64)
}

type nullMeter struct{}

// NewNullMeter returns a no-op meter
func NewNullMeter() Meter {
	return &nullMeter{}
}

func (m *nullMeter) Start(pid int) error     { return nil }
func (m *nullMeter) Sample()                 {}
func (m *nullMeter) Stop()                   {}
func (m *nullMeter) Peak() (float64, uint64) { return 0, 0 }

// sysMeter 使用 gopsutil 采集进程 CPU 和内存峰值
type sysMeter struct {
	mu      sync.Mutex
	proc    *gopsutilprocess.Process
	peakCPU float64
	peakMem uint64
}

// NewSysMeter 创建基于系统调用的采样器
func NewSysMeter() Meter {
	return &sysMeter{}
}

func (m *sysMeter) Start(pid int) error {
	proc, err := gopsutilprocess.NewProcess(int32(pid))
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.proc = proc
	m.peakCPU = 0
	m.peakMem = 0
	m.mu.Unlock()
	return nil
}

func (m *sysMeter) Sample() {
	m.mu.Lock()
	proc := m.proc
	m.mu.Unlock()
	if proc == nil {
		return
	}

	cpu, cpuErr := proc.CPUPercent()
	memInfo, memErr := proc.MemoryInfo()

	m.mu.Lock()
	defer m.mu.Unlock()
	if cpuErr == nil && cpu > m.peakCPU {
		m.peakCPU = cpu
	}
	if memErr == nil && memInfo != nil && memInfo.RSS > m.peakMem {
		m.peakMem = memInfo.RSS
	}
}

func (m *sysMeter) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.proc = nil
}

func (m *sysMeter) Peak() (float64, uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.peakCPU, m.peakMem
}
