// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// FrameGrabber - 视频批量抽帧工具
//
// Package process wraps exec.Cmd for running one FFmpeg/FFprobe invocation
// to completion.

package process

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"sync"
	"time"
	"unicode/utf8"
)

// KillDelay is how long an interrupted process may take to exit before it
// is killed.
const KillDelay = 5 * time.Second

// Process represents a one-shot process
type Process interface {
	Status() Status
	// Run starts the process and blocks until it exits. Cancelling ctx
	// interrupts the process.
	Run(ctx context.Context) error
	// Stdout returns what the last run wrote to stdout
	Stdout() []byte
}

// Config for a process
type Config struct {
	Binary         string
	Args           []string
	Timeout        time.Duration
	Parser         Parser
	Meter          Meter
	SampleInterval time.Duration
	Logger         Logger
}

// Status of a process
type Status struct {
	State    string
	Duration time.Duration
	Time     time.Time
	ExitCode int
	CPU      struct {
		Peak float64
	}
	Memory struct {
		Peak uint64
	}
}

// Logger interface
type Logger interface {
	Info(format string, args ...interface{})
	Error(format string, args ...interface{})
	Debug(format string, args ...interface{})
}

// ExitError is returned when the process exits with a non-zero code
type ExitError struct {
	Binary string
	Code   int
	Stderr string
}

func (e *ExitError) Error() string {
	if e.Stderr == "" {
		return fmt.Sprintf("%s exited with code %d", e.Binary, e.Code)
	}
	return fmt.Sprintf("%s exited with code %d: %s", e.Binary, e.Code, e.Stderr)
}

type stateType string

const (
	stateIdle     stateType = "idle"
	stateStarting stateType = "starting"
	stateRunning  stateType = "running"
	stateFinished stateType = "finished"
	stateFailed   stateType = "failed"
	stateKilled   stateType = "killed"
)

func (s stateType) String() string { return string(s) }

func (s stateType) IsRunning() bool {
	return s == stateStarting || s == stateRunning
}

type process struct {
	binary   string
	args     []string
	timeout  time.Duration
	interval time.Duration
	parser   Parser
	meter    Meter
	logger   Logger
	stdout   bytes.Buffer

	state struct {
		state    stateType
		time     time.Time
		started  time.Time
		exitCode int
		lock     sync.Mutex
	}
}

// New creates a new process
func New(config Config) (Process, error) {
	p := &process{
		binary:   config.Binary,
		args:     config.Args,
		timeout:  config.Timeout,
		interval: config.SampleInterval,
		parser:   config.Parser,
		meter:    config.Meter,
		logger:   config.Logger,
	}

	if len(p.binary) == 0 {
		return nil, fmt.Errorf("no valid binary given")
	}
	if p.parser == nil {
		p.parser = &nullParser{}
	}
	if p.meter == nil {
		p.meter = NewNullMeter()
	}
	if p.logger == nil {
		p.logger = &nopLogger{}
	}
	if p.interval <= 0 {
		p.interval = 250 * time.Millisecond
	}

	p.state.state = stateIdle
	p.state.time = time.Now()
	return p, nil
}

func (p *process) setState(state stateType) error {
	p.state.lock.Lock()
	defer p.state.lock.Unlock()

	prev := p.state.state
	ok := false

	switch prev {
	case stateIdle, stateFinished, stateFailed, stateKilled:
		ok = state == stateStarting
	case stateStarting:
		ok = state == stateRunning || state == stateFailed || state == stateKilled
	case stateRunning:
		ok = state == stateFinished || state == stateFailed || state == stateKilled
	default:
		return fmt.Errorf("unhandled state: %s", prev)
	}

	if !ok {
		return fmt.Errorf("can't change from %s to %s", prev, state)
	}

	p.state.state = state
	p.state.time = time.Now()
	if state == stateStarting {
		p.state.started = p.state.time
		p.state.exitCode = 0
	}
	return nil
}

func (p *process) getState() stateType {
	p.state.lock.Lock()
	defer p.state.lock.Unlock()
	return p.state.state
}

func (p *process) Status() Status {
	p.state.lock.Lock()
	s := Status{
		State:    p.state.state.String(),
		Time:     p.state.time,
		ExitCode: p.state.exitCode,
	}
	if p.state.state.IsRunning() {
		s.Duration = time.Since(p.state.started)
	} else if !p.state.started.IsZero() {
		s.Duration = p.state.time.Sub(p.state.started)
	}
	p.state.lock.Unlock()

	s.CPU.Peak, s.Memory.Peak = p.meter.Peak()
	return s
}

func (p *process) Stdout() []byte {
	return p.stdout.Bytes()
}

func (p *process) Run(ctx context.Context) error {
	if p.getState().IsRunning() {
		return fmt.Errorf("%s is already running", p.binary)
	}
	if err := p.setState(stateStarting); err != nil {
		return err
	}

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	p.stdout.Reset()
	p.parser.ResetStats()
	p.parser.ResetLog()

	cmd := exec.CommandContext(ctx, p.binary, p.args...)
	cmd.Env = []string{}
	cmd.Stdout = &p.stdout
	cmd.Cancel = func() error {
		if runtime.GOOS == "windows" {
			return cmd.Process.Kill()
		}
		return cmd.Process.Signal(os.Interrupt)
	}
	cmd.WaitDelay = KillDelay

	stderr, err := cmd.StderrPipe()
	if err != nil {
		p.parser.Parse(err.Error())
		p.setState(stateFailed)
		return err
	}

	p.logger.Debug("exec %s %v", p.binary, p.args)

	if err := cmd.Start(); err != nil {
		p.parser.Parse(err.Error())
		p.setState(stateFailed)
		return fmt.Errorf("start %s: %w", p.binary, err)
	}
	p.setState(stateRunning)

	if err := p.meter.Start(cmd.Process.Pid); err != nil {
		p.logger.Debug("meter %s: %v", p.binary, err)
	}
	done := make(chan struct{})
	go p.sampler(done)

	p.reader(stderr)
	err = cmd.Wait()

	close(done)
	p.meter.Stop()

	return p.finish(ctx, err)
}

func (p *process) finish(ctx context.Context, err error) error {
	if err == nil {
		p.setState(stateFinished)
		return nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		p.setState(stateKilled)
		return fmt.Errorf("%s: %w", p.binary, ctxErr)
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		code := exitErr.ExitCode()
		p.state.lock.Lock()
		p.state.exitCode = code
		p.state.lock.Unlock()

		if code < 0 {
			p.setState(stateKilled)
		} else {
			p.setState(stateFailed)
		}
		return &ExitError{Binary: p.binary, Code: code, Stderr: Tail(p.parser.Log(), 5)}
	}

	p.setState(stateFailed)
	return fmt.Errorf("%s: %w", p.binary, err)
}

func (p *process) sampler(done <-chan struct{}) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.meter.Sample()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			p.meter.Sample()
		}
	}
}

func (p *process) reader(r io.Reader) {
	scanner := bufio.NewScanner(r)
	scanner.Split(scanLine)

	for scanner.Scan() {
		p.parser.Parse(scanner.Text())
	}
	// drain so that Wait does not block on a full pipe
	io.Copy(io.Discard, r)
}

func scanLine(data []byte, atEOF bool) (advance int, token []byte, err error) {
	start := 0
	for start < len(data) {
		r, w := utf8.DecodeRune(data[start:])
		if r != '\n' && r != '\r' {
			break
		}
		start += w
	}

	for i := start; i < len(data); {
		r, w := utf8.DecodeRune(data[i:])
		if r == '\n' || r == '\r' {
			return i + w, data[start:i], nil
		}
		i += w
	}

	if atEOF && len(data) > start {
		return len(data), data[start:], nil
	}
	return start, nil, nil
}

type nopLogger struct{}

func (l *nopLogger) Info(format string, args ...interface{})  {}
func (l *nopLogger) Error(format string, args ...interface{}) {}
func (l *nopLogger) Debug(format string, args ...interface{}) {}
