// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package termmux implements the PTY Session Registry and Terminal
// WebSocket Mux (spec §4.5): many PTY sessions multiplexed over one
// WebSocket, with a detach-on-disconnect socket-loss policy.
package termmux

import (
	"fmt"
	"os"
	"os/exec"
	"sync"

	"github.com/creack/pty"
)

// State is a PTY session's lifecycle state (spec §4.5).
type State int

const (
	StateCreating State = iota
	StateRunning
	StateClosing
	StateExited
)

// scrollbackBytes bounds the buffered tail kept for a detached session
// to resume from on reconnect (spec §4.5 "last N kilobytes per session"),
// sized like other_examples' pty/session.go MaxBufferLines idea but in
// bytes since our frames are raw, not line-oriented.
const scrollbackBytes = 64 * 1024

// Session owns one spawned PTY child and its subscriber set. A Session
// outlives any single WebSocket connection under the detach policy: it
// is addressable only by (id, owning registry) while attached, and by id
// alone across reconnects.
type Session struct {
	ID      string
	Cwd     string
	Shell   string
	Cols    int
	Rows    int

	mu    sync.Mutex
	state State
	ptmx  *os.File
	cmd   *exec.Cmd

	scrollback []byte

	subMu sync.Mutex
	subs  map[chan []byte]struct{}

	exitCh chan int
}

func newSession(id, cwd, shell string, cols, rows int) *Session {
	return &Session{
		ID:     id,
		Cwd:    cwd,
		Shell:  shell,
		Cols:   cols,
		Rows:   rows,
		state:  StateCreating,
		subs:   make(map[chan []byte]struct{}),
		exitCh: make(chan int, 1),
	}
}

// spawn starts the PTY child and its reader loop.
func (s *Session) spawn() error {
	shell := s.Shell
	if shell == "" {
		shell = defaultShell()
	}
	cmd := exec.Command(shell)
	cmd.Dir = s.Cwd
	cmd.Env = os.Environ()
	setProcessGroup(cmd)

	ptmx, err := pty.StartWithSize(cmd, &pty.Winsize{Rows: uint16(s.Rows), Cols: uint16(s.Cols)})
	if err != nil {
		return fmt.Errorf("start pty: %w", err)
	}

	s.mu.Lock()
	s.ptmx = ptmx
	s.cmd = cmd
	s.state = StateRunning
	s.mu.Unlock()

	go s.readLoop()
	return nil
}

func (s *Session) readLoop() {
	buf := make([]byte, 32*1024)
	for {
		n, err := s.ptmx.Read(buf)
		if n > 0 {
			chunk := append([]byte(nil), buf[:n]...)
			s.appendScrollback(chunk)
			s.fanOut(chunk)
		}
		if err != nil {
			break
		}
	}

	code := s.waitExitCode()
	s.mu.Lock()
	s.state = StateExited
	s.mu.Unlock()
	s.exitCh <- code
	s.closeAllSubs()
}

func (s *Session) waitExitCode() int {
	if s.cmd == nil {
		return -1
	}
	err := s.cmd.Wait()
	if err == nil {
		return 0
	}
	if exitErr, ok := err.(*exec.ExitError); ok {
		return exitErr.ExitCode()
	}
	return -1
}

func (s *Session) appendScrollback(chunk []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scrollback = append(s.scrollback, chunk...)
	if len(s.scrollback) > scrollbackBytes {
		s.scrollback = s.scrollback[len(s.scrollback)-scrollbackBytes:]
	}
}

// Scrollback returns the buffered tail for a reconnecting client.
func (s *Session) Scrollback() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]byte(nil), s.scrollback...)
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Subscribe registers a channel to receive output chunks. Unsubscribe by
// calling the returned func.
func (s *Session) Subscribe() (<-chan []byte, func()) {
	ch := make(chan []byte, 64)
	s.subMu.Lock()
	s.subs[ch] = struct{}{}
	s.subMu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.subMu.Lock()
			if _, ok := s.subs[ch]; ok {
				delete(s.subs, ch)
				close(ch)
			}
			s.subMu.Unlock()
		})
	}
	return ch, cancel
}

func (s *Session) fanOut(chunk []byte) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for ch := range s.subs {
		select {
		case ch <- chunk:
		default:
		}
	}
}

func (s *Session) closeAllSubs() {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for ch := range s.subs {
		delete(s.subs, ch)
		close(ch)
	}
}

// Input writes bytes to the child's stdin. Running accepts input; other
// states are no-ops (spec §4.5, testable property §8.8).
func (s *Session) Input(data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateRunning || s.ptmx == nil {
		return
	}
	_, _ = s.ptmx.Write(data)
}

// Resize applies a new terminal size. A no-op once Exited.
func (s *Session) Resize(cols, rows int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateRunning || s.ptmx == nil {
		return
	}
	s.Cols, s.Rows = cols, rows
	_ = pty.Setsize(s.ptmx, &pty.Winsize{Rows: uint16(rows), Cols: uint16(cols)})
}

// Kill terminates the child unconditionally (explicit close, spec §4.5).
func (s *Session) Kill() {
	s.mu.Lock()
	s.state = StateClosing
	ptmx := s.ptmx
	cmd := s.cmd
	s.mu.Unlock()

	if cmd != nil {
		killProcessGroup(cmd)
	}
	if ptmx != nil {
		_ = ptmx.Close()
	}
}

func defaultShell() string {
	if sh := os.Getenv("SHELL"); sh != "" {
		return sh
	}
	return "/bin/sh"
}
