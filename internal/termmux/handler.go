// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package termmux

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

const (
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// controlMessage is the text-frame control envelope (spec §4.5).
type controlMessage struct {
	Type  string `json:"type"`
	ID    string `json:"id"`
	Cwd   string `json:"cwd"`
	Shell string `json:"shell,omitempty"`
	Cols  int    `json:"cols"`
	Rows  int    `json:"rows"`
	Code  int    `json:"code,omitempty"`
	Msg   string `json:"message,omitempty"`
}

// Handler upgrades one WebSocket per browser tab and multiplexes frames
// for N PTY sessions over it (spec §4.5 Terminal WebSocket Mux).
type Handler struct {
	registry *Registry

	mu    sync.Mutex
	conns map[*websocket.Conn]struct{}
}

// NewHandler builds a Handler backed by registry.
func NewHandler(registry *Registry) *Handler {
	return &Handler{registry: registry, conns: make(map[*websocket.Conn]struct{})}
}

// Shutdown closes every tracked WebSocket, for graceful server shutdown.
func (h *Handler) Shutdown() {
	h.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(h.conns))
	for c := range h.conns {
		conns = append(conns, c)
	}
	h.mu.Unlock()
	for _, c := range conns {
		c.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
			time.Now().Add(time.Second))
		c.Close()
	}
}

// ServeHTTP upgrades the request and runs the per-connection mux loop.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("termmux: upgrade failed: %v", err)
		return
	}
	h.mu.Lock()
	h.conns[conn] = struct{}{}
	h.mu.Unlock()
	defer func() {
		h.mu.Lock()
		delete(h.conns, conn)
		h.mu.Unlock()
		conn.Close()
	}()

	var writeMu sync.Mutex
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	pingTicker := time.NewTicker(pingPeriod)
	defer pingTicker.Stop()
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-pingTicker.C:
				writeMu.Lock()
				err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(10*time.Second))
				writeMu.Unlock()
				if err != nil {
					return
				}
			case <-done:
				return
			}
		}
	}()
	defer close(done)

	// unsubs tracks per-session output forwarders owned by this
	// connection so a `close` or disconnect can tear them down without
	// touching sessions other tabs still hold open.
	unsubs := make(map[string]func())
	defer func() {
		for _, cancel := range unsubs {
			cancel()
		}
		// Socket-loss policy: detach, not kill (spec §4.5). Sessions
		// stay alive in the registry for a future reconnect by id.
	}()

	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			return
		}

		switch msgType {
		case websocket.TextMessage:
			h.handleControl(conn, &writeMu, data, unsubs)
		case websocket.BinaryMessage:
			h.handleInput(data)
		}
	}
}

func (h *Handler) handleControl(conn *websocket.Conn, writeMu *sync.Mutex, data []byte, unsubs map[string]func()) {
	var msg controlMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}

	switch msg.Type {
	case "open":
		sess, err := h.registry.Open(msg.ID, msg.Cwd, msg.Shell, msg.Cols, msg.Rows)
		if err != nil {
			writeJSON(conn, writeMu, controlMessage{Type: "error", ID: msg.ID, Msg: err.Error()})
			return
		}
		if tail := sess.Scrollback(); len(tail) > 0 {
			writeBinary(conn, writeMu, encodeFrame(msg.ID, tail))
		}
		outputs, cancel := sess.Subscribe()
		unsubs[msg.ID] = cancel
		go h.pumpOutput(conn, writeMu, msg.ID, outputs)
		go h.watchExit(conn, writeMu, msg.ID, sess)
		writeJSON(conn, writeMu, controlMessage{Type: "opened", ID: msg.ID})

	case "resize":
		if sess, ok := h.registry.Get(msg.ID); ok {
			sess.Resize(msg.Cols, msg.Rows)
		}

	case "close":
		if cancel, ok := unsubs[msg.ID]; ok {
			cancel()
			delete(unsubs, msg.ID)
		}
		h.registry.Close(msg.ID)
	}
}

func (h *Handler) handleInput(frame []byte) {
	id, payload, ok := decodeFrame(frame)
	if !ok {
		return
	}
	if sess, ok := h.registry.Get(id); ok {
		sess.Input(payload)
	}
}

func (h *Handler) pumpOutput(conn *websocket.Conn, writeMu *sync.Mutex, id string, outputs <-chan []byte) {
	for chunk := range outputs {
		writeBinary(conn, writeMu, encodeFrame(id, chunk))
	}
}

func (h *Handler) watchExit(conn *websocket.Conn, writeMu *sync.Mutex, id string, sess *Session) {
	code, ok := <-sess.exitCh
	if !ok {
		return
	}
	writeJSON(conn, writeMu, controlMessage{Type: "exit", ID: id, Code: code})
}

func writeJSON(conn *websocket.Conn, writeMu *sync.Mutex, msg controlMessage) {
	writeMu.Lock()
	defer writeMu.Unlock()
	_ = conn.WriteJSON(msg)
}

func writeBinary(conn *websocket.Conn, writeMu *sync.Mutex, frame []byte) {
	writeMu.Lock()
	defer writeMu.Unlock()
	_ = conn.WriteMessage(websocket.BinaryMessage, frame)
}
