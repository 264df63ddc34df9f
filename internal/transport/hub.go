/*
 * Copyright (c) 2026 Francesco Biribo'
 *
 * Permission to use, copy, modify, and distribute this software for any purpose with or without fee is hereby granted, provided that the above copyright notice and this permission notice appear in all copies.
 *
 * THE SOFTWARE IS PROVIDED "AS IS" AND THE AUTHOR DISCLAIMS ALL WARRANTIES WITH REGARD TO THIS SOFTWARE INCLUDING ALL IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS. IN NO EVENT SHALL THE AUTHOR BE LIABLE FOR ANY SPECIAL, DIRECT, INDIRECT, OR CONSEQUENTIAL DAMAGES OR ANY DAMAGES WHATSOEVER RESULTING FROM LOSS OF USE, DATA OR PROFITS, WHETHER IN AN ACTION OF CONTRACT, NEGLIGENCE OR OTHER TORTIOUS ACTION, ARISING OUT OF OR IN CONNECTION WITH THE USE OR PERFORMANCE OF THIS SOFTWARE.
 */

package transport

import (
	"errors"
	"net/http"
	"strings"
	"sync"

	"chatserver/internal/model"
	"chatserver/internal/nlog"
	"chatserver/internal/repository"
	"chatserver/internal/service"

	"github.com/gorilla/websocket"
)

// Control commands clients push as binary frames on the shared channel.
const (
	commandParticipantList = "PARTICIPANTLIST"
	commandTerminateAll    = "/terminateAll"

	participantListPrefix = "PARTICIPANTS:"
)

// Binary frames shorter than this that are not commands and not reactions are
// noise (typing indicators and the like) and are not rebroadcast.
const rawRebroadcastThreshold = 50

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// Hub tracks every live connection and fans frames out to all of them. It is
// the only caller of the router, reaction processor and history loader.
type Hub struct {
	mu          sync.RWMutex
	connections map[*Connection]struct{}

	router    service.MessageRouter
	reactions service.ReactionProcessor
	history   service.HistoryLoader
	logger    nlog.Logger
}

func NewHub(router service.MessageRouter, reactions service.ReactionProcessor, history service.HistoryLoader, logger nlog.Logger) *Hub {
	return &Hub{
		connections: make(map[*Connection]struct{}),
		router:      router,
		reactions:   reactions,
		history:     history,
		logger:      logger,
	}
}

func (h *Hub) Logf(format string, v ...any) {
	h.logger.Logf(format, v...)
}

// ServeWS upgrades the HTTP request and brings the new connection up to date:
// history replay first (to this connection only), then a ping to open the
// keep-alive exchange.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {

	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.Logf("Could not upgrade connection: %v", err)
		return
	}

	conn := newConnection(h, ws)
	h.register(conn)
	h.Logf("User %s just connected", conn.remoteAddr)

	go conn.writePump()
	go conn.readPump()

	h.replayHistory(conn)
	conn.enqueue(frame{websocket.PingMessage, nil})
}

func (h *Hub) register(conn *Connection) {
	h.mu.Lock()
	h.connections[conn] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) unregister(conn *Connection) {
	h.mu.Lock()
	if _, ok := h.connections[conn]; ok {
		delete(h.connections, conn)
		close(conn.done)
	}
	h.mu.Unlock()
	h.Logf("User %s disconnected", conn.remoteAddr)
}

// ParticipantCount returns the number of live connections.
func (h *Hub) ParticipantCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.connections)
}

// CloseAll drops every live connection, used during shutdown.
func (h *Hub) CloseAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.connections {
		delete(h.connections, conn)
		close(conn.done)
	}
}

// BroadcastText sends a text frame to every live connection.
func (h *Hub) BroadcastText(payload string) {
	h.broadcast(frame{websocket.TextMessage, []byte(payload)})
}

// BroadcastBinary sends a binary frame to every live connection.
func (h *Hub) BroadcastBinary(payload []byte) {
	h.broadcast(frame{websocket.BinaryMessage, payload})
}

func (h *Hub) broadcast(f frame) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for conn := range h.connections {
		if !conn.enqueue(f) {
			h.Logf("Connection %s is not keeping up, frame skipped", conn.remoteAddr)
		}
	}
}

func (h *Hub) replayHistory(conn *Connection) {
	history, err := h.history.LoadRecentHistory()
	if err != nil {
		h.Logf("Could not load history for %s: %v", conn.remoteAddr, err)
		return
	}
	for _, entry := range history {
		conn.enqueue(frame{websocket.TextMessage, []byte(entry)})
	}
}

// A text frame is a message payload. The router classifies and persists it,
// and whatever canonical payload it hands back is broadcast verbatim. Every
// failure is contained here, the connection loop never dies over one payload.
func (h *Hub) handleTextFrame(conn *Connection, payload []byte) {

	broadcastPayload, err := h.router.HandleInbound(string(payload))
	if err != nil {
		switch {
		case errors.Is(err, model.ErrMalformedMessage):
			h.Logf("Dropping malformed payload from %s: %v", conn.remoteAddr, err)
		case errors.Is(err, repository.ErrNotFound):
			h.Logf("Update from %s matched no row: %v", conn.remoteAddr, err)
		default:
			h.Logf("Persistence failed, no broadcast: %v", err)
		}
		return
	}

	if broadcastPayload == "" {
		return
	}
	h.BroadcastText(broadcastPayload)
}

// Binary frames share the channel with several things: control commands,
// reaction events and raw blobs older clients push around. Commands win,
// then the reaction probe, then the raw rebroadcast fallback.
func (h *Hub) handleBinaryFrame(conn *Connection, payload []byte) {

	switch string(payload) {
	case commandParticipantList:
		h.BroadcastBinary([]byte(h.participantList()))
		return
	case commandTerminateAll:
		h.BroadcastBinary(payload)
		return
	}

	if updated, ok := h.reactions.ApplyReaction(payload); ok {
		h.BroadcastText(updated)
		return
	}

	if len(payload) > rawRebroadcastThreshold {
		h.BroadcastBinary(payload)
	}
}

func (h *Hub) participantList() string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	var sb strings.Builder
	sb.WriteString(participantListPrefix)
	for conn := range h.connections {
		sb.WriteString(conn.remoteAddr)
		sb.WriteString(",")
	}
	return sb.String()
}
