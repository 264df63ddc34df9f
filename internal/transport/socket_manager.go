/*
 * Copyright (c) 2026 Francesco Biribo'
 *
 * Permission to use, copy, modify, and distribute this software for any purpose with or without fee is hereby granted, provided that the above copyright notice and this permission notice appear in all copies.
 *
 * THE SOFTWARE IS PROVIDED "AS IS" AND THE AUTHOR DISCLAIMS ALL WARRANTIES WITH REGARD TO THIS SOFTWARE INCLUDING ALL IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS. IN NO EVENT SHALL THE AUTHOR BE LIABLE FOR ANY SPECIAL, DIRECT, INDIRECT, OR CONSEQUENTIAL DAMAGES OR ANY DAMAGES WHATSOEVER RESULTING FROM LOSS OF USE, DATA OR PROFITS, WHETHER IN AN ACTION OF CONTRACT, NEGLIGENCE OR OTHER TORTIOUS ACTION, ARISING OUT OF OR IN CONNECTION WITH THE USE OR PERFORMANCE OF THIS SOFTWARE.
 */

package transport

import (
	"context"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"chatserver/internal/nlog"

	"github.com/gorilla/mux"
)

type SocketConfig struct {
	ServerHost   string
	ServerPort   uint16
	ReadTimeout  int64
	WriteTimeout int64
}

// SocketManager owns the HTTP server the websocket endpoint lives on. It can
// be paused to refuse new connections while keeping the live ones served.
type SocketManager struct {
	running atomic.Bool
	paused  atomic.Bool

	logger nlog.Logger
	server *http.Server
	hub    *Hub

	stopFromOutsideChan chan struct{}
	doneFromInsideChan  chan struct{}
}

func NewSocketManager(hub *Hub) *SocketManager {
	return &SocketManager{
		hub:                 hub,
		stopFromOutsideChan: make(chan struct{}),
		doneFromInsideChan:  make(chan struct{}),
	}
}

func (m *SocketManager) IsReady() bool {
	return m.logger != nil && m.hub != nil
}

func (m *SocketManager) IsRunning() bool {
	return m.running.Load()
}

func (m *SocketManager) SetLogger(l nlog.Logger) {
	m.logger = l
}

func (m *SocketManager) Logf(format string, a ...any) {
	m.logger.Logf(format, a...)
}

func (m *SocketManager) SetPause(paused bool) {
	m.paused.Store(paused)
}

func (m *SocketManager) IsPaused() bool {
	return m.paused.Load()
}

// PauseMiddleware rejects new requests with 503 while the manager is paused.
func (m *SocketManager) PauseMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.IsPaused() {
			http.Error(w, "Server is paused", http.StatusServiceUnavailable)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// NewRouter builds the route table: the websocket endpoint and a health probe.
func (m *SocketManager) NewRouter() *mux.Router {
	r := mux.NewRouter()
	r.Use(m.PauseMiddleware)

	r.HandleFunc("/ws", m.hub.ServeWS)
	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	}).Methods("GET")

	return r
}

func (m *SocketManager) Run(ctx context.Context, cfg *SocketConfig) error {
	if !m.IsReady() {
		return fmt.Errorf("The socket manager is not ready... Missing components")
	}

	m.Logf("Socket service starting on port {%d}", cfg.ServerPort)

	m.server = &http.Server{
		Addr:           fmt.Sprintf("%s:%d", cfg.ServerHost, cfg.ServerPort),
		Handler:        m.NewRouter(),
		ReadTimeout:    time.Duration(cfg.ReadTimeout * int64(time.Second)),
		WriteTimeout:   time.Duration(cfg.WriteTimeout * int64(time.Second)),
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		select {
		case <-ctx.Done():
			m.Logf("Received stop signal. Shutting down...")
		case <-m.stopFromOutsideChan:
			m.Logf("Server was asked to stop. Shutting down...")
		}

		m.SetPause(true)
		m.hub.CloseAll()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := m.server.Shutdown(shutdownCtx); err != nil {
			m.Logf("Error during shutdown... %v\n", err)
		}
		close(m.doneFromInsideChan)
	}()

	m.running.Store(true)
	if err := m.server.ListenAndServe(); err != http.ErrServerClosed {
		m.Logf("FATAL: HTTP Server error{%v}\n", err)
		m.running.Store(false)
		return err
	}

	m.running.Store(false)
	return nil
}

func (m *SocketManager) Stop() {
	close(m.stopFromOutsideChan)
	<-m.doneFromInsideChan
	m.running.Store(false)
}
