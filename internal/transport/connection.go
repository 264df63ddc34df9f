/*
 * Copyright (c) 2026 Francesco Biribo'
 *
 * Permission to use, copy, modify, and distribute this software for any purpose with or without fee is hereby granted, provided that the above copyright notice and this permission notice appear in all copies.
 *
 * THE SOFTWARE IS PROVIDED "AS IS" AND THE AUTHOR DISCLAIMS ALL WARRANTIES WITH REGARD TO THIS SOFTWARE INCLUDING ALL IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS. IN NO EVENT SHALL THE AUTHOR BE LIABLE FOR ANY SPECIAL, DIRECT, INDIRECT, OR CONSEQUENTIAL DAMAGES OR ANY DAMAGES WHATSOEVER RESULTING FROM LOSS OF USE, DATA OR PROFITS, WHETHER IN AN ACTION OF CONTRACT, NEGLIGENCE OR OTHER TORTIOUS ACTION, ARISING OUT OF OR IN CONNECTION WITH THE USE OR PERFORMANCE OF THIS SOFTWARE.
 */

package transport

import (
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	// Pictures travel base64-encoded inside text frames
	maxFrameSize = 1 << 20
)

// A single outbound websocket frame. The hub broadcasts both text (canonical
// JSON payloads) and binary (control replies, raw rebroadcasts) frames.
type frame struct {
	messageType int
	data        []byte
}

// One client connection. All writes go through the send channel so that only
// the writePump goroutine ever touches the underlying socket for writing.
type Connection struct {
	id         string
	remoteAddr string

	hub  *Hub
	ws   *websocket.Conn
	send chan frame

	// Closed by the hub on unregister. The send channel itself is never
	// closed, so a concurrent enqueue can never hit a closed channel.
	done chan struct{}
}

func newConnection(hub *Hub, ws *websocket.Conn) *Connection {
	return &Connection{
		id:         uuid.New().String(),
		remoteAddr: ws.RemoteAddr().String(),
		hub:        hub,
		ws:         ws,
		send:       make(chan frame, 256),
		done:       make(chan struct{}),
	}
}

// Queues a frame without ever blocking the caller. Broadcast is
// fire-and-forget: a connection that cannot keep up just misses the frame,
// and a connection that already dropped refuses it.
func (c *Connection) enqueue(f frame) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- f:
		return true
	default:
		return false
	}
}

func (c *Connection) readPump() {
	defer func() {
		c.hub.unregister(c)
		c.ws.Close()
	}()

	c.ws.SetReadLimit(maxFrameSize)
	c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		c.ws.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		messageType, payload, err := c.ws.ReadMessage()
		if err != nil {
			c.hub.Logf("Connection %s read loop ended: %v", c.remoteAddr, err)
			return
		}

		switch messageType {
		case websocket.TextMessage:
			c.hub.handleTextFrame(c, payload)
		case websocket.BinaryMessage:
			c.hub.handleBinaryFrame(c, payload)
		}
	}
}

func (c *Connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.ws.Close()
	}()

	for {
		select {
		case f := <-c.send:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(f.messageType, f.data); err != nil {
				return
			}
		case <-c.done:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			c.ws.WriteMessage(websocket.CloseMessage, []byte{})
			return
		case <-ticker.C:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
