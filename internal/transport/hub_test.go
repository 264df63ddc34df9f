/*
 * Copyright (c) 2026 Francesco Biribo'
 *
 * Permission to use, copy, modify, and distribute this software for any purpose with or without fee is hereby granted, provided that the above copyright notice and this permission notice appear in all copies.
 *
 * THE SOFTWARE IS PROVIDED "AS IS" AND THE AUTHOR DISCLAIMS ALL WARRANTIES WITH REGARD TO THIS SOFTWARE INCLUDING ALL IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS. IN NO EVENT SHALL THE AUTHOR BE LIABLE FOR ANY SPECIAL, DIRECT, INDIRECT, OR CONSEQUENTIAL DAMAGES OR ANY DAMAGES WHATSOEVER RESULTING FROM LOSS OF USE, DATA OR PROFITS, WHETHER IN AN ACTION OF CONTRACT, NEGLIGENCE OR OTHER TORTIOUS ACTION, ARISING OUT OF OR IN CONNECTION WITH THE USE OR PERFORMANCE OF THIS SOFTWARE.
 */

package transport

import (
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"chatserver/internal/data"
	"chatserver/internal/model"
	"chatserver/internal/repository"
	"chatserver/internal/service"

	"github.com/gorilla/websocket"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type MockLogger struct{}

func (m *MockLogger) Logf(format string, v ...any) {}

func newTestHub(t *testing.T) (*Hub, repository.MessageRepository) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{})
	if err != nil {
		t.Fatalf("Could not open test database: %v", err)
	}
	storage := data.NewStorageManager(db)
	if err := storage.Migrate(); err != nil {
		t.Fatalf("Could not migrate test database: %v", err)
	}

	guard := storage.Guard()
	repo := storage.GetMessageRepository()
	logger := &MockLogger{}

	hub := NewHub(
		service.NewMessageRouter(guard, repo, logger),
		service.NewReactionProcessor(guard, repo, logger),
		service.NewHistoryLoader(guard, repo, logger),
		logger,
	)
	return hub, repo
}

func dialTestClient(t *testing.T, server *httptest.Server) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Could not dial %s: %v", url, err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) (int, []byte) {
	t.Helper()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	messageType, payload, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	return messageType, payload
}

func TestServeWSReplaysHistoryToNewConnections(t *testing.T) {
	hub, repo := newTestHub(t)
	server := httptest.NewServer(NewSocketManager(hub).NewRouter())
	defer server.Close()

	if _, err := repo.Insert(`{"subclass":"text","messageType":0,"sender":"bob","message":"first"}`); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if _, err := repo.Insert(`{"subclass":"text","messageType":0,"sender":"bob","message":"second"}`); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	client := dialTestClient(t, server)

	var replay []string
	for i := 0; i < 4; i++ {
		messageType, payload := readFrame(t, client)
		if messageType != websocket.TextMessage {
			t.Fatalf("Expected a text frame, got type %d", messageType)
		}
		replay = append(replay, string(payload))
	}

	for i, expected := range []string{"first", "second"} {
		decoded, err := model.Decode([]byte(replay[i]))
		if err != nil {
			t.Fatalf("Replay element %d is not decodable: %v", i, err)
		}
		if text := decoded.(*model.TextMessage).Text; text != expected {
			t.Errorf("Replay element %d is %q, expected %q", i, text, expected)
		}
	}
	if replay[2] != service.SentinelStartupEnd || replay[3] != service.SentinelWelcome {
		t.Errorf("Wrong trailing sentinels: %q %q", replay[2], replay[3])
	}
}

func TestTextFrameIsPersistedAndBroadcastToEveryone(t *testing.T) {
	hub, repo := newTestHub(t)
	server := httptest.NewServer(NewSocketManager(hub).NewRouter())
	defer server.Close()

	// A seed message gives both clients a replay to drain, which also proves
	// they are registered before the broadcast fires.
	if _, err := repo.Insert(`{"subclass":"text","messageType":0,"sender":"bob","message":"seed"}`); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	sender := dialTestClient(t, server)
	receiver := dialTestClient(t, server)
	for i := 0; i < 3; i++ {
		readFrame(t, sender)
		readFrame(t, receiver)
	}

	payload := `{"subclass":"text","messageType":0,"sender":"alice","message":"hello everyone"}`
	if err := sender.WriteMessage(websocket.TextMessage, []byte(payload)); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	for _, client := range []*websocket.Conn{sender, receiver} {
		_, broadcast := readFrame(t, client)
		decoded, err := model.Decode(broadcast)
		if err != nil {
			t.Fatalf("Broadcast is not decodable: %v", err)
		}
		text := decoded.(*model.TextMessage)
		if text.Text != "hello everyone" {
			t.Errorf("Wrong broadcast content: %s", text.Text)
		}
		if text.ID == nil {
			t.Error("Broadcast payload carries no id")
		}
	}
}

func TestReactionEventIsMergedAndBroadcast(t *testing.T) {
	hub, repo := newTestHub(t)
	server := httptest.NewServer(NewSocketManager(hub).NewRouter())
	defer server.Close()

	if _, err := repo.Insert(`{"subclass":"text","messageType":0,"sender":"bob","message":"react to me"}`); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	client := dialTestClient(t, server)
	for i := 0; i < 3; i++ {
		readFrame(t, client)
	}

	event := `{"messageId":1,"clientName":"alice","reactionName":"👍"}`
	if err := client.WriteMessage(websocket.BinaryMessage, []byte(event)); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	messageType, broadcast := readFrame(t, client)
	if messageType != websocket.TextMessage {
		t.Fatalf("Expected the merged row as a text frame, got type %d", messageType)
	}
	decoded, err := model.Decode(broadcast)
	if err != nil {
		t.Fatalf("Broadcast is not decodable: %v", err)
	}
	text := decoded.(*model.TextMessage)
	if text.MessageType != model.MessageTypeInteracted {
		t.Errorf("Expected messageType %d, got %d", model.MessageTypeInteracted, text.MessageType)
	}
	if len(text.UserInteractions) != 1 || text.UserInteractions[0].Username != "alice" {
		t.Errorf("Wrong interactions: %v", text.UserInteractions)
	}
}

func TestParticipantListCommand(t *testing.T) {
	hub, _ := newTestHub(t)
	server := httptest.NewServer(NewSocketManager(hub).NewRouter())
	defer server.Close()

	client := dialTestClient(t, server)

	if err := client.WriteMessage(websocket.BinaryMessage, []byte(commandParticipantList)); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	messageType, payload := readFrame(t, client)
	if messageType != websocket.BinaryMessage {
		t.Fatalf("Expected a binary frame, got type %d", messageType)
	}
	if !strings.HasPrefix(string(payload), participantListPrefix) {
		t.Errorf("Wrong participant list reply: %s", payload)
	}
	if !strings.Contains(string(payload), ",") {
		t.Errorf("Expected at least one listed participant: %s", payload)
	}
}

func TestTerminateAllIsRebroadcast(t *testing.T) {
	hub, _ := newTestHub(t)
	server := httptest.NewServer(NewSocketManager(hub).NewRouter())
	defer server.Close()

	client := dialTestClient(t, server)

	if err := client.WriteMessage(websocket.BinaryMessage, []byte(commandTerminateAll)); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	messageType, payload := readFrame(t, client)
	if messageType != websocket.BinaryMessage || string(payload) != commandTerminateAll {
		t.Errorf("Expected the command echoed as a binary frame, got type %d payload %s", messageType, payload)
	}
}

func TestShortBinaryNoiseIsNotRebroadcast(t *testing.T) {
	hub, _ := newTestHub(t)
	server := httptest.NewServer(NewSocketManager(hub).NewRouter())
	defer server.Close()

	client := dialTestClient(t, server)

	// Not a command, not a reaction, under the rebroadcast threshold
	if err := client.WriteMessage(websocket.BinaryMessage, []byte("typing...")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	// Frames from one connection are handled in order, so the participant
	// list arriving first proves the noise frame was dropped.
	if err := client.WriteMessage(websocket.BinaryMessage, []byte(commandParticipantList)); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	_, payload := readFrame(t, client)
	if !strings.HasPrefix(string(payload), participantListPrefix) {
		t.Errorf("Expected the participant list, got %s", payload)
	}
}

func TestLargeBinaryFrameIsRebroadcastRaw(t *testing.T) {
	hub, _ := newTestHub(t)
	server := httptest.NewServer(NewSocketManager(hub).NewRouter())
	defer server.Close()

	client := dialTestClient(t, server)

	blob := make([]byte, rawRebroadcastThreshold+1)
	for i := range blob {
		blob[i] = byte(i)
	}
	if err := client.WriteMessage(websocket.BinaryMessage, blob); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	messageType, payload := readFrame(t, client)
	if messageType != websocket.BinaryMessage {
		t.Fatalf("Expected a binary frame, got type %d", messageType)
	}
	if len(payload) != len(blob) {
		t.Errorf("Blob was not rebroadcast verbatim: %d bytes", len(payload))
	}
}

func TestEnqueueAfterFastDisconnectDoesNotPanic(t *testing.T) {
	hub, _ := newTestHub(t)

	conn := &Connection{
		remoteAddr: "test-client",
		hub:        hub,
		send:       make(chan frame, 256),
		done:       make(chan struct{}),
	}
	hub.register(conn)

	// A client that drops during the history replay triggers exactly this
	// order: the read loop's deferred unregister runs while ServeWS is still
	// enqueueing frames.
	hub.unregister(conn)

	if conn.enqueue(frame{websocket.TextMessage, []byte("late frame")}) {
		t.Error("A dropped connection must refuse new frames")
	}
	hub.BroadcastText("late broadcast")

	if count := hub.ParticipantCount(); count != 0 {
		t.Errorf("Expected 0 participants, got %d", count)
	}
}

func TestUnregisterIsIdempotent(t *testing.T) {
	hub, _ := newTestHub(t)

	conn := &Connection{
		remoteAddr: "test-client",
		hub:        hub,
		send:       make(chan frame, 256),
		done:       make(chan struct{}),
	}
	hub.register(conn)

	hub.unregister(conn)
	hub.unregister(conn)
	hub.CloseAll()
}

func TestParticipantCountTracksConnections(t *testing.T) {
	hub, _ := newTestHub(t)
	server := httptest.NewServer(NewSocketManager(hub).NewRouter())
	defer server.Close()

	first := dialTestClient(t, server)
	second := dialTestClient(t, server)

	// The handshake returns before ServeWS registers, give it a moment
	deadline := time.Now().Add(2 * time.Second)
	for hub.ParticipantCount() != 2 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if count := hub.ParticipantCount(); count != 2 {
		t.Fatalf("Expected 2 participants, got %d", count)
	}

	first.Close()
	second.Close()
	deadline = time.Now().Add(2 * time.Second)
	for hub.ParticipantCount() != 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if count := hub.ParticipantCount(); count != 0 {
		t.Errorf("Expected 0 participants after disconnect, got %d", count)
	}
}
