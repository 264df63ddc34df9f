/*
 * Copyright (c) 2026 Francesco Biribo'
 *
 * Permission to use, copy, modify, and distribute this software for any purpose with or without fee is hereby granted, provided that the above copyright notice and this permission notice appear in all copies.
 *
 * THE SOFTWARE IS PROVIDED "AS IS" AND THE AUTHOR DISCLAIMS ALL WARRANTIES WITH REGARD TO THIS SOFTWARE INCLUDING ALL IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS. IN NO EVENT SHALL THE AUTHOR BE LIABLE FOR ANY SPECIAL, DIRECT, INDIRECT, OR CONSEQUENTIAL DAMAGES OR ANY DAMAGES WHATSOEVER RESULTING FROM LOSS OF USE, DATA OR PROFITS, WHETHER IN AN ACTION OF CONTRACT, NEGLIGENCE OR OTHER TORTIOUS ACTION, ARISING OUT OF OR IN CONNECTION WITH THE USE OR PERFORMANCE OF THIS SOFTWARE.
 */

package service

import (
	"chatserver/internal/data"
	"chatserver/internal/model"
	"chatserver/internal/nlog"
	"chatserver/internal/repository"
)

// Size of the recent window served to newly connected clients.
const HistoryWindowSize = 100

// Protocol markers appended after the history replay. Clients treat them as
// control signals on the message channel, not as content to render.
const (
	SentinelStartupEnd = "__startup__end__"
	SentinelWelcome    = "welcome to the server"
)

// Service used to rebuild the bounded recent-message window for a client that
// just connected.
type HistoryLoader interface {

	// Returns the newest messages in ascending id order, each one a canonical
	// JSON string, terminated by the two sentinels. An empty store yields an
	// empty sequence with no sentinels. The sequence is materialized once and
	// consumed exactly once, one send per element.
	LoadRecentHistory() ([]string, error)
}

type historyLoader struct {
	guard  *data.StoreGuard
	repo   repository.MessageRepository
	logger nlog.Logger
}

func NewHistoryLoader(guard *data.StoreGuard, repo repository.MessageRepository, logger nlog.Logger) HistoryLoader {
	return &historyLoader{
		guard:  guard,
		repo:   repo,
		logger: logger,
	}
}

func (h *historyLoader) Logf(format string, v ...any) {
	h.logger.Logf(format, v...)
}

func (h *historyLoader) LoadRecentHistory() ([]string, error) {

	h.guard.Lock()
	defer h.guard.Unlock()

	rows, err := h.repo.FetchRecentWindow(HistoryWindowSize)
	if err != nil {
		return nil, err
	}

	if len(rows) == 0 {
		return []string{}, nil
	}

	history := make([]string, 0, len(rows)+2)
	for _, row := range rows {

		decoded, err := model.Decode([]byte(row.Message))
		if err != nil {
			h.Logf("Skipping malformed stored row{%d}: %v", row.ID, err)
			continue
		}

		meta := decoded.Meta()
		if meta.ID == nil {
			id := row.ID
			meta.ID = &id
		}

		if picture, ok := decoded.(*model.PictureMessage); ok && row.AttachmentData != nil {
			picture.Picture = row.AttachmentData
		}

		encoded, err := model.Encode(decoded)
		if err != nil {
			h.Logf("Skipping unserializable stored row{%d}: %v", row.ID, err)
			continue
		}
		history = append(history, encoded)
	}

	history = append(history, SentinelStartupEnd, SentinelWelcome)
	return history, nil
}
