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

// Service used to merge a reaction event into the stored message it targets.
type ReactionProcessor interface {

	// Merges the reaction into the stored row and returns the committed
	// payload for broadcast. A false return means "not a reaction, or nothing
	// was merged" and the caller should try other handling; it is never fatal.
	ApplyReaction(rawReactionEvent []byte) (string, bool)
}

type reactionProcessor struct {
	guard  *data.StoreGuard
	repo   repository.MessageRepository
	logger nlog.Logger
}

func NewReactionProcessor(guard *data.StoreGuard, repo repository.MessageRepository, logger nlog.Logger) ReactionProcessor {
	return &reactionProcessor{
		guard:  guard,
		repo:   repo,
		logger: logger,
	}
}

func (p *reactionProcessor) Logf(format string, v ...any) {
	p.logger.Logf(format, v...)
}

func (p *reactionProcessor) ApplyReaction(rawReactionEvent []byte) (string, bool) {

	event, err := model.DecodeReaction(rawReactionEvent)
	if err != nil {
		p.Logf("Binary frame is not a reaction event, might be something else: %v", err)
		return "", false
	}

	p.guard.Lock()
	defer p.guard.Unlock()

	storedEntry, err := p.repo.FetchOne(event.MessageID)
	if err != nil {
		p.Logf("Could not fetch message{%d} for reaction: %v", event.MessageID, err)
		return "", false
	}

	decoded, err := model.Decode([]byte(storedEntry))
	if err != nil {
		p.Logf("Stored entry{%d} could not be decoded: %v", event.MessageID, err)
		return "", false
	}

	// Append-only: the same user reacting with the same emoji twice yields
	// two entries. Deduplication would be a product decision, not a fix.
	meta := decoded.Meta()
	meta.MessageType = model.MessageTypeInteracted
	if meta.ID == nil {
		meta.ID = &event.MessageID
	}
	if text, ok := decoded.(*model.TextMessage); ok {
		text.UserInteractions = append(text.UserInteractions, model.UserInteraction{
			Username: event.ClientName,
			Emoji:    event.ReactionName,
		})
	}

	updated, err := model.Encode(decoded)
	if err != nil {
		p.Logf("Could not serialize updated entry{%d}: %v", event.MessageID, err)
		return "", false
	}

	rowsAffected, err := p.repo.Replace(event.MessageID, updated)
	if err != nil || rowsAffected == 0 {
		p.Logf("Could not replace entry{%d} with merged reaction: %v", event.MessageID, err)
		return "", false
	}

	// Echo back the committed row so the broadcast matches durable state.
	committed, err := p.repo.FetchOne(event.MessageID)
	if err != nil {
		p.Logf("Could not fetch merged entry{%d}: %v", event.MessageID, err)
		return "", false
	}

	return committed, true
}
