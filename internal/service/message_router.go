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

// Service used to classify an inbound payload, persist it and produce the
// canonical payload the transport broadcasts verbatim.
type MessageRouter interface {

	// Classifies rawPayload and executes the matching persistence operation.
	// Returns the canonical broadcast payload, or an empty string for payloads
	// the relay does not rebroadcast (link messages and other leftovers).
	// A persistence failure means no broadcast, the error is never swallowed.
	HandleInbound(rawPayload string) (string, error)
}

type messageRouter struct {
	guard  *data.StoreGuard
	repo   repository.MessageRepository
	logger nlog.Logger
}

func NewMessageRouter(guard *data.StoreGuard, repo repository.MessageRepository, logger nlog.Logger) MessageRouter {
	return &messageRouter{
		guard:  guard,
		repo:   repo,
		logger: logger,
	}
}

func (r *messageRouter) Logf(format string, v ...any) {
	r.logger.Logf(format, v...)
}

func (r *messageRouter) HandleInbound(rawPayload string) (string, error) {

	decoded, err := model.Decode([]byte(rawPayload))
	if err != nil {
		return "", err
	}

	// The whole read-modify-write span runs under the guard, including the
	// echo read the broadcast payload is built from.
	r.guard.Lock()
	defer r.guard.Unlock()

	switch msg := decoded.(type) {

	case *model.TextMessage:
		switch msg.MessageType {
		case model.MessageTypeDeleted, model.MessageTypeInteracted, model.MessageTypeEdited:
			return r.replaceAndEcho(msg, rawPayload)
		default:
			// New message
			if _, err := r.repo.Insert(rawPayload); err != nil {
				return "", err
			}
			return r.fetchLastAndSerialize()
		}

	case *model.PictureMessage:
		if err := r.persistPictureMessage(msg); err != nil {
			return "", err
		}
		return r.fetchLastAndSerialize()

	default:
		// Nothing to persist or rebroadcast
		return "", nil
	}
}

// Updates the existing row and echoes back what was actually committed, so
// the broadcast can never diverge from durable state.
func (r *messageRouter) replaceAndEcho(msg *model.TextMessage, rawPayload string) (string, error) {

	var id int64
	if msg.ID != nil {
		id = *msg.ID
	}

	rowsAffected, err := r.repo.Replace(id, rawPayload)
	if err != nil {
		return "", err
	}
	if rowsAffected == 0 {
		r.Logf("No rows matched for update{%d}, same-connection caller error", id)
		return "", repository.ErrNotFound
	}

	return r.repo.FetchOne(id)
}

// The canonical "what just got written" read used after every insert. One
// extra round trip buys the guarantee that the broadcast content exactly
// matches the stored row: id assigned, attachment reattached.
func (r *messageRouter) fetchLastAndSerialize() (string, error) {

	lastRow, err := r.repo.FetchLast()
	if err != nil {
		return "", err
	}

	decoded, err := model.Decode([]byte(lastRow.Message))
	if err != nil {
		return "", err
	}

	meta := decoded.Meta()
	if meta.ID == nil {
		id := lastRow.ID
		meta.ID = &id
	}

	if picture, ok := decoded.(*model.PictureMessage); ok && lastRow.AttachmentData != nil {
		picture.Picture = lastRow.AttachmentData
	}

	return model.Encode(decoded)
}

// Attachment split: the binary payload never lands in the metadata row. The
// metadata row is written first so the attachment row can reference its id.
func (r *messageRouter) persistPictureMessage(msg *model.PictureMessage) error {

	attachmentBytes := msg.Picture
	msg.Picture = nil

	stripped, err := model.Encode(msg)
	if err != nil {
		return err
	}

	messageID, err := r.repo.Insert(stripped)
	if err != nil {
		return err
	}

	return r.repo.StoreAttachment(messageID, attachmentBytes)
}
