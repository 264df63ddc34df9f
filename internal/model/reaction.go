/*
 * Copyright (c) 2026 Francesco Biribo'
 *
 * Permission to use, copy, modify, and distribute this software for any purpose with or without fee is hereby granted, provided that the above copyright notice and this permission notice appear in all copies.
 *
 * THE SOFTWARE IS PROVIDED "AS IS" AND THE AUTHOR DISCLAIMS ALL WARRANTIES WITH REGARD TO THIS SOFTWARE INCLUDING ALL IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS. IN NO EVENT SHALL THE AUTHOR BE LIABLE FOR ANY SPECIAL, DIRECT, INDIRECT, OR CONSEQUENTIAL DAMAGES OR ANY DAMAGES WHATSOEVER RESULTING FROM LOSS OF USE, DATA OR PROFITS, WHETHER IN AN ACTION OF CONTRACT, NEGLIGENCE OR OTHER TORTIOUS ACTION, ARISING OUT OF OR IN CONNECTION WITH THE USE OR PERFORMANCE OF THIS SOFTWARE.
 */

package model

import (
	"encoding/json"
	"fmt"
)

// A reaction event arrives over the socket as a binary frame holding JSON.
type ReactionEvent struct {
	MessageID    int64  `json:"messageId"`
	ClientName   string `json:"clientName"`
	ReactionName string `json:"reactionName"`
}

// IsReactionEvent reports whether a binary frame looks like a reaction event.
// The probe only checks for the reactionName field, the frame might be
// something else entirely (a command, a raw picture, ...).
func IsReactionEvent(raw []byte) bool {

	var probe struct {
		ReactionName *string `json:"reactionName"`
	}

	if err := json.Unmarshal(raw, &probe); err != nil {
		return false
	}
	return probe.ReactionName != nil
}

// DecodeReaction parses a binary frame into a reaction event.
func DecodeReaction(raw []byte) (*ReactionEvent, error) {

	if !IsReactionEvent(raw) {
		return nil, fmt.Errorf("%w: not a reaction event", ErrMalformedMessage)
	}

	var event ReactionEvent
	if err := json.Unmarshal(raw, &event); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}
	return &event, nil
}
