/*
 * Copyright (c) 2026 Francesco Biribo'
 *
 * Permission to use, copy, modify, and distribute this software for any purpose with or without fee is hereby granted, provided that the above copyright notice and this permission notice appear in all copies.
 *
 * THE SOFTWARE IS PROVIDED "AS IS" AND THE AUTHOR DISCLAIMS ALL WARRANTIES WITH REGARD TO THIS SOFTWARE INCLUDING ALL IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS. IN NO EVENT SHALL THE AUTHOR BE LIABLE FOR ANY SPECIAL, DIRECT, INDIRECT, OR CONSEQUENTIAL DAMAGES OR ANY DAMAGES WHATSOEVER RESULTING FROM LOSS OF USE, DATA OR PROFITS, WHETHER IN AN ACTION OF CONTRACT, NEGLIGENCE OR OTHER TORTIOUS ACTION, ARISING OUT OF OR IN CONNECTION WITH THE USE OR PERFORMANCE OF THIS SOFTWARE.
 */

package model

// Lifecycle tag of a message. Orthogonal to the variant: a text message can be
// Normal at first and become Edited or Deleted later on.
// The numeric values are part of the wire format, existing clients rely on them.
const (
	MessageTypeNormal     byte = 0
	MessageTypeDeleted    byte = 1
	MessageTypeInteracted byte = 2
	MessageTypeEdited     byte = 3
)

// Variant discriminant, carried in the "subclass" field of every wire payload.
const (
	SubclassText  = "text"
	SubclassImage = "image"
	SubclassLink  = "link"
)

// A reaction a user attached to a message.
type UserInteraction struct {
	Username string `json:"username"`
	Emoji    string `json:"emoji"`
}

// Copy-by-value reference to another message. It is not a live link: if the
// quoted message gets edited afterwards, the quote keeps the original text.
type Quote struct {
	Sender string `json:"sender"`
	Time   string `json:"time"`
	Text   string `json:"text"`
}

// Base carries the fields shared by every message variant.
type Base struct {
	ID               *int64            `json:"id"`          // Server-assigned, nil until first persisted
	Subclass         string            `json:"subclass"`    // Variant discriminant
	MessageType      byte              `json:"messageType"` // Lifecycle tag
	Sender           string            `json:"sender"`      // Set at creation, immutable afterwards
	Time             string            `json:"time"`        // Client-side timestamp string
	UserInteractions []UserInteraction `json:"userInteractions"`
	QuotedMessage    *Quote            `json:"quotedMessage,omitempty"`
}

// Message is the closed set of wire message variants (text, image, link).
// Decode is the only producer, so a type switch over the three concrete
// types is exhaustive.
type Message interface {
	Meta() *Base
}

// Plain text message, also the only variant that carries the flat quoted
// fields older clients send.
type TextMessage struct {
	Base
	Text                string `json:"message"`
	QuotedMessageSender string `json:"quotedMessageSender,omitempty"`
	QuotedMessageTime   string `json:"quotedMessageTime,omitempty"`
	QuotedMessageText   string `json:"quotedMessageText,omitempty"`
}

// Picture message. The binary payload is never persisted together with the
// metadata, it is split into the attachment table and stitched back on reads.
type PictureMessage struct {
	Base
	Picture     []byte `json:"picture"`
	Description string `json:"description,omitempty"`
}

// Link message with an optional comment.
type LinkMessage struct {
	Base
	Link    string `json:"link"`
	Comment string `json:"comment,omitempty"`
}

func (m *TextMessage) Meta() *Base    { return &m.Base }
func (m *PictureMessage) Meta() *Base { return &m.Base }
func (m *LinkMessage) Meta() *Base    { return &m.Base }
