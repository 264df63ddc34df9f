/*
 * Copyright (c) 2026 Francesco Biribo'
 *
 * Permission to use, copy, modify, and distribute this software for any purpose with or without fee is hereby granted, provided that the above copyright notice and this permission notice appear in all copies.
 *
 * THE SOFTWARE IS PROVIDED "AS IS" AND THE AUTHOR DISCLAIMS ALL WARRANTIES WITH REGARD TO THIS SOFTWARE INCLUDING ALL IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS. IN NO EVENT SHALL THE AUTHOR BE LIABLE FOR ANY SPECIAL, DIRECT, INDIRECT, OR CONSEQUENTIAL DAMAGES OR ANY DAMAGES WHATSOEVER RESULTING FROM LOSS OF USE, DATA OR PROFITS, WHETHER IN AN ACTION OF CONTRACT, NEGLIGENCE OR OTHER TORTIOUS ACTION, ARISING OUT OF OR IN CONNECTION WITH THE USE OR PERFORMANCE OF THIS SOFTWARE.
 */

package entity

// A row of the messages table. The message column holds the serialized wire
// payload verbatim, the server never normalizes it beyond the attachment split.
type MessageRecord struct {
	ID      int64  `gorm:"primaryKey;autoIncrement"`
	Message string `gorm:"type:varchar(2255);not null"`
}

func (MessageRecord) TableName() string { return "messages" }

// A row of the message_attachments table. Binary payloads live here, split
// away from their metadata row and keyed by it (1:1). The metadata row must
// exist before the attachment row is written.
type MessageAttachment struct {
	ID             int64         `gorm:"primaryKey;autoIncrement"`
	MessageID      int64         `gorm:"not null;index"`
	Message        MessageRecord `gorm:"foreignKey:MessageID;references:ID"`
	AttachmentData []byte        `gorm:"not null"`
}

func (MessageAttachment) TableName() string { return "message_attachments" }
