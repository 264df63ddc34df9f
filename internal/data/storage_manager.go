/*
 * Copyright (c) 2026 Francesco Biribo'
 *
 * Permission to use, copy, modify, and distribute this software for any purpose with or without fee is hereby granted, provided that the above copyright notice and this permission notice appear in all copies.
 *
 * THE SOFTWARE IS PROVIDED "AS IS" AND THE AUTHOR DISCLAIMS ALL WARRANTIES WITH REGARD TO THIS SOFTWARE INCLUDING ALL IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS. IN NO EVENT SHALL THE AUTHOR BE LIABLE FOR ANY SPECIAL, DIRECT, INDIRECT, OR CONSEQUENTIAL DAMAGES OR ANY DAMAGES WHATSOEVER RESULTING FROM LOSS OF USE, DATA OR PROFITS, WHETHER IN AN ACTION OF CONTRACT, NEGLIGENCE OR OTHER TORTIOUS ACTION, ARISING OUT OF OR IN CONNECTION WITH THE USE OR PERFORMANCE OF THIS SOFTWARE.
 */

package data

import (
	"chatserver/internal/entity"
	"chatserver/internal/repository"

	"gorm.io/gorm"
)

// Storage manager gathers the durable pieces of the relay in a single
// container: the gorm handle, the message repository on top of it and the
// guard that serializes access to both.
type StorageManager struct {
	db *gorm.DB

	guard       *StoreGuard
	messageRepo repository.MessageRepository
}

func NewStorageManager(db *gorm.DB) *StorageManager {
	return &StorageManager{
		db:          db,
		guard:       NewStoreGuard(),
		messageRepo: repository.NewGormMessageRepository(db),
	}
}

// Migrate creates the messages and message_attachments tables if they are
// missing. Idempotent, performed once at startup.
func (s *StorageManager) Migrate() error {
	return s.db.AutoMigrate(
		&entity.MessageRecord{},
		&entity.MessageAttachment{},
	)
}

func (s *StorageManager) Guard() *StoreGuard {
	return s.guard
}

func (s *StorageManager) GetMessageRepository() repository.MessageRepository {
	return s.messageRepo
}
