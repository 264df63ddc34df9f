/*
 * Copyright (c) 2026 Francesco Biribo'
 *
 * Permission to use, copy, modify, and distribute this software for any purpose with or without fee is hereby granted, provided that the above copyright notice and this permission notice appear in all copies.
 *
 * THE SOFTWARE IS PROVIDED "AS IS" AND THE AUTHOR DISCLAIMS ALL WARRANTIES WITH REGARD TO THIS SOFTWARE INCLUDING ALL IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS. IN NO EVENT SHALL THE AUTHOR BE LIABLE FOR ANY SPECIAL, DIRECT, INDIRECT, OR CONSEQUENTIAL DAMAGES OR ANY DAMAGES WHATSOEVER RESULTING FROM LOSS OF USE, DATA OR PROFITS, WHETHER IN AN ACTION OF CONTRACT, NEGLIGENCE OR OTHER TORTIOUS ACTION, ARISING OUT OF OR IN CONNECTION WITH THE USE OR PERFORMANCE OF THIS SOFTWARE.
 */

package repository

import (
	"errors"
	"fmt"

	"chatserver/internal/entity"

	"gorm.io/gorm"
)

var (
	// No row matched the given id. Logged as a warning by callers, not escalated.
	ErrNotFound = errors.New("message not found")
	// FetchLast on a store with no rows. Fatal for the single call only, the
	// read-after-write pattern assumes at least one row exists post-insert.
	ErrEmptyStore = errors.New("message store is empty")
)

// Joined queries over messages and their optional attachments. The window
// query picks the newest rows first and flips them back into ascending order.
const (
	lastRowSQL = `SELECT messages.id, messages.message, message_attachments.attachment_data FROM messages LEFT JOIN message_attachments ON messages.id = message_attachments.message_id ORDER BY messages.id DESC LIMIT 1`

	recentWindowSQL = `SELECT * FROM (SELECT messages.id, messages.message, message_attachments.attachment_data FROM messages LEFT JOIN message_attachments ON messages.id = message_attachments.message_id ORDER BY messages.id DESC LIMIT ?) AS tmp ORDER BY tmp.id ASC`
)

// This repository is the durable store contract of the relay. Ids are assigned
// by the database, never by the caller; Replace touches at most one row.
type MessageRepository interface {
	Insert(metadata string) (int64, error)                          // Inserts a new metadata row, returns the generated id
	Replace(id int64, metadata string) (int64, error)               // Updates the row matching id, returns the number of rows affected
	FetchOne(id int64) (string, error)                              // Point lookup of a metadata row
	FetchLast() (*entity.DatabaseResult, error)                     // Most recently inserted row, joined with its optional attachment
	FetchRecentWindow(limit int) ([]*entity.DatabaseResult, error)  // Newest limit rows, ascending by id
	StoreAttachment(messageID int64, attachmentData []byte) error   // Inserts the dependent attachment row for an existing metadata row
}

// Implementation of the repository on a gorm handle. Postgres in production,
// the SQLite driver in tests.
type GormMessageRepository struct {
	db *gorm.DB
}

func NewGormMessageRepository(db *gorm.DB) MessageRepository {
	return &GormMessageRepository{db}
}

func (repo *GormMessageRepository) Insert(metadata string) (int64, error) {

	record := entity.MessageRecord{Message: metadata}
	if err := repo.db.Create(&record).Error; err != nil {
		return 0, fmt.Errorf("inserting message: %w", err)
	}
	return record.ID, nil
}

func (repo *GormMessageRepository) Replace(id int64, metadata string) (int64, error) {

	result := repo.db.Model(&entity.MessageRecord{}).Where("id = ?", id).Update("message", metadata)
	if result.Error != nil {
		return 0, fmt.Errorf("replacing message{%d}: %w", id, result.Error)
	}
	return result.RowsAffected, nil
}

func (repo *GormMessageRepository) FetchOne(id int64) (string, error) {

	var record entity.MessageRecord
	err := repo.db.First(&record, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("fetching message{%d}: %w", id, err)
	}
	return record.Message, nil
}

func (repo *GormMessageRepository) FetchLast() (*entity.DatabaseResult, error) {

	var row entity.DatabaseResult
	result := repo.db.Raw(lastRowSQL).Scan(&row)
	if result.Error != nil {
		return nil, fmt.Errorf("fetching last message: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, ErrEmptyStore
	}
	return &row, nil
}

func (repo *GormMessageRepository) FetchRecentWindow(limit int) ([]*entity.DatabaseResult, error) {

	var rows []*entity.DatabaseResult
	if err := repo.db.Raw(recentWindowSQL, limit).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("fetching recent window: %w", err)
	}
	return rows, nil
}

func (repo *GormMessageRepository) StoreAttachment(messageID int64, attachmentData []byte) error {

	attachment := entity.MessageAttachment{MessageID: messageID, AttachmentData: attachmentData}
	if err := repo.db.Omit("Message").Create(&attachment).Error; err != nil {
		return fmt.Errorf("storing attachment for message{%d}: %w", messageID, err)
	}
	return nil
}
