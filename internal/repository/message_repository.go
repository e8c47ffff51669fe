package repository

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/muralianand12345/AI-API/internal/model"
)

type MessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

func (r *MessageRepository) Create(msg *model.Message) error {
	if err := r.db.Create(msg).Error; err != nil {
		return fmt.Errorf("create message failed: %w", err)
	}
	return nil
}

// ListByUsername returns the most recent archived messages in chronological
// order, at most limit of them.
func (r *MessageRepository) ListByUsername(username string, limit int) ([]model.Message, error) {
	if limit <= 0 {
		limit = 100
	}
	var messages []model.Message
	err := r.db.
		Where("username = ?", username).
		Order("id DESC").
		Limit(limit).
		Find(&messages).Error
	if err != nil {
		return nil, fmt.Errorf("list messages by username failed: %w", err)
	}
	// reverse into oldest-first order
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

func (r *MessageRepository) DeleteByUsername(username string) error {
	if err := r.db.Where("username = ?", username).Delete(&model.Message{}).Error; err != nil {
		return fmt.Errorf("delete messages by username failed: %w", err)
	}
	return nil
}
