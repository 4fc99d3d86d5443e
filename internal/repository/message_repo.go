package repository

import (
	"github.com/garden-market/internal/models"
	"gorm.io/gorm"
)

// MessageRepository handles message data access
type MessageRepository struct {
	db *gorm.DB
}

// NewMessageRepository creates a new MessageRepository
func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

// Create appends a message
func (r *MessageRepository) Create(message *models.Message) error {
	return r.db.Create(message).Error
}

// GetThread retrieves the full bidirectional thread between two accounts.
// No explicit ordering is applied; rows come back in store order.
func (r *MessageRepository) GetThread(a, b string) ([]models.Message, error) {
	var messages []models.Message
	result := r.db.
		Where("(author = ? AND recipient = ?) OR (author = ? AND recipient = ?)", a, b, b, a).
		Find(&messages)
	return messages, result.Error
}
