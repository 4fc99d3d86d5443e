package models

import "time"

// Message is a single message between two accounts. Messages are append-only;
// there is no edit or delete. Parent links replies into a thread.
type Message struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Body      string    `gorm:"size:2000;not null" json:"body"`
	Author    string    `gorm:"size:100;not null;index" json:"author"`
	Recipient string    `gorm:"size:100;not null;index" json:"recipient"`
	Parent    *uint     `json:"parent,omitempty"`
	SentAt    time.Time `gorm:"column:time" json:"time"`
}

// TableName specifies the table name for Message model
func (Message) TableName() string {
	return "message"
}
