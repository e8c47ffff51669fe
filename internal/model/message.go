package model

import "time"

// Message is an archived conversation turn. The in-memory conversation buffer
// is authoritative for prompt construction; rows here are the durable
// transcript written by the archive worker.
type Message struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"size:64;not null;index" json:"username"`
	Role      string    `gorm:"size:16;not null" json:"role"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `json:"created_at"`
}
