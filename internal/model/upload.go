package model

import "time"

// Upload records a successfully ingested document.
type Upload struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Username       string    `gorm:"size:64;not null;index" json:"username"`
	OriginalName   string    `gorm:"size:256;not null" json:"original_name"`
	StoredFilename string    `gorm:"size:320;not null" json:"stored_filename"`
	ChunkCount     int       `gorm:"not null" json:"chunk_count"`
	CreatedAt      time.Time `json:"created_at"`
}
