package entity

import "time"

// DocumentChunk is one fixed-size slice of a document's content,
// produced by the index worker.
type DocumentChunk struct {
	ID         string    `json:"id" gorm:"type:text;primaryKey"`
	DocumentID string    `json:"document_id" gorm:"type:text;not null;index"`
	ChunkIndex int       `json:"chunk_index" gorm:"not null"`
	Text       string    `json:"text" gorm:"type:text;not null"`
	CreatedAt  time.Time `json:"created_at" gorm:"not null;autoCreateTime"`
}
