package entity

import "time"

// DocumentSourceType classifies where a document came from
type DocumentSourceType string

const (
	DocumentSourceUpload        DocumentSourceType = "upload"
	DocumentSourceKnowledgeBase DocumentSourceType = "knowledge-base"
)

// Document is the optional textual companion of a File. It is created
// together with the File inside the init transaction and never touched
// by the upload protocol afterwards; the index worker fills the counts.
type Document struct {
	ID             string             `json:"id" gorm:"type:text;primaryKey"`
	Title          string             `json:"title" gorm:"type:text;not null"`
	Content        string             `json:"content" gorm:"type:text;not null"`
	FileType       string             `json:"file_type" gorm:"type:varchar(255)"`
	Filename       string             `json:"filename" gorm:"type:text"`
	TotalCharCount int                `json:"total_char_count"`
	TotalLineCount int                `json:"total_line_count"`
	SourceType     DocumentSourceType `json:"source_type" gorm:"type:varchar(32);not null"`
	Source         string             `json:"source" gorm:"type:text"`
	FileID         string             `json:"file_id" gorm:"type:text;not null;index"`
	ClientID       string             `json:"client_id" gorm:"type:text;not null;index"`
	CreatedAt      time.Time          `json:"created_at" gorm:"not null;autoCreateTime"`
	UpdatedAt      time.Time          `json:"updated_at" gorm:"autoUpdateTime"`

	Chunks []DocumentChunk `json:"chunks,omitempty" gorm:"foreignKey:DocumentID;constraint:OnDelete:CASCADE"`
}
