package entity

import (
	"time"

	"gorm.io/datatypes"
)

// File is the metadata record backing one object in the store.
// URL stays empty until the orchestrator has confirmed the object
// is reachable; a non-empty URL means the upload lifecycle finished.
type File struct {
	ID        string         `json:"id" gorm:"type:text;primaryKey"`
	ClientID  string         `json:"client_id" gorm:"type:text;not null;index"`
	Key       string         `json:"key" gorm:"type:text;not null;uniqueIndex"`
	Name      string         `json:"name" gorm:"type:text;not null"`
	FileType  string         `json:"file_type" gorm:"type:varchar(255);not null"`
	MimeType  string         `json:"mime_type" gorm:"type:varchar(255)"`
	Size      int64          `json:"size" gorm:"not null"`
	URL       string         `json:"url" gorm:"type:text;not null;default:''"`
	Metadata  datatypes.JSON `json:"metadata,omitempty" gorm:"type:jsonb"`
	CreatedAt time.Time      `json:"created_at" gorm:"not null;autoCreateTime"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	AccessedAt time.Time     `json:"accessed_at"`

	Document *Document `json:"document,omitempty" gorm:"foreignKey:FileID;constraint:OnDelete:CASCADE"`
}
