package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/phnam/docnest-upload-service/entity"
)

type DocumentRepository struct {
	db *gorm.DB
}

func NewDocumentRepository(db *gorm.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

func (r *DocumentRepository) Create(ctx context.Context, document *entity.Document) error {
	return r.db.WithContext(ctx).Create(document).Error
}

// FindByID returns (nil, nil) when the document does not exist.
func (r *DocumentRepository) FindByID(ctx context.Context, id string) (*entity.Document, error) {
	var document entity.Document
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&document).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &document, nil
}

// FindByFileID returns (nil, nil) when the file has no companion document.
func (r *DocumentRepository) FindByFileID(ctx context.Context, fileID string) (*entity.Document, error) {
	var document entity.Document
	err := r.db.WithContext(ctx).Where("file_id = ?", fileID).First(&document).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &document, nil
}

// UpdateContentStats stores the indexer's character and line counts.
func (r *DocumentRepository) UpdateContentStats(ctx context.Context, id string, charCount, lineCount int) error {
	result := r.db.WithContext(ctx).Model(&entity.Document{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"total_char_count": charCount,
			"total_line_count": lineCount,
			"updated_at":       time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// UpdateContent replaces the stored content, used when the indexer pulls the
// text out of object storage.
func (r *DocumentRepository) UpdateContent(ctx context.Context, id string, content string) error {
	result := r.db.WithContext(ctx).Model(&entity.Document{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"content":    content,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
