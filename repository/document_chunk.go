package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/phnam/docnest-upload-service/entity"
)

type DocumentChunkRepository struct {
	db *gorm.DB
}

func NewDocumentChunkRepository(db *gorm.DB) *DocumentChunkRepository {
	return &DocumentChunkRepository{db: db}
}

// Replace swaps out all chunks of a document in one transaction so the
// indexer can safely re-run on the same document.
func (r *DocumentChunkRepository) Replace(ctx context.Context, documentID string, chunks []entity.DocumentChunk) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&entity.DocumentChunk{}, "document_id = ?", documentID).Error; err != nil {
			return err
		}
		if len(chunks) == 0 {
			return nil
		}
		return tx.Create(&chunks).Error
	})
}

func (r *DocumentChunkRepository) FindByDocumentID(ctx context.Context, documentID string) ([]entity.DocumentChunk, error) {
	var chunks []entity.DocumentChunk
	err := r.db.WithContext(ctx).Where("document_id = ?", documentID).
		Order("chunk_index ASC").Find(&chunks).Error
	return chunks, err
}

func (r *DocumentChunkRepository) CountByDocumentID(ctx context.Context, documentID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.DocumentChunk{}).
		Where("document_id = ?", documentID).Count(&count).Error
	return count, err
}
