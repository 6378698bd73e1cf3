package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/phnam/docnest-upload-service/entity"
)

type FileRepository struct {
	db *gorm.DB
}

func NewFileRepository(db *gorm.DB) *FileRepository {
	return &FileRepository{db: db}
}

func (r *FileRepository) Create(ctx context.Context, file *entity.File) error {
	return r.db.WithContext(ctx).Create(file).Error
}

// FindByIDAndClient returns (nil, nil) when no record matches; a record owned
// by another client is indistinguishable from an absent one.
func (r *FileRepository) FindByIDAndClient(ctx context.Context, id, clientID string) (*entity.File, error) {
	var file entity.File
	err := r.db.WithContext(ctx).Where("id = ? AND client_id = ?", id, clientID).First(&file).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &file, nil
}

// FindByKeyAndClient returns (nil, nil) when no record matches.
func (r *FileRepository) FindByKeyAndClient(ctx context.Context, key, clientID string) (*entity.File, error) {
	var file entity.File
	err := r.db.WithContext(ctx).Where("key = ? AND client_id = ?", key, clientID).First(&file).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &file, nil
}

func (r *FileRepository) FindByClientID(ctx context.Context, clientID string) ([]entity.File, error) {
	var files []entity.File
	err := r.db.WithContext(ctx).Where("client_id = ?", clientID).
		Order("created_at DESC").Find(&files).Error
	return files, err
}

// Update applies patch to the record with the given id. Updating a missing
// record is an error, never a silent success.
func (r *FileRepository) Update(ctx context.Context, id string, patch map[string]interface{}) error {
	result := r.db.WithContext(ctx).Model(&entity.File{}).Where("id = ?", id).Updates(patch)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *FileRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&entity.File{}, "id = ?", id).Error
}
