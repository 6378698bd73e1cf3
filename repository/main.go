package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/phnam/docnest-upload-service/entity"
	"github.com/phnam/docnest-upload-service/infra"
)

type Repository struct {
	db *gorm.DB

	FileRepo          *FileRepository
	DocumentRepo      *DocumentRepository
	DocumentChunkRepo *DocumentChunkRepository
}

var repository *Repository

func InitRepository(infra *infra.Infra) *Repository {
	repository = NewRepository(infra.Postgres.DB)
	return repository
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db:                db,
		FileRepo:          NewFileRepository(db),
		DocumentRepo:      NewDocumentRepository(db),
		DocumentChunkRepo: NewDocumentChunkRepository(db),
	}
}

func GetRepository() *Repository {
	if repository == nil {
		panic("repository not initialized")
	}
	return repository
}

func (r *Repository) WithTransaction(tx *gorm.DB) *Repository {
	return NewRepository(tx)
}

// CreateFileWithDocument inserts the file and its optional companion document
// as a single transaction. If either insert fails nothing is persisted.
func (r *Repository) CreateFileWithDocument(ctx context.Context, file *entity.File, document *entity.Document) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(file).Error; err != nil {
			return err
		}
		if document != nil {
			document.FileID = file.ID
			if err := tx.Create(document).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// FileByID scopes the lookup to the owning client.
func (r *Repository) FileByID(ctx context.Context, id, clientID string) (*entity.File, error) {
	return r.FileRepo.FindByIDAndClient(ctx, id, clientID)
}

// FileByKey scopes the lookup to the owning client.
func (r *Repository) FileByKey(ctx context.Context, key, clientID string) (*entity.File, error) {
	return r.FileRepo.FindByKeyAndClient(ctx, key, clientID)
}

func (r *Repository) FilesByClient(ctx context.Context, clientID string) ([]entity.File, error) {
	return r.FileRepo.FindByClientID(ctx, clientID)
}

func (r *Repository) UpdateFile(ctx context.Context, id string, patch map[string]interface{}) error {
	return r.FileRepo.Update(ctx, id, patch)
}

func (r *Repository) DeleteFile(ctx context.Context, id string) error {
	return r.FileRepo.Delete(ctx, id)
}
