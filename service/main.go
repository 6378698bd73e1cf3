package service

import (
	"context"
	"time"

	"github.com/phnam/docnest-upload-service/config"
	"github.com/phnam/docnest-upload-service/entity"
	"github.com/phnam/docnest-upload-service/infra/produce"
)

// ObjectStorage is the capability set the orchestrator needs from an
// S3-compatible store. infra.S3Client is the production implementation;
// tests substitute an in-memory one.
type ObjectStorage interface {
	Write(ctx context.Context, key string, data []byte, contentType string) error
	Read(ctx context.Context, key string) ([]byte, error)
	ReadText(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error
	DeleteMany(ctx context.Context, keys []string) error
	SignedReadURL(ctx context.Context, key string, ttl time.Duration) (string, error)
	// SignedWriteURL returns "" without error when presigned uploads are
	// administratively disabled.
	SignedWriteURL(ctx context.Context, key string, ttl time.Duration) (string, error)
	PresignedUploadsEnabled() bool
}

// MetadataStore is the relational side of the protocol, implemented by
// repository.Repository. Finders return (nil, nil) for absence; UpdateFile
// returns gorm.ErrRecordNotFound when no row matches.
type MetadataStore interface {
	CreateFileWithDocument(ctx context.Context, file *entity.File, document *entity.Document) error
	FileByID(ctx context.Context, id, clientID string) (*entity.File, error)
	FileByKey(ctx context.Context, key, clientID string) (*entity.File, error)
	FilesByClient(ctx context.Context, clientID string) ([]entity.File, error)
	UpdateFile(ctx context.Context, id string, patch map[string]interface{}) error
	DeleteFile(ctx context.Context, id string) error
}

// IndexPublisher hands newly created documents to the index worker.
type IndexPublisher interface {
	PublishDocumentIndex(ctx context.Context, msg produce.DocumentIndexMessage) error
}

// Cache backs the upload progress tracker.
type Cache interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Get(ctx context.Context, key string, dest interface{}) error
	Delete(ctx context.Context, keys ...string) error
}

// Logger is the slice of infra.LoggerClient the orchestrator uses.
type Logger interface {
	InfoWithContextf(ctx context.Context, format string, args ...interface{})
	WarningWithContextf(ctx context.Context, format string, args ...interface{})
	ErrorWithContextf(ctx context.Context, err error, format string, args ...interface{})
}

// UploadService drives a File (and optional Document) from non-existence to
// a confirmed, URL-bearing, store-backed record across the three phases of
// the upload protocol.
type UploadService struct {
	meta      MetadataStore
	store     ObjectStorage
	cache     Cache
	publisher IndexPublisher
	logger    Logger

	keyPrefix  string
	uploadTTL  time.Duration
	previewTTL time.Duration
}

func NewUploadService(cfg *config.EnvConfig, meta MetadataStore, store ObjectStorage, cache Cache, publisher IndexPublisher, logger Logger) *UploadService {
	if logger == nil {
		logger = noopLogger{}
	}
	return &UploadService{
		meta:       meta,
		store:      store,
		cache:      cache,
		publisher:  publisher,
		logger:     logger,
		keyPrefix:  cfg.S3.Prefix,
		uploadTTL:  time.Duration(cfg.S3.UploadURLExpireIn) * time.Second,
		previewTTL: time.Duration(cfg.S3.PreviewURLExpireIn) * time.Second,
	}
}

type noopLogger struct{}

func (noopLogger) InfoWithContextf(context.Context, string, ...interface{}) {}

func (noopLogger) WarningWithContextf(context.Context, string, ...interface{}) {}

func (noopLogger) ErrorWithContextf(context.Context, error, string, ...interface{}) {}
