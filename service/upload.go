package service

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/phnam/docnest-upload-service/entity"
	"github.com/phnam/docnest-upload-service/infra/produce"
	"github.com/phnam/docnest-upload-service/utils"
)

type InitUploadInput struct {
	OriginalName       string
	MimeType           string
	Size               int64
	Title              string
	Content            string
	AddToKnowledgeBase bool
	Metadata           map[string]interface{}
}

type InitUploadResult struct {
	ID        string  `json:"id"`
	Key       string  `json:"key"`
	UploadURL *string `json:"upload_url"`
}

type DirectUploadInput struct {
	ID           string
	Key          string
	OriginalName string
	MimeType     string
	Size         *int64
	// Content is the base64-encoded file body.
	Content string
}

type CompleteUploadInput struct {
	ID  string
	Key string
}

type UploadResult struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// FileView is a File plus a fresh signed download URL.
type FileView struct {
	entity.File
	DownloadURL string `json:"download_url"`
}

// InitUpload is phase 1 of the protocol: create the metadata record (and the
// optional companion document) atomically, then hand back a presigned PUT URL
// when direct-to-store uploads are enabled. The record's URL stays empty until
// a later phase confirms the object.
func (s *UploadService) InitUpload(ctx context.Context, clientID string, input InitUploadInput) (*InitUploadResult, error) {
	if clientID == "" {
		return nil, ErrUnauthorized
	}

	name := strings.TrimSpace(input.OriginalName)
	if name == "" {
		return nil, newValidationError("original_name", "is required")
	}
	if input.Size < 0 {
		return nil, newValidationError("size", "must not be negative")
	}

	mimeType := input.MimeType
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	key := utils.BuildObjectKey(s.keyPrefix, clientID, name)
	now := time.Now()

	file := &entity.File{
		ID:         utils.NewID("file"),
		ClientID:   clientID,
		Key:        key,
		Name:       name,
		FileType:   mimeType,
		MimeType:   input.MimeType,
		Size:       input.Size,
		URL:        "",
		AccessedAt: now,
	}

	if len(input.Metadata) > 0 {
		raw, err := json.Marshal(input.Metadata)
		if err != nil {
			return nil, newValidationError("metadata", "must be JSON-serializable")
		}
		file.Metadata = raw
	}

	var document *entity.Document
	content := strings.TrimSpace(input.Content)
	if input.AddToKnowledgeBase || content != "" {
		sourceType := entity.DocumentSourceUpload
		if input.AddToKnowledgeBase {
			sourceType = entity.DocumentSourceKnowledgeBase
		}
		title := strings.TrimSpace(input.Title)
		if title == "" {
			title = name
		}
		document = &entity.Document{
			ID:         utils.NewID("doc"),
			Title:      title,
			Content:    input.Content,
			FileType:   mimeType,
			Filename:   name,
			SourceType: sourceType,
			Source:     key,
			ClientID:   clientID,
		}
	}

	if err := s.meta.CreateFileWithDocument(ctx, file, document); err != nil {
		s.logger.ErrorWithContextf(ctx, err, "[Upload] Init failed to create file record for client %s", clientID)
		return nil, fmt.Errorf("create file record: %w", ErrInternal)
	}

	if document != nil && s.publisher != nil {
		msg := produce.DocumentIndexMessage{
			DocumentID: document.ID,
			FileID:     file.ID,
			ClientID:   clientID,
		}
		if err := s.publisher.PublishDocumentIndex(ctx, msg); err != nil {
			// Indexing is best effort; the upload lifecycle does not depend on it.
			s.logger.WarningWithContextf(ctx, "[Upload] Failed to publish index job for document %s: %v", document.ID, err)
		}
	}

	var uploadURL *string
	if s.store.PresignedUploadsEnabled() {
		signed, err := s.store.SignedWriteURL(ctx, key, s.uploadTTL)
		if err != nil {
			s.logger.ErrorWithContextf(ctx, err, "[Upload] Failed to presign upload for key %s", key)
			return nil, fmt.Errorf("presign upload: %w", ErrStoreUnavailable)
		}
		if signed != "" {
			uploadURL = &signed
		}
	}

	s.startProgress(ctx, file.ID, name)
	s.logger.InfoWithContextf(ctx, "[Upload] Initialized upload %s (key %s) for client %s", file.ID, key, clientID)

	return &InitUploadResult{ID: file.ID, Key: key, UploadURL: uploadURL}, nil
}

// DirectUpload is phase 2b: the server-relayed transport used when presigned
// uploads are disabled or as a fallback. It tolerates a caller that never ran
// InitUpload by creating the record inline, then writes the bytes and flips
// the record to its confirmed state in one update.
func (s *UploadService) DirectUpload(ctx context.Context, clientID string, input DirectUploadInput) (*UploadResult, error) {
	if clientID == "" {
		return nil, ErrUnauthorized
	}
	if input.Content == "" {
		return nil, newValidationError("content", "is required")
	}
	if input.ID == "" && input.Key == "" {
		return nil, newValidationError("id", "or key is required")
	}

	data, err := base64.StdEncoding.DecodeString(input.Content)
	if err != nil {
		return nil, newValidationError("content", "must be base64 encoded")
	}

	file, err := s.resolveFile(ctx, clientID, input.ID, input.Key)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(input.OriginalName)

	if file == nil {
		file, err = s.createInlineRecord(ctx, clientID, input, name)
		if err != nil {
			return nil, err
		}
	}

	contentType := input.MimeType
	if contentType == "" {
		contentType = file.FileType
	}

	if err := s.store.Write(ctx, file.Key, data, contentType); err != nil {
		s.failProgress(ctx, file.ID)
		s.logger.ErrorWithContextf(ctx, err, "[Upload] Direct write failed for key %s", file.Key)
		return nil, fmt.Errorf("write object %s: %w", file.Key, ErrStoreUnavailable)
	}

	url, err := s.store.SignedReadURL(ctx, file.Key, s.previewTTL)
	if err != nil {
		s.failProgress(ctx, file.ID)
		s.logger.ErrorWithContextf(ctx, err, "[Upload] Failed to presign read for key %s", file.Key)
		return nil, fmt.Errorf("presign read %s: %w", file.Key, ErrStoreUnavailable)
	}

	now := time.Now()
	patch := map[string]interface{}{
		"url":         url,
		"updated_at":  now,
		"accessed_at": now,
	}
	if input.MimeType != "" {
		patch["file_type"] = input.MimeType
		patch["mime_type"] = input.MimeType
	}
	if name != "" {
		patch["name"] = name
	}
	if input.Size != nil {
		patch["size"] = *input.Size
	} else {
		patch["size"] = int64(len(data))
	}

	if err := s.meta.UpdateFile(ctx, file.ID, patch); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("update file %s: %w", file.ID, ErrNotFound)
		}
		s.logger.ErrorWithContextf(ctx, err, "[Upload] Failed to update file record %s", file.ID)
		return nil, fmt.Errorf("update file %s: %w", file.ID, ErrInternal)
	}

	s.setProgressDone(ctx, file.ID)
	s.logger.InfoWithContextf(ctx, "[Upload] Direct upload stored %d bytes at %s for client %s", len(data), file.Key, clientID)

	return &UploadResult{ID: file.ID, URL: url}, nil
}

// CompleteUpload is phase 3: after a presigned PUT the caller confirms the
// transfer and the record receives its signed read URL. The store is trusted
// here; the object is not probed for existence, so Complete never blocks on
// the transfer having finished. Repeat calls are idempotent and only refresh
// the URL and timestamps.
func (s *UploadService) CompleteUpload(ctx context.Context, clientID string, input CompleteUploadInput) (*UploadResult, error) {
	if clientID == "" {
		return nil, ErrUnauthorized
	}
	if input.ID == "" && input.Key == "" {
		return nil, newValidationError("id", "or key is required")
	}

	var file *entity.File
	var err error

	if input.Key != "" {
		file, err = s.meta.FileByKey(ctx, input.Key, clientID)
		if err != nil {
			return nil, fmt.Errorf("resolve file by key: %w", ErrInternal)
		}
	}
	if file == nil && input.ID != "" {
		file, err = s.meta.FileByID(ctx, input.ID, clientID)
		if err != nil {
			return nil, fmt.Errorf("resolve file by id: %w", ErrInternal)
		}
	}
	if file == nil {
		return nil, ErrNotFound
	}

	url, err := s.store.SignedReadURL(ctx, file.Key, s.previewTTL)
	if err != nil {
		s.logger.ErrorWithContextf(ctx, err, "[Upload] Failed to presign read for key %s", file.Key)
		return nil, fmt.Errorf("presign read %s: %w", file.Key, ErrStoreUnavailable)
	}

	now := time.Now()
	patch := map[string]interface{}{
		"url":         url,
		"updated_at":  now,
		"accessed_at": now,
	}
	if err := s.meta.UpdateFile(ctx, file.ID, patch); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("update file %s: %w", file.ID, ErrNotFound)
		}
		s.logger.ErrorWithContextf(ctx, err, "[Upload] Failed to update file record %s", file.ID)
		return nil, fmt.Errorf("update file %s: %w", file.ID, ErrInternal)
	}

	s.setProgressDone(ctx, file.ID)
	s.logger.InfoWithContextf(ctx, "[Upload] Completed upload %s (key %s) for client %s", file.ID, file.Key, clientID)

	return &UploadResult{ID: file.ID, URL: url}, nil
}

// ListFiles returns the caller's files newest-first, each with a fresh signed
// download URL. A presign failure on one file degrades that entry instead of
// failing the whole listing.
func (s *UploadService) ListFiles(ctx context.Context, clientID string) ([]FileView, error) {
	if clientID == "" {
		return nil, ErrUnauthorized
	}

	files, err := s.meta.FilesByClient(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("list files: %w", ErrInternal)
	}

	views := make([]FileView, 0, len(files))
	for _, file := range files {
		view := FileView{File: file}
		if file.URL != "" {
			url, err := s.store.SignedReadURL(ctx, file.Key, s.previewTTL)
			if err != nil {
				s.logger.WarningWithContextf(ctx, "[Upload] Failed to presign download for key %s: %v", file.Key, err)
			} else {
				view.DownloadURL = url
			}
		}
		views = append(views, view)
	}

	return views, nil
}

// DeleteFile removes the metadata record first (the relational row is the
// source of truth), then deletes the object best effort. The companion
// document and its chunks cascade with the row.
func (s *UploadService) DeleteFile(ctx context.Context, clientID, id string) error {
	if clientID == "" {
		return ErrUnauthorized
	}
	if id == "" {
		return newValidationError("id", "is required")
	}

	file, err := s.meta.FileByID(ctx, id, clientID)
	if err != nil {
		return fmt.Errorf("resolve file by id: %w", ErrInternal)
	}
	if file == nil {
		return ErrNotFound
	}

	if err := s.meta.DeleteFile(ctx, file.ID); err != nil {
		s.logger.ErrorWithContextf(ctx, err, "[Upload] Failed to delete file record %s", file.ID)
		return fmt.Errorf("delete file %s: %w", file.ID, ErrInternal)
	}

	if err := s.store.Delete(ctx, file.Key); err != nil {
		s.logger.WarningWithContextf(ctx, "[Upload] Object %s left behind after record deletion: %v", file.Key, err)
	}

	s.logger.InfoWithContextf(ctx, "[Upload] Deleted file %s (key %s) for client %s", file.ID, file.Key, clientID)
	return nil
}

// resolveFile looks the record up by id first, then by key, always scoped to
// the owning client. Ownership mismatch reads the same as absence.
func (s *UploadService) resolveFile(ctx context.Context, clientID, id, key string) (*entity.File, error) {
	var file *entity.File
	var err error

	if id != "" {
		file, err = s.meta.FileByID(ctx, id, clientID)
		if err != nil {
			return nil, fmt.Errorf("resolve file by id: %w", ErrInternal)
		}
	}
	if file == nil && key != "" {
		file, err = s.meta.FileByKey(ctx, key, clientID)
		if err != nil {
			return nil, fmt.Errorf("resolve file by key: %w", ErrInternal)
		}
	}

	return file, nil
}

// createInlineRecord backs the degenerate direct-upload path where the caller
// never ran InitUpload. The supplied id/key are honored so a client that
// generated them locally stays consistent.
func (s *UploadService) createInlineRecord(ctx context.Context, clientID string, input DirectUploadInput, name string) (*entity.File, error) {
	key := input.Key
	if key == "" {
		key = utils.BuildObjectKey(s.keyPrefix, clientID, name)
	}

	id := input.ID
	if id == "" {
		id = utils.NewID("file")
	}

	mimeType := input.MimeType
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	recordName := name
	if recordName == "" {
		recordName = utils.SanitizeFileName("")
	}

	var size int64
	if input.Size != nil {
		size = *input.Size
	}

	file := &entity.File{
		ID:         id,
		ClientID:   clientID,
		Key:        key,
		Name:       recordName,
		FileType:   mimeType,
		MimeType:   input.MimeType,
		Size:       size,
		URL:        "",
		AccessedAt: time.Now(),
	}

	if err := s.meta.CreateFileWithDocument(ctx, file, nil); err != nil {
		// A duplicate id or key means the record exists under another client;
		// presence must not be disclosed, so this reads as absence.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("create file record: %w", ErrNotFound)
		}
		s.logger.ErrorWithContextf(ctx, err, "[Upload] Inline record creation failed for client %s", clientID)
		return nil, fmt.Errorf("create file record: %w", ErrInternal)
	}

	return file, nil
}
