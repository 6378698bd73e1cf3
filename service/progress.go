package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/phnam/docnest-upload-service/infra"
)

const (
	ProgressStatusUploading = "uploading"
	ProgressStatusDone      = "done"
	ProgressStatusError     = "error"

	progressKeyPrefix = "upload:progress:"
	progressTTL       = 24 * time.Hour
)

// UploadProgress is the cached state of one in-flight upload.
type UploadProgress struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Percent int    `json:"percent"`
	Status  string `json:"status"`
}

// Progress reports the cached state of an upload. Ownership is verified
// against the metadata record before the cache is consulted; an expired or
// never-written entry for a known file reads as done.
func (s *UploadService) Progress(ctx context.Context, clientID, fileID string) (*UploadProgress, error) {
	if clientID == "" {
		return nil, ErrUnauthorized
	}
	if fileID == "" {
		return nil, newValidationError("id", "is required")
	}

	file, err := s.meta.FileByID(ctx, fileID, clientID)
	if err != nil {
		return nil, fmt.Errorf("resolve file by id: %w", ErrInternal)
	}
	if file == nil {
		return nil, ErrNotFound
	}

	if s.cache == nil {
		return &UploadProgress{ID: file.ID, Name: file.Name, Percent: 100, Status: ProgressStatusDone}, nil
	}

	var progress UploadProgress
	if err := s.cache.Get(ctx, progressKey(fileID), &progress); err != nil {
		if errors.Is(err, infra.ErrCacheMiss) {
			return &UploadProgress{ID: file.ID, Name: file.Name, Percent: 100, Status: ProgressStatusDone}, nil
		}
		s.logger.WarningWithContextf(ctx, "[Upload] Failed to read progress for file %s: %v", fileID, err)
		return nil, fmt.Errorf("read progress: %w", ErrInternal)
	}

	return &progress, nil
}

func (s *UploadService) startProgress(ctx context.Context, fileID, name string) {
	s.writeProgress(ctx, UploadProgress{ID: fileID, Name: name, Percent: 0, Status: ProgressStatusUploading})
}

func (s *UploadService) setProgressDone(ctx context.Context, fileID string) {
	s.writeProgress(ctx, UploadProgress{ID: fileID, Percent: 100, Status: ProgressStatusDone})
}

func (s *UploadService) failProgress(ctx context.Context, fileID string) {
	s.writeProgress(ctx, UploadProgress{ID: fileID, Status: ProgressStatusError})
}

// writeProgress is best effort; a cache outage never fails an upload.
func (s *UploadService) writeProgress(ctx context.Context, progress UploadProgress) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, progressKey(progress.ID), progress, progressTTL); err != nil {
		s.logger.WarningWithContextf(ctx, "[Upload] Failed to record progress for file %s: %v", progress.ID, err)
	}
}

func progressKey(fileID string) string {
	return progressKeyPrefix + fileID
}
