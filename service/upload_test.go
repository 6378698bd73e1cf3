package service

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/phnam/docnest-upload-service/config"
	"github.com/phnam/docnest-upload-service/entity"
	"github.com/phnam/docnest-upload-service/infra"
	"github.com/phnam/docnest-upload-service/infra/produce"
)

type fakeStore struct {
	mu           sync.Mutex
	objects      map[string][]byte
	contentTypes map[string]string

	presignedEnabled bool
	failWrite        bool
	failSignRead     bool
	failSignWrite    bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		objects:          make(map[string][]byte),
		contentTypes:     make(map[string]string),
		presignedEnabled: true,
	}
}

func (f *fakeStore) Write(_ context.Context, key string, data []byte, contentType string) error {
	if f.failWrite {
		return errors.New("store down")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[key] = data
	f.contentTypes[key] = contentType
	return nil
}

func (f *fakeStore) Read(_ context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[key]
	if !ok {
		return nil, infra.ErrObjectNotFound
	}
	return data, nil
}

func (f *fakeStore) ReadText(ctx context.Context, key string) (string, error) {
	data, err := f.Read(ctx, key)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (f *fakeStore) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, key)
	return nil
}

func (f *fakeStore) DeleteMany(ctx context.Context, keys []string) error {
	for _, key := range keys {
		if err := f.Delete(ctx, key); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeStore) SignedReadURL(_ context.Context, key string, _ time.Duration) (string, error) {
	if f.failSignRead {
		return "", errors.New("store down")
	}
	return "https://store.test/read/" + key, nil
}

func (f *fakeStore) SignedWriteURL(_ context.Context, key string, _ time.Duration) (string, error) {
	if f.failSignWrite {
		return "", errors.New("store down")
	}
	if !f.presignedEnabled {
		return "", nil
	}
	return "https://store.test/write/" + key, nil
}

func (f *fakeStore) PresignedUploadsEnabled() bool {
	return f.presignedEnabled
}

type fakeMeta struct {
	mu         sync.Mutex
	files      map[string]*entity.File
	documents  map[string]*entity.Document
	failCreate bool
	failFind   bool
}

func newFakeMeta() *fakeMeta {
	return &fakeMeta{
		files:     make(map[string]*entity.File),
		documents: make(map[string]*entity.Document),
	}
}

func (f *fakeMeta) CreateFileWithDocument(_ context.Context, file *entity.File, document *entity.Document) error {
	if f.failCreate {
		return errors.New("db down")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.files[file.ID]; exists {
		return gorm.ErrDuplicatedKey
	}
	for _, existing := range f.files {
		if existing.Key == file.Key {
			return gorm.ErrDuplicatedKey
		}
	}
	copied := *file
	f.files[file.ID] = &copied
	if document != nil {
		document.FileID = file.ID
		copiedDoc := *document
		f.documents[document.ID] = &copiedDoc
	}
	return nil
}

func (f *fakeMeta) FileByID(_ context.Context, id, clientID string) (*entity.File, error) {
	if f.failFind {
		return nil, errors.New("db down")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	file, ok := f.files[id]
	if !ok || file.ClientID != clientID {
		return nil, nil
	}
	copied := *file
	return &copied, nil
}

func (f *fakeMeta) FileByKey(_ context.Context, key, clientID string) (*entity.File, error) {
	if f.failFind {
		return nil, errors.New("db down")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, file := range f.files {
		if file.Key == key && file.ClientID == clientID {
			copied := *file
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeMeta) FilesByClient(_ context.Context, clientID string) ([]entity.File, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []entity.File
	for _, file := range f.files {
		if file.ClientID == clientID {
			out = append(out, *file)
		}
	}
	return out, nil
}

func (f *fakeMeta) UpdateFile(_ context.Context, id string, patch map[string]interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	file, ok := f.files[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if v, ok := patch["url"]; ok {
		file.URL = v.(string)
	}
	if v, ok := patch["name"]; ok {
		file.Name = v.(string)
	}
	if v, ok := patch["file_type"]; ok {
		file.FileType = v.(string)
	}
	if v, ok := patch["mime_type"]; ok {
		file.MimeType = v.(string)
	}
	if v, ok := patch["size"]; ok {
		file.Size = v.(int64)
	}
	if v, ok := patch["updated_at"]; ok {
		file.UpdatedAt = v.(time.Time)
	}
	if v, ok := patch["accessed_at"]; ok {
		file.AccessedAt = v.(time.Time)
	}
	return nil
}

func (f *fakeMeta) DeleteFile(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.files, id)
	for docID, doc := range f.documents {
		if doc.FileID == id {
			delete(f.documents, docID)
		}
	}
	return nil
}

type fakeCache struct {
	mu      sync.Mutex
	entries map[string][]byte
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string][]byte)}
}

func (f *fakeCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries[key] = raw
	return nil
}

func (f *fakeCache) Get(_ context.Context, key string, dest interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	raw, ok := f.entries[key]
	if !ok {
		return infra.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (f *fakeCache) Delete(_ context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, key := range keys {
		delete(f.entries, key)
	}
	return nil
}

type fakePublisher struct {
	mu       sync.Mutex
	messages []produce.DocumentIndexMessage
	fail     bool
}

func (f *fakePublisher) PublishDocumentIndex(_ context.Context, msg produce.DocumentIndexMessage) error {
	if f.fail {
		return errors.New("broker down")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, msg)
	return nil
}

func testConfig() *config.EnvConfig {
	cfg := &config.EnvConfig{}
	cfg.S3.Prefix = "uploads/"
	cfg.S3.UploadURLExpireIn = 900
	cfg.S3.PreviewURLExpireIn = 7200
	return cfg
}

type testEnv struct {
	service   *UploadService
	meta      *fakeMeta
	store     *fakeStore
	cache     *fakeCache
	publisher *fakePublisher
}

func newTestEnv() *testEnv {
	meta := newFakeMeta()
	store := newFakeStore()
	cache := newFakeCache()
	publisher := &fakePublisher{}
	return &testEnv{
		service:   NewUploadService(testConfig(), meta, store, cache, publisher, nil),
		meta:      meta,
		store:     store,
		cache:     cache,
		publisher: publisher,
	}
}

func TestInitUploadCreatesRecordWithPresignedURL(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	result, err := env.service.InitUpload(ctx, "client-1", InitUploadInput{
		OriginalName: "report.pdf",
		MimeType:     "application/pdf",
		Size:         2048,
	})
	if err != nil {
		t.Fatalf("InitUpload: %v", err)
	}

	if !strings.HasPrefix(result.ID, "file_") {
		t.Errorf("unexpected id %q", result.ID)
	}
	if !strings.HasPrefix(result.Key, "uploads/client-1/") {
		t.Errorf("key %q does not embed prefix and client", result.Key)
	}
	if !strings.HasSuffix(result.Key, "-report.pdf") {
		t.Errorf("key %q does not end with sanitized name", result.Key)
	}
	if result.UploadURL == nil {
		t.Fatal("expected a presigned upload url")
	}

	file, _ := env.meta.FileByID(ctx, result.ID, "client-1")
	if file == nil {
		t.Fatal("file record not created")
	}
	if file.URL != "" {
		t.Errorf("url should stay empty until confirmation, got %q", file.URL)
	}
	if file.Size != 2048 {
		t.Errorf("size = %d, want 2048", file.Size)
	}
	if len(env.meta.documents) != 0 {
		t.Errorf("no document expected, got %d", len(env.meta.documents))
	}
	if len(env.publisher.messages) != 0 {
		t.Errorf("no index job expected, got %d", len(env.publisher.messages))
	}
}

func TestInitUploadKeysAreUnique(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		result, err := env.service.InitUpload(ctx, "client-1", InitUploadInput{OriginalName: "same-name.txt"})
		if err != nil {
			t.Fatalf("InitUpload #%d: %v", i, err)
		}
		if seen[result.Key] {
			t.Fatalf("duplicate key %q", result.Key)
		}
		seen[result.Key] = true
	}
}

func TestInitUploadPresignedDisabled(t *testing.T) {
	env := newTestEnv()
	env.store.presignedEnabled = false

	result, err := env.service.InitUpload(context.Background(), "client-1", InitUploadInput{OriginalName: "notes.txt"})
	if err != nil {
		t.Fatalf("InitUpload: %v", err)
	}
	if result.UploadURL != nil {
		t.Errorf("upload url should be absent when presigned uploads are disabled, got %q", *result.UploadURL)
	}
}

func TestInitUploadValidation(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	if _, err := env.service.InitUpload(ctx, "", InitUploadInput{OriginalName: "a.txt"}); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("empty client: got %v, want ErrUnauthorized", err)
	}
	if _, err := env.service.InitUpload(ctx, "client-1", InitUploadInput{OriginalName: "   "}); !IsValidationError(err) {
		t.Errorf("blank name: got %v, want validation error", err)
	}
	if _, err := env.service.InitUpload(ctx, "client-1", InitUploadInput{OriginalName: "a.txt", Size: -1}); !IsValidationError(err) {
		t.Errorf("negative size: got %v, want validation error", err)
	}
}

func TestInitUploadCreatesDocument(t *testing.T) {
	tests := []struct {
		name           string
		input          InitUploadInput
		wantDocument   bool
		wantSourceType entity.DocumentSourceType
	}{
		{
			name:         "plain upload",
			input:        InitUploadInput{OriginalName: "a.txt"},
			wantDocument: false,
		},
		{
			name:           "inline content",
			input:          InitUploadInput{OriginalName: "a.txt", Content: "hello world"},
			wantDocument:   true,
			wantSourceType: entity.DocumentSourceUpload,
		},
		{
			name:         "whitespace content only",
			input:        InitUploadInput{OriginalName: "a.txt", Content: "   \n\t"},
			wantDocument: false,
		},
		{
			name:           "knowledge base flag",
			input:          InitUploadInput{OriginalName: "a.txt", AddToKnowledgeBase: true},
			wantDocument:   true,
			wantSourceType: entity.DocumentSourceKnowledgeBase,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv()
			result, err := env.service.InitUpload(context.Background(), "client-1", tt.input)
			if err != nil {
				t.Fatalf("InitUpload: %v", err)
			}

			if !tt.wantDocument {
				if len(env.meta.documents) != 0 {
					t.Fatalf("unexpected document")
				}
				return
			}

			if len(env.meta.documents) != 1 {
				t.Fatalf("expected one document, got %d", len(env.meta.documents))
			}
			for _, doc := range env.meta.documents {
				if doc.SourceType != tt.wantSourceType {
					t.Errorf("source type = %q, want %q", doc.SourceType, tt.wantSourceType)
				}
				if doc.Source != result.Key {
					t.Errorf("source = %q, want key %q", doc.Source, result.Key)
				}
				if doc.FileID != result.ID {
					t.Errorf("file id = %q, want %q", doc.FileID, result.ID)
				}
			}
			if len(env.publisher.messages) != 1 {
				t.Fatalf("expected one index job, got %d", len(env.publisher.messages))
			}
		})
	}
}

func TestInitUploadSurvivesPublisherOutage(t *testing.T) {
	env := newTestEnv()
	env.publisher.fail = true

	_, err := env.service.InitUpload(context.Background(), "client-1", InitUploadInput{
		OriginalName:       "a.txt",
		AddToKnowledgeBase: true,
	})
	if err != nil {
		t.Fatalf("InitUpload should not fail on a publisher outage: %v", err)
	}
}

func TestInitUploadDatabaseFailure(t *testing.T) {
	env := newTestEnv()
	env.meta.failCreate = true

	_, err := env.service.InitUpload(context.Background(), "client-1", InitUploadInput{OriginalName: "a.txt"})
	if !errors.Is(err, ErrInternal) {
		t.Fatalf("got %v, want ErrInternal", err)
	}
	if len(env.meta.files) != 0 || len(env.meta.documents) != 0 {
		t.Error("no records should survive a failed create")
	}
}

func TestDirectUploadAfterInit(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	initResult, err := env.service.InitUpload(ctx, "client-1", InitUploadInput{OriginalName: "photo.png", MimeType: "image/png"})
	if err != nil {
		t.Fatalf("InitUpload: %v", err)
	}

	body := []byte("png bytes")
	result, err := env.service.DirectUpload(ctx, "client-1", DirectUploadInput{
		ID:      initResult.ID,
		Content: base64.StdEncoding.EncodeToString(body),
	})
	if err != nil {
		t.Fatalf("DirectUpload: %v", err)
	}
	if result.ID != initResult.ID {
		t.Errorf("id = %q, want %q", result.ID, initResult.ID)
	}
	if result.URL == "" {
		t.Error("expected a signed read url")
	}

	stored, _ := env.store.Read(ctx, initResult.Key)
	if string(stored) != string(body) {
		t.Errorf("stored bytes = %q, want %q", stored, body)
	}

	file, _ := env.meta.FileByID(ctx, initResult.ID, "client-1")
	if file.URL != result.URL {
		t.Errorf("record url = %q, want %q", file.URL, result.URL)
	}
	if file.Size != int64(len(body)) {
		t.Errorf("size = %d, want decoded length %d", file.Size, len(body))
	}
}

func TestDirectUploadWithoutInit(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	result, err := env.service.DirectUpload(ctx, "client-1", DirectUploadInput{
		ID:           "file_abc123",
		OriginalName: "fresh.txt",
		MimeType:     "text/plain",
		Content:      base64.StdEncoding.EncodeToString([]byte("inline body")),
	})
	if err != nil {
		t.Fatalf("DirectUpload: %v", err)
	}
	if result.ID != "file_abc123" {
		t.Errorf("supplied id was not honored, got %q", result.ID)
	}

	file, _ := env.meta.FileByID(ctx, "file_abc123", "client-1")
	if file == nil {
		t.Fatal("inline record not created")
	}
	if file.Name != "fresh.txt" {
		t.Errorf("name = %q, want fresh.txt", file.Name)
	}
	if file.URL == "" {
		t.Error("inline record should carry the signed url")
	}
}

func TestDirectUploadExplicitSizeWins(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	initResult, _ := env.service.InitUpload(ctx, "client-1", InitUploadInput{OriginalName: "a.bin"})

	size := int64(4096)
	_, err := env.service.DirectUpload(ctx, "client-1", DirectUploadInput{
		ID:      initResult.ID,
		Size:    &size,
		Content: base64.StdEncoding.EncodeToString([]byte("short")),
	})
	if err != nil {
		t.Fatalf("DirectUpload: %v", err)
	}

	file, _ := env.meta.FileByID(ctx, initResult.ID, "client-1")
	if file.Size != 4096 {
		t.Errorf("size = %d, want the explicit 4096", file.Size)
	}
}

func TestDirectUploadValidation(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	if _, err := env.service.DirectUpload(ctx, "", DirectUploadInput{ID: "x", Content: "aGk="}); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("empty client: got %v, want ErrUnauthorized", err)
	}
	if _, err := env.service.DirectUpload(ctx, "client-1", DirectUploadInput{ID: "x"}); !IsValidationError(err) {
		t.Errorf("missing content: got %v, want validation error", err)
	}
	if _, err := env.service.DirectUpload(ctx, "client-1", DirectUploadInput{Content: "aGk="}); !IsValidationError(err) {
		t.Errorf("missing id and key: got %v, want validation error", err)
	}
	if _, err := env.service.DirectUpload(ctx, "client-1", DirectUploadInput{ID: "x", Content: "not base64!!"}); !IsValidationError(err) {
		t.Errorf("bad base64: got %v, want validation error", err)
	}
}

func TestDirectUploadStoreOutage(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	initResult, _ := env.service.InitUpload(ctx, "client-1", InitUploadInput{OriginalName: "a.txt"})
	env.store.failWrite = true

	_, err := env.service.DirectUpload(ctx, "client-1", DirectUploadInput{
		ID:      initResult.ID,
		Content: base64.StdEncoding.EncodeToString([]byte("body")),
	})
	if !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("got %v, want ErrStoreUnavailable", err)
	}

	file, _ := env.meta.FileByID(ctx, initResult.ID, "client-1")
	if file.URL != "" {
		t.Errorf("url should stay empty after a failed write, got %q", file.URL)
	}

	progress, err := env.service.Progress(ctx, "client-1", initResult.ID)
	if err != nil {
		t.Fatalf("Progress: %v", err)
	}
	if progress.Status != ProgressStatusError {
		t.Errorf("progress status = %q, want %q", progress.Status, ProgressStatusError)
	}
}

func TestCompleteUploadResolvesKeyFirst(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	initResult, _ := env.service.InitUpload(ctx, "client-1", InitUploadInput{OriginalName: "a.txt"})

	// A stale id next to a valid key must not derail resolution.
	result, err := env.service.CompleteUpload(ctx, "client-1", CompleteUploadInput{
		ID:  "file_doesnotexist",
		Key: initResult.Key,
	})
	if err != nil {
		t.Fatalf("CompleteUpload: %v", err)
	}
	if result.ID != initResult.ID {
		t.Errorf("resolved id = %q, want %q", result.ID, initResult.ID)
	}

	file, _ := env.meta.FileByID(ctx, initResult.ID, "client-1")
	if file.URL != result.URL {
		t.Errorf("record url = %q, want %q", file.URL, result.URL)
	}
}

func TestCompleteUploadByIDOnly(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	initResult, _ := env.service.InitUpload(ctx, "client-1", InitUploadInput{OriginalName: "a.txt"})

	result, err := env.service.CompleteUpload(ctx, "client-1", CompleteUploadInput{ID: initResult.ID})
	if err != nil {
		t.Fatalf("CompleteUpload: %v", err)
	}
	if result.ID != initResult.ID {
		t.Errorf("resolved id = %q, want %q", result.ID, initResult.ID)
	}
}

func TestCompleteUploadIsIdempotent(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	initResult, _ := env.service.InitUpload(ctx, "client-1", InitUploadInput{OriginalName: "a.txt"})

	first, err := env.service.CompleteUpload(ctx, "client-1", CompleteUploadInput{Key: initResult.Key})
	if err != nil {
		t.Fatalf("first CompleteUpload: %v", err)
	}
	second, err := env.service.CompleteUpload(ctx, "client-1", CompleteUploadInput{Key: initResult.Key})
	if err != nil {
		t.Fatalf("second CompleteUpload: %v", err)
	}
	if first.ID != second.ID {
		t.Errorf("repeat call resolved a different record: %q vs %q", first.ID, second.ID)
	}
}

func TestCompleteUploadDoesNotProbeStore(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	initResult, _ := env.service.InitUpload(ctx, "client-1", InitUploadInput{OriginalName: "a.txt"})

	// The object was never written; confirmation must still succeed.
	if _, err := env.service.CompleteUpload(ctx, "client-1", CompleteUploadInput{Key: initResult.Key}); err != nil {
		t.Fatalf("CompleteUpload: %v", err)
	}
}

func TestOwnershipIsolation(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	initResult, _ := env.service.InitUpload(ctx, "client-1", InitUploadInput{OriginalName: "secret.txt"})

	if _, err := env.service.CompleteUpload(ctx, "client-2", CompleteUploadInput{Key: initResult.Key}); !errors.Is(err, ErrNotFound) {
		t.Errorf("complete across clients: got %v, want ErrNotFound", err)
	}
	// Resolution misses, the inline create hits the duplicate-key constraint,
	// and the collision must read as absence rather than disclose the record.
	if _, err := env.service.DirectUpload(ctx, "client-2", DirectUploadInput{
		Key:     initResult.Key,
		Content: base64.StdEncoding.EncodeToString([]byte("hijack")),
	}); !errors.Is(err, ErrNotFound) {
		t.Errorf("direct across clients by key: got %v, want ErrNotFound", err)
	}
	if _, err := env.service.DirectUpload(ctx, "client-2", DirectUploadInput{
		ID:      initResult.ID,
		Content: base64.StdEncoding.EncodeToString([]byte("hijack")),
	}); !errors.Is(err, ErrNotFound) {
		t.Errorf("direct across clients by id: got %v, want ErrNotFound", err)
	}
	if file, _ := env.meta.FileByID(ctx, initResult.ID, "client-1"); file == nil || file.URL != "" {
		t.Error("the owner's record must be untouched by the rejected uploads")
	}
	if err := env.service.DeleteFile(ctx, "client-2", initResult.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("delete across clients: got %v, want ErrNotFound", err)
	}
	if _, err := env.service.Progress(ctx, "client-2", initResult.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("progress across clients: got %v, want ErrNotFound", err)
	}
}

func TestCompleteUploadNotFound(t *testing.T) {
	env := newTestEnv()

	_, err := env.service.CompleteUpload(context.Background(), "client-1", CompleteUploadInput{ID: "file_missing"})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestListFiles(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	confirmed, _ := env.service.InitUpload(ctx, "client-1", InitUploadInput{OriginalName: "done.txt"})
	if _, err := env.service.CompleteUpload(ctx, "client-1", CompleteUploadInput{ID: confirmed.ID}); err != nil {
		t.Fatalf("CompleteUpload: %v", err)
	}
	pending, _ := env.service.InitUpload(ctx, "client-1", InitUploadInput{OriginalName: "pending.txt"})
	env.service.InitUpload(ctx, "client-2", InitUploadInput{OriginalName: "other.txt"})

	views, err := env.service.ListFiles(ctx, "client-1")
	if err != nil {
		t.Fatalf("ListFiles: %v", err)
	}
	if len(views) != 2 {
		t.Fatalf("got %d files, want 2", len(views))
	}

	for _, view := range views {
		switch view.ID {
		case confirmed.ID:
			if view.DownloadURL == "" {
				t.Error("confirmed file should carry a download url")
			}
		case pending.ID:
			if view.DownloadURL != "" {
				t.Errorf("pending file should not carry a download url, got %q", view.DownloadURL)
			}
		default:
			t.Errorf("unexpected file %q in listing", view.ID)
		}
	}
}

func TestDeleteFile(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	initResult, _ := env.service.InitUpload(ctx, "client-1", InitUploadInput{OriginalName: "a.txt"})
	if _, err := env.service.DirectUpload(ctx, "client-1", DirectUploadInput{
		ID:      initResult.ID,
		Content: base64.StdEncoding.EncodeToString([]byte("body")),
	}); err != nil {
		t.Fatalf("DirectUpload: %v", err)
	}

	if err := env.service.DeleteFile(ctx, "client-1", initResult.ID); err != nil {
		t.Fatalf("DeleteFile: %v", err)
	}

	if file, _ := env.meta.FileByID(ctx, initResult.ID, "client-1"); file != nil {
		t.Error("record should be gone")
	}
	if _, err := env.store.Read(ctx, initResult.Key); !errors.Is(err, infra.ErrObjectNotFound) {
		t.Error("object should be gone")
	}

	if err := env.service.DeleteFile(ctx, "client-1", initResult.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("repeat delete: got %v, want ErrNotFound", err)
	}
}

func TestProgressLifecycle(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	initResult, _ := env.service.InitUpload(ctx, "client-1", InitUploadInput{OriginalName: "big.bin"})

	progress, err := env.service.Progress(ctx, "client-1", initResult.ID)
	if err != nil {
		t.Fatalf("Progress: %v", err)
	}
	if progress.Status != ProgressStatusUploading {
		t.Errorf("status after init = %q, want %q", progress.Status, ProgressStatusUploading)
	}

	if _, err := env.service.CompleteUpload(ctx, "client-1", CompleteUploadInput{ID: initResult.ID}); err != nil {
		t.Fatalf("CompleteUpload: %v", err)
	}

	progress, err = env.service.Progress(ctx, "client-1", initResult.ID)
	if err != nil {
		t.Fatalf("Progress: %v", err)
	}
	if progress.Status != ProgressStatusDone || progress.Percent != 100 {
		t.Errorf("status after complete = %q/%d, want %q/100", progress.Status, progress.Percent, ProgressStatusDone)
	}
}

func TestProgressCacheMissReadsAsDone(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	initResult, _ := env.service.InitUpload(ctx, "client-1", InitUploadInput{OriginalName: "a.txt"})
	env.cache.Delete(ctx, fmt.Sprintf("upload:progress:%s", initResult.ID))

	progress, err := env.service.Progress(ctx, "client-1", initResult.ID)
	if err != nil {
		t.Fatalf("Progress: %v", err)
	}
	if progress.Status != ProgressStatusDone {
		t.Errorf("status = %q, want %q", progress.Status, ProgressStatusDone)
	}
}
