package dto

// InitUploadRequest is the phase 1 payload.
type InitUploadRequest struct {
	OriginalName       string                 `json:"original_name" binding:"required"`
	MimeType           string                 `json:"mime_type"`
	Size               int64                  `json:"size" binding:"min=0"`
	Title              string                 `json:"title"`
	Content            string                 `json:"content"`
	AddToKnowledgeBase bool                   `json:"add_to_knowledge_base"`
	Metadata           map[string]interface{} `json:"metadata"`
}

// InitUploadResponse carries the new record's identity plus the presigned PUT
// URL; upload_url is null when direct-to-store uploads are disabled.
type InitUploadResponse struct {
	ID        string  `json:"id"`
	Key       string  `json:"key"`
	UploadURL *string `json:"upload_url"`
}

// DirectUploadRequest is the server-relayed transport payload. Content is the
// base64-encoded file body; either id or key identifies the record from a
// prior init call, both absent means a fresh record is created.
type DirectUploadRequest struct {
	ID           string `json:"id"`
	Key          string `json:"key"`
	OriginalName string `json:"original_name"`
	MimeType     string `json:"mime_type"`
	Size         *int64 `json:"size"`
	Content      string `json:"content" binding:"required"`
}

// CompleteUploadRequest confirms a presigned transfer.
type CompleteUploadRequest struct {
	ID  string `json:"id"`
	Key string `json:"key"`
}

// UploadResponse is the confirmed state after a direct or completed upload.
type UploadResponse struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}
