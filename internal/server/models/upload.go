// Package models defines server-side data models persisted in the database
// and the value types the upload service hands back to its callers.
package models

import (
	"encoding/json"
	"time"
)

// UploadStatus is the ingestion state of a content record. It only ever moves
// forward, from StatusPending to StatusUploaded.
type UploadStatus string

const (
	StatusPending  UploadStatus = "pending"
	StatusUploaded UploadStatus = "uploaded"
)

// Upload is a row of content_inventory: the bookkeeping record for one
// uploaded object.
type Upload struct {
	// ContentID is the upload id handed to clients.
	ContentID string

	SourceBucket     string
	SourceKey        string
	OriginalFilename string
	SizeBytes        int64
	MimeType         string
	// MetadataHash is sha256("name:size:type") in hex. It is a duplicate
	// detection heuristic, not a content checksum.
	MetadataHash string

	// MultipartSessionID is the store's multipart upload id. Empty for single
	// PUT uploads.
	MultipartSessionID string

	Status           UploadStatus
	ProcessingConfig json.RawMessage
	// Location is set when the upload completes.
	Location string

	CreatedAt   time.Time
	UpdatedAt   time.Time
	CompletedAt *time.Time
}

// IsMultipart reports whether the upload was initiated as a multipart session.
func (u *Upload) IsMultipart() bool {
	return u.MultipartSessionID != ""
}
