package httpapi

import (
	"bytes"
	"encoding/json"

	"github.com/dmitrijs2005/mediaupload/internal/server/models"
	"github.com/dmitrijs2005/mediaupload/internal/server/objectstore"
	"github.com/samber/lo"
)

type UploadRequest struct {
	Filename         string          `json:"filename" validate:"required"`
	FileSize         *int64          `json:"file_size" validate:"required"`
	ContentType      string          `json:"content_type" validate:"required"`
	ProcessingConfig json.RawMessage `json:"processing_config,omitempty"`
}

type UploadResponse struct {
	UploadID           string  `json:"upload_id"`
	ObjectKey          string  `json:"object_key"`
	IsMultipart        bool    `json:"is_multipart"`
	PresignedURL       *string `json:"presigned_url,omitempty"`
	MultipartSessionID *string `json:"multipart_session_id,omitempty"`
	ExpiresIn          int64   `json:"expires_in"`
}

type BulkUploadRequest struct {
	Uploads []UploadRequest `json:"uploads" validate:"required,min=1,dive"`
}

// BulkResult holds either the upload or the error of one bulk entry.
type BulkResult struct {
	*UploadResponse
	*ErrorResponse
}

type BulkUploadResponse struct {
	Results []BulkResult `json:"results"`
}

type PartURLResponse struct {
	UploadID     string `json:"upload_id"`
	PartNumber   int32  `json:"part_number"`
	PresignedURL string `json:"presigned_url"`
}

type CompletePart struct {
	PartNumber int32  `json:"part_number" validate:"required,min=1,max=10000"`
	ETag       string `json:"etag" validate:"required"`
}

type CompleteRequest struct {
	Parts []CompletePart `json:"parts" validate:"required,min=1,dive"`
}

type CompleteResponse struct {
	Status   string `json:"status"`
	Location string `json:"location"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

func (r UploadRequest) toModel() models.UploadRequest {
	cfg := r.ProcessingConfig
	// An explicit null means "no config", same as omitting the key.
	if bytes.Equal(bytes.TrimSpace(cfg), []byte("null")) {
		cfg = nil
	}
	return models.UploadRequest{
		Filename:         r.Filename,
		Size:             lo.FromPtr(r.FileSize),
		ContentType:      r.ContentType,
		ProcessingConfig: cfg,
	}
}

func toUploadResponse(u *models.InitiatedUpload) *UploadResponse {
	resp := &UploadResponse{
		UploadID:    u.UploadID,
		ObjectKey:   u.ObjectKey,
		IsMultipart: u.IsMultipart(),
		ExpiresIn:   u.ExpiresIn,
	}
	switch t := u.Transfer.(type) {
	case models.SinglePut:
		resp.PresignedURL = lo.ToPtr(t.URL)
	case models.Multipart:
		resp.MultipartSessionID = lo.ToPtr(t.SessionID)
	}
	return resp
}

func toBulkResults(results []models.BulkResult) []BulkResult {
	return lo.Map(results, func(r models.BulkResult, _ int) BulkResult {
		if r.Err != nil {
			return BulkResult{ErrorResponse: toErrorResponse(r.Err)}
		}
		return BulkResult{UploadResponse: toUploadResponse(r.Upload)}
	})
}

func toParts(parts []CompletePart) []objectstore.Part {
	return lo.Map(parts, func(p CompletePart, _ int) objectstore.Part {
		return objectstore.Part{Number: p.PartNumber, ETag: p.ETag}
	})
}
