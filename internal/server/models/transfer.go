package models

import "encoding/json"

// Transfer tells the client how to move the bytes. It is either SinglePut or
// Multipart.
type Transfer interface {
	isTransfer()
}

// SinglePut means the whole object goes up in one PUT to URL.
type SinglePut struct {
	URL string
}

// Multipart means the client asks for one pre-signed URL per part and then
// completes SessionID with the collected ETags.
type Multipart struct {
	SessionID string
}

func (SinglePut) isTransfer() {}
func (Multipart) isTransfer() {}

// UploadRequest is the client-declared metadata of a file to upload.
type UploadRequest struct {
	Filename         string
	Size             int64
	ContentType      string
	ProcessingConfig json.RawMessage
}

// InitiatedUpload is the result of a successful initiation.
type InitiatedUpload struct {
	UploadID  string
	ObjectKey string
	Transfer  Transfer
	// ExpiresIn is the validity of issued pre-signed URLs, in seconds.
	ExpiresIn int64
}

// IsMultipart reports whether the client must follow the multipart flow.
func (u *InitiatedUpload) IsMultipart() bool {
	_, ok := u.Transfer.(Multipart)
	return ok
}

// CompletedUpload is the result of completing a multipart upload.
type CompletedUpload struct {
	UploadID string
	Status   UploadStatus
	Location string
}

// BulkResult is one entry of a bulk initiation, in submission order. Exactly
// one of Upload and Err is set.
type BulkResult struct {
	Upload *InitiatedUpload
	Err    error
}
