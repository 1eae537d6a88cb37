// Package objectstore wraps the S3 operations the upload flow needs:
// pre-signed single PUT URLs, multipart sessions with pre-signed part URLs,
// completion by ETag list, abort, and listing of open sessions for
// reconciliation.
package objectstore

//go:generate go run go.uber.org/mock/mockgen -source=gateway.go -destination=mocks/gateway_mock.go -package=mocks

import (
	"context"
	"time"
)

// MaxPartNumber is the highest part number the S3 protocol accepts.
const MaxPartNumber = 10000

// Part identifies one uploaded part by its number and the ETag the store
// returned for it.
type Part struct {
	Number int32
	ETag   string
}

// Session describes an open multipart upload as reported by the store.
type Session struct {
	Key       string
	ID        string
	Initiated time.Time
}

// Gateway is the object-store boundary of the upload service. Transport and
// auth failures are wrapped with common.ErrStoreUnavailable.
type Gateway interface {
	// Bucket is the bucket every key is resolved against.
	Bucket() string
	PresignPut(ctx context.Context, key, contentType string, expiry time.Duration) (string, error)
	OpenMultipart(ctx context.Context, key, contentType string) (string, error)
	PresignPart(ctx context.Context, key, sessionID string, partNumber int32, expiry time.Duration) (string, error)
	// CompleteMultipart returns the final object location. A part list the
	// store refuses fails with common.ErrInvalidParts.
	CompleteMultipart(ctx context.Context, key, sessionID string, parts []Part) (string, error)
	// AbortMultipart is best effort: failures are logged, not returned.
	AbortMultipart(ctx context.Context, key, sessionID string)
	ListMultipart(ctx context.Context, prefix string) ([]Session, error)
}
