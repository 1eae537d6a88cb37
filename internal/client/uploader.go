package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/dmitrijs2005/mediaupload/internal/common"
	"github.com/dmitrijs2005/mediaupload/internal/netx"
	"github.com/dmitrijs2005/mediaupload/internal/server/httpapi"
	"github.com/dmitrijs2005/mediaupload/internal/server/objectstore"
	"github.com/gabriel-vasile/mimetype"
	"github.com/samber/lo"
)

// MinPartSize is the smallest part S3 accepts, except for the last one.
const MinPartSize = 5 * common.MiB

// API is the subset of APIClient the Uploader needs.
type API interface {
	Initiate(ctx context.Context, req httpapi.UploadRequest) (*httpapi.UploadResponse, error)
	PartURL(ctx context.Context, uploadID string, partNumber int32) (string, error)
	Complete(ctx context.Context, uploadID string, parts []httpapi.CompletePart) (*httpapi.CompleteResponse, error)
}

type Uploader struct {
	api      API
	http     *http.Client
	partSize int64
}

func NewUploader(api API, partSize int64) *Uploader {
	return &Uploader{api: api, http: &http.Client{}, partSize: max(partSize, MinPartSize)}
}

// Result describes a finished upload.
type Result struct {
	UploadID  string
	ObjectKey string
	Multipart bool
	Parts     int
	Location  string
}

// UploadFile uploads the file at path. An empty contentType is detected from
// the file contents.
func (u *Uploader) UploadFile(ctx context.Context, path, contentType string) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}

	if contentType == "" {
		mt, err := mimetype.DetectReader(f)
		if err != nil {
			return nil, fmt.Errorf("detect content type: %w", err)
		}
		contentType = mt.String()
	}

	resp, err := u.api.Initiate(ctx, httpapi.UploadRequest{
		Filename:    filepath.Base(path),
		FileSize:    lo.ToPtr(info.Size()),
		ContentType: contentType,
	})
	if err != nil {
		return nil, err
	}

	res := &Result{UploadID: resp.UploadID, ObjectKey: resp.ObjectKey, Multipart: resp.IsMultipart}

	if !resp.IsMultipart {
		if _, err := f.Seek(0, io.SeekStart); err != nil {
			return nil, err
		}
		if _, err := netx.PutPresigned(ctx, u.http, lo.FromPtr(resp.PresignedURL), contentType, f, info.Size()); err != nil {
			return nil, err
		}
		res.Parts = 1
		return res, nil
	}

	parts, err := u.uploadParts(ctx, resp.UploadID, f, info.Size())
	if err != nil {
		return nil, err
	}

	done, err := u.api.Complete(ctx, resp.UploadID, parts)
	if err != nil {
		return nil, err
	}
	res.Parts = len(parts)
	res.Location = done.Location
	return res, nil
}

// partSizeFor grows the configured part size until size fits in the part
// number limit.
func (u *Uploader) partSizeFor(size int64) int64 {
	partSize := u.partSize
	for (size+partSize-1)/partSize > objectstore.MaxPartNumber {
		partSize *= 2
	}
	return partSize
}

func (u *Uploader) uploadParts(ctx context.Context, uploadID string, r io.ReaderAt, size int64) ([]httpapi.CompletePart, error) {
	partSize := u.partSizeFor(size)

	var parts []httpapi.CompletePart
	for offset, n := int64(0), int32(1); offset < size || n == 1; offset, n = offset+partSize, n+1 {
		length := min(partSize, size-offset)

		partURL, err := u.api.PartURL(ctx, uploadID, n)
		if err != nil {
			return nil, err
		}
		etag, err := netx.PutPresigned(ctx, u.http, partURL, "", io.NewSectionReader(r, offset, length), length)
		if err != nil {
			return nil, fmt.Errorf("part %d: %w", n, err)
		}
		parts = append(parts, httpapi.CompletePart{PartNumber: n, ETag: etag})
	}
	return parts, nil
}
