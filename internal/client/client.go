// Package client is a Go client for the upload API. Uploader drives the whole
// protocol for a local file: initiate, transfer and, for multipart, complete.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/mediaupload/internal/common"
	"github.com/dmitrijs2005/mediaupload/internal/server/httpapi"
)

type APIClient struct {
	baseURL     string
	accessToken string
	http        *http.Client
}

// NewAPIClient returns a client for the API at baseURL (e.g.
// "http://localhost:8080"). accessToken may be empty when auth is disabled.
func NewAPIClient(baseURL, accessToken string) *APIClient {
	return &APIClient{
		baseURL:     strings.TrimRight(baseURL, "/"),
		accessToken: accessToken,
		http:        &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *APIClient) Initiate(ctx context.Context, req httpapi.UploadRequest) (*httpapi.UploadResponse, error) {
	var resp httpapi.UploadResponse
	if err := c.do(ctx, http.MethodPost, "/api/v1/upload", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *APIClient) InitiateBulk(ctx context.Context, reqs []httpapi.UploadRequest) ([]httpapi.BulkResult, error) {
	var resp httpapi.BulkUploadResponse
	if err := c.do(ctx, http.MethodPost, "/api/v1/bulk-upload", httpapi.BulkUploadRequest{Uploads: reqs}, &resp); err != nil {
		return nil, err
	}
	return resp.Results, nil
}

func (c *APIClient) PartURL(ctx context.Context, uploadID string, partNumber int32) (string, error) {
	var resp httpapi.PartURLResponse
	path := fmt.Sprintf("/api/v1/%s/part/%d", url.PathEscape(uploadID), partNumber)
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return "", err
	}
	return resp.PresignedURL, nil
}

func (c *APIClient) Complete(ctx context.Context, uploadID string, parts []httpapi.CompletePart) (*httpapi.CompleteResponse, error) {
	var resp httpapi.CompleteResponse
	path := fmt.Sprintf("/api/v1/%s/complete", url.PathEscape(uploadID))
	if err := c.do(ctx, http.MethodPost, path, httpapi.CompleteRequest{Parts: parts}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *APIClient) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.accessToken != "" {
		req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+c.accessToken)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return mapError(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

// mapError turns an error response back into the matching sentinel.
func mapError(resp *http.Response) error {
	var e httpapi.ErrorResponse
	_ = json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&e)
	if e.Message == "" {
		e.Message = resp.Status
	}

	var sentinel error
	switch resp.StatusCode {
	case http.StatusBadRequest:
		switch e.Error {
		case "unsupported_type":
			sentinel = common.ErrUnsupportedType
		case "size_exceeded":
			sentinel = common.ErrSizeExceeded
		case "invalid_part_number":
			sentinel = common.ErrInvalidPartNumber
		default:
			sentinel = common.ErrValidation
		}
	case http.StatusUnauthorized:
		sentinel = common.ErrUnauthorized
	case http.StatusNotFound:
		sentinel = common.ErrNotFound
	case http.StatusConflict:
		sentinel = common.ErrInvalidParts
	default:
		sentinel = common.ErrInternal
		if e.Error == "store_unavailable" {
			sentinel = common.ErrStoreUnavailable
		}
	}
	return fmt.Errorf("%w: %s", sentinel, e.Message)
}
