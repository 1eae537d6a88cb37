// Package netx talks to pre-signed object store URLs.
package netx

import (
	"context"
	"fmt"
	"io"
	"net/http"
)

// PutPresigned streams size bytes of body to a pre-signed PUT URL and returns
// the ETag the store assigned. contentType must match the type the URL was
// signed with; pass "" for part URLs, which are signed without one.
func PutPresigned(ctx context.Context, client *http.Client, url, contentType string, body io.Reader, size int64) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, body)
	if err != nil {
		return "", err
	}
	req.ContentLength = size
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return "", fmt.Errorf("upload failed: %s; body: %s", resp.Status, string(b))
	}
	return resp.Header.Get("ETag"), nil
}
