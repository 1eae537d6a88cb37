package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/mediaupload/internal/common"
	"github.com/dmitrijs2005/mediaupload/internal/logging"
	"github.com/dmitrijs2005/mediaupload/internal/server/auth"
	"github.com/dmitrijs2005/mediaupload/internal/server/models"
	"github.com/dmitrijs2005/mediaupload/internal/server/objectstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUploads struct {
	initiateFn func(models.UploadRequest) (*models.InitiatedUpload, error)
	bulkFn     func([]models.UploadRequest) ([]models.BulkResult, error)
	partFn     func(string, int32) (string, error)
	completeFn func(string, []objectstore.Part) (*models.CompletedUpload, error)
}

func (f *fakeUploads) Initiate(_ context.Context, req models.UploadRequest) (*models.InitiatedUpload, error) {
	return f.initiateFn(req)
}

func (f *fakeUploads) InitiateBulk(_ context.Context, reqs []models.UploadRequest) ([]models.BulkResult, error) {
	return f.bulkFn(reqs)
}

func (f *fakeUploads) GetPartURL(_ context.Context, id string, n int32) (string, error) {
	return f.partFn(id, n)
}

func (f *fakeUploads) Complete(_ context.Context, id string, parts []objectstore.Part) (*models.CompletedUpload, error) {
	return f.completeFn(id, parts)
}

type fakePinger struct{ err error }

func (p fakePinger) PingContext(context.Context) error { return p.err }

const uploadID = "00000000-0000-4000-8000-000000000001"

func singlePut(req models.UploadRequest) (*models.InitiatedUpload, error) {
	return &models.InitiatedUpload{
		UploadID:  uploadID,
		ObjectKey: "incoming/20250301/" + uploadID + "/" + req.Filename,
		Transfer:  models.SinglePut{URL: "https://s3/put"},
		ExpiresIn: 3600,
	}, nil
}

func serve(t *testing.T, h http.Handler, method, path, body string, header ...string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func newRoutes(svc *fakeUploads, secret string) http.Handler {
	return NewHandler(svc, fakePinger{}, logging.Nop{}).Routes(secret)
}

func TestInitiate_SinglePut(t *testing.T) {
	var got models.UploadRequest
	svc := &fakeUploads{initiateFn: func(req models.UploadRequest) (*models.InitiatedUpload, error) {
		got = req
		return singlePut(req)
	}}

	rec := serve(t, newRoutes(svc, ""), http.MethodPost, "/api/v1/upload",
		`{"filename":"v1.mp4","file_size":100,"content_type":"video/mp4","processing_config":{"lang":"en"}}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	resp := decodeBody[map[string]any](t, rec)
	assert.Equal(t, uploadID, resp["upload_id"])
	assert.Equal(t, false, resp["is_multipart"])
	assert.Equal(t, "https://s3/put", resp["presigned_url"])
	assert.NotContains(t, resp, "multipart_session_id")
	assert.Equal(t, float64(3600), resp["expires_in"])

	assert.Equal(t, "v1.mp4", got.Filename)
	assert.Equal(t, int64(100), got.Size)
	assert.JSONEq(t, `{"lang":"en"}`, string(got.ProcessingConfig))
}

func TestInitiate_Multipart(t *testing.T) {
	svc := &fakeUploads{initiateFn: func(models.UploadRequest) (*models.InitiatedUpload, error) {
		return &models.InitiatedUpload{UploadID: uploadID, ObjectKey: "k", Transfer: models.Multipart{SessionID: "sess-1"}, ExpiresIn: 3600}, nil
	}}

	rec := serve(t, newRoutes(svc, ""), http.MethodPost, "/api/v1/upload",
		`{"filename":"big.mp4","file_size":209715200,"content_type":"video/mp4"}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	resp := decodeBody[map[string]any](t, rec)
	assert.Equal(t, true, resp["is_multipart"])
	assert.Equal(t, "sess-1", resp["multipart_session_id"])
	assert.NotContains(t, resp, "presigned_url")
}

func TestInitiate_NullProcessingConfig(t *testing.T) {
	var got models.UploadRequest
	svc := &fakeUploads{initiateFn: func(req models.UploadRequest) (*models.InitiatedUpload, error) {
		got = req
		return singlePut(req)
	}}

	rec := serve(t, newRoutes(svc, ""), http.MethodPost, "/api/v1/upload",
		`{"filename":"a.txt","file_size":0,"content_type":"text/plain","processing_config":null}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Nil(t, got.ProcessingConfig)
	assert.Equal(t, int64(0), got.Size)
}

func TestInitiate_Errors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		err        error
		wantStatus int
		wantCode   string
		wantMsg    string
	}{
		{"malformed json", `{"filename":`, nil, http.StatusBadRequest, codeBadRequest, "malformed"},
		{"missing size", `{"filename":"a.mp4","content_type":"video/mp4"}`, nil, http.StatusBadRequest, codeBadRequest, "FileSize"},
		{"missing filename", `{"file_size":1,"content_type":"video/mp4"}`, nil, http.StatusBadRequest, codeBadRequest, "Filename"},
		{"unsupported type", "", fmt.Errorf("%w: .exe", common.ErrUnsupportedType), http.StatusBadRequest, codeUnsupportedType, ".exe"},
		{"size exceeded", "", common.ErrSizeExceeded, http.StatusBadRequest, codeSizeExceeded, "exceeds"},
		{"store down", "", fmt.Errorf("presign: %w: boom", common.ErrStoreUnavailable), http.StatusInternalServerError, codeStoreUnavailable, "object store unavailable"},
		{"persistence", "", fmt.Errorf("%w: persist: pq secret detail", common.ErrInternal), http.StatusInternalServerError, codeInternal, "internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			svc := &fakeUploads{initiateFn: func(models.UploadRequest) (*models.InitiatedUpload, error) {
				called = true
				return nil, tt.err
			}}
			body := tt.body
			if body == "" {
				body = `{"filename":"malicious.exe","file_size":10,"content_type":"application/octet-stream"}`
			}

			rec := serve(t, newRoutes(svc, ""), http.MethodPost, "/api/v1/upload", body)

			assert.Equal(t, tt.wantStatus, rec.Code)
			resp := decodeBody[ErrorResponse](t, rec)
			assert.Equal(t, tt.wantCode, resp.Error)
			assert.Contains(t, resp.Message, tt.wantMsg)
			assert.NotContains(t, resp.Message, "pq secret detail")
			assert.NotContains(t, resp.Message, "boom")
			assert.Equal(t, tt.err != nil, called)
		})
	}
}

func TestInitiateBulk(t *testing.T) {
	var got []models.UploadRequest
	svc := &fakeUploads{bulkFn: func(reqs []models.UploadRequest) ([]models.BulkResult, error) {
		got = reqs
		first, _ := singlePut(reqs[0])
		return []models.BulkResult{
			{Upload: first},
			{Err: fmt.Errorf("%w: .exe", common.ErrUnsupportedType)},
		}, nil
	}}

	rec := serve(t, newRoutes(svc, ""), http.MethodPost, "/api/v1/bulk-upload", `{"uploads":[
		{"filename":"a.mp4","file_size":1,"content_type":"video/mp4"},
		{"filename":"b.exe","file_size":1,"content_type":"application/x-msdownload"}
	]}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	require.Len(t, got, 2)
	assert.Equal(t, "a.mp4", got[0].Filename)
	assert.Equal(t, "b.exe", got[1].Filename)

	resp := decodeBody[struct {
		Results []map[string]any `json:"results"`
	}](t, rec)
	require.Len(t, resp.Results, 2)
	assert.Equal(t, uploadID, resp.Results[0]["upload_id"])
	assert.NotContains(t, resp.Results[0], "error")
	assert.Equal(t, codeUnsupportedType, resp.Results[1]["error"])
	assert.NotContains(t, resp.Results[1], "upload_id")
}

func TestInitiateBulk_FailFastKeepsEarlierEntries(t *testing.T) {
	svc := &fakeUploads{bulkFn: func(reqs []models.UploadRequest) ([]models.BulkResult, error) {
		first, _ := singlePut(reqs[0])
		return []models.BulkResult{
			{Upload: first},
			{Err: fmt.Errorf("%w: .exe", common.ErrUnsupportedType)},
		}, nil
	}}

	rec := serve(t, newRoutes(svc, ""), http.MethodPost, "/api/v1/bulk-upload", `{"uploads":[
		{"filename":"a.mp4","file_size":1,"content_type":"video/mp4"},
		{"filename":"x.exe","file_size":1,"content_type":"application/octet-stream"},
		{"filename":"c.mp4","file_size":1,"content_type":"video/mp4"}
	]}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	resp := decodeBody[struct {
		Results []map[string]any `json:"results"`
	}](t, rec)
	require.Len(t, resp.Results, 2)
	assert.Equal(t, uploadID, resp.Results[0]["upload_id"])
	assert.Equal(t, "https://s3/put", resp.Results[0]["presigned_url"])
	assert.Equal(t, codeUnsupportedType, resp.Results[1]["error"])
	assert.Contains(t, resp.Results[1]["message"], ".exe")
}

func TestInitiateBulk_CancelledMapsError(t *testing.T) {
	svc := &fakeUploads{bulkFn: func([]models.UploadRequest) ([]models.BulkResult, error) {
		return nil, context.Canceled
	}}

	rec := serve(t, newRoutes(svc, ""), http.MethodPost, "/api/v1/bulk-upload",
		`{"uploads":[{"filename":"x.mp4","file_size":1,"content_type":"video/mp4"}]}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, codeInternal, decodeBody[ErrorResponse](t, rec).Error)
}

func TestInitiateBulk_EmptyRejected(t *testing.T) {
	rec := serve(t, newRoutes(&fakeUploads{}, ""), http.MethodPost, "/api/v1/bulk-upload", `{"uploads":[]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPartURL(t *testing.T) {
	svc := &fakeUploads{partFn: func(id string, n int32) (string, error) {
		switch {
		case id != uploadID:
			return "", fmt.Errorf("%w: upload %s", common.ErrNotFound, id)
		case n > objectstore.MaxPartNumber:
			return "", common.ErrInvalidPartNumber
		}
		return fmt.Sprintf("https://s3/part?n=%d", n), nil
	}}
	h := newRoutes(svc, "")

	rec := serve(t, h, http.MethodGet, "/api/v1/"+uploadID+"/part/3", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, PartURLResponse{UploadID: uploadID, PartNumber: 3, PresignedURL: "https://s3/part?n=3"},
		decodeBody[PartURLResponse](t, rec))

	assert.Equal(t, http.StatusNotFound, serve(t, h, http.MethodGet, "/api/v1/other/part/1", "").Code)
	assert.Equal(t, http.StatusBadRequest, serve(t, h, http.MethodGet, "/api/v1/"+uploadID+"/part/abc", "").Code)
	assert.Equal(t, http.StatusBadRequest, serve(t, h, http.MethodGet, "/api/v1/"+uploadID+"/part/10001", "").Code)
	assert.Equal(t, http.StatusMethodNotAllowed, serve(t, h, http.MethodPost, "/api/v1/"+uploadID+"/part/1", "").Code)
}

func TestComplete(t *testing.T) {
	var gotParts []objectstore.Part
	svc := &fakeUploads{completeFn: func(id string, parts []objectstore.Part) (*models.CompletedUpload, error) {
		gotParts = parts
		return &models.CompletedUpload{UploadID: id, Status: models.StatusUploaded, Location: "https://media.s3/key"}, nil
	}}

	rec := serve(t, newRoutes(svc, ""), http.MethodPost, "/api/v1/"+uploadID+"/complete",
		`{"parts":[{"part_number":2,"etag":"\"b\""},{"part_number":1,"etag":"\"a\""}]}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, CompleteResponse{Status: "uploaded", Location: "https://media.s3/key"}, decodeBody[CompleteResponse](t, rec))
	assert.Equal(t, []objectstore.Part{{Number: 2, ETag: `"b"`}, {Number: 1, ETag: `"a"`}}, gotParts)
}

func TestComplete_Errors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		err        error
		wantStatus int
	}{
		{"no parts", `{"parts":[]}`, nil, http.StatusBadRequest},
		{"missing etag", `{"parts":[{"part_number":1}]}`, nil, http.StatusBadRequest},
		{"not multipart", `{"parts":[{"part_number":1,"etag":"x"}]}`, common.ErrNotFound, http.StatusNotFound},
		{"rejected parts", `{"parts":[{"part_number":1,"etag":"x"}]}`, fmt.Errorf("complete: %w", common.ErrInvalidParts), http.StatusConflict},
		{"unknown failure", `{"parts":[{"part_number":1,"etag":"x"}]}`, errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeUploads{completeFn: func(string, []objectstore.Part) (*models.CompletedUpload, error) {
				return nil, tt.err
			}}
			rec := serve(t, newRoutes(svc, ""), http.MethodPost, "/api/v1/"+uploadID+"/complete", tt.body)
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestHealth(t *testing.T) {
	h := NewHandler(&fakeUploads{}, fakePinger{}, logging.Nop{}).Routes("secret")
	rec := serve(t, h, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, HealthResponse{Status: "healthy", Service: "upload-service"}, decodeBody[HealthResponse](t, rec))

	h = NewHandler(&fakeUploads{}, fakePinger{err: errors.New("db down")}, logging.Nop{}).Routes("")
	rec = serve(t, h, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "unhealthy", decodeBody[HealthResponse](t, rec).Status)
}

func TestAuth(t *testing.T) {
	secret := "s3cr3t"
	svc := &fakeUploads{partFn: func(string, int32) (string, error) { return "https://s3/part", nil }}
	h := newRoutes(svc, secret)
	path := "/api/v1/" + uploadID + "/part/1"

	valid, err := auth.GenerateToken("ci-bot", []byte(secret), time.Minute)
	require.NoError(t, err)
	expired, err := auth.GenerateToken("ci-bot", []byte(secret), -time.Minute)
	require.NoError(t, err)
	foreign, err := auth.GenerateToken("ci-bot", []byte("other"), time.Minute)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized},
		{"expired", "Bearer " + expired, http.StatusUnauthorized},
		{"wrong key", "Bearer " + foreign, http.StatusUnauthorized},
		{"valid", "Bearer " + valid, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var rec *httptest.ResponseRecorder
			if tt.header == "" {
				rec = serve(t, h, http.MethodGet, path, "")
			} else {
				rec = serve(t, h, http.MethodGet, path, "", common.AuthorizationHeaderName, tt.header)
			}
			assert.Equal(t, tt.want, rec.Code)
			if tt.want == http.StatusUnauthorized {
				assert.Equal(t, codeUnauthorized, decodeBody[ErrorResponse](t, rec).Error)
			}
		})
	}
}

func TestRequireToken_StoresSubject(t *testing.T) {
	secret := []byte("k")
	token, err := auth.GenerateToken("alice", secret, time.Minute)
	require.NoError(t, err)

	var subject string
	h := requireToken(secret, logging.Nop{})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		subject, _ = SubjectFromContext(r.Context())
	}))

	serve(t, h, http.MethodGet, "/", "", common.AuthorizationHeaderName, "Bearer "+token)
	assert.Equal(t, "alice", subject)
}
