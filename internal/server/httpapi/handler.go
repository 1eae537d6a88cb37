// Package httpapi exposes the upload orchestrator over HTTP/JSON under
// /api/v1, plus an unauthenticated /health probe.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/dmitrijs2005/mediaupload/internal/common"
	"github.com/dmitrijs2005/mediaupload/internal/logging"
	"github.com/dmitrijs2005/mediaupload/internal/server/models"
	"github.com/dmitrijs2005/mediaupload/internal/server/objectstore"
	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
)

const (
	serviceName  = "upload-service"
	maxBodyBytes = 1 << 20
)

// UploadService is the orchestrator as seen by the API.
type UploadService interface {
	Initiate(ctx context.Context, req models.UploadRequest) (*models.InitiatedUpload, error)
	InitiateBulk(ctx context.Context, reqs []models.UploadRequest) ([]models.BulkResult, error)
	GetPartURL(ctx context.Context, uploadID string, partNumber int32) (string, error)
	Complete(ctx context.Context, uploadID string, parts []objectstore.Part) (*models.CompletedUpload, error)
}

// Pinger reports database reachability. *sql.DB satisfies it.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type Handler struct {
	uploads  UploadService
	db       Pinger
	validate *validator.Validate
	logger   logging.Logger
}

func NewHandler(uploads UploadService, db Pinger, logger logging.Logger) *Handler {
	return &Handler{
		uploads:  uploads,
		db:       db,
		validate: validator.New(),
		logger:   logger,
	}
}

// Routes registers the API on a new mux. A non-empty secretKey puts
// /api/v1 behind bearer-token auth.
func (h *Handler) Routes(secretKey string) http.Handler {
	api := http.NewServeMux()
	api.HandleFunc("POST /api/v1/upload", h.initiate)
	api.HandleFunc("POST /api/v1/bulk-upload", h.initiateBulk)
	api.HandleFunc("GET /api/v1/{upload_id}/part/{part_number}", h.partURL)
	api.HandleFunc("POST /api/v1/{upload_id}/complete", h.complete)

	var protected http.Handler = api
	if secretKey != "" {
		protected = requireToken([]byte(secretKey), h.logger)(api)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", h.health)
	mux.Handle("/api/v1/", protected)

	return logRequests(h.logger)(mux)
}

func (h *Handler) initiate(w http.ResponseWriter, r *http.Request) {
	var req UploadRequest
	if err := h.decode(w, r, &req); err != nil {
		h.fail(w, r, "initiate", err)
		return
	}

	upload, err := h.uploads.Initiate(r.Context(), req.toModel())
	if err != nil {
		h.fail(w, r, "initiate", err)
		return
	}
	writeJSON(w, http.StatusCreated, toUploadResponse(upload))
}

func (h *Handler) initiateBulk(w http.ResponseWriter, r *http.Request) {
	var req BulkUploadRequest
	if err := h.decode(w, r, &req); err != nil {
		h.fail(w, r, "initiate_bulk", err)
		return
	}

	reqs := lo.Map(req.Uploads, func(u UploadRequest, _ int) models.UploadRequest { return u.toModel() })
	results, err := h.uploads.InitiateBulk(r.Context(), reqs)
	if err != nil {
		h.fail(w, r, "initiate_bulk", err)
		return
	}
	writeJSON(w, http.StatusCreated, BulkUploadResponse{Results: toBulkResults(results)})
}

func (h *Handler) partURL(w http.ResponseWriter, r *http.Request) {
	uploadID := r.PathValue("upload_id")
	n, err := strconv.ParseInt(r.PathValue("part_number"), 10, 32)
	if err != nil {
		h.fail(w, r, "part_url", fmt.Errorf("%w: %q", common.ErrInvalidPartNumber, r.PathValue("part_number")))
		return
	}

	url, err := h.uploads.GetPartURL(r.Context(), uploadID, int32(n))
	if err != nil {
		h.fail(w, r, "part_url", err)
		return
	}
	writeJSON(w, http.StatusOK, PartURLResponse{UploadID: uploadID, PartNumber: int32(n), PresignedURL: url})
}

func (h *Handler) complete(w http.ResponseWriter, r *http.Request) {
	var req CompleteRequest
	if err := h.decode(w, r, &req); err != nil {
		h.fail(w, r, "complete", err)
		return
	}

	done, err := h.uploads.Complete(r.Context(), r.PathValue("upload_id"), toParts(req.Parts))
	if err != nil {
		h.fail(w, r, "complete", err)
		return
	}
	writeJSON(w, http.StatusOK, CompleteResponse{Status: string(done.Status), Location: done.Location})
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	if err := h.db.PingContext(r.Context()); err != nil {
		h.logger.Error(r.Context(), "health check failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, HealthResponse{Status: "unhealthy", Service: serviceName})
		return
	}
	writeJSON(w, http.StatusOK, HealthResponse{Status: "healthy", Service: serviceName})
}

// fail logs err with the request's upload id and writes the mapped error
// response. Caller mistakes are logged at warn level.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	args := []any{"op", op, "error", err}
	if id := r.PathValue("upload_id"); id != "" {
		args = append(args, "upload_id", id)
	}
	if common.IsClientError(err) || errors.Is(err, common.ErrNotFound) {
		h.logger.Warn(r.Context(), "request rejected", args...)
	} else {
		h.logger.Error(r.Context(), "request failed", args...)
	}
	writeError(w, err)
}

// decode reads a JSON body into v and validates it. Failures wrap
// common.ErrValidation.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: malformed request body: %w", common.ErrValidation, err)
	}
	if err := h.validate.Struct(v); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("%w: field %s failed %q check", common.ErrValidation, verrs[0].Namespace(), verrs[0].Tag())
		}
		return fmt.Errorf("%w: %w", common.ErrValidation, err)
	}
	return nil
}
