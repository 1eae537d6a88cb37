// Package services contains server-side business logic. UploadService is the
// upload orchestrator: it validates requests, picks single PUT or multipart,
// talks to the object store and keeps the content inventory in step.
package services

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/mediaupload/internal/common"
	"github.com/dmitrijs2005/mediaupload/internal/dbx"
	"github.com/dmitrijs2005/mediaupload/internal/logging"
	"github.com/dmitrijs2005/mediaupload/internal/server/models"
	"github.com/dmitrijs2005/mediaupload/internal/server/objectstore"
	"github.com/dmitrijs2005/mediaupload/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/mediaupload/internal/server/validation"
	"github.com/google/uuid"
)

// Options are the orchestration knobs taken from configuration.
type Options struct {
	// MultipartThreshold is the size in bytes at and above which uploads go
	// multipart.
	MultipartThreshold int64
	PresignExpiry      time.Duration
	// BulkFailFast stops a bulk initiation at the first failing entry.
	BulkFailFast bool
}

type UploadService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	gateway     objectstore.Gateway
	validator   *validation.Validator
	opts        Options
	logger      logging.Logger

	now   func() time.Time
	newID func() uuid.UUID
}

func NewUploadService(
	db *sql.DB,
	m repomanager.RepositoryManager,
	gateway objectstore.Gateway,
	validator *validation.Validator,
	opts Options,
	logger logging.Logger,
) *UploadService {
	return &UploadService{
		db:          db,
		repomanager: m,
		gateway:     gateway,
		validator:   validator,
		opts:        opts,
		logger:      logger.With("module", "upload_service"),
		now:         time.Now,
		newID:       uuid.New,
	}
}

// ObjectKey builds the storage key for an upload: a UTC date partition, the
// upload id and the original filename.
func ObjectKey(at time.Time, id uuid.UUID, filename string) string {
	return fmt.Sprintf("%s%s/%s/%s", common.IncomingPrefix, at.UTC().Format("20060102"), id, filename)
}

// Initiate validates req, opens the transfer in the object store and records
// the upload together with its pending component rows.
//
// Nothing is written and the store is not called when validation fails. If
// the store call succeeds but persistence fails, the store-side resource is
// left behind for the sweeper and the error wraps common.ErrInternal.
func (s *UploadService) Initiate(ctx context.Context, req models.UploadRequest) (*models.InitiatedUpload, error) {
	if err := checkRequest(req); err != nil {
		return nil, err
	}
	category, err := s.validator.Validate(req.Filename, req.Size)
	if err != nil {
		s.logger.Info(ctx, "upload rejected", "filename", req.Filename, "size", req.Size, "error", err)
		return nil, err
	}
	if hint := s.validator.ContentTypeHint(req.Filename, req.ContentType); hint != "" {
		s.logger.Warn(ctx, "content type mismatch", "filename", req.Filename, "hint", hint)
	}

	id := s.newID()
	key := ObjectKey(s.now(), id, req.Filename)
	log := s.logger.With("upload_id", id.String(), "object_key", key)

	upload := &models.Upload{
		ContentID:        id.String(),
		SourceBucket:     s.gateway.Bucket(),
		SourceKey:        key,
		OriginalFilename: req.Filename,
		SizeBytes:        req.Size,
		MimeType:         req.ContentType,
		MetadataHash:     MetadataHash(req.Filename, req.Size, req.ContentType),
		Status:           models.StatusPending,
		ProcessingConfig: req.ProcessingConfig,
	}

	var transfer models.Transfer
	if req.Size >= s.opts.MultipartThreshold {
		sessionID, err := s.gateway.OpenMultipart(ctx, key, req.ContentType)
		if err != nil {
			log.Error(ctx, "open multipart failed", "error", err)
			return nil, fmt.Errorf("initiate %s: %w", req.Filename, err)
		}
		upload.MultipartSessionID = sessionID
		transfer = models.Multipart{SessionID: sessionID}
	} else {
		url, err := s.gateway.PresignPut(ctx, key, req.ContentType, s.opts.PresignExpiry)
		if err != nil {
			log.Error(ctx, "presign put failed", "error", err)
			return nil, fmt.Errorf("initiate %s: %w", req.Filename, err)
		}
		transfer = models.SinglePut{URL: url}
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.Uploads(tx).Create(ctx, upload); err != nil {
			return err
		}
		return s.repomanager.Components(tx).CreatePending(ctx, upload.ContentID, models.Components)
	})
	if err != nil {
		log.Error(ctx, "persist upload failed, store resource orphaned",
			"session_id", upload.MultipartSessionID, "error", err)
		return nil, fmt.Errorf("%w: persist upload %s: %w", common.ErrInternal, upload.ContentID, err)
	}

	log.Info(ctx, "upload initiated",
		"category", string(category), "size", req.Size, "multipart", upload.IsMultipart())

	return &models.InitiatedUpload{
		UploadID:  upload.ContentID,
		ObjectKey: key,
		Transfer:  transfer,
		ExpiresIn: int64(s.opts.PresignExpiry / time.Second),
	}, nil
}

// InitiateBulk runs Initiate for every request, sequentially and in order.
// There is no atomicity across the batch, so every entry that was initiated
// is reported. In tolerant mode every entry gets a result. In fail-fast mode
// the failing entry is the last result and later entries are not attempted.
// The returned error is only set when ctx ends the batch.
func (s *UploadService) InitiateBulk(ctx context.Context, reqs []models.UploadRequest) ([]models.BulkResult, error) {
	results := make([]models.BulkResult, 0, len(reqs))
	for i, req := range reqs {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		upload, err := s.Initiate(ctx, req)
		results = append(results, models.BulkResult{Upload: upload, Err: err})
		if err != nil && s.opts.BulkFailFast {
			s.logger.Warn(ctx, "bulk initiation stopped",
				"entry", i, "filename", req.Filename, "skipped", len(reqs)-i-1, "error", err)
			break
		}
	}
	return results, nil
}

// GetPartURL issues a pre-signed URL for one part of a multipart upload. The
// record is not modified.
func (s *UploadService) GetPartURL(ctx context.Context, uploadID string, partNumber int32) (string, error) {
	if partNumber < 1 || partNumber > objectstore.MaxPartNumber {
		return "", fmt.Errorf("%w: %d (must be 1-%d)", common.ErrInvalidPartNumber, partNumber, objectstore.MaxPartNumber)
	}

	upload, err := s.loadMultipart(ctx, s.repomanager.Uploads(s.db).Get, uploadID)
	if err != nil {
		return "", err
	}

	url, err := s.gateway.PresignPart(ctx, upload.SourceKey, upload.MultipartSessionID, partNumber, s.opts.PresignExpiry)
	if err != nil {
		s.logger.Error(ctx, "presign part failed", "upload_id", uploadID, "part_number", partNumber, "error", err)
		return "", err
	}
	return url, nil
}

// Complete merges the uploaded parts and marks the record uploaded. The record
// row is locked for the duration, so concurrent completions of one upload are
// serialized. Completing an upload that is already uploaded returns the stored
// location without calling the store.
func (s *UploadService) Complete(ctx context.Context, uploadID string, parts []objectstore.Part) (*models.CompletedUpload, error) {
	var result *models.CompletedUpload

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Uploads(tx)

		upload, err := s.loadMultipart(ctx, repo.GetForUpdate, uploadID)
		if err != nil {
			return err
		}

		if upload.Status == models.StatusUploaded {
			s.logger.Info(ctx, "upload already completed", "upload_id", uploadID)
			result = &models.CompletedUpload{UploadID: uploadID, Status: upload.Status, Location: upload.Location}
			return nil
		}

		location, err := s.gateway.CompleteMultipart(ctx, upload.SourceKey, upload.MultipartSessionID, parts)
		if err != nil {
			return err
		}

		if err := repo.MarkUploaded(ctx, uploadID, location, s.now().UTC()); err != nil {
			return fmt.Errorf("%w: mark uploaded: %w", common.ErrInternal, err)
		}

		result = &models.CompletedUpload{UploadID: uploadID, Status: models.StatusUploaded, Location: location}
		return nil
	})
	if err != nil {
		if !errors.Is(err, common.ErrNotFound) {
			s.logger.Error(ctx, "complete upload failed", "upload_id", uploadID, "parts", len(parts), "error", err)
		}
		return nil, err
	}

	s.logger.Info(ctx, "upload completed", "upload_id", uploadID, "location", result.Location)
	return result, nil
}

// loadMultipart fetches the record with get and fails with common.ErrNotFound
// unless it exists and has a multipart session. Ids that are not UUIDs cannot
// exist and are reported the same way.
func (s *UploadService) loadMultipart(ctx context.Context, get func(context.Context, string) (*models.Upload, error), uploadID string) (*models.Upload, error) {
	if _, err := uuid.Parse(uploadID); err != nil {
		return nil, fmt.Errorf("%w: upload %q", common.ErrNotFound, uploadID)
	}

	upload, err := get(ctx, uploadID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, fmt.Errorf("%w: upload %s", common.ErrNotFound, uploadID)
		}
		return nil, fmt.Errorf("load upload %s: %w", uploadID, err)
	}
	if !upload.IsMultipart() {
		return nil, fmt.Errorf("%w: upload %s has no active multipart session", common.ErrNotFound, uploadID)
	}
	return upload, nil
}

// checkRequest rejects shapes the validator does not cover.
func checkRequest(req models.UploadRequest) error {
	switch {
	case strings.TrimSpace(req.Filename) == "":
		return fmt.Errorf("%w: filename is required", common.ErrValidation)
	case strings.ContainsAny(req.Filename, `/\`) || req.Filename == "." || req.Filename == "..":
		return fmt.Errorf("%w: filename %q must not contain path separators", common.ErrValidation, req.Filename)
	case req.Size < 0:
		return fmt.Errorf("%w: file size must not be negative", common.ErrValidation)
	case strings.TrimSpace(req.ContentType) == "":
		return fmt.Errorf("%w: content type is required", common.ErrValidation)
	}

	if len(req.ProcessingConfig) > 0 {
		trimmed := bytes.TrimSpace(req.ProcessingConfig)
		if !json.Valid(trimmed) || len(trimmed) == 0 || trimmed[0] != '{' {
			return fmt.Errorf("%w: processing config must be a JSON object", common.ErrValidation)
		}
	}
	return nil
}
