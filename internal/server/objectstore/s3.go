package objectstore

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/dmitrijs2005/mediaupload/internal/common"
	"github.com/dmitrijs2005/mediaupload/internal/logging"
)

// Config is the immutable object-store configuration.
//
// Fields:
//   - Region / Bucket: target bucket.
//   - AccessKeyID / SecretAccessKey / SessionToken: static credentials; when the
//     key pair is empty the default AWS credential chain is used.
//   - BaseEndpoint / UsePathStyle: for S3-compatible stores such as MinIO.
//   - KMSKeyID: when set, objects are written with aws:kms server-side encryption.
type Config struct {
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string
	BaseEndpoint    string
	UsePathStyle    bool
	KMSKeyID        string
}

// s3API is the subset of *s3.Client used by the gateway.
type s3API interface {
	CreateMultipartUpload(ctx context.Context, in *s3.CreateMultipartUploadInput, optFns ...func(*s3.Options)) (*s3.CreateMultipartUploadOutput, error)
	CompleteMultipartUpload(ctx context.Context, in *s3.CompleteMultipartUploadInput, optFns ...func(*s3.Options)) (*s3.CompleteMultipartUploadOutput, error)
	AbortMultipartUpload(ctx context.Context, in *s3.AbortMultipartUploadInput, optFns ...func(*s3.Options)) (*s3.AbortMultipartUploadOutput, error)
	ListMultipartUploads(ctx context.Context, in *s3.ListMultipartUploadsInput, optFns ...func(*s3.Options)) (*s3.ListMultipartUploadsOutput, error)
}

// presignAPI is the subset of *s3.PresignClient used by the gateway.
type presignAPI interface {
	PresignPutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
	PresignUploadPart(ctx context.Context, in *s3.UploadPartInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}
)

// S3Gateway implements Gateway on top of aws-sdk-go-v2.
type S3Gateway struct {
	cfg     Config
	client  s3API
	presign presignAPI
	logger  logging.Logger
}

var _ Gateway = (*S3Gateway)(nil)

// NewS3Gateway builds the S3 client once from cfg. The returned gateway is
// safe for concurrent use.
func NewS3Gateway(ctx context.Context, cfg Config, logger logging.Logger) (*S3Gateway, error) {
	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			cfg.SessionToken,
		)))
	}

	awsCfg, err := loadDefaultAWSConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := newS3ClientFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.BaseEndpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})

	return newS3Gateway(cfg, client, s3.NewPresignClient(client), logger), nil
}

func newS3Gateway(cfg Config, client s3API, presign presignAPI, logger logging.Logger) *S3Gateway {
	return &S3Gateway{
		cfg:     cfg,
		client:  client,
		presign: presign,
		logger:  logger.With("module", "objectstore", "bucket", cfg.Bucket),
	}
}

func (g *S3Gateway) Bucket() string {
	return g.cfg.Bucket
}

func (g *S3Gateway) PresignPut(ctx context.Context, key, contentType string, expiry time.Duration) (string, error) {
	in := &s3.PutObjectInput{
		Bucket:      aws.String(g.cfg.Bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}
	if g.cfg.KMSKeyID != "" {
		in.ServerSideEncryption = types.ServerSideEncryptionAwsKms
		in.SSEKMSKeyId = aws.String(g.cfg.KMSKeyID)
	}

	req, err := g.presign.PresignPutObject(ctx, in, s3.WithPresignExpires(expiry))
	if err != nil {
		g.logger.Error(ctx, "presign put failed", "key", key, "error", err)
		return "", fmt.Errorf("presign put %s: %w: %w", key, common.ErrStoreUnavailable, err)
	}

	g.logger.Debug(ctx, "presigned single put", "key", key)
	return req.URL, nil
}

func (g *S3Gateway) OpenMultipart(ctx context.Context, key, contentType string) (string, error) {
	in := &s3.CreateMultipartUploadInput{
		Bucket:      aws.String(g.cfg.Bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}
	if g.cfg.KMSKeyID != "" {
		in.ServerSideEncryption = types.ServerSideEncryptionAwsKms
		in.SSEKMSKeyId = aws.String(g.cfg.KMSKeyID)
	}

	out, err := g.client.CreateMultipartUpload(ctx, in)
	if err != nil {
		g.logger.Error(ctx, "create multipart upload failed", "key", key, "error", err)
		return "", fmt.Errorf("create multipart upload %s: %w: %w", key, common.ErrStoreUnavailable, err)
	}

	sessionID := aws.ToString(out.UploadId)
	if sessionID == "" {
		return "", fmt.Errorf("create multipart upload %s: %w: empty upload id", key, common.ErrStoreUnavailable)
	}

	g.logger.Info(ctx, "multipart upload opened", "key", key, "session_id", sessionID)
	return sessionID, nil
}

func (g *S3Gateway) PresignPart(ctx context.Context, key, sessionID string, partNumber int32, expiry time.Duration) (string, error) {
	if partNumber < 1 || partNumber > MaxPartNumber {
		return "", fmt.Errorf("%w: %d (must be 1-%d)", common.ErrInvalidPartNumber, partNumber, MaxPartNumber)
	}

	req, err := g.presign.PresignUploadPart(ctx, &s3.UploadPartInput{
		Bucket:     aws.String(g.cfg.Bucket),
		Key:        aws.String(key),
		UploadId:   aws.String(sessionID),
		PartNumber: aws.Int32(partNumber),
	}, s3.WithPresignExpires(expiry))
	if err != nil {
		g.logger.Error(ctx, "presign part failed", "key", key, "part_number", partNumber, "error", err)
		return "", fmt.Errorf("presign part %d of %s: %w: %w", partNumber, key, common.ErrStoreUnavailable, err)
	}

	return req.URL, nil
}

func (g *S3Gateway) CompleteMultipart(ctx context.Context, key, sessionID string, parts []Part) (string, error) {
	sorted := slices.Clone(parts)
	slices.SortStableFunc(sorted, func(a, b Part) int { return cmp.Compare(a.Number, b.Number) })

	completed := make([]types.CompletedPart, 0, len(sorted))
	for _, p := range sorted {
		completed = append(completed, types.CompletedPart{
			PartNumber: aws.Int32(p.Number),
			ETag:       aws.String(p.ETag),
		})
	}

	out, err := g.client.CompleteMultipartUpload(ctx, &s3.CompleteMultipartUploadInput{
		Bucket:          aws.String(g.cfg.Bucket),
		Key:             aws.String(key),
		UploadId:        aws.String(sessionID),
		MultipartUpload: &types.CompletedMultipartUpload{Parts: completed},
	})
	if err != nil {
		g.logger.Error(ctx, "complete multipart upload failed", "key", key, "session_id", sessionID, "error", err)
		if isPartRejection(err) {
			return "", fmt.Errorf("complete multipart upload %s: %w: %w", key, common.ErrInvalidParts, err)
		}
		return "", fmt.Errorf("complete multipart upload %s: %w: %w", key, common.ErrStoreUnavailable, err)
	}

	location := aws.ToString(out.Location)
	if location == "" {
		location = fmt.Sprintf("s3://%s/%s", g.cfg.Bucket, key)
	}

	g.logger.Info(ctx, "multipart upload completed", "key", key, "session_id", sessionID, "parts", len(parts))
	return location, nil
}

func (g *S3Gateway) AbortMultipart(ctx context.Context, key, sessionID string) {
	_, err := g.client.AbortMultipartUpload(ctx, &s3.AbortMultipartUploadInput{
		Bucket:   aws.String(g.cfg.Bucket),
		Key:      aws.String(key),
		UploadId: aws.String(sessionID),
	})
	if err != nil {
		g.logger.Error(ctx, "abort multipart upload failed", "key", key, "session_id", sessionID, "error", err)
		return
	}
	g.logger.Info(ctx, "multipart upload aborted", "key", key, "session_id", sessionID)
}

func (g *S3Gateway) ListMultipart(ctx context.Context, prefix string) ([]Session, error) {
	in := &s3.ListMultipartUploadsInput{
		Bucket: aws.String(g.cfg.Bucket),
		Prefix: aws.String(prefix),
	}

	var sessions []Session
	for {
		out, err := g.client.ListMultipartUploads(ctx, in)
		if err != nil {
			return nil, fmt.Errorf("list multipart uploads: %w: %w", common.ErrStoreUnavailable, err)
		}
		for _, u := range out.Uploads {
			sessions = append(sessions, Session{
				Key:       aws.ToString(u.Key),
				ID:        aws.ToString(u.UploadId),
				Initiated: aws.ToTime(u.Initiated),
			})
		}
		if !aws.ToBool(out.IsTruncated) {
			return sessions, nil
		}
		in.KeyMarker = out.NextKeyMarker
		in.UploadIdMarker = out.NextUploadIdMarker
	}
}

// partRejectionCodes are the S3 error codes meaning the caller's part list is
// wrong rather than the store being unavailable.
var partRejectionCodes = []string{
	"InvalidPart",
	"InvalidPartOrder",
	"EntityTooSmall",
	"NoSuchUpload",
	"MalformedXML",
}

func isPartRejection(err error) bool {
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return slices.Contains(partRejectionCodes, apiErr.ErrorCode())
}
