package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/mediaupload/internal/flagx"
	"github.com/dmitrijs2005/mediaupload/internal/timex"
	"gopkg.in/yaml.v3"
)

// FileConfig is the on-disk shape of Config. Durations use timex.Duration so
// both "15m" and integer nanoseconds are accepted.
//
// A file only overrides the keys it contains: it is decoded over a FileConfig
// already holding the current values.
type FileConfig struct {
	HTTPAddr                    string         `json:"http_addr" yaml:"http_addr"`
	GRPCAddr                    string         `json:"grpc_addr" yaml:"grpc_addr"`
	DatabaseDSN                 string         `json:"database_dsn" yaml:"database_dsn"`
	SecretKey                   string         `json:"secret_key" yaml:"secret_key"`
	AccessTokenValidityDuration timex.Duration `json:"access_token_validity_duration" yaml:"access_token_validity_duration"`
	S3AccessKeyID               string         `json:"s3_access_key_id" yaml:"s3_access_key_id"`
	S3SecretAccessKey           string         `json:"s3_secret_access_key" yaml:"s3_secret_access_key"`
	S3SessionToken              string         `json:"s3_session_token" yaml:"s3_session_token"`
	S3Bucket                    string         `json:"s3_bucket" yaml:"s3_bucket"`
	S3Region                    string         `json:"s3_region" yaml:"s3_region"`
	S3BaseEndpoint              string         `json:"s3_base_endpoint" yaml:"s3_base_endpoint"`
	S3UsePathStyle              bool           `json:"s3_use_path_style" yaml:"s3_use_path_style"`
	KMSKeyID                    string         `json:"kms_key_id" yaml:"kms_key_id"`
	PresignExpiry               timex.Duration `json:"presign_expiry" yaml:"presign_expiry"`
	MultipartThreshold          int64          `json:"multipart_threshold" yaml:"multipart_threshold"`
	MaxFileSize                 int64          `json:"max_file_size" yaml:"max_file_size"`
	MaxVideoSize                int64          `json:"max_video_size" yaml:"max_video_size"`
	MaxAudioSize                int64          `json:"max_audio_size" yaml:"max_audio_size"`
	MaxImageSize                int64          `json:"max_image_size" yaml:"max_image_size"`
	MaxTextSize                 int64          `json:"max_text_size" yaml:"max_text_size"`
	BulkFailFast                bool           `json:"bulk_fail_fast" yaml:"bulk_fail_fast"`
	SweepInterval               timex.Duration `json:"sweep_interval" yaml:"sweep_interval"`
	SweepOrphanGrace            timex.Duration `json:"sweep_orphan_grace" yaml:"sweep_orphan_grace"`
	SweepStaleAfter             timex.Duration `json:"sweep_stale_after" yaml:"sweep_stale_after"`
	LogLevel                    string         `json:"log_level" yaml:"log_level"`
}

func toFile(c *Config) FileConfig {
	return FileConfig{
		HTTPAddr:                    c.HTTPAddr,
		GRPCAddr:                    c.GRPCAddr,
		DatabaseDSN:                 c.DatabaseDSN,
		SecretKey:                   c.SecretKey,
		AccessTokenValidityDuration: timex.Duration{Duration: c.AccessTokenValidityDuration},
		S3AccessKeyID:               c.S3AccessKeyID,
		S3SecretAccessKey:           c.S3SecretAccessKey,
		S3SessionToken:              c.S3SessionToken,
		S3Bucket:                    c.S3Bucket,
		S3Region:                    c.S3Region,
		S3BaseEndpoint:              c.S3BaseEndpoint,
		S3UsePathStyle:              c.S3UsePathStyle,
		KMSKeyID:                    c.KMSKeyID,
		PresignExpiry:               timex.Duration{Duration: c.PresignExpiry},
		MultipartThreshold:          c.MultipartThreshold,
		MaxFileSize:                 c.MaxFileSize,
		MaxVideoSize:                c.MaxVideoSize,
		MaxAudioSize:                c.MaxAudioSize,
		MaxImageSize:                c.MaxImageSize,
		MaxTextSize:                 c.MaxTextSize,
		BulkFailFast:                c.BulkFailFast,
		SweepInterval:               timex.Duration{Duration: c.SweepInterval},
		SweepOrphanGrace:            timex.Duration{Duration: c.SweepOrphanGrace},
		SweepStaleAfter:             timex.Duration{Duration: c.SweepStaleAfter},
		LogLevel:                    c.LogLevel,
	}
}

func (f FileConfig) apply(c *Config) {
	c.HTTPAddr = f.HTTPAddr
	c.GRPCAddr = f.GRPCAddr
	c.DatabaseDSN = f.DatabaseDSN
	c.SecretKey = f.SecretKey
	c.AccessTokenValidityDuration = f.AccessTokenValidityDuration.Duration
	c.S3AccessKeyID = f.S3AccessKeyID
	c.S3SecretAccessKey = f.S3SecretAccessKey
	c.S3SessionToken = f.S3SessionToken
	c.S3Bucket = f.S3Bucket
	c.S3Region = f.S3Region
	c.S3BaseEndpoint = f.S3BaseEndpoint
	c.S3UsePathStyle = f.S3UsePathStyle
	c.KMSKeyID = f.KMSKeyID
	c.PresignExpiry = f.PresignExpiry.Duration
	c.MultipartThreshold = f.MultipartThreshold
	c.MaxFileSize = f.MaxFileSize
	c.MaxVideoSize = f.MaxVideoSize
	c.MaxAudioSize = f.MaxAudioSize
	c.MaxImageSize = f.MaxImageSize
	c.MaxTextSize = f.MaxTextSize
	c.BulkFailFast = f.BulkFailFast
	c.SweepInterval = f.SweepInterval.Duration
	c.SweepOrphanGrace = f.SweepOrphanGrace.Duration
	c.SweepStaleAfter = f.SweepStaleAfter.Duration
	c.LogLevel = f.LogLevel
}

// parseFile overlays the file named by -c / -config onto config. Files ending
// in .yaml or .yml are read as YAML, anything else as JSON.
func parseFile(config *Config, args []string) error {
	path := flagx.ConfigFileFlag(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	fc := toFile(config)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &fc)
	default:
		err = json.Unmarshal(data, &fc)
	}
	if err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	fc.apply(config)
	return nil
}

const redacted = "***"

// YAML renders the effective configuration with secrets redacted.
func (c *Config) YAML() ([]byte, error) {
	fc := toFile(c)
	for _, s := range []*string{&fc.SecretKey, &fc.S3SecretAccessKey, &fc.S3SessionToken} {
		if *s != "" {
			*s = redacted
		}
	}
	return yaml.Marshal(fc)
}

