package config

import (
	"flag"

	"github.com/dmitrijs2005/mediaupload/internal/flagx"
)

// knownFlags are the flags parseFlags owns; everything else on the command
// line is ignored here.
var knownFlags = []string{
	"-a", "-g", "-d", "-s", "-b", "-r", "-e", "-k", "-l",
	"-presign-expiry", "-multipart-threshold", "-max-file-size",
	"-bulk-fail-fast", "-sweep-interval", "-path-style",
}

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags:
//
//	-a string                HTTP bind address (e.g. ":8080")
//	-g string                gRPC health bind address
//	-d string                PostgreSQL DSN
//	-s string                JWT HMAC secret key
//	-b string                S3 bucket
//	-r string                S3 region
//	-e string                S3 base endpoint (e.g. "http://127.0.0.1:9000")
//	-k string                KMS key id
//	-l string                log level
//	-presign-expiry dur      pre-signed URL validity
//	-multipart-threshold n   bytes at which uploads go multipart
//	-max-file-size n         global size ceiling in bytes
//	-bulk-fail-fast          stop bulk initiation at the first error
//	-sweep-interval dur      reconciliation interval, 0 disables
//	-path-style              path-style S3 addressing
//
// The -c / -config flag is consumed by parseFile.
func parseFlags(config *Config, args []string) error {
	args = flagx.FilterArgs(args, knownFlags)

	fs := flag.NewFlagSet("server", flag.ContinueOnError)

	fs.StringVar(&config.HTTPAddr, "a", config.HTTPAddr, "HTTP address and port to run server")
	fs.StringVar(&config.GRPCAddr, "g", config.GRPCAddr, "gRPC health address and port")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "r", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")
	fs.StringVar(&config.KMSKeyID, "k", config.KMSKeyID, "KMS key id for server-side encryption")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level (debug, info, warn, error)")

	fs.DurationVar(&config.PresignExpiry, "presign-expiry", config.PresignExpiry, "pre-signed URL validity")
	fs.Int64Var(&config.MultipartThreshold, "multipart-threshold", config.MultipartThreshold, "multipart threshold in bytes")
	fs.Int64Var(&config.MaxFileSize, "max-file-size", config.MaxFileSize, "global size ceiling in bytes")
	fs.BoolVar(&config.BulkFailFast, "bulk-fail-fast", config.BulkFailFast, "stop bulk initiation at the first error")
	fs.DurationVar(&config.SweepInterval, "sweep-interval", config.SweepInterval, "sweep interval, 0 disables")
	fs.BoolVar(&config.S3UsePathStyle, "path-style", config.S3UsePathStyle, "use path-style S3 addressing")

	return fs.Parse(args)
}
