package common

const (
	// AuthorizationHeaderName carries the API access token as "Bearer <token>".
	AuthorizationHeaderName = "Authorization"
	BearerPrefix            = "Bearer "

	// IncomingPrefix namespaces every object key issued for upload.
	IncomingPrefix = "incoming/"
)

// Byte size units.
const (
	KiB int64 = 1 << 10
	MiB int64 = 1 << 20
	GiB int64 = 1 << 30
)
