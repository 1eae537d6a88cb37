package services

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// MetadataHash is the duplicate-detection fingerprint of an upload: the hex
// sha256 of "name:size:type". Identical metadata from different files collides
// on purpose.
func MetadataHash(filename string, size int64, contentType string) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s:%d:%s", filename, size, contentType)))
	return hex.EncodeToString(sum[:])
}
