package utils

import (
	"crypto/sha256"
	"encoding/hex"
)

// CalculateSHA256 computes the SHA-256 hash of an in-memory body.
func CalculateSHA256(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}
