package utils

import (
	"crypto/rand"
	"encoding/hex"

	"github.com/google/uuid"
)

// GenerateRequestID returns 16 hex characters
func GenerateRequestID() string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		id := uuid.New()
		copy(b, id[:8])
	}
	return hex.EncodeToString(b)
}

// GenerateCorrelationID returns a UUID for cross-service correlation
func GenerateCorrelationID() string {
	return uuid.New().String()
}
