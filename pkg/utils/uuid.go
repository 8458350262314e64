package utils

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ParseUUID parses a string into a UUID
func ParseUUID(s string) (uuid.UUID, error) {
	return uuid.Parse(strings.TrimSpace(s))
}

// GenerateReceiptNo returns a receipt number of the form RC-20260117-1A2B3C4D.
// The date part uses the clinic's local calendar day.
func GenerateReceiptNo(issuedAt time.Time) string {
	return "RC-" + issuedAt.Format("20060102") + "-" + strings.ToUpper(uuid.New().String()[:8])
}

// RandomState returns an unguessable value for the OAuth state parameter.
func RandomState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
