package model

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"apivro/internal/domain"
)

// APIKeyPrefix is the fixed prefix every raw key starts with.
const APIKeyPrefix = "apivro"

// APIKey authorises sends for exactly one device. Only the digest of the
// secret is stored; revocation is a one-way flip of IsActive.
type APIKey struct {
	ID         string
	UserID     string
	DeviceID   string
	Name       string
	KeyHash    string
	KeyPrefix  string // first characters of the raw key, for display
	IsActive   bool
	LastUsedAt *time.Time
	CreatedAt  time.Time
}

// HashAPIKey returns the hex SHA-256 digest of a raw key.
func HashAPIKey(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// HasAPIKeyFormat checks the prefix convention only.
func HasAPIKeyFormat(raw string) bool {
	return strings.HasPrefix(raw, APIKeyPrefix) && len(raw) > len(APIKeyPrefix)
}

// GenerateAPIKey builds a fresh raw key and its stored record.
// The raw key is returned once and never persisted.
func GenerateAPIKey(id, userID, deviceID, name string, now time.Time) (string, *APIKey, error) {
	if id == "" || userID == "" || deviceID == "" {
		return "", nil, domain.ErrInvalidArgument
	}
	buf := make([]byte, 20)
	if _, err := rand.Read(buf); err != nil {
		return "", nil, err
	}
	raw := APIKeyPrefix + hex.EncodeToString(buf)
	if name == "" {
		name = "default"
	}
	return raw, &APIKey{
		ID:        id,
		UserID:    userID,
		DeviceID:  deviceID,
		Name:      name,
		KeyHash:   HashAPIKey(raw),
		KeyPrefix: raw[:10],
		IsActive:  true,
		CreatedAt: now,
	}, nil
}
