package cryptox

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strings"
)

// ServiceTokenPrefix marks opaque admin service tokens so they can be told
// apart from JWTs in an Authorization header.
const ServiceTokenPrefix = "dft_"

// TokenSize256 is 256 bits of entropy (43 chars base64url).
const TokenSize256 = 32

// GenerateToken creates a random token of size bytes, base64url encoded
// without padding.
func GenerateToken(size int) (string, error) {
	if size <= 0 {
		return "", fmt.Errorf("token size must be positive, got %d", size)
	}

	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate random token: %w", err)
	}

	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// GenerateServiceToken returns a new prefixed admin service token.
func GenerateServiceToken() (string, error) {
	tok, err := GenerateToken(TokenSize256)
	if err != nil {
		return "", err
	}
	return ServiceTokenPrefix + tok, nil
}

func IsServiceToken(s string) bool { return strings.HasPrefix(s, ServiceTokenPrefix) }

// Fingerprint returns a deterministic base64url SHA-256 digest of s. License
// keys are stored in audit and alert state only by fingerprint.
func Fingerprint(s string) string {
	sum := sha256.Sum256([]byte(s))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}
