// Package licensekey encodes, signs and verifies license keys of the form
//
//	L1.<base64url(payload JSON)>.<base64url(RSA-SHA256 signature)>
//
// The signature covers the literal payload segment as it appears in the key,
// not a re-serialisation of the decoded payload.
package licensekey

import (
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Version is the only key format tag accepted by Parse.
const Version = "L1"

var (
	ErrInvalidFormat    = errors.New("licensekey: invalid format")
	ErrMalformedPayload = errors.New("licensekey: malformed payload")
)

// Parts is a license key split into its three segments. No decoding has
// happened yet.
type Parts struct {
	Version   string
	Payload   string
	Signature string
}

// Payload is the signed content of a license key. It is informational only:
// the server-side record is authoritative for expiry and binding.
type Payload struct {
	V         int       `json:"v"`
	Customer  *string   `json:"customer,omitempty"`
	Plan      string    `json:"plan"`
	ExpiresAt time.Time `json:"expiresAt"`
	DeviceID  *string   `json:"deviceId,omitempty"`
	Nonce     string    `json:"nonce"`
}

// Parse splits a key into its segments. The key must have exactly three
// non-empty dot separated segments and the first must equal Version.
func Parse(key string) (Parts, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return Parts{}, ErrInvalidFormat
	}

	segs := strings.Split(key, ".")
	if len(segs) != 3 {
		return Parts{}, ErrInvalidFormat
	}
	if segs[0] != Version || segs[1] == "" || segs[2] == "" {
		return Parts{}, ErrInvalidFormat
	}

	return Parts{Version: segs[0], Payload: segs[1], Signature: segs[2]}, nil
}

// Verify reports whether signatureSegment is a valid RSA PKCS#1 v1.5 SHA-256
// signature of the UTF-8 bytes of payloadSegment under pub. It never panics;
// any malformed input yields false.
func Verify(pub *rsa.PublicKey, payloadSegment, signatureSegment string) (ok bool) {
	if pub == nil || payloadSegment == "" || signatureSegment == "" {
		return false
	}
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()

	sig, err := decodeSegment(signatureSegment)
	if err != nil || len(sig) == 0 {
		return false
	}

	return jwt.SigningMethodRS256.Verify(payloadSegment, sig, pub) == nil
}

// DecodePayload decodes a payload segment into a Payload.
func DecodePayload(segment string) (Payload, error) {
	raw, err := decodeSegment(segment)
	if err != nil {
		return Payload{}, ErrMalformedPayload
	}

	var p Payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return Payload{}, ErrMalformedPayload
	}
	return p, nil
}

// decodeSegment accepts unpadded base64url and tolerates trailing padding
// emitted by older issuers.
func decodeSegment(s string) ([]byte, error) {
	return base64.RawURLEncoding.DecodeString(strings.TrimRight(s, "="))
}
