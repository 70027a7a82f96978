package licensekey

import (
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// PayloadVersion is written into the v field of newly issued payloads.
const PayloadVersion = 1

// NonceSize is the number of random bytes in a payload nonce.
const NonceSize = 10

// Sign encodes p and signs the encoded segment with priv, returning a
// complete license key. A missing nonce is generated.
func Sign(priv *rsa.PrivateKey, p Payload) (string, error) {
	if priv == nil {
		return "", errors.New("licensekey: nil private key")
	}
	if p.V == 0 {
		p.V = PayloadVersion
	}
	if p.Nonce == "" {
		nonce, err := NewNonce()
		if err != nil {
			return "", err
		}
		p.Nonce = nonce
	}

	raw, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("licensekey: encode payload: %w", err)
	}
	payloadSegment := base64.RawURLEncoding.EncodeToString(raw)

	sig, err := jwt.SigningMethodRS256.Sign(payloadSegment, priv)
	if err != nil {
		return "", fmt.Errorf("licensekey: sign payload: %w", err)
	}

	return Version + "." + payloadSegment + "." + base64.RawURLEncoding.EncodeToString(sig), nil
}

// NewNonce returns NonceSize random bytes as lowercase hex.
func NewNonce() (string, error) {
	buf := make([]byte, NonceSize)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("licensekey: generate nonce: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
