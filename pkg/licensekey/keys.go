package licensekey

import (
	"crypto/rsa"
	"fmt"
	"os"

	"github.com/golang-jwt/jwt/v5"
)

// ParsePublicKeyPEM parses a PKIX or PKCS#1 RSA public key, or a certificate.
func ParsePublicKeyPEM(data []byte) (*rsa.PublicKey, error) {
	pub, err := jwt.ParseRSAPublicKeyFromPEM(data)
	if err != nil {
		return nil, fmt.Errorf("licensekey: parse public key: %w", err)
	}
	return pub, nil
}

// ParsePrivateKeyPEM parses a PKCS#1 or PKCS#8 RSA private key.
func ParsePrivateKeyPEM(data []byte) (*rsa.PrivateKey, error) {
	priv, err := jwt.ParseRSAPrivateKeyFromPEM(data)
	if err != nil {
		return nil, fmt.Errorf("licensekey: parse private key: %w", err)
	}
	return priv, nil
}

// LoadPublicKey reads and parses a PEM encoded public key file.
func LoadPublicKey(path string) (*rsa.PublicKey, error) {
	data, err := os.ReadFile(path) // #nosec G304 - path comes from operator config
	if err != nil {
		return nil, fmt.Errorf("licensekey: read public key: %w", err)
	}
	return ParsePublicKeyPEM(data)
}

// LoadPrivateKey reads and parses a PEM encoded private key file.
func LoadPrivateKey(path string) (*rsa.PrivateKey, error) {
	data, err := os.ReadFile(path) // #nosec G304 - path comes from operator config
	if err != nil {
		return nil, fmt.Errorf("licensekey: read private key: %w", err)
	}
	return ParsePrivateKeyPEM(data)
}
