package app

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aussiebroadwan/daftar/pkg/licensekey"
)

var errNoPublicKey = errors.New("no license public key configured (LICENSE_PUBLIC_KEY or LICENSE_PUBLIC_KEY_FILE)")

// LoadPublicKey returns the license verification key. Inline PEM wins over
// the file path.
func LoadPublicKey(cfg Config, logger *slog.Logger) (*rsa.PublicKey, error) {
	switch {
	case cfg.PublicKey != "":
		key, err := licensekey.ParsePublicKeyPEM([]byte(cfg.PublicKey))
		if err != nil {
			return nil, fmt.Errorf("parse LICENSE_PUBLIC_KEY: %w", err)
		}
		logger.Info("license public key loaded", "source", "env", "bits", key.N.BitLen())
		return key, nil

	case cfg.PublicKeyFile != "":
		key, err := licensekey.LoadPublicKey(cfg.PublicKeyFile)
		if err != nil {
			return nil, err
		}
		logger.Info("license public key loaded", "source", "file", "path", cfg.PublicKeyFile, "bits", key.N.BitLen())
		return key, nil

	default:
		return nil, errNoPublicKey
	}
}
