package main

import (
	"context"
	"crypto/rsa"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aussiebroadwan/daftar/internal/licensing/domain"
	"github.com/aussiebroadwan/daftar/internal/licensing/service"
	"github.com/aussiebroadwan/daftar/internal/licensing/store/drivers/sqlite"
	"github.com/aussiebroadwan/daftar/pkg/cryptox"
	"github.com/aussiebroadwan/daftar/pkg/httpx"
	"github.com/aussiebroadwan/daftar/pkg/licensekey"
	"github.com/spf13/cobra"
)

const registerActor = "licensegen"

func RunKeygenCommand() *cobra.Command {
	var (
		outDir string
		bits   int
		force  bool
	)

	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Generate an RSA key pair for signing licenses",
		RunE: func(cmd *cobra.Command, args []string) error {
			privPath := filepath.Join(outDir, "private.pem")
			pubPath := filepath.Join(outDir, "public.pem")

			if !force {
				for _, p := range []string{privPath, pubPath} {
					if _, err := os.Stat(p); err == nil {
						return fmt.Errorf("%s already exists (use --force to overwrite)", p)
					}
				}
			}

			privPEM, pubPEM, err := cryptox.GenerateRSAKeyPair(bits)
			if err != nil {
				return err
			}
			if err := os.MkdirAll(outDir, 0o700); err != nil {
				return fmt.Errorf("create %s: %w", outDir, err)
			}
			if err := os.WriteFile(privPath, privPEM, 0o600); err != nil {
				return fmt.Errorf("write private key: %w", err)
			}
			if err := os.WriteFile(pubPath, pubPEM, 0o644); err != nil { // #nosec G306 - public key
				return fmt.Errorf("write public key: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Private key written to %s\n", privPath)
			fmt.Fprintf(cmd.OutOrStdout(), "Public key written to %s\n", pubPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&outDir, "out-dir", "keys", "directory for private.pem and public.pem")
	cmd.Flags().IntVar(&bits, "bits", 2048, "RSA key size")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite existing key files")
	return cmd
}

type signOptions struct {
	keyPath  string
	plan     string
	days     int
	expires  string
	customer string
	deviceID string
}

func (o signOptions) payload(now time.Time) (licensekey.Payload, error) {
	if strings.TrimSpace(o.plan) == "" {
		return licensekey.Payload{}, errors.New("--plan is required")
	}

	var expiresAt time.Time
	switch {
	case o.expires != "":
		t, err := time.Parse(time.RFC3339, o.expires)
		if err != nil {
			return licensekey.Payload{}, fmt.Errorf("--expires: %w", err)
		}
		expiresAt = t.UTC()
	case o.days > 0:
		expiresAt = now.Add(time.Duration(o.days) * 24 * time.Hour).UTC().Truncate(time.Second)
	default:
		return licensekey.Payload{}, errors.New("one of --days or --expires is required")
	}

	p := licensekey.Payload{Plan: o.plan, ExpiresAt: expiresAt}
	if o.customer != "" {
		p.Customer = &o.customer
	}
	if o.deviceID != "" {
		p.DeviceID = &o.deviceID
	}
	return p, nil
}

func (o signOptions) sign() (string, error) {
	p, err := o.payload(time.Now())
	if err != nil {
		return "", err
	}
	priv, err := licensekey.LoadPrivateKey(o.keyPath)
	if err != nil {
		return "", err
	}
	return licensekey.Sign(priv, p)
}

func bindSignFlags(cmd *cobra.Command, o *signOptions) {
	cmd.Flags().StringVar(&o.keyPath, "private-key", "keys/private.pem", "PEM private signing key")
	cmd.Flags().StringVar(&o.plan, "plan", "", "plan name")
	cmd.Flags().IntVar(&o.days, "days", 365, "validity in days from now")
	cmd.Flags().StringVar(&o.expires, "expires", "", "explicit RFC 3339 expiry, overrides --days")
	cmd.Flags().StringVar(&o.customer, "customer", "", "customer name")
	cmd.Flags().StringVar(&o.deviceID, "device", "", "pre-bind to this device ID")
}

func RunSignCommand() *cobra.Command {
	var opts signOptions

	cmd := &cobra.Command{
		Use:   "sign",
		Short: "Sign a license key and print it",
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := opts.sign()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), key)
			return nil
		},
	}

	bindSignFlags(cmd, &opts)
	return cmd
}

func RunRegisterCommand() *cobra.Command {
	var (
		opts    signOptions
		dbPath  string
		pubPath string
		license string
	)

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register a license key in a license database, signing a new one unless --license is given",
		RunE: func(cmd *cobra.Command, args []string) error {
			key := strings.TrimSpace(license)
			if key == "" {
				var err error
				if key, err = opts.sign(); err != nil {
					return err
				}
			}

			pub, err := licensekey.LoadPublicKey(pubPath)
			if err != nil {
				return err
			}

			lic, err := registerLicense(cmd.Context(), dbPath, pub, key)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Registered license %s (%s, plan %s, expires %s)\n",
				lic.ID, lic.Status, lic.Plan, lic.ExpiresAt.Format(time.RFC3339))
			fmt.Fprintln(cmd.OutOrStdout(), key)
			return nil
		},
	}

	bindSignFlags(cmd, &opts)
	cmd.Flags().StringVar(&dbPath, "db", "licensing.db", "SQLite license database")
	cmd.Flags().StringVar(&pubPath, "public-key", "keys/public.pem", "PEM public verification key")
	cmd.Flags().StringVar(&license, "license", "", "register this existing key instead of signing")
	return cmd
}

func registerLicense(ctx context.Context, dbPath string, pub *rsa.PublicKey, key string) (domain.License, error) {
	st, err := sqlite.NewStore(sqlite.FileDSN(dbPath))
	if err != nil {
		return domain.License{}, fmt.Errorf("open database: %w", err)
	}
	defer func() { _ = st.Close() }()

	if err := st.ApplyMigrations(); err != nil {
		return domain.License{}, fmt.Errorf("apply migrations: %w", err)
	}

	svc := &service.BindingService{Store: st, PublicKey: pub}
	return svc.Register(ctx, key, registerActor)
}

func RunServiceTokenCommand() *cobra.Command {
	var actor string

	cmd := &cobra.Command{
		Use:   "service-token",
		Short: "Mint an admin service token and its ADMIN_SERVICE_TOKENS entry",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.ContainsAny(actor, ":;") || actor == "" {
				return errors.New("--actor must be non-empty and must not contain ':' or ';'")
			}

			token, err := cryptox.GenerateServiceToken()
			if err != nil {
				return err
			}
			hash, err := cryptox.HashSecret(token)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Token (shown once): %s\n", token)
			fmt.Fprintf(cmd.OutOrStdout(), "ADMIN_SERVICE_TOKENS entry: %s:%s\n", actor, hash)
			return nil
		},
	}

	cmd.Flags().StringVar(&actor, "actor", "", "actor name recorded in the audit log")
	return cmd
}

func RunAdminJWTCommand() *cobra.Command {
	var (
		secret  string
		subject string
		ttl     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "admin-jwt",
		Short: "Issue an HS256 admin JWT",
		RunE: func(cmd *cobra.Command, args []string) error {
			if secret == "" {
				secret = os.Getenv("ADMIN_JWT_SECRET")
			}
			if secret == "" {
				return errors.New("--secret or ADMIN_JWT_SECRET is required")
			}
			if subject == "" {
				return errors.New("--subject is required")
			}

			token, err := httpx.IssueAdminToken([]byte(secret), subject, httpx.RoleAdmin, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&secret, "secret", "", "HS256 secret (defaults to ADMIN_JWT_SECRET)")
	cmd.Flags().StringVar(&subject, "subject", "", "admin name")
	cmd.Flags().DurationVar(&ttl, "ttl", 12*time.Hour, "token lifetime")
	return cmd
}
