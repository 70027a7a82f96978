package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aussiebroadwan/daftar/internal/licensing/domain"
	"github.com/aussiebroadwan/daftar/internal/licensing/notify"
	"github.com/aussiebroadwan/daftar/internal/licensing/store"
	"github.com/aussiebroadwan/daftar/pkg/cryptox"
	"github.com/aussiebroadwan/daftar/pkg/idx"
	"github.com/aussiebroadwan/daftar/pkg/licensekey"
	"github.com/aussiebroadwan/daftar/pkg/slogx"
)

const adminEventPrefix = "admin_"

// Register imports an issued key. The signature and payload are checked and
// the payload seeds the record; a payload device id pre-binds the license.
func (s *BindingService) Register(ctx context.Context, key, actor string) (lic domain.License, err error) {
	defer func() { s.observe("register", err) }()
	log := slogx.FromContext(ctx)

	parts, err := licensekey.Parse(key)
	if err != nil {
		return domain.License{}, ErrInvalidFormat
	}
	if !licensekey.Verify(s.PublicKey, parts.Payload, parts.Signature) {
		return domain.License{}, ErrInvalidSignature
	}
	payload, err := licensekey.DecodePayload(parts.Payload)
	if err != nil || payload.Plan == "" || payload.ExpiresAt.IsZero() {
		return domain.License{}, ErrMalformedPayload
	}

	now := s.now()
	lic = domain.License{
		ID:           idx.NewAt(now).String(),
		Key:          strings.TrimSpace(key),
		Status:       domain.StatusActive,
		Plan:         payload.Plan,
		CustomerName: payload.Customer,
		ExpiresAt:    payload.ExpiresAt.UTC(),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if payload.DeviceID != nil && strings.TrimSpace(*payload.DeviceID) != "" {
		dev := strings.TrimSpace(*payload.DeviceID)
		lic.DeviceID = &dev
		lic.ActivatedAt = &now
		lic.Status = domain.StatusLocked
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Licenses().CreateLicense(ctx, lic); err != nil {
			return err
		}
		return tx.Activity().AppendActivity(ctx, s.entry(domain.ActivityEntry{
			Kind:        domain.ActivityLicenseRegistered,
			LicenseMask: domain.MaskLicenseKey(lic.Key),
			LicenseHash: cryptox.Fingerprint(lic.Key),
			Actor:       actor,
			Details: map[string]string{
				"plan":       lic.Plan,
				"expires_at": lic.ExpiresAt.Format(time.RFC3339),
				"status":     string(lic.Status),
			},
		}))
	})
	if errors.Is(err, store.ErrAlreadyExists) {
		return domain.License{}, ErrLicenseExists
	}
	if err != nil {
		log.Error("failed to register license", slog.Any("error", err))
		return domain.License{}, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}

	log.Info("license registered",
		slog.String("license", domain.MaskLicenseKey(lic.Key)),
		slog.String("actor", actor),
	)
	return lic, nil
}

// Block moves the record to BLOCKED, which fails every later verify and
// activate until it is unblocked.
func (s *BindingService) Block(ctx context.Context, key, actor string) (domain.License, error) {
	return s.mutate(ctx, "block", key, actor, domain.ActivityLicenseBlocked, nil,
		func(ctx context.Context, repo store.Licenses, lic domain.License) error {
			return repo.SetStatus(ctx, lic.Key, domain.StatusBlocked)
		})
}

// Unblock restores a blocked record: USED when it is still bound, ACTIVE
// otherwise.
func (s *BindingService) Unblock(ctx context.Context, key, actor string) (domain.License, error) {
	return s.mutate(ctx, "unblock", key, actor, domain.ActivityLicenseUnblocked, nil,
		func(ctx context.Context, repo store.Licenses, lic domain.License) error {
			status := domain.StatusActive
			if lic.IsBound() {
				status = domain.StatusUsed
			}
			return repo.SetStatus(ctx, lic.Key, status)
		})
}

// Reset clears the binding and forces ACTIVE so the next activation binds
// afresh.
func (s *BindingService) Reset(ctx context.Context, key, actor string) (domain.License, error) {
	return s.mutate(ctx, "reset", key, actor, domain.ActivityLicenseReset, nil,
		func(ctx context.Context, repo store.Licenses, lic domain.License) error {
			return repo.ResetBinding(ctx, lic.Key)
		})
}

// Extend sets a new authoritative expiry.
func (s *BindingService) Extend(ctx context.Context, key string, expiresAt time.Time, actor string) (domain.License, error) {
	if expiresAt.IsZero() {
		s.observe("extend", ErrInvalidExpiry)
		return domain.License{}, ErrInvalidExpiry
	}
	details := map[string]string{"expires_at": expiresAt.UTC().Format(time.RFC3339)}

	return s.mutate(ctx, "extend", key, actor, domain.ActivityLicenseExtended, details,
		func(ctx context.Context, repo store.Licenses, lic domain.License) error {
			return repo.UpdateExpiry(ctx, lic.Key, expiresAt)
		})
}

type mutation func(ctx context.Context, repo store.Licenses, lic domain.License) error

// mutate runs an admin transition and its audit entry in one transaction,
// then sends a deduplicated confirmation.
func (s *BindingService) mutate(
	ctx context.Context,
	op, key, actor, kind string,
	details map[string]string,
	apply mutation,
) (lic domain.License, err error) {
	defer func() { s.observe(op, err) }()
	log := slogx.FromContext(ctx)

	key = strings.TrimSpace(key)
	masked := domain.MaskLicenseKey(key)
	hash := cryptox.Fingerprint(key)

	var before domain.License
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		var err error
		before, err = tx.Licenses().GetLicenseByKey(ctx, key)
		if err != nil {
			return err
		}
		if err := apply(ctx, tx.Licenses(), before); err != nil {
			return err
		}

		d := map[string]string{"previous_status": string(before.Status)}
		if before.IsBound() {
			d["previous_device"] = *before.DeviceID
		}
		for k, v := range details {
			d[k] = v
		}
		if err := tx.Activity().AppendActivity(ctx, s.entry(domain.ActivityEntry{
			Kind:        kind,
			LicenseMask: masked,
			LicenseHash: hash,
			Actor:       actor,
			Details:     d,
		})); err != nil {
			return err
		}

		lic, err = tx.Licenses().GetLicenseByKey(ctx, key)
		return err
	})
	if errors.Is(err, store.ErrNotFound) {
		return domain.License{}, ErrNotFound
	}
	if err != nil {
		log.Error("admin license operation failed",
			slog.String("op", op),
			slog.String("license", masked),
			slog.Any("error", err),
		)
		return domain.License{}, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}

	log.Info("admin license operation",
		slog.String("op", op),
		slog.String("license", masked),
		slog.String("actor", actor),
		slog.String("status", string(lic.Status)),
	)

	s.alert(ctx, lic, adminEventPrefix+op, actor, notify.Message{
		Channel: notify.ChannelEmail,
		To:      s.Recipients.Email,
		Subject: "License " + op + " confirmed",
		Body: fmt.Sprintf("License %s: %s by %s.\nStatus: %s -> %s\nTime: %s\n",
			masked, op, actor, before.Status, lic.Status, s.now().Format(time.RFC3339)),
	})
	return lic, nil
}

// Get returns the record for key.
func (s *BindingService) Get(ctx context.Context, key string) (domain.License, error) {
	lic, err := s.Store.Licenses().GetLicenseByKey(ctx, strings.TrimSpace(key))
	if errors.Is(err, store.ErrNotFound) {
		return domain.License{}, ErrNotFound
	}
	if err != nil {
		return domain.License{}, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	return lic, nil
}

// List returns records, optionally filtered to statuses, newest first.
func (s *BindingService) List(ctx context.Context, statuses ...domain.Status) ([]domain.License, error) {
	var (
		out []domain.License
		err error
	)
	if len(statuses) == 0 {
		out, err = s.Store.Licenses().ListLicenses(ctx)
	} else {
		out, err = s.Store.Licenses().ListLicensesByStatus(ctx, statuses...)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	return out, nil
}

// RecentActivity returns the newest audit entries.
func (s *BindingService) RecentActivity(ctx context.Context, limit int) ([]domain.ActivityEntry, error) {
	out, err := s.Store.Activity().ListRecentActivity(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	return out, nil
}

// LicenseActivity returns the audit trail of one license.
func (s *BindingService) LicenseActivity(ctx context.Context, key string, limit int) ([]domain.ActivityEntry, error) {
	out, err := s.Store.Activity().ListActivityForLicense(ctx, cryptox.Fingerprint(strings.TrimSpace(key)), limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	return out, nil
}
