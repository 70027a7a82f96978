package sqlite

import (
	"context"
	"database/sql"
	"slices"
	"time"

	"github.com/aussiebroadwan/daftar/internal/licensing/domain"
	"github.com/aussiebroadwan/daftar/internal/licensing/store"
	"github.com/aussiebroadwan/daftar/internal/licensing/store/drivers/sqlite/gen"
)

type licensesRepo struct {
	q *gen.Queries
}

func (r *licensesRepo) GetLicenseByKey(ctx context.Context, key string) (domain.License, error) {
	row, err := r.q.GetLicenseByKey(ctx, key)
	if err != nil {
		return domain.License{}, mapNotFound(err)
	}
	return mapLicense(row), nil
}

func (r *licensesRepo) CreateLicense(ctx context.Context, l domain.License) error {
	now := time.Now().UTC()
	if l.CreatedAt.IsZero() {
		l.CreatedAt = now
	}
	if l.UpdatedAt.IsZero() {
		l.UpdatedAt = l.CreatedAt
	}
	if l.Status == "" {
		l.Status = domain.StatusActive
	}

	err := r.q.CreateLicense(ctx, gen.CreateLicenseParams{
		ID:           l.ID,
		LicenseKey:   l.Key,
		Status:       string(l.Status),
		Plan:         l.Plan,
		CustomerName: mapOptionalString(l.CustomerName),
		ExpiresAt:    l.ExpiresAt.UTC(),
		DeviceID:     mapOptionalString(l.DeviceID),
		ActivatedAt:  mapOptionalTime(l.ActivatedAt),
		CreatedAt:    l.CreatedAt.UTC(),
		UpdatedAt:    l.UpdatedAt.UTC(),
	})
	if isUniqueViolation(err) {
		return store.ErrAlreadyExists
	}
	return err
}

func (r *licensesRepo) ListLicenses(ctx context.Context) ([]domain.License, error) {
	rows, err := r.q.ListLicenses(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]domain.License, 0, len(rows))
	for _, row := range rows {
		out = append(out, mapLicense(row))
	}
	return out, nil
}

func (r *licensesRepo) ListLicensesByStatus(ctx context.Context, statuses ...domain.Status) ([]domain.License, error) {
	all, err := r.ListLicenses(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]domain.License, 0, len(all))
	for _, l := range all {
		if slices.Contains(statuses, l.Status) {
			out = append(out, l)
		}
	}
	return out, nil
}

func (r *licensesRepo) BindDevice(
	ctx context.Context,
	key, deviceID string,
	customerName *string,
	at time.Time,
) (bool, error) {
	n, err := r.q.BindLicenseDevice(ctx, gen.BindLicenseDeviceParams{
		DeviceID:     sql.NullString{String: deviceID, Valid: true},
		ActivatedAt:  sql.NullTime{Time: at.UTC(), Valid: true},
		CustomerName: mapOptionalString(customerName),
		UpdatedAt:    at.UTC(),
		LicenseKey:   key,
	})
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (r *licensesRepo) PromoteToLocked(ctx context.Context, key, deviceID string) error {
	return r.q.PromoteLicenseToLocked(ctx, gen.PromoteLicenseToLockedParams{
		LicenseKey: key,
		DeviceID:   sql.NullString{String: deviceID, Valid: true},
	})
}

func (r *licensesRepo) SetStatus(ctx context.Context, key string, status domain.Status) error {
	return mapAffected(r.q.UpdateLicenseStatus(ctx, gen.UpdateLicenseStatusParams{
		Status:     string(status),
		LicenseKey: key,
	}))
}

func (r *licensesRepo) ResetBinding(ctx context.Context, key string) error {
	return mapAffected(r.q.ResetLicenseBinding(ctx, key))
}

func (r *licensesRepo) UpdateExpiry(ctx context.Context, key string, expiresAt time.Time) error {
	return mapAffected(r.q.UpdateLicenseExpiry(ctx, gen.UpdateLicenseExpiryParams{
		ExpiresAt:  expiresAt.UTC(),
		LicenseKey: key,
	}))
}
