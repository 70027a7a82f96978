package sqlite

import (
	"context"
	"encoding/json"
	"time"

	"github.com/aussiebroadwan/daftar/internal/licensing/domain"
	"github.com/aussiebroadwan/daftar/internal/licensing/store/drivers/sqlite/gen"
	"github.com/aussiebroadwan/daftar/pkg/idx"
)

const defaultActivityLimit = 100

type activityRepo struct {
	q *gen.Queries
}

func (r *activityRepo) AppendActivity(ctx context.Context, e domain.ActivityEntry) error {
	if e.ID == "" {
		e.ID = idx.New().String()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}

	details := "{}"
	if len(e.Details) > 0 {
		raw, err := json.Marshal(e.Details)
		if err != nil {
			return err
		}
		details = string(raw)
	}

	return r.q.InsertActivity(ctx, gen.InsertActivityParams{
		ID:          e.ID,
		Kind:        e.Kind,
		LicenseMask: e.LicenseMask,
		LicenseHash: e.LicenseHash,
		Actor:       e.Actor,
		Details:     details,
		CreatedAt:   e.CreatedAt.UTC(),
	})
}

func (r *activityRepo) ListRecentActivity(ctx context.Context, limit int) ([]domain.ActivityEntry, error) {
	rows, err := r.q.ListRecentActivity(ctx, int64(clampLimit(limit)))
	if err != nil {
		return nil, err
	}
	return mapActivities(rows), nil
}

func (r *activityRepo) ListActivityForLicense(
	ctx context.Context,
	licenseHash string,
	limit int,
) ([]domain.ActivityEntry, error) {
	rows, err := r.q.ListActivityByLicenseHash(ctx, gen.ListActivityByLicenseHashParams{
		LicenseHash: licenseHash,
		Limit:       int64(clampLimit(limit)),
	})
	if err != nil {
		return nil, err
	}
	return mapActivities(rows), nil
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultActivityLimit
	}
	if limit > 1000 {
		return 1000
	}
	return limit
}

func mapActivities(rows []gen.ActivityLog) []domain.ActivityEntry {
	out := make([]domain.ActivityEntry, 0, len(rows))
	for _, row := range rows {
		out = append(out, mapActivity(row))
	}
	return out
}
