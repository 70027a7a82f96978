package sqlite

import (
	"context"
	"time"

	"github.com/aussiebroadwan/daftar/internal/licensing/store/drivers/sqlite/gen"
)

type alertStatesRepo struct {
	q *gen.Queries
}

func (r *alertStatesRepo) GetAlertLastSent(ctx context.Context, key string) (time.Time, error) {
	row, err := r.q.GetAlertState(ctx, key)
	if err != nil {
		return time.Time{}, mapNotFound(err)
	}
	return row.LastSentAt.UTC(), nil
}

func (r *alertStatesRepo) UpsertAlertLastSent(ctx context.Context, key string, at time.Time) error {
	return r.q.UpsertAlertState(ctx, gen.UpsertAlertStateParams{
		StateKey:   key,
		LastSentAt: at.UTC(),
	})
}
