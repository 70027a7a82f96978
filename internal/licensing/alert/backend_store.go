package alert

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/daftar/internal/licensing/store"
)

// StoreBackend keeps alert state in the record store's alert_states table.
type StoreBackend struct {
	States store.AlertStates
}

func (b StoreBackend) LastSent(ctx context.Context, key string) (time.Time, bool, error) {
	at, err := b.States.GetAlertLastSent(ctx, key)
	if errors.Is(err, store.ErrNotFound) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, err
	}
	return at, true, nil
}

func (b StoreBackend) Put(ctx context.Context, key string, at time.Time) error {
	return b.States.UpsertAlertLastSent(ctx, key, at)
}
