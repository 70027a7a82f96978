package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/aussiebroadwan/daftar/internal/licensing/domain"
	"github.com/aussiebroadwan/daftar/internal/licensing/service"
	"github.com/aussiebroadwan/daftar/pkg/slogx"
	"github.com/stretchr/testify/require"
)

func newScanner(f *fixture) *service.ExpiryScanner {
	s := service.NewExpiryScanner(f.store, f.svc.Alerts, f.notifier, "owner@example.com", slogx.Discard(), time.Hour)
	s.Now = f.clock.Now
	return s
}

func TestDaysUntil(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	require.Equal(t, 7, service.DaysUntil(now.Add(7*24*time.Hour), now))
	require.Equal(t, 7, service.DaysUntil(now.Add(6*24*time.Hour+time.Minute), now))
	require.Equal(t, 1, service.DaysUntil(now.Add(time.Minute), now))
	require.Equal(t, 0, service.DaysUntil(now, now))
	require.Equal(t, "expiry_reminder_3d", service.ReminderEvent(3))
}

func TestExpiryScannerReminders(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	scanner := newScanner(f)

	key := f.issue(t, f.clock.Now().Add(7*24*time.Hour))
	f.issue(t, f.future())

	blocked := f.issue(t, f.clock.Now().Add(3*24*time.Hour))
	require.NoError(t, f.store.Licenses().SetStatus(ctx, blocked, domain.StatusBlocked))

	sent, err := scanner.Scan(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, sent)

	// A second daily run on the same day repeats nothing.
	sent, err = scanner.Scan(ctx)
	require.NoError(t, err)
	require.Zero(t, sent)

	f.clock.Advance(4 * 24 * time.Hour)
	sent, err = scanner.Scan(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, sent)
	require.Len(t, f.notifier.byEvent(service.ReminderEvent(3)), 1)

	f.clock.Advance(2 * 24 * time.Hour)
	_, err = scanner.Scan(ctx)
	require.NoError(t, err)
	require.Len(t, f.notifier.byEvent(service.ReminderEvent(1)), 1)

	msg := f.notifier.byEvent(service.ReminderEvent(7))[0]
	require.Equal(t, domain.MaskLicenseKey(key), msg.LicenseMask)
	require.NotContains(t, msg.Body, key)
}

// The scanner and Verify share the expired dedup key, so at most one expiry
// alert goes out per cooldown whichever path sees it first.
func TestExpiredNoticeSharedWithVerify(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	scanner := newScanner(f)

	key := f.issue(t, f.clock.Now().Add(time.Hour))
	f.clock.Advance(2 * time.Hour)

	_, err := f.svc.Verify(ctx, key)
	require.ErrorIs(t, err, service.ErrExpired)

	for range 3 {
		_, err := scanner.Scan(ctx)
		require.NoError(t, err)
	}
	require.Len(t, f.notifier.byEvent(service.EventLicenseExpired), 1)

	f.clock.Advance(24 * time.Hour)
	sent, err := scanner.Scan(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, sent)
	_, _ = f.svc.Verify(ctx, key)
	require.Len(t, f.notifier.byEvent(service.EventLicenseExpired), 2)
}

func TestExpiryScannerStartStop(t *testing.T) {
	f := newFixture(t)
	f.issue(t, f.clock.Now().Add(24*time.Hour))

	scanner := newScanner(f)
	scanner.Start()
	require.Eventually(t, func() bool {
		return len(f.notifier.byEvent(service.ReminderEvent(1))) == 1
	}, 2*time.Second, 10*time.Millisecond)
	scanner.Stop()
}
