package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/aussiebroadwan/daftar/internal/licensing/domain"
	"github.com/aussiebroadwan/daftar/internal/licensing/service"
	"github.com/aussiebroadwan/daftar/pkg/cryptox"
	"github.com/aussiebroadwan/daftar/pkg/licensekey"
	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	expires := f.future().Truncate(time.Second)

	t.Run("creates an unbound record", func(t *testing.T) {
		customer := "Warung Ibu"
		key := f.sign(t, licensekey.Payload{Plan: "pro", Customer: &customer, ExpiresAt: expires})

		lic, err := f.svc.Register(ctx, key, "admin")
		require.NoError(t, err)
		require.Equal(t, domain.StatusActive, lic.Status)
		require.Equal(t, "pro", lic.Plan)
		require.Equal(t, "Warung Ibu", *lic.CustomerName)
		require.True(t, expires.Equal(lic.ExpiresAt))
		require.False(t, lic.IsBound())

		_, err = f.svc.Verify(ctx, key)
		require.NoError(t, err)

		_, err = f.svc.Register(ctx, key, "admin")
		require.ErrorIs(t, err, service.ErrLicenseExists)
	})

	t.Run("payload device pre-binds", func(t *testing.T) {
		dev := "dev-preset"
		key := f.sign(t, licensekey.Payload{Plan: "pro", DeviceID: &dev, ExpiresAt: expires})

		lic, err := f.svc.Register(ctx, key, "admin")
		require.NoError(t, err)
		require.Equal(t, domain.StatusLocked, lic.Status)
		require.Equal(t, "dev-preset", *lic.DeviceID)

		_, err = f.activate(key, "dev-other")
		require.ErrorIs(t, err, service.ErrDeviceMismatch)
	})

	t.Run("rejects bad keys", func(t *testing.T) {
		_, err := f.svc.Register(ctx, "nope", "admin")
		require.ErrorIs(t, err, service.ErrInvalidFormat)

		_, err = f.svc.Register(ctx, f.sign(t, licensekey.Payload{ExpiresAt: expires}), "admin")
		require.ErrorIs(t, err, service.ErrMalformedPayload, "plan is required")
	})
}

func TestAdminTransitions(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	key := f.issue(t, f.future())

	_, err := f.activate(key, "dev-123")
	require.NoError(t, err)

	t.Run("block", func(t *testing.T) {
		lic, err := f.svc.Block(ctx, key, "alice")
		require.NoError(t, err)
		require.Equal(t, domain.StatusBlocked, lic.Status)

		_, err = f.svc.Verify(ctx, key)
		require.ErrorIs(t, err, service.ErrBlocked)
		_, err = f.activate(key, "dev-123")
		require.ErrorIs(t, err, service.ErrBlocked, "the bound device is refused too")
	})

	t.Run("unblock keeps a bound record as USED", func(t *testing.T) {
		lic, err := f.svc.Unblock(ctx, key, "alice")
		require.NoError(t, err)
		require.Equal(t, domain.StatusUsed, lic.Status)
		require.Equal(t, "dev-123", *lic.DeviceID)

		ent, err := f.activate(key, "dev-123")
		require.NoError(t, err)
		require.Equal(t, domain.StatusLocked, ent.Status)
	})

	t.Run("reset clears the binding", func(t *testing.T) {
		lic, err := f.svc.Reset(ctx, key, "alice")
		require.NoError(t, err)
		require.Equal(t, domain.StatusActive, lic.Status)
		require.Nil(t, lic.DeviceID)
		require.Nil(t, lic.ActivatedAt)

		ent, err := f.activate(key, "dev-999")
		require.NoError(t, err)
		require.Equal(t, "dev-999", *ent.DeviceID)
	})

	t.Run("unblock of an unbound record is ACTIVE", func(t *testing.T) {
		other := f.issue(t, f.future())
		_, err := f.svc.Block(ctx, other, "alice")
		require.NoError(t, err)

		lic, err := f.svc.Unblock(ctx, other, "alice")
		require.NoError(t, err)
		require.Equal(t, domain.StatusActive, lic.Status)
	})

	t.Run("extend", func(t *testing.T) {
		expired := f.issue(t, f.clock.Now().Add(-time.Hour))
		_, err := f.svc.Verify(ctx, expired)
		require.ErrorIs(t, err, service.ErrExpired)

		_, err = f.svc.Extend(ctx, expired, f.future(), "alice")
		require.NoError(t, err)
		_, err = f.svc.Verify(ctx, expired)
		require.NoError(t, err)

		_, err = f.svc.Extend(ctx, expired, time.Time{}, "alice")
		require.ErrorIs(t, err, service.ErrInvalidExpiry)
	})

	t.Run("unknown key", func(t *testing.T) {
		_, err := f.svc.Block(ctx, "L1.nothing.here", "alice")
		require.ErrorIs(t, err, service.ErrNotFound)
	})

	t.Run("audit trail", func(t *testing.T) {
		acts, err := f.svc.LicenseActivity(ctx, key, 50)
		require.NoError(t, err)

		kinds := map[string]int{}
		for _, a := range acts {
			kinds[a.Kind]++
			require.Equal(t, cryptox.Fingerprint(key), a.LicenseHash)
		}
		require.Equal(t, 2, kinds[domain.ActivityLicenseActivated])
		require.Equal(t, 1, kinds[domain.ActivityLicenseBlocked])
		require.Equal(t, 1, kinds[domain.ActivityLicenseUnblocked])
		require.Equal(t, 1, kinds[domain.ActivityLicenseReset])

		for _, a := range acts {
			if a.Kind == domain.ActivityLicenseReset {
				require.Equal(t, "alice", a.Actor)
				require.Equal(t, "dev-123", a.Details["previous_device"])
			}
		}
	})

	t.Run("confirmations are deduplicated per actor", func(t *testing.T) {
		before := len(f.notifier.byEvent("admin_block"))
		_, err := f.svc.Block(ctx, key, "alice")
		require.NoError(t, err)
		require.Len(t, f.notifier.byEvent("admin_block"), before)

		_, err = f.svc.Block(ctx, key, "bob")
		require.NoError(t, err)
		require.Len(t, f.notifier.byEvent("admin_block"), before+1)
	})
}

func TestList(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	a := f.issue(t, f.future())
	f.issue(t, f.future())
	_, err := f.svc.Block(ctx, a, "alice")
	require.NoError(t, err)

	all, err := f.svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)

	blocked, err := f.svc.List(ctx, domain.StatusBlocked)
	require.NoError(t, err)
	require.Len(t, blocked, 1)
	require.Equal(t, a, blocked[0].Key)

	got, err := f.svc.Get(ctx, a)
	require.NoError(t, err)
	require.Equal(t, domain.StatusBlocked, got.Status)

	_, err = f.svc.Get(ctx, "L1.x.y")
	require.ErrorIs(t, err, service.ErrNotFound)

	recent, err := f.svc.RecentActivity(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recent, 1)
}
