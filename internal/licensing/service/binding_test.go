package service_test

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/daftar/internal/licensing/domain"
	"github.com/aussiebroadwan/daftar/internal/licensing/notify"
	"github.com/aussiebroadwan/daftar/internal/licensing/service"
	"github.com/aussiebroadwan/daftar/pkg/licensekey"
	"github.com/stretchr/testify/require"
)

func TestVerify(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	key := f.issue(t, f.future())

	t.Run("valid key", func(t *testing.T) {
		ent, err := f.svc.Verify(ctx, key)
		require.NoError(t, err)
		require.Equal(t, "pro", ent.Plan)
		require.Equal(t, domain.StatusActive, ent.Status)
		require.Nil(t, ent.DeviceID)
		require.Nil(t, ent.ActivatedAt)
	})

	t.Run("surrounding whitespace is ignored", func(t *testing.T) {
		_, err := f.svc.Verify(ctx, "  "+key+"\n")
		require.NoError(t, err)
	})

	t.Run("invalid format", func(t *testing.T) {
		for _, k := range []string{"", "garbage", "L2.a.b", "L1..b", "L1.a.b.c"} {
			_, err := f.svc.Verify(ctx, k)
			require.ErrorIs(t, err, service.ErrInvalidFormat, k)
		}
	})

	t.Run("invalid signature", func(t *testing.T) {
		other, err := rsa.GenerateKey(rand.Reader, 2048)
		require.NoError(t, err)
		forged, err := licensekey.Sign(other, licensekey.Payload{Plan: "pro", ExpiresAt: f.future()})
		require.NoError(t, err)

		_, err = f.svc.Verify(ctx, forged)
		require.ErrorIs(t, err, service.ErrInvalidSignature)
	})

	t.Run("signed but unknown", func(t *testing.T) {
		_, err := f.svc.Verify(ctx, f.sign(t, licensekey.Payload{Plan: "pro", ExpiresAt: f.future()}))
		require.ErrorIs(t, err, service.ErrNotFound)
	})

	t.Run("blocked carries status", func(t *testing.T) {
		blockedKey := f.issue(t, f.future())
		require.NoError(t, f.store.Licenses().SetStatus(ctx, blockedKey, domain.StatusBlocked))

		_, err := f.svc.Verify(ctx, blockedKey)
		require.ErrorIs(t, err, service.ErrBlocked)
		require.Equal(t, domain.StatusBlocked, service.StatusOf(err))
	})

	t.Run("unknown status is blocked", func(t *testing.T) {
		odd := f.issue(t, f.future())
		require.NoError(t, f.store.Licenses().SetStatus(ctx, odd, domain.Status("SUSPENDED")))

		_, err := f.svc.Verify(ctx, odd)
		require.ErrorIs(t, err, service.ErrBlocked)
		require.Equal(t, domain.Status("SUSPENDED"), service.StatusOf(err))
	})

	require.GreaterOrEqual(t, f.metrics.get("verify", "ok"), 2)
	require.Equal(t, 1, f.metrics.get("verify", "INVALID_SIGNATURE"))
}

func TestVerifyUsesRecordExpiry(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	// Payload claims a far future expiry; the record says otherwise.
	key := f.sign(t, licensekey.Payload{Plan: "pro", ExpiresAt: f.future()})
	require.NoError(t, f.store.Licenses().CreateLicense(ctx, domain.License{
		ID:        "01J00000000000000000000000",
		Key:       key,
		Plan:      "pro",
		ExpiresAt: f.clock.Now(),
	}))

	_, err := f.svc.Verify(ctx, key)
	require.ErrorIs(t, err, service.ErrExpired, "expiring exactly now counts as expired")
}

func TestVerifyExpiredAlertsOncePerCooldown(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	key := f.issue(t, f.clock.Now().Add(time.Hour))

	f.clock.Advance(2 * time.Hour)
	for range 10 {
		_, err := f.svc.Verify(ctx, key)
		require.ErrorIs(t, err, service.ErrExpired)
	}
	require.Len(t, f.notifier.byEvent(service.EventLicenseExpired), 1)

	f.clock.Advance(23 * time.Hour)
	_, _ = f.svc.Verify(ctx, key)
	require.Len(t, f.notifier.byEvent(service.EventLicenseExpired), 1)

	f.clock.Advance(time.Hour)
	_, _ = f.svc.Verify(ctx, key)
	require.Len(t, f.notifier.byEvent(service.EventLicenseExpired), 2)

	msg := f.notifier.byEvent(service.EventLicenseExpired)[0]
	require.Equal(t, notify.ChannelEmail, msg.Channel)
	require.Equal(t, "owner@example.com", msg.To)
	require.NotContains(t, msg.Body, key)
}

func TestActivate(t *testing.T) {
	ctx := context.Background()

	t.Run("binds on first use", func(t *testing.T) {
		f := newFixture(t)
		key := f.issue(t, f.future())

		ent, err := f.svc.Activate(ctx, service.ActivateRequest{
			Key:          key,
			DeviceID:     "  dev-123 ",
			CustomerName: "Toko Sinar",
		})
		require.NoError(t, err)
		require.Equal(t, domain.StatusLocked, ent.Status)
		require.Equal(t, "dev-123", *ent.DeviceID)
		require.Equal(t, f.clock.Now(), *ent.ActivatedAt)

		lic, err := f.store.Licenses().GetLicenseByKey(ctx, key)
		require.NoError(t, err)
		require.Equal(t, domain.StatusLocked, lic.Status)
		require.Equal(t, "dev-123", *lic.DeviceID)
		require.Equal(t, "Toko Sinar", *lic.CustomerName)

		acts, err := f.store.Activity().ListRecentActivity(ctx, 10)
		require.NoError(t, err)
		require.Len(t, acts, 1)
		require.Equal(t, domain.ActivityLicenseActivated, acts[0].Kind)
		require.Equal(t, domain.MaskLicenseKey(key), acts[0].LicenseMask)
	})

	t.Run("idempotent for the bound device", func(t *testing.T) {
		f := newFixture(t)
		key := f.issue(t, f.future())

		first, err := f.activate(key, "dev-123")
		require.NoError(t, err)

		f.clock.Advance(time.Hour)
		again, err := f.activate(key, "dev-123")
		require.NoError(t, err)
		require.True(t, first.ActivatedAt.Equal(*again.ActivatedAt), "activation time is not refreshed")
		require.Equal(t, domain.StatusLocked, again.Status)
		require.Zero(t, f.notifier.count())
	})

	t.Run("USED is promoted to LOCKED", func(t *testing.T) {
		f := newFixture(t)
		key := f.issue(t, f.future())
		_, err := f.activate(key, "dev-123")
		require.NoError(t, err)
		require.NoError(t, f.store.Licenses().SetStatus(ctx, key, domain.StatusUsed))

		ent, err := f.activate(key, "dev-123")
		require.NoError(t, err)
		require.Equal(t, domain.StatusLocked, ent.Status)

		lic, err := f.store.Licenses().GetLicenseByKey(ctx, key)
		require.NoError(t, err)
		require.Equal(t, domain.StatusLocked, lic.Status)
	})

	t.Run("device id is required", func(t *testing.T) {
		f := newFixture(t)
		key := f.issue(t, f.future())

		for _, dev := range []string{"", "   ", "abc", " ab "} {
			_, err := f.activate(key, dev)
			require.ErrorIs(t, err, service.ErrDeviceRequired, dev)
		}
		_, err := f.activate(key, "abcd")
		require.NoError(t, err)
	})

	t.Run("device check comes before key checks", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.activate("garbage", "")
		require.ErrorIs(t, err, service.ErrDeviceRequired)
	})

	t.Run("blocked and expired are refused", func(t *testing.T) {
		f := newFixture(t)

		blockedKey := f.issue(t, f.future())
		require.NoError(t, f.store.Licenses().SetStatus(ctx, blockedKey, domain.StatusBlocked))
		_, err := f.activate(blockedKey, "dev-123")
		require.ErrorIs(t, err, service.ErrBlocked)

		expiredKey := f.issue(t, f.clock.Now().Add(-time.Minute))
		_, err = f.activate(expiredKey, "dev-123")
		require.ErrorIs(t, err, service.ErrExpired)

		lic, err := f.store.Licenses().GetLicenseByKey(ctx, expiredKey)
		require.NoError(t, err)
		require.Nil(t, lic.DeviceID, "expired license is never bound")
		require.Empty(t, f.notifier.byEvent(service.EventLicenseExpired), "activate sends no expiry alert")
	})
}

// A bound license refuses other devices, audits every attempt and alerts
// once per cooldown.
func TestActivateDeviceMismatchScenario(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	key := f.issue(t, f.future())

	_, err := f.activate(key, "dev-123")
	require.NoError(t, err)

	for range 5 {
		ent, err := f.activate(key, "dev-999")
		require.ErrorIs(t, err, service.ErrDeviceMismatch)
		require.Nil(t, ent.DeviceID, "bound device is not revealed")
	}

	alerts := f.notifier.byEvent(service.EventDeviceMismatch)
	require.Len(t, alerts, 2, "one email and one short message")

	channels := []notify.Channel{alerts[0].Channel, alerts[1].Channel}
	require.ElementsMatch(t, []notify.Channel{notify.ChannelEmail, notify.ChannelSMS}, channels)
	for _, m := range alerts {
		require.Equal(t, domain.MaskLicenseKey(key), m.LicenseMask)
		require.NotContains(t, m.Body, key)
		if m.Channel == notify.ChannelSMS {
			require.LessOrEqual(t, len([]rune(m.Body)), notify.ShortMessageLimit)
			require.Equal(t, "+62811000000", m.To)
		}
	}

	acts, err := f.store.Activity().ListRecentActivity(ctx, 50)
	require.NoError(t, err)
	var mismatches int
	for _, a := range acts {
		if a.Kind == domain.ActivityDeviceMismatch {
			mismatches++
			require.Equal(t, "dev-123", a.Details["existing_device"])
			require.Equal(t, "dev-999", a.Details["attempted_device"])
			require.Equal(t, "203.0.113.7", a.Details["ip"])
			require.Equal(t, "daftar-desktop/1.0", a.Details["user_agent"])
		}
	}
	require.Equal(t, 5, mismatches)

	lic, err := f.store.Licenses().GetLicenseByKey(ctx, key)
	require.NoError(t, err)
	require.Equal(t, "dev-123", *lic.DeviceID, "binding never changes")

	t.Run("a different attempted device is a new alert", func(t *testing.T) {
		_, err := f.activate(key, "dev-777")
		require.ErrorIs(t, err, service.ErrDeviceMismatch)
		require.Len(t, f.notifier.byEvent(service.EventDeviceMismatch), 4)
	})

	t.Run("the same pair alerts again after the cooldown", func(t *testing.T) {
		f.clock.Advance(24 * time.Hour)
		_, err := f.activate(key, "dev-999")
		require.ErrorIs(t, err, service.ErrDeviceMismatch)
		require.Len(t, f.notifier.byEvent(service.EventDeviceMismatch), 6)
	})

	require.Equal(t, 7, f.metrics.get("activate", "DEVICE_MISMATCH"))
}

func TestActivateFirstWriterWins(t *testing.T) {
	f := newFixture(t)
	key := f.issue(t, f.future())

	const workers = 8
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		winners []string
	)
	for i := range workers {
		wg.Add(1)
		go func(dev string) {
			defer wg.Done()
			_, err := f.activate(key, dev)
			if err == nil {
				mu.Lock()
				winners = append(winners, dev)
				mu.Unlock()
				return
			}
			require.ErrorIs(t, err, service.ErrDeviceMismatch)
		}("device-" + strings.Repeat("x", i+1))
	}
	wg.Wait()

	require.Len(t, winners, 1)
	lic, err := f.store.Licenses().GetLicenseByKey(context.Background(), key)
	require.NoError(t, err)
	require.Equal(t, winners[0], *lic.DeviceID)
}

func TestErrorCodes(t *testing.T) {
	err := error(&service.Error{Code: service.CodeBlocked, Status: domain.StatusBlocked})
	require.ErrorIs(t, err, service.ErrBlocked)
	require.NotErrorIs(t, err, service.ErrExpired)

	code, ok := service.CodeOf(err)
	require.True(t, ok)
	require.Equal(t, service.CodeBlocked, code)
	require.Contains(t, err.Error(), "BLOCKED")

	_, ok = service.CodeOf(service.ErrStoreUnavailable)
	require.False(t, ok)
}
