package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/daftar/internal/licensing/domain"
	"github.com/aussiebroadwan/daftar/internal/licensing/notify"
	"github.com/aussiebroadwan/daftar/internal/licensing/service"
	"github.com/aussiebroadwan/daftar/internal/licensing/store"
	"github.com/stretchr/testify/require"
)

// hookedStore wraps a real store so tests can run a step between the
// service reading a record and writing it, or fail the write outright.
type hookedStore struct {
	store.Store
	licenses *hookedLicenses
}

func (s *hookedStore) Licenses() store.Licenses { return s.licenses }

type hookedLicenses struct {
	store.Licenses

	once     sync.Once
	afterGet func(key string)
	bindErr  error
}

func (l *hookedLicenses) GetLicenseByKey(ctx context.Context, key string) (domain.License, error) {
	lic, err := l.Licenses.GetLicenseByKey(ctx, key)
	if l.afterGet != nil {
		l.once.Do(func() { l.afterGet(key) })
	}
	return lic, err
}

func (l *hookedLicenses) BindDevice(ctx context.Context, key, deviceID string, customerName *string, at time.Time) (bool, error) {
	if l.bindErr != nil {
		return false, l.bindErr
	}
	return l.Licenses.BindDevice(ctx, key, deviceID, customerName, at)
}

func (f *fixture) hook(h *hookedLicenses) {
	h.Licenses = f.store.Licenses()
	f.svc.Store = &hookedStore{Store: f.store, licenses: h}
}

// refusingNotifier rejects every message, like a full dispatcher queue.
type refusingNotifier struct {
	mu       sync.Mutex
	attempts int
}

func (n *refusingNotifier) Enqueue(notify.Message) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.attempts++
	return false
}

func (n *refusingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.attempts
}

func TestActivateRacesAdminChanges(t *testing.T) {
	ctx := context.Background()

	t.Run("block between read and bind wins", func(t *testing.T) {
		f := newFixture(t)
		key := f.issue(t, f.future())
		f.hook(&hookedLicenses{afterGet: func(key string) {
			require.NoError(t, f.store.Licenses().SetStatus(ctx, key, domain.StatusBlocked))
		}})

		_, err := f.activate(key, "dev-123")
		require.ErrorIs(t, err, service.ErrBlocked)
		require.Equal(t, domain.StatusBlocked, service.StatusOf(err))

		lic, err := f.store.Licenses().GetLicenseByKey(ctx, key)
		require.NoError(t, err)
		require.Equal(t, domain.StatusBlocked, lic.Status)
		require.Nil(t, lic.DeviceID)
	})

	t.Run("reset between read and promote leaves the record unbound", func(t *testing.T) {
		f := newFixture(t)
		key := f.issue(t, f.future())
		_, err := f.activate(key, "dev-123")
		require.NoError(t, err)
		require.NoError(t, f.store.Licenses().SetStatus(ctx, key, domain.StatusUsed))

		f.hook(&hookedLicenses{afterGet: func(key string) {
			require.NoError(t, f.store.Licenses().ResetBinding(ctx, key))
		}})

		_, err = f.activate(key, "dev-123")
		require.NoError(t, err)

		lic, err := f.store.Licenses().GetLicenseByKey(ctx, key)
		require.NoError(t, err)
		require.Equal(t, domain.StatusActive, lic.Status)
		require.Nil(t, lic.DeviceID)
	})
}

func TestActivateStoreFault(t *testing.T) {
	f := newFixture(t)
	key := f.issue(t, f.future())
	f.hook(&hookedLicenses{bindErr: errors.New("disk I/O error")})

	_, err := f.activate(key, "dev-123")
	require.ErrorIs(t, err, service.ErrStoreUnavailable)
	_, coded := service.CodeOf(err)
	require.False(t, coded, "store faults are not license errors")

	lic, err := f.store.Licenses().GetLicenseByKey(context.Background(), key)
	require.NoError(t, err)
	require.Nil(t, lic.DeviceID)
}

func TestRefusedNotificationsKeepOutcomes(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	refusing := &refusingNotifier{}
	f.svc.Notifier = refusing

	key := f.issue(t, f.future())
	_, err := f.activate(key, "dev-123")
	require.NoError(t, err)

	t.Run("mismatch still refused and gate left open", func(t *testing.T) {
		_, err := f.activate(key, "dev-999")
		require.ErrorIs(t, err, service.ErrDeviceMismatch)
		require.Equal(t, 2, refusing.count(), "email and sms both offered")

		_, err = f.activate(key, "dev-999")
		require.ErrorIs(t, err, service.ErrDeviceMismatch)
		require.Equal(t, 4, refusing.count(), "nothing was queued so the alert is retried")

		f.svc.Notifier = f.notifier
		_, err = f.activate(key, "dev-999")
		require.ErrorIs(t, err, service.ErrDeviceMismatch)
		_, err = f.activate(key, "dev-999")
		require.ErrorIs(t, err, service.ErrDeviceMismatch)
		require.Len(t, f.notifier.byEvent(service.EventDeviceMismatch), 2)

		f.svc.Notifier = refusing
	})

	t.Run("expired verify", func(t *testing.T) {
		expiring := f.issue(t, f.clock.Now().Add(time.Hour))
		f.clock.Advance(2 * time.Hour)

		_, err := f.svc.Verify(ctx, expiring)
		require.ErrorIs(t, err, service.ErrExpired)
	})

	t.Run("admin block", func(t *testing.T) {
		before := refusing.count()
		lic, err := f.svc.Block(ctx, key, "alice")
		require.NoError(t, err)
		require.Equal(t, domain.StatusBlocked, lic.Status)
		require.Greater(t, refusing.count(), before)
	})
}
