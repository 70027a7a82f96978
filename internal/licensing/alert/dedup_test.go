package alert_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/daftar/internal/licensing/alert"
	"github.com/aussiebroadwan/daftar/internal/licensing/store/drivers/sqlite"
	"github.com/aussiebroadwan/daftar/pkg/slogx"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type brokenBackend struct{ puts int }

func (b *brokenBackend) LastSent(context.Context, string) (time.Time, bool, error) {
	return time.Time{}, false, errors.New("disk on fire")
}

func (b *brokenBackend) Put(context.Context, string, time.Time) error {
	b.puts++
	return errors.New("disk on fire")
}

func newDeduper(b alert.Backend) (*alert.Deduper, *fakeClock) {
	clock := &fakeClock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	d := alert.NewDeduper(b, slogx.Discard())
	d.Now = clock.Now
	return d, clock
}

func TestKey(t *testing.T) {
	require.Equal(t, "monitor::monitor_errors::errors:42", alert.Key("monitor", "monitor_errors", "errors:42"))
}

func exerciseCooldown(t *testing.T, b alert.Backend) {
	ctx := context.Background()
	d, clock := newDeduper(b)

	require.True(t, d.ShouldSend(ctx, "lic", "device_mismatch", "a->b", 24*time.Hour), "no entry yet")
	d.MarkSent(ctx, "lic", "device_mismatch", "a->b")

	clock.Advance(23*time.Hour + 59*time.Minute)
	require.False(t, d.ShouldSend(ctx, "lic", "device_mismatch", "a->b", 24*time.Hour))

	clock.Advance(time.Minute)
	require.True(t, d.ShouldSend(ctx, "lic", "device_mismatch", "a->b", 24*time.Hour), "cooldown boundary is inclusive")

	require.True(t, d.ShouldSend(ctx, "lic", "device_mismatch", "a->c", 24*time.Hour), "fingerprints are independent")
	require.True(t, d.ShouldSend(ctx, "other", "device_mismatch", "a->b", 24*time.Hour), "subjects are independent")
	require.True(t, d.ShouldSend(ctx, "lic", "license_expired", "a->b", 24*time.Hour), "events are independent")

	require.True(t, d.ShouldSend(ctx, "lic", "device_mismatch", "a->b", 0), "zero cooldown always allows")
}

func TestDeduperMemory(t *testing.T) {
	exerciseCooldown(t, alert.NewMemoryBackend())
}

func TestDeduperStoreBackend(t *testing.T) {
	s, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, s.ApplyMigrations())
	t.Cleanup(func() { _ = s.Close() })

	exerciseCooldown(t, alert.StoreBackend{States: s.AlertStates()})
}

func TestDeduperStoreBackendSurvivesRestart(t *testing.T) {
	ctx := context.Background()
	path := t.TempDir() + "/alerts.db"

	s, err := sqlite.NewStore("file:" + path)
	require.NoError(t, err)
	require.NoError(t, s.ApplyMigrations())

	d, clock := newDeduper(alert.StoreBackend{States: s.AlertStates()})
	d.MarkSent(ctx, "monitor", "monitor_errors", "errors:1")
	require.NoError(t, s.Close())

	s, err = sqlite.NewStore("file:" + path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	d2 := alert.NewDeduper(alert.StoreBackend{States: s.AlertStates()}, slogx.Discard())
	d2.Now = clock.Now
	require.False(t, d2.ShouldSend(ctx, "monitor", "monitor_errors", "errors:1", time.Hour))
}

func TestDeduperFailsOpen(t *testing.T) {
	ctx := context.Background()
	b := &brokenBackend{}
	d, _ := newDeduper(b)

	for range 3 {
		require.True(t, d.ShouldSend(ctx, "lic", "device_mismatch", "a->b", 24*time.Hour))
		require.NotPanics(t, func() { d.MarkSent(ctx, "lic", "device_mismatch", "a->b") })
	}
	require.Equal(t, 3, b.puts)
}

func TestDeduperSuppressedHook(t *testing.T) {
	ctx := context.Background()
	d, _ := newDeduper(alert.NewMemoryBackend())

	var suppressed []string
	d.OnSuppressed = func(event string) { suppressed = append(suppressed, event) }

	d.MarkSent(ctx, "monitor", "monitor_slow", "slow:1")
	require.False(t, d.ShouldSend(ctx, "monitor", "monitor_slow", "slow:1", time.Hour))
	require.Equal(t, []string{"monitor_slow"}, suppressed)
}
