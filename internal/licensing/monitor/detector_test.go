package monitor_test

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/daftar/internal/licensing/alert"
	"github.com/aussiebroadwan/daftar/internal/licensing/monitor"
	"github.com/aussiebroadwan/daftar/internal/licensing/notify"
	"github.com/aussiebroadwan/daftar/pkg/slogx"
	"github.com/stretchr/testify/require"
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type outbox struct {
	mu      sync.Mutex
	msgs    []notify.Message
	refused int
	full    bool
}

func (o *outbox) Enqueue(msg notify.Message) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.full {
		o.refused++
		return false
	}
	o.msgs = append(o.msgs, msg)
	return true
}

func (o *outbox) events() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]string, 0, len(o.msgs))
	for _, m := range o.msgs {
		out = append(out, m.Event)
	}
	return out
}

func testConfig() monitor.Config {
	cfg := monitor.DefaultConfig()
	cfg.ErrorThreshold = 3
	cfg.FailedAuthThreshold = 2
	cfg.SlowThreshold = 2
	cfg.Window = 10 * time.Minute
	cfg.Recipient = "ops@example.com"
	return cfg
}

func newDetector(t *testing.T, cfg monitor.Config) (*monitor.Detector, *outbox, *clock) {
	t.Helper()
	clk := &clock{now: time.Date(2026, 3, 1, 12, 0, 30, 0, time.UTC)}

	dedup := alert.NewDeduper(alert.NewMemoryBackend(), slogx.Discard())
	dedup.Now = clk.Now

	ob := &outbox{}
	d := monitor.NewDetector(cfg, dedup, ob, slogx.Discard())
	d.Now = clk.Now
	return d, ob, clk
}

func TestDetectorThresholds(t *testing.T) {
	ctx := context.Background()
	d, ob, _ := newDetector(t, testConfig())

	d.RecordError()
	d.RecordError()
	d.Evaluate(ctx)
	require.Empty(t, ob.events(), "below threshold")

	d.RecordError()
	d.RecordFailedAuth()
	d.RecordFailedAuth()
	d.Evaluate(ctx)
	require.ElementsMatch(t, []string{monitor.EventErrors, monitor.EventFailedAuth}, ob.events())

	ob.mu.Lock()
	msg := ob.msgs[0]
	ob.mu.Unlock()
	require.Equal(t, notify.ChannelEmail, msg.Channel)
	require.Equal(t, "ops@example.com", msg.To)
	require.Contains(t, msg.Subject, "Anomaly")
}

func TestDetectorAlertsOncePerCooldown(t *testing.T) {
	ctx := context.Background()
	d, ob, clk := newDetector(t, testConfig())

	for range 5 {
		d.RecordError()
	}
	d.Evaluate(ctx)
	d.Evaluate(ctx)
	require.Len(t, ob.events(), 1)

	// New minute bucket, still inside the cooldown for that bucket's key.
	clk.Advance(time.Minute)
	for range 5 {
		d.RecordError()
	}
	d.Evaluate(ctx)
	require.Len(t, ob.events(), 2, "a new minute bucket is a new fingerprint")

	d.Evaluate(ctx)
	require.Len(t, ob.events(), 2)
}

func TestDetectorRefusedAlertIsRetried(t *testing.T) {
	ctx := context.Background()
	d, ob, _ := newDetector(t, testConfig())
	ob.full = true

	for range 5 {
		d.RecordError()
	}
	d.Evaluate(ctx)
	d.Evaluate(ctx)
	require.Equal(t, 2, ob.refused, "an unqueued alert does not close the gate")

	ob.mu.Lock()
	ob.full = false
	ob.mu.Unlock()
	d.Evaluate(ctx)
	d.Evaluate(ctx)
	require.Equal(t, []string{monitor.EventErrors}, ob.events())
}

func TestDetectorWindowSlides(t *testing.T) {
	d, _, clk := newDetector(t, testConfig())

	d.RecordError()
	d.RecordFailedAuth()
	d.RecordSlowRequest(time.Second)
	d.RecordSlowRequest(100 * time.Millisecond)

	snap := d.Snapshot()
	require.Equal(t, 1, snap.Errors)
	require.Equal(t, 1, snap.FailedAuths)
	require.Equal(t, 1, snap.SlowRequests)
	require.Equal(t, int64(600000), snap.WindowMs)
	require.Equal(t, int64(800), snap.SlowRequestMs)

	clk.Advance(10 * time.Minute)
	snap = d.Snapshot()
	require.Zero(t, snap.Errors)
	require.Zero(t, snap.FailedAuths)
	require.Zero(t, snap.SlowRequests)
}

func TestDetectorObserveRequest(t *testing.T) {
	d, _, _ := newDetector(t, testConfig())

	d.ObserveRequest(http.StatusOK, 10*time.Millisecond)
	d.ObserveRequest(http.StatusNotFound, 900*time.Millisecond)
	d.ObserveRequest(http.StatusInternalServerError, 800*time.Millisecond)
	d.ObserveRequest(http.StatusServiceUnavailable, time.Millisecond)

	snap := d.Snapshot()
	require.Equal(t, 2, snap.Errors)
	require.Equal(t, 2, snap.SlowRequests)
	require.Zero(t, snap.FailedAuths)
}

func TestDetectorDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.Enabled = false
	d, ob, _ := newDetector(t, cfg)

	for range 10 {
		d.RecordError()
		d.RecordFailedAuth()
	}
	d.Evaluate(context.Background())

	require.Zero(t, d.Snapshot().Errors)
	require.Empty(t, ob.events())
}

type panickyStore struct{}

func (panickyStore) ShouldSend(context.Context, string, string, string, time.Duration) bool {
	panic("boom")
}

func (panickyStore) MarkSent(context.Context, string, string, string) {}

func TestDetectorEvaluateNeverPanics(t *testing.T) {
	d := monitor.NewDetector(testConfig(), panickyStore{}, &outbox{}, slogx.Discard())
	for range 5 {
		d.RecordError()
	}
	require.NotPanics(t, func() { d.Evaluate(context.Background()) })
}

func TestDetectorStartStop(t *testing.T) {
	cfg := testConfig()
	cfg.Interval = 5 * time.Millisecond

	dedup := alert.NewDeduper(alert.NewMemoryBackend(), slogx.Discard())
	ob := &outbox{}
	d := monitor.NewDetector(cfg, dedup, ob, slogx.Discard())
	for range 3 {
		d.RecordError()
	}

	d.Start()
	require.Eventually(t, func() bool { return len(ob.events()) >= 1 }, 2*time.Second, 5*time.Millisecond)
	d.Stop()
}
