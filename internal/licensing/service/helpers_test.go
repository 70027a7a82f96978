package service_test

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/daftar/internal/licensing/alert"
	"github.com/aussiebroadwan/daftar/internal/licensing/domain"
	"github.com/aussiebroadwan/daftar/internal/licensing/notify"
	"github.com/aussiebroadwan/daftar/internal/licensing/service"
	"github.com/aussiebroadwan/daftar/internal/licensing/store/drivers/sqlite"
	"github.com/aussiebroadwan/daftar/pkg/idx"
	"github.com/aussiebroadwan/daftar/pkg/licensekey"
	"github.com/aussiebroadwan/daftar/pkg/slogx"
	"github.com/stretchr/testify/require"
)

var (
	keyOnce sync.Once
	testKey *rsa.PrivateKey
)

func signingKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	keyOnce.Do(func() {
		k, err := rsa.GenerateKey(rand.Reader, 2048)
		if err != nil {
			panic(err)
		}
		testKey = k
	})
	return testKey
}

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
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// recordingNotifier captures queued messages.
type recordingNotifier struct {
	mu   sync.Mutex
	msgs []notify.Message
}

func (n *recordingNotifier) Enqueue(msg notify.Message) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.msgs = append(n.msgs, msg)
	return true
}

func (n *recordingNotifier) byEvent(event string) []notify.Message {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []notify.Message
	for _, m := range n.msgs {
		if m.Event == event {
			out = append(out, m)
		}
	}
	return out
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.msgs)
}

type countingRecorder struct {
	mu     sync.Mutex
	counts map[string]int
}

func (r *countingRecorder) ObserveOperation(op, result string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.counts == nil {
		r.counts = map[string]int{}
	}
	r.counts[op+"/"+result]++
}

func (r *countingRecorder) get(op, result string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.counts[op+"/"+result]
}

type fixture struct {
	svc      *service.BindingService
	store    *sqlite.Store
	notifier *recordingNotifier
	clock    *fakeClock
	metrics  *countingRecorder
	priv     *rsa.PrivateKey
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, st.ApplyMigrations())
	t.Cleanup(func() { _ = st.Close() })

	clk := &fakeClock{now: time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)}
	dedup := alert.NewDeduper(alert.NewMemoryBackend(), slogx.Discard())
	dedup.Now = clk.Now

	priv := signingKey(t)
	n := &recordingNotifier{}
	m := &countingRecorder{}

	return &fixture{
		svc: &service.BindingService{
			Store:     st,
			PublicKey: &priv.PublicKey,
			Alerts:    dedup,
			Notifier:  n,
			Recipients: service.Recipients{
				Email: "owner@example.com",
				Phone: "+62811000000",
			},
			Metrics: m,
			Now:     clk.Now,
		},
		store:    st,
		notifier: n,
		clock:    clk,
		metrics:  m,
		priv:     priv,
	}
}

// issue signs a key for plan and stores a matching record.
func (f *fixture) issue(t *testing.T, expiresAt time.Time) string {
	t.Helper()

	key := f.sign(t, licensekey.Payload{Plan: "pro", ExpiresAt: expiresAt})
	require.NoError(t, f.store.Licenses().CreateLicense(context.Background(), domain.License{
		ID:        idx.New().String(),
		Key:       key,
		Status:    domain.StatusActive,
		Plan:      "pro",
		ExpiresAt: expiresAt,
	}))
	return key
}

func (f *fixture) sign(t *testing.T, p licensekey.Payload) string {
	t.Helper()
	key, err := licensekey.Sign(f.priv, p)
	require.NoError(t, err)
	return key
}

func (f *fixture) future() time.Time { return f.clock.Now().Add(90 * 24 * time.Hour) }

func (f *fixture) activate(key, device string) (service.Entitlement, error) {
	return f.svc.Activate(context.Background(), service.ActivateRequest{
		Key:       key,
		DeviceID:  device,
		Requester: service.Requester{IP: "203.0.113.7", UserAgent: "daftar-desktop/1.0"},
	})
}
