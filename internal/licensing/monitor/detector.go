// Package monitor keeps sliding-window counts of errors, failed
// authentications and slow requests, and raises a deduplicated alert when a
// count crosses its threshold.
package monitor

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/daftar/internal/licensing/alert"
	"github.com/aussiebroadwan/daftar/internal/licensing/notify"
)

// Alert identities.
const (
	Subject = "monitor"

	EventErrors     = "monitor_errors"
	EventFailedAuth = "monitor_failed_auth"
	EventSlow       = "monitor_slow"
)

type Config struct {
	Enabled bool

	Window   time.Duration
	Interval time.Duration

	ErrorThreshold      int
	FailedAuthThreshold int
	SlowThreshold       int

	// SlowRequest is the latency at or above which a request counts as slow.
	SlowRequest time.Duration

	Cooldown time.Duration

	// Recipient receives anomaly emails.
	Recipient string
}

func DefaultConfig() Config {
	return Config{
		Enabled:             true,
		Window:              time.Hour,
		Interval:            5 * time.Minute,
		ErrorThreshold:      10,
		FailedAuthThreshold: 20,
		SlowThreshold:       50,
		SlowRequest:         800 * time.Millisecond,
		Cooldown:            alert.DefaultCooldown,
	}
}

// Notifier accepts a message for async delivery and never blocks.
type Notifier interface {
	Enqueue(msg notify.Message) bool
}

// Snapshot is the pruned state of the three windows.
type Snapshot struct {
	Errors        int   `json:"errors"`
	FailedAuths   int   `json:"failedAuths"`
	SlowRequests  int   `json:"slowRequests"`
	WindowMs      int64 `json:"windowMs"`
	SlowRequestMs int64 `json:"slowRequestMs"`
}

// Detector is safe for concurrent use. Recording is cheap and never fails;
// evaluation runs on its own ticker.
type Detector struct {
	cfg      Config
	alerts   alert.Store
	notifier Notifier
	logger   *slog.Logger

	// Now defaults to time.Now.
	Now func() time.Time

	errs        window
	failedAuths window
	slow        window

	stopCh chan struct{}
	doneCh chan struct{}
}

func NewDetector(cfg Config, alerts alert.Store, notifier Notifier, logger *slog.Logger) *Detector {
	def := DefaultConfig()
	if cfg.Window <= 0 {
		cfg.Window = def.Window
	}
	if cfg.Interval <= 0 {
		cfg.Interval = def.Interval
	}
	if cfg.SlowRequest <= 0 {
		cfg.SlowRequest = def.SlowRequest
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = def.Cooldown
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Detector{
		cfg:      cfg,
		alerts:   alerts,
		notifier: notifier,
		logger:   logger,
		Now:      time.Now,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

func (d *Detector) now() time.Time {
	if d.Now == nil {
		return time.Now()
	}
	return d.Now()
}

func (d *Detector) Enabled() bool { return d.cfg.Enabled }

func (d *Detector) RecordError() {
	if d.cfg.Enabled {
		d.errs.add(d.now(), d.cfg.Window)
	}
}

func (d *Detector) RecordFailedAuth() {
	if d.cfg.Enabled {
		d.failedAuths.add(d.now(), d.cfg.Window)
	}
}

// RecordSlowRequest records duration if it is at or above the slow threshold.
func (d *Detector) RecordSlowRequest(duration time.Duration) {
	if d.cfg.Enabled && duration >= d.cfg.SlowRequest {
		d.slow.add(d.now(), d.cfg.Window)
	}
}

// ObserveRequest records a server error for 5xx statuses and a slow request
// when duration crosses the threshold.
func (d *Detector) ObserveRequest(status int, duration time.Duration) {
	if status >= http.StatusInternalServerError {
		d.RecordError()
	}
	d.RecordSlowRequest(duration)
}

func (d *Detector) Snapshot() Snapshot {
	now := d.now()
	return Snapshot{
		Errors:        d.errs.count(now, d.cfg.Window),
		FailedAuths:   d.failedAuths.count(now, d.cfg.Window),
		SlowRequests:  d.slow.count(now, d.cfg.Window),
		WindowMs:      d.cfg.Window.Milliseconds(),
		SlowRequestMs: d.cfg.SlowRequest.Milliseconds(),
	}
}

// Evaluate checks every window against its threshold and sends at most one
// alert per metric per minute bucket, subject to the dedup cooldown. It
// never panics.
func (d *Detector) Evaluate(ctx context.Context) {
	if !d.cfg.Enabled {
		return
	}
	defer func() {
		if rec := recover(); rec != nil {
			d.logger.Error("anomaly evaluation panicked", slog.Any("panic", rec))
		}
	}()

	snap := d.Snapshot()
	minute := d.now().Unix() / 60

	checks := []struct {
		event     string
		metric    string
		count     int
		threshold int
		label     string
	}{
		{EventErrors, "errors", snap.Errors, d.cfg.ErrorThreshold, "server errors"},
		{EventFailedAuth, "failed_auth", snap.FailedAuths, d.cfg.FailedAuthThreshold, "failed authentications"},
		{EventSlow, "slow", snap.SlowRequests, d.cfg.SlowThreshold, "slow requests"},
	}

	for _, c := range checks {
		if c.threshold <= 0 || c.count < c.threshold {
			continue
		}

		fingerprint := fmt.Sprintf("%s:%d", c.metric, minute)
		if !d.alerts.ShouldSend(ctx, Subject, c.event, fingerprint, d.cfg.Cooldown) {
			continue
		}

		d.logger.Warn("anomaly threshold crossed",
			slog.String("event", c.event),
			slog.Int("count", c.count),
			slog.Int("threshold", c.threshold),
		)

		queued := d.notifier != nil && d.notifier.Enqueue(notify.Message{
			Channel: notify.ChannelEmail,
			To:      d.cfg.Recipient,
			Event:   c.event,
			Subject: fmt.Sprintf("Anomaly: %d %s in the last %s", c.count, c.label, d.cfg.Window),
			Body: fmt.Sprintf(
				"%d %s were recorded in the last %s (threshold %d).\nTime: %s\n",
				c.count, c.label, d.cfg.Window, c.threshold, d.now().UTC().Format(time.RFC3339),
			),
		})
		// Unqueued alerts leave the gate open for the next sweep.
		if !queued {
			d.logger.Warn("anomaly alert not queued", slog.String("event", c.event))
			continue
		}
		d.alerts.MarkSent(ctx, Subject, c.event, fingerprint)
	}
}

// Start runs Evaluate every Interval until Stop is called.
func (d *Detector) Start() {
	go d.run()
	d.logger.Info("anomaly detector started",
		"interval", d.cfg.Interval,
		"window", d.cfg.Window,
		"enabled", d.cfg.Enabled,
	)
}

// Stop halts the sweep and waits for an in-progress evaluation.
func (d *Detector) Stop() {
	close(d.stopCh)
	<-d.doneCh
	d.logger.Info("anomaly detector stopped")
}

func (d *Detector) run() {
	defer close(d.doneCh)

	ticker := time.NewTicker(d.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			d.Evaluate(context.Background())
		case <-d.stopCh:
			return
		}
	}
}
