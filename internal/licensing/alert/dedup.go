// Package alert decides whether a notification for a given subject, event
// and context fingerprint may be sent again. Entries never expire on their
// own; a later send simply overwrites the timestamp.
package alert

import (
	"context"
	"log/slog"
	"strings"
	"time"
)

// DefaultCooldown is the cooldown used by every built-in alert.
const DefaultCooldown = 24 * time.Hour

// Store is the dedup contract used by the binding engine and the detector.
// ShouldSend fails open: if state cannot be read it returns true.
type Store interface {
	ShouldSend(ctx context.Context, subject, event, fingerprint string, cooldown time.Duration) bool
	MarkSent(ctx context.Context, subject, event, fingerprint string)
}

// Backend persists last-sent timestamps by composite key.
type Backend interface {
	// LastSent reports the stored time and whether an entry exists.
	LastSent(ctx context.Context, key string) (time.Time, bool, error)
	Put(ctx context.Context, key string, at time.Time) error
}

// Key joins the three parts of an entry's identity.
func Key(subject, event, fingerprint string) string {
	return strings.Join([]string{subject, event, fingerprint}, "::")
}

// Deduper implements Store over any Backend.
type Deduper struct {
	Backend Backend
	Logger  *slog.Logger

	// Now defaults to time.Now.
	Now func() time.Time

	// OnSuppressed, when set, is called with the event of every alert held
	// back by the cooldown.
	OnSuppressed func(event string)
}

func NewDeduper(b Backend, logger *slog.Logger) *Deduper {
	if logger == nil {
		logger = slog.Default()
	}
	return &Deduper{Backend: b, Logger: logger, Now: time.Now}
}

func (d *Deduper) now() time.Time {
	if d.Now == nil {
		return time.Now()
	}
	return d.Now()
}

// ShouldSend reports whether no entry exists or at least cooldown has
// elapsed since the last send. A zero or negative cooldown always allows.
func (d *Deduper) ShouldSend(ctx context.Context, subject, event, fingerprint string, cooldown time.Duration) bool {
	key := Key(subject, event, fingerprint)

	last, ok, err := d.Backend.LastSent(ctx, key)
	if err != nil {
		d.Logger.Warn("alert state unavailable, allowing send",
			slog.String("event", event),
			slog.Any("error", err),
		)
		return true
	}
	if !ok {
		return true
	}

	if d.now().Sub(last) >= cooldown {
		return true
	}

	if d.OnSuppressed != nil {
		d.OnSuppressed(event)
	}
	d.Logger.Debug("alert suppressed by cooldown",
		slog.String("event", event),
		slog.String("fingerprint", fingerprint),
		slog.Time("last_sent", last),
	)
	return false
}

// MarkSent records now as the last send for the entry. Failures are logged
// and otherwise ignored.
func (d *Deduper) MarkSent(ctx context.Context, subject, event, fingerprint string) {
	key := Key(subject, event, fingerprint)
	if err := d.Backend.Put(ctx, key, d.now().UTC()); err != nil {
		d.Logger.Warn("failed to persist alert state",
			slog.String("event", event),
			slog.Any("error", err),
		)
	}
}
