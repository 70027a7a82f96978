package service

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/aussiebroadwan/daftar/internal/licensing/alert"
	"github.com/aussiebroadwan/daftar/internal/licensing/domain"
	"github.com/aussiebroadwan/daftar/internal/licensing/notify"
	"github.com/aussiebroadwan/daftar/internal/licensing/store"
	"github.com/aussiebroadwan/daftar/pkg/cryptox"
)

// ReminderDays are the days-left marks at which a reminder is sent.
var ReminderDays = []int{7, 3, 1}

// ReminderCooldown covers the whole reminder run-up so each mark fires once.
const ReminderCooldown = 30 * 24 * time.Hour

// ExpiryScanner periodically reminds the operator about licenses that are
// about to expire and sends one notice once they have. The expired notice
// shares its dedup key with Verify so the two never double notify.
type ExpiryScanner struct {
	Store     store.Store
	Alerts    alert.Store
	Notifier  Notifier
	Recipient string
	Logger    *slog.Logger
	Interval  time.Duration

	// ExpiredCooldown applies to the expired notice. Zero means
	// alert.DefaultCooldown, matching BindingService.
	ExpiredCooldown time.Duration

	// Now defaults to time.Now.
	Now func() time.Time

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewExpiryScanner returns a scanner. If interval is 0 or negative it
// defaults to 24 hours.
func NewExpiryScanner(
	st store.Store,
	alerts alert.Store,
	notifier Notifier,
	recipient string,
	logger *slog.Logger,
	interval time.Duration,
) *ExpiryScanner {
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &ExpiryScanner{
		Store:     st,
		Alerts:    alerts,
		Notifier:  notifier,
		Recipient: recipient,
		Logger:    logger,
		Interval:  interval,
		Now:       time.Now,
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
	}
}

func (s *ExpiryScanner) Start() {
	go s.run()
	s.Logger.Info("expiry scanner started", "interval", s.Interval)
}

// Stop blocks until an in-progress scan has finished.
func (s *ExpiryScanner) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("expiry scanner stopped")
}

func (s *ExpiryScanner) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	s.scanLogged()

	for {
		select {
		case <-ticker.C:
			s.scanLogged()
		case <-s.stopCh:
			return
		}
	}
}

func (s *ExpiryScanner) scanLogged() {
	defer func() {
		if rec := recover(); rec != nil {
			s.Logger.Error("expiry scan panicked", slog.Any("panic", rec))
		}
	}()

	sent, err := s.Scan(context.Background())
	if err != nil {
		s.Logger.Error("expiry scan failed", slog.Any("error", err))
		return
	}
	s.Logger.Info("expiry scan completed", slog.Int("notices", sent))
}

// Scan checks every usable record once and returns how many notices were
// queued.
func (s *ExpiryScanner) Scan(ctx context.Context) (int, error) {
	licenses, err := s.Store.Licenses().ListLicensesByStatus(ctx,
		domain.StatusActive, domain.StatusUsed, domain.StatusLocked)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}

	now := s.now()
	sent := 0
	for _, lic := range licenses {
		if s.check(ctx, lic, now) {
			sent++
		}
	}
	return sent, nil
}

func (s *ExpiryScanner) check(ctx context.Context, lic domain.License, now time.Time) bool {
	subject := cryptox.Fingerprint(lic.Key)
	masked := domain.MaskLicenseKey(lic.Key)
	expires := lic.ExpiresAt.UTC().Format(time.RFC3339)

	if lic.IsExpired(now) {
		cooldown := s.ExpiredCooldown
		if cooldown <= 0 {
			cooldown = alert.DefaultCooldown
		}
		return sendAlert(ctx, s.Alerts, s.Notifier, cooldown, subject, EventLicenseExpired, expires,
			notify.Message{
				Channel:     notify.ChannelEmail,
				To:          s.Recipient,
				Subject:     "License expired",
				Body:        fmt.Sprintf("License %s (%s) expired at %s.\n", masked, lic.Plan, expires),
				LicenseMask: masked,
			})
	}

	days := DaysUntil(lic.ExpiresAt, now)
	for _, mark := range ReminderDays {
		if days != mark {
			continue
		}
		return sendAlert(ctx, s.Alerts, s.Notifier, ReminderCooldown, subject, ReminderEvent(mark), expires,
			notify.Message{
				Channel:     notify.ChannelEmail,
				To:          s.Recipient,
				Subject:     fmt.Sprintf("License expires in %d day(s)", mark),
				Body:        fmt.Sprintf("License %s (%s) expires at %s, %d day(s) left.\n", masked, lic.Plan, expires, mark),
				LicenseMask: masked,
			})
	}
	return false
}

func (s *ExpiryScanner) now() time.Time {
	if s.Now == nil {
		return time.Now().UTC()
	}
	return s.Now().UTC()
}

// DaysUntil returns whole days left until t, rounded up.
func DaysUntil(t, now time.Time) int {
	return int(math.Ceil(t.Sub(now).Hours() / 24))
}

func ReminderEvent(days int) string {
	return fmt.Sprintf("expiry_reminder_%dd", days)
}
