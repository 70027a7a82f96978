// Package service implements the license binding engine: verification,
// first-writer-wins device activation and the admin state transitions, with
// audit entries and deduplicated notifications on notable events.
package service

import (
	"context"
	"crypto/rsa"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/aussiebroadwan/daftar/internal/licensing/alert"
	"github.com/aussiebroadwan/daftar/internal/licensing/domain"
	"github.com/aussiebroadwan/daftar/internal/licensing/notify"
	"github.com/aussiebroadwan/daftar/internal/licensing/store"
	"github.com/aussiebroadwan/daftar/pkg/cryptox"
	"github.com/aussiebroadwan/daftar/pkg/idx"
	"github.com/aussiebroadwan/daftar/pkg/licensekey"
	"github.com/aussiebroadwan/daftar/pkg/slogx"
)

// MinDeviceIDLength is the shortest accepted device identifier, in characters.
const MinDeviceIDLength = 4

// Alert events raised by the binding engine.
const (
	EventLicenseExpired = "license_expired"
	EventDeviceMismatch = "device_mismatch"
)

// maxBindAttempts bounds re-reads when a concurrent reset races the bind.
const maxBindAttempts = 3

// Notifier accepts a message for async delivery and never blocks.
type Notifier interface {
	Enqueue(msg notify.Message) bool
}

// Recorder counts operation outcomes.
type Recorder interface {
	ObserveOperation(operation, result string)
}

// Recipients are the operator addresses for alerts. Either may be empty.
type Recipients struct {
	Email string
	Phone string
}

type BindingService struct {
	Store     store.Store
	PublicKey *rsa.PublicKey
	Alerts    alert.Store
	Notifier  Notifier

	Recipients Recipients

	// Cooldown applies to expiry, mismatch and admin alerts. Zero means
	// alert.DefaultCooldown.
	Cooldown time.Duration

	// Metrics is optional.
	Metrics Recorder

	// Now defaults to time.Now.
	Now func() time.Time
}

// Entitlement is what a successful verify or activate reveals about a record.
type Entitlement struct {
	Plan        string
	ExpiresAt   time.Time
	DeviceID    *string
	ActivatedAt *time.Time
	Status      domain.Status
}

func entitlementOf(l domain.License) Entitlement {
	return Entitlement{
		Plan:        l.Plan,
		ExpiresAt:   l.ExpiresAt,
		DeviceID:    l.DeviceID,
		ActivatedAt: l.ActivatedAt,
		Status:      l.Status,
	}
}

// Requester describes the client behind an activation for the audit log.
type Requester struct {
	IP        string
	UserAgent string
}

type ActivateRequest struct {
	Key          string
	DeviceID     string
	CustomerName string
	Requester    Requester
}

func (s *BindingService) now() time.Time {
	if s.Now == nil {
		return time.Now().UTC()
	}
	return s.Now().UTC()
}

func (s *BindingService) cooldown() time.Duration {
	if s.Cooldown <= 0 {
		return alert.DefaultCooldown
	}
	return s.Cooldown
}

func (s *BindingService) observe(operation string, err error) {
	if s.Metrics != nil {
		s.Metrics.ObserveOperation(operation, resultLabel(err))
	}
}

// Verify checks the key's format and signature and then the live record.
// An expired record triggers at most one expiry alert per cooldown.
func (s *BindingService) Verify(ctx context.Context, key string) (ent Entitlement, err error) {
	defer func() { s.observe("verify", err) }()

	lic, err := s.check(ctx, key)
	if errors.Is(err, ErrExpired) {
		s.notifyExpired(ctx, lic)
	}
	if err != nil {
		return Entitlement{}, err
	}
	return entitlementOf(lic), nil
}

// check runs the shared verification steps. On ErrExpired the record is
// returned alongside the error.
func (s *BindingService) check(ctx context.Context, key string) (domain.License, error) {
	log := slogx.FromContext(ctx)

	parts, err := licensekey.Parse(key)
	if err != nil {
		return domain.License{}, ErrInvalidFormat
	}
	if !licensekey.Verify(s.PublicKey, parts.Payload, parts.Signature) {
		return domain.License{}, ErrInvalidSignature
	}
	if _, err := licensekey.DecodePayload(parts.Payload); err != nil {
		return domain.License{}, ErrMalformedPayload
	}

	key = strings.TrimSpace(key)
	lic, err := s.Store.Licenses().GetLicenseByKey(ctx, key)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.License{}, ErrNotFound
		}
		log.Error("failed to load license",
			slog.String("license", domain.MaskLicenseKey(key)),
			slog.Any("error", err),
		)
		return domain.License{}, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}

	return lic, s.checkState(lic)
}

func (s *BindingService) checkState(lic domain.License) error {
	if !lic.Status.Usable() {
		return blocked(lic.Status)
	}
	if lic.IsExpired(s.now()) {
		return ErrExpired
	}
	return nil
}

// Activate binds the license to req.DeviceID on first use. Repeating the call
// from the bound device succeeds; any other device gets DEVICE_MISMATCH,
// an audit entry and at most one alert per cooldown.
func (s *BindingService) Activate(ctx context.Context, req ActivateRequest) (ent Entitlement, err error) {
	defer func() { s.observe("activate", err) }()
	log := slogx.FromContext(ctx)

	deviceID := strings.TrimSpace(req.DeviceID)
	if utf8.RuneCountInString(deviceID) < MinDeviceIDLength {
		return Entitlement{}, ErrDeviceRequired
	}

	lic, err := s.check(ctx, req.Key)
	if err != nil {
		return Entitlement{}, err
	}
	masked := domain.MaskLicenseKey(lic.Key)

	for attempt := 0; !lic.IsBound() && attempt < maxBindAttempts; attempt++ {
		now := s.now()
		customer := optionalString(req.CustomerName)

		won, err := s.Store.Licenses().BindDevice(ctx, lic.Key, deviceID, customer, now)
		if err != nil {
			log.Error("failed to bind license",
				slog.String("license", masked),
				slog.Any("error", err),
			)
			return Entitlement{}, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
		}

		if won {
			s.audit(ctx, s.Store.Activity(), domain.ActivityEntry{
				Kind:        domain.ActivityLicenseActivated,
				LicenseMask: masked,
				LicenseHash: cryptox.Fingerprint(lic.Key),
				Actor:       req.Requester.IP,
				Details: map[string]string{
					"device_id":  deviceID,
					"user_agent": req.Requester.UserAgent,
				},
			})
			log.Info("license activated", slog.String("license", masked))

			lic.DeviceID = &deviceID
			lic.ActivatedAt = &now
			lic.Status = domain.StatusLocked
			if customer != nil {
				lic.CustomerName = customer
			}
			return entitlementOf(lic), nil
		}

		// Lost the race: evaluate against whatever binding won.
		lic, err = s.Store.Licenses().GetLicenseByKey(ctx, lic.Key)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return Entitlement{}, ErrNotFound
			}
			return Entitlement{}, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
		}
		if err := s.checkState(lic); err != nil {
			return Entitlement{}, err
		}
	}

	if !lic.IsBound() {
		return Entitlement{}, fmt.Errorf("%w: binding did not settle", ErrStoreUnavailable)
	}

	if lic.BoundTo(deviceID) {
		if lic.Status != domain.StatusLocked {
			if err := s.Store.Licenses().PromoteToLocked(ctx, lic.Key, deviceID); err != nil {
				log.Warn("failed to promote license to LOCKED",
					slog.String("license", masked),
					slog.Any("error", err),
				)
			} else {
				lic.Status = domain.StatusLocked
			}
		}
		return entitlementOf(lic), nil
	}

	s.deviceMismatch(ctx, lic, deviceID, req.Requester)
	return Entitlement{}, ErrDeviceMismatch
}

func (s *BindingService) deviceMismatch(ctx context.Context, lic domain.License, attempted string, req Requester) {
	log := slogx.FromContext(ctx)
	masked := domain.MaskLicenseKey(lic.Key)
	subject := cryptox.Fingerprint(lic.Key)
	existing := *lic.DeviceID

	log.Warn("license device mismatch",
		slog.String("license", masked),
		slog.String("ip", req.IP),
	)

	s.audit(ctx, s.Store.Activity(), domain.ActivityEntry{
		Kind:        domain.ActivityDeviceMismatch,
		LicenseMask: masked,
		LicenseHash: subject,
		Actor:       req.IP,
		Details: map[string]string{
			"existing_device":  existing,
			"attempted_device": attempted,
			"ip":               req.IP,
			"user_agent":       req.UserAgent,
		},
	})

	now := s.now()
	body := fmt.Sprintf(
		"An activation was attempted from a different device.\n\nLicense: %s\nBound device: %s\nAttempted device: %s\nIP: %s\nUser agent: %s\nTime: %s\n",
		masked, existing, attempted, req.IP, req.UserAgent, now.Format(time.RFC3339),
	)
	short := fmt.Sprintf("License alert: %s activation attempt from device %s (bound to %s) at %s",
		masked, attempted, existing, now.Format(time.RFC3339))

	s.alert(ctx, lic, EventDeviceMismatch, existing+"->"+attempted,
		notify.Message{
			Channel: notify.ChannelEmail,
			To:      s.Recipients.Email,
			Subject: "License activation from a different device",
			Body:    body,
		},
		notify.Message{
			Channel: notify.ChannelSMS,
			To:      s.Recipients.Phone,
			Body:    short,
		},
	)
}

func (s *BindingService) notifyExpired(ctx context.Context, lic domain.License) {
	masked := domain.MaskLicenseKey(lic.Key)
	s.alert(ctx, lic, EventLicenseExpired, lic.ExpiresAt.UTC().Format(time.RFC3339),
		notify.Message{
			Channel: notify.ChannelEmail,
			To:      s.Recipients.Email,
			Subject: "License expired",
			Body: fmt.Sprintf("License %s (%s) expired at %s and was used after expiry.\n",
				masked, lic.Plan, lic.ExpiresAt.UTC().Format(time.RFC3339)),
		},
	)
}

// alert sends msgs behind a single dedup gate. Messages without a recipient
// are skipped; the gate is only marked if at least one message was queued.
func (s *BindingService) alert(ctx context.Context, lic domain.License, event, fingerprint string, msgs ...notify.Message) {
	masked := domain.MaskLicenseKey(lic.Key)
	for i := range msgs {
		msgs[i].LicenseMask = masked
	}
	sendAlert(ctx, s.Alerts, s.Notifier, s.cooldown(), cryptox.Fingerprint(lic.Key), event, fingerprint, msgs...)
}

func sendAlert(
	ctx context.Context,
	alerts alert.Store,
	notifier Notifier,
	cooldown time.Duration,
	subject, event, fingerprint string,
	msgs ...notify.Message,
) bool {
	if alerts == nil || notifier == nil {
		return false
	}

	var pending []notify.Message
	for _, m := range msgs {
		if m.To != "" {
			pending = append(pending, m)
		}
	}
	if len(pending) == 0 {
		return false
	}

	if !alerts.ShouldSend(ctx, subject, event, fingerprint, cooldown) {
		return false
	}

	queued := false
	for _, m := range pending {
		m.Event = event
		m.LicenseHash = subject
		if notifier.Enqueue(m) {
			queued = true
		} else {
			slogx.FromContext(ctx).Warn("alert not queued",
				slog.String("event", event),
				slog.String("channel", string(m.Channel)),
				slog.Any("error", ErrNotifyFailed),
			)
		}
	}
	if queued {
		alerts.MarkSent(ctx, subject, event, fingerprint)
	}
	return queued
}

// audit appends e through repo. Failures are logged and never change the
// outcome of the operation.
func (s *BindingService) audit(ctx context.Context, repo store.Activity, e domain.ActivityEntry) {
	if err := repo.AppendActivity(ctx, s.entry(e)); err != nil {
		slogx.FromContext(ctx).Warn("failed to write activity entry",
			slog.String("kind", e.Kind),
			slog.Any("error", err),
		)
	}
}

func (s *BindingService) entry(e domain.ActivityEntry) domain.ActivityEntry {
	now := s.now()
	if e.ID == "" {
		e.ID = idx.NewAt(now).String()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now
	}
	return e
}

func optionalString(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
