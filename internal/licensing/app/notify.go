package app

import (
	"context"
	"errors"
	"log/slog"

	"github.com/aussiebroadwan/daftar/internal/licensing/domain"
	"github.com/aussiebroadwan/daftar/internal/licensing/notify"
	"github.com/aussiebroadwan/daftar/internal/licensing/store"
	"github.com/aussiebroadwan/daftar/pkg/idx"
)

const journalActor = "notifier"

// buildSenders picks one sender per channel. Channels without a provider
// fall back to the outbox file when one is configured, then to the log.
func buildSenders(cfg Config, logger *slog.Logger) map[notify.Channel]notify.Sender {
	var fallback notify.Sender = notify.LogSender{Logger: logger}
	if cfg.OutboxFile != "" {
		fallback = notify.NewOutboxSender(cfg.OutboxFile)
	}

	senders := map[notify.Channel]notify.Sender{
		notify.ChannelEmail: fallback,
		notify.ChannelSMS:   fallback,
	}

	if cfg.SMTPHost != "" {
		senders[notify.ChannelEmail] = notify.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.AlertFrom)
		logger.Info("email notifications via smtp", "host", cfg.SMTPHost, "port", cfg.SMTPPort)
	}
	if cfg.SMSWebhookURL != "" {
		senders[notify.ChannelSMS] = notify.NewWebhookSender(cfg.SMSWebhookURL, cfg.SMSWebhookToken)
		logger.Info("sms notifications via webhook")
	}
	return senders
}

// NotificationRecorder receives one call per finished notification.
type NotificationRecorder interface {
	ObserveNotification(channel, result string)
}

// journal returns a dispatcher result hook that writes every outcome to the
// audit log and counts it.
func journal(activity store.Activity, rec NotificationRecorder, logger *slog.Logger) func(notify.Message, error) {
	return func(msg notify.Message, err error) {
		kind, result := domain.ActivityNotificationSent, "sent"
		details := map[string]string{
			"channel": string(msg.Channel),
			"event":   msg.Event,
		}
		switch {
		case err == nil:
		case errors.Is(err, notify.ErrQueueFull),
			errors.Is(err, notify.ErrNoSender),
			errors.Is(err, notify.ErrDispatcherDown):
			kind, result = domain.ActivityNotificationDropped, "dropped"
			details["error"] = err.Error()
		default:
			kind, result = domain.ActivityNotificationFailed, "failed"
			details["error"] = err.Error()
		}

		if rec != nil {
			rec.ObserveNotification(string(msg.Channel), result)
		}

		entry := domain.ActivityEntry{
			ID:          idx.New().String(),
			Kind:        kind,
			LicenseMask: msg.LicenseMask,
			LicenseHash: msg.LicenseHash,
			Actor:       journalActor,
			Details:     details,
		}
		if jerr := activity.AppendActivity(context.Background(), entry); jerr != nil {
			logger.Warn("failed to journal notification", "kind", kind, "error", jerr)
		}
	}
}
