package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// WebhookSender posts short messages to an SMS or WhatsApp gateway as JSON
// {to, message, event}. Bodies are cut to ShortMessageLimit characters.
type WebhookSender struct {
	URL    string
	Token  string
	Client *http.Client
}

func NewWebhookSender(url, token string) *WebhookSender {
	return &WebhookSender{
		URL:    url,
		Token:  token,
		Client: &http.Client{Timeout: 15 * time.Second},
	}
}

type webhookPayload struct {
	To      string `json:"to"`
	Message string `json:"message"`
	Event   string `json:"event,omitempty"`
}

func (s *WebhookSender) Send(ctx context.Context, msg Message) error {
	if msg.To == "" {
		return Permanent(errors.New("webhook: no recipient"))
	}

	body, err := json.Marshal(webhookPayload{
		To:      msg.To,
		Message: Truncate(msg.Body, ShortMessageLimit),
		Event:   msg.Event,
	})
	if err != nil {
		return Permanent(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.URL, bytes.NewReader(body))
	if err != nil {
		return Permanent(err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.Token != "" {
		req.Header.Set("Authorization", "Bearer "+s.Token)
	}

	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests:
		return fmt.Errorf("webhook: gateway returned %d", resp.StatusCode)
	default:
		return Permanent(fmt.Errorf("webhook: gateway rejected message with %d", resp.StatusCode))
	}
}
