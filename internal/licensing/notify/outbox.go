package notify

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// OutboxSender appends each message as one JSON line to a local file. It
// stands in for a channel with no configured provider so operators can
// still see what would have been sent.
type OutboxSender struct {
	Path string

	// Now defaults to time.Now.
	Now func() time.Time

	mu sync.Mutex
}

type outboxRecord struct {
	Time    time.Time `json:"time"`
	Channel Channel   `json:"channel"`
	To      string    `json:"to"`
	Event   string    `json:"event,omitempty"`
	Subject string    `json:"subject,omitempty"`
	Body    string    `json:"body"`
	License string    `json:"license,omitempty"`
}

func NewOutboxSender(path string) *OutboxSender {
	return &OutboxSender{Path: path, Now: time.Now}
}

func (s *OutboxSender) Send(_ context.Context, msg Message) error {
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}

	body := msg.Body
	if msg.Channel == ChannelSMS {
		body = Truncate(body, ShortMessageLimit)
	}

	line, err := json.Marshal(outboxRecord{
		Time:    now().UTC(),
		Channel: msg.Channel,
		To:      msg.To,
		Event:   msg.Event,
		Subject: msg.Subject,
		Body:    body,
		License: msg.LicenseMask,
	})
	if err != nil {
		return Permanent(err)
	}
	line = append(line, '\n')

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.Path), 0o750); err != nil {
		return err
	}
	f, err := os.OpenFile(s.Path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600) // #nosec G304 - operator configured path
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = f.Write(line)
	return err
}
