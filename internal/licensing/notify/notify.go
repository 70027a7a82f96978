// Package notify delivers alert messages asynchronously over email and a
// short-message channel. Delivery failures are logged and reported to a
// result hook; they never reach the caller that enqueued the message.
package notify

import (
	"context"
	"errors"
	"unicode/utf8"
)

type Channel string

const (
	ChannelEmail Channel = "email"
	ChannelSMS   Channel = "sms" // WhatsApp or SMS gateway
)

// ShortMessageLimit caps secondary channel bodies, in characters.
const ShortMessageLimit = 300

type Message struct {
	Channel Channel
	To      string
	Event   string
	Subject string
	Body    string

	// LicenseMask and LicenseHash tie the message to a license in the
	// activity log without exposing the key.
	LicenseMask string
	LicenseHash string
}

type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// SenderFunc adapts a function to Sender.
type SenderFunc func(ctx context.Context, msg Message) error

func (f SenderFunc) Send(ctx context.Context, msg Message) error { return f(ctx, msg) }

type permanentError struct{ err error }

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent marks err as not worth retrying.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

func IsPermanent(err error) bool {
	var p *permanentError
	return errors.As(err, &p)
}

// Truncate shortens s to at most limit characters, marking the cut with an
// ellipsis.
func Truncate(s string, limit int) string {
	if limit <= 0 || utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	if limit <= 3 {
		return string(runes[:limit])
	}
	return string(runes[:limit-3]) + "..."
}
