// Package notify is Pierre's outbound-email concern: the SSE hub (internal/sse)
// covers in-session notifications, but some admin-workflow transitions
// (spec.md §4.8's pending -> active approval) warrant a durable, out-of-band
// email even when no SSE subscriber is connected. Adapted from the teacher's
// pkg/notifx EmailSender/Client split, trimmed to the single send path Pierre
// actually exercises — no template registry, no bulk send.
package notify

import "context"

// EmailMessage is the provider-agnostic shape every EmailSender accepts.
type EmailMessage struct {
	To       []string
	Subject  string
	TextBody string
}

// EmailSender delivers a single email. The composition root wires either a
// NoopSender (no SMTP/SES configuration present) or an ses.Provider.
type EmailSender interface {
	SendEmail(ctx context.Context, msg EmailMessage) error
}

// NoopSender discards every message. Used when EMAIL_FROM_ADDRESS is unset
// so admin handlers never have to nil-check their notify.EmailSender.
type NoopSender struct{}

func (NoopSender) SendEmail(context.Context, EmailMessage) error { return nil }
