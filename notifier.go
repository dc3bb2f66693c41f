package auth

import (
	"context"
	"fmt"
	"net/url"
	"time"
)

// ResetNotification carries everything needed to deliver a password reset
// message. Secret is the plaintext code; only its hash is persisted.
type ResetNotification struct {
	Email     string
	Secret    string
	ResetLink string
	ExpiresAt time.Time
}

// Notifier delivers password reset notifications to users.
type Notifier interface {
	SendPasswordReset(ctx context.Context, notification ResetNotification) error
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(ctx context.Context, notification ResetNotification) error

func (f NotifierFunc) SendPasswordReset(ctx context.Context, notification ResetNotification) error {
	return f(ctx, notification)
}

type noopNotifier struct{}

func (noopNotifier) SendPasswordReset(context.Context, ResetNotification) error { return nil }

func normalizeNotifier(n Notifier) Notifier {
	if n == nil {
		return noopNotifier{}
	}
	return n
}

// LogNotifier writes reset links to the logger instead of sending email.
// Meant for local development.
type LogNotifier struct {
	Logger Logger
}

func (n LogNotifier) SendPasswordReset(_ context.Context, notification ResetNotification) error {
	logger := n.Logger
	if logger == nil {
		logger = defLogger{}
	}
	logger.Info("password reset notification", "email", notification.Email, "link", notification.ResetLink)
	return nil
}

// BuildResetLink composes the link users follow to finish a reset.
func BuildResetLink(baseURL, email, secret string) string {
	return fmt.Sprintf(
		"%s/password-reset?email=%s&code=%s",
		baseURL,
		url.QueryEscape(email),
		url.QueryEscape(secret),
	)
}
