package authcore

import (
	"context"

	"github.com/MrEthical07/authcore/internal/logging"
)

// NopMailer discards every message.
type NopMailer struct{}

func (NopMailer) SendVerification(context.Context, string, string) error  { return nil }
func (NopMailer) SendPasswordReset(context.Context, string, string) error { return nil }

// LogMailer logs each message instead of sending it. Tokens are redacted
// to their first four characters.
type LogMailer struct {
	Logger logging.Logger
}

func (m LogMailer) SendVerification(ctx context.Context, to, token string) error {
	m.logger().Info(ctx, "verification mail", "to", to, "token", redactToken(token))
	return nil
}

func (m LogMailer) SendPasswordReset(ctx context.Context, to, token string) error {
	m.logger().Info(ctx, "password reset mail", "to", to, "token", redactToken(token))
	return nil
}

func (m LogMailer) logger() logging.Logger {
	if m.Logger == nil {
		return logging.Nop()
	}
	return m.Logger
}

func redactToken(token string) string {
	if len(token) <= 4 {
		return "****"
	}
	return token[:4] + "****"
}

const (
	mailKindVerification = "verification"
	mailKindReset        = "password_reset"
)

// dispatchMail sends on a background goroutine with its own deadline. The
// request context only contributes its values, never its cancellation.
func (e *Engine) dispatchMail(ctx context.Context, kind, to, token string) {
	if e.mailer == nil || to == "" {
		return
	}
	e.mailMu.Lock()
	if e.closed.Load() {
		e.mailMu.Unlock()
		return
	}
	e.mailWG.Add(1)
	e.mailMu.Unlock()

	detached := context.WithoutCancel(ctx)
	go func() {
		defer e.mailWG.Done()

		sendCtx, cancel := context.WithTimeout(detached, e.config.Email.DispatchTimeout)
		defer cancel()

		var err error
		switch kind {
		case mailKindVerification:
			err = e.mailer.SendVerification(sendCtx, to, token)
		case mailKindReset:
			err = e.mailer.SendPasswordReset(sendCtx, to, token)
		}
		if err != nil {
			e.metricInc(MetricMailFailure)
			e.logger.Warn(sendCtx, "mail dispatch failed", "kind", kind, "err", err)
		}
	}()
}
