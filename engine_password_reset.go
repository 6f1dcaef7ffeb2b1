package authcore

import (
	"context"

	"github.com/MrEthical07/authcore/internal/flows"
)

// ForgotPassword issues a reset token for username and supersedes any token
// the account already holds. Unknown usernames return ErrNotFound.
func (e *Engine) ForgotPassword(ctx context.Context, username string) (ForgotPasswordResult, error) {
	if e == nil {
		return ForgotPasswordResult{}, ErrEngineNotReady
	}
	return flows.RunForgotPassword(ctx, flows.ForgotPasswordInput{Username: username}, e.flows.Forgot)
}

// ResetPassword redeems token and sets newPassword. The password is checked
// before the token is consumed. Of concurrent calls with one token at most
// one succeeds; the rest, and any later call, return ErrInvalidToken.
func (e *Engine) ResetPassword(ctx context.Context, token, newPassword string) error {
	if e == nil {
		return ErrEngineNotReady
	}
	return flows.RunResetPassword(ctx, flows.ResetPasswordInput{Token: token, NewPassword: newPassword}, e.flows.Reset)
}
