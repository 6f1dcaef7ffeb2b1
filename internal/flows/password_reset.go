package flows

import (
	"context"
	"fmt"
	"time"

	"github.com/MrEthical07/authcore/internal/model"
)

type ForgotPasswordResult struct {
	Token     string
	ExpiresAt time.Time
}

type PasswordResetMetrics struct {
	PasswordResetRequest        int
	PasswordResetConfirmSuccess int
	PasswordResetConfirmFailure int
}

type PasswordResetEvents struct {
	PasswordResetRequest string
	PasswordResetConfirm string
}

type ForgotPasswordDeps struct {
	Hooks

	TokenTTL time.Duration

	GetByUsername     func(ctx context.Context, username string) (model.Account, bool, error)
	NewToken          func() (string, error)
	SaveResetToken    func(ctx context.Context, token model.ResetToken) error
	SendPasswordReset func(ctx context.Context, email, token string)

	Metrics PasswordResetMetrics
	Events  PasswordResetEvents
}

// RunForgotPassword issues a reset token for username, superseding any
// token the account already holds.
func RunForgotPassword(ctx context.Context, in ForgotPasswordInput, deps ForgotPasswordDeps) (ForgotPasswordResult, error) {
	deps.normalize()
	if deps.GetByUsername == nil || deps.NewToken == nil || deps.SaveResetToken == nil || deps.TokenTTL <= 0 {
		return ForgotPasswordResult{}, model.ErrEngineNotReady
	}
	if err := ValidateInput(in); err != nil {
		return ForgotPasswordResult{}, err
	}

	acct, ok, err := deps.GetByUsername(ctx, in.Username)
	if err != nil {
		return ForgotPasswordResult{}, unavailable(err)
	}
	if !ok {
		deps.EmitAudit(ctx, deps.Events.PasswordResetRequest, false, "", model.ErrNotFound, nil)
		return ForgotPasswordResult{}, model.ErrNotFound
	}

	token, err := deps.NewToken()
	if err != nil {
		return ForgotPasswordResult{}, fmt.Errorf("reset token: %w", err)
	}

	record := model.ResetToken{
		Token:     token,
		AccountID: acct.ID,
		ExpiresAt: deps.Now().Add(deps.TokenTTL),
	}
	if err := deps.SaveResetToken(ctx, record); err != nil {
		return ForgotPasswordResult{}, unavailable(err)
	}

	deps.MetricInc(deps.Metrics.PasswordResetRequest)
	deps.EmitAudit(ctx, deps.Events.PasswordResetRequest, true, acct.ID, nil, nil)

	if deps.SendPasswordReset != nil {
		deps.SendPasswordReset(ctx, acct.Email, token)
	}

	return ForgotPasswordResult{Token: token, ExpiresAt: record.ExpiresAt}, nil
}

type ResetPasswordDeps struct {
	Hooks

	CheckPolicy  func(password string) error
	HashPassword func(password string) (string, error)
	// Redeem consumes the token and stores the new hash, clearing the lock.
	// Exactly one concurrent caller may see ok == true for a token.
	Redeem func(ctx context.Context, token string, now time.Time, hash string) (string, bool, error)

	Metrics PasswordResetMetrics
	Events  PasswordResetEvents
}

// RunResetPassword sets a new password through a reset token. The new
// password is checked and hashed before the token is touched, so a weak
// password leaves the token redeemable.
func RunResetPassword(ctx context.Context, in ResetPasswordInput, deps ResetPasswordDeps) error {
	deps.normalize()
	if deps.CheckPolicy == nil || deps.HashPassword == nil || deps.Redeem == nil {
		return model.ErrEngineNotReady
	}
	if err := ValidateInput(in); err != nil {
		return err
	}
	if err := deps.CheckPolicy(in.NewPassword); err != nil {
		return fmt.Errorf("%w: %v", model.ErrWeakPassword, err)
	}

	hash, err := deps.HashPassword(in.NewPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	accountID, ok, err := deps.Redeem(ctx, in.Token, deps.Now(), hash)
	if err != nil {
		return unavailable(err)
	}
	if !ok {
		deps.MetricInc(deps.Metrics.PasswordResetConfirmFailure)
		deps.EmitAudit(ctx, deps.Events.PasswordResetConfirm, false, "", model.ErrInvalidToken, nil)
		return model.ErrInvalidToken
	}

	deps.RecordActivity(ctx, ActivityPasswordReset, accountID)
	deps.MetricInc(deps.Metrics.PasswordResetConfirmSuccess)
	deps.EmitAudit(ctx, deps.Events.PasswordResetConfirm, true, accountID, nil, nil)
	return nil
}
