package authcore

import (
	"context"

	"github.com/MrEthical07/authcore/internal/flows"
)

// Register creates an inactive account and returns its verification token.
// The token is also handed to the Mailer in the background.
func (e *Engine) Register(ctx context.Context, username, password, email string) (RegisterResult, error) {
	if e == nil {
		return RegisterResult{}, ErrEngineNotReady
	}
	return flows.RunRegister(ctx, flows.RegisterInput{
		Username: username,
		Password: password,
		Email:    email,
	}, e.flows.Register)
}

// ChangePassword replaces the password of accountID after re-verifying
// current. Success also clears any lockout.
func (e *Engine) ChangePassword(ctx context.Context, accountID, current, newPassword string) error {
	if e == nil {
		return ErrEngineNotReady
	}
	return flows.RunChangePassword(ctx, flows.ChangePasswordInput{
		AccountID:       accountID,
		CurrentPassword: current,
		NewPassword:     newPassword,
	}, e.flows.Password)
}

func (e *Engine) UpdateEmail(ctx context.Context, accountID, email string) error {
	if e == nil {
		return ErrEngineNotReady
	}
	return flows.RunUpdateEmail(ctx, flows.UpdateEmailInput{AccountID: accountID, Email: email}, e.flows.UpdateEmail)
}

// VerifyEmail activates the account holding token. An unknown or already
// used token returns ErrInvalidToken.
func (e *Engine) VerifyEmail(ctx context.Context, token string) error {
	if e == nil {
		return ErrEngineNotReady
	}
	return flows.RunVerifyEmail(ctx, token, e.flows.VerifyEmail)
}
