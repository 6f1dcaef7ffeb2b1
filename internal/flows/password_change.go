package flows

import (
	"context"
	"fmt"

	"github.com/MrEthical07/authcore/internal/model"
)

type ChangePasswordMetrics struct {
	PasswordChangeSuccess    int
	PasswordChangeInvalidOld int
}

type ChangePasswordEvents struct {
	PasswordChangeSuccess    string
	PasswordChangeInvalidOld string
}

type ChangePasswordDeps struct {
	Hooks

	GetByID        func(ctx context.Context, id string) (model.Account, bool, error)
	VerifyPassword func(password, hash string) (bool, error)
	CheckPolicy    func(password string) error
	HashPassword   func(password string) (string, error)
	// UpdatePassword stores the hash and clears the lock and the counter.
	UpdatePassword func(ctx context.Context, accountID, hash string) (bool, error)

	Metrics ChangePasswordMetrics
	Events  ChangePasswordEvents
}

// RunChangePassword replaces the principal's password after re-verifying
// the current one. A wrong current password does not count toward lockout.
func RunChangePassword(ctx context.Context, in ChangePasswordInput, deps ChangePasswordDeps) error {
	deps.normalize()
	if deps.GetByID == nil || deps.VerifyPassword == nil || deps.CheckPolicy == nil || deps.HashPassword == nil || deps.UpdatePassword == nil {
		return model.ErrEngineNotReady
	}
	if err := ValidateInput(in); err != nil {
		return err
	}

	acct, ok, err := deps.GetByID(ctx, in.AccountID)
	if err != nil {
		return unavailable(err)
	}
	if !ok {
		return model.ErrNotFound
	}

	match, err := deps.VerifyPassword(in.CurrentPassword, acct.PasswordHash)
	if err != nil {
		deps.Warn(ctx, "password verification error treated as mismatch", "account_id", acct.ID, "err", err)
		match = false
	}
	if !match {
		deps.MetricInc(deps.Metrics.PasswordChangeInvalidOld)
		deps.EmitAudit(ctx, deps.Events.PasswordChangeInvalidOld, false, acct.ID, model.ErrInvalidCredentials, nil)
		return model.ErrInvalidCredentials
	}

	if err := deps.CheckPolicy(in.NewPassword); err != nil {
		return fmt.Errorf("%w: %v", model.ErrWeakPassword, err)
	}
	hash, err := deps.HashPassword(in.NewPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	ok, err = deps.UpdatePassword(ctx, acct.ID, hash)
	if err != nil {
		return unavailable(err)
	}
	if !ok {
		return model.ErrNotFound
	}

	deps.MetricInc(deps.Metrics.PasswordChangeSuccess)
	deps.EmitAudit(ctx, deps.Events.PasswordChangeSuccess, true, acct.ID, nil, nil)
	return nil
}
