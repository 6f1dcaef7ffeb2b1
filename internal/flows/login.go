package flows

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/MrEthical07/authcore/internal/limiters"
	"github.com/MrEthical07/authcore/internal/model"
)

type LoginResult struct {
	AccountID    string
	Username     string
	SessionToken string
	ExpiresAt    time.Time
}

type LoginMetrics struct {
	LoginSuccess     int
	LoginFailure     int
	LoginLocked      int
	LoginInactive    int
	AccountLocked    int
	PasswordUpgraded int
}

type LoginEvents struct {
	LoginSuccess  string
	LoginFailure  string
	AccountLocked string
}

type LoginDeps struct {
	Hooks

	UpgradeOnLogin bool

	GetByUsername      func(ctx context.Context, username string) (model.Account, bool, error)
	VerifyPassword     func(password, hash string) (bool, error)
	NeedsUpgrade       func(hash string) bool
	HashPassword       func(password string) (string, error)
	UpdatePasswordHash func(ctx context.Context, accountID, hash string) (bool, error)
	RecordFailure      func(ctx context.Context, accountID string) (limiters.Outcome, error)
	RecordSuccess      func(ctx context.Context, accountID string) error
	IssueSession       func(accountID, username string) (string, time.Time, error)

	Metrics LoginMetrics
	Events  LoginEvents
}

// RunLogin authenticates username/password and issues a session token.
//
// The order of checks is fixed: unknown account, inactive, locked, then the
// password. A locked account is rejected before any hashing work.
func RunLogin(ctx context.Context, in LoginInput, deps LoginDeps) (LoginResult, error) {
	deps.normalize()
	if deps.GetByUsername == nil ||
		deps.VerifyPassword == nil ||
		deps.RecordFailure == nil ||
		deps.RecordSuccess == nil ||
		deps.IssueSession == nil {
		return LoginResult{}, model.ErrEngineNotReady
	}

	if err := ValidateInput(in); err != nil {
		return LoginResult{}, err
	}

	acct, ok, err := deps.GetByUsername(ctx, in.Username)
	if err != nil {
		return LoginResult{}, unavailable(err)
	}
	if !ok {
		deps.MetricInc(deps.Metrics.LoginFailure)
		deps.EmitAudit(ctx, deps.Events.LoginFailure, false, "", model.ErrNotFound, nil)
		return LoginResult{}, model.ErrNotFound
	}
	if !acct.Active {
		deps.MetricInc(deps.Metrics.LoginInactive)
		deps.EmitAudit(ctx, deps.Events.LoginFailure, false, acct.ID, model.ErrAccountInactive, nil)
		return LoginResult{}, model.ErrAccountInactive
	}
	if acct.Locked {
		return LoginResult{}, rejectLocked(ctx, acct.ID, deps)
	}

	match, err := deps.VerifyPassword(in.Password, acct.PasswordHash)
	if err != nil {
		deps.Warn(ctx, "password verification error treated as mismatch", "account_id", acct.ID, "err", err)
		match = false
	}
	if !match {
		return LoginResult{}, failLogin(ctx, acct.ID, deps)
	}

	if err := deps.RecordSuccess(ctx, acct.ID); err != nil {
		if errors.Is(err, limiters.ErrAlreadyLocked) {
			return LoginResult{}, rejectLocked(ctx, acct.ID, deps)
		}
		return LoginResult{}, unavailable(err)
	}

	if deps.UpgradeOnLogin {
		upgradeHash(ctx, acct, in.Password, deps)
	}

	token, expiresAt, err := deps.IssueSession(acct.ID, acct.Username)
	if err != nil {
		return LoginResult{}, fmt.Errorf("issue session: %w", err)
	}

	deps.RecordActivity(ctx, ActivityLoginSuccess, acct.ID)
	deps.MetricInc(deps.Metrics.LoginSuccess)
	deps.EmitAudit(ctx, deps.Events.LoginSuccess, true, acct.ID, nil, nil)

	return LoginResult{
		AccountID:    acct.ID,
		Username:     acct.Username,
		SessionToken: token,
		ExpiresAt:    expiresAt,
	}, nil
}

func rejectLocked(ctx context.Context, accountID string, deps LoginDeps) error {
	deps.MetricInc(deps.Metrics.LoginLocked)
	deps.EmitAudit(ctx, deps.Events.LoginFailure, false, accountID, model.ErrAccountLocked, nil)
	return model.ErrAccountLocked
}

func failLogin(ctx context.Context, accountID string, deps LoginDeps) error {
	out, err := deps.RecordFailure(ctx, accountID)
	if err != nil {
		if errors.Is(err, limiters.ErrAlreadyLocked) {
			return rejectLocked(ctx, accountID, deps)
		}
		return unavailable(err)
	}

	deps.RecordActivity(ctx, ActivityLoginFail, accountID)
	deps.MetricInc(deps.Metrics.LoginFailure)

	attemptErr := &model.AttemptError{Remaining: out.Remaining, Locked: out.Locked}
	deps.EmitAudit(ctx, deps.Events.LoginFailure, false, accountID, attemptErr, func() map[string]string {
		return map[string]string{
			"attempts":  strconv.Itoa(out.Attempts),
			"remaining": strconv.Itoa(out.Remaining),
		}
	})
	if out.Locked {
		deps.MetricInc(deps.Metrics.AccountLocked)
		deps.EmitAudit(ctx, deps.Events.AccountLocked, true, accountID, nil, nil)
	}

	return attemptErr
}

// upgradeHash rehashes an outdated hash with the current parameters. A
// failure here never fails the login.
func upgradeHash(ctx context.Context, acct model.Account, password string, deps LoginDeps) {
	if deps.NeedsUpgrade == nil || deps.HashPassword == nil || deps.UpdatePasswordHash == nil {
		return
	}
	if !deps.NeedsUpgrade(acct.PasswordHash) {
		return
	}

	hash, err := deps.HashPassword(password)
	if err != nil {
		deps.Warn(ctx, "password rehash failed", "account_id", acct.ID, "err", err)
		return
	}
	if _, err := deps.UpdatePasswordHash(ctx, acct.ID, hash); err != nil {
		deps.Warn(ctx, "password rehash not stored", "account_id", acct.ID, "err", err)
		return
	}
	deps.MetricInc(deps.Metrics.PasswordUpgraded)
}
