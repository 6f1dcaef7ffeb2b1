package flows

import (
	"context"

	"github.com/MrEthical07/authcore/internal/model"
)

type AdminMetrics struct {
	RoleChanged     int
	AccountUnlocked int
}

type AdminEvents struct {
	RoleChanged     string
	AccountUnlocked string
}

type AdminDeps struct {
	Hooks

	RequireAdmin  func(ctx context.Context, principalID string) error
	GetByUsername func(ctx context.Context, username string) (model.Account, bool, error)
	SetRole       func(ctx context.Context, accountID string, role model.Role) (bool, error)
	Unlock        func(ctx context.Context, accountID string) (bool, error)

	Metrics AdminMetrics
	Events  AdminEvents
}

// RunSetRole changes the role of another account. The caller's admin role
// is checked before the input is inspected.
func RunSetRole(ctx context.Context, in SetRoleInput, deps AdminDeps) error {
	deps.normalize()
	if deps.RequireAdmin == nil || deps.SetRole == nil {
		return model.ErrEngineNotReady
	}
	if in.PrincipalID == "" {
		return model.ErrUnauthorized
	}
	if err := deps.RequireAdmin(ctx, in.PrincipalID); err != nil {
		return err
	}
	if err := ValidateInput(in); err != nil {
		return err
	}

	ok, err := deps.SetRole(ctx, in.AccountID, model.Role(in.Role))
	if err != nil {
		return unavailable(err)
	}
	if !ok {
		return model.ErrNotFound
	}

	deps.RecordActivity(ctx, ActivitySetRole, in.AccountID)
	deps.MetricInc(deps.Metrics.RoleChanged)
	deps.EmitAudit(ctx, deps.Events.RoleChanged, true, in.AccountID, nil, func() map[string]string {
		return map[string]string{"role": in.Role, "by": in.PrincipalID}
	})
	return nil
}

// RunUnlock clears the lock and the failed-attempt counter of username.
func RunUnlock(ctx context.Context, in UnlockInput, deps AdminDeps) error {
	deps.normalize()
	if deps.RequireAdmin == nil || deps.GetByUsername == nil || deps.Unlock == nil {
		return model.ErrEngineNotReady
	}
	if in.PrincipalID == "" {
		return model.ErrUnauthorized
	}
	if err := deps.RequireAdmin(ctx, in.PrincipalID); err != nil {
		return err
	}
	if err := ValidateInput(in); err != nil {
		return err
	}

	acct, ok, err := deps.GetByUsername(ctx, in.Username)
	if err != nil {
		return unavailable(err)
	}
	if !ok {
		return model.ErrNotFound
	}

	ok, err = deps.Unlock(ctx, acct.ID)
	if err != nil {
		return unavailable(err)
	}
	if !ok {
		return model.ErrNotFound
	}

	deps.RecordActivity(ctx, ActivityUnlock, acct.ID)
	deps.MetricInc(deps.Metrics.AccountUnlocked)
	deps.EmitAudit(ctx, deps.Events.AccountUnlocked, true, acct.ID, nil, func() map[string]string {
		return map[string]string{"by": in.PrincipalID}
	})
	return nil
}
