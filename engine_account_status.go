package authcore

import (
	"context"

	"github.com/MrEthical07/authcore/internal/flows"
)

// SetRole changes the role of accountID. principalID must currently hold
// the admin role in the store.
func (e *Engine) SetRole(ctx context.Context, principalID, accountID string, role Role) error {
	if e == nil {
		return ErrEngineNotReady
	}
	return flows.RunSetRole(ctx, flows.SetRoleInput{
		PrincipalID: principalID,
		AccountID:   accountID,
		Role:        string(role),
	}, e.flows.Admin)
}

// Unlock clears the lockout of username. principalID must be an admin.
func (e *Engine) Unlock(ctx context.Context, principalID, username string) error {
	if e == nil {
		return ErrEngineNotReady
	}
	return flows.RunUnlock(ctx, flows.UnlockInput{PrincipalID: principalID, Username: username}, e.flows.Admin)
}
