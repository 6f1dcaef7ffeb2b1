package flows

import (
	"context"

	"github.com/MrEthical07/authcore/internal/model"
)

type VerifyEmailMetrics struct {
	VerificationSuccess int
	VerificationFailure int
}

type VerifyEmailEvents struct {
	EmailVerified string
}

type VerifyEmailDeps struct {
	Hooks

	// Activate sets active=true and clears the token in one conditional
	// update, returning the account id it matched.
	Activate func(ctx context.Context, token string) (string, bool, error)

	Metrics VerifyEmailMetrics
	Events  VerifyEmailEvents
}

func RunVerifyEmail(ctx context.Context, token string, deps VerifyEmailDeps) error {
	deps.normalize()
	if deps.Activate == nil {
		return model.ErrEngineNotReady
	}
	if token == "" || len(token) > 512 {
		deps.MetricInc(deps.Metrics.VerificationFailure)
		return model.ErrInvalidToken
	}

	accountID, ok, err := deps.Activate(ctx, token)
	if err != nil {
		return unavailable(err)
	}
	if !ok {
		deps.MetricInc(deps.Metrics.VerificationFailure)
		deps.EmitAudit(ctx, deps.Events.EmailVerified, false, "", model.ErrInvalidToken, nil)
		return model.ErrInvalidToken
	}

	deps.MetricInc(deps.Metrics.VerificationSuccess)
	deps.EmitAudit(ctx, deps.Events.EmailVerified, true, accountID, nil, nil)
	return nil
}
