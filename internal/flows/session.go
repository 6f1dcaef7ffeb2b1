package flows

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MrEthical07/authcore/internal/model"
	"github.com/MrEthical07/authcore/jwt"
)

type SessionMetrics struct {
	SessionVerified int
	SessionRejected int
	SessionExpired  int
	VerifyLatency   int
	Forbidden       int
}

type SessionEvents struct {
	Forbidden string
}

type SessionDeps struct {
	Hooks

	Verify  func(token string) (*jwt.SessionClaims, error)
	GetByID func(ctx context.Context, id string) (model.Account, bool, error)
	Observe func(metric int, d time.Duration)

	Metrics SessionMetrics
	Events  SessionEvents
}

// RunAuthenticate verifies a session token and returns the principal it
// asserts. It is pure computation; the account is not re-read.
func RunAuthenticate(token string, deps SessionDeps) (model.Principal, error) {
	deps.normalize()
	if deps.Verify == nil {
		return model.Principal{}, model.ErrEngineNotReady
	}
	if token == "" {
		deps.MetricInc(deps.Metrics.SessionRejected)
		return model.Principal{}, model.ErrUnauthorized
	}

	start := time.Now()
	claims, err := deps.Verify(token)
	if deps.Observe != nil {
		deps.Observe(deps.Metrics.VerifyLatency, time.Since(start))
	}
	if err != nil {
		if errors.Is(err, jwt.ErrExpired) {
			deps.MetricInc(deps.Metrics.SessionExpired)
			return model.Principal{}, model.ErrTokenExpired
		}
		deps.MetricInc(deps.Metrics.SessionRejected)
		return model.Principal{}, fmt.Errorf("%w: %w", model.ErrInvalidToken, err)
	}

	deps.MetricInc(deps.Metrics.SessionVerified)

	p := model.Principal{AccountID: claims.AccountID, Username: claims.Username}
	if claims.IssuedAt != nil {
		p.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		p.ExpiresAt = claims.ExpiresAt.Time
	}
	return p, nil
}

// RunRequireRole re-reads the principal's role from the store; roles are
// not carried in the token.
func RunRequireRole(ctx context.Context, accountID string, role model.Role, deps SessionDeps) error {
	deps.normalize()
	if deps.GetByID == nil {
		return model.ErrEngineNotReady
	}
	if accountID == "" {
		return model.ErrUnauthorized
	}

	acct, ok, err := deps.GetByID(ctx, accountID)
	if err != nil {
		return unavailable(err)
	}
	if !ok || acct.Role != role {
		deps.MetricInc(deps.Metrics.Forbidden)
		deps.EmitAudit(ctx, deps.Events.Forbidden, false, accountID, model.ErrForbidden, func() map[string]string {
			return map[string]string{"required_role": string(role)}
		})
		return model.ErrForbidden
	}
	return nil
}
