package flows

import (
	"context"
	"errors"
	"fmt"

	"github.com/MrEthical07/authcore/internal/model"
)

type RegisterResult struct {
	AccountID         string
	VerificationToken string
}

type RegisterMetrics struct {
	AccountCreated   int
	AccountDuplicate int
}

type RegisterEvents struct {
	AccountCreated   string
	AccountDuplicate string
}

type RegisterDeps struct {
	Hooks

	CheckPolicy      func(password string) error
	HashPassword     func(password string) (string, error)
	NewID            func() string
	NewToken         func() (string, error)
	Insert           func(ctx context.Context, acct model.Account) error
	SendVerification func(ctx context.Context, email, token string)

	Metrics RegisterMetrics
	Events  RegisterEvents
}

// RunRegister creates an inactive account holding a fresh verification
// token and hands the token to the mailer.
func RunRegister(ctx context.Context, in RegisterInput, deps RegisterDeps) (RegisterResult, error) {
	deps.normalize()
	if deps.CheckPolicy == nil || deps.HashPassword == nil || deps.NewID == nil || deps.NewToken == nil || deps.Insert == nil {
		return RegisterResult{}, model.ErrEngineNotReady
	}

	if err := ValidateInput(in); err != nil {
		return RegisterResult{}, err
	}
	if err := deps.CheckPolicy(in.Password); err != nil {
		return RegisterResult{}, fmt.Errorf("%w: %v", model.ErrWeakPassword, err)
	}

	hash, err := deps.HashPassword(in.Password)
	if err != nil {
		return RegisterResult{}, fmt.Errorf("hash password: %w", err)
	}
	token, err := deps.NewToken()
	if err != nil {
		return RegisterResult{}, fmt.Errorf("verification token: %w", err)
	}

	now := deps.Now().UTC()
	acct := model.Account{
		ID:                deps.NewID(),
		Username:          in.Username,
		Email:             in.Email,
		PasswordHash:      hash,
		Role:              model.RoleUser,
		VerificationToken: token,
		CreatedAt:         now,
		LastUpdated:       now,
	}

	if err := deps.Insert(ctx, acct); err != nil {
		if errors.Is(err, model.ErrAccountExists) {
			deps.MetricInc(deps.Metrics.AccountDuplicate)
			deps.EmitAudit(ctx, deps.Events.AccountDuplicate, false, "", err, nil)
			return RegisterResult{}, model.ErrAccountExists
		}
		return RegisterResult{}, unavailable(err)
	}

	deps.MetricInc(deps.Metrics.AccountCreated)
	deps.EmitAudit(ctx, deps.Events.AccountCreated, true, acct.ID, nil, nil)

	if deps.SendVerification != nil {
		deps.SendVerification(ctx, acct.Email, token)
	}

	return RegisterResult{AccountID: acct.ID, VerificationToken: token}, nil
}

type UpdateEmailMetrics struct {
	EmailUpdated int
}

type UpdateEmailEvents struct {
	EmailUpdated string
}

type UpdateEmailDeps struct {
	Hooks

	UpdateEmail func(ctx context.Context, accountID, email string) (bool, error)

	Metrics UpdateEmailMetrics
	Events  UpdateEmailEvents
}

// RunUpdateEmail changes the principal's own email address.
func RunUpdateEmail(ctx context.Context, in UpdateEmailInput, deps UpdateEmailDeps) error {
	deps.normalize()
	if deps.UpdateEmail == nil {
		return model.ErrEngineNotReady
	}
	if err := ValidateInput(in); err != nil {
		return err
	}

	ok, err := deps.UpdateEmail(ctx, in.AccountID, in.Email)
	if err != nil {
		if errors.Is(err, model.ErrAccountExists) {
			return model.ErrAccountExists
		}
		return unavailable(err)
	}
	if !ok {
		return model.ErrNotFound
	}

	deps.MetricInc(deps.Metrics.EmailUpdated)
	deps.EmitAudit(ctx, deps.Events.EmailUpdated, true, in.AccountID, nil, nil)
	return nil
}
