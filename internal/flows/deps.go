package flows

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MrEthical07/authcore/internal/model"
)

// Activity operations written to the activity log.
const (
	ActivityLoginSuccess  = "LOGIN SUCCESS"
	ActivityLoginFail     = "LOGIN FAIL"
	ActivityPasswordReset = "PASSWORD RESET"
	ActivitySetRole       = "SET ROLE"
	ActivityUnlock        = "UNLOCK"
)

// Hooks are the side channels every flow reports through. Any nil hook is
// replaced by a no-op.
type Hooks struct {
	Now            func() time.Time
	MetricInc      func(int)
	EmitAudit      func(ctx context.Context, event string, success bool, accountID string, err error, metadata func() map[string]string)
	RecordActivity func(ctx context.Context, operation, recordID string)
	Warn           func(ctx context.Context, msg string, args ...any)
}

func (h *Hooks) normalize() {
	if h.Now == nil {
		h.Now = time.Now
	}
	if h.MetricInc == nil {
		h.MetricInc = func(int) {}
	}
	if h.EmitAudit == nil {
		h.EmitAudit = func(context.Context, string, bool, string, error, func() map[string]string) {}
	}
	if h.RecordActivity == nil {
		h.RecordActivity = func(context.Context, string, string) {}
	}
	if h.Warn == nil {
		h.Warn = func(context.Context, string, ...any) {}
	}
}

// Deps groups the dependency sets of every flow. The engine builds this once
// and delegates each method to the matching Run* function.
type Deps struct {
	Register    RegisterDeps
	VerifyEmail VerifyEmailDeps
	Login       LoginDeps
	Password    ChangePasswordDeps
	UpdateEmail UpdateEmailDeps
	Forgot      ForgotPasswordDeps
	Reset       ResetPasswordDeps
	Session     SessionDeps
	Admin       AdminDeps
}

// unavailable normalises a backend failure to ErrStorageUnavailable without
// double wrapping.
func unavailable(err error) error {
	if err == nil || errors.Is(err, model.ErrStorageUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %v", model.ErrStorageUnavailable, err)
}
