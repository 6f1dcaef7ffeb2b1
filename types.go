package authcore

import (
	"context"
	"time"

	"github.com/MrEthical07/authcore/internal/flows"
	"github.com/MrEthical07/authcore/internal/model"
)

type (
	Account      = model.Account
	Role         = model.Role
	ResetToken   = model.ResetToken
	AttemptState = model.AttemptState
	Activity     = model.Activity
	Principal    = model.Principal

	LoginResult          = flows.LoginResult
	RegisterResult       = flows.RegisterResult
	ForgotPasswordResult = flows.ForgotPasswordResult
)

const (
	RoleUser  = model.RoleUser
	RoleAdmin = model.RoleAdmin
)

// CredentialStore is the durable account table.
//
// Lookups report a missing row as ok == false, never as an error. Mutating
// methods must each be a single atomic statement (or transaction) so that
// concurrent requests cannot lose updates; ok reports whether a row matched
// the condition.
type CredentialStore interface {
	GetByUsername(ctx context.Context, username string) (Account, bool, error)
	GetByID(ctx context.Context, id string) (Account, bool, error)
	// Insert returns ErrAccountExists when the username or email is taken.
	Insert(ctx context.Context, acct Account) error
	// ActivateByVerificationToken sets active and clears the token.
	ActivateByVerificationToken(ctx context.Context, token string) (string, bool, error)
	// IncrementFailedAttempts only matches an unlocked account. Reaching
	// threshold sets locked and pins the counter at threshold.
	IncrementFailedAttempts(ctx context.Context, id string, threshold int) (AttemptState, bool, error)
	// ResetFailedAttempts zeroes the counter of an unlocked account.
	ResetFailedAttempts(ctx context.Context, id string) (bool, error)
	// ClearLockout zeroes the counter and clears the lock.
	ClearLockout(ctx context.Context, id string) (bool, error)
	// UpdatePassword stores the hash and also clears the lockout.
	UpdatePassword(ctx context.Context, id, hash string) (bool, error)
	// UpdateEmail returns ErrAccountExists when the email is taken.
	UpdateEmail(ctx context.Context, id, email string) (bool, error)
	SetRole(ctx context.Context, id string, role Role) (bool, error)
}

// ResetTokenStore keeps at most one live reset token per account. Saving a
// token replaces the account's previous one.
type ResetTokenStore interface {
	SaveResetToken(ctx context.Context, token ResetToken) error
	// ConsumeResetToken deletes the token and returns the consumed record.
	// Expired or unknown tokens report ok == false. Of any number of
	// concurrent calls for one token, at most one sees ok == true.
	ConsumeResetToken(ctx context.Context, token string, now time.Time) (ResetToken, bool, error)
}

// ResetRedeemer is implemented by stores that can consume a reset token and
// store the new password hash in one transaction. When the reset token store
// implements it the engine prefers it over consume-then-update.
type ResetRedeemer interface {
	RedeemResetToken(ctx context.Context, token string, now time.Time, passwordHash string) (string, bool, error)
}

// ActivityLog persists the per-account activity trail.
type ActivityLog interface {
	RecordActivity(ctx context.Context, activity Activity) error
}

// Mailer delivers verification and reset tokens. Calls are fire-and-forget;
// a failure never rolls back the token.
type Mailer interface {
	SendVerification(ctx context.Context, to, token string) error
	SendPasswordReset(ctx context.Context, to, token string) error
}
