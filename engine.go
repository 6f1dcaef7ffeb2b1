package authcore

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/MrEthical07/authcore/internal"
	"github.com/MrEthical07/authcore/internal/audit"
	"github.com/MrEthical07/authcore/internal/flows"
	"github.com/MrEthical07/authcore/internal/limiters"
	"github.com/MrEthical07/authcore/internal/logging"
	"github.com/MrEthical07/authcore/jwt"
	"github.com/MrEthical07/authcore/password"
	"github.com/google/uuid"
)

// Engine runs the credential and session operations. It is immutable after
// Build and safe for concurrent use.
type Engine struct {
	config      Config
	store       CredentialStore
	resetStore  ResetTokenStore
	redeemer    ResetRedeemer
	activityLog ActivityLog
	mailer      Mailer
	hasher      *password.Hasher
	policy      password.Policy
	jwtManager  *jwt.Manager
	lockout     *limiters.LockoutTracker
	audit       *audit.Dispatcher
	metrics     *Metrics
	logger      logging.Logger
	now         func() time.Time

	flows flows.Deps

	// mailMu orders dispatchMail's closed check and mailWG.Add against
	// Close, so no Add can race with Wait.
	mailMu sync.Mutex
	mailWG sync.WaitGroup
	closed atomic.Bool
}

// Close waits for in-flight mail sends and flushes the audit buffer. It is
// safe to call more than once.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	e.mailMu.Lock()
	first := e.closed.CompareAndSwap(false, true)
	e.mailMu.Unlock()
	if !first {
		return
	}
	e.mailWG.Wait()
	if e.audit != nil {
		e.audit.Close()
	}
}

// AuditDropped reports how many audit events were dropped on a full buffer.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return e.metrics.Snapshot()
}

// SessionCookieName is the cookie carrier name from Session.CookieName.
func (e *Engine) SessionCookieName() string {
	return e.config.Session.CookieName
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

// Login authenticates username and password and issues a session token.
//
// A wrong password returns an *AttemptError that matches
// ErrInvalidCredentials and states how many attempts remain, or that this
// attempt locked the account.
func (e *Engine) Login(ctx context.Context, username, password string) (LoginResult, error) {
	if e == nil {
		return LoginResult{}, ErrEngineNotReady
	}
	return flows.RunLogin(ctx, flows.LoginInput{Username: username, Password: password}, e.flows.Login)
}

// Authenticate verifies a session token and returns its principal. It does
// no I/O; the account's current lock and active state are not consulted.
func (e *Engine) Authenticate(token string) (Principal, error) {
	if e == nil {
		return Principal{}, ErrEngineNotReady
	}
	return flows.RunAuthenticate(token, e.flows.Session)
}

// RequireRole re-reads the account's role from the store and returns
// ErrForbidden unless it equals role.
func (e *Engine) RequireRole(ctx context.Context, accountID string, role Role) error {
	if e == nil {
		return ErrEngineNotReady
	}
	return flows.RunRequireRole(ctx, accountID, role, e.flows.Session)
}

// initFlows binds every orchestrator to the engine's collaborators.
func (e *Engine) initFlows() {
	st := timedStore{e: e}

	hooks := flows.Hooks{
		Now:       e.now,
		MetricInc: func(id int) { e.metricInc(MetricID(id)) },
		EmitAudit: e.emitAudit,
		RecordActivity: func(ctx context.Context, operation, recordID string) {
			st.recordActivity(ctx, operation, recordID)
		},
		Warn: e.logger.Warn,
	}

	newToken := func(n int) func() (string, error) {
		return func() (string, error) { return internal.NewHexToken(n) }
	}

	e.flows.Register = flows.RegisterDeps{
		Hooks:        hooks,
		CheckPolicy:  e.policy.Check,
		HashPassword: e.hasher.Hash,
		NewID:        uuid.NewString,
		NewToken:     newToken(e.config.EmailVerification.TokenBytes),
		Insert:       st.Insert,
		SendVerification: func(ctx context.Context, email, token string) {
			e.dispatchMail(ctx, mailKindVerification, email, token)
		},
		Metrics: flows.RegisterMetrics{
			AccountCreated:   int(MetricAccountCreated),
			AccountDuplicate: int(MetricAccountDuplicate),
		},
		Events: flows.RegisterEvents{
			AccountCreated:   auditEventAccountCreated,
			AccountDuplicate: auditEventAccountDuplicate,
		},
	}

	e.flows.VerifyEmail = flows.VerifyEmailDeps{
		Hooks:    hooks,
		Activate: st.ActivateByVerificationToken,
		Metrics: flows.VerifyEmailMetrics{
			VerificationSuccess: int(MetricEmailVerificationSuccess),
			VerificationFailure: int(MetricEmailVerificationFailure),
		},
		Events: flows.VerifyEmailEvents{EmailVerified: auditEventEmailVerified},
	}

	e.flows.Login = flows.LoginDeps{
		Hooks:              hooks,
		UpgradeOnLogin:     e.config.Password.UpgradeOnLogin,
		GetByUsername:      st.GetByUsername,
		VerifyPassword:     e.hasher.Verify,
		NeedsUpgrade:       e.hasher.NeedsUpgrade,
		HashPassword:       e.hasher.Hash,
		UpdatePasswordHash: st.UpdatePassword,
		RecordFailure:      e.lockout.RecordFailure,
		RecordSuccess:      e.lockout.RecordSuccess,
		IssueSession:       e.jwtManager.Issue,
		Metrics: flows.LoginMetrics{
			LoginSuccess:     int(MetricLoginSuccess),
			LoginFailure:     int(MetricLoginFailure),
			LoginLocked:      int(MetricLoginLocked),
			LoginInactive:    int(MetricLoginInactive),
			AccountLocked:    int(MetricAccountLocked),
			PasswordUpgraded: int(MetricPasswordUpgraded),
		},
		Events: flows.LoginEvents{
			LoginSuccess:  auditEventLoginSuccess,
			LoginFailure:  auditEventLoginFailure,
			AccountLocked: auditEventAccountLocked,
		},
	}

	e.flows.Password = flows.ChangePasswordDeps{
		Hooks:          hooks,
		GetByID:        st.GetByID,
		VerifyPassword: e.hasher.Verify,
		CheckPolicy:    e.policy.Check,
		HashPassword:   e.hasher.Hash,
		UpdatePassword: st.UpdatePassword,
		Metrics: flows.ChangePasswordMetrics{
			PasswordChangeSuccess:    int(MetricPasswordChangeSuccess),
			PasswordChangeInvalidOld: int(MetricPasswordChangeInvalidOld),
		},
		Events: flows.ChangePasswordEvents{
			PasswordChangeSuccess:    auditEventPasswordChangeSuccess,
			PasswordChangeInvalidOld: auditEventPasswordChangeInvalidOld,
		},
	}

	e.flows.UpdateEmail = flows.UpdateEmailDeps{
		Hooks:       hooks,
		UpdateEmail: st.UpdateEmail,
		Metrics:     flows.UpdateEmailMetrics{EmailUpdated: int(MetricEmailUpdated)},
		Events:      flows.UpdateEmailEvents{EmailUpdated: auditEventEmailUpdated},
	}

	resetMetrics := flows.PasswordResetMetrics{
		PasswordResetRequest:        int(MetricPasswordResetRequest),
		PasswordResetConfirmSuccess: int(MetricPasswordResetConfirmSuccess),
		PasswordResetConfirmFailure: int(MetricPasswordResetConfirmFailure),
	}
	resetEvents := flows.PasswordResetEvents{
		PasswordResetRequest: auditEventPasswordResetRequest,
		PasswordResetConfirm: auditEventPasswordResetConfirm,
	}

	e.flows.Forgot = flows.ForgotPasswordDeps{
		Hooks:          hooks,
		TokenTTL:       e.config.PasswordReset.TokenTTL,
		GetByUsername:  st.GetByUsername,
		NewToken:       newToken(e.config.PasswordReset.TokenBytes),
		SaveResetToken: st.SaveResetToken,
		SendPasswordReset: func(ctx context.Context, email, token string) {
			e.dispatchMail(ctx, mailKindReset, email, token)
		},
		Metrics: resetMetrics,
		Events:  resetEvents,
	}

	e.flows.Reset = flows.ResetPasswordDeps{
		Hooks:        hooks,
		CheckPolicy:  e.policy.Check,
		HashPassword: e.hasher.Hash,
		Redeem:       st.redeemResetToken,
		Metrics:      resetMetrics,
		Events:       resetEvents,
	}

	e.flows.Session = flows.SessionDeps{
		Hooks:   hooks,
		Verify:  e.jwtManager.Verify,
		GetByID: st.GetByID,
		Observe: func(id int, d time.Duration) { e.metrics.Observe(MetricID(id), d) },
		Metrics: flows.SessionMetrics{
			SessionVerified: int(MetricSessionVerified),
			SessionRejected: int(MetricSessionRejected),
			SessionExpired:  int(MetricSessionExpired),
			VerifyLatency:   int(MetricSessionVerifyLatency),
			Forbidden:       int(MetricForbidden),
		},
		Events: flows.SessionEvents{Forbidden: auditEventForbidden},
	}

	e.flows.Admin = flows.AdminDeps{
		Hooks: hooks,
		RequireAdmin: func(ctx context.Context, principalID string) error {
			return flows.RunRequireRole(ctx, principalID, RoleAdmin, e.flows.Session)
		},
		GetByUsername: st.GetByUsername,
		SetRole:       st.SetRole,
		Unlock:        e.lockout.Unlock,
		Metrics: flows.AdminMetrics{
			RoleChanged:     int(MetricRoleChanged),
			AccountUnlocked: int(MetricAccountUnlocked),
		},
		Events: flows.AdminEvents{
			RoleChanged:     auditEventRoleChanged,
			AccountUnlocked: auditEventAccountUnlocked,
		},
	}
}
