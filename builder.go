package authcore

import (
	"errors"
	"time"

	"github.com/MrEthical07/authcore/internal/audit"
	"github.com/MrEthical07/authcore/internal/limiters"
	"github.com/MrEthical07/authcore/internal/logging"
	"github.com/MrEthical07/authcore/jwt"
	"github.com/MrEthical07/authcore/password"
)

// Builder assembles an Engine. A Builder can build only once.
type Builder struct {
	config Config

	store       CredentialStore
	resetStore  ResetTokenStore
	activityLog ActivityLog
	mailer      Mailer
	auditSink   AuditSink
	logger      logging.Logger
	now         func() time.Time

	built bool
}

func New() *Builder {
	return &Builder{
		config: DefaultConfig(),
	}
}

func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

func (b *Builder) WithCredentialStore(store CredentialStore) *Builder {
	b.store = store
	return b
}

// WithResetTokenStore sets where reset tokens live. When it is not set the
// credential store is used, if it implements ResetTokenStore.
func (b *Builder) WithResetTokenStore(store ResetTokenStore) *Builder {
	b.resetStore = store
	return b
}

// WithActivityLog sets the activity trail. When it is not set the
// credential store is used, if it implements ActivityLog.
func (b *Builder) WithActivityLog(log ActivityLog) *Builder {
	b.activityLog = log
	return b
}

func (b *Builder) WithMailer(m Mailer) *Builder {
	b.mailer = m
	return b
}

func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

func (b *Builder) WithLogger(l logging.Logger) *Builder {
	b.logger = l
	return b
}

// WithClock replaces time.Now for token expiry and timestamps.
func (b *Builder) WithClock(now func() time.Time) *Builder {
	b.now = now
	return b
}

func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if b.store == nil {
		return nil, errors.New("credential store required")
	}

	resetStore := b.resetStore
	if resetStore == nil {
		rs, ok := b.store.(ResetTokenStore)
		if !ok {
			return nil, errors.New("reset token store required")
		}
		resetStore = rs
	}
	redeemer, _ := resetStore.(ResetRedeemer)

	activityLog := b.activityLog
	if activityLog == nil {
		activityLog, _ = b.store.(ActivityLog)
	}

	now := b.now
	if now == nil {
		now = time.Now
	}
	logger := b.logger
	if logger == nil {
		logger = logging.Nop()
	}
	mailer := b.mailer
	if mailer == nil {
		mailer = NopMailer{}
	}

	// -------- PASSWORDS --------
	policy := cfg.PasswordPolicy.policy()
	hasher, err := password.NewHasher(
		cfg.Password.hasherConfig(cfg.PasswordPolicy.MaxLength),
		cfg.Password.AcceptLegacyBcrypt,
	)
	if err != nil {
		return nil, err
	}

	// -------- SESSIONS --------
	jm, err := jwt.NewManager(jwt.Config{
		Secret:          cloneBytes(cfg.Session.Secret),
		PreviousSecrets: cloneConfig(cfg).Session.PreviousSecrets,
		TTL:             cfg.Session.TTL,
		Issuer:          cfg.Session.Issuer,
		Leeway:          cfg.Session.Leeway,
		Now:             now,
	})
	if err != nil {
		return nil, err
	}

	engine := &Engine{
		config:      cfg,
		store:       b.store,
		resetStore:  resetStore,
		redeemer:    redeemer,
		activityLog: activityLog,
		mailer:      mailer,
		hasher:      hasher,
		policy:      policy,
		jwtManager:  jm,
		metrics:     NewMetrics(cfg.Metrics),
		logger:      logger,
		now:         now,
	}

	// -------- LOCKOUT --------
	engine.lockout = limiters.NewLockoutTracker(timedStore{e: engine}, cfg.Lockout.MaxFailedAttempts)

	engine.audit = audit.NewDispatcher(audit.Config{
		Enabled:    cfg.Audit.Enabled,
		BufferSize: cfg.Audit.BufferSize,
		DropIfFull: cfg.Audit.DropIfFull,
	}, b.auditSink)

	engine.initFlows()

	b.built = true

	return engine, nil
}
