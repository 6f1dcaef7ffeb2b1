package authcore

import (
	"errors"
	"time"

	"github.com/MrEthical07/authcore/internal"
	"github.com/MrEthical07/authcore/jwt"
	"github.com/MrEthical07/authcore/password"
)

// Config is the complete engine configuration. Start from DefaultConfig and
// override fields; the builder takes a private copy.
type Config struct {
	Session           SessionConfig
	Password          PasswordConfig
	PasswordPolicy    PasswordPolicyConfig
	Lockout           LockoutConfig
	PasswordReset     PasswordResetConfig
	EmailVerification EmailVerificationConfig
	Store             StoreConfig
	Email             EmailConfig
	Audit             AuditConfig
	Metrics           MetricsConfig
}

/*
====================================
SESSION CONFIG
====================================
*/

// SessionConfig controls the stateless HS256 session token.
type SessionConfig struct {
	Secret []byte
	// PreviousSecrets still verify but never sign.
	PreviousSecrets [][]byte
	TTL             time.Duration
	Issuer          string
	Leeway          time.Duration
	// CookieName is the cookie carrier read by the middleware and set by
	// the HTTP login handler.
	CookieName string
}

/*
====================================
PASSWORD CONFIG
====================================
*/

type PasswordConfig struct {
	Memory      uint32 // in KB
	Time        uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
	// UpgradeOnLogin rehashes outdated hashes after a successful login.
	UpgradeOnLogin bool
	// AcceptLegacyBcrypt lets existing bcrypt hashes verify.
	AcceptLegacyBcrypt bool
}

type PasswordPolicyConfig struct {
	MinLength    int
	MaxLength    int
	RequireUpper bool
	RequireDigit bool
}

/*
====================================
LOCKOUT CONFIG
====================================
*/

type LockoutConfig struct {
	// MaxFailedAttempts is the number of consecutive failures that locks an
	// account.
	MaxFailedAttempts int
}

/*
====================================
TOKEN CONFIG
====================================
*/

type PasswordResetConfig struct {
	TokenTTL   time.Duration
	TokenBytes int
}

type EmailVerificationConfig struct {
	TokenBytes int
}

/*
====================================
COLLABORATOR CONFIG
====================================
*/

type StoreConfig struct {
	// OperationTimeout bounds every credential, reset and activity store
	// call.
	OperationTimeout time.Duration
}

type EmailConfig struct {
	// DispatchTimeout bounds one background mail send.
	DispatchTimeout time.Duration
}

type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

/*
====================================
DEFAULTS
====================================
*/

// DefaultConfig returns a config with everything but Session.Secret set.
func DefaultConfig() Config {
	return Config{
		Session: SessionConfig{
			TTL:        time.Hour,
			Leeway:     0,
			CookieName: "token",
		},
		Password: PasswordConfig{
			Memory:             65536,
			Time:               3,
			Parallelism:        2,
			SaltLength:         16,
			KeyLength:          32,
			UpgradeOnLogin:     true,
			AcceptLegacyBcrypt: false,
		},
		PasswordPolicy: PasswordPolicyConfig{
			MinLength:    8,
			MaxLength:    password.DefaultMaxPasswordBytes,
			RequireUpper: true,
			RequireDigit: true,
		},
		Lockout: LockoutConfig{
			MaxFailedAttempts: 4,
		},
		PasswordReset: PasswordResetConfig{
			TokenTTL:   15 * time.Minute,
			TokenBytes: 32,
		},
		EmailVerification: EmailVerificationConfig{
			TokenBytes: 32,
		},
		Store: StoreConfig{
			OperationTimeout: 5 * time.Second,
		},
		Email: EmailConfig{
			DispatchTimeout: 10 * time.Second,
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 1024,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 false,
			EnableLatencyHistograms: false,
		},
	}
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.Session.Secret = cloneBytes(cfg.Session.Secret)
	if cfg.Session.PreviousSecrets != nil {
		out.Session.PreviousSecrets = make([][]byte, len(cfg.Session.PreviousSecrets))
		for i, s := range cfg.Session.PreviousSecrets {
			out.Session.PreviousSecrets[i] = cloneBytes(s)
		}
	}
	return out
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

func (c PasswordPolicyConfig) policy() password.Policy {
	return password.Policy{
		MinLength:    c.MinLength,
		MaxLength:    c.MaxLength,
		RequireUpper: c.RequireUpper,
		RequireDigit: c.RequireDigit,
	}
}

func (c PasswordConfig) hasherConfig(maxPasswordBytes int) password.Config {
	return password.Config{
		Memory:           c.Memory,
		Time:             c.Time,
		Parallelism:      c.Parallelism,
		SaltLength:       c.SaltLength,
		KeyLength:        c.KeyLength,
		MaxPasswordBytes: maxPasswordBytes,
	}
}

/*
====================================
VALIDATION
====================================
*/

// Validate rejects configurations the engine cannot run safely with.
func (c *Config) Validate() error {
	// Session
	if len(c.Session.Secret) < jwt.MinSecretBytes {
		return errors.New("Session Secret must be at least 32 bytes")
	}
	for _, s := range c.Session.PreviousSecrets {
		if len(s) < jwt.MinSecretBytes {
			return errors.New("Session PreviousSecrets must each be at least 32 bytes")
		}
	}
	if c.Session.TTL <= 0 {
		return errors.New("Session TTL must be > 0")
	}
	if c.Session.Leeway < 0 || c.Session.Leeway > 2*time.Minute {
		return errors.New("Session Leeway must be between 0 and 2m")
	}
	if c.Session.CookieName == "" {
		return errors.New("Session CookieName must not be empty")
	}

	// Password
	if c.Password.Memory < 8*1024 {
		return errors.New("Password Memory must be >= 8192 KB")
	}
	if c.Password.Time < 1 {
		return errors.New("Password Time must be >= 1")
	}
	if c.Password.Parallelism < 1 {
		return errors.New("Password Parallelism must be >= 1")
	}
	if c.Password.SaltLength < 16 {
		return errors.New("Password SaltLength must be >= 16")
	}
	if c.Password.KeyLength < 16 {
		return errors.New("Password KeyLength must be >= 16")
	}

	// Policy
	if c.PasswordPolicy.MinLength < 8 {
		return errors.New("PasswordPolicy MinLength must be >= 8")
	}
	if c.PasswordPolicy.MaxLength < c.PasswordPolicy.MinLength {
		return errors.New("PasswordPolicy MaxLength must be >= MinLength")
	}
	if c.PasswordPolicy.MaxLength > 4096 {
		return errors.New("PasswordPolicy MaxLength must be <= 4096")
	}

	// Lockout
	if c.Lockout.MaxFailedAttempts < 1 {
		return errors.New("Lockout MaxFailedAttempts must be >= 1")
	}

	// Tokens
	if c.PasswordReset.TokenTTL <= 0 {
		return errors.New("PasswordReset TokenTTL must be > 0")
	}
	if c.PasswordReset.TokenTTL > 24*time.Hour {
		return errors.New("PasswordReset TokenTTL must be <= 24h")
	}
	if c.PasswordReset.TokenBytes < internal.MinTokenBytes {
		return errors.New("PasswordReset TokenBytes must be >= 16")
	}
	if c.EmailVerification.TokenBytes < internal.MinTokenBytes {
		return errors.New("EmailVerification TokenBytes must be >= 16")
	}

	// Collaborators
	if c.Store.OperationTimeout <= 0 {
		return errors.New("Store OperationTimeout must be > 0")
	}
	if c.Email.DispatchTimeout <= 0 {
		return errors.New("Email DispatchTimeout must be > 0")
	}
	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("Audit BufferSize must be > 0 when enabled")
	}
	if c.Metrics.EnableLatencyHistograms && !c.Metrics.Enabled {
		return errors.New("Metrics EnableLatencyHistograms requires Metrics Enabled")
	}

	return nil
}
