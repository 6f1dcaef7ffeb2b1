package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// MinSecretBytes is the shortest HMAC secret NewManager accepts.
const MinSecretBytes = 32

var (
	ErrMalformed        = errors.New("session token malformed")
	ErrSignatureInvalid = errors.New("session token signature invalid")
	ErrExpired          = errors.New("session token expired")
)

// Config configures session token signing.
//
// PreviousSecrets are tried, in order, only when the current Secret fails
// the signature check, so a rotated secret keeps outstanding tokens valid
// until they expire.
type Config struct {
	Secret          []byte
	PreviousSecrets [][]byte
	TTL             time.Duration
	Issuer          string
	Leeway          time.Duration
	Now             func() time.Time
}

// SessionClaims is the payload of a session token.
type SessionClaims struct {
	AccountID string `json:"account_id"`
	Username  string `json:"username"`
	jwt.RegisteredClaims
}

// Manager signs and verifies session tokens.
type Manager struct {
	config Config
	now    func() time.Time
}

func NewManager(cfg Config) (*Manager, error) {
	if len(cfg.Secret) < MinSecretBytes {
		return nil, fmt.Errorf("session secret must be at least %d bytes", MinSecretBytes)
	}
	for i, s := range cfg.PreviousSecrets {
		if len(s) < MinSecretBytes {
			return nil, fmt.Errorf("previous session secret %d must be at least %d bytes", i, MinSecretBytes)
		}
	}
	if cfg.TTL <= 0 {
		return nil, errors.New("invalid TTL configuration")
	}
	if cfg.Leeway < 0 || cfg.Leeway > 2*time.Minute {
		return nil, errors.New("invalid leeway configuration")
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Manager{config: cfg, now: now}, nil
}

// Issue mints a token for the account. The exp claim has whole-second
// resolution, so the expiry is rounded up: a token never expires before
// issue time plus TTL.
func (m *Manager) Issue(accountID, username string) (string, time.Time, error) {
	if accountID == "" {
		return "", time.Time{}, errors.New("account id required")
	}

	issuedAt := m.now()
	expiresAt := ceilSecond(issuedAt.Add(m.config.TTL))

	claims := SessionClaims{
		AccountID: accountID,
		Username:  username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   accountID,
			Issuer:    m.config.Issuer,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.config.Secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// Verify checks the signature, the algorithm, and the expiry of a token.
func (m *Manager) Verify(token string) (*SessionClaims, error) {
	if token == "" {
		return nil, ErrMalformed
	}

	claims, err := m.parse(token, m.config.Secret)
	for i := 0; err != nil && errors.Is(err, ErrSignatureInvalid) && i < len(m.config.PreviousSecrets); i++ {
		claims, err = m.parse(token, m.config.PreviousSecrets[i])
	}
	if err != nil {
		return nil, err
	}
	return claims, nil
}

// TTL is the configured token lifetime.
func (m *Manager) TTL() time.Duration {
	return m.config.TTL
}

func (m *Manager) parse(token string, secret []byte) (*SessionClaims, error) {
	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(m.now),
	}
	if m.config.Leeway > 0 {
		options = append(options, jwt.WithLeeway(m.config.Leeway))
	}
	if m.config.Issuer != "" {
		options = append(options, jwt.WithIssuer(m.config.Issuer))
	}

	parsed, err := jwt.NewParser(options...).ParseWithClaims(token, &SessionClaims{}, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	})
	if err != nil {
		return nil, classify(err)
	}

	claims, ok := parsed.Claims.(*SessionClaims)
	if !ok || !parsed.Valid || claims.AccountID == "" {
		return nil, ErrMalformed
	}
	return claims, nil
}

func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return ErrSignatureInvalid
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrExpired
	default:
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
}

func ceilSecond(t time.Time) time.Time {
	if r := t.Truncate(time.Second); r.Before(t) {
		return r.Add(time.Second)
	}
	return t
}
