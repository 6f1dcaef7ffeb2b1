package jwt

import (
	"errors"
	"strings"
	"testing"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time { return c.now }

func newTestManager(t *testing.T, clock *fakeClock, mutate func(*Config)) *Manager {
	t.Helper()
	cfg := Config{
		Secret: testSecret,
		TTL:    time.Hour,
		Now:    clock.Now,
	}
	if mutate != nil {
		mutate(&cfg)
	}
	m, err := NewManager(cfg)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	return m
}

func TestIssueVerifyRoundTrip(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)}
	m := newTestManager(t, clock, nil)

	token, exp, err := m.Issue("acc-1", "alice")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if !exp.Equal(clock.now.Add(time.Hour)) {
		t.Fatalf("expiresAt = %v, want %v", exp, clock.now.Add(time.Hour))
	}

	claims, err := m.Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if claims.AccountID != "acc-1" || claims.Username != "alice" {
		t.Fatalf("unexpected claims %+v", claims)
	}
	if !claims.IssuedAt.Time.Equal(clock.now) {
		t.Fatalf("iat = %v", claims.IssuedAt.Time)
	}
}

func TestVerifyExpiryBoundary(t *testing.T) {
	start := time.Date(2026, 1, 2, 3, 0, 0, 0, time.UTC)
	clock := &fakeClock{now: start}
	m := newTestManager(t, clock, nil)

	token, _, err := m.Issue("acc-1", "alice")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	clock.now = start.Add(time.Hour - time.Second)
	if _, err := m.Verify(token); err != nil {
		t.Fatalf("expected token valid just before expiry, got %v", err)
	}

	clock.now = start.Add(time.Hour)
	if _, err := m.Verify(token); !errors.Is(err, ErrExpired) {
		t.Fatalf("expected ErrExpired at expiry, got %v", err)
	}

	clock.now = start.Add(2 * time.Hour)
	if _, err := m.Verify(token); !errors.Is(err, ErrExpired) {
		t.Fatalf("expected ErrExpired after expiry, got %v", err)
	}
}

func TestSubSecondIssueKeepsFullLifetime(t *testing.T) {
	issued := time.Date(2026, 1, 2, 10, 0, 0, 700_000_000, time.UTC)
	clock := &fakeClock{now: issued}
	m := newTestManager(t, clock, nil)

	token, exp, err := m.Issue("acc-1", "alice")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if want := time.Date(2026, 1, 2, 11, 0, 1, 0, time.UTC); !exp.Equal(want) {
		t.Fatalf("expiresAt = %v, want %v", exp, want)
	}

	for _, at := range []time.Time{
		issued,
		time.Date(2026, 1, 2, 11, 0, 0, 200_000_000, time.UTC),
		issued.Add(time.Hour - time.Millisecond),
	} {
		clock.now = at
		if _, err := m.Verify(token); err != nil {
			t.Fatalf("expected token valid at %v, got %v", at, err)
		}
	}

	clock.now = exp
	if _, err := m.Verify(token); !errors.Is(err, ErrExpired) {
		t.Fatalf("expected ErrExpired at %v, got %v", exp, err)
	}
}

func TestVerifyWrongSecret(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	issuer := newTestManager(t, clock, func(c *Config) {
		c.Secret = []byte("ffffffffffffffffffffffffffffffff")
	})
	verifier := newTestManager(t, clock, nil)

	token, _, err := issuer.Issue("acc-1", "alice")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := verifier.Verify(token); !errors.Is(err, ErrSignatureInvalid) {
		t.Fatalf("expected ErrSignatureInvalid, got %v", err)
	}
}

func TestVerifyTamperedPayload(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	m := newTestManager(t, clock, nil)

	token, _, err := m.Issue("acc-1", "alice")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	other, _, err := m.Issue("acc-2", "mallory")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	parts := strings.Split(token, ".")
	otherParts := strings.Split(other, ".")
	forged := parts[0] + "." + otherParts[1] + "." + parts[2]

	if _, err := m.Verify(forged); !errors.Is(err, ErrSignatureInvalid) {
		t.Fatalf("expected ErrSignatureInvalid, got %v", err)
	}
}

func TestVerifyMalformed(t *testing.T) {
	m := newTestManager(t, &fakeClock{now: time.Now()}, nil)

	for _, token := range []string{"", "garbage", "a.b", "a.b.c", "...."} {
		if _, err := m.Verify(token); !errors.Is(err, ErrMalformed) {
			t.Fatalf("Verify(%q): expected ErrMalformed, got %v", token, err)
		}
	}
}

func TestVerifyRejectsOtherAlgorithms(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	m := newTestManager(t, clock, nil)

	claims := SessionClaims{
		AccountID: "acc-1",
		RegisteredClaims: gojwt.RegisteredClaims{
			IssuedAt:  gojwt.NewNumericDate(clock.now),
			ExpiresAt: gojwt.NewNumericDate(clock.now.Add(time.Hour)),
		},
	}

	hs512, err := gojwt.NewWithClaims(gojwt.SigningMethodHS512, claims).SignedString(testSecret)
	if err != nil {
		t.Fatalf("sign HS512: %v", err)
	}
	if _, err := m.Verify(hs512); err == nil {
		t.Fatal("expected HS512 token to be rejected")
	}

	none, err := gojwt.NewWithClaims(gojwt.SigningMethodNone, claims).SignedString(gojwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none: %v", err)
	}
	if _, err := m.Verify(none); err == nil {
		t.Fatal("expected alg=none token to be rejected")
	}
}

func TestVerifyMissingAccountID(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	m := newTestManager(t, clock, nil)

	claims := SessionClaims{
		RegisteredClaims: gojwt.RegisteredClaims{
			IssuedAt:  gojwt.NewNumericDate(clock.now),
			ExpiresAt: gojwt.NewNumericDate(clock.now.Add(time.Hour)),
		},
	}
	token, err := gojwt.NewWithClaims(gojwt.SigningMethodHS256, claims).SignedString(testSecret)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := m.Verify(token); !errors.Is(err, ErrMalformed) {
		t.Fatalf("expected ErrMalformed, got %v", err)
	}
}

func TestPreviousSecretStillVerifies(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	oldSecret := []byte("old-old-old-old-old-old-old-old-")
	old := newTestManager(t, clock, func(c *Config) { c.Secret = oldSecret })

	rotated := newTestManager(t, clock, func(c *Config) {
		c.PreviousSecrets = [][]byte{oldSecret}
	})

	token, _, err := old.Issue("acc-1", "alice")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	claims, err := rotated.Verify(token)
	if err != nil {
		t.Fatalf("expected rotated manager to accept old token: %v", err)
	}
	if claims.AccountID != "acc-1" {
		t.Fatalf("unexpected account %q", claims.AccountID)
	}
}

func TestNewManagerRejectsBadConfig(t *testing.T) {
	cases := []Config{
		{Secret: []byte("short"), TTL: time.Hour},
		{Secret: testSecret, TTL: 0},
		{Secret: testSecret, TTL: time.Hour, Leeway: time.Hour},
		{Secret: testSecret, TTL: time.Hour, PreviousSecrets: [][]byte{[]byte("tiny")}},
	}
	for i, cfg := range cases {
		if _, err := NewManager(cfg); err == nil {
			t.Fatalf("case %d: expected error", i)
		}
	}
}

func TestIssuerEnforced(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	a := newTestManager(t, clock, func(c *Config) { c.Issuer = "authcore" })
	b := newTestManager(t, clock, func(c *Config) { c.Issuer = "elsewhere" })

	token, _, err := a.Issue("acc-1", "alice")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := b.Verify(token); !errors.Is(err, ErrMalformed) {
		t.Fatalf("expected issuer mismatch to be rejected as malformed, got %v", err)
	}
}
