package flows

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/MrEthical07/authcore/internal/model"
	"github.com/MrEthical07/authcore/jwt"
)

func sessionDeps(t *testing.T, clock *time.Time, store *fakeStore) (SessionDeps, *jwt.Manager) {
	t.Helper()
	m, err := jwt.NewManager(jwt.Config{
		Secret: []byte("flows-test-secret-flows-test-secret"),
		TTL:    time.Hour,
		Now:    func() time.Time { return *clock },
	})
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	deps := SessionDeps{Verify: m.Verify}
	if store != nil {
		deps.GetByID = store.GetByID
	}
	return deps, m
}

func TestAuthenticate(t *testing.T) {
	clock := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	deps, m := sessionDeps(t, &clock, nil)

	token, _, err := m.Issue("a1", "alice")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	p, err := RunAuthenticate(token, deps)
	if err != nil {
		t.Fatalf("RunAuthenticate: %v", err)
	}
	if p.AccountID != "a1" || p.Username != "alice" || !p.ExpiresAt.Equal(clock.Add(time.Hour)) {
		t.Fatalf("unexpected principal %+v", p)
	}

	clock = clock.Add(time.Hour)
	if _, err := RunAuthenticate(token, deps); !errors.Is(err, model.ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestAuthenticateRejects(t *testing.T) {
	clock := time.Now()
	deps, _ := sessionDeps(t, &clock, nil)

	if _, err := RunAuthenticate("", deps); !errors.Is(err, model.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}

	_, err := RunAuthenticate("not.a.token", deps)
	if !errors.Is(err, model.ErrInvalidToken) || !errors.Is(err, jwt.ErrMalformed) {
		t.Fatalf("expected ErrInvalidToken wrapping ErrMalformed, got %v", err)
	}

	other, err := jwt.NewManager(jwt.Config{Secret: []byte("another-secret-another-secret-xx"), TTL: time.Hour})
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	forged, _, _ := other.Issue("a1", "alice")
	_, err = RunAuthenticate(forged, deps)
	if !errors.Is(err, model.ErrInvalidToken) || !errors.Is(err, jwt.ErrSignatureInvalid) {
		t.Fatalf("expected ErrInvalidToken wrapping ErrSignatureInvalid, got %v", err)
	}
}

func TestRequireRoleRereadsStore(t *testing.T) {
	store := newFakeStore()
	store.add(model.Account{ID: "adm", Username: "root", Role: model.RoleAdmin, Active: true})
	store.add(model.Account{ID: "usr", Username: "joe", Role: model.RoleUser, Active: true})
	clock := time.Now()
	deps, _ := sessionDeps(t, &clock, store)
	ctx := context.Background()

	if err := RunRequireRole(ctx, "adm", model.RoleAdmin, deps); err != nil {
		t.Fatalf("admin: %v", err)
	}
	if err := RunRequireRole(ctx, "usr", model.RoleAdmin, deps); !errors.Is(err, model.ErrForbidden) {
		t.Fatalf("user: expected ErrForbidden, got %v", err)
	}
	if err := RunRequireRole(ctx, "gone", model.RoleAdmin, deps); !errors.Is(err, model.ErrForbidden) {
		t.Fatalf("missing: expected ErrForbidden, got %v", err)
	}

	store.mu.Lock()
	store.accounts["adm"].Role = model.RoleUser
	store.mu.Unlock()
	if err := RunRequireRole(ctx, "adm", model.RoleAdmin, deps); !errors.Is(err, model.ErrForbidden) {
		t.Fatalf("demoted admin: expected ErrForbidden, got %v", err)
	}
}
