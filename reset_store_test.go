package authcore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func TestEngineWithRedisResetStore(t *testing.T) {
	_, rdb := newTestRedis(t)

	store := NewMemoryStore()
	engine, err := New().
		WithConfig(testConfig()).
		WithCredentialStore(store).
		WithResetTokenStore(NewRedisResetTokenStore(rdb, "")).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	defer engine.Close()

	ctx := context.Background()
	reg, err := engine.Register(ctx, "carol", "OldPass12", "carol@example.com")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := engine.VerifyEmail(ctx, reg.VerificationToken); err != nil {
		t.Fatalf("verify: %v", err)
	}

	forgot, err := engine.ForgotPassword(ctx, "carol")
	if err != nil {
		t.Fatalf("forgot: %v", err)
	}
	if err := engine.ResetPassword(ctx, forgot.Token, "NewPass1"); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if err := engine.ResetPassword(ctx, forgot.Token, "Another1"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
	if _, err := engine.Login(ctx, "carol", "NewPass1"); err != nil {
		t.Fatalf("login with new password: %v", err)
	}
}

func TestRedisResetStoreTTLEviction(t *testing.T) {
	mr, rdb := newTestRedis(t)
	ctx := context.Background()
	now := time.Now()

	s := NewRedisResetTokenStore(rdb, "test")
	if err := s.SaveResetToken(ctx, ResetToken{Token: "tok", AccountID: "a1", ExpiresAt: now.Add(time.Minute)}); err != nil {
		t.Fatalf("save: %v", err)
	}
	mr.FastForward(2 * time.Minute)

	if _, ok, err := s.ConsumeResetToken(ctx, "tok", now); ok || err != nil {
		t.Fatalf("expected evicted token, got ok=%v err=%v", ok, err)
	}
}

func TestRedisResetStoreUnavailableMapsToStorageError(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	defer rdb.Close()

	store := NewMemoryStore()
	engine, err := New().
		WithConfig(testConfig()).
		WithCredentialStore(store).
		WithResetTokenStore(NewRedisResetTokenStore(rdb, "")).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	defer engine.Close()

	ctx := context.Background()
	reg, err := engine.Register(ctx, "carol", "OldPass12", "carol@example.com")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	_ = engine.VerifyEmail(ctx, reg.VerificationToken)

	mr.Close()
	if _, err := engine.ForgotPassword(ctx, "carol"); !errors.Is(err, ErrStorageUnavailable) {
		t.Fatalf("expected ErrStorageUnavailable, got %v", err)
	}
}
