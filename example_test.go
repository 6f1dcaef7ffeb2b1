package authcore_test

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/MrEthical07/authcore"
)

func exampleEngine() *authcore.Engine {
	cfg := authcore.DefaultConfig()
	cfg.Session.Secret = []byte(strings.Repeat("x", 32))
	cfg.Password.Memory = 8 * 1024
	cfg.Password.Time = 1
	cfg.Password.Parallelism = 1
	cfg.Lockout.MaxFailedAttempts = 3

	engine, err := authcore.New().
		WithConfig(cfg).
		WithCredentialStore(authcore.NewMemoryStore()).
		Build()
	if err != nil {
		panic(err)
	}
	return engine
}

// ExampleNew registers an account, confirms its email and logs in.
func ExampleNew() {
	engine := exampleEngine()
	defer engine.Close()
	ctx := context.Background()

	reg, _ := engine.Register(ctx, "alice", "Password1", "alice@example.com")
	_, err := engine.Login(ctx, "alice", "Password1")
	fmt.Println(errors.Is(err, authcore.ErrAccountInactive))

	_ = engine.VerifyEmail(ctx, reg.VerificationToken)
	res, err := engine.Login(ctx, "alice", "Password1")
	fmt.Println(err == nil)

	p, _ := engine.Authenticate(res.SessionToken)
	fmt.Println(p.Username)
	// Output:
	// true
	// true
	// alice
}

// ExampleEngine_Login shows the remaining-attempts report on failure.
func ExampleEngine_Login() {
	engine := exampleEngine()
	defer engine.Close()
	ctx := context.Background()

	reg, _ := engine.Register(ctx, "bob", "Password1", "bob@example.com")
	_ = engine.VerifyEmail(ctx, reg.VerificationToken)

	for i := 0; i < 4; i++ {
		_, err := engine.Login(ctx, "bob", "wrong")
		var attempt *authcore.AttemptError
		switch {
		case errors.As(err, &attempt):
			fmt.Println(err)
		case errors.Is(err, authcore.ErrAccountLocked):
			fmt.Println("locked")
		}
	}
	// Output:
	// invalid credentials: 2 attempts remaining
	// invalid credentials: 1 attempts remaining
	// invalid credentials: account locked after too many failed attempts
	// locked
}

// ExampleEngine_MetricsSnapshot reads the in-process counters.
func ExampleEngine_MetricsSnapshot() {
	cfg := authcore.DefaultConfig()
	cfg.Session.Secret = []byte(strings.Repeat("x", 32))
	cfg.Metrics.Enabled = true

	engine, _ := authcore.New().
		WithConfig(cfg).
		WithCredentialStore(authcore.NewMemoryStore()).
		Build()
	defer engine.Close()

	_, _ = engine.Authenticate("not-a-token")
	fmt.Println(engine.MetricsSnapshot().Counters[authcore.MetricSessionRejected])
	// Output: 1
}
