package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/mail"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/MrEthical07/authcore"
	"github.com/MrEthical07/authcore/password"
	"github.com/MrEthical07/authcore/store/postgres"
)

type adminStore interface {
	Migrate(ctx context.Context) error
	Insert(ctx context.Context, acct authcore.Account) error
	Close() error
}

// openStore is a seam for tests.
var openStore = func(ctx context.Context, dsn string) (adminStore, error) {
	return postgres.Open(ctx, dsn)
}

// createAdmin inserts an active admin account. The account skips email
// verification.
func createAdmin(ctx context.Context, args []string, in *prompter, out io.Writer) error {
	fs := flag.NewFlagSet("create-admin", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	dsn := fs.String("dsn", os.Getenv("AUTHCORE_DATABASE_DSN"), "PostgreSQL DSN")
	username := fs.String("username", "", "admin username")
	email := fs.String("email", "", "admin email address")
	migrate := fs.Bool("migrate", false, "apply migrations first")
	if err := fs.Parse(args); err != nil {
		return err
	}

	switch {
	case *dsn == "":
		return errors.New("-dsn or AUTHCORE_DATABASE_DSN is required")
	case *username == "":
		return errors.New("-username is required")
	case *email == "":
		return errors.New("-email is required")
	}
	if _, err := mail.ParseAddress(*email); err != nil {
		return fmt.Errorf("invalid email: %w", err)
	}

	pw, err := in.confirmedPassword()
	if err != nil {
		return err
	}

	cfg := authcore.DefaultConfig()
	policy := password.Policy{
		MinLength:    cfg.PasswordPolicy.MinLength,
		MaxLength:    cfg.PasswordPolicy.MaxLength,
		RequireUpper: cfg.PasswordPolicy.RequireUpper,
		RequireDigit: cfg.PasswordPolicy.RequireDigit,
	}
	if err := policy.Check(pw); err != nil {
		return err
	}

	hasher, err := password.NewArgon2(argonConfig(cfg))
	if err != nil {
		return err
	}
	hash, err := hasher.Hash(pw)
	if err != nil {
		return err
	}

	store, err := openStore(ctx, *dsn)
	if err != nil {
		return err
	}
	defer store.Close()

	if *migrate {
		if err := store.Migrate(ctx); err != nil {
			return err
		}
	}

	now := time.Now().UTC()
	acct := authcore.Account{
		ID:           uuid.NewString(),
		Username:     *username,
		Email:        *email,
		PasswordHash: hash,
		Role:         authcore.RoleAdmin,
		Active:       true,
		CreatedAt:    now,
		LastUpdated:  now,
	}
	if err := store.Insert(ctx, acct); err != nil {
		if errors.Is(err, authcore.ErrAccountExists) {
			return fmt.Errorf("account %q already exists", *username)
		}
		return err
	}

	_, err = fmt.Fprintf(out, "created admin %s (%s)\n", acct.Username, acct.ID)
	return err
}
