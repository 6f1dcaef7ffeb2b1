package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/MrEthical07/authcore"
	"github.com/MrEthical07/authcore/internal/dbx"
)

// SaveResetToken replaces any token the account already holds.
func (s *Store) SaveResetToken(ctx context.Context, token authcore.ResetToken) error {
	query := `
		INSERT INTO reset_tokens (token, account_id, expires_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (account_id) DO UPDATE SET token = EXCLUDED.token, expires_at = EXCLUDED.expires_at
	`
	if _, err := s.db.ExecContext(ctx, query, token.Token, token.AccountID, token.ExpiresAt); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (s *Store) ConsumeResetToken(ctx context.Context, token string, now time.Time) (authcore.ResetToken, bool, error) {
	return consumeResetToken(ctx, s.db, token, now)
}

func consumeResetToken(ctx context.Context, db dbx.DBTX, token string, now time.Time) (authcore.ResetToken, bool, error) {
	query := `DELETE FROM reset_tokens WHERE token = $1 AND expires_at > $2 RETURNING account_id, expires_at`
	rec := authcore.ResetToken{Token: token}
	err := db.QueryRowContext(ctx, query, token, now).Scan(&rec.AccountID, &rec.ExpiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return authcore.ResetToken{}, false, nil
	}
	if err != nil {
		return authcore.ResetToken{}, false, fmt.Errorf("db error: %w", err)
	}
	return rec, true, nil
}

// RedeemResetToken deletes the token and stores hash in one transaction.
// When the owner no longer exists the delete is rolled back too.
func (s *Store) RedeemResetToken(ctx context.Context, token string, now time.Time, hash string) (string, bool, error) {
	var (
		id string
		ok bool
	)
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		rec, consumed, err := consumeResetToken(ctx, tx, token, now)
		if err != nil || !consumed {
			return err
		}
		id = rec.AccountID
		ok, err = updatePassword(ctx, tx, id, hash)
		if err != nil {
			return err
		}
		if !ok {
			return errNoOwner
		}
		return nil
	})
	if errors.Is(err, errNoOwner) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	if !ok {
		return "", false, nil
	}
	return id, true, nil
}

var errNoOwner = errors.New("reset token owner missing")
