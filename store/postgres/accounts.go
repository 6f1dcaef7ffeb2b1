package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/MrEthical07/authcore"
	"github.com/MrEthical07/authcore/internal/dbx"
)

const accountColumns = `id, username, email, password_hash, role, failed_attempts, locked, active, verification_token, created_at, last_updated`

func scanAccount(row *sql.Row) (authcore.Account, bool, error) {
	var (
		acct   authcore.Account
		role   string
		verify sql.NullString
	)
	err := row.Scan(
		&acct.ID, &acct.Username, &acct.Email, &acct.PasswordHash, &role,
		&acct.FailedAttempts, &acct.Locked, &acct.Active, &verify,
		&acct.CreatedAt, &acct.LastUpdated,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return authcore.Account{}, false, nil
		}
		return authcore.Account{}, false, fmt.Errorf("db error: %w", err)
	}
	acct.Role = authcore.Role(role)
	acct.VerificationToken = verify.String
	return acct, true, nil
}

func (s *Store) GetByUsername(ctx context.Context, username string) (authcore.Account, bool, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE username = $1`
	return scanAccount(s.db.QueryRowContext(ctx, query, username))
}

func (s *Store) GetByID(ctx context.Context, id string) (authcore.Account, bool, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`
	return scanAccount(s.db.QueryRowContext(ctx, query, id))
}

// Insert maps any unique violation (id, username, email or verification
// token) to authcore.ErrAccountExists.
func (s *Store) Insert(ctx context.Context, acct authcore.Account) error {
	query := `
		INSERT INTO accounts (id, username, email, password_hash, role, failed_attempts, locked, active, verification_token, created_at, last_updated)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	verify := sql.NullString{String: acct.VerificationToken, Valid: acct.VerificationToken != ""}
	_, err := s.db.ExecContext(ctx, query,
		acct.ID, acct.Username, acct.Email, acct.PasswordHash, string(acct.Role),
		acct.FailedAttempts, acct.Locked, acct.Active, verify,
		acct.CreatedAt, acct.LastUpdated,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return authcore.ErrAccountExists
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (s *Store) ActivateByVerificationToken(ctx context.Context, token string) (string, bool, error) {
	query := `
		UPDATE accounts SET active = true, verification_token = NULL, last_updated = now()
		WHERE verification_token = $1
		RETURNING id
	`
	return returningID(s.db.QueryRowContext(ctx, query, token))
}

// IncrementFailedAttempts adds one failure and sets the lock in the same
// statement. An already locked account matches no row.
func (s *Store) IncrementFailedAttempts(ctx context.Context, id string, threshold int) (authcore.AttemptState, bool, error) {
	query := `
		UPDATE accounts SET failed_attempts = LEAST(failed_attempts + 1, $2),
			locked = failed_attempts + 1 >= $2, last_updated = now()
		WHERE id = $1 AND locked = false
		RETURNING failed_attempts, locked
	`
	var state authcore.AttemptState
	err := s.db.QueryRowContext(ctx, query, id, threshold).Scan(&state.FailedAttempts, &state.Locked)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return authcore.AttemptState{}, false, nil
		}
		return authcore.AttemptState{}, false, fmt.Errorf("db error: %w", err)
	}
	return state, true, nil
}

func (s *Store) ResetFailedAttempts(ctx context.Context, id string) (bool, error) {
	query := `UPDATE accounts SET failed_attempts = 0 WHERE id = $1 AND locked = false`
	return execAffected(ctx, s.db, query, id)
}

func (s *Store) ClearLockout(ctx context.Context, id string) (bool, error) {
	query := `UPDATE accounts SET failed_attempts = 0, locked = false, last_updated = now() WHERE id = $1`
	return execAffected(ctx, s.db, query, id)
}

// UpdatePassword also clears the lockout state.
func (s *Store) UpdatePassword(ctx context.Context, id, hash string) (bool, error) {
	return updatePassword(ctx, s.db, id, hash)
}

func updatePassword(ctx context.Context, db dbx.DBTX, id, hash string) (bool, error) {
	query := `
		UPDATE accounts SET password_hash = $2, failed_attempts = 0, locked = false, last_updated = now()
		WHERE id = $1
	`
	return execAffected(ctx, db, query, id, hash)
}

func (s *Store) UpdateEmail(ctx context.Context, id, email string) (bool, error) {
	query := `UPDATE accounts SET email = $2, last_updated = now() WHERE id = $1`
	ok, err := execAffected(ctx, s.db, query, id, email)
	if err != nil && isUniqueViolation(err) {
		return false, authcore.ErrAccountExists
	}
	return ok, err
}

func (s *Store) SetRole(ctx context.Context, id string, role authcore.Role) (bool, error) {
	query := `UPDATE accounts SET role = $2, last_updated = now() WHERE id = $1`
	return execAffected(ctx, s.db, query, id, string(role))
}

func returningID(row *sql.Row) (string, bool, error) {
	var id string
	if err := row.Scan(&id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("db error: %w", err)
	}
	return id, true, nil
}

func execAffected(ctx context.Context, db dbx.DBTX, query string, args ...any) (bool, error) {
	res, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return n > 0, nil
}
