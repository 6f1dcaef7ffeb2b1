// Package postgres implements the credential, reset token and activity log
// stores on PostgreSQL through database/sql and the pgx driver.
//
// Every state transition that can race is a single conditional statement
// (UPDATE ... WHERE ... RETURNING or DELETE ... RETURNING), so concurrent
// engines sharing one database keep the lockout and single-use guarantees.
// Password reset redemption runs the token delete and the password update
// in one transaction.
//
// The schema ships as embedded goose migrations; call [Store.Migrate] once
// at startup.
package postgres
