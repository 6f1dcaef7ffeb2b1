package model

import (
	"errors"
	"fmt"
	"strconv"
)

var (
	ErrValidation         = errors.New("validation failed")
	ErrWeakPassword       = fmt.Errorf("%w: weak password", ErrValidation)
	ErrNotFound           = errors.New("not found")
	ErrAccountExists      = errors.New("account already exists")
	ErrAccountInactive    = errors.New("account inactive")
	ErrAccountLocked      = errors.New("account locked")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token expired")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrStorageUnavailable = errors.New("storage unavailable")
	ErrEngineNotReady     = errors.New("engine not initialized")
)

// ValidationError names the input field that failed and why.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return ErrValidation.Error() + ": " + e.Reason
	}
	return ErrValidation.Error() + ": " + e.Field + " " + e.Reason
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// AttemptError is returned by a failed password check. It discloses how
// many attempts remain before the account locks, or that it just locked.
type AttemptError struct {
	Remaining int
	Locked    bool
}

func (e *AttemptError) Error() string {
	if e.Locked {
		return ErrInvalidCredentials.Error() + ": account locked after too many failed attempts"
	}
	return ErrInvalidCredentials.Error() + ": " + strconv.Itoa(e.Remaining) + " attempts remaining"
}

func (e *AttemptError) Unwrap() error { return ErrInvalidCredentials }
