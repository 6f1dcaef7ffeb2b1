package authcore

import (
	"github.com/MrEthical07/authcore/internal/model"
)

// Error kinds. Test with errors.Is; values may carry wrapped detail.
var (
	ErrValidation         = model.ErrValidation
	ErrWeakPassword       = model.ErrWeakPassword
	ErrNotFound           = model.ErrNotFound
	ErrAccountExists      = model.ErrAccountExists
	ErrAccountInactive    = model.ErrAccountInactive
	ErrAccountLocked      = model.ErrAccountLocked
	ErrInvalidCredentials = model.ErrInvalidCredentials
	ErrInvalidToken       = model.ErrInvalidToken
	ErrTokenExpired       = model.ErrTokenExpired
	ErrUnauthorized       = model.ErrUnauthorized
	ErrForbidden          = model.ErrForbidden
	ErrStorageUnavailable = model.ErrStorageUnavailable
	ErrEngineNotReady     = model.ErrEngineNotReady
)

type (
	// ValidationError names the offending input field.
	ValidationError = model.ValidationError
	// AttemptError is a failed login that reports the remaining attempts
	// or the lock it triggered.
	AttemptError = model.AttemptError
)
