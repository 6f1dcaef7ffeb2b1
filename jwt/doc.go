// Package jwt issues and verifies the stateless session tokens handed to
// clients after a successful login.
//
// Tokens are HS256-signed with a server-held secret and carry the account
// id, the username, iat and exp. Verification is pure computation and never
// touches storage; failures are classified as [ErrMalformed],
// [ErrSignatureInvalid] or [ErrExpired].
package jwt
