package password

import "errors"

// ErrLegacyHashRejected is returned when a bcrypt hash is presented but
// legacy verification is disabled.
var ErrLegacyHashRejected = errors.New("legacy password hash not accepted")

// Hasher always writes Argon2id and dispatches verification on the stored
// hash prefix.
type Hasher struct {
	argon  *Argon2
	legacy *Bcrypt
}

// NewHasher builds a Hasher. With acceptBcrypt false, bcrypt hashes never
// verify.
func NewHasher(cfg Config, acceptBcrypt bool) (*Hasher, error) {
	a, err := NewArgon2(cfg)
	if err != nil {
		return nil, err
	}

	h := &Hasher{argon: a}
	if acceptBcrypt {
		h.legacy = &Bcrypt{}
	}
	return h, nil
}

func (h *Hasher) Hash(password string) (string, error) {
	return h.argon.Hash(password)
}

func (h *Hasher) Verify(password, encodedHash string) (bool, error) {
	switch {
	case IsArgon2Hash(encodedHash):
		return h.argon.Verify(password, encodedHash)
	case IsBcryptHash(encodedHash):
		if h.legacy == nil {
			return false, ErrLegacyHashRejected
		}
		return h.legacy.Verify(password, encodedHash)
	default:
		return false, ErrMalformedHash
	}
}

// NeedsUpgrade is true for every legacy hash and for Argon2id hashes made
// with weaker parameters.
func (h *Hasher) NeedsUpgrade(encodedHash string) bool {
	if IsBcryptHash(encodedHash) {
		return true
	}
	upgrade, err := h.argon.NeedsUpgrade(encodedHash)
	return err == nil && upgrade
}

// Params exposes the active Argon2id configuration.
func (h *Hasher) Params() Config {
	return h.argon.config
}
