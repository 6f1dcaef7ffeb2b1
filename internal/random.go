package internal

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
)

// MinTokenBytes is the smallest accepted token size (128 bits).
const MinTokenBytes = 16

// NewHexToken returns n random bytes, hex-encoded. Reset and verification
// tokens both come from here.
func NewHexToken(n int) (string, error) {
	if n < MinTokenBytes {
		return "", errors.New("token size below 128 bits")
	}
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
