// Package password implements password hashing, verification, and the
// strength policy.
//
// # Output format
//
// New hashes are Argon2id in PHC string format:
//
//	$argon2id$v=19$m=<memory>,t=<time>,p=<threads>$<salt>$<hash>
//
// The salt is embedded, so stores keep a single opaque column. [Hasher]
// also verifies legacy bcrypt hashes when enabled, and [Hasher.NeedsUpgrade]
// tells the caller when to rehash after a successful login.
//
// This package never stores passwords and never logs plaintext.
package password
