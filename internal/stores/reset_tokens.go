package stores

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	resetRecordVersionV1 = 1
	maxConsumeRetries    = 4
)

var (
	// ErrResetRedisUnavailable wraps any Redis failure other than a miss.
	ErrResetRedisUnavailable = errors.New("reset redis unavailable")
	// ErrResetContention is returned when optimistic transactions kept failing.
	ErrResetContention = errors.New("reset token contention")
)

// ResetRecord is what Redis holds for one outstanding reset token.
type ResetRecord struct {
	AccountID string
	ExpiresAt int64 // unix nanoseconds
}

// RedisResetTokenStore keeps at most one live reset token per account.
//
// Keys:
//
//	<prefix>:t:<sha256(token)>  -> encoded ResetRecord
//	<prefix>:a:<accountID>      -> sha256(token) of the account's live token
//
// Raw tokens are never written to Redis.
type RedisResetTokenStore struct {
	redis  redis.UniversalClient
	prefix string
}

func NewRedisResetTokenStore(redisClient redis.UniversalClient, prefix string) *RedisResetTokenStore {
	if prefix == "" {
		prefix = "arst"
	}
	return &RedisResetTokenStore{redis: redisClient, prefix: prefix}
}

func (s *RedisResetTokenStore) tokenKey(digest string) string {
	return s.prefix + ":t:" + digest
}

func (s *RedisResetTokenStore) accountKey(accountID string) string {
	return s.prefix + ":a:" + accountID
}

func digestToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// Save stores the token and drops whatever token the account held before.
// The TTL is derived from expiresAt relative to now.
func (s *RedisResetTokenStore) Save(ctx context.Context, token, accountID string, expiresAt, now time.Time) error {
	if token == "" || accountID == "" {
		return errors.New("reset token and account id required")
	}
	ttl := expiresAt.Sub(now)
	if ttl <= 0 {
		return errors.New("reset token already expired")
	}

	encoded, err := encodeResetRecord(&ResetRecord{AccountID: accountID, ExpiresAt: expiresAt.UnixNano()})
	if err != nil {
		return err
	}

	digest := digestToken(token)
	aKey := s.accountKey(accountID)

	for i := 0; i < maxConsumeRetries; i++ {
		err = s.redis.Watch(ctx, func(tx *redis.Tx) error {
			previous, err := tx.Get(ctx, aKey).Result()
			if err != nil && !errors.Is(err, redis.Nil) {
				return err
			}

			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				if previous != "" && previous != digest {
					pipe.Del(ctx, s.tokenKey(previous))
				}
				pipe.Set(ctx, s.tokenKey(digest), encoded, ttl)
				pipe.Set(ctx, aKey, digest, ttl)
				return nil
			})
			return err
		}, aKey)

		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return fmt.Errorf("%w: %v", ErrResetRedisUnavailable, err)
		}
		return nil
	}

	return ErrResetContention
}

// Consume deletes the token and returns its record. Exactly one of any
// number of concurrent callers observes ok == true. Expired tokens are
// deleted and reported as absent.
func (s *RedisResetTokenStore) Consume(ctx context.Context, token string, now time.Time) (ResetRecord, bool, error) {
	if token == "" {
		return ResetRecord{}, false, nil
	}

	digest := digestToken(token)
	tKey := s.tokenKey(digest)

	for i := 0; i < maxConsumeRetries; i++ {
		var (
			consumed ResetRecord
			live     bool
		)

		err := s.redis.Watch(ctx, func(tx *redis.Tx) error {
			data, err := tx.Get(ctx, tKey).Bytes()
			if err != nil {
				return err
			}

			record, err := decodeResetRecord(data)
			if err != nil {
				return err
			}

			aKey := s.accountKey(record.AccountID)
			pointer, err := tx.Get(ctx, aKey).Result()
			if err != nil && !errors.Is(err, redis.Nil) {
				return err
			}

			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Del(ctx, tKey)
				if pointer == digest {
					pipe.Del(ctx, aKey)
				}
				return nil
			})
			if err != nil {
				return err
			}

			consumed = *record
			live = now.UnixNano() < record.ExpiresAt
			return nil
		}, tKey)

		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if errors.Is(err, redis.Nil) {
			return ResetRecord{}, false, nil
		}
		if err != nil {
			return ResetRecord{}, false, fmt.Errorf("%w: %v", ErrResetRedisUnavailable, err)
		}
		if !live {
			return ResetRecord{}, false, nil
		}
		return consumed, true, nil
	}

	return ResetRecord{}, false, ErrResetContention
}

func encodeResetRecord(record *ResetRecord) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte(resetRecordVersionV1)
	if err := binary.Write(&buf, binary.BigEndian, record.ExpiresAt); err != nil {
		return nil, err
	}

	if len(record.AccountID) > 65535 {
		return nil, errors.New("reset record account id too long")
	}
	if err := binary.Write(&buf, binary.BigEndian, uint16(len(record.AccountID))); err != nil {
		return nil, err
	}
	buf.WriteString(record.AccountID)

	return buf.Bytes(), nil
}

func decodeResetRecord(data []byte) (*ResetRecord, error) {
	reader := bytes.NewReader(data)

	version, err := reader.ReadByte()
	if err != nil {
		return nil, err
	}
	if version != resetRecordVersionV1 {
		return nil, errors.New("invalid reset record version")
	}

	record := &ResetRecord{}
	if err := binary.Read(reader, binary.BigEndian, &record.ExpiresAt); err != nil {
		return nil, err
	}

	var idLen uint16
	if err := binary.Read(reader, binary.BigEndian, &idLen); err != nil {
		return nil, err
	}
	id := make([]byte, idLen)
	if _, err := io.ReadFull(reader, id); err != nil {
		return nil, err
	}
	record.AccountID = string(id)

	return record, nil
}
