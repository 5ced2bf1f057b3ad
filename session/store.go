package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MrEthical07/goCookieAuth/internal"
)

// ErrRedisUnavailable is an exported constant or variable used by the authentication engine.
var ErrRedisUnavailable = errors.New("redis unavailable")

// ErrSessionNotFound is returned when no record exists for the session id.
var ErrSessionNotFound = errors.New("session not found")

// ErrSessionInactive is returned when a record exists but is not usable:
// wrong owner or a status other than ACTIVE.
var ErrSessionInactive = errors.New("session inactive")

// ErrRefreshHashMismatch is returned when the presented refresh token does
// not match the stored hash. Callers treat this as possible token reuse.
var ErrRefreshHashMismatch = errors.New("refresh hash mismatch")

// StatusActive is the only live session status. There is no REVOKED state:
// revocation is deletion.
const StatusActive = "ACTIVE"

const (
	fieldUserID      = "userId"
	fieldRefreshHash = "refreshHash"
	fieldStatus      = "status"
)

const (
	rotateStatusNotFound  int64 = 0
	rotateStatusInactive  int64 = 1
	rotateStatusWrongUser int64 = 2
	rotateStatusMismatch  int64 = 3
	rotateStatusRotated   int64 = 4
)

// rotateRefreshScript is a compare-and-swap over the stored refresh hash.
// Validation and replacement happen in one script so two concurrent refresh
// calls presenting the same token can never both rotate: the loser observes
// the winner's hash and fails with a mismatch.
const rotateRefreshScript = `
local key = KEYS[1]
if redis.call("EXISTS", key) == 0 then
  return 0
end
local vals = redis.call("HMGET", key, "userId", "status", "refreshHash")
if vals[2] ~= "ACTIVE" then
  return 1
end
if vals[1] ~= ARGV[1] then
  return 2
end
if vals[3] ~= ARGV[2] then
  return 3
end
redis.call("HSET", key, "refreshHash", ARGV[3])
redis.call("PEXPIRE", key, ARGV[4])
return 4
`

var rotateRefreshLua = redis.NewScript(rotateRefreshScript)

// Store is a Redis-backed session store holding one revocable record per
// login. The record is the source of truth for "is this user logged in":
// access tokens are only honored while the record exists and is ACTIVE.
//
// Record layout: hash at {prefix}:{sid} with fields userId, refreshHash
// (SHA-256 hex of the raw refresh token), status. TTL equals the refresh
// token lifetime and is re-armed on create and rotate.
type Store struct {
	redis     redis.UniversalClient
	prefix    string
	ttl       time.Duration
	opTimeout time.Duration
}

// NewStore creates a session [Store] backed by the given Redis client.
// prefix sets the Redis key namespace, ttl is the refresh-token lifetime,
// and opTimeout bounds every Redis round-trip (0 disables the bound).
func NewStore(redis redis.UniversalClient, prefix string, ttl, opTimeout time.Duration) *Store {
	return &Store{
		redis:     redis,
		prefix:    prefix,
		ttl:       ttl,
		opTimeout: opTimeout,
	}
}

func (s *Store) key(sessionID string) string {
	return s.prefix + ":" + sessionID
}

func (s *Store) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.opTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.opTimeout)
}

// Create writes a new ACTIVE record for the session, storing only the hash
// of the refresh token, and arms the TTL. An existing record at the same
// key is overwritten; ids are freshly generated so this should not occur.
//
//	Performance: 2 Redis commands in one transaction (HSET + EXPIRE).
func (s *Store) Create(ctx context.Context, sessionID string, userID int64, refreshToken string) error {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	key := s.key(sessionID)
	_, err := s.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, map[string]interface{}{
			fieldUserID:      strconv.FormatInt(userID, 10),
			fieldRefreshHash: internal.HashTokenHex(refreshToken),
			fieldStatus:      StatusActive,
		})
		pipe.Expire(ctx, key, s.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	return nil
}

// IsActive reports whether a record exists for the session, is ACTIVE, and
// belongs to the given user. It runs on every authenticated request.
//
//	Performance: 1 Redis HGETALL.
func (s *Store) IsActive(ctx context.Context, sessionID string, userID int64) (bool, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	values, err := s.redis.HGetAll(ctx, s.key(sessionID)).Result()
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	if len(values) == 0 {
		return false, nil
	}

	return values[fieldStatus] == StatusActive &&
		values[fieldUserID] == strconv.FormatInt(userID, 10), nil
}

// ValidateRefreshToken reports whether the presented refresh token matches
// the stored record. This is a read-only probe; rotation re-validates
// atomically inside [Store.Rotate] and never trusts this answer.
func (s *Store) ValidateRefreshToken(ctx context.Context, sessionID string, userID int64, refreshToken string) (bool, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	values, err := s.redis.HGetAll(ctx, s.key(sessionID)).Result()
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	if len(values) == 0 {
		return false, nil
	}
	if values[fieldStatus] != StatusActive {
		return false, nil
	}
	if values[fieldUserID] != strconv.FormatInt(userID, 10) {
		return false, nil
	}

	return values[fieldRefreshHash] == internal.HashTokenHex(refreshToken), nil
}

// Rotate atomically replaces the stored refresh hash with the hash of the
// next token and re-arms the TTL, but only if the record exists, is ACTIVE,
// belongs to userID, and currently holds the hash of currentToken. This is
// the core of the rotation protocol that enables reuse detection.
//
//	Performance: 1 Lua EVALSHA (atomic compare-and-swap).
func (s *Store) Rotate(ctx context.Context, sessionID string, userID int64, currentToken, nextToken string) error {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	result, err := rotateRefreshLua.Run(
		ctx,
		s.redis,
		[]string{s.key(sessionID)},
		strconv.FormatInt(userID, 10),
		internal.HashTokenHex(currentToken),
		internal.HashTokenHex(nextToken),
		s.ttl.Milliseconds(),
	).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	code, ok := result.(int64)
	if !ok {
		return fmt.Errorf("%w: invalid rotate script response", ErrRedisUnavailable)
	}

	switch code {
	case rotateStatusNotFound:
		return ErrSessionNotFound
	case rotateStatusInactive, rotateStatusWrongUser:
		return ErrSessionInactive
	case rotateStatusMismatch:
		return ErrRefreshHashMismatch
	case rotateStatusRotated:
		return nil
	default:
		return fmt.Errorf("%w: unknown rotate script status %d", ErrRedisUnavailable, code)
	}
}

// Delete removes the session record. Deleting a nonexistent id is a no-op,
// not an error.
//
//	Performance: 1 Redis DEL.
func (s *Store) Delete(ctx context.Context, sessionID string) error {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	if err := s.redis.Del(ctx, s.key(sessionID)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// Ping returns a point-in-time Redis availability check and latency.
func (s *Store) Ping(ctx context.Context) (time.Duration, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	start := time.Now()
	if err := s.redis.Ping(ctx).Err(); err != nil {
		return time.Since(start), fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return time.Since(start), nil
}
