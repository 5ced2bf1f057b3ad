package password

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/argon2"
)

// ErrHashMalformed is returned when a stored hash cannot be decoded. It is
// distinct from a verification mismatch, which is reported as (false, nil).
var ErrHashMalformed = errors.New("malformed password hash")

// Params controls the argon2id cost profile. Zero values are rejected;
// use [DefaultParams] for a sensible interactive-login profile.
//
// Params instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Params struct {
	MemoryKB   uint32
	Iterations uint32
	Threads    uint8
	SaltLen    uint32
	KeyLen     uint32
}

// DefaultParams returns the cost profile used when the caller does not
// override it: 64 MiB, 3 iterations, 2 threads.
func DefaultParams() Params {
	return Params{
		MemoryKB:   64 * 1024,
		Iterations: 3,
		Threads:    2,
		SaltLen:    16,
		KeyLen:     32,
	}
}

// Hasher produces and verifies argon2id password hashes in PHC string
// format ($argon2id$v=19$m=...,t=...,p=...$salt$hash).
//
// Hasher instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Hasher struct {
	params Params
}

// NewHasher describes the newhasher operation and its observable behavior.
//
// NewHasher may return an error when input validation, dependency calls, or security checks fail.
// NewHasher does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewHasher(p Params) (*Hasher, error) {
	if p.MemoryKB < 8*1024 {
		return nil, errors.New("argon2 memory must be >= 8192 KB")
	}
	if p.Iterations == 0 {
		return nil, errors.New("argon2 iterations must be >= 1")
	}
	if p.Threads == 0 {
		return nil, errors.New("argon2 threads must be >= 1")
	}
	if p.SaltLen < 16 || p.KeyLen < 16 {
		return nil, errors.New("argon2 salt and key length must be >= 16")
	}

	return &Hasher{params: p}, nil
}

// Hash derives an argon2id digest over the raw password bytes and returns
// its PHC encoding. No Unicode normalization is applied.
//
// Hash may return an error when input validation, dependency calls, or security checks fail.
func (h *Hasher) Hash(password string) (string, error) {
	if password == "" {
		return "", errors.New("password must not be empty")
	}

	salt := make([]byte, h.params.SaltLen)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return "", err
	}

	key := argon2.IDKey(
		[]byte(password),
		salt,
		h.params.Iterations,
		h.params.MemoryKB,
		h.params.Threads,
		h.params.KeyLen,
	)

	return fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		h.params.MemoryKB,
		h.params.Iterations,
		h.params.Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// Verify recomputes the digest with the parameters embedded in the stored
// hash and compares in constant time. A mismatch is (false, nil); only an
// undecodable stored hash produces an error.
func (h *Hasher) Verify(password, encoded string) (bool, error) {
	memory, iterations, threads, salt, key, err := decode(encoded)
	if err != nil {
		return false, err
	}

	computed := argon2.IDKey(
		[]byte(password),
		salt,
		iterations,
		memory,
		threads,
		uint32(len(key)),
	)

	return subtle.ConstantTimeCompare(computed, key) == 1, nil
}

func decode(encoded string) (memory, iterations uint32, threads uint8, salt, key []byte, err error) {
	var (
		version         int
		saltB64, keyB64 string
	)

	n, scanErr := fmt.Sscanf(encoded, "$argon2id$v=%d$m=%d,t=%d,p=%d$%s",
		&version, &memory, &iterations, &threads, &saltB64)
	if scanErr != nil || n != 5 {
		return 0, 0, 0, nil, nil, ErrHashMalformed
	}
	if version != argon2.Version {
		return 0, 0, 0, nil, nil, fmt.Errorf("%w: unsupported argon2 version %d", ErrHashMalformed, version)
	}

	// Sscanf's %s is greedy, so the trailing "salt$hash" arrives as one token.
	sep := -1
	for i := 0; i < len(saltB64); i++ {
		if saltB64[i] == '$' {
			sep = i
			break
		}
	}
	if sep < 0 {
		return 0, 0, 0, nil, nil, ErrHashMalformed
	}
	saltB64, keyB64 = saltB64[:sep], saltB64[sep+1:]

	salt, err = base64.RawStdEncoding.DecodeString(saltB64)
	if err != nil || len(salt) < 16 {
		return 0, 0, 0, nil, nil, ErrHashMalformed
	}
	key, err = base64.RawStdEncoding.DecodeString(keyB64)
	if err != nil || len(key) < 16 {
		return 0, 0, 0, nil, nil, ErrHashMalformed
	}
	if iterations == 0 || threads == 0 || memory == 0 {
		return 0, 0, 0, nil, nil, ErrHashMalformed
	}

	return memory, iterations, threads, salt, key, nil
}
