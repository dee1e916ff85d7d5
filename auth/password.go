package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"

	"golang.org/x/crypto/argon2"
)

// PasswordHasher hashes and verifies user passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, encoded string) bool
}

// Argon2Params tunes argon2id. The zero value is replaced by
// DefaultArgon2Params.
type Argon2Params struct {
	Time    uint32
	Memory  uint32 // KiB
	Threads uint8
	KeyLen  uint32
	SaltLen int
}

// DefaultArgon2Params are the production settings.
var DefaultArgon2Params = Argon2Params{Time: 1, Memory: 64 * 1024, Threads: 4, KeyLen: 32, SaltLen: 16}

// Argon2Hasher stores base64(salt || argon2id(password, salt)).
type Argon2Hasher struct {
	p Argon2Params
}

// NewArgon2Hasher returns a hasher using p, or the defaults when p is zero.
// Tests pass a cheap Memory setting to keep suites fast.
func NewArgon2Hasher(p Argon2Params) *Argon2Hasher {
	if p == (Argon2Params{}) {
		p = DefaultArgon2Params
	}
	return &Argon2Hasher{p: p}
}

func (h *Argon2Hasher) Hash(password string) (string, error) {
	if password == "" {
		return "", errors.New("jobly/auth: empty password")
	}
	salt := make([]byte, h.p.SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("jobly/auth: salt: %w", err)
	}
	key := argon2.IDKey([]byte(password), salt, h.p.Time, h.p.Memory, h.p.Threads, h.p.KeyLen)
	return base64.RawStdEncoding.EncodeToString(append(salt, key...)), nil
}

// Verify reports whether password matches encoded. Malformed hashes never
// match.
func (h *Argon2Hasher) Verify(password, encoded string) bool {
	data, err := base64.RawStdEncoding.DecodeString(encoded)
	if err != nil || len(data) <= h.p.SaltLen {
		return false
	}
	salt, want := data[:h.p.SaltLen], data[h.p.SaltLen:]
	got := argon2.IDKey([]byte(password), salt, h.p.Time, h.p.Memory, h.p.Threads, uint32(len(want)))
	return subtle.ConstantTimeCompare(got, want) == 1
}

var _ PasswordHasher = (*Argon2Hasher)(nil)
