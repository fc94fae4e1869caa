package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// ErrMalformedHash is returned when a stored hash cannot be parsed.
var ErrMalformedHash = errors.New("malformed password hash")

// PasswordHasher hashes plaintext secrets and checks candidates against
// stored hashes. Hashes are self-describing: verification needs only the
// stored string and the candidate secret.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) (bool, error)
	NeedsRehash(hash string) (bool, error)
}

// Argon2Params are the cost parameters for argon2id hashing.
type Argon2Params struct {
	MemoryCost  uint32 // KiB
	TimeCost    uint32
	Parallelism uint8
	KeyLength   uint32
}

// DefaultArgon2Params returns the baseline cost parameters.
func DefaultArgon2Params() Argon2Params {
	return Argon2Params{
		MemoryCost:  16384,
		TimeCost:    2,
		Parallelism: 1,
		KeyLength:   32,
	}
}

const saltLength = 16

// Argon2Hasher implements PasswordHasher with argon2id and produces
// hashes in the standard encoded form
// $argon2id$v=19$m=...,t=...,p=...$<salt>$<key>.
type Argon2Hasher struct {
	params Argon2Params
}

func NewArgon2Hasher(params Argon2Params) *Argon2Hasher {
	return &Argon2Hasher{params: params}
}

// Hash derives an argon2id key from password under a fresh random salt
// and returns the encoded hash string.
func (h *Argon2Hasher) Hash(password string) (string, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	key := argon2.IDKey([]byte(password), salt,
		h.params.TimeCost, h.params.MemoryCost, h.params.Parallelism, h.params.KeyLength)

	encoded := fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		h.params.MemoryCost, h.params.TimeCost, h.params.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	)
	return encoded, nil
}

// Verify re-derives the key with the parameters and salt embedded in hash
// and compares it against the stored key in constant time.
func (h *Argon2Hasher) Verify(password, hash string) (bool, error) {
	params, salt, key, err := decodeHash(hash)
	if err != nil {
		return false, err
	}

	candidate := argon2.IDKey([]byte(password), salt,
		params.TimeCost, params.MemoryCost, params.Parallelism, uint32(len(key)))

	return subtle.ConstantTimeCompare(candidate, key) == 1, nil
}

// NeedsRehash reports whether hash was produced with parameters weaker
// than the hasher's current ones. Policy for rewriting such hashes lives
// with the caller; this package only detects the drift.
func (h *Argon2Hasher) NeedsRehash(hash string) (bool, error) {
	params, _, key, err := decodeHash(hash)
	if err != nil {
		return false, err
	}

	weaker := params.MemoryCost < h.params.MemoryCost ||
		params.TimeCost < h.params.TimeCost ||
		params.Parallelism < h.params.Parallelism ||
		uint32(len(key)) < h.params.KeyLength
	return weaker, nil
}

func decodeHash(hash string) (Argon2Params, []byte, []byte, error) {
	var params Argon2Params

	parts := strings.Split(hash, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != "argon2id" {
		return params, nil, nil, ErrMalformedHash
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return params, nil, nil, ErrMalformedHash
	}
	if version != argon2.Version {
		return params, nil, nil, fmt.Errorf("%w: unsupported argon2 version %d", ErrMalformedHash, version)
	}

	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d",
		&params.MemoryCost, &params.TimeCost, &params.Parallelism); err != nil {
		return params, nil, nil, ErrMalformedHash
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return params, nil, nil, ErrMalformedHash
	}
	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return params, nil, nil, ErrMalformedHash
	}
	// An empty salt or key would make any candidate verify.
	if len(salt) == 0 || len(key) == 0 {
		return params, nil, nil, ErrMalformedHash
	}
	params.KeyLength = uint32(len(key))

	return params, salt, key, nil
}
