// Package crypto hashes and verifies resource passwords.
// A value reaching Prepare that already looks like a hash produced by one
// of the registered algorithms is stored verbatim ("already hashed");
// anything else is hashed with the configured default algorithm.
package crypto

import (
	"crypto/rand"
	"crypto/sha1" //nolint:gosec // SSHA interop format, not used for new hashes
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

// Algorithm is a registered password hashing scheme.
type Algorithm interface {
	Name() string
	Hash(password string) (string, error)
	Verify(password, hash string) bool
	// Recognize reports whether hash was produced by this algorithm.
	Recognize(hash string) bool
}

// argon2idAlgorithm is the default algorithm, tuned to the
// OWASP-recommended profile (m=19456 KiB, t=2, p=1), PHC string encoded.
type argon2idAlgorithm struct {
	memoryKiB  uint32
	iterations uint32
	parallel   uint8
	saltLen    uint32
	keyLen     uint32
}

// NewArgon2id returns the OWASP-profile Argon2id algorithm.
func NewArgon2id() Algorithm {
	return &argon2idAlgorithm{memoryKiB: 19456, iterations: 2, parallel: 1, saltLen: 16, keyLen: 32}
}

func (a *argon2idAlgorithm) Name() string { return "argon2id" }

func (a *argon2idAlgorithm) Hash(password string) (string, error) {
	salt := make([]byte, a.saltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	key := argon2.IDKey([]byte(password), salt, a.iterations, a.memoryKiB, a.parallel, a.keyLen)

	return fmt.Sprintf("$argon2id$v=19$m=%d,t=%d,p=%d$%s$%s",
		a.memoryKiB, a.iterations, a.parallel,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key)), nil
}

func (a *argon2idAlgorithm) Recognize(hash string) bool {
	return strings.HasPrefix(hash, "$argon2id$")
}

func (a *argon2idAlgorithm) Verify(password, hash string) bool {
	parts := strings.Split(hash, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return false
	}

	var memoryKiB, iterations uint32
	var parallel uint8
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memoryKiB, &iterations, &parallel); err != nil {
		return false
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false
	}

	want, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return false
	}

	got := argon2.IDKey([]byte(password), salt, iterations, memoryKiB, parallel, uint32(len(want)))

	return subtle.ConstantTimeCompare(got, want) == 1
}

// bcryptAlgorithm is carried for interop with providers that pre-hash with bcrypt.
type bcryptAlgorithm struct{ cost int }

// NewBcrypt returns the bcrypt algorithm at the given cost (bcrypt.DefaultCost if 0).
func NewBcrypt(cost int) Algorithm {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &bcryptAlgorithm{cost: cost}
}

func (b *bcryptAlgorithm) Name() string { return "bcrypt" }

func (b *bcryptAlgorithm) Hash(password string) (string, error) {
	out, err := bcrypt.GenerateFromPassword([]byte(password), b.cost)
	return string(out), err
}

func (b *bcryptAlgorithm) Recognize(hash string) bool {
	return strings.HasPrefix(hash, "$2a$") || strings.HasPrefix(hash, "$2b$") || strings.HasPrefix(hash, "$2y$")
}

func (b *bcryptAlgorithm) Verify(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// sshaAlgorithm is the salted-SHA1 scheme used by many LDAP-derived identity
// providers ("{SSHA}" + base64(sha1(password+salt)+salt)). Carried for
// interop only; Hash is provided so the recognizer set stays symmetric.
type sshaAlgorithm struct{}

// NewSSHA returns the salted-SHA1 interop algorithm.
func NewSSHA() Algorithm { return &sshaAlgorithm{} }

func (s *sshaAlgorithm) Name() string { return "ssha" }

func (s *sshaAlgorithm) Hash(password string) (string, error) {
	salt := make([]byte, 8)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}

	sum := sha1.Sum(append([]byte(password), salt...)) //nolint:gosec

	return "{SSHA}" + base64.StdEncoding.EncodeToString(append(sum[:], salt...)), nil
}

func (s *sshaAlgorithm) Recognize(hash string) bool {
	return strings.HasPrefix(hash, "{SSHA}")
}

func (s *sshaAlgorithm) Verify(password, hash string) bool {
	if !s.Recognize(hash) {
		return false
	}

	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(hash, "{SSHA}"))
	if err != nil || len(raw) < sha1.Size {
		return false
	}

	wantSum, salt := raw[:sha1.Size], raw[sha1.Size:]
	gotSum := sha1.Sum(append([]byte(password), salt...)) //nolint:gosec

	return subtle.ConstantTimeCompare(gotSum[:], wantSum) == 1
}

// Manager hashes and verifies passwords against a default algorithm, while
// recognizing already-hashed values from any registered algorithm.
type Manager struct {
	def        Algorithm
	registered []Algorithm
}

// NewManager builds a password manager with the given default algorithm and
// the full registry of recognizers (including def).
func NewManager(def Algorithm, others ...Algorithm) *Manager {
	return &Manager{def: def, registered: append([]Algorithm{def}, others...)}
}

// DefaultManager returns the manager used when no tenant override is
// configured: Argon2id default, bcrypt and SSHA recognized for interop.
func DefaultManager() *Manager {
	return NewManager(NewArgon2id(), NewBcrypt(0), NewSSHA())
}

// IsHashed reports whether value already matches a registered algorithm.
func (m *Manager) IsHashed(value string) bool {
	for _, a := range m.registered {
		if a.Recognize(value) {
			return true
		}
	}
	return false
}

// Prepare turns a password field into its stored form: if value already
// looks hashed it is stored verbatim, otherwise it is hashed with the
// default algorithm.
func (m *Manager) Prepare(value string) (string, error) {
	if m.IsHashed(value) {
		return value, nil
	}
	return m.def.Hash(value)
}

// Verify checks password against a stored hash, picking the algorithm that
// recognizes its form.
func (m *Manager) Verify(password, hash string) bool {
	for _, a := range m.registered {
		if a.Recognize(hash) {
			return a.Verify(password, hash)
		}
	}
	return false
}
