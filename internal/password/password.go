// Package password implements the credential hashing scheme:
// PBKDF2-SHA256 with a random 16-byte salt, encoded as
// pbkdf2_sha256$<iterations>$<salthex>$<hashhex>.
package password

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

const (
	scheme     = "pbkdf2_sha256"
	saltBytes  = 16
	iterations = 200000
	keyLen     = sha256.Size
)

// Hash derives a verifiable credential from the plaintext password.
func Hash(plaintext string) (string, error) {
	salt := make([]byte, saltBytes)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	dk := pbkdf2.Key([]byte(plaintext), salt, iterations, keyLen, sha256.New)
	return fmt.Sprintf("%s$%d$%s$%s", scheme, iterations, hex.EncodeToString(salt), hex.EncodeToString(dk)), nil
}

// Verify reports whether the plaintext password matches the stored
// credential. Malformed credentials verify as false, never as an error,
// so unknown-user and bad-password paths stay indistinguishable.
func Verify(plaintext, stored string) bool {
	parts := strings.SplitN(stored, "$", 4)
	if len(parts) != 4 || parts[0] != scheme {
		return false
	}
	iter, err := strconv.Atoi(parts[1])
	if err != nil || iter <= 0 {
		return false
	}
	salt, err := hex.DecodeString(parts[2])
	if err != nil {
		return false
	}
	want, err := hex.DecodeString(parts[3])
	if err != nil {
		return false
	}
	got := pbkdf2.Key([]byte(plaintext), salt, iter, len(want), sha256.New)
	return subtle.ConstantTimeCompare(got, want) == 1
}
