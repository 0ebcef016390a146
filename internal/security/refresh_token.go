package security

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
)

// refreshSecretBytes is the entropy of a refresh token secret (256 bits).
const refreshSecretBytes = 32

// NewRefreshToken generates an opaque refresh token secret and its SHA-256 hash.
// The secret goes to the client (cookie); only the hash is ever persisted or logged.
func NewRefreshToken() (secret, hash string, err error) {
	buf := make([]byte, refreshSecretBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", "", err
	}
	secret = base64.RawURLEncoding.EncodeToString(buf)
	return secret, HashRefreshToken(secret), nil
}

// HashRefreshToken returns a SHA-256 hash of the refresh token secret, hex-encoded.
// Used for storing and looking up refresh tokens without storing the raw secret.
func HashRefreshToken(secret string) string {
	h := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(h[:])
}

// RefreshTokenHashEqual performs constant-time comparison of the provided secret's hash
// with the stored hash. Returns true only if they match.
func RefreshTokenHashEqual(providedSecret, storedHash string) bool {
	providedHash := HashRefreshToken(providedSecret)
	return subtle.ConstantTimeCompare([]byte(providedHash), []byte(storedHash)) == 1
}

// TokenHashPrefix returns the first 8 hex characters of a token hash, for audit
// log correlation. Never enough to reconstruct or look up the token.
func TokenHashPrefix(hash string) string {
	if len(hash) <= 8 {
		return hash
	}
	return hash[:8]
}
