// Package pkce generates Proof Key for Code Exchange verifiers and derives their S256 challenges.
package pkce

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"math/big"

	"github.com/pkg/errors"
)

const (
	// MinVerifierLength and MaxVerifierLength bound a code_verifier (RFC 7636 section 4.1).
	MinVerifierLength = 43
	MaxVerifierLength = 128

	// DefaultVerifierLength is used when no length is configured.
	DefaultVerifierLength = MaxVerifierLength

	// MethodS256 is the only challenge method this package produces.
	MethodS256 = "S256"

	unreserved = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-._~"
)

var ErrInvalidVerifierLength = errors.New("code verifier length must be between 43 and 128")

// GenerateVerifier returns a random verifier of the given length drawn uniformly from the
// unreserved character set.
func GenerateVerifier(length int) (string, error) {
	if length < MinVerifierLength || length > MaxVerifierLength {
		return "", ErrInvalidVerifierLength
	}

	max := big.NewInt(int64(len(unreserved)))
	verifier := make([]byte, length)
	for i := range verifier {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", errors.Wrap(err, "[pkce.GenerateVerifier] rand.Int")
		}
		verifier[i] = unreserved[n.Int64()]
	}
	return string(verifier), nil
}

// Challenge derives the S256 code_challenge: BASE64URL(SHA256(verifier)) without padding.
func Challenge(verifier string) string {
	hash := sha256.Sum256([]byte(verifier))
	return base64.RawURLEncoding.EncodeToString(hash[:])
}

// ValidVerifier reports whether v has a legal length and only unreserved characters.
func ValidVerifier(v string) bool {
	if len(v) < MinVerifierLength || len(v) > MaxVerifierLength {
		return false
	}
	for i := 0; i < len(v); i++ {
		if !isUnreserved(v[i]) {
			return false
		}
	}
	return true
}

func isUnreserved(c byte) bool {
	switch {
	case c >= 'A' && c <= 'Z', c >= 'a' && c <= 'z', c >= '0' && c <= '9':
		return true
	case c == '-', c == '.', c == '_', c == '~':
		return true
	}
	return false
}
