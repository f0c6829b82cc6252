// Package id generates the prefixed, URL-safe identifiers exposed by the API,
// such as "pool_3fK9mP2vL3nQ".
package id

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
)

const (
	// Base62 alphabet: 0-9, A-Z, a-z
	alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

	// DefaultLength is the default length of the random part
	DefaultLength = 12
)

// Entity prefixes
const (
	PrefixOwner        = "own"
	PrefixSubscription = "sub"
	PrefixPool         = "pool"
	PrefixEntitlement  = "ent"
	PrefixJob          = "job"
)

// Generate creates a random Base62 string of the given length.
func Generate(length int) (string, error) {
	if length <= 0 {
		length = DefaultLength
	}

	result := make([]byte, length)
	alphabetLen := big.NewInt(int64(len(alphabet)))
	for i := range result {
		num, err := rand.Int(rand.Reader, alphabetLen)
		if err != nil {
			return "", fmt.Errorf("failed to generate random number: %w", err)
		}
		result[i] = alphabet[num.Int64()]
	}
	return string(result), nil
}

// New creates "prefix_<random>" and panics if the system random source fails.
func New(prefix string) string {
	s, err := Generate(DefaultLength)
	if err != nil {
		panic(err)
	}
	return prefix + "_" + s
}

func NewOwnerID() string        { return New(PrefixOwner) }
func NewSubscriptionID() string { return New(PrefixSubscription) }
func NewPoolID() string         { return New(PrefixPool) }
func NewEntitlementID() string  { return New(PrefixEntitlement) }
func NewJobID() string          { return New(PrefixJob) }

// ParsePrefixedID splits an id at its first underscore.
func ParsePrefixedID(prefixedID string) (prefix, shortID string, err error) {
	prefix, shortID, ok := strings.Cut(prefixedID, "_")
	if !ok || prefix == "" || shortID == "" {
		return "", "", fmt.Errorf("invalid prefixed ID format: %q", prefixedID)
	}
	return prefix, shortID, nil
}

// ValidatePrefix checks that prefixedID is well formed and carries expectedPrefix.
func ValidatePrefix(prefixedID, expectedPrefix string) error {
	prefix, _, err := ParsePrefixedID(prefixedID)
	if err != nil {
		return err
	}
	if prefix != expectedPrefix {
		return fmt.Errorf("invalid prefix: expected %s, got %s", expectedPrefix, prefix)
	}
	return nil
}
