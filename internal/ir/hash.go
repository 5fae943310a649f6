package ir

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content hashing.
// The version suffix allows the encoding to change without silently
// aliasing old digests.
const (
	DomainExpression = "symcore/expr/v1"
	DomainNumber     = "symcore/number/v1"
)

// hashWithDomain computes SHA-256 with domain separation.
// Format: SHA256(domain + 0x00 + data)
// The null byte separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) [sha256.Size]byte {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	var sum [sha256.Size]byte
	h.Sum(sum[:0])
	return sum
}

// StructuralHash returns a 64-bit structural hash of e. Structurally equal
// expressions always hash equal; the canonical encoding tags every variant,
// so Integer 1 and Rational 1/1 hash differently.
func StructuralHash(e Expression) (uint64, error) {
	canonical, err := MarshalCanonical(e)
	if err != nil {
		return 0, fmt.Errorf("StructuralHash: %w", err)
	}
	sum := hashWithDomain(DomainExpression, canonical)
	return binary.BigEndian.Uint64(sum[:8]), nil
}

// MustStructuralHash is like StructuralHash but panics on error.
// Use only when the expression is known to be well formed.
func MustStructuralHash(e Expression) uint64 {
	h, err := StructuralHash(e)
	if err != nil {
		panic(err)
	}
	return h
}

// ContentDigest returns the full hex SHA-256 digest of e, used where a
// 64-bit hash is too narrow, such as identifying simplify results.
func ContentDigest(e Expression) (string, error) {
	canonical, err := MarshalCanonical(e)
	if err != nil {
		return "", fmt.Errorf("ContentDigest: %w", err)
	}
	sum := hashWithDomain(DomainExpression, canonical)
	return hex.EncodeToString(sum[:]), nil
}

// NumberHash returns a 64-bit structural hash of n.
func NumberHash(n Number) (uint64, error) {
	canonical, err := MarshalCanonicalNumber(n)
	if err != nil {
		return 0, fmt.Errorf("NumberHash: %w", err)
	}
	sum := hashWithDomain(DomainNumber, canonical)
	return binary.BigEndian.Uint64(sum[:8]), nil
}
