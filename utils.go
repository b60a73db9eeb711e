package elgamal

import (
	"crypto/subtle"
	"encoding/binary"
	"fmt"
	"hash"
	"math/big"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/blake2b"
)

// Domain separators for every hash the engine computes
const (
	domainHashToScalar = "ELGAMAL_HASH_TO_SCALAR"
	domainChallenge    = "ELGAMAL_CHALLENGE"
	domainSeed         = "ELGAMAL_SEED_V1"
	domainNonce        = "ELGAMAL_NONCE_DIGEST"
)

// ParticipantIndex represents a participant identifier, 1-based
type ParticipantIndex uint32

// Well-known roles of the two-party deployment
const (
	LitIndex     ParticipantIndex = 1
	AuditorIndex ParticipantIndex = 2
)

// newHash returns BLAKE2b-512, the engine's hash for transcripts and seeds
func newHash() hash.Hash {
	h, err := blake2b.New512(nil)
	if err != nil {
		// only fails for oversized keys
		panic(fmt.Sprintf("blake2b: %v", err))
	}
	return h
}

// HashToScalar hashes data to a scalar value using uniform distribution
func HashToScalar(curve Curve, data ...[]byte) (Scalar, error) {
	hasher := newHash()
	hasher.Write([]byte(domainHashToScalar))
	hasher.Write([]byte(curve.Name()))

	for _, d := range data {
		hasher.Write(d)
	}

	return curve.ScalarFromUniformBytes(hasher.Sum(nil))
}

// ChallengeHash computes a Fiat-Shamir challenge over a length-prefixed
// transcript
func ChallengeHash(curve Curve, transcript ...[]byte) (Scalar, error) {
	hasher := newHash()
	hasher.Write([]byte(domainChallenge))
	hasher.Write([]byte(curve.Name()))

	for _, data := range transcript {
		var lengthBytes [4]byte
		binary.BigEndian.PutUint32(lengthBytes[:], uint32(len(data)))
		hasher.Write(lengthBytes[:])
		hasher.Write(data)
	}

	return curve.ScalarFromUniformBytes(hasher.Sum(nil))
}

// ToScalar converts participant index to a scalar
func (pi ParticipantIndex) ToScalar(curve Curve) (Scalar, error) {
	if pi == 0 {
		return nil, ErrInvalidParticipantID.WithDetails("index 0 is reserved for the secret")
	}
	return curve.ScalarFromBigInt(new(big.Int).SetUint64(uint64(pi))), nil
}

// SecureCompare performs constant-time comparison of byte slices
func SecureCompare(a, b []byte) bool {
	return subtle.ConstantTimeCompare(a, b) == 1
}

// ZeroizeBytes securely clears a byte slice
func ZeroizeBytes(data []byte) {
	for i := range data {
		data[i] = 0
	}
}

// ZeroizeScalarSlice securely clears a slice of scalars
func ZeroizeScalarSlice(scalars []Scalar) {
	for _, scalar := range scalars {
		if scalar != nil {
			scalar.Zeroize()
		}
	}
}

// BatchInvert inverts multiple scalars with a single field inversion
// (Montgomery's trick)
func BatchInvert(scalars []Scalar) ([]Scalar, error) {
	n := len(scalars)
	if n == 0 {
		return nil, nil
	}

	for i, scalar := range scalars {
		if scalar.IsZero() {
			return nil, fmt.Errorf("scalar at index %d: %w", i, ErrScalarZero)
		}
	}

	// prefix[i] = s_0 * ... * s_i
	prefix := make([]Scalar, n)
	prefix[0] = scalars[0]
	for i := 1; i < n; i++ {
		prefix[i] = prefix[i-1].Mul(scalars[i])
	}

	acc, err := prefix[n-1].Invert()
	if err != nil {
		return nil, err
	}

	inverses := make([]Scalar, n)
	for i := n - 1; i > 0; i-- {
		inverses[i] = acc.Mul(prefix[i-1])
		acc = acc.Mul(scalars[i])
	}
	inverses[0] = acc

	return inverses, nil
}

// parseDecimal parses a non-negative base-10 integer string of plain
// digits. Inputs longer than the decimal width of bound are refused before
// any expansion.
func parseDecimal(s string, bound *big.Int) (*big.Int, error) {
	if s == "" {
		return nil, ErrInvalidMessage.WithDetails("empty decimal string")
	}
	if width := len(bound.String()); len(s) > width {
		return nil, ErrInvalidMessage.WithDetails("decimal string longer than %d digits", width)
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return nil, ErrInvalidMessage.WithDetails("%q is not a non-negative integer", s)
		}
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, ErrInvalidMessage.WithCause(err)
	}
	if d.Exponent() != 0 {
		return nil, ErrInvalidMessage.WithDetails("%q is not a non-negative integer", s)
	}
	return d.BigInt(), nil
}

// formatDecimal renders an integer the way parseDecimal accepts it
func formatDecimal(v *big.Int) string {
	return decimal.NewFromBigInt(v, 0).String()
}
