package elgamal

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
)

// Curve defines the interface for the elliptic curve groups the engine runs on
type Curve interface {
	// Metadata
	Name() string
	ID() byte
	ScalarSize() int
	PointSize() int
	Order() *big.Int

	// Scalar operations
	ScalarFromBytes([]byte) (Scalar, error)
	ScalarFromUniformBytes([]byte) (Scalar, error)
	ScalarFromBigInt(*big.Int) Scalar
	ScalarRandom() (Scalar, error)
	ScalarZero() Scalar
	ScalarOne() Scalar

	// Point operations
	PointFromBytes([]byte) (Point, error)
	BasePoint() Point
	PointIdentity() Point

	// Message embedding. CoordinateModulus bounds the coordinate a message is
	// embedded in, LiftCoordinate returns every curve point carrying that
	// coordinate and Coordinate reads it back.
	CoordinateModulus() *big.Int
	LiftCoordinate(*big.Int) []Point
	Coordinate(Point) (*big.Int, error)

	// Validation
	ValidateScalar([]byte) error
	CheckScalar(Scalar) error
	CheckPoint(Point) error
}

// Scalar represents a scalar value in the curve's field, always reduced
// modulo the group order
type Scalar interface {
	// Serialization
	Bytes() []byte
	String() string
	BigInt() *big.Int

	// Arithmetic operations
	Add(Scalar) Scalar
	Sub(Scalar) Scalar
	Mul(Scalar) Scalar
	Negate() Scalar
	Invert() (Scalar, error)

	// Comparison
	Equal(Scalar) bool
	IsZero() bool

	// Security
	Zeroize()
}

// Point represents an element of the curve group
type Point interface {
	// Serialization
	Bytes() []byte
	String() string

	// Arithmetic operations
	Add(Point) Point
	Sub(Point) Point
	Mul(Scalar) Point
	Negate() Point

	// Comparison
	Equal(Point) bool
	IsIdentity() bool

	// IsValid reports whether the point is on the curve and in the
	// prime-order subgroup
	IsValid() bool
}

// CurveType represents supported curve types
type CurveType string

const (
	BabyJubJub CurveType = "babyjubjub"
	Secp256k1  CurveType = "secp256k1"
	Ed25519    CurveType = "ed25519"
)

// Curve identifiers used in exported key material
const (
	curveIDBabyJubJub byte = 1
	curveIDSecp256k1  byte = 2
	curveIDEd25519    byte = 3
)

// NewCurve creates a new curve instance
func NewCurve(curveType CurveType) (Curve, error) {
	switch curveType {
	case BabyJubJub:
		return NewBabyJubJubCurve(), nil
	case Secp256k1:
		return NewSecp256k1Curve(), nil
	case Ed25519:
		return NewEd25519Curve(), nil
	default:
		return nil, fmt.Errorf("unsupported curve type: %s", curveType)
	}
}

// curveByID resolves the curve tag carried in exported key material
func curveByID(id byte) (Curve, error) {
	switch id {
	case curveIDBabyJubJub:
		return NewBabyJubJubCurve(), nil
	case curveIDSecp256k1:
		return NewSecp256k1Curve(), nil
	case curveIDEd25519:
		return NewEd25519Curve(), nil
	default:
		return nil, fmt.Errorf("unknown curve id %d", id)
	}
}

// Low-level curve errors, wrapped into *Error by the engine
var (
	ErrInvalidScalarLength = errors.New("invalid scalar length")
	ErrInvalidPointLength  = errors.New("invalid point length")
	ErrInvalidScalar       = errors.New("invalid scalar value")
	ErrPointNotOnCurve     = errors.New("point not on curve")
	ErrPointNotInSubgroup  = errors.New("point not in prime-order subgroup")
	ErrScalarZero          = errors.New("scalar is zero")
	ErrForeignPoint        = errors.New("point belongs to a different curve")
	ErrForeignScalar       = errors.New("scalar belongs to a different curve")
)

// SecureRandom generates cryptographically secure random bytes
func SecureRandom(size int) ([]byte, error) {
	bytes := make([]byte, size)
	_, err := rand.Read(bytes)
	return bytes, err
}

// reduceBigInt returns v mod n in [0, n)
func reduceBigInt(v, n *big.Int) *big.Int {
	r := new(big.Int).Mod(v, n)
	return r
}

// fixedBytes writes v big-endian into a fresh size-byte slice
func fixedBytes(v *big.Int, size int) []byte {
	out := make([]byte, size)
	v.FillBytes(out)
	return out
}

// reverseBytes returns a reversed copy, used for the little-endian encodings
func reverseBytes(in []byte) []byte {
	out := make([]byte, len(in))
	for i := range in {
		out[len(in)-1-i] = in[i]
	}
	return out
}
