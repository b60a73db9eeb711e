package elgamal

import (
	"bytes"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"
	"runtime"

	"filippo.io/edwards25519"
)

var (
	// ed25519Order is l = 2^252 + 27742317777372353535851937790883648493
	ed25519Order, _ = new(big.Int).SetString("7237005577332262213973186563042994240857116359379907606001950938285454250989", 10)

	// ed25519FieldPrime is p = 2^255 - 19
	ed25519FieldPrime = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 255), big.NewInt(19))
)

// Ed25519Curve implements the Curve interface for Ed25519
type Ed25519Curve struct{}

// NewEd25519Curve creates a new Ed25519 curve instance
func NewEd25519Curve() *Ed25519Curve {
	return &Ed25519Curve{}
}

func (c *Ed25519Curve) Name() string    { return "ed25519" }
func (c *Ed25519Curve) ID() byte        { return curveIDEd25519 }
func (c *Ed25519Curve) ScalarSize() int { return 32 }
func (c *Ed25519Curve) PointSize() int  { return 32 }

func (c *Ed25519Curve) Order() *big.Int {
	return new(big.Int).Set(ed25519Order)
}

// ScalarFromBytes expects the 32-byte big-endian canonical encoding used
// across all curves of this package
func (c *Ed25519Curve) ScalarFromBytes(data []byte) (Scalar, error) {
	if len(data) != 32 {
		return nil, ErrInvalidScalarLength
	}

	scalar, err := new(edwards25519.Scalar).SetCanonicalBytes(reverseBytes(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidScalar, err)
	}

	return NewEd25519Scalar(scalar), nil
}

func (c *Ed25519Curve) ScalarRandom() (Scalar, error) {
	bytes := make([]byte, 64) // Use 64 bytes for uniform distribution
	if _, err := rand.Read(bytes); err != nil {
		return nil, err
	}

	scalar, _ := edwards25519.NewScalar().SetUniformBytes(bytes)
	return NewEd25519Scalar(scalar), nil
}

// NewEd25519Scalar creates a new Ed25519Scalar with automatic cleanup via finalizer
func NewEd25519Scalar(inner *edwards25519.Scalar) *Ed25519Scalar {
	s := &Ed25519Scalar{inner: inner}
	runtime.SetFinalizer(s, (*Ed25519Scalar).finalize)
	return s
}

// finalize is called by the garbage collector as backup cleanup
func (s *Ed25519Scalar) finalize() {
	if s.inner != nil {
		s.Zeroize()
	}
}

func (c *Ed25519Curve) ScalarFromUniformBytes(data []byte) (Scalar, error) {
	if len(data) < 32 {
		return nil, ErrInvalidScalarLength
	}

	// Use up to 64 bytes for uniform distribution, pad if necessary
	uniformBytes := make([]byte, 64)
	copy(uniformBytes, data)

	scalar, _ := edwards25519.NewScalar().SetUniformBytes(uniformBytes)
	return NewEd25519Scalar(scalar), nil
}

func (c *Ed25519Curve) ScalarFromBigInt(v *big.Int) Scalar {
	reduced := fixedBytes(reduceBigInt(v, ed25519Order), 32)
	scalar, err := edwards25519.NewScalar().SetCanonicalBytes(reverseBytes(reduced))
	if err != nil {
		// unreachable, the value was reduced modulo l
		panic(fmt.Sprintf("ed25519: reduced scalar rejected: %v", err))
	}
	return NewEd25519Scalar(scalar)
}

func (c *Ed25519Curve) ScalarZero() Scalar {
	return &Ed25519Scalar{inner: edwards25519.NewScalar()}
}

func (c *Ed25519Curve) ScalarOne() Scalar {
	return c.ScalarFromBigInt(big.NewInt(1))
}

func (c *Ed25519Curve) PointFromBytes(data []byte) (Point, error) {
	if len(data) != 32 {
		return nil, ErrInvalidPoint.WithCause(ErrInvalidPointLength)
	}

	point, err := new(edwards25519.Point).SetBytes(data)
	if err != nil {
		return nil, ErrInvalidPoint.WithCause(err)
	}
	// SetBytes accepts non-canonical encodings of y
	if !bytes.Equal(point.Bytes(), data) {
		return nil, ErrInvalidPoint.WithDetails("non-canonical encoding")
	}

	p := &Ed25519Point{inner: point}
	if err := c.CheckPoint(p); err != nil {
		return nil, err
	}
	return p, nil
}

func (c *Ed25519Curve) BasePoint() Point {
	return &Ed25519Point{inner: edwards25519.NewGeneratorPoint()}
}

func (c *Ed25519Curve) PointIdentity() Point {
	return &Ed25519Point{inner: edwards25519.NewIdentityPoint()}
}

func (c *Ed25519Curve) CoordinateModulus() *big.Int {
	return new(big.Int).Set(ed25519FieldPrime)
}

// LiftCoordinate returns the points with the given y coordinate, one per
// sign of x
func (c *Ed25519Curve) LiftCoordinate(y *big.Int) []Point {
	if y.Sign() < 0 || y.Cmp(ed25519FieldPrime) >= 0 {
		return nil
	}

	encoded := reverseBytes(fixedBytes(y, 32))
	var points []Point
	for _, sign := range []byte{0x00, 0x80} {
		candidate := make([]byte, 32)
		copy(candidate, encoded)
		candidate[31] |= sign

		point, err := new(edwards25519.Point).SetBytes(candidate)
		if err != nil {
			continue
		}
		points = append(points, &Ed25519Point{inner: point})
	}
	return points
}

func (c *Ed25519Curve) Coordinate(p Point) (*big.Int, error) {
	ep, ok := p.(*Ed25519Point)
	if !ok || ep == nil {
		return nil, ErrInvalidPoint.WithCause(ErrForeignPoint)
	}
	encoded := ep.inner.Bytes()
	encoded[31] &= 0x7f
	return new(big.Int).SetBytes(reverseBytes(encoded)), nil
}

func (c *Ed25519Curve) ValidateScalar(data []byte) error {
	_, err := c.ScalarFromBytes(data)
	return err
}

func (c *Ed25519Curve) CheckScalar(s Scalar) error {
	es, ok := s.(*Ed25519Scalar)
	if !ok || es == nil || es.inner == nil {
		return ErrForeignScalar
	}
	return nil
}

// CheckPoint verifies the point is an Ed25519 point in the prime-order subgroup
func (c *Ed25519Curve) CheckPoint(p Point) error {
	ep, ok := p.(*Ed25519Point)
	if !ok || ep == nil || ep.inner == nil {
		return ErrInvalidPoint.WithCause(ErrForeignPoint)
	}
	if !ep.IsValid() {
		return ErrInvalidPoint.WithCause(ErrPointNotInSubgroup)
	}
	return nil
}

// Ed25519Scalar implements the Scalar interface
type Ed25519Scalar struct {
	inner *edwards25519.Scalar
}

// Bytes returns the big-endian encoding; edwards25519 itself is little-endian
func (s *Ed25519Scalar) Bytes() []byte {
	return reverseBytes(s.inner.Bytes())
}

func (s *Ed25519Scalar) String() string {
	return hex.EncodeToString(s.Bytes())
}

func (s *Ed25519Scalar) BigInt() *big.Int {
	return new(big.Int).SetBytes(s.Bytes())
}

func (s *Ed25519Scalar) Add(other Scalar) Scalar {
	result := edwards25519.NewScalar()
	result.Add(s.inner, other.(*Ed25519Scalar).inner)
	return &Ed25519Scalar{inner: result}
}

func (s *Ed25519Scalar) Sub(other Scalar) Scalar {
	result := edwards25519.NewScalar()
	result.Subtract(s.inner, other.(*Ed25519Scalar).inner)
	return &Ed25519Scalar{inner: result}
}

func (s *Ed25519Scalar) Mul(other Scalar) Scalar {
	result := edwards25519.NewScalar()
	result.Multiply(s.inner, other.(*Ed25519Scalar).inner)
	return &Ed25519Scalar{inner: result}
}

func (s *Ed25519Scalar) Negate() Scalar {
	result := edwards25519.NewScalar()
	result.Negate(s.inner)
	return &Ed25519Scalar{inner: result}
}

func (s *Ed25519Scalar) Invert() (Scalar, error) {
	if s.IsZero() {
		return nil, ErrScalarZero
	}

	result := edwards25519.NewScalar()
	result.Invert(s.inner)
	return &Ed25519Scalar{inner: result}, nil
}

func (s *Ed25519Scalar) Equal(other Scalar) bool {
	o, ok := other.(*Ed25519Scalar)
	return ok && s.inner.Equal(o.inner) == 1
}

func (s *Ed25519Scalar) IsZero() bool {
	return s.inner.Equal(edwards25519.NewScalar()) == 1
}

func (s *Ed25519Scalar) Zeroize() {
	s.inner.Set(edwards25519.NewScalar())
	runtime.SetFinalizer(s, nil)
}

// Ed25519Point implements the Point interface
type Ed25519Point struct {
	inner *edwards25519.Point
}

func (p *Ed25519Point) Bytes() []byte {
	return p.inner.Bytes()
}

func (p *Ed25519Point) String() string {
	return hex.EncodeToString(p.Bytes())
}

func (p *Ed25519Point) Add(other Point) Point {
	result := edwards25519.NewIdentityPoint()
	result.Add(p.inner, other.(*Ed25519Point).inner)
	return &Ed25519Point{inner: result}
}

func (p *Ed25519Point) Sub(other Point) Point {
	result := edwards25519.NewIdentityPoint()
	result.Subtract(p.inner, other.(*Ed25519Point).inner)
	return &Ed25519Point{inner: result}
}

func (p *Ed25519Point) Mul(scalar Scalar) Point {
	result := edwards25519.NewIdentityPoint()
	result.ScalarMult(scalar.(*Ed25519Scalar).inner, p.inner)
	return &Ed25519Point{inner: result}
}

func (p *Ed25519Point) Negate() Point {
	result := edwards25519.NewIdentityPoint()
	result.Negate(p.inner)
	return &Ed25519Point{inner: result}
}

func (p *Ed25519Point) Equal(other Point) bool {
	o, ok := other.(*Ed25519Point)
	return ok && o != nil && p.inner.Equal(o.inner) == 1
}

func (p *Ed25519Point) IsIdentity() bool {
	return p.inner.Equal(edwards25519.NewIdentityPoint()) == 1
}

// IsValid reports whether the point is torsion-free: [l-1]P + P == identity
func (p *Ed25519Point) IsValid() bool {
	minusOne := edwards25519.NewScalar().Negate(ed25519ScalarOne())
	r := edwards25519.NewIdentityPoint().ScalarMult(minusOne, p.inner)
	r.Add(r, p.inner)
	return r.Equal(edwards25519.NewIdentityPoint()) == 1
}

func ed25519ScalarOne() *edwards25519.Scalar {
	one := make([]byte, 32)
	one[0] = 1
	s, _ := edwards25519.NewScalar().SetCanonicalBytes(one)
	return s
}
