package elgamal

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"
	"runtime"

	"github.com/btcsuite/btcd/btcec/v2"
)

// compressedIdentity is the encoding used for the point at infinity
var compressedIdentity = make([]byte, 33)

// Secp256k1Curve implements the Curve interface for secp256k1
type Secp256k1Curve struct{}

// NewSecp256k1Curve creates a new secp256k1 curve instance
func NewSecp256k1Curve() *Secp256k1Curve {
	return &Secp256k1Curve{}
}

func (c *Secp256k1Curve) Name() string    { return "secp256k1" }
func (c *Secp256k1Curve) ID() byte        { return curveIDSecp256k1 }
func (c *Secp256k1Curve) ScalarSize() int { return 32 }
func (c *Secp256k1Curve) PointSize() int  { return 33 } // Compressed

func (c *Secp256k1Curve) Order() *big.Int {
	return new(big.Int).Set(btcec.S256().N)
}

func (c *Secp256k1Curve) ScalarFromBytes(data []byte) (Scalar, error) {
	if len(data) != 32 {
		return nil, ErrInvalidScalarLength
	}

	scalar := new(btcec.ModNScalar)
	if overflow := scalar.SetBytes((*[32]byte)(data)); overflow != 0 {
		return nil, ErrInvalidScalar
	}

	return &Secp256k1Scalar{inner: scalar}, nil
}

func (c *Secp256k1Curve) ScalarFromUniformBytes(data []byte) (Scalar, error) {
	if len(data) < 32 {
		return nil, fmt.Errorf("need at least 32 bytes for uniform scalar generation, got %d", len(data))
	}

	// Wide reduction over the whole input keeps the bias negligible
	v := new(big.Int).SetBytes(data)
	return c.ScalarFromBigInt(v), nil
}

func (c *Secp256k1Curve) ScalarFromBigInt(v *big.Int) Scalar {
	reduced := fixedBytes(reduceBigInt(v, btcec.S256().N), 32)
	scalar := new(btcec.ModNScalar)
	scalar.SetBytes((*[32]byte)(reduced))
	return &Secp256k1Scalar{inner: scalar}
}

func (c *Secp256k1Curve) ScalarRandom() (Scalar, error) {
	for {
		bytes := make([]byte, 32)
		if _, err := rand.Read(bytes); err != nil {
			return nil, err
		}

		scalar := new(btcec.ModNScalar)
		overflow := scalar.SetBytes((*[32]byte)(bytes))
		if overflow == 0 {
			return &Secp256k1Scalar{inner: scalar}, nil
		}
		// If overflow, try again with new random bytes
	}
}

func (c *Secp256k1Curve) ScalarZero() Scalar {
	return &Secp256k1Scalar{inner: new(btcec.ModNScalar)}
}

func (c *Secp256k1Curve) ScalarOne() Scalar {
	scalar := new(btcec.ModNScalar)
	scalar.SetInt(1)
	return &Secp256k1Scalar{inner: scalar}
}

func (c *Secp256k1Curve) PointFromBytes(data []byte) (Point, error) {
	if len(data) != 33 {
		return nil, ErrInvalidPoint.WithCause(ErrInvalidPointLength)
	}
	if SecureCompare(data, compressedIdentity) {
		return c.PointIdentity(), nil
	}

	pubKey, err := btcec.ParsePubKey(data)
	if err != nil {
		return nil, ErrInvalidPoint.WithCause(err)
	}

	return &Secp256k1Point{inner: pubKey}, nil
}

func (c *Secp256k1Curve) BasePoint() Point {
	var g btcec.JacobianPoint
	btcec.ScalarBaseMultNonConst(new(btcec.ModNScalar).SetInt(1), &g)
	g.ToAffine()
	return &Secp256k1Point{inner: btcec.NewPublicKey(&g.X, &g.Y)}
}

func (c *Secp256k1Curve) PointIdentity() Point {
	// Point at infinity
	return &Secp256k1Point{inner: nil}
}

func (c *Secp256k1Curve) CoordinateModulus() *big.Int {
	return new(big.Int).Set(btcec.S256().P)
}

// LiftCoordinate returns the even-y and odd-y points with the given x
func (c *Secp256k1Curve) LiftCoordinate(x *big.Int) []Point {
	if x.Sign() < 0 || x.Cmp(btcec.S256().P) >= 0 {
		return nil
	}

	xBytes := fixedBytes(x, 32)
	var points []Point
	for _, prefix := range []byte{0x02, 0x03} {
		encoded := append([]byte{prefix}, xBytes...)
		pubKey, err := btcec.ParsePubKey(encoded)
		if err != nil {
			continue
		}
		points = append(points, &Secp256k1Point{inner: pubKey})
	}
	return points
}

func (c *Secp256k1Curve) Coordinate(p Point) (*big.Int, error) {
	sp, ok := p.(*Secp256k1Point)
	if !ok || sp == nil {
		return nil, ErrInvalidPoint.WithCause(ErrForeignPoint)
	}
	if sp.inner == nil {
		return new(big.Int), nil
	}
	return sp.inner.X(), nil
}

func (c *Secp256k1Curve) ValidateScalar(data []byte) error {
	if len(data) != 32 {
		return ErrInvalidScalarLength
	}

	scalar := new(btcec.ModNScalar)
	overflow := scalar.SetBytes((*[32]byte)(data))
	if overflow != 0 {
		return ErrInvalidScalar
	}

	return nil
}

func (c *Secp256k1Curve) CheckScalar(s Scalar) error {
	ss, ok := s.(*Secp256k1Scalar)
	if !ok || ss == nil || ss.inner == nil {
		return ErrForeignScalar
	}
	return nil
}

// CheckPoint verifies the point is a secp256k1 point on the curve. The group
// has prime order, so there is no separate subgroup check.
func (c *Secp256k1Curve) CheckPoint(p Point) error {
	sp, ok := p.(*Secp256k1Point)
	if !ok || sp == nil {
		return ErrInvalidPoint.WithCause(ErrForeignPoint)
	}
	if !sp.IsValid() {
		return ErrInvalidPoint.WithCause(ErrPointNotOnCurve)
	}
	return nil
}

// Secp256k1Scalar implements the Scalar interface
type Secp256k1Scalar struct {
	inner *btcec.ModNScalar
}

func (s *Secp256k1Scalar) Bytes() []byte {
	var bytes [32]byte
	s.inner.PutBytes(&bytes)
	return bytes[:]
}

func (s *Secp256k1Scalar) String() string {
	return hex.EncodeToString(s.Bytes())
}

func (s *Secp256k1Scalar) BigInt() *big.Int {
	return new(big.Int).SetBytes(s.Bytes())
}

func (s *Secp256k1Scalar) Add(other Scalar) Scalar {
	result := new(btcec.ModNScalar)
	result.Add(s.inner).Add(other.(*Secp256k1Scalar).inner)
	return &Secp256k1Scalar{inner: result}
}

func (s *Secp256k1Scalar) Sub(other Scalar) Scalar {
	negated := new(btcec.ModNScalar).Set(other.(*Secp256k1Scalar).inner).Negate()
	result := new(btcec.ModNScalar)
	result.Add(s.inner).Add(negated)
	return &Secp256k1Scalar{inner: result}
}

func (s *Secp256k1Scalar) Mul(other Scalar) Scalar {
	result := new(btcec.ModNScalar)
	result.Set(s.inner).Mul(other.(*Secp256k1Scalar).inner)
	return &Secp256k1Scalar{inner: result}
}

func (s *Secp256k1Scalar) Negate() Scalar {
	result := new(btcec.ModNScalar)
	result.Add(s.inner).Negate()
	return &Secp256k1Scalar{inner: result}
}

func (s *Secp256k1Scalar) Invert() (Scalar, error) {
	if s.IsZero() {
		return nil, ErrScalarZero
	}

	result := new(btcec.ModNScalar)
	// WARNING: btcec/v2 only offers a variable-time inversion
	result.Set(s.inner).InverseNonConst()
	return &Secp256k1Scalar{inner: result}, nil
}

func (s *Secp256k1Scalar) Equal(other Scalar) bool {
	o, ok := other.(*Secp256k1Scalar)
	return ok && s.inner.Equals(o.inner)
}

func (s *Secp256k1Scalar) IsZero() bool {
	return s.inner.IsZero()
}

func (s *Secp256k1Scalar) Zeroize() {
	s.inner.Zero()
	runtime.KeepAlive(s)
}

// Secp256k1Point implements the Point interface
type Secp256k1Point struct {
	inner *btcec.PublicKey
}

func (p *Secp256k1Point) Bytes() []byte {
	if p.inner == nil {
		return make([]byte, 33) // Point at infinity
	}
	return p.inner.SerializeCompressed()
}

func (p *Secp256k1Point) String() string {
	return hex.EncodeToString(p.Bytes())
}

func (p *Secp256k1Point) Add(other Point) Point {
	o := other.(*Secp256k1Point)
	if p.inner == nil {
		return o
	}
	if o.inner == nil {
		return p
	}

	var result, otherJac btcec.JacobianPoint
	p.inner.AsJacobian(&result)
	o.inner.AsJacobian(&otherJac)

	// WARNING: btcec/v2 does not provide constant-time point addition.
	// Prefer babyjubjub or ed25519 when the operands depend on secrets.
	btcec.AddNonConst(&result, &otherJac, &result)

	return jacobianToPoint(&result)
}

func (p *Secp256k1Point) Sub(other Point) Point {
	return p.Add(other.Negate())
}

func (p *Secp256k1Point) Mul(scalar Scalar) Point {
	if p.inner == nil {
		return p // Point at infinity
	}

	var pointJac, result btcec.JacobianPoint
	p.inner.AsJacobian(&pointJac)

	// WARNING: variable-time scalar multiplication, see Add
	btcec.ScalarMultNonConst(scalar.(*Secp256k1Scalar).inner, &pointJac, &result)

	return jacobianToPoint(&result)
}

func (p *Secp256k1Point) Negate() Point {
	if p.inner == nil {
		return p // Point at infinity
	}

	// -P shares x with P and has the opposite y parity
	encoded := p.inner.SerializeCompressed()
	encoded[0] ^= 0x01
	negated, err := btcec.ParsePubKey(encoded)
	if err != nil {
		// unreachable for a point that parsed in the first place
		panic(fmt.Sprintf("secp256k1: negation produced an invalid point: %v", err))
	}
	return &Secp256k1Point{inner: negated}
}

func (p *Secp256k1Point) Equal(other Point) bool {
	o, ok := other.(*Secp256k1Point)
	if !ok || o == nil {
		return false
	}
	if p.inner == nil || o.inner == nil {
		return p.inner == nil && o.inner == nil
	}

	return p.inner.IsEqual(o.inner)
}

func (p *Secp256k1Point) IsIdentity() bool {
	return p.inner == nil
}

func (p *Secp256k1Point) IsValid() bool {
	if p.inner == nil {
		return true // Point at infinity is valid
	}
	return p.inner.IsOnCurve()
}

// jacobianToPoint converts a Jacobian result to affine, mapping Z == 0 to the
// point at infinity
func jacobianToPoint(j *btcec.JacobianPoint) *Secp256k1Point {
	j.X.Normalize()
	j.Y.Normalize()
	j.Z.Normalize()
	if j.Z.IsZero() || (j.X.IsZero() && j.Y.IsZero()) {
		return &Secp256k1Point{inner: nil}
	}
	j.ToAffine()
	return &Secp256k1Point{inner: btcec.NewPublicKey(&j.X, &j.Y)}
}
