package elgamal

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"
	"sync"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark-crypto/ecc/bn254/twistededwards"
)

// bjjParams holds the BabyJubJub parameters (twisted Edwards curve over the
// BN254 scalar field). Order is the prime order of the subgroup generated by
// Base.
var bjjParams = sync.OnceValue(func() *twistededwards.CurveParams {
	params := twistededwards.GetEdwardsCurve()
	return &params
})

// BabyJubJubCurve implements the Curve interface for BabyJubJub
type BabyJubJubCurve struct {
	params *twistededwards.CurveParams
}

// NewBabyJubJubCurve creates a new BabyJubJub curve instance
func NewBabyJubJubCurve() *BabyJubJubCurve {
	return &BabyJubJubCurve{params: bjjParams()}
}

func (c *BabyJubJubCurve) Name() string    { return "babyjubjub" }
func (c *BabyJubJubCurve) ID() byte        { return curveIDBabyJubJub }
func (c *BabyJubJubCurve) ScalarSize() int { return 32 }
func (c *BabyJubJubCurve) PointSize() int  { return fr.Bytes }

func (c *BabyJubJubCurve) Order() *big.Int {
	return new(big.Int).Set(&c.params.Order)
}

func (c *BabyJubJubCurve) ScalarFromBytes(data []byte) (Scalar, error) {
	if len(data) != 32 {
		return nil, ErrInvalidScalarLength
	}
	v := new(big.Int).SetBytes(data)
	if v.Cmp(&c.params.Order) >= 0 {
		return nil, ErrInvalidScalar
	}
	return c.newScalar(v), nil
}

func (c *BabyJubJubCurve) ScalarFromUniformBytes(data []byte) (Scalar, error) {
	if len(data) < 32 {
		return nil, fmt.Errorf("need at least 32 bytes for uniform scalar generation, got %d", len(data))
	}
	v := new(big.Int).SetBytes(data)
	return c.newScalar(reduceBigInt(v, &c.params.Order)), nil
}

func (c *BabyJubJubCurve) ScalarFromBigInt(v *big.Int) Scalar {
	return c.newScalar(reduceBigInt(v, &c.params.Order))
}

func (c *BabyJubJubCurve) ScalarRandom() (Scalar, error) {
	v, err := rand.Int(rand.Reader, &c.params.Order)
	if err != nil {
		return nil, err
	}
	return c.newScalar(v), nil
}

func (c *BabyJubJubCurve) ScalarZero() Scalar {
	return c.newScalar(new(big.Int))
}

func (c *BabyJubJubCurve) ScalarOne() Scalar {
	return c.newScalar(big.NewInt(1))
}

func (c *BabyJubJubCurve) newScalar(v *big.Int) *BabyJubJubScalar {
	return &BabyJubJubScalar{curve: c, v: v}
}

func (c *BabyJubJubCurve) PointFromBytes(data []byte) (Point, error) {
	if len(data) != fr.Bytes {
		return nil, ErrInvalidPoint.WithCause(ErrInvalidPointLength)
	}

	var inner twistededwards.PointAffine
	if _, err := inner.SetBytes(data); err != nil {
		return nil, ErrInvalidPoint.WithCause(err)
	}

	p := c.newPoint(inner)
	if err := c.CheckPoint(p); err != nil {
		return nil, err
	}
	return p, nil
}

func (c *BabyJubJubCurve) BasePoint() Point {
	return c.newPoint(c.params.Base)
}

func (c *BabyJubJubCurve) PointIdentity() Point {
	return c.newPoint(bjjIdentity())
}

func (c *BabyJubJubCurve) newPoint(inner twistededwards.PointAffine) *BabyJubJubPoint {
	return &BabyJubJubPoint{curve: c, inner: inner}
}

func (c *BabyJubJubCurve) CoordinateModulus() *big.Int {
	return fr.Modulus()
}

// LiftCoordinate solves a*x^2 + y^2 = 1 + d*x^2*y^2 for y and returns the
// points (x, y) and (x, -y) when they exist
func (c *BabyJubJubCurve) LiftCoordinate(x *big.Int) []Point {
	if x.Sign() < 0 || x.Cmp(fr.Modulus()) >= 0 {
		return nil
	}

	var xe, x2, one, num, den, y2, y fr.Element
	xe.SetBigInt(x)
	x2.Square(&xe)
	one.SetOne()

	// y^2 = (1 - a*x^2) / (1 - d*x^2)
	num.Mul(&c.params.A, &x2)
	num.Sub(&one, &num)
	den.Mul(&c.params.D, &x2)
	den.Sub(&one, &den)
	if den.IsZero() {
		return nil
	}
	den.Inverse(&den)
	y2.Mul(&num, &den)

	if y.Sqrt(&y2) == nil {
		return nil
	}

	points := []Point{c.newPoint(twistededwards.PointAffine{X: xe, Y: y})}

	var yNeg fr.Element
	yNeg.Neg(&y)
	if !yNeg.Equal(&y) {
		points = append(points, c.newPoint(twistededwards.PointAffine{X: xe, Y: yNeg}))
	}
	return points
}

func (c *BabyJubJubCurve) Coordinate(p Point) (*big.Int, error) {
	bp, ok := p.(*BabyJubJubPoint)
	if !ok || bp == nil {
		return nil, ErrInvalidPoint.WithCause(ErrForeignPoint)
	}
	return bp.inner.X.BigInt(new(big.Int)), nil
}

func (c *BabyJubJubCurve) ValidateScalar(data []byte) error {
	_, err := c.ScalarFromBytes(data)
	return err
}

func (c *BabyJubJubCurve) CheckScalar(s Scalar) error {
	bs, ok := s.(*BabyJubJubScalar)
	if !ok || bs == nil || bs.v == nil {
		return ErrForeignScalar
	}
	return nil
}

// CheckPoint verifies the point is a BabyJubJub point on the curve and in the
// prime-order subgroup
func (c *BabyJubJubCurve) CheckPoint(p Point) error {
	bp, ok := p.(*BabyJubJubPoint)
	if !ok || bp == nil {
		return ErrInvalidPoint.WithCause(ErrForeignPoint)
	}
	if !bp.inner.IsOnCurve() {
		return ErrInvalidPoint.WithCause(ErrPointNotOnCurve)
	}
	if !bp.inSubgroup() {
		return ErrInvalidPoint.WithCause(ErrPointNotInSubgroup)
	}
	return nil
}

// scalarMul is a fixed-length Montgomery ladder over projective coordinates.
// The twisted Edwards addition law is complete on BabyJubJub, so the ladder
// runs the same sequence of field operations for every scalar; the swap is a
// constant-time select.
func (c *BabyJubJubCurve) scalarMul(base *twistededwards.PointAffine, k *big.Int) twistededwards.PointAffine {
	identity := bjjIdentity()

	var r0, r1 twistededwards.PointProj
	r0.FromAffine(&identity)
	r1.FromAffine(base)

	for i := c.params.Order.BitLen() - 1; i >= 0; i-- {
		bit := int(k.Bit(i))
		projSwap(&r0, &r1, bit)

		var sum, dbl twistededwards.PointProj
		sum.Add(&r0, &r1)
		dbl.Double(&r0)
		r0, r1 = dbl, sum

		projSwap(&r0, &r1, bit)
	}

	var out twistededwards.PointAffine
	out.FromProj(&r0)
	return out
}

// projSwap swaps a and b when bit is 1
func projSwap(a, b *twistededwards.PointProj, bit int) {
	elemSwap(&a.X, &b.X, bit)
	elemSwap(&a.Y, &b.Y, bit)
	elemSwap(&a.Z, &b.Z, bit)
}

func elemSwap(a, b *fr.Element, bit int) {
	var t fr.Element
	t.Select(bit, a, b)
	b.Select(bit, b, a)
	*a = t
}

func bjjIdentity() twistededwards.PointAffine {
	var p twistededwards.PointAffine
	p.X.SetZero()
	p.Y.SetOne()
	return p
}

// BabyJubJubScalar implements the Scalar interface
type BabyJubJubScalar struct {
	curve *BabyJubJubCurve
	v     *big.Int
}

func (s *BabyJubJubScalar) Bytes() []byte {
	return fixedBytes(s.v, 32)
}

func (s *BabyJubJubScalar) String() string {
	return hex.EncodeToString(s.Bytes())
}

func (s *BabyJubJubScalar) BigInt() *big.Int {
	return new(big.Int).Set(s.v)
}

func (s *BabyJubJubScalar) Add(other Scalar) Scalar {
	r := new(big.Int).Add(s.v, other.(*BabyJubJubScalar).v)
	return s.curve.newScalar(r.Mod(r, &s.curve.params.Order))
}

func (s *BabyJubJubScalar) Sub(other Scalar) Scalar {
	r := new(big.Int).Sub(s.v, other.(*BabyJubJubScalar).v)
	return s.curve.newScalar(r.Mod(r, &s.curve.params.Order))
}

func (s *BabyJubJubScalar) Mul(other Scalar) Scalar {
	r := new(big.Int).Mul(s.v, other.(*BabyJubJubScalar).v)
	return s.curve.newScalar(r.Mod(r, &s.curve.params.Order))
}

func (s *BabyJubJubScalar) Negate() Scalar {
	r := new(big.Int).Neg(s.v)
	return s.curve.newScalar(r.Mod(r, &s.curve.params.Order))
}

func (s *BabyJubJubScalar) Invert() (Scalar, error) {
	if s.IsZero() {
		return nil, ErrScalarZero
	}
	r := new(big.Int).ModInverse(s.v, &s.curve.params.Order)
	return s.curve.newScalar(r), nil
}

func (s *BabyJubJubScalar) Equal(other Scalar) bool {
	o, ok := other.(*BabyJubJubScalar)
	return ok && s.v.Cmp(o.v) == 0
}

func (s *BabyJubJubScalar) IsZero() bool {
	return s.v.Sign() == 0
}

func (s *BabyJubJubScalar) Zeroize() {
	words := s.v.Bits()
	for i := range words {
		words[i] = 0
	}
	s.v.SetInt64(0)
}

// BabyJubJubPoint implements the Point interface
type BabyJubJubPoint struct {
	curve *BabyJubJubCurve
	inner twistededwards.PointAffine
}

func (p *BabyJubJubPoint) Bytes() []byte {
	b := p.inner.Bytes()
	return b[:]
}

func (p *BabyJubJubPoint) String() string {
	return hex.EncodeToString(p.Bytes())
}

func (p *BabyJubJubPoint) Add(other Point) Point {
	var r twistededwards.PointAffine
	r.Add(&p.inner, &other.(*BabyJubJubPoint).inner)
	return p.curve.newPoint(r)
}

func (p *BabyJubJubPoint) Sub(other Point) Point {
	return p.Add(other.Negate())
}

func (p *BabyJubJubPoint) Mul(scalar Scalar) Point {
	k := scalar.(*BabyJubJubScalar).v
	return p.curve.newPoint(p.curve.scalarMul(&p.inner, k))
}

func (p *BabyJubJubPoint) Negate() Point {
	var r twistededwards.PointAffine
	r.Neg(&p.inner)
	return p.curve.newPoint(r)
}

func (p *BabyJubJubPoint) Equal(other Point) bool {
	o, ok := other.(*BabyJubJubPoint)
	return ok && o != nil && p.inner.Equal(&o.inner)
}

func (p *BabyJubJubPoint) IsIdentity() bool {
	return p.inner.X.IsZero() && p.inner.Y.IsOne()
}

func (p *BabyJubJubPoint) IsValid() bool {
	return p.inner.IsOnCurve() && p.inSubgroup()
}

// inSubgroup checks order*P == identity. Public data only, so the library's
// variable-time multiplication is fine here.
func (p *BabyJubJubPoint) inSubgroup() bool {
	var r twistededwards.PointAffine
	r.ScalarMultiplication(&p.inner, &p.curve.params.Order)
	return r.X.IsZero() && r.Y.IsOne()
}
