package elgamal

import (
	"fmt"
)

// MaxShareIndex bounds the participant indices a commitment is evaluated at
const MaxShareIndex = 1000000

// PolynomialCommitment holds the Feldman commitments C_k = a_k*G to the
// coefficients of a sharing polynomial
type PolynomialCommitment struct {
	curve  Curve
	points []Point
}

// NewPolynomialCommitment validates and wraps received commitment points
func NewPolynomialCommitment(curve Curve, points []Point) (*PolynomialCommitment, error) {
	if curve == nil {
		return nil, fmt.Errorf("curve cannot be nil")
	}
	if len(points) == 0 {
		return nil, ErrMalformedKeyMaterial.WithDetails("no commitments")
	}

	copied := make([]Point, len(points))
	for i, p := range points {
		if p == nil {
			return nil, ErrInvalidPoint.WithContext("commitment", i)
		}
		if err := curve.CheckPoint(p); err != nil {
			return nil, ErrInvalidPoint.WithCause(err).WithContext("commitment", i)
		}
		copied[i] = p
	}

	return &PolynomialCommitment{curve: curve, points: copied}, nil
}

// Threshold is the number of coefficients committed to
func (pc *PolynomialCommitment) Threshold() int {
	return len(pc.points)
}

// Secret returns C_0, the commitment to the constant term
func (pc *PolynomialCommitment) Secret() Point {
	return pc.points[0]
}

// Points returns a copy of the coefficient commitments
func (pc *PolynomialCommitment) Points() []Point {
	out := make([]Point, len(pc.points))
	copy(out, pc.points)
	return out
}

// Evaluate returns f(index)*G = sum C_k * index^k
func (pc *PolynomialCommitment) Evaluate(index ParticipantIndex) (Point, error) {
	if index == 0 || index > MaxShareIndex {
		return nil, ErrInvalidParticipantID.WithContext("index", uint32(index))
	}

	x, err := index.ToScalar(pc.curve)
	if err != nil {
		return nil, err
	}

	// Horner in the exponent
	result := pc.points[len(pc.points)-1]
	for k := len(pc.points) - 2; k >= 0; k-- {
		result = result.Mul(x).Add(pc.points[k])
	}
	return result, nil
}

// Verify checks that value is the evaluation at index of the committed
// polynomial
func (pc *PolynomialCommitment) Verify(index ParticipantIndex, value Scalar) (bool, error) {
	if value == nil {
		return false, fmt.Errorf("share value cannot be nil")
	}

	expected, err := pc.Evaluate(index)
	if err != nil {
		return false, err
	}

	return expected.Equal(pc.curve.BasePoint().Mul(value)), nil
}

// Bytes concatenates the canonical encodings of the commitments
func (pc *PolynomialCommitment) Bytes() []byte {
	out := make([]byte, 0, len(pc.points)*pc.curve.PointSize())
	for _, p := range pc.points {
		out = append(out, p.Bytes()...)
	}
	return out
}

// SumCommitments adds several parties' commitments coefficient-wise, giving
// the commitment to the joint polynomial F = sum f_i
func SumCommitments(curve Curve, sets []*PolynomialCommitment) (*PolynomialCommitment, error) {
	if len(sets) == 0 {
		return nil, ErrEmptyShareSet
	}

	t := sets[0].Threshold()
	sum := make([]Point, t)
	for k := range sum {
		sum[k] = curve.PointIdentity()
	}
	for _, set := range sets {
		if set.Threshold() != t {
			return nil, ErrInvalidThreshold.WithDetails("commitment sets of %d and %d coefficients", t, set.Threshold())
		}
		for k, p := range set.points {
			sum[k] = sum[k].Add(p)
		}
	}

	return &PolynomialCommitment{curve: curve, points: sum}, nil
}
