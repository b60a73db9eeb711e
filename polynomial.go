package elgamal

import (
	"fmt"
)

// Polynomial represents a polynomial over a scalar field
type Polynomial struct {
	curve        Curve
	coefficients []Scalar
}

// NewPolynomial wraps the given coefficients, lowest degree first
func NewPolynomial(curve Curve, coefficients []Scalar) (*Polynomial, error) {
	if len(coefficients) == 0 {
		return nil, fmt.Errorf("polynomial needs at least one coefficient")
	}
	for i, c := range coefficients {
		if c == nil {
			return nil, fmt.Errorf("coefficient %d is nil", i)
		}
	}

	coeffs := make([]Scalar, len(coefficients))
	copy(coeffs, coefficients)
	return &Polynomial{curve: curve, coefficients: coeffs}, nil
}

// NewRandomPolynomial creates a new random polynomial with given degree and constant term
func NewRandomPolynomial(curve Curve, degree int, constantTerm Scalar) (*Polynomial, error) {
	if degree < 0 {
		return nil, fmt.Errorf("degree must be non-negative")
	}

	coefficients := make([]Scalar, degree+1)
	coefficients[0] = constantTerm

	for i := 1; i <= degree; i++ {
		coeff, err := curve.ScalarRandom()
		if err != nil {
			return nil, ErrRandomnessGeneration.WithCause(err)
		}
		coefficients[i] = coeff
	}

	return &Polynomial{
		curve:        curve,
		coefficients: coefficients,
	}, nil
}

// Evaluate evaluates the polynomial at a given point
func (p *Polynomial) Evaluate(x Scalar) Scalar {
	if len(p.coefficients) == 0 {
		return p.curve.ScalarZero()
	}

	// Horner: f(x) = a0 + x(a1 + x(a2 + ...))
	result := p.curve.ScalarZero().Add(p.coefficients[len(p.coefficients)-1])
	for i := len(p.coefficients) - 2; i >= 0; i-- {
		result = result.Mul(x).Add(p.coefficients[i])
	}

	return result
}

// EvaluateAt evaluates the polynomial at a participant index
func (p *Polynomial) EvaluateAt(index ParticipantIndex) (Scalar, error) {
	x, err := index.ToScalar(p.curve)
	if err != nil {
		return nil, err
	}
	return p.Evaluate(x), nil
}

// Secret returns the constant term
func (p *Polynomial) Secret() Scalar {
	return p.coefficients[0]
}

// Degree returns the degree of the polynomial
func (p *Polynomial) Degree() int {
	return len(p.coefficients) - 1
}

// Commit returns the Feldman commitments a_k*G to every coefficient
func (p *Polynomial) Commit() *PolynomialCommitment {
	g := p.curve.BasePoint()
	points := make([]Point, len(p.coefficients))
	for i, c := range p.coefficients {
		points[i] = g.Mul(c)
	}
	return &PolynomialCommitment{curve: p.curve, points: points}
}

// Zeroize securely clears the polynomial coefficients
func (p *Polynomial) Zeroize() {
	ZeroizeScalarSlice(p.coefficients)
	for i := range p.coefficients {
		p.coefficients[i] = nil
	}
	p.coefficients = nil
}
