package elgamal

import (
	"fmt"
)

// SchnorrProof is a non-interactive proof of knowledge of a discrete log
type SchnorrProof struct {
	Challenge Scalar
	Response  Scalar
}

// NewSchnorrProof proves knowledge of secret with publicKey = secret*G. The
// context is bound into the challenge so a proof cannot be replayed for a
// different party.
func NewSchnorrProof(curve Curve, secret Scalar, publicKey Point, context []byte) (*SchnorrProof, error) {
	nonce, err := curve.ScalarRandom()
	if err != nil {
		return nil, ErrRandomnessGeneration.WithCause(err)
	}
	defer nonce.Zeroize()

	// R = r*G
	commitment := curve.BasePoint().Mul(nonce)

	challenge, err := computeSchnorrChallenge(curve, publicKey, commitment, context)
	if err != nil {
		return nil, fmt.Errorf("failed to compute challenge: %w", err)
	}

	// s = r + c*x
	response := nonce.Add(challenge.Mul(secret))

	return &SchnorrProof{
		Challenge: challenge,
		Response:  response,
	}, nil
}

// Verify verifies a Schnorr proof
func (sp *SchnorrProof) Verify(curve Curve, publicKey Point, context []byte) bool {
	if sp == nil || curve.CheckScalar(sp.Challenge) != nil || curve.CheckScalar(sp.Response) != nil {
		return false
	}
	if curve.CheckPoint(publicKey) != nil {
		return false
	}

	// R' = s*G - c*X
	commitment := curve.BasePoint().Mul(sp.Response).Sub(publicKey.Mul(sp.Challenge))

	expected, err := computeSchnorrChallenge(curve, publicKey, commitment, context)
	if err != nil {
		return false
	}
	return sp.Challenge.Equal(expected)
}

func computeSchnorrChallenge(curve Curve, publicKey, commitment Point, context []byte) (Scalar, error) {
	return ChallengeHash(curve,
		[]byte("schnorr-pok"),
		context,
		curve.BasePoint().Bytes(),
		publicKey.Bytes(),
		commitment.Bytes(),
	)
}

// DLEQProof is a Chaum-Pedersen proof that log_G(A) == log_H(B)
type DLEQProof struct {
	Challenge Scalar
	Response  Scalar
}

// NewDLEQProof proves that a = x*G and b = x*h share the exponent x
func NewDLEQProof(curve Curve, x Scalar, h, a, b Point) (*DLEQProof, error) {
	k, err := curve.ScalarRandom()
	if err != nil {
		return nil, ErrRandomnessGeneration.WithCause(err)
	}
	defer k.Zeroize()

	g := curve.BasePoint()
	r1 := g.Mul(k)
	r2 := h.Mul(k)

	c, err := dleqChallenge(curve, h, a, b, r1, r2)
	if err != nil {
		return nil, err
	}

	return &DLEQProof{
		Challenge: c,
		Response:  k.Add(c.Mul(x)),
	}, nil
}

// Verify checks the proof for the statement (h, a, b)
func (p *DLEQProof) Verify(curve Curve, h, a, b Point) bool {
	if p == nil || curve.CheckScalar(p.Challenge) != nil || curve.CheckScalar(p.Response) != nil {
		return false
	}
	for _, pt := range []Point{h, a, b} {
		if curve.CheckPoint(pt) != nil {
			return false
		}
	}

	g := curve.BasePoint()
	// r1 = z*G - c*a, r2 = z*h - c*b
	r1 := g.Mul(p.Response).Sub(a.Mul(p.Challenge))
	r2 := h.Mul(p.Response).Sub(b.Mul(p.Challenge))

	expected, err := dleqChallenge(curve, h, a, b, r1, r2)
	if err != nil {
		return false
	}
	return p.Challenge.Equal(expected)
}

func dleqChallenge(curve Curve, h, a, b, r1, r2 Point) (Scalar, error) {
	return ChallengeHash(curve,
		[]byte("chaum-pedersen"),
		curve.BasePoint().Bytes(),
		h.Bytes(),
		a.Bytes(),
		b.Bytes(),
		r1.Bytes(),
		r2.Bytes(),
	)
}
