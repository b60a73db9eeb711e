package elgamal

// Share is one evaluation (x, f(x)) of a sharing polynomial
type Share struct {
	Index ParticipantIndex
	Value Scalar
}

// validateIndices rejects zero and repeated participant indices
func validateIndices(indices []ParticipantIndex) error {
	seen := make(map[ParticipantIndex]struct{}, len(indices))
	for _, idx := range indices {
		if idx == 0 {
			return ErrInvalidParticipantID.WithDetails("index 0 is reserved for the secret")
		}
		if _, dup := seen[idx]; dup {
			return ErrDuplicateParticipants.WithContext("index", uint32(idx))
		}
		seen[idx] = struct{}{}
	}
	return nil
}

// LagrangeCoefficients returns L_i(0) for every index in the set:
// L_i(0) = prod_{j != i} x_j / (x_j - x_i)
func LagrangeCoefficients(curve Curve, indices []ParticipantIndex) ([]Scalar, error) {
	if len(indices) == 0 {
		return nil, ErrInsufficientShares
	}
	if err := validateIndices(indices); err != nil {
		return nil, err
	}

	xs := make([]Scalar, len(indices))
	for i, idx := range indices {
		x, err := idx.ToScalar(curve)
		if err != nil {
			return nil, err
		}
		xs[i] = x
	}

	numerators := make([]Scalar, len(xs))
	denominators := make([]Scalar, len(xs))
	for i := range xs {
		num := curve.ScalarOne()
		den := curve.ScalarOne()
		for j := range xs {
			if i == j {
				continue
			}
			num = num.Mul(xs[j])
			den = den.Mul(xs[j].Sub(xs[i]))
		}
		numerators[i] = num
		denominators[i] = den
	}

	inverses, err := BatchInvert(denominators)
	if err != nil {
		// distinct indices below the group order never collide
		return nil, ErrDuplicateParticipants.WithCause(err)
	}

	coeffs := make([]Scalar, len(xs))
	for i := range xs {
		coeffs[i] = numerators[i].Mul(inverses[i])
	}
	return coeffs, nil
}

// LagrangeCoefficient returns L_index(0) over the given index set
func LagrangeCoefficient(curve Curve, index ParticipantIndex, indices []ParticipantIndex) (Scalar, error) {
	coeffs, err := LagrangeCoefficients(curve, indices)
	if err != nil {
		return nil, err
	}
	for i, idx := range indices {
		if idx == index {
			return coeffs[i], nil
		}
	}
	return nil, ErrInvalidParticipantID.WithDetails("index %d is not in the interpolation set", index)
}

// InterpolateAtZero reconstructs f(0) from exactly the given shares
func InterpolateAtZero(curve Curve, shares []*Share) (Scalar, error) {
	indices := make([]ParticipantIndex, len(shares))
	for i, s := range shares {
		indices[i] = s.Index
	}

	coeffs, err := LagrangeCoefficients(curve, indices)
	if err != nil {
		return nil, err
	}

	secret := curve.ScalarZero()
	for i, s := range shares {
		secret = secret.Add(s.Value.Mul(coeffs[i]))
	}
	return secret, nil
}

// ReconstructSecret reconstructs the secret from the first threshold shares
func ReconstructSecret(curve Curve, shares []*Share, threshold int) (Scalar, error) {
	if threshold < 1 {
		return nil, ErrInvalidThreshold.WithContext("threshold", threshold)
	}
	if len(shares) < threshold {
		return nil, ErrInsufficientShares.WithDetails("need %d, got %d", threshold, len(shares))
	}
	return InterpolateAtZero(curve, shares[:threshold])
}

// InterpolatePointsAtZero computes sum L_i(0)*P_i, the same interpolation
// carried out in the exponent
func InterpolatePointsAtZero(curve Curve, indices []ParticipantIndex, points []Point) (Point, error) {
	if len(indices) != len(points) {
		return nil, ErrInvalidState.WithDetails("%d indices for %d points", len(indices), len(points))
	}

	coeffs, err := LagrangeCoefficients(curve, indices)
	if err != nil {
		return nil, err
	}

	acc := curve.PointIdentity()
	for i, p := range points {
		acc = acc.Add(p.Mul(coeffs[i]))
	}
	return acc, nil
}
