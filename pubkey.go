package elgamal

// SharedPublicKey sums the public key shares of all parties. The result does
// not depend on the order of the shares.
func SharedPublicKey(curve Curve, shares []Point) (Point, error) {
	if len(shares) == 0 {
		return nil, ErrEmptyShareSet
	}

	acc := curve.PointIdentity()
	for i, s := range shares {
		if s == nil {
			return nil, ErrInvalidPoint.WithContext("share", i)
		}
		if err := curve.CheckPoint(s); err != nil {
			return nil, ErrInvalidPoint.WithCause(err).WithContext("share", i)
		}
		acc = acc.Add(s)
	}
	return acc, nil
}
