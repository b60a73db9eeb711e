package elgamal

import (
	"math/big"
)

// DefaultEncodingFactor is the number of candidate coordinates probed per
// message (2^10)
const DefaultEncodingFactor = 1024

// MaxMessage returns the largest integer that can be embedded with factor k
func MaxMessage(curve Curve, k uint64) *big.Int {
	q := new(big.Int).Div(curve.CoordinateModulus(), new(big.Int).SetUint64(k))
	return q.Sub(q, big.NewInt(1))
}

// Encode embeds m into a point of the prime-order subgroup. The coordinate
// m*k + i is tried for i = 0..k-1 and the first candidate lying in the
// subgroup wins, so Decode recovers m as coordinate div k.
func Encode(curve Curve, m *big.Int, k uint64) (Point, error) {
	if k == 0 {
		return nil, ErrInvalidConfiguration.WithDetails("encoding factor must be positive")
	}
	if m == nil || m.Sign() < 0 {
		return nil, ErrEncodingOutOfRange.WithDetails("message must be non-negative")
	}
	if m.Cmp(MaxMessage(curve, k)) > 0 {
		return nil, ErrEncodingOutOfRange.WithDetails("message exceeds %d bits", MaxMessage(curve, k).BitLen())
	}

	factor := new(big.Int).SetUint64(k)
	base := new(big.Int).Mul(m, factor)
	candidate := new(big.Int)
	for i := uint64(0); i < k; i++ {
		candidate.Add(base, new(big.Int).SetUint64(i))
		for _, p := range curve.LiftCoordinate(candidate) {
			if curve.CheckPoint(p) == nil {
				return p, nil
			}
		}
	}

	return nil, ErrEncodingOutOfRange.WithDetails("no subgroup point within %d candidates", k)
}

// Decode recovers the integer embedded by Encode
func Decode(curve Curve, p Point, k uint64) (*big.Int, error) {
	if k == 0 {
		return nil, ErrInvalidConfiguration.WithDetails("encoding factor must be positive")
	}
	if p == nil {
		return nil, ErrInvalidPoint.WithDetails("nil point")
	}
	if err := curve.CheckPoint(p); err != nil {
		return nil, err
	}

	coord, err := curve.Coordinate(p)
	if err != nil {
		return nil, err
	}
	return coord.Div(coord, new(big.Int).SetUint64(k)), nil
}
