package elgamal

import (
	"bytes"
	"math/big"
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254/twistededwards"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCurveGroupLaws(t *testing.T) {
	for _, ct := range allCurves {
		t.Run(string(ct), func(t *testing.T) {
			curve := mustCurve(t, ct)
			g := curve.BasePoint()

			a, err := curve.ScalarRandom()
			require.NoError(t, err)
			b, err := curve.ScalarRandom()
			require.NoError(t, err)

			t.Run("distributive", func(t *testing.T) {
				lhs := g.Mul(a.Add(b))
				rhs := g.Mul(a).Add(g.Mul(b))
				assert.True(t, lhs.Equal(rhs))
			})

			t.Run("inverse", func(t *testing.T) {
				assert.True(t, g.Add(g.Negate()).IsIdentity())
				assert.True(t, g.Sub(g).IsIdentity())
				assert.True(t, g.Mul(a).Mul(b).Equal(g.Mul(a.Mul(b))))
			})

			t.Run("zero scalar gives identity", func(t *testing.T) {
				assert.True(t, g.Mul(curve.ScalarZero()).IsIdentity())
				assert.True(t, g.Mul(curve.ScalarOne()).Equal(g))
			})

			t.Run("order annihilates base point", func(t *testing.T) {
				// order mod order is zero, so go through order-1 plus one
				minusOne := curve.ScalarFromBigInt(new(big.Int).Sub(curve.Order(), big.NewInt(1)))
				assert.True(t, g.Mul(minusOne).Add(g).IsIdentity())
			})

			t.Run("scalar inverse", func(t *testing.T) {
				inv, err := a.Invert()
				require.NoError(t, err)
				assert.True(t, a.Mul(inv).Equal(curve.ScalarOne()))

				_, err = curve.ScalarZero().Invert()
				assert.Error(t, err)
			})
		})
	}
}

func TestCurveEncodings(t *testing.T) {
	for _, ct := range allCurves {
		t.Run(string(ct), func(t *testing.T) {
			curve := mustCurve(t, ct)

			t.Run("scalar round trip", func(t *testing.T) {
				s, err := curve.ScalarRandom()
				require.NoError(t, err)
				raw := s.Bytes()
				require.Len(t, raw, curve.ScalarSize())

				back, err := curve.ScalarFromBytes(raw)
				require.NoError(t, err)
				assert.True(t, s.Equal(back))
				assert.Equal(t, 0, s.BigInt().Cmp(back.BigInt()))
			})

			t.Run("scalars are big-endian", func(t *testing.T) {
				raw := curve.ScalarFromBigInt(big.NewInt(1)).Bytes()
				assert.Equal(t, byte(1), raw[len(raw)-1])
				assert.True(t, bytes.Equal(make([]byte, len(raw)-1), raw[:len(raw)-1]))
			})

			t.Run("non-canonical scalar rejected", func(t *testing.T) {
				_, err := curve.ScalarFromBytes(bytes.Repeat([]byte{0xff}, 32))
				assert.ErrorIs(t, err, ErrInvalidScalar)

				_, err = curve.ScalarFromBytes(make([]byte, 31))
				assert.ErrorIs(t, err, ErrInvalidScalarLength)
			})

			t.Run("point round trip", func(t *testing.T) {
				s, err := curve.ScalarRandom()
				require.NoError(t, err)
				p := curve.BasePoint().Mul(s)
				raw := p.Bytes()
				require.Len(t, raw, curve.PointSize())

				back, err := curve.PointFromBytes(raw)
				require.NoError(t, err)
				assert.True(t, p.Equal(back))
				assert.NoError(t, curve.CheckPoint(back))
			})

			t.Run("wrong point length rejected", func(t *testing.T) {
				_, err := curve.PointFromBytes(make([]byte, curve.PointSize()+1))
				assert.ErrorIs(t, err, ErrInvalidPoint)
			})

			t.Run("uniform bytes reduce", func(t *testing.T) {
				s, err := curve.ScalarFromUniformBytes(bytes.Repeat([]byte{0xff}, 64))
				require.NoError(t, err)
				assert.Equal(t, -1, s.BigInt().Cmp(curve.Order()))
			})
		})
	}
}

func TestForeignPointsRejected(t *testing.T) {
	bjj := mustCurve(t, BabyJubJub)
	k1 := mustCurve(t, Secp256k1)
	ed := mustCurve(t, Ed25519)

	assert.ErrorIs(t, bjj.CheckPoint(k1.BasePoint()), ErrInvalidPoint)
	assert.ErrorIs(t, k1.CheckPoint(ed.BasePoint()), ErrInvalidPoint)
	assert.ErrorIs(t, ed.CheckPoint(bjj.BasePoint()), ErrInvalidPoint)
	assert.ErrorIs(t, bjj.CheckPoint(nil), ErrInvalidPoint)

	assert.ErrorIs(t, bjj.CheckScalar(k1.ScalarOne()), ErrForeignScalar)
	assert.ErrorIs(t, k1.CheckScalar(ed.ScalarOne()), ErrForeignScalar)
	assert.ErrorIs(t, ed.CheckScalar(bjj.ScalarOne()), ErrForeignScalar)
	assert.ErrorIs(t, ed.CheckScalar(nil), ErrForeignScalar)
	assert.NoError(t, ed.CheckScalar(ed.ScalarOne()))
}

func TestSmallOrderPointsRejected(t *testing.T) {
	t.Run("babyjubjub order-2 point", func(t *testing.T) {
		curve := mustCurve(t, BabyJubJub).(*BabyJubJubCurve)
		var inner twistededwards.PointAffine
		inner.X.SetZero()
		inner.Y.SetOne()
		inner.Y.Neg(&inner.Y)
		require.True(t, inner.IsOnCurve())

		p := curve.newPoint(inner)
		err := curve.CheckPoint(p)
		assert.ErrorIs(t, err, ErrInvalidPoint)
		assert.ErrorIs(t, err, ErrPointNotInSubgroup)
		assert.False(t, p.IsValid())
	})

	t.Run("ed25519 order-2 point", func(t *testing.T) {
		curve := mustCurve(t, Ed25519)
		// y = p-1, x = 0, little-endian
		raw := bytes.Repeat([]byte{0xff}, 32)
		raw[0] = 0xec
		raw[31] = 0x7f
		_, err := curve.PointFromBytes(raw)
		assert.ErrorIs(t, err, ErrInvalidPoint)
	})

	t.Run("secp256k1 bad prefix", func(t *testing.T) {
		curve := mustCurve(t, Secp256k1)
		raw := curve.BasePoint().Bytes()
		raw[0] = 0x05
		_, err := curve.PointFromBytes(raw)
		assert.ErrorIs(t, err, ErrInvalidPoint)
	})
}

func TestSecp256k1Identity(t *testing.T) {
	curve := mustCurve(t, Secp256k1)
	id := curve.PointIdentity()
	assert.True(t, bytes.Equal(make([]byte, 33), id.Bytes()))

	back, err := curve.PointFromBytes(id.Bytes())
	require.NoError(t, err)
	assert.True(t, back.IsIdentity())

	g := curve.BasePoint()
	assert.True(t, g.Add(id).Equal(g))
	assert.True(t, id.Add(g).Equal(g))
}

func TestCoordinateLift(t *testing.T) {
	for _, ct := range allCurves {
		t.Run(string(ct), func(t *testing.T) {
			curve := mustCurve(t, ct)
			s, err := curve.ScalarRandom()
			require.NoError(t, err)
			p := curve.BasePoint().Mul(s)

			coord, err := curve.Coordinate(p)
			require.NoError(t, err)
			assert.Equal(t, -1, coord.Cmp(curve.CoordinateModulus()))

			found := false
			for _, q := range curve.LiftCoordinate(coord) {
				if q.Equal(p) {
					found = true
				}
			}
			assert.True(t, found, "lift of a point's coordinate must contain the point")
		})
	}
}

func TestScalarZeroize(t *testing.T) {
	for _, ct := range allCurves {
		t.Run(string(ct), func(t *testing.T) {
			curve := mustCurve(t, ct)
			s, err := curve.ScalarRandom()
			require.NoError(t, err)
			s.Zeroize()
			assert.True(t, s.IsZero())
		})
	}
}

func TestUnknownCurve(t *testing.T) {
	_, err := NewCurve("p256")
	assert.Error(t, err)
	_, err = curveByID(0)
	assert.Error(t, err)

	for id := byte(1); id <= 3; id++ {
		c, err := curveByID(id)
		require.NoError(t, err)
		assert.Equal(t, id, c.ID())
	}
}
