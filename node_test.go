package elgamal

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNodeFromSeedDeterministic(t *testing.T) {
	seed := bytes.Repeat([]byte{0xab}, 32)

	for _, ct := range allCurves {
		t.Run(string(ct), func(t *testing.T) {
			curve := mustCurve(t, ct)

			n1, err := NodeFromSeed(curve, seed, 1, 2, 2)
			require.NoError(t, err)
			n2, err := NodeFromSeed(curve, seed, 1, 2, 2)
			require.NoError(t, err)
			require.Len(t, n1.Value, 2)
			for k := range n1.Value {
				assert.True(t, n1.Value[k].Equal(n2.Value[k]))
				assert.False(t, n1.Value[k].IsZero())
			}
			assert.False(t, n1.Value[0].Equal(n1.Value[1]), "coefficients must differ")

			other, err := NodeFromSeed(curve, append([]byte{0x01}, seed...), 1, 2, 2)
			require.NoError(t, err)
			assert.False(t, n1.Value[0].Equal(other.Value[0]))
		})
	}
}

func TestNodeFromSeedErrors(t *testing.T) {
	curve := mustCurve(t, BabyJubJub)

	_, err := NodeFromSeed(curve, make([]byte, MinSeedLength-1), 1, 2, 2)
	assert.ErrorIs(t, err, ErrMalformedKeyMaterial)

	seed := make([]byte, MinSeedLength)
	_, err = NodeFromSeed(curve, seed, 0, 2, 2)
	assert.ErrorIs(t, err, ErrInvalidParticipantID)

	_, err = NodeFromSeed(curve, seed, 3, 2, 2)
	assert.ErrorIs(t, err, ErrInvalidParticipantID)

	_, err = NodeFromSeed(curve, seed, 1, 3, 2)
	assert.ErrorIs(t, err, ErrInvalidThreshold)

	_, err = NodeFromSeed(curve, seed, 1, 0, 2)
	assert.ErrorIs(t, err, ErrInvalidThreshold)
}

func TestNodeExportImport(t *testing.T) {
	for _, ct := range allCurves {
		t.Run(string(ct), func(t *testing.T) {
			curve := mustCurve(t, ct)
			node, err := RandomNode(curve, 3, 3, 5)
			require.NoError(t, err)

			data, err := node.Export()
			require.NoError(t, err)
			require.Len(t, data, nodeHeaderSize+3*curve.ScalarSize())

			back, err := ImportNode(data)
			require.NoError(t, err)
			assert.Equal(t, curve.ID(), back.Curve.ID())
			assert.Equal(t, node.ForNode, back.ForNode)
			assert.Equal(t, node.Threshold, back.Threshold)
			assert.Equal(t, node.Total, back.Total)
			for k := range node.Value {
				assert.True(t, node.Value[k].Equal(back.Value[k]))
			}
		})
	}
}

func TestImportNodeRejectsMalformed(t *testing.T) {
	curve := mustCurve(t, Ed25519)
	node, err := RandomNode(curve, 1, 2, 2)
	require.NoError(t, err)
	good, err := node.Export()
	require.NoError(t, err)

	mutate := func(f func([]byte) []byte) []byte {
		c := append([]byte(nil), good...)
		return f(c)
	}

	cases := map[string][]byte{
		"empty":           nil,
		"truncated":       good[:len(good)-1],
		"trailing bytes":  append(append([]byte(nil), good...), 0),
		"bad magic":       mutate(func(b []byte) []byte { b[0] = 'X'; return b }),
		"unknown curve":   mutate(func(b []byte) []byte { b[4] = 9; return b }),
		"index zero":      mutate(func(b []byte) []byte { b[8] = 0; return b }),
		"index too large": mutate(func(b []byte) []byte { b[8] = 3; return b }),
		"threshold zero":  mutate(func(b []byte) []byte { b[10] = 0; return b }),
		"non-canonical scalar": mutate(func(b []byte) []byte {
			copy(b[nodeHeaderSize:], bytes.Repeat([]byte{0xff}, 32))
			return b
		}),
	}

	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ImportNode(data)
			assert.ErrorIs(t, err, ErrMalformedKeyMaterial)
		})
	}
}

func TestNodeZeroize(t *testing.T) {
	curve := mustCurve(t, Secp256k1)
	node, err := RandomNode(curve, 1, 2, 2)
	require.NoError(t, err)
	coeffs := append([]Scalar(nil), node.Value...)

	node.Zeroize()
	assert.Nil(t, node.Value)
	for _, c := range coeffs {
		assert.True(t, c.IsZero())
	}

	_, err = node.Export()
	assert.ErrorIs(t, err, ErrMalformedKeyMaterial)
}

func TestNodeCommitment(t *testing.T) {
	curve := mustCurve(t, BabyJubJub)
	node, err := RandomNode(curve, 2, 2, 3)
	require.NoError(t, err)

	commitment, err := node.Commitment()
	require.NoError(t, err)
	assert.True(t, commitment.Secret().Equal(curve.BasePoint().Mul(node.Value[0])))
	assert.Equal(t, 2, commitment.Threshold())
}
