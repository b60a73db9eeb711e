package elgamal

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeygenArtifacts(t *testing.T) {
	for _, ct := range allCurves {
		t.Run(string(ct), func(t *testing.T) {
			curve := mustCurve(t, ct)
			node, err := RandomNode(curve, 2, 3, 4)
			require.NoError(t, err)

			result, err := Keygen(node)
			require.NoError(t, err)
			require.Len(t, result.Artifacts, 3)
			assert.Equal(t, ParticipantIndex(2), result.FromNode)

			poly, err := node.Polynomial()
			require.NoError(t, err)
			for _, a := range result.Artifacts {
				assert.NotEqual(t, node.ForNode, a.ForNode)
				require.NoError(t, VerifyArtifact(curve, a))

				want, err := poly.EvaluateAt(a.ForNode)
				require.NoError(t, err)
				assert.True(t, want.Equal(a.Evaluation))

				img, err := EvalAt(a, a.ForNode)
				require.NoError(t, err)
				assert.True(t, img.Equal(curve.BasePoint().Mul(a.Evaluation)))
			}

			_, err = result.ArtifactFor(2)
			assert.ErrorIs(t, err, ErrInvalidParticipantID)
		})
	}
}

func TestKeygenDeterministicEvaluations(t *testing.T) {
	curve := mustCurve(t, BabyJubJub)
	seed := []byte("a fixed seed of sufficient length")

	node, err := NodeFromSeed(curve, seed, LitIndex, 2, 2)
	require.NoError(t, err)
	r1, err := Keygen(node)
	require.NoError(t, err)
	r2, err := Keygen(node)
	require.NoError(t, err)

	assert.True(t, r1.Artifacts[0].Evaluation.Equal(r2.Artifacts[0].Evaluation))
	assert.Equal(t, r1.Commitment.Bytes(), r2.Commitment.Bytes())
	// node is left intact
	assert.Len(t, node.Value, 2)
}

func TestVerifyArtifactRejectsTampering(t *testing.T) {
	curve := mustCurve(t, Secp256k1)
	node, err := RandomNode(curve, 1, 2, 3)
	require.NoError(t, err)
	result, err := Keygen(node)
	require.NoError(t, err)
	artifact, err := result.ArtifactFor(3)
	require.NoError(t, err)

	copyOf := func() *KeygenArtifact {
		c := *artifact
		return &c
	}

	t.Run("evaluation", func(t *testing.T) {
		a := copyOf()
		a.Evaluation = a.Evaluation.Add(curve.ScalarOne())
		assert.ErrorIs(t, VerifyArtifact(curve, a), ErrShareVerificationFailed)
	})

	t.Run("sender index", func(t *testing.T) {
		a := copyOf()
		a.FromNode = 2
		assert.ErrorIs(t, VerifyArtifact(curve, a), ErrShareVerificationFailed)
	})

	t.Run("shape", func(t *testing.T) {
		a := copyOf()
		a.Total = 4
		assert.ErrorIs(t, VerifyArtifact(curve, a), ErrShareVerificationFailed)
	})

	t.Run("self addressed", func(t *testing.T) {
		a := copyOf()
		a.ForNode = a.FromNode
		assert.ErrorIs(t, VerifyArtifact(curve, a), ErrShareVerificationFailed)
	})

	t.Run("proof", func(t *testing.T) {
		a := copyOf()
		a.Proof = &SchnorrProof{Challenge: a.Proof.Challenge, Response: a.Proof.Response.Add(curve.ScalarOne())}
		assert.ErrorIs(t, VerifyArtifact(curve, a), ErrShareVerificationFailed)
	})

	t.Run("missing pieces", func(t *testing.T) {
		assert.ErrorIs(t, VerifyArtifact(curve, nil), ErrShareVerificationFailed)
		a := copyOf()
		a.Proof = nil
		assert.ErrorIs(t, VerifyArtifact(curve, a), ErrShareVerificationFailed)
	})

	t.Run("foreign curve", func(t *testing.T) {
		other := mustCurve(t, BabyJubJub)

		a := copyOf()
		foreign, err := NewPolynomialCommitment(other, []Point{other.BasePoint(), other.BasePoint()})
		require.NoError(t, err)
		a.Commitment = foreign
		assert.ErrorIs(t, VerifyArtifact(curve, a), ErrInvalidPoint)

		a = copyOf()
		a.Evaluation = other.ScalarOne()
		assert.ErrorIs(t, VerifyArtifact(curve, a), ErrCurveMismatch)

		a = copyOf()
		a.Proof = &SchnorrProof{Challenge: other.ScalarOne(), Response: other.ScalarOne()}
		assert.ErrorIs(t, VerifyArtifact(curve, a), ErrShareVerificationFailed)

		assert.ErrorIs(t, VerifyArtifact(other, artifact), ErrInvalidPoint)
	})

	assert.NoError(t, VerifyArtifact(curve, artifact))
}

func TestPublicKeyShares(t *testing.T) {
	for _, shape := range []struct{ threshold, total int }{{2, 2}, {2, 3}, {3, 5}} {
		t.Run(fmt.Sprintf("%d-of-%d", shape.threshold, shape.total), func(t *testing.T) {
			e := testEngine(t, Ed25519, shape.threshold, shape.total)
			d := deal(t, e)
			curve := e.Curve()

			joint, err := JointPublicKey(curve, d.commitments)
			require.NoError(t, err)
			assert.True(t, d.pub.Equal(joint), "sum of shares must equal F(0)*G")

			// secret of the joint polynomial is the sum of every constant term
			secret := curve.ScalarZero()
			for _, n := range d.nodes {
				secret = secret.Add(n.Value[0])
			}
			assert.True(t, joint.Equal(curve.BasePoint().Mul(secret)))

			for _, n := range d.nodes {
				s, err := SecretShare(n, d.inbox(t, n.ForNode)...)
				require.NoError(t, err)
				vs, err := VerificationShare(curve, d.commitments, n.ForNode)
				require.NoError(t, err)
				assert.True(t, vs.Equal(curve.BasePoint().Mul(s)))
			}
		})
	}
}

func TestSharedPublicKeyOrderIndependent(t *testing.T) {
	e := testEngine(t, BabyJubJub, 2, 3)
	d := deal(t, e)

	reversed := []Point{d.pubShares[2], d.pubShares[1], d.pubShares[0]}
	pub, err := SharedPublicKey(e.Curve(), reversed)
	require.NoError(t, err)
	assert.True(t, pub.Equal(d.pub))

	_, err = SharedPublicKey(e.Curve(), nil)
	assert.ErrorIs(t, err, ErrEmptyShareSet)

	_, err = SharedPublicKey(e.Curve(), []Point{d.pubShares[0], nil})
	assert.ErrorIs(t, err, ErrInvalidPoint)
}

func TestSecretShareArtifactSet(t *testing.T) {
	e := testEngine(t, BabyJubJub, 2, 3)
	d := deal(t, e)
	node := d.nodes[0]
	inbox := d.inbox(t, 1)

	t.Run("missing artifact", func(t *testing.T) {
		_, err := SecretShare(node, inbox[:1]...)
		assert.ErrorIs(t, err, ErrInsufficientShares)
	})

	t.Run("duplicate sender", func(t *testing.T) {
		_, err := SecretShare(node, inbox[0], inbox[0])
		assert.ErrorIs(t, err, ErrDuplicateParticipants)
	})

	t.Run("addressed elsewhere", func(t *testing.T) {
		other, err := d.results[1].ArtifactFor(3)
		require.NoError(t, err)
		_, err = SecretShare(node, inbox[0], other)
		assert.ErrorIs(t, err, ErrInvalidParticipantID)
	})

	t.Run("tampered artifact", func(t *testing.T) {
		bad := *inbox[1]
		bad.Evaluation = bad.Evaluation.Add(e.Curve().ScalarOne())
		_, err := SecretShare(node, inbox[0], &bad)
		assert.ErrorIs(t, err, ErrShareVerificationFailed)
	})
}

func TestArtifactStringHidesEvaluation(t *testing.T) {
	curve := mustCurve(t, BabyJubJub)
	node, err := RandomNode(curve, 1, 2, 2)
	require.NoError(t, err)
	result, err := Keygen(node)
	require.NoError(t, err)

	a := result.Artifacts[0]
	s := a.String()
	assert.Contains(t, s, "from: 1")
	assert.False(t, strings.Contains(s, a.Evaluation.String()))
}

func TestSchnorrProofContextBinding(t *testing.T) {
	curve := mustCurve(t, Ed25519)
	secret, err := curve.ScalarRandom()
	require.NoError(t, err)
	pub := curve.BasePoint().Mul(secret)

	proof, err := NewSchnorrProof(curve, secret, pub, []byte("ctx-a"))
	require.NoError(t, err)
	assert.True(t, proof.Verify(curve, pub, []byte("ctx-a")))
	assert.False(t, proof.Verify(curve, pub, []byte("ctx-b")))
	assert.False(t, proof.Verify(curve, pub.Add(curve.BasePoint()), []byte("ctx-a")))

	var empty *SchnorrProof
	assert.False(t, empty.Verify(curve, pub, nil))

	other := mustCurve(t, Secp256k1)
	assert.False(t, proof.Verify(curve, other.BasePoint(), []byte("ctx-a")))
	assert.False(t, proof.Verify(other, pub, []byte("ctx-a")))
	assert.False(t, proof.Verify(curve, nil, []byte("ctx-a")))
}
