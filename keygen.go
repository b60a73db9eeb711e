package elgamal

import (
	"encoding/binary"
	"fmt"
)

// KeygenArtifact is what a party sends to one counterpart during keygen.
// Evaluation is f_from(ForNode) and must reach ForNode privately; the
// commitment and proof are public.
type KeygenArtifact struct {
	FromNode   ParticipantIndex
	ForNode    ParticipantIndex
	Threshold  int
	Total      int
	Evaluation Scalar
	Commitment *PolynomialCommitment
	Proof      *SchnorrProof
}

// Zeroize clears the private evaluation
func (a *KeygenArtifact) Zeroize() {
	if a.Evaluation != nil {
		a.Evaluation.Zeroize()
	}
}

// KeygenResult is a party's full keygen output: its public commitment and one
// artifact per counterpart
type KeygenResult struct {
	FromNode   ParticipantIndex
	Commitment *PolynomialCommitment
	Proof      *SchnorrProof
	Artifacts  []*KeygenArtifact
}

// ArtifactFor returns the artifact addressed to index
func (r *KeygenResult) ArtifactFor(index ParticipantIndex) (*KeygenArtifact, error) {
	for _, a := range r.Artifacts {
		if a.ForNode == index {
			return a, nil
		}
	}
	return nil, ErrInvalidParticipantID.WithDetails("no artifact for index %d", index)
}

// keygenContext binds a proof of knowledge to the sender and the sharing shape
func keygenContext(from ParticipantIndex, threshold, total int) []byte {
	ctx := []byte("keygen")
	ctx = binary.BigEndian.AppendUint32(ctx, uint32(from))
	ctx = binary.BigEndian.AppendUint16(ctx, uint16(threshold))
	ctx = binary.BigEndian.AppendUint16(ctx, uint16(total))
	return ctx
}

// Keygen evaluates the node's polynomial at every other index and commits to
// it. The node is not modified.
func Keygen(node *SecretNode) (*KeygenResult, error) {
	if node == nil || len(node.Value) == 0 {
		return nil, ErrMalformedKeyMaterial.WithDetails("empty secret node")
	}
	if len(node.Value) != node.Threshold {
		return nil, ErrMalformedKeyMaterial.WithDetails("%d coefficients for threshold %d", len(node.Value), node.Threshold)
	}
	if err := validateNodeShape(node.ForNode, node.Threshold, node.Total); err != nil {
		return nil, err
	}

	poly, err := node.Polynomial()
	if err != nil {
		return nil, ErrMalformedKeyMaterial.WithCause(err)
	}
	commitment := poly.Commit()

	proof, err := NewSchnorrProof(node.Curve, poly.Secret(), commitment.Secret(),
		keygenContext(node.ForNode, node.Threshold, node.Total))
	if err != nil {
		return nil, err
	}

	result := &KeygenResult{
		FromNode:   node.ForNode,
		Commitment: commitment,
		Proof:      proof,
		Artifacts:  make([]*KeygenArtifact, 0, node.Total-1),
	}

	for idx := 1; idx <= node.Total; idx++ {
		target := ParticipantIndex(idx)
		if target == node.ForNode {
			continue
		}
		eval, err := poly.EvaluateAt(target)
		if err != nil {
			return nil, err
		}
		result.Artifacts = append(result.Artifacts, &KeygenArtifact{
			FromNode:   node.ForNode,
			ForNode:    target,
			Threshold:  node.Threshold,
			Total:      node.Total,
			Evaluation: eval,
			Commitment: commitment,
			Proof:      proof,
		})
	}

	return result, nil
}

// EvalAt returns f_from(index)*G, the public image of the sender's
// polynomial at index, computed from the commitments alone
func EvalAt(artifact *KeygenArtifact, index ParticipantIndex) (Point, error) {
	if artifact == nil || artifact.Commitment == nil {
		return nil, ErrMalformedKeyMaterial.WithDetails("artifact has no commitment")
	}
	if index == 0 || int(index) > artifact.Total {
		return nil, ErrInvalidParticipantID.WithDetails("index %d outside [1, %d]", index, artifact.Total)
	}
	return artifact.Commitment.Evaluate(index)
}

// VerifyArtifact checks the artifact is well formed, the sender knows its
// secret and the private evaluation matches the public commitments
func VerifyArtifact(curve Curve, artifact *KeygenArtifact) error {
	if artifact == nil || artifact.Commitment == nil || artifact.Evaluation == nil {
		return ErrShareVerificationFailed.WithDetails("incomplete artifact")
	}
	if err := validateNodeShape(artifact.FromNode, artifact.Threshold, artifact.Total); err != nil {
		return ErrShareVerificationFailed.WithCause(err)
	}
	if artifact.ForNode == 0 || int(artifact.ForNode) > artifact.Total || artifact.ForNode == artifact.FromNode {
		return ErrShareVerificationFailed.WithDetails("artifact from %d addressed to %d", artifact.FromNode, artifact.ForNode)
	}
	if artifact.Commitment.Threshold() != artifact.Threshold {
		return ErrShareVerificationFailed.WithDetails("%d commitments for threshold %d", artifact.Commitment.Threshold(), artifact.Threshold)
	}

	for _, p := range artifact.Commitment.Points() {
		if err := curve.CheckPoint(p); err != nil {
			return err
		}
	}
	if err := curve.CheckScalar(artifact.Evaluation); err != nil {
		return ErrCurveMismatch.WithCause(err)
	}

	ctx := keygenContext(artifact.FromNode, artifact.Threshold, artifact.Total)
	if !artifact.Proof.Verify(curve, artifact.Commitment.Secret(), ctx) {
		return ErrShareVerificationFailed.WithDetails("proof of knowledge from %d rejected", artifact.FromNode)
	}

	ok, err := artifact.Commitment.Verify(artifact.ForNode, artifact.Evaluation)
	if err != nil {
		return ErrShareVerificationFailed.WithCause(err)
	}
	if !ok {
		return ErrShareVerificationFailed.WithDetails("evaluation from %d does not match its commitments", artifact.FromNode)
	}
	return nil
}

// checkArtifactSet verifies the artifacts are exactly one per counterpart of
// node, all addressed to node
func checkArtifactSet(node *SecretNode, artifacts []*KeygenArtifact) error {
	if node == nil || len(node.Value) == 0 {
		return ErrMalformedKeyMaterial.WithDetails("empty secret node")
	}
	if len(artifacts) != node.Total-1 {
		return ErrInsufficientShares.WithDetails("need %d counterpart artifacts, got %d", node.Total-1, len(artifacts))
	}

	seen := make(map[ParticipantIndex]struct{}, len(artifacts))
	for _, a := range artifacts {
		if a == nil {
			return ErrShareVerificationFailed.WithDetails("nil artifact")
		}
		if a.ForNode != node.ForNode {
			return ErrInvalidParticipantID.WithDetails("artifact addressed to %d, node is %d", a.ForNode, node.ForNode)
		}
		if a.FromNode == node.ForNode {
			return ErrInvalidParticipantID.WithDetails("artifact from the node itself")
		}
		if _, dup := seen[a.FromNode]; dup {
			return ErrDuplicateParticipants.WithContext("index", uint32(a.FromNode))
		}
		seen[a.FromNode] = struct{}{}
		if a.Threshold != node.Threshold || a.Total != node.Total {
			return ErrInvalidThreshold.WithDetails("artifact shape %d-of-%d, node shape %d-of-%d",
				a.Threshold, a.Total, node.Threshold, node.Total)
		}
		if err := VerifyArtifact(node.Curve, a); err != nil {
			return err
		}
	}
	return nil
}

// SecretShare combines the node's own evaluation with every counterpart's:
// s_i = f_i(i) + sum_j f_j(i). The caller owns and must zeroize the result.
func SecretShare(node *SecretNode, artifacts ...*KeygenArtifact) (Scalar, error) {
	if err := checkArtifactSet(node, artifacts); err != nil {
		return nil, err
	}

	poly, err := node.Polynomial()
	if err != nil {
		return nil, ErrMalformedKeyMaterial.WithCause(err)
	}
	share, err := poly.EvaluateAt(node.ForNode)
	if err != nil {
		return nil, err
	}
	for _, a := range artifacts {
		share = share.Add(a.Evaluation)
	}
	return share, nil
}

// PublicKeyShare returns lambda_i * s_i * G with lambda_i the Lagrange
// coefficient at zero over all parties, so the plain sum of every party's
// share is the joint public key
func PublicKeyShare(node *SecretNode, artifacts ...*KeygenArtifact) (Point, error) {
	share, err := SecretShare(node, artifacts...)
	if err != nil {
		return nil, err
	}
	defer share.Zeroize()

	lambda, err := LagrangeCoefficient(node.Curve, node.ForNode, allIndices(node.Total))
	if err != nil {
		return nil, err
	}

	return node.Curve.BasePoint().Mul(share.Mul(lambda)), nil
}

// VerificationShare returns s_index * G from the public commitments of every
// party
func VerificationShare(curve Curve, commitments []*PolynomialCommitment, index ParticipantIndex) (Point, error) {
	joint, err := SumCommitments(curve, commitments)
	if err != nil {
		return nil, err
	}
	return joint.Evaluate(index)
}

// JointPublicKey returns F(0)*G from the public commitments of every party
func JointPublicKey(curve Curve, commitments []*PolynomialCommitment) (Point, error) {
	joint, err := SumCommitments(curve, commitments)
	if err != nil {
		return nil, err
	}
	return joint.Secret(), nil
}

func allIndices(total int) []ParticipantIndex {
	out := make([]ParticipantIndex, total)
	for i := range out {
		out[i] = ParticipantIndex(i + 1)
	}
	return out
}

// String implements fmt.Stringer without exposing the evaluation
func (a *KeygenArtifact) String() string {
	return fmt.Sprintf("KeygenArtifact{from: %d, for: %d, %d-of-%d}", a.FromNode, a.ForNode, a.Threshold, a.Total)
}
