package elgamal

import (
	"encoding/hex"
	"encoding/json"
)

// Wire forms carry points and scalars as hex of their canonical bytes.
// Parsing re-validates every value, so nothing crosses the boundary
// unchecked.

type ciphertextJSON struct {
	C1 string `json:"c1"`
	C2 string `json:"c2"`
}

type proofJSON struct {
	Challenge string `json:"challenge"`
	Response  string `json:"response"`
}

type partialJSON struct {
	Index uint32     `json:"index"`
	Share string     `json:"share"`
	Proof *proofJSON `json:"proof,omitempty"`
}

// artifactJSON includes the private evaluation; it is meant for the
// addressed party only
type artifactJSON struct {
	Curve       string    `json:"curve"`
	FromNode    uint32    `json:"from_node"`
	ForNode     uint32    `json:"for_node"`
	Threshold   int       `json:"threshold"`
	Total       int       `json:"total"`
	Evaluation  string    `json:"evaluation"`
	Commitments []string  `json:"commitments"`
	Proof       proofJSON `json:"proof"`
}

// FormatPoint returns the hex form of a point
func FormatPoint(p Point) string {
	return hex.EncodeToString(p.Bytes())
}

// ParsePoint parses and validates a hex point
func (e *Engine) ParsePoint(s string) (Point, error) {
	raw, err := hex.DecodeString(s)
	if err != nil {
		return nil, ErrInvalidPoint.WithCause(err)
	}
	return e.curve.PointFromBytes(raw)
}

// ParseScalar parses a hex canonical scalar
func (e *Engine) ParseScalar(s string) (Scalar, error) {
	raw, err := hex.DecodeString(s)
	if err != nil {
		return nil, ErrMalformedKeyMaterial.WithCause(err)
	}
	defer ZeroizeBytes(raw)
	sc, err := e.curve.ScalarFromBytes(raw)
	if err != nil {
		return nil, ErrMalformedKeyMaterial.WithCause(err)
	}
	return sc, nil
}

// MarshalCiphertext encodes a ciphertext as JSON
func MarshalCiphertext(ct *Ciphertext) ([]byte, error) {
	return json.Marshal(ciphertextJSON{C1: FormatPoint(ct.C1), C2: FormatPoint(ct.C2)})
}

// ParseCiphertext decodes and validates a JSON ciphertext
func (e *Engine) ParseCiphertext(data []byte) (*Ciphertext, error) {
	var w ciphertextJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, e.fail("parse_ciphertext", ErrInvalidPoint.WithCause(err))
	}
	c1, err := e.ParsePoint(w.C1)
	if err != nil {
		return nil, e.fail("parse_ciphertext", err)
	}
	c2, err := e.ParsePoint(w.C2)
	if err != nil {
		return nil, e.fail("parse_ciphertext", err)
	}
	return &Ciphertext{C1: c1, C2: c2}, nil
}

func formatProof(challenge, response Scalar) *proofJSON {
	return &proofJSON{Challenge: challenge.String(), Response: response.String()}
}

func (e *Engine) parseProof(w *proofJSON) (Scalar, Scalar, error) {
	c, err := e.ParseScalar(w.Challenge)
	if err != nil {
		return nil, nil, err
	}
	r, err := e.ParseScalar(w.Response)
	if err != nil {
		return nil, nil, err
	}
	return c, r, nil
}

// MarshalPartial encodes a partial decryption as JSON
func MarshalPartial(p *PartialDecryption) ([]byte, error) {
	w := partialJSON{Index: uint32(p.Index), Share: FormatPoint(p.Share)}
	if p.Proof != nil {
		w.Proof = formatProof(p.Proof.Challenge, p.Proof.Response)
	}
	return json.Marshal(w)
}

// ParsePartial decodes and validates a JSON partial decryption
func (e *Engine) ParsePartial(data []byte) (*PartialDecryption, error) {
	var w partialJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, e.fail("parse_partial", ErrInvalidPoint.WithCause(err))
	}
	if w.Index == 0 || int(w.Index) > e.cfg.Total {
		return nil, e.fail("parse_partial", ErrInvalidParticipantID.WithContext("index", w.Index))
	}
	share, err := e.ParsePoint(w.Share)
	if err != nil {
		return nil, e.fail("parse_partial", err)
	}

	p := &PartialDecryption{Index: ParticipantIndex(w.Index), Share: share}
	if w.Proof != nil {
		c, r, err := e.parseProof(w.Proof)
		if err != nil {
			return nil, e.fail("parse_partial", err)
		}
		p.Proof = &DLEQProof{Challenge: c, Response: r}
	}
	return p, nil
}

// MarshalArtifact encodes a keygen artifact as JSON. The output contains the
// private evaluation and must only be sent to artifact.ForNode.
func MarshalArtifact(curve Curve, a *KeygenArtifact) ([]byte, error) {
	points := a.Commitment.Points()
	commitments := make([]string, len(points))
	for i, p := range points {
		commitments[i] = FormatPoint(p)
	}
	return json.Marshal(artifactJSON{
		Curve:       curve.Name(),
		FromNode:    uint32(a.FromNode),
		ForNode:     uint32(a.ForNode),
		Threshold:   a.Threshold,
		Total:       a.Total,
		Evaluation:  a.Evaluation.String(),
		Commitments: commitments,
		Proof:       *formatProof(a.Proof.Challenge, a.Proof.Response),
	})
}

// ParseArtifact decodes a JSON artifact and verifies it
func (e *Engine) ParseArtifact(data []byte) (*KeygenArtifact, error) {
	var w artifactJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, e.fail("parse_artifact", ErrMalformedKeyMaterial.WithCause(err))
	}
	if w.Curve != e.curve.Name() {
		return nil, e.fail("parse_artifact", ErrCurveMismatch.WithDetails("artifact on %s, engine on %s", w.Curve, e.curve.Name()))
	}

	points := make([]Point, len(w.Commitments))
	for i, s := range w.Commitments {
		p, err := e.ParsePoint(s)
		if err != nil {
			return nil, e.fail("parse_artifact", err)
		}
		points[i] = p
	}
	commitment, err := NewPolynomialCommitment(e.curve, points)
	if err != nil {
		return nil, e.fail("parse_artifact", err)
	}

	eval, err := e.ParseScalar(w.Evaluation)
	if err != nil {
		return nil, e.fail("parse_artifact", err)
	}
	c, r, err := e.parseProof(&w.Proof)
	if err != nil {
		return nil, e.fail("parse_artifact", err)
	}

	a := &KeygenArtifact{
		FromNode:   ParticipantIndex(w.FromNode),
		ForNode:    ParticipantIndex(w.ForNode),
		Threshold:  w.Threshold,
		Total:      w.Total,
		Evaluation: eval,
		Commitment: commitment,
		Proof:      &SchnorrProof{Challenge: c, Response: r},
	}
	if err := e.VerifyArtifact(a); err != nil {
		a.Zeroize()
		return nil, err
	}
	return a, nil
}
