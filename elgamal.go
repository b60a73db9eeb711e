package elgamal

import (
	"sync"
)

// Ciphertext is an ElGamal ciphertext (nonce*G, m + nonce*pub)
type Ciphertext struct {
	C1 Point
	C2 Point
}

// PartialDecryption is one party's contribution s_i*c1 to a decryption.
// Proof is optional.
type PartialDecryption struct {
	Index ParticipantIndex
	Share Point
	Proof *DLEQProof
}

// Encrypt encrypts the message point m under pub with the given nonce
func Encrypt(curve Curve, m, pub Point, nonce Scalar) (*Ciphertext, error) {
	if m == nil || pub == nil {
		return nil, ErrInvalidPoint.WithDetails("nil point")
	}
	if err := curve.CheckPoint(m); err != nil {
		return nil, err
	}
	if err := curve.CheckPoint(pub); err != nil {
		return nil, err
	}
	if pub.IsIdentity() {
		return nil, ErrInvalidPoint.WithDetails("identity public key")
	}
	if nonce == nil || nonce.IsZero() {
		return nil, ErrInvalidNonce.WithDetails("nonce must be non-zero")
	}

	return &Ciphertext{
		C1: curve.BasePoint().Mul(nonce),
		C2: m.Add(pub.Mul(nonce)),
	}, nil
}

// PartialDecrypt computes the node's share of the decryption of c1
func PartialDecrypt(node *SecretNode, artifacts []*KeygenArtifact, c1 Point) (*PartialDecryption, error) {
	if c1 == nil {
		return nil, ErrInvalidPoint.WithDetails("nil c1")
	}
	if err := node.Curve.CheckPoint(c1); err != nil {
		return nil, err
	}

	share, err := SecretShare(node, artifacts...)
	if err != nil {
		return nil, err
	}
	defer share.Zeroize()

	return &PartialDecryption{
		Index: node.ForNode,
		Share: c1.Mul(share),
	}, nil
}

// PartialDecryptWithProof is PartialDecrypt plus a Chaum-Pedersen proof that
// the share was computed with the node's key share
func PartialDecryptWithProof(node *SecretNode, artifacts []*KeygenArtifact, c1 Point) (*PartialDecryption, error) {
	if c1 == nil {
		return nil, ErrInvalidPoint.WithDetails("nil c1")
	}
	if err := node.Curve.CheckPoint(c1); err != nil {
		return nil, err
	}

	share, err := SecretShare(node, artifacts...)
	if err != nil {
		return nil, err
	}
	defer share.Zeroize()

	d := c1.Mul(share)
	proof, err := NewDLEQProof(node.Curve, share, c1, node.Curve.BasePoint().Mul(share), d)
	if err != nil {
		return nil, err
	}

	return &PartialDecryption{
		Index: node.ForNode,
		Share: d,
		Proof: proof,
	}, nil
}

// VerifyPartialDecryption checks the partial's proof against the party's
// verification share s_i*G
func VerifyPartialDecryption(curve Curve, c1 Point, partial *PartialDecryption, verificationShare Point) error {
	if partial == nil || partial.Share == nil {
		return ErrProofVerificationFailed.WithDetails("empty partial decryption")
	}
	if partial.Proof == nil {
		return ErrProofVerificationFailed.WithDetails("partial from %d carries no proof", partial.Index)
	}
	for _, p := range []Point{c1, partial.Share, verificationShare} {
		if p == nil {
			return ErrInvalidPoint.WithDetails("nil point")
		}
		if err := curve.CheckPoint(p); err != nil {
			return err
		}
	}
	if !partial.Proof.Verify(curve, c1, verificationShare, partial.Share) {
		return ErrProofVerificationFailed.WithContext("index", uint32(partial.Index))
	}
	return nil
}

// CombineDecrypt recovers the message point m = c2 - sum L_j(0)*d_j from the
// first threshold partial decryptions
func CombineDecrypt(curve Curve, c2 Point, partials []*PartialDecryption, threshold int) (Point, error) {
	if threshold < 1 {
		return nil, ErrInvalidThreshold.WithContext("threshold", threshold)
	}
	if len(partials) < threshold {
		return nil, ErrInsufficientShares.WithDetails("need %d, got %d", threshold, len(partials))
	}
	if c2 == nil {
		return nil, ErrInvalidPoint.WithDetails("nil c2")
	}
	if err := curve.CheckPoint(c2); err != nil {
		return nil, err
	}

	used := partials[:threshold]
	indices := make([]ParticipantIndex, len(used))
	shares := make([]Point, len(used))
	for i, p := range used {
		if p == nil || p.Share == nil {
			return nil, ErrInvalidPoint.WithContext("partial", i)
		}
		if err := curve.CheckPoint(p.Share); err != nil {
			return nil, ErrInvalidPoint.WithCause(err).WithContext("partial", i)
		}
		indices[i] = p.Index
		shares[i] = p.Share
	}

	mask, err := InterpolatePointsAtZero(curve, indices, shares)
	if err != nil {
		return nil, err
	}
	return c2.Sub(mask), nil
}

// MessageState tracks a single message through decryption
type MessageState int

const (
	StateNoCiphertext MessageState = iota
	StateEncrypted
	StatePartiallyDecrypted
	StateDecrypted
)

func (s MessageState) String() string {
	switch s {
	case StateNoCiphertext:
		return "no_ciphertext"
	case StateEncrypted:
		return "encrypted"
	case StatePartiallyDecrypted:
		return "partially_decrypted"
	case StateDecrypted:
		return "decrypted"
	default:
		return "unknown"
	}
}

// DecryptionSession collects partial decryptions for one ciphertext until the
// threshold is reached. Safe for concurrent use.
type DecryptionSession struct {
	mu         sync.Mutex
	curve      Curve
	threshold  int
	state      MessageState
	ciphertext *Ciphertext
	partials   []*PartialDecryption
	seen       map[ParticipantIndex]struct{}
	result     Point

	// verify, when set, checks each partial before it is accepted
	verify func(*PartialDecryption) error
}

// NewDecryptionSession starts a session in StateNoCiphertext
func NewDecryptionSession(curve Curve, threshold int) (*DecryptionSession, error) {
	if threshold < 1 {
		return nil, ErrInvalidThreshold.WithContext("threshold", threshold)
	}
	return &DecryptionSession{
		curve:     curve,
		threshold: threshold,
		seen:      make(map[ParticipantIndex]struct{}),
	}, nil
}

// RequireProofs makes the session reject any partial whose proof does not
// verify against the sender's verification share
func (s *DecryptionSession) RequireProofs(verificationShares map[ParticipantIndex]Point) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.verify = func(p *PartialDecryption) error {
		vs, ok := verificationShares[p.Index]
		if !ok {
			return ErrInvalidParticipantID.WithDetails("no verification share for index %d", p.Index)
		}
		return VerifyPartialDecryption(s.curve, s.ciphertext.C1, p, vs)
	}
}

// State returns the current state
func (s *DecryptionSession) State() MessageState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Received returns how many partials have been accepted
func (s *DecryptionSession) Received() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.partials)
}

// SetCiphertext moves the session to StateEncrypted
func (s *DecryptionSession) SetCiphertext(ct *Ciphertext) error {
	if ct == nil || ct.C1 == nil || ct.C2 == nil {
		return ErrInvalidPoint.WithDetails("incomplete ciphertext")
	}
	if err := s.curve.CheckPoint(ct.C1); err != nil {
		return err
	}
	if err := s.curve.CheckPoint(ct.C2); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateNoCiphertext {
		return ErrInvalidState.WithDetails("ciphertext already set (state %s)", s.state)
	}
	s.ciphertext = ct
	s.state = StateEncrypted
	return nil
}

// AddPartial accepts one partial decryption. It returns the number of
// partials still needed.
func (s *DecryptionSession) AddPartial(p *PartialDecryption) (int, error) {
	if p == nil || p.Share == nil {
		return 0, ErrInvalidPoint.WithDetails("empty partial decryption")
	}
	if p.Index == 0 {
		return 0, ErrInvalidParticipantID.WithDetails("index 0 is reserved for the secret")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case StateNoCiphertext:
		return 0, ErrInvalidState.WithDetails("no ciphertext to decrypt")
	case StateDecrypted:
		return 0, ErrInvalidState.WithDetails("message already decrypted")
	}
	if _, dup := s.seen[p.Index]; dup {
		return 0, ErrDuplicateParticipants.WithContext("index", uint32(p.Index))
	}
	if err := s.curve.CheckPoint(p.Share); err != nil {
		return 0, err
	}
	if s.verify != nil {
		if err := s.verify(p); err != nil {
			return 0, err
		}
	}

	s.seen[p.Index] = struct{}{}
	s.partials = append(s.partials, p)
	s.state = StatePartiallyDecrypted
	return max(s.threshold-len(s.partials), 0), nil
}

// Combine decrypts once enough partials are in. Once decrypted, further calls
// return the same point.
func (s *DecryptionSession) Combine() (Point, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case StateDecrypted:
		return s.result, nil
	case StateNoCiphertext, StateEncrypted:
		return nil, ErrInsufficientShares.WithDetails("need %d, got 0", s.threshold)
	}

	m, err := CombineDecrypt(s.curve, s.ciphertext.C2, s.partials, s.threshold)
	if err != nil {
		return nil, err
	}
	s.result = m
	s.state = StateDecrypted
	return m, nil
}
