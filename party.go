package elgamal

import (
	"go.uber.org/zap"
)

// Party is one participant bound to its seed-derived node. Lit and Auditor
// are the two roles of the default deployment; both are the same type with a
// different index.
type Party struct {
	engine *Engine
	index  ParticipantIndex
	node   *SecretNode
}

// NewParty derives the node for index from seed
func NewParty(engine *Engine, index ParticipantIndex, seed []byte) (*Party, error) {
	node, err := engine.SecretNodeFromSeed(seed, index)
	if err != nil {
		return nil, err
	}
	return &Party{engine: engine, index: index, node: node}, nil
}

// NewLit returns the party at index 1
func NewLit(engine *Engine, seed []byte) (*Party, error) {
	return NewParty(engine, LitIndex, seed)
}

// NewAuditor returns the party at index 2
func NewAuditor(engine *Engine, seed []byte) (*Party, error) {
	return NewParty(engine, AuditorIndex, seed)
}

// Index returns the party's index
func (p *Party) Index() ParticipantIndex { return p.index }

// Node returns the party's secret node. Callers must not modify it.
func (p *Party) Node() *SecretNode { return p.node }

// KeygenAll returns the artifacts for every counterpart
func (p *Party) KeygenAll() (*KeygenResult, error) {
	return p.engine.Keygen(p.node)
}

// Keygen returns the artifact for the party's only counterpart in a
// two-party deployment
func (p *Party) Keygen() (*KeygenArtifact, error) {
	result, err := p.KeygenAll()
	if err != nil {
		return nil, err
	}
	if len(result.Artifacts) != 1 {
		return nil, p.engine.fail("party_keygen", ErrInvalidConfiguration.WithDetails("%d counterparts, expected 1", len(result.Artifacts)))
	}
	return result.Artifacts[0], nil
}

// PubkeyShare returns the party's public key share given the artifacts it
// received
func (p *Party) PubkeyShare(counterparts ...*KeygenArtifact) (Point, error) {
	return p.engine.PublicKeyShare(p.node, counterparts...)
}

// PartialDecrypt returns the party's partial decryption of c1
func (p *Party) PartialDecrypt(counterpart *KeygenArtifact, c1 Point) (*PartialDecryption, error) {
	return p.engine.PartialDecrypt(p.node, []*KeygenArtifact{counterpart}, c1)
}

// Decrypt adds the party's own partial to the counterpart's and combines
// them into the message point
func (p *Party) Decrypt(counterpart *KeygenArtifact, ct *Ciphertext, other *PartialDecryption) (Point, error) {
	if ct == nil {
		return nil, p.engine.fail("party_decrypt", ErrInvalidPoint.WithDetails("nil ciphertext"))
	}
	if other == nil {
		return nil, p.engine.fail("party_decrypt", ErrInsufficientShares.WithDetails("no counterpart partial"))
	}
	if other.Index == p.index {
		return nil, p.engine.fail("party_decrypt", ErrDuplicateParticipants.WithContext("index", uint32(p.index)))
	}

	own, err := p.PartialDecrypt(counterpart, ct.C1)
	if err != nil {
		return nil, err
	}

	p.engine.logger.Debug("combining partial decryptions",
		zap.Uint32("own", uint32(p.index)),
		zap.Uint32("counterpart", uint32(other.Index)))
	return p.engine.FinalDecrypt(ct, []*PartialDecryption{other, own}, p.engine.cfg.Threshold)
}

// DecryptMessage is Decrypt followed by decoding
func (p *Party) DecryptMessage(counterpart *KeygenArtifact, ct *Ciphertext, other *PartialDecryption) (string, error) {
	m, err := p.Decrypt(counterpart, ct, other)
	if err != nil {
		return "", err
	}
	return p.engine.PointToMessage(m)
}

// Close zeroizes the party's node
func (p *Party) Close() {
	if p.node != nil {
		p.node.Zeroize()
	}
}
