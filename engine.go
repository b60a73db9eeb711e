package elgamal

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// Engine is the capability handle every boundary operation hangs off. It is
// immutable after construction apart from the nonce tracker, which is safe
// for concurrent use.
type Engine struct {
	cfg    Config
	curve  Curve
	logger *zap.Logger
	audit  AuditEventHandler
	nonces *NonceTracker
}

// Option configures an Engine
type Option func(*Engine)

// WithLogger sets the structured logger. The engine only logs public values.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithAuditHandler sets the audit event sink
func WithAuditHandler(h AuditEventHandler) Option {
	return func(e *Engine) {
		if h != nil {
			e.audit = h
		}
	}
}

// NewEngine validates cfg and builds an engine
func NewEngine(cfg Config, opts ...Option) (*Engine, error) {
	e := &Engine{
		cfg:    cfg,
		logger: zap.NewNop(),
		audit:  &NullAuditHandler{},
	}
	for _, opt := range opts {
		opt(e)
	}

	result := NewDefaultConfigurationValidator().ValidateConfig(cfg)
	if !result.Valid {
		err := result.Err()
		e.audit.OnValidationFailure(NewAuditEventBuilder(AuditEventValidationFailure, ReasonValidationError).
			WithCurve(string(cfg.Curve)).
			WithShape(cfg.Threshold, cfg.Total).
			WithError(err).
			BuildValidationFailure("configuration", err.Error(), map[string]interface{}{
				"curve":           string(cfg.Curve),
				"threshold":       cfg.Threshold,
				"total":           cfg.Total,
				"encoding_factor": cfg.EncodingFactor,
			}))
		e.logger.Error("invalid engine configuration", zap.Strings("errors", result.Errors))
		return nil, err
	}

	curve, err := NewCurve(cfg.Curve)
	if err != nil {
		return nil, ErrInvalidConfiguration.WithCause(err)
	}
	e.curve = curve

	if cfg.TrackNonces {
		e.nonces, err = NewNonceTracker(cfg.NonceCacheSize)
		if err != nil {
			return nil, err
		}
	}

	for _, w := range result.Warnings {
		e.logger.Warn("engine configuration warning", zap.String("warning", w))
	}
	e.logger.Info("engine initialized",
		zap.String("curve", curve.Name()),
		zap.Int("threshold", cfg.Threshold),
		zap.Int("total", cfg.Total),
		zap.Uint64("encoding_factor", cfg.EncodingFactor),
		zap.Bool("track_nonces", cfg.TrackNonces),
		zap.String("security_level", string(result.SecurityLevel)),
	)
	e.audit.OnConfigurationChange(NewAuditEventBuilder(AuditEventInitialization, ReasonInitialization).
		WithCurve(curve.Name()).
		WithShape(cfg.Threshold, cfg.Total).
		WithMetadata("security_level", string(result.SecurityLevel)).
		Build())

	return e, nil
}

var defaultEngine = sync.OnceValues(func() (*Engine, error) {
	return NewEngine(DefaultConfig())
})

// Default returns the process-wide engine with DefaultConfig. Concurrent
// callers all block until the first initialization finishes and then share
// the same handle.
func Default() (*Engine, error) {
	return defaultEngine()
}

// Curve returns the engine's group
func (e *Engine) Curve() Curve { return e.curve }

// Config returns a copy of the engine's configuration
func (e *Engine) Config() Config { return e.cfg }

// Logger returns the engine's logger
func (e *Engine) Logger() *zap.Logger { return e.logger }

// fail logs and audits a failed operation and passes err through unchanged
func (e *Engine) fail(op string, err error, fields ...zap.Field) error {
	fields = append(fields, zap.String("op", op), zap.String("code", errorCode(err)))
	e.logger.Warn("operation failed", fields...)

	builder := NewAuditEventBuilder(AuditEventError, ReasonCallerRequest).
		WithCurve(e.curve.Name()).
		WithMetadata("op", op).
		WithError(err)
	if IsErrorCategory(err, ErrorCategoryValidation) {
		e.audit.OnValidationFailure(builder.BuildValidationFailure("input", err.Error(), nil))
	} else {
		e.audit.OnError(builder.Build())
	}
	return err
}

// checkNode makes sure a node belongs to this engine's curve and shape
func (e *Engine) checkNode(node *SecretNode) error {
	if node == nil || node.Curve == nil {
		return ErrMalformedKeyMaterial.WithDetails("nil secret node")
	}
	if node.Curve.ID() != e.curve.ID() {
		return ErrCurveMismatch.WithDetails("node on %s, engine on %s", node.Curve.Name(), e.curve.Name())
	}
	if node.Threshold != e.cfg.Threshold || node.Total != e.cfg.Total {
		return ErrInvalidThreshold.WithDetails("node shape %d-of-%d, engine shape %d-of-%d",
			node.Threshold, node.Total, e.cfg.Threshold, e.cfg.Total)
	}
	return nil
}

// MessageToPoint embeds a decimal-string integer into a curve point
func (e *Engine) MessageToPoint(message string) (Point, error) {
	m, err := parseDecimal(message, e.curve.CoordinateModulus())
	if err != nil {
		return nil, e.fail("message_to_point", err)
	}
	p, err := Encode(e.curve, m, e.cfg.EncodingFactor)
	if err != nil {
		return nil, e.fail("message_to_point", err)
	}
	return p, nil
}

// PointToMessage is the inverse of MessageToPoint
func (e *Engine) PointToMessage(p Point) (string, error) {
	m, err := Decode(e.curve, p, e.cfg.EncodingFactor)
	if err != nil {
		return "", e.fail("point_to_message", err)
	}
	return formatDecimal(m), nil
}

// MaxMessage returns the largest message the engine can embed
func (e *Engine) MaxMessage() string {
	return formatDecimal(MaxMessage(e.curve, e.cfg.EncodingFactor))
}

// RandomNonce draws a fresh encryption nonce
func (e *Engine) RandomNonce() (Scalar, error) {
	n, err := RandomNonce(e.curve)
	if err != nil {
		return nil, e.fail("random_nonce", err)
	}
	return n, nil
}

// Encrypt encrypts a message point with a decimal-string nonce, reduced
// modulo the group order
func (e *Engine) Encrypt(m, pub Point, nonce string) (*Ciphertext, error) {
	n, err := parseDecimal(nonce, e.curve.Order())
	if err != nil {
		return nil, e.fail("encrypt", ErrInvalidNonce.WithCause(err))
	}
	scalar := e.curve.ScalarFromBigInt(n)
	defer scalar.Zeroize()
	return e.EncryptWithNonce(m, pub, scalar)
}

// EncryptWithNonce encrypts with a caller-supplied scalar nonce. When nonce
// tracking is on, a nonce already used under pub is refused.
func (e *Engine) EncryptWithNonce(m, pub Point, nonce Scalar) (*Ciphertext, error) {
	if nonce == nil || nonce.IsZero() {
		return nil, e.fail("encrypt", ErrInvalidNonce.WithDetails("nonce must be non-zero"))
	}
	if pub == nil {
		return nil, e.fail("encrypt", ErrInvalidPoint.WithDetails("nil public key"))
	}
	if err := e.curve.CheckPoint(pub); err != nil {
		return nil, e.fail("encrypt", err)
	}

	if e.nonces != nil {
		if err := e.nonces.Observe(pub, nonce); err != nil {
			e.audit.OnNonceReuse(NewAuditEventBuilder(AuditEventNonceReuse, ReasonNonceReplay).
				WithCurve(e.curve.Name()).
				WithError(err).
				Build())
			return nil, e.fail("encrypt", err)
		}
	}

	ct, err := Encrypt(e.curve, m, pub, nonce)
	if err != nil {
		if e.nonces != nil {
			e.nonces.Forget(pub, nonce)
		}
		return nil, e.fail("encrypt", err)
	}
	return ct, nil
}

// EncryptMessage embeds a decimal-string message and encrypts it under pub
// with a fresh random nonce
func (e *Engine) EncryptMessage(message string, pub Point) (*Ciphertext, error) {
	m, err := e.MessageToPoint(message)
	if err != nil {
		return nil, err
	}
	nonce, err := e.RandomNonce()
	if err != nil {
		return nil, err
	}
	defer nonce.Zeroize()
	return e.EncryptWithNonce(m, pub, nonce)
}

// FinalDecrypt combines the first threshold partial decryptions
func (e *Engine) FinalDecrypt(ct *Ciphertext, partials []*PartialDecryption, threshold int) (Point, error) {
	if ct == nil {
		return nil, e.fail("final_decrypt", ErrInvalidPoint.WithDetails("nil ciphertext"))
	}

	m, err := CombineDecrypt(e.curve, ct.C2, partials, threshold)
	if err != nil {
		return nil, e.fail("final_decrypt", err, zap.Int("threshold", threshold), zap.Int("partials", len(partials)))
	}

	e.audit.OnDecryption(NewAuditEventBuilder(AuditEventDecryption, ReasonCallerRequest).
		WithCurve(e.curve.Name()).
		WithShape(threshold, e.cfg.Total).
		WithParticipants(partialIndices(partials[:threshold])).
		BuildDecryption(len(partials), false))
	e.logger.Debug("ciphertext decrypted", zap.Int("threshold", threshold), zap.Int("partials", len(partials)))
	return m, nil
}

// DecryptMessage combines partials with the engine threshold and decodes the
// message
func (e *Engine) DecryptMessage(ct *Ciphertext, partials []*PartialDecryption) (string, error) {
	m, err := e.FinalDecrypt(ct, partials, e.cfg.Threshold)
	if err != nil {
		return "", err
	}
	return e.PointToMessage(m)
}

// NewDecryptionSession starts a session using the engine threshold
func (e *Engine) NewDecryptionSession() (*DecryptionSession, error) {
	return NewDecryptionSession(e.curve, e.cfg.Threshold)
}

// RandomSecretNode samples a fresh node for index
func (e *Engine) RandomSecretNode(index ParticipantIndex) (*SecretNode, error) {
	node, err := RandomNode(e.curve, index, e.cfg.Threshold, e.cfg.Total)
	if err != nil {
		return nil, e.fail("random_secret_node", err, zap.Uint32("index", uint32(index)))
	}
	return node, nil
}

// SecretNodeFromSeed derives the node for index from seed
func (e *Engine) SecretNodeFromSeed(seed []byte, index ParticipantIndex) (*SecretNode, error) {
	node, err := NodeFromSeed(e.curve, seed, index, e.cfg.Threshold, e.cfg.Total)
	if err != nil {
		return nil, e.fail("secret_node_from_seed", err, zap.Uint32("index", uint32(index)))
	}
	return node, nil
}

// ImportSecretNode parses an exported node and checks it fits this engine
func (e *Engine) ImportSecretNode(data []byte) (*SecretNode, error) {
	node, err := ImportNode(data)
	if err != nil {
		return nil, e.fail("import_secret_node", err)
	}
	if err := e.checkNode(node); err != nil {
		node.Zeroize()
		return nil, e.fail("import_secret_node", ErrMalformedKeyMaterial.WithCause(err))
	}
	return node, nil
}

// Keygen runs keygen for node and returns its artifacts
func (e *Engine) Keygen(node *SecretNode) (*KeygenResult, error) {
	if err := e.checkNode(node); err != nil {
		return nil, e.fail("keygen", err)
	}

	start := time.Now()
	result, err := Keygen(node)
	if err != nil {
		return nil, e.fail("keygen", err, zap.Uint32("index", uint32(node.ForNode)))
	}

	e.audit.OnKeyGeneration(NewAuditEventBuilder(AuditEventKeyGeneration, ReasonCallerRequest).
		WithCurve(e.curve.Name()).
		WithParty(node.ForNode).
		WithShape(node.Threshold, node.Total).
		BuildKeyGeneration(len(result.Artifacts), time.Since(start)))
	e.logger.Debug("keygen complete",
		zap.Uint32("index", uint32(node.ForNode)),
		zap.Int("artifacts", len(result.Artifacts)))
	return result, nil
}

// VerifyArtifact checks a received artifact
func (e *Engine) VerifyArtifact(artifact *KeygenArtifact) error {
	if err := VerifyArtifact(e.curve, artifact); err != nil {
		return e.fail("verify_artifact", err)
	}
	return nil
}

// PublicKeyShare returns node's contribution to the shared public key
func (e *Engine) PublicKeyShare(node *SecretNode, artifacts ...*KeygenArtifact) (Point, error) {
	if err := e.checkNode(node); err != nil {
		return nil, e.fail("public_key_share", err)
	}
	share, err := PublicKeyShare(node, artifacts...)
	if err != nil {
		return nil, e.fail("public_key_share", err, zap.Uint32("index", uint32(node.ForNode)))
	}
	return share, nil
}

// SharedPublicKey sums every party's public key share
func (e *Engine) SharedPublicKey(shares []Point) (Point, error) {
	pub, err := SharedPublicKey(e.curve, shares)
	if err != nil {
		return nil, e.fail("shared_public_key", err, zap.Int("shares", len(shares)))
	}
	return pub, nil
}

// PartialDecrypt computes node's partial decryption of c1
func (e *Engine) PartialDecrypt(node *SecretNode, artifacts []*KeygenArtifact, c1 Point) (*PartialDecryption, error) {
	return e.partialDecrypt(node, artifacts, c1, false)
}

// PartialDecryptWithProof is PartialDecrypt with a Chaum-Pedersen proof
func (e *Engine) PartialDecryptWithProof(node *SecretNode, artifacts []*KeygenArtifact, c1 Point) (*PartialDecryption, error) {
	return e.partialDecrypt(node, artifacts, c1, true)
}

func (e *Engine) partialDecrypt(node *SecretNode, artifacts []*KeygenArtifact, c1 Point, withProof bool) (*PartialDecryption, error) {
	if err := e.checkNode(node); err != nil {
		return nil, e.fail("partial_decrypt", err)
	}

	decrypt := PartialDecrypt
	if withProof {
		decrypt = PartialDecryptWithProof
	}
	partial, err := decrypt(node, artifacts, c1)
	if err != nil {
		return nil, e.fail("partial_decrypt", err, zap.Uint32("index", uint32(node.ForNode)))
	}

	e.audit.OnDecryption(NewAuditEventBuilder(AuditEventPartialDecryption, ReasonCallerRequest).
		WithCurve(e.curve.Name()).
		WithParty(node.ForNode).
		WithShape(node.Threshold, node.Total).
		BuildDecryption(0, withProof))
	return partial, nil
}

// VerifyPartialDecryption checks a partial's proof against the commitments
// published by every party during keygen
func (e *Engine) VerifyPartialDecryption(c1 Point, partial *PartialDecryption, commitments []*PolynomialCommitment) error {
	if partial == nil {
		return e.fail("verify_partial", ErrProofVerificationFailed.WithDetails("nil partial"))
	}
	vs, err := VerificationShare(e.curve, commitments, partial.Index)
	if err != nil {
		return e.fail("verify_partial", err)
	}
	if err := VerifyPartialDecryption(e.curve, c1, partial, vs); err != nil {
		return e.fail("verify_partial", err, zap.Uint32("index", uint32(partial.Index)))
	}
	return nil
}

// two-party boundary operations

func (e *Engine) requireTwoParty(op string) error {
	if e.cfg.Total != 2 {
		return e.fail(op, ErrInvalidConfiguration.WithDetails("two-party operation on a %d-party engine", e.cfg.Total))
	}
	return nil
}

// PartyAKeygen derives the Lit node from seed and returns its artifact for
// the Auditor
func (e *Engine) PartyAKeygen(seed []byte) (*KeygenArtifact, error) {
	return e.partyKeygen("party_a_keygen", LitIndex, seed)
}

// PartyBKeygen derives the Auditor node from seed and returns its artifact
// for Lit
func (e *Engine) PartyBKeygen(seed []byte) (*KeygenArtifact, error) {
	return e.partyKeygen("party_b_keygen", AuditorIndex, seed)
}

func (e *Engine) partyKeygen(op string, index ParticipantIndex, seed []byte) (*KeygenArtifact, error) {
	if err := e.requireTwoParty(op); err != nil {
		return nil, err
	}
	party, err := NewParty(e, index, seed)
	if err != nil {
		return nil, err
	}
	defer party.Close()
	return party.Keygen()
}

// PartyAPubkeyShare returns Lit's public key share
func (e *Engine) PartyAPubkeyShare(seed []byte, counterpart *KeygenArtifact) (Point, error) {
	return e.partyPubkeyShare("party_a_pubkey_share", LitIndex, seed, counterpart)
}

// PartyBPubkeyShare returns the Auditor's public key share
func (e *Engine) PartyBPubkeyShare(seed []byte, counterpart *KeygenArtifact) (Point, error) {
	return e.partyPubkeyShare("party_b_pubkey_share", AuditorIndex, seed, counterpart)
}

func (e *Engine) partyPubkeyShare(op string, index ParticipantIndex, seed []byte, counterpart *KeygenArtifact) (Point, error) {
	if err := e.requireTwoParty(op); err != nil {
		return nil, err
	}
	party, err := NewParty(e, index, seed)
	if err != nil {
		return nil, err
	}
	defer party.Close()
	return party.PubkeyShare(counterpart)
}

// PartyADecrypt returns Lit's partial decryption of c1
func (e *Engine) PartyADecrypt(seed []byte, counterpart *KeygenArtifact, c1 Point) (*PartialDecryption, error) {
	if err := e.requireTwoParty("party_a_decrypt"); err != nil {
		return nil, err
	}
	party, err := NewLit(e, seed)
	if err != nil {
		return nil, err
	}
	defer party.Close()
	return party.PartialDecrypt(counterpart, c1)
}

// PartyBDecrypt is the Auditor's combiner: it adds its own partial to Lit's
// and returns the message point
func (e *Engine) PartyBDecrypt(seed []byte, counterpart *KeygenArtifact, ct *Ciphertext, partialA *PartialDecryption) (Point, error) {
	if err := e.requireTwoParty("party_b_decrypt"); err != nil {
		return nil, err
	}
	party, err := NewAuditor(e, seed)
	if err != nil {
		return nil, err
	}
	defer party.Close()
	return party.Decrypt(counterpart, ct, partialA)
}

func partialIndices(partials []*PartialDecryption) []ParticipantIndex {
	out := make([]ParticipantIndex, 0, len(partials))
	for _, p := range partials {
		if p != nil {
			out = append(out, p.Index)
		}
	}
	return out
}
