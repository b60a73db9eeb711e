package elgamal

import (
	"bytes"
	"encoding/binary"
	"io"

	"golang.org/x/crypto/hkdf"
)

// MinSeedLength is the shortest seed NodeFromSeed accepts
const MinSeedLength = 16

// nodeMagic prefixes exported secret nodes
var nodeMagic = []byte("TEN1")

const nodeHeaderSize = 4 + 1 + 4 + 2 + 2

// SecretNode is one party's secret: the coefficients of its sharing
// polynomial, lowest degree first. Value[0] is the party's secret.
type SecretNode struct {
	Curve     Curve
	ForNode   ParticipantIndex
	Threshold int
	Total     int
	Value     []Scalar
}

func validateNodeShape(forNode ParticipantIndex, threshold, total int) error {
	if total < 1 || total > MaxParticipants {
		return ErrInvalidThreshold.WithDetails("total %d outside [1, %d]", total, MaxParticipants)
	}
	if threshold < 1 || threshold > total {
		return ErrInvalidThreshold.WithDetails("threshold %d outside [1, %d]", threshold, total)
	}
	if forNode < 1 || int(forNode) > total {
		return ErrInvalidParticipantID.WithDetails("index %d outside [1, %d]", forNode, total)
	}
	return nil
}

// NodeFromSeed derives a node deterministically: the same seed, index and
// shape always give the same coefficients
func NodeFromSeed(curve Curve, seed []byte, forNode ParticipantIndex, threshold, total int) (*SecretNode, error) {
	if len(seed) < MinSeedLength {
		return nil, ErrMalformedKeyMaterial.WithDetails("seed must be at least %d bytes", MinSeedLength)
	}
	if err := validateNodeShape(forNode, threshold, total); err != nil {
		return nil, err
	}

	coefficients := make([]Scalar, threshold)
	for k := 0; k < threshold; k++ {
		coeff, err := coefficientFromSeed(curve, seed, uint32(k), uint32(threshold))
		if err != nil {
			ZeroizeScalarSlice(coefficients[:k])
			return nil, err
		}
		coefficients[k] = coeff
	}

	return &SecretNode{
		Curve:     curve,
		ForNode:   forNode,
		Threshold: threshold,
		Total:     total,
		Value:     coefficients,
	}, nil
}

// coefficientFromSeed expands the seed with HKDF over BLAKE2b-512 into 64
// bytes per coefficient
func coefficientFromSeed(curve Curve, seed []byte, k, threshold uint32) (Scalar, error) {
	salt := append([]byte(domainSeed), []byte(curve.Name())...)

	info := make([]byte, 0, len("coefficient")+8)
	info = append(info, "coefficient"...)
	info = binary.BigEndian.AppendUint32(info, k)
	info = binary.BigEndian.AppendUint32(info, threshold)

	reader := hkdf.New(newHash, seed, salt, info)
	scalarBytes := make([]byte, 64)
	defer ZeroizeBytes(scalarBytes)
	if _, err := io.ReadFull(reader, scalarBytes); err != nil {
		return nil, ErrMalformedKeyMaterial.WithCause(err)
	}

	return curve.ScalarFromUniformBytes(scalarBytes)
}

// RandomNode draws every coefficient from crypto/rand
func RandomNode(curve Curve, forNode ParticipantIndex, threshold, total int) (*SecretNode, error) {
	if err := validateNodeShape(forNode, threshold, total); err != nil {
		return nil, err
	}

	coefficients := make([]Scalar, threshold)
	for k := range coefficients {
		coeff, err := curve.ScalarRandom()
		if err != nil {
			ZeroizeScalarSlice(coefficients[:k])
			return nil, ErrRandomnessGeneration.WithCause(err)
		}
		coefficients[k] = coeff
	}

	return &SecretNode{
		Curve:     curve,
		ForNode:   forNode,
		Threshold: threshold,
		Total:     total,
		Value:     coefficients,
	}, nil
}

// Polynomial returns the node's sharing polynomial. It shares the node's
// scalars, so zeroizing it zeroizes the node.
func (n *SecretNode) Polynomial() (*Polynomial, error) {
	return NewPolynomial(n.Curve, n.Value)
}

// Commitment returns the public Feldman commitments to the node's polynomial
func (n *SecretNode) Commitment() (*PolynomialCommitment, error) {
	poly, err := n.Polynomial()
	if err != nil {
		return nil, err
	}
	return poly.Commit(), nil
}

// Export serializes the node:
// "TEN1" | curve id | forNode u32 | threshold u16 | total u16 | scalars
func (n *SecretNode) Export() ([]byte, error) {
	if len(n.Value) != n.Threshold {
		return nil, ErrMalformedKeyMaterial.WithDetails("%d coefficients for threshold %d", len(n.Value), n.Threshold)
	}
	if err := validateNodeShape(n.ForNode, n.Threshold, n.Total); err != nil {
		return nil, ErrMalformedKeyMaterial.WithCause(err)
	}

	size := n.Curve.ScalarSize()
	out := make([]byte, 0, nodeHeaderSize+n.Threshold*size)
	out = append(out, nodeMagic...)
	out = append(out, n.Curve.ID())
	out = binary.BigEndian.AppendUint32(out, uint32(n.ForNode))
	out = binary.BigEndian.AppendUint16(out, uint16(n.Threshold))
	out = binary.BigEndian.AppendUint16(out, uint16(n.Total))
	for _, c := range n.Value {
		out = append(out, c.Bytes()...)
	}
	return out, nil
}

// ImportNode parses the output of Export. Any deviation from the format is
// rejected with ErrMalformedKeyMaterial.
func ImportNode(data []byte) (*SecretNode, error) {
	if len(data) < nodeHeaderSize {
		return nil, ErrMalformedKeyMaterial.WithDetails("truncated header")
	}
	if !bytes.Equal(data[:4], nodeMagic) {
		return nil, ErrMalformedKeyMaterial.WithDetails("bad magic")
	}

	curve, err := curveByID(data[4])
	if err != nil {
		return nil, ErrMalformedKeyMaterial.WithCause(err)
	}

	forNode := ParticipantIndex(binary.BigEndian.Uint32(data[5:9]))
	threshold := int(binary.BigEndian.Uint16(data[9:11]))
	total := int(binary.BigEndian.Uint16(data[11:13]))
	if err := validateNodeShape(forNode, threshold, total); err != nil {
		return nil, ErrMalformedKeyMaterial.WithCause(err)
	}

	size := curve.ScalarSize()
	body := data[nodeHeaderSize:]
	if len(body) != threshold*size {
		return nil, ErrMalformedKeyMaterial.WithDetails("expected %d coefficient bytes, got %d", threshold*size, len(body))
	}

	coefficients := make([]Scalar, threshold)
	for k := range coefficients {
		c, err := curve.ScalarFromBytes(body[k*size : (k+1)*size])
		if err != nil {
			ZeroizeScalarSlice(coefficients[:k])
			return nil, ErrMalformedKeyMaterial.WithCause(err).WithContext("coefficient", k)
		}
		coefficients[k] = c
	}

	return &SecretNode{
		Curve:     curve,
		ForNode:   forNode,
		Threshold: threshold,
		Total:     total,
		Value:     coefficients,
	}, nil
}

// Zeroize clears the node's coefficients
func (n *SecretNode) Zeroize() {
	ZeroizeScalarSlice(n.Value)
	n.Value = nil
}
