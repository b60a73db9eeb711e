package elgamal

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/require"
)

var allCurves = []CurveType{BabyJubJub, Secp256k1, Ed25519}

func mustCurve(t *testing.T, ct CurveType) Curve {
	t.Helper()
	c, err := NewCurve(ct)
	require.NoError(t, err)
	return c
}

func mustHex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	require.NoError(t, err)
	return b
}

func testEngine(t *testing.T, ct CurveType, threshold, total int, opts ...Option) *Engine {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Curve = ct
	cfg.Threshold = threshold
	cfg.Total = total
	e, err := NewEngine(cfg, opts...)
	require.NoError(t, err)
	return e
}

// dealing is the outcome of a full keygen among every party of an engine
type dealing struct {
	nodes       []*SecretNode
	results     []*KeygenResult
	commitments []*PolynomialCommitment
	pubShares   []Point
	pub         Point
}

// inbox returns the artifacts addressed to index
func (d *dealing) inbox(t *testing.T, index ParticipantIndex) []*KeygenArtifact {
	t.Helper()
	var out []*KeygenArtifact
	for _, r := range d.results {
		if r.FromNode == index {
			continue
		}
		a, err := r.ArtifactFor(index)
		require.NoError(t, err)
		out = append(out, a)
	}
	return out
}

func deal(t *testing.T, e *Engine) *dealing {
	t.Helper()
	total := e.Config().Total
	d := &dealing{}
	for i := 1; i <= total; i++ {
		node, err := e.RandomSecretNode(ParticipantIndex(i))
		require.NoError(t, err)
		result, err := e.Keygen(node)
		require.NoError(t, err)
		require.Len(t, result.Artifacts, total-1)
		d.nodes = append(d.nodes, node)
		d.results = append(d.results, result)
		d.commitments = append(d.commitments, result.Commitment)
	}
	for _, node := range d.nodes {
		share, err := e.PublicKeyShare(node, d.inbox(t, node.ForNode)...)
		require.NoError(t, err)
		d.pubShares = append(d.pubShares, share)
	}
	pub, err := e.SharedPublicKey(d.pubShares)
	require.NoError(t, err)
	d.pub = pub
	return d
}

func (d *dealing) partial(t *testing.T, e *Engine, index ParticipantIndex, c1 Point) *PartialDecryption {
	t.Helper()
	p, err := e.PartialDecrypt(d.nodes[index-1], d.inbox(t, index), c1)
	require.NoError(t, err)
	return p
}
