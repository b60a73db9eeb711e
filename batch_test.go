package elgamal

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBatchRoundTrip(t *testing.T) {
	e := testEngine(t, BabyJubJub, 2, 2)
	d := deal(t, e)

	const n = 12
	messages := make([]Point, n)
	for i := range messages {
		m, err := e.MessageToPoint(fmt.Sprint(i * 1000))
		require.NoError(t, err)
		messages[i] = m
	}

	ciphertexts, err := e.EncryptBatch(context.Background(), messages, d.pub, nil)
	require.NoError(t, err)
	require.Len(t, ciphertexts, n)

	partials := make([][]*PartialDecryption, n)
	for i, ct := range ciphertexts {
		partials[i] = []*PartialDecryption{d.partial(t, e, 2, ct.C1), d.partial(t, e, 1, ct.C1)}
	}

	plain, err := e.DecryptBatch(context.Background(), ciphertexts, partials, 2)
	require.NoError(t, err)
	for i := range plain {
		assert.True(t, plain[i].Equal(messages[i]), "message %d", i)
	}
}

func TestEncryptBatchExplicitNonces(t *testing.T) {
	e := testEngine(t, Ed25519, 2, 2)
	d := deal(t, e)
	m, err := e.MessageToPoint("1")
	require.NoError(t, err)

	nonces := []Scalar{scalarOf(e.Curve(), 10), scalarOf(e.Curve(), 11)}
	out, err := e.EncryptBatch(context.Background(), []Point{m, m}, d.pub, nonces)
	require.NoError(t, err)
	assert.True(t, out[0].C1.Equal(e.Curve().BasePoint().Mul(nonces[0])))

	t.Run("length mismatch", func(t *testing.T) {
		_, err := e.EncryptBatch(context.Background(), []Point{m}, d.pub, nonces)
		assert.ErrorIs(t, err, ErrInvalidNonce)
	})

	t.Run("repeated nonce fails the whole batch", func(t *testing.T) {
		repeat := []Scalar{scalarOf(e.Curve(), 20), scalarOf(e.Curve(), 20)}
		out, err := e.EncryptBatch(context.Background(), []Point{m, m}, d.pub, repeat)
		assert.ErrorIs(t, err, ErrNonceReuseRisk)
		assert.Nil(t, out)
	})
}

func TestBatchCancelled(t *testing.T) {
	e := testEngine(t, BabyJubJub, 2, 2)
	d := deal(t, e)
	m, err := e.MessageToPoint("2")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = e.EncryptBatch(ctx, []Point{m, m, m}, d.pub, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDecryptBatchErrors(t *testing.T) {
	e := testEngine(t, BabyJubJub, 2, 2)
	d := deal(t, e)
	ct, err := e.EncryptMessage("9", d.pub)
	require.NoError(t, err)

	_, err = e.DecryptBatch(context.Background(), []*Ciphertext{ct}, nil, 2)
	assert.ErrorIs(t, err, ErrInsufficientShares)

	_, err = e.DecryptBatch(context.Background(), []*Ciphertext{ct},
		[][]*PartialDecryption{{d.partial(t, e, 1, ct.C1)}}, 2)
	assert.ErrorIs(t, err, ErrInsufficientShares)
}
