package elgamal

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// EncryptBatch encrypts independent messages in parallel, bounded by
// Config.Parallelism. With nonces nil each message gets a fresh random
// nonce. Either every ciphertext is returned or none.
func (e *Engine) EncryptBatch(ctx context.Context, messages []Point, pub Point, nonces []Scalar) ([]*Ciphertext, error) {
	if nonces != nil && len(nonces) != len(messages) {
		return nil, e.fail("encrypt_batch", ErrInvalidNonce.WithDetails("%d nonces for %d messages", len(nonces), len(messages)))
	}

	out := make([]*Ciphertext, len(messages))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.Parallelism)

	for i := range messages {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			var nonce Scalar
			if nonces != nil {
				nonce = nonces[i]
			} else {
				n, err := e.RandomNonce()
				if err != nil {
					return err
				}
				defer n.Zeroize()
				nonce = n
			}

			ct, err := e.EncryptWithNonce(messages[i], pub, nonce)
			if err != nil {
				return err
			}
			out[i] = ct
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	e.logger.Debug("batch encrypted", zap.Int("messages", len(messages)))
	return out, nil
}

// DecryptBatch combines the partials of each ciphertext in parallel.
// partials[i] belongs to ciphertexts[i].
func (e *Engine) DecryptBatch(ctx context.Context, ciphertexts []*Ciphertext, partials [][]*PartialDecryption, threshold int) ([]Point, error) {
	if len(partials) != len(ciphertexts) {
		return nil, e.fail("decrypt_batch", ErrInsufficientShares.WithDetails("%d partial sets for %d ciphertexts", len(partials), len(ciphertexts)))
	}

	out := make([]Point, len(ciphertexts))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.Parallelism)

	for i := range ciphertexts {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			m, err := e.FinalDecrypt(ciphertexts[i], partials[i], threshold)
			if err != nil {
				return err
			}
			out[i] = m
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
