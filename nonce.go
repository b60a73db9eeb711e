package elgamal

import (
	"encoding/hex"

	lru "github.com/hashicorp/golang-lru"
)

// NonceTracker remembers (public key, nonce) pairs used for encryption so a
// repeat can be refused. Only digests are stored.
type NonceTracker struct {
	cache *lru.Cache
}

// NewNonceTracker keeps up to size recent digests
func NewNonceTracker(size int) (*NonceTracker, error) {
	cache, err := lru.New(size)
	if err != nil {
		return nil, ErrInvalidConfiguration.WithCause(err)
	}
	return &NonceTracker{cache: cache}, nil
}

func nonceDigest(pub Point, nonce Scalar) string {
	h := newHash()
	h.Write([]byte(domainNonce))
	h.Write(pub.Bytes())
	nb := nonce.Bytes()
	h.Write(nb)
	ZeroizeBytes(nb)
	return hex.EncodeToString(h.Sum(nil))
}

// Observe records the pair and fails with ErrNonceReuseRisk when it has been
// seen before
func (t *NonceTracker) Observe(pub Point, nonce Scalar) error {
	if found, _ := t.cache.ContainsOrAdd(nonceDigest(pub, nonce), struct{}{}); found {
		return ErrNonceReuseRisk
	}
	return nil
}

// Forget drops a pair, used when the encryption it guarded did not happen
func (t *NonceTracker) Forget(pub Point, nonce Scalar) {
	t.cache.Remove(nonceDigest(pub, nonce))
}

// Len returns the number of remembered pairs
func (t *NonceTracker) Len() int {
	return t.cache.Len()
}

// RandomNonceBytes is the amount of randomness reduced into each nonce
const RandomNonceBytes = 64

// RandomNonce draws a uniformly distributed non-zero scalar
func RandomNonce(curve Curve) (Scalar, error) {
	for {
		buf, err := SecureRandom(RandomNonceBytes)
		if err != nil {
			return nil, ErrRandomnessGeneration.WithCause(err)
		}
		nonce, err := curve.ScalarFromUniformBytes(buf)
		ZeroizeBytes(buf)
		if err != nil {
			return nil, err
		}
		if !nonce.IsZero() {
			return nonce, nil
		}
	}
}
