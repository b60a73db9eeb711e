package elgamal

import (
	"testing"
)

func TestNonceTracker(t *testing.T) {
	curve, err := NewCurve(BabyJubJub)
	if err != nil {
		t.Fatal(err)
	}
	pub := curve.BasePoint().Mul(scalarOf(curve, 77))

	tracker, err := NewNonceTracker(2)
	if err != nil {
		t.Fatalf("NewNonceTracker failed: %v", err)
	}

	n1 := scalarOf(curve, 1)
	n2 := scalarOf(curve, 2)
	n3 := scalarOf(curve, 3)

	if err := tracker.Observe(pub, n1); err != nil {
		t.Fatalf("first use rejected: %v", err)
	}
	if err := tracker.Observe(pub, n1); err == nil {
		t.Fatal("reuse accepted")
	}

	tracker.Forget(pub, n1)
	if err := tracker.Observe(pub, n1); err != nil {
		t.Fatalf("forgotten nonce rejected: %v", err)
	}

	// capacity 2: n1 is evicted once two newer pairs arrive
	_ = tracker.Observe(pub, n2)
	_ = tracker.Observe(pub, n3)
	if tracker.Len() != 2 {
		t.Errorf("expected 2 tracked pairs, got %d", tracker.Len())
	}
	if err := tracker.Observe(pub, n1); err != nil {
		t.Errorf("evicted nonce should be accepted again: %v", err)
	}

	if _, err := NewNonceTracker(0); err == nil {
		t.Error("zero-size tracker accepted")
	}
}

func TestRandomNonce(t *testing.T) {
	for _, ct := range allCurves {
		curve, err := NewCurve(ct)
		if err != nil {
			t.Fatal(err)
		}
		a, err := RandomNonce(curve)
		if err != nil {
			t.Fatalf("%s: RandomNonce failed: %v", ct, err)
		}
		b, err := RandomNonce(curve)
		if err != nil {
			t.Fatalf("%s: RandomNonce failed: %v", ct, err)
		}
		if a.IsZero() || a.Equal(b) {
			t.Errorf("%s: nonces should be non-zero and distinct", ct)
		}
	}
}
