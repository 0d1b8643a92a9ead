package random

import "testing"

func TestNewSeedIsNonNegative(t *testing.T) {
	seen := make(map[int64]bool)
	for i := 0; i < 32; i++ {
		seed, err := NewSeed()
		if err != nil {
			t.Fatalf("new seed: %v", err)
		}
		if seed < 0 {
			t.Fatalf("seed = %d, want >= 0", seed)
		}
		seen[seed] = true
	}
	if len(seen) < 2 {
		t.Fatalf("seeds repeated: %v", seen)
	}
}
