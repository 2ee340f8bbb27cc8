package rng

import "testing"

func TestSkipListLevelBounds(t *testing.T) {
	s := New(1)
	for i := 0; i < 10000; i++ {
		lvl := s.SkipListLevel(16)
		if lvl < 1 || lvl > 16 {
			t.Fatalf("level %d out of bounds [1,16]", lvl)
		}
	}
}

func TestSkipListLevelDistribution(t *testing.T) {
	s := New(2)
	const n = 200000
	const maxLevel = 20
	counts := make([]int, maxLevel+1)
	for i := 0; i < n; i++ {
		counts[s.SkipListLevel(maxLevel)]++
	}
	// P(level >= l) should converge to 2^-(l-1) (§8 property 10).
	atLeast := make([]float64, maxLevel+2)
	for l := maxLevel; l >= 1; l-- {
		atLeast[l] = atLeast[l+1] + float64(counts[l])/float64(n)
	}
	for l := 1; l <= 6; l++ {
		want := 1.0 / float64(int(1)<<uint(l-1))
		got := atLeast[l]
		if got < want*0.8 || got > want*1.25 {
			t.Fatalf("level >= %d: got %.4f, want ~%.4f", l, got, want)
		}
	}
}

func TestUint64Varies(t *testing.T) {
	s := New(3)
	a := s.Uint64()
	b := s.Uint64()
	if a == b {
		t.Fatal("consecutive draws should differ with overwhelming probability")
	}
}
