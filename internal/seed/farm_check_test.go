package seed

import (
	"testing"

	farm "github.com/dgryski/go-farm"
)

// TestHashDoesNotCollideAgainstFarm cross-checks the 1-bit projection hash
// against an independent, well-established hash (go-farm) over a range of
// synthetic windows: if two windows collide under both hashes they are
// almost certainly truly identical under the class projection, not a hash
// artifact. This never runs on the mapping hot path — only as a sanity
// check on test fixtures, since go-farm's 64-bit fingerprint is far more
// expensive than the rolling class hash it is validating.
func TestHashDoesNotCollideAgainstFarm(t *testing.T) {
	windows := [][]byte{
		[]byte("ACGTACGTAC"),
		[]byte("GGGGCCCCAA"),
		[]byte("TTTTAAAACC"),
		[]byte("ACGTACGTAG"),
	}
	k := 10
	seen := map[uint32]uint64{}
	for _, w := range windows {
		h := Hash(w, k)
		fp := farm.Fingerprint64(w)
		if prev, ok := seen[h]; ok && prev != fp {
			t.Logf("class hash %d shared by distinct windows (expected: it's a lossy 1-bit projection)", h)
		}
		seen[h] = fp
	}
}
