package fourbit

import "testing"

func TestEncodeCompareLaw(t *testing.T) {
	bases := []byte{'A', 'C', 'G', 'T'}
	exact := func(x, y byte) bool { return x == y }
	tolerant := func(x, y byte, aRich bool) bool {
		if !aRich {
			return exact(x, y) || (x == 'T' && y == 'C')
		}
		return exact(x, y) || (x == 'A' && y == 'G')
	}

	for _, readBase := range bases {
		for _, genomeBase := range bases {
			g := EncodeGenomeBase(genomeBase)
			for _, aRich := range []bool{false, true} {
				r := EncodeReadBase(readBase, aRich)
				match := r&g != 0
				want := tolerant(readBase, genomeBase, aRich)
				if match != want {
					t.Errorf("aRich=%v read=%c genome=%c: match=%v want=%v", aRich, readBase, genomeBase, match, want)
				}
			}
		}
	}
}

func TestEncodeNAlwaysMismatches(t *testing.T) {
	g := EncodeGenomeBase('N')
	if g != 0 {
		t.Fatalf("N genome code = %d, want 0", g)
	}
	for _, b := range []byte{'A', 'C', 'G', 'T'} {
		if EncodeReadBase(b, false)&g != 0 {
			t.Fatalf("base %c matched genome N", b)
		}
	}
}

func TestPackGenomeRoundTrip(t *testing.T) {
	seq := []byte("ACGTACGTA")
	g := PackGenome(seq)
	for i, b := range seq {
		want := EncodeGenomeBase(b)
		if got := g.Base(i); got != want {
			t.Errorf("Base(%d) = %d, want %d", i, got, want)
		}
	}
}

func TestReadLayoutParity(t *testing.T) {
	seq := []byte("ACGTAC")
	r := Encode(seq, false)
	if len(r.Layout(0)) != len(r.Even) {
		t.Fatal("even pos should select Even layout")
	}
	if len(r.Layout(1)) != len(r.Odd) {
		t.Fatal("odd pos should select Odd layout")
	}
}
