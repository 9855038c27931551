package heli

import "testing"

func TestPaddedRunes(t *testing.T) {
	got := string(PaddedRunes("cat"))
	want := "#cat#"
	if got != want {
		t.Errorf("expected PaddedRunes(%q) = %q; got %q", "cat", want, got)
	}
}

func TestPaddedRunesMultiByte(t *testing.T) {
	padded := PaddedRunes("你好")
	if len(padded) != 4 {
		t.Fatalf("expected 4 runes (pad + 2 CJK + pad); got %d", len(padded))
	}
	if padded[1] != '你' || padded[2] != '好' {
		t.Errorf("expected the padded sequence to preserve whole runes; got %q", string(padded))
	}
}

func TestNumNgrams(t *testing.T) {
	cases := []struct {
		paddedLen, n, want int
	}{
		{5, 1, 5}, {5, 3, 3}, {5, 5, 1}, {5, 6, 0}, {5, 100, 0},
	}
	for _, c := range cases {
		if got := NumNgrams(c.paddedLen, c.n); got != c.want {
			t.Errorf("expected NumNgrams(%d, %d) = %d; got %d", c.paddedLen, c.n, c.want, got)
		}
	}
}

func TestEachNgram(t *testing.T) {
	padded := PaddedRunes("cat")
	var got []string
	k := EachNgram(padded, 3, func(ngram string) { got = append(got, ngram) })
	want := []string{"#ca", "cat", "at#"}
	if k != len(want) {
		t.Fatalf("expected K = %d; got %d", len(want), k)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("expected ngram[%d] = %q; got %q", i, want[i], got[i])
		}
	}
}

func TestEachToken(t *testing.T) {
	var got []string
	EachToken(Preprocess("The quick brown fox"), func(tok string) { got = append(got, tok) })
	want := []string{"the", "quick", "brown", "fox"}
	if len(got) != len(want) {
		t.Fatalf("expected %d tokens; got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("expected token[%d] = %q; got %q", i, want[i], got[i])
		}
	}
}
