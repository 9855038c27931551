package heli

import (
	"strings"
	"testing"
)

func TestCountLine(t *testing.T) {
	lc := NewLangCounts("eng")
	CountLine(lc, "the cat sat")
	if lc.Total[OrderWord] != 3 {
		t.Errorf("expected 3 words counted; got %d", lc.Total[OrderWord])
	}
	if lc.Counts[OrderWord]["the"] != 1 {
		t.Errorf("expected count(the) = 1; got %d", lc.Counts[OrderWord]["the"])
	}
	// "cat" padded is "#cat#"; its order-3 n-grams are #ca, cat, at#.
	if lc.Counts[Order3]["cat"] != 1 {
		t.Errorf("expected the order-3 ngram %q to be counted once; got %d", "cat", lc.Counts[Order3]["cat"])
	}
}

func TestCountLineIgnoresNonAlphabetic(t *testing.T) {
	lc := NewLangCounts("eng")
	CountLine(lc, "123 !!!")
	if lc.Total[OrderWord] != 0 {
		t.Errorf("expected no words counted from non-alphabetic input; got %d", lc.Total[OrderWord])
	}
}

func TestCountCorpusAndFinalize(t *testing.T) {
	corpus := "the cat sat\nthe dog ran\n"
	lc, err := CountCorpus(strings.NewReader(corpus), "eng")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if lc.Counts[OrderWord]["the"] != 2 {
		t.Errorf("expected count(the) = 2; got %d", lc.Counts[OrderWord]["the"])
	}
	Finalize(lc, 2)
	if _, ok := lc.Counts[OrderWord]["cat"]; ok {
		t.Errorf("expected singleton %q to be pruned at cutoff 2", "cat")
	}
	if lc.Counts[OrderWord]["the"] != 2 {
		t.Errorf("expected %q to survive pruning", "the")
	}
}
