package heli

import (
	"bytes"
	"strings"
	"testing"
)

func TestLangCountsRoundTrip(t *testing.T) {
	lc := NewLangCounts("eng")
	lc.Add(OrderWord, "the")
	lc.Add(OrderWord, "the")
	lc.Add(OrderWord, "fox")
	lc.Add(Order3, "#th")
	lc.Add(Order3, "the")

	var buf bytes.Buffer
	if err := WriteLangCounts(&buf, lc); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := ReadLangCounts(&buf, "eng")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Total[OrderWord] != 3 {
		t.Errorf("expected word total 3; got %d", got.Total[OrderWord])
	}
	if got.Counts[OrderWord]["the"] != 2 {
		t.Errorf("expected count(the) = 2; got %d", got.Counts[OrderWord]["the"])
	}
	if got.Counts[OrderWord]["fox"] != 1 {
		t.Errorf("expected count(fox) = 1; got %d", got.Counts[OrderWord]["fox"])
	}
	if got.Counts[Order3]["#th"] != 1 || got.Counts[Order3]["the"] != 1 {
		t.Errorf("expected both order-3 keys to round-trip; got %v", got.Counts[Order3])
	}
}

func TestLangCountsWriteIsDeterministic(t *testing.T) {
	lc := NewLangCounts("eng")
	lc.Add(OrderWord, "zebra")
	lc.Add(OrderWord, "apple")

	var buf1, buf2 bytes.Buffer
	WriteLangCounts(&buf1, lc)
	WriteLangCounts(&buf2, lc)
	if buf1.String() != buf2.String() {
		t.Errorf("expected two writes of the same table to be byte-identical")
	}
	aIdx := strings.Index(buf1.String(), "apple")
	zIdx := strings.Index(buf1.String(), "zebra")
	if aIdx < 0 || zIdx < 0 || aIdx > zIdx {
		t.Errorf("expected entries sorted by key (apple before zebra)")
	}
}

func TestLangCountsPrune(t *testing.T) {
	lc := NewLangCounts("eng")
	lc.Counts[OrderWord]["rare"] = 1
	lc.Counts[OrderWord]["common"] = 5
	lc.Prune(2)
	if _, ok := lc.Counts[OrderWord]["rare"]; ok {
		t.Errorf("expected rare to be pruned")
	}
	if _, ok := lc.Counts[OrderWord]["common"]; !ok {
		t.Errorf("expected common to survive pruning")
	}
}

func TestReadLangCountsRejectsMalformed(t *testing.T) {
	if _, err := ReadLangCounts(strings.NewReader("not the right format"), "eng"); err == nil {
		t.Errorf("expected an error for malformed input")
	}
}
