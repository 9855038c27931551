package heli

// Model creator T (§4.9): offline counting of raw per-language corpora
// into the plain-text count tables consumed by the binarizer (B).
// Grounded on the teacher's counting style (walk tokens, increment a
// map) generalized from single-order word counting to all seven
// submodel orders at once, reusing Preprocess/Tokens/EachNgram from
// pre.go/ngram.go.

import (
	"bufio"
	"io"
)

// DefaultPruneCutoff is the default minimum count (§4.9 step 3) below
// which a key is dropped before the count table is written out.
const DefaultPruneCutoff = 1

// CountCorpus reads one cleaned-sentence-per-line text corpus from r
// and accumulates word and character n-gram counts (orders 1..6) into
// a fresh LangCounts for code (§4.9 steps 1-2).
func CountCorpus(r io.Reader, code string) (*LangCounts, error) {
	lc := NewLangCounts(code)
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 4*1024*1024)
	for sc.Scan() {
		CountLine(lc, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return lc, nil
}

// CountLine applies preprocessing to one raw line and folds its
// word/n-gram occurrences into lc. Exposed separately from
// CountCorpus so callers with their own line source (e.g. a streaming
// corpus reader) can drive the same counting logic.
func CountLine(lc *LangCounts, line string) {
	pre := Preprocess(line)
	if pre == "" {
		return
	}
	EachToken(pre, func(tok string) {
		lc.Add(OrderWord, tok)
		padded := PaddedRunes(tok)
		for _, o := range backoffOrders {
			width := orderN(o)
			EachNgram(padded, width, func(ngram string) {
				lc.Add(o, ngram)
			})
		}
	})
}

// Finalize prunes lc in place (§4.9 step 3) and returns it, ready to
// be written with WriteLangCounts (§4.9 step 4).
func Finalize(lc *LangCounts, cutoff int64) *LangCounts {
	lc.Prune(cutoff)
	return lc
}
