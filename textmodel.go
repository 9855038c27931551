package heli

// Plain-text training model I/O (§4.4, §6). One file per language,
// `<code>.model`, holding seven sections (word, then 6..1-gram
// character orders), each a `total` line followed by `<count>\t<key>`
// lines. Adapted from the teacher's ARPA reader (arpa.go): the same
// iteratee-style section parser and low-level line/token lexer, with
// ARPA's `\N-grams:` headers replaced by this format's `\word-gram\`
// / `\6-gram\` ... `\1-gram\` section markers.

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/kho/stream"
)

// LangCounts holds one language's raw per-submodel n-gram/word counts,
// as produced by the model creator (T) and consumed by the binarizer
// (B).
type LangCounts struct {
	Code   string
	Total  [numOrders]int64
	Counts [numOrders]map[string]int64
}

// NewLangCounts returns an empty, ready-to-fill LangCounts for code.
func NewLangCounts(code string) *LangCounts {
	lc := &LangCounts{Code: code}
	for _, o := range orders {
		lc.Counts[o] = make(map[string]int64)
	}
	return lc
}

// Add increments the count of key in submodel o by one and bumps that
// submodel's total, used by the model creator while counting a
// corpus.
func (lc *LangCounts) Add(o Order, key string) {
	lc.Counts[o][key]++
	lc.Total[o]++
}

// Prune removes entries with count below cutoff (§4.9 step 3; default
// cutoff 1 keeps everything observed at least once).
func (lc *LangCounts) Prune(cutoff int64) {
	if cutoff <= 1 {
		return
	}
	for _, o := range orders {
		for k, c := range lc.Counts[o] {
			if c < cutoff {
				delete(lc.Counts[o], k)
			}
		}
	}
}

func sectionHeader(o Order) string {
	switch o {
	case OrderWord:
		return `\word-gram\`
	default:
		return fmt.Sprintf(`\%d-gram\`, orderN(o))
	}
}

// WriteLangCounts writes lc in the plain-text format to w, one
// section per submodel in the canonical order (word, 6..1), entries
// sorted by key for a deterministic, diffable output (§4.4
// "Binarization ... emission order is deterministic").
func WriteLangCounts(w io.Writer, lc *LangCounts) error {
	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintln(bw, `\model\`); err != nil {
		return err
	}
	for _, o := range orders {
		if _, err := fmt.Fprintln(bw, sectionHeader(o)); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(bw, "total\t%d\n", lc.Total[o]); err != nil {
			return err
		}
		keys := make([]string, 0, len(lc.Counts[o]))
		for k := range lc.Counts[o] {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if _, err := fmt.Fprintf(bw, "%d\t%s\n", lc.Counts[o][k], k); err != nil {
				return err
			}
		}
	}
	if _, err := fmt.Fprintln(bw, `\end\`); err != nil {
		return err
	}
	return bw.Flush()
}

// ReadLangCounts parses the plain-text format written by
// WriteLangCounts (or produced directly by an external model creator
// run).
func ReadLangCounts(r io.Reader, code string) (*LangCounts, error) {
	lc := NewLangCounts(code)
	top := textModelTop{lc}
	if err := stream.Run(stream.EnumRead(r, lineSplit), top); err != nil {
		return nil, fmt.Errorf("heli: parsing model for %s: %w", code, err)
	}
	return lc, nil
}

// textModelTop is the top-level iteratee, mirroring the teacher's
// arpaTop.
type textModelTop struct {
	lc *LangCounts
}

func (it textModelTop) Final() error { return stream.Match(`\model\`).Final() }
func (it textModelTop) Next(line []byte) (stream.Iteratee, bool, error) {
	return stream.Seq{
		stream.Match(`\model\`),
		textModelSections{it.lc, 0},
		stream.Match(`\end\`),
		stream.EOF}, false, nil
}

// textModelSections consumes the seven fixed-order sections in turn.
type textModelSections struct {
	lc *LangCounts
	i  int
}

func (it textModelSections) Final() error {
	if it.i == numOrders {
		return nil
	}
	return stream.ErrExpect(fmt.Sprintf("section header %q", sectionHeader(orders[it.i])))
}
func (it textModelSections) Next(line []byte) (stream.Iteratee, bool, error) {
	if it.i >= numOrders {
		return nil, false, nil
	}
	o := orders[it.i]
	if string(line) != sectionHeader(o) {
		return nil, false, stream.ErrExpect(fmt.Sprintf("section header %q", sectionHeader(o)))
	}
	return stream.Seq{
		textModelTotal{it.lc, o},
		stream.Star{textModelEntries{it.lc, o}},
		textModelSections{it.lc, it.i + 1},
	}, true, nil
}

// textModelTotal reads the mandatory "total\t<N>" line of a section.
type textModelTotal struct {
	lc *LangCounts
	o  Order
}

func (it textModelTotal) Final() error { return stream.ErrExpect(`"total\t<N>"`) }
func (it textModelTotal) Next(line []byte) (stream.Iteratee, bool, error) {
	tok, rest := tokenSplit(line)
	if tok != "total" {
		return nil, false, stream.ErrExpect(`"total\t<N>"`)
	}
	numTok, _ := tokenSplit(rest)
	n, err := strconv.ParseInt(numTok, 10, 64)
	if err != nil {
		return nil, false, stream.ErrExpect("integer total")
	}
	it.lc.Total[it.o] = n
	return nil, false, nil
}

// textModelEntries consumes zero or more "<count>\t<key>" lines until
// the next section header or `\end\`.
type textModelEntries struct {
	lc *LangCounts
	o  Order
}

func (it textModelEntries) Final() error { return nil }
func (it textModelEntries) Next(line []byte) (stream.Iteratee, bool, error) {
	if len(line) > 0 && line[0] == '\\' {
		return nil, false, nil
	}
	countTok, rest := tokenSplit(line)
	count, err := strconv.ParseInt(countTok, 10, 64)
	if err != nil {
		return nil, false, stream.ErrExpect("integer count")
	}
	key, _ := tokenSplit(rest)
	if key == "" {
		return nil, false, stream.ErrExpect("n-gram or word key")
	}
	it.lc.Counts[it.o][key] = count
	return it, true, nil
}
