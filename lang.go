package heli

import (
	"bufio"
	"fmt"
	"io"
	"sort"
)

// Lang is the index of a language code in the closed registry. It is
// the vector index used throughout the model store and scoring
// engine, so its zero value must never be treated as "no language" —
// use Und/Zxx for the sentinel codes instead.
type Lang uint16

// codes is the closed, alphabetically ordered enumeration of ISO
// 639-3 codes this core can identify, followed by the two sentinel
// codes. Adding a language means rebuilding the binary (§9 "Closed
// language set"): the order here is the vector index shared by every
// submodel, confidence threshold table, and macrolanguage entry.
var codes = []string{
	"ace", "ach", "ady", "aeb", "afr", "agr", "alt", "amh", "ang", "ara",
	"arg", "arn", "arz", "asm", "ast", "ayr", "aze", "bak", "bam", "bcl",
	"bel", "ben", "bik", "bis", "bjn", "bod", "bos", "bre", "bug", "bul",
	"cat", "cbk", "ceb", "ces", "chv", "cjy", "cor", "cos", "crh", "csb",
	"cym", "dan", "deu", "div", "dsb", "egl", "ekk", "ell", "eng", "epo",
	"est", "eus", "ext", "fao", "fas", "fin", "fra", "frp", "fry", "fur",
	"fuv", "gag", "gcf", "gla", "gle", "glg", "glk", "gom", "grc", "grn",
	"gsw", "guj", "hat", "hau", "haw", "hbs", "heb", "hif", "hin", "hrv",
	"hsb", "hun", "hye", "hyw", "ibo", "ido", "ile", "ina", "ind", "isl",
	"ita", "jam", "jav", "jpn", "kaa", "kab", "kal", "kan", "kat", "kaz",
	"kbd", "kea", "kha", "khm", "kin", "kir", "kmr", "kok", "kor", "krc",
	"ksh", "kum", "kur", "lad", "lao", "lat", "lav", "lbe", "lez", "lij",
	"lim", "lin", "lit", "lmo", "ltz", "lug", "luo", "mai", "mal", "mar",
	"mdf", "min", "mkd", "mlg", "mlt", "mon", "mri", "mrj", "msa", "mwl",
	"mya", "myv", "mzn", "nah", "nap", "nav", "nds", "nep", "new", "nia",
	"nld", "nno", "nob", "nor", "nrm", "nso", "oci", "olo", "ori", "orm",
	"oss", "pag", "pam", "pan", "pap", "pcd", "pfl", "pms", "pnb", "pol",
	"por", "pus", "que", "rmy", "roh", "rom", "ron", "rue", "run", "rus",
	"sah", "san", "scn", "sco", "sgs", "shn", "sin", "slk", "slv", "sme",
	"smo", "sna", "snd", "som", "sot", "spa", "sqi", "srd", "srn", "srp",
	"stq", "sun", "swa", "swe", "szl", "tam", "tat", "tcy", "tel", "tet",
	"tgk", "tgl", "tha", "tir", "ton", "tsn", "tuk", "tur", "twi", "tyv",
	"udm", "uig", "ukr", "urd", "uzb", "vec", "ven", "vep", "vie", "vls",
	"vol", "vro", "war", "wbm", "wln", "wol", "wuu", "xal", "xho", "xmf",
	"yid", "yor", "yue", "zea", "zha", "zho", "zul",
}

// Sentinel codes. They occupy the last two vector slots, never appear
// as training keys, and are the only labels emitted outside the
// registry proper.
const (
	undCode = "und" // below-threshold: no language scored above its confidence threshold.
	zxxCode = "zxx" // no identifiable (alphabetic) content.
)

// Registry is the closed, ordered enumeration L of language codes plus
// the sentinel codes Und and Zxx. A Registry is immutable after
// construction and safe for concurrent read-only use.
type Registry struct {
	code2lang map[string]Lang
	lang2code []string
	und, zxx  Lang
}

// NewRegistry builds the full, compile-time registry.
func NewRegistry() *Registry {
	all := append(append([]string{}, codes...), undCode, zxxCode)
	r := &Registry{
		code2lang: make(map[string]Lang, len(all)),
		lang2code: all,
	}
	for i, c := range all {
		r.code2lang[c] = Lang(i)
	}
	r.und = r.code2lang[undCode]
	r.zxx = r.code2lang[zxxCode]
	return r
}

// Subset builds a registry containing only the given codes (plus the
// sentinels, always included), remapping indices densely from 0. This
// backs the plain-text model's --relevant-langs mode (§9); binary
// images always use NewRegistry's full set.
func (r *Registry) Subset(wanted []string) (*Registry, error) {
	seen := make(map[string]bool, len(wanted))
	var picked []string
	for _, c := range wanted {
		if c == undCode || c == zxxCode {
			continue
		}
		if _, ok := r.code2lang[c]; !ok {
			return nil, fmt.Errorf("heli: unknown language code %q in relevant-langs", c)
		}
		if !seen[c] {
			seen[c] = true
			picked = append(picked, c)
		}
	}
	sort.Strings(picked)
	picked = append(picked, undCode, zxxCode)
	sub := &Registry{
		code2lang: make(map[string]Lang, len(picked)),
		lang2code: picked,
	}
	for i, c := range picked {
		sub.code2lang[c] = Lang(i)
	}
	sub.und = sub.code2lang[undCode]
	sub.zxx = sub.code2lang[zxxCode]
	return sub, nil
}

// NumLangs returns |L| including the two sentinel entries.
func (r *Registry) NumLangs() int { return len(r.lang2code) }

// LangIndex looks up the vector index of a code. ok is false if code
// is not in the registry.
func (r *Registry) LangIndex(code string) (Lang, bool) {
	l, ok := r.code2lang[code]
	return l, ok
}

// CodeOf returns the code for a vector index. Panics if out of range,
// matching the teacher's bounds-unsafe StringOf (§7: "all array
// accesses are bounds-safe" refers to scoring, not this debug path).
func (r *Registry) CodeOf(l Lang) string { return r.lang2code[l] }

// Und is the sentinel index for "below confidence threshold".
func (r *Registry) Und() Lang { return r.und }

// Zxx is the sentinel index for "no identifiable content".
func (r *Registry) Zxx() Lang { return r.zxx }

// Codes returns the ordered list of real (non-sentinel) language
// codes.
func (r *Registry) Codes() []string {
	return append([]string{}, r.lang2code[:len(r.lang2code)-2]...)
}

// WriteLanguageList writes the optional "languagelist" text file of a
// binary model image: one code per line, in registry order, sentinels
// included.
func (r *Registry) WriteLanguageList(w io.Writer) error {
	bw := bufio.NewWriter(w)
	for _, c := range r.lang2code {
		if _, err := fmt.Fprintln(bw, c); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// ReadLanguageList reconstructs a Registry from a "languagelist" file
// previously written by WriteLanguageList. The sentinels must be the
// last two lines.
func ReadLanguageList(r io.Reader) (*Registry, error) {
	sc := bufio.NewScanner(r)
	var all []string
	for sc.Scan() {
		if line := sc.Text(); line != "" {
			all = append(all, line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(all) < 2 || all[len(all)-2] != undCode || all[len(all)-1] != zxxCode {
		return nil, fmt.Errorf("heli: languagelist must end with %q, %q", undCode, zxxCode)
	}
	reg := &Registry{code2lang: make(map[string]Lang, len(all)), lang2code: all}
	for i, c := range all {
		reg.code2lang[c] = Lang(i)
	}
	reg.und = reg.code2lang[undCode]
	reg.zxx = reg.code2lang[zxxCode]
	return reg, nil
}

// Macrotable collapses fine-grained codes into parent codes when
// producing top-k output (§4.8). The zero value is an empty table
// (no collapsing).
type Macrotable struct {
	parent map[Lang]Lang
}

// NewMacrotable builds a table from child->parent code pairs, resolved
// against reg.
func NewMacrotable(reg *Registry, pairs map[string]string) (*Macrotable, error) {
	m := &Macrotable{parent: make(map[Lang]Lang, len(pairs))}
	for child, parent := range pairs {
		c, ok := reg.LangIndex(child)
		if !ok {
			return nil, fmt.Errorf("heli: macrolanguage table: unknown child code %q", child)
		}
		p, ok := reg.LangIndex(parent)
		if !ok {
			return nil, fmt.Errorf("heli: macrolanguage table: unknown parent code %q", parent)
		}
		m.parent[c] = p
	}
	return m, nil
}

// Collapse replaces each child code in ranked (best-first) with its
// parent, deduplicating by keeping the best-ranked occurrence. The
// result may be shorter than ranked.
func (m *Macrotable) Collapse(ranked []Lang) []Lang {
	if m == nil || len(m.parent) == 0 {
		return ranked
	}
	out := make([]Lang, 0, len(ranked))
	seen := make(map[Lang]bool, len(ranked))
	for _, l := range ranked {
		r := l
		if p, ok := m.parent[l]; ok {
			r = p
		}
		if !seen[r] {
			seen[r] = true
			out = append(out, r)
		}
	}
	return out
}
