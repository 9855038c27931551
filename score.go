package heli

// Scoring engine S (§4.5): the HeLI backoff cascade. Grounded on the
// teacher's cmd/score/score.go hot loop shape (walk tokens, accumulate
// a Weight, special-case OOV) generalized from a single best path to a
// dense per-language accumulator, so that — per §9 "no per-language
// branches in the hot loop" — the add-to-vector step is a plain
// elementwise add with no per-language conditional logic.

import (
	"sort"
	"unicode/utf8"
)

// Candidate is one ranked language with its average penalty (§3
// "Batch and result").
type Candidate struct {
	Lang  Lang
	Score float64
}

// Result is the outcome of identifying one line (§3 "Batch and
// result").
type Result struct {
	Label      Lang        // chosen label: a real language, Und, or Zxx
	Best       Lang        // best-scoring real language (undefined if Label == Zxx)
	Score      float64     // score[Best]: average penalty, lower is better
	Confidence float64     // MaxOverall - Score[Best]; non-negative, higher is better
	TopK       []Candidate // optional, ascending-score order; nil unless requested
}

// Scorer holds a Model reference plus the per-worker scratch buffers
// the scoring engine reuses across calls (§5 "per-thread temporaries
// ... allocated once per worker and reused across lines to avoid
// per-line allocation pressure"). A Scorer is not safe for concurrent
// use; the parallel pipeline allocates one per worker.
type Scorer struct {
	model    *Model
	total    []float64 // running per-language sum across scored tokens
	orderAcc []float64 // per-order accumulator, reused across tokens and orders
	maxOver  Penalty
}

// NewScorer creates a Scorer bound to m. m may be shared by any number
// of Scorers across goroutines (§5 "shared by immutable reference").
func NewScorer(m *Model) *Scorer {
	n := m.NumLangs()
	s := &Scorer{
		model:    m,
		total:    make([]float64, n),
		orderAcc: make([]float64, n),
	}
	for _, o := range orders {
		if mx := m.MaxPenalty(o); mx > s.maxOver {
			s.maxOver = mx
		}
	}
	return s
}

// score runs the backoff cascade over a preprocessed text and returns
// the number of scored tokens S (§4.5). s.total holds the summed (not
// yet averaged) per-language penalties on return.
func (s *Scorer) score(preprocessed string) int {
	n := len(s.total)
	for i := range s.total {
		s.total[i] = 0
	}
	scored := 0
	for _, tok := range Tokens(preprocessed) {
		if vec, ok := s.model.Lookup(OrderWord, tok); ok {
			addVec(s.total, vec)
			scored++
			continue
		}
		padded := PaddedRunes(tok)
	orderLoop:
		for _, o := range backoffOrders {
			width := orderN(o)
			k := NumNgrams(len(padded), width)
			if k == 0 {
				continue
			}
			for i := 0; i < n; i++ {
				s.orderAcc[i] = 0
			}
			hit := false
			EachNgram(padded, width, func(ngram string) {
				if vec, ok := s.model.Lookup(o, ngram); ok {
					addVec(s.orderAcc, vec)
					hit = true
				} else {
					addScalar(s.orderAcc, s.model.MaxPenalty(o))
				}
			})
			if !hit {
				// every n-gram at this order missed the submodel entirely;
				// back off to the next lower order instead of adopting it.
				continue
			}
			scale := 1.0 / float64(k)
			for i := 0; i < n; i++ {
				s.total[i] += s.orderAcc[i] * scale
			}
			scored++
			break orderLoop
		}
	}
	return scored
}

func addVec(dst []float64, src []Penalty) {
	for i, v := range src {
		dst[i] += float64(v)
	}
}

func addScalar(dst []float64, v Penalty) {
	fv := float64(v)
	for i := range dst {
		dst[i] += fv
	}
}

// Identify scores text against the bound Model and applies the
// confidence layer C. topK <= 0 means no top-k list is computed. A
// nil thresholds disables the confidence check (emits Best directly,
// i.e. "ignore confidence"); macro may be nil. Text that is not valid
// UTF-8, or that has no letters, is labeled Zxx.
func (s *Scorer) Identify(text string, topK int, thresholds *Thresholds, macro *Macrotable) Result {
	pre := Preprocess(text)
	reg := s.model.Registry()
	if pre == "" || !utf8.ValidString(text) {
		return Result{Label: reg.Zxx()}
	}

	scored := s.score(pre)
	if scored == 0 {
		return Result{Label: reg.Zxx()}
	}

	numLangs := len(s.total)
	numReal := numLangs - 2 // exclude Und, Zxx from ranking
	avg := make([]float64, numReal)
	for i := 0; i < numReal; i++ {
		avg[i] = s.total[i] / float64(scored)
	}

	best := Lang(0)
	for i := 1; i < numReal; i++ {
		if avg[i] < avg[best] {
			best = Lang(i)
		}
	}
	bestScore := avg[best]
	confidence := float64(s.maxOver) - bestScore

	label := best
	if thresholds != nil && confidence < thresholds.For(best) {
		label = reg.Und()
	}

	res := Result{Label: label, Best: best, Score: bestScore, Confidence: confidence}
	if topK > 0 {
		res.TopK = topKCandidates(avg, topK, macro)
	}
	return res
}

// topKCandidates ranks all real languages ascending by score (lower
// is better), ties broken by ascending language index for
// reproducibility (§4.5 "Top-k extraction"), keeps the k smallest,
// then applies the macrolanguage collapse (§4.8): each child code is
// replaced by its parent, keeping only the best-ranked (first)
// occurrence of any resulting code.
func topKCandidates(avg []float64, k int, macro *Macrotable) []Candidate {
	ranked := make([]Candidate, len(avg))
	for i, v := range avg {
		ranked[i] = Candidate{Lang: Lang(i), Score: v}
	}
	sort.Slice(ranked, func(a, b int) bool {
		if ranked[a].Score != ranked[b].Score {
			return ranked[a].Score < ranked[b].Score
		}
		return ranked[a].Lang < ranked[b].Lang
	})
	if k < len(ranked) {
		ranked = ranked[:k]
	}
	if macro == nil || len(macro.parent) == 0 {
		return ranked
	}
	out := make([]Candidate, 0, len(ranked))
	seen := make(map[Lang]bool, len(ranked))
	for _, c := range ranked {
		l := c.Lang
		if p, ok := macro.parent[l]; ok {
			l = p
		}
		if !seen[l] {
			seen[l] = true
			out = append(out, Candidate{Lang: l, Score: c.Score})
		}
	}
	return out
}
