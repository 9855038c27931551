package heli

// Binarizer B (§4.4): turns one plain-text count table per language
// into the binary model image (§4.3, §6). Grounded on the teacher's
// Builder (old builder.go): same overall shape of "accumulate raw
// counts, then derive one final lookup structure per bucket of keys"
// and the same glog-based progress/warning logging, but the state
// machine/back-off linking logic is gone entirely — HeLI has no
// trellis of LM states, only a flat smoothed-penalty vector per
// n-gram key.

import (
	"fmt"
	"math"
	"sync"

	"github.com/golang/glog"
)

// Builder accumulates per-language count tables and turns them into a
// binary model image.
type Builder struct {
	reg   *Registry
	scale float64 // hash table load-factor multiplier, passed to buildSubmodel
	langs []*LangCounts
}

// NewBuilder constructs a Builder over reg. scale <= 1 selects
// buildSubmodel's default bucket multiplier.
func NewBuilder(reg *Registry, scale float64) *Builder {
	return &Builder{reg: reg, scale: scale}
}

// Add registers one language's count table. lc.Code must be present
// in the Builder's registry and must not have been added before.
func (b *Builder) Add(lc *LangCounts) error {
	if _, ok := b.reg.LangIndex(lc.Code); !ok {
		return fmt.Errorf("heli: binarizing: %q is not in the language registry", lc.Code)
	}
	for _, other := range b.langs {
		if other.Code == lc.Code {
			return fmt.Errorf("heli: binarizing: duplicate count table for %q", lc.Code)
		}
	}
	b.langs = append(b.langs, lc)
	return nil
}

// penalty computes the HeLI smoothed penalty −log10(c / total) for a
// key observed c times out of total, with add-one smoothing on the
// denominator (§4.1 "Penalty", §4.4 step 2). A zero count or a
// non-positive total yields the staging sentinel absentPenalty.
func penalty(c, total int64) Penalty {
	if total <= 0 {
		return absentPenalty
	}
	p := float64(c) / float64(total+1)
	if p <= 0 {
		return absentPenalty
	}
	return Penalty(-math.Log10(p))
}

// Build derives the seven submodels from the accumulated count tables.
// Every language added via Add contributes one slot, indexed by its
// Lang, to every key it mentions; languages never added to the
// Builder have the sentinel absentPenalty everywhere. Binarization
// runs one goroutine per submodel order (§4.4 "Binarization is
// parallel over languages"; parallelizing over the seven fixed,
// independent orders gives the same property with simpler
// bookkeeping and a deterministic emission order per order).
func (b *Builder) Build() ([numOrders]*submodel, error) {
	var out [numOrders]*submodel
	numLangs := b.reg.NumLangs()

	if glog.V(1) {
		glog.Infof("binarizing %d language(s) into %d submodels", len(b.langs), numOrders)
	}

	var wg sync.WaitGroup
	errs := make([]error, numOrders)
	for idx, o := range orders {
		idx, o := idx, o
		wg.Add(1)
		go func() {
			defer wg.Done()
			sm, err := b.buildOne(o, numLangs)
			if err != nil {
				errs[idx] = err
				return
			}
			out[idx] = sm
		}()
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return out, err
		}
	}
	return out, nil
}

// buildOne derives the submodel for a single order from every
// language's count table.
func (b *Builder) buildOne(o Order, numLangs int) (*submodel, error) {
	staged := make(map[string][]Penalty)
	var max Penalty

	for _, lc := range b.langs {
		l, _ := b.reg.LangIndex(lc.Code)
		total := lc.Total[o]
		if total == 0 {
			if glog.V(1) {
				glog.Warningf("language %q has no %s data, all its keys will be absent from this submodel", lc.Code, o)
			}
			continue
		}
		for key, c := range lc.Counts[o] {
			vec, ok := staged[key]
			if !ok {
				vec = make([]Penalty, numLangs)
				for i := range vec {
					vec[i] = absentPenalty
				}
				staged[key] = vec
			}
			p := penalty(c, total)
			vec[int(l)] = p
			if p != absentPenalty && p > max {
				max = p
			}
		}
	}

	// Every language slot no count table touched is still the staging
	// sentinel; replace it with MAX[O]+ε (§4.4) so that a language
	// simply missing this one key is scored as strictly worse than any
	// language that was observed, never as the near-infinite sentinel.
	fill := max + penaltyEpsilon
	for _, vec := range staged {
		for i, p := range vec {
			if p == absentPenalty {
				vec[i] = fill
			}
		}
	}

	if glog.V(1) {
		glog.Infof("%s: %d distinct key(s), max penalty %g", o, len(staged), float64(max))
	}
	return buildSubmodel(staged, numLangs, max, b.scale), nil
}
