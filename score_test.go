package heli

import "testing"

// newTestModel builds a tiny in-memory Model over two languages, with
// "the" scoring best for eng and "la" scoring best for cat in the
// word submodel; every character-n-gram submodel is left empty so
// these tests exercise the word-hit path without needing a full
// n-gram vocabulary.
func newTestModel(t *testing.T) (*Model, *Registry) {
	t.Helper()
	reg, err := NewRegistry().Subset([]string{"eng", "cat"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	eng, _ := reg.LangIndex("eng")
	cat, _ := reg.LangIndex("cat")
	n := reg.NumLangs()

	makeVec := func(best Lang) []Penalty {
		vec := make([]Penalty, n)
		for i := range vec {
			vec[i] = absentPenalty
		}
		vec[eng] = 5
		vec[cat] = 5
		vec[best] = 1
		return vec
	}

	wordSub := buildSubmodel(map[string][]Penalty{
		"the": makeVec(eng),
		"la":  makeVec(cat),
	}, n, 5, 1.5)
	empty := buildSubmodel(map[string][]Penalty{}, n, 0, 1.5)

	var subs [numOrders]*submodel
	subs[OrderWord] = wordSub
	for _, o := range backoffOrders {
		subs[o] = empty
	}

	return &Model{reg: reg, sub: subs}, reg
}

func TestScorerIdentifyWordHit(t *testing.T) {
	m, reg := newTestModel(t)
	sc := NewScorer(m)

	eng, _ := reg.LangIndex("eng")
	if res := sc.Identify("the", 0, nil, nil); res.Label != eng {
		t.Errorf("expected Label = eng; got %v", reg.CodeOf(res.Label))
	}

	cat, _ := reg.LangIndex("cat")
	if res := sc.Identify("la", 0, nil, nil); res.Label != cat {
		t.Errorf("expected Label = cat; got %v", reg.CodeOf(res.Label))
	}
}

// TestScorerBacksOffPastTotalMiss checks that a character order with
// zero hits is skipped entirely rather than adopted via its
// MaxPenalty fallback scalars (§8 "Backoff monotonicity": lower orders
// are consulted only when higher orders have zero hits).
func TestScorerBacksOffPastTotalMiss(t *testing.T) {
	reg, err := NewRegistry().Subset([]string{"eng", "cat"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	eng, _ := reg.LangIndex("eng")
	cat, _ := reg.LangIndex("cat")
	n := reg.NumLangs()

	makeVec := func(best Lang) []Penalty {
		vec := make([]Penalty, n)
		for i := range vec {
			vec[i] = absentPenalty
		}
		vec[eng] = 5
		vec[cat] = 5
		vec[best] = 1
		return vec
	}

	// "hello" pads to "#hello#" (7 runes): Order6 has two candidate
	// 6-grams ("#hello", "hello#"), both total misses here, so Order6
	// must be skipped entirely; Order5's middle 5-gram "hello" is
	// present and clearly favors eng. If the cascade wrongly adopted
	// Order6's all-MaxPenalty fallback instead of backing off to
	// Order5, every language would tie and the tie would go to cat
	// (the lower index), so eng's win below would not show up.
	empty := buildSubmodel(map[string][]Penalty{}, n, 0, 1.5)
	order5 := buildSubmodel(map[string][]Penalty{
		"hello": makeVec(eng),
	}, n, 5, 1.5)

	var subs [numOrders]*submodel
	subs[OrderWord] = empty
	subs[Order6] = empty
	subs[Order5] = order5
	subs[Order4] = empty
	subs[Order3] = empty
	subs[Order2] = empty
	subs[Order1] = empty

	m := &Model{reg: reg, sub: subs}
	sc := NewScorer(m)
	res := sc.Identify("hello", 0, nil, nil)
	if res.Label != eng {
		t.Errorf("expected backoff to skip the total-miss Order6 and land on Order5's hit for eng; got %v", reg.CodeOf(res.Label))
	}
}

func TestScorerIdentifyEmptyIsZxx(t *testing.T) {
	m, reg := newTestModel(t)
	sc := NewScorer(m)
	if res := sc.Identify("123 !!!", 0, nil, nil); res.Label != reg.Zxx() {
		t.Errorf("expected Label = zxx for content with no letters; got %v", reg.CodeOf(res.Label))
	}
}

func TestScorerIdentifyBelowThresholdIsUnd(t *testing.T) {
	m, reg := newTestModel(t)
	sc := NewScorer(m)
	th, err := NewThresholds(reg, map[string]float64{"eng": 1000})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	res := sc.Identify("the", 0, th, nil)
	if res.Label != reg.Und() {
		t.Errorf("expected Label = und when confidence falls short; got %v", reg.CodeOf(res.Label))
	}
	eng, _ := reg.LangIndex("eng")
	if res.Best != eng {
		t.Errorf("expected Best = eng even when Label is und; got %v", reg.CodeOf(res.Best))
	}
}

func TestScorerTopKAndMacroCollapse(t *testing.T) {
	m, reg := newTestModel(t)
	sc := NewScorer(m)

	eng, _ := reg.LangIndex("eng")
	macro, err := NewMacrotable(reg, map[string]string{"cat": "eng"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	res := sc.Identify("the", 2, nil, macro)
	if len(res.TopK) != 1 {
		t.Fatalf("expected macro collapse to merge eng/cat into one candidate; got %v", res.TopK)
	}
	if res.TopK[0].Lang != eng {
		t.Errorf("expected the surviving candidate to be eng; got %v", reg.CodeOf(res.TopK[0].Lang))
	}
}
