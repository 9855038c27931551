package heli

import "testing"

func TestPenaltyComputation(t *testing.T) {
	if p := penalty(0, 100); p != absentPenalty {
		t.Errorf("expected a zero count to yield absentPenalty; got %v", p)
	}
	p1 := penalty(50, 100)
	p2 := penalty(10, 100)
	if !(p1 < p2) {
		t.Errorf("expected a more frequent key to have a lower penalty: p(50/100)=%v, p(10/100)=%v", p1, p2)
	}
}

func TestBuilderBuildTwoLanguages(t *testing.T) {
	reg, err := NewRegistry().Subset([]string{"eng", "cat"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	eng, _ := reg.LangIndex("eng")
	cat, _ := reg.LangIndex("cat")

	lcEng := NewLangCounts("eng")
	lcEng.Add(OrderWord, "the")
	lcEng.Add(OrderWord, "the")
	lcEng.Add(OrderWord, "fox")

	lcCat := NewLangCounts("cat")
	lcCat.Add(OrderWord, "la")
	lcCat.Add(OrderWord, "clara")

	b := NewBuilder(reg, 1.5)
	if err := b.Add(lcEng); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := b.Add(lcCat); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := b.Add(lcEng); err == nil {
		t.Errorf("expected an error when adding the same language twice")
	}

	subs, err := b.Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wordSub := subs[OrderWord]
	vec, ok := wordSub.Lookup("the")
	if !ok {
		t.Fatalf("expected %q to be present in the word submodel", "the")
	}
	if vec[eng] == absentPenalty {
		t.Errorf("expected eng's penalty for %q to be present", "the")
	}
	if vec[cat] == absentPenalty {
		t.Errorf("expected cat's penalty for %q to be filled with MAX[O]+epsilon, not the staging sentinel", "the")
	}
	if want := wordSub.max + penaltyEpsilon; vec[cat] != want {
		t.Errorf("expected cat's penalty for %q (never observed by cat) to be MAX[O]+epsilon = %v; got %v", "the", want, vec[cat])
	}

	if _, ok := wordSub.Lookup("la"); !ok {
		t.Fatalf("expected %q (only seen in cat) to be present in the word submodel", "la")
	}
}

func TestBuilderAddRejectsUnknownLanguage(t *testing.T) {
	reg, _ := NewRegistry().Subset([]string{"eng"})
	b := NewBuilder(reg, 1.5)
	if err := b.Add(NewLangCounts("cat")); err == nil {
		t.Errorf("expected an error for a language not in the builder's registry")
	}
}
