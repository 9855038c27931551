package heli

import (
	"os"
	"path/filepath"
	"testing"
)

func TestWriteAndLoadImageRoundTrip(t *testing.T) {
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
		vec[best] = 1
		return vec
	}

	var subs [numOrders]*submodel
	subs[OrderWord] = buildSubmodel(map[string][]Penalty{
		"the": makeVec(eng),
		"la":  makeVec(cat),
	}, n, 1, 1.5)
	empty := buildSubmodel(map[string][]Penalty{}, n, 0, 1.5)
	for _, o := range backoffOrders {
		subs[o] = empty
	}

	thresholds, err := NewThresholds(reg, map[string]float64{"eng": 0.5, "cat": 0.5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	dir, err := os.MkdirTemp("", "heli-model-*")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer os.RemoveAll(dir)

	if err := WriteImage(dir, reg, subs, thresholds); err != nil {
		t.Fatalf("unexpected error writing image: %v", err)
	}

	for _, name := range []string{headerFile, thresholdsFile, languageListFile, submodelFileName(OrderWord)} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("expected %s to exist: %v", name, err)
		}
	}

	model, thr, err := LoadImage(dir)
	if err != nil {
		t.Fatalf("unexpected error loading image: %v", err)
	}
	defer model.Close()

	if model.NumLangs() != n {
		t.Errorf("expected NumLangs() = %d; got %d", n, model.NumLangs())
	}
	vec, ok := model.Lookup(OrderWord, "the")
	if !ok {
		t.Fatalf("expected %q to be present after reload", "the")
	}
	if vec[eng] != 1 {
		t.Errorf("expected eng's penalty for %q to round-trip as 1; got %v", "the", vec[eng])
	}
	if got := thr.For(eng); got != 0.5 {
		t.Errorf("expected threshold for eng to round-trip as 0.5; got %v", got)
	}
}

func TestLoadImageRejectsBadMagic(t *testing.T) {
	dir, err := os.MkdirTemp("", "heli-model-bad-*")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer os.RemoveAll(dir)

	if err := os.WriteFile(filepath.Join(dir, headerFile), []byte("not a model"), 0o644); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, _, err := LoadImage(dir); err == nil {
		t.Errorf("expected an error for a header with bad magic")
	}
}
