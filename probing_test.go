package heli

import "testing"

func TestBuildSubmodelLookup(t *testing.T) {
	staged := map[string][]Penalty{
		"cat": {1, absentPenalty, 2},
		"dog": {absentPenalty, 3, absentPenalty},
	}
	sm := buildSubmodel(staged, 3, 3, 1.5)

	vec, ok := sm.Lookup("cat")
	if !ok {
		t.Fatalf("expected %q to be present", "cat")
	}
	if vec[0] != 1 || vec[1] != absentPenalty || vec[2] != 2 {
		t.Errorf("expected vector [1, absent, 2]; got %v", vec)
	}

	if _, ok := sm.Lookup("bird"); ok {
		t.Errorf("expected %q to be absent", "bird")
	}

	if sm.Size() != 2 {
		t.Errorf("expected Size() = 2; got %d", sm.Size())
	}
	if sm.max != 3 {
		t.Errorf("expected max = 3; got %v", sm.max)
	}
}

func TestBuildSubmodelEmpty(t *testing.T) {
	sm := buildSubmodel(map[string][]Penalty{}, 5, 0, 0)
	if sm.Size() != 0 {
		t.Errorf("expected Size() = 0; got %d", sm.Size())
	}
	if _, ok := sm.Lookup("anything"); ok {
		t.Errorf("expected no key to be present in an empty submodel")
	}
}

func TestNgramHashDeterministic(t *testing.T) {
	if ngramHash("hello") != ngramHash("hello") {
		t.Errorf("expected ngramHash to be deterministic")
	}
	if ngramHash("hello") == ngramHash("world") {
		t.Errorf("expected distinct keys to (almost certainly) hash differently")
	}
}
