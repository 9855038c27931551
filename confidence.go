package heli

// Confidence layer C (§4.7, §3 "Confidence thresholds"). Thresholds
// map each language to the lowest confidence seen on a correct
// prediction during offline validation; a confidence below its
// language's threshold is reported as Und rather than the raw best
// guess.

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/kho/easy"
)

// Thresholds is a read-only, registry-indexed confidence threshold
// table.
type Thresholds struct {
	byLang []float64 // indexed by Lang; 0 for languages with no entry
	strict bool       // true if every non-sentinel language has an entry
}

// NewThresholds builds a Thresholds table from code->threshold pairs,
// resolved against reg. Unless every real language in reg has an
// entry, Strict() reports false (§3 "Optional invariant (configurable):
// every language in L has an entry").
func NewThresholds(reg *Registry, values map[string]float64) (*Thresholds, error) {
	t := &Thresholds{byLang: make([]float64, reg.NumLangs())}
	for code, v := range values {
		l, ok := reg.LangIndex(code)
		if !ok {
			return nil, fmt.Errorf("heli: confidence threshold for unknown language code %q", code)
		}
		t.byLang[l] = v
	}
	t.strict = true
	for _, code := range reg.Codes() {
		l, _ := reg.LangIndex(code)
		if _, ok := values[code]; !ok {
			t.strict = false
			_ = l
		}
	}
	return t, nil
}

// Strict reports whether every language in the registry has an
// explicit threshold entry.
func (t *Thresholds) Strict() bool { return t.strict }

// For returns the confidence threshold for l, or 0 if absent (a
// missing threshold behaves like --ignore-confidence for that one
// language: confidence, being non-negative, never falls below 0).
func (t *Thresholds) For(l Lang) float64 {
	if int(l) >= len(t.byLang) {
		return 0
	}
	return t.byLang[l]
}

func (t *Thresholds) writeTo(w io.Writer, reg *Registry) error {
	bw := bufio.NewWriter(w)
	for _, code := range reg.Codes() {
		l, _ := reg.LangIndex(code)
		if _, err := fmt.Fprintf(bw, "%s\t%g\n", code, t.byLang[l]); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func loadThresholds(path string, reg *Registry) (*Thresholds, error) {
	f, err := easy.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	values := make(map[string]float64)
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, "\t", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("heli: malformed confidence threshold line %q", line)
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("heli: malformed confidence threshold value in %q: %w", line, err)
		}
		values[parts[0]] = v
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return NewThresholds(reg, values)
}
