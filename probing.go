package heli

// Open-addressing hash table for one submodel of the model store
// (§3 "Model (M)", §4.3). Adapted from the teacher's xqwMap/xqwBuckets
// (probing_impl.go, probing_params.go), generalized from fixed-width
// word.Id keys to variable-length n-gram/word string keys: entries
// point into a shared keys blob and a shared, contiguous penalty
// vector buffer rather than embedding the value inline, which keeps
// the per-submodel memory layout mmap-friendly (§4.3, §6).

import "sort"

// ngramHash is a hand-rolled, non-cryptographic string hash tuned for
// short byte strings (n-grams are rarely more than a handful of
// runes). Same rationale as the teacher's WordIdHash in
// probing_params.go: branchless, good avalanche, no allocation.
func ngramHash(key string) uint64 {
	// FNV-1a, 64-bit, then a finishing avalanche mix.
	var h uint64 = 14695981039346656037
	for i := 0; i < len(key); i++ {
		h ^= uint64(key[i])
		h *= 1099511628211
	}
	h ^= h >> 33
	h *= 0xff51afd7ed558ccd
	h ^= h >> 33
	return h
}

// subEntry is one bucket slot. keyLen == 0 marks an empty slot: no
// real key has zero length (tokens and n-grams are never empty), so
// it is a safe sentinel.
type subEntry struct {
	keyOff uint32 // offset into the owning submodel's keys blob
	keyLen uint32
	vecIdx uint32 // entry index; vector occupies vectors[vecIdx*numLangs : (vecIdx+1)*numLangs]
}

func emptyBuckets(n int) []subEntry {
	if n < 1 {
		n = 1
	}
	return make([]subEntry, n)
}

// submodel is one of the seven immutable n-gram/word -> per-language
// penalty maps that make up a Model.
type submodel struct {
	buckets  []subEntry
	keys     []byte
	vectors  []Penalty
	numLangs int
	max      Penalty // MAX[order]: backoff constant, highest observed penalty in this submodel
}

func (sm *submodel) key(e *subEntry) string {
	return string(sm.keys[e.keyOff : e.keyOff+e.keyLen])
}

// find returns the bucket index that does or would hold key: either
// the occupied slot with a matching key, or the first empty slot
// found while probing (never -1; the caller decides hit vs miss from
// keyLen).
func (sm *submodel) find(key string) int {
	h := ngramHash(key)
	n := len(sm.buckets)
	i := int(h % uint64(n))
	for {
		e := &sm.buckets[i]
		if e.keyLen == 0 {
			return i
		}
		if int(e.keyLen) == len(key) && sm.key(e) == key {
			return i
		}
		i++
		if i == n {
			i = 0
		}
	}
}

// Lookup returns the per-language penalty vector for key, or
// (nil, false) if key is absent from this submodel.
func (sm *submodel) Lookup(key string) ([]Penalty, bool) {
	i := sm.find(key)
	e := &sm.buckets[i]
	if e.keyLen == 0 {
		return nil, false
	}
	lo := int(e.vecIdx) * sm.numLangs
	return sm.vectors[lo : lo+sm.numLangs], true
}

// Size returns the number of populated entries.
func (sm *submodel) Size() int {
	n := 0
	for _, e := range sm.buckets {
		if e.keyLen != 0 {
			n++
		}
	}
	return n
}

// buildSubmodel assembles a read-only submodel from a staged
// key->vector map, mirroring the teacher's Builder.moveHashed staging
// step (builder.go): construction uses a plain Go map for simplicity
// (this only runs offline, in the binarizer), then the result is
// packed into the open-addressing layout actually served at runtime.
// scale controls the bucket/entry ratio, exactly as the teacher's
// DumpHashed scale parameter; <= 1 defaults to 1.5.
func buildSubmodel(staged map[string][]Penalty, numLangs int, max Penalty, scale float64) *submodel {
	if scale <= 1 {
		scale = 1.5
	}
	n := len(staged)
	numBuckets := int(float64(n)*scale) + 1
	if numBuckets <= n {
		numBuckets = n + 1
	}
	sm := &submodel{
		buckets:  emptyBuckets(numBuckets),
		vectors:  make([]Penalty, 0, n*numLangs),
		numLangs: numLangs,
		max:      max,
	}
	// Insert in sorted key order so the packed layout (and hence the
	// written blob) is the same on every run.
	sorted := make([]string, 0, n)
	for key := range staged {
		sorted = append(sorted, key)
	}
	sort.Strings(sorted)
	var keys []byte
	idx := uint32(0)
	for _, key := range sorted {
		vec := staged[key]
		off := uint32(len(keys))
		keys = append(keys, key...)
		i := sm.findEmptyDuringBuild(key)
		sm.buckets[i] = subEntry{keyOff: off, keyLen: uint32(len(key)), vecIdx: idx}
		sm.vectors = append(sm.vectors, vec...)
		idx++
	}
	sm.keys = keys
	return sm
}

// findEmptyDuringBuild probes from key's hash-derived start and
// returns the first empty slot, i.e. plain open-addressing insertion.
// No key-equality check against occupied slots is needed because
// staged is a map: every key inserted during a single build is
// already unique.
func (sm *submodel) findEmptyDuringBuild(key string) int {
	h := ngramHash(key)
	n := len(sm.buckets)
	i := int(h % uint64(n))
	for sm.buckets[i].keyLen != 0 {
		i++
		if i == n {
			i = 0
		}
	}
	return i
}
