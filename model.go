package heli

// Model store M (§3, §4.3, §6). A Model is a tuple of seven immutable
// submodels, loaded by memory-mapping a directory of files written by
// the binarizer (builder.go). Adapted from the teacher's
// model.go/hashed.go (magic + gob header + raw struct array,
// syscall.Mmap-backed MappedFile, FromBinary), generalized from a
// single finite-state transition table to seven independent n-gram ->
// penalty-vector maps.

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"unsafe"
)

// formatVersion is bumped whenever the on-disk layout changes. Any
// mismatch is fatal on load (§6, §7 "Model errors").
const formatVersion = 1

const modelMagic = "#heli.model"
const submodelMagic = "#heli.submodel"

// Model is the immutable, concurrently-readable n-gram penalty store
// consulted by the scoring engine. Multiple goroutines may call its
// read methods without synchronization (§5 "shared by immutable
// reference").
type Model struct {
	reg     *Registry
	sub     [numOrders]*submodel
	mapped  []*MappedFile
	dirPath string
}

// Registry returns the language registry this model was built for.
func (m *Model) Registry() *Registry { return m.reg }

// NumLangs returns |L| for this model.
func (m *Model) NumLangs() int { return m.reg.NumLangs() }

// Lookup is the model store's public contract: O(1) expected,
// returns (vector, true) or (nil, false) if key is absent from the
// given submodel (§4.3).
func (m *Model) Lookup(o Order, key string) ([]Penalty, bool) {
	return m.sub[o].Lookup(key)
}

// MaxPenalty returns MAX[order], the backoff constant for that
// submodel (§3, §4.3).
func (m *Model) MaxPenalty(o Order) Penalty {
	return m.sub[o].max
}

// Close unmaps every submodel blob. Safe to call once after the last
// use of the Model.
func (m *Model) Close() error {
	var first error
	for _, mf := range m.mapped {
		if err := mf.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// MappedFile is a read-only memory mapping of one file, kept open for
// the lifetime of the data sliced from it. Identical in spirit to the
// teacher's MappedFile (model.go/hashed.go).
type MappedFile struct {
	file *os.File
	data []byte
}

func openMappedFile(path string) (*MappedFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	stat, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	if stat.Size() == 0 {
		f.Close()
		return nil, fmt.Errorf("heli: empty model file %s", path)
	}
	data, err := mmapReadOnly(f, int(stat.Size()))
	if err != nil {
		f.Close()
		return nil, err
	}
	return &MappedFile{file: f, data: data}, nil
}

func (m *MappedFile) Close() error {
	err1 := munmap(m.data)
	err2 := m.file.Close()
	if err1 != nil {
		return err1
	}
	return err2
}

// submodelHeader is the small, gob-encoded preamble of one submodel
// blob: everything needed to reinterpret the raw bytes that follow.
type submodelHeader struct {
	NumEntries int
	NumBuckets int
	NumLangs   int
	Max        float32
	KeysLen    int
}

// writeSubmodel serializes sm to path using the teacher's
// magic+header+raw-array layout (model.go WriteBinary), generalized
// with two extra raw blobs (keys, then vectors) after the bucket
// array.
func writeSubmodel(path string, sm *submodel) (err error) {
	w, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := w.Close(); err == nil {
			err = cerr
		}
	}()

	if _, err = w.Write([]byte(submodelMagic)); err != nil {
		return err
	}

	hdr := submodelHeader{
		NumEntries: len(sm.vectors) / sm.numLangs,
		NumBuckets: len(sm.buckets),
		NumLangs:   sm.numLangs,
		Max:        float32(sm.max),
		KeysLen:    len(sm.keys),
	}
	var hdrBuf bytes.Buffer
	if err = gob.NewEncoder(&hdrBuf).Encode(hdr); err != nil {
		return err
	}
	hdrLenBytes := make([]byte, binary.MaxVarintLen64)
	n := binary.PutUvarint(hdrLenBytes, uint64(hdrBuf.Len()))
	if _, err = w.Write(hdrLenBytes[:n]); err != nil {
		return err
	}
	if _, err = w.Write(hdrBuf.Bytes()); err != nil {
		return err
	}

	// Bucket array, byte-for-byte, aligned so it can be mmap'd back
	// without copying.
	written, err := w.Seek(0, io.SeekCurrent)
	if err != nil {
		return err
	}
	align := int64(unsafe.Alignof(subEntry{}))
	if pad := align - written%align; pad != align {
		if _, err = w.Write(make([]byte, pad)); err != nil {
			return err
		}
	}
	if len(sm.buckets) > 0 {
		raw := unsafe.Slice((*byte)(unsafe.Pointer(&sm.buckets[0])), len(sm.buckets)*int(unsafe.Sizeof(subEntry{})))
		if _, err = w.Write(raw); err != nil {
			return err
		}
	}

	// Keys blob: raw bytes, no alignment requirement.
	if _, err = w.Write(sm.keys); err != nil {
		return err
	}

	// Vectors blob: align to float32 boundary, then raw.
	written, err = w.Seek(0, io.SeekCurrent)
	if err != nil {
		return err
	}
	if pad := 4 - written%4; pad != 4 {
		if _, err = w.Write(make([]byte, pad)); err != nil {
			return err
		}
	}
	if len(sm.vectors) > 0 {
		raw := unsafe.Slice((*byte)(unsafe.Pointer(&sm.vectors[0])), len(sm.vectors)*4)
		if _, err = w.Write(raw); err != nil {
			return err
		}
	}
	return nil
}

// loadSubmodel memory-maps path and reinterprets it in place; the
// returned submodel's slices alias the mapping, so mf must outlive sm.
func loadSubmodel(path string) (sm *submodel, mf *MappedFile, err error) {
	mf, err = openMappedFile(path)
	if err != nil {
		return nil, nil, err
	}
	sm, err = parseSubmodel(mf.data)
	if err != nil {
		mf.Close()
		return nil, nil, err
	}
	return sm, mf, nil
}

func parseSubmodel(raw []byte) (*submodel, error) {
	if len(raw) < len(submodelMagic) || string(raw[:len(submodelMagic)]) != submodelMagic {
		return nil, errors.New("heli: not a submodel file (bad magic)")
	}
	read := int64(len(submodelMagic))
	if int64(len(raw)) < read+binary.MaxVarintLen64 {
		return nil, errors.New("heli: truncated submodel header")
	}
	hdrLen, n := binary.Uvarint(raw[read : read+binary.MaxVarintLen64])
	if n <= 0 {
		return nil, errors.New("heli: bad submodel header length")
	}
	read += int64(n)
	if int64(len(raw)) < read+int64(hdrLen) {
		return nil, errors.New("heli: truncated submodel header body")
	}
	var hdr submodelHeader
	if err := gob.NewDecoder(bytes.NewReader(raw[read : read+int64(hdrLen)])).Decode(&hdr); err != nil {
		return nil, fmt.Errorf("heli: decoding submodel header: %w", err)
	}
	read += int64(hdrLen)

	align := int64(unsafe.Alignof(subEntry{}))
	if pad := align - read%align; pad != align {
		read += pad
	}
	entrySize := int64(unsafe.Sizeof(subEntry{}))
	bucketsLen := int64(hdr.NumBuckets) * entrySize
	if int64(len(raw)) < read+bucketsLen {
		return nil, errors.New("heli: truncated submodel bucket array")
	}
	var buckets []subEntry
	if hdr.NumBuckets > 0 {
		buckets = unsafe.Slice((*subEntry)(unsafe.Pointer(&raw[read])), hdr.NumBuckets)
	}
	read += bucketsLen

	if int64(len(raw)) < read+int64(hdr.KeysLen) {
		return nil, errors.New("heli: truncated submodel keys blob")
	}
	keys := raw[read : read+int64(hdr.KeysLen)]
	read += int64(hdr.KeysLen)

	if pad := 4 - read%4; pad != 4 {
		read += pad
	}
	vecCount := hdr.NumEntries * hdr.NumLangs
	vecLen := int64(vecCount) * 4
	if int64(len(raw)) < read+vecLen {
		return nil, errors.New("heli: truncated submodel vector blob")
	}
	var vectors []Penalty
	if vecCount > 0 {
		vectors = unsafe.Slice((*Penalty)(unsafe.Pointer(&raw[read])), vecCount)
	}

	return &submodel{
		buckets:  buckets,
		keys:     keys,
		vectors:  vectors,
		numLangs: hdr.NumLangs,
		max:      Penalty(hdr.Max),
	}, nil
}

// imageHeader is the small top-level file identifying the image as a
// whole (§6 "a magic header file identifying format version").
type imageHeader struct {
	Version  int
	NumLangs int
	Codes    []string
}

const headerFile = "header"
const thresholdsFile = "confidenceThresholds"
const languageListFile = "languagelist"

func submodelFileName(o Order) string {
	switch o {
	case OrderWord:
		return "word.submodel"
	default:
		return o.String() + ".submodel"
	}
}

// WriteImage writes a complete binary model image to dir (§6): the
// header file, the seven submodel blobs, the confidence thresholds
// file, and the language list file. dir must already exist.
func WriteImage(dir string, reg *Registry, subs [numOrders]*submodel, thresholds *Thresholds) error {
	hdr := imageHeader{Version: formatVersion, NumLangs: reg.NumLangs(), Codes: reg.lang2code}
	hf, err := os.Create(filepath.Join(dir, headerFile))
	if err != nil {
		return err
	}
	if _, err := hf.Write([]byte(modelMagic)); err != nil {
		hf.Close()
		return err
	}
	if err := gob.NewEncoder(hf).Encode(hdr); err != nil {
		hf.Close()
		return err
	}
	if err := hf.Close(); err != nil {
		return err
	}

	for _, o := range orders {
		if err := writeSubmodel(filepath.Join(dir, submodelFileName(o)), subs[o]); err != nil {
			return fmt.Errorf("heli: writing %s submodel: %w", o, err)
		}
	}

	tf, err := os.Create(filepath.Join(dir, thresholdsFile))
	if err != nil {
		return err
	}
	if err := thresholds.writeTo(tf, reg); err != nil {
		tf.Close()
		return err
	}
	if err := tf.Close(); err != nil {
		return err
	}

	lf, err := os.Create(filepath.Join(dir, languageListFile))
	if err != nil {
		return err
	}
	if err := reg.WriteLanguageList(lf); err != nil {
		lf.Close()
		return err
	}
	return lf.Close()
}

// LoadImage memory-maps a binary model image directory written by
// WriteImage. The returned Model shares its submodel blobs across all
// callers; Close releases the mappings.
func LoadImage(dir string) (*Model, *Thresholds, error) {
	hf, err := os.Open(filepath.Join(dir, headerFile))
	if err != nil {
		return nil, nil, err
	}
	magic := make([]byte, len(modelMagic))
	if _, err := io.ReadFull(hf, magic); err != nil || string(magic) != modelMagic {
		hf.Close()
		return nil, nil, errors.New("heli: not a model image (bad magic in header)")
	}
	var hdr imageHeader
	err = gob.NewDecoder(hf).Decode(&hdr)
	hf.Close()
	if err != nil {
		return nil, nil, fmt.Errorf("heli: decoding image header: %w", err)
	}
	if hdr.Version != formatVersion {
		return nil, nil, fmt.Errorf("heli: model image format version %d, this binary expects %d", hdr.Version, formatVersion)
	}

	reg := &Registry{code2lang: make(map[string]Lang, len(hdr.Codes)), lang2code: hdr.Codes}
	for i, c := range hdr.Codes {
		reg.code2lang[c] = Lang(i)
	}
	if u, ok := reg.code2lang[undCode]; ok {
		reg.und = u
	}
	if z, ok := reg.code2lang[zxxCode]; ok {
		reg.zxx = z
	}

	m := &Model{reg: reg, dirPath: dir}
	for _, o := range orders {
		sm, mf, err := loadSubmodel(filepath.Join(dir, submodelFileName(o)))
		if err != nil {
			m.Close()
			return nil, nil, fmt.Errorf("heli: loading %s submodel: %w", o, err)
		}
		if sm.numLangs != reg.NumLangs() {
			m.Close()
			return nil, nil, fmt.Errorf("heli: %s submodel has %d languages, header declares %d", o, sm.numLangs, reg.NumLangs())
		}
		m.sub[o] = sm
		m.mapped = append(m.mapped, mf)
	}

	thr, err := loadThresholds(filepath.Join(dir, thresholdsFile), reg)
	if err != nil {
		m.Close()
		return nil, nil, err
	}
	return m, thr, nil
}
