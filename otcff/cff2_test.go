package otcff

import (
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/npillmayer/varfont/otvar"
)

// buildCFF2 assembles a minimal CFF2 table: header, top DICT with absolute
// charstrings and vstore offsets, empty global subrs INDEX, a one-byte-offset
// charstrings INDEX, then the length-prefixed variation store.
func buildCFF2(charstrings [][]byte, vstore []byte) []byte {
	encode29 := func(v int) []byte {
		return []byte{29, byte(v >> 24), byte(v >> 16), byte(v >> 8), byte(v)}
	}
	topDictLen := 6
	if vstore != nil {
		topDictLen = 12
	}
	gsubrsLen := 4 // count 0
	csOffset := 5 + topDictLen + gsubrsLen
	csLen := 4 + 1 + (len(charstrings)+1)*1
	for _, cs := range charstrings {
		csLen += len(cs)
	}
	vsOffset := csOffset + csLen

	var topDict []byte
	topDict = append(topDict, encode29(csOffset)...)
	topDict = append(topDict, dictCharStrings)
	if vstore != nil {
		topDict = append(topDict, encode29(vsOffset)...)
		topDict = append(topDict, dictVStore)
	}

	data := []byte{2, 0, 5, byte(topDictLen >> 8), byte(topDictLen)}
	data = append(data, topDict...)
	data = append(data, 0, 0, 0, 0) // empty global subrs INDEX
	data = append(data, byte(uint32(len(charstrings))>>24), byte(uint32(len(charstrings))>>16),
		byte(uint32(len(charstrings))>>8), byte(uint32(len(charstrings))))
	data = append(data, 1) // offSize
	offset := 1
	data = append(data, byte(offset))
	for _, cs := range charstrings {
		offset += len(cs)
		data = append(data, byte(offset))
	}
	for _, cs := range charstrings {
		data = append(data, cs...)
	}
	if vstore != nil {
		data = append(data, byte(len(vstore)>>8), byte(len(vstore)))
		data = append(data, vstore...)
	}
	return data
}

// buildVStore assembles an item variation store with one subtable and all
// word-sized deltas, regions given as F2DOT14 start/peak/end triples.
func buildVStore(regions [][]int16, rows [][]int16) []byte {
	putU16 := func(b *[]byte, v uint16) {
		*b = append(*b, byte(v>>8), byte(v))
	}
	putU32 := func(b *[]byte, v uint32) {
		*b = append(*b, byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
	}
	axisCount := 0
	if len(regions) > 0 {
		axisCount = len(regions[0]) / 3
	}
	var regionList []byte
	putU16(&regionList, uint16(axisCount))
	putU16(&regionList, uint16(len(regions)))
	for _, triples := range regions {
		for _, v := range triples {
			putU16(&regionList, uint16(v))
		}
	}
	var ivd []byte
	putU16(&ivd, uint16(len(rows)))
	putU16(&ivd, uint16(len(regions)))
	putU16(&ivd, uint16(len(regions)))
	for i := range regions {
		putU16(&ivd, uint16(i))
	}
	for _, row := range rows {
		for _, d := range row {
			putU16(&ivd, uint16(d))
		}
	}
	var store []byte
	putU16(&store, 1)
	headerSize := 2 + 4 + 2 + 4
	putU32(&store, uint32(headerSize+len(ivd)))
	putU16(&store, 1)
	putU32(&store, uint32(headerSize))
	store = append(store, ivd...)
	store = append(store, regionList...)
	return store
}

func cffAxes() []otvar.Axis {
	return []otvar.Axis{
		{Tag: otvar.TagAxisWeight, Minimum: 100, Default: 400, Maximum: 900},
	}
}

func TestParseCFF2(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.otcff")
	defer teardown()
	const f14One = 16384
	charstrings := [][]byte{
		{140, 141, 1},
		{150, 16},
	}
	vstore := buildVStore([][]int16{{0, f14One, f14One}}, [][]int16{{100}})
	data := buildCFF2(charstrings, vstore)
	f, err := Parse(data, cffAxes())
	if err != nil {
		t.Fatalf("cannot parse CFF2 table: %v", err)
	}
	if len(f.Charstrings) != 2 {
		t.Fatalf("expected 2 charstrings, got %d", len(f.Charstrings))
	}
	if len(f.Charstrings[0]) != 3 || f.Charstrings[0][0] != 140 {
		t.Errorf("charstring 0 decoded wrong: % x", f.Charstrings[0])
	}
	if f.VarStore == nil {
		t.Fatal("expected a variation store")
	}
	if len(f.VarStore.Regions) != 1 {
		t.Errorf("expected 1 region, got %d", len(f.VarStore.Regions))
	}
	if d := f.VarStore.Delta(0, 0, otvar.NormalizedCoords{otvar.TagAxisWeight: 1}); d != 100 {
		t.Errorf("expected delta 100 at peak, got %g", d)
	}
}

func TestParseDictCFF2Operators(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.otcff")
	defer teardown()
	// int operand followed by the vstore operator, then a vsindex entry
	d, err := parseDict([]byte{29, 0, 0, 0, 100, dictVStore, 139, dictVSIndex})
	if err != nil {
		t.Fatalf("cannot parse DICT with CFF2 operators: %v", err)
	}
	if off, ok := d.firstOperand(dictVStore); !ok || off != 100 {
		t.Errorf("vstore offset decoded wrong: %g (present: %v)", off, ok)
	}
	if v, ok := d.firstOperand(dictVSIndex); !ok || v != 0 {
		t.Errorf("vsindex decoded wrong: %g (present: %v)", v, ok)
	}
	if _, err := parseDict([]byte{139, 25}); err == nil {
		t.Error("expected an error for a reserved DICT operator")
	}
}

func TestParseCFF2WithoutStore(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.otcff")
	defer teardown()
	data := buildCFF2([][]byte{{139, 1}}, nil)
	f, err := Parse(data, cffAxes())
	if err != nil {
		t.Fatalf("cannot parse CFF2 table: %v", err)
	}
	if f.VarStore != nil {
		t.Error("expected no variation store")
	}
}

func TestParseCFF2Garbage(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.otcff")
	defer teardown()
	if _, err := Parse([]byte{1, 0, 4, 0}, cffAxes()); err == nil {
		t.Error("expected an error for a non-CFF2 blob")
	}
	data := buildCFF2([][]byte{{139, 1}}, nil)
	if _, err := Parse(data[:7], cffAxes()); err == nil {
		t.Error("expected an error for a truncated table")
	}
}

func TestCFF2SourceHasNoTuples(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.otcff")
	defer teardown()
	src := &Source{CFF2: &Font{VarStore: testStore()}}
	tuples, err := src.TupleVariations(5)
	if err != nil {
		t.Fatalf("tuple lookup failed: %v", err)
	}
	if len(tuples.Tuples) != 0 {
		t.Error("CFF2 outlines must not report tuple variations")
	}
	if src.ItemStore(otvar.TagCFF2) == nil {
		t.Error("expected the blend store under the CFF2 tag")
	}
	if src.ItemStore(otvar.TagHvar) != nil {
		t.Error("expected no HVAR store")
	}
}
