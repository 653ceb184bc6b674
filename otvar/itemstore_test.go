package otvar

import "testing"

func storeAxes() []Axis {
	return []Axis{
		{Tag: TagAxisWeight, Minimum: 100, Default: 400, Maximum: 900},
		{Tag: TagAxisWidth, Minimum: 75, Default: 100, Maximum: 125},
	}
}

// buildItemVariationStore assembles a store with one region list and one
// ItemVariationData subtable with 16-bit deltas only.
func buildItemVariationStore(regions [][]int16, rows [][]int16) []byte {
	putU16 := func(b *[]byte, v uint16) {
		*b = append(*b, byte(v>>8), byte(v))
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
	putU16(&ivd, uint16(len(rows)))    // itemCount
	putU16(&ivd, uint16(len(regions))) // wordDeltaCount: all words
	putU16(&ivd, uint16(len(regions))) // regionIndexCount
	for i := range regions {
		putU16(&ivd, uint16(i))
	}
	for _, row := range rows {
		for _, d := range row {
			putU16(&ivd, uint16(d))
		}
	}
	var store []byte
	putU16(&store, 1) // format
	headerSize := 2 + 4 + 2 + 4
	regionListOffset := headerSize + len(ivd)
	store = append(store, byte(uint32(regionListOffset)>>24), byte(uint32(regionListOffset)>>16),
		byte(uint32(regionListOffset)>>8), byte(uint32(regionListOffset)))
	putU16(&store, 1) // itemVariationDataCount
	store = append(store, byte(uint32(headerSize)>>24), byte(uint32(headerSize)>>16),
		byte(uint32(headerSize)>>8), byte(uint32(headerSize)))
	store = append(store, ivd...)
	store = append(store, regionList...)
	return store
}

const f14One = 16384 // 1.0 in F2DOT14

func TestParseItemVariationStore(t *testing.T) {
	// region 0: wght [0,1,1]; region 1: wdth [-1,-1,0]
	data := buildItemVariationStore(
		[][]int16{
			{0, f14One, f14One, 0, 0, 0},
			{0, 0, 0, -f14One, -f14One, 0},
		},
		[][]int16{
			{100, 50},
			{-30, 0},
		},
	)
	store, err := ParseItemVariationStore(data, storeAxes())
	if err != nil {
		t.Fatalf("cannot parse store: %v", err)
	}
	if len(store.Regions) != 2 {
		t.Fatalf("expected 2 regions, got %d", len(store.Regions))
	}
	if rng := store.Regions[0][TagAxisWeight]; rng.Peak != 1 {
		t.Errorf("unexpected region 0: %+v", store.Regions[0])
	}
	// at wght=+1 only region 0 is active with scalar 1
	coords := NormalizedCoords{TagAxisWeight: 1, TagAxisWidth: 0}
	if d := store.Delta(0, 0, coords); d != 100 {
		t.Errorf("expected delta 100, got %g", d)
	}
	if d := store.Delta(0, 1, coords); d != -30 {
		t.Errorf("expected delta -30, got %g", d)
	}
	// at wght=+0.5, wdth=-1 both regions contribute
	coords = NormalizedCoords{TagAxisWeight: 0.5, TagAxisWidth: -1}
	if d := store.Delta(0, 0, coords); d != 100*0.5+50*1 {
		t.Errorf("expected delta 100, got %g", d)
	}
}

func TestItemStoreDeltaOutOfRange(t *testing.T) {
	store := NewItemVariationStore(
		[]Region{{TagAxisWeight: AxisRange{Start: 0, Peak: 1, End: 1}}},
		[][]int32{{10}},
	)
	coords := NormalizedCoords{TagAxisWeight: 1}
	if d := store.Delta(1, 0, coords); d != 0 {
		t.Errorf("out-of-range outer index should yield 0, got %g", d)
	}
	if d := store.Delta(0, 5, coords); d != 0 {
		t.Errorf("out-of-range inner index should yield 0, got %g", d)
	}
	if d := store.DeltaForIndex(0, coords); d != 10 {
		t.Errorf("expected delta 10, got %g", d)
	}
}

func TestDeltaSetIndexMapIdentity(t *testing.T) {
	var m *DeltaSetIndexMap
	if got := m.Map(7); got != 7 {
		t.Errorf("nil map should be identity, got %d", got)
	}
}

func TestParseDeltaSetIndexMap(t *testing.T) {
	// entryFormat: innerBits=4 (0x0003), entrySize=1 (bits 4-5 = 0)
	// entries pack outer<<4|inner in one byte
	data := []byte{
		0x00, 0x03, // entry format
		0x00, 0x02, // map count
		0x12, // outer 1, inner 2
		0x05, // outer 0, inner 5
	}
	m, err := ParseDeltaSetIndexMap(data)
	if err != nil {
		t.Fatalf("cannot parse index map: %v", err)
	}
	if got := m.Map(0); got != 1<<16|2 {
		t.Errorf("entry 0: got %#x", got)
	}
	if got := m.Map(1); got != 5 {
		t.Errorf("entry 1: got %#x", got)
	}
	// beyond the map: last entry repeats
	if got := m.Map(9); got != 5 {
		t.Errorf("entry beyond map: got %#x", got)
	}
}
