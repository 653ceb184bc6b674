package otvar

// Item variation stores are the second delta encoding of OpenType, reused by
// HVAR, VVAR and MVAR (and by CFF2 for its blend regions): a shared region
// list plus rows of per-region deltas, addressed by a (outer, inner) index
// pair. Unlike gvar's tuple encoding there is no point sparsity; sparsity
// lives in which regions a data subtable references.
// See https://docs.microsoft.com/en-us/typography/opentype/spec/otvarcommonformats

// ItemVariationData is one delta-set subtable: rows of deltas, one column per
// referenced region.
type ItemVariationData struct {
	RegionIndexes []uint16
	Deltas        [][]int32 // [row][column]
}

// ItemVariationStore is a fully decoded item variation store.
type ItemVariationStore struct {
	Regions []Region
	Data    []ItemVariationData
}

// NewItemVariationStore builds a store from already-decoded regions and
// delta rows referencing all regions in order. Used by the CFF2 optimizer
// and by tests.
func NewItemVariationStore(regions []Region, deltaSets [][]int32) *ItemVariationStore {
	indexes := make([]uint16, len(regions))
	for i := range indexes {
		indexes[i] = uint16(i)
	}
	return &ItemVariationStore{
		Regions: regions,
		Data:    []ItemVariationData{{RegionIndexes: indexes, Deltas: deltaSets}},
	}
}

// ParseItemVariationStore decodes an item variation store. The axes are the
// fvar axes in declaration order; they key the decoded regions.
func ParseItemVariationStore(data []byte, axes []Axis) (*ItemVariationStore, error) {
	b := binarySegm(data)
	if len(b) < 8 {
		return nil, InvalidVariationDataError{Section: "ItemVariationStore", Issue: "store too short"}
	}
	if b.U16(0) != 1 {
		return nil, InvalidVariationDataError{Section: "ItemVariationStore", Issue: "unsupported format"}
	}
	regionListOffset := int(b.U32(2))
	dataCount := int(b.U16(6))
	if len(b) < 8+dataCount*4 {
		return nil, InvalidVariationDataError{Section: "ItemVariationStore", Issue: "data offsets exceed bounds"}
	}

	store := &ItemVariationStore{}
	var err error
	if store.Regions, err = parseRegionList(b, regionListOffset, axes); err != nil {
		return nil, err
	}
	store.Data = make([]ItemVariationData, dataCount)
	for i := 0; i < dataCount; i++ {
		off := int(b.U32(8 + i*4))
		if off == 0 {
			continue
		}
		ivd, err := parseItemVariationData(b, off)
		if err != nil {
			return nil, err
		}
		store.Data[i] = ivd
	}
	return store, nil
}

// parseRegionList decodes a VariationRegionList: per region, one
// (start, peak, end) F2DOT14 triple per axis.
func parseRegionList(b binarySegm, offset int, axes []Axis) ([]Region, error) {
	hdr, err := b.view(offset, 4)
	if err != nil {
		return nil, InvalidVariationDataError{Section: "VariationRegionList", Issue: "region list out of bounds"}
	}
	axisCount := int(u16(hdr[0:2]))
	regionCount := int(u16(hdr[2:4]))
	if axisCount != len(axes) {
		return nil, InvalidVariationDataError{Section: "VariationRegionList",
			Issue: "axis count does not match fvar"}
	}
	regions := make([]Region, regionCount)
	for r := 0; r < regionCount; r++ {
		rec, err := b.view(offset+4+r*axisCount*6, axisCount*6)
		if err != nil {
			return nil, InvalidVariationDataError{Section: "VariationRegionList", Issue: "region records exceed bounds"}
		}
		region := make(Region, axisCount)
		for a := 0; a < axisCount; a++ {
			rng := AxisRange{
				Start: f2dot14(rec[a*6 : a*6+2]),
				Peak:  f2dot14(rec[a*6+2 : a*6+4]),
				End:   f2dot14(rec[a*6+4 : a*6+6]),
			}
			if rng.Peak != 0 {
				region[axes[a].Tag] = rng
			}
		}
		regions[r] = region
	}
	return regions, nil
}

// parseItemVariationData decodes one ItemVariationData subtable. The first
// wordDeltaCount columns are 16-bit (or 32-bit under the long-words flag),
// the remaining ones 8-bit (16-bit under long words).
func parseItemVariationData(b binarySegm, offset int) (ItemVariationData, error) {
	var ivd ItemVariationData
	hdr, err := b.view(offset, 6)
	if err != nil {
		return ivd, InvalidVariationDataError{Section: "ItemVariationData", Issue: "subtable out of bounds"}
	}
	itemCount := int(u16(hdr[0:2]))
	wordField := u16(hdr[2:4])
	regionCount := int(u16(hdr[4:6]))
	longWords := wordField&0x8000 != 0
	wordCount := int(wordField & 0x7fff)
	if wordCount > regionCount {
		return ivd, InvalidVariationDataError{Section: "ItemVariationData", Issue: "word delta count exceeds region count"}
	}

	ivd.RegionIndexes = make([]uint16, regionCount)
	for i := 0; i < regionCount; i++ {
		idx, err := b.u16(offset + 6 + i*2)
		if err != nil {
			return ivd, InvalidVariationDataError{Section: "ItemVariationData", Issue: "region indexes exceed bounds"}
		}
		ivd.RegionIndexes[i] = idx
	}

	wide, narrow := 2, 1
	if longWords {
		wide, narrow = 4, 2
	}
	rowSize := wordCount*wide + (regionCount-wordCount)*narrow
	rowsOffset := offset + 6 + regionCount*2
	ivd.Deltas = make([][]int32, itemCount)
	for row := 0; row < itemCount; row++ {
		rec, err := b.view(rowsOffset+row*rowSize, rowSize)
		if err != nil {
			return ivd, InvalidVariationDataError{Section: "ItemVariationData", Issue: "delta rows exceed bounds"}
		}
		deltas := make([]int32, regionCount)
		pos := 0
		for col := 0; col < regionCount; col++ {
			if col < wordCount {
				if longWords {
					deltas[col] = int32(u32(rec[pos:]))
					pos += 4
				} else {
					deltas[col] = int32(i16(rec[pos:]))
					pos += 2
				}
			} else {
				if longWords {
					deltas[col] = int32(i16(rec[pos:]))
					pos += 2
				} else {
					deltas[col] = int32(int8(rec[pos]))
					pos++
				}
			}
		}
		ivd.Deltas[row] = deltas
	}
	return ivd, nil
}

// Delta computes the interpolated delta of the item addressed by (outer,
// inner) at the given coordinates. Out-of-range indices yield 0, matching
// the resilience policy for metric lookups.
func (s *ItemVariationStore) Delta(outer, inner int, coords NormalizedCoords) float64 {
	if s == nil || outer < 0 || outer >= len(s.Data) {
		return 0
	}
	ivd := s.Data[outer]
	if inner < 0 || inner >= len(ivd.Deltas) {
		return 0
	}
	row := ivd.Deltas[inner]
	delta := 0.0
	for col, regionIdx := range ivd.RegionIndexes {
		if int(regionIdx) >= len(s.Regions) || col >= len(row) {
			continue
		}
		scalar := s.Regions[regionIdx].Scalar(coords)
		if scalar == 0 {
			continue
		}
		delta += scalar * float64(row[col])
	}
	return delta
}

// DeltaForIndex resolves a packed 32-bit variation index (outer<<16|inner).
func (s *ItemVariationStore) DeltaForIndex(varIdx uint32, coords NormalizedCoords) float64 {
	return s.Delta(int(varIdx>>16), int(varIdx&0xffff), coords)
}

// --- Delta-set index map ----------------------------------------------------

// DeltaSetIndexMap maps an item index (e.g. a glyph ID) to a packed
// variation index. An absent map means identity: the item index is the inner
// index of outer subtable 0.
type DeltaSetIndexMap struct {
	entries []uint32
}

// ParseDeltaSetIndexMap decodes a DeltaSetIndexMap (format 0, 16-bit count).
func ParseDeltaSetIndexMap(data []byte) (*DeltaSetIndexMap, error) {
	b := binarySegm(data)
	if len(b) < 4 {
		return nil, InvalidVariationDataError{Section: "DeltaSetIndexMap", Issue: "map too short"}
	}
	entryFormat := b.U16(0)
	mapCount := int(b.U16(2))
	innerBits := int(entryFormat&0x000f) + 1
	entrySize := int((entryFormat&0x0030)>>4) + 1
	m := &DeltaSetIndexMap{entries: make([]uint32, mapCount)}
	for i := 0; i < mapCount; i++ {
		rec, err := b.view(4+i*entrySize, entrySize)
		if err != nil {
			return nil, InvalidVariationDataError{Section: "DeltaSetIndexMap", Issue: "entries exceed bounds"}
		}
		var packed uint32
		for _, by := range rec {
			packed = packed<<8 | uint32(by)
		}
		outer := packed >> innerBits
		inner := packed & (1<<innerBits - 1)
		m.entries[i] = outer<<16 | inner
	}
	return m, nil
}

// Map resolves an item index to its packed variation index. Indices beyond
// the map repeat the last entry, per the OpenType fallback rule; a nil map
// is the identity.
func (m *DeltaSetIndexMap) Map(index uint32) uint32 {
	if m == nil || len(m.entries) == 0 {
		return index & 0xffff
	}
	if int(index) >= len(m.entries) {
		return m.entries[len(m.entries)-1]
	}
	return m.entries[index]
}
