package otvar

// Tables HVAR and VVAR vary horizontal and vertical glyph metrics through an
// item variation store. Both share the same layout; MetricsVariations covers
// either one.
// See https://docs.microsoft.com/en-us/typography/opentype/spec/hvar

// MetricsVariations is a parsed HVAR or VVAR table.
type MetricsVariations struct {
	Table      Tag // TagHvar or TagVvar
	Store      *ItemVariationStore
	AdvanceMap *DeltaSetIndexMap // nil = identity (glyph ID as inner index)
	LsbMap     *DeltaSetIndexMap // optional, leading side bearing
	RsbMap     *DeltaSetIndexMap // optional, trailing side bearing
}

// ParseMetricsVariations parses an HVAR or VVAR table; which one is given by
// table (the layouts are identical, VVAR's extra vertical-origin mapping is
// not interpreted).
func ParseMetricsVariations(table Tag, data []byte, axes []Axis) (*MetricsVariations, error) {
	b := binarySegm(data)
	if len(b) < 20 {
		return nil, InvalidVariationDataError{Table: table, Section: "Header", Issue: "table too short"}
	}
	if b.U16(0) != 1 || b.U16(2) != 0 {
		return nil, InvalidVariationDataError{Table: table, Section: "Header", Issue: "unsupported version"}
	}
	mv := &MetricsVariations{Table: table}
	storeOffset := int(b.U32(4))
	if storeOffset == 0 || storeOffset >= len(b) {
		return nil, MissingVariationTableError{Table: table}
	}
	var err error
	if mv.Store, err = ParseItemVariationStore(b[storeOffset:], axes); err != nil {
		return nil, err
	}
	if off := int(b.U32(8)); off != 0 && off < len(b) {
		if mv.AdvanceMap, err = ParseDeltaSetIndexMap(b[off:]); err != nil {
			return nil, err
		}
	}
	if off := int(b.U32(12)); off != 0 && off < len(b) {
		if mv.LsbMap, err = ParseDeltaSetIndexMap(b[off:]); err != nil {
			return nil, err
		}
	}
	if off := int(b.U32(16)); off != 0 && off < len(b) {
		if mv.RsbMap, err = ParseDeltaSetIndexMap(b[off:]); err != nil {
			return nil, err
		}
	}
	return mv, nil
}

// AdvanceDelta returns the advance-width (or advance-height) delta of a
// glyph at the given coordinates. A nil receiver yields 0.
func (mv *MetricsVariations) AdvanceDelta(gid GlyphIndex, coords NormalizedCoords) float64 {
	if mv == nil || mv.Store == nil {
		return 0
	}
	return mv.Store.DeltaForIndex(mv.AdvanceMap.Map(uint32(gid)), coords)
}

// SideBearingDelta returns the leading side-bearing delta of a glyph, or 0
// when the table carries no side-bearing mapping (the common case; renderers
// then derive side bearings from the varied outline).
func (mv *MetricsVariations) SideBearingDelta(gid GlyphIndex, coords NormalizedCoords) float64 {
	if mv == nil || mv.Store == nil || mv.LsbMap == nil {
		return 0
	}
	return mv.Store.DeltaForIndex(mv.LsbMap.Map(uint32(gid)), coords)
}
