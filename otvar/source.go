package otvar

// VariationSource abstracts over the two places OpenType stores glyph
// variation data: gvar tuples for TrueType outlines, and blend operands
// backed by an item variation store for CFF2. The variant is selected once
// per font; applier code never type-switches on table kinds.
type VariationSource interface {
	// TupleVariations returns the tuple-variation set of a glyph. CFF2
	// sources have none and return an empty set.
	TupleVariations(gid GlyphIndex) (*TupleSet, error)
	// ItemStore returns the item variation store of a metrics table
	// (TagHvar, TagVvar, TagMvar) or the CFF2 blend store (TagCFF2);
	// nil when the font has no such store.
	ItemStore(table Tag) *ItemVariationStore
}

// TrueTypeSource is the VariationSource of a font with TrueType outlines:
// gvar plus the metric variation tables.
type TrueTypeSource struct {
	Gvar *GvarTable
	Hvar *MetricsVariations
	Vvar *MetricsVariations
	Mvar *MvarTable
}

var _ VariationSource = (*TrueTypeSource)(nil)

// TupleVariations returns the gvar tuple set of a glyph. A font without
// gvar yields an empty set (fail closed, no error).
func (s *TrueTypeSource) TupleVariations(gid GlyphIndex) (*TupleSet, error) {
	if s == nil || s.Gvar == nil {
		return &TupleSet{}, nil
	}
	return s.Gvar.TupleVariations(gid)
}

// ItemStore returns the store backing the given metrics table.
func (s *TrueTypeSource) ItemStore(table Tag) *ItemVariationStore {
	if s == nil {
		return nil
	}
	switch table {
	case TagHvar:
		if s.Hvar != nil {
			return s.Hvar.Store
		}
	case TagVvar:
		if s.Vvar != nil {
			return s.Vvar.Store
		}
	case TagMvar:
		if s.Mvar != nil {
			return s.Mvar.Store
		}
	}
	return nil
}
