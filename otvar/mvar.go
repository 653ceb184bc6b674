package otvar

// Table MVAR varies font-wide metric values (ascender, x-height, underline
// position, …), keyed by 4-byte value tags, through an item variation store.
// See https://docs.microsoft.com/en-us/typography/opentype/spec/mvar

// MvarTable is a parsed MVAR table.
type MvarTable struct {
	Store   *ItemVariationStore
	records map[Tag]uint32 // value tag → packed variation index
}

const mvarHeaderSize = 12

// ParseMvar parses an MVAR table.
func ParseMvar(data []byte, axes []Axis) (*MvarTable, error) {
	b := binarySegm(data)
	if len(b) < mvarHeaderSize {
		return nil, InvalidVariationDataError{Table: TagMvar, Section: "Header", Issue: "table too short"}
	}
	if b.U16(0) != 1 || b.U16(2) != 0 {
		return nil, InvalidVariationDataError{Table: TagMvar, Section: "Header", Issue: "unsupported version"}
	}
	recordSize := int(b.U16(6))
	recordCount := int(b.U16(8))
	storeOffset := int(b.U16(10))
	if recordCount > 0 && recordSize < 8 {
		return nil, InvalidVariationDataError{Table: TagMvar, Section: "Header", Issue: "value record size too small"}
	}
	m := &MvarTable{records: make(map[Tag]uint32, recordCount)}
	if storeOffset != 0 && storeOffset < len(b) {
		var err error
		if m.Store, err = ParseItemVariationStore(b[storeOffset:], axes); err != nil {
			return nil, err
		}
	}
	for i := 0; i < recordCount; i++ {
		rec, err := b.view(mvarHeaderSize+i*recordSize, recordSize)
		if err != nil {
			return nil, InvalidVariationDataError{Table: TagMvar, Section: "ValueRecords", Issue: "records exceed table bounds"}
		}
		tag := Tag(u32(rec[0:4]))
		outer := u16(rec[4:6])
		inner := u16(rec[6:8])
		m.records[tag] = uint32(outer)<<16 | uint32(inner)
	}
	tracer().Debugf("MVAR: %d value records", recordCount)
	return m, nil
}

// Delta returns the delta for a metric value tag at the given coordinates,
// and whether the table carries a record for that tag at all.
func (m *MvarTable) Delta(metric Tag, coords NormalizedCoords) (float64, bool) {
	if m == nil || m.Store == nil {
		return 0, false
	}
	varIdx, ok := m.records[metric]
	if !ok {
		return 0, false
	}
	return m.Store.DeltaForIndex(varIdx, coords), true
}

// Tags lists the metric value tags the table varies.
func (m *MvarTable) Tags() []Tag {
	if m == nil {
		return nil
	}
	tags := make([]Tag, 0, len(m.records))
	for tag := range m.records {
		tags = append(tags, tag)
	}
	return tags
}
