package otcff

import (
	"github.com/npillmayer/varfont/otvar"
)

// Walking a CFF2 table: header, top DICT, charstrings INDEX, variation
// store. We keep raw charstring bytes; only DICT structure and the variation
// store are decoded.
// See https://docs.microsoft.com/en-us/typography/opentype/spec/cff2

// Font is a decoded view of a CFF2 table.
type Font struct {
	Charstrings [][]byte
	GlobalSubrs [][]byte
	LocalSubrs  [][]byte // of the first font DICT; FDSelect-split fonts keep per-FD subrs out of scope here
	VarStore    *otvar.ItemVariationStore
}

// Parse decodes a CFF2 table. The axes are the fvar axes in declaration
// order (needed to key the variation store's regions).
func Parse(data []byte, axes []otvar.Axis) (*Font, error) {
	if len(data) < 5 {
		return nil, otvar.InvalidVariationDataError{Table: otvar.TagCFF2, Section: "Header", Issue: "table too short"}
	}
	if data[0] != 2 {
		return nil, otvar.InvalidVariationDataError{Table: otvar.TagCFF2, Section: "Header", Issue: "not a CFF2 font program"}
	}
	headerSize := int(data[2])
	topDictLength := int(u16(data[3:5]))
	if headerSize+topDictLength > len(data) {
		return nil, otvar.InvalidVariationDataError{Table: otvar.TagCFF2, Section: "TopDICT", Issue: "top DICT exceeds table bounds"}
	}
	topDict, err := parseDict(data[headerSize : headerSize+topDictLength])
	if err != nil {
		return nil, err
	}

	f := &Font{}
	if f.GlobalSubrs, _, err = parseIndex(data, headerSize+topDictLength); err != nil {
		return nil, err
	}
	csOffset, ok := topDict.firstOperand(dictCharStrings)
	if !ok {
		return nil, otvar.InvalidVariationDataError{Table: otvar.TagCFF2, Section: "TopDICT", Issue: "no CharStrings operator"}
	}
	if f.Charstrings, _, err = parseIndex(data, int(csOffset)); err != nil {
		return nil, err
	}
	tracer().Debugf("CFF2: %d charstrings", len(f.Charstrings))

	if vsOffset, ok := topDict.firstOperand(dictVStore); ok {
		off := int(vsOffset)
		if off+2 > len(data) {
			return nil, otvar.InvalidVariationDataError{Table: otvar.TagCFF2, Section: "VariationStore", Issue: "store offset out of bounds"}
		}
		size := int(u16(data[off:]))
		if off+2+size > len(data) {
			return nil, otvar.InvalidVariationDataError{Table: otvar.TagCFF2, Section: "VariationStore", Issue: "store length out of bounds"}
		}
		if f.VarStore, err = otvar.ParseItemVariationStore(data[off+2:off+2+size], axes); err != nil {
			return nil, err
		}
	}

	if fdOffset, ok := topDict.firstOperand(dictFDArray); ok {
		if err = f.parseFirstPrivate(data, int(fdOffset)); err != nil {
			tracer().Infof("CFF2: cannot decode private DICT: %v", err)
		}
	}
	return f, nil
}

// parseFirstPrivate walks FDArray[0]'s private DICT for local subrs.
func (f *Font) parseFirstPrivate(data []byte, fdArrayOffset int) error {
	fds, _, err := parseIndex(data, fdArrayOffset)
	if err != nil || len(fds) == 0 {
		return err
	}
	fontDict, err := parseDict(fds[0])
	if err != nil {
		return err
	}
	ops, ok := fontDict.operands(dictPrivate) // size, offset
	if !ok || len(ops) < 2 {
		return nil
	}
	size, offset := int(ops[0]), int(ops[1])
	if offset < 0 || offset+size > len(data) {
		return otvar.InvalidVariationDataError{Table: otvar.TagCFF2, Section: "PrivateDICT", Issue: "private DICT out of bounds"}
	}
	private, err := parseDict(data[offset : offset+size])
	if err != nil {
		return err
	}
	if subrs, ok := private.firstOperand(dictSubrs); ok {
		// Subrs offset is relative to the private DICT
		f.LocalSubrs, _, err = parseIndex(data, offset+int(subrs))
		return err
	}
	return nil
}

// --- INDEX ------------------------------------------------------------------

// parseIndex decodes a CFF2 INDEX at the given offset: count(u32),
// offSize(u8), count+1 offsets, then the element data. Returns the elements
// and the offset just past the INDEX.
func parseIndex(data []byte, offset int) ([][]byte, int, error) {
	if offset < 0 || offset+4 > len(data) {
		return nil, 0, otvar.InvalidVariationDataError{Table: otvar.TagCFF2, Section: "INDEX", Issue: "index out of bounds"}
	}
	count := int(u32(data[offset:]))
	if count == 0 {
		return nil, offset + 4, nil
	}
	if offset+5 > len(data) {
		return nil, 0, otvar.InvalidVariationDataError{Table: otvar.TagCFF2, Section: "INDEX", Issue: "index out of bounds"}
	}
	offSize := int(data[offset+4])
	if offSize < 1 || offSize > 4 {
		return nil, 0, otvar.InvalidVariationDataError{Table: otvar.TagCFF2, Section: "INDEX", Issue: "invalid offset size"}
	}
	offsetsStart := offset + 5
	dataStart := offsetsStart + (count+1)*offSize - 1 // offsets are 1-based
	if dataStart > len(data) {
		return nil, 0, otvar.InvalidVariationDataError{Table: otvar.TagCFF2, Section: "INDEX", Issue: "offset array out of bounds"}
	}
	readOffset := func(i int) int {
		v := 0
		for b := 0; b < offSize; b++ {
			v = v<<8 | int(data[offsetsStart+i*offSize+b])
		}
		return v
	}
	elements := make([][]byte, count)
	for i := 0; i < count; i++ {
		from, to := dataStart+readOffset(i), dataStart+readOffset(i+1)
		if from > to || to > len(data) {
			return nil, 0, otvar.InvalidVariationDataError{Table: otvar.TagCFF2, Section: "INDEX", Issue: "element bounds invalid"}
		}
		elements[i] = data[from:to]
	}
	return elements, dataStart + readOffset(count), nil
}

// --- DICT -------------------------------------------------------------------

// dict maps a DICT operator to its operand list.
type dict map[int][]float64

func (d dict) firstOperand(op int) (float64, bool) {
	ops, ok := d[op]
	if !ok || len(ops) == 0 {
		return 0, false
	}
	return ops[0], true
}

func (d dict) operands(op int) ([]float64, bool) {
	ops, ok := d[op]
	return ops, ok
}

// parseDict scans DICT data into operator → operands. Blend operators inside
// a DICT collapse their delta operands into the base values (the deltas are
// applied later by a Blender, not here).
func parseDict(data []byte) (dict, error) {
	d := make(dict)
	var stack []float64
	i := 0
	for i < len(data) {
		b0 := int(data[i])
		switch {
		case b0 >= 32 && b0 <= 246:
			stack = append(stack, float64(b0-139))
			i++
		case b0 >= 247 && b0 <= 250:
			if i+1 >= len(data) {
				return nil, dictTruncated()
			}
			stack = append(stack, float64((b0-247)*256+int(data[i+1])+108))
			i += 2
		case b0 >= 251 && b0 <= 254:
			if i+1 >= len(data) {
				return nil, dictTruncated()
			}
			stack = append(stack, float64(-(b0-251)*256-int(data[i+1])-108))
			i += 2
		case b0 == 28:
			if i+2 >= len(data) {
				return nil, dictTruncated()
			}
			stack = append(stack, float64(int16(u16(data[i+1:]))))
			i += 3
		case b0 == 29:
			if i+4 >= len(data) {
				return nil, dictTruncated()
			}
			stack = append(stack, float64(int32(u32(data[i+1:]))))
			i += 5
		case b0 == 30:
			// real number, nibble-encoded; skip to terminator 0xf
			i++
			for i < len(data) {
				by := data[i]
				i++
				if by&0x0f == 0x0f || by&0xf0 == 0xf0 {
					break
				}
			}
			stack = append(stack, 0) // reals never carry offsets we need
		case b0 == 12:
			if i+1 >= len(data) {
				return nil, dictTruncated()
			}
			d[12<<8|int(data[i+1])] = stack
			stack = nil
			i += 2
		case b0 <= 24:
			// 0..21 plus the CFF2 operators vsindex (22), blend (23) and
			// vstore (24)
			d[b0] = stack
			stack = nil
			i++
		default:
			return nil, otvar.InvalidVariationDataError{Table: otvar.TagCFF2, Section: "DICT", Issue: "reserved byte in DICT"}
		}
	}
	return d, nil
}

func dictTruncated() error {
	return otvar.InvalidVariationDataError{Table: otvar.TagCFF2, Section: "DICT", Issue: "truncated operand"}
}

func u16(b []byte) uint16 {
	_ = b[1]
	return uint16(b[0])<<8 | uint16(b[1])
}

func u32(b []byte) uint32 {
	_ = b[3]
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}

// --- Variation source -------------------------------------------------------

// Source is the otvar.VariationSource of a CFF2 font. Glyph deltas live in
// blend operands, not tuple variations, so TupleVariations is always empty;
// metric stores come from the accompanying HVAR/VVAR/MVAR tables.
type Source struct {
	CFF2 *Font
	Hvar *otvar.MetricsVariations
	Vvar *otvar.MetricsVariations
	Mvar *otvar.MvarTable
}

var _ otvar.VariationSource = (*Source)(nil)

// TupleVariations returns an empty set; CFF2 outlines vary through blending.
func (s *Source) TupleVariations(gid otvar.GlyphIndex) (*otvar.TupleSet, error) {
	return &otvar.TupleSet{}, nil
}

// ItemStore returns the store backing the given table, with otvar.TagCFF2
// naming the blend store of the font program itself.
func (s *Source) ItemStore(table otvar.Tag) *otvar.ItemVariationStore {
	if s == nil {
		return nil
	}
	switch table {
	case otvar.TagCFF2:
		if s.CFF2 != nil {
			return s.CFF2.VarStore
		}
	case otvar.TagHvar:
		if s.Hvar != nil {
			return s.Hvar.Store
		}
	case otvar.TagVvar:
		if s.Vvar != nil {
			return s.Vvar.Store
		}
	case otvar.TagMvar:
		if s.Mvar != nil {
			return s.Mvar.Store
		}
	}
	return nil
}
