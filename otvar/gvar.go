package otvar

// Table gvar holds per-glyph outline point deltas across variation regions.
// See https://docs.microsoft.com/en-us/typography/opentype/spec/gvar

// Flags of the tupleVariationCount field of a glyph's variation data.
const (
	tupleSharedPointNumbers = 0x8000
	tupleCountMask          = 0x0fff
)

// Flags of the tupleIndex field of a tuple variation header.
const (
	tupleEmbeddedPeak  = 0x8000
	tupleIntermediate  = 0x4000
	tuplePrivatePoints = 0x2000
	tupleZeroDeltas    = 0x1000
	tupleIndexMask     = 0x0fff
)

// TupleVariation is one variation record of a glyph: a region plus packed
// point-sparse delta data.
type TupleVariation struct {
	Region       Region
	Private      bool // tuple carries its own point-number list
	Intermediate bool // region has explicit start/end, not only a peak
	EmbeddedPeak bool // peak embedded in the header vs shared-tuple index
	ZeroDeltas   bool // whole record is zero deltas, no packed data
	Serialized   []byte
}

// TupleSet is the complete tuple-variation list of one glyph, together with
// the shared point numbers used by tuples without a private list
// (nil = all points).
type TupleSet struct {
	Tuples       []TupleVariation
	SharedPoints []int
}

// GvarTable is a parsed gvar table. It keeps the raw bytes and decodes a
// glyph's tuple variations on demand.
type GvarTable struct {
	data         binarySegm
	axes         []Axis
	sharedTuples [][]float64 // peak coordinates in fvar axis order
	dataOffset   uint32
	glyphOffsets []uint32
	axisCount    int
	glyphCount   int
}

const gvarHeaderSize = 20

// ParseGvar parses a gvar table. The axes are the fvar axes in declaration
// order; they key the regions of the decoded tuples.
func ParseGvar(data []byte, axes []Axis) (*GvarTable, error) {
	b := binarySegm(data)
	if len(b) < gvarHeaderSize {
		return nil, InvalidVariationDataError{Table: TagGvar, Section: "Header", Issue: "table too short"}
	}
	if b.U16(0) != 1 {
		return nil, InvalidVariationDataError{Table: TagGvar, Section: "Header", Issue: "unsupported version"}
	}
	g := &GvarTable{
		data:       b,
		axes:       axes,
		axisCount:  int(b.U16(4)),
		dataOffset: b.U32(16),
		glyphCount: int(b.U16(12)),
	}
	sharedTupleCount := int(b.U16(6))
	sharedTuplesOffset := int(b.U32(8))
	flags := b.U16(14)

	if g.axisCount != len(axes) {
		return nil, InvalidVariationDataError{Table: TagGvar, Section: "Header",
			Issue: "axis count does not match fvar"}
	}

	// shared tuple records, F2DOT14 peak coordinates
	g.sharedTuples = make([][]float64, sharedTupleCount)
	for i := 0; i < sharedTupleCount; i++ {
		rec, err := b.view(sharedTuplesOffset+i*g.axisCount*2, g.axisCount*2)
		if err != nil {
			return nil, InvalidVariationDataError{Table: TagGvar, Section: "SharedTuples", Issue: "records exceed table bounds"}
		}
		peaks := make([]float64, g.axisCount)
		for a := 0; a < g.axisCount; a++ {
			peaks[a] = f2dot14(rec[a*2 : a*2+2])
		}
		g.sharedTuples[i] = peaks
	}

	// per-glyph variation data offsets, short (×2) or long
	longOffsets := flags&1 != 0
	g.glyphOffsets = make([]uint32, g.glyphCount+1)
	if longOffsets {
		for i := 0; i <= g.glyphCount; i++ {
			off, err := b.u32(gvarHeaderSize + i*4)
			if err != nil {
				return nil, InvalidVariationDataError{Table: TagGvar, Section: "Offsets", Issue: "offset array exceeds table bounds"}
			}
			g.glyphOffsets[i] = off
		}
	} else {
		for i := 0; i <= g.glyphCount; i++ {
			off, err := b.u16(gvarHeaderSize + i*2)
			if err != nil {
				return nil, InvalidVariationDataError{Table: TagGvar, Section: "Offsets", Issue: "offset array exceeds table bounds"}
			}
			g.glyphOffsets[i] = uint32(off) * 2
		}
	}
	tracer().Debugf("gvar: %d glyphs, %d axes, %d shared tuples", g.glyphCount, g.axisCount, sharedTupleCount)
	return g, nil
}

// GlyphCount returns the number of glyphs covered by the table.
func (g *GvarTable) GlyphCount() int {
	if g == nil {
		return 0
	}
	return g.glyphCount
}

// AxisCount returns the axis count the table was built for.
func (g *GvarTable) AxisCount() int {
	if g == nil {
		return 0
	}
	return g.axisCount
}

// regionOf builds the region of one tuple from peak and optional
// intermediate start/end coordinates (fvar axis order). Peak-only tuples get
// the implicit support [min(0,peak), max(0,peak)].
func (g *GvarTable) regionOf(peaks, starts, ends []float64) Region {
	region := make(Region, len(peaks))
	for i, axis := range g.axes {
		if i >= len(peaks) || peaks[i] == 0 {
			continue // axis does not participate
		}
		if starts != nil && ends != nil {
			region[axis.Tag] = AxisRange{Start: starts[i], Peak: peaks[i], End: ends[i]}
		} else {
			region[axis.Tag] = rangeForPeak(peaks[i])
		}
	}
	return region
}

// TupleVariations decodes the tuple-variation list of one glyph. A glyph
// without variation data yields an empty set, not an error; structural
// corruption inside the glyph's data yields the tuples decoded so far plus a
// trace warning, following the degrade-don't-abort policy.
func (g *GvarTable) TupleVariations(gid GlyphIndex) (*TupleSet, error) {
	if g == nil {
		return &TupleSet{}, nil
	}
	if int(gid) >= g.glyphCount {
		return nil, InvalidVariationDataError{Table: TagGvar, Section: "GlyphVariationData",
			Issue: "glyph index out of gvar range"}
	}
	start := g.dataOffset + g.glyphOffsets[gid]
	end := g.dataOffset + g.glyphOffsets[gid+1]
	if start >= end || int(end) > len(g.data) {
		return &TupleSet{}, nil
	}
	glyphData := g.data[start:end]
	if len(glyphData) < 4 {
		return &TupleSet{}, nil
	}
	countField := u16(glyphData[0:2])
	tupleCount := int(countField & tupleCountMask)
	serialOffset := int(u16(glyphData[2:4]))
	if tupleCount == 0 || serialOffset > len(glyphData) {
		return &TupleSet{}, nil
	}

	set := &TupleSet{}
	if countField&tupleSharedPointNumbers != 0 {
		points, consumed, ok := ParsePointNumbers(glyphData[serialOffset:])
		if !ok {
			tracer().Infof("gvar: glyph %d has corrupt shared point numbers", gid)
			return &TupleSet{}, nil
		}
		set.SharedPoints = points
		serialOffset += consumed
	}

	headerOffset := 4
	for t := 0; t < tupleCount; t++ {
		if headerOffset+4 > len(glyphData) {
			tracer().Infof("gvar: glyph %d tuple header %d truncated", gid, t)
			break
		}
		dataSize := int(u16(glyphData[headerOffset:]))
		tupleIndex := u16(glyphData[headerOffset+2:])
		headerOffset += 4

		tv := TupleVariation{
			Private:      tupleIndex&tuplePrivatePoints != 0,
			Intermediate: tupleIndex&tupleIntermediate != 0,
			EmbeddedPeak: tupleIndex&tupleEmbeddedPeak != 0,
			ZeroDeltas:   tupleIndex&tupleZeroDeltas != 0,
		}

		var peaks, starts, ends []float64
		if tv.EmbeddedPeak {
			if headerOffset+g.axisCount*2 > len(glyphData) {
				break
			}
			peaks = readF2Dot14Slice(glyphData[headerOffset:], g.axisCount)
			headerOffset += g.axisCount * 2
		} else {
			idx := int(tupleIndex & tupleIndexMask)
			if idx >= len(g.sharedTuples) {
				tracer().Infof("gvar: glyph %d references shared tuple %d out of range", gid, idx)
				break
			}
			peaks = g.sharedTuples[idx]
		}
		if tv.Intermediate {
			if headerOffset+g.axisCount*4 > len(glyphData) {
				break
			}
			starts = readF2Dot14Slice(glyphData[headerOffset:], g.axisCount)
			headerOffset += g.axisCount * 2
			ends = readF2Dot14Slice(glyphData[headerOffset:], g.axisCount)
			headerOffset += g.axisCount * 2
		}
		tv.Region = g.regionOf(peaks, starts, ends)

		if serialOffset+dataSize > len(glyphData) {
			dataSize = len(glyphData) - serialOffset
		}
		tv.Serialized = glyphData[serialOffset : serialOffset+dataSize]
		serialOffset += dataSize
		set.Tuples = append(set.Tuples, tv)
	}
	return set, nil
}

func readF2Dot14Slice(b []byte, count int) []float64 {
	values := make([]float64, count)
	for i := 0; i < count; i++ {
		values[i] = f2dot14(b[i*2 : i*2+2])
	}
	return values
}
