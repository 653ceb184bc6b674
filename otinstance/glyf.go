package otinstance

import (
	"github.com/npillmayer/varfont/otvar"
)

// glyf table flag bits of simple glyph points
const (
	flagOnCurve      = 0x01
	flagXShort       = 0x02
	flagYShort       = 0x04
	flagRepeat       = 0x08
	flagXSameOrPlus  = 0x10
	flagYSameOrPlus  = 0x20
	flagOverlap      = 0x40
)

// GlyphTable is a decoded glyf/loca pair. It serves base outlines to the
// delta applier and re-serializes varied outlines into new glyf records.
type GlyphTable struct {
	glyf    []byte
	offsets []uint32 // numGlyphs+1 entries, byte offsets into glyf
}

var _ otvar.OutlineProvider = (*GlyphTable)(nil)

// ParseGlyphTable decodes loca (short or long format, per
// head.indexToLocFormat) over the raw glyf data.
func ParseGlyphTable(glyf, loca []byte, longLoca bool, numGlyphs int) (*GlyphTable, error) {
	entrySize := 2
	if longLoca {
		entrySize = 4
	}
	if len(loca) < (numGlyphs+1)*entrySize {
		return nil, otvar.InvalidVariationDataError{Table: otvar.T("loca"), Section: "Offsets",
			Issue: "table too short for glyph count"}
	}
	offsets := make([]uint32, numGlyphs+1)
	for i := range offsets {
		if longLoca {
			offsets[i] = uint32(loca[i*4])<<24 | uint32(loca[i*4+1])<<16 |
				uint32(loca[i*4+2])<<8 | uint32(loca[i*4+3])
		} else {
			offsets[i] = uint32(uint16(loca[i*2])<<8|uint16(loca[i*2+1])) * 2
		}
	}
	for i := 0; i < numGlyphs; i++ {
		if offsets[i] > offsets[i+1] || offsets[i+1] > uint32(len(glyf)) {
			return nil, otvar.InvalidVariationDataError{Table: otvar.T("loca"), Section: "Offsets",
				Issue: "offsets not monotonic or out of glyf bounds"}
		}
	}
	return &GlyphTable{glyf: glyf, offsets: offsets}, nil
}

// GlyphCount returns the number of glyphs covered by loca.
func (t *GlyphTable) GlyphCount() int {
	return len(t.offsets) - 1
}

// RawGlyph returns the undecoded glyf record of a glyph. Empty glyphs
// return a zero-length slice.
func (t *GlyphTable) RawGlyph(gid otvar.GlyphIndex) ([]byte, bool) {
	if int(gid) >= t.GlyphCount() {
		return nil, false
	}
	return t.glyf[t.offsets[gid]:t.offsets[gid+1]], true
}

// IsComposite reports whether a glyph is a composite (negative contour
// count). Empty glyphs are not composite.
func (t *GlyphTable) IsComposite(gid otvar.GlyphIndex) bool {
	raw, ok := t.RawGlyph(gid)
	if !ok || len(raw) < 2 {
		return false
	}
	return int16(uint16(raw[0])<<8|uint16(raw[1])) < 0
}

// BasePoints decodes the outline of a simple glyph. Composite and empty
// glyphs report false; their records pass through instancing unvaried.
func (t *GlyphTable) BasePoints(gid otvar.GlyphIndex) (otvar.GlyphOutline, bool) {
	raw, ok := t.RawGlyph(gid)
	if !ok || len(raw) < 10 {
		return otvar.GlyphOutline{}, false
	}
	contourCount := int(int16(uint16(raw[0])<<8 | uint16(raw[1])))
	if contourCount < 0 {
		return otvar.GlyphOutline{}, false
	}
	return parseSimpleGlyph(raw, contourCount)
}

func parseSimpleGlyph(raw []byte, contourCount int) (otvar.GlyphOutline, bool) {
	pos := 10 // skip contour count and bounding box
	if pos+contourCount*2+2 > len(raw) {
		return otvar.GlyphOutline{}, false
	}
	ends := make([]int, contourCount)
	for i := 0; i < contourCount; i++ {
		ends[i] = int(uint16(raw[pos])<<8 | uint16(raw[pos+1]))
		pos += 2
	}
	pointCount := 0
	if contourCount > 0 {
		pointCount = ends[contourCount-1] + 1
	}
	instrLen := int(uint16(raw[pos])<<8 | uint16(raw[pos+1]))
	pos += 2 + instrLen
	if pos > len(raw) {
		return otvar.GlyphOutline{}, false
	}

	flags := make([]byte, 0, pointCount)
	for len(flags) < pointCount {
		if pos >= len(raw) {
			return otvar.GlyphOutline{}, false
		}
		f := raw[pos]
		pos++
		flags = append(flags, f)
		if f&flagRepeat != 0 {
			if pos >= len(raw) {
				return otvar.GlyphOutline{}, false
			}
			for r := 0; r < int(raw[pos]); r++ {
				flags = append(flags, f)
			}
			pos++
		}
	}

	points := make([]otvar.Point, pointCount)
	x := 0
	for i, f := range flags[:pointCount] {
		switch {
		case f&flagXShort != 0:
			if pos >= len(raw) {
				return otvar.GlyphOutline{}, false
			}
			if f&flagXSameOrPlus != 0 {
				x += int(raw[pos])
			} else {
				x -= int(raw[pos])
			}
			pos++
		case f&flagXSameOrPlus == 0:
			if pos+2 > len(raw) {
				return otvar.GlyphOutline{}, false
			}
			x += int(int16(uint16(raw[pos])<<8 | uint16(raw[pos+1])))
			pos += 2
		}
		points[i].X = float64(x)
		points[i].OnCurve = f&flagOnCurve != 0
	}
	y := 0
	for i, f := range flags[:pointCount] {
		switch {
		case f&flagYShort != 0:
			if pos >= len(raw) {
				return otvar.GlyphOutline{}, false
			}
			if f&flagYSameOrPlus != 0 {
				y += int(raw[pos])
			} else {
				y -= int(raw[pos])
			}
			pos++
		case f&flagYSameOrPlus == 0:
			if pos+2 > len(raw) {
				return otvar.GlyphOutline{}, false
			}
			y += int(int16(uint16(raw[pos])<<8 | uint16(raw[pos+1])))
			pos += 2
		}
		points[i].Y = float64(y)
	}
	return otvar.GlyphOutline{Points: points, Ends: ends}, true
}

// instructions returns the instruction bytes of a simple glyph so a
// re-serialized record can keep them.
func simpleGlyphInstructions(raw []byte, contourCount int) []byte {
	pos := 10 + contourCount*2
	if pos+2 > len(raw) {
		return nil
	}
	instrLen := int(uint16(raw[pos])<<8 | uint16(raw[pos+1]))
	pos += 2
	if pos+instrLen > len(raw) {
		return nil
	}
	return raw[pos : pos+instrLen]
}

// Reserialize encodes a varied outline as a new glyf record for the given
// glyph, rounding coordinates to font units and keeping the original
// instructions. Composite and empty glyphs report false.
func (t *GlyphTable) Reserialize(gid otvar.GlyphIndex, outline otvar.GlyphOutline) ([]byte, bool) {
	raw, ok := t.RawGlyph(gid)
	if !ok || len(raw) < 10 {
		return nil, false
	}
	contourCount := int(int16(uint16(raw[0])<<8 | uint16(raw[1])))
	if contourCount < 0 || contourCount != len(outline.Ends) {
		return nil, false
	}
	return serializeSimpleGlyph(outline, simpleGlyphInstructions(raw, contourCount)), true
}

// serializeSimpleGlyph packs an outline into the simple-glyph wire format:
// contour count, bounding box, contour ends, instructions, then flags with
// repeat compression and short/long per-axis deltas.
func serializeSimpleGlyph(outline otvar.GlyphOutline, instructions []byte) []byte {
	round := func(v float64) int {
		if v < 0 {
			return int(v - 0.5)
		}
		return int(v + 0.5)
	}
	n := len(outline.Points)
	xs := make([]int, n)
	ys := make([]int, n)
	xMin, yMin, xMax, yMax := 0, 0, 0, 0
	for i, p := range outline.Points {
		xs[i], ys[i] = round(p.X), round(p.Y)
		if i == 0 {
			xMin, xMax, yMin, yMax = xs[i], xs[i], ys[i], ys[i]
			continue
		}
		if xs[i] < xMin {
			xMin = xs[i]
		}
		if xs[i] > xMax {
			xMax = xs[i]
		}
		if ys[i] < yMin {
			yMin = ys[i]
		}
		if ys[i] > yMax {
			yMax = ys[i]
		}
	}

	flags := make([]byte, n)
	var xData, yData []byte
	prevX, prevY := 0, 0
	for i := 0; i < n; i++ {
		f := byte(0)
		if outline.Points[i].OnCurve {
			f |= flagOnCurve
		}
		dx := xs[i] - prevX
		prevX = xs[i]
		switch {
		case dx == 0:
			f |= flagXSameOrPlus
		case dx >= -255 && dx <= 255:
			f |= flagXShort
			if dx >= 0 {
				f |= flagXSameOrPlus
			} else {
				dx = -dx
			}
			xData = append(xData, byte(dx))
		default:
			xData = append(xData, byte(uint16(dx)>>8), byte(dx))
		}
		dy := ys[i] - prevY
		prevY = ys[i]
		switch {
		case dy == 0:
			f |= flagYSameOrPlus
		case dy >= -255 && dy <= 255:
			f |= flagYShort
			if dy >= 0 {
				f |= flagYSameOrPlus
			} else {
				dy = -dy
			}
			yData = append(yData, byte(dy))
		default:
			yData = append(yData, byte(uint16(dy)>>8), byte(dy))
		}
		flags[i] = f
	}

	var out []byte
	putU16 := func(v uint16) {
		out = append(out, byte(v>>8), byte(v))
	}
	putU16(uint16(len(outline.Ends)))
	putU16(uint16(int16(xMin)))
	putU16(uint16(int16(yMin)))
	putU16(uint16(int16(xMax)))
	putU16(uint16(int16(yMax)))
	for _, e := range outline.Ends {
		putU16(uint16(e))
	}
	putU16(uint16(len(instructions)))
	out = append(out, instructions...)
	for i := 0; i < n; {
		run := 1
		for i+run < n && flags[i+run] == flags[i] && run < 256 {
			run++
		}
		if run > 1 {
			out = append(out, flags[i]|flagRepeat, byte(run-1))
		} else {
			out = append(out, flags[i])
		}
		i += run
	}
	out = append(out, xData...)
	out = append(out, yData...)
	if len(out)%2 != 0 { // glyf records are 2-byte aligned
		out = append(out, 0)
	}
	return out
}
