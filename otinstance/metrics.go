package otinstance

import (
	"github.com/npillmayer/varfont/otvar"
)

// HmtxTable is a decoded hmtx (or vmtx) table, expanded so every glyph has
// its own advance and side bearing.
type HmtxTable struct {
	Advances     []int // per glyph, font units
	SideBearings []int
}

// ParseHmtx decodes hmtx/vmtx. numMetrics is hhea.numberOfHMetrics (or the
// vhea equivalent); glyphs beyond it share the last advance.
func ParseHmtx(data []byte, numMetrics, numGlyphs int) (*HmtxTable, error) {
	if numMetrics < 1 || numMetrics > numGlyphs {
		return nil, otvar.InvalidVariationDataError{Table: otvar.T("hmtx"), Section: "Header",
			Issue: "metric count out of range"}
	}
	if len(data) < numMetrics*4+(numGlyphs-numMetrics)*2 {
		return nil, otvar.InvalidVariationDataError{Table: otvar.T("hmtx"), Section: "Metrics",
			Issue: "table too short for glyph count"}
	}
	t := &HmtxTable{
		Advances:     make([]int, numGlyphs),
		SideBearings: make([]int, numGlyphs),
	}
	for i := 0; i < numMetrics; i++ {
		t.Advances[i] = int(uint16(data[i*4])<<8 | uint16(data[i*4+1]))
		t.SideBearings[i] = int(int16(uint16(data[i*4+2])<<8 | uint16(data[i*4+3])))
	}
	base := numMetrics * 4
	for i := numMetrics; i < numGlyphs; i++ {
		t.Advances[i] = t.Advances[numMetrics-1]
		off := base + (i-numMetrics)*2
		t.SideBearings[i] = int(int16(uint16(data[off])<<8 | uint16(data[off+1])))
	}
	return t, nil
}

// Serialize packs the metrics back into wire format, compacting the trailing
// run of equal advances into the short form. Returns the table bytes and the
// resulting numberOfHMetrics for the hhea rebuild.
func (t *HmtxTable) Serialize() ([]byte, int) {
	numGlyphs := len(t.Advances)
	numMetrics := numGlyphs
	for numMetrics > 1 && t.Advances[numMetrics-1] == t.Advances[numMetrics-2] {
		numMetrics--
	}
	out := make([]byte, 0, numMetrics*4+(numGlyphs-numMetrics)*2)
	for i := 0; i < numMetrics; i++ {
		out = append(out, byte(uint16(t.Advances[i])>>8), byte(t.Advances[i]),
			byte(uint16(int16(t.SideBearings[i]))>>8), byte(int16(t.SideBearings[i])))
	}
	for i := numMetrics; i < numGlyphs; i++ {
		out = append(out, byte(uint16(int16(t.SideBearings[i]))>>8), byte(int16(t.SideBearings[i])))
	}
	return out, numMetrics
}

// MetricsAdjuster applies metric variations at one design-space location:
// per-glyph advances and side bearings through an HVAR or VVAR view,
// font-wide values through MVAR. One adjuster serves one metric direction.
type MetricsAdjuster struct {
	Metrics *otvar.MetricsVariations // HVAR for hmtx, VVAR for vmtx
	Mvar    *otvar.MvarTable
	Coords  otvar.NormalizedCoords
}

// AdjustedAdvance returns the advance of a glyph at the adjuster's location,
// rounded to font units. Without a metrics table the base advance passes
// through.
func (m *MetricsAdjuster) AdjustedAdvance(gid otvar.GlyphIndex, base int) int {
	if m.Metrics == nil {
		return base
	}
	return base + roundDelta(m.Metrics.AdvanceDelta(gid, m.Coords))
}

// AdjustedSideBearing returns the side bearing of a glyph at the adjuster's
// location.
func (m *MetricsAdjuster) AdjustedSideBearing(gid otvar.GlyphIndex, base int) int {
	if m.Metrics == nil {
		return base
	}
	return base + roundDelta(m.Metrics.SideBearingDelta(gid, m.Coords))
}

// AdjustTable applies the per-glyph deltas to every glyph of an hmtx or vmtx
// table, returning a new table. The input is not modified.
func (m *MetricsAdjuster) AdjustTable(t *HmtxTable) *HmtxTable {
	adjusted := &HmtxTable{
		Advances:     make([]int, len(t.Advances)),
		SideBearings: make([]int, len(t.SideBearings)),
	}
	for gid := range t.Advances {
		adjusted.Advances[gid] = m.AdjustedAdvance(otvar.GlyphIndex(gid), t.Advances[gid])
		adjusted.SideBearings[gid] = m.AdjustedSideBearing(otvar.GlyphIndex(gid), t.SideBearings[gid])
	}
	return adjusted
}

// FontWideDelta returns the rounded MVAR delta for a metric tag, 0 if the
// metric does not vary.
func (m *MetricsAdjuster) FontWideDelta(metric otvar.Tag) int {
	if m.Mvar == nil {
		return 0
	}
	d, ok := m.Mvar.Delta(metric, m.Coords)
	if !ok {
		return 0
	}
	return roundDelta(d)
}

func roundDelta(d float64) int {
	if d < 0 {
		return int(d - 0.5)
	}
	return int(d + 0.5)
}

// hhea byte offsets of the fields instancing touches; vhea uses the same
// slots (vertTypoAscender etc., numOfLongVerMetrics)
const (
	hheaAscenderOffset   = 4
	hheaDescenderOffset  = 6
	hheaLineGapOffset    = 8
	hheaNumMetricsOffset = 34
	hheaTableLength      = 36
)

// RebuildHhea patches a copy of hhea with MVAR-adjusted ascender, descender
// and line gap and the new numberOfHMetrics.
func (m *MetricsAdjuster) RebuildHhea(hhea []byte, numMetrics int) ([]byte, error) {
	return m.rebuildHeader(hhea, otvar.T("hhea"), numMetrics,
		otvar.TagMetricAscender, otvar.TagMetricDescender, otvar.TagMetricLineGap)
}

// RebuildVhea is RebuildHhea for the vertical header, patching the vertical
// typographic metrics instead.
func (m *MetricsAdjuster) RebuildVhea(vhea []byte, numMetrics int) ([]byte, error) {
	return m.rebuildHeader(vhea, otvar.T("vhea"), numMetrics,
		otvar.TagMetricVAscender, otvar.TagMetricVDescend, otvar.TagMetricVLineGap)
}

func (m *MetricsAdjuster) rebuildHeader(data []byte, table otvar.Tag, numMetrics int, asc, desc, gap otvar.Tag) ([]byte, error) {
	if len(data) < hheaTableLength {
		return nil, otvar.InvalidVariationDataError{Table: table, Section: "Header",
			Issue: "table too short"}
	}
	out := make([]byte, len(data))
	copy(out, data)
	patch := func(offset int, metric otvar.Tag) {
		base := int(int16(uint16(out[offset])<<8 | uint16(out[offset+1])))
		v := int16(base + m.FontWideDelta(metric))
		out[offset] = byte(uint16(v) >> 8)
		out[offset+1] = byte(v)
	}
	patch(hheaAscenderOffset, asc)
	patch(hheaDescenderOffset, desc)
	patch(hheaLineGapOffset, gap)
	out[hheaNumMetricsOffset] = byte(uint16(numMetrics) >> 8)
	out[hheaNumMetricsOffset+1] = byte(numMetrics)
	return out, nil
}
