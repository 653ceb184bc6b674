package otinstance

import (
	"fmt"

	"github.com/npillmayer/varfont/otvar"
)

// Generator produces static instances of a variable font. The table fields
// hold the decoded variable font; nil fields simply limit what an instance
// can contain (no Glyphs means no glyf rebuild, no Hvar means unvaried
// advances).
type Generator struct {
	Axes   []otvar.Axis
	Avar   *otvar.AvarTable
	Fvar   *otvar.FvarTable
	Source otvar.VariationSource
	Glyphs *GlyphTable
	Hmtx   *HmtxTable
	Hhea   []byte     // raw hhea, patched per instance
	Vmtx   *HmtxTable // vertical metrics, when the font has them
	Vhea   []byte
}

// InstanceResult is one generated instance: the rebuilt tables plus the
// warnings accumulated for elements that degraded to their base values.
type InstanceResult struct {
	Coords   otvar.UserCoords
	Tables   map[otvar.Tag][]byte
	Warnings []string
}

// Generate builds the instance at the given user-space location. A failing
// glyph or metric keeps its unvaried base form and adds a warning; only a
// structurally unusable font (no axes) is an error.
func (g *Generator) Generate(user otvar.UserCoords) (*InstanceResult, error) {
	if len(g.Axes) == 0 {
		return nil, otvar.MissingVariationTableError{Table: otvar.TagFvar}
	}
	coords := otvar.NormalizeAll(user, g.Axes, g.Avar)
	tracer().Debugf("generating instance at %v", coords)
	result := &InstanceResult{
		Coords: user,
		Tables: make(map[otvar.Tag][]byte),
	}
	if g.Glyphs != nil {
		g.rebuildOutlines(coords, result)
	}
	g.rebuildMetrics(coords, result)
	return result, nil
}

// GenerateNamedInstance resolves a named instance from fvar and generates it.
func (g *Generator) GenerateNamedInstance(index int) (*InstanceResult, error) {
	if g.Fvar == nil {
		return nil, otvar.MissingVariationTableError{Table: otvar.TagFvar}
	}
	inst, err := g.Fvar.Instance(index)
	if err != nil {
		return nil, err
	}
	return g.Generate(g.Fvar.UserCoordsOf(inst))
}

// rebuildOutlines assembles new glyf and loca tables, glyph by glyph. Glyphs
// whose deltas cannot be applied or re-serialized keep their original
// record; composites pass through unvaried.
func (g *Generator) rebuildOutlines(coords otvar.NormalizedCoords, result *InstanceResult) {
	applier := &otvar.DeltaApplier{
		Outlines: g.Glyphs,
		Source:   g.Source,
		Axes:     g.Axes,
		Avar:     g.Avar,
	}
	numGlyphs := g.Glyphs.GlyphCount()
	var glyf []byte
	offsets := make([]uint32, 0, numGlyphs+1)
	for gid := 0; gid < numGlyphs; gid++ {
		offsets = append(offsets, uint32(len(glyf)))
		raw, _ := g.Glyphs.RawGlyph(otvar.GlyphIndex(gid))
		record := raw
		switch {
		case len(raw) == 0:
			// empty glyph stays empty
		case g.Glyphs.IsComposite(otvar.GlyphIndex(gid)):
			result.warnf("glyph %d: composite passed through unvaried", gid)
		default:
			outline, ok := applier.ApplyNormalized(otvar.GlyphIndex(gid), coords)
			if !ok {
				result.warnf("glyph %d: variation data unusable, base outline kept", gid)
				break
			}
			if varied, ok := g.Glyphs.Reserialize(otvar.GlyphIndex(gid), outline); ok {
				record = varied
			} else {
				result.warnf("glyph %d: cannot re-serialize, base outline kept", gid)
			}
		}
		glyf = append(glyf, record...)
	}
	offsets = append(offsets, uint32(len(glyf)))
	result.Tables[otvar.T("glyf")] = glyf
	result.Tables[otvar.T("loca")] = serializeLongLoca(offsets)
}

// rebuildMetrics assembles hmtx/hhea and, when present, vmtx/vhea with
// variation-adjusted values.
func (g *Generator) rebuildMetrics(coords otvar.NormalizedCoords, result *InstanceResult) {
	hvar, vvar, mvar := g.metricsVariations()
	if g.Hmtx != nil {
		adjuster := &MetricsAdjuster{Metrics: hvar, Mvar: mvar, Coords: coords}
		hmtx, numMetrics := adjuster.AdjustTable(g.Hmtx).Serialize()
		result.Tables[otvar.T("hmtx")] = hmtx
		if g.Hhea != nil {
			hhea, err := adjuster.RebuildHhea(g.Hhea, numMetrics)
			if err != nil {
				result.warnf("hhea: %v, base table kept", err)
				hhea = g.Hhea
			}
			result.Tables[otvar.T("hhea")] = hhea
		}
	}
	if g.Vmtx != nil {
		adjuster := &MetricsAdjuster{Metrics: vvar, Mvar: mvar, Coords: coords}
		vmtx, numMetrics := adjuster.AdjustTable(g.Vmtx).Serialize()
		result.Tables[otvar.T("vmtx")] = vmtx
		if g.Vhea != nil {
			vhea, err := adjuster.RebuildVhea(g.Vhea, numMetrics)
			if err != nil {
				result.warnf("vhea: %v, base table kept", err)
				vhea = g.Vhea
			}
			result.Tables[otvar.T("vhea")] = vhea
		}
	}
}

// metricsVariations resolves the HVAR/VVAR/MVAR views of the generator's
// variation source.
func (g *Generator) metricsVariations() (hvar, vvar *otvar.MetricsVariations, mvar *otvar.MvarTable) {
	if src, ok := g.Source.(*otvar.TrueTypeSource); ok && src != nil {
		return src.Hvar, src.Vvar, src.Mvar
	}
	if g.Source == nil {
		return nil, nil, nil
	}
	// generic fallback: stores without delta-set index maps
	if store := g.Source.ItemStore(otvar.TagHvar); store != nil {
		hvar = &otvar.MetricsVariations{Table: otvar.TagHvar, Store: store}
	}
	if store := g.Source.ItemStore(otvar.TagVvar); store != nil {
		vvar = &otvar.MetricsVariations{Table: otvar.TagVvar, Store: store}
	}
	if store := g.Source.ItemStore(otvar.TagMvar); store != nil {
		mvar = &otvar.MvarTable{Store: store}
	}
	return hvar, vvar, mvar
}

func (r *InstanceResult) warnf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	tracer().Infof("instance degraded: %s", msg)
	r.Warnings = append(r.Warnings, msg)
}

// serializeLongLoca writes loca in the long (32 bit) format, which every
// generated instance uses regardless of the donor font's format.
func serializeLongLoca(offsets []uint32) []byte {
	out := make([]byte, 0, len(offsets)*4)
	for _, o := range offsets {
		out = append(out, byte(o>>24), byte(o>>16), byte(o>>8), byte(o))
	}
	return out
}
