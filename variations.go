package varfont

import (
	"github.com/npillmayer/varfont/otcff"
	"github.com/npillmayer/varfont/otinstance"
	"github.com/npillmayer/varfont/otvar"
)

// Variations bundles a font's decoded variation subsystem: the design-space
// description from fvar/avar, a VariationSource for outline and metric
// deltas, and the decoded collaborator tables instancing needs.
type Variations struct {
	Fvar   *otvar.FvarTable
	Avar   *otvar.AvarTable
	Axes   []otvar.Axis
	Source otvar.VariationSource
	CFF2   *otcff.Font // nil for TrueType-flavored fonts
	Names  *otinstance.NameTable
	Glyphs *otinstance.GlyphTable
	Hmtx   *otinstance.HmtxTable
	Hhea   []byte
	Vmtx   *otinstance.HmtxTable
	Vhea   []byte
}

// decodeVariations wires the variation subsystem from raw tables. A font
// without fvar yields nil. Broken optional tables degrade with a trace
// message; only an unusable fvar is an error.
func decodeVariations(tables map[otvar.Tag][]byte) (*Variations, error) {
	fvarData, ok := tables[otvar.TagFvar]
	if !ok {
		return nil, nil
	}
	fvar, err := otvar.ParseFvar(fvarData)
	if err != nil {
		return nil, err
	}
	v := &Variations{Fvar: fvar, Axes: fvar.Axes}
	if data, ok := tables[otvar.TagAvar]; ok {
		if v.Avar, err = otvar.ParseAvar(data); err != nil {
			tracer().Infof("avar not decodable, axis mapping skipped: %v", err)
			v.Avar = nil
		}
	}
	if data, ok := tables[otvar.T("name")]; ok {
		if v.Names, err = otinstance.ParseNames(data); err != nil {
			tracer().Infof("name table not decodable: %v", err)
			v.Names = nil
		}
	}
	if _, isCFF2 := tables[otvar.TagCFF2]; isCFF2 {
		err = v.decodeCFF2Flavor(tables)
	} else {
		err = v.decodeTrueTypeFlavor(tables)
	}
	if err != nil {
		return nil, err
	}
	v.decodeMetricTables(tables)
	return v, nil
}

// decodeTrueTypeFlavor decodes gvar and the glyf/loca outline provider.
func (v *Variations) decodeTrueTypeFlavor(tables map[otvar.Tag][]byte) error {
	src := &otvar.TrueTypeSource{}
	if data, ok := tables[otvar.TagGvar]; ok {
		gvar, err := otvar.ParseGvar(data, v.Axes)
		if err != nil {
			return err
		}
		src.Gvar = gvar
	}
	src.Hvar = parseMetricsTable(tables, otvar.TagHvar, v.Axes)
	src.Vvar = parseMetricsTable(tables, otvar.TagVvar, v.Axes)
	if data, ok := tables[otvar.TagMvar]; ok {
		mvar, err := otvar.ParseMvar(data, v.Axes)
		if err != nil {
			tracer().Infof("MVAR not decodable, font-wide metrics unvaried: %v", err)
		} else {
			src.Mvar = mvar
		}
	}
	v.Source = src

	glyf, hasGlyf := tables[otvar.T("glyf")]
	loca, hasLoca := tables[otvar.T("loca")]
	if hasGlyf && hasLoca {
		glyphs, err := otinstance.ParseGlyphTable(glyf, loca, longLocaFormat(tables), numGlyphs(tables))
		if err != nil {
			tracer().Infof("glyf/loca not decodable, no outline instancing: %v", err)
		} else {
			v.Glyphs = glyphs
		}
	}
	return nil
}

// decodeCFF2Flavor decodes the CFF2 font program and its blend store.
func (v *Variations) decodeCFF2Flavor(tables map[otvar.Tag][]byte) error {
	cff2, err := otcff.Parse(tables[otvar.TagCFF2], v.Axes)
	if err != nil {
		return err
	}
	v.CFF2 = cff2
	v.Source = &otcff.Source{
		CFF2: cff2,
		Hvar: parseMetricsTable(tables, otvar.TagHvar, v.Axes),
		Vvar: parseMetricsTable(tables, otvar.TagVvar, v.Axes),
	}
	return nil
}

func (v *Variations) decodeMetricTables(tables map[otvar.Tag][]byte) {
	n := numGlyphs(tables)
	if hmtx, ok := tables[otvar.T("hmtx")]; ok {
		parsed, err := otinstance.ParseHmtx(hmtx, numberOfMetrics(tables, otvar.T("hhea")), n)
		if err != nil {
			tracer().Infof("hmtx not decodable, no metric instancing: %v", err)
		} else {
			v.Hmtx = parsed
			v.Hhea = tables[otvar.T("hhea")]
		}
	}
	if vmtx, ok := tables[otvar.T("vmtx")]; ok {
		parsed, err := otinstance.ParseHmtx(vmtx, numberOfMetrics(tables, otvar.T("vhea")), n)
		if err != nil {
			tracer().Infof("vmtx not decodable, vertical metrics unvaried: %v", err)
		} else {
			v.Vmtx = parsed
			v.Vhea = tables[otvar.T("vhea")]
		}
	}
}

func parseMetricsTable(tables map[otvar.Tag][]byte, tag otvar.Tag, axes []otvar.Axis) *otvar.MetricsVariations {
	data, ok := tables[tag]
	if !ok {
		return nil
	}
	mv, err := otvar.ParseMetricsVariations(tag, data, axes)
	if err != nil {
		tracer().Infof("%s not decodable, metrics unvaried: %v", tag, err)
		return nil
	}
	return mv
}

// --- Convenience API --------------------------------------------------------

// Axes returns the font's variation axes, nil for static fonts.
func (f *ScalableFont) Axes() []otvar.Axis {
	if f.Variations == nil {
		return nil
	}
	return f.Variations.Axes
}

// NamedInstances lists the named instances the designer shipped in fvar.
func (f *ScalableFont) NamedInstances() []otvar.NamedInstance {
	if f.Variations == nil || f.Variations.Fvar == nil {
		return nil
	}
	return f.Variations.Fvar.Instances
}

// InstanceName resolves a named instance's subfamily name from the name
// table, synthesizing one when the table has no entry.
func (f *ScalableFont) InstanceName(inst otvar.NamedInstance) string {
	if f.Variations == nil {
		return ""
	}
	return f.Variations.Names.InstanceName(inst)
}

// Normalize maps user-space coordinates to normalized design space,
// including the avar remapping.
func (f *ScalableFont) Normalize(user otvar.UserCoords) otvar.NormalizedCoords {
	if f.Variations == nil {
		return otvar.NormalizedCoords{}
	}
	return otvar.NormalizeAll(user, f.Variations.Axes, f.Variations.Avar)
}

// OutlineAt returns a glyph's outline varied to the given location. Static
// fonts and CFF2-flavored fonts report false.
func (f *ScalableFont) OutlineAt(gid otvar.GlyphIndex, user otvar.UserCoords) (otvar.GlyphOutline, bool) {
	if f.Variations == nil || f.Variations.Glyphs == nil {
		return otvar.GlyphOutline{}, false
	}
	applier := &otvar.DeltaApplier{
		Outlines: f.Variations.Glyphs,
		Source:   f.Variations.Source,
		Axes:     f.Variations.Axes,
		Avar:     f.Variations.Avar,
	}
	return applier.ApplyDeltas(gid, user)
}

// NewGenerator creates an instance generator wired to this font's tables.
func (f *ScalableFont) NewGenerator() *otinstance.Generator {
	if f.Variations == nil {
		return &otinstance.Generator{}
	}
	return &otinstance.Generator{
		Axes:   f.Variations.Axes,
		Avar:   f.Variations.Avar,
		Fvar:   f.Variations.Fvar,
		Source: f.Variations.Source,
		Glyphs: f.Variations.Glyphs,
		Hmtx:   f.Variations.Hmtx,
		Hhea:   f.Variations.Hhea,
		Vmtx:   f.Variations.Vmtx,
		Vhea:   f.Variations.Vhea,
	}
}

// Validate runs the variation data checks over the font's raw tables.
func (f *ScalableFont) Validate() *otvar.ValidationReport {
	input := otvar.ValidationInput{
		Tables:     f.Tables,
		GlyphCount: numGlyphs(f.Tables),
	}
	if f.Variations != nil && f.Variations.CFF2 != nil {
		input.CFF2Store = f.Variations.CFF2.VarStore
	}
	var validator otvar.Validator
	return validator.Validate(input)
}
