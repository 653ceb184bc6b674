package otvar

import "fmt"

// The Validator performs read-only cross-table consistency checks over a
// font's variation data, independent of instancing. It never mutates the
// font and accumulates findings instead of raising them; callers inspect
// the returned report.

// ValidationInput bundles the data the Validator inspects. Tables holds the
// raw bytes of the variation-bearing tables by tag; GlyphCount is the glyph
// count from maxp. CFF2Store is the item variation store extracted from a
// CFF2 table, when the font has one (CFF2 DICT walking is not this
// package's concern).
type ValidationInput struct {
	Tables     map[Tag][]byte
	GlyphCount int
	CFF2Store  *ItemVariationStore
}

// ValidationReport is the result of one Validate call.
type ValidationReport struct {
	Valid    bool
	Errors   []ValidationIssue
	Warnings []ValidationIssue
}

// Validator checks variation data for structural consistency. The zero value
// is ready for use; Validate keeps no state between invocations.
type Validator struct{}

// Validate runs all checks and returns a fresh report. Errors mark the
// variation data invalid; warnings mark it suspicious but usable.
func (v *Validator) Validate(input ValidationInput) *ValidationReport {
	ic := &issueCollector{}
	fvar := v.checkFvar(input, ic)
	if fvar != nil {
		v.checkInstances(fvar, ic)
		v.checkGvar(input, fvar, ic)
		v.checkMetricVariations(input, fvar, ic)
		v.checkCFF2(input, fvar, ic)
	}
	if _, ok := input.Tables[TagCvar]; ok {
		ic.addWarning(TagCvar, "Table", "cvar present but not checked by this validator")
	}
	return &ValidationReport{
		Valid:    len(ic.errors) == 0,
		Errors:   ic.errors,
		Warnings: ic.warnings,
	}
}

func (v *Validator) checkFvar(input ValidationInput, ic *issueCollector) *FvarTable {
	data, ok := input.Tables[TagFvar]
	if !ok {
		ic.addError(TagFvar, "Table", "font declares variation data but has no fvar table")
		return nil
	}
	fvar, err := ParseFvar(data)
	if err != nil {
		ic.addError(TagFvar, "Table", err.Error())
		return nil
	}
	if len(fvar.Axes) == 0 {
		ic.addError(TagFvar, "Axes", "fvar declares no axes")
		return nil
	}
	for _, axis := range fvar.Axes {
		if !(axis.Minimum <= axis.Default && axis.Default <= axis.Maximum) {
			ic.addError(TagFvar, "Axes",
				fmt.Sprintf("axis %s violates min ≤ default ≤ max (%g, %g, %g)",
					axis.Tag, axis.Minimum, axis.Default, axis.Maximum))
		}
	}
	return fvar
}

func (v *Validator) checkInstances(fvar *FvarTable, ic *issueCollector) {
	for _, inst := range fvar.Instances {
		if len(inst.Coordinates) != len(fvar.Axes) {
			ic.addError(TagFvar, "Instances",
				fmt.Sprintf("instance %d has %d coordinates for %d axes",
					inst.Index, len(inst.Coordinates), len(fvar.Axes)))
			continue
		}
		for a, axis := range fvar.Axes {
			c := inst.Coordinates[a]
			if c < axis.Minimum || c > axis.Maximum {
				ic.addWarning(TagFvar, "Instances",
					fmt.Sprintf("instance %d coordinate %g outside axis %s range [%g,%g]",
						inst.Index, c, axis.Tag, axis.Minimum, axis.Maximum))
			}
		}
	}
}

func (v *Validator) checkGvar(input ValidationInput, fvar *FvarTable, ic *issueCollector) {
	data, ok := input.Tables[TagGvar]
	if !ok {
		return
	}
	gvar, err := ParseGvar(data, fvar.Axes)
	if err != nil {
		ic.addError(TagGvar, "Table", err.Error())
		return
	}
	if input.GlyphCount > 0 && gvar.GlyphCount() != input.GlyphCount {
		ic.addError(TagGvar, "Header",
			fmt.Sprintf("gvar covers %d glyphs, maxp declares %d", gvar.GlyphCount(), input.GlyphCount))
	}
	v.checkBoundaryGlyph(gvar, 0, "first", ic)
	if gvar.GlyphCount() > 1 {
		v.checkBoundaryGlyph(gvar, GlyphIndex(gvar.GlyphCount()-1), "last", ic)
	}
}

// checkBoundaryGlyph warns when a boundary glyph carries no variation data;
// legal, but often a sign of an off-by-one in the producing tool.
func (v *Validator) checkBoundaryGlyph(gvar *GvarTable, gid GlyphIndex, which string, ic *issueCollector) {
	set, err := gvar.TupleVariations(gid)
	if err != nil {
		ic.addError(TagGvar, "GlyphVariationData", err.Error())
		return
	}
	if len(set.Tuples) == 0 {
		ic.addWarning(TagGvar, "GlyphVariationData",
			fmt.Sprintf("%s glyph (%d) has no variation data", which, gid))
	}
	for t, tuple := range set.Tuples {
		for tag, rng := range tuple.Region {
			if rng.Start < -1 || rng.End > 1 || rng.Start > rng.Peak || rng.Peak > rng.End {
				ic.addWarning(TagGvar, "Regions",
					fmt.Sprintf("glyph %d tuple %d axis %s has suspicious range {%g,%g,%g}",
						gid, t, tag, rng.Start, rng.Peak, rng.End))
			}
		}
	}
}

func (v *Validator) checkMetricVariations(input ValidationInput, fvar *FvarTable, ic *issueCollector) {
	for _, tag := range []Tag{TagHvar, TagVvar} {
		data, ok := input.Tables[tag]
		if !ok {
			if tag == TagHvar {
				ic.addWarning(tag, "Table", "no HVAR table; advance widths will not vary")
			}
			continue
		}
		mv, err := ParseMetricsVariations(tag, data, fvar.Axes)
		if err != nil {
			ic.addError(tag, "Table", err.Error())
			continue
		}
		v.checkStoreRegions(tag, mv.Store, fvar, ic)
	}
	if data, ok := input.Tables[TagMvar]; ok {
		mvar, err := ParseMvar(data, fvar.Axes)
		if err != nil {
			ic.addError(TagMvar, "Table", err.Error())
		} else {
			v.checkStoreRegions(TagMvar, mvar.Store, fvar, ic)
		}
	}
}

func (v *Validator) checkStoreRegions(table Tag, store *ItemVariationStore, fvar *FvarTable, ic *issueCollector) {
	if store == nil {
		return
	}
	axes := make(map[Tag]bool, len(fvar.Axes))
	for _, axis := range fvar.Axes {
		axes[axis.Tag] = true
	}
	for r, region := range store.Regions {
		for tag, rng := range region {
			if !axes[tag] {
				ic.addError(table, "VariationRegionList",
					fmt.Sprintf("region %d references axis %s not declared in fvar", r, tag))
			}
			if rng.Start < -1 || rng.End > 1 || rng.Start > rng.Peak || rng.Peak > rng.End {
				ic.addWarning(table, "VariationRegionList",
					fmt.Sprintf("region %d axis %s has suspicious range {%g,%g,%g}",
						r, tag, rng.Start, rng.Peak, rng.End))
			}
		}
	}
}

func (v *Validator) checkCFF2(input ValidationInput, fvar *FvarTable, ic *issueCollector) {
	if _, ok := input.Tables[TagCFF2]; !ok {
		return
	}
	if input.CFF2Store == nil {
		ic.addError(TagCFF2, "VariationStore",
			"CFF2 table present but its variation store is missing or inconsistent with fvar")
		return
	}
	v.checkStoreRegions(TagCFF2, input.CFF2Store, fvar, ic)
}
